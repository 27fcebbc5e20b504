package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/miragem-dev/miragem/internal/domain"
	"github.com/miragem-dev/miragem/internal/pkg/filesystem"
	"github.com/miragem-dev/miragem/internal/ports"
)

// ChartSink writes chart-specification documents as JSON files so an
// external viewer can pick them up.
type ChartSink struct {
	dir string
	now func() time.Time
}

// NewChartSink stores charts under dir, defaulting to ~/.miragem/graficos.
func NewChartSink(dir string) *ChartSink {
	if dir == "" {
		dir = filesystem.MiragemDir("graficos")
	}
	return &ChartSink{dir: dir, now: time.Now}
}

// Render implements ports.ChartSink.
func (s *ChartSink) Render(spec domain.ChartSpec) (string, error) {
	if err := os.MkdirAll(s.dir, domain.DirectoryPermissions); err != nil {
		return "", err
	}
	doc, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, fmt.Sprintf("grafico_%s_%s.json", s.now().Format("20060102_150405"), shortID()))
	if err := os.WriteFile(path, doc, domain.SecureFilePermissions); err != nil {
		return "", err
	}
	return path, nil
}

// ImageSink writes generated image bytes under a local directory.
type ImageSink struct {
	dir string
	now func() time.Time
}

// NewImageSink stores images under dir, defaulting to ~/.miragem/imagens.
func NewImageSink(dir string) *ImageSink {
	if dir == "" {
		dir = filesystem.MiragemDir("imagens")
	}
	return &ImageSink{dir: dir, now: time.Now}
}

// Save implements ports.ImageSink.
func (s *ImageSink) Save(image ports.ImageResult) (string, error) {
	if err := os.MkdirAll(s.dir, domain.DirectoryPermissions); err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, fmt.Sprintf("imagem_%s_%s%s", s.now().Format("20060102_150405"), shortID(), extensionFor(image.MIMEType)))
	if err := os.WriteFile(path, image.Data, domain.SecureFilePermissions); err != nil {
		return "", err
	}
	return path, nil
}

// shortID keeps filenames distinct when two artifacts land within the same
// second.
func shortID() string {
	return uuid.NewString()[:8]
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

var (
	_ ports.ChartSink = (*ChartSink)(nil)
	_ ports.ImageSink = (*ImageSink)(nil)
)
