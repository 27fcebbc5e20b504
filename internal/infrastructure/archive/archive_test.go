package archive

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miragem-dev/miragem/internal/domain"
	"github.com/miragem-dev/miragem/internal/ports"
)

func sampleRecord(id, prompt string) domain.ArchiveRecord {
	return domain.ArchiveRecord{
		RequestID:  id,
		Timestamp:  time.Now().UTC().Truncate(time.Second),
		Capability: domain.CapabilityRNT,
		Prompt:     prompt,
		Reply:      "resposta simulada",
		Model:      "gemini-2.5-flash",
	}
}

func stores(t *testing.T) map[string]ports.ArchiveStore {
	t.Helper()
	dir := t.TempDir()
	return map[string]ports.ArchiveStore{
		"sqlite": NewSQLiteStore(filepath.Join(dir, "archive.db")),
		"jsonl":  NewFileStore(filepath.Join(dir, "archive.jsonl")),
	}
}

func TestSaveAndRecordsRoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save(sampleRecord("a", "mkdir projetos")))
			require.NoError(t, store.Save(sampleRecord("b", "ls")))

			records, err := store.Records(10, "")
			require.NoError(t, err)
			require.Len(t, records, 2)
			assert.Equal(t, "resposta simulada", records[0].Reply)
			assert.Equal(t, domain.CapabilityRNT, records[0].Capability)
		})
	}
}

func TestRecordsSearchFiltersOnPromptAndReply(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save(sampleRecord("a", "mkdir projetos")))
			require.NoError(t, store.Save(sampleRecord("b", "uptime")))

			records, err := store.Records(10, "projetos")
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, "mkdir projetos", records[0].Prompt)
		})
	}
}

func TestRecordsHonorsLimit(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 5; i++ {
				require.NoError(t, store.Save(sampleRecord("x", "cmd")))
			}
			records, err := store.Records(2, "")
			require.NoError(t, err)
			assert.Len(t, records, 2)
		})
	}
}

func TestClearEmptiesArchive(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save(sampleRecord("a", "cmd")))
			require.NoError(t, store.Clear())
			records, err := store.Records(10, "")
			require.NoError(t, err)
			assert.Empty(t, records)
		})
	}
}

func TestExportJSONProducesReadableFallbackFile(t *testing.T) {
	dir := t.TempDir()
	store := NewSQLiteStore(filepath.Join(dir, "archive.db"))
	require.NoError(t, store.Save(sampleRecord("a", "mkdir projetos")))

	dest := filepath.Join(dir, "export.jsonl")
	require.NoError(t, store.ExportJSON(dest))

	records, err := NewFileStore(dest).Records(0, "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "mkdir projetos", records[0].Prompt)
}
