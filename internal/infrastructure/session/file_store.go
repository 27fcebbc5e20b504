// Package session persists each terminal surface's transcript and bounded
// context window as JSON snapshots under ~/.miragem/sessions.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/miragem-dev/miragem/internal/domain"
	"github.com/miragem-dev/miragem/internal/ports"
)

// Opener creates file-backed session stores rooted at a directory.
type Opener struct {
	dir           string
	flushInterval time.Duration
}

// NewOpener builds an opener. flushInterval bounds how stale the on-disk
// snapshot may get while a surface is appending.
func NewOpener(dir string, flushInterval time.Duration) *Opener {
	if flushInterval <= 0 {
		flushInterval = domain.DefaultFlushInterval
	}
	return &Opener{dir: dir, flushInterval: flushInterval}
}

// Open hydrates the store for a storage key. Malformed persisted documents
// are treated as empty rather than failing the mount.
func (o *Opener) Open(key string, window int) (ports.SessionStore, error) {
	if window <= 0 {
		window = domain.DefaultContextWindow
	}
	if err := os.MkdirAll(o.dir, domain.DirectoryPermissions); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	store := &FileStore{
		key:    key,
		dir:    o.dir,
		window: window,
		stop:   make(chan struct{}),
	}
	store.hydrate()

	store.wg.Add(1)
	go store.flushLoop(o.flushInterval)
	return store, nil
}

var _ ports.SessionOpener = (*Opener)(nil)

// transcriptDoc and contextDoc are the two independently persisted
// documents. They share no file, so clearing one never touches the other.
type transcriptDoc struct {
	Lines []string `json:"lines"`
}

type contextDoc struct {
	Interactions []domain.Interaction `json:"interactions"`
	LastArtifact *domain.Artifact     `json:"last_artifact,omitempty"`
}

// FileStore keeps the live collections in memory and coalesces writes: every
// mutation marks the snapshot dirty, and a background loop (or an explicit
// Flush) writes the latest state through.
type FileStore struct {
	key    string
	dir    string
	window int

	mu           sync.Mutex
	transcript   []string
	interactions []domain.Interaction
	lastArtifact *domain.Artifact
	dirty        bool

	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

func (s *FileStore) Key() string {
	return s.key
}

// Transcript returns a copy of the display lines.
func (s *FileStore) Transcript() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.transcript...)
}

// ContextWindow returns a copy of the bounded interaction window.
func (s *FileStore) ContextWindow() []domain.Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Interaction(nil), s.interactions...)
}

func (s *FileStore) LastArtifact() *domain.Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastArtifact
}

func (s *FileStore) SetLastArtifact(artifact *domain.Artifact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastArtifact = artifact
	s.dirty = true
}

// Append adds display lines to the transcript.
func (s *FileStore) Append(lines ...string) {
	if len(lines) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, lines...)
	s.dirty = true
}

// AppendInteraction adds one command/response pair, evicting the oldest
// entries once the window is full. The window bound holds after every call.
func (s *FileStore) AppendInteraction(interaction domain.Interaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interactions = append(s.interactions, interaction)
	if excess := len(s.interactions) - s.window; excess > 0 {
		s.interactions = append([]domain.Interaction(nil), s.interactions[excess:]...)
	}
	s.dirty = true
}

// ClearTranscript empties the visible transcript and its persisted copy.
// The context buffer is untouched: the simulated machine keeps its memory.
// Persistence goes through the same snapshot path as Flush so a concurrent
// coalescing write can never land a pre-clear transcript afterwards.
func (s *FileStore) ClearTranscript() error {
	s.mu.Lock()
	s.transcript = nil
	s.dirty = true
	s.mu.Unlock()
	return s.Flush()
}

// FullReset empties both collections and erases both persisted documents.
func (s *FileStore) FullReset() error {
	s.mu.Lock()
	s.transcript = nil
	s.interactions = nil
	s.lastArtifact = nil
	s.dirty = false
	s.mu.Unlock()

	for _, path := range []string{s.transcriptPath(), s.contextPath()} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// Flush writes the latest snapshot through if anything changed. It is the
// deterministic hook tests and teardown paths rely on.
func (s *FileStore) Flush() error {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	transcript := transcriptDoc{Lines: append([]string(nil), s.transcript...)}
	context := contextDoc{
		Interactions: append([]domain.Interaction(nil), s.interactions...),
		LastArtifact: s.lastArtifact,
	}
	s.dirty = false
	s.mu.Unlock()

	if err := s.writeDoc(s.transcriptPath(), transcript); err != nil {
		return err
	}
	return s.writeDoc(s.contextPath(), context)
}

// Close stops the coalescing loop and flushes pending changes.
func (s *FileStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	s.wg.Wait()
	return s.Flush()
}

func (s *FileStore) flushLoop(interval time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			_ = s.Flush()
		}
	}
}

// hydrate loads both documents, tolerating absence and corruption.
func (s *FileStore) hydrate() {
	var transcript transcriptDoc
	if readDoc(s.transcriptPath(), &transcript) {
		s.transcript = transcript.Lines
	}
	var context contextDoc
	if readDoc(s.contextPath(), &context) {
		s.interactions = context.Interactions
		s.lastArtifact = context.LastArtifact
		if excess := len(s.interactions) - s.window; excess > 0 {
			s.interactions = s.interactions[excess:]
		}
	}
}

func (s *FileStore) transcriptPath() string {
	return filepath.Join(s.dir, s.key+"_history.json")
}

func (s *FileStore) contextPath() string {
	return filepath.Join(s.dir, s.key+"_context.json")
}

func (s *FileStore) writeDoc(path string, doc interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func readDoc(path string, out interface{}) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

var _ ports.SessionStore = (*FileStore)(nil)
