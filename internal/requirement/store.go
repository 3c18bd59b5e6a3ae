package requirement

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"qaforge/internal/logging"
)

// Store persists requirement documents as plain text files so a run can be
// repeated without refetching from Jira.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir (typically "requirements/").
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Save writes the document text to <dir>/<key>.txt.
func (s *Store) Save(doc *Document) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create requirements dir: %w", err)
	}

	path := s.pathFor(doc.Key)
	if err := os.WriteFile(path, []byte(doc.Text), 0644); err != nil {
		return fmt.Errorf("save requirement %s: %w", doc.Key, err)
	}

	logging.Requirement("Saved requirement %s to %s", doc.Key, path)
	return nil
}

// Load reads a previously saved document back. FetchedAt is the file mtime.
func (s *Store) Load(key string) (*Document, error) {
	path := s.pathFor(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load requirement %s: %w", key, err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, fmt.Errorf("requirement %s is empty", key)
	}

	fetchedAt := time.Now()
	if info, err := os.Stat(path); err == nil {
		fetchedAt = info.ModTime()
	}

	summary := text
	if idx := strings.IndexByte(text, '\n'); idx > 0 {
		summary = strings.TrimSpace(text[:idx])
	}

	return &Document{
		Key:       key,
		Summary:   summary,
		Text:      text,
		FetchedAt: fetchedAt,
	}, nil
}

// Exists reports whether a saved document is present for the key.
func (s *Store) Exists(key string) bool {
	_, err := os.Stat(s.pathFor(key))
	return err == nil
}

func (s *Store) pathFor(key string) string {
	return filepath.Join(s.dir, key+".txt")
}
