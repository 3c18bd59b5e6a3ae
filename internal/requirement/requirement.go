// Package requirement fetches and persists natural-language test requirements.
// The primary source is a Jira issue; a local file can stand in for one.
package requirement

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Document is a fetched requirement. Immutable once built.
type Document struct {
	Key       string    // Issue key or file-derived identifier
	Summary   string    // One-line title
	Text      string    // Full requirement text
	FetchedAt time.Time // When the document was obtained
}

// FromFile builds a Document from a local file. The first line becomes the
// summary, the whole content the text.
func FromFile(path, key string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read requirement file %s: %w", path, err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, fmt.Errorf("requirement file %s is empty", path)
	}

	summary := text
	if idx := strings.IndexByte(text, '\n'); idx > 0 {
		summary = strings.TrimSpace(text[:idx])
	}

	return &Document{
		Key:       key,
		Summary:   summary,
		Text:      text,
		FetchedAt: time.Now(),
	}, nil
}
