package domain

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

// ContentFormat tags how artifact content should be interpreted.
// It is advisory only and affects neither storage nor embedding.
type ContentFormat string

const (
	FormatMarkdown ContentFormat = "markdown"
	FormatYAML     ContentFormat = "yaml"
	FormatJSON     ContentFormat = "json"
	FormatOpenAPI  ContentFormat = "openapi"
	FormatText     ContentFormat = "text"
)

// ParseFormat parses a content format string, accepting common aliases.
func ParseFormat(s string) (ContentFormat, error) {
	switch strings.ToLower(s) {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "openapi":
		return FormatOpenAPI, nil
	case "text", "txt", "":
		return FormatText, nil
	}
	return "", &ValidationError{Field: "format", Reason: fmt.Sprintf("unknown content format %q", s)}
}

// Ext returns the file extension used when rendering to disk.
func (f ContentFormat) Ext() string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatYAML, FormatOpenAPI:
		return "yaml"
	case FormatJSON:
		return "json"
	default:
		return "txt"
	}
}

// Artifact is one stored truth statement. Content is always embedded;
// context, when present, is embedded independently so the two similarity
// signals can be blended at query time.
type Artifact struct {
	ID               string            `json:"id"`
	Kind             string            `json:"kind"`
	Name             string            `json:"name,omitempty"`
	Content          string            `json:"content"`
	Context          string            `json:"context,omitempty"`
	Format           ContentFormat     `json:"format"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	ContentEmbedding []float32         `json:"-"`
	ContextEmbedding []float32         `json:"-"`
	EmbeddingModel   string            `json:"embedding_model"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// idAlphabet excludes visually ambiguous characters (0/o, 1/l/i).
const idAlphabet = "23456789abcdefghjkmnpqrstuvwxyz"

// IDLength is the fixed length of artifact identifiers.
const IDLength = 10

// NewID generates a random artifact identifier.
func NewID() string {
	buf := make([]byte, IDLength)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("read random bytes: %v", err))
	}
	for i, b := range buf {
		buf[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return string(buf)
}

// ValidID reports whether s has the shape of an artifact identifier.
func ValidID(s string) bool {
	if len(s) != IDLength {
		return false
	}
	for _, c := range s {
		if !strings.ContainsRune(idAlphabet, c) {
			return false
		}
	}
	return true
}

// ListFilter narrows list and search candidates. All conditions are
// exact-match and combined with AND.
type ListFilter struct {
	Kind   string
	Labels map[string]string
	After  *time.Time
	Before *time.Time
	Limit  int
}

// Match reports whether an artifact satisfies the filter, ignoring Limit.
func (f ListFilter) Match(a *Artifact) bool {
	if f.Kind != "" && a.Kind != f.Kind {
		return false
	}
	for k, v := range f.Labels {
		if a.Metadata[k] != v {
			return false
		}
	}
	if f.After != nil && a.UpdatedAt.Before(*f.After) {
		return false
	}
	if f.Before != nil && !a.UpdatedAt.Before(*f.Before) {
		return false
	}
	return true
}

// SearchResult pairs an artifact with its blended similarity score.
type SearchResult struct {
	Artifact Artifact `json:"artifact"`
	Score    float64  `json:"score"`
}

// VersionInfo describes one store version (one mutation).
type VersionInfo struct {
	Version   uint64    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Op        string    `json:"op"`
	IDs       []string  `json:"ids,omitempty"`
}

// Store mutation operation names recorded in version manifests.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpRemove = "remove"
)
