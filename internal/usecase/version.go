package usecase

import (
	"errors"
	"strings"

	"axiom/internal/domain"
)

// Versions returns surviving store versions, newest first.
func (s *Service) Versions(limit int) ([]domain.VersionInfo, error) {
	return s.Store.Versions(limit)
}

// History returns the surviving revisions of one artifact, newest first.
func (s *Service) History(id string, limit int) ([]domain.VersionInfo, error) {
	return s.Store.History(id, limit)
}

// Head returns the current store version.
func (s *Service) Head() uint64 {
	return s.Store.Head()
}

// DiffLine is one line of a unified-style diff.
type DiffLine struct {
	Op   string `json:"op"` // " ", "-", "+"
	Text string `json:"text"`
}

// FieldChange records a scalar field differing between two revisions.
type FieldChange struct {
	Field string `json:"field"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// DiffResult compares one artifact across two store versions.
type DiffResult struct {
	ID          string        `json:"id"`
	From        uint64        `json:"from"`
	To          uint64        `json:"to"`
	Created     bool          `json:"created,omitempty"` // absent at From
	Removed     bool          `json:"removed,omitempty"` // absent at To
	Fields      []FieldChange `json:"fields,omitempty"`
	ContentDiff []DiffLine    `json:"content_diff,omitempty"`
	ContextDiff []DiffLine    `json:"context_diff,omitempty"`
}

// Changed reports whether the two revisions differ at all.
func (d *DiffResult) Changed() bool {
	return d.Created || d.Removed || len(d.Fields) > 0 ||
		anyChange(d.ContentDiff) || anyChange(d.ContextDiff)
}

func anyChange(lines []DiffLine) bool {
	for _, l := range lines {
		if l.Op != " " {
			return true
		}
	}
	return false
}

// Diff compares an artifact between two store versions. Zero for to
// means HEAD; zero for from means the revision preceding to. An
// artifact absent at one endpoint is reported as created or removed
// rather than erroring, as long as it exists at the other.
func (s *Service) Diff(id string, from, to uint64) (*DiffResult, error) {
	head := s.Store.Head()
	if head == 0 {
		return nil, &domain.NotFoundError{Resource: "artifact", Key: id}
	}
	if to == 0 {
		to = head
	}
	if from == 0 {
		revs, err := s.Store.History(id, 0)
		if err != nil {
			return nil, err
		}
		// History is newest-first; pick the first revision strictly
		// below to.
		for _, r := range revs {
			if r.Version < to {
				from = r.Version
				break
			}
		}
		if from == 0 {
			from = to
		}
	}

	older, errFrom := s.Store.GetAt(id, from)
	newer, errTo := s.Store.GetAt(id, to)
	if errFrom != nil && !isNotFound(errFrom) {
		return nil, errFrom
	}
	if errTo != nil && !isNotFound(errTo) {
		return nil, errTo
	}
	if older == nil && newer == nil {
		return nil, &domain.NotFoundError{Resource: "artifact", Key: id}
	}

	d := &DiffResult{ID: id, From: from, To: to}
	switch {
	case older == nil:
		d.Created = true
		d.ContentDiff = diffLines("", newer.Content)
		d.ContextDiff = diffLines("", newer.Context)
	case newer == nil:
		d.Removed = true
		d.ContentDiff = diffLines(older.Content, "")
		d.ContextDiff = diffLines(older.Context, "")
	default:
		d.Fields = fieldChanges(older, newer)
		d.ContentDiff = diffLines(older.Content, newer.Content)
		d.ContextDiff = diffLines(older.Context, newer.Context)
	}
	return d, nil
}

func isNotFound(err error) bool {
	var nf *domain.NotFoundError
	return errors.As(err, &nf)
}

func fieldChanges(a, b *domain.Artifact) []FieldChange {
	var out []FieldChange
	if a.Kind != b.Kind {
		out = append(out, FieldChange{Field: "kind", From: a.Kind, To: b.Kind})
	}
	if a.Name != b.Name {
		out = append(out, FieldChange{Field: "name", From: a.Name, To: b.Name})
	}
	if a.Format != b.Format {
		out = append(out, FieldChange{Field: "format", From: string(a.Format), To: string(b.Format)})
	}
	keys := map[string]bool{}
	for k := range a.Metadata {
		keys[k] = true
	}
	for k := range b.Metadata {
		keys[k] = true
	}
	for k := range keys {
		if a.Metadata[k] != b.Metadata[k] {
			out = append(out, FieldChange{Field: "label:" + k, From: a.Metadata[k], To: b.Metadata[k]})
		}
	}
	return out
}

// diffLines produces a line diff via longest common subsequence.
// Artifact bodies are small, so the quadratic table is fine.
func diffLines(a, b string) []DiffLine {
	if a == b {
		return nil
	}
	al := splitLines(a)
	bl := splitLines(b)

	lcs := make([][]int, len(al)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(bl)+1)
	}
	for i := len(al) - 1; i >= 0; i-- {
		for j := len(bl) - 1; j >= 0; j-- {
			if al[i] == bl[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	var out []DiffLine
	i, j := 0, 0
	for i < len(al) && j < len(bl) {
		switch {
		case al[i] == bl[j]:
			out = append(out, DiffLine{Op: " ", Text: al[i]})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			out = append(out, DiffLine{Op: "-", Text: al[i]})
			i++
		default:
			out = append(out, DiffLine{Op: "+", Text: bl[j]})
			j++
		}
	}
	for ; i < len(al); i++ {
		out = append(out, DiffLine{Op: "-", Text: al[i]})
	}
	for ; j < len(bl); j++ {
		out = append(out, DiffLine{Op: "+", Text: bl[j]})
	}
	return out
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
