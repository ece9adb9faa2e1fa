package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"axiom/internal/domain"
)

// Row revisions are keyed "id@%016x" so a cursor walks each artifact's
// revisions in version order. Vector blobs share the row key plus a
// field suffix.
const (
	vectorContentSuffix = "/c"
	vectorContextSuffix = "/x"
)

func rowKey(id string, version uint64) []byte {
	return []byte(fmt.Sprintf("%s@%016x", id, version))
}

func rowPrefix(id string) []byte {
	return []byte(id + "@")
}

func parseRowKey(key []byte) (id string, version uint64, err error) {
	s := string(key)
	i := strings.IndexByte(s, '@')
	if i < 0 || len(s) != i+1+16 {
		return "", 0, fmt.Errorf("malformed row key %q", s)
	}
	v, err := strconv.ParseUint(s[i+1:], 16, 64)
	if err != nil {
		return "", 0, fmt.Errorf("malformed row key %q: %w", s, err)
	}
	return s[:i], v, nil
}

func versionKey(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func parseVersionKey(key []byte) (uint64, error) {
	if len(key) != 8 {
		return 0, fmt.Errorf("malformed version key (%d bytes)", len(key))
	}
	return binary.BigEndian.Uint64(key), nil
}

// rowRecord is the persisted form of one artifact revision. Embedding
// vectors live in their own bucket; a tombstone revision carries no
// content so compaction down to one revision reclaims the text.
type rowRecord struct {
	ID             string               `json:"id"`
	Version        uint64               `json:"version"`
	Kind           string               `json:"kind"`
	Name           string               `json:"name,omitempty"`
	Content        string               `json:"content,omitempty"`
	Context        string               `json:"context,omitempty"`
	Format         domain.ContentFormat `json:"format,omitempty"`
	Metadata       map[string]string    `json:"metadata,omitempty"`
	EmbeddingModel string               `json:"embedding_model,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
	Deleted        bool                 `json:"deleted,omitempty"`
}

func encodeRow(r *rowRecord) ([]byte, error) {
	return json.Marshal(r)
}

func decodeRow(data []byte) (*rowRecord, error) {
	var r rowRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *rowRecord) artifact() *domain.Artifact {
	return &domain.Artifact{
		ID:             r.ID,
		Kind:           r.Kind,
		Name:           r.Name,
		Content:        r.Content,
		Context:        r.Context,
		Format:         r.Format,
		Metadata:       r.Metadata,
		EmbeddingModel: r.EmbeddingModel,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// manifest is one entry in the transaction log: the unit of time travel.
type manifest struct {
	Version   uint64    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Op        string    `json:"op"`
	IDs       []string  `json:"ids"`
}

func encodeManifest(m *manifest) ([]byte, error) {
	return json.Marshal(m)
}

func decodeManifest(data []byte) (*manifest, error) {
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Vectors are stored as raw little-endian float32, four bytes per
// dimension.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d not a multiple of 4", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return vec, nil
}
