package core

import (
	"encoding/binary"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// Record is an arbitrary structured record such as a user profile or an
// event description. No schema is enforced before summarization.
type Record map[string]any

// Canonical renders the record as JSON with sorted keys so identical
// records always produce identical text.
func (r Record) Canonical() (string, error) {
	if r == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]any(r))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Fingerprint returns the content fingerprint of the record's canonical form.
func (r Record) Fingerprint() (uint64, error) {
	text, err := r.Canonical()
	if err != nil {
		return 0, err
	}
	return Fingerprint(text), nil
}

// Fingerprint hashes text into a 64-bit BLAKE2b digest. Identical content
// always yields the same fingerprint.
func Fingerprint(text string) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}

// JoinTokens joins every token list with single spaces, turning tokenized
// input into one text per list.
func JoinTokens(tokens [][]string) []string {
	texts := make([]string, len(tokens))
	for i, t := range tokens {
		texts[i] = strings.Join(t, " ")
	}
	return texts
}

// Filter restricts queries to entries whose metadata contains every key
// with an equal value. An empty filter matches everything.
type Filter map[string]string

// Matches reports whether metadata satisfies the filter.
func (f Filter) Matches(metadata map[string]string) bool {
	for k, want := range f {
		got, ok := metadata[k]
		if !ok || got != want {
			return false
		}
	}
	return true
}

// Entry is a single item of a vector collection.
type Entry struct {
	ID          string            // Caller supplied identifier
	Vector      []float32         // Embedding of Document
	Document    string            // Text that was embedded
	Metadata    map[string]string // Optional metadata used for filtering
	Fingerprint uint64            // Fingerprint of the source the document was derived from
	InsertedAt  time.Time
	UpdatedAt   time.Time
}

// Neighbor is one query result: an entry id and its distance to the query.
// It is encoded on the wire as a two element array.
type Neighbor struct {
	ID       string
	Distance float32
}

func (n Neighbor) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{n.ID, n.Distance})
}

func (n *Neighbor) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return ErrMalformedNeighbor
	}
	if err := json.Unmarshal(pair[0], &n.ID); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &n.Distance)
}

// CollectionInfo describes a vector collection. The metric is fixed when the
// collection is created.
type CollectionInfo struct {
	Name      string
	Metric    Metric
	CreatedAt time.Time
}
