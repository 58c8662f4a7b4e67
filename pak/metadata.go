package pak

import "github.com/kjk/catalog/siser"

// KV is a single metadata entry
type KV struct {
	Key   string
	Value string
}

// Metadata is an ordered list of key / value pairs. Keys are case
// sensitive.
type Metadata struct {
	Meta []KV
}

func metadataFromEntries(entries []siser.Entry) Metadata {
	var m Metadata
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return m
}

// Reset clears Metadata for re-use
func (m *Metadata) Reset() {
	m.Meta = m.Meta[:0]
}

// Size returns number of entries
func (m *Metadata) Size() int {
	return len(m.Meta)
}

func (m *Metadata) Get(key string) (string, bool) {
	for _, kv := range m.Meta {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Set adds or updates a value. Returns true if the key is new.
func (m *Metadata) Set(k, v string) bool {
	for i := range m.Meta {
		if m.Meta[i].Key == k {
			m.Meta[i].Value = v
			return false
		}
	}
	m.Meta = append(m.Meta, KV{Key: k, Value: v})
	return true
}
