package core

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Ordered is a string-keyed map that remembers insertion order and
// serializes as a JSON object with keys in that order. The zero value is
// ready to use.
type Ordered[V any] struct {
	keys   []string
	values map[string]V
}

// Set stores v under key. A new key is appended; an existing key keeps its
// position.
func (m *Ordered[V]) Set(key string, v V) {
	if m.values == nil {
		m.values = make(map[string]V)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Get returns the value for key, or the zero value.
func (m *Ordered[V]) Get(key string) V {
	return m.values[key]
}

// Lookup returns the value for key and whether it is present.
func (m *Ordered[V]) Lookup(key string) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *Ordered[V]) Keys() []string {
	return m.keys
}

// Len returns the number of keys.
func (m *Ordered[V]) Len() int {
	return len(m.keys)
}

// MarshalJSON implements json.Marshaler.
func (m *Ordered[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// TypeMap maps column names to semantic types in column order.
type TypeMap = Ordered[SemanticType]

// SampleTable maps column names to preview values in column order.
type SampleTable = Ordered[[]string]

// CountTable is an insertion-ordered tally.
type CountTable struct {
	Ordered[int]
}

// Add increases the count for key by n.
func (c *CountTable) Add(key string, n int) {
	c.Set(key, c.Get(key)+n)
}

// Total returns the sum of all counts.
func (c *CountTable) Total() int {
	total := 0
	for _, k := range c.keys {
		total += c.values[k]
	}
	return total
}

// MostCommon returns the key with the highest count. Ties go to the key
// inserted first.
func (c *CountTable) MostCommon() (string, int) {
	best, bestN := "", 0
	for _, k := range c.keys {
		if n := c.values[k]; n > bestN {
			best, bestN = k, n
		}
	}
	return best, bestN
}
