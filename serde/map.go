package serde

import (
	"bytes"
	"fmt"
	"sort"
)

type mapSerde[K comparable, V any] struct {
	key Serde[K]
	val Serde[V]
}

// Map encodes a CompactLength entry count followed by key/value pairs in
// ascending order of their encoded keys, so equal maps always produce
// equal bytes. Decoding rejects duplicate keys.
func Map[K comparable, V any](key Serde[K], val Serde[V]) Serde[map[K]V] {
	return mapSerde[K, V]{key: key, val: val}
}

func (m mapSerde[K, V]) Serialize(v map[K]V) ([]byte, error) {
	type entry struct {
		key []byte
		val []byte
	}
	entries := make([]entry, 0, len(v))
	for k, val := range v {
		kb, err := m.key.Serialize(k)
		if err != nil {
			return nil, err
		}
		vb, err := m.val.Serialize(val)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{key: kb, val: vb})
	}
	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i].key, entries[j].key) < 0
	})

	out, err := CompactLength().Serialize(len(entries))
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		out = append(out, e.key...)
		out = append(out, e.val...)
	}
	return out, nil
}

func (m mapSerde[K, V]) DecodeWithRemainder(data []byte) (Staging[map[K]V], error) {
	n, err := CompactLength().DecodeWithRemainder(data)
	if err != nil {
		return Staging[map[K]V]{}, err
	}
	rest := n.Remainder
	out := make(map[K]V, min(n.Value, len(rest)))
	for i := 0; i < n.Value; i++ {
		ks, err := m.key.DecodeWithRemainder(rest)
		if err != nil {
			return Staging[map[K]V]{}, err
		}
		vs, err := m.val.DecodeWithRemainder(ks.Remainder)
		if err != nil {
			return Staging[map[K]V]{}, err
		}
		if _, dup := out[ks.Value]; dup {
			return Staging[map[K]V]{}, Validation(fmt.Sprintf("duplicate map key at entry %d", i))
		}
		out[ks.Value] = vs.Value
		rest = vs.Remainder
	}
	return Staging[map[K]V]{Value: out, Remainder: rest}, nil
}
