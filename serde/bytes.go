package serde

type prefixed struct {
	length Serde[int]
}

// Bytes encodes a byte string prefixed by its CompactLength.
func Bytes() Serde[[]byte] {
	return prefixed{length: CompactLength()}
}

// VarBytes encodes a byte string prefixed by its CompactSize, as Bitcoin
// scripts are.
func VarBytes() Serde[[]byte] {
	return prefixed{length: CompactSizeLength()}
}

// PrefixedBytes encodes a byte string behind an arbitrary length codec.
func PrefixedBytes(length Serde[int]) Serde[[]byte] {
	return prefixed{length: length}
}

func (p prefixed) Serialize(v []byte) ([]byte, error) {
	head, err := p.length.Serialize(len(v))
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(head)+len(v))
	out = append(out, head...)
	return append(out, v...), nil
}

func (p prefixed) DecodeWithRemainder(data []byte) (Staging[[]byte], error) {
	n, err := p.length.DecodeWithRemainder(data)
	if err != nil {
		return Staging[[]byte]{}, err
	}
	rest := n.Remainder
	if len(rest) < n.Value {
		return Staging[[]byte]{}, incomplete(n.Value, len(rest))
	}
	return Staging[[]byte]{
		Value:     append([]byte{}, rest[:n.Value]...),
		Remainder: rest[n.Value:],
	}, nil
}

// String encodes a UTF-8 string as Bytes.
func String() Serde[string] {
	return Xmap(Bytes(),
		func(b []byte) string { return string(b) },
		func(s string) []byte { return []byte(s) },
	)
}
