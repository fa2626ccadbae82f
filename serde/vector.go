package serde

type vector[T any] struct {
	count Serde[int]
	elem  Serde[T]
}

// Vector encodes a CompactLength element count followed by each element.
func Vector[T any](elem Serde[T]) Serde[[]T] {
	return vector[T]{count: CompactLength(), elem: elem}
}

// VectorOf is Vector with a caller-chosen count codec.
func VectorOf[T any](count Serde[int], elem Serde[T]) Serde[[]T] {
	return vector[T]{count: count, elem: elem}
}

func (s vector[T]) Serialize(items []T) ([]byte, error) {
	out, err := s.count.Serialize(len(items))
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		b, err := s.elem.Serialize(it)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

func (s vector[T]) DecodeWithRemainder(data []byte) (Staging[[]T], error) {
	n, err := s.count.DecodeWithRemainder(data)
	if err != nil {
		return Staging[[]T]{}, err
	}
	rest := n.Remainder

	// The count is untrusted; bound preallocation by the input size.
	items := make([]T, 0, min(n.Value, len(rest)))
	for i := 0; i < n.Value; i++ {
		st, err := s.elem.DecodeWithRemainder(rest)
		if err != nil {
			return Staging[[]T]{}, err
		}
		items = append(items, st.Value)
		rest = st.Remainder
	}
	return Staging[[]T]{Value: items, Remainder: rest}, nil
}
