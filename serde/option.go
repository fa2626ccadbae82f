package serde

// Option encodes a nil pointer as a single 0x00 byte and a present value
// as 0x01 followed by the value.
func Option[T any](s Serde[T]) Serde[*T] {
	return New(
		func(v *T) ([]byte, error) {
			if v == nil {
				return []byte{0}, nil
			}
			return appendEncoded([]byte{1}, s, *v)
		},
		func(data []byte) (Staging[*T], error) {
			if len(data) == 0 {
				return Staging[*T]{}, incomplete(1, 0)
			}
			switch data[0] {
			case 0:
				return Staging[*T]{Remainder: data[1:]}, nil
			case 1:
				st, err := s.DecodeWithRemainder(data[1:])
				if err != nil {
					return Staging[*T]{}, err
				}
				v := st.Value
				return Staging[*T]{Value: &v, Remainder: st.Remainder}, nil
			}
			return Staging[*T]{}, wrongFormat("option tag 0x%02x", data[0])
		},
	)
}
