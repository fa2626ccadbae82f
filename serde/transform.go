package serde

import "errors"

// Xmap adapts a Serde[A] into a Serde[B] through a total bijection.
func Xmap[A, B any](s Serde[A], to func(A) B, from func(B) A) Serde[B] {
	return New(
		func(v B) ([]byte, error) { return s.Serialize(from(v)) },
		func(data []byte) (Staging[B], error) {
			st, err := s.DecodeWithRemainder(data)
			if err != nil {
				return Staging[B]{}, err
			}
			return Staging[B]{Value: to(st.Value), Remainder: st.Remainder}, nil
		},
	)
}

// Xfmap is Xmap where decoding may reject the inner value. A plain error
// from to is reported as ErrValidation; a *DecodeError is passed through.
func Xfmap[A, B any](s Serde[A], to func(A) (B, error), from func(B) A) Serde[B] {
	return New(
		func(v B) ([]byte, error) { return s.Serialize(from(v)) },
		func(data []byte) (Staging[B], error) {
			st, err := s.DecodeWithRemainder(data)
			if err != nil {
				return Staging[B]{}, err
			}
			v, err := to(st.Value)
			if err != nil {
				var de *DecodeError
				if errors.As(err, &de) {
					return Staging[B]{}, err
				}
				return Staging[B]{}, validation("mapped value rejected", err)
			}
			return Staging[B]{Value: v, Remainder: st.Remainder}, nil
		},
	)
}

// Xomap is Xmap where decoding may find no corresponding value, which is
// reported as ErrValidation.
func Xomap[A, B any](s Serde[A], to func(A) (B, bool), from func(B) A) Serde[B] {
	return Xfmap(s,
		func(a A) (B, error) {
			v, ok := to(a)
			if !ok {
				return v, Validation("no value for decoded input")
			}
			return v, nil
		},
		from,
	)
}
