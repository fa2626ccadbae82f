package serde

// Pair is the decoded form of a two-element product.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Triple is the decoded form of a three-element product.
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// Quad is the decoded form of a four-element product.
type Quad[A, B, C, D any] struct {
	First  A
	Second B
	Third  C
	Fourth D
}

func appendEncoded[T any](out []byte, s Serde[T], v T) ([]byte, error) {
	b, err := s.Serialize(v)
	if err != nil {
		return nil, err
	}
	return append(out, b...), nil
}

// Tuple2 concatenates two codecs. Elements are decoded in order, each
// from the remainder of the previous one.
func Tuple2[A, B any](a Serde[A], b Serde[B]) Serde[Pair[A, B]] {
	return New(
		func(v Pair[A, B]) ([]byte, error) {
			out, err := appendEncoded(nil, a, v.First)
			if err != nil {
				return nil, err
			}
			return appendEncoded(out, b, v.Second)
		},
		func(data []byte) (Staging[Pair[A, B]], error) {
			sa, err := a.DecodeWithRemainder(data)
			if err != nil {
				return Staging[Pair[A, B]]{}, err
			}
			sb, err := b.DecodeWithRemainder(sa.Remainder)
			if err != nil {
				return Staging[Pair[A, B]]{}, err
			}
			return Staging[Pair[A, B]]{
				Value:     Pair[A, B]{First: sa.Value, Second: sb.Value},
				Remainder: sb.Remainder,
			}, nil
		},
	)
}

// Tuple3 concatenates three codecs.
func Tuple3[A, B, C any](a Serde[A], b Serde[B], c Serde[C]) Serde[Triple[A, B, C]] {
	head := Tuple2(a, b)
	return Xmap(Tuple2(head, c),
		func(p Pair[Pair[A, B], C]) Triple[A, B, C] {
			return Triple[A, B, C]{First: p.First.First, Second: p.First.Second, Third: p.Second}
		},
		func(t Triple[A, B, C]) Pair[Pair[A, B], C] {
			return Pair[Pair[A, B], C]{First: Pair[A, B]{First: t.First, Second: t.Second}, Second: t.Third}
		},
	)
}

// Tuple4 concatenates four codecs.
func Tuple4[A, B, C, D any](a Serde[A], b Serde[B], c Serde[C], d Serde[D]) Serde[Quad[A, B, C, D]] {
	return Xmap(Tuple2(Tuple3(a, b, c), d),
		func(p Pair[Triple[A, B, C], D]) Quad[A, B, C, D] {
			return Quad[A, B, C, D]{First: p.First.First, Second: p.First.Second, Third: p.First.Third, Fourth: p.Second}
		},
		func(q Quad[A, B, C, D]) Pair[Triple[A, B, C], D] {
			return Pair[Triple[A, B, C], D]{
				First:  Triple[A, B, C]{First: q.First, Second: q.Second, Third: q.Third},
				Second: q.Fourth,
			}
		},
	)
}
