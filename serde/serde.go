// Package serde is a small combinator library for byte-exact binary
// encodings. Every codec is a Serde[T]; composite codecs (vectors, tuples,
// maps, mapped types) are built from smaller ones and thread the unconsumed
// remainder from one element to the next.
package serde

// Staging is an intermediate decode result: the decoded value plus the
// bytes that follow it.
type Staging[T any] struct {
	Value     T
	Remainder []byte
}

// Serde encodes values of type T and decodes them from a byte prefix.
type Serde[T any] interface {
	Serialize(v T) ([]byte, error)
	DecodeWithRemainder(data []byte) (Staging[T], error)
}

// Decode decodes exactly one value from data. Trailing bytes are an
// ErrRedundant error.
func Decode[T any](s Serde[T], data []byte) (T, error) {
	st, err := s.DecodeWithRemainder(data)
	if err != nil {
		var zero T
		return zero, err
	}
	if len(st.Remainder) != 0 {
		var zero T
		return zero, redundant(len(st.Remainder))
	}
	return st.Value, nil
}

type funcSerde[T any] struct {
	ser func(T) ([]byte, error)
	dec func([]byte) (Staging[T], error)
}

func (f funcSerde[T]) Serialize(v T) ([]byte, error) { return f.ser(v) }

func (f funcSerde[T]) DecodeWithRemainder(data []byte) (Staging[T], error) {
	return f.dec(data)
}

// New builds a Serde from a pair of functions.
func New[T any](ser func(T) ([]byte, error), dec func([]byte) (Staging[T], error)) Serde[T] {
	return funcSerde[T]{ser: ser, dec: dec}
}
