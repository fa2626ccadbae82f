package serde

import (
	"encoding/binary"
	"fmt"
)

type fixed[T any] struct {
	size int
	put  func([]byte, T)
	get  func([]byte) T
}

func (f fixed[T]) Serialize(v T) ([]byte, error) {
	b := make([]byte, f.size)
	f.put(b, v)
	return b, nil
}

func (f fixed[T]) DecodeWithRemainder(data []byte) (Staging[T], error) {
	if len(data) < f.size {
		return Staging[T]{}, incomplete(f.size, len(data))
	}
	return Staging[T]{Value: f.get(data[:f.size]), Remainder: data[f.size:]}, nil
}

// U8 encodes a single byte.
func U8() Serde[uint8] {
	return fixed[uint8]{
		size: 1,
		put:  func(b []byte, v uint8) { b[0] = v },
		get:  func(b []byte) uint8 { return b[0] },
	}
}

// U16LE encodes a uint16, little-endian.
func U16LE() Serde[uint16] {
	return fixed[uint16]{size: 2, put: binary.LittleEndian.PutUint16, get: binary.LittleEndian.Uint16}
}

// U16BE encodes a uint16, big-endian.
func U16BE() Serde[uint16] {
	return fixed[uint16]{size: 2, put: binary.BigEndian.PutUint16, get: binary.BigEndian.Uint16}
}

// U32LE encodes a uint32, little-endian.
func U32LE() Serde[uint32] {
	return fixed[uint32]{size: 4, put: binary.LittleEndian.PutUint32, get: binary.LittleEndian.Uint32}
}

// U32BE encodes a uint32, big-endian.
func U32BE() Serde[uint32] {
	return fixed[uint32]{size: 4, put: binary.BigEndian.PutUint32, get: binary.BigEndian.Uint32}
}

// U64LE encodes a uint64, little-endian.
func U64LE() Serde[uint64] {
	return fixed[uint64]{size: 8, put: binary.LittleEndian.PutUint64, get: binary.LittleEndian.Uint64}
}

// U64BE encodes a uint64, big-endian.
func U64BE() Serde[uint64] {
	return fixed[uint64]{size: 8, put: binary.BigEndian.PutUint64, get: binary.BigEndian.Uint64}
}

// I32LE encodes a two's complement int32, little-endian.
func I32LE() Serde[int32] {
	return Xmap(U32LE(), func(v uint32) int32 { return int32(v) }, func(v int32) uint32 { return uint32(v) })
}

// I64LE encodes a two's complement int64, little-endian.
func I64LE() Serde[int64] {
	return Xmap(U64LE(), func(v uint64) int64 { return int64(v) }, func(v int64) uint64 { return uint64(v) })
}

// Bool encodes false as 0x00 and true as 0x01. Any other byte is rejected.
func Bool() Serde[bool] {
	return Xfmap(U8(),
		func(b uint8) (bool, error) {
			switch b {
			case 0:
				return false, nil
			case 1:
				return true, nil
			}
			return false, wrongFormat("bool byte 0x%02x", b)
		},
		func(v bool) uint8 {
			if v {
				return 1
			}
			return 0
		},
	)
}

type fixedBytes int

// FixedBytes encodes a byte string of exactly n bytes with no prefix.
func FixedBytes(n int) Serde[[]byte] {
	return fixedBytes(n)
}

func (n fixedBytes) Serialize(v []byte) ([]byte, error) {
	if len(v) != int(n) {
		return nil, validation(fmt.Sprintf("fixed bytes: want %d, have %d", int(n), len(v)), nil)
	}
	return append([]byte(nil), v...), nil
}

func (n fixedBytes) DecodeWithRemainder(data []byte) (Staging[[]byte], error) {
	if len(data) < int(n) {
		return Staging[[]byte]{}, incomplete(int(n), len(data))
	}
	return Staging[[]byte]{
		Value:     append([]byte(nil), data[:n]...),
		Remainder: data[n:],
	}, nil
}
