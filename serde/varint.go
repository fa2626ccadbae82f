package serde

import (
	"encoding/binary"
	"math"
)

type compactSize struct{}

// CompactSize is the Bitcoin variable-length integer: one byte below 0xfd,
// otherwise a 0xfd, 0xfe or 0xff marker followed by a 2, 4 or 8 byte
// little-endian value. Non-canonical encodings are rejected.
func CompactSize() Serde[uint64] {
	return compactSize{}
}

// CompactSizeLen returns the encoded length of v.
func CompactSizeLen(v uint64) int {
	switch {
	case v < 0xfd:
		return 1
	case v <= math.MaxUint16:
		return 3
	case v <= math.MaxUint32:
		return 5
	}
	return 9
}

func (compactSize) Serialize(v uint64) ([]byte, error) {
	b := make([]byte, CompactSizeLen(v))
	switch len(b) {
	case 1:
		b[0] = byte(v)
	case 3:
		b[0] = 0xfd
		binary.LittleEndian.PutUint16(b[1:], uint16(v))
	case 5:
		b[0] = 0xfe
		binary.LittleEndian.PutUint32(b[1:], uint32(v))
	default:
		b[0] = 0xff
		binary.LittleEndian.PutUint64(b[1:], v)
	}
	return b, nil
}

func (compactSize) DecodeWithRemainder(data []byte) (Staging[uint64], error) {
	if len(data) == 0 {
		return Staging[uint64]{}, incomplete(1, 0)
	}

	var (
		v     uint64
		floor uint64
		size  int
	)
	switch data[0] {
	case 0xfd:
		size, floor = 3, 0xfd
	case 0xfe:
		size, floor = 5, math.MaxUint16+1
	case 0xff:
		size, floor = 9, math.MaxUint32+1
	default:
		return Staging[uint64]{Value: uint64(data[0]), Remainder: data[1:]}, nil
	}
	if len(data) < size {
		return Staging[uint64]{}, incomplete(size, len(data))
	}
	switch size {
	case 3:
		v = uint64(binary.LittleEndian.Uint16(data[1:]))
	case 5:
		v = uint64(binary.LittleEndian.Uint32(data[1:]))
	default:
		v = binary.LittleEndian.Uint64(data[1:])
	}
	if v < floor {
		return Staging[uint64]{}, wrongFormat("compact size: non-canonical encoding of %d", v)
	}
	return Staging[uint64]{Value: v, Remainder: data[size:]}, nil
}

// CompactSizeLength is CompactSize as an int count or length prefix.
func CompactSizeLength() Serde[int] {
	return Xfmap(CompactSize(),
		func(v uint64) (int, error) {
			if v > math.MaxInt32 {
				return 0, wrongFormat("compact size %d out of range", v)
			}
			return int(v), nil
		},
		func(n int) uint64 { return uint64(n) },
	)
}
