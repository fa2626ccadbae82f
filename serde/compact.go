package serde

import (
	"encoding/binary"
	"math"
)

// Mode is the width class of a compact integer, read from the two most
// significant bits of its first byte. The next bit carries the sign.
type Mode uint8

const (
	ModeSingle Mode = iota // 1 byte, 5-bit magnitude
	ModeTwo                // 2 bytes, 13-bit magnitude
	ModeFour               // 4 bytes, 29-bit magnitude
	ModeMulti              // 1 + n bytes, n = low 5 bits of the first byte
)

// Prefix constants for the first byte of a compact integer.
const (
	prefixSingle    = 0x00
	prefixSingleNeg = 0x20
	prefixTwo       = 0x40
	prefixTwoNeg    = 0x60
	prefixFour      = 0x80
	prefixFourNeg   = 0xA0
	prefixMulti     = 0xC0
	prefixMultiNeg  = 0xE0

	modeMask = 0xC0
	signBit  = 0x20

	limitSingle = 0x20
	limitTwo    = 0x2000
	limitFour   = 0x20000000

	minMultiBytes = 4
	maxMultiBytes = 8
)

func (m Mode) String() string {
	switch m {
	case ModeSingle:
		return "single"
	case ModeTwo:
		return "two"
	case ModeFour:
		return "four"
	case ModeMulti:
		return "multi"
	}
	return "unknown"
}

// ModeOf reports the width class and sign encoded in the first byte of a
// compact integer.
func ModeOf(first byte) (mode Mode, negative bool) {
	return Mode(first >> 6), first&signBit != 0
}

// Width returns the total encoded length implied by the first byte.
func Width(first byte) int {
	mode, _ := ModeOf(first)
	switch mode {
	case ModeSingle:
		return 1
	case ModeTwo:
		return 2
	case ModeFour:
		return 4
	}
	return 1 + int(first&0x1f)
}

type compactInt struct{}

// CompactInt is the signed variable-width integer codec. Values whose
// magnitude is below 0x20, 0x2000 and 0x20000000 use 1, 2 and 4 bytes;
// larger magnitudes use a count byte followed by 4 to 8 big-endian bytes.
// Decoding accepts only the minimal encoding of each value.
func CompactInt() Serde[int64] {
	return compactInt{}
}

func magnitude(v int64) (uint64, bool) {
	if v >= 0 {
		return uint64(v), false
	}
	return uint64(-(v + 1)) + 1, true
}

func (compactInt) Serialize(v int64) ([]byte, error) {
	mag, neg := magnitude(v)
	pick := func(pos, negp byte) byte {
		if neg {
			return negp
		}
		return pos
	}

	switch {
	case mag < limitSingle:
		return []byte{pick(prefixSingle, prefixSingleNeg) | byte(mag)}, nil
	case mag < limitTwo:
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, uint16(mag))
		b[0] |= pick(prefixTwo, prefixTwoNeg)
		return b, nil
	case mag < limitFour:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(mag))
		b[0] |= pick(prefixFour, prefixFourNeg)
		return b, nil
	}

	var body [8]byte
	binary.BigEndian.PutUint64(body[:], mag)
	n := maxMultiBytes
	for n > minMultiBytes && body[maxMultiBytes-n] == 0 {
		n--
	}
	out := make([]byte, 0, 1+n)
	out = append(out, pick(prefixMulti, prefixMultiNeg)|byte(n))
	return append(out, body[maxMultiBytes-n:]...), nil
}

func (compactInt) DecodeWithRemainder(data []byte) (Staging[int64], error) {
	if len(data) == 0 {
		return Staging[int64]{}, incomplete(1, 0)
	}
	first := data[0]
	mode, neg := ModeOf(first)
	width := Width(first)

	if mode == ModeMulti {
		n := width - 1
		if n < minMultiBytes || n > maxMultiBytes {
			return Staging[int64]{}, wrongFormat("compact int: %d magnitude bytes", n)
		}
	}
	if len(data) < width {
		return Staging[int64]{}, incomplete(width, len(data))
	}

	var mag uint64
	switch mode {
	case ModeSingle:
		mag = uint64(first & 0x1f)
	case ModeTwo:
		mag = uint64(binary.BigEndian.Uint16(data) & 0x1fff)
		if mag < limitSingle {
			return Staging[int64]{}, wrongFormat("compact int: non-minimal two-byte encoding")
		}
	case ModeFour:
		mag = uint64(binary.BigEndian.Uint32(data) & 0x1fffffff)
		if mag < limitTwo {
			return Staging[int64]{}, wrongFormat("compact int: non-minimal four-byte encoding")
		}
	case ModeMulti:
		body := data[1:width]
		if len(body) > minMultiBytes && body[0] == 0 {
			return Staging[int64]{}, wrongFormat("compact int: leading zero byte")
		}
		for _, c := range body {
			mag = mag<<8 | uint64(c)
		}
		if mag < limitFour {
			return Staging[int64]{}, wrongFormat("compact int: non-minimal multi-byte encoding")
		}
	}

	var v int64
	switch {
	case neg && mag == 0:
		return Staging[int64]{}, wrongFormat("compact int: negative zero")
	case neg && mag > 1<<63:
		return Staging[int64]{}, wrongFormat("compact int: magnitude overflows int64")
	case neg:
		v = -int64(mag)
	case mag > math.MaxInt64:
		return Staging[int64]{}, wrongFormat("compact int: magnitude overflows int64")
	default:
		v = int64(mag)
	}
	return Staging[int64]{Value: v, Remainder: data[width:]}, nil
}

// CompactLength is CompactInt restricted to non-negative values that fit
// in an int. It is the default length and count prefix.
func CompactLength() Serde[int] {
	return Xfmap(CompactInt(),
		func(v int64) (int, error) {
			if v < 0 || v > math.MaxInt32 {
				return 0, wrongFormat("compact length %d out of range", v)
			}
			return int(v), nil
		},
		func(n int) int64 { return int64(n) },
	)
}
