package btc

import (
	"encoding/binary"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/script"

	"github.com/bitfsorg/walletcore-go/address"
)

// PushData returns the minimal-prefix push of data: a direct length byte
// below 76 bytes, otherwise OP_PUSHDATA1, 2 or 4 with a little-endian length.
func PushData(data []byte) []byte {
	n := len(data)
	var out []byte
	switch {
	case n < int(script.OpPUSHDATA1):
		out = make([]byte, 0, 1+n)
		out = append(out, byte(n))
	case n <= 0xff:
		out = make([]byte, 0, 2+n)
		out = append(out, script.OpPUSHDATA1, byte(n))
	case n <= 0xffff:
		out = make([]byte, 3, 3+n)
		out[0] = script.OpPUSHDATA2
		binary.LittleEndian.PutUint16(out[1:], uint16(n))
	default:
		out = make([]byte, 5, 5+n)
		out[0] = script.OpPUSHDATA4
		binary.LittleEndian.PutUint32(out[1:], uint32(n))
	}
	return append(out, data...)
}

// P2PKHScript returns OP_DUP OP_HASH160 <hash> OP_EQUALVERIFY OP_CHECKSIG.
func P2PKHScript(pubKeyHash []byte) []byte {
	s := []byte{script.OpDUP, script.OpHASH160}
	s = append(s, PushData(pubKeyHash)...)
	return append(s, script.OpEQUALVERIFY, script.OpCHECKSIG)
}

// P2SHScript returns OP_HASH160 <hash> OP_EQUAL.
func P2SHScript(scriptHash []byte) []byte {
	s := []byte{script.OpHASH160}
	s = append(s, PushData(scriptHash)...)
	return append(s, script.OpEQUAL)
}

// WitnessScript returns <version opcode> <program>.
func WitnessScript(version byte, program []byte) []byte {
	var op byte = script.Op0
	if version > 0 {
		op = script.Op1 + version - 1
	}
	return append([]byte{op}, PushData(program)...)
}

// OutputScript returns the locking script paying to addr on network p.
func OutputScript(addr string, p *address.Params) ([]byte, error) {
	dec, err := address.Decode(addr, p)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutputScript, err)
	}
	switch dec.Kind {
	case address.KindP2PKH:
		return P2PKHScript(dec.Program), nil
	case address.KindP2SH:
		return P2SHScript(dec.Program), nil
	case address.KindWitness:
		return WitnessScript(dec.Version, dec.Program), nil
	}
	return nil, fmt.Errorf("%w: unsupported address kind %v", ErrOutputScript, dec.Kind)
}
