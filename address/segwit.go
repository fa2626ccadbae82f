package address

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

const (
	maxWitnessVersion = 16
	minProgramLen     = 2
	maxProgramLen     = 40
)

// EncodeSegwit encodes a witness program under hrp. Version 0 programs use
// Bech32, later versions use Bech32m.
func EncodeSegwit(hrp string, version byte, program []byte) (string, error) {
	if err := checkProgram(version, program); err != nil {
		return "", err
	}
	conv, err := bech32.ConvertBits(program, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	data := append([]byte{version}, conv...)

	var addr string
	if version == 0 {
		addr, err = bech32.Encode(hrp, data)
	} else {
		addr, err = bech32.EncodeM(hrp, data)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return addr, nil
}

// DecodeSegwit decodes a witness address and checks that its
// human-readable part is hrp.
func DecodeSegwit(hrp, addr string) (version byte, program []byte, err error) {
	gotHRP, data, variant, err := bech32.DecodeGeneric(addr)
	if err != nil {
		var ce bech32.ErrInvalidChecksum
		if errors.As(err, &ce) {
			return 0, nil, fmt.Errorf("%w: %w", ErrChecksumMismatch, err)
		}
		return 0, nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if gotHRP != strings.ToLower(hrp) {
		return 0, nil, fmt.Errorf("%w: hrp %q, want %q", ErrWrongNetwork, gotHRP, hrp)
	}
	if len(data) < 1 {
		return 0, nil, fmt.Errorf("%w: empty witness data", ErrMalformed)
	}

	version = data[0]
	program, err = bech32.ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if err := checkProgram(version, program); err != nil {
		return 0, nil, err
	}
	if version == 0 && variant != bech32.Version0 {
		return 0, nil, fmt.Errorf("%w: version 0 program must use bech32", ErrMalformed)
	}
	if version != 0 && variant != bech32.VersionM {
		return 0, nil, fmt.Errorf("%w: version %d program must use bech32m", ErrMalformed, version)
	}
	return version, program, nil
}

func checkProgram(version byte, program []byte) error {
	if version > maxWitnessVersion {
		return fmt.Errorf("%w: witness version %d", ErrMalformed, version)
	}
	if len(program) < minProgramLen || len(program) > maxProgramLen {
		return fmt.Errorf("%w: witness program length %d", ErrMalformed, len(program))
	}
	if version == 0 && len(program) != 20 && len(program) != 32 {
		return fmt.Errorf("%w: version 0 program length %d", ErrMalformed, len(program))
	}
	return nil
}

// DeriveSegwit derives the native P2WPKH address of a public key.
func DeriveSegwit(pub []byte, p *Params) (string, error) {
	h, err := PubKeyHash(pub)
	if err != nil {
		return "", err
	}
	return EncodeSegwit(p.Bech32HRP, 0, h)
}
