package signer

import (
	"context"
	"encoding/hex"
	"math/big"
	"strings"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/walletcore-go/address"
	"github.com/bitfsorg/walletcore-go/btc"
	"github.com/bitfsorg/walletcore-go/network"
	"github.com/bitfsorg/walletcore-go/vechain"
	"github.com/bitfsorg/walletcore-go/wallet"
)

// Standard BIP39 test mnemonic.
const abandonMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func testDigest(b byte) []byte {
	d := make([]byte, DigestLen)
	for i := range d {
		d[i] = b + byte(i)
	}
	return d
}

func newTestSigner(t *testing.T, opts ...Option) *KeySigner {
	t.Helper()
	s, err := FromMnemonic(abandonMnemonic, "", opts...)
	require.NoError(t, err)
	return s
}

// --- Mnemonic ---

func TestGenerateMnemonic(t *testing.T) {
	for _, tt := range []struct {
		bits  int
		words int
	}{
		{Mnemonic12Words, 12},
		{Mnemonic24Words, 24},
	} {
		m, err := GenerateMnemonic(tt.bits)
		require.NoError(t, err)
		assert.Len(t, strings.Fields(m), tt.words)
		assert.True(t, ValidateMnemonic(m))
	}

	_, err := GenerateMnemonic(160)
	assert.ErrorIs(t, err, ErrInvalidEntropy)
}

func TestSeedFromMnemonic(t *testing.T) {
	seed, err := SeedFromMnemonic(abandonMnemonic, "")
	require.NoError(t, err)
	assert.Equal(t,
		"5eb00bbddcf069084889a8ab9155568165f5c453ccb85e70811aaed6f6da5fc19a5ac40b389cd370d086206dec8aa6c43daea6690f20ad3d8d48b2d2ce9e38e4",
		hex.EncodeToString(seed))

	seed, err = SeedFromMnemonic(abandonMnemonic, "TREZOR")
	require.NoError(t, err)
	assert.Equal(t,
		"c55257c360c07c72029aebc1b53c05ed0362ada38ead3e3e9efa3708e53495531f09a6987599d18264c1e1c92f2cf141630c7a3c4ab7c81b2f001698e7463b04",
		hex.EncodeToString(seed))

	spaced, err := SeedFromMnemonic("  "+strings.ReplaceAll(abandonMnemonic, " ", "   ")+"\n", "")
	require.NoError(t, err)
	plain, err := SeedFromMnemonic(abandonMnemonic, "")
	require.NoError(t, err)
	assert.Equal(t, plain, spaced)

	_, err = SeedFromMnemonic(strings.Replace(abandonMnemonic, "about", "abandon", 1), "")
	assert.ErrorIs(t, err, ErrInvalidMnemonic)
	assert.False(t, ValidateMnemonic("not a mnemonic"))
}

// --- Paths ---

func TestParsePath(t *testing.T) {
	tests := []struct {
		path    string
		want    []uint32
		wantErr bool
	}{
		{path: "m", want: []uint32{}},
		{path: "m/0", want: []uint32{0}},
		{path: "m/44'/0'/0'/0/0", want: []uint32{44 + Hardened, Hardened, Hardened, 0, 0}},
		{path: "m/84h/1H/2", want: []uint32{84 + Hardened, 1 + Hardened, 2}},
		{path: "M/2147483647'", want: []uint32{0xffffffff}},
		{path: "", wantErr: true},
		{path: "44'/0'", wantErr: true},
		{path: "m/", wantErr: true},
		{path: "m/-1", wantErr: true},
		{path: "m/2147483648", wantErr: true},
		{path: "m/abc", wantErr: true},
		{path: "m/1''", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := ParsePath(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPath)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatPath(t *testing.T) {
	for _, p := range []string{"m", BitcoinLegacyPath, BitcoinSegwitPath, VeChainPath, "m/0'/1/2'"} {
		idx, err := ParsePath(p)
		require.NoError(t, err)
		assert.Equal(t, p, FormatPath(idx))
	}
	idx, err := ParsePath("m/44h/0h")
	require.NoError(t, err)
	assert.Equal(t, "m/44'/0'", FormatPath(idx))
}

// --- Derivation ---

func TestHDKey_BIP32Vector1(t *testing.T) {
	seed, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	hd, err := NewHDKey(seed)
	require.NoError(t, err)

	for _, tt := range []struct {
		path string
		pub  string
	}{
		{"m", "0339a36013301597daef41fbe593a02cc513d0b55527ec2df1050e2e8ff49c85c2"},
		{"m/0'", "035a784662a4a20a65bf6aab9ae98a6c068a81c52e4b032c0fb5400c706cfccc56"},
		{"m/0'/1", "03501e454bf00751f24b1b489aa925215d66af2234e3891c3b21a52bedb3cd711c"},
	} {
		kp, err := hd.Derive(tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.pub, hex.EncodeToString(kp.PublicKey.Compressed()), tt.path)
		assert.Equal(t, tt.path, kp.Path)
	}
}

func TestNewHDKey_SeedLength(t *testing.T) {
	_, err := NewHDKey(nil)
	assert.ErrorIs(t, err, ErrInvalidSeed)
	_, err = NewHDKey(make([]byte, 15))
	assert.ErrorIs(t, err, ErrInvalidSeed)
	_, err = NewHDKey(make([]byte, 65))
	assert.ErrorIs(t, err, ErrInvalidSeed)
}

func TestDefaultPathAddresses(t *testing.T) {
	s := newTestSigner(t)
	tests := []struct {
		path   string
		derive func([]byte, *address.Params) (string, error)
		want   string
	}{
		{BitcoinLegacyPath, address.DeriveLegacy, "1LqBGSKuX5yYUonjxT5qGfpUsXKYYWeabA"},
		{BitcoinNestedSegwitPath, address.DeriveNestedSegwit, "37VucYSaXLCAsxYyAPfbSi9eh4iEcbShgf"},
		{BitcoinSegwitPath, address.DeriveSegwit, "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu"},
	}
	for _, tt := range tests {
		pub, err := s.PublicKey(tt.path)
		require.NoError(t, err)
		addr, err := tt.derive(pub, &address.BitcoinMainNet)
		require.NoError(t, err)
		assert.Equal(t, tt.want, addr, tt.path)
	}

	def, err := s.PublicKey("")
	require.NoError(t, err)
	assert.Equal(t, "03aaeb52dd7494c361049de67cc680e83ebcbbbdbeb13637d92cd845f70308af5e", hex.EncodeToString(def))
}

// --- Signing ---

func TestSign_ECDSA(t *testing.T) {
	s := newTestSigner(t)
	pub, err := s.PublicKey(BitcoinLegacyPath)
	require.NoError(t, err)
	pk, err := secp256k1.ParsePubKey(pub)
	require.NoError(t, err)

	digests := [][]byte{testDigest(1), testDigest(2)}
	sigs, err := s.Sign(context.Background(), wallet.SignRequest{
		Digests:   digests,
		PublicKey: pub,
		Path:      BitcoinLegacyPath,
		Scheme:    wallet.SchemeECDSA,
	})
	require.NoError(t, err)
	require.Len(t, sigs, 2)

	for i, sig := range sigs {
		require.Len(t, sig, 64)
		var r, sv secp256k1.ModNScalar
		r.SetByteSlice(sig[:32])
		sv.SetByteSlice(sig[32:])
		assert.False(t, sv.IsOverHalfOrder(), "signature %d is not low-S", i)
		assert.True(t, ecdsa.NewSignature(&r, &sv).Verify(digests[i], pk), "signature %d", i)
	}
}

func TestSign_Recoverable(t *testing.T) {
	s := newTestSigner(t)
	pub, err := s.PublicKey(VeChainPath)
	require.NoError(t, err)
	vetAddr, err := address.DeriveVeChain(pub)
	require.NoError(t, err)

	digest := testDigest(7)
	sigs, err := s.Sign(context.Background(), wallet.SignRequest{
		Digests: [][]byte{digest},
		Path:    VeChainPath,
		Scheme:  wallet.SchemeRecoverable,
	})
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	require.Len(t, sigs[0], 65)
	assert.LessOrEqual(t, sigs[0][64], byte(1))

	recovered, err := crypto.SigToPub(digest, sigs[0])
	require.NoError(t, err)
	assert.Equal(t, pub, crypto.CompressPubkey(recovered))

	signer, err := vechain.Signer(digest, sigs[0])
	require.NoError(t, err)
	assert.Equal(t, vetAddr, strings.ToLower(signer.Hex()))
}

func TestSign_Errors(t *testing.T) {
	s := newTestSigner(t)
	otherPub, err := s.PublicKey(VeChainPath)
	require.NoError(t, err)

	tests := []struct {
		name string
		req  wallet.SignRequest
		want error
	}{
		{
			name: "key mismatch",
			req:  wallet.SignRequest{Digests: [][]byte{testDigest(1)}, PublicKey: otherPub, Path: BitcoinLegacyPath},
			want: ErrKeyMismatch,
		},
		{
			name: "unparsable key",
			req:  wallet.SignRequest{Digests: [][]byte{testDigest(1)}, PublicKey: []byte{0x02, 0x01}},
			want: ErrKeyMismatch,
		},
		{
			name: "short digest",
			req:  wallet.SignRequest{Digests: [][]byte{testDigest(1), {1, 2, 3}}},
			want: ErrDigestLength,
		},
		{
			name: "bad path",
			req:  wallet.SignRequest{Digests: [][]byte{testDigest(1)}, Path: "x/1"},
			want: ErrInvalidPath,
		},
		{
			name: "unknown scheme",
			req:  wallet.SignRequest{Digests: [][]byte{testDigest(1)}, Scheme: wallet.SignatureScheme(9)},
			want: ErrUnsupportedScheme,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sigs, err := s.Sign(context.Background(), tt.req)
			assert.Nil(t, sigs)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSign_UncompressedKeyAccepted(t *testing.T) {
	s := newTestSigner(t)
	pub, err := s.PublicKey("")
	require.NoError(t, err)
	pk, err := secp256k1.ParsePubKey(pub)
	require.NoError(t, err)

	_, err = s.Sign(context.Background(), wallet.SignRequest{
		Digests:   [][]byte{testDigest(3)},
		PublicKey: pk.SerializeUncompressed(),
	})
	assert.NoError(t, err)
}

func TestSign_Confirm(t *testing.T) {
	var asked int
	decline := newTestSigner(t, WithConfirm(func(context.Context, wallet.SignRequest) (bool, error) {
		asked++
		return false, nil
	}))
	_, err := decline.Sign(context.Background(), wallet.SignRequest{Digests: [][]byte{testDigest(1)}})
	assert.ErrorIs(t, err, wallet.ErrSignerCancelled)
	assert.Equal(t, 1, asked)

	approve := newTestSigner(t, WithConfirm(func(context.Context, wallet.SignRequest) (bool, error) {
		return true, nil
	}))
	sigs, err := approve.Sign(context.Background(), wallet.SignRequest{Digests: [][]byte{testDigest(1)}})
	require.NoError(t, err)
	assert.Len(t, sigs, 1)
}

func TestSign_ContextCancelled(t *testing.T) {
	s := newTestSigner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Sign(ctx, wallet.SignRequest{Digests: [][]byte{testDigest(1)}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewKeySigner_BadDefaultPath(t *testing.T) {
	seed, err := SeedFromMnemonic(abandonMnemonic, "")
	require.NoError(t, err)
	_, err = NewKeySigner(seed, WithDefaultPath("44'/0'"))
	assert.ErrorIs(t, err, ErrInvalidPath)
}

// TestWalletSend drives a Bitcoin send through the wallet with a
// KeySigner, so the builder verifies every signature it is handed.
func TestWalletSend(t *testing.T) {
	s := newTestSigner(t)
	pub, err := s.PublicKey(BitcoinLegacyPath)
	require.NoError(t, err)
	pkh, err := address.PubKeyHash(pub)
	require.NoError(t, err)
	script := hex.EncodeToString(btc.P2PKHScript(pkh))

	svc := &network.MockBitcoinService{
		ListUnspentFn: func(context.Context, string) ([]*network.UTXO, error) {
			return []*network.UTXO{
				{TxID: strings.Repeat("ab", 32), Vout: 0, Amount: 40000, ScriptPubKey: script, Confirmations: 3},
				{TxID: strings.Repeat("cd", 32), Vout: 2, Amount: 40000, ScriptPubKey: script, Confirmations: 3},
			}, nil
		},
		EstimateFeeRateFn: func(context.Context, int) (uint64, error) { return 2, nil },
		BroadcastTxFn: func(_ context.Context, rawHex string) (string, error) {
			raw, err := hex.DecodeString(rawHex)
			if err != nil {
				return "", err
			}
			return btc.TxID(raw), nil
		},
	}
	chain, err := wallet.NewBitcoinChain(svc, pub, &address.BitcoinMainNet)
	require.NoError(t, err)
	w, err := wallet.New(chain, wallet.WithDerivationPath(BitcoinLegacyPath))
	require.NoError(t, err)

	amount := big.NewInt(60000)
	opts, err := w.Fees(context.Background(), amount, "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa")
	require.NoError(t, err)

	res, err := w.Send(context.Background(), wallet.Transfer{To: "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", Amount: amount}, opts[1], s)
	require.NoError(t, err)

	tx, err := btc.ParseTx(res.Raw)
	require.NoError(t, err)
	assert.Len(t, tx.Inputs, 2)
	assert.Equal(t, btc.TxID(res.Raw), res.TxID)
}
