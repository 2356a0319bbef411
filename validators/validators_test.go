package validators

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lattice-substrate/cryptval/catalog"
	"github.com/lattice-substrate/cryptval/runner"
	"github.com/lattice-substrate/cryptval/valerr"
)

var wantOrder = []string{
	"Settings", "OS_RNG", "FixedRNG", "BaseCode",
	"CRC32", "CRC32C", "Adler32",
	"MD4", "MD5", "SHA", "SHA2", "SHA3", "RIPEMD", "BLAKE2s", "BLAKE2b", "BLAKE3",
	"Poly1305", "HMAC", "NaClAuth",
	"PBKDF2", "HKDF", "Scrypt",
	"DES", "Blowfish", "CAST", "Twofish", "TEA", "Rijndael",
	"ARC4", "Salsa", "ChaCha",
	"CipherModes", "XTS", "GCM", "ChaCha20Poly1305",
	"RSA", "DSA", "ECDH", "X25519", "Ed25519", "Edwards25519",
	"HashDRBG", "HmacDRBG", "NaCl", "JSONCanon",
}

var wantThorough = map[string]bool{
	"SHA2": true, "PBKDF2": true, "Scrypt": true, "RSA": true, "DSA": true,
}

func TestCatalogOrderAndKinds(t *testing.T) {
	c := NewCatalog()
	require.Equal(t, wantOrder, c.Names())
	for _, e := range c.All() {
		want := catalog.KindSimple
		if wantThorough[e.Name()] {
			want = catalog.KindThorough
		}
		require.Equal(t, want, e.Kind(), e.Name())
	}
}

func TestEveryValidatorPasses(t *testing.T) {
	for _, e := range NewCatalog().All() {
		t.Run(e.Name(), func(t *testing.T) {
			ok, err := e.Run(false)
			require.NoError(t, err)
			require.True(t, ok)
		})
	}
}

func TestThoroughValidatorsPass(t *testing.T) {
	if testing.Short() {
		t.Skip("thorough vectors are slow")
	}
	for _, e := range NewCatalog().All() {
		if e.Kind() != catalog.KindThorough {
			continue
		}
		t.Run(e.Name(), func(t *testing.T) {
			ok, err := e.Run(true)
			require.NoError(t, err)
			require.True(t, ok)
		})
	}
}

func TestDefaultCatalogRunsClean(t *testing.T) {
	r, err := runner.New(NewCatalog(), runner.Options{})
	require.NoError(t, err)
	s := r.RunAll(context.Background(), false)
	require.True(t, s.Aggregate, "failures: %+v", s.Failures())
	require.Len(t, s.Results, len(wantOrder))
}

func TestExpectHexReportsMismatch(t *testing.T) {
	err := expectHex("vector", []byte{0x01, 0x02}, "0103")
	require.True(t, valerr.Is(err, valerr.ValidatorFailure), "got %v", err)
	require.Contains(t, err.Error(), "got 0102, want 0103")

	err = expectHex("vector", nil, "zz")
	require.True(t, valerr.Is(err, valerr.MalformedInput), "got %v", err)
}

func TestCheckAdapter(t *testing.T) {
	e := check("adapter", func() error { return failf("x", "broken") })
	ok, err := e.Run(false)
	require.False(t, ok)
	require.True(t, valerr.Is(err, valerr.ValidatorFailure))

	th := thoroughCheck("adapter", func(thorough bool) error {
		if thorough {
			return nil
		}
		return failf("x", "needs thorough")
	})
	ok, err = th.Run(true)
	require.True(t, ok)
	require.NoError(t, err)
}

func TestCountRejectsBadTokens(t *testing.T) {
	n, err := count("vector count", "4096")
	require.NoError(t, err)
	require.Equal(t, 4096, n)

	_, err = count("vector count", "-1")
	require.True(t, valerr.Is(err, valerr.NegativeValue), "got %v", err)
	_, err = count("vector count", "12 ")
	require.True(t, valerr.Is(err, valerr.MalformedInput), "got %v", err)
}

func TestHMACDRBGIsDeterministic(t *testing.T) {
	a := newHMACDRBG([]byte("entropy-entropy-entropy-entropy!"), []byte("nonce-nonce-nonc"), []byte("pers"))
	b := newHMACDRBG([]byte("entropy-entropy-entropy-entropy!"), []byte("nonce-nonce-nonc"), []byte("pers"))
	for _, n := range []int{0, 1, 31, 32, 33, 500} {
		x, err := a.Generate(n)
		require.NoError(t, err)
		y, err := b.Generate(n)
		require.NoError(t, err)
		require.Len(t, x, n)
		require.Equal(t, x, y)
	}

	c := newHMACDRBG([]byte("entropy-entropy-entropy-entropy!"), []byte("nonce-nonce-nonc"), []byte("other"))
	x, err := a.Generate(32)
	require.NoError(t, err)
	z, err := c.Generate(32)
	require.NoError(t, err)
	require.NotEqual(t, x, z)

	_, err = a.Generate(-1)
	require.True(t, valerr.Is(err, valerr.OutOfRange), "got %v", err)
}

func TestHashDRBG(t *testing.T) {
	a := newHashDRBG([]byte("entropy-entropy-entropy-entropy!"), []byte("nonce-nonce-nonc"), []byte("pers"))
	b := newHashDRBG([]byte("entropy-entropy-entropy-entropy!"), []byte("nonce-nonce-nonc"), []byte("pers"))
	for _, n := range []int{0, 1, 31, 32, 33, 500} {
		x, err := a.Generate(n)
		require.NoError(t, err)
		y, err := b.Generate(n)
		require.NoError(t, err)
		require.Len(t, x, n)
		require.Equal(t, x, y)
	}
	require.Len(t, a.v, hashSeedLen)
	require.Equal(t, uint64(7), a.reseedCounter)

	a.reseed([]byte("fresh entropy"), []byte("additional"))
	require.Equal(t, uint64(1), a.reseedCounter)
	x, err := a.Generate(32)
	require.NoError(t, err)
	y, err := b.Generate(32)
	require.NoError(t, err)
	require.NotEqual(t, x, y)

	_, err = a.Generate(maxDRBGRequest + 1)
	require.True(t, valerr.Is(err, valerr.OutOfRange), "got %v", err)
}

func TestHashDFLength(t *testing.T) {
	for _, n := range []int{1, 32, 33, hashSeedLen, 111} {
		require.Len(t, hashDF(n, []byte("input")), n)
	}
	first := sha256.Sum256(append([]byte{0x01, 0x00, 0x00, 0x00, 0x80}, "input"...))
	require.Equal(t, first[:16], hashDF(16, []byte("input")))
}

func TestAddBECarries(t *testing.T) {
	x := []byte{0x00, 0xff, 0xff}
	addBE(x, []byte{0x01})
	require.Equal(t, []byte{0x01, 0x00, 0x00}, x)

	x = []byte{0xff, 0xff}
	addBE(x, []byte{0xff, 0xff})
	require.Equal(t, []byte{0xff, 0xfe}, x)

	x = []byte{0x12, 0x34, 0x56}
	require.Equal(t, addMod440(x, []byte{0xab, 0xcd}), func() []byte {
		v := make([]byte, hashSeedLen)
		copy(v[hashSeedLen-3:], x)
		addBE(v, []byte{0xab, 0xcd})
		return v
	}())
}

func xorCipher(m []byte) ([]byte, error) {
	out := bytes.Clone(m)
	for i := range out {
		out[i] ^= 0x5a
	}
	return out, nil
}

func TestCryptoSystemRoundTrip(t *testing.T) {
	msg := []byte("round trip message")
	key := []byte("mac key")

	// XOR with a trailing MAC: round trips and refuses tampering.
	seal := func(m []byte) ([]byte, error) {
		ct, _ := xorCipher(m)
		mac := hmac.New(sha256.New, key)
		mac.Write(ct)
		return mac.Sum(ct), nil
	}
	open := func(c []byte) ([]byte, error) {
		if len(c) < sha256.Size {
			return nil, errors.New("short")
		}
		body, tag := c[:len(c)-sha256.Size], c[len(c)-sha256.Size:]
		mac := hmac.New(sha256.New, key)
		mac.Write(body)
		if !hmac.Equal(tag, mac.Sum(nil)) {
			return nil, errors.New("bad tag")
		}
		return xorCipher(body)
	}
	require.NoError(t, cryptoSystemRoundTrip("sealed", msg, seal, open))

	err := cryptoSystemRoundTrip("unauthenticated", msg, xorCipher, xorCipher)
	require.True(t, valerr.Is(err, valerr.ValidatorFailure), "got %v", err)
	require.Contains(t, err.Error(), "modified ciphertext decrypted")

	identity := func(m []byte) ([]byte, error) { return bytes.Clone(m), nil }
	err = cryptoSystemRoundTrip("identity", msg, identity, identity)
	require.Contains(t, err.Error(), "does not hide the message")

	lossy := func(c []byte) ([]byte, error) { p, _ := open(c); return p[1:], nil }
	err = cryptoSystemRoundTrip("lossy", msg, seal, lossy)
	require.True(t, valerr.Is(err, valerr.ValidatorFailure), "got %v", err)
}

func TestSignatureRoundTrip(t *testing.T) {
	key := []byte("signing key")
	sign := func(m []byte) ([]byte, error) {
		mac := hmac.New(sha256.New, key)
		mac.Write(m)
		return mac.Sum(nil), nil
	}
	verify := func(m, sig []byte) bool {
		want, _ := sign(m)
		return hmac.Equal(sig, want)
	}

	for _, msg := range [][]byte{nil, []byte("signed message")} {
		sig, err := signatureRoundTrip("hmac", msg, sign, verify)
		require.NoError(t, err)
		want, _ := sign(msg)
		require.Equal(t, want, sig)
	}

	acceptsAll := func([]byte, []byte) bool { return true }
	_, err := signatureRoundTrip("accepts all", []byte("m"), sign, acceptsAll)
	require.Contains(t, err.Error(), "different message")

	ignoresSig := func(m, _ []byte) bool { return bytes.Equal(m, []byte("m")) }
	_, err = signatureRoundTrip("ignores signature", []byte("m"), sign, ignoresSig)
	require.Contains(t, err.Error(), "modified signature accepted")

	rejectsAll := func([]byte, []byte) bool { return false }
	_, err = signatureRoundTrip("rejects all", []byte("m"), sign, rejectsAll)
	require.Contains(t, err.Error(), "valid signature rejected")

	failing := func([]byte) ([]byte, error) { return nil, errors.New("no key") }
	_, err = signatureRoundTrip("failing", []byte("m"), failing, verify)
	require.True(t, valerr.Is(err, valerr.ValidatorFailure), "got %v", err)
}

func TestCounterScript(t *testing.T) {
	require.Equal(t, "feff0001", counterScript(0xfe, 4))
	require.Empty(t, counterScript(0x00, 0))
}
