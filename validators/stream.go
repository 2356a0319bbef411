package validators

import (
	"bytes"
	"crypto/rc4" //nolint:gosec // validated, not used for security.

	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/salsa20"
)

// sunscreen is the RFC 8439 sample plaintext.
const sunscreen = "Ladies and Gentlemen of the class of '99: If I could offer you only one tip for the future, sunscreen would be it."

func validateARC4() error {
	vectors := []struct {
		key, plain, cipher string
	}{
		{"Key", "Plaintext", "bbf316e8d940af0ad3"},
		{"Wiki", "pedia", "1021bf0420"},
		{"Secret", "Attack at dawn", "45a01f645fc35b383552544b9bf5"},
	}
	for _, v := range vectors {
		c, err := rc4.NewCipher([]byte(v.key))
		if err != nil {
			return failf("arc4", "new cipher: %v", err)
		}
		out := make([]byte, len(v.plain))
		c.XORKeyStream(out, []byte(v.plain))
		if err := expectHex("arc4 key="+v.key, out, v.cipher); err != nil {
			return err
		}

		d, err := rc4.NewCipher([]byte(v.key))
		if err != nil {
			return failf("arc4", "new cipher: %v", err)
		}
		back := make([]byte, len(out))
		d.XORKeyStream(back, out)
		if string(back) != v.plain {
			return failf("arc4 key="+v.key, "decrypted %q, want %q", back, v.plain)
		}
	}
	return nil
}

func validateSalsa() error {
	rng, err := script("salsa20", counterScript(0x31, 32+8+8+24))
	if err != nil {
		return err
	}
	var key [32]byte
	if err := drawArray(rng, key[:]); err != nil {
		return err
	}
	nonceA, err := rng.Generate(8)
	if err != nil {
		return err
	}
	nonceB, err := rng.Generate(8)
	if err != nil {
		return err
	}
	xnonce, err := rng.Generate(24)
	if err != nil {
		return err
	}

	msg := []byte(sunscreen)
	for _, nonce := range [][]byte{nonceA, xnonce} {
		ct := make([]byte, len(msg))
		salsa20.XORKeyStream(ct, msg, nonce, &key)
		if bytes.Equal(ct, msg) {
			return failf("salsa20", "keystream is zero for %d-byte nonce", len(nonce))
		}
		back := make([]byte, len(ct))
		salsa20.XORKeyStream(back, ct, nonce, &key)
		if !bytes.Equal(back, msg) {
			return mismatch("salsa20 round trip", back, msg)
		}
	}

	// Distinct nonces give distinct keystreams.
	zero := make([]byte, 64)
	ksA := make([]byte, 64)
	ksB := make([]byte, 64)
	salsa20.XORKeyStream(ksA, zero, nonceA, &key)
	salsa20.XORKeyStream(ksB, zero, nonceB, &key)
	if bytes.Equal(ksA, ksB) {
		return failf("salsa20", "nonces %x and %x share a keystream", nonceA, nonceB)
	}
	return nil
}

func validateChaCha() error {
	// RFC 8439 section 2.4.2.
	key, err := unhex("chacha20 key", "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	if err != nil {
		return err
	}
	nonce, err := unhex("chacha20 nonce", "000000000000004a00000000")
	if err != nil {
		return err
	}
	counter, err := count("chacha20 counter", "1")
	if err != nil {
		return err
	}
	const want = "6e2e359a2568f98041ba0728dd0d6981e97e7aec1d4360c20a27afccfd9fae0bf91b65c5524733ab8f593dabcd62b3571639d624e65152ab8f530c359f0861d807ca0dbf500d6a6156a38e088a22b65e52bc514d16ccf806818ce91ab77937365af90bbf74a35be6b40b8eedf2785e42874d"

	c, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		return failf("chacha20", "new cipher: %v", err)
	}
	c.SetCounter(uint32(counter))
	ct := make([]byte, len(sunscreen))
	c.XORKeyStream(ct, []byte(sunscreen))
	if err := expectHex("chacha20", ct, want); err != nil {
		return err
	}

	// Streaming in uneven pieces must match one call.
	c, err = chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		return failf("chacha20", "new cipher: %v", err)
	}
	c.SetCounter(uint32(counter))
	pieced := make([]byte, len(sunscreen))
	src := []byte(sunscreen)
	for _, cut := range [][2]int{{0, 1}, {1, 63}, {63, 64}, {64, 100}, {100, len(src)}} {
		c.XORKeyStream(pieced[cut[0]:cut[1]], src[cut[0]:cut[1]])
	}
	return expectHex("chacha20 pieced", pieced, want)
}
