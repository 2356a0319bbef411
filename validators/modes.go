package validators

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/xts"

	"github.com/lattice-substrate/cryptval/scalar"
)

func validateCipherModes() error {
	// NIST SP 800-38A, F.2.1 and F.5.1.
	key, err := unhex("modes key", "2b7e151628aed2a6abf7158809cf4f3c")
	if err != nil {
		return err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return failf("modes", "new cipher: %v", err)
	}
	pt, err := unhex("modes plaintext", "6bc1bee22e409f96e93d7e117393172a")
	if err != nil {
		return err
	}
	cbcIV, err := unhex("cbc iv", "000102030405060708090a0b0c0d0e0f")
	if err != nil {
		return err
	}
	ctrIV, err := unhex("ctr iv", "f0f1f2f3f4f5f6f7f8f9fafbfcfdfeff")
	if err != nil {
		return err
	}

	ct := make([]byte, len(pt))
	cipher.NewCBCEncrypter(block, cbcIV).CryptBlocks(ct, pt)
	if err := expectHex("cbc", ct, "7649abac8119b246cee98e9b12e9197d"); err != nil {
		return err
	}
	cipher.NewCTR(block, ctrIV).XORKeyStream(ct, pt)
	if err := expectHex("ctr", ct, "874d6191b620e3261bef6864990db6ce"); err != nil {
		return err
	}

	// Multi-block round trips with a scripted IV and message.
	rng, err := script("modes", counterScript(0x51, aes.BlockSize+4*aes.BlockSize))
	if err != nil {
		return err
	}
	iv, err := rng.Generate(aes.BlockSize)
	if err != nil {
		return err
	}
	msg, err := rng.Generate(4 * aes.BlockSize)
	if err != nil {
		return err
	}

	modes := []struct {
		name string
		enc  func(dst, src []byte)
		dec  func(dst, src []byte)
	}{
		{"cbc", cipher.NewCBCEncrypter(block, iv).CryptBlocks, cipher.NewCBCDecrypter(block, iv).CryptBlocks},
		{"cfb", cipher.NewCFBEncrypter(block, iv).XORKeyStream, cipher.NewCFBDecrypter(block, iv).XORKeyStream}, //nolint:staticcheck // validated, not used for security.
		{"ctr", cipher.NewCTR(block, iv).XORKeyStream, cipher.NewCTR(block, iv).XORKeyStream},
		{"ofb", cipher.NewOFB(block, iv).XORKeyStream, cipher.NewOFB(block, iv).XORKeyStream}, //nolint:staticcheck // validated, not used for security.
	}
	for _, m := range modes {
		out := make([]byte, len(msg))
		m.enc(out, msg)
		if bytes.Equal(out, msg) {
			return failf(m.name, "ciphertext equals plaintext")
		}
		back := make([]byte, len(out))
		m.dec(back, out)
		if !bytes.Equal(back, msg) {
			return mismatch(m.name+" round trip", back, msg)
		}
	}
	return nil
}

func validateXTS() error {
	// IEEE 1619 vector 1.
	c, err := xts.NewCipher(aes.NewCipher, make([]byte, 32))
	if err != nil {
		return failf("xts", "new cipher: %v", err)
	}
	zero := make([]byte, 32)
	ct := make([]byte, 32)
	c.Encrypt(ct, zero, 0)
	if err := expectHex("xts vector 1", ct, "917cf69ebd68b2ec9b9fe9a3eadda692cd43d2f59598ed858c02c2652fbf922e"); err != nil {
		return err
	}

	rng, err := script("xts", counterScript(0x61, 32+64))
	if err != nil {
		return err
	}
	key, err := rng.Generate(32)
	if err != nil {
		return err
	}
	sector, err := rng.Generate(64)
	if err != nil {
		return err
	}
	c, err = xts.NewCipher(aes.NewCipher, key)
	if err != nil {
		return failf("xts", "new cipher: %v", err)
	}

	seen := make(map[string]string)
	for _, tok := range []string{"0", "1", "2", "0xffffffffffffffff"} {
		n, err := scalar.Parse[uint64](tok, true)
		if err != nil {
			return err
		}
		out := make([]byte, len(sector))
		c.Encrypt(out, sector, n)
		if prev, ok := seen[string(out)]; ok {
			return failf("xts", "sectors %s and %s encrypt identically", prev, tok)
		}
		seen[string(out)] = tok
		back := make([]byte, len(out))
		c.Decrypt(back, out, n)
		if !bytes.Equal(back, sector) {
			return mismatch("xts sector "+tok, back, sector)
		}
	}
	return nil
}

type aeadVector struct {
	key, nonce, aad, plain, cipher string
}

// aeadKATs checks Seal against the vector, Open of the result, and that a
// flipped bit in the ciphertext, tag, or additional data is rejected.
func aeadKATs(name string, newAEAD func(key []byte) (cipher.AEAD, error), vectors []aeadVector) error {
	for i, v := range vectors {
		fields := make([][]byte, 4)
		for j, s := range []string{v.key, v.nonce, v.aad, v.plain} {
			b, err := unhex(name, s)
			if err != nil {
				return err
			}
			fields[j] = b
		}
		key, nonce, aad, pt := fields[0], fields[1], fields[2], fields[3]

		a, err := newAEAD(key)
		if err != nil {
			return failf(name, "new aead: %v", err)
		}
		sealed := a.Seal(nil, nonce, pt, aad)
		if err := expectHex(name+" seal", sealed, v.cipher); err != nil {
			return err
		}
		opened, err := a.Open(nil, nonce, sealed, aad)
		if err != nil {
			return failf(name, "vector %d: open: %v", i, err)
		}
		if !bytes.Equal(opened, pt) {
			return mismatch(name+" open", opened, pt)
		}

		for _, pos := range []int{0, len(sealed) - 1} {
			tampered := append([]byte(nil), sealed...)
			tampered[pos] ^= 0x01
			if _, err := a.Open(nil, nonce, tampered, aad); err == nil {
				return failf(name, "vector %d: accepted ciphertext with byte %d flipped", i, pos)
			}
		}
		badAAD := append(append([]byte(nil), aad...), 0x00)
		if _, err := a.Open(nil, nonce, sealed, badAAD); err == nil {
			return failf(name, "vector %d: accepted modified additional data", i)
		}
	}
	return nil
}

func validateGCM() error {
	// McGrew and Viega test cases 1 and 2.
	return aeadKATs("aes-gcm", func(key []byte) (cipher.AEAD, error) {
		b, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		return cipher.NewGCM(b)
	}, []aeadVector{
		{
			key:    "00000000000000000000000000000000",
			nonce:  "000000000000000000000000",
			cipher: "58e2fccefa7e3061367f1d57a4e7455a",
		},
		{
			key:    "00000000000000000000000000000000",
			nonce:  "000000000000000000000000",
			plain:  "00000000000000000000000000000000",
			cipher: "0388dace60b6a392f328c2b971b2fe78" + "ab6e47d42cec13bdf53a67b21257bddf",
		},
	})
}

func validateChaCha20Poly1305() error {
	// RFC 8439 section 2.8.2.
	if err := aeadKATs("chacha20poly1305", chacha20poly1305.New, []aeadVector{
		{
			key:   "808182838485868788898a8b8c8d8e8f909192939495969798999a9b9c9d9e9f",
			nonce: "070000004041424344454647",
			aad:   "50515253c0c1c2c3c4c5c6c7",
			plain: hex.EncodeToString([]byte(sunscreen)),
			cipher: "d31a8d34648e60db7b86afbc53ef7ec2a4aded51296e08fea9e2b5a736ee62d63dbea45e8ca9671282fafb69da92728b1a71de0a9e060b2905d6a5b67ecd3b3692ddbd7f2d778b8c9803aee328091b58fab324e4fad675945585808b4831d7bc3ff4def08e4b7a9de576d26586cec64b6116" +
				"1ae10b594f09e26a7e902ecbd0600691",
		},
	}); err != nil {
		return err
	}

	rng, err := script("xchacha20poly1305", counterScript(0x71, chacha20poly1305.KeySize+chacha20poly1305.NonceSizeX))
	if err != nil {
		return err
	}
	key, err := rng.Generate(chacha20poly1305.KeySize)
	if err != nil {
		return err
	}
	nonce, err := rng.Generate(chacha20poly1305.NonceSizeX)
	if err != nil {
		return err
	}
	x, err := chacha20poly1305.NewX(key)
	if err != nil {
		return failf("xchacha20poly1305", "new aead: %v", err)
	}
	sealed := x.Seal(nil, nonce, []byte(sunscreen), nil)
	opened, err := x.Open(nil, nonce, sealed, nil)
	if err != nil {
		return failf("xchacha20poly1305", "open: %v", err)
	}
	if string(opened) != sunscreen {
		return failf("xchacha20poly1305", "round trip returned %q", opened)
	}
	return nil
}
