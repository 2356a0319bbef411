package validators

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/des" //nolint:gosec // validated, not used for security.

	"golang.org/x/crypto/blowfish" //nolint:staticcheck // validated, not used for security.
	"golang.org/x/crypto/cast5"    //nolint:staticcheck // validated, not used for security.
	"golang.org/x/crypto/tea"
	"golang.org/x/crypto/twofish" //nolint:staticcheck // validated, not used for security.
	"golang.org/x/crypto/xtea"    //nolint:staticcheck // validated, not used for security.

	"github.com/lattice-substrate/cryptval/randsrc"
)

type blockVector struct {
	key, plain, cipher string
}

// blockKATs checks encryption and decryption of single blocks, in place as
// well as into a separate buffer.
func blockKATs(name string, newCipher func(key []byte) (cipher.Block, error), vectors []blockVector) error {
	for _, v := range vectors {
		key, err := unhex(name, v.key)
		if err != nil {
			return err
		}
		pt, err := unhex(name, v.plain)
		if err != nil {
			return err
		}
		c, err := newCipher(key)
		if err != nil {
			return failf(name, "new cipher: %v", err)
		}
		if c.BlockSize() != len(pt) {
			return failf(name, "block size %d, vector block %d", c.BlockSize(), len(pt))
		}

		ct := make([]byte, len(pt))
		c.Encrypt(ct, pt)
		if err := expectHex(name+" encrypt", ct, v.cipher); err != nil {
			return err
		}
		back := make([]byte, len(ct))
		c.Decrypt(back, ct)
		if !bytes.Equal(back, pt) {
			return mismatch(name+" decrypt", back, pt)
		}

		inPlace := append([]byte(nil), pt...)
		c.Encrypt(inPlace, inPlace)
		if err := expectHex(name+" encrypt in place", inPlace, v.cipher); err != nil {
			return err
		}
	}
	return nil
}

// blockRoundTrip checks a cipher without published vectors: decryption
// inverts encryption and the ciphertext differs from the plaintext.
func blockRoundTrip(name string, c cipher.Block, rng randsrc.Generator, blocks int) error {
	for i := 0; i < blocks; i++ {
		pt, err := rng.Generate(c.BlockSize())
		if err != nil {
			return err
		}
		ct := make([]byte, len(pt))
		c.Encrypt(ct, pt)
		if bytes.Equal(ct, pt) {
			return failf(name, "block %d encrypted to itself", i)
		}
		back := make([]byte, len(ct))
		c.Decrypt(back, ct)
		if !bytes.Equal(back, pt) {
			return mismatch(name+" round trip", back, pt)
		}
	}
	return nil
}

func validateDES() error {
	if err := blockKATs("des", des.NewCipher, []blockVector{
		{"133457799bbcdff1", "0123456789abcdef", "85e813540f0ab405"},
	}); err != nil {
		return err
	}

	// Three equal keys make 3DES collapse to single DES.
	if err := blockKATs("3des k1=k2=k3", des.NewTripleDESCipher, []blockVector{
		{"133457799bbcdff1133457799bbcdff1133457799bbcdff1", "0123456789abcdef", "85e813540f0ab405"},
	}); err != nil {
		return err
	}

	rng, err := script("3des", counterScript(0x11, 24+4*des.BlockSize))
	if err != nil {
		return err
	}
	k3, err := rng.Generate(24)
	if err != nil {
		return err
	}
	c, err := des.NewTripleDESCipher(k3)
	if err != nil {
		return failf("3des", "new cipher: %v", err)
	}
	return blockRoundTrip("3des", c, rng, 4)
}

func validateBlowfish() error {
	return blockKATs("blowfish", func(key []byte) (cipher.Block, error) {
		return blowfish.NewCipher(key)
	}, []blockVector{
		{"0000000000000000", "0000000000000000", "4ef997456198dd78"},
	})
}

func validateCAST() error {
	// RFC 2144 appendix B.1.
	return blockKATs("cast5", func(key []byte) (cipher.Block, error) {
		return cast5.NewCipher(key)
	}, []blockVector{
		{"0123456712345678234567893456789a", "0123456789abcdef", "238b4fe5847e44b2"},
	})
}

func validateTwofish() error {
	return blockKATs("twofish", func(key []byte) (cipher.Block, error) {
		return twofish.NewCipher(key)
	}, []blockVector{
		{"00000000000000000000000000000000", "00000000000000000000000000000000", "9f589f5cf6122c32b6bfec2f2ae8c35a"},
	})
}

func validateTEA() error {
	rng, err := script("tea", counterScript(0x21, 2*16+8*8))
	if err != nil {
		return err
	}

	teaKey, err := rng.Generate(tea.KeySize)
	if err != nil {
		return err
	}
	t, err := tea.NewCipher(teaKey)
	if err != nil {
		return failf("tea", "new cipher: %v", err)
	}
	if err := blockRoundTrip("tea", t, rng, 4); err != nil {
		return err
	}

	xteaKey, err := rng.Generate(16)
	if err != nil {
		return err
	}
	x, err := xtea.NewCipher(xteaKey)
	if err != nil {
		return failf("xtea", "new cipher: %v", err)
	}
	if err := blockRoundTrip("xtea", x, rng, 4); err != nil {
		return err
	}

	if _, err := tea.NewCipher(teaKey[:15]); err == nil {
		return failf("tea", "accepted a 15-byte key")
	}
	return nil
}

func validateRijndael() error {
	// FIPS 197 appendix C.
	const pt = "00112233445566778899aabbccddeeff"
	if err := blockKATs("aes", aes.NewCipher, []blockVector{
		{"000102030405060708090a0b0c0d0e0f", pt, "69c4e0d86a7b0430d8cdb78070b4c55a"},
		{"000102030405060708090a0b0c0d0e0f1011121314151617", pt, "dda97ca4864cdfe06eaf70a0ec0d7191"},
		{"000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f", pt, "8ea2b7ca516745bfeafc49904b496089"},
	}); err != nil {
		return err
	}
	for _, n := range []int{0, 15, 17, 33} {
		if _, err := aes.NewCipher(make([]byte, n)); err == nil {
			return failf("aes", "accepted a %d-byte key", n)
		}
	}
	return nil
}
