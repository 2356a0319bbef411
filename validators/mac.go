package validators

import (
	"crypto/hmac"
	"crypto/md5"  //nolint:gosec // validated, not used for security.
	"crypto/sha1" //nolint:gosec // validated, not used for security.
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/auth"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/poly1305" //nolint:staticcheck // validated through its public API.
	"golang.org/x/crypto/scrypt"
)

func validatePoly1305() error {
	// RFC 8439 section 2.5.2.
	keyBytes, err := unhex("poly1305 key", "85d6be7857556d337f4452fe42d506a80103808afb0db2fd4abff6af4149f51b")
	if err != nil {
		return err
	}
	var key [32]byte
	copy(key[:], keyBytes)
	msg := []byte("Cryptographic Forum Research Group")
	const wantTag = "a8061dc1305136c6c22b8baf0c0127a9"

	var tag [16]byte
	poly1305.Sum(&tag, msg, &key)
	if err := expectHex("poly1305", tag[:], wantTag); err != nil {
		return err
	}
	if !poly1305.Verify(&tag, msg, &key) {
		return failf("poly1305", "valid tag rejected")
	}

	m := poly1305.New(&key)
	m.Write(msg[:10])
	m.Write(msg[10:])
	if err := expectHex("poly1305 incremental", m.Sum(nil), wantTag); err != nil {
		return err
	}

	tag[0] ^= 1
	if poly1305.Verify(&tag, msg, &key) {
		return failf("poly1305", "forged tag accepted")
	}
	return nil
}

func validateHMAC() error {
	key := []byte("Jefe")
	data := []byte("what do ya want for nothing?")
	vectors := []struct {
		name string
		h    func() hash.Hash
		want string
	}{
		{"hmac-md5", md5.New, "750c783e6ab0b503eaa86e310a5db738"},
		{"hmac-sha1", sha1.New, "effcdf6ae5eb2fa2d27416d5f184df9c259a7c79"},
		{"hmac-sha256", sha256.New, "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843"},
		{"hmac-sha512", sha512.New, "164b7a7bfcf819e2e395fbe73b56e0a387bd64222e831fd610270cd7ea2505549758bf75c05a994a6d034f65f8f0e6fdcaeab1a34d4a6b4b636e070a38bce737"},
	}
	for _, v := range vectors {
		mac := hmac.New(v.h, key)
		mac.Write(data)
		sum := mac.Sum(nil)
		if err := expectHex(v.name, sum, v.want); err != nil {
			return err
		}
		want, err := unhex(v.name, v.want)
		if err != nil {
			return err
		}
		if !hmac.Equal(sum, want) {
			return failf(v.name, "hmac.Equal rejected identical tags")
		}
		sum[len(sum)-1] ^= 0x80
		if hmac.Equal(sum, want) {
			return failf(v.name, "hmac.Equal accepted a modified tag")
		}
	}
	return nil
}

// validateNaClAuth checks crypto_auth, which is HMAC-SHA-512 truncated to
// 256 bits.
func validateNaClAuth() error {
	rng, err := script("nacl auth", counterScript(0x40, auth.KeySize))
	if err != nil {
		return err
	}
	var key [auth.KeySize]byte
	if err := drawArray(rng, key[:]); err != nil {
		return err
	}
	msg := []byte("authenticate this message")

	tag := auth.Sum(msg, &key)
	full := hmac.New(sha512.New, key[:])
	full.Write(msg)
	if want := full.Sum(nil)[:auth.Size]; !hmac.Equal(tag[:], want) {
		return mismatch("nacl auth", tag[:], want)
	}
	if !auth.Verify(tag[:], msg, &key) {
		return failf("nacl auth", "valid tag rejected")
	}
	forged := append([]byte(nil), msg...)
	forged[0] ^= 1
	if auth.Verify(tag[:], forged, &key) {
		return failf("nacl auth", "tag accepted for a modified message")
	}
	if auth.Verify(tag[:auth.Size-1], msg, &key) {
		return failf("nacl auth", "truncated tag accepted")
	}
	return nil
}

func validatePBKDF2(thorough bool) error {
	// RFC 6070.
	vectors := []struct {
		iter, keyLen string
		want         string
		slow         bool
	}{
		{"1", "20", "0c60c80f961f0e71f3a9b524af6012062fe037a6", false},
		{"2", "20", "ea6c014dc72d6f8ccd1ed92ace1d41f0d8de8957", false},
		{"4096", "20", "4b007901b765489abead49d926f721d065a429c1", true},
	}
	for _, v := range vectors {
		if v.slow && !thorough {
			continue
		}
		iter, err := count("pbkdf2 iterations", v.iter)
		if err != nil {
			return err
		}
		keyLen, err := count("pbkdf2 key length", v.keyLen)
		if err != nil {
			return err
		}
		dk := pbkdf2.Key([]byte("password"), []byte("salt"), iter, keyLen, sha1.New)
		if err := expectHex("pbkdf2-sha1 c="+v.iter, dk, v.want); err != nil {
			return err
		}
	}
	return nil
}

func validateHKDF() error {
	// RFC 5869 test case 1.
	ikm, err := unhex("hkdf ikm", "0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b")
	if err != nil {
		return err
	}
	salt, err := unhex("hkdf salt", "000102030405060708090a0b0c")
	if err != nil {
		return err
	}
	info, err := unhex("hkdf info", "f0f1f2f3f4f5f6f7f8f9")
	if err != nil {
		return err
	}
	length, err := count("hkdf length", "42")
	if err != nil {
		return err
	}

	prk := hkdf.Extract(sha256.New, ikm, salt)
	if err := expectHex("hkdf prk", prk, "077709362c2e32df0ddc3f0dc47bba6390b6c73bb50f9c3122ec844ad7c2b3e5"); err != nil {
		return err
	}

	const wantOKM = "3cb25f25faacd57a90434f64d0362f2a2d2d0a90cf1a5a4c5db02d56ecc4c5bf34007208d5b887185865"
	okm := make([]byte, length)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, salt, info), okm); err != nil {
		return failf("hkdf", "read okm: %v", err)
	}
	if err := expectHex("hkdf okm", okm, wantOKM); err != nil {
		return err
	}

	expanded := make([]byte, length)
	if _, err := io.ReadFull(hkdf.Expand(sha256.New, prk, info), expanded); err != nil {
		return failf("hkdf", "expand: %v", err)
	}
	if err := expectHex("hkdf expand", expanded, wantOKM); err != nil {
		return err
	}

	// Output is capped at 255 hash blocks.
	limit := make([]byte, 255*sha256.Size+1)
	if _, err := io.ReadFull(hkdf.Expand(sha256.New, prk, info), limit); err == nil {
		return failf("hkdf", "expanded past 255 blocks")
	}
	return nil
}

func validateScrypt(thorough bool) error {
	// RFC 7914 section 12.
	vectors := []struct {
		password, salt string
		n, r, p        string
		want           string
		slow           bool
	}{
		{"", "", "16", "1", "1", "77d6576238657b203b19ca42c18a0497f16b4844e3074ae8dfdffa3fede21442fcd0069ded0948f8326a753a0fc81f17e8d3e0fb2e0d3628cf35e20c38d18906", false},
		{"password", "NaCl", "1024", "8", "16", "fdbabe1c9d3472007856e7190d01e9fe7c6ad7cbc8237830e77376634b3731622eaf30d92e22a3886ff109279d9830dac727afb94a83ee6d8360cbdfa2cc0640", true},
	}
	for _, v := range vectors {
		if v.slow && !thorough {
			continue
		}
		n, err := count("scrypt N", v.n)
		if err != nil {
			return err
		}
		r, err := count("scrypt r", v.r)
		if err != nil {
			return err
		}
		p, err := count("scrypt p", v.p)
		if err != nil {
			return err
		}
		dk, err := scrypt.Key([]byte(v.password), []byte(v.salt), n, r, p, 64)
		if err != nil {
			return failf("scrypt N="+v.n, "derive: %v", err)
		}
		if err := expectHex("scrypt N="+v.n, dk, v.want); err != nil {
			return err
		}
	}

	if _, err := scrypt.Key([]byte("pw"), []byte("salt"), 15, 1, 1, 32); err == nil {
		return failf("scrypt", "accepted N that is not a power of two")
	}
	return nil
}
