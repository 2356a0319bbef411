// Package validators declares the fixed catalog of primitive validators.
//
// Each validator checks one primitive family through its public API:
// known-answer vectors, encrypt/decrypt or sign/verify round trips, and
// tamper rejection. Randomized checks draw their bytes from a FixedRNG
// seeded with a literal script, so every run is reproducible.
package validators

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/lattice-substrate/cryptval/catalog"
	"github.com/lattice-substrate/cryptval/randsrc"
	"github.com/lattice-substrate/cryptval/scalar"
	"github.com/lattice-substrate/cryptval/valerr"
)

// NewCatalog returns the default catalog in canonical run order.
func NewCatalog() *catalog.Catalog {
	c := catalog.New()
	c.MustRegister(
		check("Settings", validateSettings),
		check("OS_RNG", validateOSRNG),
		check("FixedRNG", validateFixedRNG),
		check("BaseCode", validateBaseCode),
		check("CRC32", validateCRC32),
		check("CRC32C", validateCRC32C),
		check("Adler32", validateAdler32),
		check("MD4", validateMD4),
		check("MD5", validateMD5),
		check("SHA", validateSHA1),
		thoroughCheck("SHA2", validateSHA2),
		check("SHA3", validateSHA3),
		check("RIPEMD", validateRIPEMD),
		check("BLAKE2s", validateBLAKE2s),
		check("BLAKE2b", validateBLAKE2b),
		check("BLAKE3", validateBLAKE3),
		check("Poly1305", validatePoly1305),
		check("HMAC", validateHMAC),
		check("NaClAuth", validateNaClAuth),
		thoroughCheck("PBKDF2", validatePBKDF2),
		check("HKDF", validateHKDF),
		thoroughCheck("Scrypt", validateScrypt),
		check("DES", validateDES),
		check("Blowfish", validateBlowfish),
		check("CAST", validateCAST),
		check("Twofish", validateTwofish),
		check("TEA", validateTEA),
		check("Rijndael", validateRijndael),
		check("ARC4", validateARC4),
		check("Salsa", validateSalsa),
		check("ChaCha", validateChaCha),
		check("CipherModes", validateCipherModes),
		check("XTS", validateXTS),
		check("GCM", validateGCM),
		check("ChaCha20Poly1305", validateChaCha20Poly1305),
		thoroughCheck("RSA", validateRSA),
		thoroughCheck("DSA", validateDSA),
		check("ECDH", validateECDH),
		check("X25519", validateX25519),
		check("Ed25519", validateEd25519),
		check("Edwards25519", validateEdwards25519),
		check("HashDRBG", validateHashDRBG),
		check("HmacDRBG", validateHMACDRBG),
		check("NaCl", validateNaCl),
		check("JSONCanon", validateJSONCanon),
	)
	return c
}

// check adapts an error-returning validator. A nil error is a pass; any
// error fails the entry and becomes its diagnostic.
func check(name string, fn func() error) catalog.Entry {
	return catalog.Simple(name, func() (bool, error) {
		if err := fn(); err != nil {
			return false, err
		}
		return true, nil
	})
}

func thoroughCheck(name string, fn func(thorough bool) error) catalog.Entry {
	return catalog.Thorough(name, func(thorough bool) (bool, error) {
		if err := fn(thorough); err != nil {
			return false, err
		}
		return true, nil
	})
}

func unhex(subject, s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, valerr.Wrap(valerr.MalformedInput, subject, "decode vector hex", err)
	}
	return b, nil
}

func mismatch(subject string, got, want []byte) error {
	return valerr.New(valerr.ValidatorFailure, subject, fmt.Sprintf("got %x, want %x", got, want))
}

func failf(subject, format string, args ...any) error {
	return valerr.New(valerr.ValidatorFailure, subject, fmt.Sprintf(format, args...))
}

// expectHex compares got against a hex-encoded expected value.
func expectHex(subject string, got []byte, wantHex string) error {
	want, err := unhex(subject, wantHex)
	if err != nil {
		return err
	}
	if !bytes.Equal(got, want) {
		return mismatch(subject, got, want)
	}
	return nil
}

// count parses a non-negative vector count field.
func count(subject, token string) (int, error) {
	n, err := scalar.Parse[int](token, true)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", subject, err)
	}
	return n, nil
}

// script returns a FixedRNG over a literal hex script.
func script(subject, hexScript string) (*randsrc.FixedRNG, error) {
	rng, err := randsrc.FixedRNGFromHex(hexScript)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", subject, err)
	}
	return rng, nil
}

// drawArray fills dst from rng.
func drawArray(rng randsrc.Generator, dst []byte) error {
	b, err := rng.Generate(len(dst))
	if err != nil {
		return err
	}
	copy(dst, b)
	return nil
}

// counterScript builds a deterministic script of n bytes starting at seed.
// It keeps long scripts readable where a literal hex string would not be.
func counterScript(seed byte, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(i)
	}
	return hex.EncodeToString(b)
}
