package validators

import (
	"bytes"
	"crypto"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/curve25519"

	"github.com/lattice-substrate/cryptval/randsrc"
)

// RSA and ECDSA key generation draw a non-deterministic amount of
// randomness, so those round trips use the system generator.

func validateRSA(thorough bool) error {
	sizes := []string{"2048"}
	if thorough {
		sizes = append(sizes, "3072")
	}
	rng := randsrc.SystemRNG{}
	msg := []byte("RSA round trip message")

	for _, tok := range sizes {
		bitLen, err := count("rsa modulus bits", tok)
		if err != nil {
			return err
		}
		name := "rsa-" + tok
		key, err := rsa.GenerateKey(rng, bitLen)
		if err != nil {
			return failf(name, "generate key: %v", err)
		}
		if err := key.Validate(); err != nil {
			return failf(name, "validate key: %v", err)
		}
		if key.N.BitLen() != bitLen {
			return failf(name, "modulus has %d bits", key.N.BitLen())
		}

		label := []byte("cryptval")
		err = cryptoSystemRoundTrip(name+" oaep", msg,
			func(m []byte) ([]byte, error) {
				return rsa.EncryptOAEP(sha256.New(), rng, &key.PublicKey, m, label)
			},
			func(ct []byte) ([]byte, error) {
				return rsa.DecryptOAEP(sha256.New(), nil, key, ct, label)
			})
		if err != nil {
			return err
		}
		ct, err := rsa.EncryptOAEP(sha256.New(), rng, &key.PublicKey, msg, label)
		if err != nil {
			return failf(name, "oaep encrypt: %v", err)
		}
		if _, err := rsa.DecryptOAEP(sha256.New(), nil, key, ct, []byte("other")); err == nil {
			return failf(name, "oaep decrypt accepted the wrong label")
		}

		_, err = signatureRoundTrip(name+" pss", msg,
			func(m []byte) ([]byte, error) {
				d := sha256.Sum256(m)
				return rsa.SignPSS(rng, key, crypto.SHA256, d[:], nil)
			},
			func(m, sig []byte) bool {
				d := sha256.Sum256(m)
				return rsa.VerifyPSS(&key.PublicKey, crypto.SHA256, d[:], sig, nil) == nil
			})
		if err != nil {
			return err
		}

		signV15 := func(m []byte) ([]byte, error) {
			d := sha256.Sum256(m)
			return rsa.SignPKCS1v15(nil, key, crypto.SHA256, d[:])
		}
		v15, err := signatureRoundTrip(name+" pkcs1v15", msg, signV15,
			func(m, sig []byte) bool {
				d := sha256.Sum256(m)
				return rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA256, d[:], sig) == nil
			})
		if err != nil {
			return err
		}
		again, err := signV15(msg)
		if err != nil {
			return failf(name, "pkcs1v15 sign: %v", err)
		}
		if !bytes.Equal(v15, again) {
			return failf(name, "pkcs1v15 signatures are not deterministic")
		}
	}
	return nil
}

// validateDSA covers the digital signature algorithm family through ECDSA.
func validateDSA(thorough bool) error {
	type curveCase struct {
		name  string
		curve elliptic.Curve
	}
	curves := []curveCase{{"p256", elliptic.P256()}}
	if thorough {
		curves = append(curves, curveCase{"p384", elliptic.P384()}, curveCase{"p521", elliptic.P521()})
	}

	rng := randsrc.SystemRNG{}
	msg := []byte("ECDSA round trip message")
	for _, c := range curves {
		name := "ecdsa-" + c.name
		key, err := ecdsa.GenerateKey(c.curve, rng)
		if err != nil {
			return failf(name, "generate key: %v", err)
		}
		sig, err := signatureRoundTrip(name, msg,
			func(m []byte) ([]byte, error) {
				d := sha512.Sum512(m)
				return ecdsa.SignASN1(rng, key, d[:])
			},
			func(m, sig []byte) bool {
				d := sha512.Sum512(m)
				return ecdsa.VerifyASN1(&key.PublicKey, d[:], sig)
			})
		if err != nil {
			return err
		}
		peer, err := ecdsa.GenerateKey(c.curve, rng)
		if err != nil {
			return failf(name, "generate key: %v", err)
		}
		digest := sha512.Sum512(msg)
		if ecdsa.VerifyASN1(&peer.PublicKey, digest[:], sig) {
			return failf(name, "signature accepted under the wrong key")
		}
	}
	return nil
}

func validateECDH() error {
	curve := ecdh.P256()
	rng, err := script("ecdh", counterScript(0x01, 64))
	if err != nil {
		return err
	}
	a, err := drawECDHKey(curve, rng)
	if err != nil {
		return err
	}
	b, err := drawECDHKey(curve, rng)
	if err != nil {
		return err
	}

	ab, err := a.ECDH(b.PublicKey())
	if err != nil {
		return failf("ecdh p256", "agree: %v", err)
	}
	ba, err := b.ECDH(a.PublicKey())
	if err != nil {
		return failf("ecdh p256", "agree: %v", err)
	}
	if !bytes.Equal(ab, ba) {
		return failf("ecdh p256", "shared secrets differ: %x vs %x", ab, ba)
	}

	pub, err := curve.NewPublicKey(a.PublicKey().Bytes())
	if err != nil {
		return failf("ecdh p256", "reparse public key: %v", err)
	}
	if !pub.Equal(a.PublicKey()) {
		return failf("ecdh p256", "public key changed on reparse")
	}
	if _, err := curve.NewPrivateKey(make([]byte, 32)); err == nil {
		return failf("ecdh p256", "accepted the zero scalar")
	}
	return nil
}

func drawECDHKey(curve ecdh.Curve, rng randsrc.Generator) (*ecdh.PrivateKey, error) {
	b, err := rng.Generate(32)
	if err != nil {
		return nil, err
	}
	key, err := curve.NewPrivateKey(b)
	if err != nil {
		return nil, failf("ecdh", "private key: %v", err)
	}
	return key, nil
}

func validateX25519() error {
	// RFC 7748 section 5.2.
	k, err := unhex("x25519 scalar", "a546e36bf0527c9d3b16154b82465edd62144c0ac1fc5a18506a2244ba449ac4")
	if err != nil {
		return err
	}
	u, err := unhex("x25519 u", "e6db6867583030db3594c1a424b15f7c726624ec26b3353b10a903a6d0ab1c4c")
	if err != nil {
		return err
	}
	out, err := curve25519.X25519(k, u)
	if err != nil {
		return failf("x25519", "scalar mult: %v", err)
	}
	if err := expectHex("x25519 rfc7748", out, "c3da55379de9c6908e94ea4df28d084f32eccf03491c71f754b4075577a28552"); err != nil {
		return err
	}

	// RFC 7748 section 6.1.
	alice, err := unhex("x25519 alice", "77076d0a7318a57d3c16c17251b26645df4c2f87ebc0992ab177fba51db92c2a")
	if err != nil {
		return err
	}
	bob, err := unhex("x25519 bob", "5dab087e624a8a4b79e17f8b83800ee66f3bb1292618b6fd1c2f8b27ff88e0eb")
	if err != nil {
		return err
	}
	alicePub, err := curve25519.X25519(alice, curve25519.Basepoint)
	if err != nil {
		return failf("x25519", "alice public: %v", err)
	}
	if err := expectHex("x25519 alice public", alicePub, "8520f0098930a754748b7ddcb43ef75a0dbf3a0d26381af4eba4a98eaa9b4e6a"); err != nil {
		return err
	}
	bobPub, err := curve25519.X25519(bob, curve25519.Basepoint)
	if err != nil {
		return failf("x25519", "bob public: %v", err)
	}
	if err := expectHex("x25519 bob public", bobPub, "de9edb7d7b7dc1b4d35b61c2ece435373f8343c85b78674dadfc7e146f882b4f"); err != nil {
		return err
	}
	const shared = "4a5d9d5ba4ce2de1728e3bf480350f25e07e21c947d19e3376f09b3c1e161742"
	k1, err := curve25519.X25519(alice, bobPub)
	if err != nil {
		return failf("x25519", "alice agree: %v", err)
	}
	if err := expectHex("x25519 shared", k1, shared); err != nil {
		return err
	}

	// crypto/ecdh must agree with x/crypto/curve25519.
	priv, err := ecdh.X25519().NewPrivateKey(bob)
	if err != nil {
		return failf("x25519", "ecdh private key: %v", err)
	}
	peer, err := ecdh.X25519().NewPublicKey(alicePub)
	if err != nil {
		return failf("x25519", "ecdh public key: %v", err)
	}
	k2, err := priv.ECDH(peer)
	if err != nil {
		return failf("x25519", "ecdh agree: %v", err)
	}
	if err := expectHex("x25519 crypto/ecdh shared", k2, shared); err != nil {
		return err
	}

	// A low-order point yields the all-zero output, which must be refused.
	if _, err := curve25519.X25519(alice, make([]byte, 32)); err == nil {
		return failf("x25519", "accepted a low-order point")
	}
	return nil
}

func validateEd25519() error {
	// RFC 8032 section 7.1, test 1.
	seed, err := unhex("ed25519 seed", "9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60")
	if err != nil {
		return err
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub, ok := priv.Public().(ed25519.PublicKey)
	if !ok {
		return failf("ed25519", "public key has type %T", priv.Public())
	}
	if err := expectHex("ed25519 public", pub, "d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a"); err != nil {
		return err
	}
	sig, err := signatureRoundTrip("ed25519 vector", nil,
		func(m []byte) ([]byte, error) { return ed25519.Sign(priv, m), nil },
		func(m, sig []byte) bool { return ed25519.Verify(pub, m, sig) })
	if err != nil {
		return err
	}
	if err := expectHex("ed25519 signature", sig, "e5564300c360ac729086e2cc806e828a84877f1eb8e5d974d873e065224901555fb8821590a33bacc61e39701cf9b46bd25bf5f0595bbe24655141438e7a100b"); err != nil {
		return err
	}

	// Key generation from a scripted seed must match NewKeyFromSeed.
	seedScript := counterScript(0x81, ed25519.SeedSize)
	rng, err := script("ed25519 keygen", seedScript)
	if err != nil {
		return err
	}
	gpub, gpriv, err := ed25519.GenerateKey(rng)
	if err != nil {
		return failf("ed25519", "generate key: %v", err)
	}
	if err := expectHex("ed25519 generated seed", gpriv.Seed(), seedScript); err != nil {
		return err
	}
	msg := []byte("Ed25519 round trip message")
	gsig, err := signatureRoundTrip("ed25519", msg,
		func(m []byte) ([]byte, error) { return ed25519.Sign(gpriv, m), nil },
		func(m, sig []byte) bool { return ed25519.Verify(gpub, m, sig) })
	if err != nil {
		return err
	}
	if ed25519.Verify(pub, msg, gsig) {
		return failf("ed25519", "signature accepted under the wrong key")
	}
	return nil
}

func validateEdwards25519() error {
	g := edwards25519.NewGeneratorPoint()
	if err := expectHex("edwards25519 generator", g.Bytes(), "5866666666666666666666666666666666666666666666666666666666666666"); err != nil {
		return err
	}
	id := edwards25519.NewIdentityPoint()
	if err := expectHex("edwards25519 identity", id.Bytes(), "0100000000000000000000000000000000000000000000000000000000000000"); err != nil {
		return err
	}

	rng, err := script("edwards25519", counterScript(0x91, 128))
	if err != nil {
		return err
	}
	a, err := drawScalar(rng)
	if err != nil {
		return err
	}
	b, err := drawScalar(rng)
	if err != nil {
		return err
	}

	// (a+b)B = aB + bB
	sum := edwards25519.NewScalar().Add(a, b)
	lhs := new(edwards25519.Point).ScalarBaseMult(sum)
	aB := new(edwards25519.Point).ScalarBaseMult(a)
	bB := new(edwards25519.Point).ScalarBaseMult(b)
	rhs := new(edwards25519.Point).Add(aB, bB)
	if lhs.Equal(rhs) != 1 {
		return failf("edwards25519", "(a+b)B != aB + bB")
	}

	// a(bB) = (ab)B
	prod := edwards25519.NewScalar().Multiply(a, b)
	if new(edwards25519.Point).ScalarMult(a, bB).Equal(new(edwards25519.Point).ScalarBaseMult(prod)) != 1 {
		return failf("edwards25519", "a(bB) != (ab)B")
	}

	// P - P = 0 and P + 0 = P
	if new(edwards25519.Point).Subtract(aB, aB).Equal(id) != 1 {
		return failf("edwards25519", "P - P is not the identity")
	}
	if new(edwards25519.Point).Add(aB, id).Equal(aB) != 1 {
		return failf("edwards25519", "P + 0 != P")
	}

	// Encoding round trip.
	decoded, err := new(edwards25519.Point).SetBytes(aB.Bytes())
	if err != nil {
		return failf("edwards25519", "decode: %v", err)
	}
	if decoded.Equal(aB) != 1 {
		return failf("edwards25519", "point changed on encode/decode")
	}

	// Ed25519 public keys are the encoding of sB for the clamped scalar s.
	seed, err := unhex("edwards25519 seed", counterScript(0x81, ed25519.SeedSize))
	if err != nil {
		return err
	}
	h := sha512.Sum512(seed)
	s, err := edwards25519.NewScalar().SetBytesWithClamping(h[:32])
	if err != nil {
		return failf("edwards25519", "clamp: %v", err)
	}
	want, _ := ed25519.NewKeyFromSeed(seed).Public().(ed25519.PublicKey)
	got := new(edwards25519.Point).ScalarBaseMult(s).Bytes()
	if !bytes.Equal(got, want) {
		return mismatch("edwards25519 ed25519 public key", got, want)
	}
	return nil
}

func drawScalar(rng randsrc.Generator) (*edwards25519.Scalar, error) {
	wide, err := rng.Generate(64)
	if err != nil {
		return nil, err
	}
	s, err := edwards25519.NewScalar().SetUniformBytes(wide)
	if err != nil {
		return nil, failf("edwards25519", "scalar: %v", err)
	}
	return s, nil
}
