package validators

import (
	"bytes"

	"golang.org/x/crypto/nacl/box"
	"golang.org/x/crypto/nacl/secretbox"
)

func validateNaCl() error {
	const keyAndNonces = 32 + 24 + 24
	rng, err := script("nacl", counterScript(0xa1, keyAndNonces+2*32+32))
	if err != nil {
		return err
	}
	msg := []byte("NaCl round trip message")

	var key [32]byte
	var nonce, boxNonce [24]byte
	for _, dst := range [][]byte{key[:], nonce[:], boxNonce[:]} {
		if err := drawArray(rng, dst); err != nil {
			return err
		}
	}

	sealed := secretbox.Seal(nil, msg, &nonce, &key)
	if len(sealed) != len(msg)+secretbox.Overhead {
		return failf("secretbox", "sealed %d bytes, want %d", len(sealed), len(msg)+secretbox.Overhead)
	}
	opened, ok := secretbox.Open(nil, sealed, &nonce, &key)
	if !ok || !bytes.Equal(opened, msg) {
		return failf("secretbox", "round trip failed (ok=%t)", ok)
	}
	sealed[len(sealed)-1] ^= 0x01
	if _, ok := secretbox.Open(nil, sealed, &nonce, &key); ok {
		return failf("secretbox", "opened a modified box")
	}

	alicePub, alicePriv, err := box.GenerateKey(rng)
	if err != nil {
		return failf("box", "generate alice: %v", err)
	}
	bobPub, bobPriv, err := box.GenerateKey(rng)
	if err != nil {
		return failf("box", "generate bob: %v", err)
	}

	boxed := box.Seal(nil, msg, &boxNonce, bobPub, alicePriv)
	got, ok := box.Open(nil, boxed, &boxNonce, alicePub, bobPriv)
	if !ok || !bytes.Equal(got, msg) {
		return failf("box", "round trip failed (ok=%t)", ok)
	}
	if _, ok := box.Open(nil, boxed, &boxNonce, bobPub, bobPriv); ok {
		return failf("box", "opened with the wrong sender key")
	}

	var shared1, shared2 [32]byte
	box.Precompute(&shared1, bobPub, alicePriv)
	box.Precompute(&shared2, alicePub, bobPriv)
	if shared1 != shared2 {
		return failf("box", "precomputed keys differ")
	}
	if after, ok := box.OpenAfterPrecomputation(nil, boxed, &boxNonce, &shared2); !ok || !bytes.Equal(after, msg) {
		return failf("box", "open after precomputation failed (ok=%t)", ok)
	}

	anon, err := box.SealAnonymous(nil, msg, bobPub, rng)
	if err != nil {
		return failf("box", "seal anonymous: %v", err)
	}
	plain, ok := box.OpenAnonymous(nil, anon, bobPub, bobPriv)
	if !ok || !bytes.Equal(plain, msg) {
		return failf("box", "anonymous round trip failed (ok=%t)", ok)
	}

	left, err := rng.Remaining()
	if err != nil {
		return err
	}
	if left != 0 {
		return failf("nacl", "%d scripted bytes left unused", left)
	}
	return nil
}
