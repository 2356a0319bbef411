package validators

import "bytes"

// cryptoSystemRoundTrip encrypts msg, checks that the ciphertext decrypts
// back to it, and that a ciphertext with one flipped bit is refused.
func cryptoSystemRoundTrip(name string, msg []byte, encrypt, decrypt func([]byte) ([]byte, error)) error {
	ct, err := encrypt(msg)
	if err != nil {
		return failf(name, "encrypt: %v", err)
	}
	if len(ct) == 0 || bytes.Equal(ct, msg) {
		return failf(name, "ciphertext does not hide the message: %x", ct)
	}
	pt, err := decrypt(ct)
	if err != nil {
		return failf(name, "decrypt: %v", err)
	}
	if !bytes.Equal(pt, msg) {
		return mismatch(name+" round trip", pt, msg)
	}
	bad := bytes.Clone(ct)
	bad[len(bad)/2] ^= 0x10
	if _, err := decrypt(bad); err == nil {
		return failf(name, "modified ciphertext decrypted")
	}
	return nil
}

// signatureRoundTrip signs msg and checks that the signature verifies and
// that a different message or a modified signature is rejected. It returns
// the signature for further checks.
func signatureRoundTrip(name string, msg []byte, sign func([]byte) ([]byte, error), verify func(msg, sig []byte) bool) ([]byte, error) {
	sig, err := sign(msg)
	if err != nil {
		return nil, failf(name, "sign: %v", err)
	}
	if len(sig) == 0 {
		return nil, failf(name, "empty signature")
	}
	if !verify(msg, sig) {
		return nil, failf(name, "valid signature rejected")
	}
	other := []byte{0}
	if len(msg) > 0 {
		other = bytes.Clone(msg)
		other[0] ^= 0x01
	}
	if verify(other, sig) {
		return nil, failf(name, "signature accepted for a different message")
	}
	bad := bytes.Clone(sig)
	bad[len(bad)/2] ^= 0x10
	if verify(msg, bad) {
		return nil, failf(name, "modified signature accepted")
	}
	return sig, nil
}
