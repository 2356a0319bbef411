package validators

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"math/big"

	"github.com/lattice-substrate/cryptval/randsrc"
	"github.com/lattice-substrate/cryptval/valerr"
)

// maxDRBGRequest is the SP 800-90A limit of 2^19 bits per Generate call.
const maxDRBGRequest = 1 << 16

// hmacDRBG is HMAC_DRBG (SP 800-90A section 10.1.2) over SHA-256, without
// prediction resistance.
type hmacDRBG struct {
	k, v []byte
}

var _ randsrc.Generator = (*hmacDRBG)(nil)

func newHMACDRBG(entropy, nonce, personalization []byte) *hmacDRBG {
	d := &hmacDRBG{
		k: make([]byte, sha256.Size),
		v: make([]byte, sha256.Size),
	}
	for i := range d.v {
		d.v[i] = 0x01
	}
	seed := make([]byte, 0, len(entropy)+len(nonce)+len(personalization))
	seed = append(seed, entropy...)
	seed = append(seed, nonce...)
	seed = append(seed, personalization...)
	d.update(seed)
	return d
}

func (d *hmacDRBG) mac(parts ...[]byte) []byte {
	m := hmac.New(sha256.New, d.k)
	for _, p := range parts {
		m.Write(p)
	}
	return m.Sum(nil)
}

func (d *hmacDRBG) update(provided []byte) {
	d.k = d.mac(d.v, []byte{0x00}, provided)
	d.v = d.mac(d.v)
	if len(provided) == 0 {
		return
	}
	d.k = d.mac(d.v, []byte{0x01}, provided)
	d.v = d.mac(d.v)
}

func (d *hmacDRBG) reseed(entropy, additional []byte) {
	seed := make([]byte, 0, len(entropy)+len(additional))
	seed = append(seed, entropy...)
	seed = append(seed, additional...)
	d.update(seed)
}

// Generate returns n pseudorandom bytes.
func (d *hmacDRBG) Generate(n int) ([]byte, error) {
	if n < 0 || n > maxDRBGRequest {
		return nil, valerr.New(valerr.OutOfRange, "hmac drbg", "request size out of range")
	}
	out := make([]byte, 0, n+sha256.Size)
	for len(out) < n {
		d.v = d.mac(d.v)
		out = append(out, d.v...)
	}
	d.update(nil)
	return out[:n], nil
}

func validateHMACDRBG() error {
	// CAVP HMAC_DRBG SHA-256, no prediction resistance, count 0.
	entropy, err := unhex("drbg entropy", "06032cd5eed33f39265f49ecb142c511da9aff2af71203bffaf34a9ca5bd9c0d")
	if err != nil {
		return err
	}
	nonce, err := unhex("drbg nonce", "0e66f71edc43e42a45ad3c6fc6cdc4df")
	if err != nil {
		return err
	}
	reseedEntropy, err := unhex("drbg reseed entropy", "01920a4e669ed3a85ae8a33b35a74ad7fb2a6bb4cf395ce00334a9c9a5a5d552")
	if err != nil {
		return err
	}
	n, err := count("drbg returned bytes", "128")
	if err != nil {
		return err
	}

	d := newHMACDRBG(entropy, nonce, nil)
	if err := expectState("instantiate", d,
		"81e0d8830ed2d16f9b288a1cb289c5fab3f3c5c28131be7cafedcc7734604d34",
		"17dc11c2389f5eeb9d0f6a5148a1ea83ee8a828f4f140ac78272a0da435fa121"); err != nil {
		return err
	}
	d.reseed(reseedEntropy, nil)
	if err := expectState("reseed", d,
		"c246fa97570ba2b9d9e5b453fe4632366f146fbd8491146563eb463c9eafe50c",
		"ca43e73325de43c41d7e0a7a3163fb04061b09fcee4c7b8884e969e3bdfdff9a"); err != nil {
		return err
	}
	if _, err := d.Generate(n); err != nil {
		return err
	}
	if err := expectState("first generate", d,
		"df67d0816d6a8f3b73ba7638ea113bef0e33a1da451272ef1472211fb31c1cd6",
		"8be4c7f9f249d5af2c6345a8f07af14be1d7adc2b9892286ffe37760d8aa5a1b"); err != nil {
		return err
	}
	out, err := d.Generate(n)
	if err != nil {
		return err
	}
	if err := expectHex("drbg returned bits", out, "76fc79fe9b50beccc991a11b5635783a83536add03c157fb30645e611c2898bb2b1bc215000209208cd506cb28da2a51bdb03826aaf2bd2335d576d519160842e7158ad0949d1a9ec3e66ea1b1a064b005de914eac2e9d4f2d72a8616a80225422918250ff66a41bd2f864a6a38cc5b6499dc43f7f2bd09e1e0f8f5885935124"); err != nil {
		return err
	}
	if err := expectState("second generate", d,
		"80524881711e89a61e6fe7169581e50fb9ad642f3dff48fba5773352fa04cec3",
		"5ed31bc06cc4f3a97f7f34929b0558b0c34de1f4bd1cef456a8364140e2d9f41"); err != nil {
		return err
	}

	if _, err := d.Generate(maxDRBGRequest + 1); !valerr.Is(err, valerr.OutOfRange) {
		return failf("hmac drbg", "oversized request not refused: %v", err)
	}
	return nil
}

func expectState(step string, d *hmacDRBG, wantV, wantK string) error {
	if err := expectHex("drbg "+step+" V", d.v, wantV); err != nil {
		return err
	}
	return expectHex("drbg "+step+" Key", d.k, wantK)
}

// hashSeedLen is seedlen for SHA-256 Hash_DRBG: 440 bits.
const hashSeedLen = 55

// hashDRBG is Hash_DRBG (SP 800-90A section 10.1.1) over SHA-256, without
// prediction resistance or additional input on Generate.
type hashDRBG struct {
	v, c          []byte
	reseedCounter uint64
}

var _ randsrc.Generator = (*hashDRBG)(nil)

func newHashDRBG(entropy, nonce, personalization []byte) *hashDRBG {
	d := &hashDRBG{v: hashDF(hashSeedLen, entropy, nonce, personalization)}
	d.c = hashDF(hashSeedLen, []byte{0x00}, d.v)
	d.reseedCounter = 1
	return d
}

// hashDF is the Hash_df derivation function. It returns n bytes.
func hashDF(n int, parts ...[]byte) []byte {
	var hdr [5]byte
	binary.BigEndian.PutUint32(hdr[1:], uint32(n*8))
	out := make([]byte, 0, n+sha256.Size)
	for counter := byte(1); len(out) < n; counter++ {
		hdr[0] = counter
		h := sha256.New()
		h.Write(hdr[:])
		for _, p := range parts {
			h.Write(p)
		}
		out = h.Sum(out)
	}
	return out[:n]
}

func (d *hashDRBG) reseed(entropy, additional []byte) {
	d.v = hashDF(hashSeedLen, []byte{0x01}, d.v, entropy, additional)
	d.c = hashDF(hashSeedLen, []byte{0x00}, d.v)
	d.reseedCounter = 1
}

// Generate returns n pseudorandom bytes.
func (d *hashDRBG) Generate(n int) ([]byte, error) {
	if n < 0 || n > maxDRBGRequest {
		return nil, valerr.New(valerr.OutOfRange, "hash drbg", "request size out of range")
	}
	data := bytes.Clone(d.v)
	out := make([]byte, 0, n+sha256.Size)
	for len(out) < n {
		sum := sha256.Sum256(data)
		out = append(out, sum[:]...)
		addBE(data, []byte{0x01})
	}

	h := sha256.New()
	h.Write([]byte{0x03})
	h.Write(d.v)
	addBE(d.v, h.Sum(nil))
	addBE(d.v, d.c)
	var ctr [8]byte
	binary.BigEndian.PutUint64(ctr[:], d.reseedCounter)
	addBE(d.v, ctr[:])
	d.reseedCounter++
	return out[:n], nil
}

// addBE adds src into dst as big-endian integers modulo 2^(8*len(dst)).
// src must not be longer than dst.
func addBE(dst, src []byte) {
	carry := 0
	j := len(src) - 1
	for i := len(dst) - 1; i >= 0; i-- {
		sum := int(dst[i]) + carry
		if j >= 0 {
			sum += int(src[j])
			j--
		}
		dst[i] = byte(sum)
		carry = sum >> 8
	}
}

// validateHashDRBG checks the construction step by step against direct
// SHA-256 calls and modular arithmetic done with math/big.
func validateHashDRBG() error {
	rng, err := script("hash drbg", counterScript(0xa1, 32+16+8+32))
	if err != nil {
		return err
	}
	var entropy, nonce, pers, reseedEntropy [32]byte
	if err := drawArray(rng, entropy[:]); err != nil {
		return err
	}
	if err := drawArray(rng, nonce[:16]); err != nil {
		return err
	}
	if err := drawArray(rng, pers[:8]); err != nil {
		return err
	}
	if err := drawArray(rng, reseedEntropy[:]); err != nil {
		return err
	}
	seed := concat(entropy[:], nonce[:16], pers[:8])

	// Hash_df: two counter blocks, each prefixed with the 440-bit length.
	b1 := sha256.Sum256(concat([]byte{0x01, 0x00, 0x00, 0x01, 0xb8}, seed))
	b2 := sha256.Sum256(concat([]byte{0x02, 0x00, 0x00, 0x01, 0xb8}, seed))
	wantV := concat(b1[:], b2[:hashSeedLen-sha256.Size])
	if got := hashDF(hashSeedLen, seed); !bytes.Equal(got, wantV) {
		return mismatch("hash drbg hash_df", got, wantV)
	}

	d := newHashDRBG(entropy[:], nonce[:16], pers[:8])
	if !bytes.Equal(d.v, wantV) {
		return mismatch("hash drbg instantiate V", d.v, wantV)
	}
	wantC := hashDF(hashSeedLen, []byte{0x00}, wantV)
	if !bytes.Equal(d.c, wantC) {
		return mismatch("hash drbg instantiate C", d.c, wantC)
	}

	// Hashgen walks V, V+1, ... and V then advances by H + C + counter.
	v0 := bytes.Clone(d.v)
	out, err := d.Generate(2 * sha256.Size)
	if err != nil {
		return err
	}
	w0 := sha256.Sum256(v0)
	w1 := sha256.Sum256(addMod440(v0, []byte{0x01}))
	if want := concat(w0[:], w1[:]); !bytes.Equal(out, want) {
		return mismatch("hash drbg hashgen", out, want)
	}
	h := sha256.Sum256(concat([]byte{0x03}, v0))
	if want := addMod440(v0, h[:], d.c, []byte{0x01}); !bytes.Equal(d.v, want) {
		return mismatch("hash drbg state update", d.v, want)
	}
	if d.reseedCounter != 2 {
		return failf("hash drbg", "reseed counter is %d after one generate, want 2", d.reseedCounter)
	}

	// The all-ones state wraps to zero.
	wrap := bytes.Repeat([]byte{0xff}, hashSeedLen)
	addBE(wrap, []byte{0x01})
	if !bytes.Equal(wrap, make([]byte, hashSeedLen)) {
		return failf("hash drbg", "state addition does not wrap modulo 2^440: %x", wrap)
	}

	twin := newHashDRBG(entropy[:], nonce[:16], pers[:8])
	again, err := twin.Generate(2 * sha256.Size)
	if err != nil {
		return err
	}
	if !bytes.Equal(out, again) {
		return failf("hash drbg", "same inputs produced different output")
	}

	other := newHashDRBG(entropy[:], nonce[:16], []byte("other"))
	diff, err := other.Generate(2 * sha256.Size)
	if err != nil {
		return err
	}
	if bytes.Equal(out, diff) {
		return failf("hash drbg", "personalization string did not change output")
	}

	twin.reseed(reseedEntropy[:], nil)
	if want := hashDF(hashSeedLen, []byte{0x01}, d.v, reseedEntropy[:]); !bytes.Equal(twin.v, want) {
		return mismatch("hash drbg reseed V", twin.v, want)
	}
	if twin.reseedCounter != 1 {
		return failf("hash drbg", "reseed counter is %d after reseed, want 1", twin.reseedCounter)
	}
	next, err := d.Generate(sha256.Size)
	if err != nil {
		return err
	}
	reseeded, err := twin.Generate(sha256.Size)
	if err != nil {
		return err
	}
	if bytes.Equal(next, reseeded) {
		return failf("hash drbg", "reseed did not change output")
	}

	if _, err := d.Generate(maxDRBGRequest + 1); !valerr.Is(err, valerr.OutOfRange) {
		return failf("hash drbg", "oversized request not refused: %v", err)
	}
	if _, err := d.Generate(-1); !valerr.Is(err, valerr.OutOfRange) {
		return failf("hash drbg", "negative request not refused: %v", err)
	}
	return nil
}

// addMod440 sums big-endian integers modulo 2^440 using math/big.
func addMod440(parts ...[]byte) []byte {
	mod := new(big.Int).Lsh(big.NewInt(1), 8*hashSeedLen)
	sum := new(big.Int)
	for _, p := range parts {
		sum.Add(sum, new(big.Int).SetBytes(p))
	}
	return sum.Mod(sum, mod).FillBytes(make([]byte, hashSeedLen))
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
