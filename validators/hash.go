package validators

import (
	"crypto/md5"  //nolint:gosec // validated, not used for security.
	"crypto/sha1" //nolint:gosec // validated, not used for security.
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"hash/adler32"
	"hash/crc32"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/md4"       //nolint:staticcheck // validated, not used for security.
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // validated, not used for security.
	"golang.org/x/crypto/sha3"
)

type hashVector struct {
	msg    string
	digest string
}

// hashKATs checks each vector in one shot and again fed one byte at a time,
// then checks that Reset returns the hash to its initial state.
func hashKATs(name string, newHash func() hash.Hash, vectors []hashVector) error {
	for _, v := range vectors {
		h := newHash()
		h.Write([]byte(v.msg))
		if err := expectHex(name, h.Sum(nil), v.digest); err != nil {
			return err
		}

		h.Reset()
		for i := 0; i < len(v.msg); i++ {
			h.Write([]byte{v.msg[i]})
		}
		if err := expectHex(name+" incremental", h.Sum(nil), v.digest); err != nil {
			return err
		}
	}
	return nil
}

func validateCRC32() error {
	return hashKATs("crc32", func() hash.Hash { return crc32.NewIEEE() }, []hashVector{
		{"", "00000000"},
		{"123456789", "cbf43926"},
		{"The quick brown fox jumps over the lazy dog", "414fa339"},
	})
}

func validateCRC32C() error {
	table := crc32.MakeTable(crc32.Castagnoli)
	return hashKATs("crc32c", func() hash.Hash { return crc32.New(table) }, []hashVector{
		{"", "00000000"},
		{"123456789", "e3069283"},
	})
}

func validateAdler32() error {
	return hashKATs("adler32", func() hash.Hash { return adler32.New() }, []hashVector{
		{"", "00000001"},
		{"a", "00620062"},
		{"abc", "024d0127"},
		{"Wikipedia", "11e60398"},
	})
}

func validateMD4() error {
	return hashKATs("md4", md4.New, []hashVector{
		{"", "31d6cfe0d16ae931b73c59d7e0c089c0"},
		{"a", "bde52cb31de33e46245e05fbdbd6fb24"},
		{"abc", "a448017aaf21d8525fc10ae87aa6729d"},
		{"message digest", "d9130a8164549fe818874806e1c7014b"},
	})
}

func validateMD5() error {
	return hashKATs("md5", md5.New, []hashVector{
		{"", "d41d8cd98f00b204e9800998ecf8427e"},
		{"a", "0cc175b9c0f1b6a831c399e269772661"},
		{"abc", "900150983cd24fb0d6963f7d28e17f72"},
		{"message digest", "f96b697d7cb7938d525a2f31aaf161d0"},
	})
}

func validateSHA1() error {
	return hashKATs("sha1", sha1.New, []hashVector{
		{"", "da39a3ee5e6b4b0d3255bfef95601890afd80709"},
		{"abc", "a9993e364706816aba3e25717850c26c9cd0d89d"},
		{"abcdbcdecdefdefgefghfghighijhijkijkljklmklmnlmnomnopnopq", "84983e441c3bd26ebaae4aa1f95129e5e54670f1"},
	})
}

func validateSHA2(thorough bool) error {
	if err := hashKATs("sha224", sha256.New224, []hashVector{
		{"abc", "23097d223405d8228642a477bda255b32aadbce4bda0b3f7e36c9da7"},
	}); err != nil {
		return err
	}
	if err := hashKATs("sha256", sha256.New, []hashVector{
		{"", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{"abcdbcdecdefdefgefghfghighijhijkijkljklmklmnlmnomnopnopq", "248d6a61d20638b8e5c026930c3e6039a33ce45964ff2167f6ecedd419db06c1"},
	}); err != nil {
		return err
	}
	if err := hashKATs("sha384", sha512.New384, []hashVector{
		{"abc", "cb00753f45a35e8bb5a03d699ac65007272c32ab0eded1631a8b605a43ff5bed8086072ba1e7cc2358baeca134c825a7"},
	}); err != nil {
		return err
	}
	if err := hashKATs("sha512", sha512.New, []hashVector{
		{"", "cf83e1357eefb8bdf1542850d66d8007d620e4050b5715dc83f4a921d36ce9ce47d0d13c5d85f2b0ff8318d2877eec2f63b931bd47417a81a538327af927da3e"},
		{"abc", "ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f"},
	}); err != nil {
		return err
	}
	if !thorough {
		return nil
	}

	n, err := count("sha256 million", "1000000")
	if err != nil {
		return err
	}
	h := sha256.New()
	chunk := []byte(strings.Repeat("a", 1000))
	for i := 0; i < n/len(chunk); i++ {
		h.Write(chunk)
	}
	return expectHex("sha256 million a", h.Sum(nil), "cdc76e5c9914fb9281a1c7e284d73e67f1809a48a497200e046d39ccc7112cd0")
}

func validateSHA3() error {
	if err := hashKATs("sha3-256", sha3.New256, []hashVector{
		{"", "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a"},
		{"abc", "3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532"},
	}); err != nil {
		return err
	}
	if err := hashKATs("sha3-512", sha3.New512, []hashVector{
		{"abc", "b751850b1a57168a5693cd924b6b096e08f621827444f70d884f5d0240d2712e10e116e9192af3c91a7ec57647e3934057340b4cf408d5a56592f8274eec53f0"},
	}); err != nil {
		return err
	}

	n, err := count("shake128 length", "32")
	if err != nil {
		return err
	}
	out := make([]byte, n)
	sha3.ShakeSum128(out, nil)
	if err := expectHex("shake128", out, "7f9c2ba4e88f827d616045507605853ed73b8093f6efbc88eb1a6eacfa66ef26"); err != nil {
		return err
	}

	// Squeezing in pieces must match one squeeze.
	xof := sha3.NewShake128()
	pieced := make([]byte, n)
	if _, err := xof.Read(pieced[:5]); err != nil {
		return failf("shake128", "read: %v", err)
	}
	if _, err := xof.Read(pieced[5:]); err != nil {
		return failf("shake128", "read: %v", err)
	}
	return expectHex("shake128 pieced", pieced, "7f9c2ba4e88f827d616045507605853ed73b8093f6efbc88eb1a6eacfa66ef26")
}

func validateRIPEMD() error {
	return hashKATs("ripemd160", ripemd160.New, []hashVector{
		{"", "9c1185a5c5e9fc54612808977ee8f548b2258d31"},
		{"a", "0bdc9d2d256b3ee9daae347be6f4dc835a467ffe"},
		{"abc", "8eb208f7e05d987a9b044a8e98c6b087f15a0bfc"},
		{"message digest", "5d0689ef49d2fae572b881b123a85ffa21595f36"},
	})
}

func validateBLAKE2s() error {
	return hashKATs("blake2s-256", func() hash.Hash {
		h, _ := blake2s.New256(nil)
		return h
	}, []hashVector{
		{"abc", "508c5e8c327c14e2e1a72ba34eeb452f37458b209ed63a294d999b4c86675982"},
	})
}

func validateBLAKE2b() error {
	if err := hashKATs("blake2b-512", func() hash.Hash {
		h, _ := blake2b.New512(nil)
		return h
	}, []hashVector{
		{"abc", "ba80a53f981c4d0d6a2797b69f12f6e94c212f14685ac4b74b12bb6fdbffa2d17d87c5392aab792dc252d5de4533cc9518d38aa8dbf1925ab92386edd4009923"},
	}); err != nil {
		return err
	}
	sum := blake2b.Sum512([]byte("abc"))
	return expectHex("blake2b-512 sum", sum[:], "ba80a53f981c4d0d6a2797b69f12f6e94c212f14685ac4b74b12bb6fdbffa2d17d87c5392aab792dc252d5de4533cc9518d38aa8dbf1925ab92386edd4009923")
}

func validateBLAKE3() error {
	vectors := []hashVector{
		{"", "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"},
		{"abc", "6437b3ac38465133ffb63b75273a8db548c558465d79db03fd359c6cd5bd9d85"},
	}
	if err := hashKATs("blake3", func() hash.Hash { return blake3.New() }, vectors); err != nil {
		return err
	}
	for _, v := range vectors {
		sum := blake3.Sum256([]byte(v.msg))
		if err := expectHex("blake3 sum", sum[:], v.digest); err != nil {
			return err
		}
	}
	return nil
}
