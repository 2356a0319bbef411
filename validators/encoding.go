package validators

import (
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
)

// RFC 4648 section 10.
var baseVectors = []struct {
	plain, b16, b32, b32hex, b64 string
}{
	{"", "", "", "", ""},
	{"f", "66", "MY======", "CO======", "Zg=="},
	{"fo", "666F", "MZXQ====", "CPNG====", "Zm8="},
	{"foo", "666F6F", "MZXW6===", "CPNMU===", "Zm9v"},
	{"foob", "666F6F62", "MZXW6YQ=", "CPNMUOG=", "Zm9vYg=="},
	{"fooba", "666F6F6261", "MZXW6YTB", "CPNMUOJ1", "Zm9vYmE="},
	{"foobar", "666F6F626172", "MZXW6YTBOI======", "CPNMUOJ1E8======", "Zm9vYmFy"},
}

func validateBaseCode() error {
	type codec struct {
		name   string
		encode func([]byte) string
		decode func(string) ([]byte, error)
		pick   func(i int) string
	}
	codecs := []codec{
		{
			name:   "base16",
			encode: func(b []byte) string { return strings.ToUpper(hex.EncodeToString(b)) },
			decode: hex.DecodeString,
			pick:   func(i int) string { return baseVectors[i].b16 },
		},
		{
			name:   "base32",
			encode: base32.StdEncoding.EncodeToString,
			decode: base32.StdEncoding.DecodeString,
			pick:   func(i int) string { return baseVectors[i].b32 },
		},
		{
			name:   "base32hex",
			encode: base32.HexEncoding.EncodeToString,
			decode: base32.HexEncoding.DecodeString,
			pick:   func(i int) string { return baseVectors[i].b32hex },
		},
		{
			name:   "base64",
			encode: base64.StdEncoding.EncodeToString,
			decode: base64.StdEncoding.DecodeString,
			pick:   func(i int) string { return baseVectors[i].b64 },
		},
	}

	for _, c := range codecs {
		for i, v := range baseVectors {
			want := c.pick(i)
			if got := c.encode([]byte(v.plain)); got != want {
				return failf(c.name, "encode(%q) = %q, want %q", v.plain, got, want)
			}
			got, err := c.decode(want)
			if err != nil {
				return failf(c.name, "decode(%q): %v", want, err)
			}
			if string(got) != v.plain {
				return failf(c.name, "decode(%q) = %q, want %q", want, got, v.plain)
			}
		}
	}

	// Corrupt input must be rejected, not silently skipped.
	for _, bad := range []struct {
		name   string
		decode func(string) ([]byte, error)
		input  string
	}{
		{"base16", hex.DecodeString, "6G"},
		{"base16", hex.DecodeString, "666"},
		{"base32", base32.StdEncoding.DecodeString, "MZXW6==="[:7]},
		{"base64", base64.StdEncoding.DecodeString, "Zm9v!"},
		{"base64", base64.StdEncoding.DecodeString, "Zg="},
	} {
		if _, err := bad.decode(bad.input); err == nil {
			return failf(bad.name, "decoded corrupt input %q", bad.input)
		}
	}
	return nil
}

// RFC 8785 canonical forms.
var jcsVectors = []struct {
	name, input, want string
}{
	{"member order", `{"b":2,"a":1}`, `{"a":1,"b":2}`},
	{"whitespace", "{ \"a\" : [ 1 , 2 ] ,\n\"b\" : { } }", `{"a":[1,2],"b":{}}`},
	{"numbers", `[1.0,1e30,-0,0.1,100,1E-7]`, `[1,1e+30,0,0.1,100,1e-7]`},
	{"literals", `[true,false,null]`, `[true,false,null]`},
	{"string escapes", `["\u20ac","\u000f","\/","\t"]`, "[\"\u20ac\",\"\\u000f\",\"/\",\"\\t\"]"},
	{"utf16 key order", `{"\u20ac":1,"a":2,"\r":3}`, "{\"\\r\":3,\"a\":2,\"\u20ac\":1}"},
	{"nested", `{"z":{"y":1,"x":[{"b":0,"a":0}]}}`, `{"z":{"x":[{"a":0,"b":0}],"y":1}}`},
}

func validateJSONCanon() error {
	for _, v := range jcsVectors {
		got, err := jsoncanonicalizer.Transform([]byte(v.input))
		if err != nil {
			return failf(v.name, "transform %q: %v", v.input, err)
		}
		if string(got) != v.want {
			return failf(v.name, "transform %q = %q, want %q", v.input, got, v.want)
		}
		again, err := jsoncanonicalizer.Transform(got)
		if err != nil {
			return failf(v.name, "re-transform %q: %v", got, err)
		}
		if string(again) != string(got) {
			return failf(v.name, "not idempotent: %q then %q", got, again)
		}
	}

	for _, bad := range []string{`{"a":1,}`, `[1,2`, `{"a" 1}`} {
		if _, err := jsoncanonicalizer.Transform([]byte(bad)); err == nil {
			return failf("malformed", "accepted %q", bad)
		}
	}
	return nil
}
