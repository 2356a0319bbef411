// Package scalar converts textual test-vector fields into typed numeric
// values without overflow, truncation, or partial-parse hazards.
//
// Tokens are bounded to MaxTokenLength bytes and must be consumed in full.
// Integers are always parsed through math/big first and then narrowed to the
// requested width, so an oversized field is reported instead of silently
// wrapping.
package scalar

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"unicode/utf8"

	"golang.org/x/exp/constraints"

	"github.com/lattice-substrate/cryptval/valerr"
)

// MaxTokenLength bounds the accepted token size in bytes. It guards against
// malformed or oversized input; it is not a property of any primitive.
const MaxTokenLength = 25

// Scalar is the closed set of target kinds accepted by Parse.
type Scalar interface {
	constraints.Integer | constraints.Float
}

// Parse converts token to T. With nonNegative set, a value below zero is
// rejected with valerr.NegativeValue.
//
// Failure classes:
//   - valerr.MalformedInput: token too long, empty, whitespace, trailing
//     characters, or any other grammar violation
//   - valerr.NegativeValue: nonNegative set and the value is below zero
//   - valerr.OutOfRange: the value does not fit T
func Parse[T Scalar](token string, nonNegative bool) (T, error) {
	var zero T
	typ := reflect.TypeFor[T]()
	switch typ.Kind() {
	case reflect.Float32, reflect.Float64:
		f, err := parseFloat(token, nonNegative, typ.Bits())
		if err != nil {
			return zero, err
		}
		return T(f), nil
	default:
		n, err := ParseBig(token, nonNegative)
		if err != nil {
			return zero, err
		}
		return narrow[T](token, n, typ)
	}
}

// ParseBig parses an integer token of unbounded precision.
//
// The grammar is an optional sign followed by decimal digits, or by "0x"/"0X"
// and hexadecimal digits.
func ParseBig(token string, nonNegative bool) (*big.Int, error) {
	if err := checkLength(token); err != nil {
		return nil, err
	}
	neg, digits, base, err := splitInteger(token)
	if err != nil {
		return nil, err
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, valerr.New(valerr.MalformedInput, subject(token), "is not an integer value")
	}
	if neg {
		n.Neg(n)
	}
	if nonNegative && n.Sign() < 0 {
		return nil, valerr.New(valerr.NegativeValue, subject(token), "is negative")
	}
	return n, nil
}

func checkLength(token string) error {
	if len(token) > MaxTokenLength {
		return valerr.New(valerr.MalformedInput, subject(token),
			fmt.Sprintf("is too long (%d bytes, limit %d)", len(token), MaxTokenLength))
	}
	if token == "" {
		return valerr.New(valerr.MalformedInput, "", "empty token")
	}
	return nil
}

func splitInteger(token string) (neg bool, digits string, base int, err error) {
	i := 0
	switch token[0] {
	case '-':
		neg = true
		i++
	case '+':
		i++
	}
	base = 10
	if len(token)-i >= 2 && token[i] == '0' && (token[i+1] == 'x' || token[i+1] == 'X') {
		base = 16
		i += 2
	}
	digits = token[i:]
	if digits == "" {
		return false, "", 0, valerr.New(valerr.MalformedInput, subject(token), "has no digits")
	}
	for j := 0; j < len(digits); j++ {
		if !isDigit(digits[j], base) {
			return false, "", 0, valerr.New(valerr.MalformedInput, subject(token),
				fmt.Sprintf("is not a value: unexpected %s at offset %d", quoteAt(token, i+j), i+j))
		}
	}
	return neg, digits, base, nil
}

func isDigit(c byte, base int) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case base == 16 && c >= 'a' && c <= 'f':
		return true
	case base == 16 && c >= 'A' && c <= 'F':
		return true
	default:
		return false
	}
}

func narrow[T Scalar](token string, n *big.Int, typ reflect.Type) (T, error) {
	var zero T
	bits := uint(typ.Bits())
	switch typ.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		limit := new(big.Int).Lsh(big.NewInt(1), bits-1)
		lo := new(big.Int).Neg(limit)
		hi := limit.Sub(limit, big.NewInt(1))
		if n.Cmp(lo) < 0 || n.Cmp(hi) > 0 {
			return zero, rangeError(token, typ)
		}
		return T(n.Int64()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		hi := new(big.Int).Lsh(big.NewInt(1), bits)
		hi.Sub(hi, big.NewInt(1))
		if n.Sign() < 0 || n.Cmp(hi) > 0 {
			return zero, rangeError(token, typ)
		}
		return T(n.Uint64()), nil
	default:
		return zero, valerr.New(valerr.InternalError, typ.String(), "unsupported scalar kind")
	}
}

func rangeError(token string, typ reflect.Type) error {
	return valerr.New(valerr.OutOfRange, subject(token), fmt.Sprintf("does not fit %s", typ))
}

// parseFloat enforces a strict decimal grammar before handing the token to
// strconv, which on its own would also accept inf, nan, hex floats and
// underscores.
func parseFloat(token string, nonNegative bool, bitSize int) (float64, error) {
	if err := checkLength(token); err != nil {
		return 0, err
	}
	if err := checkFloatGrammar(token); err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(token, bitSize)
	if nonNegative && f < 0 {
		return 0, valerr.New(valerr.NegativeValue, subject(token), "is negative")
	}
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, valerr.New(valerr.OutOfRange, subject(token), fmt.Sprintf("does not fit float%d", bitSize))
		}
		return 0, valerr.Wrap(valerr.MalformedInput, subject(token), "is not a value", err)
	}
	if f == 0 && hasNonZeroMantissa(token) {
		return 0, valerr.New(valerr.OutOfRange, subject(token), fmt.Sprintf("underflows float%d to zero", bitSize))
	}
	return f, nil
}

// hasNonZeroMantissa reports whether a grammar-checked float token has a
// non-zero digit before its exponent.
func hasNonZeroMantissa(token string) bool {
	for i := 0; i < len(token); i++ {
		switch c := token[i]; {
		case c == 'e' || c == 'E':
			return false
		case c >= '1' && c <= '9':
			return true
		}
	}
	return false
}

// quoteAt quotes the rune starting at byte offset i.
func quoteAt(token string, i int) string {
	r, _ := utf8.DecodeRuneInString(token[i:])
	return strconv.QuoteRune(r)
}

func checkFloatGrammar(token string) error {
	bad := func(i int) error {
		if i >= len(token) {
			return valerr.New(valerr.MalformedInput, subject(token), "is not a value: unexpected end of token")
		}
		return valerr.New(valerr.MalformedInput, subject(token),
			fmt.Sprintf("is not a value: unexpected %s at offset %d", quoteAt(token, i), i))
	}
	i := 0
	if token[i] == '+' || token[i] == '-' {
		i++
	}
	intDigits := 0
	for i < len(token) && isDigit(token[i], 10) {
		i++
		intDigits++
	}
	fracDigits := 0
	if i < len(token) && token[i] == '.' {
		i++
		for i < len(token) && isDigit(token[i], 10) {
			i++
			fracDigits++
		}
	}
	if intDigits == 0 && fracDigits == 0 {
		return bad(i)
	}
	if i < len(token) && (token[i] == 'e' || token[i] == 'E') {
		i++
		if i < len(token) && (token[i] == '+' || token[i] == '-') {
			i++
		}
		expDigits := 0
		for i < len(token) && isDigit(token[i], 10) {
			i++
			expDigits++
		}
		if expDigits == 0 {
			return bad(i)
		}
	}
	if i != len(token) {
		return bad(i)
	}
	return nil
}

// subject keeps oversized tokens from flooding diagnostics.
func subject(token string) string {
	if len(token) <= MaxTokenLength {
		return token
	}
	return token[:MaxTokenLength] + "..."
}
