package vm

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"

	"ecmalite/pkg/errors"
)

// StrDecimalLiteral and HexIntegerLiteral from the StringNumericLiteral grammar.
var (
	strDecimalLiteral = regexp2.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)$`, regexp2.ECMAScript)
	hexIntegerLiteral = regexp2.MustCompile(`^0[xX][0-9a-fA-F]+$`, regexp2.ECMAScript)
)

func isStrWhiteSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', '\u00a0', '\u2028', '\u2029', '\ufeff':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

// stringToNumber applies ToNumber to a string.
func stringToNumber(s string) float64 {
	s = strings.TrimFunc(s, isStrWhiteSpace)
	if s == "" {
		return 0
	}
	if ok, _ := hexIntegerLiteral.MatchString(s); ok {
		var f float64
		for _, c := range s[2:] {
			d, _ := strconv.ParseUint(string(c), 16, 8)
			f = f*16 + float64(d)
		}
		return f
	}
	if ok, _ := strDecimalLiteral.MatchString(s); !ok {
		return math.NaN()
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}

// numberToString renders f the way Number::toString does for radix 10.
func numberToString(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case f == 0:
		return "0"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f < 0:
		return "-" + numberToString(-f)
	}

	// Shortest round-tripping digits and the decimal exponent n, such that
	// f = 0.digits * 10^n.
	e := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(e, "e")
	digits := strings.Replace(mant, ".", "", 1)
	x, _ := strconv.Atoi(exp)
	k, n := len(digits), x+1

	switch {
	case k <= n && n <= 21:
		return digits + strings.Repeat("0", n-k)
	case 0 < n && n <= 21:
		return digits[:n] + "." + digits[n:]
	case -6 < n && n <= 0:
		return "0." + strings.Repeat("0", -n) + digits
	}
	sign := "+"
	if n-1 < 0 {
		sign = "-"
	}
	exponent := "e" + sign + strconv.Itoa(abs(n-1))
	if k == 1 {
		return digits + exponent
	}
	return digits[:1] + "." + digits[1:] + exponent
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// ToBoolean implements the ToBoolean abstract operation.
func (r *Realm) ToBoolean(v Value) bool {
	switch v.typ {
	case TypeBoolean:
		return v.flag
	case TypeNumber:
		f := r.heap.Number(v)
		return f != 0 && !math.IsNaN(f)
	case TypeString:
		return r.heap.StringOf(v) != ""
	case TypeObject:
		return true
	}
	return false
}

// ToNumber implements the ToNumber abstract operation for primitives.
// Objects need ToPrimitive, which calls script code.
func (r *Realm) ToNumber(v Value) (float64, error) {
	switch v.typ {
	case TypeUndefined:
		return math.NaN(), nil
	case TypeNull:
		return 0, nil
	case TypeBoolean:
		if v.flag {
			return 1, nil
		}
		return 0, nil
	case TypeNumber:
		return r.heap.Number(v), nil
	case TypeString:
		return stringToNumber(r.heap.StringOf(v)), nil
	}
	return 0, errors.NotImplemented("ToNumber(%s)", v.typ)
}

// ToString implements the ToString abstract operation for primitives. The
// caller owns the result.
func (r *Realm) ToString(v Value) (Value, error) {
	h := r.heap
	switch v.typ {
	case TypeUndefined:
		return MagicUndefined.Value(), nil
	case TypeNull:
		return h.NewString("null"), nil
	case TypeBoolean:
		if v.flag {
			return h.NewString("true"), nil
		}
		return h.NewString("false"), nil
	case TypeNumber:
		return h.NewString(numberToString(h.Number(v))), nil
	case TypeString:
		return h.CopyValue(v, true), nil
	}
	return Undefined, errors.NotImplemented("ToString(%s)", v.typ)
}

// ToPropertyName converts v to a property name.
func (r *Realm) ToPropertyName(v Value) (Name, error) {
	s, err := r.ToString(v)
	if err != nil {
		return Name{}, err
	}
	name := r.heap.NameOf(s)
	r.heap.Release(s)
	return name, nil
}

// SameValue implements the SameValue algorithm.
func (r *Realm) SameValue(a, b Value) bool {
	if a.typ != b.typ {
		return false
	}
	switch a.typ {
	case TypeBoolean:
		return a.flag == b.flag
	case TypeNumber:
		x, y := r.heap.Number(a), r.heap.Number(b)
		if math.IsNaN(x) && math.IsNaN(y) {
			return true
		}
		return x == y && math.Signbit(x) == math.Signbit(y)
	case TypeString:
		return r.heap.StringOf(a) == r.heap.StringOf(b)
	case TypeObject:
		return a.AsObject() == b.AsObject()
	}
	return true
}
