// Package num compares JSON numbers without losing precision.
package num

import (
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Num is an exact rational, a rational scaled by a decimal exponent too large
// to expand, or a signed infinity.
type Num struct {
	r   *big.Rat
	exp int64 // decimal scale of r, zero unless |exp| > maxExponent
	inf int   // -1, 0, +1
}

// maxExponent bounds decimal exponents expanded into rationals. Larger
// exponents keep the mantissa and the exponent apart.
const maxExponent = 4096

// maxScale clamps exponents that do not fit in an int64.
const maxScale = 1 << 60

// Of converts a JSON number value. ok is false for non-numbers and NaN.
func Of(v any) (Num, bool) {
	switch t := v.(type) {
	case json.Number:
		return Parse(string(t))
	case float64:
		return FromFloat(t)
	case float32:
		return FromFloat(float64(t))
	case int:
		return Num{r: new(big.Rat).SetInt64(int64(t))}, true
	case int64:
		return Num{r: new(big.Rat).SetInt64(t)}, true
	case int32:
		return Num{r: new(big.Rat).SetInt64(int64(t))}, true
	case uint64:
		return Num{r: new(big.Rat).SetInt(new(big.Int).SetUint64(t))}, true
	case *big.Int:
		return Num{r: new(big.Rat).SetInt(t)}, true
	case *big.Rat:
		return Num{r: t}, true
	}
	return Num{}, false
}

// IsNumber reports whether v is a JSON number value.
func IsNumber(v any) bool {
	_, ok := Of(v)
	return ok
}

// Parse reads the decimal text of a JSON number. Numbers whose exponent is
// out of the expanded range stay exact and ordered, so 1e-5000 is positive
// and 1e5000 is finite.
func Parse(s string) (Num, bool) {
	i := strings.IndexAny(s, "eE")
	if i < 0 {
		r, ok := new(big.Rat).SetString(s)
		if !ok {
			return Num{}, false
		}
		return Num{r: r}, true
	}
	exp, err := strconv.ParseInt(strings.TrimPrefix(s[i+1:], "+"), 10, 64)
	if err != nil {
		if !errors.Is(err, strconv.ErrRange) {
			return Num{}, false
		}
		exp = maxScale
		if strings.HasPrefix(s[i+1:], "-") {
			exp = -maxScale
		}
	}
	exp = max(-maxScale, min(maxScale, exp))
	if exp >= -maxExponent && exp <= maxExponent {
		r, ok := new(big.Rat).SetString(s)
		if !ok {
			return Num{}, false
		}
		return Num{r: r}, true
	}
	m, ok := new(big.Rat).SetString(s[:i])
	if !ok {
		return Num{}, false
	}
	return scaled(m, exp), true
}

// scaled normalizes m*10^exp to an integer mantissa without trailing zeros.
func scaled(m *big.Rat, exp int64) Num {
	if m.Sign() == 0 {
		return Num{r: m}
	}
	ten := big.NewRat(10, 1)
	for !m.IsInt() {
		m.Mul(m, ten)
		exp--
	}
	n := new(big.Int).Set(m.Num())
	q, rem := new(big.Int), new(big.Int)
	for {
		q.QuoRem(n, big.NewInt(10), rem)
		if rem.Sign() != 0 {
			break
		}
		n.Set(q)
		exp++
	}
	if exp >= -maxExponent && exp <= maxExponent {
		return Num{r: shift(new(big.Rat).SetInt(n), exp)}
	}
	return Num{r: new(big.Rat).SetInt(n), exp: exp}
}

// shift returns r*10^exp.
func shift(r *big.Rat, exp int64) *big.Rat {
	if exp == 0 {
		return r
	}
	p := new(big.Rat).SetInt(pow10(abs(exp)))
	if exp > 0 {
		return new(big.Rat).Mul(r, p)
	}
	return new(big.Rat).Quo(r, p)
}

func pow10(k int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(k), nil)
}

func abs(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

// bits bounds the decimal digits of the numerator and denominator of r.
func bits(r *big.Rat) int64 {
	return int64(r.Num().BitLen() + r.Denom().BitLen())
}

// exact expands n when its scale is small enough to be worth it.
func (n Num) exact(slack int64) (*big.Rat, bool) {
	if n.exp == 0 {
		return n.r, true
	}
	if abs(n.exp) > bits(n.r)+slack {
		return nil, false
	}
	return shift(n.r, n.exp), true
}

// FromFloat converts f exactly. NaN is rejected.
func FromFloat(f float64) (Num, bool) {
	switch {
	case math.IsNaN(f):
		return Num{}, false
	case math.IsInf(f, 1):
		return Num{inf: 1}, true
	case math.IsInf(f, -1):
		return Num{inf: -1}, true
	}
	return Num{r: new(big.Rat).SetFloat64(f)}, true
}

// IsInf reports whether n is infinite.
func (n Num) IsInf() bool { return n.inf != 0 }

// Sign returns -1, 0 or +1.
func (n Num) Sign() int {
	if n.inf != 0 {
		return n.inf
	}
	return n.r.Sign()
}

// Cmp compares n and o. Infinities compare by sign.
func (n Num) Cmp(o Num) int {
	if n.inf != 0 || o.inf != 0 {
		switch {
		case n.inf == o.inf:
			return 0
		case n.inf < o.inf:
			return -1
		}
		return 1
	}
	if n.exp == o.exp {
		return n.r.Cmp(o.r)
	}
	sn, so := n.r.Sign(), o.r.Sign()
	switch {
	case sn != so:
		if sn < so {
			return -1
		}
		return 1
	case sn == 0:
		return 0
	}
	// |r| lies within 10^±bits(r), so a scale gap wider than both bounds
	// decides by magnitude alone.
	d := o.exp - n.exp
	if abs(d) > bits(n.r)+bits(o.r)+1 {
		if d > 0 {
			return -sn
		}
		return sn
	}
	if d > 0 {
		return n.r.Cmp(shift(o.r, d))
	}
	return shift(n.r, -d).Cmp(o.r)
}

// Equal reports numeric equality, so 1 and 1.0 are equal.
func (n Num) Equal(o Num) bool { return n.Cmp(o) == 0 }

// IsInteger reports whether n has no fractional part.
func (n Num) IsInteger() bool { return n.inf == 0 && isInt(n.r, n.exp) }

// isInt reports whether r*10^exp is an integer.
func isInt(r *big.Rat, exp int64) bool {
	switch {
	case exp == 0:
		return r.IsInt()
	case r.Sign() == 0:
		return true
	case exp > 0:
		d := new(big.Int).Set(r.Denom())
		twos := int64(d.TrailingZeroBits())
		d.Rsh(d, uint(twos))
		fives := int64(0)
		five, q, rem := big.NewInt(5), new(big.Int), new(big.Int)
		for {
			q.QuoRem(d, five, rem)
			if rem.Sign() != 0 {
				break
			}
			d.Set(q)
			fives++
		}
		return d.IsInt64() && d.Int64() == 1 && max(twos, fives) <= exp
	}
	if !r.IsInt() || -exp > int64(r.Num().BitLen()) {
		return false
	}
	return new(big.Int).Rem(r.Num(), pow10(-exp)).Sign() == 0
}

// MultipleOf reports whether n is an integer multiple of d. Infinite values
// are never multiples; d must be positive.
func (n Num) MultipleOf(d Num) bool {
	if n.inf != 0 || d.inf != 0 || d.r.Sign() == 0 {
		return false
	}
	q := new(big.Rat).Quo(n.r, d.r)
	return isInt(q, n.exp-d.exp)
}

// Float64 returns the nearest float64.
func (n Num) Float64() float64 {
	if n.inf != 0 {
		return math.Inf(n.inf)
	}
	r, ok := n.exact(400)
	if !ok {
		if n.exp > 0 {
			return math.Inf(n.r.Sign())
		}
		return math.Copysign(0, float64(n.r.Sign()))
	}
	f, _ := r.Float64()
	return f
}

// Int64 returns n as an int64 when it is an integer in range.
func (n Num) Int64() (int64, bool) {
	if !n.IsInteger() {
		return 0, false
	}
	r, ok := n.exact(20)
	if !ok || !r.Num().IsInt64() {
		return 0, false
	}
	return r.Num().Int64(), true
}

func (n Num) String() string {
	switch {
	case n.inf > 0:
		return "Infinity"
	case n.inf < 0:
		return "-Infinity"
	case n.exp != 0:
		return n.r.Num().String() + "e" + strconv.FormatInt(n.exp, 10)
	case n.r.IsInt():
		return n.r.Num().String()
	}
	f, exact := n.r.Float64()
	if exact {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return n.r.FloatString(20)
}
