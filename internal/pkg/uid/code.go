package uid

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

// NumericCode draws uniformly random decimal codes from a closed range.
type NumericCode struct {
	min  int64
	span *big.Int
}

// NewNumericCode returns a generator for six digit one-time codes.
func NewNumericCode() *NumericCode {
	return NewNumericCodeRange(100000, 999999)
}

func NewNumericCodeRange(minimum, maximum int64) *NumericCode {
	if maximum < minimum {
		minimum, maximum = maximum, minimum
	}
	return &NumericCode{min: minimum, span: big.NewInt(maximum - minimum + 1)}
}

func (c *NumericCode) Generate() string {
	n, err := rand.Int(rand.Reader, c.span)
	if err != nil {
		// crypto/rand.Reader does not fail on supported platforms
		panic(err)
	}
	return strconv.FormatInt(c.min+n.Int64(), 10)
}
