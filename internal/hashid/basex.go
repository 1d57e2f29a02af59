package hashid

import (
	"math"
	"math/big"
)

// alphabet is the fixed 62-character set spec'd for Hashid tokens:
// digits, then uppercase, then lowercase. Order matters — it defines the
// numeric value of each digit position.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const base = int64(len(alphabet))

var bigBase = big.NewInt(base)

// digitsFor returns how many base-62 digits are needed to represent any
// value of byteLen bytes without loss, so encode/decode can agree on a
// fixed field width without a length prefix.
func digitsFor(byteLen int) int {
	if byteLen == 0 {
		return 0
	}
	return int(math.Ceil(float64(byteLen) * 8 / math.Log2(float64(base))))
}

// baseXEncode renders data as a fixed-width base-62 string, left-padded
// with the zero digit so every encoding of a given byteLen has the same
// length.
func baseXEncode(data []byte) string {
	width := digitsFor(len(data))
	if width == 0 {
		return ""
	}
	n := new(big.Int).SetBytes(data)
	digits := make([]byte, width)
	zero := new(big.Int)
	mod := new(big.Int)
	for i := width - 1; i >= 0; i-- {
		n.DivMod(n, bigBase, mod)
		digits[i] = alphabet[mod.Int64()]
		if n.Cmp(zero) == 0 && i > 0 {
			for j := i - 1; j >= 0; j-- {
				digits[j] = alphabet[0]
			}
			break
		}
	}
	return string(digits)
}

// baseXDecode reverses baseXEncode, reconstructing byteLen bytes exactly.
func baseXDecode(s string, byteLen int) ([]byte, error) {
	n := new(big.Int)
	for i := 0; i < len(s); i++ {
		idx := indexOf(s[i])
		if idx < 0 {
			return nil, errInvalidDigit(s[i])
		}
		n.Mul(n, bigBase)
		n.Add(n, big.NewInt(int64(idx)))
	}
	raw := n.Bytes()
	if len(raw) > byteLen {
		return nil, errOverflow
	}
	out := make([]byte, byteLen)
	copy(out[byteLen-len(raw):], raw)
	return out, nil
}

func indexOf(c byte) int {
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] == c {
			return i
		}
	}
	return -1
}
