package otpgen

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// ErrInvalidLength is returned when the requested code length is out of range.
var ErrInvalidLength = errors.New("otpgen: code length must be between 1 and 64")

// alphabet is the set of characters a code is drawn from. Codes are numeric
// so they can be typed from any keypad and read over the phone.
const alphabet = "0123456789"

// Generator produces random one-time codes of a caller-chosen length.
type Generator interface {
	// Generate returns a fresh code of the given length.
	Generate(length int) (string, error)
}

// RandReader is the source of randomness used by Random. It matches the
// signature of crypto/rand.Int so tests can substitute a deterministic source.
type RandReader func(max *big.Int) (*big.Int, error)

// Random is a Generator backed by crypto/rand.
type Random struct {
	randInt RandReader
}

// NewRandom returns a Generator drawing from crypto/rand.
func NewRandom() *Random {
	return &Random{randInt: func(max *big.Int) (*big.Int, error) {
		return rand.Int(rand.Reader, max)
	}}
}

// NewRandomWithSource returns a Generator using the provided randomness
// source. Intended for tests.
func NewRandomWithSource(src RandReader) *Random {
	return &Random{randInt: src}
}

// Generate returns a code of exactly length characters from the numeric
// alphabet. Each character is drawn independently and uniformly.
func (g *Random) Generate(length int) (string, error) {
	if length < 1 || length > 64 {
		return "", ErrInvalidLength
	}

	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := g.randInt(max)
		if err != nil {
			return "", err
		}
		buf[i] = alphabet[n.Int64()]
	}

	return string(buf), nil
}
