package naming

import (
	"crypto/rand"
	"fmt"
	"io"
	"math"
	"math/big"
)

// Token alphabets. AlphabetMixed has 62 symbols, AlphabetUpper 36.
const (
	AlphabetMixed = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	AlphabetUpper = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// DefaultTokenLength gives at least 36^16 possible names.
const DefaultTokenLength = 16

// minAlphabet is the smallest alphabet a RandomToken accepts.
const minAlphabet = 36

// RandomToken names a file with a fresh random string on every call,
// unrelated to the file's content.
type RandomToken struct {
	Length   int
	Alphabet string

	rand io.Reader // crypto/rand.Reader unless replaced in tests.
}

// NewRandomToken returns a token strategy of length characters (0 selects
// [DefaultTokenLength]) over AlphabetUpper when uppercase, else AlphabetMixed.
func NewRandomToken(length int, uppercase bool) (*RandomToken, error) {
	if length < 0 {
		return nil, fmt.Errorf("token length must not be negative (got %d)", length)
	}
	if length == 0 {
		length = DefaultTokenLength
	}
	alphabet := AlphabetMixed
	if uppercase {
		alphabet = AlphabetUpper
	}
	return &RandomToken{Length: length, Alphabet: alphabet, rand: rand.Reader}, nil
}

// Regenerates is true: a collision is resolved by drawing a new token.
func (r *RandomToken) Regenerates() bool { return true }

func (r *RandomToken) String() string {
	return fmt.Sprintf("random/%d", r.Length)
}

// Weak reports whether the token space is smaller than 36^8, where repeated
// collisions in a large directory stop being negligible.
func (r *RandomToken) Weak() bool {
	return float64(r.Length)*math.Log(float64(len(r.Alphabet))) < 8*math.Log(minAlphabet)
}

// Name returns Length symbols drawn uniformly from Alphabet. path is ignored.
func (r *RandomToken) Name(string) (string, error) {
	if len(r.Alphabet) < minAlphabet {
		return "", fmt.Errorf("token alphabet has %d symbols, need at least %d", len(r.Alphabet), minAlphabet)
	}
	src := r.rand
	if src == nil {
		src = rand.Reader
	}
	size := big.NewInt(int64(len(r.Alphabet)))
	out := make([]byte, r.Length)
	for i := range out {
		n, err := rand.Int(src, size)
		if err != nil {
			return "", fmt.Errorf("draw random token: %w", err)
		}
		out[i] = r.Alphabet[n.Int64()]
	}
	return string(out), nil
}
