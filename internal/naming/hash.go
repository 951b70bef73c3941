package naming

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/blake2b"
	"lukechampine.com/blake3"
)

// Algorithm names a naming algorithm as accepted on the command line.
type Algorithm string

const (
	MD5     Algorithm = "md5"
	SHA1    Algorithm = "sha1"
	SHA224  Algorithm = "sha224"
	SHA256  Algorithm = "sha256"
	SHA384  Algorithm = "sha384"
	SHA512  Algorithm = "sha512"
	BLAKE2B Algorithm = "blake2"
	BLAKE3  Algorithm = "blake3"
	Random  Algorithm = "random"
)

// DefaultAlgorithm is used when no algorithm is given.
const DefaultAlgorithm = BLAKE3

// DefaultDigestSize is the BLAKE2b/BLAKE3 output size in bytes. 16 bytes
// (32 hex characters) keeps names well inside Windows path limits.
const DefaultDigestSize = 16

// MaxBlake3Size keeps a blake3 name (two hex characters per byte) within the
// 255-byte file name limit of common filesystems.
const MaxBlake3Size = 127

// blockSize bounds memory while hashing arbitrarily large files.
const blockSize = 64 * 1024

// Algorithms lists every supported algorithm in help order.
var Algorithms = []Algorithm{MD5, SHA1, SHA224, SHA256, SHA384, SHA512, BLAKE2B, BLAKE3, Random}

// hexWidth is the full digest width in hex characters of the fixed-size algorithms.
var hexWidth = map[Algorithm]int{
	MD5:    md5.Size * 2,
	SHA1:   sha1.Size * 2,
	SHA224: sha256.Size224 * 2,
	SHA256: sha256.Size * 2,
	SHA384: sha512.Size384 * 2,
	SHA512: sha512.Size * 2,
}

// ParseAlgorithm validates s. "fuzzy" is accepted as the legacy name of
// random naming, "blake2b" as an alias of blake2. The boolean result is false
// when s was empty and the default was substituted.
func ParseAlgorithm(s string) (Algorithm, bool, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(s))); a {
	case "":
		return DefaultAlgorithm, false, nil
	case "fuzzy":
		return Random, true, nil
	case "blake2b":
		return BLAKE2B, true, nil
	case MD5, SHA1, SHA224, SHA256, SHA384, SHA512, BLAKE2B, BLAKE3, Random:
		return a, true, nil
	default:
		return "", false, fmt.Errorf("invalid hash algorithm %q (use %s)", s, joinAlgorithms())
	}
}

func joinAlgorithms() string {
	names := make([]string, len(Algorithms))
	for i, a := range Algorithms {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}

// ContentHash names a file after the hex digest of its bytes. Identical
// content always yields the identical name.
type ContentHash struct {
	Algorithm Algorithm
	// Length is the output size in bytes for BLAKE2b/BLAKE3 and the number of
	// hex characters kept for the fixed-size algorithms. 0 selects the default.
	Length    int
	Uppercase bool
}

// NewContentHash validates the parameters for alg.
func NewContentHash(alg Algorithm, length int, uppercase bool) (*ContentHash, error) {
	if length < 0 {
		return nil, fmt.Errorf("digest length must not be negative (got %d)", length)
	}
	switch alg {
	case BLAKE2B:
		if length > blake2b.Size {
			return nil, fmt.Errorf("blake2 digest size must be between 1 and %d bytes (got %d)", blake2b.Size, length)
		}
	case BLAKE3:
		if length > MaxBlake3Size {
			return nil, fmt.Errorf("blake3 output size must be between 1 and %d bytes (got %d)", MaxBlake3Size, length)
		}
	case Random, "":
		return nil, fmt.Errorf("%q is not a content hash", alg)
	default:
		width, ok := hexWidth[alg]
		if !ok {
			return nil, fmt.Errorf("unknown hash algorithm %q", alg)
		}
		if length > width {
			return nil, fmt.Errorf("%s digests are %d hex characters; cannot keep %d", alg, width, length)
		}
	}
	return &ContentHash{Algorithm: alg, Length: length, Uppercase: uppercase}, nil
}

// Regenerates is false: a content digest never changes, so collisions are
// resolved by suffixing.
func (c *ContentHash) Regenerates() bool { return false }

func (c *ContentHash) String() string {
	switch c.Algorithm {
	case BLAKE2B, BLAKE3:
		return fmt.Sprintf("%s/%d", c.Algorithm, c.digestSize())
	}
	if c.Length > 0 {
		return fmt.Sprintf("%s/%d", c.Algorithm, c.Length)
	}
	return string(c.Algorithm)
}

func (c *ContentHash) digestSize() int {
	if c.Length > 0 {
		return c.Length
	}
	return DefaultDigestSize
}

// Name hashes the file at path in fixed-size blocks and returns its hex digest.
func (c *ContentHash) Name(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnreadableFile, err)
	}
	if !fi.Mode().IsRegular() {
		return "", fmt.Errorf("%w: not a regular file: %s", ErrUnreadableFile, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnreadableFile, err)
	}
	defer f.Close()

	digest, err := c.Sum(f)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %w", ErrUnreadableFile, path, err)
	}
	return digest, nil
}

// Sum returns the formatted digest of everything read from r.
func (c *ContentHash) Sum(r io.Reader) (string, error) {
	h, err := c.newHash()
	if err != nil {
		return "", err
	}
	// The anonymous struct hides any WriterTo so reads use blockSize.
	if _, err := io.CopyBuffer(h, struct{ io.Reader }{r}, make([]byte, blockSize)); err != nil {
		return "", err
	}

	digest := hex.EncodeToString(h.Sum(nil))
	if _, fixed := hexWidth[c.Algorithm]; fixed && c.Length > 0 {
		digest = digest[:c.Length]
	}
	if c.Uppercase {
		digest = strings.ToUpper(digest)
	}
	return digest, nil
}

func (c *ContentHash) newHash() (hash.Hash, error) {
	switch c.Algorithm {
	case MD5:
		return md5.New(), nil
	case SHA1:
		return sha1.New(), nil
	case SHA224:
		return sha256.New224(), nil
	case SHA256:
		return sha256.New(), nil
	case SHA384:
		return sha512.New384(), nil
	case SHA512:
		return sha512.New(), nil
	case BLAKE2B:
		return blake2b.New(c.digestSize(), nil)
	case BLAKE3:
		// Outputs longer than 32 bytes come from the XOF stream.
		return blake3.New(c.digestSize(), nil), nil
	default:
		return nil, fmt.Errorf("unknown hash algorithm %q", c.Algorithm)
	}
}
