package scanner

import (
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strings"

	"github.com/cespare/xxhash/v2"
	"lukechampine.com/blake3"
)

const (
	blake3DigestSizeConstant             = 32
	unsupportedAlgorithmTemplateConstant = "%w: %s"
)

// Digest is the lowercase hexadecimal content hash of a file.
type Digest string

// Algorithm names a content hash supported by the scanner.
type Algorithm string

// Supported digest algorithms.
const (
	AlgorithmBLAKE3 Algorithm = Algorithm("blake3")
	AlgorithmXXHash Algorithm = Algorithm("xxhash")
)

// DefaultAlgorithm is used when no algorithm is configured.
const DefaultAlgorithm = AlgorithmBLAKE3

// SupportedAlgorithms lists the accepted algorithm names in display order.
func SupportedAlgorithms() []string {
	return []string{string(AlgorithmBLAKE3), string(AlgorithmXXHash)}
}

// ParseAlgorithm normalizes an algorithm name, defaulting blank input to DefaultAlgorithm.
func ParseAlgorithm(value string) (Algorithm, error) {
	normalizedValue := Algorithm(strings.ToLower(strings.TrimSpace(value)))
	switch normalizedValue {
	case "":
		return DefaultAlgorithm, nil
	case AlgorithmBLAKE3, AlgorithmXXHash:
		return normalizedValue, nil
	default:
		return "", fmt.Errorf(unsupportedAlgorithmTemplateConstant, ErrUnsupportedAlgorithm, value)
	}
}

func newHasher(algorithm Algorithm) (hash.Hash, error) {
	switch algorithm {
	case AlgorithmBLAKE3:
		return blake3.New(blake3DigestSizeConstant, nil), nil
	case AlgorithmXXHash:
		return xxhash.New(), nil
	default:
		return nil, fmt.Errorf(unsupportedAlgorithmTemplateConstant, ErrUnsupportedAlgorithm, algorithm)
	}
}

// ComputeDigest hashes the full content of reader and returns the digest with the number of bytes read.
func ComputeDigest(reader io.Reader, algorithm Algorithm) (Digest, int64, error) {
	hasher, hasherError := newHasher(algorithm)
	if hasherError != nil {
		return "", 0, hasherError
	}
	bytesRead, copyError := io.Copy(hasher, reader)
	if copyError != nil {
		return "", bytesRead, copyError
	}
	return Digest(hex.EncodeToString(hasher.Sum(nil))), bytesRead, nil
}
