package scanner_test

import (
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/require"
	"lukechampine.com/blake3"

	"github.com/temirov/repo-cleaner/internal/scanner"
)

func TestComputeDigestMatchesAlgorithms(testInstance *testing.T) {
	blake3Sum := blake3.Sum256([]byte("hello"))

	testCases := []struct {
		name           string
		algorithm      scanner.Algorithm
		expectedDigest scanner.Digest
	}{
		{name: "blake3", algorithm: scanner.AlgorithmBLAKE3, expectedDigest: scanner.Digest(hex.EncodeToString(blake3Sum[:]))},
		{name: "xxhash", algorithm: scanner.AlgorithmXXHash, expectedDigest: scanner.Digest(fmt.Sprintf("%016x", xxhash.Sum64String("hello")))},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			digest, bytesRead, digestError := scanner.ComputeDigest(strings.NewReader("hello"), testCase.algorithm)
			require.NoError(testInstance, digestError)
			require.Equal(testInstance, int64(5), bytesRead)
			require.Equal(testInstance, testCase.expectedDigest, digest)

			otherDigest, _, otherError := scanner.ComputeDigest(strings.NewReader("hellp"), testCase.algorithm)
			require.NoError(testInstance, otherError)
			require.NotEqual(testInstance, digest, otherDigest)
		})
	}
}

func TestParseAlgorithm(testInstance *testing.T) {
	testCases := []struct {
		name              string
		value             string
		expectedAlgorithm scanner.Algorithm
		expectError       bool
	}{
		{name: "blank_defaults", value: " ", expectedAlgorithm: scanner.AlgorithmBLAKE3},
		{name: "case_insensitive", value: "XXHash", expectedAlgorithm: scanner.AlgorithmXXHash},
		{name: "unknown", value: "sha1", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			algorithm, parseError := scanner.ParseAlgorithm(testCase.value)
			if testCase.expectError {
				require.ErrorIs(testInstance, parseError, scanner.ErrUnsupportedAlgorithm)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedAlgorithm, algorithm)
		})
	}
}
