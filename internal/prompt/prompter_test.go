package prompt_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repo-cleaner/internal/prompt"
)

const (
	testPromptTextConstant = "Delete 2 branches? [y/N] "
	testReadFailureMessage = "read failed"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New(testReadFailureMessage)
}

func TestIOConfirmationPrompterInterpretsResponses(testInstance *testing.T) {
	testCases := []struct {
		name           string
		input          string
		expectedResult bool
	}{
		{name: "short_yes", input: "y\n", expectedResult: true},
		{name: "long_yes_uppercase", input: "  YES \n", expectedResult: true},
		{name: "no", input: "n\n", expectedResult: false},
		{name: "empty_line", input: "\n", expectedResult: false},
		{name: "eof_without_newline", input: "yes", expectedResult: true},
		{name: "eof_empty", input: "", expectedResult: false},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			outputBuffer := &bytes.Buffer{}
			prompter := prompt.NewIOConfirmationPrompter(strings.NewReader(testCase.input), outputBuffer)

			confirmed, confirmError := prompter.Confirm(testPromptTextConstant)
			require.NoError(subTest, confirmError)
			require.Equal(subTest, testCase.expectedResult, confirmed)
			require.Equal(subTest, testPromptTextConstant, outputBuffer.String())
		})
	}
}

func TestIOConfirmationPrompterPropagatesReadFailure(testInstance *testing.T) {
	prompter := prompt.NewIOConfirmationPrompter(failingReader{}, nil)
	confirmed, confirmError := prompter.Confirm(testPromptTextConstant)
	require.False(testInstance, confirmed)
	require.EqualError(testInstance, confirmError, testReadFailureMessage)
}

func TestResolvePrefersAssumeYes(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	resolved := prompt.Resolve(nil, true, strings.NewReader("n\n"), outputBuffer)
	confirmed, confirmError := resolved.Confirm(testPromptTextConstant)
	require.NoError(testInstance, confirmError)
	require.True(testInstance, confirmed)
	require.Empty(testInstance, outputBuffer.String())

	existing := prompt.NewIOConfirmationPrompter(strings.NewReader("y\n"), nil)
	require.Same(testInstance, existing, prompt.Resolve(existing, false, nil, nil))
}
