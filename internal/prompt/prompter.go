// Package prompt asks the operator to confirm destructive operations.
package prompt

import (
	"bufio"
	"io"
	"strings"
)

const (
	affirmativeShortResponseConstant = "y"
	affirmativeLongResponseConstant  = "yes"
)

// ConfirmationPrompter asks a yes/no question.
type ConfirmationPrompter interface {
	Confirm(prompt string) (bool, error)
}

// IOConfirmationPrompter reads confirmation responses from an io.Reader.
type IOConfirmationPrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewIOConfirmationPrompter constructs a prompter from the provided reader and writer.
func NewIOConfirmationPrompter(input io.Reader, output io.Writer) *IOConfirmationPrompter {
	return &IOConfirmationPrompter{reader: bufio.NewReader(input), writer: output}
}

// Confirm writes the prompt and interprets affirmative responses (y/yes). Anything else, including EOF, declines.
func (prompter *IOConfirmationPrompter) Confirm(prompt string) (bool, error) {
	if prompter.writer != nil {
		if _, writeError := io.WriteString(prompter.writer, prompt); writeError != nil {
			return false, writeError
		}
	}

	response, readError := prompter.reader.ReadString('\n')
	if readError != nil && readError != io.EOF {
		return false, readError
	}

	switch strings.TrimSpace(strings.ToLower(response)) {
	case affirmativeShortResponseConstant, affirmativeLongResponseConstant:
		return true, nil
	default:
		return false, nil
	}
}

// AssumeYesPrompter confirms every prompt without reading input.
type AssumeYesPrompter struct{}

// Confirm always returns true.
func (AssumeYesPrompter) Confirm(string) (bool, error) {
	return true, nil
}

// Resolve returns an AssumeYesPrompter when assumeYes is set, the provided prompter when present, and a stdin-backed prompter otherwise.
func Resolve(existing ConfirmationPrompter, assumeYes bool, input io.Reader, output io.Writer) ConfirmationPrompter {
	if assumeYes {
		return AssumeYesPrompter{}
	}
	if existing != nil {
		return existing
	}
	return NewIOConfirmationPrompter(input, output)
}
