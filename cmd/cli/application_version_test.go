package cli

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplicationVersionFlagPrintsVersionAndExits(testInstance *testing.T) {
	application := NewApplication()
	application.versionResolver = func(context.Context) string {
		return "v2.0.0"
	}
	versionOutput := &bytes.Buffer{}
	application.versionOutput = versionOutput

	exitCode := -1
	sentinel := "version-exit"
	application.exitFunction = func(code int) {
		exitCode = code
		panic(sentinel)
	}

	originalArguments := os.Args
	defer func() {
		os.Args = originalArguments
	}()
	os.Args = []string{"repo-cleaner", "--version"}

	require.PanicsWithValue(testInstance, sentinel, func() {
		_ = application.Execute()
	})

	require.Equal(testInstance, "repo-cleaner version: v2.0.0\n", versionOutput.String())
	require.Equal(testInstance, 0, exitCode)
}

func TestResolveBuildVersionNeverEmpty(testInstance *testing.T) {
	require.NotEmpty(testInstance, resolveBuildVersion(context.Background()))
}
