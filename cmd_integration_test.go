package main

import (
	"context"
	"flag"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/google/subcommands"
)

// captureStdout redirects os.Stdout for the duration of fn and returns
// everything written to it. The CLI commands write straight to os.Stdout
// rather than an injected writer, so tests capture at the file-descriptor
// level instead.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)

	original := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = original }()

	fn()

	require.NoError(t, w.Close())
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}

func writeTempSource(t *testing.T, contents string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "*.phase")
	require.NoError(t, err)
	_, err = f.WriteString(contents)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

func execWithArgs(cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(fs)
	_ = fs.Parse(args)
	return cmd.Execute(context.Background(), fs)
}

func TestRunCmdHelloWorld(t *testing.T) {
	path := writeTempSource(t, `entry { out("hi"); }`)

	var status subcommands.ExitStatus
	out := captureStdout(t, func() {
		status = execWithArgs(&runCmd{}, path)
	})

	require.Equal(t, subcommands.ExitSuccess, status)
	require.Equal(t, "hi\n", out)
}

func TestRunCmdMissingArgument(t *testing.T) {
	status := execWithArgs(&runCmd{})
	require.Equal(t, subcommands.ExitUsageError, status)
}

func TestRunCmdMissingFile(t *testing.T) {
	status := execWithArgs(&runCmd{}, "/no/such/file.phase")
	require.Equal(t, subcommands.ExitFailure, status)
}

func TestRunCmdDiagnosticExitsFailure(t *testing.T) {
	path := writeTempSource(t, `entry { out(1 / 0); }`)
	status := execWithArgs(&runCmd{}, path)
	require.Equal(t, subcommands.ExitFailure, status)
}

func TestEmitCmdDisassemblesProgram(t *testing.T) {
	path := writeTempSource(t, `entry { out(1 + 2); }`)

	var status subcommands.ExitStatus
	out := captureStdout(t, func() {
		status = execWithArgs(&emitCmd{}, path)
	})

	require.Equal(t, subcommands.ExitSuccess, status)
	require.True(t, strings.Contains(out, "PUSH_CONST"))
	require.True(t, strings.Contains(out, "HALT"))
}
