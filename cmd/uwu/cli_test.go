package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// cliRun holds the captured streams of one CLI invocation.
type cliRun struct {
	stdout string
	stderr string
	err    error
}

// newTestEnv returns an env rooted in temporary directories.
func newTestEnv(t *testing.T) *appEnv {
	t.Helper()
	env := &appEnv{baseDir: t.TempDir(), workDir: t.TempDir()}
	t.Cleanup(env.close)
	return env
}

// runCLI runs the app with args, feeding stdin and capturing output.
func runCLI(t *testing.T, env *appEnv, stdin string, args ...string) cliRun {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newCLIApp(env)
	app.Reader = strings.NewReader(stdin)
	app.Writer = &stdout
	app.ErrWriter = &stderr

	err := app.Run(append([]string{"uwu"}, args...))
	return cliRun{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// exitCode extracts the process exit code carried by err.
func exitCode(t *testing.T, err error) int {
	t.Helper()
	require.Error(t, err)
	exitErr, ok := err.(cli.ExitCoder)
	require.True(t, ok, "error %v does not carry an exit code", err)
	return exitErr.ExitCode()
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    int
		expectError bool
	}{
		{name: "valid days", input: "7d", expected: 7},
		{name: "zero days", input: "0d", expected: 0},
		{name: "large number", input: "365d", expected: 365},
		{name: "missing suffix", input: "7", expectError: true},
		{name: "wrong suffix", input: "7h", expectError: true},
		{name: "negative", input: "-1d", expectError: true},
		{name: "not a number", input: "xd", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseDuration(tt.input)
			if tt.expectError {
				if err == nil {
					t.Errorf("expected error for input %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestTrimNewline(t *testing.T) {
	assert.Equal(t, "hi", trimNewline("hi\n"))
	assert.Equal(t, "hi", trimNewline("hi\r\n"))
	assert.Equal(t, "hi\n", trimNewline("hi\n\n"))
	assert.Equal(t, "hi", trimNewline("hi"))
	assert.Equal(t, "", trimNewline(""))
}

func TestCLI_Args(t *testing.T) {
	env := newTestEnv(t)

	run := runCLI(t, env, "", "very", "nice")
	require.NoError(t, run.err)
	assert.Equal(t, "vewy nyice", run.stdout)
}

func TestCLI_Stdin(t *testing.T) {
	env := newTestEnv(t)

	run := runCLI(t, env, "Hello world!\n")
	require.NoError(t, run.err)
	assert.Equal(t, "hewwo wowwd! o.O", run.stdout)
}

func TestCLI_FeatureFlags(t *testing.T) {
	env := newTestEnv(t)

	run := runCLI(t, env, "", "--no-decoration", "Hello world!")
	require.NoError(t, run.err)
	assert.Equal(t, "hewwo wowwd!", run.stdout)

	run = runCLI(t, env, "", "--no-lowercase", "--no-letter-substitution", "--no-stutter", "--no-decoration", "--no-expressions", "Hello")
	require.NoError(t, run.err)
	assert.Equal(t, "Hello", run.stdout)
}

func TestCLI_JSON(t *testing.T) {
	env := newTestEnv(t)

	run := runCLI(t, env, "", "--json", "very", "nice")
	require.NoError(t, run.err)

	var out map[string]string
	require.NoError(t, json.Unmarshal([]byte(run.stdout), &out))
	assert.Equal(t, "vewy nyice", out["output"])
}

func TestCLI_FileInputOutput(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(in, []byte("very nice"), 0644))

	run := runCLI(t, env, "", "-f", in, "-o", out)
	require.NoError(t, run.err)
	assert.Empty(t, run.stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "vewy nyice", string(data))
}

func TestCLI_LargeFileIsNotCapped(t *testing.T) {
	env := newTestEnv(t)
	in := filepath.Join(t.TempDir(), "big.txt")
	text := strings.Repeat("a", 100001)
	require.NoError(t, os.WriteFile(in, []byte(text), 0644))

	run := runCLI(t, env, "", "--no-stutter", "-f", in)
	require.NoError(t, run.err)
	assert.Equal(t, text, run.stdout)
}

func TestCLI_Markdown(t *testing.T) {
	env := newTestEnv(t)

	run := runCLI(t, env, "", "--markdown", "--no-stutter", "--no-decoration", "very `really` nice")
	require.NoError(t, run.err)
	assert.True(t, strings.HasPrefix(run.stdout, "vewy `really` "), "got %q", run.stdout)
}

func TestCLI_Errors(t *testing.T) {
	env := newTestEnv(t)

	t.Run("invalid chance", func(t *testing.T) {
		run := runCLI(t, env, "", "--stutter-chance", "0", "hi")
		assert.Equal(t, 2, exitCode(t, run.err))
		assert.True(t, strings.HasPrefix(run.err.Error(), "[INVALID_CONFIG]"), "got %q", run.err.Error())
	})

	t.Run("chance out of range", func(t *testing.T) {
		run := runCLI(t, env, "", "--decoration-chance", "300", "hi")
		assert.Equal(t, 2, exitCode(t, run.err))
	})

	t.Run("missing input file", func(t *testing.T) {
		run := runCLI(t, env, "", "-f", filepath.Join(t.TempDir(), "nope.txt"))
		assert.Equal(t, 6, exitCode(t, run.err))
		assert.True(t, strings.HasPrefix(run.err.Error(), "[IO]"), "got %q", run.err.Error())
	})

	t.Run("history show missing id", func(t *testing.T) {
		run := runCLI(t, env, "", "history", "show", "01HNOPE")
		assert.Equal(t, 7, exitCode(t, run.err))
	})

	t.Run("history purge bad duration", func(t *testing.T) {
		run := runCLI(t, env, "", "history", "purge", "--older-than", "7h")
		assert.Equal(t, 2, exitCode(t, run.err))
	})
}

func TestCLI_ConfigFile(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(env.baseDir, "config.json"), []byte(`{"decoration": false}`), 0600))

	run := runCLI(t, env, "", "Hello world!")
	require.NoError(t, run.err)
	assert.Equal(t, "hewwo wowwd!", run.stdout)
}

func TestCLI_Verbose(t *testing.T) {
	env := newTestEnv(t)

	run := runCLI(t, env, "", "-vv", "hi")
	require.NoError(t, run.err)
	assert.Equal(t, 2, env.verbosity)
	assert.Contains(t, run.stderr, "stage applied")

	run = runCLI(t, env, "", "hi")
	require.NoError(t, run.err)
	assert.NotContains(t, run.stderr, "stage applied")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	run = runCLI(t, env, "", "-vvv", "hi")
	require.NoError(t, run.err)
	assert.Equal(t, zerolog.TraceLevel, zerolog.GlobalLevel())
	assert.Equal(t, zerolog.TraceLevel, env.logger.GetLevel())
}

func TestCLI_History(t *testing.T) {
	env := newTestEnv(t)

	run := runCLI(t, env, "", "--save", "--json", "very", "nice")
	require.NoError(t, run.err)
	assert.Contains(t, run.stdout, "vewy nyice")

	run = runCLI(t, env, "", "history", "list")
	require.NoError(t, run.err)

	var list struct {
		Items []struct {
			ID     string `json:"id"`
			Source string `json:"source"`
		} `json:"items"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal([]byte(run.stdout), &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, 1, list.Pagination.Total)
	assert.Equal(t, "cli", list.Items[0].Source)

	run = runCLI(t, env, "", "history", "show", list.Items[0].ID)
	require.NoError(t, run.err)

	var shown map[string]any
	require.NoError(t, json.Unmarshal([]byte(run.stdout), &shown))
	assert.Equal(t, "very nice", shown["input"])
	assert.Equal(t, "vewy nyice", shown["output"])

	run = runCLI(t, env, "", "history", "show", "--no-text", list.Items[0].ID)
	require.NoError(t, run.err)
	assert.NotContains(t, run.stdout, "vewy nyice")

	run = runCLI(t, env, "", "history", "purge")
	require.NoError(t, run.err)
	assert.Contains(t, run.stdout, `"purged": 1`)
}

func TestCLI_HistoryFromConfig(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(env.baseDir, "config.json"), []byte(`{"history": true}`), 0600))

	require.NoError(t, runCLI(t, env, "", "hello").err)

	run := runCLI(t, env, "", "history", "list", "--text", "hello")
	require.NoError(t, run.err)
	assert.Contains(t, run.stdout, `"total": 1`)
}
