package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
  _   ___      ___   _
 | | | \ \ /\ / / | | |
 | |_| |\ V  V /| |_| |
  \__,_| \_/\_/  \__,_|

  Deterministic uwu text rewriting

  Usage: uwu [options] [text...]
         echo "hello" | uwu
         uwu --help`)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}
	workDir, err := os.Getwd()
	if err != nil {
		workDir = ""
	}

	env := &appEnv{
		baseDir: filepath.Join(homeDir, ".uwu"),
		workDir: workDir,
	}
	defer env.close()

	app := newCLIApp(env)
	app.Reader = os.Stdin
	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		code := 1
		if exitErr, ok := err.(cli.ExitCoder); ok {
			code = exitErr.ExitCode()
		}
		env.close()
		os.Exit(code)
	}
}
