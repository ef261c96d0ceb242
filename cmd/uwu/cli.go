package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/uwu/internal/config"
	"github.com/hpungsan/uwu/internal/db"
	"github.com/hpungsan/uwu/internal/errors"
	"github.com/hpungsan/uwu/internal/logging"
	"github.com/hpungsan/uwu/internal/mcp"
	"github.com/hpungsan/uwu/internal/ops"
	"github.com/hpungsan/uwu/internal/record"
	"github.com/hpungsan/uwu/internal/web"
)

func init() {
	// -v is the verbosity counter; --version keeps only its long form.
	cli.VersionFlag = &cli.BoolFlag{Name: "version", Usage: "print the version"}
}

// appEnv holds state shared by all commands. Config and logger are set in
// the app's Before hook; the database is opened on first use.
type appEnv struct {
	baseDir string // global config and database directory (~/.uwu)
	workDir string // start of the repo config search

	cfg       *config.Config
	logger    zerolog.Logger
	verbosity int
	db        *sql.DB
}

// openDB initializes the history database once.
func (e *appEnv) openDB() (*sql.DB, error) {
	if e.db != nil {
		return e.db, nil
	}
	database, err := db.Init(e.baseDir)
	if err != nil {
		return nil, err
	}
	db.ConfigurePool(database, e.cfg)
	e.db = database
	return database, nil
}

func (e *appEnv) close() {
	if e.db != nil {
		e.db.Close()
		e.db = nil
	}
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(env *appEnv) *cli.App {
	app := &cli.App{
		Name:                   "uwu",
		Usage:                  "Deterministic uwu text rewriting",
		UsageText:              "uwu [options] [text...]",
		Version:                Version,
		UseShortOptionHandling: true,
		Flags:                  rootFlags(),
		Before: func(c *cli.Context) error {
			cfg, err := config.LoadWithRepo(env.baseDir, env.workDir)
			if err != nil {
				return outputError(errors.NewInvalidConfig("config", err.Error()))
			}
			env.cfg = cfg
			env.verbosity = c.Count("verbose")
			zerolog.SetGlobalLevel(logging.Level(env.verbosity))
			env.logger = logging.New(c.App.ErrWriter, env.verbosity)
			return nil
		},
		Action: func(c *cli.Context) error {
			return uwuifyAction(c, env)
		},
		Commands: []*cli.Command{
			serveCmd(env),
			mcpCmd(env),
			historyCmd(env),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Read input from `FILE` instead of args or stdin"},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Write output to `FILE` instead of stdout"},
		&cli.BoolFlag{Name: "json", Usage: "Print {\"output\": ...} instead of raw text"},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Count: new(int), Usage: "Increase log verbosity (repeatable)"},
		&cli.BoolFlag{Name: "no-lowercase", Usage: "Keep the input's case"},
		&cli.BoolFlag{Name: "no-expressions", Usage: "Skip word replacements"},
		&cli.BoolFlag{Name: "no-letter-substitution", Usage: "Skip l/r → w"},
		&cli.BoolFlag{Name: "no-stutter", Usage: "Skip stuttering"},
		&cli.BoolFlag{Name: "no-decoration", Usage: "Skip emoticons after punctuation"},
		&cli.IntFlag{Name: "stutter-chance", Usage: "Stutter chance, 1..255 (1 in N words)"},
		&cli.IntFlag{Name: "decoration-chance", Usage: "Decoration chance, 1..255 (1 in N markers)"},
		&cli.BoolFlag{Name: "markdown", Aliases: []string{"m"}, Usage: "Only rewrite markdown prose, keep code and markup"},
		&cli.BoolFlag{Name: "save", Usage: "Record the transform in history"},
	}
}

// uwuifyAction is the root command: read, transform, write.
func uwuifyAction(c *cli.Context, env *appEnv) error {
	text, err := readInput(c)
	if err != nil {
		return outputError(err)
	}

	input := ops.UwuifyInput{
		Text:     text,
		Options:  optionsFromFlags(c),
		Markdown: c.Bool("markdown"),
		Source:   record.SourceCLI,
	}
	if c.Bool("save") {
		save := true
		input.Save = &save
	}

	var database *sql.DB
	if env.cfg.History || c.Bool("save") {
		database, err = env.openDB()
		if err != nil {
			return outputError(err)
		}
	}

	result, err := ops.Uwuify(env.logger.WithContext(cmdContext(c)), database, env.cfg, input)
	if err != nil {
		return outputError(err)
	}

	out := result.Output
	if c.Bool("json") {
		data, err := json.Marshal(map[string]string{"output": result.Output})
		if err != nil {
			return outputError(errors.NewUnknown(err))
		}
		out = string(data)
	}

	if path := c.String("output"); path != "" {
		if err := ops.WriteOutputFile(path, out); err != nil {
			return outputError(err)
		}
		return nil
	}
	if _, err := io.WriteString(c.App.Writer, out); err != nil {
		return outputError(errors.NewIO(err))
	}
	return nil
}

// readInput picks the input source: --file, then args, then stdin.
func readInput(c *cli.Context) (string, error) {
	if path := c.String("file"); path != "" {
		return ops.ReadInputFile(path)
	}
	if c.NArg() > 0 {
		return strings.Join(c.Args().Slice(), " "), nil
	}
	data, err := io.ReadAll(c.App.Reader)
	if err != nil {
		return "", errors.NewIO(err)
	}
	return trimNewline(string(data)), nil
}

// trimNewline drops the single line ending a shell pipe appends.
func trimNewline(s string) string {
	if t, ok := strings.CutSuffix(s, "\n"); ok {
		return strings.TrimSuffix(t, "\r")
	}
	return s
}

// optionsFromFlags turns the feature flags into per-request overrides.
func optionsFromFlags(c *cli.Context) ops.Options {
	var o ops.Options
	off := func(name string) *bool {
		if !c.Bool(name) {
			return nil
		}
		v := false
		return &v
	}
	o.Lowercase = off("no-lowercase")
	o.Expressions = off("no-expressions")
	o.LetterSubstitution = off("no-letter-substitution")
	o.Stutter = off("no-stutter")
	o.Decoration = off("no-decoration")
	if c.IsSet("stutter-chance") {
		v := c.Int("stutter-chance")
		o.StutterChance = &v
	}
	if c.IsSet("decoration-chance") {
		v := c.Int("decoration-chance")
		o.DecorationChance = &v
	}
	return o
}

// serveCmd creates the serve command.
func serveCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the web UI and JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Listen address (default from config)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Listen port (default from config)"},
		},
		Action: func(c *cli.Context) error {
			bind, port := env.cfg.WebBind, env.cfg.WebPort
			if c.IsSet("bind") {
				bind = c.String("bind")
			}
			if c.IsSet("port") {
				port = c.Int("port")
			}
			if port < 0 || port > 65535 {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("port out of range: %d", port)))
			}

			database, err := env.openDB()
			if err != nil {
				return outputError(err)
			}

			logger := logging.NewJSON(c.App.ErrWriter, env.verbosity)
			srv := web.NewServer(database, env.cfg, logger, Version, bind, port)
			fmt.Fprintf(c.App.ErrWriter, "uwu web listening on http://%s\n", srv.Addr)

			if err := web.Run(srv, logger); err != nil {
				return outputError(errors.NewIO(err))
			}
			return nil
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Run the MCP tool server on stdio",
		Action: func(c *cli.Context) error {
			logger := logging.NewJSON(c.App.ErrWriter, env.verbosity)

			if unknown := mcp.ValidateDisabledTools(env.cfg.DisabledTools); len(unknown) > 0 {
				logger.Warn().Strs("tools", unknown).Strs("valid", mcp.AllToolNames()).Msg("unknown disabled_tools entries ignored")
			}
			if unknown := mcp.ValidateDisabledTypes(env.cfg.DisabledTypes); len(unknown) > 0 {
				logger.Warn().Strs("types", unknown).Strs("valid", mcp.KnownTypes).Msg("unknown disabled_types entries ignored")
			}

			// History tools are dropped rather than failing the server.
			database, err := env.openDB()
			if err != nil {
				logger.Warn().Err(err).Msg("history database unavailable, history tools disabled")
				database = nil
			}

			if err := mcp.Run(database, env.cfg, logger, Version); err != nil {
				return outputError(errors.NewIO(err))
			}
			return nil
		},
	}
}

// historyCmd creates the history command and its subcommands.
func historyCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect recorded transforms",
		Subcommands: []*cli.Command{
			historyListCmd(env),
			historyShowCmd(env),
			historyPurgeCmd(env),
		},
	}
}

// historyListCmd creates the history list command.
func historyListCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List recorded transforms, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Max results"},
			&cli.IntFlag{Name: "offset", Usage: "Pagination offset"},
			&cli.StringFlag{Name: "source", Usage: "Filter by source: cli|web|mcp"},
			&cli.StringFlag{Name: "text", Usage: "Only records whose input is exactly this text"},
		},
		Action: func(c *cli.Context) error {
			database, err := env.openDB()
			if err != nil {
				return outputError(err)
			}

			output, err := ops.List(cmdContext(c), database, ops.ListInput{
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
				Source: c.String("source"),
				Text:   c.String("text"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// historyShowCmd creates the history show command.
func historyShowCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show one recorded transform",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-text", Usage: "Exclude input and output text"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("id is required"))
			}

			database, err := env.openDB()
			if err != nil {
				return outputError(err)
			}

			input := ops.FetchInput{ID: c.Args().First()}
			if c.Bool("no-text") {
				includeText := false
				input.IncludeText = &includeText
			}

			output, err := ops.Fetch(cmdContext(c), database, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// historyPurgeCmd creates the history purge command.
func historyPurgeCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "Permanently delete recorded transforms",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "older-than", Usage: "Only purge records created more than N days ago (e.g., 7d)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.PurgeInput{}
			if olderThan := c.String("older-than"); olderThan != "" {
				days, err := parseDuration(olderThan)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.OlderThanDays = &days
			}

			database, err := env.openDB()
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Purge(cmdContext(c), database, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// Helper functions

// cmdContext returns the command context, never nil.
func cmdContext(c *cli.Context) context.Context {
	if c.Context != nil {
		return c.Context
	}
	return context.Background()
}

// outputJSON marshals result to w as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return outputError(errors.NewIO(err))
	}
	return nil
}

// outputError formats err as "[CODE] message" with the code's exit status.
func outputError(err error) error {
	uErr := errors.As(err)
	return cli.Exit(fmt.Sprintf("[%s] %s", uErr.Code, errors.Message(err)), uErr.ExitCode)
}

// parseDuration parses "7d" format to days.
func parseDuration(s string) (int, error) {
	if numStr, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(numStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		if days < 0 {
			return 0, fmt.Errorf("duration must be non-negative")
		}
		return days, nil
	}
	return 0, fmt.Errorf("duration must end with 'd' (days), e.g., 7d")
}
