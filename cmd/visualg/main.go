package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"visualg/interpreter-go/pkg/driver"
	"visualg/interpreter-go/pkg/interpreter"
)

const cliToolVersion = "visualg 0.0.0-dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	return execute(context.Background(), args, os.Stdin, os.Stdout, os.Stderr)
}

// exitError carries a process exit code through cobra without printing.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// cli holds the streams and global flags shared by every subcommand.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	verbose    bool

	config *driver.Config
	logger *slog.Logger
}

func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}
	root := c.rootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			return exit.code
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "visualg",
		Short: "Analyzer, interpreter and debugger for Visualg programs",
		Long: `visualg checks and runs Visualg (Portugol) programs given as AST
documents in YAML or JSON, and serves a websocket debugger for editors.`,
		Version:           cliToolVersion,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return c.setup() },
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default: visualg.yml or visualg.toml found from the current directory up)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log debug output to stderr")
	root.AddCommand(c.checkCommand(), c.runCommand(), c.debugServerCommand(), c.versionCommand())
	return root
}

// setup loads the config and builds the logger before any subcommand runs.
func (c *cli) setup() error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	level := cfg.Level()
	if c.verbose {
		level = slog.LevelDebug
	}
	c.config = cfg
	c.logger = slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: level}))
	if cfg.Path != "" {
		c.logger.Debug("config loaded", "path", cfg.Path)
	}
	return nil
}

func (c *cli) loadConfig() (*driver.Config, error) {
	if c.configPath != "" {
		return driver.LoadConfig(c.configPath)
	}
	path, err := driver.FindConfig(".")
	if err != nil {
		if errors.Is(err, driver.ErrConfigNotFound) {
			return driver.DefaultConfig(), nil
		}
		return nil, err
	}
	return driver.LoadConfig(path)
}

// interpreterOptions maps the config onto interpreter options.
func (c *cli) interpreterOptions() []interpreter.Option {
	opts := []interpreter.Option{
		interpreter.WithLogger(c.logger),
		interpreter.WithRandomRange(c.config.Random.Min, c.config.Random.Max),
		interpreter.WithEcho(c.config.Echo),
	}
	if c.config.Random.Seed != 0 {
		opts = append(opts, interpreter.WithRandomSeed(c.config.Random.Seed))
	}
	return opts
}
