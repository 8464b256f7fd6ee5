package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"visualg/interpreter-go/pkg/ast"
	"visualg/interpreter-go/pkg/astdoc"
	"visualg/interpreter-go/pkg/console"
	"visualg/interpreter-go/pkg/debugger"
	"visualg/interpreter-go/pkg/interpreter"
	"visualg/interpreter-go/pkg/typechecker"
)

const shutdownTimeout = 5 * time.Second

func (c *cli) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <program>",
		Short: "Analyze a program and print its diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, problems, err := c.loadProgram(args[0])
			if err != nil {
				return err
			}
			for _, p := range problems {
				fmt.Fprintln(c.stdout, p)
			}
			if len(problems) > 0 {
				return &exitError{code: 1}
			}
			fmt.Fprintf(c.stdout, "%s: ok\n", program.Name)
			return nil
		},
	}
}

// loadProgram decodes and analyzes path. problems holds one formatted line
// per diagnostic; program is only usable when problems is empty.
func (c *cli) loadProgram(path string) (*ast.AlgoritimoNode, []string, error) {
	parsed, err := astdoc.DecodeFile(path)
	if err != nil {
		return nil, nil, err
	}
	var problems []string
	for _, d := range parsed.Diagnostics {
		problems = append(problems, d.String())
	}
	if parsed.Program == nil || len(problems) > 0 {
		return parsed.Program, problems, nil
	}
	checked := typechecker.New().CheckProgram(parsed.Program)
	for _, d := range checked.Diagnostics {
		problems = append(problems, d.String())
	}
	c.logger.Debug("program analyzed", "path", path, "diagnostics", len(problems))
	return parsed.Program, problems, nil
}

func (c *cli) runCommand() *cobra.Command {
	var noColor bool
	cmd := &cobra.Command{
		Use:   "run <program>",
		Short: "Check and execute a program on the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, problems, err := c.loadProgram(args[0])
			if err != nil {
				return err
			}
			if len(problems) > 0 {
				for _, p := range problems {
					fmt.Fprintln(c.stderr, p)
				}
				return &exitError{code: 1}
			}

			con := console.New(c.stdin, c.stdout,
				console.WithColor(c.config.Color && !noColor),
				console.WithInputTimeout(c.config.InputTimeout.Duration),
				console.WithLogger(c.logger),
			)
			interp := interpreter.New(con, c.interpreterOptions()...)
			// Nobody can resume a pausa on the terminal, so log and carry on.
			interp.OnSnapshot(func(ps interpreter.ProgramState) {
				c.logger.Info("paused", "line", ps.CurrentLine, "scopes", len(ps.Stack))
				interp.Continue()
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			state := interp.Run(ctx, program)
			switch state.Kind {
			case interpreter.CompletedSuccessfully:
				con.Finished()
				return nil
			case interpreter.ForcedStop:
				con.Stopped()
				return &exitError{code: 130}
			default:
				con.Failure(state.Err)
				return &exitError{code: 1}
			}
		},
	}
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colors and clear-screen sequences")
	return cmd
}

func (c *cli) debugServerCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "debug-server",
		Short: "Serve the websocket debugger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = c.config.DebugServer.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return c.serveDebug(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:4711)")
	return cmd
}

func (c *cli) serveDebug(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	handler := debugger.NewServer(
		debugger.WithServerLogger(c.logger),
		debugger.WithSessionOptions(
			debugger.WithLogger(c.logger),
			debugger.WithBreakpoints(c.config.BreakpointLocations()),
			debugger.WithInterpreterOptions(c.interpreterOptions()...),
		),
	)
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	fmt.Fprintf(c.stdout, "debug server listening on ws://%s\n", ln.Addr())
	c.logger.Info("debug server started", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown debug server: %w", err)
	}
	c.logger.Info("debug server stopped")
	return nil
}

func (c *cli) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(c.stdout, cliToolVersion)
			return nil
		},
	}
}
