// Command console runs tests through a registered test engine.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"khetao.com/console/app"
	"khetao.com/console/cli"
	"khetao.com/console/engine"
	"khetao.com/console/log"
	"khetao.com/console/options"
	"khetao.com/console/shutdown"
	"khetao.com/console/shutdown/manager"
	"khetao.com/console/version"
)

const name = "console"

var scope = log.RegisterScope("console", "Console entry point.", 0)

// stdin is read when --wait asks for a key press.
var stdin io.Reader = os.Stdin

func main() {
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(app.UnexpectedError)
	}
}

// run executes the console with args and reports a non-zero exit code as an
// *cli.ExitError.
func run(out, errOut io.Writer, args []string) error {
	cmd := newRootCommand(out, errOut)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func newRootCommand(out, errOut io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:                name + " [inputfiles] [options]",
		Short:              "Runs a set of tests from the console",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		CompletionOptions:  cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			return console(cmd.Context(), out, errOut, args)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.AddCommand(version.CobraCommandWithOptions(version.CobraOptions{
		GetEngineVersion: engineVersion,
	}))
	return root
}

func engineVersion() (*version.BuildInfo, error) {
	eng, err := engine.Default()
	if err != nil {
		return nil, err
	}
	info, err := version.NewBuildInfoFromOldString(eng.Version())
	if err != nil {
		return nil, fmt.Errorf("engine version: %w", err)
	}
	return &info, nil
}

func console(ctx context.Context, out, errOut io.Writer, args []string) error {
	opts, err := options.Parse(args)
	if err != nil {
		fmt.Fprintln(out, version.Header())
		fmt.Fprintln(out)
		return &cli.ExitError{Code: app.InvalidArg, Message: err.Error()}
	}

	code := execute(ctx, opts, out, errOut, len(args) == 0)

	if opts.WaitBeforeExit {
		fmt.Fprint(out, "\nPress Enter key to continue . . .")
		_, _ = bufio.NewReader(stdin).ReadString('\n')
	}

	if code != app.OK {
		return &cli.ExitError{Code: code}
	}
	return nil
}

func execute(ctx context.Context, opts *options.ConsoleOptions, out, errOut io.Writer, noArgs bool) int {
	if !opts.NoHeader || opts.ShowVersion {
		fmt.Fprintln(out, version.Header())
		fmt.Fprintln(out)
	}

	if opts.ShowHelp || noArgs {
		if err := cli.WriteHelp(out, name); err != nil {
			return app.UnexpectedError
		}
		return app.OK
	}
	if opts.ShowVersion {
		return app.OK
	}

	if !opts.Validate() {
		fmt.Fprintln(errOut, "Error(s) in options:")
		for _, msg := range opts.ErrorMessages() {
			fmt.Fprintln(errOut, "   "+msg)
		}
		fmt.Fprintf(errOut, "\nRun %s --help for usage.\n", name)
		return app.InvalidArg
	}

	workDir := opts.WorkDirectory
	if workDir == "" {
		workDir, _ = os.Getwd()
	}
	if err := log.Configure(app.LogOptions(opts, workDir, os.Getpid())); err != nil {
		fmt.Fprintf(errOut, "Unable to configure logging: %v\n", err)
		return app.UnexpectedError
	}
	defer func() { _ = log.Sync() }()

	eng, err := engine.Default()
	if err != nil {
		fmt.Fprintln(errOut, err.Error())
		return app.UnexpectedError
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	signals := manager.NewPosixSignalManager()
	defer signals.Stop()
	gs := shutdown.New()
	gs.AddShutdownManager(signals)
	gs.AddCallback(shutdown.Func(func(string) error {
		scope.Warn("interrupted, cancelling the test run")
		cancel()
		return nil
	}))
	gs.SetErrorHandler(shutdown.ErrorFunc(func(err error) {
		scope.Errorf("shutdown: %v", err)
	}))
	if err := gs.StartShutdown(); err != nil {
		scope.Warnf("signal handling unavailable: %v", err)
	}

	code := app.New(eng, opts, app.WithStdout(out), app.WithStderr(errOut)).Execute(ctx)

	select {
	case <-signals.Done():
		return app.UnexpectedError
	default:
	}
	return code
}
