package app

import (
	"io"

	"github.com/go-logr/logr"
)

// Option configures a Runner.
type Option func(*Runner)

// WithStdout sets where the console report goes. It defaults to os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(r *Runner) {
		r.stdout = w
	}
}

// WithStderr sets where errors and redirected test error output go.
func WithStderr(w io.Writer) Option {
	return func(r *Runner) {
		r.stderr = w
	}
}

// WithColor forces color on or off instead of detecting a terminal.
func WithColor(enabled bool) Option {
	return func(r *Runner) {
		r.color = &enabled
	}
}

// WithEngineLogger sets the logger handed to engine runners.
func WithEngineLogger(l logr.Logger) Option {
	return func(r *Runner) {
		r.engineLogger = l
	}
}

// WithEnvironment replaces the lines of the runtime environment section.
func WithEnvironment(lines ...EnvironmentLine) Option {
	return func(r *Runner) {
		r.environment = lines
	}
}
