package cli

// ExitError carries the process exit code out of a command. Message is printed
// to stderr when it is not empty.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}
