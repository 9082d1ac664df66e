package structured

import "fmt"

type Error struct {
	// MoreInfo is additional information about the error e.g. the option or file involved.
	MoreInfo string
	// Impact is the likely impact of the error on the run e.g. "No result file is written."
	Impact string
	// Action is the next step the user should take e.g. "Check the --result path."
	Action string
	// LikelyCause is the likely cause for the error e.g. "Engine extension missing."
	LikelyCause string
	// Err is the original error string.
	Err error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("\tmoreInfo=%s impact=%s action=%s likelyCause=%s err=%v",
		e.MoreInfo, e.Impact, e.Action, e.LikelyCause, e.Err)
}

func NewErr(serr *Error, err error) *Error {
	// Make a copy so that dictionary entry is not modified.
	ne := *serr
	ne.Err = err
	return &ne
}

// WithInfo returns a copy of the error carrying more info.
func (e *Error) WithInfo(format string, args ...any) *Error {
	ne := *e
	ne.MoreInfo = fmt.Sprintf(format, args...)
	return &ne
}

func (e *Error) Unwrap() error { return e.Err }
