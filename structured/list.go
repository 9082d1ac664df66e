package structured

import (
	"errors"
	"fmt"
	"strings"
)

// List is an ordered list of human readable problems. Entries are never
// deduplicated; the order is the order in which they were found.
type List []string

func (l *List) Add(msg string) {
	*l = append(*l, msg)
}

func (l *List) Addf(format string, args ...any) {
	*l = append(*l, fmt.Sprintf(format, args...))
}

// Append adds every entry of other, keeping their order.
func (l *List) Append(other List) {
	*l = append(*l, other...)
}

func (l List) Empty() bool {
	return len(l) == 0
}

// Err returns nil for an empty list, otherwise a single error listing every entry.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return errors.New(strings.Join(l, "\n"))
}
