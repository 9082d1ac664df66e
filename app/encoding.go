package app

import (
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// encodeOutput wraps w so that text written as UTF-8 reaches it in the named
// encoding. The returned flush function must be called once writing is done.
func encodeOutput(w io.Writer, name string) (io.Writer, func() error, error) {
	if name == "" {
		return w, func() error { return nil }, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, nil, err
	}
	if enc == unicode.UTF8 {
		return w, func() error { return nil }, nil
	}
	tw := transform.NewWriter(w, encoding.ReplaceUnsupported(enc.NewEncoder()))
	return tw, tw.Close, nil
}
