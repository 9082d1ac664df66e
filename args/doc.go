// Package args turns raw argument sources into a flat token stream.
//
// A source is either the process command line or an argument file referenced with
// @name. Files are tokenized with the same quoting rules as the command line, may
// contain full-line # comments and may reference further files, up to
// MaxNestingDepth levels of argument lists.
package args
