// Package engine defines the narrow surface through which the console talks to a
// test execution engine: the settings package handed to the engine, filters,
// runners, result writers and extensions. Engines register themselves with
// Register, in the manner of database/sql drivers.
package engine
