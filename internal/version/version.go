// Package version contains information on the current version of the program.
// It is split from the main program for easy use.
package version

// Current is the string representing the current version of turnstile.
const Current = "0.1.0"

// ServerCurrent is the string representing the current version of the
// turnstile HTTP server API, versioned separately from the engine/CLI since
// the wire format can change independently of Current.
const ServerCurrent = "1.0.0"
