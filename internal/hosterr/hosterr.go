// Package hosterr renders the engine's internal error values (
// logic.ParseError, proof.ValidationError) into messages suitable for
// showing to a proof-editor end user, kept separate from the engine's
// own terse internal Error() text.
package hosterr

import "fmt"

// editorError is an error with both a human-readable message to show a
// proof-editor user and a more technical Error() string, mirroring the
// host project's two-tier interpreter-error shape.
type editorError struct {
	msg   string
	human string
	wrap  error
}

func (e *editorError) Error() string {
	return e.msg
}

// EditorMessage shows the message that should be displayed to the
// proof-editor user to describe the error.
func (e *editorError) EditorMessage() string {
	return e.human
}

// Unwrap gives the error that this one wraps, if any.
func (e *editorError) Unwrap() error {
	return e.wrap
}

// Editor returns a new error carrying both a user-facing message and a
// technical description.
func Editor(userFacing, technical string) error {
	if technical == "" {
		technical = fmt.Sprintf("got editor error (%q)", userFacing)
	}
	return &editorError{msg: technical, human: userFacing}
}

// Editorf is Editor with the user-facing message built via Sprintf and
// Error() generated automatically.
func Editorf(userFacingFormat string, a ...interface{}) error {
	return Editor(fmt.Sprintf(userFacingFormat, a...), "")
}

// WrapEditor is Editor that also wraps a causing error.
func WrapEditor(cause error, userFacing, technical string) error {
	if technical == "" {
		technical = fmt.Sprintf("got editor error (%q)", userFacing)
	}
	return &editorError{msg: technical, human: userFacing, wrap: cause}
}

// WrapEditorf is WrapEditor with the user-facing message built via
// Sprintf.
func WrapEditorf(cause error, userFacingFormat string, a ...interface{}) error {
	return WrapEditor(cause, fmt.Sprintf(userFacingFormat, a...), "")
}

// Message gets the message to show a proof-editor user for err. If err
// is one of the types this package defines, its EditorMessage is
// returned; otherwise err.Error() is returned.
func Message(err error) string {
	if ee, ok := err.(*editorError); ok {
		return ee.EditorMessage()
	}
	return err.Error()
}
