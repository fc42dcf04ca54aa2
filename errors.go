package plume

import (
	"errors"
	"fmt"
)

// errMissingDictValue is returned when a dict conversion sees an odd number
// of list elements.
var errMissingDictValue = errors.New("missing value to go with key")

// EvalError is the error returned by Eval when a script fails.
// Message holds the interpreter result at the time of the error and
// Info holds the accumulated stack trace, if any.
type EvalError struct {
	Message string
	Code    string // machine-readable error code list, "NONE" if unset
	Info    string // human-readable trace, "" if none accumulated
}

func (e *EvalError) Error() string {
	return e.Message
}

// ConversionError reports that a value could not be interpreted as the
// requested native type. Callers decide whether to default or propagate;
// the engine never defaults silently.
type ConversionError struct {
	Want  string // "integer", "floating-point number", "boolean", "list", "dict"
	Value string // the offending string representation
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("expected %s but got %q", e.Want, e.Value)
}

// conversionError builds a ConversionError for a value.
func conversionError(want string, o *Obj) error {
	return &ConversionError{Want: want, Value: o.String()}
}

// Fixed message shapes for resolution failures. Every path that reports a
// missing variable or command goes through these so the shape stays stable.

func noSuchVariable(verb, name string) string {
	return fmt.Sprintf("can't %s \"%s\": no such variable", verb, name)
}

func noSuchCommand(name string) string {
	return fmt.Sprintf("invalid command name \"%s\"", name)
}

func badLevel(spec string) string {
	return fmt.Sprintf("bad level \"%s\"", spec)
}
