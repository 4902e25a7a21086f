package ir

import (
	mashErr "mash/internal/errors"
	"mash/internal/value"
)

func typeError(msg string) error {
	return mashErr.New(mashErr.TypeError, msg, mashErr.Location{}, "")
}

func valueError(msg string) error {
	return mashErr.New(mashErr.ValueError, msg, mashErr.Location{}, "")
}

func incorrectDefinition(msg string) error {
	return mashErr.New(mashErr.IncorrectDefinition, msg, mashErr.Location{}, "")
}

func undefinedReference(name string) error {
	return mashErr.New(mashErr.UndefinedReference, "Undefined reference: "+name, mashErr.Location{}, "")
}

// addCallFrame records function as a call-stack entry on err as it
// propagates out of a function/method invocation (spec §7's CallStack),
// mirroring the teacher's WithStack/AddStackFrame pattern. Anything that
// isn't a *mashErr.MashError (a Signal escaping a nested construct, for
// instance) passes through untouched.
func addCallFrame(err error, function string) error {
	if err == nil {
		return nil
	}
	if me, ok := err.(*mashErr.MashError); ok {
		return me.AddStackFrame(function, me.Location)
	}
	return err
}

// classify turns an error from the value package's pure, kind-less
// operators into the matching tagged MashError (spec §7); anything already
// tagged (a *mashErr.MashError, or a *Signal) passes through unchanged.
func classify(err error) error {
	switch err.(type) {
	case *value.TypeError:
		return typeError(err.Error())
	case *value.ValueErr:
		return valueError(err.Error())
	case *value.IndexErr:
		return mashErr.New(mashErr.IndexError, err.Error(), mashErr.Location{}, "")
	case *value.KeyErr:
		return mashErr.New(mashErr.KeyError, err.Error(), mashErr.Location{}, "")
	default:
		return err
	}
}
