package cli

import "errors"

// ErrUsage marks errors caused by bad invocation rather than bad input data;
// main maps it to a distinct exit code.
var ErrUsage = errors.New("cli usage error")

type usageError struct {
	msg string
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

func (e usageError) Error() string {
	return e.msg
}

func (e usageError) Is(target error) bool {
	return target == ErrUsage
}
