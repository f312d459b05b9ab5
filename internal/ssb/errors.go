package ssb

import (
	"errors"
	"fmt"
)

// ErrConfig marks problems the user can fix by editing the configuration.
var ErrConfig = errors.New("configuration problem")

// TraversalError reports a directory that could not be read while walking
// the Steam library. The walk continues past it unless strict scanning is
// enabled.
type TraversalError struct {
	Path string
	Err  error
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *TraversalError) Unwrap() error { return e.Err }
