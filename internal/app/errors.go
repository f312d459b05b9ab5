package app

import (
	"errors"
	"fmt"
	"io/fs"

	"ssb-go/internal/ssb"
)

// DescribeError formats a fatal error for the console, naming its category:
// missing files and folders, problems the user can fix in the settings, and
// everything else.
func DescribeError(err error) string {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Sprintf("NotFound Error: '%v'", err)
	case errors.Is(err, ssb.ErrConfig):
		return fmt.Sprintf("Heads up: '%v'", err)
	default:
		return fmt.Sprintf("Error Detected: '%v'", err)
	}
}
