package cli

import (
	"errors"
	"fmt"

	"github.com/minelog/minelog/internal/output"
)

// outputErrorCommon normalizes error emission across commands, respecting
// machine-readable vs text formats so scripted consumers always get a typed
// failure record.
func outputErrorCommon(globals *Globals, code, message string) error {
	switch globals.ResolveFormat(false) {
	case "table":
		fmt.Fprintf(globals.Stderr, "Error [%s]: %s\n", code, message)
	default:
		output.NewNDJSONWriter(globals.Stdout).WriteError(code, message)
	}
	return errors.New(message)
}
