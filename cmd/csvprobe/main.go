// Command csvprobe infers column types for CSV and Parquet files, reports
// invalid cells, and can serve the same checks over HTTP.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/JonMunkholm/csvprobe/internal/core"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError writes err for a terminal. Errors with a known user message are
// shown with their code and action, followed by the technical detail.
// errInvalid prints nothing; the reports on stdout already say why.
func printError(w io.Writer, err error) {
	switch {
	case errors.Is(err, errInvalid):
	case core.IsUserFacing(err):
		fmt.Fprintln(w, "Error:", core.FormatUserError(err))
		fmt.Fprintln(w, "Details:", err)
	default:
		fmt.Fprintln(w, "Error:", err)
	}
}
