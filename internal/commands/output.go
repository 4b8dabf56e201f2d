package commands

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/colonyops/newsdesk/internal/core/styles"
	"github.com/colonyops/newsdesk/pkg/iojson"
)

const (
	formatAuto  = "auto"
	formatTable = "table"
	formatJSON  = "json"
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of w, or fallback when it is not a terminal.
func terminalWidth(w io.Writer, fallback int) int {
	f, ok := w.(*os.File)
	if !ok {
		return fallback
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}

// resolveFormat turns "auto" into table for terminals and JSON otherwise.
func resolveFormat(format string, w io.Writer) (string, error) {
	switch format {
	case formatAuto, "":
		if isTerminal(w) {
			return formatTable, nil
		}
		return formatJSON, nil
	case formatTable, formatJSON:
		return format, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected auto, table or json)", format)
	}
}

func writeJSON(w, ew io.Writer, v any) error {
	return iojson.WriteWith(w, ew, v)
}

func printHeader(w io.Writer, title string) {
	_, _ = fmt.Fprintln(w, styles.CommandHeaderStyle.Render(title))
}

func printSuccess(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintln(w, styles.CommandHeaderStyle.Render("✔")+" "+fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintln(w, styles.ErrorStyle.Render("✘")+" "+fmt.Sprintf(format, args...))
}
