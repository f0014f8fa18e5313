package logging

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsTTY reports whether w is a terminal. Only writers exposing Fd, such as
// *os.File, can be.
func IsTTY(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// SupportsColor reports whether log output to w should be colored.
func SupportsColor(w io.Writer) bool {
	return colorWanted(IsTTY(w))
}

// colorWanted applies the environment to the terminal check: NO_COLOR
// always disables color, FORCE_COLOR enables it for pipes (useful when
// flins runs under another tool), and TERM=dumb disables it otherwise.
func colorWanted(isTTY bool) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if v := os.Getenv("FORCE_COLOR"); v != "" && v != "0" {
		return true
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTTY
}
