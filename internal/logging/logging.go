package logging

import (
	"fmt"
	"github.com/fatih/color"
	"io"
	"os"
)

// Output receives every user facing line.
var Output io.Writer = color.Output

var (
	ColorSuccess  = color.New(color.FgCyan, color.Bold)
	ColorWarning  = color.New(color.FgYellow, color.Bold)
	ColorProgress = color.New(color.FgBlue, color.Bold)
	ColorFailure  = color.New(color.FgRed, color.Bold)
	ColorError    = ColorFailure
)

// UserSuccess prints a colorized success message
func UserSuccess(msg string, format ...interface{}) {
	fmt.Fprintln(Output, ColorSuccess.Sprintf(msg, format...))
}

// UserWarning prints a colorized warning message
func UserWarning(msg string, format ...interface{}) {
	fmt.Fprintln(Output, ColorWarning.Sprintf("WARNING: "+msg, format...))
}

// UserProgress prints a colorized progress message
func UserProgress(msg string, format ...interface{}) {
	fmt.Fprintln(Output, ColorProgress.Sprintf(msg, format...))
}

// UserFailure prints a colorized failure message
func UserFailure(msg string, format ...interface{}) {
	fmt.Fprintln(Output, ColorFailure.Sprintf("ERROR: "+msg, format...))
}

// UserError prints a colorized error message and terminates with a non-zero exit code
func UserError(msg string, format ...interface{}) {
	fmt.Fprintln(Output, ColorError.Sprintf("ERROR: "+msg, format...))
	os.Exit(1)
}
