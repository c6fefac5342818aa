// Package presenter renders check results and user-facing messages on the
// terminal, with color support and a quiet mode.
package presenter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/jingkaihe/plugincheck/pkg/checks"
)

// Presenter defines the interface for CLI output
type Presenter interface {
	Error(err error, context string)
	Success(message string)
	Warning(message string)
	Info(message string)
	Section(title string)
	Separator()
	Report(report *checks.Report)
	SetQuiet(quiet bool)
	IsQuiet() bool
}

// ColorMode represents different color output modes
type ColorMode int

const (
	// ColorAuto lets the color package detect terminal support
	ColorAuto ColorMode = iota
	// ColorAlways forces colored output
	ColorAlways
	// ColorNever disables colored output
	ColorNever
)

// TerminalPresenter implements Presenter for terminal output
type TerminalPresenter struct {
	output      io.Writer
	errorOutput io.Writer
	quiet       bool
}

// New creates a TerminalPresenter writing to stdout and stderr
func New() *TerminalPresenter {
	return NewWithOptions(os.Stdout, os.Stderr, DetectColorMode())
}

// NewWithOptions creates a TerminalPresenter with custom writers and color mode
func NewWithOptions(output, errorOutput io.Writer, colorMode ColorMode) *TerminalPresenter {
	SetColorMode(colorMode)
	return &TerminalPresenter{
		output:      output,
		errorOutput: errorOutput,
	}
}

// SetColorMode configures the color package for mode
func SetColorMode(mode ColorMode) {
	switch mode {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	case ColorAuto:
	}
}

// DetectColorMode determines the color mode from NO_COLOR and PLUGINCHECK_COLOR
func DetectColorMode() ColorMode {
	if os.Getenv("NO_COLOR") != "" {
		return ColorNever
	}

	switch os.Getenv("PLUGINCHECK_COLOR") {
	case "always", "force":
		return ColorAlways
	case "never", "off":
		return ColorNever
	default:
		return ColorAuto
	}
}

// Error displays an error message to stderr
func (p *TerminalPresenter) Error(err error, context string) {
	if err == nil {
		return
	}

	errorColor := color.New(color.FgRed, color.Bold)
	if context != "" {
		errorColor.Fprintf(p.errorOutput, "[ERROR] %s: %v\n", context, err)
	} else {
		errorColor.Fprintf(p.errorOutput, "[ERROR] %v\n", err)
	}
}

// Success displays a success message
func (p *TerminalPresenter) Success(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgGreen, color.Bold).Fprintf(p.output, "✓ %s\n", message)
}

// Warning displays a warning message
func (p *TerminalPresenter) Warning(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgYellow, color.Bold).Fprintf(p.output, "⚠ %s\n", message)
}

// Info displays an informational message
func (p *TerminalPresenter) Info(message string) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.output, "%s\n", message)
}

// Section displays a section header
func (p *TerminalPresenter) Section(title string) {
	if p.quiet {
		return
	}

	headerColor := color.New(color.Bold)
	headerColor.Fprintf(p.output, "%s\n", title)
	headerColor.Fprintf(p.output, "%s\n", strings.Repeat("-", len(title)))
}

// Separator displays a visual separator
func (p *TerminalPresenter) Separator() {
	if p.quiet {
		return
	}
	color.New(color.Faint).Fprintf(p.output, "%s\n", strings.Repeat("-", 60))
}

// Report prints one line per check followed by a summary of the failures.
// In quiet mode only the failures are printed, to stderr.
func (p *TerminalPresenter) Report(report *checks.Report) {
	passColor := color.New(color.FgGreen)
	failColor := color.New(color.FgRed, color.Bold)

	if !p.quiet {
		for _, res := range report.Results {
			if res.Passed {
				passColor.Fprintf(p.output, "PASS ")
			} else {
				failColor.Fprintf(p.output, "FAIL ")
			}
			fmt.Fprintf(p.output, "%s\n", res.ID)
		}
		fmt.Fprintln(p.output)
	}

	failed := report.Failed()
	if len(failed) == 0 {
		p.Success(fmt.Sprintf("%d checks passed", len(report.Results)))
		return
	}

	failColor.Fprintf(p.errorOutput, "%d of %d checks failed:\n", len(failed), len(report.Results))
	for _, res := range failed {
		label := res.ID
		if res.Kind != "" {
			label += " (" + string(res.Kind) + ")"
		}
		failColor.Fprintf(p.errorOutput, "  %s\n", label)
		fmt.Fprintf(p.errorOutput, "    %s\n", res.Message)
	}
}

// SetQuiet enables or disables quiet mode
func (p *TerminalPresenter) SetQuiet(quiet bool) {
	p.quiet = quiet
}

// IsQuiet returns whether quiet mode is enabled
func (p *TerminalPresenter) IsQuiet() bool {
	return p.quiet
}

var defaultPresenter Presenter = New()

// Default returns the package-level presenter
func Default() Presenter {
	return defaultPresenter
}

// Error displays an error message using the default presenter
func Error(err error, context string) {
	defaultPresenter.Error(err, context)
}

// Success displays a success message using the default presenter
func Success(message string) {
	defaultPresenter.Success(message)
}

// Warning displays a warning message using the default presenter
func Warning(message string) {
	defaultPresenter.Warning(message)
}

// Info displays an informational message using the default presenter
func Info(message string) {
	defaultPresenter.Info(message)
}

// Section displays a section header using the default presenter
func Section(title string) {
	defaultPresenter.Section(title)
}

// Separator displays a visual separator using the default presenter
func Separator() {
	defaultPresenter.Separator()
}

// Report prints a check report using the default presenter
func Report(report *checks.Report) {
	defaultPresenter.Report(report)
}

// SetQuiet enables or disables quiet mode for the default presenter
func SetQuiet(quiet bool) {
	defaultPresenter.SetQuiet(quiet)
}
