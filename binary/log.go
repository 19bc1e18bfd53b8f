package binary

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// progress wraps an io.Reader to display a progress bar when running in a terminal.
// Returns the wrapped reader and a function to finalize the progress display.
// The progress bar shows transfer speed and completion percentage.
func progress(reader io.Reader, size int64) (io.Reader, func()) {
	if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return reader, func() {}
	}

	bar := pb.
		New64(size).
		SetWriter(os.Stderr).
		SetTemplate(
			pb.ProgressBarTemplate(
				color.New(color.FgHiBlack).Sprint(
					`   └ {{string . "prefix"}}{{counters . }}` +
						` {{bar . "[" "=" ">" " " "]" }} {{percent . }}` +
						` {{speed . }} {{string . "suffix"}}`,
				),
			),
		).
		SetRefreshRate(time.Second / 60).
		SetMaxWidth(100).
		Start()

	return bar.NewProxyReader(reader), func() { bar.Finish() }
}

// all output goes to stderr; stdout may be carrying the language server stream.

func logstep(text string) {
	fmt.Fprintln(
		color.Error,
		color.BlueString(" •"),
		color.New(color.FgHiBlack).Sprint(text),
	)
}

func logdetail(text string) {
	fmt.Fprintln(
		color.Error,
		color.New(color.FgHiBlack).Sprint("   └"),
		color.New(color.FgHiBlack).Sprint(text),
	)
}

func logwarn(text string) {
	fmt.Fprintln(
		color.Error,
		color.YellowString("   !"),
		color.New(color.FgYellow).Sprint(text),
	)
}
