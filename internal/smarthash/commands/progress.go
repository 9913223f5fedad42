package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gingerrexayers/smarthash-go/internal/smarthash/lib"
)

// progressPrinter rewrites a single console line with the latest progress
// sample. A disabled printer prints nothing.
type progressPrinter struct {
	out     io.Writer
	enabled bool
	width   int
}

func newProgressPrinter(out io.Writer, enabled bool) *progressPrinter {
	return &progressPrinter{out: out, enabled: enabled}
}

func (p *progressPrinter) print(sample lib.Progress) {
	if !p.enabled {
		return
	}
	line := formatProgress(sample)
	padding := ""
	if len(line) < p.width {
		padding = strings.Repeat(" ", p.width-len(line))
	}
	p.width = len(line)
	fmt.Fprintf(p.out, "\r%s%s", line, padding)
}

// clear erases the progress line, if one was printed.
func (p *progressPrinter) clear() {
	if !p.enabled || p.width == 0 {
		return
	}
	fmt.Fprintf(p.out, "\r%s\r", strings.Repeat(" ", p.width))
	p.width = 0
}

func formatProgress(sample lib.Progress) string {
	recent := "-"
	if sample.RecentSpeed > 0 {
		recent = humanize.IBytes(uint64(sample.RecentSpeed))
	}
	return fmt.Sprintf("%d.%02d%% done (%s bytes). Remaining time: %s. File average speed: %s/sec. Recent speed: %s/sec.",
		sample.Percent/100,
		sample.Percent%100,
		humanize.Comma(sample.Done),
		formatDuration(sample.Remaining),
		humanize.IBytes(uint64(sample.AverageSpeed)),
		recent,
	)
}

// formatDuration renders d as H:MM:SS.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int64(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)
}

func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && lib.IsTerminal(f)
}
