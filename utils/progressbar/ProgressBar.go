// Package progressbar implements functionality of printing a progress
// bar to the terminal window
package progressbar

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gosuri/uilive"
)

// ProgressBar implements a progress bar that is redrawn in place each
// time Display is called. An optional status, such as the most recent
// loss, is printed after the bar.
//
// ProgressBar does not use concurrency; the caller decides when to
// redraw it.
type ProgressBar struct {
	width           float64
	maxProgress     float64
	currentProgress float64
	status          string
	startTime       time.Time

	bar    strings.Builder
	writer *uilive.Writer
}

// New returns a new progress bar that is width characters wide,
// reaches 100% after max calls to Increment, and is drawn to out.
func New(out io.Writer, width, max int) *ProgressBar {
	writer := uilive.New()
	writer.Out = out

	if max < 1 {
		max = 1
	}

	return &ProgressBar{
		width:       float64(width),
		maxProgress: float64(max),
		startTime:   time.Now(),
		writer:      writer,
	}
}

// Increment increments the interal progress counter. Each time an
// iteration is performed, Increment should be called.
func (p *ProgressBar) Increment() {
	if p.currentProgress < p.maxProgress {
		p.currentProgress++
	}
}

// SetStatus sets the text printed after the bar
func (p *ProgressBar) SetStatus(format string, args ...interface{}) {
	p.status = fmt.Sprintf(format, args...)
}

// Percent returns the completed percentage
func (p *ProgressBar) Percent() float64 {
	return p.currentProgress / p.maxProgress * 100
}

// String returns the current bar without drawing it
func (p *ProgressBar) String() string {
	p.bar.Reset()
	p.bar.WriteString("|")

	currentProg := p.currentProgress / p.maxProgress * p.width
	for i := 0.0; i < currentProg; i++ {
		p.bar.WriteString("█")
	}
	for i := currentProg; i < p.width; i++ {
		p.bar.WriteString(" ")
	}
	p.bar.WriteString(fmt.Sprintf("| [%.2f%% | elapsed: %v]", p.Percent(),
		time.Since(p.startTime).Truncate(time.Second)))

	if p.status != "" {
		p.bar.WriteString(" ")
		p.bar.WriteString(p.status)
	}
	return p.bar.String()
}

// Display redraws the progress bar, replacing the previous drawing
func (p *ProgressBar) Display() error {
	if _, err := fmt.Fprintln(p.writer, p.String()); err != nil {
		return fmt.Errorf("display: %v", err)
	}
	if err := p.writer.Flush(); err != nil {
		return fmt.Errorf("display: %v", err)
	}
	return nil
}
