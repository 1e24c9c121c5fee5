// Package progress renders an in-place terminal progress bar for
// long-running exports, such as nvtxw's row-by-row fetch loop.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Bar renders an in-place terminal progress bar for a unit of work with a
// known total count. It refreshes at a fixed interval and supports
// concurrent Increment calls from multiple goroutines.
type Bar struct {
	total     atomic.Int64
	processed atomic.Int64
	label     string
	unit      string
	barWidth  int
	start     time.Time
	out       io.Writer
	done      chan struct{}
	mu        sync.Mutex
}

// New starts a Bar labeled label, tracking progress toward total units
// named unit (e.g. "rows", "tiles"). A total of 0 renders as indeterminate
// until SetTotal is called once the real count is known. The bar writes to
// os.Stderr.
func New(label, unit string, total int64) *Bar {
	b := &Bar{
		label:    label,
		unit:     unit,
		barWidth: 30,
		start:    time.Now(),
		out:      os.Stderr,
		done:     make(chan struct{}),
	}
	b.total.Store(total)
	go b.run()
	return b
}

// SetTotal updates the total once it becomes known, for work whose size
// isn't available until after the bar starts running.
func (b *Bar) SetTotal(total int64) {
	b.total.Store(total)
}

// Increment marks one more unit as processed. Safe for concurrent use.
func (b *Bar) Increment() {
	b.processed.Add(1)
}

// Finish stops the refresh loop and prints the final bar state with a
// trailing newline.
func (b *Bar) Finish() {
	close(b.done)
	b.draw()
	fmt.Fprint(b.out, "\n")
}

func (b *Bar) run() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-b.done:
			return
		case <-ticker.C:
			b.draw()
		}
	}
}

func (b *Bar) draw() {
	b.mu.Lock()
	defer b.mu.Unlock()

	processed := b.processed.Load()
	total := b.total.Load()

	var frac float64
	if total > 0 {
		frac = float64(processed) / float64(total)
	}
	if frac > 1 {
		frac = 1
	}

	filled := int(float64(b.barWidth) * frac)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", b.barWidth-filled)

	elapsed := time.Since(b.start)
	rate := float64(0)
	if secs := elapsed.Seconds(); secs > 0 {
		rate = float64(processed) / secs
	}

	fmt.Fprintf(b.out, "\r%s [%s] %3.0f%%  %d/%d %s  %.0f/s  %s\033[K",
		b.label, bar, frac*100, processed, total, b.unit, rate, formatDuration(elapsed))
}

// formatDuration formats a duration concisely (e.g. "1m23s", "45s", "0s").
func formatDuration(d time.Duration) string {
	d = d.Truncate(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) - m*60
	return fmt.Sprintf("%dm%02ds", m, s)
}
