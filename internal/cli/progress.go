package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/lethalposters/pkg/observability"
)

const barWidth = 30

// progressBar draws a single-line bar from batch hook events.
// Indices may complete out of order when the batch runs with several workers.
type progressBar struct {
	observability.NoopBatchHooks

	w      io.Writer
	mu     sync.Mutex
	total  int
	done   int
	failed int
	start  time.Time
	width  int // width of the last drawn line
}

func newProgressBar(w io.Writer) *progressBar {
	return &progressBar{w: w}
}

func (p *progressBar) OnBatchStart(_ context.Context, _ string, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total, p.done, p.failed = total, 0, 0
	p.start = time.Now()
	p.draw()
}

func (p *progressBar) OnIndexComplete(_ context.Context, _ int, _ time.Duration, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	if err != nil {
		p.failed++
	}
	p.draw()
}

func (p *progressBar) OnBatchComplete(context.Context, string, int, time.Duration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "\r%s\r", strings.Repeat(" ", p.width))
	p.width = 0
}

// draw must be called with mu held.
func (p *progressBar) draw() {
	line := renderBar(p.done, p.total, p.failed, time.Since(p.start))
	fmt.Fprintf(p.w, "\r%s", line)
	p.width = max(p.width, len([]rune(line)))
}

// renderBar formats one progress line, e.g. "▕███░░░▏ 3/12 1.2s".
func renderBar(done, total, failed int, elapsed time.Duration) string {
	filled := 0
	if total > 0 {
		filled = min(done*barWidth/total, barWidth)
	}
	bar := styleBarFilled.Render(strings.Repeat("█", filled)) +
		styleBarEmpty.Render(strings.Repeat("░", barWidth-filled))

	line := fmt.Sprintf("▕%s▏ %d/%d", bar, done, total)
	if failed > 0 {
		line += " " + StyleWarning.Render(fmt.Sprintf("(%d failed)", failed))
	}
	return line + " " + StyleDim.Render(elapsed.Round(100*time.Millisecond).String())
}
