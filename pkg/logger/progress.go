package logger

import (
	"fmt"
	"strings"
)

// ProgressBar renders single-line progress for long fast-forward runs
type ProgressBar struct {
	total   int
	current int
	width   int
	message string
}

// NewProgressBar creates a progress bar that completes at total steps
func NewProgressBar(total int, message string) *ProgressBar {
	if total < 1 {
		total = 1
	}
	return &ProgressBar{
		total:   total,
		width:   36,
		message: message,
	}
}

// Update sets the current step and redraws
func (p *ProgressBar) Update(current int) {
	p.current = current
	p.draw()
}

// Increment advances the bar by one step
func (p *ProgressBar) Increment() {
	p.current++
	p.draw()
}

// Finish fills the bar and terminates the line
func (p *ProgressBar) Finish() {
	p.current = p.total
	p.draw()
	fmt.Println()
}

func (p *ProgressBar) draw() {
	percent := float64(p.current) / float64(p.total)
	if percent > 1 {
		percent = 1
	}
	filled := int(percent * float64(p.width))

	bar := strings.Repeat("█", filled) + strings.Repeat("░", p.width-filled)

	if l, ok := defaultLogger.(*logger); ok && !l.noColor {
		fmt.Printf("\r%s %s%s%s %3.0f%%", p.message, colorGreen, bar, colorReset, percent*100)
		return
	}
	fmt.Printf("\r%s [%s] %3.0f%%", p.message, bar, percent*100)
}
