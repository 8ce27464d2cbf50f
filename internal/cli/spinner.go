package cli

import (
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
)

const (
	// DefaultSpinnerInterval is the time between two animation frames.
	DefaultSpinnerInterval = 100 * time.Millisecond
	// defaultSpinnerCharSet is the braille dot set also used by the tool executor.
	defaultSpinnerCharSet = 14
)

// Indicator animates a rotating glyph and the current message on the
// diagnostic stream while the foreground goroutine blocks.
//
// The animation runs on a single background goroutine that shares only the
// running and paused flags, the pause and resume channels, and the message
// stack with the foreground. Callers that prompt the user while the indicator
// may be running must bracket the prompt with Pause and Resume.
type Indicator struct {
	out      io.Writer
	enabled  bool
	interval time.Duration
	frames   []string
	theme    Theme

	mu       sync.Mutex
	messages []string

	running atomic.Bool
	paused  atomic.Bool
	started atomic.Bool

	pauseCh  chan chan struct{}
	resumeCh chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	// lastWidth is only touched by the animation goroutine, and by Stop after
	// that goroutine has exited.
	lastWidth int
}

// IndicatorOptions configures an Indicator.
type IndicatorOptions struct {
	// Out is the diagnostic stream, normally os.Stderr.
	Out io.Writer
	// Enabled is false for non-interactive invocations; no goroutine is ever
	// started then.
	Enabled bool
	// Interval defaults to DefaultSpinnerInterval.
	Interval time.Duration
	Theme    Theme
}

// NewIndicator creates an indicator. It does not start animating until Start.
func NewIndicator(opts IndicatorOptions) *Indicator {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultSpinnerInterval
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	return &Indicator{
		out:      out,
		enabled:  opts.Enabled,
		interval: interval,
		frames:   spinner.CharSets[defaultSpinnerCharSet],
		theme:    opts.Theme,
		pauseCh:  make(chan chan struct{}),
		resumeCh: make(chan struct{}),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// PushMessage makes msg the displayed message until it is popped.
func (p *Indicator) PushMessage(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
}

// PopMessage removes the displayed message, revealing the previous one.
func (p *Indicator) PopMessage() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.messages) > 0 {
		p.messages = p.messages[:len(p.messages)-1]
	}
}

// UpdateMessage replaces the displayed message.
func (p *Indicator) UpdateMessage(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.messages) == 0 {
		p.messages = append(p.messages, msg)
		return
	}
	p.messages[len(p.messages)-1] = msg
}

// Message returns the top of the message stack.
func (p *Indicator) Message() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.messages) == 0 {
		return ""
	}
	return p.messages[len(p.messages)-1]
}

// Running reports whether the animation goroutine is active.
func (p *Indicator) Running() bool {
	return p.running.Load()
}

// Start spawns the animation goroutine. It is a no-op when the indicator is
// disabled or was already started. Cancelling ctx stops the animation within
// one frame.
func (p *Indicator) Start(ctx context.Context) {
	if !p.enabled || !p.started.CompareAndSwap(false, true) {
		return
	}
	p.running.Store(true)
	go p.run(ctx)
}

// Pause clears the line and suspends the animation. It returns only after
// the animation goroutine has cleared the line. Pausing an indicator that
// never started or has already stopped returns immediately.
func (p *Indicator) Pause() {
	if !p.running.Load() || !p.paused.CompareAndSwap(false, true) {
		return
	}
	ack := make(chan struct{})
	select {
	case p.pauseCh <- ack:
		<-ack
	case <-p.done:
	}
}

// Resume restarts the animation after Pause.
func (p *Indicator) Resume() {
	if !p.paused.CompareAndSwap(true, false) {
		return
	}
	select {
	case p.resumeCh <- struct{}{}:
	case <-p.done:
	}
}

// Stop terminates the animation, waits for the goroutine to exit and clears
// the last rendered line. It is safe to call before Start and more than once.
func (p *Indicator) Stop() {
	if !p.started.Load() {
		return
	}
	p.running.Store(false)
	p.stopOnce.Do(func() { close(p.stopCh) })
	<-p.done
}

func (p *Indicator) run(ctx context.Context) {
	defer close(p.done)
	defer p.running.Store(false)
	defer p.clear()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	frame := 0
	p.draw(frame)
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case ack := <-p.pauseCh:
			p.clear()
			close(ack)
			select {
			case <-p.resumeCh:
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			}
			p.draw(frame)
		case <-ticker.C:
			frame = (frame + 1) % len(p.frames)
			p.draw(frame)
		}
	}
}

func (p *Indicator) draw(frame int) {
	line := p.theme.paint(colorHighlight, p.frames[frame]) + " " + p.Message() + "..."
	width := text.RuneWidthWithoutEscSequences(line)
	pad := ""
	if p.lastWidth > width {
		pad = strings.Repeat(" ", p.lastWidth-width)
	}
	_, _ = io.WriteString(p.out, "\r"+line+pad)
	p.lastWidth = width
}

func (p *Indicator) clear() {
	_, _ = io.WriteString(p.out, "\r"+strings.Repeat(" ", p.lastWidth)+"\r")
	p.lastWidth = 0
}
