package feedback

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Cue identifies one of the two feedback sounds.
type Cue int

const (
	CueCorrect Cue = iota
	CueWrong
)

func (c Cue) String() string {
	if c == CueCorrect {
		return "correct"
	}
	return "wrong"
}

// CueFor returns the cue for a correctness flag.
func CueFor(correct bool) Cue {
	if correct {
		return CueCorrect
	}
	return CueWrong
}

// Player plays a cue and returns when playback finishes.
type Player interface {
	Play(ctx context.Context, cue Cue) error
}

// PlaybackError reports a failed cue.
type PlaybackError struct {
	Cue Cue
	Err error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("play %s cue: %v", e.Cue, e.Err)
}

func (e *PlaybackError) Unwrap() error { return e.Err }

// BellPlayer rings the terminal bell: once for a correct answer, twice for
// a wrong one.
type BellPlayer struct {
	W   io.Writer
	Gap time.Duration
}

// NewBellPlayer creates a BellPlayer writing to stderr.
func NewBellPlayer() *BellPlayer {
	return &BellPlayer{W: os.Stderr, Gap: 150 * time.Millisecond}
}

func (b *BellPlayer) Play(ctx context.Context, cue Cue) error {
	rings := 1
	if cue == CueWrong {
		rings = 2
	}
	for i := range rings {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(b.Gap):
			}
		}
		if _, err := io.WriteString(b.W, "\a"); err != nil {
			return err
		}
	}
	return nil
}

// CommandPlayer runs an external program per cue, e.g. "paplay correct.oga".
type CommandPlayer struct {
	Correct []string
	Wrong   []string
}

// NewCommandPlayer splits the two command lines on whitespace.
func NewCommandPlayer(correct, wrong string) (*CommandPlayer, error) {
	p := &CommandPlayer{Correct: strings.Fields(correct), Wrong: strings.Fields(wrong)}
	if len(p.Correct) == 0 || len(p.Wrong) == 0 {
		return nil, fmt.Errorf("both correct and wrong sound commands are required")
	}
	return p, nil
}

func (p *CommandPlayer) Play(ctx context.Context, cue Cue) error {
	argv := p.Correct
	if cue == CueWrong {
		argv = p.Wrong
	}
	if len(argv) == 0 {
		return fmt.Errorf("no command configured")
	}
	out, err := exec.CommandContext(ctx, argv[0], argv[1:]...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s: %w: %s", argv[0], err, msg)
		}
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	return nil
}

// NopPlayer plays nothing.
type NopPlayer struct{}

func (NopPlayer) Play(context.Context, Cue) error { return nil }

// Async plays cues in the background. Failures are logged as
// *PlaybackError and never reach the caller.
type Async struct {
	player  Player
	logger  *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewAsync wraps player. A zero timeout defaults to five seconds.
func NewAsync(player Player, logger *slog.Logger, timeout time.Duration) *Async {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Async{player: player, logger: logger, timeout: timeout}
}

// Play starts playback of the cue for correct and returns immediately.
func (a *Async) Play(correct bool) {
	cue := CueFor(correct)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := a.player.Play(ctx, cue); err != nil {
			a.logger.Warn("feedback playback failed", "error", &PlaybackError{Cue: cue, Err: err})
		}
	}()
}

// Wait blocks until all started cues have finished.
func (a *Async) Wait() {
	a.wg.Wait()
}

// New builds a Player from a sound mode: "bell", "command" or "off".
func New(mode, correctCmd, wrongCmd string) (Player, error) {
	switch mode {
	case "", "bell":
		return NewBellPlayer(), nil
	case "command":
		return NewCommandPlayer(correctCmd, wrongCmd)
	case "off":
		return NopPlayer{}, nil
	default:
		return nil, fmt.Errorf("unknown sound mode %q", mode)
	}
}
