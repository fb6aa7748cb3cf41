package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"trailcam/capture"
	"trailcam/config"
	"trailcam/overlay"
)

// ErrSourceExhausted ends the loop when the frame source stops delivering
// frames. For a video file this is the normal end of input.
var ErrSourceExhausted = errors.New("frame source exhausted")

// maxEmptyFrames is how many empty frames in a row are skipped before the
// source is treated as exhausted
const maxEmptyFrames = 100

// State of the frame loop
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "RUNNING"
	case StateStopped:
		return "STOPPED"
	default:
		return "IDLE"
	}
}

// IsExitKey compares a polled key against the exit key on its low byte, so
// modifier bits some backends set do not matter. -1 (no key) never matches.
func IsExitKey(key, exitKey int) bool {
	return key >= 0 && key&0xFF == exitKey&0xFF
}

// Loop drives capture, tracking and display until the exit key, context
// cancellation or the end of the source.
type Loop struct {
	cfg     config.Config
	source  capture.Source
	display capture.Display
	tracker *Tracker
	stats   *PipelineStats

	saver    *capture.FrameSaver
	terminal func() []string

	state  State
	frames int64
}

// LoopOption configures optional parts of the loop.
type LoopOption func(*Loop)

// WithFrameSaver enables JPEG saving of pre and/or post overlay frames.
func WithFrameSaver(s *capture.FrameSaver) LoopOption {
	return func(l *Loop) { l.saver = s }
}

// WithTerminalFeed supplies the lines of the terminal overlay.
func WithTerminalFeed(fn func() []string) LoopOption {
	return func(l *Loop) { l.terminal = fn }
}

// NewLoop takes ownership of source and display; both are closed when Run
// returns.
func NewLoop(cfg config.Config, source capture.Source, display capture.Display, tracker *Tracker, opts ...LoopOption) *Loop {
	l := &Loop{
		cfg:     cfg,
		source:  source,
		display: display,
		tracker: tracker,
		stats:   NewPipelineStats(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State reports where the loop is in its lifecycle.
func (l *Loop) State() State {
	return l.state
}

// Frames is the number of frames processed and shown.
func (l *Loop) Frames() int64 {
	return l.frames
}

// Stats exposes the pipeline statistics.
func (l *Loop) Stats() *PipelineStats {
	return l.stats
}

// Run processes frames until the exit key is pressed or ctx is cancelled,
// both of which return nil, or until the source runs dry, which returns
// ErrSourceExhausted. Source and display are released on every exit path.
func (l *Loop) Run(ctx context.Context) error {
	l.state = StateRunning
	defer func() {
		l.release()
		l.state = StateStopped
	}()

	frame := gocv.NewMat()
	defer frame.Close()

	reportEvery := l.cfg.PerfReportInterval()
	lastReport := time.Now()
	emptyFrames := 0

	for {
		select {
		case <-ctx.Done():
			debugMsg("PIPELINE", fmt.Sprintf("Stopping after %d frames: %v", l.frames, ctx.Err()))
			return nil
		default:
		}

		readStart := time.Now()
		if !l.source.Read(&frame) {
			debugMsg("PIPELINE", fmt.Sprintf("Source stopped delivering frames after %d frames", l.frames))
			return ErrSourceExhausted
		}
		if !capture.IsValidFrame(frame) {
			emptyFrames++
			if emptyFrames >= maxEmptyFrames {
				return errors.Wrapf(ErrSourceExhausted, "%d invalid frames in a row", emptyFrames)
			}
			continue
		}
		emptyFrames = 0
		l.stats.UpdateCapture(time.Since(readStart))

		if l.shouldSave(l.cfg.PreOverlayJpg) {
			l.save(frame, capture.StagePreOverlay)
		}

		processStart := time.Now()
		obs, err := l.tracker.ProcessFrame(&frame)
		if err != nil {
			debugMsg("ERROR", fmt.Sprintf("Frame %d skipped: %v", l.frames, err))
			if l.pollExit() {
				return nil
			}
			continue
		}
		l.stats.UpdateProcess(time.Since(processStart), obs.Found)
		fps := l.stats.UpdateFPS()

		if l.cfg.StatusOverlay {
			l.tracker.renderer.DrawStatus(&frame, overlay.Status{
				Time:     time.Now(),
				FPS:      fps,
				Mode:     obs.Mode(),
				TrailLen: l.tracker.Trail().Len(),
				TrailCap: l.tracker.Trail().Cap(),
				Area:     obs.Area,
			})
		}
		if l.cfg.TerminalOverlay && l.terminal != nil {
			l.tracker.renderer.DrawTerminal(&frame, l.terminal())
		}

		if l.shouldSave(l.cfg.PostOverlayJpg) {
			l.save(frame, capture.StagePostOverlay)
		}

		l.display.Show(frame, l.tracker.Mask())
		l.frames++

		if l.pollExit() {
			return nil
		}

		if reportEvery > 0 && time.Since(lastReport) >= reportEvery {
			debugMsg("PERF", l.stats.GetStats().String())
			lastReport = time.Now()
		}
	}
}

// pollExit waits for a key press and reports whether it was the exit key.
func (l *Loop) pollExit() bool {
	key := l.display.WaitKey(l.cfg.KeyWaitMillis)
	if !IsExitKey(key, l.cfg.ExitKey) {
		return false
	}
	debugMsg("PIPELINE", fmt.Sprintf("Exit key pressed after %d frames", l.frames))
	return true
}

func (l *Loop) shouldSave(enabled bool) bool {
	return enabled && l.saver != nil && l.saver.ShouldSave(l.frames)
}

func (l *Loop) save(frame gocv.Mat, stage string) {
	if _, err := l.saver.Save(frame, stage, l.frames); err != nil {
		debugMsg("JPEG_ERROR", err.Error())
	}
}

// release closes the source and the display, logging failures.
func (l *Loop) release() {
	if err := l.source.Close(); err != nil {
		debugMsg("WARN", fmt.Sprintf("Closing source: %v", err))
	}
	if err := l.display.Close(); err != nil {
		debugMsg("WARN", fmt.Sprintf("Closing display: %v", err))
	}
}
