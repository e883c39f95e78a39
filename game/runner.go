package game

import (
	"context"
	"sync"
	"time"
)

const (
	frameInterval     = 16 * time.Millisecond // ~60fps, the animation-frame cadence
	aiPredictInterval = time.Second
	aiSteerInterval   = 5 * time.Millisecond
)

// Frame is a render snapshot streamed to the client after every tick.
type Frame struct {
	BallX        float64 `json:"ball_x"`
	BallY        float64 `json:"ball_y"`
	LeftPaddleY  float64 `json:"left_paddle_y"`
	RightPaddleY float64 `json:"right_paddle_y"`
	LeftScore    int     `json:"left_score"`
	RightScore   int     `json:"right_score"`
	Finished     bool    `json:"finished"`
	Winner       string  `json:"winner,omitempty"`
}

// Result is the outcome of a finished match.
type Result struct {
	Winner     Side
	LeftScore  int
	RightScore int
}

// Runner plays one match to the score threshold on a frame ticker. The CPU
// paddle, when enabled, runs on its own timers; every timer is owned by the
// Run context, so match end, restart and session teardown all cancel them —
// nothing keeps mutating input state after the match is logically over.
type Runner struct {
	mu     sync.Mutex
	engine *Engine
	input  Input
	ai     bool

	frames chan Frame
}

func NewRunner(aiOpponent bool) *Runner {
	return &Runner{
		engine: NewEngine(),
		ai:     aiOpponent,
		frames: make(chan Frame, 1),
	}
}

// SetInput updates the key state for one seat. In single-player mode the
// right seat belongs to the CPU and external input for it is ignored.
func (r *Runner) SetInput(side Side, up, down bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch side {
	case SideLeft:
		r.input.LeftUp, r.input.LeftDown = up, down
	case SideRight:
		if !r.ai {
			r.input.RightUp, r.input.RightDown = up, down
		}
	}
}

// Frames exposes the per-tick snapshots. Slow consumers lose frames rather
// than stalling the loop. The channel is closed when Run returns, so a
// consumer ranging over it terminates with the match.
func (r *Runner) Frames() <-chan Frame {
	return r.frames
}

// Run plays the match until a side reaches the winning score or ctx is
// cancelled. All AI timers are torn down and the frame channel is closed
// before Run returns. Run must be called at most once per Runner.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer close(r.frames)

	if r.ai {
		go r.runAI(ctx)
	}

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-ticker.C:
			r.mu.Lock()
			r.engine.Tick(r.input)
			frame := r.snapshotLocked()
			finished := r.engine.Finished()
			result := Result{Winner: r.engine.Winner(), LeftScore: r.engine.LeftScore, RightScore: r.engine.RightScore}
			r.mu.Unlock()

			select {
			case r.frames <- frame:
			default:
			}

			if finished {
				return result, nil
			}
		}
	}
}

func (r *Runner) snapshotLocked() Frame {
	f := Frame{
		BallX:        r.engine.Ball.X,
		BallY:        r.engine.Ball.Y,
		LeftPaddleY:  r.engine.LeftPaddle.Y,
		RightPaddleY: r.engine.RightPaddle.Y,
		LeftScore:    r.engine.LeftScore,
		RightScore:   r.engine.RightScore,
	}
	if w := r.engine.Winner(); w != NoSide {
		f.Finished = true
		f.Winner = w.String()
	}
	return f
}

// runAI recomputes the impact prediction once a second and steers the right
// paddle toward it on a fast timer, exactly until the stop threshold. Both
// tickers die with the context.
func (r *Runner) runAI(ctx context.Context) {
	predict := time.NewTicker(aiPredictInterval)
	defer predict.Stop()
	steerTicker := time.NewTicker(aiSteerInterval)
	defer steerTicker.Stop()

	var targetY float64
	var tracking bool

	for {
		select {
		case <-ctx.Done():
			return
		case <-predict.C:
			r.mu.Lock()
			// Only chase balls moving toward the CPU side.
			if r.engine.Ball.DX > 0 && !r.engine.Finished() {
				targetY = PredictImpactY(r.engine.Ball)
				tracking = true
			}
			r.mu.Unlock()
		case <-steerTicker.C:
			if !tracking {
				continue
			}
			r.mu.Lock()
			if r.engine.Finished() {
				r.input.RightUp, r.input.RightDown = false, false
				r.mu.Unlock()
				return
			}
			up, down := steer(r.engine.RightPaddle, targetY)
			r.input.RightUp, r.input.RightDown = up, down
			if !up && !down {
				tracking = false
			}
			r.mu.Unlock()
		}
	}
}
