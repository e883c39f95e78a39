package game

import "math/rand"

// Field and arcade constants. The playfield is the classic 800x600 canvas the
// web client renders; all physics is plain arcade arithmetic on it.
const (
	FieldWidth  = 800.0
	FieldHeight = 600.0

	PaddleWidth  = 20.0
	PaddleHeight = 100.0
	PaddleSpeed  = 15.0

	BallRadius = 10.0
	BallSpeed  = 5.0

	// A ball hitting the central band of a paddle flies back dead straight
	// and much faster.
	straightShotBandLow  = 0.45
	straightShotBandHigh = 0.55
	straightShotSpeed    = 30.0

	WinningScore = 10
)

// Side identifies a seat at the table. Left is player1, right is player2 (or
// the CPU in single-player mode).
type Side int

const (
	NoSide Side = iota
	SideLeft
	SideRight
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return "none"
	}
}

type Paddle struct {
	X, Y          float64
	Width, Height float64
	Speed         float64
}

// Move shifts the paddle vertically, clamped to the field.
func (p *Paddle) Move(dy float64) {
	p.Y += dy
	if p.Y < 0 {
		p.Y = 0
	}
	if p.Y+p.Height > FieldHeight {
		p.Y = FieldHeight - p.Height
	}
}

type Ball struct {
	X, Y   float64
	Radius float64
	DX, DY float64
}

// Input is the per-frame key state for both seats.
type Input struct {
	LeftUp, LeftDown   bool
	RightUp, RightDown bool
}

// Engine advances one pong match, one tick per frame. It knows nothing about
// rendering or input devices; the caller feeds it an Input and reads state.
type Engine struct {
	LeftPaddle  Paddle
	RightPaddle Paddle
	Ball        Ball

	LeftScore  int
	RightScore int

	winner Side
}

func NewEngine() *Engine {
	e := &Engine{}
	e.Restart()
	return e
}

// Restart resets scores, paddles and ball for a fresh match.
func (e *Engine) Restart() {
	e.LeftPaddle = Paddle{X: 20, Y: FieldHeight/2 - PaddleHeight/2, Width: PaddleWidth, Height: PaddleHeight, Speed: PaddleSpeed}
	e.RightPaddle = Paddle{X: FieldWidth - 2*PaddleWidth, Y: FieldHeight/2 - PaddleHeight/2, Width: PaddleWidth, Height: PaddleHeight, Speed: PaddleSpeed}
	e.LeftScore = 0
	e.RightScore = 0
	e.winner = NoSide
	e.ResetBall()
}

// ResetBall recenters the ball with a random diagonal direction.
func (e *Engine) ResetBall() {
	e.Ball = Ball{X: FieldWidth / 2, Y: FieldHeight / 2, Radius: BallRadius}
	if rand.Intn(2) == 0 {
		e.Ball.DX = BallSpeed
	} else {
		e.Ball.DX = -BallSpeed
	}
	if rand.Intn(2) == 0 {
		e.Ball.DY = BallSpeed
	} else {
		e.Ball.DY = -BallSpeed
	}
}

// Winner returns the side that reached the score threshold, or NoSide.
func (e *Engine) Winner() Side {
	return e.winner
}

// Finished reports whether the match is over.
func (e *Engine) Finished() bool {
	return e.winner != NoSide
}

// Tick advances the match by one frame: paddle movement from the input state,
// ball movement, collisions and scoring. A finished match ignores ticks.
func (e *Engine) Tick(in Input) {
	if e.winner != NoSide {
		return
	}

	if in.LeftUp {
		e.LeftPaddle.Move(-e.LeftPaddle.Speed)
	}
	if in.LeftDown {
		e.LeftPaddle.Move(e.LeftPaddle.Speed)
	}
	if in.RightUp {
		e.RightPaddle.Move(-e.RightPaddle.Speed)
	}
	if in.RightDown {
		e.RightPaddle.Move(e.RightPaddle.Speed)
	}

	ball := &e.Ball
	ball.X += ball.DX
	ball.Y += ball.DY

	// Top and bottom walls.
	if ball.Y-ball.Radius < 0 || ball.Y+ball.Radius > FieldHeight {
		ball.DY = -ball.DY
	}

	// Left paddle.
	lp := &e.LeftPaddle
	if ball.DX < 0 &&
		ball.X-ball.Radius < lp.X+lp.Width &&
		ball.X-ball.Radius > lp.X &&
		ball.Y > lp.Y && ball.Y < lp.Y+lp.Height {
		hitPoint := (ball.Y - lp.Y) / lp.Height
		if hitPoint >= straightShotBandLow && hitPoint <= straightShotBandHigh {
			ball.DY = 0
			ball.DX = straightShotSpeed
		} else {
			ball.DY *= 1.2
			ball.DX = -ball.DX
		}
		ball.X = lp.X + lp.Width + ball.Radius
	}

	// Right paddle.
	rp := &e.RightPaddle
	if ball.DX > 0 &&
		ball.X+ball.Radius > rp.X &&
		ball.X+ball.Radius < rp.X+rp.Width &&
		ball.Y > rp.Y && ball.Y < rp.Y+rp.Height {
		hitPoint := (ball.Y - rp.Y) / rp.Height
		if hitPoint >= straightShotBandLow && hitPoint <= straightShotBandHigh {
			ball.DY = 0
			ball.DX = -straightShotSpeed
		} else {
			ball.DX = -ball.DX
		}
		ball.X = rp.X - ball.Radius
	}

	// Goals.
	if ball.X-ball.Radius < 0 {
		e.RightScore++
		if !e.checkWinCondition() {
			e.ResetBall()
		}
	} else if ball.X+ball.Radius > FieldWidth {
		e.LeftScore++
		if !e.checkWinCondition() {
			e.ResetBall()
		}
	}
}

func (e *Engine) checkWinCondition() bool {
	if e.LeftScore >= WinningScore {
		e.winner = SideLeft
		return true
	}
	if e.RightScore >= WinningScore {
		e.winner = SideRight
		return true
	}
	return false
}
