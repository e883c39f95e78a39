package game

import "testing"

func TestPaddleMoveClamped(t *testing.T) {
	p := Paddle{Y: 10, Height: PaddleHeight, Speed: PaddleSpeed}

	p.Move(-50)
	if p.Y != 0 {
		t.Errorf("moved above the field: Y = %v", p.Y)
	}

	p.Y = FieldHeight - PaddleHeight - 5
	p.Move(50)
	if p.Y != FieldHeight-PaddleHeight {
		t.Errorf("moved below the field: Y = %v", p.Y)
	}
}

func TestEngineTickMovesPaddles(t *testing.T) {
	e := NewEngine()
	startLeft := e.LeftPaddle.Y
	startRight := e.RightPaddle.Y

	e.Tick(Input{LeftUp: true, RightDown: true})

	if e.LeftPaddle.Y != startLeft-PaddleSpeed {
		t.Errorf("left paddle at %v, want %v", e.LeftPaddle.Y, startLeft-PaddleSpeed)
	}
	if e.RightPaddle.Y != startRight+PaddleSpeed {
		t.Errorf("right paddle at %v, want %v", e.RightPaddle.Y, startRight+PaddleSpeed)
	}
}

func TestEngineWallBounce(t *testing.T) {
	e := NewEngine()
	e.Ball = Ball{X: 400, Y: BallRadius + 2, Radius: BallRadius, DX: 0, DY: -BallSpeed}

	e.Tick(Input{})

	if e.Ball.DY != BallSpeed {
		t.Errorf("DY = %v after top wall, want %v", e.Ball.DY, BallSpeed)
	}
}

func TestEngineStraightShot(t *testing.T) {
	e := NewEngine()
	// Ball about to meet the exact center of the right paddle.
	rp := e.RightPaddle
	e.Ball = Ball{
		X:      rp.X - BallRadius - 1,
		Y:      rp.Y + rp.Height/2,
		Radius: BallRadius,
		DX:     BallSpeed,
		DY:     BallSpeed,
	}

	e.Tick(Input{})

	if e.Ball.DX != -straightShotSpeed {
		t.Errorf("DX = %v after central hit, want %v", e.Ball.DX, -straightShotSpeed)
	}
	if e.Ball.DY != 0 {
		t.Errorf("DY = %v after central hit, want 0", e.Ball.DY)
	}
}

func TestEngineEdgeHitReflects(t *testing.T) {
	e := NewEngine()
	// Hit near the top edge of the left paddle: outside the central band, so
	// the ball reflects with its vertical speed amplified.
	lp := e.LeftPaddle
	e.Ball = Ball{
		X:      lp.X + lp.Width + BallRadius + 1,
		Y:      lp.Y + 10,
		Radius: BallRadius,
		DX:     -BallSpeed,
		DY:     BallSpeed,
	}

	e.Tick(Input{})

	if e.Ball.DX != BallSpeed {
		t.Errorf("DX = %v after edge hit, want %v", e.Ball.DX, BallSpeed)
	}
	if e.Ball.DY != BallSpeed*1.2 {
		t.Errorf("DY = %v after edge hit, want %v", e.Ball.DY, BallSpeed*1.2)
	}
}

func TestEngineScoringAndWin(t *testing.T) {
	e := NewEngine()

	// Drive the ball past the right edge repeatedly.
	for i := 0; i < WinningScore; i++ {
		e.Ball = Ball{X: FieldWidth - 1, Y: 300, Radius: BallRadius, DX: BallSpeed * 4, DY: 0}
		// Park the right paddle away from the ball path.
		e.RightPaddle.Y = 0
		e.Tick(Input{})
	}

	if e.LeftScore != WinningScore {
		t.Fatalf("left score = %d, want %d", e.LeftScore, WinningScore)
	}
	if !e.Finished() || e.Winner() != SideLeft {
		t.Fatalf("winner = %v finished = %v, want left finished", e.Winner(), e.Finished())
	}

	// A finished match ignores further ticks.
	score := e.LeftScore
	ballX := e.Ball.X
	e.Tick(Input{LeftUp: true})
	if e.LeftScore != score || e.Ball.X != ballX {
		t.Error("finished match still mutating state")
	}
}

func TestEngineRestart(t *testing.T) {
	e := NewEngine()
	e.LeftScore = 9
	e.RightScore = 4
	e.winner = SideLeft

	e.Restart()

	if e.LeftScore != 0 || e.RightScore != 0 || e.Finished() {
		t.Errorf("restart left score %d-%d finished=%v", e.LeftScore, e.RightScore, e.Finished())
	}
	if e.Ball.X != FieldWidth/2 || e.Ball.Y != FieldHeight/2 {
		t.Errorf("ball at (%v,%v), want center", e.Ball.X, e.Ball.Y)
	}
}
