package game

// The CPU opponent drives the right paddle. Every prediction interval it
// solves where the ball will cross the right edge (straight line y = m*x + q,
// with at most one wall bounce folded in) and then steers the paddle toward
// that y until it is within a fixed threshold.

const (
	// aiStopThreshold is how close (in px) the paddle center must get to the
	// predicted impact point before the CPU stops steering.
	aiStopThreshold = 8.0
)

// PredictImpactY computes the y coordinate where the ball will reach the
// right edge of the field, accounting for a single reflection off the top or
// bottom wall, clamped so the paddle center can actually reach it.
func PredictImpactY(ball Ball) float64 {
	var yWall float64

	switch {
	case ball.DY == 0:
		yWall = ball.Y
	case ball.DY > 0:
		m := ball.DY / ball.DX
		yWall = FieldHeight
		q := ball.Y - m*ball.X
		xWall := (yWall - q) / m
		if xWall < FieldWidth {
			// Bounces off the bottom first, then travels to the edge.
			q = yWall - (-m)*xWall
			yWall = -m*FieldWidth + q
		} else {
			yWall = m*FieldWidth + q
		}
	default:
		m := ball.DY / ball.DX
		yWall = 0
		q := ball.Y - m*ball.X
		xWall := (yWall - q) / m
		if xWall < FieldWidth {
			q = yWall - (-m)*xWall
			yWall = -m*FieldWidth + q
		} else {
			yWall = m*FieldWidth + q
		}
	}

	if yWall < PaddleHeight/2 {
		yWall = PaddleHeight / 2
	}
	if yWall > FieldHeight-PaddleHeight/2 {
		yWall = FieldHeight - PaddleHeight/2
	}
	return yWall
}

// steer translates a target y into up/down key state for the right paddle.
// Returns false/false once the paddle center is within the stop threshold.
func steer(paddle Paddle, targetY float64) (up, down bool) {
	center := paddle.Y + paddle.Height/2
	diff := center - targetY
	if diff > aiStopThreshold {
		return true, false
	}
	if diff < -aiStopThreshold {
		return false, true
	}
	return false, false
}
