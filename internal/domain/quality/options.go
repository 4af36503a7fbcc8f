package quality

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithWeights overrides the win, draw and goal-difference weights of the raw score.
// Non-positive weights are ignored.
func WithWeights(win, draw, goalDiff float64) Option {
	return func(e *Engine) {
		if win > 0 {
			e.winWeight = win
		}
		if draw > 0 {
			e.drawWeight = draw
		}
		if goalDiff > 0 {
			e.goalDiffWeight = goalDiff
		}
	}
}

// WithGoalDiffOffset shifts goal difference per match before it is floored at zero.
func WithGoalDiffOffset(offset float64) Option {
	return func(e *Engine) {
		e.goalDiffOffset = offset
	}
}
