package form

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithLookback sets how many prior matches a snapshot considers.
func WithLookback(n int) Option {
	return func(c *Calculator) {
		if n > 0 {
			c.lookback = n
		}
	}
}

// WithRecentWindow sets how many of the selected matches feed recent form.
func WithRecentWindow(n int) Option {
	return func(c *Calculator) {
		if n > 0 {
			c.recentWindow = n
		}
	}
}
