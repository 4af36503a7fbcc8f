package dedupe

// Option applies a configuration option to the Deduper.
type Option func(*keySet)

// WithMaxSize bounds how many keys are remembered. When full, the oldest key is
// forgotten. A non-positive size means unbounded.
func WithMaxSize(maxSize int) Option {
	return func(d *keySet) {
		d.maxSize = maxSize
	}
}
