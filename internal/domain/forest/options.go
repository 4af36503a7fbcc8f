package forest

// Option applies a configuration option to the Forest.
type Option func(*Forest)

// WithEstimators sets the number of trees.
func WithEstimators(n int) Option {
	return func(f *Forest) {
		if n > 0 {
			f.estimators = n
		}
	}
}

// WithMaxDepth bounds the depth of every tree.
func WithMaxDepth(depth int) Option {
	return func(f *Forest) {
		if depth > 0 {
			f.maxDepth = depth
		}
	}
}

// WithMinSamplesSplit sets the smallest node that may be split.
func WithMinSamplesSplit(n int) Option {
	return func(f *Forest) {
		if n >= 2 {
			f.minSamplesSplit = n
		}
	}
}

// WithMinSamplesLeaf sets the smallest allowed leaf.
func WithMinSamplesLeaf(n int) Option {
	return func(f *Forest) {
		if n > 0 {
			f.minSamplesLeaf = n
		}
	}
}

// WithMaxFeatures sets how many features each split considers. Zero means the
// square root of the feature count.
func WithMaxFeatures(n int) Option {
	return func(f *Forest) {
		if n >= 0 {
			f.maxFeatures = n
		}
	}
}

// WithClasses sets the size of the label space.
func WithClasses(n int) Option {
	return func(f *Forest) {
		if n >= 2 {
			f.classes = n
		}
	}
}

// WithSeed sets the master seed for bootstrap and feature sampling.
func WithSeed(seed int64) Option {
	return func(f *Forest) {
		f.seed = seed
	}
}

// WithWorkers bounds how many trees are fitted concurrently.
func WithWorkers(n int) Option {
	return func(f *Forest) {
		if n > 0 {
			f.workers = n
		}
	}
}
