package distinct

// Option applies a configuration option to the Filter.
type Option func(*Filter)

// WithThreshold sets the similarity threshold above which a candidate
// question is rejected. Values outside (0, 1] are ignored.
func WithThreshold(t float64) Option {
	return func(f *Filter) {
		if t > 0 && t <= 1 {
			f.threshold = t
		}
	}
}

// WithMinTokenLength sets the minimum token length kept by tokenization.
func WithMinTokenLength(n int) Option {
	return func(f *Filter) {
		if n > 0 {
			f.minTokenLen = n
		}
	}
}
