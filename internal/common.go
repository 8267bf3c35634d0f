package internal

import "time"

// DefaultTimeout bounds how long a single TV request may take before the
// transport gives up. NetCast firmware answers well under a second on a
// healthy LAN, so three seconds is generous without leaving callers hanging.
const DefaultTimeout = 3 * time.Second

type FnModeOptions struct {
	Debug   bool
	Test    bool
	Timeout time.Duration
}

type FnModeOption func(*FnModeOptions)

func WithDebug(debug bool) FnModeOption {
	return func(opts *FnModeOptions) {
		opts.Debug = debug
	}
}

func WithTest(test bool) FnModeOption {
	return func(opts *FnModeOptions) {
		opts.Test = test
	}
}

// WithTimeout overrides the per-request timeout. Zero or negative values
// fall back to DefaultTimeout.
func WithTimeout(timeout time.Duration) FnModeOption {
	return func(opts *FnModeOptions) {
		opts.Timeout = timeout
	}
}

func NewModeOptions(options ...FnModeOption) *FnModeOptions {
	opts := &FnModeOptions{
		Debug:   false,
		Test:    false,
		Timeout: DefaultTimeout,
	}
	for _, option := range options {
		option(opts)
	}
	return opts
}
