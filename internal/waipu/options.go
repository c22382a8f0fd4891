package waipu

type settings struct {
	log   Logger
	sleep SleepFunc
}

func defSettings() settings {
	return settings{
		log:   nopLogger{},
		sleep: sleep,
	}
}

// Option configures Paginator, Deleter and Pipeline.
type Option func(*settings)

// WithLogger sets the progress logger.
func WithLogger(l Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSleep overrides the function used to wait out the flood control.
func WithSleep(fn SleepFunc) Option {
	return func(s *settings) {
		if fn != nil {
			s.sleep = fn
		}
	}
}

func applyOpts(opts []Option) settings {
	s := defSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
