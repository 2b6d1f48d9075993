package app

import "log"

type options struct {
	notifier notifier
	retries  int
}

const defaultConcurrencyRetries = 1

// Option configures the reservation, schedule and calendar services.
type Option func(*options)

// WithEventPublisher sends committed reservation changes to p.
func WithEventPublisher(p EventPublisher) Option {
	return func(o *options) {
		if p != nil {
			o.notifier.pub = p
		}
	}
}

// WithLogger overrides the logger used for best-effort side effects.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.notifier.logger = l
		}
	}
}

// WithConcurrencyRetries sets how many times a whole operation is retried
// after a concurrent modification was detected. Zero disables retries.
func WithConcurrencyRetries(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.retries = n
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{notifier: newNotifier(), retries: defaultConcurrencyRetries}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
