package service

import (
	"go.uber.org/zap"

	"github.com/rl1809/pantry/internal/metrics"
)

type options struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
}

type Option func(o *options)

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics enables Prometheus instrumentation. Services run without
// metrics when the option is omitted.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
