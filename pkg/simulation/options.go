package simulation

import (
	"github.com/peter-kozarec/equitygym/pkg/common"
	"github.com/peter-kozarec/equitygym/pkg/indicators"
	"go.uber.org/zap"
)

// FeatureProvider supplies the indicator part of an observation. At must not fail for any step.
type FeatureProvider interface {
	At(step int) indicators.Snapshot
}

type FeatureFactory func(bars []common.Bar) FeatureProvider

type Option func(*options)

type options struct {
	logger   *zap.Logger
	features FeatureFactory
}

func defaultOptions() options {
	return options{
		logger: zap.NewNop(),
		features: func(bars []common.Bar) FeatureProvider {
			return indicators.NewTechnical(bars)
		},
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithFeatures(factory FeatureFactory) Option {
	return func(o *options) {
		if factory != nil {
			o.features = factory
		}
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
