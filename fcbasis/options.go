package fcbasis

import (
	"runtime"

	"github.com/rs/zerolog"
)

type Options struct {
	Tol      float64 // Zero/one threshold for eigenvalues and singular values
	LogLevel int     // 0 = warnings only, 1 = progress, 2 = per stage timing and solver detail
	NP       int     // Worker count for projector assembly and sparse products
	Eigen    EigenOptions
	Logger   zerolog.Logger
}

type Option func(*Options)

func DefaultOptions() Options {
	return Options{
		Tol:      1.e-8,
		LogLevel: 0,
		NP:       runtime.NumCPU(),
		Eigen:    DefaultEigenOptions(),
		Logger:   zerolog.Nop(),
	}
}

func WithTol(tol float64) Option {
	return func(o *Options) { o.Tol = tol }
}

func WithLogLevel(level int) Option {
	return func(o *Options) { o.LogLevel = level }
}

func WithNP(NP int) Option {
	return func(o *Options) {
		if NP > 0 {
			o.NP = NP
		}
	}
}

func WithEigenOptions(eo EigenOptions) Option {
	return func(o *Options) { o.Eigen = eo }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

func (o Options) logger() zerolog.Logger {
	switch {
	case o.LogLevel <= 0:
		return o.Logger.Level(zerolog.WarnLevel)
	case o.LogLevel == 1:
		return o.Logger.Level(zerolog.InfoLevel)
	default:
		return o.Logger.Level(zerolog.DebugLevel)
	}
}
