package gobinding

import (
	"log/slog"

	"github.com/sandrolain/gobinding/pkg/config"
	"github.com/sandrolain/gobinding/pkg/observability"
	"github.com/sandrolain/gobinding/pkg/observation"
	"github.com/sandrolain/gobinding/pkg/resources"
)

// Option configures a Runtime.
type Option func(*Options)

// Options holds Runtime configuration.
type Options struct {
	// Logger receives parse, binding and observer errors.
	// Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics records parse cache usage, flushes and evaluations.
	Metrics observability.MetricsRecorder

	// Spans traces evaluations and bindings.
	Spans observability.SpanManager

	// Config holds parser, observation and evaluation settings.
	Config config.Config

	// Resources resolves value converters and binding behaviors.
	// Defaults to a registry holding the standard set.
	Resources *resources.Registry

	// Converters are registered on a copy of Resources when the Runtime is
	// created.
	Converters []resources.ConverterDef

	// Scheduler drives dirty checking.
	Scheduler observation.Scheduler

	// Hosts get first refusal on observer lookups.
	Hosts []observation.HostObserverLocator

	// ErrorHandler receives errors raised while changes are delivered.
	ErrorHandler func(error)
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics through the global meter
// provider.
func WithMetrics() Option {
	return func(o *Options) {
		o.Metrics = observability.NewMetricsRecorder()
	}
}

// WithMetricsRecorder sets a custom metrics recorder.
func WithMetricsRecorder(m observability.MetricsRecorder) Option {
	return func(o *Options) {
		o.Metrics = m
	}
}

// WithTracing enables OpenTelemetry tracing through the global tracer
// provider.
func WithTracing() Option {
	return func(o *Options) {
		o.Spans = observability.NewSpanManager()
	}
}

// WithConfig applies a loaded configuration.
func WithConfig(cfg config.Config) Option {
	return func(o *Options) {
		o.Config = cfg
	}
}

// WithResources sets the resource registry.
func WithResources(r *resources.Registry) Option {
	return func(o *Options) {
		o.Resources = r
	}
}

// WithConverters registers extra value converters, such as the packs under
// pkg/ext:
//
//	rt := gobinding.New(gobinding.WithConverters(ext.All()...))
func WithConverters(defs ...resources.ConverterDef) Option {
	return func(o *Options) {
		o.Converters = append(o.Converters, defs...)
	}
}

// WithScheduler sets the dirty-check scheduler.
func WithScheduler(s observation.Scheduler) Option {
	return func(o *Options) {
		o.Scheduler = s
	}
}

// WithHostObserverLocator registers a host observer locator.
func WithHostObserverLocator(h observation.HostObserverLocator) Option {
	return func(o *Options) {
		o.Hosts = append(o.Hosts, h)
	}
}

// WithErrorHandler sets the handler for errors raised while changes are
// delivered.
func WithErrorHandler(fn func(error)) Option {
	return func(o *Options) {
		o.ErrorHandler = fn
	}
}
