package policykit

import (
	"github.com/clearledger/policykit/conflict"
	"github.com/clearledger/policykit/metrics"
	"github.com/clearledger/policykit/model"
	"github.com/clearledger/policykit/service/approval"
	"github.com/clearledger/policykit/service/dao"
	"github.com/clearledger/policykit/service/notification"
	"github.com/clearledger/policykit/service/version"
	"github.com/clearledger/policykit/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the policykit service
type Option func(s *Service)

// WithConfig sets the service configuration
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithPolicyDAO sets the policy DAO
func WithPolicyDAO(dao dao.Service[string, model.Policy]) Option {
	return func(s *Service) { s.policyDao = dao }
}

// WithApprovalService sets the approval engine
func WithApprovalService(svc approval.Service) Option {
	return func(s *Service) { s.engine = svc }
}

// WithNotificationService sets the notification sink shared by the service
// and its approval engine
func WithNotificationService(notifier *notification.Service) Option {
	return func(s *Service) { s.notifier = notifier }
}

// WithVersionService sets the policy change history service
func WithVersionService(versions *version.Service) Option {
	return func(s *Service) { s.versions = versions }
}

// WithConflictDetector sets the rule conflict detector
func WithConflictDetector(detector *conflict.Detector) Option {
	return func(s *Service) { s.detector = detector }
}

// WithMetrics sets the metrics collector
func WithMetrics(collector *metrics.Collector) Option {
	return func(s *Service) { s.collector = collector }
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile is empty the
// stdout exporter is used; otherwise traces are written to the supplied file path. The function is
// safe to call multiple times - the first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter. This enables
// integrations with exporters other than the built-in stdout exporter, for example OTLP, Jaeger or
// Zipkin. The function is safe to call multiple times - the first successful initialisation wins.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
