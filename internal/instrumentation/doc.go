// Package instrumentation provides OpenTelemetry instrumentation for the
// meetwhen scheduling server.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for HTTP requests, engine computations and
//     calendar provider calls
//   - Distributed tracing for tool invocations and provider calls
//   - Prometheus metrics export via /metrics endpoint on a dedicated port
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//   - active_sessions: Gauge of active user sessions
//
// Engine Metrics:
//   - engine_computations_total: Counter of availability engine runs by
//     operation and status
//   - engine_computation_duration_seconds: Histogram of engine run durations
//   - recurring_slots_scored_total: Counter of recurring slot candidates scored
//
// Calendar Provider Metrics:
//   - provider_operations_total: Counter of provider calls by provider,
//     operation, status
//   - provider_operation_duration_seconds: Histogram of provider call durations
//   - oauth_token_refresh_total: Counter of token refresh attempts by result
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: meetwhen)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
//		ServiceName:    "meetwhen",
//		ServiceVersion: "0.1.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordEngineComputation(ctx, "score_recurring_slots", "success", time.Since(start))
package instrumentation
