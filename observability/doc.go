// Package observability provides OpenTelemetry tracing and metrics for the
// clipkit pipelines.
//
// Setup installs the OTLP exporters when telemetry is enabled and returns a
// shutdown func; with telemetry disabled the global no-op providers stay in
// place and every call below is free:
//
//	shutdown, err := observability.Setup(ctx, cfg.Observability, observability.Resource{Service: "clipkit"})
//	defer shutdown(ctx)
//
// Pipelines wrap each run in an Operation and each step in a child span:
//
//	ctx, op := observability.StartOperation(ctx, "silence", jobID, metrics)
//	defer func() { op.End(ctx, err) }()
//
//	stepCtx, done := op.Step(ctx, "transcribe")
//	resp, err := provider.Transcribe(stepCtx, req)
//	done(err)
//
// Health checks back the CLI doctor command:
//
//	health := observability.Check(ctx, "clipkit", version, ffmpegChecker, llmChecker)
package observability
