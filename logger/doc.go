// Package logger provides structured logging for clipkit using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers. Pipelines tag their loggers with the job id
// carried in the context so concurrent requests can be told apart.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//	  output: "stderr"
//
// # Usage
//
//	log := logger.Get("assemble").WithContext(ctx)
//	log.Info("segments cut", logger.Fields("count", n))
package logger
