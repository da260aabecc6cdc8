// Package trace records structured spans of the language server and the CLI.
//
// # Usage
//
//	lintls lsp --trace=- --trace-level=detail
//	lintls check --trace=trace.ndjson src/
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: only failed spans
//   - LevelPhase: server lifecycle and requests
//   - LevelDetail: per-document analysis
//   - LevelDebug: everything
//
// # Scopes
//
//   - ScopeServer: session lifecycle, CLI commands
//   - ScopeRequest: one JSON-RPC request or notification
//   - ScopeAnalysis: one lint run, fix extraction or merge
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeRequest, "codeAction/resolve", 0)
//	defer span.End("")
package trace
