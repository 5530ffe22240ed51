// Package diag defines the diagnostic model shared by all checker phases.
//
// # Purpose
//
//   - Provide deterministic, serialisable data structures that capture findings
//     produced by fixture parsing and call resolution.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//
// # Scope
//
// Package diag does not perform any formatting, IO, or CLI integration.
// Rendering responsibilities live in internal/diagfmt, orchestration in the
// driver layer.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the canonical source.Span pointing to the issue.
//   - Notes – optional secondary spans/messages for additional context.
//
// Notes should be used sparingly: each note must add new context (e.g. "overload
// declared here") rather than repeating the diagnostic message.
//
// # Emitting diagnostics
//
// Phases should use a diag.Reporter to decouple emission from storage. The
// checker constructs a ReportBuilder via NewReportBuilder (or the helper
// functions ReportError/ReportWarning/ReportInfo) and chains WithNote before
// calling Emit. When no additional metadata is needed, phases may call
// Reporter.Report(...) directly. diag.BagReporter aggregates diagnostics into
// a Bag, which supports sorting, deduplication, and merging.
//
// Keep the data model deterministic: the driver serialises diagnostics for
// caching, so any new field must round-trip through msgpack unchanged.
package diag
