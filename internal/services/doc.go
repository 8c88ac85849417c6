// Package services defines shared utilities consumed by the remote client,
// the work-order controller and the dispatch helpers.
//
// Key responsibilities:
//   - Context helpers that stamp task IDs, display session IDs, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so transport, remote and
//     parse failures can be told apart where it matters (logging, retry
//     policy) while callers keep reacting uniformly.
//
// Use these helpers when wiring new remote operations so error handling and
// observability stay uniform.
package services
