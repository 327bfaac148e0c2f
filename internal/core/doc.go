// Package core runs checks on behalf of the HTTP and command-line surfaces.
//
// It sits between transport and the check engine and owns everything a
// long-running process needs around a check:
//
//   - a CheckLimiter bounding concurrent runs
//   - per-run timeouts and upload size limits
//   - persisting each finished run to a store.Store
//   - pruning old runs on a schedule
//   - mapping errors to user messages with support codes ([MapError])
//
// A Service is safe for concurrent use. Runs share no state beyond the
// limiter and the store.
package core
