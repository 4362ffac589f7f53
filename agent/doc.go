// Package agent contains the model-backed agent implementation used by the
// coordination policies in the swarm package. A ModelAgent wraps exactly one
// generative backend and turns a core.Task into a single backend call,
// keeping a private, bounded exchange history for debugging.
//
// Design principles:
//   - No hidden global state; backends and loggers are injected
//   - Concurrent Run calls are safe; only the history is shared state
//   - Retry, timeout and scheduling concerns belong to the caller
package agent
