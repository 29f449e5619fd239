// Package orchestrator wires the discovery → transform → plan → decorate →
// execute pipeline, providing dependency injection friendly helpers for
// consumers that prefer a single entry point.
package orchestrator
