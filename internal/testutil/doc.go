// Package testutil provides shared test helpers for shellgate.
//
// Philosophy:
//   - Keep helpers small, composable, and deterministic.
//   - The CommandExecutor seam is the only mock: probing container runtimes
//     is the one thing tests must never actually do.
//   - Register cleanup via t.Cleanup so tests stay leak-free.
package testutil
