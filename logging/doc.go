// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a SwarmLogger with contextual helpers
// (swarm, agent, run) and domain specific helpers for agent calls and swarm
// runs. Loggers are constructed once at process start and threaded through
// constructors; there are no package-level loggers or global toggles.
package logging
