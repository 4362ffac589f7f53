// Package core provides the foundational domain types and interfaces used by
// agentswarm. It defines the core abstractions for:
//
//   - Agents (units wrapping one generative backend call, addressable by id)
//   - Tasks (immutable work descriptions handed to agents)
//   - ExecutionRecords and Conversations (append-only dispatch audit trail)
//   - Swarms (named coordination policies over a set of agents)
//   - Retry policies and call budgets shared by all coordination policies
//
// The package intentionally keeps implementation concerns (backends, concrete
// coordination policies, config snapshots) out of scope, exposing small
// interfaces so the swarm, agent and registry packages can evolve without
// cyclic dependencies.
package core
