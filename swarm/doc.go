// Package swarm contains the coordination policies that distribute one task
// across a pool of agents:
//
//   - RoundRobin: deterministic cyclic sequential dispatch
//   - Concurrent: parallel fan-out/fan-in with order-preserving results
//   - LoadBalancer: availability-tracked, performance-counted selection
//   - Mixture: layered parallel refinement plus single-shot aggregation
//   - Hierarchical: director agent textually assigns subtasks to workers
//
// All policies implement core.Swarm and share one dispatch path that applies
// the per-call timeout, the injected retry policy and the optional call
// budget, producing one core.ExecutionRecord per dispatch. Per-agent
// failures inside a batch are captured in the conversation and never abort
// sibling work; only pre-dispatch configuration errors are fatal.
package swarm
