// Package model defines the generative backend abstraction consumed by
// agents: a prompt plus sampling parameters in, text out. Concrete adapters
// for hosted providers live in the model/anthropic and model/openai
// subpackages; MockModel provides deterministic responses for tests and
// examples.
package model
