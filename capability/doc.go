// Package capability provides the built-in executors behind the uniform
// core.CapabilityExecutor contract: job-description generation, resume
// screening, interview scheduling and hiring analytics. Each executor
// delegates natural-language work to the language model and persistence to
// the store collaborator; NewRegistry wires them into a validated capability
// registry with parameter schemas, declared outputs and static next-action
// suggestions.
package capability
