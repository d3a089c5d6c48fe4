// Package engine drives a scaffolding run end to end: document chain
// resolution and merging, the engine-version gate, schema validation,
// variable and prompt context building, structural task validation,
// dependency ordering, and sequential execution with partial-failure
// tolerance. Tasks run strictly one at a time in dependency order because
// later tasks may observe the file-system side effects of earlier ones.
package engine
