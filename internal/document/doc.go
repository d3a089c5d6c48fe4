// Package document defines the configuration document model (tasks, prompts,
// variables, dynamic values) and implements loading, inheritance resolution,
// and merging. A document is fetched from a local path or URL, its extends
// chain is walked depth-first with cycle detection, and the chain is folded
// into a single immutable Configuration with per-entity provenance.
package document
