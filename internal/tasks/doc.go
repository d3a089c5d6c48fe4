// Package tasks provides the built-in task plugins: file operations, JSON
// document edits, shell commands, and git repository setup. Each plugin is a
// thin wrapper over its I/O concern; none of them mutates the resolved
// context it receives.
package tasks
