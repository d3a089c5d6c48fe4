// Package cli defines the command-line surface: running configurations,
// validating them, inspecting the task graph, managing user settings, and
// printing version information.
package cli
