// Package prompt collects user input for prompt definitions. Prompts run
// strictly in declaration order because a prompt's enabled-state and default
// may reference earlier answers. In non-interactive mode defaults stand in
// for answers and required prompts without one fail the run.
package prompt
