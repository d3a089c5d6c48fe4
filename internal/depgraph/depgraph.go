// Package depgraph orders tasks by their explicit dependency edges. Sorting
// is deterministic: ties among ready tasks break by declaration order.
package depgraph

import (
	"fmt"
	"strings"

	"github.com/forgex-labs/forgex/internal/document"
)

// UnresolvedDependencyError reports a dependency id absent from the task set.
type UnresolvedDependencyError struct {
	TaskID     string
	Dependency string
}

func (e *UnresolvedDependencyError) Error() string {
	return fmt.Sprintf("task %q depends on %q, which is not in the task set", e.TaskID, e.Dependency)
}

// CycleError reports a dependency cycle among tasks.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic task dependencies: %s", strings.Join(e.Cycle, " -> "))
}

// Sort returns the tasks in an order where every task follows all of its
// dependencies (Kahn's algorithm). Declaration order breaks ties, so the
// output is stable for a given input.
func Sort(tasks []document.TaskDefinition) ([]document.TaskDefinition, error) {
	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		index[t.ID] = i
	}

	// In-degree per task; validate references up front.
	indegree := make([]int, len(tasks))
	dependents := make([][]int, len(tasks))
	for i, t := range tasks {
		for _, dep := range t.Dependencies {
			j, ok := index[dep]
			if !ok {
				return nil, &UnresolvedDependencyError{TaskID: t.ID, Dependency: dep}
			}
			indegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	sorted := make([]document.TaskDefinition, 0, len(tasks))
	done := make([]bool, len(tasks))
	for len(sorted) < len(tasks) {
		picked := -1
		for i := range tasks {
			if !done[i] && indegree[i] == 0 {
				picked = i
				break
			}
		}
		if picked == -1 {
			return nil, &CycleError{Cycle: findCycle(tasks, index, done)}
		}
		done[picked] = true
		sorted = append(sorted, tasks[picked])
		for _, dep := range dependents[picked] {
			indegree[dep]--
		}
	}
	return sorted, nil
}

// findCycle walks the unfinished subgraph to name one cycle for the error.
func findCycle(tasks []document.TaskDefinition, index map[string]int, done []bool) []string {
	// Every remaining task sits on or leads into a cycle; follow edges from
	// any of them until a repeat.
	start := -1
	for i := range tasks {
		if !done[i] {
			start = i
			break
		}
	}
	if start == -1 {
		return nil
	}

	seenAt := map[int]int{}
	var path []string
	cur := start
	for {
		if at, ok := seenAt[cur]; ok {
			return append(path[at:], tasks[cur].ID)
		}
		seenAt[cur] = len(path)
		path = append(path, tasks[cur].ID)

		next := -1
		for _, dep := range tasks[cur].Dependencies {
			j := index[dep]
			if !done[j] {
				next = j
				break
			}
		}
		if next == -1 {
			// Shouldn't happen: an unfinished task with no unfinished
			// dependencies would have been picked by the sort loop.
			return path
		}
		cur = next
	}
}
