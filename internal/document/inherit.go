package document

import (
	"slices"
)

// ResolveChain loads ref and every document it transitively extends,
// returning them in merge order: deepest bases first, the entry point last.
// The extends graph may form a DAG; a document reachable through two paths is
// loaded once. Re-visiting a ref that is still on the traversal stack is a
// cycle and fails with a CircularError naming it.
func (l *Loader) ResolveChain(ref string) ([]*Configuration, error) {
	canonical, err := ResolveRef("", ref)
	if err != nil {
		return nil, err
	}

	walker := &chainWalker{
		loader:  l,
		visited: make(map[string]bool),
		onStack: make(map[string]bool),
	}
	if err := walker.visit(canonical); err != nil {
		return nil, err
	}
	return walker.order, nil
}

type chainWalker struct {
	loader  *Loader
	visited map[string]bool
	onStack map[string]bool
	stack   []string
	order   []*Configuration
}

func (w *chainWalker) visit(canonical string) error {
	if w.onStack[canonical] {
		start := slices.Index(w.stack, canonical)
		cycle := append(slices.Clone(w.stack[start:]), canonical)
		return &CircularError{Cycle: cycle}
	}
	if w.visited[canonical] {
		return nil
	}

	w.onStack[canonical] = true
	w.stack = append(w.stack, canonical)
	defer func() {
		delete(w.onStack, canonical)
		w.stack = w.stack[:len(w.stack)-1]
	}()

	cfg, err := w.loader.Load(canonical)
	if err != nil {
		return err
	}

	for _, parent := range cfg.Extends {
		parentRef, err := ResolveRef(canonical, parent)
		if err != nil {
			return err
		}
		if err := w.visit(parentRef); err != nil {
			return err
		}
	}

	w.visited[canonical] = true
	w.order = append(w.order, cfg)
	return nil
}
