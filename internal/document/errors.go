package document

import (
	"fmt"
	"strings"
)

// NotFoundError reports a configuration ref that could not be fetched.
type NotFoundError struct {
	Ref string
	Err error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("configuration not found: %s: %v", e.Ref, e.Err)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// ParseError reports a document that was fetched but could not be decoded.
type ParseError struct {
	Ref string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing configuration %s: %v", e.Ref, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// CircularError reports a cycle in the extends chain. Cycle lists the
// canonical refs in traversal order, ending with the ref that closed the
// loop.
type CircularError struct {
	Cycle []string
}

func (e *CircularError) Error() string {
	return fmt.Sprintf("circular extends chain: %s", strings.Join(e.Cycle, " -> "))
}

// DuplicateIDError reports an id shared across entity kinds after merging.
type DuplicateIDError struct {
	ID    string
	Kinds []string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("id %q is declared as both a %s", e.ID, strings.Join(e.Kinds, " and a "))
}
