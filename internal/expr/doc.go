// Package expr implements the sandboxed boolean-expression language used by
// enabled/required/conditional specifications. The language covers literals,
// dotted context identifiers, comparison and equality operators (including
// strict === / !==), logical && || !, and parentheses. There are no calls,
// no assignment, and no arithmetic. Referencing a name absent from the context is
// reported as a distinct UnknownIdentifierError so callers can implement lazy
// evaluation.
package expr
