package schemawire

import "fmt"

// PlanError is a plan-time structural error (§7): the planner encountered a
// schema it cannot reconcile with the target type. It carries a
// human-readable path so a caller can see exactly which sub-schema was
// wrong, e.g. "field `email` of `User`".
type PlanError struct {
	Path     string
	Expected string
	Got      Schema
	Reason   string
	wrapped  error
}

func (e *PlanError) Error() string {
	where := e.Path
	if where == "" {
		where = "<root>"
	}
	switch {
	case e.Reason != "":
		return fmt.Sprintf("schemawire: plan error at %s: %s", where, e.Reason)
	case e.Got != nil:
		return fmt.Sprintf("schemawire: plan error at %s: expected %s, got %s", where, e.Expected, e.Got)
	default:
		return fmt.Sprintf("schemawire: plan error at %s", where)
	}
}

func (e *PlanError) Unwrap() error { return e.wrapped }

// SchemaMismatch builds the PlanError for "this schema isn't what I expect".
func SchemaMismatch(path, expected string, got Schema) *PlanError {
	return &PlanError{Path: path, Expected: expected, Got: got}
}

// MissingField builds the PlanError for a target record field absent from
// the incoming schema and without a default.
func MissingField(path, name string) *PlanError {
	return &PlanError{Path: path, Reason: fmt.Sprintf("missing field %q and no default supplied", name)}
}

// MissingConstructor builds the PlanError for an incoming variant
// constructor whose name the target doesn't recognize at all (used only by
// whole-variant derivation: standalone ExtractConstructor never fails this
// way, see extractor.go).
func MissingConstructor(path, name string) *PlanError {
	return &PlanError{Path: path, Reason: fmt.Sprintf("incoming variant constructor %q not found in target", name)}
}

// wrapPath prefixes an existing PlanError's path, for nested planning
// (record field N fails inside a nested record planned for field M).
func wrapPath(prefix string, err error) error {
	if pe, ok := err.(*PlanError); ok {
		p := pe.Path
		if prefix != "" {
			if p != "" {
				p = prefix + "." + p
			} else {
				p = prefix
			}
		}
		return &PlanError{Path: p, Expected: pe.Expected, Got: pe.Got, Reason: pe.Reason, wrapped: pe}
	}
	return err
}
