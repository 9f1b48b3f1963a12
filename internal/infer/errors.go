package infer

import (
	"errors"
	"fmt"
	"strings"
)

// ContradictionError reports that the inference layer was asked to
// assert something that cannot be true: a hypothesis resolved twice with
// conflicting values, an accept against an empty or foreign candidate
// set, or a fix of an already-pruned label. Fatal: it signals a modeling
// bug and propagates uncaught to the top of the parse.
type ContradictionError struct {
	Group      string
	Hypothesis string
	Candidates []string
	Detail     string
}

func (e *ContradictionError) Error() string {
	var b strings.Builder
	b.WriteString("inference contradiction")
	if e.Group != "" {
		fmt.Fprintf(&b, " in group %q", e.Group)
	}
	if e.Hypothesis != "" {
		fmt.Fprintf(&b, " (hypothesis %q)", e.Hypothesis)
	}
	if len(e.Candidates) > 0 {
		fmt.Fprintf(&b, " candidates=[%s]", strings.Join(e.Candidates, " "))
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

// IsContradiction reports whether err is (or wraps) a ContradictionError.
func IsContradiction(err error) bool {
	var ce *ContradictionError
	return errors.As(err, &ce)
}
