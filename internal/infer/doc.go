// Package infer narrows hidden-attribute possibility sets by matching
// candidate activation preconditions against observed events.
//
// A Reason is a named boolean proposition evaluated against the state
// projection: "this entity could still have this label", "health is
// below the activation band", "the required weather is up". Reasons
// compose by logical AND. A Hypothesis pairs one trait proposition with
// its activation preconditions and resolves exactly once - true when its
// activation was observed, false when it provably could have activated
// and did not. Re-resolving with a conflicting value is a
// ContradictionError, never silently absorbed.
//
// A Group holds mutually exclusive hypotheses about the same hidden
// attribute. Accepting one fixes the possibility set to its label and
// resolves every sibling false. Reaching the group's deadline with no
// acceptance prunes exactly the candidates whose preconditions provably
// held: the absence of the expected event proves the entity lacks the
// trait. A precondition that failed or stayed ambiguous leaves its
// candidate untouched - absence of evidence is not evidence of absence
// there.
package infer
