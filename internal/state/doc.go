// Package state holds the mutable projection of the observed simulation:
// entities, their hidden-attribute possibility sets, and global
// conditions.
//
// The store exclusively owns every PossibilitySet. The inference layer
// narrows them only through the store's Prune/Fix surface and never keeps
// a shadow copy, so the monotonic-narrowing invariant (sets only ever
// shrink) is enforced in exactly one place.
//
// No locking: the total order of event arrival and the fixed trial order
// of competing parsers fully serialize all access.
package state
