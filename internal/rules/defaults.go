package rules

import (
	_ "embed"
	"sync"
)

//go:embed defaults.cue
var defaultsCUE string

var (
	defaultsOnce sync.Once
	defaultsSet  *Set
	defaultsErr  error
)

// Defaults returns the embedded default trait table. The table is
// compiled once; compilation failure is a build defect and panics.
func Defaults() *Set {
	defaultsOnce.Do(func() {
		defaultsSet, defaultsErr = LoadSource(defaultsCUE)
	})
	if defaultsErr != nil {
		panic("embedded default trait table does not compile: " + defaultsErr.Error())
	}
	return defaultsSet
}
