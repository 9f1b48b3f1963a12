package rules

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileError reports a problem in a CUE trait table, with the source
// position when CUE provides one.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CompileSet parses a CUE value of the form
//
//	traits: {
//	    dread: {attr: "ability", hook: "on_entry", reveal: "boost"}
//	    ...
//	}
//
// into a trait table. Uses the CUE SDK's Go API directly.
func CompileSet(v cue.Value) (*Set, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	traitsVal := v.LookupPath(cue.ParsePath("traits"))
	if !traitsVal.Exists() {
		return nil, &CompileError{Field: "traits", Message: "traits struct is required", Pos: v.Pos()}
	}

	iter, err := traitsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var defs []TraitDef
	for iter.Next() {
		name := iter.Selector().Unquoted()
		def, err := compileTrait(name, iter.Value())
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	if len(defs) == 0 {
		return nil, &CompileError{Field: "traits", Message: "at least one trait is required", Pos: traitsVal.Pos()}
	}
	return NewSet(defs...)
}

// LoadFile compiles a trait table from a CUE source file.
func LoadFile(path string) (*Set, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	return LoadSource(string(src))
}

// LoadSource compiles a trait table from CUE source text.
func LoadSource(src string) (*Set, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileSet(v)
}

func compileTrait(name string, v cue.Value) (TraitDef, error) {
	def := TraitDef{Name: name, Pre: Precond{Kind: PrecondAlways}}

	attr, err := requiredString(v, "attr")
	if err != nil {
		return def, err
	}
	def.Attr = attr

	hook, err := requiredString(v, "hook")
	if err != nil {
		return def, err
	}
	switch HookKind(hook) {
	case HookEntry, HookResidual, HookDamage:
		def.Hook = HookKind(hook)
	default:
		return def, &CompileError{
			Field:   name + ".hook",
			Message: fmt.Sprintf("unknown hook kind %q", hook),
			Pos:     v.Pos(),
		}
	}

	revealVal := v.LookupPath(cue.ParsePath("reveal"))
	if revealVal.Exists() {
		reveal, err := revealVal.String()
		if err != nil {
			return def, formatCUEError(err)
		}
		def.Reveal = reveal
	}

	copiesVal := v.LookupPath(cue.ParsePath("copies"))
	if copiesVal.Exists() {
		copies, err := copiesVal.Bool()
		if err != nil {
			return def, formatCUEError(err)
		}
		def.Copies = copies
	}

	reqVal := v.LookupPath(cue.ParsePath("requires"))
	if reqVal.Exists() {
		pre, err := compilePrecond(name, reqVal)
		if err != nil {
			return def, err
		}
		def.Pre = pre
	}

	if !def.Copies && def.Reveal == "" {
		return def, &CompileError{
			Field:   name + ".reveal",
			Message: "non-copier traits must declare the event tag they reveal",
			Pos:     v.Pos(),
		}
	}
	return def, nil
}

func compilePrecond(name string, v cue.Value) (Precond, error) {
	kind, err := requiredString(v, "kind")
	if err != nil {
		return Precond{}, err
	}

	pre := Precond{Kind: PrecondKind(kind)}
	switch pre.Kind {
	case PrecondAlways, PrecondLastUnit:
		return pre, nil
	case PrecondHPBelow:
		pctVal := v.LookupPath(cue.ParsePath("percent"))
		if !pctVal.Exists() {
			return pre, &CompileError{
				Field:   name + ".requires.percent",
				Message: "hp_below requires a percent band",
				Pos:     v.Pos(),
			}
		}
		pct, err := pctVal.Int64()
		if err != nil {
			return pre, formatCUEError(err)
		}
		if pct <= 0 || pct > 100 {
			return pre, &CompileError{
				Field:   name + ".requires.percent",
				Message: fmt.Sprintf("percent band %d out of range (1-100)", pct),
				Pos:     pctVal.Pos(),
			}
		}
		pre.Percent = int(pct)
		return pre, nil
	case PrecondWeather:
		w, err := requiredString(v, "weather")
		if err != nil {
			return pre, err
		}
		pre.Weather = w
		return pre, nil
	default:
		return pre, &CompileError{
			Field:   name + ".requires.kind",
			Message: fmt.Sprintf("unknown precondition kind %q", kind),
			Pos:     v.Pos(),
		}
	}
}

func requiredString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	return &CompileError{
		Field:   "cue",
		Message: first.Error(),
		Pos:     first.Position(),
	}
}
