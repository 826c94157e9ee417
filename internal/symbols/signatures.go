package symbols

import (
	"fmt"

	"github.com/ChAoSUnItY/Yakou/internal/typesystem"
)

// signatureKey groups overloads by their owning class and simple name;
// typesystem.ConstructorName is used as Name for constructors so they
// share this same table (spec §3 Glossary "Signature").
type signatureKey struct {
	Owner string
	Name  string
}

// SignatureTable holds every function/constructor signature registered
// during the checker's header pass (spec §4.3 Pass A), grouped for
// overload resolution during the body pass.
type SignatureTable struct {
	sigs map[signatureKey][]typesystem.Signature
}

// NewSignatureTable creates an empty table.
func NewSignatureTable() *SignatureTable {
	return &SignatureTable{sigs: make(map[signatureKey][]typesystem.Signature)}
}

// Register adds sig to the table. It reports false if an identical
// (owner, name, param-types) signature was already registered — the
// caller (checker) turns that into a duplicate-declaration diagnostic
// rather than this package erroring, per spec §7's "never panic or
// abort" contract.
func (t *SignatureTable) Register(sig typesystem.Signature) bool {
	key := signatureKey{Owner: sig.Owner, Name: sig.Name}
	for _, existing := range t.sigs[key] {
		if typesystem.SameParams(existing.ParamTypes, sig.ParamTypes) {
			return false
		}
	}
	t.sigs[key] = append(t.sigs[key], sig)
	return true
}

// All returns every overload registered for (owner, name).
func (t *SignatureTable) All(owner, name string) []typesystem.Signature {
	return t.sigs[signatureKey{Owner: owner, Name: name}]
}

// Resolve picks the overload of (owner, name) whose parameters best
// match argTypes, per spec §4.3's call-resolution rule: an exact
// parameter-type match wins outright; otherwise the unique candidate
// every argument can be promoted/cast into is chosen. Multiple
// candidates that are merely cast-compatible (and no exact match) is
// reported as ambiguous.
func (t *SignatureTable) Resolve(owner, name string, argTypes []typesystem.Type) (*typesystem.Signature, error) {
	candidates := t.sigs[signatureKey{Owner: owner, Name: name}]
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no overload of %q found on %q", name, owner)
	}

	for i := range candidates {
		if typesystem.SameParams(candidates[i].ParamTypes, argTypes) {
			return &candidates[i], nil
		}
	}

	var matches []*typesystem.Signature
	for i := range candidates {
		if castableParams(candidates[i].ParamTypes, argTypes) {
			matches = append(matches, &candidates[i])
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no overload of %q accepts the given argument types", name)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("ambiguous call to %q: %d overloads are all cast-compatible", name, len(matches))
	}
}

func castableParams(params []typesystem.Type, args []typesystem.Type) bool {
	if len(params) != len(args) {
		return false
	}
	for i := range params {
		if !typesystem.CanCast(args[i], params[i]) {
			return false
		}
	}
	return true
}
