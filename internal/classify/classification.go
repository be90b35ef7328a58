package classify

import (
	"fmt"

	"github.com/gnolang/voidcaster/internal/types"
)

// Classification is the verdict for one call expression. It is one of
// OkValueUsed, OkValueDiscardedAsVoid, MissingCast, SuperfluousCast or
// Unknown.
type Classification interface {
	fmt.Stringer
	classification()
}

// OkValueUsed: the call has a value and something consumes it, or it is
// explicitly cast away.
type OkValueUsed struct{}

// OkValueDiscardedAsVoid: the call has no value and is not cast.
type OkValueDiscardedAsVoid struct{}

// MissingCast: the call's value is dropped by a bare statement.
type MissingCast struct {
	At types.Location
}

// SuperfluousCast: a call without value is cast to void.
type SuperfluousCast struct {
	Cast types.Extent
}

// UnknownReason tells why a call could not be judged.
type UnknownReason int

const (
	// NoDeclaration: the callee could not be resolved.
	NoDeclaration UnknownReason = iota
	// NoPrototype: the callee was declared without a parameter list.
	NoPrototype
	// OpaqueResult: the callee's result type cannot be classified.
	OpaqueResult
	// MacroCall: the callee is a function-like macro.
	MacroCall
)

func (r UnknownReason) String() string {
	switch r {
	case NoDeclaration:
		return "no declaration"
	case NoPrototype:
		return "no prototype"
	case OpaqueResult:
		return "opaque result type"
	case MacroCall:
		return "macro invocation"
	}
	return "unknown"
}

// Warns reports whether the reason is worth a warning to the user.
func (r UnknownReason) Warns() bool {
	return r == NoDeclaration || r == NoPrototype
}

// Unknown: the call cannot be judged.
type Unknown struct {
	Reason UnknownReason
}

func (OkValueUsed) classification()            {}
func (OkValueDiscardedAsVoid) classification() {}
func (MissingCast) classification()            {}
func (SuperfluousCast) classification()        {}
func (Unknown) classification()                {}

func (OkValueUsed) String() string            { return "ok: value used" }
func (OkValueDiscardedAsVoid) String() string { return "ok: no value" }
func (c MissingCast) String() string          { return "missing cast at " + c.At.String() }
func (c SuperfluousCast) String() string      { return "superfluous cast at " + c.Cast.String() }
func (c Unknown) String() string              { return "unknown: " + c.Reason.String() }
