// Package environment implements §4.3: a stack of lexical scopes, each
// holding two namespaces ("others" for variables/types/globals, "tags" for
// struct/enum definitions), with innermost-first shadowing lookup. The
// shape — a small struct per frame linked by an outer pointer, walked
// outward on lookup — mirrors the teacher's internal/symbols.SymbolTable
// scope-chaining constructor, trimmed to exactly the two maps §4.3 names;
// none of that package's trait/generic/kind machinery applies to a
// statically-typed C subset, so it is not carried over.
package environment

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"github.com/funvibe/clc/internal/config"
	"github.com/funvibe/clc/internal/diagnostics"
	"github.com/funvibe/clc/internal/token"
)

// BindingKind tags what an "others" entry holds.
type BindingKind int

const (
	LocalVariable BindingKind = iota
	TypeBinding
	GlobalBinding
)

// Binding is one "others" namespace entry.
type Binding struct {
	Kind BindingKind
	// Slot is the stack-slot (alloca) pointer for LocalVariable, the
	// global handle for GlobalBinding; unused for TypeBinding.
	Slot llvm.Value
	// Type is the ir_type for TypeBinding, and the pointee/element type
	// for LocalVariable/GlobalBinding (the type the slot holds, not the
	// slot's own pointer type).
	Type llvm.Type
}

// StructTag is a "tags" namespace entry for a struct definition.
type StructTag struct {
	FieldNames []string
	FieldTypes []llvm.Type
	IRType     llvm.Type
}

type scope struct {
	others map[string]Binding
	tags   map[string]StructTag
	outer  *scope
}

func newScope(outer *scope) *scope {
	return &scope{others: map[string]Binding{}, tags: map[string]StructTag{}, outer: outer}
}

// Environment is the live scope stack used during lowering.
type Environment struct {
	top *scope
}

// New creates an Environment with a single outermost scope, pre-seeded per
// §3 with the primitive type names.
func New(ctx llvm.Context) *Environment {
	e := &Environment{top: newScope(nil)}
	for name, bits := range config.PrimitiveTypes {
		irType := ctx.IntType(bits)
		if name == "float" {
			irType = ctx.FloatType()
		}
		e.InsertOther(name, Binding{Kind: TypeBinding, Type: irType})
	}
	// char is an int32 alias kept outside config.PrimitiveTypes since it
	// carries no distinct bit width of its own.
	e.InsertOther("char", Binding{Kind: TypeBinding, Type: ctx.Int32Type()})
	return e
}

// PushScope opens a new innermost frame (function body, compound block,
// for-header, switch body).
func (e *Environment) PushScope() {
	e.top = newScope(e.top)
}

// PopScope discards the innermost frame.
func (e *Environment) PopScope() {
	if e.top.outer == nil {
		panic("environment: pop of outermost scope")
	}
	e.top = e.top.outer
}

// InsertOther binds name in the innermost scope's "others" namespace.
// Redefinition (name already present in this exact scope) is fatal, per
// §4.3: "Inserting a name already present in the innermost scope is fatal."
func (e *Environment) InsertOther(name string, b Binding) {
	if _, exists := e.top.others[name]; exists {
		panic(&diagnostics.Error{
			Code:  diagnostics.ErrRedefinition,
			Phase: diagnostics.PhaseEnvironment,
			Args:  []interface{}{name},
		})
	}
	e.top.others[name] = b
}

// InsertOtherAt redefinition-checks and inserts, returning a diagnostic
// instead of panicking, for call sites that want to thread the error
// normally (lowering of declarations uses this; PrimitiveType seeding at
// New() cannot fail and uses the panicking InsertOther above).
func (e *Environment) InsertOtherAt(tok token.Token, name string, b Binding) *diagnostics.Error {
	if _, exists := e.top.others[name]; exists {
		return diagnostics.Redefinition(tok, name)
	}
	e.top.others[name] = b
	return nil
}

// InsertTag binds a struct tag in the innermost scope, subject to the same
// redefinition rule as InsertOther.
func (e *Environment) InsertTag(tok token.Token, name string, s StructTag) *diagnostics.Error {
	if _, exists := e.top.tags[name]; exists {
		return diagnostics.Redefinition(tok, name)
	}
	e.top.tags[name] = s
	return nil
}

// LookupOther searches from innermost to outermost scope, returning the
// first match.
func (e *Environment) LookupOther(name string) (Binding, bool) {
	for s := e.top; s != nil; s = s.outer {
		if b, ok := s.others[name]; ok {
			return b, true
		}
	}
	return Binding{}, false
}

// LookupTag searches from innermost to outermost scope for a struct tag.
func (e *Environment) LookupTag(name string) (StructTag, bool) {
	for s := e.top; s != nil; s = s.outer {
		if t, ok := s.tags[name]; ok {
			return t, true
		}
	}
	return StructTag{}, false
}

// ResolveType parses a canonical type string into an IR type per §4.3's
// dimension-splitting algorithm: split trailing `[N]` array suffixes off
// the head, strip the head's trailing `*` run to count pointer depth, resolve the base name as an Other::Type binding, then wrap
// innermost-dimension-first in arrays and finally in pointers.
func (e *Environment) ResolveType(typeString string) (llvm.Type, error) {
	base, ptrDepth, dims, err := splitTypeString(typeString)
	if err != nil {
		return llvm.Type{}, err
	}
	b, ok := e.LookupOther(base)
	if !ok || b.Kind != TypeBinding {
		return llvm.Type{}, fmt.Errorf("unknown type %q", base)
	}
	t := b.Type
	// §4.3: "int[3][2] is array-of-3 of array-of-2 of int" — the
	// rightmost syntactic dimension is the innermost array type, so wrap
	// from the end of dims backwards.
	for i := len(dims) - 1; i >= 0; i-- {
		t = llvm.ArrayType(t, dims[i])
	}
	for i := 0; i < ptrDepth; i++ {
		t = llvm.PointerType(t, 0)
	}
	return t, nil
}

// splitTypeString implements the textual grammar of §4.2: a base
// (primitive/struct-tag/enum-tag/user-type identifier), zero or more `*`
// after the base, and zero or more trailing `[N]`.
func splitTypeString(s string) (base string, ptrDepth int, dims []int, err error) {
	// Split off trailing [N] groups first.
	for len(s) > 0 && s[len(s)-1] == ']' {
		open := -1
		for i := len(s) - 2; i >= 0; i-- {
			if s[i] == '[' {
				open = i
				break
			}
		}
		if open == -1 {
			return "", 0, nil, fmt.Errorf("malformed type string %q", s)
		}
		numStr := s[open+1 : len(s)-1]
		var n int
		if _, serr := fmt.Sscanf(numStr, "%d", &n); serr != nil {
			return "", 0, nil, fmt.Errorf("malformed array dimension in %q", s)
		}
		dims = append([]int{n}, dims...)
		s = s[:open]
	}
	for len(s) > 0 && s[len(s)-1] == '*' {
		ptrDepth++
		s = s[:len(s)-1]
	}
	return s, ptrDepth, dims, nil
}
