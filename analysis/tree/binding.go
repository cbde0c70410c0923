// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tree

// A BindingKind tells what sort of entity a Binding names.
type BindingKind int

const (
	Local BindingKind = iota
	Parameter
	Field
	Global
	RecordComponent
)

func (k BindingKind) String() string {
	switch k {
	case Local:
		return "local"
	case Parameter:
		return "parameter"
	case Field:
		return "field"
	case Global:
		return "global"
	case RecordComponent:
		return "record component"
	}
	return "unknown"
}

// IsVariable returns true iff bindings of this kind are subject to local
// data flow analysis, i.e., they are locals or parameters.
func (k BindingKind) IsVariable() bool {
	return k == Local || k == Parameter
}

// A Binding is the resolved meaning of a name.  Bindings are supplied by
// the host language model and are used as map keys, so implementations
// must be comparable (typically a pointer) and unique per variable.
type Binding interface {
	// Name returns the declared name.
	Name() string
	// Pos returns the offset of the declaration.
	Pos() int
	// Kind returns what sort of variable this is.
	Kind() BindingKind
	// Type returns the declared type, or nil if unknown.
	Type() Type
}

// A Type is the host language's view of a (declared or exception) type.
type Type interface {
	// Name returns a human-readable name.
	Name() string
	// Checked returns true iff the type is a checked exception type,
	// i.e., one that must be declared when it escapes a method.
	Checked() bool
	// AssignableTo returns true iff this type is the same as, or a
	// subtype of, other.
	AssignableTo(other Type) bool
}

// A NamedType is a Type in a single-inheritance hierarchy.
type NamedType struct {
	TypeName  string
	Super     *NamedType
	Unchecked bool // set for runtime exceptions and non-exception types
}

func (t *NamedType) Name() string { return t.TypeName }

// Checked returns true unless t or one of its supertypes is marked
// Unchecked.
func (t *NamedType) Checked() bool {
	for s := t; s != nil; s = s.Super {
		if s.Unchecked {
			return false
		}
	}
	return true
}

func (t *NamedType) AssignableTo(other Type) bool {
	for s := t; s != nil; s = s.Super {
		if Type(s) == other {
			return true
		}
	}
	return false
}

func (t *NamedType) String() string { return t.TypeName }

// A Var is a Binding for trees constructed without a host type checker.
// Its Pos is assigned by Build when its declaration is laid out; a Var
// that is never declared in the tree (a field, for example) has Pos -1.
type Var struct {
	VarName string
	VarKind BindingKind
	VarType Type
	pos     int
}

// NewVar returns an undeclared Var.
func NewVar(name string, kind BindingKind, typ Type) *Var {
	return &Var{VarName: name, VarKind: kind, VarType: typ, pos: -1}
}

func (v *Var) Name() string      { return v.VarName }
func (v *Var) Pos() int          { return v.pos }
func (v *Var) Kind() BindingKind { return v.VarKind }
func (v *Var) Type() Type        { return v.VarType }
func (v *Var) String() string    { return v.VarName }
