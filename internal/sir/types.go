package sir

import (
	"fmt"
	"strings"
)

// TypeCategory distinguishes object values from in-memory addresses.
type TypeCategory int

const (
	// ObjectCategory is a loaded SSA value.
	ObjectCategory TypeCategory = iota
	// AddressCategory is the address of a memory location holding the object type.
	AddressCategory
)

// Type pairs a structural type description with a value category.
// Two types are interchangeable only under SameType.
type Type struct {
	Desc TypeDesc
	Cat  TypeCategory
}

// ObjectType wraps a description as an object-category type.
func ObjectType(d TypeDesc) Type { return Type{Desc: d, Cat: ObjectCategory} }

// AddressType wraps a description as an address-category type.
func AddressType(d TypeDesc) Type { return Type{Desc: d, Cat: AddressCategory} }

// IsNull reports whether the type carries no description at all.
func (t Type) IsNull() bool { return t.Desc == nil }

// IsObject reports whether the type is an object value.
func (t Type) IsObject() bool { return !t.IsNull() && t.Cat == ObjectCategory }

// IsAddress reports whether the type is an address.
func (t Type) IsAddress() bool { return !t.IsNull() && t.Cat == AddressCategory }

// Object returns the object-category type with the same description.
func (t Type) Object() Type { return Type{Desc: t.Desc, Cat: ObjectCategory} }

// Address returns the address-category type with the same description.
func (t Type) Address() Type { return Type{Desc: t.Desc, Cat: AddressCategory} }

func (t Type) String() string {
	if t.IsNull() {
		return "<null type>"
	}
	if t.Cat == AddressCategory {
		return "$*" + t.Desc.String()
	}
	return "$" + t.Desc.String()
}

// StructDesc returns the struct description underlying t, or nil.
func (t Type) StructDesc() *StructType {
	d, _ := t.Desc.(*StructType)
	return d
}

// EnumDesc returns the enum description underlying t, or nil.
func (t Type) EnumDesc() *EnumType {
	d, _ := t.Desc.(*EnumType)
	return d
}

// ClassDesc returns the class description underlying t, or nil.
func (t Type) ClassDesc() *ClassType {
	d, _ := t.Desc.(*ClassType)
	return d
}

// FunctionDesc returns the function description underlying t, or nil.
func (t Type) FunctionDesc() *FunctionType {
	d, _ := t.Desc.(*FunctionType)
	return d
}

// ExistentialDesc returns the existential description underlying t, or nil.
func (t Type) ExistentialDesc() *ExistentialType {
	d, _ := t.Desc.(*ExistentialType)
	return d
}

// PlaceholderDesc returns the generic placeholder underlying t, or nil.
func (t Type) PlaceholderDesc() *PlaceholderType {
	d, _ := t.Desc.(*PlaceholderType)
	return d
}

// HasReferenceSemantics reports whether values of t are reference-counted
// heap references: classes, class-constrained existentials and placeholders,
// and the builtin native object type.
func (t Type) HasReferenceSemantics() bool {
	switch d := t.Desc.(type) {
	case *ClassType:
		return true
	case *BuiltinNativeObjectType:
		return true
	case *ExistentialType:
		return d.RequiresClass()
	case *PlaceholderType:
		return d.RequiresClass
	default:
		return false
	}
}

// MayHaveSuperclass reports whether t is a class instance or a placeholder
// constrained to be one.
func (t Type) MayHaveSuperclass() bool {
	switch d := t.Desc.(type) {
	case *ClassType:
		return true
	case *PlaceholderType:
		return d.RequiresClass
	default:
		return false
	}
}

// TypeDesc is the structural description of a SIR type, shared between the
// object and address categories.
type TypeDesc interface {
	isTypeDesc()
	String() string
}

// BuiltinIntType is a fixed-width builtin integer.
type BuiltinIntType struct{ Bits int }

// BuiltinFloatType is a fixed-width builtin float.
type BuiltinFloatType struct{ Bits int }

// BuiltinRawPointerType is an untyped pointer.
type BuiltinRawPointerType struct{}

// BuiltinNativeObjectType is an opaque reference-counted heap object.
type BuiltinNativeObjectType struct{}

// TupleType is a positional aggregate of object types.
type TupleType struct{ Elems []Type }

// StructType references a struct declaration, with generic arguments bound
// positionally to the declaration's type parameters when it is generic.
type StructType struct {
	Decl *StructDecl
	Args []Type
}

// EnumType references a sum-type declaration, with generic arguments bound.
type EnumType struct {
	Decl *EnumDecl
	Args []Type
}

// ClassType references a class declaration, with generic arguments bound.
type ClassType struct {
	Decl *ClassDecl
	Args []Type
}

// CallingConv is a function type's abstract calling convention.
type CallingConv int

const (
	CCDefault CallingConv = iota
	CCMethod
	CCWitness
	CCForeign
)

func (c CallingConv) String() string {
	switch c {
	case CCMethod:
		return "method"
	case CCWitness:
		return "witness"
	case CCForeign:
		return "foreign"
	default:
		return "default"
	}
}

// FunctionRep is the thinness of a function value.
type FunctionRep int

const (
	// RepThin is a bare function pointer with no captured context.
	RepThin FunctionRep = iota
	// RepThick carries a context and can close over values.
	RepThick
)

// ResultConvention describes ownership transfer of a call result.
type ResultConvention int

const (
	ResultUnowned ResultConvention = iota
	ResultOwned
	ResultAutoreleased
	// ResultUnownedInnerPointer is an unowned pointer into the callee's
	// self argument; it does not survive partial application.
	ResultUnownedInnerPointer
)

// ResultInfo is a function result type together with its convention.
type ResultInfo struct {
	Type Type
	Conv ResultConvention
}

// FunctionType is a lowered function signature.
type FunctionType struct {
	Params  []Type
	Result  ResultInfo
	CC      CallingConv
	Rep     FunctionRep
	Generic *GenericSignature // non-nil iff the function is polymorphic
}

// IsPolymorphic reports whether the type has an unsubstituted generic signature.
func (f *FunctionType) IsPolymorphic() bool { return f.Generic != nil }

// SelfParam returns the method self parameter, by convention the last one.
func (f *FunctionType) SelfParam() Type {
	if len(f.Params) == 0 {
		return Type{}
	}
	return f.Params[len(f.Params)-1]
}

// ExistentialType erases concrete types behind a set of protocols.
type ExistentialType struct {
	Protocols        []*ProtocolDecl
	ClassConstrained bool
}

// RequiresClass reports whether only class instances inhabit the existential.
func (e *ExistentialType) RequiresClass() bool {
	if e.ClassConstrained {
		return true
	}
	for _, p := range e.Protocols {
		if p.ClassConstrained {
			return true
		}
	}
	return false
}

// PlaceholderType is a generic placeholder (an opaque stand-in for an
// unspecified concrete type). Placeholders have identity: two placeholders
// are the same type only if they are the same object.
type PlaceholderType struct {
	Name string
	// Opened is the existential this placeholder was opened from, or nil.
	Opened *ExistentialType
	// SelfProtocol is set on a protocol's designated Self placeholder.
	SelfProtocol *ProtocolDecl
	// Conforms lists the protocols the placeholder is constrained to.
	Conforms []*ProtocolDecl
	// RequiresClass constrains the placeholder to class instances.
	RequiresClass bool
}

// GenericParamType is an unsubstituted generic parameter of a polymorphic
// signature, identified by depth and index.
type GenericParamType struct {
	Depth int
	Index int
	Name  string
}

// UnownedStorageType is the storage wrapper for an unowned reference.
type UnownedStorageType struct{ Referent TypeDesc }

// UnmanagedStorageType is the storage wrapper for an unmanaged reference.
type UnmanagedStorageType struct{ Referent TypeDesc }

func (*BuiltinIntType) isTypeDesc()          {}
func (*BuiltinFloatType) isTypeDesc()        {}
func (*BuiltinRawPointerType) isTypeDesc()   {}
func (*BuiltinNativeObjectType) isTypeDesc() {}
func (*TupleType) isTypeDesc()               {}
func (*StructType) isTypeDesc()              {}
func (*EnumType) isTypeDesc()                {}
func (*ClassType) isTypeDesc()               {}
func (*FunctionType) isTypeDesc()            {}
func (*ExistentialType) isTypeDesc()         {}
func (*PlaceholderType) isTypeDesc()         {}
func (*GenericParamType) isTypeDesc()        {}
func (*UnownedStorageType) isTypeDesc()      {}
func (*UnmanagedStorageType) isTypeDesc()    {}

func (t *BuiltinIntType) String() string        { return fmt.Sprintf("Builtin.Int%d", t.Bits) }
func (t *BuiltinFloatType) String() string      { return fmt.Sprintf("Builtin.Float%d", t.Bits) }
func (*BuiltinRawPointerType) String() string   { return "Builtin.RawPointer" }
func (*BuiltinNativeObjectType) String() string { return "Builtin.NativeObject" }

func (t *TupleType) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.Desc.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func nominalString(name string, args []Type) string {
	if len(args) == 0 {
		return name
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Desc.String()
	}
	return name + "<" + strings.Join(parts, ", ") + ">"
}

func (t *StructType) String() string { return nominalString(t.Decl.Name, t.Args) }
func (t *EnumType) String() string   { return nominalString(t.Decl.Name, t.Args) }
func (t *ClassType) String() string  { return nominalString(t.Decl.Name, t.Args) }

func (t *FunctionType) String() string {
	var b strings.Builder
	if t.Rep == RepThin {
		b.WriteString("@thin ")
	}
	if t.CC != CCDefault {
		fmt.Fprintf(&b, "@cc(%s) ", t.CC)
	}
	if t.Generic != nil {
		b.WriteString("<")
		for i, p := range t.Generic.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.String())
		}
		b.WriteString("> ")
	}
	b.WriteString("(")
	for i, p := range t.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Desc.String())
	}
	b.WriteString(") -> ")
	b.WriteString(t.Result.Type.Desc.String())
	return b.String()
}

func (t *ExistentialType) String() string {
	if len(t.Protocols) == 0 {
		return "Any"
	}
	parts := make([]string, len(t.Protocols))
	for i, p := range t.Protocols {
		parts[i] = p.Name
	}
	return strings.Join(parts, " & ")
}

func (t *PlaceholderType) String() string { return t.Name }

func (t *GenericParamType) String() string {
	if t.Name != "" {
		return t.Name
	}
	return fmt.Sprintf("τ_%d_%d", t.Depth, t.Index)
}

func (t *UnownedStorageType) String() string   { return "@sil_unowned " + t.Referent.String() }
func (t *UnmanagedStorageType) String() string { return "@sil_unmanaged " + t.Referent.String() }

// SameType reports structural equality of two types, category included.
func SameType(a, b Type) bool {
	return a.Cat == b.Cat && SameDesc(a.Desc, b.Desc)
}

func sameTypes(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !SameType(a[i], b[i]) {
			return false
		}
	}
	return true
}

// SameDesc reports structural equality of two type descriptions. Nominal
// types compare by declaration identity plus generic arguments; placeholders
// compare by identity only.
func SameDesc(a, b TypeDesc) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	switch x := a.(type) {
	case *BuiltinIntType:
		y, ok := b.(*BuiltinIntType)
		return ok && x.Bits == y.Bits
	case *BuiltinFloatType:
		y, ok := b.(*BuiltinFloatType)
		return ok && x.Bits == y.Bits
	case *BuiltinRawPointerType:
		_, ok := b.(*BuiltinRawPointerType)
		return ok
	case *BuiltinNativeObjectType:
		_, ok := b.(*BuiltinNativeObjectType)
		return ok
	case *TupleType:
		y, ok := b.(*TupleType)
		return ok && sameTypes(x.Elems, y.Elems)
	case *StructType:
		y, ok := b.(*StructType)
		return ok && x.Decl == y.Decl && sameTypes(x.Args, y.Args)
	case *EnumType:
		y, ok := b.(*EnumType)
		return ok && x.Decl == y.Decl && sameTypes(x.Args, y.Args)
	case *ClassType:
		y, ok := b.(*ClassType)
		return ok && x.Decl == y.Decl && sameTypes(x.Args, y.Args)
	case *FunctionType:
		y, ok := b.(*FunctionType)
		return ok && sameFunctionDesc(x, y)
	case *ExistentialType:
		y, ok := b.(*ExistentialType)
		if !ok || x.ClassConstrained != y.ClassConstrained || len(x.Protocols) != len(y.Protocols) {
			return false
		}
		for i := range x.Protocols {
			if x.Protocols[i] != y.Protocols[i] {
				return false
			}
		}
		return true
	case *GenericParamType:
		y, ok := b.(*GenericParamType)
		return ok && x.Depth == y.Depth && x.Index == y.Index
	case *UnownedStorageType:
		y, ok := b.(*UnownedStorageType)
		return ok && SameDesc(x.Referent, y.Referent)
	case *UnmanagedStorageType:
		y, ok := b.(*UnmanagedStorageType)
		return ok && SameDesc(x.Referent, y.Referent)
	case *PlaceholderType:
		// Identity comparison already failed above.
		return false
	default:
		return false
	}
}

func sameFunctionDesc(a, b *FunctionType) bool {
	if a.CC != b.CC || a.Rep != b.Rep {
		return false
	}
	if !sameTypes(a.Params, b.Params) {
		return false
	}
	if a.Result.Conv != b.Result.Conv || !SameType(a.Result.Type, b.Result.Type) {
		return false
	}
	if (a.Generic == nil) != (b.Generic == nil) {
		return false
	}
	if a.Generic == nil {
		return true
	}
	if len(a.Generic.Params) != len(b.Generic.Params) ||
		len(a.Generic.Requirements) != len(b.Generic.Requirements) {
		return false
	}
	for i := range a.Generic.Params {
		p, q := a.Generic.Params[i], b.Generic.Params[i]
		if p.Depth != q.Depth || p.Index != q.Index {
			return false
		}
	}
	for i := range a.Generic.Requirements {
		p, q := a.Generic.Requirements[i], b.Generic.Requirements[i]
		if p.Kind != q.Kind || p.Protocol != q.Protocol || !SameDesc(p.Subject, q.Subject) {
			return false
		}
	}
	return true
}

// RequirementKind classifies generic-signature requirements.
type RequirementKind int

const (
	// ReqWitnessMarker asserts the existence of a generic parameter.
	ReqWitnessMarker RequirementKind = iota
	// ReqConformance constrains the subject to conform to a protocol.
	ReqConformance
)

// Requirement is a single constraint of a generic signature.
type Requirement struct {
	Kind     RequirementKind
	Subject  TypeDesc
	Protocol *ProtocolDecl
}

// GenericSignature is the unsubstituted generic interface of a polymorphic
// function type.
type GenericSignature struct {
	Params       []*GenericParamType
	Requirements []Requirement
}

// Substitution binds one generic parameter to a replacement type.
type Substitution struct {
	Param       *GenericParamType
	Replacement Type
}

type substMap map[[2]int]Type

func newSubstMap(subs []Substitution) substMap {
	m := make(substMap, len(subs))
	for _, s := range subs {
		m[[2]int{s.Param.Depth, s.Param.Index}] = s.Replacement
	}
	return m
}

// SubstType rewrites generic parameters inside t according to subs,
// preserving t's category.
func SubstType(t Type, subs []Substitution) Type {
	return substTypeMap(t, newSubstMap(subs))
}

func substTypeMap(t Type, m substMap) Type {
	if t.IsNull() {
		return t
	}
	return Type{Desc: substDesc(t.Desc, m), Cat: t.Cat}
}

func substTypesMap(ts []Type, m substMap) []Type {
	out := make([]Type, len(ts))
	for i, t := range ts {
		out[i] = substTypeMap(t, m)
	}
	return out
}

func substDesc(d TypeDesc, m substMap) TypeDesc {
	switch x := d.(type) {
	case *GenericParamType:
		if r, ok := m[[2]int{x.Depth, x.Index}]; ok {
			return r.Desc
		}
		return x
	case *TupleType:
		return &TupleType{Elems: substTypesMap(x.Elems, m)}
	case *StructType:
		return &StructType{Decl: x.Decl, Args: substTypesMap(x.Args, m)}
	case *EnumType:
		return &EnumType{Decl: x.Decl, Args: substTypesMap(x.Args, m)}
	case *ClassType:
		return &ClassType{Decl: x.Decl, Args: substTypesMap(x.Args, m)}
	case *FunctionType:
		return &FunctionType{
			Params: substTypesMap(x.Params, m),
			Result: ResultInfo{Type: substTypeMap(x.Result.Type, m), Conv: x.Result.Conv},
			CC:     x.CC,
			Rep:    x.Rep,
			// Substituting a polymorphic type's own parameters erases
			// the signature.
			Generic: nil,
		}
	case *UnownedStorageType:
		return &UnownedStorageType{Referent: substDesc(x.Referent, m)}
	case *UnmanagedStorageType:
		return &UnmanagedStorageType{Referent: substDesc(x.Referent, m)}
	default:
		return d
	}
}

// ApplySubstitutions instantiates a polymorphic function type with subs.
func ApplySubstitutions(f *FunctionType, subs []Substitution) *FunctionType {
	m := newSubstMap(subs)
	return &FunctionType{
		Params: substTypesMap(f.Params, m),
		Result: ResultInfo{Type: substTypeMap(f.Result.Type, m), Conv: f.Result.Conv},
		CC:     f.CC,
		Rep:    f.Rep,
	}
}

// ForEachPlaceholder walks the description and invokes fn for every generic
// placeholder it contains.
func ForEachPlaceholder(d TypeDesc, fn func(*PlaceholderType)) {
	switch x := d.(type) {
	case *PlaceholderType:
		fn(x)
	case *TupleType:
		for _, e := range x.Elems {
			ForEachPlaceholder(e.Desc, fn)
		}
	case *StructType:
		for _, a := range x.Args {
			ForEachPlaceholder(a.Desc, fn)
		}
	case *EnumType:
		for _, a := range x.Args {
			ForEachPlaceholder(a.Desc, fn)
		}
	case *ClassType:
		for _, a := range x.Args {
			ForEachPlaceholder(a.Desc, fn)
		}
	case *FunctionType:
		for _, p := range x.Params {
			ForEachPlaceholder(p.Desc, fn)
		}
		ForEachPlaceholder(x.Result.Type.Desc, fn)
	case *UnownedStorageType:
		ForEachPlaceholder(x.Referent, fn)
	case *UnmanagedStorageType:
		ForEachPlaceholder(x.Referent, fn)
	}
}

// Field is a stored member of a struct or class declaration.
type Field struct {
	Name string
	Type Type
}

// StructDecl declares a struct nominal type.
type StructDecl struct {
	Name       string
	TypeParams []*GenericParamType
	Fields     []*Field
}

// HasField reports whether f is one of the declaration's stored fields.
func (d *StructDecl) HasField(f *Field) bool {
	for _, g := range d.Fields {
		if g == f {
			return true
		}
	}
	return false
}

// EnumCase is one variant of a sum type. Payload is nil for payloadless cases.
type EnumCase struct {
	Name    string
	Payload *Type
	Parent  *EnumDecl
}

// HasPayload reports whether the case declares an associated payload type.
func (c *EnumCase) HasPayload() bool { return c.Payload != nil }

// EnumDecl declares a sum nominal type.
type EnumDecl struct {
	Name       string
	TypeParams []*GenericParamType
	Cases      []*EnumCase
}

// NewEnumDecl builds an enum declaration and back-links its cases.
func NewEnumDecl(name string, cases ...*EnumCase) *EnumDecl {
	d := &EnumDecl{Name: name, Cases: cases}
	for _, c := range cases {
		c.Parent = d
	}
	return d
}

// ClassDecl declares a class nominal type.
type ClassDecl struct {
	Name       string
	Super      *ClassDecl
	TypeParams []*GenericParamType
	Fields     []*Field
}

// HasField reports whether f is one of the declaration's stored fields.
func (d *ClassDecl) HasField(f *Field) bool {
	for _, g := range d.Fields {
		if g == f {
			return true
		}
	}
	return false
}

// IsSubclassOf reports whether d is sup or inherits from it.
func (d *ClassDecl) IsSubclassOf(sup *ClassDecl) bool {
	for c := d; c != nil; c = c.Super {
		if c == sup {
			return true
		}
	}
	return false
}

// ProtocolDecl declares a protocol.
type ProtocolDecl struct {
	Name             string
	Inherits         []*ProtocolDecl
	ClassConstrained bool

	self *PlaceholderType
}

// Self returns the protocol's designated Self placeholder, creating it on
// first use.
func (p *ProtocolDecl) Self() *PlaceholderType {
	if p.self == nil {
		p.self = &PlaceholderType{
			Name:         p.Name + ".Self",
			SelfProtocol: p,
			Conforms:     []*ProtocolDecl{p},
		}
	}
	return p.self
}

// InheritsFrom reports whether p inherits q, directly or transitively.
func (p *ProtocolDecl) InheritsFrom(q *ProtocolDecl) bool {
	for _, parent := range p.Inherits {
		if parent == q || parent.InheritsFrom(q) {
			return true
		}
	}
	return false
}

// MethodDecl is a member function declaration of a class or protocol.
type MethodDecl struct {
	Name     string
	Class    *ClassDecl
	Protocol *ProtocolDecl
	Type     *FunctionType
}

// MethodRef names a method together with its entry-point flavor.
type MethodRef struct {
	Decl    *MethodDecl
	Curried bool
	Foreign bool
}

// Conformance records that a concrete type conforms to a protocol.
type Conformance struct {
	Concrete Type
	Protocol *ProtocolDecl
}
