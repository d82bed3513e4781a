// Package sir defines the Sable Intermediate Representation: a typed,
// static-single-assignment IR used between lowering and code generation,
// together with the verifier that enforces its structural and type-level
// invariants after construction and after each transformation pass.
package sir

import (
	"fmt"

	"github.com/sable-lang/sable/internal/position"
)

// Stage identifies how far a module has progressed through the pipeline.
// A few instructions are only legal before canonicalization.
type Stage int

const (
	// StageRaw is freshly lowered SIR, before mandatory passes.
	StageRaw Stage = iota
	// StageCanonical is SIR after mandatory passes.
	StageCanonical
)

// Module is one compilation unit of SIR.
type Module struct {
	Name          string
	Stage         Stage
	Functions     []*Function
	Globals       []*GlobalVariable
	VTables       []*VTable
	WitnessTables []*WitnessTable
}

// LookupWitnessTable finds the witness table recording the given conformance,
// or nil.
func (m *Module) LookupWitnessTable(c *Conformance) *WitnessTable {
	for _, wt := range m.WitnessTables {
		if wt.Conformance == c {
			return wt
		}
	}
	return nil
}

// Linkage is symbol visibility across compilation units.
type Linkage int

const (
	LinkagePublic Linkage = iota
	LinkagePublicExternal
	LinkageShared
	LinkageHidden
	LinkageHiddenExternal
	LinkagePrivate
)

func (l Linkage) String() string {
	switch l {
	case LinkagePublic:
		return "public"
	case LinkagePublicExternal:
		return "public_external"
	case LinkageShared:
		return "shared"
	case LinkageHidden:
		return "hidden"
	case LinkageHiddenExternal:
		return "hidden_external"
	default:
		return "private"
	}
}

// IsAvailableExternally reports whether the linkage names a definition that
// lives in another compilation unit.
func (l Linkage) IsAvailableExternally() bool {
	return l == LinkagePublicExternal || l == LinkageHiddenExternal
}

func linkageRank(l Linkage) int {
	switch l {
	case LinkagePublic, LinkagePublicExternal, LinkageShared:
		return 2
	case LinkageHidden, LinkageHiddenExternal:
		return 1
	default:
		return 0
	}
}

// LessVisible reports whether linkage a is narrower than linkage b.
func LessVisible(a, b Linkage) bool { return linkageRank(a) < linkageRank(b) }

// Function is an ordered list of basic blocks with a lowered signature.
type Function struct {
	Name    string
	Linkage Linkage
	Type    *FunctionType
	// GenericEnv lists the placeholders bound positionally to the
	// signature's generic parameters. Placeholders outside this set (and
	// not opened or protocol Self) are illegal inside the body.
	GenericEnv []*PlaceholderType
	Blocks     []*BasicBlock
	// External marks a body-less declaration.
	External bool
	// Transparent marks a function that is always inlined; it may not
	// reference symbols narrower than itself.
	Transparent bool

	nextValueID int
}

// Entry returns the function's entry block, or nil for declarations.
func (f *Function) Entry() *BasicBlock {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}

// MapIntoContext replaces the signature's generic parameters in t with the
// function's bound placeholders.
func (f *Function) MapIntoContext(t Type) Type {
	if f.Type.Generic == nil {
		return t
	}
	subs := make([]Substitution, 0, len(f.GenericEnv))
	for i, p := range f.Type.Generic.Params {
		if i < len(f.GenericEnv) {
			subs = append(subs, Substitution{Param: p, Replacement: Type{Desc: f.GenericEnv[i], Cat: t.Cat}})
		}
	}
	m := newSubstMap(subs)
	// Context mapping preserves each occurrence's own category.
	return Type{Desc: substDescKeepCat(t.Desc, m), Cat: t.Cat}
}

func substDescKeepCat(d TypeDesc, m substMap) TypeDesc {
	return substDesc(d, m)
}

func (f *Function) nextID() int {
	id := f.nextValueID
	f.nextValueID++
	return id
}

// GlobalVariable is a module-level variable. Its declared type must be an
// object type; addresses of it are formed by GlobalAddr.
type GlobalVariable struct {
	Name    string
	Linkage Linkage
	Type    Type
}

// VTable is a class dispatch table mapping overridable members to their
// implementing functions.
type VTable struct {
	Class   *ClassDecl
	Entries []VTableEntry
}

// VTableEntry is one dispatch-table row.
type VTableEntry struct {
	Member MethodRef
	Impl   *Function
}

// WitnessTable maps one protocol conformance's requirements to a concrete
// type's implementations.
type WitnessTable struct {
	Conformance *Conformance
	Linkage     Linkage
	// Declaration marks a forward declaration, which must carry no entries.
	Declaration bool
	Entries     []WitnessEntry
}

// WitnessEntry is one method row of a witness table.
type WitnessEntry struct {
	Requirement MethodRef
	Witness     *Function
}

// BasicBlock is a straight-line instruction sequence ending in exactly one
// terminator. Parameters are typed values bound on entry from predecessors.
type BasicBlock struct {
	Name   string
	Parent *Function
	Params []*BlockParam
	Instrs []Instruction
	Preds  []*BasicBlock
	Succs  []*BasicBlock
}

// Terminator returns the block's final instruction as a terminator, or nil
// if the block is empty or ends in a non-terminator.
func (bb *BasicBlock) Terminator() Terminator {
	if len(bb.Instrs) == 0 {
		return nil
	}
	t, _ := bb.Instrs[len(bb.Instrs)-1].(Terminator)
	return t
}

// Value is an instruction result or a block parameter.
type Value interface {
	Type() Type
	Uses() []*Operand
	// ValueName is the printer's name for the value, e.g. %3.
	ValueName() string

	addUse(*Operand)
}

// BlockParam is a typed value bound on entry to a block.
type BlockParam struct {
	Block *BasicBlock
	Index int

	typ  Type
	name string
	uses []*Operand
}

func (p *BlockParam) Type() Type        { return p.typ }
func (p *BlockParam) Uses() []*Operand  { return p.uses }
func (p *BlockParam) ValueName() string { return p.name }
func (p *BlockParam) addUse(o *Operand) { p.uses = append(p.uses, o) }

// Result is one result value of an instruction.
type Result struct {
	Inst  Instruction
	Index int

	typ  Type
	name string
	uses []*Operand
}

func (r *Result) Type() Type        { return r.typ }
func (r *Result) Uses() []*Operand  { return r.uses }
func (r *Result) ValueName() string { return r.name }
func (r *Result) addUse(o *Operand) { r.uses = append(r.uses, o) }

// Operand is one use edge: the owning instruction and the value it reads.
type Operand struct {
	owner Instruction
	val   Value
}

// Owner returns the instruction this operand belongs to.
func (o *Operand) Owner() Instruction { return o.owner }

// Value returns the value the operand reads; nil only in malformed IR.
func (o *Operand) Value() Value { return o.val }

// LocKind classifies the provenance of an instruction's source location.
type LocKind int

const (
	LocRegular LocKind = iota
	LocIRFile
	LocCleanup
	LocInlined
	LocReturn
	LocImplicitReturn
	LocArtificialUnreachable
)

func (k LocKind) String() string {
	switch k {
	case LocIRFile:
		return "irfile"
	case LocCleanup:
		return "cleanup"
	case LocInlined:
		return "inlined"
	case LocReturn:
		return "return"
	case LocImplicitReturn:
		return "implicit_return"
	case LocArtificialUnreachable:
		return "artificial_unreachable"
	default:
		return "regular"
	}
}

// Location tags an instruction with where it came from.
type Location struct {
	Kind LocKind
	Span position.Span
}

// Instruction is implemented by every SIR instruction variant.
type Instruction interface {
	Kind() Kind
	Operands() []*Operand
	Results() []*Result
	Parent() *BasicBlock
	Loc() Location

	base() *instBase
}

// Terminator is an instruction that ends a block and names its successors.
type Terminator interface {
	Instruction
	Successors() []*BasicBlock
}

// instBase carries the state shared by all instruction variants.
type instBase struct {
	kind   Kind
	parent *BasicBlock
	loc    Location
	ops    []*Operand
	res    []*Result
}

func (b *instBase) Kind() Kind           { return b.kind }
func (b *instBase) Operands() []*Operand { return b.ops }
func (b *instBase) Results() []*Result   { return b.res }
func (b *instBase) Parent() *BasicBlock  { return b.parent }
func (b *instBase) Loc() Location        { return b.loc }
func (b *instBase) base() *instBase      { return b }

func (b *instBase) init(self Instruction, kind Kind, loc Location, operands []Value, results []Type) {
	b.kind = kind
	b.loc = loc
	b.ops = make([]*Operand, len(operands))
	for i, v := range operands {
		op := &Operand{owner: self, val: v}
		if v != nil {
			v.addUse(op)
		}
		b.ops[i] = op
	}
	b.res = make([]*Result, len(results))
	for i, t := range results {
		b.res[i] = &Result{Inst: self, Index: i, typ: t}
	}
}

// result returns the sole result of a single-result instruction.
func (b *instBase) result() *Result {
	if len(b.res) != 1 {
		panic(fmt.Sprintf("sir: instruction %s has %d results", b.kind, len(b.res)))
	}
	return b.res[0]
}
