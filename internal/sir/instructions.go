package sir

// Kind is the closed enumeration of SIR instruction kinds.
type Kind int

const (
	KindInvalid Kind = iota

	// Allocation and deallocation.
	KindAllocStack
	KindAllocRef
	KindAllocBox
	KindDeallocStack
	KindDeallocRef
	KindDeallocBox

	// Function application and references.
	KindApply
	KindPartialApply
	KindFunctionRef
	KindGlobalAddr

	// Literals.
	KindIntegerLiteral
	KindFloatLiteral
	KindStringLiteral

	// Memory.
	KindLoad
	KindStore
	KindAssign
	KindMarkUninitialized
	KindCopyAddr
	KindDestroyAddr
	KindIndexAddr
	KindIndexRawPointer

	// Aggregates.
	KindStruct
	KindTuple
	KindTupleExtract
	KindTupleElementAddr
	KindStructExtract
	KindStructElementAddr
	KindRefElementAddr

	// Sum types.
	KindEnum
	KindInitEnumDataAddr
	KindUncheckedEnumData
	KindUncheckedTakeEnumDataAddr
	KindInjectEnumAddr

	// Method lookup.
	KindWitnessMethod
	KindClassMethod
	KindSuperMethod

	// Existentials.
	KindProjectExistential
	KindProjectExistentialRef
	KindOpenExistential
	KindOpenExistentialRef
	KindInitExistential
	KindInitExistentialRef
	KindUpcastExistential
	KindUpcastExistentialRef
	KindDeinitExistential

	// Casts and conversions.
	KindUnconditionalCheckedCast
	KindUpcast
	KindUncheckedRefCast
	KindUncheckedAddrCast
	KindAddressToPointer
	KindRefToRawPointer
	KindRawPointerToRef
	KindConvertFunction
	KindThinToThickFunction

	// Reference counting.
	KindStrongRetain
	KindStrongRelease
	KindRetainValue
	KindReleaseValue
	KindAutoreleaseValue
	KindStrongRetainUnowned
	KindUnownedRetain
	KindUnownedRelease
	KindRefToUnowned
	KindUnownedToRef
	KindRefToUnmanaged
	KindUnmanagedToRef

	// Runtime checks.
	KindCondFail
	KindIsNonnull

	// Terminators.
	KindUnreachable
	KindReturn
	KindAutoreleaseReturn
	KindBranch
	KindCondBranch
	KindSwitchInt
	KindSwitchEnum
	KindSwitchEnumAddr
	KindCheckedCastBranch

	numKinds
)

var kindNames = map[Kind]string{
	KindAllocStack:                "alloc_stack",
	KindAllocRef:                  "alloc_ref",
	KindAllocBox:                  "alloc_box",
	KindDeallocStack:              "dealloc_stack",
	KindDeallocRef:                "dealloc_ref",
	KindDeallocBox:                "dealloc_box",
	KindApply:                     "apply",
	KindPartialApply:              "partial_apply",
	KindFunctionRef:               "function_ref",
	KindGlobalAddr:                "global_addr",
	KindIntegerLiteral:            "integer_literal",
	KindFloatLiteral:              "float_literal",
	KindStringLiteral:             "string_literal",
	KindLoad:                      "load",
	KindStore:                     "store",
	KindAssign:                    "assign",
	KindMarkUninitialized:         "mark_uninitialized",
	KindCopyAddr:                  "copy_addr",
	KindDestroyAddr:               "destroy_addr",
	KindIndexAddr:                 "index_addr",
	KindIndexRawPointer:           "index_raw_pointer",
	KindStruct:                    "struct",
	KindTuple:                     "tuple",
	KindTupleExtract:              "tuple_extract",
	KindTupleElementAddr:          "tuple_element_addr",
	KindStructExtract:             "struct_extract",
	KindStructElementAddr:         "struct_element_addr",
	KindRefElementAddr:            "ref_element_addr",
	KindEnum:                      "enum",
	KindInitEnumDataAddr:          "init_enum_data_addr",
	KindUncheckedEnumData:         "unchecked_enum_data",
	KindUncheckedTakeEnumDataAddr: "unchecked_take_enum_data_addr",
	KindInjectEnumAddr:            "inject_enum_addr",
	KindWitnessMethod:             "witness_method",
	KindClassMethod:               "class_method",
	KindSuperMethod:               "super_method",
	KindProjectExistential:        "project_existential",
	KindProjectExistentialRef:     "project_existential_ref",
	KindOpenExistential:           "open_existential",
	KindOpenExistentialRef:        "open_existential_ref",
	KindInitExistential:           "init_existential",
	KindInitExistentialRef:        "init_existential_ref",
	KindUpcastExistential:         "upcast_existential",
	KindUpcastExistentialRef:      "upcast_existential_ref",
	KindDeinitExistential:         "deinit_existential",
	KindUnconditionalCheckedCast:  "unconditional_checked_cast",
	KindUpcast:                    "upcast",
	KindUncheckedRefCast:          "unchecked_ref_cast",
	KindUncheckedAddrCast:         "unchecked_addr_cast",
	KindAddressToPointer:          "address_to_pointer",
	KindRefToRawPointer:           "ref_to_raw_pointer",
	KindRawPointerToRef:           "raw_pointer_to_ref",
	KindConvertFunction:           "convert_function",
	KindThinToThickFunction:       "thin_to_thick_function",
	KindStrongRetain:              "strong_retain",
	KindStrongRelease:             "strong_release",
	KindRetainValue:               "retain_value",
	KindReleaseValue:              "release_value",
	KindAutoreleaseValue:          "autorelease_value",
	KindStrongRetainUnowned:       "strong_retain_unowned",
	KindUnownedRetain:             "unowned_retain",
	KindUnownedRelease:            "unowned_release",
	KindRefToUnowned:              "ref_to_unowned",
	KindUnownedToRef:              "unowned_to_ref",
	KindRefToUnmanaged:            "ref_to_unmanaged",
	KindUnmanagedToRef:            "unmanaged_to_ref",
	KindCondFail:                  "cond_fail",
	KindIsNonnull:                 "is_nonnull",
	KindUnreachable:               "unreachable",
	KindReturn:                    "return",
	KindAutoreleaseReturn:         "autorelease_return",
	KindBranch:                    "br",
	KindCondBranch:                "cond_br",
	KindSwitchInt:                 "switch_int",
	KindSwitchEnum:                "switch_enum",
	KindSwitchEnumAddr:            "switch_enum_addr",
	KindCheckedCastBranch:         "checked_cast_br",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "invalid"
}

// Category is a bit set of structural categories an instruction kind belongs
// to. The dispatch framework runs the checks owed by every category of a kind
// before its kind-specific check.
type Category uint32

const (
	// CatValue produces at least one result value.
	CatValue Category = 1 << iota
	// CatTerminator ends a basic block.
	CatTerminator
	// CatAllocation opens a scoped or heap allocation.
	CatAllocation
	// CatDeallocation closes an allocation.
	CatDeallocation
	// CatRefCount manipulates a reference count.
	CatRefCount
	// CatRawOnly is legal only in raw-stage modules.
	CatRawOnly
)

var kindCategories = map[Kind]Category{
	KindAllocStack:                CatValue | CatAllocation,
	KindAllocRef:                  CatValue | CatAllocation,
	KindAllocBox:                  CatValue | CatAllocation,
	KindDeallocStack:              CatDeallocation,
	KindDeallocRef:                CatDeallocation,
	KindDeallocBox:                CatDeallocation,
	KindApply:                     CatValue,
	KindPartialApply:              CatValue,
	KindFunctionRef:               CatValue,
	KindGlobalAddr:                CatValue,
	KindIntegerLiteral:            CatValue,
	KindFloatLiteral:              CatValue,
	KindStringLiteral:             CatValue,
	KindLoad:                      CatValue,
	KindStore:                     0,
	KindAssign:                    CatRawOnly,
	KindMarkUninitialized:         CatValue | CatRawOnly,
	KindCopyAddr:                  0,
	KindDestroyAddr:               0,
	KindIndexAddr:                 CatValue,
	KindIndexRawPointer:           CatValue,
	KindStruct:                    CatValue,
	KindTuple:                     CatValue,
	KindTupleExtract:              CatValue,
	KindTupleElementAddr:          CatValue,
	KindStructExtract:             CatValue,
	KindStructElementAddr:         CatValue,
	KindRefElementAddr:            CatValue,
	KindEnum:                      CatValue,
	KindInitEnumDataAddr:          CatValue,
	KindUncheckedEnumData:         CatValue,
	KindUncheckedTakeEnumDataAddr: CatValue,
	KindInjectEnumAddr:            0,
	KindWitnessMethod:             CatValue,
	KindClassMethod:               CatValue,
	KindSuperMethod:               CatValue,
	KindProjectExistential:        CatValue,
	KindProjectExistentialRef:     CatValue,
	KindOpenExistential:           CatValue,
	KindOpenExistentialRef:        CatValue,
	KindInitExistential:           CatValue,
	KindInitExistentialRef:        CatValue,
	KindUpcastExistential:         0,
	KindUpcastExistentialRef:      CatValue,
	KindDeinitExistential:         0,
	KindUnconditionalCheckedCast:  CatValue,
	KindUpcast:                    CatValue,
	KindUncheckedRefCast:          CatValue,
	KindUncheckedAddrCast:         CatValue,
	KindAddressToPointer:          CatValue,
	KindRefToRawPointer:           CatValue,
	KindRawPointerToRef:           CatValue,
	KindConvertFunction:           CatValue,
	KindThinToThickFunction:       CatValue,
	KindStrongRetain:              CatRefCount,
	KindStrongRelease:             CatRefCount,
	KindRetainValue:               CatRefCount,
	KindReleaseValue:              CatRefCount,
	KindAutoreleaseValue:          CatRefCount,
	KindStrongRetainUnowned:       CatRefCount,
	KindUnownedRetain:             CatRefCount,
	KindUnownedRelease:            CatRefCount,
	KindRefToUnowned:              CatValue,
	KindUnownedToRef:              CatValue,
	KindRefToUnmanaged:            CatValue,
	KindUnmanagedToRef:            CatValue,
	KindCondFail:                  0,
	KindIsNonnull:                 CatValue,
	KindUnreachable:               CatTerminator,
	KindReturn:                    CatTerminator,
	KindAutoreleaseReturn:         CatTerminator,
	KindBranch:                    CatTerminator,
	KindCondBranch:                CatTerminator,
	KindSwitchInt:                 CatTerminator,
	KindSwitchEnum:                CatTerminator,
	KindSwitchEnumAddr:            CatTerminator,
	KindCheckedCastBranch:         CatTerminator,
}

// Categories returns the structural categories of the kind.
func (k Kind) Categories() Category { return kindCategories[k] }

// Is reports whether the kind belongs to the given category.
func (k Kind) Is(c Category) bool { return k.Categories()&c != 0 }

// CastKind names the shape contract of a checked cast.
type CastKind int

const (
	CastDowncast CastKind = iota
	CastSuperToPlaceholder
	CastPlaceholderToConcrete
	CastPlaceholderToPlaceholder
	CastExistentialToPlaceholder
	CastExistentialToConcrete
	CastConcreteToPlaceholder
	CastConcreteToExistential
)

func (k CastKind) String() string {
	switch k {
	case CastDowncast:
		return "downcast"
	case CastSuperToPlaceholder:
		return "super_to_placeholder"
	case CastPlaceholderToConcrete:
		return "placeholder_to_concrete"
	case CastPlaceholderToPlaceholder:
		return "placeholder_to_placeholder"
	case CastExistentialToPlaceholder:
		return "existential_to_placeholder"
	case CastExistentialToConcrete:
		return "existential_to_concrete"
	case CastConcreteToPlaceholder:
		return "concrete_to_placeholder"
	default:
		return "concrete_to_existential"
	}
}

// --- Allocation and deallocation ---

// AllocStack opens a scoped stack allocation and yields its address. Every
// path to a return-like terminator must close it with a matching
// DeallocStack in LIFO order.
type AllocStack struct{ instBase }

func NewAllocStack(loc Location, ty Type) *AllocStack {
	i := &AllocStack{}
	i.init(i, KindAllocStack, loc, nil, []Type{ty})
	return i
}

// AllocRef allocates a class instance on the heap.
type AllocRef struct{ instBase }

func NewAllocRef(loc Location, ty Type) *AllocRef {
	i := &AllocRef{}
	i.init(i, KindAllocRef, loc, nil, []Type{ty})
	return i
}

// AllocBox allocates a reference-counted box; it yields the box owner and
// the address of the boxed storage.
type AllocBox struct{ instBase }

func NewAllocBox(loc Location, ownerTy, addrTy Type) *AllocBox {
	i := &AllocBox{}
	i.init(i, KindAllocBox, loc, nil, []Type{ownerTy, addrTy})
	return i
}

// Owner returns the box's reference-counted owner result.
func (i *AllocBox) Owner() *Result { return i.res[0] }

// Addr returns the boxed storage address result.
func (i *AllocBox) Addr() *Result { return i.res[1] }

// DeallocStack closes the most recently opened scoped allocation.
type DeallocStack struct{ instBase }

func NewDeallocStack(loc Location, storage Value) *DeallocStack {
	i := &DeallocStack{}
	i.init(i, KindDeallocStack, loc, []Value{storage}, nil)
	return i
}

// DeallocRef frees an uninitialized class instance.
type DeallocRef struct{ instBase }

func NewDeallocRef(loc Location, ref Value) *DeallocRef {
	i := &DeallocRef{}
	i.init(i, KindDeallocRef, loc, []Value{ref}, nil)
	return i
}

// DeallocBox frees an uninitialized box.
type DeallocBox struct {
	instBase
	Elem Type
}

func NewDeallocBox(loc Location, elem Type, box Value) *DeallocBox {
	i := &DeallocBox{Elem: elem}
	i.init(i, KindDeallocBox, loc, []Value{box}, nil)
	return i
}

// --- Application ---

// Apply calls a function value. The substituted callee type is recorded at
// construction and re-derived by the verifier from the substitution list.
type Apply struct {
	instBase
	Subs        []Substitution
	SubstCallee *FunctionType
}

func NewApply(loc Location, callee Value, subs []Substitution, substCallee *FunctionType, args []Value, resultTy Type) *Apply {
	i := &Apply{Subs: subs, SubstCallee: substCallee}
	i.init(i, KindApply, loc, append([]Value{callee}, args...), []Type{resultTy})
	return i
}

// Callee returns the callee operand.
func (i *Apply) Callee() *Operand { return i.ops[0] }

// Args returns the argument operands.
func (i *Apply) Args() []*Operand { return i.ops[1:] }

// PartialApply applies a suffix of a function's parameters and yields a
// closure over the rest.
type PartialApply struct {
	instBase
	Subs        []Substitution
	SubstCallee *FunctionType
}

func NewPartialApply(loc Location, callee Value, subs []Substitution, substCallee *FunctionType, args []Value, closureTy Type) *PartialApply {
	i := &PartialApply{Subs: subs, SubstCallee: substCallee}
	i.init(i, KindPartialApply, loc, append([]Value{callee}, args...), []Type{closureTy})
	return i
}

// Callee returns the callee operand.
func (i *PartialApply) Callee() *Operand { return i.ops[0] }

// Args returns the applied argument operands.
func (i *PartialApply) Args() []*Operand { return i.ops[1:] }

// FunctionRef yields a thin reference to a module function.
type FunctionRef struct {
	instBase
	Fn *Function
}

func NewFunctionRef(loc Location, fn *Function, ty Type) *FunctionRef {
	i := &FunctionRef{Fn: fn}
	i.init(i, KindFunctionRef, loc, nil, []Type{ty})
	return i
}

// GlobalAddr yields the address of a module global.
type GlobalAddr struct {
	instBase
	Global *GlobalVariable
}

func NewGlobalAddr(loc Location, g *GlobalVariable, ty Type) *GlobalAddr {
	i := &GlobalAddr{Global: g}
	i.init(i, KindGlobalAddr, loc, nil, []Type{ty})
	return i
}

// --- Literals ---

// IntegerLiteral materializes a builtin integer constant.
type IntegerLiteral struct {
	instBase
	Value int64
}

func NewIntegerLiteral(loc Location, ty Type, v int64) *IntegerLiteral {
	i := &IntegerLiteral{Value: v}
	i.init(i, KindIntegerLiteral, loc, nil, []Type{ty})
	return i
}

// FloatLiteral materializes a builtin float constant.
type FloatLiteral struct {
	instBase
	Value float64
}

func NewFloatLiteral(loc Location, ty Type, v float64) *FloatLiteral {
	i := &FloatLiteral{Value: v}
	i.init(i, KindFloatLiteral, loc, nil, []Type{ty})
	return i
}

// StringLiteral materializes a pointer to constant string data.
type StringLiteral struct {
	instBase
	Value string
}

func NewStringLiteral(loc Location, ty Type, v string) *StringLiteral {
	i := &StringLiteral{Value: v}
	i.init(i, KindStringLiteral, loc, nil, []Type{ty})
	return i
}

// --- Memory ---

// Load reads the object stored at an address.
type Load struct{ instBase }

func NewLoad(loc Location, ty Type, addr Value) *Load {
	i := &Load{}
	i.init(i, KindLoad, loc, []Value{addr}, []Type{ty})
	return i
}

// Addr returns the source address operand.
func (i *Load) Addr() *Operand { return i.ops[0] }

// Store writes an object to an address.
type Store struct{ instBase }

func NewStore(loc Location, src, dest Value) *Store {
	i := &Store{}
	i.init(i, KindStore, loc, []Value{src, dest}, nil)
	return i
}

// Src returns the stored value operand.
func (i *Store) Src() *Operand { return i.ops[0] }

// Dest returns the destination address operand.
func (i *Store) Dest() *Operand { return i.ops[1] }

// Assign is the raw-stage store that may overwrite an initialized location.
type Assign struct{ instBase }

func NewAssign(loc Location, src, dest Value) *Assign {
	i := &Assign{}
	i.init(i, KindAssign, loc, []Value{src, dest}, nil)
	return i
}

// Src returns the assigned value operand.
func (i *Assign) Src() *Operand { return i.ops[0] }

// Dest returns the destination address operand.
func (i *Assign) Dest() *Operand { return i.ops[1] }

// MarkUninitialized tags raw-stage storage as not yet initialized.
type MarkUninitialized struct{ instBase }

func NewMarkUninitialized(loc Location, storage Value, ty Type) *MarkUninitialized {
	i := &MarkUninitialized{}
	i.init(i, KindMarkUninitialized, loc, []Value{storage}, []Type{ty})
	return i
}

// CopyAddr copies the object at one address to another.
type CopyAddr struct {
	instBase
	IsTake bool
	IsInit bool
}

func NewCopyAddr(loc Location, src, dest Value, take, init bool) *CopyAddr {
	i := &CopyAddr{IsTake: take, IsInit: init}
	i.init(i, KindCopyAddr, loc, []Value{src, dest}, nil)
	return i
}

// Src returns the source address operand.
func (i *CopyAddr) Src() *Operand { return i.ops[0] }

// Dest returns the destination address operand.
func (i *CopyAddr) Dest() *Operand { return i.ops[1] }

// DestroyAddr destroys the object at an address.
type DestroyAddr struct{ instBase }

func NewDestroyAddr(loc Location, addr Value) *DestroyAddr {
	i := &DestroyAddr{}
	i.init(i, KindDestroyAddr, loc, []Value{addr}, nil)
	return i
}

// IndexAddr offsets a typed address by an integer count of elements.
type IndexAddr struct{ instBase }

func NewIndexAddr(loc Location, base, index Value, ty Type) *IndexAddr {
	i := &IndexAddr{}
	i.init(i, KindIndexAddr, loc, []Value{base, index}, []Type{ty})
	return i
}

// Base returns the base address operand.
func (i *IndexAddr) Base() *Operand { return i.ops[0] }

// Index returns the element count operand.
func (i *IndexAddr) Index() *Operand { return i.ops[1] }

// IndexRawPointer offsets a raw pointer by a byte count.
type IndexRawPointer struct{ instBase }

func NewIndexRawPointer(loc Location, base, index Value, ty Type) *IndexRawPointer {
	i := &IndexRawPointer{}
	i.init(i, KindIndexRawPointer, loc, []Value{base, index}, []Type{ty})
	return i
}

// Base returns the base pointer operand.
func (i *IndexRawPointer) Base() *Operand { return i.ops[0] }

// Index returns the byte count operand.
func (i *IndexRawPointer) Index() *Operand { return i.ops[1] }

// --- Aggregates ---

// Struct constructs a struct object from per-field operands in declaration
// order.
type Struct struct{ instBase }

func NewStruct(loc Location, ty Type, elems []Value) *Struct {
	i := &Struct{}
	i.init(i, KindStruct, loc, elems, []Type{ty})
	return i
}

// Tuple constructs a tuple object from positional operands.
type Tuple struct{ instBase }

func NewTuple(loc Location, ty Type, elems []Value) *Tuple {
	i := &Tuple{}
	i.init(i, KindTuple, loc, elems, []Type{ty})
	return i
}

// TupleExtract projects one element of a tuple object.
type TupleExtract struct {
	instBase
	Field int
}

func NewTupleExtract(loc Location, operand Value, field int, ty Type) *TupleExtract {
	i := &TupleExtract{Field: field}
	i.init(i, KindTupleExtract, loc, []Value{operand}, []Type{ty})
	return i
}

// TupleElementAddr projects the address of one element of a tuple in memory.
type TupleElementAddr struct {
	instBase
	Field int
}

func NewTupleElementAddr(loc Location, operand Value, field int, ty Type) *TupleElementAddr {
	i := &TupleElementAddr{Field: field}
	i.init(i, KindTupleElementAddr, loc, []Value{operand}, []Type{ty})
	return i
}

// StructExtract projects one stored field of a struct object.
type StructExtract struct {
	instBase
	Field *Field
}

func NewStructExtract(loc Location, operand Value, field *Field, ty Type) *StructExtract {
	i := &StructExtract{Field: field}
	i.init(i, KindStructExtract, loc, []Value{operand}, []Type{ty})
	return i
}

// StructElementAddr projects the address of one stored field of a struct in
// memory.
type StructElementAddr struct {
	instBase
	Field *Field
}

func NewStructElementAddr(loc Location, operand Value, field *Field, ty Type) *StructElementAddr {
	i := &StructElementAddr{Field: field}
	i.init(i, KindStructElementAddr, loc, []Value{operand}, []Type{ty})
	return i
}

// RefElementAddr projects the address of one stored field of a class
// instance.
type RefElementAddr struct {
	instBase
	Field *Field
}

func NewRefElementAddr(loc Location, operand Value, field *Field, ty Type) *RefElementAddr {
	i := &RefElementAddr{Field: field}
	i.init(i, KindRefElementAddr, loc, []Value{operand}, []Type{ty})
	return i
}

// --- Sum types ---

// Enum constructs a sum-type object for one case, with a payload operand
// exactly when the case declares one.
type Enum struct {
	instBase
	Case *EnumCase
}

func NewEnum(loc Location, ty Type, c *EnumCase, payload Value) *Enum {
	i := &Enum{Case: c}
	var ops []Value
	if payload != nil {
		ops = []Value{payload}
	}
	i.init(i, KindEnum, loc, ops, []Type{ty})
	return i
}

// HasOperand reports whether a payload operand was supplied.
func (i *Enum) HasOperand() bool { return len(i.ops) == 1 }

// InitEnumDataAddr projects the payload address of a case about to be
// initialized in memory.
type InitEnumDataAddr struct {
	instBase
	Case *EnumCase
}

func NewInitEnumDataAddr(loc Location, operand Value, c *EnumCase, ty Type) *InitEnumDataAddr {
	i := &InitEnumDataAddr{Case: c}
	i.init(i, KindInitEnumDataAddr, loc, []Value{operand}, []Type{ty})
	return i
}

// UncheckedEnumData projects a case payload out of a sum object without
// checking the tag.
type UncheckedEnumData struct {
	instBase
	Case *EnumCase
}

func NewUncheckedEnumData(loc Location, operand Value, c *EnumCase, ty Type) *UncheckedEnumData {
	i := &UncheckedEnumData{Case: c}
	i.init(i, KindUncheckedEnumData, loc, []Value{operand}, []Type{ty})
	return i
}

// UncheckedTakeEnumDataAddr projects a case payload address out of a sum in
// memory without checking the tag.
type UncheckedTakeEnumDataAddr struct {
	instBase
	Case *EnumCase
}

func NewUncheckedTakeEnumDataAddr(loc Location, operand Value, c *EnumCase, ty Type) *UncheckedTakeEnumDataAddr {
	i := &UncheckedTakeEnumDataAddr{Case: c}
	i.init(i, KindUncheckedTakeEnumDataAddr, loc, []Value{operand}, []Type{ty})
	return i
}

// InjectEnumAddr writes a case tag into a sum in memory.
type InjectEnumAddr struct {
	instBase
	Case *EnumCase
}

func NewInjectEnumAddr(loc Location, operand Value, c *EnumCase) *InjectEnumAddr {
	i := &InjectEnumAddr{Case: c}
	i.init(i, KindInjectEnumAddr, loc, []Value{operand}, nil)
	return i
}

// --- Method lookup ---

// WitnessMethod looks up a protocol requirement's implementation through a
// conformance, yielding a polymorphic thin function over the receiver.
type WitnessMethod struct {
	instBase
	LookupType Type
	Member     MethodRef
	Conf       *Conformance
}

func NewWitnessMethod(loc Location, lookup Type, member MethodRef, conf *Conformance, ty Type) *WitnessMethod {
	i := &WitnessMethod{LookupType: lookup, Member: member, Conf: conf}
	i.init(i, KindWitnessMethod, loc, nil, []Type{ty})
	return i
}

// ClassMethod looks up a class member through the dispatch table.
type ClassMethod struct {
	instBase
	Member MethodRef
}

func NewClassMethod(loc Location, operand Value, member MethodRef, ty Type) *ClassMethod {
	i := &ClassMethod{Member: member}
	i.init(i, KindClassMethod, loc, []Value{operand}, []Type{ty})
	return i
}

// SuperMethod looks up a superclass member through the dispatch table.
type SuperMethod struct {
	instBase
	Member MethodRef
}

func NewSuperMethod(loc Location, operand Value, member MethodRef, ty Type) *SuperMethod {
	i := &SuperMethod{Member: member}
	i.init(i, KindSuperMethod, loc, []Value{operand}, []Type{ty})
	return i
}

// --- Existentials ---

// ProjectExistential projects the Self-typed value address out of a
// non-class existential address.
type ProjectExistential struct{ instBase }

func NewProjectExistential(loc Location, operand Value, ty Type) *ProjectExistential {
	i := &ProjectExistential{}
	i.init(i, KindProjectExistential, loc, []Value{operand}, []Type{ty})
	return i
}

// ProjectExistentialRef projects the Self-typed instance out of a class
// existential object.
type ProjectExistentialRef struct{ instBase }

func NewProjectExistentialRef(loc Location, operand Value, ty Type) *ProjectExistentialRef {
	i := &ProjectExistentialRef{}
	i.init(i, KindProjectExistentialRef, loc, []Value{operand}, []Type{ty})
	return i
}

// OpenExistential opens a non-class existential address, binding a fresh
// opened placeholder for the erased type.
type OpenExistential struct{ instBase }

func NewOpenExistential(loc Location, operand Value, ty Type) *OpenExistential {
	i := &OpenExistential{}
	i.init(i, KindOpenExistential, loc, []Value{operand}, []Type{ty})
	return i
}

// OpenExistentialRef opens a class existential object.
type OpenExistentialRef struct{ instBase }

func NewOpenExistentialRef(loc Location, operand Value, ty Type) *OpenExistentialRef {
	i := &OpenExistentialRef{}
	i.init(i, KindOpenExistentialRef, loc, []Value{operand}, []Type{ty})
	return i
}

// InitExistential claims a non-class existential address for a concrete
// type, yielding the address of its payload.
type InitExistential struct {
	instBase
	ConcreteType Type
	Conformances []*Conformance
}

func NewInitExistential(loc Location, operand Value, concrete Type, confs []*Conformance, ty Type) *InitExistential {
	i := &InitExistential{ConcreteType: concrete, Conformances: confs}
	i.init(i, KindInitExistential, loc, []Value{operand}, []Type{ty})
	return i
}

// InitExistentialRef erases a class instance into a class existential.
type InitExistentialRef struct {
	instBase
	Conformances []*Conformance
}

func NewInitExistentialRef(loc Location, operand Value, confs []*Conformance, ty Type) *InitExistentialRef {
	i := &InitExistentialRef{Conformances: confs}
	i.init(i, KindInitExistentialRef, loc, []Value{operand}, []Type{ty})
	return i
}

// UpcastExistential copies an existential in memory to a wider existential.
type UpcastExistential struct {
	instBase
	IsTake bool
}

func NewUpcastExistential(loc Location, src, dest Value, take bool) *UpcastExistential {
	i := &UpcastExistential{IsTake: take}
	i.init(i, KindUpcastExistential, loc, []Value{src, dest}, nil)
	return i
}

// Src returns the source existential operand.
func (i *UpcastExistential) Src() *Operand { return i.ops[0] }

// Dest returns the destination existential operand.
func (i *UpcastExistential) Dest() *Operand { return i.ops[1] }

// UpcastExistentialRef widens a class existential object.
type UpcastExistentialRef struct{ instBase }

func NewUpcastExistentialRef(loc Location, operand Value, ty Type) *UpcastExistentialRef {
	i := &UpcastExistentialRef{}
	i.init(i, KindUpcastExistentialRef, loc, []Value{operand}, []Type{ty})
	return i
}

// DeinitExistential destroys an existential container whose payload was
// already taken.
type DeinitExistential struct{ instBase }

func NewDeinitExistential(loc Location, operand Value) *DeinitExistential {
	i := &DeinitExistential{}
	i.init(i, KindDeinitExistential, loc, []Value{operand}, nil)
	return i
}

// --- Casts and conversions ---

// UnconditionalCheckedCast performs a runtime-checked cast that traps on
// failure.
type UnconditionalCheckedCast struct {
	instBase
	CastKind CastKind
}

func NewUnconditionalCheckedCast(loc Location, kind CastKind, operand Value, ty Type) *UnconditionalCheckedCast {
	i := &UnconditionalCheckedCast{CastKind: kind}
	i.init(i, KindUnconditionalCheckedCast, loc, []Value{operand}, []Type{ty})
	return i
}

// Upcast converts a class instance to a superclass type.
type Upcast struct{ instBase }

func NewUpcast(loc Location, operand Value, ty Type) *Upcast {
	i := &Upcast{}
	i.init(i, KindUpcast, loc, []Value{operand}, []Type{ty})
	return i
}

// UncheckedRefCast reinterprets one heap reference as another.
type UncheckedRefCast struct{ instBase }

func NewUncheckedRefCast(loc Location, operand Value, ty Type) *UncheckedRefCast {
	i := &UncheckedRefCast{}
	i.init(i, KindUncheckedRefCast, loc, []Value{operand}, []Type{ty})
	return i
}

// UncheckedAddrCast reinterprets one address as another.
type UncheckedAddrCast struct{ instBase }

func NewUncheckedAddrCast(loc Location, operand Value, ty Type) *UncheckedAddrCast {
	i := &UncheckedAddrCast{}
	i.init(i, KindUncheckedAddrCast, loc, []Value{operand}, []Type{ty})
	return i
}

// AddressToPointer erases a typed address to a raw pointer.
type AddressToPointer struct{ instBase }

func NewAddressToPointer(loc Location, operand Value, ty Type) *AddressToPointer {
	i := &AddressToPointer{}
	i.init(i, KindAddressToPointer, loc, []Value{operand}, []Type{ty})
	return i
}

// RefToRawPointer erases a heap reference to a raw pointer.
type RefToRawPointer struct{ instBase }

func NewRefToRawPointer(loc Location, operand Value, ty Type) *RefToRawPointer {
	i := &RefToRawPointer{}
	i.init(i, KindRefToRawPointer, loc, []Value{operand}, []Type{ty})
	return i
}

// RawPointerToRef reinterprets a raw pointer as a heap reference.
type RawPointerToRef struct{ instBase }

func NewRawPointerToRef(loc Location, operand Value, ty Type) *RawPointerToRef {
	i := &RawPointerToRef{}
	i.init(i, KindRawPointerToRef, loc, []Value{operand}, []Type{ty})
	return i
}

// ConvertFunction converts between trivially compatible function types.
type ConvertFunction struct{ instBase }

func NewConvertFunction(loc Location, operand Value, ty Type) *ConvertFunction {
	i := &ConvertFunction{}
	i.init(i, KindConvertFunction, loc, []Value{operand}, []Type{ty})
	return i
}

// ThinToThickFunction wraps a thin function in an empty context.
type ThinToThickFunction struct{ instBase }

func NewThinToThickFunction(loc Location, operand Value, ty Type) *ThinToThickFunction {
	i := &ThinToThickFunction{}
	i.init(i, KindThinToThickFunction, loc, []Value{operand}, []Type{ty})
	return i
}

// --- Reference counting ---

func newUnary(self Instruction, kind Kind, loc Location, operand Value) {
	self.base().init(self, kind, loc, []Value{operand}, nil)
}

// StrongRetain increments a reference count.
type StrongRetain struct{ instBase }

func NewStrongRetain(loc Location, operand Value) *StrongRetain {
	i := &StrongRetain{}
	newUnary(i, KindStrongRetain, loc, operand)
	return i
}

// StrongRelease decrements a reference count.
type StrongRelease struct{ instBase }

func NewStrongRelease(loc Location, operand Value) *StrongRelease {
	i := &StrongRelease{}
	newUnary(i, KindStrongRelease, loc, operand)
	return i
}

// RetainValue retains every reference inside an object value.
type RetainValue struct{ instBase }

func NewRetainValue(loc Location, operand Value) *RetainValue {
	i := &RetainValue{}
	newUnary(i, KindRetainValue, loc, operand)
	return i
}

// ReleaseValue releases every reference inside an object value.
type ReleaseValue struct{ instBase }

func NewReleaseValue(loc Location, operand Value) *ReleaseValue {
	i := &ReleaseValue{}
	newUnary(i, KindReleaseValue, loc, operand)
	return i
}

// AutoreleaseValue hands a reference to the autorelease pool.
type AutoreleaseValue struct{ instBase }

func NewAutoreleaseValue(loc Location, operand Value) *AutoreleaseValue {
	i := &AutoreleaseValue{}
	newUnary(i, KindAutoreleaseValue, loc, operand)
	return i
}

// StrongRetainUnowned retains the strong reference behind unowned storage.
type StrongRetainUnowned struct{ instBase }

func NewStrongRetainUnowned(loc Location, operand Value) *StrongRetainUnowned {
	i := &StrongRetainUnowned{}
	newUnary(i, KindStrongRetainUnowned, loc, operand)
	return i
}

// UnownedRetain increments an unowned reference count.
type UnownedRetain struct{ instBase }

func NewUnownedRetain(loc Location, operand Value) *UnownedRetain {
	i := &UnownedRetain{}
	newUnary(i, KindUnownedRetain, loc, operand)
	return i
}

// UnownedRelease decrements an unowned reference count.
type UnownedRelease struct{ instBase }

func NewUnownedRelease(loc Location, operand Value) *UnownedRelease {
	i := &UnownedRelease{}
	newUnary(i, KindUnownedRelease, loc, operand)
	return i
}

// RefToUnowned wraps a reference in unowned storage.
type RefToUnowned struct{ instBase }

func NewRefToUnowned(loc Location, operand Value, ty Type) *RefToUnowned {
	i := &RefToUnowned{}
	i.init(i, KindRefToUnowned, loc, []Value{operand}, []Type{ty})
	return i
}

// UnownedToRef recovers the reference behind unowned storage.
type UnownedToRef struct{ instBase }

func NewUnownedToRef(loc Location, operand Value, ty Type) *UnownedToRef {
	i := &UnownedToRef{}
	i.init(i, KindUnownedToRef, loc, []Value{operand}, []Type{ty})
	return i
}

// RefToUnmanaged wraps a reference in unmanaged storage.
type RefToUnmanaged struct{ instBase }

func NewRefToUnmanaged(loc Location, operand Value, ty Type) *RefToUnmanaged {
	i := &RefToUnmanaged{}
	i.init(i, KindRefToUnmanaged, loc, []Value{operand}, []Type{ty})
	return i
}

// UnmanagedToRef recovers the reference behind unmanaged storage.
type UnmanagedToRef struct{ instBase }

func NewUnmanagedToRef(loc Location, operand Value, ty Type) *UnmanagedToRef {
	i := &UnmanagedToRef{}
	i.init(i, KindUnmanagedToRef, loc, []Value{operand}, []Type{ty})
	return i
}

// --- Runtime checks ---

// CondFail traps when its builtin-integer condition is nonzero.
type CondFail struct{ instBase }

func NewCondFail(loc Location, operand Value) *CondFail {
	i := &CondFail{}
	newUnary(i, KindCondFail, loc, operand)
	return i
}

// IsNonnull tests a class reference against null.
type IsNonnull struct{ instBase }

func NewIsNonnull(loc Location, operand Value, ty Type) *IsNonnull {
	i := &IsNonnull{}
	i.init(i, KindIsNonnull, loc, []Value{operand}, []Type{ty})
	return i
}

// --- Terminators ---

// Unreachable marks a point control flow must never reach.
type Unreachable struct{ instBase }

func NewUnreachable(loc Location) *Unreachable {
	i := &Unreachable{}
	i.init(i, KindUnreachable, loc, nil, nil)
	return i
}

func (i *Unreachable) Successors() []*BasicBlock { return nil }

// Return ends the function, yielding its operand to the caller.
type Return struct{ instBase }

func NewReturn(loc Location, operand Value) *Return {
	i := &Return{}
	newUnary(i, KindReturn, loc, operand)
	return i
}

func (i *Return) Successors() []*BasicBlock { return nil }

// AutoreleaseReturn returns an autoreleased reference to a foreign caller.
type AutoreleaseReturn struct{ instBase }

func NewAutoreleaseReturn(loc Location, operand Value) *AutoreleaseReturn {
	i := &AutoreleaseReturn{}
	newUnary(i, KindAutoreleaseReturn, loc, operand)
	return i
}

func (i *AutoreleaseReturn) Successors() []*BasicBlock { return nil }

// Branch jumps unconditionally, binding argument values to the destination's
// block parameters.
type Branch struct {
	instBase
	Dest *BasicBlock
}

func NewBranch(loc Location, dest *BasicBlock, args ...Value) *Branch {
	i := &Branch{Dest: dest}
	i.init(i, KindBranch, loc, args, nil)
	return i
}

// Args returns the destination argument operands.
func (i *Branch) Args() []*Operand { return i.ops }

func (i *Branch) Successors() []*BasicBlock { return []*BasicBlock{i.Dest} }

// CondBranch jumps to one of two destinations on a builtin Int1 condition.
type CondBranch struct {
	instBase
	TrueDest  *BasicBlock
	FalseDest *BasicBlock

	numTrueArgs int
}

func NewCondBranch(loc Location, cond Value, trueDest *BasicBlock, trueArgs []Value, falseDest *BasicBlock, falseArgs []Value) *CondBranch {
	i := &CondBranch{TrueDest: trueDest, FalseDest: falseDest, numTrueArgs: len(trueArgs)}
	ops := append([]Value{cond}, trueArgs...)
	ops = append(ops, falseArgs...)
	i.init(i, KindCondBranch, loc, ops, nil)
	return i
}

// Cond returns the condition operand.
func (i *CondBranch) Cond() *Operand { return i.ops[0] }

// TrueArgs returns the arguments bound by the true edge.
func (i *CondBranch) TrueArgs() []*Operand { return i.ops[1 : 1+i.numTrueArgs] }

// FalseArgs returns the arguments bound by the false edge.
func (i *CondBranch) FalseArgs() []*Operand { return i.ops[1+i.numTrueArgs:] }

func (i *CondBranch) Successors() []*BasicBlock { return []*BasicBlock{i.TrueDest, i.FalseDest} }

// SwitchIntCase routes one integer value to a destination.
type SwitchIntCase struct {
	Value int64
	Dest  *BasicBlock
}

// SwitchInt dispatches over a builtin integer.
type SwitchInt struct {
	instBase
	Cases   []SwitchIntCase
	Default *BasicBlock
}

func NewSwitchInt(loc Location, operand Value, cases []SwitchIntCase, def *BasicBlock) *SwitchInt {
	i := &SwitchInt{Cases: cases, Default: def}
	newUnary(i, KindSwitchInt, loc, operand)
	return i
}

// HasDefault reports whether the dispatch carries a default destination.
func (i *SwitchInt) HasDefault() bool { return i.Default != nil }

func (i *SwitchInt) Successors() []*BasicBlock {
	out := make([]*BasicBlock, 0, len(i.Cases)+1)
	for _, c := range i.Cases {
		out = append(out, c.Dest)
	}
	if i.Default != nil {
		out = append(out, i.Default)
	}
	return out
}

// SwitchEnumCase routes one sum-type variant to a destination.
type SwitchEnumCase struct {
	Case *EnumCase
	Dest *BasicBlock
}

// SwitchEnum dispatches over a sum-typed object's tag.
type SwitchEnum struct {
	instBase
	Cases   []SwitchEnumCase
	Default *BasicBlock
}

func NewSwitchEnum(loc Location, operand Value, cases []SwitchEnumCase, def *BasicBlock) *SwitchEnum {
	i := &SwitchEnum{Cases: cases, Default: def}
	newUnary(i, KindSwitchEnum, loc, operand)
	return i
}

// HasDefault reports whether the dispatch carries a default destination.
func (i *SwitchEnum) HasDefault() bool { return i.Default != nil }

func (i *SwitchEnum) Successors() []*BasicBlock {
	out := make([]*BasicBlock, 0, len(i.Cases)+1)
	for _, c := range i.Cases {
		out = append(out, c.Dest)
	}
	if i.Default != nil {
		out = append(out, i.Default)
	}
	return out
}

// SwitchEnumAddr dispatches over the tag of a sum type in memory.
type SwitchEnumAddr struct {
	instBase
	Cases   []SwitchEnumCase
	Default *BasicBlock
}

func NewSwitchEnumAddr(loc Location, operand Value, cases []SwitchEnumCase, def *BasicBlock) *SwitchEnumAddr {
	i := &SwitchEnumAddr{Cases: cases, Default: def}
	newUnary(i, KindSwitchEnumAddr, loc, operand)
	return i
}

// HasDefault reports whether the dispatch carries a default destination.
func (i *SwitchEnumAddr) HasDefault() bool { return i.Default != nil }

func (i *SwitchEnumAddr) Successors() []*BasicBlock {
	out := make([]*BasicBlock, 0, len(i.Cases)+1)
	for _, c := range i.Cases {
		out = append(out, c.Dest)
	}
	if i.Default != nil {
		out = append(out, i.Default)
	}
	return out
}

// CheckedCastBranch branches on a runtime-checked cast; the success
// destination binds the cast value.
type CheckedCastBranch struct {
	instBase
	CastKind CastKind
	CastType Type
	Success  *BasicBlock
	Failure  *BasicBlock
}

func NewCheckedCastBranch(loc Location, kind CastKind, operand Value, castTy Type, success, failure *BasicBlock) *CheckedCastBranch {
	i := &CheckedCastBranch{CastKind: kind, CastType: castTy, Success: success, Failure: failure}
	newUnary(i, KindCheckedCastBranch, loc, operand)
	return i
}

func (i *CheckedCastBranch) Successors() []*BasicBlock {
	return []*BasicBlock{i.Success, i.Failure}
}
