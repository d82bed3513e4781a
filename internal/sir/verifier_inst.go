package sir

// Kind-specific semantic checks. Structural checks have already run when
// these are reached, so operands are non-nil and dominance holds.

func opType(o *Operand) Type { return o.Value().Type() }

func (v *verifier) checkInstruction(inst Instruction) {
	switch i := inst.(type) {
	case *AllocStack:
		v.requireAddress(i.result().Type(), "alloc_stack result must be an address")
	case *AllocRef:
		v.requireReference(i.result().Type(),
			"alloc_ref must return a reference-counted object type")
	case *AllocBox:
		ownerTy := i.Owner().Type()
		v.require(ownerTy.IsObject() && isNativeObject(ownerTy.Desc),
			"alloc_box owner must be a Builtin.NativeObject")
		v.requireAddress(i.Addr().Type(), "alloc_box storage must be an address")
	case *DeallocStack:
		v.require(definingAllocStack(i.Operands()[0].Value()) != nil,
			"operand of dealloc_stack must be an alloc_stack")
	case *DeallocRef:
		v.requireReference(opType(i.Operands()[0]),
			"operand of dealloc_ref must be a heap reference")
	case *DeallocBox:
		ty := opType(i.Operands()[0])
		v.require(ty.IsObject() && isNativeObject(ty.Desc),
			"operand of dealloc_box must be a Builtin.NativeObject")

	case *Apply:
		v.checkApply(i)
	case *PartialApply:
		v.checkPartialApply(i)
	case *FunctionRef:
		v.checkFunctionRef(i)
	case *GlobalAddr:
		v.checkGlobalAddr(i)

	case *IntegerLiteral:
		ty := i.result().Type()
		_, isInt := ty.Desc.(*BuiltinIntType)
		v.require(ty.IsObject() && isInt, "integer_literal must have a builtin integer type")
	case *FloatLiteral:
		ty := i.result().Type()
		_, isFloat := ty.Desc.(*BuiltinFloatType)
		v.require(ty.IsObject() && isFloat, "float_literal must have a builtin float type")
	case *StringLiteral:
		ty := i.result().Type()
		_, isPtr := ty.Desc.(*BuiltinRawPointerType)
		v.require(ty.IsObject() && isPtr, "string_literal must return a Builtin.RawPointer")

	case *Load:
		addrTy := opType(i.Addr())
		v.require(addrTy.IsAddress(), "Load operand must be an address")
		v.requireSameType(i.result().Type(), addrTy.Object(),
			"Load operand type and result type mismatch")
	case *Store:
		v.checkStoreLike(opType(i.Src()), opType(i.Dest()), "store")
	case *Assign:
		v.checkStoreLike(opType(i.Src()), opType(i.Dest()), "assign")
	case *MarkUninitialized:
		ty := opType(i.Operands()[0])
		v.require(ty.IsAddress() || ty.HasReferenceSemantics(),
			"mark_uninitialized operand must be an address or a class reference")
		v.requireSameType(i.result().Type(), ty,
			"mark_uninitialized result must match its operand")
	case *CopyAddr:
		src, dest := opType(i.Src()), opType(i.Dest())
		v.requireAddress(src, "copy_addr source must be an address")
		v.requireAddress(dest, "copy_addr destination must be an address")
		v.requireSameType(src, dest, "copy_addr operand types do not match")
	case *DestroyAddr:
		v.requireAddress(opType(i.Operands()[0]),
			"operand of destroy_addr must be an address")
	case *IndexAddr:
		base := opType(i.Base())
		v.requireAddress(base, "index_addr base must be an address")
		v.require(isBuiltinInt(opType(i.Index())),
			"index_addr index must be a builtin integer")
		v.requireSameType(i.result().Type(), base,
			"index_addr result must match its base type")
	case *IndexRawPointer:
		base := opType(i.Base())
		_, isPtr := base.Desc.(*BuiltinRawPointerType)
		v.require(base.IsObject() && isPtr,
			"index_raw_pointer base must be a Builtin.RawPointer")
		v.require(isBuiltinInt(opType(i.Index())),
			"index_raw_pointer index must be a builtin integer")
		_, resIsPtr := i.result().Type().Desc.(*BuiltinRawPointerType)
		v.require(i.result().Type().IsObject() && resIsPtr,
			"index_raw_pointer must return a Builtin.RawPointer")

	case *Struct:
		v.checkStruct(i)
	case *Tuple:
		v.checkTuple(i)
	case *TupleExtract:
		ty := opType(i.Operands()[0])
		v.require(ty.IsObject() && ty.Desc != nil && isTuple(ty.Desc),
			"tuple_extract operand must be a tuple object")
		elem := TupleElemType(ty, i.Field)
		v.require(!elem.IsNull(), "tuple_extract index out of bounds")
		v.requireSameType(i.result().Type(), elem,
			"type of tuple_extract does not match the element type")
	case *TupleElementAddr:
		ty := opType(i.Operands()[0])
		v.require(ty.IsAddress() && isTuple(ty.Desc),
			"tuple_element_addr operand must be a tuple address")
		elem := TupleElemType(ty, i.Field)
		v.require(!elem.IsNull(), "tuple_element_addr index out of bounds")
		v.requireSameType(i.result().Type(), elem.Address(),
			"type of tuple_element_addr does not match the element type")
	case *StructExtract:
		ty := opType(i.Operands()[0])
		sd := ty.StructDesc()
		v.require(ty.IsObject() && sd != nil,
			"struct_extract operand must be a struct object")
		v.require(i.Field != nil && sd.Decl.HasField(i.Field),
			"struct_extract field is not a member of the struct")
		v.requireSameType(i.result().Type(), FieldType(ty, i.Field),
			"type of struct_extract does not match the field type")
	case *StructElementAddr:
		ty := opType(i.Operands()[0])
		sd := ty.StructDesc()
		v.require(ty.IsAddress() && sd != nil,
			"struct_element_addr operand must be a struct address")
		v.require(i.Field != nil && sd.Decl.HasField(i.Field),
			"struct_element_addr field is not a member of the struct")
		v.requireSameType(i.result().Type(), FieldType(ty, i.Field).Address(),
			"type of struct_element_addr does not match the field type")
	case *RefElementAddr:
		ty := opType(i.Operands()[0])
		cd := ty.ClassDesc()
		v.require(ty.IsObject() && cd != nil,
			"ref_element_addr operand must be a class instance")
		v.require(i.Field != nil && classHasField(cd.Decl, i.Field),
			"ref_element_addr field is not a member of the class")
		v.requireSameType(i.result().Type(), FieldType(ty, i.Field).Address(),
			"type of ref_element_addr does not match the field type")

	case *Enum:
		v.checkEnum(i)
	case *InitEnumDataAddr:
		ty := v.requireEnumCaseAddr(opType(i.Operands()[0]), i.Case, "init_enum_data_addr")
		v.requireSameType(i.result().Type(), CaseType(ty, i.Case).Address(),
			"init_enum_data_addr result does not match the case payload type")
	case *UncheckedEnumData:
		ty := opType(i.Operands()[0])
		v.require(ty.IsObject() && ty.EnumDesc() != nil,
			"unchecked_enum_data operand must be an enum object")
		v.requireCaseOf(ty, i.Case, "unchecked_enum_data")
		v.require(i.Case.HasPayload(), "unchecked_enum_data case must have a payload")
		v.requireSameType(i.result().Type(), CaseType(ty, i.Case),
			"unchecked_enum_data result does not match the case payload type")
	case *UncheckedTakeEnumDataAddr:
		ty := v.requireEnumCaseAddr(opType(i.Operands()[0]), i.Case, "unchecked_take_enum_data_addr")
		v.requireSameType(i.result().Type(), CaseType(ty, i.Case).Address(),
			"unchecked_take_enum_data_addr result does not match the case payload type")
	case *InjectEnumAddr:
		ty := opType(i.Operands()[0])
		v.require(ty.IsAddress() && ty.EnumDesc() != nil,
			"inject_enum_addr operand must be an enum address")
		v.requireCaseOf(ty, i.Case, "inject_enum_addr")

	case *WitnessMethod:
		v.checkWitnessMethod(i)
	case *ClassMethod:
		v.checkClassMethod(i)
	case *SuperMethod:
		v.checkSuperMethod(i)

	case *ProjectExistential:
		ext := v.requireValueExistentialAddr(opType(i.Operands()[0]), "project_existential")
		v.checkOpenedResult(i.result().Type(), ext, AddressCategory,
			"project_existential result must be the address of a placeholder opened from its operand")
	case *ProjectExistentialRef:
		ext := v.requireClassExistentialObject(opType(i.Operands()[0]), "project_existential_ref")
		v.checkOpenedResult(i.result().Type(), ext, ObjectCategory,
			"project_existential_ref result must be a placeholder opened from its operand")
	case *OpenExistential:
		ext := v.requireValueExistentialAddr(opType(i.Operands()[0]), "open_existential")
		v.checkOpenedResult(i.result().Type(), ext, AddressCategory,
			"open_existential result must be the address of a placeholder opened from its operand")
	case *OpenExistentialRef:
		ext := v.requireClassExistentialObject(opType(i.Operands()[0]), "open_existential_ref")
		v.checkOpenedResult(i.result().Type(), ext, ObjectCategory,
			"open_existential_ref result must be a placeholder opened from its operand")
	case *InitExistential:
		v.checkInitExistential(i)
	case *InitExistentialRef:
		v.checkInitExistentialRef(i)
	case *UpcastExistential:
		src, dest := opType(i.Src()), opType(i.Dest())
		srcExt := v.requireValueExistentialAddr(src, "upcast_existential source")
		destExt := v.requireValueExistentialAddr(dest, "upcast_existential destination")
		v.requireImpliedProtocols(srcExt, destExt, "upcast_existential")
	case *UpcastExistentialRef:
		srcExt := v.requireClassExistentialObject(opType(i.Operands()[0]), "upcast_existential_ref")
		destExt := v.requireClassExistentialObject(i.result().Type(), "upcast_existential_ref result")
		v.requireImpliedProtocols(srcExt, destExt, "upcast_existential_ref")
	case *DeinitExistential:
		v.requireValueExistentialAddr(opType(i.Operands()[0]), "deinit_existential")

	case *UnconditionalCheckedCast:
		v.checkCheckedCast(i.CastKind, opType(i.Operands()[0]), i.result().Type())
	case *Upcast:
		v.checkUpcast(i)
	case *UncheckedRefCast:
		v.requireReference(opType(i.Operands()[0]),
			"unchecked_ref_cast operand must be a heap reference")
		v.requireReference(i.result().Type(),
			"unchecked_ref_cast must return a heap reference")
	case *UncheckedAddrCast:
		v.requireAddress(opType(i.Operands()[0]),
			"unchecked_addr_cast operand must be an address")
		v.requireAddress(i.result().Type(),
			"unchecked_addr_cast must return an address")
	case *AddressToPointer:
		v.requireAddress(opType(i.Operands()[0]),
			"address_to_pointer operand must be an address")
		_, isPtr := i.result().Type().Desc.(*BuiltinRawPointerType)
		v.require(i.result().Type().IsObject() && isPtr,
			"address_to_pointer must return a Builtin.RawPointer")
	case *RefToRawPointer:
		v.requireReference(opType(i.Operands()[0]),
			"ref_to_raw_pointer operand must be a heap reference")
		_, isPtr := i.result().Type().Desc.(*BuiltinRawPointerType)
		v.require(i.result().Type().IsObject() && isPtr,
			"ref_to_raw_pointer must return a Builtin.RawPointer")
	case *RawPointerToRef:
		ty := opType(i.Operands()[0])
		_, isPtr := ty.Desc.(*BuiltinRawPointerType)
		v.require(ty.IsObject() && isPtr,
			"raw_pointer_to_ref operand must be a Builtin.RawPointer")
		v.requireReference(i.result().Type(),
			"raw_pointer_to_ref must return a heap reference")
	case *ConvertFunction:
		opFt := v.requireObjectFunction(opType(i.Operands()[0]),
			"convert_function operand must be a function value")
		resFt := v.requireObjectFunction(i.result().Type(),
			"convert_function must return a function value")
		v.require(opFt.Rep == resFt.Rep,
			"convert_function cannot change the function representation")
		v.require(len(opFt.Params) == len(resFt.Params),
			"convert_function cannot change the parameter count")
	case *ThinToThickFunction:
		opFt := v.requireObjectFunction(opType(i.Operands()[0]),
			"thin_to_thick_function operand must be a function value")
		resFt := v.requireObjectFunction(i.result().Type(),
			"thin_to_thick_function must return a function value")
		v.require(opFt.Rep == RepThin, "thin_to_thick_function operand must be thin")
		v.require(resFt.Rep == RepThick, "thin_to_thick_function result must be thick")
		thickened := *opFt
		thickened.Rep = RepThick
		v.require(sameFunctionDesc(&thickened, resFt),
			"thin_to_thick_function must preserve the signature")

	case *StrongRetain:
		v.requireReference(opType(i.Operands()[0]),
			"operand of strong_retain must be a heap reference")
	case *StrongRelease:
		v.requireReference(opType(i.Operands()[0]),
			"operand of strong_release must be a heap reference")
	case *RetainValue:
		v.requireObject(opType(i.Operands()[0]),
			"operand of retain_value must be an object")
	case *ReleaseValue:
		v.requireObject(opType(i.Operands()[0]),
			"operand of release_value must be an object")
	case *AutoreleaseValue:
		v.requireReference(opType(i.Operands()[0]),
			"operand of autorelease_value must be a heap reference")
	case *StrongRetainUnowned:
		v.requireUnowned(opType(i.Operands()[0]), "strong_retain_unowned")
	case *UnownedRetain:
		v.requireUnowned(opType(i.Operands()[0]), "unowned_retain")
	case *UnownedRelease:
		v.requireUnowned(opType(i.Operands()[0]), "unowned_release")
	case *RefToUnowned:
		ty := opType(i.Operands()[0])
		v.requireReference(ty, "ref_to_unowned operand must be a heap reference")
		st, ok := i.result().Type().Desc.(*UnownedStorageType)
		v.require(i.result().Type().IsObject() && ok && SameDesc(st.Referent, ty.Desc),
			"ref_to_unowned result must be the unowned storage of its operand type")
	case *UnownedToRef:
		ty := opType(i.Operands()[0])
		st, ok := ty.Desc.(*UnownedStorageType)
		v.require(ty.IsObject() && ok, "unowned_to_ref operand must be an unowned reference")
		res := i.result().Type()
		v.requireReference(res, "unowned_to_ref must return a heap reference")
		v.require(ok && SameDesc(st.Referent, res.Desc),
			"unowned_to_ref result must be the referent of its operand's storage type")
	case *RefToUnmanaged:
		ty := opType(i.Operands()[0])
		v.requireReference(ty, "ref_to_unmanaged operand must be a heap reference")
		st, ok := i.result().Type().Desc.(*UnmanagedStorageType)
		v.require(i.result().Type().IsObject() && ok && SameDesc(st.Referent, ty.Desc),
			"ref_to_unmanaged result must be the unmanaged storage of its operand type")
	case *UnmanagedToRef:
		ty := opType(i.Operands()[0])
		st, ok := ty.Desc.(*UnmanagedStorageType)
		v.require(ty.IsObject() && ok, "unmanaged_to_ref operand must be an unmanaged reference")
		res := i.result().Type()
		v.requireReference(res, "unmanaged_to_ref must return a heap reference")
		v.require(ok && SameDesc(st.Referent, res.Desc),
			"unmanaged_to_ref result must be the referent of its operand's storage type")

	case *CondFail:
		v.require(isBuiltinInt1(opType(i.Operands()[0])),
			"cond_fail operand must be a Builtin.Int1")
	case *IsNonnull:
		ty := opType(i.Operands()[0])
		_, isPtr := ty.Desc.(*BuiltinRawPointerType)
		v.require(ty.IsObject() && (ty.HasReferenceSemantics() || isPtr),
			"is_nonnull operand must be a class reference or raw pointer")
		v.require(isBuiltinInt1(i.result().Type()),
			"is_nonnull result must be a Builtin.Int1")

	case *Unreachable:
		// No constraints beyond being a terminator.
	case *Return:
		want := v.fn.MapIntoContext(v.fn.Type.Result.Type)
		v.requireSameType(opType(i.Operands()[0]), want,
			"return value type does not match return type of function")
	case *AutoreleaseReturn:
		v.require(v.fn.Type.Result.Conv == ResultAutoreleased,
			"autorelease_return in a function whose result is not autoreleased")
		want := v.fn.MapIntoContext(v.fn.Type.Result.Type)
		v.requireSameType(opType(i.Operands()[0]), want,
			"return value type does not match return type of function")
		v.requireReference(opType(i.Operands()[0]),
			"autorelease_return operand must be a heap reference")
	case *Branch:
		v.checkBranchArgs(i.Args(), i.Dest, "branch")
	case *CondBranch:
		v.require(isBuiltinInt1(opType(i.Cond())),
			"condition of conditional branch must have Int1 type")
		v.checkBranchArgs(i.TrueArgs(), i.TrueDest, "true branch")
		v.checkBranchArgs(i.FalseArgs(), i.FalseDest, "false branch")
	case *SwitchInt:
		v.checkSwitchInt(i)
	case *SwitchEnum:
		v.checkSwitchEnumDispatch(opType(i.Operands()[0]), false, i.Cases, i.Default, i.HasDefault(), "switch_enum")
	case *SwitchEnumAddr:
		v.checkSwitchEnumDispatch(opType(i.Operands()[0]), true, i.Cases, i.Default, i.HasDefault(), "switch_enum_addr")
	case *CheckedCastBranch:
		v.checkCheckedCast(i.CastKind, opType(i.Operands()[0]), i.CastType)
		v.require(len(i.Success.Params) == 1 &&
			SameType(i.Success.Params[0].Type(), i.CastType),
			"success destination of checked_cast_br must take one argument of the cast type")
		v.require(len(i.Failure.Params) == 0,
			"failure destination of checked_cast_br must take no arguments")
	}
}

// --- predicates ---

func isNativeObject(d TypeDesc) bool {
	_, ok := d.(*BuiltinNativeObjectType)
	return ok
}

func isTuple(d TypeDesc) bool {
	_, ok := d.(*TupleType)
	return ok
}

func isBuiltinInt(t Type) bool {
	_, ok := t.Desc.(*BuiltinIntType)
	return t.IsObject() && ok
}

func isBuiltinInt1(t Type) bool {
	d, ok := t.Desc.(*BuiltinIntType)
	return t.IsObject() && ok && d.Bits == 1
}

func (v *verifier) requireUnowned(t Type, what string) {
	_, ok := t.Desc.(*UnownedStorageType)
	v.requiref(t.IsObject() && ok, "operand of %s must be an unowned reference", what)
}

// --- application ---

// substitutedCallee checks the substitution list against the callee's
// generic signature and returns the instantiated callee type.
func (v *verifier) substitutedCallee(fnTy *FunctionType, subs []Substitution, what string) *FunctionType {
	if !fnTy.IsPolymorphic() {
		v.requiref(len(subs) == 0, "callee of %s without a generic signature cannot take substitutions", what)
		return fnTy
	}
	v.requiref(len(subs) > 0, "callee of %s is polymorphic and must be applied with substitutions", what)
	m := newSubstMap(subs)
	for _, p := range fnTy.Generic.Params {
		_, ok := m[[2]int{p.Depth, p.Index}]
		v.requiref(ok, "%s substitutions do not cover the callee's generic signature", what)
	}
	for _, s := range subs {
		v.checkLegalType(s.Replacement, "substitution replacement has illegal generic placeholder")
	}
	return ApplySubstitutions(fnTy, subs)
}

func (v *verifier) checkApply(i *Apply) {
	fnTy := v.requireObjectFunction(opType(i.Callee()),
		"callee of apply must have a function type")
	substTy := v.substitutedCallee(fnTy, i.Subs, "apply")
	v.require(SameDesc(substTy, i.SubstCallee),
		"substituted callee type does not match substitutions")

	args := i.Args()
	v.require(len(args) == len(substTy.Params),
		"apply doesn't have right number of arguments for function")
	for j, a := range args {
		v.requireSameType(opType(a), substTy.Params[j],
			"operand of apply doesn't match function input type")
	}
	v.requireSameType(i.result().Type(), substTy.Result.Type,
		"type of apply instruction doesn't match function result type")
}

func (v *verifier) checkPartialApply(i *PartialApply) {
	fnTy := v.requireObjectFunction(opType(i.Callee()),
		"callee of partial_apply must have a function type")
	resTy := v.requireObjectFunction(i.result().Type(),
		"result of partial_apply must have a function type")
	v.require(resTy.Rep == RepThick, "result of partial_apply must be a thick function type")

	substTy := v.substitutedCallee(fnTy, i.Subs, "partial_apply")
	v.require(SameDesc(substTy, i.SubstCallee),
		"substituted callee type does not match substitutions")

	args := i.Args()
	v.require(len(args) <= len(substTy.Params), "partial_apply has too many arguments")
	split := len(substTy.Params) - len(args)
	for j, a := range args {
		v.requireSameType(opType(a), substTy.Params[split+j],
			"operand of partial_apply doesn't match function input type")
	}
	v.require(len(resTy.Params) == split,
		"result of partial_apply does not match the unapplied prefix of the callee")
	for j := 0; j < split; j++ {
		v.requireSameType(resTy.Params[j], substTy.Params[j],
			"result of partial_apply does not match the unapplied prefix of the callee")
	}

	// An unowned-inner-pointer result does not survive the captured self
	// going out of scope, so closures degrade it to plain unowned.
	wantConv := substTy.Result.Conv
	if wantConv == ResultUnownedInnerPointer {
		wantConv = ResultUnowned
	}
	v.require(resTy.Result.Conv == wantConv,
		"result convention of partial_apply does not match the callee")
	v.requireSameType(resTy.Result.Type, substTy.Result.Type,
		"result type of partial_apply does not match the callee result type")
}

func (v *verifier) checkFunctionRef(i *FunctionRef) {
	ft := v.requireObjectFunction(i.result().Type(),
		"function_ref must have a function type")
	v.require(ft.Rep == RepThin, "function_ref must have a thin function type")
	v.require(i.Fn != nil && SameDesc(ft, i.Fn.Type),
		"function_ref type does not match the referenced function")
	if v.fn.Transparent {
		v.require(referenceableFromTransparent(i.Fn.Linkage, i.Fn.External),
			"transparent function may not reference a private or hidden symbol")
	}
}

func (v *verifier) checkGlobalAddr(i *GlobalAddr) {
	v.requireAddress(i.result().Type(), "global_addr must return an address")
	v.require(i.Global != nil && SameDesc(i.result().Type().Desc, i.Global.Type.Desc),
		"global_addr must be the address type of the variable it references")
	if v.fn.Transparent {
		v.require(referenceableFromTransparent(i.Global.Linkage, i.Global.Linkage.IsAvailableExternally()),
			"transparent function may not reference a private or hidden symbol")
	}
}

func referenceableFromTransparent(l Linkage, external bool) bool {
	if external {
		return true
	}
	return linkageRank(l) == 2
}

// --- stores ---

func (v *verifier) checkStoreLike(src, dest Type, what string) {
	v.requiref(src.IsObject(), "%s source must be an object", what)
	v.requiref(dest.IsAddress(), "%s destination must be an address", what)
	if !SameType(dest.Object(), src) {
		v.requiref(false, "%s operand type and destination type mismatch", what)
	}
}

// --- aggregates ---

func (v *verifier) checkStruct(i *Struct) {
	ty := i.result().Type()
	sd := ty.StructDesc()
	v.require(ty.IsObject() && sd != nil, "struct result must be a struct object")
	ops := i.Operands()
	v.require(len(ops) == len(sd.Decl.Fields),
		"struct operand count does not match stored field count")
	for j, op := range ops {
		v.requireSameType(opType(op), FieldType(ty, sd.Decl.Fields[j]),
			"struct operand type does not match field type")
	}
}

func (v *verifier) checkTuple(i *Tuple) {
	ty := i.result().Type()
	td, ok := ty.Desc.(*TupleType)
	v.require(ty.IsObject() && ok, "tuple result must be a tuple object")
	ops := i.Operands()
	v.require(len(ops) == len(td.Elems),
		"tuple operand count does not match tuple type")
	for j, op := range ops {
		v.requireSameType(opType(op), td.Elems[j].Object(),
			"tuple operand type does not match tuple element type")
	}
}

// --- sum types ---

func (v *verifier) requireCaseOf(enumTy Type, c *EnumCase, what string) {
	ed := enumTy.EnumDesc()
	v.requiref(c != nil && ed != nil && c.Parent == ed.Decl,
		"%s case is not a member of the enum type", what)
}

func (v *verifier) requireEnumCaseAddr(ty Type, c *EnumCase, what string) Type {
	v.requiref(ty.IsAddress() && ty.EnumDesc() != nil,
		"%s operand must be an enum address", what)
	v.requireCaseOf(ty, c, what)
	v.requiref(c.HasPayload(), "%s case must have a payload", what)
	return ty
}

func (v *verifier) checkEnum(i *Enum) {
	ty := i.result().Type()
	v.require(ty.IsObject() && ty.EnumDesc() != nil, "enum result must be an enum object")
	v.requireCaseOf(ty, i.Case, "enum")
	if i.Case.HasPayload() {
		v.require(i.HasOperand(), "enum with a payload case must take an operand")
		v.requireSameType(opType(i.Operands()[0]), CaseType(ty, i.Case),
			"enum operand type does not match the case payload type")
	} else {
		v.require(!i.HasOperand(), "enum without a payload case must not take an operand")
	}
}

// --- method lookup ---

func (v *verifier) checkWitnessMethod(i *WitnessMethod) {
	ft := v.requireObjectFunction(i.result().Type(),
		"witness_method must have a function type")
	v.require(ft.IsPolymorphic(), "result of witness_method must be a polymorphic function type")
	v.require(ft.CC == CCWitness, "witness_method must use the witness calling convention")
	v.require(i.Member.Decl != nil && i.Member.Decl.Protocol != nil,
		"witness_method member must be a protocol requirement")

	sig := ft.Generic
	v.require(len(sig.Params) > 0, "witness method signature must declare a Self parameter")
	selfParam := sig.Params[0]
	v.require(selfParam.Depth == 0 && selfParam.Index == 0,
		"method's Self parameter should have zero depth and index")
	v.require(len(sig.Requirements) >= 2,
		"witness method signature must constrain its Self parameter")
	req0, req1 := sig.Requirements[0], sig.Requirements[1]
	v.require(req0.Kind == ReqWitnessMarker && SameDesc(req0.Subject, selfParam),
		"first requirement of witness method must be a witness marker on Self")
	v.require(req1.Kind == ReqConformance && SameDesc(req1.Subject, selfParam),
		"second requirement of witness method must be a conformance on Self")
	v.require(req1.Protocol == i.Member.Decl.Protocol,
		"conformance requirement of witness method must match the member's protocol")
	self := ft.SelfParam()
	v.require(!self.IsNull() && SameDesc(self.Desc, selfParam),
		"self parameter of witness_method must be the Self generic parameter")

	if i.Conf == nil {
		// Placeholder lookups are resolved at apply time; no table exists.
		p := i.LookupType.PlaceholderDesc()
		v.require(p != nil,
			"witness_method without a conformance requires a placeholder lookup type")
		return
	}
	v.require(SameDesc(i.Conf.Concrete.Desc, i.LookupType.Desc),
		"conformance does not match the lookup type of witness_method")
	v.require(i.Conf.Protocol == i.Member.Decl.Protocol,
		"conformance protocol does not match the member's protocol")
	if v.module != nil {
		v.require(v.module.LookupWitnessTable(i.Conf) != nil,
			"failed to find witness table for conformance")
	}
}

func (v *verifier) checkClassMethod(i *ClassMethod) {
	ty := opType(i.Operands()[0])
	cd := ty.ClassDesc()
	v.require(ty.IsObject() && cd != nil, "class_method operand must be a class instance")
	v.require(i.Member.Decl != nil && i.Member.Decl.Class != nil,
		"class_method member must be a class method")
	v.require(!i.Member.Curried, "class_method cannot reference a curried entry point")
	v.require(cd.Decl.IsSubclassOf(i.Member.Decl.Class),
		"class_method member must be a method of the operand's class or an ancestor")
	v.requireObjectFunction(i.result().Type(), "class_method must have a function type")
}

func (v *verifier) checkSuperMethod(i *SuperMethod) {
	ty := opType(i.Operands()[0])
	cd := ty.ClassDesc()
	v.require(ty.IsObject() && cd != nil, "super_method operand must be a class instance")
	v.require(i.Member.Decl != nil && i.Member.Decl.Class != nil,
		"super_method member must be a class method")
	v.require(cd.Decl != i.Member.Decl.Class && cd.Decl.IsSubclassOf(i.Member.Decl.Class),
		"super_method must look up a method of a superclass")
	v.requireObjectFunction(i.result().Type(), "super_method must have a function type")
}

// --- existentials ---

func (v *verifier) requireValueExistentialAddr(t Type, what string) *ExistentialType {
	ext := t.ExistentialDesc()
	v.requiref(t.IsAddress() && ext != nil && !ext.RequiresClass(),
		"%s operand must be a non-class existential address", what)
	return ext
}

func (v *verifier) requireClassExistentialObject(t Type, what string) *ExistentialType {
	ext := t.ExistentialDesc()
	v.requiref(t.IsObject() && ext != nil && ext.RequiresClass(),
		"%s must be a class existential object", what)
	return ext
}

func (v *verifier) checkOpenedResult(res Type, ext *ExistentialType, cat TypeCategory, complaint string) {
	p := res.PlaceholderDesc()
	v.require(res.Cat == cat && p != nil && p.Opened == ext, complaint)
}

func (v *verifier) checkInitExistential(i *InitExistential) {
	ext := v.requireValueExistentialAddr(opType(i.Operands()[0]), "init_existential")
	v.require(i.ConcreteType.ExistentialDesc() == nil,
		"init_existential cannot put an existential container inside an existential container")
	v.require(i.result().Type().IsAddress() &&
		SameDesc(i.result().Type().Desc, i.ConcreteType.Desc),
		"init_existential result must be the address of the concrete type")
	v.checkErasureConformances(ext, i.ConcreteType, i.Conformances, "init_existential")
}

func (v *verifier) checkInitExistentialRef(i *InitExistentialRef) {
	opTy := opType(i.Operands()[0])
	v.requireReference(opTy, "init_existential_ref operand must be a class instance")
	ext := v.requireClassExistentialObject(i.result().Type(), "init_existential_ref result")
	v.checkErasureConformances(ext, opTy, i.Conformances, "init_existential_ref")
}

func (v *verifier) checkErasureConformances(ext *ExistentialType, concrete Type, confs []*Conformance, what string) {
	v.requiref(len(confs) == len(ext.Protocols),
		"%s must supply one conformance per erased protocol", what)
	for j, c := range confs {
		v.requiref(c != nil && c.Protocol == ext.Protocols[j] &&
			SameDesc(c.Concrete.Desc, concrete.Desc),
			"%s conformance does not match the erased protocol", what)
	}
}

func (v *verifier) requireImpliedProtocols(src, dest *ExistentialType, what string) {
	for _, dp := range dest.Protocols {
		implied := false
		for _, sp := range src.Protocols {
			if sp == dp || sp.InheritsFrom(dp) {
				implied = true
				break
			}
		}
		v.requiref(implied, "%s destination protocols must be implied by the source", what)
	}
}

// --- checked casts ---

func (v *verifier) checkCheckedCast(kind CastKind, from, to Type) {
	v.require(!SameType(from, to), "can't checked cast to the same type")
	v.require(from.Cat == to.Cat,
		"checked cast operand and result must agree in address-ness")

	isPlaceholder := func(t Type) bool { return t.PlaceholderDesc() != nil }
	isExistential := func(t Type) bool { return t.ExistentialDesc() != nil }
	isConcrete := func(t Type) bool { return !isPlaceholder(t) && !isExistential(t) }

	switch kind {
	case CastDowncast:
		fromC, toC := from.ClassDesc(), to.ClassDesc()
		v.require(fromC != nil && toC != nil, "downcast requires class types")
		v.require(toC.Decl.IsSubclassOf(fromC.Decl), "downcast must convert to a subclass")
	case CastSuperToPlaceholder:
		v.require(from.MayHaveSuperclass(), "super-to-placeholder cast source must be a class instance")
		p := to.PlaceholderDesc()
		v.require(p != nil && p.RequiresClass,
			"super-to-placeholder cast destination must be a class-constrained placeholder")
	case CastPlaceholderToConcrete:
		v.require(isPlaceholder(from), "placeholder-to-concrete cast source must be a placeholder")
		v.require(isConcrete(to), "placeholder-to-concrete cast destination must be concrete")
	case CastPlaceholderToPlaceholder:
		v.require(isPlaceholder(from), "placeholder-to-placeholder cast source must be a placeholder")
		v.require(isPlaceholder(to), "placeholder-to-placeholder cast destination must be a placeholder")
	case CastExistentialToPlaceholder:
		v.require(isExistential(from), "existential-to-placeholder cast source must be an existential")
		v.require(isPlaceholder(to), "existential-to-placeholder cast destination must be a placeholder")
	case CastExistentialToConcrete:
		v.require(isExistential(from), "existential-to-concrete cast source must be an existential")
		v.require(isConcrete(to), "existential-to-concrete cast destination must be concrete")
	case CastConcreteToPlaceholder:
		v.require(isConcrete(from), "concrete-to-placeholder cast source must be concrete")
		v.require(isPlaceholder(to), "concrete-to-placeholder cast destination must be a placeholder")
	case CastConcreteToExistential:
		v.require(isConcrete(from), "concrete-to-existential cast source must be concrete")
		v.require(isExistential(to), "concrete-to-existential cast destination must be an existential")
	}
}

func (v *verifier) checkUpcast(i *Upcast) {
	from, to := opType(i.Operands()[0]), i.result().Type()
	v.require(!SameType(from, to), "can't upcast to the same type")
	v.require(from.Cat == to.Cat, "upcast operand and result must agree in address-ness")
	fromC, toC := from.ClassDesc(), to.ClassDesc()
	v.require(fromC != nil && toC != nil, "upcast must convert between class types")
	v.require(fromC.Decl.IsSubclassOf(toC.Decl),
		"upcast must convert a class instance to a superclass type")
}

// --- terminators ---

func (v *verifier) checkBranchArgs(args []*Operand, dest *BasicBlock, what string) {
	v.requiref(len(args) == len(dest.Params),
		"%s has wrong number of arguments for dest bb", what)
	for j, a := range args {
		v.requiref(SameType(opType(a), dest.Params[j].Type()),
			"%s argument types do not match arguments of dest bb", what)
	}
}

func (v *verifier) checkSwitchInt(i *SwitchInt) {
	v.require(isBuiltinInt(opType(i.Operands()[0])),
		"switch_int operand must be a builtin integer")
	seen := make(map[int64]bool, len(i.Cases))
	for _, c := range i.Cases {
		v.require(!seen[c.Value], "switch_int dispatches on the same value twice")
		seen[c.Value] = true
		v.require(len(c.Dest.Params) == 0, "switch_int destination cannot take arguments")
	}
	if i.HasDefault() {
		v.require(len(i.Default.Params) == 0,
			"switch_int default destination cannot take arguments")
	}
}

func (v *verifier) checkSwitchEnumDispatch(opTy Type, addressed bool, cases []SwitchEnumCase, def *BasicBlock, hasDefault bool, what string) {
	if addressed {
		v.requiref(opTy.IsAddress() && opTy.EnumDesc() != nil,
			"%s operand must be an enum address", what)
	} else {
		v.requiref(opTy.IsObject() && opTy.EnumDesc() != nil,
			"%s operand must be an enum object", what)
	}
	decl := opTy.EnumDesc().Decl

	seen := make(map[*EnumCase]bool, len(cases))
	for _, c := range cases {
		v.requireCaseOf(opTy, c.Case, what)
		v.requiref(!seen[c.Case], "%s dispatches on same element twice", what)
		seen[c.Case] = true

		if addressed {
			v.requiref(len(c.Dest.Params) == 0,
				"%s destination cannot take arguments", what)
			continue
		}
		if c.Case.HasPayload() {
			v.requiref(len(c.Dest.Params) <= 1,
				"%s destination for case with a payload must take at most one argument", what)
			if len(c.Dest.Params) == 1 {
				v.requiref(SameType(c.Dest.Params[0].Type(), CaseType(opTy, c.Case)),
					"%s destination argument must have the case payload type", what)
			}
		} else {
			v.requiref(len(c.Dest.Params) == 0,
				"%s destination for a payloadless case must take no arguments", what)
		}
	}

	if !hasDefault {
		v.requiref(len(seen) == len(decl.Cases),
			"nonexhaustive %s must have a default destination", what)
	} else {
		v.requiref(len(def.Params) == 0,
			"%s default destination must take no arguments", what)
	}
}
