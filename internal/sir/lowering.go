package sir

// Type lowering: the declared types of aggregate members, with the base
// type's generic arguments applied.

func nominalSubs(params []*GenericParamType, args []Type) []Substitution {
	n := len(params)
	if len(args) < n {
		n = len(args)
	}
	subs := make([]Substitution, 0, n)
	for i := 0; i < n; i++ {
		subs = append(subs, Substitution{Param: params[i], Replacement: args[i]})
	}
	return subs
}

// FieldType returns the type of the stored field f within base, which must
// be a struct or class type of either category. The result is an object type.
func FieldType(base Type, f *Field) Type {
	switch d := base.Desc.(type) {
	case *StructType:
		return SubstType(f.Type, nominalSubs(d.Decl.TypeParams, d.Args)).Object()
	case *ClassType:
		return SubstType(f.Type, nominalSubs(d.Decl.TypeParams, d.Args)).Object()
	default:
		return Type{}
	}
}

// CaseType returns the payload type of case c within the enum type base, or
// the null type when the case carries no payload. The result is an object
// type.
func CaseType(base Type, c *EnumCase) Type {
	d := base.EnumDesc()
	if d == nil || c.Payload == nil {
		return Type{}
	}
	return SubstType(*c.Payload, nominalSubs(d.Decl.TypeParams, d.Args)).Object()
}

// TupleElemType returns the type of element idx of the tuple type base, or
// the null type when base is not a tuple or idx is out of range.
func TupleElemType(base Type, idx int) Type {
	d, ok := base.Desc.(*TupleType)
	if !ok || idx < 0 || idx >= len(d.Elems) {
		return Type{}
	}
	return d.Elems[idx].Object()
}

// classHasField reports whether f is a stored field of decl or an ancestor.
func classHasField(decl *ClassDecl, f *Field) bool {
	for c := decl; c != nil; c = c.Super {
		if c.HasField(f) {
			return true
		}
	}
	return false
}
