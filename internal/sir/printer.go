package sir

import (
	"fmt"
	"strings"
)

// Textual dumps of SIR, used by the failure reporter and the developer
// tools. The format is stable enough to read in a terminal, not a parseable
// serialization.

func valueName(v Value) string {
	if v == nil {
		return "<null>"
	}
	if n := v.ValueName(); n != "" {
		return n
	}
	return "%?"
}

// FormatInstruction renders one instruction on one line.
func FormatInstruction(inst Instruction) string {
	var b strings.Builder
	if res := inst.Results(); len(res) > 0 {
		if len(res) == 1 {
			b.WriteString(valueName(res[0]))
		} else {
			b.WriteString("(")
			for i, r := range res {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(valueName(r))
			}
			b.WriteString(")")
		}
		b.WriteString(" = ")
	}
	b.WriteString(inst.Kind().String())
	if extra := instPayload(inst); extra != "" {
		b.WriteString(" ")
		b.WriteString(extra)
	}
	for i, op := range inst.Operands() {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(" ")
		b.WriteString(valueName(op.Value()))
	}
	if res := inst.Results(); len(res) > 0 {
		fmt.Fprintf(&b, " : %s", res[0].Type())
	} else if ops := inst.Operands(); len(ops) > 0 && ops[0].Value() != nil {
		fmt.Fprintf(&b, " : %s", ops[0].Value().Type())
	}
	return b.String()
}

// instPayload renders the non-operand payload of an instruction, when any.
func instPayload(inst Instruction) string {
	switch i := inst.(type) {
	case *FunctionRef:
		return "@" + i.Fn.Name
	case *GlobalAddr:
		return "@" + i.Global.Name
	case *IntegerLiteral:
		return fmt.Sprintf("%d", i.Value)
	case *FloatLiteral:
		return fmt.Sprintf("%g", i.Value)
	case *StringLiteral:
		return fmt.Sprintf("%q", i.Value)
	case *Enum:
		return "#" + enumCaseName(i.Case)
	case *InitEnumDataAddr:
		return "#" + enumCaseName(i.Case)
	case *UncheckedEnumData:
		return "#" + enumCaseName(i.Case)
	case *UncheckedTakeEnumDataAddr:
		return "#" + enumCaseName(i.Case)
	case *InjectEnumAddr:
		return "#" + enumCaseName(i.Case)
	case *TupleExtract:
		return fmt.Sprintf("%d", i.Field)
	case *TupleElementAddr:
		return fmt.Sprintf("%d", i.Field)
	case *StructExtract:
		return "#" + fieldName(i.Field)
	case *StructElementAddr:
		return "#" + fieldName(i.Field)
	case *RefElementAddr:
		return "#" + fieldName(i.Field)
	case *WitnessMethod:
		return fmt.Sprintf("%s, #%s", i.LookupType, methodName(i.Member))
	case *ClassMethod:
		return "#" + methodName(i.Member)
	case *SuperMethod:
		return "#" + methodName(i.Member)
	case *UnconditionalCheckedCast:
		return i.CastKind.String()
	case *Branch:
		return i.Dest.Name
	case *CondBranch:
		return fmt.Sprintf("-> %s, %s", i.TrueDest.Name, i.FalseDest.Name)
	case *SwitchInt:
		return switchDests(len(i.Cases), i.Default)
	case *SwitchEnum:
		return switchDests(len(i.Cases), i.Default)
	case *SwitchEnumAddr:
		return switchDests(len(i.Cases), i.Default)
	case *CheckedCastBranch:
		return fmt.Sprintf("%s, -> %s, %s", i.CastKind, i.Success.Name, i.Failure.Name)
	default:
		return ""
	}
}

func switchDests(cases int, def *BasicBlock) string {
	if def != nil {
		return fmt.Sprintf("(%d cases, default %s)", cases, def.Name)
	}
	return fmt.Sprintf("(%d cases)", cases)
}

func enumCaseName(c *EnumCase) string {
	if c == nil {
		return "<null case>"
	}
	if c.Parent != nil {
		return c.Parent.Name + "." + c.Name
	}
	return c.Name
}

func fieldName(f *Field) string {
	if f == nil {
		return "<null field>"
	}
	return f.Name
}

func methodName(m MethodRef) string {
	if m.Decl == nil {
		return "<null method>"
	}
	return m.Decl.Name
}

// FormatBlock renders a block header and its instructions, indented.
func FormatBlock(bb *BasicBlock) string {
	var b strings.Builder
	b.WriteString(bb.Name)
	if len(bb.Params) > 0 {
		b.WriteString("(")
		for i, p := range bb.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s : %s", valueName(p), p.Type())
		}
		b.WriteString(")")
	}
	b.WriteString(":\n")
	for _, inst := range bb.Instrs {
		b.WriteString("  ")
		b.WriteString(FormatInstruction(inst))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatFunction renders a function signature and body.
func FormatFunction(f *Function) string {
	var b strings.Builder
	fmt.Fprintf(&b, "sir %s @%s : $%s", f.Linkage, f.Name, f.Type)
	if f.External {
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(" {\n")
	for i, bb := range f.Blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatBlock(bb))
	}
	b.WriteString("}\n")
	return b.String()
}

// FormatModule renders every symbol and table of a module.
func FormatModule(m *Module) string {
	var b strings.Builder
	fmt.Fprintf(&b, "sir_module %s\n\n", m.Name)
	for _, g := range m.Globals {
		fmt.Fprintf(&b, "sir_global %s @%s : %s\n", g.Linkage, g.Name, g.Type)
	}
	if len(m.Globals) > 0 {
		b.WriteString("\n")
	}
	for _, f := range m.Functions {
		b.WriteString(FormatFunction(f))
		b.WriteString("\n")
	}
	for _, vt := range m.VTables {
		fmt.Fprintf(&b, "sir_vtable %s {\n", vt.Class.Name)
		for _, e := range vt.Entries {
			fmt.Fprintf(&b, "  #%s: @%s\n", methodName(e.Member), e.Impl.Name)
		}
		b.WriteString("}\n\n")
	}
	for _, wt := range m.WitnessTables {
		fmt.Fprintf(&b, "sir_witness_table %s: %s {\n",
			wt.Conformance.Concrete, wt.Conformance.Protocol.Name)
		for _, e := range wt.Entries {
			fmt.Fprintf(&b, "  #%s: @%s\n", methodName(e.Requirement), e.Witness.Name)
		}
		b.WriteString("}\n\n")
	}
	return b.String()
}
