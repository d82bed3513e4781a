package sir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDiamondForDominance(t *testing.T) (*Function, *BasicBlock, *BasicBlock, *BasicBlock, *BasicBlock) {
	t.Helper()
	m := NewModule("test", StageCanonical)
	f := m.NewFunction("main", LinkagePublic, retFn(tI64()))
	entry, then, els, merge := diamond(f)
	then.Append(NewBranch(noLoc(), merge))
	els.Append(NewBranch(noLoc(), merge))
	lit := NewIntegerLiteral(noLoc(), tI64(), 0)
	merge.Append(lit)
	merge.Append(NewReturn(noLoc(), lit.Results()[0]))
	return f, entry, then, els, merge
}

func TestDominanceDiamond(t *testing.T) {
	f, entry, then, els, merge := buildDiamondForDominance(t)
	dom := NewDominanceInfo(f)

	assert.True(t, dom.Dominates(entry, entry))
	assert.True(t, dom.Dominates(entry, then))
	assert.True(t, dom.Dominates(entry, els))
	assert.True(t, dom.Dominates(entry, merge))

	assert.False(t, dom.Dominates(then, merge))
	assert.False(t, dom.Dominates(els, merge))
	assert.False(t, dom.Dominates(then, els))

	assert.True(t, dom.ProperlyDominatesBlock(entry, merge))
	assert.False(t, dom.ProperlyDominatesBlock(entry, entry))
}

func TestDominanceWithinBlock(t *testing.T) {
	f, entry, _, _, _ := buildDiamondForDominance(t)
	dom := NewDominanceInfo(f)

	first := entry.Instrs[0]
	second := entry.Instrs[1]
	assert.True(t, dom.ProperlyDominates(first, second))
	assert.False(t, dom.ProperlyDominates(second, first))
	assert.False(t, dom.ProperlyDominates(first, first))
}

func TestDominanceOverLoop(t *testing.T) {
	m := NewModule("test", StageCanonical)
	f := m.NewFunction("loop", LinkagePublic, retFn(tI64()))
	entry := f.NewBlock("entry")
	header := f.NewBlock("header")
	body := f.NewBlock("body")
	exit := f.NewBlock("exit")

	entry.Append(NewBranch(noLoc(), header))
	cond := NewIntegerLiteral(noLoc(), tI1(), 1)
	header.Append(cond)
	header.Append(NewCondBranch(noLoc(), cond.Results()[0], body, nil, exit, nil))
	body.Append(NewBranch(noLoc(), header))
	lit := NewIntegerLiteral(noLoc(), tI64(), 0)
	exit.Append(lit)
	exit.Append(NewReturn(noLoc(), lit.Results()[0]))

	require.NoError(t, VerifyFunction(m, f))

	dom := NewDominanceInfo(f)
	assert.True(t, dom.Dominates(header, body))
	assert.True(t, dom.Dominates(header, exit))
	assert.False(t, dom.Dominates(body, header))
	assert.False(t, dom.Dominates(body, exit))
}

func TestBlockParamDominatesOwnBlock(t *testing.T) {
	m := NewModule("test", StageCanonical)
	f := m.NewFunction("id", LinkagePublic, &FunctionType{
		Params: []Type{tI64()},
		Result: ResultInfo{Type: tI64()},
	})
	bb := f.NewBlock("")
	p := bb.AddParam(tI64())
	ret := NewReturn(noLoc(), p)
	bb.Append(ret)

	dom := NewDominanceInfo(f)
	assert.True(t, dom.ValueDominates(p, ret))
}
