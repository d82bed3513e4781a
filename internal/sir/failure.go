package sir

import (
	"fmt"
	"strings"
)

// VerifyError describes the first invariant violation found by a verifier
// entry point. Verification is fail-fast: one error per call.
type VerifyError struct {
	// Complaint is the human-readable description of the violated invariant.
	Complaint string
	// Condition is the textual form of the failed condition, when one exists.
	Condition string
	// Function is the name of the function under verification, if any.
	Function string
	// InstDump is the printed offending instruction, if one was in scope.
	InstDump string
	// BlockDump is the printed block containing the offending instruction.
	BlockDump string
	// Detail lazily renders extra context, such as the source span of the
	// offending instruction. Nil when no extra context exists.
	Detail func() string
}

func (e *VerifyError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "SIR verification failed: %s", e.Complaint)
	if e.Condition != "" {
		fmt.Fprintf(&b, ": %s", e.Condition)
	}
	if e.Detail != nil {
		fmt.Fprintf(&b, "\n  %s", e.Detail())
	}
	if e.InstDump != "" {
		fmt.Fprintf(&b, "\nVerifying: %s", e.InstDump)
	}
	if e.Function != "" {
		fmt.Fprintf(&b, "\nIn function @%s", e.Function)
	}
	if e.BlockDump != "" {
		fmt.Fprintf(&b, " basic block:\n%s", e.BlockDump)
	}
	return b.String()
}
