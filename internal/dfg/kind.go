package dfg

import (
	"fmt"
	"strings"
)

// Kind is the circuit element a node stands for.
type Kind int

const (
	KindOperator Kind = iota
	KindBuffer
	KindConstant
	KindFork
	KindMerge
	KindSelect
	KindBranch
	KindDemux
	KindEntry
	KindExit
	// KindUnrecognized marks a type string that matched nothing.
	KindUnrecognized
	// KindUnspecified marks a node without a type. Such nodes are comments:
	// they stay in the graph but are never transformed or emitted.
	KindUnspecified
)

var kindNames = [...]string{
	KindOperator: "Operator",
	KindBuffer:   "Buffer",
	KindConstant: "Constant",
	KindFork:     "Fork",
	KindMerge:    "Merge",
	KindSelect:   "Select",
	KindBranch:   "Branch",
	KindDemux:    "Demux",
	KindEntry:    "Entry",
	KindExit:     "Exit",
}

func (k Kind) String() string {
	switch {
	case k >= 0 && int(k) < len(kindNames):
		return kindNames[k]
	case k == KindUnrecognized:
		return "Unrecognized"
	default:
		return "Unspecified"
	}
}

// Emittable reports whether nodes of kind k are emitted as .subckt blocks.
// Entry and Exit only contribute to the .inputs/.outputs sections.
func (k Kind) Emittable() bool {
	return k >= KindOperator && k < KindEntry
}

// ResolveKind maps a type string to its Kind. Spaces are removed before
// matching; the match itself is exact and case-sensitive. An empty string
// resolves to KindUnspecified with no error.
func ResolveKind(raw string) (Kind, error) {
	s := strings.ReplaceAll(raw, " ", "")
	if s == "" {
		return KindUnspecified, nil
	}
	for i, name := range kindNames {
		if s == name {
			return Kind(i), nil
		}
	}
	return KindUnrecognized, fmt.Errorf("%w %q", ErrUnrecognizedKind, s)
}

// Operation is the function an Operator node computes.
type Operation int

const (
	OpNone Operation = iota
	OpLoad
	OpStore
	OpMul
	OpAdd
	OpICmp
	OpSub
)

var opNames = [...]string{
	OpNone:  "",
	OpLoad:  "load",
	OpStore: "store",
	OpMul:   "mul",
	OpAdd:   "add",
	OpICmp:  "icmp",
	OpSub:   "sub",
}

func (o Operation) String() string {
	if o >= 0 && int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Operation(%d)", int(o))
}

// ResolveOperation maps an op string to its Operation. It is only meaningful
// for Operator nodes, for which an empty op is an error. Unlike the type
// string, the op string is matched exactly, whitespace included.
func ResolveOperation(raw string) (Operation, error) {
	if raw == "" {
		return OpNone, fmt.Errorf("%w: operator without operation is invalid", ErrMissingOperation)
	}
	for i, name := range opNames {
		if i != int(OpNone) && raw == name {
			return Operation(i), nil
		}
	}
	return OpNone, fmt.Errorf("%w %q", ErrMissingOperation, raw)
}
