package dfg

import "errors"

// Sentinel errors for the translation pipeline. Every one of them is fatal:
// the stage that detects it returns immediately and nothing is emitted.
var (
	// ErrUnrecognizedKind is returned when a node's type string matches none
	// of the recognized kinds.
	ErrUnrecognizedKind = errors.New("unrecognized node type")

	// ErrMissingOperation is returned for an Operator node whose op is empty
	// or not a recognized operation.
	ErrMissingOperation = errors.New("missing or unrecognized operation")

	// ErrMalformedPortWidth is returned when the width after a ':' is not a
	// positive decimal number.
	ErrMalformedPortWidth = errors.New("malformed port width")

	// ErrMalformedPortExpression is returned for a statement that has no
	// wire name, such as ":3".
	ErrMalformedPortExpression = errors.New("malformed port expression")

	// ErrDuplicateWire is returned when a port declares the same wire twice.
	ErrDuplicateWire = errors.New("duplicate wire name")

	// ErrUnresolvedConnection is returned when an edge names a wire that the
	// tail's output port or the head's input port does not declare.
	ErrUnresolvedConnection = errors.New("unresolved connection")

	// ErrInvalidChannelWidth is returned when channel_width is present but
	// is not a positive integer.
	ErrInvalidChannelWidth = errors.New("invalid channel width")

	// ErrMalformedFork is returned when a fork that needs fanout reduction
	// does not have exactly one predecessor.
	ErrMalformedFork = errors.New("malformed fork")

	// ErrUnknownNode is returned when an edge references an undeclared node.
	ErrUnknownNode = errors.New("unknown node")

	// ErrDuplicateNode is returned when two nodes share a name.
	ErrDuplicateNode = errors.New("duplicate node")
)
