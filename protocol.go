package bnb

// messageKind enumerates the inter-worker protocol messages of §9, the
// redesign of the source's fire-and-forget remote-eval facility into
// explicit message passing over per-worker inboxes.
type messageKind int

const (
	msgStart messageKind = iota
	msgNodePush
	msgNodeSteal
	msgNodeBatch
	msgPseudoCostUpdate
	msgStatusUpdate
	msgTerminate
	msgAck
)

// message is the single envelope type carried on every worker inbox and the
// coordinator inbox. Only the fields relevant to kind are populated.
type message struct {
	kind          messageKind
	correlationID string
	from          int

	nodes []*node // msgNodePush (one), msgNodeBatch (many)

	delta pseudoCostDelta // msgPseudoCostUpdate

	localObjLoB float64 // msgStatusUpdate: sender's local best-queued objective
	queueSize   int     // msgStatusUpdate: sender's queue size, for steal targeting

	description string // msgTerminate
}
