package xtc

import "fmt"

// XtcNode is one container visited during a walk. The payload slice is a
// view into the event buffer it was decoded from and must not outlive it.
type XtcNode struct {
	Depth   int
	Header  XtcHeader
	Payload []byte
}

type walkFrame struct {
	data   []byte
	offset int
	depth  int
}

// WalkXtc enumerates the containers in payload depth-first, calling visit
// for each one. The registry decides which type codes are composite and get
// recursed into. Nesting depth is bounded only by memory: frames live on an
// explicit work-list, not the call stack.
//
// On an extent inconsistent with the available bytes the walk emits a
// warning, stops, and returns a *CorruptionError: siblings are only
// locatable by advancing past the declared extent, so the rest of the
// current record cannot be parsed safely. Nodes visited before the corrupt
// one remain valid. Returning false from visit stops the walk early with a
// nil error.
//
// A fresh call re-parses the same buffer deterministically; the walk keeps
// no state between calls.
func WalkXtc(payload []byte, registry *TypeRegistry, visit func(XtcNode) bool) error {
	stack := []walkFrame{{data: payload}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		remaining := len(top.data) - top.offset
		if remaining == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		if remaining < XtcHeaderSize {
			corrupt := &CorruptionError{
				Offset:    top.offset,
				Remaining: remaining,
				Truncated: true,
				Reason:    "trailing bytes shorter than a container header",
			}
			logger.Error(corrupt.Error())
			return corrupt
		}

		header, err := DecodeXtcHeader(top.data[top.offset:])
		if err != nil {
			return err
		}
		payloadLength := header.PayloadSize()
		if payloadLength < 0 || payloadLength > remaining-XtcHeaderSize {
			corrupt := &CorruptionError{
				Offset:    top.offset,
				Extent:    header.Extent,
				Remaining: remaining,
				Reason:    "declared extent inconsistent with parent bounds",
			}
			message := fmt.Sprintf("abandoning walk: %v", corrupt)
			logger.Error(message)
			return corrupt
		}

		node := XtcNode{
			Depth:   top.depth,
			Header:  header,
			Payload: top.data[top.offset+XtcHeaderSize : top.offset+int(header.Extent)],
		}
		top.offset += int(header.Extent)
		depth := top.depth

		if !visit(node) {
			return nil
		}
		if registry.IsComposite(header.Contains.ID()) && len(node.Payload) > 0 {
			stack = append(stack, walkFrame{data: node.Payload, depth: depth + 1})
		}
	}
	return nil
}

// CollectXtc walks the payload and returns every container in visit order.
func CollectXtc(payload []byte, registry *TypeRegistry) ([]XtcNode, error) {
	nodes := make([]XtcNode, 0)
	err := WalkXtc(payload, registry, func(node XtcNode) bool {
		nodes = append(nodes, node)
		return true
	})
	return nodes, err
}
