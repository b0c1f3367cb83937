package crdt

import (
	"encoding/json"
	"fmt"

	"textweave/internal/id"
)

// OperationType tags a wire operation's variant, mirroring the teacher's
// operation.go OperationType/Insert/Delete constants.
type OperationType int8

const (
	OpInsert OperationType = iota
	OpDelete
)

func (t OperationType) String() string {
	switch t {
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	default:
		panic("unreachable")
	}
}

// Operation is the sum-typed wire message spec.md §6 describes: an insert
// carries a new node's full anchor, a delete carries only the target id.
// Modeling it as a Go interface with two concrete implementations (rather
// than one record with optional fields) is spec.md §9's "sum-typed
// messages" design note, generalizing the teacher's own
// InsertOperation/DeleteOperation split.
type Operation interface {
	Kind() OperationType
}

// InsertOp is the wire record for a single-character insert.
type InsertOp struct {
	NodeID      id.ID
	ParentID    id.ID
	IsLeftChild bool
	Value       rune
}

func (InsertOp) Kind() OperationType { return OpInsert }

// DeleteOp is the wire record for a single-character delete.
type DeleteOp struct {
	NodeID id.ID
}

func (DeleteOp) Kind() OperationType { return OpDelete }

// wireOp is the self-describing JSON record spec.md §6 mandates: a "type"
// discriminator plus the union of both variants' fields.
type wireOp struct {
	Type        string `json:"type"`
	ID          string `json:"id"`
	ParentID    string `json:"parentID,omitempty"`
	IsLeftChild bool   `json:"isLeftChild,omitempty"`
	Value       string `json:"value,omitempty"`
}

// EncodeOperation serializes op to the wire format of spec.md §6. Any
// deterministic, round-trippable encoding is acceptable per the spec; JSON
// is used here because it's what the teacher's appserver already speaks
// over the websocket (appserver.Message is JSON-framed).
func EncodeOperation(op Operation) ([]byte, error) {
	switch o := op.(type) {
	case InsertOp:
		return json.Marshal(wireOp{
			Type:        "insert",
			ID:          string(o.NodeID),
			ParentID:    string(o.ParentID),
			IsLeftChild: o.IsLeftChild,
			Value:       string(o.Value),
		})
	case DeleteOp:
		return json.Marshal(wireOp{
			Type: "delete",
			ID:   string(o.NodeID),
		})
	default:
		return nil, fmt.Errorf("%w: unsupported operation type %T", ErrInvariantViolation, op)
	}
}

// DecodeOperation parses a wire record produced by EncodeOperation,
// branching on its type tag.
func DecodeOperation(data []byte) (Operation, error) {
	var w wireOp
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("crdt: decode operation: %w", err)
	}
	switch w.Type {
	case "insert":
		runes := []rune(w.Value)
		if len(runes) != 1 {
			return nil, fmt.Errorf("%w: insert value must be exactly one character, got %q", ErrInvariantViolation, w.Value)
		}
		return InsertOp{
			NodeID:      id.ID(w.ID),
			ParentID:    id.ID(w.ParentID),
			IsLeftChild: w.IsLeftChild,
			Value:       runes[0],
		}, nil
	case "delete":
		return DeleteOp{NodeID: id.ID(w.ID)}, nil
	default:
		return nil, fmt.Errorf("%w: unknown wire operation type %q", ErrInvariantViolation, w.Type)
	}
}
