package store

import (
	"encoding/json"
	"fmt"

	"finanzas/internal/core"
)

// Patch is a partial update keyed by persisted field name. Values are
// marshaled to JSON, except Increment which is applied to the stored value.
type Patch map[string]any

// Increment adds By to a money field. A missing field counts as zero.
type Increment struct {
	By core.Money
}

// Default sets a field only when the document does not have it yet. It lets
// an upsert materialize a document without overwriting existing values.
type Default struct {
	Value any
}

// Apply merges p into a copy of base and returns it.
func (p Patch) Apply(base Fields) (Fields, error) {
	out := base.Clone()
	for field, v := range p {
		if field == "id" {
			continue
		}
		if inc, ok := v.(Increment); ok {
			var current core.Money
			if raw, exists := out[field]; exists {
				if err := json.Unmarshal(raw, &current); err != nil {
					return nil, fmt.Errorf("increment %s: %w", field, err)
				}
			}
			b, err := json.Marshal(current.Add(inc.By))
			if err != nil {
				return nil, err
			}
			out[field] = b
			continue
		}
		if def, ok := v.(Default); ok {
			if _, exists := out[field]; exists {
				continue
			}
			v = def.Value
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("patch %s: %w", field, err)
		}
		out[field] = b
	}
	return out, nil
}

type OpKind int

const (
	// OpSet creates or replaces a document with Fields.
	OpSet OpKind = iota + 1
	// OpUpdate merges Patch into an existing document.
	OpUpdate
	// OpUpsert merges Patch, creating the document when absent.
	OpUpsert
	// OpDelete removes an existing document.
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpSet:
		return "set"
	case OpUpdate:
		return "update"
	case OpUpsert:
		return "upsert"
	case OpDelete:
		return "delete"
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

// Op is one write inside a batch.
type Op struct {
	Kind       OpKind
	Collection string
	ID         string
	Fields     Fields
	Patch      Patch
}

func SetOp(collection, id string, fields Fields) Op {
	return Op{Kind: OpSet, Collection: collection, ID: id, Fields: fields}
}

func UpdateOp(collection, id string, patch Patch) Op {
	return Op{Kind: OpUpdate, Collection: collection, ID: id, Patch: patch}
}

func UpsertOp(collection, id string, patch Patch) Op {
	return Op{Kind: OpUpsert, Collection: collection, ID: id, Patch: patch}
}

func DeleteOp(collection, id string) Op {
	return Op{Kind: OpDelete, Collection: collection, ID: id}
}

// Collections returns the distinct collections touched by ops.
func Collections(ops []Op) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, op := range ops {
		if _, ok := seen[op.Collection]; ok {
			continue
		}
		seen[op.Collection] = struct{}{}
		out = append(out, op.Collection)
	}
	return out
}
