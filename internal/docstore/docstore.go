// Package docstore defines the document-store collaborator the workflow
// services are written against, plus the Postgres/Redis and in-memory
// drivers. Predicates are limited to field equality and membership over
// small id sets; there are no cross-collection transactions.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("document not found")

// Document is a single stored record.
type Document struct {
	ID     string
	Fields map[string]any
}

// DataTo decodes the document fields into v via JSON.
func (d Document) DataTo(v any) error {
	raw, err := json.Marshal(d.Fields)
	if err != nil {
		return fmt.Errorf("encoding document %s: %w", d.ID, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding document %s: %w", d.ID, err)
	}
	return nil
}

// FieldsOf converts a model value into document fields via JSON.
func FieldsOf(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding fields: %w", err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decoding fields: %w", err)
	}
	return fields, nil
}

type Op string

const (
	OpEqual Op = "=="
	OpIn    Op = "in"
)

// Filter is a single query predicate. Field may be a dotted path into
// nested maps (e.g. "memberKeys.user-1").
type Filter struct {
	Field string
	Op    Op
	Value any
}

func Eq(field string, value any) Filter {
	return Filter{Field: field, Op: OpEqual, Value: value}
}

func In(field string, values []string) Filter {
	return Filter{Field: field, Op: OpIn, Value: values}
}

// FieldPath addresses a nested field for partial updates. Segments must be
// non-empty and must not contain dots; paths are validated before dispatch.
type FieldPath []string

func Path(segments ...string) FieldPath { return FieldPath(segments) }

func (p FieldPath) Validate() error {
	if len(p) == 0 {
		return errors.New("empty field path")
	}
	for _, seg := range p {
		if seg == "" {
			return errors.New("empty field path segment")
		}
		if strings.Contains(seg, ".") {
			return fmt.Errorf("field path segment %q contains a dot", seg)
		}
	}
	return nil
}

func (p FieldPath) String() string { return strings.Join(p, ".") }

// Update sets the value at Path within a document.
type Update struct {
	Path  FieldPath
	Value any
}

func SetField(value any, segments ...string) Update {
	return Update{Path: FieldPath(segments), Value: value}
}

type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeModified
	ChangeRemoved
)

// Change is one entry of a collection's change feed.
type Change struct {
	Kind       ChangeKind
	Collection string
	Doc        Document
}

// Subscription is an explicit handle for a change feed. It must be
// released with Close on every exit path; after Close the handler is never
// invoked again.
type Subscription interface {
	Close() error
}

type WriteOp int

const (
	WriteSet WriteOp = iota
	WriteUpdate
	WriteDelete
)

// Write is one entry of a best-effort batch.
type Write struct {
	Op         WriteOp
	Collection string
	ID         string
	Fields     map[string]any
	Updates    []Update
}

// Store is the external document-store contract. Every call is a suspend
// point owned by the caller's context; the store provides no ordering
// guarantees across collections.
type Store interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
	Set(ctx context.Context, collection, id string, fields map[string]any) error
	Update(ctx context.Context, collection, id string, updates []Update) error
	Delete(ctx context.Context, collection, id string) error
	Subscribe(ctx context.Context, collection string, filters []Filter, fn func(Change)) (Subscription, error)

	// Batch applies writes in order, stopping at the first failure. It is
	// a best-effort grouping, not a transaction: earlier writes are not
	// rolled back.
	Batch(ctx context.Context, writes []Write) error
}

func validateUpdates(updates []Update) error {
	if len(updates) == 0 {
		return errors.New("no updates")
	}
	for _, u := range updates {
		if err := u.Path.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// matches reports whether the document fields satisfy every filter.
// Values are compared in their JSON-normalized form.
func matches(fields map[string]any, filters []Filter) bool {
	for _, f := range filters {
		got, ok := lookup(fields, strings.Split(f.Field, "."))
		switch f.Op {
		case OpEqual:
			if !ok || !jsonEqual(got, f.Value) {
				return false
			}
		case OpIn:
			values, isList := f.Value.([]string)
			if !ok || !isList {
				return false
			}
			hit := false
			for _, v := range values {
				if jsonEqual(got, v) {
					hit = true
					break
				}
			}
			if !hit {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func lookup(fields map[string]any, path []string) (any, bool) {
	var cur any = fields
	for _, seg := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func jsonEqual(a, b any) bool {
	ra, errA := json.Marshal(a)
	rb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ra) == string(rb)
}
