package model

import (
	"fmt"

	"github.com/syssam/persist/privacy"
	"github.com/syssam/persist/relation"
	"github.com/syssam/persist/schema"
)

// Persistable is implemented by records that can be cascaded. The cascade
// operates only through this interface.
type Persistable interface {
	privacy.Entity

	// Type returns the declared type of the record.
	Type() *schema.Type
	// Key returns the primary key, or nil before the first insert.
	Key() any
	SetKey(any)
	// MarkExists flags the record as stored after its row is written.
	MarkExists()
	// SetExists sets the stored flag. It restores the flag of a record
	// whose insert was rolled back.
	SetExists(bool)
	// Attributes returns the column values in assignment order,
	// excluding the primary key.
	Attributes() []Attr
	// Relations returns the loaded relations in attachment order.
	Relations() []Relation
	Relation(name string) (Value, bool)
	SetRelation(name string, v Value)
	// RecordEvent queues a domain event. Events of type
	// func(Persistable) any are evaluated when flushed.
	RecordEvent(ev any)
	Events() []any
	// ClearEvents empties the event queue.
	ClearEvents()
	// FlushEvents drains the event queue and returns its events.
	FlushEvents() []any
}

// Attr is a single attribute of a record.
type Attr struct {
	Name  string
	Value any
}

// Relation is a loaded relation of a record.
type Relation struct {
	Name  string
	Value Value
}

// Model is the default Persistable implementation. A Model is not safe for
// concurrent use.
type Model struct {
	typ       *schema.Type
	key       any
	exists    bool
	attrs     []Attr
	attrIdx   map[string]int
	relations []Relation
	relIdx    map[string]int
	events    []any
}

// New returns an unsaved record of type t.
//
//	post := model.New(Post).
//		Set("title", "t").
//		Set("user", model.New(User).Set("name", "u"))
func New(t *schema.Type) *Model {
	return &Model{
		typ:     t,
		attrIdx: make(map[string]int),
		relIdx:  make(map[string]int),
	}
}

// Set assigns an attribute or attaches a relation and returns the model.
func (m *Model) Set(name string, v any) *Model {
	m.SetAttribute(name, v)
	return m
}

// Type returns the declared type of the record.
func (m *Model) Type() *schema.Type { return m.typ }

// TypeName returns the name of the record type.
func (m *Model) TypeName() string { return m.typ.Name }

// Key returns the primary key of the record.
func (m *Model) Key() any { return m.key }

// SetKey sets the primary key of the record.
func (m *Model) SetKey(k any) { m.key = k }

// Exists reports if the record is stored.
func (m *Model) Exists() bool { return m.exists }

// MarkExists flags the record as stored.
func (m *Model) MarkExists() { m.exists = true }

// SetExists sets the stored flag.
func (m *Model) SetExists(exists bool) { m.exists = exists }

// Attribute returns the value of an attribute. The key column
// name returns the primary key.
func (m *Model) Attribute(name string) (any, bool) {
	if name == m.typ.KeyColumn() {
		return m.key, m.key != nil
	}
	i, ok := m.attrIdx[name]
	if !ok {
		return nil, false
	}
	return m.attrs[i].Value, true
}

// SetAttribute assigns a column value, or attaches related records when
// name is a relationship of the record type and v is a record, a collection
// of records, a Value or nil.
func (m *Model) SetAttribute(name string, v any) {
	if name == m.typ.KeyColumn() {
		m.key = v
		return
	}
	if d, ok := relation.Classify(m.typ, name); ok {
		if rv, ok := toValue(v, !d.Singular()); ok {
			m.SetRelation(name, rv)
			return
		}
	}
	if i, ok := m.attrIdx[name]; ok {
		m.attrs[i].Value = v
		return
	}
	m.attrIdx[name] = len(m.attrs)
	m.attrs = append(m.attrs, Attr{Name: name, Value: v})
}

// Attributes returns the column values in assignment order.
func (m *Model) Attributes() []Attr {
	return m.attrs
}

// Relations returns the loaded relations in attachment order.
func (m *Model) Relations() []Relation {
	return m.relations
}

// Relation returns the loaded value of the named relation. The second
// return value is false if the relation was never attached.
func (m *Model) Relation(name string) (Value, bool) {
	i, ok := m.relIdx[name]
	if !ok {
		return Value{}, false
	}
	return m.relations[i].Value, true
}

// SetRelation attaches v as the loaded value of the named relation.
// Replacing a relation keeps its attachment position.
func (m *Model) SetRelation(name string, v Value) {
	if i, ok := m.relIdx[name]; ok {
		m.relations[i].Value = v
		return
	}
	m.relIdx[name] = len(m.relations)
	m.relations = append(m.relations, Relation{Name: name, Value: v})
}

// Push appends records to a plural relation, loading it first if it was
// never attached.
func (m *Model) Push(name string, ps ...Persistable) error {
	d, ok := relation.Classify(m.typ, name)
	if !ok {
		return fmt.Errorf("model: %s has no relation %q", m.typ.Name, name)
	}
	if d.Singular() {
		return fmt.Errorf("model: relation %s.%s is singular", m.typ.Name, name)
	}
	v, _ := m.Relation(name)
	m.SetRelation(name, v.push(ps...))
	return nil
}

// RecordEvent queues a domain event.
func (m *Model) RecordEvent(ev any) {
	m.events = append(m.events, ev)
}

// Events returns the queued events without draining them.
func (m *Model) Events() []any {
	return m.events
}

// ClearEvents empties the event queue.
func (m *Model) ClearEvents() {
	m.events = nil
}

// FlushEvents drains the event queue. Events recorded as
// func(Persistable) any are replaced by their result.
func (m *Model) FlushEvents() []any {
	events := m.events
	m.events = nil
	for i, ev := range events {
		events[i] = ResolveEvent(m, ev)
	}
	return events
}

// ResolveEvent returns the event queued on p: an event recorded as
// func(Persistable) any is evaluated against p, others are returned as is.
func ResolveEvent(p Persistable, ev any) any {
	if fn, ok := ev.(func(Persistable) any); ok {
		return fn(p)
	}
	return ev
}

func toValue(v any, plural bool) (Value, bool) {
	switch v := v.(type) {
	case nil:
		if plural {
			return Many(), true
		}
		return One(nil), true
	case Value:
		return v, true
	case Persistable:
		if plural {
			return Many(v), true
		}
		return One(v), true
	case []Persistable:
		if !plural {
			return Value{}, false
		}
		return Many(v...), true
	case []*Model:
		if !plural {
			return Value{}, false
		}
		ps := make([]Persistable, len(v))
		for i := range v {
			ps[i] = v[i]
		}
		return Many(ps...), true
	default:
		return Value{}, false
	}
}

var _ Persistable = (*Model)(nil)
