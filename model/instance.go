package model

import (
	"slices"

	"github.com/syssam/persist/relation"
	"github.com/syssam/persist/schema/edge"
)

// Instance is a loaded relation of a record, resolved against its declared
// edge. It carries what is needed to propagate keys between the parent and
// the related records.
type Instance struct {
	Name   string
	Edge   *edge.Descriptor
	Parent Persistable
	Value  Value
}

// Kind returns the relationship kind of the instance.
func (i Instance) Kind() edge.Kind {
	return i.Edge.Kind
}

// Records returns the related records in order.
func (i Instance) Records() []Persistable {
	return i.Value.Records()
}

// ForeignKeyName returns the foreign key column. It lives on the parent for
// owned kinds, and on the related records for dependent kinds.
func (i Instance) ForeignKeyName() string {
	return i.Edge.ForeignKey
}

// ParentKeyValue returns the parent value written into the foreign key of
// dependent records.
func (i Instance) ParentKeyValue() any {
	if i.Edge.OwnerKey != "" {
		v, _ := i.Parent.Attribute(i.Edge.OwnerKey)
		return v
	}
	return i.Parent.Key()
}

// MorphTypeFieldName returns the type discriminator column of a polymorphic
// instance, or an empty string.
func (i Instance) MorphTypeFieldName() string {
	if !i.Edge.Polymorphic() {
		return ""
	}
	return i.Edge.MorphType
}

// MorphTypeValue returns the discriminator identifying the parent type in a
// polymorphic dependent instance.
func (i Instance) MorphTypeValue() string {
	if i.Edge.Kind != edge.PolymorphicDependent {
		return ""
	}
	return i.Parent.Type().MorphName()
}

// Instances returns the loaded relations of p that are relationships, in
// attachment order. Relations are never fetched from storage.
func Instances(p Persistable) []Instance {
	var instances []Instance
	for _, r := range p.Relations() {
		d, ok := relation.Classify(p.Type(), r.Name)
		if !ok {
			continue
		}
		// A MorphTo without a target resolves to no relationship at all.
		if d.Kind == edge.PolymorphicOwned && r.Value.Empty() {
			continue
		}
		instances = append(instances, Instance{Name: r.Name, Edge: d, Parent: p, Value: r.Value})
	}
	return instances
}

// OfKind returns the loaded relationship instances of p with one of the
// given kinds.
func OfKind(p Persistable, kinds ...edge.Kind) []Instance {
	return filter(p, func(k edge.Kind) bool { return slices.Contains(kinds, k) })
}

// ExceptKind returns the loaded relationship instances of p with none of
// the given kinds.
func ExceptKind(p Persistable, kinds ...edge.Kind) []Instance {
	return filter(p, func(k edge.Kind) bool { return !slices.Contains(kinds, k) })
}

func filter(p Persistable, keep func(edge.Kind) bool) []Instance {
	var instances []Instance
	for _, i := range Instances(p) {
		if keep(i.Kind()) {
			instances = append(instances, i)
		}
	}
	return instances
}
