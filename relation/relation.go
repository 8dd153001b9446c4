// Package relation classifies the relationships of a record type and groups
// relationship kinds by their place in a cascade.
package relation

import (
	"slices"

	"github.com/syssam/persist/schema"
	"github.com/syssam/persist/schema/edge"
)

// Kind groups.
var (
	// Owned kinds are persisted before the record that declares them.
	Owned = []edge.Kind{edge.OwnedSingular, edge.OwnedPlural, edge.PolymorphicOwned}
	// Dependent kinds are persisted after the record that declares them.
	Dependent = []edge.Kind{edge.DependentSingular, edge.DependentPlural, edge.PolymorphicDependent, edge.ManyToManyAssociation}
)

// Classify reports the relationship declared for name on t.
//
// A runtime resolver registered for name always wins. Otherwise an attribute
// mutator of the same name shadows any declared edge, and name is a plain
// attribute. Names without a declared edge of a valid kind are not
// relationships.
func Classify(t *schema.Type, name string) (*edge.Descriptor, bool) {
	if t == nil || name == "" {
		return nil, false
	}
	if d, ok := t.Resolver(name); ok {
		return d, true
	}
	if t.HasMutator(name) {
		return nil, false
	}
	d, ok := t.Edge(name)
	if !ok || !d.Kind.IsValid() {
		return nil, false
	}
	return d, true
}

// KindOf returns the kind of the relationship declared for name, or
// edge.Invalid if name is not a relationship.
func KindOf(t *schema.Type, name string) edge.Kind {
	if d, ok := Classify(t, name); ok {
		return d.Kind
	}
	return edge.Invalid
}

// IsOwned reports if k is persisted before its declaring record.
func IsOwned(k edge.Kind) bool {
	return slices.Contains(Owned, k)
}

// IsDependent reports if k is persisted after its declaring record.
func IsDependent(k edge.Kind) bool {
	return slices.Contains(Dependent, k)
}

// PropagatesKey reports if records of kind k receive the parent key into
// their foreign key column before they are saved.
func PropagatesKey(k edge.Kind) bool {
	switch k {
	case edge.DependentSingular, edge.DependentPlural, edge.PolymorphicDependent:
		return true
	default:
		return false
	}
}
