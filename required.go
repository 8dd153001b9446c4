package persist

import (
	"github.com/syssam/persist/model"
)

// VerifyRequired checks the relationships declared required on the type of
// rec. A required relationship must be attached, and non-empty: a collection
// needs at least one record and a singular relation a non-nil record. The
// first violation, in declaration order, is returned. Nothing is loaded from
// storage. A type with invalid declarations is reported before any check.
func VerifyRequired(rec model.Persistable) error {
	if err := rec.Type().Validate(); err != nil {
		return err
	}
	for _, d := range rec.Type().EdgeDescriptors() {
		if !d.Required {
			continue
		}
		v, ok := rec.Relation(d.Name)
		if !ok || v.Empty() {
			return NewMissingRequiredRelationshipError(rec.TypeName(), d.Name)
		}
	}
	return nil
}

// verifyGraph runs VerifyRequired on rec and on every record reachable
// through its loaded relations.
func verifyGraph(rec model.Persistable) error {
	visited := make(map[model.Persistable]struct{})
	var walk func(model.Persistable) error
	walk = func(rec model.Persistable) error {
		if _, ok := visited[rec]; ok {
			return nil
		}
		visited[rec] = struct{}{}
		if err := VerifyRequired(rec); err != nil {
			return err
		}
		for _, inst := range model.Instances(rec) {
			for _, related := range inst.Records() {
				if err := walk(related); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return walk(rec)
}
