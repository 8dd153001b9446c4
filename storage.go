package persist

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/syssam/persist/dialect"
	"github.com/syssam/persist/dialect/sql/sqlgraph"
	"github.com/syssam/persist/model"
	"github.com/syssam/persist/privacy"
	"github.com/syssam/persist/schema"
	"github.com/syssam/persist/schema/edge"
)

// Storage writes single records and relationship links. Every method runs
// against the ExecQuerier of the cascade transaction.
type Storage interface {
	// Save writes the row of rec. It returns false, with a nil error,
	// when the save is vetoed.
	Save(ctx context.Context, ex dialect.ExecQuerier, rec model.Persistable) (bool, error)
	// Associate copies the keys of the persisted owned records of inst
	// onto its parent.
	Associate(ctx context.Context, ex dialect.ExecQuerier, inst model.Instance) error
	// Attach links the parent of inst and related through a pivot row.
	Attach(ctx context.Context, ex dialect.ExecQuerier, inst model.Instance, related model.Persistable) error
}

// SQLStorage is the Storage of SQL databases. Saves are vetoed by the save
// policy of the record type or by a decision attached to the context.
type SQLStorage struct {
	dialect string
	logger  *slog.Logger
}

// NewSQLStorage returns a SQLStorage writing statements of the given dialect.
func NewSQLStorage(dialect string, logger *slog.Logger) *SQLStorage {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLStorage{dialect: dialect, logger: logger}
}

// Save implements Storage. New records are inserted and receive their key,
// stored records are updated with all their attributes.
func (s *SQLStorage) Save(ctx context.Context, ex dialect.ExecQuerier, rec model.Persistable) (bool, error) {
	t := rec.Type()
	policies := privacy.Policies{}
	if t.Policy != nil {
		policies = append(policies, t.Policy)
	}
	switch err := policies.EvalSave(ctx, rec); {
	case err == nil:
	case errors.Is(err, privacy.Deny):
		s.logger.WarnContext(ctx, "save vetoed", "type", t.Name, "reason", err)
		return false, nil
	default:
		return false, err
	}
	spec := &sqlgraph.NodeSpec{
		Table: t.TableName(),
		ID:    &sqlgraph.FieldSpec{Column: t.KeyColumn(), Value: rec.Key()},
	}
	for _, a := range rec.Attributes() {
		spec.Fields = append(spec.Fields, &sqlgraph.FieldSpec{Column: a.Name, Value: a.Value})
	}
	if rec.Exists() {
		if err := sqlgraph.UpdateNode(ctx, ex, s.dialect, spec); err != nil {
			return false, NewMutationError(t.Name, "update", err)
		}
		s.logger.DebugContext(ctx, "record updated", "type", t.Name, "key", rec.Key())
		return true, nil
	}
	if spec.ID.Value == nil && t.KeyType == schema.KeyUUID {
		spec.ID.Value = uuid.NewString()
	}
	if err := sqlgraph.CreateNode(ctx, ex, s.dialect, spec); err != nil {
		return false, NewMutationError(t.Name, "create", err)
	}
	rec.SetKey(spec.ID.Value)
	rec.MarkExists()
	s.logger.DebugContext(ctx, "record created", "type", t.Name, "key", rec.Key())
	return true, nil
}

// Associate implements Storage. The foreign key of the parent receives the
// key of the related record, and for polymorphic edges the type column
// receives its morph class. A plural owned edge has no single column to
// hold its keys and is left as is. A related record without a key, or
// without the owner key attribute, fails with ErrKeyNotAssigned.
func (s *SQLStorage) Associate(_ context.Context, _ dialect.ExecQuerier, inst model.Instance) error {
	if inst.Kind() == edge.OwnedPlural {
		return nil
	}
	related := inst.Value.First()
	if related == nil {
		return nil
	}
	key := related.Key()
	if inst.Edge.OwnerKey != "" {
		key, _ = related.Attribute(inst.Edge.OwnerKey)
	}
	if key == nil {
		return NewMutationError(inst.Parent.TypeName(), "associate "+inst.Name, ErrKeyNotAssigned)
	}
	inst.Parent.SetAttribute(inst.ForeignKeyName(), key)
	if inst.Kind() == edge.PolymorphicOwned {
		inst.Parent.SetAttribute(inst.MorphTypeFieldName(), related.Type().MorphName())
	}
	return nil
}

// Attach implements Storage. An existing pivot row is not inserted twice.
func (s *SQLStorage) Attach(ctx context.Context, ex dialect.ExecQuerier, inst model.Instance, related model.Persistable) error {
	through := inst.Edge.Through
	parentKey, relatedKey := inst.ParentKeyValue(), related.Key()
	if parentKey == nil || relatedKey == nil {
		return NewMutationError(inst.Parent.TypeName(), "attach "+inst.Name, ErrKeyNotAssigned)
	}
	inserted, err := sqlgraph.AddEdge(ctx, ex, s.dialect, &sqlgraph.EdgeSpec{
		Table:   through.Table,
		Columns: [2]string{through.ForeignPivotKey, through.RelatedPivotKey},
		Values:  [2]any{parentKey, relatedKey},
	})
	if err != nil {
		return NewMutationError(inst.Parent.TypeName(), "attach "+inst.Name, err)
	}
	s.logger.DebugContext(ctx, "pivot attached", "table", through.Table, "inserted", inserted)
	return nil
}

var _ Storage = (*SQLStorage)(nil)
