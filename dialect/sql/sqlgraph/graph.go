// Package sqlgraph provides the row-level primitives used to write a record
// graph: creating and updating a single node, and linking two nodes through
// a pivot table.
package sqlgraph

import (
	"context"
	"fmt"

	"github.com/syssam/persist/dialect"
	"github.com/syssam/persist/dialect/sql"
)

// FieldSpec holds the information for updating a field column in the database.
type FieldSpec struct {
	Column string
	Value  any
}

// NodeSpec defines the information for a single row.
type NodeSpec struct {
	Table  string
	ID     *FieldSpec
	Fields []*FieldSpec
}

// EdgeSpec holds the information for a pivot row linking two nodes.
type EdgeSpec struct {
	Table string
	// Columns are the two pivot columns: the owner key column
	// and the related key column, in this order.
	Columns [2]string
	// Values are the key values for Columns.
	Values [2]any
}

// CreateNode applies the NodeSpec on the graph. If the ID value is nil,
// the database generates it and the NodeSpec is updated with the new value.
func CreateNode(ctx context.Context, drv dialect.ExecQuerier, d string, spec *NodeSpec) error {
	if spec.ID == nil {
		return fmt.Errorf("sqlgraph: missing id spec for table %q", spec.Table)
	}
	insert := sql.Dialect(d).Insert(spec.Table)
	if spec.ID.Value != nil {
		insert.Set(spec.ID.Column, spec.ID.Value)
	}
	for _, f := range spec.Fields {
		insert.Set(f.Column, f.Value)
	}
	if spec.ID.Value != nil {
		query, args := insert.Query()
		return wrapError(drv.Exec(ctx, query, args, nil))
	}
	if d == dialect.Postgres {
		query, args := insert.Returning(spec.ID.Column).Query()
		rows := &sql.Rows{}
		if err := drv.Query(ctx, query, args, rows); err != nil {
			return wrapError(err)
		}
		id, err := sql.ScanInt64(rows)
		if err != nil {
			return fmt.Errorf("sqlgraph: scan returned id: %w", err)
		}
		spec.ID.Value = id
		return nil
	}
	query, args := insert.Query()
	var res sql.Result
	if err := drv.Exec(ctx, query, args, &res); err != nil {
		return wrapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlgraph: last insert id: %w", err)
	}
	spec.ID.Value = id
	return nil
}

// UpdateNode writes the NodeSpec fields to the row identified by its ID.
// A spec without fields is a no-op. If no row has the ID, the returned
// error wraps sql.ErrNoRows.
func UpdateNode(ctx context.Context, drv dialect.ExecQuerier, d string, spec *NodeSpec) error {
	if spec.ID == nil || spec.ID.Value == nil {
		return fmt.Errorf("sqlgraph: missing id value for update on table %q", spec.Table)
	}
	update := sql.Dialect(d).Update(spec.Table)
	for _, f := range spec.Fields {
		update.Set(f.Column, f.Value)
	}
	if update.Empty() {
		return nil
	}
	query, args := update.Where(sql.EQ(spec.ID.Column, spec.ID.Value)).Query()
	var res sql.Result
	if err := drv.Exec(ctx, query, args, &res); err != nil {
		return wrapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlgraph: rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}
	// MySQL reports changed rows, not matched rows, so an update
	// writing the stored values affects none.
	if d == dialect.MySQL {
		exists, err := nodeExists(ctx, drv, d, spec)
		if err != nil || exists {
			return err
		}
	}
	return fmt.Errorf("sqlgraph: no %s row with %s = %v: %w", spec.Table, spec.ID.Column, spec.ID.Value, sql.ErrNoRows)
}

func nodeExists(ctx context.Context, drv dialect.ExecQuerier, d string, spec *NodeSpec) (bool, error) {
	query, args := sql.Dialect(d).
		Select("COUNT(*)").
		From(spec.Table).
		Where(sql.EQ(spec.ID.Column, spec.ID.Value)).
		Query()
	rows := &sql.Rows{}
	if err := drv.Query(ctx, query, args, rows); err != nil {
		return false, err
	}
	n, err := sql.ScanInt64(rows)
	if err != nil {
		return false, fmt.Errorf("sqlgraph: count nodes: %w", err)
	}
	return n > 0, nil
}

// AddEdge inserts the pivot row described by the EdgeSpec, unless an
// identical row already exists. It reports whether a row was inserted.
func AddEdge(ctx context.Context, drv dialect.ExecQuerier, d string, spec *EdgeSpec) (bool, error) {
	exists, err := edgeExists(ctx, drv, d, spec)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	query, args := sql.Dialect(d).
		Insert(spec.Table).
		Columns(spec.Columns[0], spec.Columns[1]).
		Values(spec.Values[0], spec.Values[1]).
		Query()
	if err := drv.Exec(ctx, query, args, nil); err != nil {
		return false, wrapError(err)
	}
	return true, nil
}

func edgeExists(ctx context.Context, drv dialect.ExecQuerier, d string, spec *EdgeSpec) (bool, error) {
	query, args := sql.Dialect(d).
		Select("COUNT(*)").
		From(spec.Table).
		Where(sql.EQ(spec.Columns[0], spec.Values[0])).
		Where(sql.EQ(spec.Columns[1], spec.Values[1])).
		Query()
	rows := &sql.Rows{}
	if err := drv.Query(ctx, query, args, rows); err != nil {
		return false, err
	}
	n, err := sql.ScanInt64(rows)
	if err != nil {
		return false, fmt.Errorf("sqlgraph: count edges: %w", err)
	}
	return n > 0, nil
}
