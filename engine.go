package persist

import (
	"context"

	"github.com/syssam/persist/dialect"
	"github.com/syssam/persist/model"
	"github.com/syssam/persist/relation"
	"github.com/syssam/persist/schema/edge"
)

// cascade is the state of one Persist call. It is bound to the transaction
// of the call and is not safe for concurrent use.
type cascade struct {
	storage Storage
	ex      dialect.ExecQuerier
	// visited holds the records entered by this cascade. A record is
	// entered at most once, so cycles in the graph terminate.
	visited map[model.Persistable]struct{}
	// saved holds the records in the order their rows were written,
	// with their key and stored flag from before the write.
	saved []savedRecord
}

type savedRecord struct {
	rec    model.Persistable
	key    any
	exists bool
}

func newCascade(storage Storage, ex dialect.ExecQuerier) *cascade {
	return &cascade{
		storage: storage,
		ex:      ex,
		visited: make(map[model.Persistable]struct{}),
	}
}

// persist writes rec and its loaded relations: owned records first, then
// rec itself, then dependent records. A false result means a save was
// vetoed and nothing after it was attempted.
func (c *cascade) persist(ctx context.Context, rec model.Persistable) (bool, error) {
	if _, ok := c.visited[rec]; ok {
		return true, nil
	}
	c.visited[rec] = struct{}{}

	owned := model.OfKind(rec, relation.Owned...)
	for _, inst := range owned {
		for _, related := range inst.Records() {
			if ok, err := c.persist(ctx, related); err != nil || !ok {
				return false, err
			}
		}
	}
	for _, inst := range owned {
		if err := c.storage.Associate(ctx, c.ex, inst); err != nil {
			return false, err
		}
	}

	key, exists := rec.Key(), rec.Exists()
	if ok, err := c.storage.Save(ctx, c.ex, rec); err != nil || !ok {
		rec.SetKey(key)
		rec.SetExists(exists)
		return false, err
	}
	c.saved = append(c.saved, savedRecord{rec: rec, key: key, exists: exists})

	for _, inst := range model.OfKind(rec, relation.Dependent...) {
		for _, related := range inst.Records() {
			if relation.PropagatesKey(inst.Kind()) {
				related.SetAttribute(inst.ForeignKeyName(), inst.ParentKeyValue())
				if col := inst.MorphTypeFieldName(); col != "" {
					related.SetAttribute(col, inst.MorphTypeValue())
				}
			}
			if ok, err := c.persist(ctx, related); err != nil || !ok {
				return false, err
			}
			if inst.Kind() == edge.ManyToManyAssociation {
				if err := c.storage.Attach(ctx, c.ex, inst, related); err != nil {
					return false, err
				}
			}
		}
	}
	return true, nil
}

// restore resets the key and stored flag of every saved record after the
// writes of the cascade were rolled back, so the graph can be persisted
// again.
func (c *cascade) restore() {
	for i := len(c.saved) - 1; i >= 0; i-- {
		s := c.saved[i]
		s.rec.SetKey(s.key)
		s.rec.SetExists(s.exists)
	}
}

// clearEvents empties the event queues of the saved records once their
// events were delivered and the writes are durable.
func (c *cascade) clearEvents() {
	for _, s := range c.saved {
		s.rec.ClearEvents()
	}
}
