// Package persist saves graphs of related records in one transaction.
//
// An application builds records in memory, attaches related records to
// them, and calls Persist once:
//
//	user := model.New(User).Set("name", "u")
//	post := model.New(Post).
//		Set("title", "t").
//		Set("user", user).
//		Set("details", model.New(PostDetails).Set("body", "...")).
//		Set("comments", []model.Persistable{
//			model.New(Comment).Set("body", "first"),
//		})
//
//	p, err := persist.New(sql.OpenDB(dialect.SQLite, db))
//	if err != nil {
//		return err
//	}
//	ok, err := p.Persist(ctx, post)
//
// # Ordering
//
// Each record is written in three steps:
//
//  1. Records of owned relations (BelongsTo, MorphTo, BelongsToEach) are
//     persisted first, and their keys are copied onto the record.
//  2. The record row is inserted, or updated if it already exists.
//  3. Records of dependent relations (HasOne, HasMany, MorphOne, MorphMany)
//     receive the record key, and the morph class for polymorphic edges,
//     and are persisted. BelongsToMany records are persisted and linked
//     through their pivot table.
//
// Relations are processed in the order they were attached. Only attached
// relations are written; nothing is loaded from storage.
//
// # Outcomes
//
// Persist has three outcomes:
//
//   - true: every record of the graph was written and committed.
//   - false: a save was vetoed by a privacy policy. Nothing was written.
//   - an error: a required relationship is missing (checked before the
//     transaction is opened), or the database failed. Nothing was written.
//
// On false or an error, records saved by the call get back the key and
// stored flag they had before it, so the graph can be fixed and persisted
// again.
//
// # Transactions
//
// One transaction covers the whole cascade. A transaction attached to the
// context with NewTxContext is joined instead, and the cascade runs inside
// a savepoint of it.
//
// # Events
//
// Records may queue domain events with RecordEvent. With WithEvents, the
// events of all saved records are dispatched inside the transaction after
// the cascade is written and before it commits; event.Outbox stores them
// in the same transaction. Queues are cleared once the transaction commits;
// a failed dispatch or commit keeps them.
package persist
