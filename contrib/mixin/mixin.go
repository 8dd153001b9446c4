// Package mixin provides common save rules that fill record attributes
// before a row is written.
//
// These rules are OPTIONAL and provided as convenient starting points.
// They never decide a save: each one sets its attributes and returns
// privacy.Skip, so they compose with deciding rules in a SavePolicy.
//
// Available mixins:
//   - CreateTime: Sets created_at when a record is inserted
//   - UpdateTime: Sets updated_at on every save
//   - Time: Combines CreateTime and UpdateTime
//   - TenantID: Copies the viewer tenant into tenant_id on insert
//
// Usage:
//
//	import "github.com/syssam/persist/contrib/mixin"
//
//	var Post = &schema.Type{
//	    Name: "Post",
//	    Policy: privacy.SavePolicy{
//	        mixin.Time{},
//	        mixin.TenantID{},
//	        privacy.TenantRule("tenant_id"),
//	    },
//	}
package mixin

import (
	"context"
	"time"

	"github.com/syssam/persist/privacy"
)

// CreateTime sets the created_at attribute of new records.
// Stored records keep their value.
type CreateTime struct {
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// EvalSave implements privacy.SaveRule.
func (m CreateTime) EvalSave(_ context.Context, e privacy.Entity) error {
	if privacy.OpOf(e).Is(privacy.OpCreate) {
		if _, ok := e.Attribute("created_at"); !ok {
			e.SetAttribute("created_at", now(m.Now))
		}
	}
	return privacy.Skip
}

// create time mixin must implement `SaveRule` interface.
var _ privacy.SaveRule = (*CreateTime)(nil)

// UpdateTime sets the updated_at attribute on every save.
type UpdateTime struct {
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// EvalSave implements privacy.SaveRule.
func (m UpdateTime) EvalSave(_ context.Context, e privacy.Entity) error {
	e.SetAttribute("updated_at", now(m.Now))
	return privacy.Skip
}

// update time mixin must implement `SaveRule` interface.
var _ privacy.SaveRule = (*UpdateTime)(nil)

// Time composes CreateTime and UpdateTime. Both attributes of a new
// record receive the same instant.
//
// This is the most common mixin for tracking record timestamps.
type Time struct {
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// EvalSave implements privacy.SaveRule.
func (m Time) EvalSave(ctx context.Context, e privacy.Entity) error {
	t := now(m.Now)
	clock := func() time.Time { return t }
	_ = CreateTime{Now: clock}.EvalSave(ctx, e)
	return UpdateTime{Now: clock}.EvalSave(ctx, e)
}

// time mixin must implement `SaveRule` interface.
var _ privacy.SaveRule = (*Time)(nil)

// TenantID copies the tenant of the context viewer into the tenant_id
// attribute of new records that do not carry one. The attribute is never
// rewritten on update.
//
// Combine it with privacy.TenantRule to reject records of other tenants:
//
//	privacy.SavePolicy{mixin.TenantID{}, privacy.TenantRule("tenant_id")}
type TenantID struct{}

// EvalSave implements privacy.SaveRule.
func (TenantID) EvalSave(ctx context.Context, e privacy.Entity) error {
	if !privacy.OpOf(e).Is(privacy.OpCreate) {
		return privacy.Skip
	}
	if v, ok := e.Attribute("tenant_id"); ok && v != nil && v != "" {
		return privacy.Skip
	}
	if viewer := privacy.ViewerFromContext(ctx); viewer != nil && viewer.GetTenantID() != "" {
		e.SetAttribute("tenant_id", viewer.GetTenantID())
	}
	return privacy.Skip
}

// tenant id mixin must implement `SaveRule` interface.
var _ privacy.SaveRule = (*TenantID)(nil)

func now(fn func() time.Time) time.Time {
	if fn != nil {
		return fn()
	}
	return time.Now()
}
