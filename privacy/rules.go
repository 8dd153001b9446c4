package privacy

import (
	"context"
	"fmt"
	"slices"
)

// Viewer represents the authenticated user on whose behalf records are saved.
type Viewer interface {
	// GetID returns the viewer's unique identifier.
	GetID() string
	// GetRoles returns the viewer's roles.
	GetRoles() []string
	// GetTenantID returns the viewer's tenant identifier, or an empty string.
	GetTenantID() string
}

type viewerCtxKey struct{}

// WithViewer returns a new context with the viewer attached.
func WithViewer(ctx context.Context, viewer Viewer) context.Context {
	return context.WithValue(ctx, viewerCtxKey{}, viewer)
}

// ViewerFromContext retrieves the viewer from the context.
// Returns nil if no viewer is present.
func ViewerFromContext(ctx context.Context) Viewer {
	v, _ := ctx.Value(viewerCtxKey{}).(Viewer)
	return v
}

// SimpleViewer is a basic implementation of the Viewer interface.
type SimpleViewer struct {
	UserID   string
	Roles    []string
	TenantID string
}

// GetID returns the user ID.
func (v *SimpleViewer) GetID() string { return v.UserID }

// GetRoles returns the user's roles.
func (v *SimpleViewer) GetRoles() []string { return v.Roles }

// GetTenantID returns the tenant ID.
func (v *SimpleViewer) GetTenantID() string { return v.TenantID }

// DenyIfNoViewer returns a rule that denies the save if no viewer is present
// in the context.
//
//	privacy.SavePolicy{
//	    privacy.DenyIfNoViewer(),
//	    privacy.HasRole("admin"),
//	    privacy.AlwaysDenyRule(),
//	}
func DenyIfNoViewer() SaveRule {
	return ContextSaveRule(func(ctx context.Context) error {
		if ViewerFromContext(ctx) == nil {
			return Denyf("privacy: viewer required")
		}
		return Skip
	})
}

// HasRole returns a rule that allows the save if the viewer has the specified role.
func HasRole(role string) SaveRule {
	return HasAnyRole(role)
}

// HasAnyRole returns a rule that allows the save if the viewer has any of
// the specified roles. Skips otherwise.
func HasAnyRole(roles ...string) SaveRule {
	return ContextSaveRule(func(ctx context.Context) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Skip
		}
		viewerRoles := viewer.GetRoles()
		for _, role := range roles {
			if slices.Contains(viewerRoles, role) {
				return Allow
			}
		}
		return Skip
	})
}

// IsOwner returns a rule that allows the save if the attribute holds the
// viewer's ID.
//
//	privacy.SavePolicy{
//	    privacy.DenyIfNoViewer(),
//	    privacy.IsOwner("user_id"),
//	    privacy.AlwaysDenyRule(),
//	}
func IsOwner(attr string) SaveRule {
	return SaveRuleFunc(func(ctx context.Context, e Entity) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Skip
		}
		value, ok := e.Attribute(attr)
		if !ok || value == nil {
			return Skip
		}
		if stringify(value) == viewer.GetID() {
			return Allow
		}
		return Skip
	})
}

// TenantRule returns a rule that denies the save if the attribute holds a
// tenant other than the viewer's tenant.
func TenantRule(attr string) SaveRule {
	return SaveRuleFunc(func(ctx context.Context, e Entity) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil || viewer.GetTenantID() == "" {
			return Skip
		}
		value, ok := e.Attribute(attr)
		if !ok || value == nil {
			return Skip
		}
		if stringify(value) == viewer.GetTenantID() {
			return Allow
		}
		return Denyf("privacy: tenant mismatch on %s", e.TypeName())
	})
}

func stringify(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
