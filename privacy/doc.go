// Package privacy provides save policies evaluated before every single-row
// write of a cascade.
//
// # Core Concepts
//
//   - SaveRule: a function that returns Allow, Deny, or Skip decisions
//   - SavePolicy: an ordered list of rules evaluated until one decides
//   - Viewer: an interface representing the current user
//
// # Defining Policies
//
// Policies are attached to record types:
//
//	post := &schema.Type{
//	    Name: "Post",
//	    Policy: privacy.SavePolicy{
//	        privacy.DenyIfNoViewer(),
//	        privacy.HasRole("admin"),
//	        privacy.IsOwner("user_id"),
//	        privacy.AlwaysDenyRule(),
//	    },
//	}
//
// # Rule Evaluation
//
// Rules are evaluated in order until one returns a final decision:
//
//   - Allow: permits the save and stops evaluation
//   - Deny: vetoes the save and stops evaluation
//   - Skip: continues to the next rule
//
// If all rules return Skip, the save is permitted. A vetoed save is not an
// error: the cascade reports false and rolls back its transaction. Any other
// error returned by a rule aborts the cascade with that error.
//
// # Rewriting Attributes
//
// Rules receive the record as an Entity and may set attributes before the
// row is written, which is how the timestamp and tenant rules of the
// contrib/mixin package work.
//
// # Context Integration
//
//	ctx := privacy.WithViewer(ctx, &privacy.SimpleViewer{
//	    UserID: "user-123",
//	    Roles:  []string{"user"},
//	})
//	ok, err := p.Persist(ctx, post)
//
// A decision attached with DecisionContext overrides every policy, which is
// useful for system tasks:
//
//	ctx = privacy.DecisionContext(ctx, privacy.Allow)
package privacy
