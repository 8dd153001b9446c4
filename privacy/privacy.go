// Package privacy provides sets of types and helpers for writing save rules
// on record types, and deal with their evaluation at runtime.
package privacy

import (
	"context"
	"errors"
	"fmt"
)

// Policy decision sentinel errors.
//
// These errors are used as return values from save rules to indicate
// how the policy evaluation should proceed. Use errors.Is() to check
// for these values:
//
//	if errors.Is(err, privacy.Allow) { ... }
//	if errors.Is(err, privacy.Deny) { ... }
//	if errors.Is(err, privacy.Skip) { ... }
var (
	// Allow may be returned by rules to indicate that the policy
	// evaluation should terminate with an allow decision.
	Allow = errors.New("persist/privacy: allow rule")

	// Deny may be returned by rules to indicate that the policy
	// evaluation should terminate with a deny decision.
	// A denied save is reported by the cascade as a false result.
	Deny = errors.New("persist/privacy: deny rule")

	// Skip may be returned by rules to indicate that the policy
	// evaluation should continue to the next rule in the chain.
	Skip = errors.New("persist/privacy: skip rule")
)

// Allowf returns a formatted wrapped Allow decision.
func Allowf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Allow)...)
}

// Denyf returns a formatted wrapped Deny decision.
func Denyf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Deny)...)
}

// Skipf returns a formatted wrapped Skip decision.
func Skipf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Skip)...)
}

// Op is the write operation a save rule is evaluated for.
type Op uint8

// Save operations.
const (
	OpCreate Op = 1 << iota // the record does not exist in storage yet.
	OpUpdate                // the record exists and is being written again.
)

// Is reports whether o matches the given operation set.
func (o Op) Is(op Op) bool { return o&op != 0 }

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "OpCreate"
	case OpUpdate:
		return "OpUpdate"
	default:
		return fmt.Sprintf("Op(%d)", uint8(o))
	}
}

// Entity is the view of a record a save rule evaluates. Rules may read and
// rewrite attributes before the row is written.
type Entity interface {
	TypeName() string
	Exists() bool
	Attribute(name string) (any, bool)
	SetAttribute(name string, v any)
}

// OpOf returns the operation the next save of e performs.
func OpOf(e Entity) Op {
	if e.Exists() {
		return OpUpdate
	}
	return OpCreate
}

// SaveRule defines the interface deciding whether a single-row save
// is allowed and optionally modify the record before it is written.
type SaveRule interface {
	EvalSave(context.Context, Entity) error
}

// SaveRuleFunc type is an adapter which allows the use of
// ordinary functions as save rules.
type SaveRuleFunc func(context.Context, Entity) error

// EvalSave returns f(ctx, e).
func (f SaveRuleFunc) EvalSave(ctx context.Context, e Entity) error {
	return f(ctx, e)
}

// SavePolicy combines multiple save rules into a single policy.
type SavePolicy []SaveRule

// EvalSave evaluates the rules in order until one returns a decision
// other than Skip.
func (policy SavePolicy) EvalSave(ctx context.Context, e Entity) error {
	for _, rule := range policy {
		switch decision := rule.EvalSave(ctx, e); {
		case decision == nil || errors.Is(decision, Skip):
		default:
			return decision
		}
	}
	return nil
}

// AlwaysAllowRule returns a rule that always returns an Allow decision.
func AlwaysAllowRule() SaveRule {
	return fixedDecision{Allow}
}

// AlwaysDenyRule returns a rule that always returns a Deny decision.
func AlwaysDenyRule() SaveRule {
	return fixedDecision{Deny}
}

// ContextSaveRule creates a save rule from a context evaluation function.
// Returning nil is equivalent to returning Skip.
func ContextSaveRule(eval func(context.Context) error) SaveRule {
	return SaveRuleFunc(func(ctx context.Context, _ Entity) error {
		return eval(ctx)
	})
}

// OnOperation evaluates the given rule only on a given save operation.
func OnOperation(rule SaveRule, op Op) SaveRule {
	return SaveRuleFunc(func(ctx context.Context, e Entity) error {
		if OpOf(e).Is(op) {
			return rule.EvalSave(ctx, e)
		}
		return Skip
	})
}

// DenyOperationRule returns a rule denying specified save operation.
func DenyOperationRule(op Op) SaveRule {
	rule := SaveRuleFunc(func(_ context.Context, e Entity) error {
		return Denyf("persist/privacy: operation %s is not allowed on %s", OpOf(e), e.TypeName())
	})
	return OnOperation(rule, op)
}

// AllowOperationRule returns a rule allowing specified save operation.
func AllowOperationRule(op Op) SaveRule {
	return OnOperation(fixedDecision{Allow}, op)
}

// PolicyProvider is an interface for types that can provide a save policy.
type PolicyProvider interface {
	Policy() SaveRule
}

// NewPolicies creates a Policies from the providers that define a policy.
func NewPolicies(providers ...PolicyProvider) Policies {
	policies := make(Policies, 0, len(providers))
	for i := range providers {
		if policy := providers[i].Policy(); policy != nil {
			policies = append(policies, policy)
		}
	}
	return policies
}

// Policies combines multiple policies into a single policy.
type Policies []SaveRule

// EvalSave evaluates the policies. If the Allow error is returned
// from one of the policies, it stops the evaluation with a nil error.
// A decision attached to the context with DecisionContext overrides
// all policies.
func (policies Policies) EvalSave(ctx context.Context, e Entity) error {
	if decision, ok := DecisionFromContext(ctx); ok {
		return decision
	}
	for _, policy := range policies {
		switch decision := policy.EvalSave(ctx, e); {
		case decision == nil || errors.Is(decision, Skip):
		case errors.Is(decision, Allow):
			return nil
		default:
			return decision
		}
	}
	return nil
}

type decisionCtxKey struct{}

// DecisionContext creates a new context from the given parent context with
// a policy decision attach to it.
func DecisionContext(parent context.Context, decision error) context.Context {
	if decision == nil || errors.Is(decision, Skip) {
		return parent
	}
	return context.WithValue(parent, decisionCtxKey{}, decision)
}

// DecisionFromContext retrieves the policy decision from the context.
func DecisionFromContext(ctx context.Context) (error, bool) {
	decision, ok := ctx.Value(decisionCtxKey{}).(error)
	if ok && errors.Is(decision, Allow) {
		decision = nil
	}
	return decision, ok
}

type fixedDecision struct {
	decision error
}

func (f fixedDecision) EvalSave(context.Context, Entity) error {
	return f.decision
}
