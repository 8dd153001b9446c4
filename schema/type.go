package schema

import (
	"slices"
	"sync"

	"github.com/go-openapi/inflect"

	"github.com/syssam/persist/privacy"
	"github.com/syssam/persist/schema/edge"
)

// KeyType is the primary key strategy of a type.
type KeyType uint8

// Key strategies.
const (
	// KeyAutoIncrement keys are assigned by the database on insert.
	KeyAutoIncrement KeyType = iota
	// KeyUUID keys are generated on the client before insert.
	KeyUUID
)

func (k KeyType) String() string {
	if k == KeyUUID {
		return "uuid"
	}
	return "auto_increment"
}

// Edge is implemented by the builders of the edge package.
type Edge interface {
	Descriptor() *edge.Descriptor
}

// Type declares a record type: its storage location, its relationships and
// the policy evaluated before every save.
//
//	var Post = &schema.Type{
//	    Name: "Post",
//	    Edges: []schema.Edge{
//	        edge.BelongsTo("user", "User"),
//	        edge.HasOne("details", "PostDetails").Required(),
//	        edge.MorphMany("comments", "Comment", "commentable"),
//	    },
//	}
//
// Unset fields take their defaults the first time the type is used: the
// table is the pluralized snake case of the name, the key column is "id"
// and the morph class is the name.
type Type struct {
	Name       string
	Table      string
	Key        string
	KeyType    KeyType
	MorphClass string
	Edges      []Edge
	// Mutators lists attribute names with custom accessors. A mutator
	// shadows an edge of the same name.
	Mutators []string
	Policy   privacy.SaveRule
	Comment  string

	once   sync.Once
	err    error
	edges  []*edge.Descriptor
	byName map[string]*edge.Descriptor

	mu        sync.RWMutex
	resolvers map[string]*edge.Descriptor
}

// Validate resolves the defaults of the type and its edges and reports the
// first declaration error.
func (t *Type) Validate() error {
	t.once.Do(t.init)
	return t.err
}

// TableName returns the table the type is stored in.
func (t *Type) TableName() string {
	t.once.Do(t.init)
	return t.Table
}

// KeyColumn returns the primary key column of the type.
func (t *Type) KeyColumn() string {
	t.once.Do(t.init)
	return t.Key
}

// MorphName returns the value written to morph type columns for records
// of this type.
func (t *Type) MorphName() string {
	t.once.Do(t.init)
	return t.MorphClass
}

// Edge returns the declared edge with the given name.
func (t *Type) Edge(name string) (*edge.Descriptor, bool) {
	t.once.Do(t.init)
	d, ok := t.byName[name]
	return d, ok
}

// EdgeDescriptors returns the declared edges in declaration order.
func (t *Type) EdgeDescriptors() []*edge.Descriptor {
	t.once.Do(t.init)
	return t.edges
}

// HasMutator reports if an attribute mutator is declared for name.
func (t *Type) HasMutator(name string) bool {
	return slices.Contains(t.Mutators, name)
}

// ResolveRelation registers a relation resolved at runtime. A resolver takes
// precedence over a declared edge or mutator of the same name.
func (t *Type) ResolveRelation(e Edge) error {
	t.once.Do(t.init)
	d := t.resolve(e.Descriptor())
	if err := t.check(d); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.resolvers == nil {
		t.resolvers = make(map[string]*edge.Descriptor)
	}
	t.resolvers[d.Name] = d
	return nil
}

// Resolver returns the runtime resolver registered for name.
func (t *Type) Resolver(name string) (*edge.Descriptor, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	d, ok := t.resolvers[name]
	return d, ok
}

func (t *Type) String() string {
	return t.Name
}

func (t *Type) init() {
	if t.Name == "" {
		t.err = NewSchemaError("", "missing type name", nil)
		return
	}
	if t.Table == "" {
		t.Table = inflect.Pluralize(snake(t.Name))
	}
	if t.Key == "" {
		t.Key = "id"
	}
	if t.MorphClass == "" {
		t.MorphClass = t.Name
	}
	t.byName = make(map[string]*edge.Descriptor, len(t.Edges))
	for _, e := range t.Edges {
		d := t.resolve(e.Descriptor())
		if err := t.check(d); err != nil {
			t.err = err
			return
		}
		if _, ok := t.byName[d.Name]; ok {
			t.err = NewEdgeError(t.Name, d.Type, d.Name, "duplicate edge name")
			return
		}
		t.byName[d.Name] = d
		t.edges = append(t.edges, d)
	}
}

// resolve returns a copy of d with its key and pivot defaults filled in.
func (t *Type) resolve(d *edge.Descriptor) *edge.Descriptor {
	c := *d
	if d.Through != nil {
		through := *d.Through
		c.Through = &through
	}
	switch c.Kind {
	case edge.OwnedSingular, edge.OwnedPlural:
		if c.ForeignKey == "" {
			c.ForeignKey = snake(c.Name) + "_id"
		}
	case edge.PolymorphicOwned, edge.PolymorphicDependent:
		if c.MorphName == "" {
			break
		}
		if c.ForeignKey == "" {
			c.ForeignKey = c.MorphName + "_id"
		}
		if c.MorphType == "" {
			c.MorphType = c.MorphName + "_type"
		}
	case edge.DependentSingular, edge.DependentPlural:
		if c.ForeignKey == "" {
			c.ForeignKey = snake(t.Name) + "_id"
		}
	case edge.ManyToManyAssociation:
		owner, related := snake(t.Name), snake(c.Type)
		if c.Through == nil {
			c.Through = &edge.Through{}
		}
		if c.Through.Table == "" {
			names := []string{owner, related}
			slices.Sort(names)
			c.Through.Table = names[0] + "_" + names[1]
		}
		if c.Through.ForeignPivotKey == "" {
			c.Through.ForeignPivotKey = owner + "_id"
		}
		if c.Through.RelatedPivotKey == "" {
			c.Through.RelatedPivotKey = related + "_id"
		}
	}
	return &c
}

func (t *Type) check(d *edge.Descriptor) error {
	switch {
	case d.Name == "":
		return NewEdgeError(t.Name, d.Type, "", "missing edge name")
	case !d.Kind.IsValid():
		return NewEdgeError(t.Name, d.Type, d.Name, "invalid edge kind")
	case d.Polymorphic() && d.MorphName == "":
		return NewEdgeError(t.Name, d.Type, d.Name, "missing morph name")
	case d.Kind != edge.PolymorphicOwned && d.Type == "":
		return NewEdgeError(t.Name, "", d.Name, "missing related type")
	case d.Kind == edge.ManyToManyAssociation && d.Through.ForeignPivotKey == d.Through.RelatedPivotKey:
		return NewEdgeError(t.Name, d.Type, d.Name, "pivot key columns must differ")
	}
	return nil
}

// snake returns the snake case form of a type or edge name.
func snake(s string) string {
	return inflect.Underscore(s)
}
