package schema_test

import (
	"testing"

	"github.com/syssam/persist/schema"
	"github.com/syssam/persist/schema/edge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeDefaults(t *testing.T) {
	t.Parallel()

	post := &schema.Type{Name: "Post"}
	require.NoError(t, post.Validate())
	assert.Equal(t, "posts", post.TableName())
	assert.Equal(t, "id", post.KeyColumn())
	assert.Equal(t, "Post", post.MorphName())
	assert.Equal(t, schema.KeyAutoIncrement, post.KeyType)
	assert.Equal(t, "Post", post.String())

	details := &schema.Type{Name: "PostDetails", Table: "details", Key: "uuid", KeyType: schema.KeyUUID, MorphClass: "post.details"}
	require.NoError(t, details.Validate())
	assert.Equal(t, "details", details.TableName())
	assert.Equal(t, "uuid", details.KeyColumn())
	assert.Equal(t, "post.details", details.MorphName())
	assert.Equal(t, "uuid", details.KeyType.String())
}

func TestEdgeDefaults(t *testing.T) {
	t.Parallel()

	post := &schema.Type{
		Name: "Post",
		Edges: []schema.Edge{
			edge.BelongsTo("user", "User"),
			edge.HasOne("details", "PostDetails").Required(),
			edge.MorphMany("comments", "Comment", "commentable"),
			edge.BelongsToMany("tags", "Tag"),
			edge.HasMany("revisions", "Revision").Field("source_id"),
		},
	}
	require.NoError(t, post.Validate())

	tests := []struct {
		name     string
		validate func(t *testing.T, d *edge.Descriptor)
	}{
		{
			name: "user",
			validate: func(t *testing.T, d *edge.Descriptor) {
				assert.Equal(t, edge.OwnedSingular, d.Kind)
				assert.Equal(t, "user_id", d.ForeignKey)
			},
		},
		{
			name: "details",
			validate: func(t *testing.T, d *edge.Descriptor) {
				assert.Equal(t, edge.DependentSingular, d.Kind)
				assert.Equal(t, "post_id", d.ForeignKey)
				assert.True(t, d.Required)
			},
		},
		{
			name: "comments",
			validate: func(t *testing.T, d *edge.Descriptor) {
				assert.Equal(t, "commentable_id", d.ForeignKey)
				assert.Equal(t, "commentable_type", d.MorphType)
			},
		},
		{
			name: "tags",
			validate: func(t *testing.T, d *edge.Descriptor) {
				require.NotNil(t, d.Through)
				assert.Equal(t, "post_tag", d.Through.Table)
				assert.Equal(t, "post_id", d.Through.ForeignPivotKey)
				assert.Equal(t, "tag_id", d.Through.RelatedPivotKey)
			},
		},
		{
			name: "revisions",
			validate: func(t *testing.T, d *edge.Descriptor) {
				assert.Equal(t, "source_id", d.ForeignKey)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := post.Edge(tt.name)
			require.True(t, ok)
			tt.validate(t, d)
		})
	}

	names := make([]string, 0, len(post.EdgeDescriptors()))
	for _, d := range post.EdgeDescriptors() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"user", "details", "comments", "tags", "revisions"}, names)
	_, ok := post.Edge("missing")
	assert.False(t, ok)
}

func TestEdgeDefaultsDoNotMutateBuilder(t *testing.T) {
	t.Parallel()

	b := edge.BelongsTo("user", "User")
	post := &schema.Type{Name: "Post", Edges: []schema.Edge{b}}
	require.NoError(t, post.Validate())
	assert.Empty(t, b.Descriptor().ForeignKey)
}

func TestMorphToDefaults(t *testing.T) {
	t.Parallel()

	comment := &schema.Type{
		Name:  "Comment",
		Edges: []schema.Edge{edge.MorphTo("commentable")},
	}
	d, ok := comment.Edge("commentable")
	require.True(t, ok)
	assert.Equal(t, edge.PolymorphicOwned, d.Kind)
	assert.Equal(t, "commentable_id", d.ForeignKey)
	assert.Equal(t, "commentable_type", d.MorphType)
}

func TestValidateErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		typ     *schema.Type
		target  error
		message string
	}{
		{
			name:    "missing_name",
			typ:     &schema.Type{},
			target:  schema.ErrInvalidSchema,
			message: "missing type name",
		},
		{
			name: "duplicate_edge",
			typ: &schema.Type{Name: "Post", Edges: []schema.Edge{
				edge.HasMany("comments", "Comment"),
				edge.HasMany("comments", "Comment"),
			}},
			target:  schema.ErrInvalidEdge,
			message: "duplicate edge name",
		},
		{
			name:    "missing_related_type",
			typ:     &schema.Type{Name: "Post", Edges: []schema.Edge{edge.HasMany("comments", "")}},
			target:  schema.ErrInvalidEdge,
			message: "missing related type",
		},
		{
			name:    "missing_morph_name",
			typ:     &schema.Type{Name: "Post", Edges: []schema.Edge{edge.MorphMany("comments", "Comment", "")}},
			target:  schema.ErrInvalidEdge,
			message: "missing morph name",
		},
		{
			name:    "self_referencing_pivot",
			typ:     &schema.Type{Name: "User", Edges: []schema.Edge{edge.BelongsToMany("friends", "User")}},
			target:  schema.ErrInvalidEdge,
			message: "pivot key columns must differ",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.typ.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestSelfReferencingPivotWithThrough(t *testing.T) {
	t.Parallel()

	user := &schema.Type{Name: "User", Edges: []schema.Edge{
		edge.BelongsToMany("friends", "User").Through("friendships", "user_id", "friend_id"),
	}}
	require.NoError(t, user.Validate())
	d, _ := user.Edge("friends")
	assert.Equal(t, "friendships", d.Through.Table)
}

func TestMutatorsAndResolvers(t *testing.T) {
	t.Parallel()

	post := &schema.Type{Name: "Post", Mutators: []string{"title"}}
	assert.True(t, post.HasMutator("title"))
	assert.False(t, post.HasMutator("body"))

	_, ok := post.Resolver("author")
	assert.False(t, ok)
	require.NoError(t, post.ResolveRelation(edge.BelongsTo("author", "User")))
	d, ok := post.Resolver("author")
	require.True(t, ok)
	assert.Equal(t, "author_id", d.ForeignKey)

	err := post.ResolveRelation(edge.HasMany("broken", ""))
	assert.ErrorIs(t, err, schema.ErrInvalidEdge)
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	user := &schema.Type{Name: "User", Edges: []schema.Edge{edge.HasMany("posts", "Post")}}
	post := &schema.Type{Name: "Post", Edges: []schema.Edge{edge.BelongsTo("user", "User")}}

	r, err := schema.NewRegistry(user)
	require.NoError(t, err)
	err = r.Check()
	require.ErrorIs(t, err, schema.ErrInvalidEdge)
	assert.Contains(t, err.Error(), "related type is not registered")

	require.NoError(t, r.Register(post))
	require.NoError(t, r.Check())

	got, ok := r.Lookup("Post")
	require.True(t, ok)
	assert.Same(t, post, got)
	assert.Same(t, user, r.MustLookup("User"))
	assert.Panics(t, func() { r.MustLookup("Tag") })
	assert.Equal(t, []*schema.Type{user, post}, r.Types())

	err = r.Register(&schema.Type{Name: "Post"})
	assert.ErrorIs(t, err, schema.ErrInvalidSchema)

	_, err = schema.NewRegistry(&schema.Type{})
	assert.Error(t, err)
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "persist: schema error on type Post: bad: "+assert.AnError.Error(),
		schema.NewSchemaError("Post", "bad", assert.AnError).Error())
	assert.Equal(t, "persist: edge error on edge user (Post -> User): oops",
		schema.NewEdgeError("Post", "User", "user", "oops").Error())
	assert.Equal(t, "persist: edge error on edge user from Post: oops",
		schema.NewEdgeError("Post", "", "user", "oops").Error())
	assert.ErrorIs(t, schema.NewSchemaError("Post", "bad", assert.AnError), assert.AnError)
}
