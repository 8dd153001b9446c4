// Package schema declares record types and their relationships.
//
// A Type names the table a record is stored in, its key strategy, the
// relationships it declares through the edge package and an optional save
// policy:
//
//	var User = &schema.Type{
//	    Name: "User",
//	    Edges: []schema.Edge{
//	        edge.HasMany("posts", "Post"),
//	    },
//	}
//
//	var Post = &schema.Type{
//	    Name: "Post",
//	    Edges: []schema.Edge{
//	        edge.BelongsTo("user", "User"),
//	        edge.HasOne("details", "PostDetails").Required(),
//	        edge.MorphMany("comments", "Comment", "commentable"),
//	        edge.BelongsToMany("tags", "Tag"),
//	    },
//	    Policy: privacy.SavePolicy{mixin.Time{}},
//	}
//
// # Defaults
//
//	Table              users, posts, post_details      (snake case, plural)
//	BelongsTo key      user_id                         (edge name + "_id")
//	HasOne/HasMany key post_id                         (owner name + "_id")
//	Morph columns      commentable_id, commentable_type
//	Pivot table        post_tag                        (sorted singular names)
//	Pivot keys         post_id, tag_id
//
// Types are validated on first use. A Registry validates a set of types
// up front and checks that every edge refers to a registered type.
package schema
