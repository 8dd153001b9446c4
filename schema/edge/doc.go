// Package edge provides fluent builders for declaring relationships between
// record types.
//
// Edges are declared once, at the type level, and never inferred at runtime.
// The kind of an edge decides when the related records are written relative
// to their owner during a cascade.
//
// # Edge Kinds
//
//	// Owned: the declaring type holds the foreign key. Written before the owner.
//	edge.BelongsTo("user", "User")                 // OwnedSingular
//	edge.MorphTo("commentable")                    // PolymorphicOwned
//	edge.BelongsToEach("reviewers", "User")        // OwnedPlural
//
//	// Dependent: the related type holds the foreign key. Written after the owner.
//	edge.HasOne("details", "PostDetails")          // DependentSingular
//	edge.HasMany("posts", "Post")                  // DependentPlural
//	edge.MorphMany("comments", "Comment", "commentable") // PolymorphicDependent
//
//	// Association: a pivot row links both sides once both exist.
//	edge.BelongsToMany("tags", "Tag")              // ManyToManyAssociation
//
// # Edge Options
//
//	edge.HasOne("details", "PostDetails").
//	    Field("post_id").   // foreign key column on post_details
//	    Required().         // must be attached before a post is saved
//	    Comment("Post details")
//
//	edge.BelongsToMany("tags", "Tag").
//	    Through("post_tag", "post_id", "tag_id")
//
// Foreign key, morph type and pivot defaults are resolved when the edge is
// registered on a schema.Type.
package edge
