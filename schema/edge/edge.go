package edge

// Kind classifies how two records reference each other. The kind decides
// whether the related record is written before or after its owner and
// which keys are copied between them.
type Kind uint8

// Relationship kinds.
const (
	// Invalid is the zero Kind; it never classifies a relationship.
	Invalid Kind = iota
	// OwnedSingular: the record holds a foreign key to one related record (belongs to).
	OwnedSingular
	// OwnedPlural: the record refers to several related records it does not own rows for.
	OwnedPlural
	// PolymorphicOwned: like OwnedSingular, resolved through a type discriminator and key pair (morph to).
	PolymorphicOwned
	// DependentSingular: one related record holds a foreign key back to this record (has one).
	DependentSingular
	// DependentPlural: many related records hold a foreign key back to this record (has many).
	DependentPlural
	// PolymorphicDependent: related records hold a key and a type discriminator back to this record.
	PolymorphicDependent
	// ManyToManyAssociation: both sides are independent; a pivot row links them.
	ManyToManyAssociation
)

var kindNames = [...]string{
	Invalid:               "invalid",
	OwnedSingular:         "owned singular",
	OwnedPlural:           "owned plural",
	PolymorphicOwned:      "polymorphic owned",
	DependentSingular:     "dependent singular",
	DependentPlural:       "dependent plural",
	PolymorphicDependent:  "polymorphic dependent",
	ManyToManyAssociation: "many to many",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// IsValid reports if the kind is one of the declared relationship kinds.
func (k Kind) IsValid() bool {
	return k > Invalid && k <= ManyToManyAssociation
}

// Through describes the pivot table of a many-to-many association.
type Through struct {
	Table string
	// ForeignPivotKey references the owner record.
	ForeignPivotKey string
	// RelatedPivotKey references the related record.
	RelatedPivotKey string
}

// A Descriptor for edge configuration.
type Descriptor struct {
	Name       string   // edge name.
	Kind       Kind     // relationship kind.
	Type       string   // related type name. Empty for MorphTo edges.
	Unique     bool     // singular edge.
	Required   bool     // must be loaded and non-empty before a save.
	ForeignKey string   // foreign key column. Defaults are resolved by the schema package.
	OwnerKey   string   // referenced key column on the owning side.
	MorphName  string   // morph prefix, e.g. "commentable".
	MorphType  string   // morph type column, e.g. "commentable_type".
	Through    *Through // pivot table for many-to-many edges.
	Comment    string   // edge comment.
}

// Singular reports if the edge holds at most one related record.
func (d *Descriptor) Singular() bool {
	return d.Unique
}

// Polymorphic reports if the edge is resolved through a type discriminator.
func (d *Descriptor) Polymorphic() bool {
	return d.Kind == PolymorphicOwned || d.Kind == PolymorphicDependent
}

// Builder is the builder for all edge kinds.
type Builder struct {
	desc *Descriptor
}

// BelongsTo returns a new edge where the declaring type holds the foreign
// key to one record of type typ.
//
//	edge.BelongsTo("user", "User")
func BelongsTo(name, typ string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Kind: OwnedSingular, Type: typ, Unique: true}}
}

// BelongsToEach returns a new edge to several records of type typ that must
// exist before the declaring record is saved.
func BelongsToEach(name, typ string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Kind: OwnedPlural, Type: typ}}
}

// MorphTo returns a new polymorphic edge to one record of any type. The
// key and type columns default to "<name>_id" and "<name>_type".
//
//	edge.MorphTo("commentable")
func MorphTo(name string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Kind: PolymorphicOwned, Unique: true, MorphName: name}}
}

// HasOne returns a new edge where one record of type typ holds the foreign
// key back to the declaring type.
//
//	edge.HasOne("details", "PostDetails")
func HasOne(name, typ string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Kind: DependentSingular, Type: typ, Unique: true}}
}

// HasMany returns a new edge where many records of type typ hold the
// foreign key back to the declaring type.
//
//	edge.HasMany("posts", "Post")
func HasMany(name, typ string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Kind: DependentPlural, Type: typ}}
}

// MorphOne returns a new polymorphic edge where one record of type typ
// refers back to the declaring type through the morph columns of morphName.
//
//	edge.MorphOne("comment", "Comment", "commentable")
func MorphOne(name, typ, morphName string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Kind: PolymorphicDependent, Type: typ, Unique: true, MorphName: morphName}}
}

// MorphMany returns a new polymorphic edge where many records of type typ
// refer back to the declaring type through the morph columns of morphName.
//
//	edge.MorphMany("comments", "Comment", "commentable")
func MorphMany(name, typ, morphName string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Kind: PolymorphicDependent, Type: typ, MorphName: morphName}}
}

// BelongsToMany returns a new many-to-many edge linked through a pivot table.
//
//	edge.BelongsToMany("tags", "Tag")
func BelongsToMany(name, typ string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Kind: ManyToManyAssociation, Type: typ}}
}

// Field sets the foreign key column of the edge. For owned edges the column
// lives on the declaring type; for dependent edges on the related type.
func (b *Builder) Field(column string) *Builder {
	b.desc.ForeignKey = column
	return b
}

// OwnerKey sets the referenced key column. Defaults to the primary key.
func (b *Builder) OwnerKey(column string) *Builder {
	b.desc.OwnerKey = column
	return b
}

// MorphType overrides the type discriminator column of a polymorphic edge.
func (b *Builder) MorphType(column string) *Builder {
	b.desc.MorphType = column
	return b
}

// Through sets the pivot table and its two key columns of a many-to-many edge.
//
//	edge.BelongsToMany("tags", "Tag").Through("post_tag", "post_id", "tag_id")
func (b *Builder) Through(table, foreignPivotKey, relatedPivotKey string) *Builder {
	b.desc.Through = &Through{Table: table, ForeignPivotKey: foreignPivotKey, RelatedPivotKey: relatedPivotKey}
	return b
}

// Required marks the edge as required: it must be attached, and non-empty
// for plural edges, before the declaring record may be saved.
func (b *Builder) Required() *Builder {
	b.desc.Required = true
	return b
}

// Comment sets the comment of the edge.
func (b *Builder) Comment(c string) *Builder {
	b.desc.Comment = c
	return b
}

// Descriptor returns the edge descriptor.
func (b *Builder) Descriptor() *Descriptor {
	return b.desc
}
