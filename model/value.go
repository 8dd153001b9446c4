package model

// Value is the loaded value of a relation: either one record, which may be
// nil, or an ordered collection of records.
type Value struct {
	plural bool
	one    Persistable
	many   []Persistable
}

// One returns a singular relation value. A nil record marks the relation as
// loaded but empty.
func One(p Persistable) Value {
	if isNil(p) {
		p = nil
	}
	return Value{one: p}
}

// Many returns a plural relation value. An empty call marks the relation as
// loaded with no records.
func Many(ps ...Persistable) Value {
	many := make([]Persistable, 0, len(ps))
	for _, p := range ps {
		if !isNil(p) {
			many = append(many, p)
		}
	}
	return Value{plural: true, many: many}
}

// Plural reports if the value is a collection.
func (v Value) Plural() bool { return v.plural }

// Empty reports if the value holds no record.
func (v Value) Empty() bool {
	if v.plural {
		return len(v.many) == 0
	}
	return v.one == nil
}

// First returns the singular record, or the first record of a collection.
func (v Value) First() Persistable {
	if v.plural {
		if len(v.many) == 0 {
			return nil
		}
		return v.many[0]
	}
	return v.one
}

// Records returns the records of the value in order.
func (v Value) Records() []Persistable {
	if v.plural {
		return v.many
	}
	if v.one == nil {
		return nil
	}
	return []Persistable{v.one}
}

// Len returns the number of records held by the value.
func (v Value) Len() int {
	return len(v.Records())
}

func (v Value) push(ps ...Persistable) Value {
	many := append(append([]Persistable(nil), v.many...), Many(ps...).many...)
	return Value{plural: true, many: many}
}

func isNil(p Persistable) bool {
	if p == nil {
		return true
	}
	m, ok := p.(*Model)
	return ok && m == nil
}
