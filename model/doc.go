// Package model provides the in-memory record a cascade operates on.
//
// A Model holds ordered attributes, an optional primary key, the relations
// loaded on it and a queue of domain events. Assigning a record or a
// collection of records to a relationship name attaches it as a relation:
//
//	post := model.New(Post).
//		Set("title", "t").
//		Set("user", model.New(User).Set("name", "u")).
//		Set("comments", []model.Persistable{
//			model.New(Comment).Set("body", "first"),
//		})
//	_ = post.Push("comments", model.New(Comment).Set("body", "second"))
//
// Only relations attached this way take part in a cascade; nothing is ever
// loaded from storage.
package model
