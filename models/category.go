package models

import (
	"unicode/utf8"

	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/apperr"
)

const CategoryNameMaxLen = 50

type Category struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name string             `bson:"name" json:"name"`
	Slug string             `bson:"slug" json:"slug"`
}

// NewCategory validates the name and derives the slug. Uniqueness of name and
// slug is enforced by indexes at insert time.
func NewCategory(name string) (*Category, error) {
	if name == "" {
		return nil, apperr.Validation("category name is required")
	}
	if utf8.RuneCountInString(name) > CategoryNameMaxLen {
		return nil, apperr.Validation("category name must be at most 50 characters")
	}
	return &Category{
		ID:   primitive.NewObjectID(),
		Name: name,
		Slug: slug.Make(name),
	}, nil
}
