package models

import (
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/apperr"
)

const (
	TitleMaxLen   = 100
	ExcerptMaxLen = 500
)

type Post struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title         string               `bson:"title" json:"title"`
	Content       string               `bson:"content" json:"content"`
	Excerpt       string               `bson:"excerpt,omitempty" json:"excerpt,omitempty"`
	FeaturedImage string               `bson:"featuredImage,omitempty" json:"featuredImage,omitempty"`
	CategoryIDs   []primitive.ObjectID `bson:"categories" json:"-"`
	AuthorID      primitive.ObjectID   `bson:"author" json:"-"`
	CreatedAt     int64                `bson:"createdAt" json:"createdAt"`
	UpdatedAt     int64                `bson:"updatedAt" json:"updatedAt"`

	// Populated in responses only.
	Author     *PostAuthor   `bson:"-" json:"author,omitempty"`
	Categories []CategoryRef `bson:"-" json:"categories"`
}

// PostAuthor is the display subset of User expanded into post responses.
type PostAuthor struct {
	ID   primitive.ObjectID `bson:"_id" json:"id"`
	Name string             `bson:"name" json:"name"`
}

// CategoryRef is the display subset of Category expanded into post responses.
type CategoryRef struct {
	ID   primitive.ObjectID `bson:"_id" json:"id"`
	Name string             `bson:"name" json:"name"`
	Slug string             `bson:"slug" json:"slug"`
}

// ValidatePost enforces the field constraints shared by create and update.
// Limits are in characters, not bytes.
func ValidatePost(title, content, excerpt string) error {
	if title == "" {
		return apperr.Validation("title is required")
	}
	if utf8.RuneCountInString(title) > TitleMaxLen {
		return apperr.Validation("title must be at most 100 characters")
	}
	if content == "" {
		return apperr.Validation("content is required")
	}
	if utf8.RuneCountInString(excerpt) > ExcerptMaxLen {
		return apperr.Validation("excerpt must be at most 500 characters")
	}
	return nil
}
