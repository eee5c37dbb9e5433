package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/apperr"
)

type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PostID    primitive.ObjectID `bson:"post" json:"postId"`
	AuthorID  primitive.ObjectID `bson:"author" json:"-"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt int64              `bson:"createdAt" json:"createdAt"`

	Author *PostAuthor `bson:"-" json:"author,omitempty"`
}

func ValidateComment(content string) error {
	if content == "" {
		return apperr.Validation("comment content is required")
	}
	return nil
}
