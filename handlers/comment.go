package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"inkwell/apperr"
	"inkwell/database"
	"inkwell/models"
)

type commentRow struct {
	models.Comment `bson:",inline"`
	AuthorDoc      *models.PostAuthor `bson:"authorDoc"`
}

// postExists checks the comment target. Comments hang off posts only.
func postExists(ctx context.Context, id primitive.ObjectID) error {
	err := database.Posts.FindOne(ctx, bson.M{"_id": id}).Err()
	if err == mongo.ErrNoDocuments {
		return apperr.NotFound("post not found")
	}
	if err != nil {
		return apperr.Internal("failed to fetch post", err)
	}
	return nil
}

// ListComments returns a post's comments, newest first, with the author
// name expanded.
func ListComments(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, apperr.NotFound("post not found"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	if err := postExists(ctx, postID); err != nil {
		fail(c, err)
		return
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "post", Value: postID}}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "author"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "authorDoc"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$authorDoc"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}

	cursor, err := database.Comments.Aggregate(ctx, pipeline)
	if err != nil {
		fail(c, apperr.Internal("failed to fetch comments", err))
		return
	}
	defer cursor.Close(ctx)

	var rows []commentRow
	if err := cursor.All(ctx, &rows); err != nil {
		fail(c, apperr.Internal("failed to decode comments", err))
		return
	}

	comments := make([]*models.Comment, len(rows))
	for i := range rows {
		cm := rows[i].Comment
		cm.Author = rows[i].AuthorDoc
		comments[i] = &cm
	}

	ok(c, http.StatusOK, comments)
}

type AddCommentRequest struct {
	Content string `json:"content"`
}

// AddComment appends a comment to a post for the authenticated user.
// Comments are append-only; there is no edit or delete.
func AddComment(c *gin.Context) {
	userID, _, err := identity(c)
	if err != nil {
		fail(c, err)
		return
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, apperr.NotFound("post not found"))
		return
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid request body"))
		return
	}
	if err := models.ValidateComment(req.Content); err != nil {
		fail(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	if err := postExists(ctx, postID); err != nil {
		fail(c, err)
		return
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		PostID:    postID,
		AuthorID:  userID,
		Content:   req.Content,
		CreatedAt: time.Now().Unix(),
	}

	if _, err := database.Comments.InsertOne(ctx, comment); err != nil {
		fail(c, apperr.Internal("failed to create comment", err))
		return
	}

	ok(c, http.StatusCreated, comment)
}
