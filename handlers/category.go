package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"inkwell/apperr"
	"inkwell/database"
	"inkwell/models"
)

// ListCategories returns all categories, name-sorted.
func ListCategories(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	cursor, err := database.Categories.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		fail(c, apperr.Internal("failed to fetch categories", err))
		return
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		fail(c, apperr.Internal("failed to decode categories", err))
		return
	}

	ok(c, http.StatusOK, categories)
}

type CreateCategoryRequest struct {
	Name string `json:"name"`
}

// CreateCategory adds a category. Admin only; the route mounts the check.
func CreateCategory(c *gin.Context) {
	_, role, err := identity(c)
	if err != nil {
		fail(c, err)
		return
	}
	if role != models.RoleAdmin {
		fail(c, apperr.Forbidden("only admins may manage categories"))
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid request body"))
		return
	}

	category, err := models.NewCategory(req.Name)
	if err != nil {
		fail(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	if _, err := database.Categories.InsertOne(ctx, category); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			fail(c, apperr.Validation("a category with that name already exists"))
			return
		}
		fail(c, apperr.Internal("failed to create category", err))
		return
	}

	ok(c, http.StatusCreated, category)
}
