package handlers

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"inkwell/apperr"
	"inkwell/database"
	"inkwell/middleware"
	"inkwell/models"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid request body"))
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := models.ValidateUser(req.Name, req.Email, req.Password); err != nil {
		fail(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	// Check if email already exists
	var existing models.User
	err := database.Users.FindOne(ctx, bson.M{"email": req.Email}).Decode(&existing)
	if err == nil {
		fail(c, apperr.Validation("email already in use"))
		return
	}
	if err != mongo.ErrNoDocuments {
		fail(c, apperr.Internal("failed to check email", err))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		fail(c, apperr.Internal("failed to hash password", err))
		return
	}

	role := models.RoleRegular
	if admin := os.Getenv("ADMIN_EMAIL"); admin != "" && strings.EqualFold(admin, req.Email) {
		role = models.RoleAdmin
	}

	user := models.User{
		ID:           primitive.NewObjectID(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashed),
		Role:         role,
		CreatedAt:    time.Now().Unix(),
	}

	if _, err := database.Users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			fail(c, apperr.Validation("email already in use"))
			return
		}
		fail(c, apperr.Internal("failed to create user", err))
		return
	}

	token, err := middleware.IssueToken(user.ID.Hex(), user.Role)
	if err != nil {
		fail(c, apperr.Internal("failed to generate token", err))
		return
	}

	ok(c, http.StatusCreated, gin.H{
		"token": token,
		"user":  user,
	})
}

func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("email and password are required"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	err := database.Users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		// Same response as a wrong password, nothing to enumerate
		fail(c, apperr.Unauthenticated("invalid email or password"))
		return
	}
	if err != nil {
		fail(c, apperr.Internal("failed to look up user", err))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		fail(c, apperr.Unauthenticated("invalid email or password"))
		return
	}

	token, err := middleware.IssueToken(user.ID.Hex(), user.Role)
	if err != nil {
		fail(c, apperr.Internal("failed to generate token", err))
		return
	}

	ok(c, http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// Me resolves the current identity to a fresh user document.
func Me(c *gin.Context) {
	userID, _, err := identity(c)
	if err != nil {
		fail(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	var user models.User
	err = database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		fail(c, apperr.Unauthenticated("account no longer exists"))
		return
	}
	if err != nil {
		fail(c, apperr.Internal("failed to look up user", err))
		return
	}

	ok(c, http.StatusOK, user)
}
