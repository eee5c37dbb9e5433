package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/apperr"
	"inkwell/middleware"
	"inkwell/storage"
)

// Per-request deadline on store calls, shared across all handler files.
const dbTimeout = 10 * time.Second

var images *storage.ImageStore

// SetImageStore wires the image store used by post create/update.
func SetImageStore(store *storage.ImageStore) {
	images = store
}

// ok writes the success envelope.
func ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// fail maps a taxonomy error onto the failure envelope. Internal causes go
// to the log, never to the client.
func fail(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{
		"success": false,
		"message": apperr.Public(err),
	})
}

// identity returns the authenticated user's id and role as set by the auth
// middleware.
func identity(c *gin.Context) (primitive.ObjectID, string, error) {
	id, err := primitive.ObjectIDFromHex(c.GetString(middleware.CtxUserID))
	if err != nil {
		return primitive.NilObjectID, "", apperr.Unauthenticated("Invalid user identity")
	}
	return id, c.GetString(middleware.CtxRole), nil
}
