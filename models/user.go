package models

import (
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/apperr"
)

var validate = validator.New()

const (
	RoleRegular = "regular"
	RoleAdmin   = "admin"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Role         string             `bson:"role" json:"role"`
	CreatedAt    int64              `bson:"createdAt" json:"createdAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ValidateUser checks the fields collected at registration. The password is
// validated before hashing, so it is passed separately.
func ValidateUser(name, email, password string) error {
	if name == "" {
		return apperr.Validation("name is required")
	}
	if err := validate.Var(email, "required,email"); err != nil {
		return apperr.Validation("a valid email is required")
	}
	if len(password) < 6 {
		return apperr.Validation("password must be at least 6 characters")
	}
	return nil
}
