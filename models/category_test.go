package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"inkwell/apperr"
)

func TestNewCategory(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantSlug string
		wantErr  bool
	}{
		{name: "simple name", input: "Tech", wantSlug: "tech"},
		{name: "multi word", input: "Web Development", wantSlug: "web-development"},
		{name: "punctuation stripped", input: "Go & Friends", wantSlug: "go-and-friends"},
		{name: "empty name", input: "", wantErr: true},
		{name: "name at limit", input: strings.Repeat("x", 50), wantSlug: strings.Repeat("x", 50)},
		{name: "name over limit", input: strings.Repeat("x", 51), wantErr: true},
		{name: "multibyte name at limit", input: strings.Repeat("å", 50), wantSlug: strings.Repeat("a", 50)},
		{name: "multibyte name over limit", input: strings.Repeat("å", 51), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, err := NewCategory(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, apperr.IsKind(err, apperr.KindValidation))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.input, cat.Name)
			assert.Equal(t, tt.wantSlug, cat.Slug)
			assert.False(t, cat.ID.IsZero())
		})
	}
}

func TestValidateUser(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		email    string
		password string
		wantErr  bool
	}{
		{name: "valid", userName: "Ada", email: "ada@example.com", password: "hunter2x"},
		{name: "missing name", userName: "", email: "ada@example.com", password: "hunter2x", wantErr: true},
		{name: "bad email", userName: "Ada", email: "not-an-email", password: "hunter2x", wantErr: true},
		{name: "short password", userName: "Ada", email: "ada@example.com", password: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUser(tt.userName, tt.email, tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateComment(t *testing.T) {
	assert.Error(t, ValidateComment(""))
	assert.NoError(t, ValidateComment("nice post"))
}
