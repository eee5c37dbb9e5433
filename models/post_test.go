package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"inkwell/apperr"
)

func TestValidatePost(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		content string
		excerpt string
		wantErr bool
	}{
		{
			name:    "valid post",
			title:   "A Valid Title",
			content: "Some content",
			wantErr: false,
		},
		{
			name:    "missing title",
			title:   "",
			content: "Some content",
			wantErr: true,
		},
		{
			name:    "missing content",
			title:   "A Valid Title",
			content: "",
			wantErr: true,
		},
		{
			name:    "title at limit",
			title:   strings.Repeat("a", 100),
			content: "Some content",
			wantErr: false,
		},
		{
			name:    "title over limit",
			title:   strings.Repeat("a", 101),
			content: "Some content",
			wantErr: true,
		},
		{
			name:    "multibyte title at limit",
			title:   strings.Repeat("é", 100),
			content: "Some content",
			wantErr: false,
		},
		{
			name:    "multibyte title over limit",
			title:   strings.Repeat("é", 101),
			content: "Some content",
			wantErr: true,
		},
		{
			name:    "excerpt at limit",
			title:   "A Valid Title",
			content: "Some content",
			excerpt: strings.Repeat("e", 500),
			wantErr: false,
		},
		{
			name:    "excerpt over limit",
			title:   "A Valid Title",
			content: "Some content",
			excerpt: strings.Repeat("e", 501),
			wantErr: true,
		},
		{
			name:    "multibyte excerpt at limit",
			title:   "A Valid Title",
			content: "Some content",
			excerpt: strings.Repeat("ü", 500),
			wantErr: false,
		},
		{
			name:    "empty excerpt is optional",
			title:   "A Valid Title",
			content: "Some content",
			excerpt: "",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePost(tt.title, tt.content, tt.excerpt)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, apperr.IsKind(err, apperr.KindValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
