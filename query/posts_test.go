package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFilter(t *testing.T) {
	catID := primitive.NewObjectID()

	tests := []struct {
		name   string
		params PostListParams
		check  func(t *testing.T, filter bson.M)
	}{
		{
			name:   "no params yields empty filter",
			params: PostListParams{},
			check: func(t *testing.T, filter bson.M) {
				assert.Empty(t, filter)
			},
		},
		{
			name:   "search matches title or content case-insensitively",
			params: PostListParams{Search: "gopher"},
			check: func(t *testing.T, filter bson.M) {
				or, ok := filter["$or"].(bson.A)
				assert.True(t, ok)
				assert.Len(t, or, 2)
				title := or[0].(bson.M)["title"].(primitive.Regex)
				assert.Equal(t, "gopher", title.Pattern)
				assert.Equal(t, "i", title.Options)
			},
		},
		{
			name:   "search term with regex metacharacters is quoted",
			params: PostListParams{Search: "c++ (v2)"},
			check: func(t *testing.T, filter bson.M) {
				or := filter["$or"].(bson.A)
				title := or[0].(bson.M)["title"].(primitive.Regex)
				assert.NotContains(t, title.Pattern, "(v2)")
				assert.Contains(t, title.Pattern, `\(v2\)`)
			},
		},
		{
			name:   "category restricts to containment",
			params: PostListParams{Category: catID},
			check: func(t *testing.T, filter bson.M) {
				assert.Equal(t, catID, filter["categories"])
				_, hasOr := filter["$or"]
				assert.False(t, hasOr)
			},
		},
		{
			name:   "search and category combine",
			params: PostListParams{Search: "go", Category: catID},
			check: func(t *testing.T, filter bson.M) {
				assert.Len(t, filter, 2)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, tt.params.Filter())
		})
	}
}

func TestNormalizedPageAndSkip(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		wantPage int
		wantSkip int64
	}{
		{"zero clamps to one", 0, 1, 0},
		{"negative clamps to one", -3, 1, 0},
		{"first page", 1, 1, 0},
		{"third page", 3, 3, 2 * PageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PostListParams{Page: tt.page}
			assert.Equal(t, tt.wantPage, p.NormalizedPage())
			assert.Equal(t, tt.wantSkip, p.Skip())
		})
	}
}

func TestNewPageMeta(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		totalCount int64
		want       PageMeta
	}{
		{"zero matches means zero pages", 1, 0, PageMeta{CurrentPage: 1, TotalPages: 0, TotalCount: 0}},
		{"exact multiple of page size", 1, 2 * PageSize, PageMeta{CurrentPage: 1, TotalPages: 2, TotalCount: 2 * PageSize}},
		{"partial last page rounds up", 2, PageSize + 1, PageMeta{CurrentPage: 2, TotalPages: 2, TotalCount: PageSize + 1}},
		{"single item", 1, 1, PageMeta{CurrentPage: 1, TotalPages: 1, TotalCount: 1}},
		{"page past the end keeps metadata", 9, PageSize, PageMeta{CurrentPage: 9, TotalPages: 1, TotalCount: PageSize}},
		{"clamped page in metadata", -1, 5, PageMeta{CurrentPage: 1, TotalPages: 1, TotalCount: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPageMeta(tt.page, tt.totalCount))
		})
	}
}

// currentPage*PageSize never exceeds totalCount by more than PageSize-1 for
// any page that actually holds data.
func TestPageArithmeticBound(t *testing.T) {
	for count := int64(0); count <= 55; count++ {
		meta := NewPageMeta(1, count)
		for page := 1; page <= meta.TotalPages; page++ {
			upper := int64(page) * PageSize
			if upper > count {
				assert.LessOrEqual(t, upper-count, int64(PageSize-1),
					"count=%d page=%d", count, page)
			}
		}
	}
}
