// Package query translates list-request parameters into a Mongo filter plus
// pagination, keeping the store's query language out of the handlers' way.
package query

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const PageSize = 10

// PostListParams are the accepted query parameters for the post listing.
type PostListParams struct {
	Page     int
	Search   string
	Category primitive.ObjectID
}

// PageMeta describes one page of a paginated result.
type PageMeta struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalCount  int64 `json:"totalCount"`
}

// Filter builds the Mongo filter for the parameters. No search term and no
// category yields an empty filter (the full collection).
func (p PostListParams) Filter() bson.M {
	filter := bson.M{}

	if p.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(p.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"content": pattern},
		}
	}

	if !p.Category.IsZero() {
		filter["categories"] = p.Category
	}

	return filter
}

// NormalizedPage clamps page numbers below 1 to 1.
func (p PostListParams) NormalizedPage() int {
	if p.Page < 1 {
		return 1
	}
	return p.Page
}

// Skip is the number of documents to pass over before the requested page.
func (p PostListParams) Skip() int64 {
	return int64(p.NormalizedPage()-1) * PageSize
}

// NewPageMeta computes page metadata from the total matching count. A count
// of zero yields zero total pages; currentPage stays as requested, so a page
// past the end pairs with an empty result rather than an error.
func NewPageMeta(page int, totalCount int64) PageMeta {
	if page < 1 {
		page = 1
	}
	totalPages := int((totalCount + PageSize - 1) / PageSize)
	return PageMeta{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  totalCount,
	}
}
