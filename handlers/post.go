package handlers

import (
	"context"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"inkwell/apperr"
	"inkwell/database"
	"inkwell/models"
	"inkwell/query"
)

// PostInput is the writable field set for create and update. Pointers
// distinguish "absent" from "set to empty" so update can do a partial merge.
type PostInput struct {
	Title         *string   `json:"title"`
	Content       *string   `json:"content"`
	Excerpt       *string   `json:"excerpt"`
	Categories    *[]string `json:"categories"`
	FeaturedImage *string   `json:"featuredImage"`
}

// bindPostInput reads the writable fields from either a JSON body or a
// multipart form. The optional image file only arrives via multipart.
func bindPostInput(c *gin.Context) (*PostInput, *multipart.FileHeader, error) {
	contentType := c.ContentType()

	if contentType == "multipart/form-data" {
		var in PostInput
		if v, okForm := c.GetPostForm("title"); okForm {
			in.Title = &v
		}
		if v, okForm := c.GetPostForm("content"); okForm {
			in.Content = &v
		}
		if v, okForm := c.GetPostForm("excerpt"); okForm {
			in.Excerpt = &v
		}
		if v, okForm := c.GetPostForm("featuredImage"); okForm {
			// An empty value clears the image on update
			in.FeaturedImage = &v
		}
		if vs, okForm := c.GetPostFormArray("categories"); okForm {
			// A single comma-separated value is also accepted
			if len(vs) == 1 && strings.Contains(vs[0], ",") {
				vs = strings.Split(vs[0], ",")
			}
			in.Categories = &vs
		}

		file, err := c.FormFile("image")
		if err != nil && err != http.ErrMissingFile {
			return nil, nil, apperr.Validation("invalid multipart form")
		}
		return &in, file, nil
	}

	var in PostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		return nil, nil, apperr.Validation("invalid request body")
	}
	return &in, nil, nil
}

func parseCategoryIDs(raw []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return nil, apperr.Validation("invalid category id: " + s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// canModify is the authorization predicate for post mutations: the author
// may, and an admin may.
func canModify(authorID, userID primitive.ObjectID, role string) bool {
	return authorID == userID || role == models.RoleAdmin
}

// expandedPost is a post row with its references resolved by $lookup.
type expandedPost struct {
	models.Post  `bson:",inline"`
	AuthorDoc    *models.PostAuthor   `bson:"authorDoc"`
	CategoryDocs []models.CategoryRef `bson:"categoryDocs"`
}

func (r *expandedPost) assemble() *models.Post {
	p := r.Post
	p.Author = r.AuthorDoc
	p.Categories = r.CategoryDocs
	if p.Categories == nil {
		p.Categories = []models.CategoryRef{}
	}
	return &p
}

// expandStages are the pipeline stages resolving author and categories to
// their display subfields.
func expandStages() mongo.Pipeline {
	return mongo.Pipeline{
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
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "categories"},
			{Key: "localField", Value: "categories"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "categoryDocs"},
		}}},
	}
}

// findExpandedPost loads one post with references resolved.
func findExpandedPost(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "_id", Value: id}}}},
	}
	pipeline = append(pipeline, expandStages()...)

	cursor, err := database.Posts.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperr.Internal("failed to fetch post", err)
	}
	defer cursor.Close(ctx)

	var rows []expandedPost
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, apperr.Internal("failed to decode post", err)
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound("post not found")
	}
	return rows[0].assemble(), nil
}

// ListPosts is the public paginated listing with optional search and
// category filter.
func ListPosts(c *gin.Context) {
	params := query.PostListParams{
		Search: strings.TrimSpace(c.Query("search")),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		params.Page = page
	} else {
		params.Page = 1
	}
	if cat := c.Query("category"); cat != "" {
		id, err := primitive.ObjectIDFromHex(cat)
		if err != nil {
			fail(c, apperr.Validation("invalid category id"))
			return
		}
		params.Category = id
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	filter := params.Filter()

	total, err := database.Posts.CountDocuments(ctx, filter)
	if err != nil {
		fail(c, apperr.Internal("failed to count posts", err))
		return
	}
	meta := query.NewPageMeta(params.Page, total)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$skip", Value: params.Skip()}},
		{{Key: "$limit", Value: int64(query.PageSize)}},
	}
	pipeline = append(pipeline, expandStages()...)

	cursor, err := database.Posts.Aggregate(ctx, pipeline)
	if err != nil {
		fail(c, apperr.Internal("failed to fetch posts", err))
		return
	}
	defer cursor.Close(ctx)

	var rows []expandedPost
	if err := cursor.All(ctx, &rows); err != nil {
		fail(c, apperr.Internal("failed to decode posts", err))
		return
	}

	posts := make([]*models.Post, len(rows))
	for i := range rows {
		posts[i] = rows[i].assemble()
	}

	ok(c, http.StatusOK, gin.H{
		"posts":       posts,
		"currentPage": meta.CurrentPage,
		"totalPages":  meta.TotalPages,
		"totalCount":  meta.TotalCount,
	})
}

// GetPost returns a single post with author and categories expanded.
func GetPost(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, apperr.NotFound("post not found"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	post, err := findExpandedPost(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, post)
}

// CreatePost persists a new post for the authenticated user. The author
// always comes from the token, never from the body. When an image is
// attached, the stored file and the database record succeed or fail as a
// unit: a rejected image aborts the create, and a failed insert removes the
// already-stored file.
func CreatePost(c *gin.Context) {
	userID, _, err := identity(c)
	if err != nil {
		fail(c, err)
		return
	}

	in, file, err := bindPostInput(c)
	if err != nil {
		fail(c, err)
		return
	}

	title := deref(in.Title)
	content := deref(in.Content)
	excerpt := deref(in.Excerpt)
	if err := models.ValidatePost(title, content, excerpt); err != nil {
		fail(c, err)
		return
	}

	var categoryIDs []primitive.ObjectID
	if in.Categories != nil {
		if categoryIDs, err = parseCategoryIDs(*in.Categories); err != nil {
			fail(c, err)
			return
		}
	}
	if categoryIDs == nil {
		categoryIDs = []primitive.ObjectID{}
	}

	featuredImage := ""
	if file != nil {
		featuredImage, err = images.Save(file)
		if err != nil {
			fail(c, err)
			return
		}
	}

	now := time.Now().Unix()
	post := models.Post{
		ID:            primitive.NewObjectID(),
		Title:         title,
		Content:       content,
		Excerpt:       excerpt,
		FeaturedImage: featuredImage,
		CategoryIDs:   categoryIDs,
		AuthorID:      userID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	if _, err := database.Posts.InsertOne(ctx, post); err != nil {
		if featuredImage != "" {
			if rmErr := images.Remove(featuredImage); rmErr != nil {
				log.Printf("CreatePost: orphan image cleanup failed: %v", rmErr)
			}
		}
		fail(c, apperr.Internal("failed to create post", err))
		return
	}

	created, err := findExpandedPost(ctx, post.ID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, created)
}

// UpdatePost applies a partial merge of the writable fields after the
// owner-or-admin check. A new image replaces the old one; the old file is
// deleted only once the database write has succeeded.
func UpdatePost(c *gin.Context) {
	userID, role, err := identity(c)
	if err != nil {
		fail(c, err)
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, apperr.NotFound("post not found"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	var existing models.Post
	err = database.Posts.FindOne(ctx, bson.M{"_id": id}).Decode(&existing)
	if err == mongo.ErrNoDocuments {
		fail(c, apperr.NotFound("post not found"))
		return
	}
	if err != nil {
		fail(c, apperr.Internal("failed to fetch post", err))
		return
	}

	if !canModify(existing.AuthorID, userID, role) {
		fail(c, apperr.Forbidden("you may only modify your own posts"))
		return
	}

	in, file, err := bindPostInput(c)
	if err != nil {
		fail(c, err)
		return
	}

	// Merge over the stored values, then validate the result as a whole
	title := existing.Title
	content := existing.Content
	excerpt := existing.Excerpt
	if in.Title != nil {
		title = *in.Title
	}
	if in.Content != nil {
		content = *in.Content
	}
	if in.Excerpt != nil {
		excerpt = *in.Excerpt
	}
	if err := models.ValidatePost(title, content, excerpt); err != nil {
		fail(c, err)
		return
	}

	update := bson.M{
		"title":     title,
		"content":   content,
		"excerpt":   excerpt,
		"updatedAt": time.Now().Unix(),
	}

	if in.Categories != nil {
		categoryIDs, err := parseCategoryIDs(*in.Categories)
		if err != nil {
			fail(c, err)
			return
		}
		update["categories"] = categoryIDs
	}

	// Any path that swaps featuredImage out, upload or plain field write,
	// must also drop the previously stored file once the write succeeds.
	newImage := ""
	imageReplaced := false
	if file != nil {
		newImage, err = images.Save(file)
		if err != nil {
			fail(c, err)
			return
		}
		update["featuredImage"] = newImage
		imageReplaced = newImage != existing.FeaturedImage
	} else if in.FeaturedImage != nil {
		update["featuredImage"] = *in.FeaturedImage
		imageReplaced = *in.FeaturedImage != existing.FeaturedImage
	}

	if _, err := database.Posts.UpdateByID(ctx, id, bson.M{"$set": update}); err != nil {
		if newImage != "" {
			if rmErr := images.Remove(newImage); rmErr != nil {
				log.Printf("UpdatePost: orphan image cleanup failed: %v", rmErr)
			}
		}
		fail(c, apperr.Internal("failed to update post", err))
		return
	}

	if imageReplaced && existing.FeaturedImage != "" {
		// Remove ignores paths outside the store
		if err := images.Remove(existing.FeaturedImage); err != nil {
			log.Printf("UpdatePost: replaced image cleanup failed: %v", err)
		}
	}

	updated, err := findExpandedPost(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, updated)
}

// DeletePost removes a post permanently, cascading to its comments and its
// stored image. The comment and image cleanup are best-effort; the post
// delete is the authoritative operation.
func DeletePost(c *gin.Context) {
	userID, role, err := identity(c)
	if err != nil {
		fail(c, err)
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, apperr.NotFound("post not found"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	var existing models.Post
	err = database.Posts.FindOne(ctx, bson.M{"_id": id}).Decode(&existing)
	if err == mongo.ErrNoDocuments {
		fail(c, apperr.NotFound("post not found"))
		return
	}
	if err != nil {
		fail(c, apperr.Internal("failed to fetch post", err))
		return
	}

	if !canModify(existing.AuthorID, userID, role) {
		fail(c, apperr.Forbidden("you may only delete your own posts"))
		return
	}

	if _, err := database.Posts.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		fail(c, apperr.Internal("failed to delete post", err))
		return
	}

	if _, err := database.Comments.DeleteMany(ctx, bson.M{"post": id}); err != nil {
		log.Printf("DeletePost: comment cascade failed for %s: %v", id.Hex(), err)
	}
	if existing.FeaturedImage != "" {
		if err := images.Remove(existing.FeaturedImage); err != nil {
			log.Printf("DeletePost: image cleanup failed: %v", err)
		}
	}

	ok(c, http.StatusOK, gin.H{"id": id.Hex()})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
