package handlers

import (
	"context"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"travelhub/database"
	"travelhub/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type CreatePostRequest struct {
	Content  string   `json:"content" binding:"required"`
	Images   []string `json:"images"`
	Location string   `json:"location"`
	Tags     []string `json:"tags"`
}

// UpdatePostRequest is the allow-list for post edits. Any other field
// in the request body is dropped by the binding, never rejected.
type UpdatePostRequest struct {
	Content  *string   `json:"content"`
	Location *string   `json:"location"`
	Tags     *[]string `json:"tags"`
}

func requesterID(c *gin.Context) (primitive.ObjectID, bool) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		fail(c, http.StatusUnauthorized, "Invalid user ID")
		return primitive.NilObjectID, false
	}
	return userID, true
}

// objectIDParam parses a path parameter that must reference an
// existing document. A malformed id can never resolve, so it is
// reported as not found rather than a validation error.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		fail(c, http.StatusNotFound, "Post not found")
		return primitive.NilObjectID, false
	}
	return id, true
}

func parsePaging(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "25"))
	if limit < 1 || limit > 100 {
		limit = 25
	}
	return page, limit
}

// buildFeedFilter restricts listings to active posts. Tags are stored
// lowercase so the tag filter is a plain equality on the lowered term;
// the location filter is a case-insensitive substring match.
func buildFeedFilter(tag, location string) bson.M {
	filter := bson.M{"isActive": true}
	if tag != "" {
		filter["tags"] = strings.ToLower(tag)
	}
	if location != "" {
		filter["location"] = primitive.Regex{Pattern: regexp.QuoteMeta(location), Options: "i"}
	}
	return filter
}

func feedSort(mode string) bson.D {
	switch mode {
	case "popular":
		return bson.D{{Key: "likeCount", Value: -1}, {Key: "createdAt", Value: -1}}
	case "trending":
		return bson.D{{Key: "engagementScore", Value: -1}, {Key: "createdAt", Value: -1}}
	default: // latest
		return bson.D{{Key: "createdAt", Value: -1}}
	}
}

func findPost(ctx context.Context, c *gin.Context, id primitive.ObjectID) (*models.Post, bool) {
	var post models.Post
	err := database.Posts.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		fail(c, http.StatusNotFound, "Post not found")
		return nil, false
	}
	if err != nil {
		log.Printf("findPost error: %v", err)
		fail(c, http.StatusInternalServerError, "Database error")
		return nil, false
	}
	return &post, true
}

// listPosts runs a paginated query and returns the page plus the
// pagination envelope. All list endpoints share it.
func listPosts(ctx context.Context, c *gin.Context, filter bson.M, sort bson.D, page, limit int) {
	total, err := database.Posts.CountDocuments(ctx, filter)
	if err != nil {
		log.Printf("listPosts count error: %v", err)
		fail(c, http.StatusInternalServerError, "Failed to fetch posts")
		return
	}

	// likeCount is derived per query; only the popular sort reads it.
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$addFields", Value: bson.M{"likeCount": bson.M{"$size": bson.M{"$ifNull": bson.A{"$likes", bson.A{}}}}}}},
		{{Key: "$sort", Value: sort}},
		{{Key: "$skip", Value: int64((page - 1) * limit)}},
		{{Key: "$limit", Value: int64(limit)}},
	}

	cursor, err := database.Posts.Aggregate(ctx, pipeline)
	if err != nil {
		log.Printf("listPosts aggregate error: %v", err)
		fail(c, http.StatusInternalServerError, "Failed to fetch posts")
		return
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		log.Printf("listPosts decode error: %v", err)
		fail(c, http.StatusInternalServerError, "Failed to decode posts")
		return
	}

	if err := populatePosts(ctx, posts); err != nil {
		log.Printf("listPosts populate error: %v", err)
		fail(c, http.StatusInternalServerError, "Failed to fetch posts")
		return
	}

	respondPage(c, posts, len(posts), total, buildPagination(page, limit, total))
}

// ListPosts returns the public feed: active posts only, filtered by
// tag/location, sorted latest, popular or trending.
func ListPosts(c *gin.Context) {
	page, limit := parsePaging(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := buildFeedFilter(c.Query("tag"), c.Query("location"))
	listPosts(ctx, c, filter, feedSort(c.Query("sort")), page, limit)
}

// GetPost fetches a single post with author, comment author and reply
// author fields attached. Unlike the listings it does not filter on
// isActive.
func GetPost(c *gin.Context) {
	postID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	post, ok := findPost(ctx, c, postID)
	if !ok {
		return
	}

	authors, err := loadAuthors(ctx, collectUserIDs([]models.Post{*post}))
	if err != nil {
		log.Printf("GetPost populate error: %v", err)
		fail(c, http.StatusInternalServerError, "Failed to fetch post")
		return
	}
	populatePost(post, authors)

	respond(c, http.StatusOK, post)
}

// PostsSubList serves GET /api/posts/tag/:tag and
// GET /api/posts/user/:userId. gin's router cannot register the
// static tag/ and user/ prefixes next to the :id wildcard, so both
// shapes dispatch through /:id/:sub here.
func PostsSubList(c *gin.Context) {
	page, limit := parsePaging(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch c.Param("id") {
	case "tag":
		filter := bson.M{"isActive": true, "tags": strings.ToLower(c.Param("sub"))}
		listPosts(ctx, c, filter, feedSort("latest"), page, limit)
	case "user":
		authorID, err := primitive.ObjectIDFromHex(c.Param("sub"))
		if err != nil {
			fail(c, http.StatusNotFound, "User not found")
			return
		}
		filter := bson.M{"isActive": true, "userId": authorID}
		listPosts(ctx, c, filter, feedSort("latest"), page, limit)
	default:
		fail(c, http.StatusNotFound, "Endpoint not found")
	}
}

// CreatePost creates a post owned by the authenticated user. The
// author always comes from the session, never the body.
func CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "content is required")
		return
	}

	userID, ok := requesterID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	now := time.Now().Unix()
	images := req.Images
	if images == nil {
		images = []string{}
	}

	post := models.Post{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Content:   req.Content,
		Images:    images,
		Location:  req.Location,
		Tags:      models.NormalizeTags(req.Tags),
		Likes:     []primitive.ObjectID{},
		Comments:  []models.Comment{},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := database.Posts.InsertOne(ctx, post); err != nil {
		log.Printf("CreatePost error: %v", err)
		fail(c, http.StatusInternalServerError, "Failed to create post")
		return
	}

	authors, err := loadAuthors(ctx, []primitive.ObjectID{userID})
	if err != nil {
		log.Printf("CreatePost populate error: %v", err)
		fail(c, http.StatusInternalServerError, "Failed to create post")
		return
	}
	populatePost(&post, authors)

	respond(c, http.StatusCreated, post)
}

// buildPostUpdate maps an edit request onto a $set document. Only
// content, location and tags are updatable; an empty content edit is
// ignored rather than blanking the post.
func buildPostUpdate(req UpdatePostRequest, now int64) bson.M {
	set := bson.M{"updatedAt": now}
	if req.Content != nil && strings.TrimSpace(*req.Content) != "" {
		set["content"] = *req.Content
	}
	if req.Location != nil {
		set["location"] = *req.Location
	}
	if req.Tags != nil {
		set["tags"] = models.NormalizeTags(*req.Tags)
	}
	return set
}

func UpdatePost(c *gin.Context) {
	postID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, ok := requesterID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	post, ok := findPost(ctx, c, postID)
	if !ok {
		return
	}

	if !post.CanModify(userID, c.GetString("role")) {
		fail(c, http.StatusForbidden, "Not authorized to update this post")
		return
	}

	update := bson.M{"$set": buildPostUpdate(req, time.Now().Unix())}
	if _, err := database.Posts.UpdateOne(ctx, bson.M{"_id": postID}, update); err != nil {
		log.Printf("UpdatePost error: %v", err)
		fail(c, http.StatusInternalServerError, "Failed to update post")
		return
	}

	updated, ok := findPost(ctx, c, postID)
	if !ok {
		return
	}

	authors, err := loadAuthors(ctx, collectUserIDs([]models.Post{*updated}))
	if err != nil {
		log.Printf("UpdatePost populate error: %v", err)
		fail(c, http.StatusInternalServerError, "Failed to update post")
		return
	}
	populatePost(updated, authors)

	respond(c, http.StatusOK, updated)
}

// DeletePost removes the document outright. The embedded comments and
// replies go with it; isActive plays no part in deletion.
func DeletePost(c *gin.Context) {
	postID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	userID, ok := requesterID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	post, ok := findPost(ctx, c, postID)
	if !ok {
		return
	}

	if !post.CanModify(userID, c.GetString("role")) {
		fail(c, http.StatusForbidden, "Not authorized to delete this post")
		return
	}

	if _, err := database.Posts.DeleteOne(ctx, bson.M{"_id": postID}); err != nil {
		log.Printf("DeletePost error: %v", err)
		fail(c, http.StatusInternalServerError, "Failed to delete post")
		return
	}

	respond(c, http.StatusOK, gin.H{"id": postID.Hex(), "deleted": true})
}
