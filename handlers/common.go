package handlers

import (
	"context"

	"travelhub/database"
	"travelhub/models"
	"travelhub/websocket"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const fallbackAvatar = "https://upload.wikimedia.org/wikipedia/commons/8/89/Portrait_Placeholder.png"

var wsManager *websocket.Manager
var vapidPrivateKey string

// SetWebSocketManager wires the notification hub into the handlers.
func SetWebSocketManager(manager *websocket.Manager) {
	wsManager = manager
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

type pageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type pagination struct {
	Next *pageRef `json:"next,omitempty"`
	Prev *pageRef `json:"prev,omitempty"`
}

// buildPagination computes the next/prev page descriptors for an
// offset-paginated result set. Past-the-end pages get a prev but no
// next; concurrent inserts between count and find can skew next by
// one, which offset pagination accepts.
func buildPagination(page, limit int, total int64) pagination {
	var p pagination
	if int64(page*limit) < total {
		p.Next = &pageRef{Page: page + 1, Limit: limit}
	}
	if page > 1 {
		p.Prev = &pageRef{Page: page - 1, Limit: limit}
	}
	return p
}

func respondPage(c *gin.Context, data interface{}, count int, total int64, p pagination) {
	c.JSON(200, gin.H{
		"success":    true,
		"count":      count,
		"total":      total,
		"pagination": p,
		"data":       data,
	})
}

// loadAuthors fetches the display fields for a set of user ids in one
// query and returns them keyed by id. Missing users fall back to a
// placeholder so deleted accounts do not break post rendering.
func loadAuthors(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Author, error) {
	authors := make(map[primitive.ObjectID]*models.Author, len(ids))
	if len(ids) == 0 {
		return authors, nil
	}

	cursor, err := database.Users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}

	for i := range users {
		authors[users[i].ID] = users[i].AuthorInfo()
	}
	return authors, nil
}

func authorOrFallback(authors map[primitive.ObjectID]*models.Author, id primitive.ObjectID) *models.Author {
	if a, ok := authors[id]; ok {
		return a
	}
	return &models.Author{
		ID:     id.Hex(),
		Name:   "Unknown User",
		Avatar: fallbackAvatar,
	}
}

// collectUserIDs gathers every user id referenced by the posts: post
// authors, comment authors and reply authors.
func collectUserIDs(posts []models.Post) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool)
	var ids []primitive.ObjectID
	add := func(id primitive.ObjectID) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for i := range posts {
		add(posts[i].UserID)
		for j := range posts[i].Comments {
			add(posts[i].Comments[j].UserID)
			for k := range posts[i].Comments[j].Replies {
				add(posts[i].Comments[j].Replies[k].UserID)
			}
		}
	}
	return ids
}

func populatePost(post *models.Post, authors map[primitive.ObjectID]*models.Author) {
	post.User = authorOrFallback(authors, post.UserID)
	for i := range post.Comments {
		post.Comments[i].User = authorOrFallback(authors, post.Comments[i].UserID)
		for j := range post.Comments[i].Replies {
			post.Comments[i].Replies[j].User = authorOrFallback(authors, post.Comments[i].Replies[j].UserID)
		}
	}
}

// populatePosts resolves authors for a page of posts with a single
// users query.
func populatePosts(ctx context.Context, posts []models.Post) error {
	authors, err := loadAuthors(ctx, collectUserIDs(posts))
	if err != nil {
		return err
	}
	for i := range posts {
		populatePost(&posts[i], authors)
	}
	return nil
}
