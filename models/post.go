package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const RoleAdmin = "admin"

// Author carries the display fields attached to posts, comments and
// replies when they are returned to the client. It is never persisted
// on the post document itself.
type Author struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Bio    string `json:"bio,omitempty"`
}

type Reply struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt int64              `bson:"createdAt" json:"createdAt"`
	User      *Author            `bson:"-" json:"user,omitempty"`
}

type Comment struct {
	ID        primitive.ObjectID   `bson:"_id" json:"id"`
	UserID    primitive.ObjectID   `bson:"userId" json:"userId"`
	Content   string               `bson:"content" json:"content"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	Replies   []Reply              `bson:"replies" json:"replies"`
	CreatedAt int64                `bson:"createdAt" json:"createdAt"`
	User      *Author              `bson:"-" json:"user,omitempty"`
}

type Post struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID   `bson:"userId" json:"userId"`
	Content         string               `bson:"content" json:"content"`
	Images          []string             `bson:"images" json:"images"`
	Location        string               `bson:"location,omitempty" json:"location,omitempty"`
	Tags            []string             `bson:"tags" json:"tags"`
	Likes           []primitive.ObjectID `bson:"likes" json:"likes"`
	Comments        []Comment            `bson:"comments" json:"comments"`
	Shares          int64                `bson:"shares" json:"shares"`
	IsActive        bool                 `bson:"isActive" json:"isActive"`
	EngagementScore float64              `bson:"engagementScore" json:"engagementScore"`
	CreatedAt       int64                `bson:"createdAt" json:"createdAt"`
	UpdatedAt       int64                `bson:"updatedAt" json:"updatedAt"`
	User            *Author              `bson:"-" json:"user,omitempty"`
}

// Engagement score weights. Applied with $inc alongside the matching
// array/counter update so the trending sort stays cheap to compute.
const (
	ScoreLike    = 2
	ScoreComment = 3
	ScoreReply   = 2
	ScoreShare   = 1
	ScoreSave    = 2
)

// NormalizeTags lowercases and trims tags, dropping empties and
// duplicates. Tags are stored lowercase so the tag filter can match
// case-insensitively with a plain equality query.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func (p *Post) LikeCount() int {
	return len(p.Likes)
}

func (p *Post) IsLikedBy(userID primitive.ObjectID) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// FindComment returns the comment with the given id, or nil.
func (p *Post) FindComment(commentID primitive.ObjectID) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			return &p.Comments[i]
		}
	}
	return nil
}

// CanModify reports whether requester may edit or delete the post:
// the author, or an admin.
func (p *Post) CanModify(requester primitive.ObjectID, role string) bool {
	return p.UserID == requester || role == RoleAdmin
}

func (c *Comment) LikeCount() int {
	return len(c.Likes)
}

func (c *Comment) IsLikedBy(userID primitive.ObjectID) bool {
	for _, id := range c.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// CanEdit is deliberately stricter than CanDelete: only the comment's
// own author may edit, with no admin or post-owner override.
func (c *Comment) CanEdit(requester primitive.ObjectID) bool {
	return c.UserID == requester
}

// CanDelete allows the comment author, the post author, and admins.
func (c *Comment) CanDelete(requester primitive.ObjectID, role string, postAuthor primitive.ObjectID) bool {
	return c.UserID == requester || postAuthor == requester || role == RoleAdmin
}
