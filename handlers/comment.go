package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"travelhub/database"
	"travelhub/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CommentRequest struct {
	Content string `json:"content" binding:"required"`
}

func commentIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("commentId"))
	if err != nil {
		fail(c, http.StatusNotFound, "Comment not found")
		return primitive.NilObjectID, false
	}
	return id, true
}

// AddComment appends a comment to the post's embedded comment array.
// Insertion order is chronological order.
func AddComment(c *gin.Context) {
	postID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req CommentRequest
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

	post, ok := findPost(ctx, c, postID)
	if !ok {
		return
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Content:   req.Content,
		Likes:     []primitive.ObjectID{},
		Replies:   []models.Reply{},
		CreatedAt: time.Now().Unix(),
	}

	if _, err := database.Posts.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{
			"$push": bson.M{"comments": comment},
			"$inc":  bson.M{"engagementScore": models.ScoreComment},
		},
	); err != nil {
		log.Printf("AddComment error: %v", err)
		fail(c, http.StatusInternalServerError, "Failed to add comment")
		return
	}

	authors, err := loadAuthors(ctx, []primitive.ObjectID{userID})
	if err != nil {
		log.Printf("AddComment populate error: %v", err)
		fail(c, http.StatusInternalServerError, "Failed to add comment")
		return
	}
	comment.User = authorOrFallback(authors, userID)

	notifyEngagement(post.UserID, userID, "new_comment", "New comment", "Someone commented on your post", postID)

	respond(c, http.StatusCreated, comment)
}

// UpdateComment edits a comment's content. Only the comment's own
// author may edit; neither the post owner nor an admin can. Delete is
// the broader check, and the asymmetry is intentional.
func UpdateComment(c *gin.Context) {
	postID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	commentID, ok := commentIDParam(c)
	if !ok {
		return
	}

	var req CommentRequest
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

	post, ok := findPost(ctx, c, postID)
	if !ok {
		return
	}

	comment := post.FindComment(commentID)
	if comment == nil {
		fail(c, http.StatusNotFound, "Comment not found")
		return
	}

	if !comment.CanEdit(userID) {
		fail(c, http.StatusForbidden, "Not authorized to update this comment")
		return
	}

	if _, err := database.Posts.UpdateOne(ctx,
		bson.M{"_id": postID, "comments._id": commentID},
		bson.M{"$set": bson.M{"comments.$.content": req.Content}},
	); err != nil {
		log.Printf("UpdateComment error: %v", err)
		fail(c, http.StatusInternalServerError, "Failed to update comment")
		return
	}

	comment.Content = req.Content
	authors, err := loadAuthors(ctx, []primitive.ObjectID{comment.UserID})
	if err == nil {
		comment.User = authorOrFallback(authors, comment.UserID)
	}

	respond(c, http.StatusOK, comment)
}

// DeleteComment removes a comment and its replies. Permitted for the
// comment author, the post author, and admins.
func DeleteComment(c *gin.Context) {
	postID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	commentID, ok := commentIDParam(c)
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

	comment := post.FindComment(commentID)
	if comment == nil {
		fail(c, http.StatusNotFound, "Comment not found")
		return
	}

	if !comment.CanDelete(userID, c.GetString("role"), post.UserID) {
		fail(c, http.StatusForbidden, "Not authorized to delete this comment")
		return
	}

	if _, err := database.Posts.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{
			"$pull": bson.M{"comments": bson.M{"_id": commentID}},
			"$inc":  bson.M{"engagementScore": -models.ScoreComment},
		},
	); err != nil {
		log.Printf("DeleteComment error: %v", err)
		fail(c, http.StatusInternalServerError, "Failed to delete comment")
		return
	}

	respond(c, http.StatusOK, gin.H{"id": commentID.Hex(), "deleted": true})
}

// AddReply appends a reply to a comment. Replies cannot be nested
// further, and there is no edit or delete for them.
func AddReply(c *gin.Context) {
	postID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	commentID, ok := commentIDParam(c)
	if !ok {
		return
	}

	var req CommentRequest
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

	post, ok := findPost(ctx, c, postID)
	if !ok {
		return
	}

	comment := post.FindComment(commentID)
	if comment == nil {
		fail(c, http.StatusNotFound, "Comment not found")
		return
	}

	reply := models.Reply{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Content:   req.Content,
		CreatedAt: time.Now().Unix(),
	}

	if _, err := database.Posts.UpdateOne(ctx,
		bson.M{"_id": postID, "comments._id": commentID},
		bson.M{
			"$push": bson.M{"comments.$.replies": reply},
			"$inc":  bson.M{"engagementScore": models.ScoreReply},
		},
	); err != nil {
		log.Printf("AddReply error: %v", err)
		fail(c, http.StatusInternalServerError, "Failed to add reply")
		return
	}

	authors, err := loadAuthors(ctx, []primitive.ObjectID{userID})
	if err == nil {
		reply.User = authorOrFallback(authors, userID)
	}

	notifyEngagement(comment.UserID, userID, "new_reply", "New reply", "Someone replied to your comment", postID)

	respond(c, http.StatusCreated, reply)
}

func setCommentLike(c *gin.Context, like bool) {
	postID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	commentID, ok := commentIDParam(c)
	if !ok {
		return
	}

	userID, ok := requesterID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	op := "$pull"
	if like {
		op = "$addToSet"
	}

	result, err := database.Posts.UpdateOne(ctx,
		bson.M{"_id": postID, "comments._id": commentID},
		bson.M{op: bson.M{"comments.$.likes": userID}},
	)
	if err != nil {
		log.Printf("setCommentLike error: %v", err)
		fail(c, http.StatusInternalServerError, "Failed to update comment like")
		return
	}
	if result.MatchedCount == 0 {
		fail(c, http.StatusNotFound, "Comment not found")
		return
	}

	post, ok := findPost(ctx, c, postID)
	if !ok {
		return
	}
	comment := post.FindComment(commentID)
	if comment == nil {
		fail(c, http.StatusNotFound, "Comment not found")
		return
	}

	if like && result.ModifiedCount > 0 {
		notifyEngagement(comment.UserID, userID, "comment_liked", "New like", "Someone liked your comment", postID)
	}

	respond(c, http.StatusOK, gin.H{
		"likeCount": comment.LikeCount(),
		"isLiked":   like,
	})
}

// LikeComment and UnlikeComment mirror the post like semantics on the
// comment's own like set.
func LikeComment(c *gin.Context) {
	setCommentLike(c, true)
}

func UnlikeComment(c *gin.Context) {
	setCommentLike(c, false)
}
