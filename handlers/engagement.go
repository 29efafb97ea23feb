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
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReportRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// notifyEngagement pushes an engagement event to the affected user
// over the WebSocket hub and web push. Self-engagement is silent.
func notifyEngagement(recipient, actor primitive.ObjectID, event, title, body string, postID primitive.ObjectID) {
	if recipient == actor {
		return
	}
	if wsManager != nil {
		wsManager.NotifyUser(recipient.Hex(), event, map[string]interface{}{
			"postId":    postID.Hex(),
			"actorId":   actor.Hex(),
			"timestamp": time.Now().Unix(),
		})
	}
	SendPushNotification(recipient, title, body, "")
}

// LikePost adds the caller to the post's like set. $addToSet carries
// the dedup: a double-like leaves the set unchanged and the
// engagement score untouched.
func LikePost(c *gin.Context) {
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

	result, err := database.Posts.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$addToSet": bson.M{"likes": userID}},
	)
	if err != nil {
		log.Printf("LikePost error: %v", err)
		fail(c, http.StatusInternalServerError, "Failed to like post")
		return
	}
	if result.MatchedCount == 0 {
		fail(c, http.StatusNotFound, "Post not found")
		return
	}

	if result.ModifiedCount > 0 {
		if _, err := database.Posts.UpdateOne(ctx,
			bson.M{"_id": postID},
			bson.M{"$inc": bson.M{"engagementScore": models.ScoreLike}},
		); err != nil {
			log.Printf("LikePost score error: %v", err)
		}
	}

	post, ok := findPost(ctx, c, postID)
	if !ok {
		return
	}

	if result.ModifiedCount > 0 {
		notifyEngagement(post.UserID, userID, "post_liked", "New like", "Someone liked your post", postID)
	}

	respond(c, http.StatusOK, gin.H{
		"likeCount": post.LikeCount(),
		"isLiked":   true,
	})
}

func UnlikePost(c *gin.Context) {
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

	result, err := database.Posts.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$pull": bson.M{"likes": userID}},
	)
	if err != nil {
		log.Printf("UnlikePost error: %v", err)
		fail(c, http.StatusInternalServerError, "Failed to unlike post")
		return
	}
	if result.MatchedCount == 0 {
		fail(c, http.StatusNotFound, "Post not found")
		return
	}

	if result.ModifiedCount > 0 {
		if _, err := database.Posts.UpdateOne(ctx,
			bson.M{"_id": postID},
			bson.M{"$inc": bson.M{"engagementScore": -models.ScoreLike}},
		); err != nil {
			log.Printf("UnlikePost score error: %v", err)
		}
	}

	post, ok := findPost(ctx, c, postID)
	if !ok {
		return
	}

	respond(c, http.StatusOK, gin.H{
		"likeCount": post.LikeCount(),
		"isLiked":   false,
	})
}

// SharePost bumps the share counter by exactly one. No identity is
// recorded and repeat shares by the same caller keep counting.
func SharePost(c *gin.Context) {
	postID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var post models.Post
	err := database.Posts.FindOneAndUpdate(ctx,
		bson.M{"_id": postID},
		bson.M{"$inc": bson.M{"shares": 1, "engagementScore": models.ScoreShare}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&post)
	if err == mongo.ErrNoDocuments {
		fail(c, http.StatusNotFound, "Post not found")
		return
	}
	if err != nil {
		log.Printf("SharePost error: %v", err)
		fail(c, http.StatusInternalServerError, "Failed to share post")
		return
	}

	respond(c, http.StatusOK, gin.H{"shares": post.Shares})
}

// SavePost records the post in the caller's savedPosts set. The
// relationship lives on the user document; the post is only checked
// for existence.
func SavePost(c *gin.Context) {
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

	if _, ok := findPost(ctx, c, postID); !ok {
		return
	}

	result, err := database.Users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"savedPosts": postID}},
	)
	if err != nil {
		log.Printf("SavePost error: %v", err)
		fail(c, http.StatusInternalServerError, "Failed to save post")
		return
	}

	if result.ModifiedCount > 0 {
		if _, err := database.Posts.UpdateOne(ctx,
			bson.M{"_id": postID},
			bson.M{"$inc": bson.M{"engagementScore": models.ScoreSave}},
		); err != nil {
			log.Printf("SavePost score error: %v", err)
		}
	}

	respond(c, http.StatusOK, gin.H{"isSaved": true})
}

func UnsavePost(c *gin.Context) {
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

	if _, ok := findPost(ctx, c, postID); !ok {
		return
	}

	result, err := database.Users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"savedPosts": postID}},
	)
	if err != nil {
		log.Printf("UnsavePost error: %v", err)
		fail(c, http.StatusInternalServerError, "Failed to unsave post")
		return
	}

	if result.ModifiedCount > 0 {
		if _, err := database.Posts.UpdateOne(ctx,
			bson.M{"_id": postID},
			bson.M{"$inc": bson.M{"engagementScore": -models.ScoreSave}},
		); err != nil {
			log.Printf("UnsavePost score error: %v", err)
		}
	}

	respond(c, http.StatusOK, gin.H{"isSaved": false})
}

// markPreference unions the post's tags into one of the caller's
// preference sets. Tags are only ever added; a tagless post is a
// successful no-op.
func markPreference(c *gin.Context, field string) {
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

	if len(post.Tags) == 0 {
		respond(c, http.StatusOK, gin.H{"tags": []string{}})
		return
	}

	if _, err := database.Users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{field: bson.M{"$each": post.Tags}}},
	); err != nil {
		log.Printf("markPreference %s error: %v", field, err)
		fail(c, http.StatusInternalServerError, "Failed to record preference")
		return
	}

	respond(c, http.StatusOK, gin.H{"tags": post.Tags})
}

func MarkInterested(c *gin.Context) {
	markPreference(c, "interestedTags")
}

func MarkNotInterested(c *gin.Context) {
	markPreference(c, "notInterestedTags")
}

// ReportPost appends a report record to the caller's document. The
// post itself is untouched and no counts are aggregated here.
func ReportPost(c *gin.Context) {
	postID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "reason is required")
		return
	}

	userID, ok := requesterID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, ok := findPost(ctx, c, postID); !ok {
		return
	}

	report := models.PostReport{
		PostID:    postID,
		Reason:    req.Reason,
		CreatedAt: time.Now().Unix(),
	}

	if _, err := database.Users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$push": bson.M{"reportedPosts": report}},
	); err != nil {
		log.Printf("ReportPost error: %v", err)
		fail(c, http.StatusInternalServerError, "Failed to report post")
		return
	}

	respond(c, http.StatusOK, gin.H{"reported": true})
}
