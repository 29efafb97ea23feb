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
)

// UpdateProfileRequest is the allow-list for profile edits.
type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Username *string `json:"username"`
	Avatar   *string `json:"avatar"`
	Bio      *string `json:"bio"`
}

func GetMyProfile(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err := database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		log.Printf("GetMyProfile error: %v", err)
		fail(c, http.StatusInternalServerError, "Database error")
		return
	}

	respond(c, http.StatusOK, user)
}

func UpdateMyProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, ok := requesterID(c)
	if !ok {
		return
	}

	set := bson.M{"lastSeen": time.Now().Unix()}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Username != nil {
		set["username"] = *req.Username
	}
	if req.Avatar != nil {
		set["avatar"] = *req.Avatar
	}
	if req.Bio != nil {
		set["bio"] = *req.Bio
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := database.Users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": set})
	if err != nil {
		log.Printf("UpdateMyProfile error: %v", err)
		fail(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	if result.MatchedCount == 0 {
		fail(c, http.StatusNotFound, "User not found")
		return
	}

	var user models.User
	if err := database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		log.Printf("UpdateMyProfile reload error: %v", err)
		fail(c, http.StatusInternalServerError, "Database error")
		return
	}

	respond(c, http.StatusOK, user)
}

// GetUser returns the public view of a profile.
func GetUser(c *gin.Context) {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, "User not found")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err = database.Users.FindOne(ctx, bson.M{"_id": targetID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		log.Printf("GetUser error: %v", err)
		fail(c, http.StatusInternalServerError, "Database error")
		return
	}

	respond(c, http.StatusOK, gin.H{
		"id":        user.ID.Hex(),
		"username":  user.Username,
		"name":      user.Name,
		"avatar":    user.Avatar,
		"bio":       user.Bio,
		"createdAt": user.CreatedAt,
	})
}

// GetSavedPosts pages through the posts the caller has saved. Saved
// ids pointing at since-deleted posts simply drop out of the result.
func GetSavedPosts(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	page, limit := parsePaging(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err := database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		log.Printf("GetSavedPosts error: %v", err)
		fail(c, http.StatusInternalServerError, "Database error")
		return
	}

	if len(user.SavedPosts) == 0 {
		respondPage(c, []models.Post{}, 0, 0, buildPagination(page, limit, 0))
		return
	}

	filter := savedPostsFilter(user.SavedPosts)
	listPosts(ctx, c, filter, feedSort("latest"), page, limit)
}

// savedPostsFilter hides deactivated posts from the saved listing the
// same way every feed does.
func savedPostsFilter(saved []primitive.ObjectID) bson.M {
	return bson.M{
		"_id":      bson.M{"$in": saved},
		"isActive": true,
	}
}
