package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"travelhub/database"
	"travelhub/middleware"
	"travelhub/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// newUser builds a user document with every posts-domain field
// initialized, so later $addToSet/$push updates always have an array
// to land in.
func newUser(email, name, provider string) models.User {
	now := time.Now().Unix()
	return models.User{
		ID:           primitive.NewObjectID(),
		Email:        email,
		AuthProvider: provider,
		Role:         "user",
		Username:     "traveler_" + primitive.NewObjectID().Hex()[:8],
		Name:         name,
		Avatar:       "",
		Bio:          "",

		SavedPosts:        []primitive.ObjectID{},
		InterestedTags:    []string{},
		NotInterestedTags: []string{},
		ReportedPosts:     []models.PostReport{},

		CreatedAt: now,
		LastSeen:  now,
	}
}

func Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var existing models.User
	err := database.Users.FindOne(ctx, bson.M{"email": req.Email}).Decode(&existing)
	if err == nil {
		fail(c, http.StatusConflict, "Email already in use")
		return
	}
	if err != mongo.ErrNoDocuments {
		log.Printf("Signup lookup error: %v", err)
		fail(c, http.StatusInternalServerError, "Database error")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to hash password")
		return
	}
	hashed := string(hashedPassword)

	user := newUser(req.Email, req.Name, "email")
	user.PasswordHash = &hashed

	if _, err := database.Users.InsertOne(ctx, user); err != nil {
		log.Printf("Signup insert error: %v", err)
		fail(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	token, err := middleware.IssueToken(user.ID.Hex(), user.Role)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	respond(c, http.StatusCreated, gin.H{
		"token":  token,
		"userId": user.ID.Hex(),
	})
}

func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err := database.Users.FindOne(ctx, bson.M{"email": req.Email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		log.Printf("Login lookup error: %v", err)
		fail(c, http.StatusInternalServerError, "Database error")
		return
	}

	if user.PasswordHash == nil {
		fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if _, err := database.Users.UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"lastSeen": time.Now().Unix()}},
	); err != nil {
		log.Printf("Login lastSeen update error: %v", err)
	}

	token, err := middleware.IssueToken(user.ID.Hex(), user.Role)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	respond(c, http.StatusOK, gin.H{
		"token":  token,
		"userId": user.ID.Hex(),
	})
}
