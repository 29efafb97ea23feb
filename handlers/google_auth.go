package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"travelhub/database"
	"travelhub/middleware"
	"travelhub/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var googleOAuthConfig *oauth2.Config

func init() {
	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")

	if clientID != "" && clientSecret != "" {
		redirectURL := os.Getenv("GOOGLE_REDIRECT_URL")
		if redirectURL == "" {
			redirectURL = "http://localhost:8080/api/auth/google/callback"
		}
		googleOAuthConfig = &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		}
	} else {
		log.Println("Google OAuth not configured - set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET")
	}
}

type GoogleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

type GoogleAuthRequest struct {
	Credential string `json:"credential" binding:"required"`
}

// GetGoogleAuthURL returns the consent page URL for the redirect flow.
func GetGoogleAuthURL(c *gin.Context) {
	if googleOAuthConfig == nil {
		fail(c, http.StatusServiceUnavailable, "Google OAuth not configured")
		return
	}
	respond(c, http.StatusOK, gin.H{
		"url": googleOAuthConfig.AuthCodeURL("state", oauth2.AccessTypeOnline),
	})
}

// GoogleOAuthCallback exchanges the authorization code and signs the
// user in.
func GoogleOAuthCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		fail(c, http.StatusBadRequest, "Authorization code missing")
		return
	}
	if googleOAuthConfig == nil {
		fail(c, http.StatusServiceUnavailable, "Google OAuth not configured")
		return
	}

	ctx := c.Request.Context()
	token, err := googleOAuthConfig.Exchange(ctx, code)
	if err != nil {
		log.Printf("Google token exchange failed: %v", err)
		fail(c, http.StatusInternalServerError, "Failed to exchange authorization code")
		return
	}

	client := googleOAuthConfig.Client(ctx, token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		log.Printf("Google userinfo request failed: %v", err)
		fail(c, http.StatusInternalServerError, "Failed to get user information")
		return
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to read user information")
		return
	}

	var googleUser GoogleUserInfo
	if err := json.Unmarshal(data, &googleUser); err != nil {
		fail(c, http.StatusInternalServerError, "Failed to parse user information")
		return
	}

	handleGoogleUser(c, googleUser)
}

// GoogleAuthWithCredential signs in with a Google Identity Services
// credential (ID token).
func GoogleAuthWithCredential(c *gin.Context) {
	var req GoogleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "credential is required")
		return
	}

	token, _, err := new(jwt.Parser).ParseUnverified(req.Credential, jwt.MapClaims{})
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid Google credential")
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		fail(c, http.StatusBadRequest, "Invalid Google credential")
		return
	}

	googleUser := GoogleUserInfo{
		ID:      stringClaim(claims, "sub"),
		Email:   stringClaim(claims, "email"),
		Name:    stringClaim(claims, "name"),
		Picture: stringClaim(claims, "picture"),
	}
	if googleUser.Email == "" {
		fail(c, http.StatusBadRequest, "Email not provided by Google")
		return
	}

	handleGoogleUser(c, googleUser)
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if val, ok := claims[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func handleGoogleUser(c *gin.Context, googleUser GoogleUserInfo) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err := database.Users.FindOne(ctx, bson.M{"email": googleUser.Email}).Decode(&user)

	switch {
	case err == mongo.ErrNoDocuments:
		user = newUser(googleUser.Email, googleUser.Name, "google")
		if googleUser.Picture != "" {
			user.Avatar = googleUser.Picture
		}
		if _, err := database.Users.InsertOne(ctx, user); err != nil {
			log.Printf("Google signup insert error: %v", err)
			fail(c, http.StatusInternalServerError, "Failed to create user account")
			return
		}
	case err != nil:
		log.Printf("Google lookup error: %v", err)
		fail(c, http.StatusInternalServerError, "Database error")
		return
	default:
		set := bson.M{"lastSeen": time.Now().Unix()}
		if (user.Avatar == "" || user.Avatar == fallbackAvatar) && googleUser.Picture != "" {
			set["avatar"] = googleUser.Picture
		}
		if _, err := database.Users.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": set}); err != nil {
			log.Printf("Google lastSeen update error: %v", err)
		}
	}

	token, err := middleware.IssueToken(user.ID.Hex(), user.Role)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	respond(c, http.StatusOK, gin.H{
		"token":  token,
		"userId": user.ID.Hex(),
		"email":  user.Email,
		"name":   user.Name,
	})
}
