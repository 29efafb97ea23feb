package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSubscriptionUpsertKeepsIDOutOfSet(t *testing.T) {
	userID := primitive.NewObjectID()
	sub := webpush.Subscription{
		Endpoint: "https://push.example.com/ep1",
		Keys:     webpush.Keys{P256dh: "p", Auth: "a"},
	}

	update := subscriptionUpsert(userID, sub)

	set, ok := update["$set"].(bson.M)
	if !ok {
		t.Fatalf("update missing $set: %v", update)
	}
	if _, present := set["_id"]; present {
		t.Error("$set must not carry _id; re-subscribing would fail on the immutable field")
	}
	if set["userId"] != userID {
		t.Errorf("$set userId = %v, want %v", set["userId"], userID)
	}
	if got := set["sub"].(webpush.Subscription).Endpoint; got != sub.Endpoint {
		t.Errorf("$set sub endpoint = %q, want %q", got, sub.Endpoint)
	}

	insert, ok := update["$setOnInsert"].(bson.M)
	if !ok {
		t.Fatalf("update missing $setOnInsert: %v", update)
	}
	if _, present := insert["_id"]; !present {
		t.Error("$setOnInsert should assign _id for first-time subscriptions")
	}
}

func TestSubscribePushRejectsIncompleteBody(t *testing.T) {
	router := gin.New()
	router.POST("/push/subscribe", SubscribePush)

	body := `{"endpoint": "https://push.example.com/ep1"}`
	req := httptest.NewRequest(http.MethodPost, "/push/subscribe", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
