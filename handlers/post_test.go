package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"strings"
	"testing"

	"travelhub/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestBuildPagination(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		limit    int
		total    int64
		wantNext *pageRef
		wantPrev *pageRef
	}{
		{"first of many", 1, 10, 25, &pageRef{2, 10}, nil},
		{"middle page", 2, 10, 25, &pageRef{3, 10}, &pageRef{1, 10}},
		{"last page", 3, 10, 25, nil, &pageRef{2, 10}},
		{"past the end", 5, 10, 25, nil, &pageRef{4, 10}},
		{"single page", 1, 25, 10, nil, nil},
		{"empty result", 1, 25, 0, nil, nil},
		{"exact fit", 1, 10, 10, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildPagination(tt.page, tt.limit, tt.total)
			if !reflect.DeepEqual(got.Next, tt.wantNext) {
				t.Errorf("Next = %+v, want %+v", got.Next, tt.wantNext)
			}
			if !reflect.DeepEqual(got.Prev, tt.wantPrev) {
				t.Errorf("Prev = %+v, want %+v", got.Prev, tt.wantPrev)
			}
		})
	}
}

func TestBuildFeedFilter(t *testing.T) {
	filter := buildFeedFilter("", "")
	if filter["isActive"] != true {
		t.Error("feed filter must always restrict to active posts")
	}
	if _, ok := filter["tags"]; ok {
		t.Error("empty tag must not add a tags clause")
	}

	filter = buildFeedFilter("Beach", "")
	if filter["tags"] != "beach" {
		t.Errorf("tag filter = %v, want lowercased %q", filter["tags"], "beach")
	}

	filter = buildFeedFilter("", "Bali")
	re, ok := filter["location"].(primitive.Regex)
	if !ok {
		t.Fatalf("location filter is %T, want primitive.Regex", filter["location"])
	}
	if re.Options != "i" {
		t.Errorf("location regex options = %q, want case-insensitive", re.Options)
	}
	if !strings.Contains(re.Pattern, "Bali") {
		t.Errorf("location regex pattern = %q, want it to contain the query", re.Pattern)
	}
}

func TestFeedSort(t *testing.T) {
	tests := []struct {
		mode  string
		first string
	}{
		{"latest", "createdAt"},
		{"popular", "likeCount"},
		{"trending", "engagementScore"},
		{"", "createdAt"},
		{"garbage", "createdAt"},
	}

	for _, tt := range tests {
		sort := feedSort(tt.mode)
		if sort[0].Key != tt.first {
			t.Errorf("feedSort(%q) primary key = %q, want %q", tt.mode, sort[0].Key, tt.first)
		}
		if sort[0].Value != -1 {
			t.Errorf("feedSort(%q) primary direction = %v, want descending", tt.mode, sort[0].Value)
		}
	}

	for _, mode := range []string{"popular", "trending"} {
		sort := feedSort(mode)
		if len(sort) != 2 || sort[1].Key != "createdAt" {
			t.Errorf("feedSort(%q) must tie-break on createdAt, got %v", mode, sort)
		}
	}
}

func TestBuildPostUpdateAllowList(t *testing.T) {
	content := "updated content"
	location := "Lisbon"
	tags := []string{"Beach", "beach", "Portugal"}

	set := buildPostUpdate(UpdatePostRequest{
		Content:  &content,
		Location: &location,
		Tags:     &tags,
	}, 1700000000)

	if set["content"] != content {
		t.Errorf("content = %v, want %v", set["content"], content)
	}
	if set["location"] != location {
		t.Errorf("location = %v, want %v", set["location"], location)
	}
	if !reflect.DeepEqual(set["tags"], []string{"beach", "portugal"}) {
		t.Errorf("tags = %v, want normalized set", set["tags"])
	}
	if set["updatedAt"] != int64(1700000000) {
		t.Errorf("updatedAt = %v, want 1700000000", set["updatedAt"])
	}

	// The author and every other field can never appear in the update
	// document, whatever the request body carried.
	for key := range set {
		switch key {
		case "content", "location", "tags", "updatedAt":
		default:
			t.Errorf("unexpected field %q in update document", key)
		}
	}
}

func TestBuildPostUpdatePartial(t *testing.T) {
	location := "Rome"
	set := buildPostUpdate(UpdatePostRequest{Location: &location}, 42)

	if _, ok := set["content"]; ok {
		t.Error("absent content must not be set")
	}
	if _, ok := set["tags"]; ok {
		t.Error("absent tags must not be set")
	}
	if set["location"] != location {
		t.Errorf("location = %v, want %v", set["location"], location)
	}
}

func TestBuildPostUpdateIgnoresEmptyContent(t *testing.T) {
	empty := "   "
	set := buildPostUpdate(UpdatePostRequest{Content: &empty}, 42)
	if _, ok := set["content"]; ok {
		t.Error("whitespace-only content must be ignored, not stored")
	}
}

func TestUpdatePostRequestDropsForeignFields(t *testing.T) {
	// author/userId in the body must vanish at the binding layer.
	body := `{"content":"hi","author":"someone-else","userId":"abc","isActive":false,"shares":999}`

	var req UpdatePostRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	set := buildPostUpdate(req, 42)
	for _, forbidden := range []string{"author", "userId", "isActive", "shares"} {
		if _, ok := set[forbidden]; ok {
			t.Errorf("field %q leaked into the update document", forbidden)
		}
	}
	if set["content"] != "hi" {
		t.Errorf("content = %v, want %q", set["content"], "hi")
	}
}

func TestCollectUserIDs(t *testing.T) {
	author := primitive.NewObjectID()
	commenter := primitive.NewObjectID()
	replier := primitive.NewObjectID()

	posts := []models.Post{
		{
			UserID: author,
			Comments: []models.Comment{
				{
					UserID: commenter,
					Replies: []models.Reply{
						{UserID: replier},
						{UserID: author}, // duplicate across levels
					},
				},
			},
		},
	}

	ids := collectUserIDs(posts)
	if len(ids) != 3 {
		t.Fatalf("collectUserIDs returned %d ids, want 3 unique", len(ids))
	}

	seen := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	for _, want := range []primitive.ObjectID{author, commenter, replier} {
		if !seen[want] {
			t.Errorf("missing id %s", want.Hex())
		}
	}
}

func TestAuthorOrFallback(t *testing.T) {
	known := primitive.NewObjectID()
	unknown := primitive.NewObjectID()
	authors := map[primitive.ObjectID]*models.Author{
		known: {ID: known.Hex(), Name: "Ada"},
	}

	if got := authorOrFallback(authors, known); got.Name != "Ada" {
		t.Errorf("known author name = %q, want Ada", got.Name)
	}

	got := authorOrFallback(authors, unknown)
	if got.Name != "Unknown User" {
		t.Errorf("fallback name = %q, want Unknown User", got.Name)
	}
	if got.Avatar != fallbackAvatar {
		t.Errorf("fallback avatar = %q, want placeholder", got.Avatar)
	}
}

// Malformed ids on fetch paths surface as 404, before any store
// access happens.
func TestGetPostMalformedID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/posts/not-a-hex-id", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-hex-id"}}

	GetPost(c)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp["success"] != false {
		t.Error("error envelope must carry success=false")
	}
	if _, ok := resp["message"]; !ok {
		t.Error("error envelope must carry a message")
	}
}

func TestCreatePostRequiresContent(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/posts", strings.NewReader(`{"images":[]}`))
	c.Request.Header.Set("Content-Type", "application/json")

	CreatePost(c)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestUpdateCommentMalformedCommentID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/api/posts", strings.NewReader(`{"content":"x"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{
		{Key: "id", Value: primitive.NewObjectID().Hex()},
		{Key: "commentId", Value: "nope"},
	}

	UpdateComment(c)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestReportPostRequiresReason(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/posts", strings.NewReader(`{}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: primitive.NewObjectID().Hex()}}

	ReportPost(c)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
