package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// PostReport is one report filed by a user against a post. Reports
// live on the reporting user's document; nothing on the post itself
// changes when it is reported.
type PostReport struct {
	PostID    primitive.ObjectID `bson:"postId" json:"postId"`
	Reason    string             `bson:"reason" json:"reason"`
	CreatedAt int64              `bson:"createdAt" json:"createdAt"`
}

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash *string            `bson:"passwordHash,omitempty" json:"-"`
	AuthProvider string             `bson:"authProvider" json:"authProvider"` // email, google
	Role         string             `bson:"role" json:"role"`                 // user, admin

	Username string `bson:"username" json:"username"`
	Name     string `bson:"name" json:"name"`
	Avatar   string `bson:"avatar" json:"avatar"`
	Bio      string `bson:"bio" json:"bio"`

	SavedPosts        []primitive.ObjectID `bson:"savedPosts" json:"savedPosts"`
	InterestedTags    []string             `bson:"interestedTags" json:"interestedTags"`
	NotInterestedTags []string             `bson:"notInterestedTags" json:"notInterestedTags"`
	ReportedPosts     []PostReport         `bson:"reportedPosts" json:"reportedPosts"`

	CreatedAt int64 `bson:"createdAt" json:"createdAt"`
	LastSeen  int64 `bson:"lastSeen" json:"lastSeen"`
}

// AuthorInfo projects the user down to the display fields embedded in
// post responses.
func (u *User) AuthorInfo() *Author {
	return &Author{
		ID:     u.ID.Hex(),
		Name:   u.Name,
		Avatar: u.Avatar,
		Bio:    u.Bio,
	}
}
