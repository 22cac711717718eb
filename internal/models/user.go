package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is the identity provider's profile of a user. It is fetched live on
// every read and never written to the document store.
type User struct {
	ID             string    `json:"id"`
	DisplayName    string    `json:"display_name"`
	Email          string    `json:"email"`
	EmailVerified  bool      `json:"email_verified"`
	PhotoURL       string    `json:"photo_url"`
	PhoneNumber    string    `json:"phone_number,omitempty"`
	CreationTime   time.Time `json:"creation_time"`
	LastSignInTime time.Time `json:"last_sign_in_time"`
	Disabled       bool      `json:"disabled"`
}

// UserDocument holds the application-owned fields of a user, keyed by the
// identity provider's user id.
type UserDocument struct {
	ID             string   `json:"id" firestore:"-" bson:"-" mapstructure:"-"`
	FollowedTopics []string `json:"followed_topics" firestore:"followedTopics" bson:"followedTopics" mapstructure:"followedTopics"`
	SavedPosts     []string `json:"saved_posts" firestore:"savedPosts" bson:"savedPosts" mapstructure:"savedPosts"`
	DarkMode       bool     `json:"dark_mode" firestore:"darkMode" bson:"darkMode" mapstructure:"darkMode"`
}

// Document field names of the users collection
const (
	UserFieldFollowedTopics = "followedTopics"
	UserFieldSavedPosts     = "savedPosts"
	UserFieldDarkMode       = "darkMode"
)

// FirebaseLoginRequest defines the request body for exchanging a Firebase ID token
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Admin bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}
