package models

import "time"

// Post represents an article stored in the posts collection
type Post struct {
	ID           string    `json:"id" firestore:"-" bson:"-" mapstructure:"-"`
	Title        string    `json:"title" firestore:"title" bson:"title" mapstructure:"title"`
	Caption      string    `json:"caption" firestore:"caption" bson:"caption" mapstructure:"caption"`
	Description  string    `json:"description" firestore:"description" bson:"description" mapstructure:"description"`
	TopicName    string    `json:"topic_name" firestore:"topicName" bson:"topicName" mapstructure:"topicName"`
	Published    bool      `json:"published" firestore:"published" bson:"published" mapstructure:"published"`
	CreationTime time.Time `json:"creation_time" firestore:"creationTime" bson:"creationTime" mapstructure:"creationTime"`
	Likes        []string  `json:"-" firestore:"likes" bson:"likes" mapstructure:"likes"` // user ids, kept unique by array union
}

// Document field names of the posts collection
const (
	PostFieldTitle        = "title"
	PostFieldCaption      = "caption"
	PostFieldDescription  = "description"
	PostFieldTopicName    = "topicName"
	PostFieldPublished    = "published"
	PostFieldCreationTime = "creationTime"
	PostFieldLikes        = "likes"
)

// PostInput defines the request body for creating or fully editing a post
type PostInput struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Caption     string `json:"caption" validate:"required,min=1,max=500"`
	Description string `json:"description" validate:"required,min=1"`
	TopicName   string `json:"topic_name" validate:"required,min=1,max=100"`
	Published   bool   `json:"published"`
}

// EditPostTitleRequest defines the request body for a title-only edit
type EditPostTitleRequest struct {
	Title string `json:"title" validate:"required,min=1,max=200"`
}

// EditPostCaptionRequest defines the request body for a caption-only edit
type EditPostCaptionRequest struct {
	Caption string `json:"caption" validate:"required,min=1,max=500"`
}
