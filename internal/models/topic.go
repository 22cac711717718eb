package models

import "time"

// Topic is keyed by its name; there is no generated id
type Topic struct {
	Name          string    `json:"name" firestore:"-" bson:"-" mapstructure:"-"`
	Description   string    `json:"description" firestore:"description" bson:"description" mapstructure:"description"`
	ThumbnailLink string    `json:"thumbnail_link" firestore:"thumbnailLink" bson:"thumbnailLink" mapstructure:"thumbnailLink"`
	CreationTime  time.Time `json:"creation_time" firestore:"creationTime" bson:"creationTime" mapstructure:"creationTime"`
}

// Document field names of the topics collection
const (
	TopicFieldDescription   = "description"
	TopicFieldThumbnailLink = "thumbnailLink"
	TopicFieldCreationTime  = "creationTime"
)

// TopicInput defines the request body for creating a topic
type TopicInput struct {
	Name          string `json:"name" validate:"required,min=1,max=100,excludesall=/"`
	Description   string `json:"description" validate:"required,min=1"`
	ThumbnailLink string `json:"thumbnail_link" validate:"required,url"`
}
