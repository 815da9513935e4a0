package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Certificate is the training-completion certificate. One per user; a new
// upload overwrites the previous one.
type Certificate struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"userId" json:"user_id"`
	Course         string             `bson:"course" json:"course"`
	CompletionDate time.Time          `bson:"completionDate" json:"completionDate"`
	File           Attachment         `bson:"file,omitempty" json:"file,omitempty"`
}
