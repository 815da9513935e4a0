package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FinalReport is the end-of-training report. Each user has at most one;
// resubmitting replaces the stored file and updates the record in place.
type FinalReport struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt   time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updated_at"`
	UserID      primitive.ObjectID `bson:"userId" json:"user_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Report      Attachment         `bson:"report,omitempty" json:"report,omitempty"`
	SubmittedAt time.Time          `bson:"submittedAt" json:"submittedAt"`
}
