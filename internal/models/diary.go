package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Diary is one daily training-diary entry. At most one entry exists per
// (user, day); resubmitting a day overwrites it.
type Diary struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt   time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updated_at"`
	UserID      primitive.ObjectID `bson:"userId" json:"user_id"`
	Day         int                `bson:"day" json:"day"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Mood        string             `bson:"mood" json:"mood"`
	Media       Attachment         `bson:"media,omitempty" json:"media,omitempty"`
	ReportPdf   Attachment         `bson:"reportPdf,omitempty" json:"reportPdf,omitempty"`
}
