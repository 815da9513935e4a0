package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project is a project submission. The report PDF is required at creation
// and replaceable on update; deleting the project also removes the stored
// report.
type Project struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt   time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updated_at"`
	UserID      primitive.ObjectID `bson:"userId" json:"user_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Link        string             `bson:"link,omitempty" json:"link,omitempty"`
	Report      Attachment         `bson:"report,omitempty" json:"report,omitempty"`
}
