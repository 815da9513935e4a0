package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a registered student account. URN and CRN are the two
// institutional roll numbers students sign up with.
type User struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt            time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt            time.Time          `bson:"updatedAt" json:"updated_at"`
	Name                 string             `bson:"name" json:"name"`
	Email                string             `bson:"email" json:"email"`
	Password             string             `bson:"password" json:"-"`
	URN                  string             `bson:"urn" json:"urn"`
	CRN                  string             `bson:"crn" json:"crn"`
	ProfilePic           Attachment         `bson:"profilePic,omitempty" json:"profilePic,omitempty"`
	ResetPasswordToken   string             `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpires time.Time          `bson:"resetPasswordExpires,omitempty" json:"-"`
}
