package models

// Attachment is a reference to a file stored in Cloudinary: the durable URL
// plus the public id needed to delete it later. It is embedded inline on the
// owning document, never stored on its own.
type Attachment struct {
	URL      string `bson:"url,omitempty" json:"url,omitempty"`
	PublicID string `bson:"publicId,omitempty" json:"publicId,omitempty"`
}

// IsZero reports whether no file is referenced.
func (a Attachment) IsZero() bool {
	return a.URL == "" && a.PublicID == ""
}
