package domain

import (
	"errors"
	"time"
)

// serviceCategories are the site sections a project image can belong to.
var serviceCategories = map[string]struct{}{
	"architecture": {},
	"interiors":    {},
	"furniture":    {},
	"construction": {},
	"kitchens":     {},
	"engineering":  {},
	"lifts":        {},
	"tiles":        {},
}

var ErrImageNotFound = errors.New("project image not found")
var ErrInvalidService = errors.New("invalid service category")

// ValidService reports whether s names a known service category.
func ValidService(s string) bool {
	_, ok := serviceCategories[s]
	return ok
}

// ProjectImage is a gallery entry backed by an object in external storage.
// ObjectKey identifies the stored bytes; ImageURL is what clients render.
type ProjectImage struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Service     string    `json:"service" bson:"service"`
	SubService  string    `json:"sub_service" bson:"sub_service"`
	ImageURL    string    `json:"image_url" bson:"image_url"`
	ObjectKey   string    `json:"-" bson:"object_key"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}
