package domain

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var idPattern = regexp.MustCompile(`^[0-9a-f]{24}$`)

// NewID returns a fresh identifier in ObjectID hex form.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidID reports whether s is a 24 character lowercase hex identifier.
func IsValidID(s string) bool {
	return idPattern.MatchString(s)
}
