// Package authz holds the ownership gate applied before every content mutation.
package authz

import (
	"fmt"

	"github.com/vidtube/backend/internal/apperr"
)

// CanMutate reports whether actorID may change a resource owned by ownerID.
// Ownership is plain identity equality; there are no roles.
func CanMutate(actorID, ownerID string) bool {
	return actorID != "" && actorID == ownerID
}

// Authorize returns a Forbidden error naming the resource kind when CanMutate is false.
func Authorize(actorID, ownerID, resource string) error {
	if CanMutate(actorID, ownerID) {
		return nil
	}
	return apperr.Forbidden(fmt.Sprintf("you are not allowed to modify this %s", resource))
}
