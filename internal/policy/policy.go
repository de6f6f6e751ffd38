// Package policy holds the read/mutate authorization decisions for prompts
// and tools. It is pure: callers resolve existence first (not-found wins over
// forbidden) and pass the pre-mutation record in.
package policy

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"smartaitools/internal/models"
)

// CanRead reports whether requester may read a record with the given
// visibility, owner and share list. A zero requester is an anonymous caller
// and only sees public records.
func CanRead(visibility models.Visibility, owner primitive.ObjectID, sharedWith []primitive.ObjectID, requester primitive.ObjectID) bool {
	if visibility == models.VisibilityPublic {
		return true
	}
	if requester.IsZero() {
		return false
	}
	if requester == owner {
		return true
	}
	for _, id := range sharedWith {
		if id == requester {
			return true
		}
	}
	return false
}

// CanMutate reports whether requester may update or delete a record owned by
// owner. Only the owner may, independent of visibility or sharing.
func CanMutate(owner, requester primitive.ObjectID) bool {
	return !requester.IsZero() && requester == owner
}
