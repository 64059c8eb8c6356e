package memory

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errDuplicateKey = errors.New("duplicate key")

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for i, candidate := range ids {
		if candidate == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}
