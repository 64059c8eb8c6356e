package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPlainValue_ConvertsBSONContainers(t *testing.T) {
	id := primitive.NewObjectID()

	got := plainValue(bson.A{
		bson.M{"qty": int32(2), "nested": bson.D{{Key: "ref", Value: id}}},
		int64(3),
		"text",
	})

	assert.Equal(t, []any{
		map[string]any{"qty": float64(2), "nested": map[string]any{"ref": id.Hex()}},
		float64(3),
		"text",
	}, got)
}

func TestMenuDocument_ToDomainKeepsOrderAndEmptyKeys(t *testing.T) {
	doc := menuDocument{
		ID:           primitive.NewObjectID(),
		RestaurantID: primitive.NewObjectID(),
		Items: []menuItemDocument{
			{ProductName: "Soup", Price: 5},
			{Key: "k", ProductName: "Tea", Price: 1, Detail: "Green"},
		},
	}

	menu := doc.toDomain()
	assert.Equal(t, doc.RestaurantID, menu.RestaurantID)
	assert.Len(t, menu.Items, 2)
	assert.Empty(t, menu.Items[0].Key)
	assert.Equal(t, "k", menu.Items[1].Key)
}

func TestConnect_RejectsEmptyURI(t *testing.T) {
	_, err := Connect(testContext(t), "", "")
	assert.Error(t, err)
}
