package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
)

type timelineRepository struct {
	events *driver.Collection
}

// NewTimelineRepository создаёт реализацию TimelineRepository над коллекцией order_timeline.
func NewTimelineRepository(store *Store) domain.TimelineRepository {
	return &timelineRepository{events: store.collection(timelineCollection)}
}

func (r *timelineRepository) Append(ctx context.Context, event domain.TimelineEvent) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if event.Occurred.IsZero() {
		event.Occurred = time.Now().UTC()
	}
	if _, err := r.events.InsertOne(ctx, timelineDocument{
		OrderID:  event.OrderID,
		Type:     event.Type,
		Reason:   event.Reason,
		Occurred: event.Occurred,
	}); err != nil {
		return domain.NewStoreError("append timeline event", err)
	}
	return nil
}

func (r *timelineRepository) List(ctx context.Context, orderID string) ([]domain.TimelineEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := r.events.Find(ctx,
		bson.M{"order_id": orderID},
		options.Find().SetSort(bson.D{{Key: "occurred", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, domain.NewStoreError("list timeline events", err)
	}

	var docs []timelineDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, domain.NewStoreError("decode timeline events", err)
	}

	events := make([]domain.TimelineEvent, 0, len(docs))
	for _, doc := range docs {
		events = append(events, domain.TimelineEvent{
			OrderID:  doc.OrderID,
			Type:     doc.Type,
			Reason:   doc.Reason,
			Occurred: doc.Occurred.UTC(),
		})
	}
	return events, nil
}

var _ domain.TimelineRepository = (*timelineRepository)(nil)
