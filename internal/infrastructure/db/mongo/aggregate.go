package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/righthome/cosmos-api/internal/core/ports"
)

// monthlyCounts groups documents by the calendar month of created_at,
// ascending, for dashboard charts. Shared by the account and consultation
// repositories.
func monthlyCounts(ctx context.Context, coll *mongo.Collection, since time.Time) ([]ports.MonthCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"created_at": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"year":  bson.M{"$year": "$created_at"},
				"month": bson.M{"$month": "$created_at"},
			},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.year", Value: 1}, {Key: "_id.month", Value: 1}}}},
	}

	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("monthly counts: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID struct {
			Year  int `bson:"year"`
			Month int `bson:"month"`
		} `bson:"_id"`
		Count int64 `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("monthly counts: %w", err)
	}

	counts := make([]ports.MonthCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, ports.MonthCount{Year: row.ID.Year, Month: row.ID.Month, Count: row.Count})
	}
	return counts, nil
}
