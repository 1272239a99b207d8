package boundary

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb/geojson"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// featureDocument một feature GeoJSON lưu trong MongoDB
type featureDocument struct {
	Properties map[string]interface{} `bson:"properties"`
	Geometry   bson.M                 `bson:"geometry"`
}

// LoadFromMongo đọc các feature SLS từ collection MongoDB (mỗi document là một
// feature GeoJSON), sắp theo _id để kết quả build ổn định.
func LoadFromMongo(ctx context.Context, coll *mongo.Collection, opts Options, logger *zap.Logger) (*Index, error) {
	source := "mongodb:" + coll.Name()

	cursor, err := coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{bson.E{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, &LoadError{Source: source, Feature: -1, Reason: "lỗi query boundary collection", Err: err}
	}
	defer cursor.Close(ctx)

	fc := geojson.NewFeatureCollection()
	i := 0
	for cursor.Next(ctx) {
		var doc featureDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, &LoadError{Source: source, Feature: i, Reason: "lỗi decode document", Err: err}
		}

		f, err := documentToFeature(doc)
		if err != nil {
			return nil, &LoadError{Source: source, Feature: i, Reason: "geometry không hợp lệ", Err: err}
		}
		fc.Append(f)
		i++
	}
	if err := cursor.Err(); err != nil {
		return nil, &LoadError{Source: source, Feature: -1, Reason: "lỗi đọc cursor", Err: err}
	}

	return FromFeatureCollection(fc, source, opts, logger)
}

// documentToFeature chuyển geometry BSON sang JSON rồi để orb/geojson parse
func documentToFeature(doc featureDocument) (*geojson.Feature, error) {
	f := &geojson.Feature{Type: "Feature", Properties: geojson.Properties(doc.Properties)}
	if f.Properties == nil {
		f.Properties = geojson.Properties{}
	}
	if doc.Geometry == nil {
		return f, nil
	}

	raw, err := json.Marshal(doc.Geometry)
	if err != nil {
		return nil, fmt.Errorf("marshal geometry: %w", err)
	}
	g, err := geojson.UnmarshalGeometry(raw)
	if err != nil {
		return nil, err
	}
	f.Geometry = g.Geometry()
	return f, nil
}
