package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore delegates each call to an external MongoDB database,
// translating the filter/order vocabulary into the driver's query builder.
// Collections that do not exist yet read as empty, which MongoDB gives us
// for free.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &MongoStore{client: client, db: client.Database(database)}, nil
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document %s/%s: %w", collection, id, err)
	}
	return fromBSON(raw), nil
}

func (s *MongoStore) Set(ctx context.Context, collection, id string, doc Document) (Document, error) {
	stored := bson.M(copyDocument(doc))
	opts := options.Replace().SetUpsert(true)
	_, err := s.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, stored, opts)
	if err != nil {
		return nil, fmt.Errorf("set document %s/%s: %w", collection, id, err)
	}
	return copyDocument(doc), nil
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, fields Document) (Document, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var raw bson.M
	err := s.db.Collection(collection).
		FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M(fields)}, opts).
		Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update document %s/%s: %w", collection, id, err)
	}
	return fromBSON(raw), nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) Query(ctx context.Context, collection string, opts QueryOptions) ([]Document, error) {
	if err := validateFilters(opts.Filters); err != nil {
		return nil, err
	}

	filter := bson.M{}
	for _, f := range opts.Filters {
		switch f.Op {
		case OpEqual:
			filter[f.Field] = f.Value
		case OpIn:
			values := reflect.ValueOf(f.Value)
			in := make(bson.A, values.Len())
			for i := 0; i < values.Len(); i++ {
				in[i] = values.Index(i).Interface()
			}
			filter[f.Field] = bson.M{"$in": in}
		}
	}

	findOpts := options.Find()
	if opts.OrderBy != nil {
		direction := 1
		if opts.OrderBy.Direction == Descending {
			direction = -1
		}
		findOpts.SetSort(bson.D{{Key: opts.OrderBy.Field, Value: direction}})
	}
	if opts.Offset > 0 {
		findOpts.SetSkip(int64(opts.Offset))
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}

	cursor, err := s.db.Collection(collection).Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("query collection %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var results []Document
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode document in %s: %w", collection, err)
		}
		results = append(results, fromBSON(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate collection %s: %w", collection, err)
	}
	return results, nil
}

func (s *MongoStore) Reset(ctx context.Context) error {
	if err := s.db.Drop(ctx); err != nil {
		return fmt.Errorf("drop database: %w", err)
	}
	return nil
}

func (s *MongoStore) Healthcheck(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// fromBSON converts a decoded bson document into a plain Document,
// dropping the synthetic _id and normalizing driver container types.
func fromBSON(raw bson.M) Document {
	doc := make(Document, len(raw))
	for k, v := range raw {
		if k == "_id" {
			continue
		}
		doc[k] = fromBSONValue(v)
	}
	return doc
}

func fromBSONValue(v any) any {
	switch val := v.(type) {
	case bson.M:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = fromBSONValue(item)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(val))
		for _, elem := range val {
			out[elem.Key] = fromBSONValue(elem.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = fromBSONValue(item)
		}
		return out
	case primitive.DateTime:
		return val.Time().UTC()
	case int32:
		return int(val)
	case int64:
		return int(val)
	default:
		return v
	}
}
