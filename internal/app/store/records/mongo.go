// internal/app/store/records/mongo.go
package records

import (
	"context"
	"regexp"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// CollectionName is the MongoDB collection holding all records.
const CollectionName = "records"

// mongoRecord is the document shape: the record key is the _id and the
// fields live in a single embedded document so that Put can $set them one by one.
type mongoRecord struct {
	Key    string            `bson:"_id"`
	Fields map[string]string `bson:"f"`
}

// MongoStore stores each record as one document in the records collection.
type MongoStore struct {
	client *mongo.Client
	c      *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

// NewMongoStore wraps db. The client is used for Ping and Close and may be nil
// when the caller manages the connection itself.
func NewMongoStore(client *mongo.Client, db *mongo.Database) *MongoStore {
	return &MongoStore{
		client: client,
		c:      db.Collection(CollectionName),
	}
}

func (s *MongoStore) Get(ctx context.Context, key string) (Fields, error) {
	var doc mongoRecord
	if err := s.c.FindOne(ctx, bson.M{"_id": key}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if doc.Fields == nil {
		doc.Fields = map[string]string{}
	}
	return Fields(doc.Fields), nil
}

func (s *MongoStore) Put(ctx context.Context, key string, fields Fields) error {
	if len(fields) == 0 {
		return nil
	}
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$set": fieldPaths(fields)},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *MongoStore) Create(ctx context.Context, key string, fields Fields) error {
	_, err := s.c.InsertOne(ctx, mongoRecord{Key: key, Fields: map[string]string(fields.Clone())})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrExists
		}
		return err
	}
	return nil
}

func (s *MongoStore) ScanPrefix(ctx context.Context, prefix string) ([]Record, error) {
	filter := bson.M{"_id": bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}}
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Record
	for cur.Next(ctx) {
		var doc mongoRecord
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		if doc.Fields == nil {
			doc.Fields = map[string]string{}
		}
		out = append(out, Record{Key: doc.Key, Fields: Fields(doc.Fields)})
	}
	return out, cur.Err()
}

func (s *MongoStore) Delete(ctx context.Context, key string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

func (s *MongoStore) Ping(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// fieldPaths turns a field map into dotted $set paths under "f".
func fieldPaths(fields Fields) bson.M {
	set := make(bson.M, len(fields))
	for k, v := range fields {
		set["f."+k] = v
	}
	return set
}
