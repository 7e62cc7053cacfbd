package databases

// go generate: mockery --name RecordDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/remlic/remlic-api/models"
)

// RecordDatabase contains the methods to use with a license record
// collection. One instance is created per category collection; the eight
// collections share one document shape so one accessor serves them all.
type RecordDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Record, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Record, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, record models.Record, opts ...*options.InsertOneOptions) error
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error)
}

type recordDatabase struct {
	db         DatabaseHelper
	collection string
}

// NewRecordDatabase initializes a record database over the given category
// collection name
func NewRecordDatabase(db DatabaseHelper, collection string) RecordDatabase {
	return &recordDatabase{
		db:         db,
		collection: collection,
	}
}

func (c *recordDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Record, error) {
	record := &models.Record{}
	err := c.db.Collection(c.collection).FindOne(ctx, filter, opts...).Decode(record)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (c *recordDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Record, error) {
	var records []models.Record
	cur, err := c.db.Collection(c.collection).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&records)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (c *recordDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	count, err := c.db.Collection(c.collection).CountDocuments(ctx, filter, opts...)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (c *recordDatabase) InsertOne(ctx context.Context, record models.Record, opts ...*options.InsertOneOptions) error {
	_, err := c.db.Collection(c.collection).InsertOne(ctx, record, opts...)
	return err
}

func (c *recordDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return c.db.Collection(c.collection).UpdateOne(ctx, filter, update, opts...)
}

func (c *recordDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	res, err := c.db.Collection(c.collection).DeleteOne(ctx, filter, opts...)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
