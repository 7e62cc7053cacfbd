package handlers

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/remlic/remlic-api/models"
)

// stubRecordStore implements licenses.RecordStore for handler tests.
type stubRecordStore struct {
	records       []models.Record
	findErr       error
	count         int64
	countErr      error
	insertErr     error
	inserted      []models.Record
	updateResult  *mongo.UpdateResult
	updateErr     error
	deleted       int64
	deleteErr     error
	findOneResult *models.Record
	findOneErr    error
}

func (s *stubRecordStore) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Record, error) {
	return s.findOneResult, s.findOneErr
}

func (s *stubRecordStore) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Record, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.records, nil
}

func (s *stubRecordStore) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return s.count, s.countErr
}

func (s *stubRecordStore) InsertOne(ctx context.Context, record models.Record, opts ...*options.InsertOneOptions) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = append(s.inserted, record)
	return nil
}

func (s *stubRecordStore) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	if s.updateResult != nil {
		return s.updateResult, nil
	}
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (s *stubRecordStore) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return s.deleted, s.deleteErr
}

// stubUserDB implements databases.UserDatabase (and licenses.ProfileStore)
// for handler tests.
type stubUserDB struct {
	user         *models.User
	findOneErr   error
	users        []models.User
	findErr      error
	count        int64
	countErr     error
	insertErr    error
	inserted     []models.UserDetails
	updateResult *mongo.UpdateResult
	updateErr    error
	lastUpdate   interface{}
}

func (s *stubUserDB) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.User, error) {
	if s.findOneErr != nil {
		return nil, s.findOneErr
	}
	return s.user, nil
}

func (s *stubUserDB) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.users, nil
}

func (s *stubUserDB) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return s.count, s.countErr
}

func (s *stubUserDB) InsertOne(ctx context.Context, userDetails models.UserDetails) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = append(s.inserted, userDetails)
	return nil
}

func (s *stubUserDB) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	s.lastUpdate = update
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	if s.updateResult != nil {
		return s.updateResult, nil
	}
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}
