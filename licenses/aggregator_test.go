package licenses

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/remlic/remlic-api/models"
)

// fakeRecordStore is a hand-rolled RecordStore double shared by the
// aggregator and coordinator tests.
type fakeRecordStore struct {
	mu sync.Mutex

	records  []models.Record
	findErr  error
	findCalls int

	count    int64
	countErr error

	insertErr error
	inserted  []models.Record

	updateResult *mongo.UpdateResult
	updateErr    error
	updateCalls  int
	lastUpdate   interface{}

	deleted     int64
	deleteErr   error
	deleteCalls int

	findOneResult *models.Record
	findOneErr    error
}

func (f *fakeRecordStore) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Record, error) {
	if f.findOneErr != nil {
		return nil, f.findOneErr
	}
	return f.findOneResult, nil
}

func (f *fakeRecordStore) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.records, nil
}

func (f *fakeRecordStore) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return f.count, f.countErr
}

func (f *fakeRecordStore) InsertOne(ctx context.Context, record models.Record, opts ...*options.InsertOneOptions) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, record)
	return nil
}

func (f *fakeRecordStore) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	f.updateCalls++
	f.lastUpdate = update
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.updateResult != nil {
		return f.updateResult, nil
	}
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (f *fakeRecordStore) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	f.deleteCalls++
	return f.deleted, f.deleteErr
}

type fakeProfileStore struct {
	user *models.User
	err  error
}

func (f *fakeProfileStore) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func activeProfile(tier string) *fakeProfileStore {
	return &fakeProfileStore{user: &models.User{
		ID:      primitive.NewObjectID(),
		Details: models.UserDetails{Tier: tier, SubscriptionStatus: "active"},
	}}
}

func testStores(perStore func(Category) *fakeRecordStore) map[Category]RecordStore {
	stores := make(map[Category]RecordStore, len(Categories))
	for _, category := range Categories {
		stores[category] = perStore(category)
	}
	return stores
}

func TestLoadAggregatesAllCategories(t *testing.T) {
	ownerID := primitive.NewObjectID().Hex()
	fakes := make(map[Category]*fakeRecordStore)
	stores := testStores(func(c Category) *fakeRecordStore {
		fakes[c] = &fakeRecordStore{records: []models.Record{
			{ID: primitive.NewObjectID(), Details: models.RecordDetails{OwnerID: ownerID, ExpiryDate: "2027-01-01"}},
		}}
		return fakes[c]
	})

	a := NewAggregator(stores, activeProfile("standard"), NewGroupCache(DefaultTTL))

	group, err := a.Load(context.Background(), ownerID)
	assert.NoError(t, err)
	assert.Len(t, group.Records, len(Categories))
	assert.Empty(t, group.Failed)
	for _, category := range Categories {
		assert.Len(t, group.Records[category], 1, "category %s", category)
	}
}

func TestLoadServesFromCache(t *testing.T) {
	ownerID := primitive.NewObjectID().Hex()
	fakes := make(map[Category]*fakeRecordStore)
	stores := testStores(func(c Category) *fakeRecordStore {
		fakes[c] = &fakeRecordStore{}
		return fakes[c]
	})

	a := NewAggregator(stores, activeProfile("basic"), NewGroupCache(DefaultTTL))

	first, err := a.Load(context.Background(), ownerID)
	assert.NoError(t, err)
	second, err := a.Load(context.Background(), ownerID)
	assert.NoError(t, err)

	assert.Same(t, first, second)
	for _, fake := range fakes {
		assert.Equal(t, 1, fake.findCalls)
	}
}

func TestLoadInactiveSubscriptionDenied(t *testing.T) {
	ownerID := primitive.NewObjectID().Hex()
	stores := testStores(func(Category) *fakeRecordStore { return &fakeRecordStore{} })
	profiles := &fakeProfileStore{user: &models.User{Details: models.UserDetails{SubscriptionStatus: "expired"}}}

	a := NewAggregator(stores, profiles, NewGroupCache(DefaultTTL))

	_, err := a.Load(context.Background(), ownerID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestLoadMissingProfileDenied(t *testing.T) {
	ownerID := primitive.NewObjectID().Hex()
	stores := testStores(func(Category) *fakeRecordStore { return &fakeRecordStore{} })
	profiles := &fakeProfileStore{err: mongo.ErrNoDocuments}

	a := NewAggregator(stores, profiles, NewGroupCache(DefaultTTL))

	_, err := a.Load(context.Background(), ownerID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestLoadMalformedOwnerIDUnauthenticated(t *testing.T) {
	stores := testStores(func(Category) *fakeRecordStore { return &fakeRecordStore{} })

	a := NewAggregator(stores, activeProfile("basic"), NewGroupCache(DefaultTTL))

	_, err := a.Load(context.Background(), "not-an-object-id")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestLoadLapsedEndDateDenied(t *testing.T) {
	ownerID := primitive.NewObjectID().Hex()
	stores := testStores(func(Category) *fakeRecordStore { return &fakeRecordStore{} })
	profiles := &fakeProfileStore{user: &models.User{Details: models.UserDetails{
		SubscriptionStatus:  "active",
		SubscriptionEndDate: "2020-01-01",
	}}}

	a := NewAggregator(stores, profiles, NewGroupCache(DefaultTTL))

	_, err := a.Load(context.Background(), ownerID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestLoadPartialFailureDegrades(t *testing.T) {
	ownerID := primitive.NewObjectID().Hex()
	fakes := make(map[Category]*fakeRecordStore)
	stores := testStores(func(c Category) *fakeRecordStore {
		fake := &fakeRecordStore{records: []models.Record{{ID: primitive.NewObjectID()}}}
		if c == CategoryFirearms {
			fake.findErr = assert.AnError
		}
		fakes[c] = fake
		return fake
	})

	a := NewAggregator(stores, activeProfile("premium"), NewGroupCache(DefaultTTL))

	group, err := a.Load(context.Background(), ownerID)
	assert.NoError(t, err)
	assert.Equal(t, []Category{CategoryFirearms}, group.Failed)
	assert.Empty(t, group.Records[CategoryFirearms], "failed category defaults to empty")
	assert.NotNil(t, group.Records[CategoryFirearms])
	assert.Len(t, group.Records[CategoryVehicles], 1)
}

func TestLoadAllCategoriesFailed(t *testing.T) {
	ownerID := primitive.NewObjectID().Hex()
	stores := testStores(func(Category) *fakeRecordStore {
		return &fakeRecordStore{findErr: assert.AnError}
	})

	cache := NewGroupCache(DefaultTTL)
	a := NewAggregator(stores, activeProfile("basic"), cache)

	_, err := a.Load(context.Background(), ownerID)
	assert.ErrorIs(t, err, ErrFetchFailed)

	_, ok := cache.Get(ownerID)
	assert.False(t, ok, "a failed load must not be cached")
}

func TestTierFallsBackToBasic(t *testing.T) {
	stores := testStores(func(Category) *fakeRecordStore { return &fakeRecordStore{} })

	a := NewAggregator(stores, &fakeProfileStore{err: mongo.ErrNoDocuments}, NewGroupCache(DefaultTTL))
	assert.Equal(t, TierBasic, a.Tier(context.Background(), primitive.NewObjectID().Hex()))
	assert.Equal(t, TierBasic, a.Tier(context.Background(), "bad-id"))
}

func TestSortCategoriesDeclaredOrder(t *testing.T) {
	cats := []Category{CategoryTVLicenses, CategoryDrivers, CategoryVehicles}
	sortCategories(cats)
	assert.Equal(t, []Category{CategoryVehicles, CategoryDrivers, CategoryTVLicenses}, cats)
}

func TestLoadRefetchesAfterTTL(t *testing.T) {
	ownerID := primitive.NewObjectID().Hex()
	fakes := make(map[Category]*fakeRecordStore)
	stores := testStores(func(c Category) *fakeRecordStore {
		fakes[c] = &fakeRecordStore{}
		return fakes[c]
	})

	now := time.Now()
	cache := NewGroupCache(DefaultTTL)
	cache.now = func() time.Time { return now }

	a := NewAggregator(stores, activeProfile("basic"), cache)

	_, err := a.Load(context.Background(), ownerID)
	assert.NoError(t, err)

	now = now.Add(DefaultTTL)
	_, err = a.Load(context.Background(), ownerID)
	assert.NoError(t, err)

	for _, fake := range fakes {
		assert.Equal(t, 2, fake.findCalls)
	}
}
