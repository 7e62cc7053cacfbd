package licenses

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/remlic/remlic-api/models"
)

// RecordStore is the per-category persistence surface the aggregator and the
// mutation coordinator use. databases.RecordDatabase satisfies it.
type RecordStore interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Record, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Record, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, record models.Record, opts ...*options.InsertOneOptions) error
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error)
}

// ProfileStore resolves owner profiles for the subscription gate and the
// quota checks. databases.UserDatabase satisfies it.
type ProfileStore interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.User, error)
}

// Group is the full per-owner mapping of category to record sequence. Every
// category key is always present, even when empty. Failed lists categories
// whose fetch errored during aggregation; their slices are empty rather than
// missing, so consumers can tell "no records" from "failed to load".
type Group struct {
	Records map[Category][]models.Record
	Failed  []Category
}

// Aggregator orchestrates the parallel fetch of all categories for one owner
// and caches the assembled group.
type Aggregator struct {
	stores   map[Category]RecordStore
	profiles ProfileStore
	cache    *GroupCache
	inflight singleflight.Group
	now      func() time.Time
}

// NewAggregator wires an aggregator over the per-category stores, the profile
// store and the group cache.
func NewAggregator(stores map[Category]RecordStore, profiles ProfileStore, cache *GroupCache) *Aggregator {
	return &Aggregator{
		stores:   stores,
		profiles: profiles,
		cache:    cache,
		now:      time.Now,
	}
}

// Load returns the owner's license group, serving from cache when a fresh
// entry exists. Concurrent loads for the same owner share one fetch.
func (a *Aggregator) Load(ctx context.Context, ownerID string) (*Group, error) {
	if group, ok := a.cache.Get(ownerID); ok {
		return group, nil
	}

	v, err, _ := a.inflight.Do(ownerID, func() (interface{}, error) {
		return a.load(ctx, ownerID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Group), nil
}

func (a *Aggregator) load(ctx context.Context, ownerID string) (*Group, error) {
	active, err := a.subscriptionActive(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrAccessDenied
	}

	group := &Group{Records: make(map[Category][]models.Record, len(Categories))}
	var mu sync.Mutex

	// Fire all category fetches concurrently; a single failed category
	// degrades to an empty slice and is reported via Failed, it does not
	// fail the whole load.
	g, ctx := errgroup.WithContext(ctx)
	for _, category := range Categories {
		category := category
		g.Go(func() error {
			records, err := a.stores[category].Find(ctx,
				ownerFilter(ownerID),
				options.Find().
					SetSort(bson.D{{Key: "record.expiryDate", Value: 1}}).
					SetProjection(dashboardProjection(category)),
			)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				zap.S().Errorw("failed to fetch category records",
					"category", category,
					"ownerID", ownerID,
					"error", err,
				)
				group.Records[category] = []models.Record{}
				group.Failed = append(group.Failed, category)
				return nil
			}
			if records == nil {
				records = []models.Record{}
			}
			group.Records[category] = records
			return nil
		})
	}
	_ = g.Wait()

	if len(group.Failed) == len(Categories) {
		return nil, ErrFetchFailed
	}
	sortCategories(group.Failed)

	// The cache write happens only after every fetch has resolved; a group
	// is cached whole or not at all.
	a.cache.Set(ownerID, group)
	return group, nil
}

// subscriptionActive reads the owner's current billing snapshot. A missing
// profile counts as no subscription.
func (a *Aggregator) subscriptionActive(ctx context.Context, ownerID string) (bool, error) {
	filter, err := profileFilter(ownerID)
	if err != nil {
		return false, ErrUnauthenticated
	}
	user, err := a.profiles.FindOne(ctx, filter)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, ErrFetchFailed
	}

	if user.Details.SubscriptionStatus != "active" {
		return false, nil
	}
	if user.Details.SubscriptionEndDate == "" {
		return true, nil
	}
	end, err := time.Parse(dateLayout, user.Details.SubscriptionEndDate)
	if err != nil {
		return true, nil
	}
	return end.After(a.now()), nil
}

// Tier returns the owner's subscription tier, falling back to basic when the
// profile is missing or carries no tier.
func (a *Aggregator) Tier(ctx context.Context, ownerID string) Tier {
	filter, err := profileFilter(ownerID)
	if err != nil {
		return TierBasic
	}
	user, err := a.profiles.FindOne(ctx, filter)
	if err != nil {
		return TierBasic
	}
	return Tier(user.Details.Tier)
}

func ownerFilter(ownerID string) bson.M {
	return bson.M{"record.ownerID": ownerID}
}

func profileFilter(ownerID string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, err
	}
	return bson.M{"_id": oid}, nil
}

func dashboardProjection(category Category) bson.M {
	projection := bson.M{
		"record.ownerID":             1,
		"record.expiryDate":          1,
		"record.createdAt":           1,
		"record.notificationsPaused": 1,
	}
	for _, field := range displayFields[category] {
		projection["record."+field] = 1
	}
	return projection
}

// sortCategories orders a category slice by declared order so the failed
// list is deterministic.
func sortCategories(cats []Category) {
	order := make(map[Category]int, len(Categories))
	for i, c := range Categories {
		order[c] = i
	}
	for i := 1; i < len(cats); i++ {
		for j := i; j > 0 && order[cats[j]] < order[cats[j-1]]; j-- {
			cats[j], cats[j-1] = cats[j-1], cats[j]
		}
	}
}
