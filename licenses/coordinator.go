package licenses

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/remlic/remlic-api/models"
)

const dateLayout = "2006-01-02"

// Coordinator wraps every record mutation: it re-validates quota on create,
// scopes update/renew/delete by both record id and owner, and funnels all
// successful writes through one cache invalidation choke point.
type Coordinator struct {
	stores   map[Category]RecordStore
	profiles ProfileStore
	cache    *GroupCache
	now      func() time.Time
}

// NewCoordinator wires a coordinator over the per-category stores, the
// profile store and the aggregation cache it invalidates.
func NewCoordinator(stores map[Category]RecordStore, profiles ProfileStore, cache *GroupCache) *Coordinator {
	return &Coordinator{
		stores:   stores,
		profiles: profiles,
		cache:    cache,
		now:      time.Now,
	}
}

// Create inserts a new record for the owner after re-checking the tier quota
// against the store's live count. The live count is the authoritative guard;
// any client-side pre-check is advisory only. OwnerID is attached here, a
// client-supplied owner id in the payload is overwritten.
func (m *Coordinator) Create(ctx context.Context, category Category, ownerID string, details models.RecordDetails) (*models.Record, error) {
	store, ok := m.stores[category]
	if !ok {
		return nil, ErrUnknownCategory
	}

	if _, err := time.Parse(dateLayout, details.ExpiryDate); err != nil {
		return nil, ErrInvalidDate
	}

	limit := m.limitFor(ctx, ownerID)
	count, err := store.CountDocuments(ctx, ownerFilter(ownerID))
	if err != nil {
		return nil, ErrFetchFailed
	}
	if int(count) >= limit {
		return nil, &QuotaExceededError{Category: category, Limit: limit}
	}

	nowStamp := primitive.NewDateTimeFromTime(m.now())
	details.OwnerID = ownerID
	details.CreatedAt = nowStamp
	details.UpdatedAt = nowStamp

	record := models.Record{
		ID:      primitive.NewObjectID(),
		Details: details,
	}
	if err := store.InsertOne(ctx, record); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateValue
		}
		return nil, err
	}

	m.afterMutation(ownerID)
	return &record, nil
}

// Update applies field changes to a record owned by the caller. The store
// operation is filtered by both id and owner; zero matched rows reports
// ErrNotFound rather than silently succeeding.
func (m *Coordinator) Update(ctx context.Context, category Category, recordID, ownerID string, fields map[string]interface{}) (*models.Record, error) {
	store, ok := m.stores[category]
	if !ok {
		return nil, ErrUnknownCategory
	}
	filter, err := recordFilter(recordID, ownerID)
	if err != nil {
		return nil, ErrNotFound
	}

	// The owner reference and creation stamp are immutable.
	delete(fields, "ownerID")
	delete(fields, "createdAt")
	if expiry, ok := fields["expiryDate"].(string); ok {
		if _, err := time.Parse(dateLayout, expiry); err != nil {
			return nil, ErrInvalidDate
		}
	}

	set := bson.M{"record.updatedAt": primitive.NewDateTimeFromTime(m.now())}
	for key, value := range fields {
		set["record."+key] = value
	}

	res, err := store.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateValue
		}
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}

	m.afterMutation(ownerID)
	return store.FindOne(ctx, filter)
}

// Renew is a constrained update touching only the expiry date. The new date
// must parse and must not fall before today.
func (m *Coordinator) Renew(ctx context.Context, category Category, recordID, ownerID, newExpiryDate string) (*models.Record, error) {
	expiry, err := time.Parse(dateLayout, newExpiryDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	today := m.now().Truncate(24 * time.Hour)
	if expiry.Before(today) {
		return nil, ErrInvalidDate
	}

	return m.Update(ctx, category, recordID, ownerID, map[string]interface{}{
		"expiryDate": newExpiryDate,
	})
}

// Delete removes a record scoped by id and owner. Deleting an id that is
// already gone is treated as success; the coordinator cannot tell "already
// deleted" from "never existed" without an extra read.
func (m *Coordinator) Delete(ctx context.Context, category Category, recordID, ownerID string) error {
	store, ok := m.stores[category]
	if !ok {
		return ErrUnknownCategory
	}
	filter, err := recordFilter(recordID, ownerID)
	if err != nil {
		return nil
	}

	deleted, err := store.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if deleted == 0 {
		zap.S().Debugw("delete matched no record", "category", category, "recordID", recordID)
	}

	m.afterMutation(ownerID)
	return nil
}

// SetNotificationsPaused toggles reminder delivery for one record. It runs
// through the same invalidation choke point as every other mutation so the
// cached group never shows a stale pause flag.
func (m *Coordinator) SetNotificationsPaused(ctx context.Context, category Category, recordID, ownerID string, paused bool) error {
	store, ok := m.stores[category]
	if !ok {
		return ErrUnknownCategory
	}
	filter, err := recordFilter(recordID, ownerID)
	if err != nil {
		return ErrNotFound
	}

	res, err := store.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"record.notificationsPaused": paused,
		"record.updatedAt":           primitive.NewDateTimeFromTime(m.now()),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	m.afterMutation(ownerID)
	return nil
}

// afterMutation is the single hook every successful write passes through.
func (m *Coordinator) afterMutation(ownerID string) {
	m.cache.Invalidate(ownerID)
}

func (m *Coordinator) limitFor(ctx context.Context, ownerID string) int {
	filter, err := profileFilter(ownerID)
	if err != nil {
		return LimitFor(TierBasic)
	}
	user, err := m.profiles.FindOne(ctx, filter)
	if err != nil {
		return LimitFor(TierBasic)
	}
	return LimitFor(Tier(user.Details.Tier))
}

func recordFilter(recordID, ownerID string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(recordID)
	if err != nil {
		return nil, err
	}
	return bson.M{"_id": oid, "record.ownerID": ownerID}, nil
}
