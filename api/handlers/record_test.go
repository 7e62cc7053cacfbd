package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/remlic/remlic-api/api"
	"github.com/remlic/remlic-api/licenses"
	"github.com/remlic/remlic-api/models"
)

func activeUser(tier string) *stubUserDB {
	return &stubUserDB{user: &models.User{
		ID:      primitive.NewObjectID(),
		Details: models.UserDetails{Tier: tier, SubscriptionStatus: "active"},
	}}
}

func newRecordHandler(store *stubRecordStore, users *stubUserDB) Record {
	stores := make(map[licenses.Category]licenses.RecordStore, len(licenses.Categories))
	for _, category := range licenses.Categories {
		stores[category] = store
	}
	cache := licenses.NewGroupCache(licenses.DefaultTTL)
	return Record{
		Coordinator: licenses.NewCoordinator(stores, users, cache),
		Stores:      stores,
	}
}

func ownerRequest(method, target string, body []byte, vars map[string]string, ownerID string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req = mux.SetURLVars(req, vars)
	return req.WithContext(api.ContextWithOwner(req.Context(), ownerID))
}

func TestCreateRecordHandler(t *testing.T) {
	ownerID := primitive.NewObjectID().Hex()
	store := &stubRecordStore{count: 0}
	h := newRecordHandler(store, activeUser("basic"))

	body, _ := json.Marshal(map[string]string{"expiryDate": "2027-06-01", "registrationNumber": "CA 123-456"})
	req := ownerRequest("POST", "/api/v1/licenses/vehicles", body, map[string]string{"category": "vehicles"}, ownerID)

	rr := httptest.NewRecorder()
	h.CreateRecordHandler(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Len(t, store.inserted, 1)
	assert.Equal(t, ownerID, store.inserted[0].Details.OwnerID)

	var created models.Record
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "CA 123-456", created.Details.RegistrationNumber)
}

func TestCreateRecordHandlerQuotaExceeded(t *testing.T) {
	ownerID := primitive.NewObjectID().Hex()
	store := &stubRecordStore{count: 2}
	h := newRecordHandler(store, activeUser("basic"))

	body, _ := json.Marshal(map[string]string{"expiryDate": "2027-06-01"})
	req := ownerRequest("POST", "/api/v1/licenses/vehicles", body, map[string]string{"category": "vehicles"}, ownerID)

	rr := httptest.NewRecorder()
	h.CreateRecordHandler(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Empty(t, store.inserted)
	assert.Contains(t, rr.Body.String(), "limit reached")
}

func TestCreateRecordHandlerUnknownCategory(t *testing.T) {
	h := newRecordHandler(&stubRecordStore{}, activeUser("basic"))

	req := ownerRequest("POST", "/api/v1/licenses/boats", []byte(`{}`), map[string]string{"category": "boats"}, primitive.NewObjectID().Hex())

	rr := httptest.NewRecorder()
	h.CreateRecordHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateRecordHandlerInvalidDate(t *testing.T) {
	store := &stubRecordStore{}
	h := newRecordHandler(store, activeUser("basic"))

	body, _ := json.Marshal(map[string]string{"expiryDate": "junk"})
	req := ownerRequest("POST", "/api/v1/licenses/drivers", body, map[string]string{"category": "drivers"}, primitive.NewObjectID().Hex())

	rr := httptest.NewRecorder()
	h.CreateRecordHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, store.inserted)
}

func TestRecordByIDHandler(t *testing.T) {
	ownerID := primitive.NewObjectID().Hex()
	record := &models.Record{ID: primitive.NewObjectID(), Details: models.RecordDetails{OwnerID: ownerID, ExpiryDate: "2027-01-01"}}
	store := &stubRecordStore{findOneResult: record}
	h := newRecordHandler(store, activeUser("basic"))

	req := ownerRequest("GET", "/api/v1/licenses/vehicles/"+record.ID.Hex(), nil,
		map[string]string{"category": "vehicles", "record_id": record.ID.Hex()}, ownerID)

	rr := httptest.NewRecorder()
	h.RecordByIDHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got models.Record
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, record.ID, got.ID)
}

func TestRecordByIDHandlerNotFound(t *testing.T) {
	store := &stubRecordStore{findOneErr: mongo.ErrNoDocuments}
	h := newRecordHandler(store, activeUser("basic"))

	req := ownerRequest("GET", "/api/v1/licenses/vehicles/x", nil,
		map[string]string{"category": "vehicles", "record_id": primitive.NewObjectID().Hex()}, primitive.NewObjectID().Hex())

	rr := httptest.NewRecorder()
	h.RecordByIDHandler(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateRecordHandlerNotFound(t *testing.T) {
	store := &stubRecordStore{updateResult: &mongo.UpdateResult{MatchedCount: 0}}
	h := newRecordHandler(store, activeUser("basic"))

	body, _ := json.Marshal(map[string]interface{}{"make": "Toyota"})
	req := ownerRequest("PUT", "/api/v1/licenses/vehicles/x", body,
		map[string]string{"category": "vehicles", "record_id": primitive.NewObjectID().Hex()}, primitive.NewObjectID().Hex())

	rr := httptest.NewRecorder()
	h.UpdateRecordHandler(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRenewRecordHandlerPastDate(t *testing.T) {
	store := &stubRecordStore{}
	h := newRecordHandler(store, activeUser("basic"))

	body, _ := json.Marshal(map[string]string{"expiryDate": "2000-01-01"})
	req := ownerRequest("PUT", "/api/v1/licenses/drivers/x/renew", body,
		map[string]string{"category": "drivers", "record_id": primitive.NewObjectID().Hex()}, primitive.NewObjectID().Hex())

	rr := httptest.NewRecorder()
	h.RenewRecordHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSetNotificationsHandler(t *testing.T) {
	store := &stubRecordStore{}
	h := newRecordHandler(store, activeUser("basic"))

	body, _ := json.Marshal(map[string]bool{"paused": true})
	req := ownerRequest("PUT", "/api/v1/licenses/tvlicenses/x/notifications", body,
		map[string]string{"category": "tvlicenses", "record_id": primitive.NewObjectID().Hex()}, primitive.NewObjectID().Hex())

	rr := httptest.NewRecorder()
	h.SetNotificationsHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "notifications updated successfully")
}

func TestDeleteRecordHandlerIdempotent(t *testing.T) {
	store := &stubRecordStore{deleted: 0}
	h := newRecordHandler(store, activeUser("basic"))

	req := ownerRequest("DELETE", "/api/v1/licenses/others/x", nil,
		map[string]string{"category": "others", "record_id": primitive.NewObjectID().Hex()}, primitive.NewObjectID().Hex())

	rr := httptest.NewRecorder()
	h.DeleteRecordHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "record deleted successfully")
}
