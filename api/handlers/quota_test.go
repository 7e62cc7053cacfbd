package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/remlic/remlic-api/licenses"
	"github.com/remlic/remlic-api/models"
)

func newQuotaHandler(store *stubRecordStore, users *stubUserDB) Quota {
	stores := allStores(store)
	cache := licenses.NewGroupCache(licenses.DefaultTTL)
	return Quota{
		Stores:     stores,
		Aggregator: licenses.NewAggregator(stores, users, cache),
	}
}

func TestLimitCheckHandlerUnderLimit(t *testing.T) {
	h := newQuotaHandler(&stubRecordStore{count: 1}, activeUser("basic"))

	req := ownerRequest("GET", "/api/v1/licenses/vehicles/limit", nil,
		map[string]string{"category": "vehicles"}, primitive.NewObjectID().Hex())
	rr := httptest.NewRecorder()
	h.LimitCheckHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp models.LimitCheckResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.CanAdd)
	assert.Equal(t, 1, resp.CurrentCount)
	assert.Equal(t, 2, resp.Limit)
	assert.Equal(t, "vehicles", resp.Category)
}

func TestLimitCheckHandlerAtLimit(t *testing.T) {
	h := newQuotaHandler(&stubRecordStore{count: 2}, activeUser("basic"))

	req := ownerRequest("GET", "/api/v1/licenses/drivers/limit", nil,
		map[string]string{"category": "drivers"}, primitive.NewObjectID().Hex())
	rr := httptest.NewRecorder()
	h.LimitCheckHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp models.LimitCheckResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.CanAdd)
	assert.Equal(t, 2, resp.CurrentCount)
}

func TestLimitCheckHandlerUnlimitedTier(t *testing.T) {
	h := newQuotaHandler(&stubRecordStore{count: 500}, activeUser("premium"))

	req := ownerRequest("GET", "/api/v1/licenses/firearms/limit", nil,
		map[string]string{"category": "firearms"}, primitive.NewObjectID().Hex())
	rr := httptest.NewRecorder()
	h.LimitCheckHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp models.LimitCheckResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.CanAdd)
	assert.Equal(t, -1, resp.Limit)
}

func TestLimitCheckHandlerUnknownCategory(t *testing.T) {
	h := newQuotaHandler(&stubRecordStore{}, activeUser("basic"))

	req := ownerRequest("GET", "/api/v1/licenses/boats/limit", nil,
		map[string]string{"category": "boats"}, primitive.NewObjectID().Hex())
	rr := httptest.NewRecorder()
	h.LimitCheckHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
