package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/remlic/remlic-api/api"
	"github.com/remlic/remlic-api/config"
	"github.com/remlic/remlic-api/licenses"
	"github.com/remlic/remlic-api/models"
)

// Record exported for testing purposes
type Record struct {
	Coordinator *licenses.Coordinator
	Stores      map[licenses.Category]licenses.RecordStore
}

// CreateRecordHandler creates a new license record for the authenticated
// owner, enforcing the tier quota
func (rec Record) CreateRecordHandler(w http.ResponseWriter, r *http.Request) {
	category, err := licenses.ParseCategory(mux.Vars(r)["category"])
	if err != nil {
		config.ErrorStatus("unknown category", http.StatusBadRequest, w, err)
		return
	}
	ownerID := api.OwnerFromContext(r.Context())

	var details models.RecordDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	record, err := rec.Coordinator.Create(ctx, category, ownerID, details)
	if err != nil {
		config.ErrorStatus("failed to create record", statusForError(err), w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(record)
}

// RecordByIDHandler returns a single record by ID, scoped to the
// authenticated owner
func (rec Record) RecordByIDHandler(w http.ResponseWriter, r *http.Request) {
	category, err := licenses.ParseCategory(mux.Vars(r)["category"])
	if err != nil {
		config.ErrorStatus("unknown category", http.StatusBadRequest, w, err)
		return
	}
	recID := mux.Vars(r)["record_id"]

	zap.S().Debugf("record_id: %v", recID)

	rID, err := primitive.ObjectIDFromHex(recID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}
	ownerID := api.OwnerFromContext(r.Context())

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := rec.Stores[category].FindOne(ctx, bson.M{"_id": rID, "record.ownerID": ownerID})
	if err != nil {
		config.ErrorStatus("failed to get record by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateRecordHandler applies field updates to a record owned by the caller
func (rec Record) UpdateRecordHandler(w http.ResponseWriter, r *http.Request) {
	category, err := licenses.ParseCategory(mux.Vars(r)["category"])
	if err != nil {
		config.ErrorStatus("unknown category", http.StatusBadRequest, w, err)
		return
	}
	recID := mux.Vars(r)["record_id"]
	ownerID := api.OwnerFromContext(r.Context())

	var updatedFields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updatedFields); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	record, err := rec.Coordinator.Update(ctx, category, recID, ownerID, updatedFields)
	if err != nil {
		config.ErrorStatus("failed to update record", statusForError(err), w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(record)
}

// RenewRecordHandler sets a new expiry date on a record
func (rec Record) RenewRecordHandler(w http.ResponseWriter, r *http.Request) {
	category, err := licenses.ParseCategory(mux.Vars(r)["category"])
	if err != nil {
		config.ErrorStatus("unknown category", http.StatusBadRequest, w, err)
		return
	}
	recID := mux.Vars(r)["record_id"]
	ownerID := api.OwnerFromContext(r.Context())

	var body struct {
		ExpiryDate string `json:"expiryDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	record, err := rec.Coordinator.Renew(ctx, category, recID, ownerID, body.ExpiryDate)
	if err != nil {
		config.ErrorStatus("failed to renew record", statusForError(err), w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(record)
}

// SetNotificationsHandler pauses or resumes reminder delivery for a record
func (rec Record) SetNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	category, err := licenses.ParseCategory(mux.Vars(r)["category"])
	if err != nil {
		config.ErrorStatus("unknown category", http.StatusBadRequest, w, err)
		return
	}
	recID := mux.Vars(r)["record_id"]
	ownerID := api.OwnerFromContext(r.Context())

	var body struct {
		Paused bool `json:"paused"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := rec.Coordinator.SetNotificationsPaused(ctx, category, recID, ownerID, body.Paused); err != nil {
		config.ErrorStatus("failed to update notifications", statusForError(err), w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "notifications updated successfully",
		"paused":  body.Paused,
	})
}

// DeleteRecordHandler deletes a record by ID. Deleting an ID that is already
// gone still succeeds.
func (rec Record) DeleteRecordHandler(w http.ResponseWriter, r *http.Request) {
	category, err := licenses.ParseCategory(mux.Vars(r)["category"])
	if err != nil {
		config.ErrorStatus("unknown category", http.StatusBadRequest, w, err)
		return
	}
	recID := mux.Vars(r)["record_id"]
	ownerID := api.OwnerFromContext(r.Context())

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := rec.Coordinator.Delete(ctx, category, recID, ownerID); err != nil {
		config.ErrorStatus("failed to delete record", statusForError(err), w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "record deleted successfully",
	})
}

// statusForError maps the licenses error taxonomy onto HTTP status codes
func statusForError(err error) int {
	var quotaErr *licenses.QuotaExceededError
	switch {
	case errors.As(err, &quotaErr):
		return http.StatusForbidden
	case errors.Is(err, licenses.ErrAccessDenied):
		return http.StatusPaymentRequired
	case errors.Is(err, licenses.ErrDuplicateValue):
		return http.StatusConflict
	case errors.Is(err, licenses.ErrInvalidDate):
		return http.StatusBadRequest
	case errors.Is(err, licenses.ErrUnknownCategory):
		return http.StatusBadRequest
	case errors.Is(err, licenses.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, licenses.ErrUnauthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
