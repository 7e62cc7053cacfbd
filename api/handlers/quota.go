package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/remlic/remlic-api/api"
	"github.com/remlic/remlic-api/config"
	"github.com/remlic/remlic-api/licenses"
	"github.com/remlic/remlic-api/models"
)

// Quota exported for testing purposes
type Quota struct {
	Stores     map[licenses.Category]licenses.RecordStore
	Aggregator *licenses.Aggregator
}

// LimitCheckHandler reports whether the authenticated owner can add another
// record of the given category under their tier. The count is read live from
// the store; the create path re-checks it anyway, so this answer is advisory.
func (q Quota) LimitCheckHandler(w http.ResponseWriter, r *http.Request) {
	category, err := licenses.ParseCategory(mux.Vars(r)["category"])
	if err != nil {
		config.ErrorStatus("unknown category", http.StatusBadRequest, w, err)
		return
	}
	ownerID := api.OwnerFromContext(r.Context())

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	count, err := q.Stores[category].CountDocuments(ctx, bson.M{"record.ownerID": ownerID})
	if err != nil {
		config.ErrorStatus("failed to count records", http.StatusInternalServerError, w, err)
		return
	}

	limit := licenses.LimitFor(q.Aggregator.Tier(ctx, ownerID))
	respLimit := limit
	if respLimit == licenses.Unlimited {
		respLimit = -1
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(models.LimitCheckResponse{
		CanAdd:       int(count) < limit,
		CurrentCount: int(count),
		Limit:        respLimit,
		Category:     category.String(),
	})
}
