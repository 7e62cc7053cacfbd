package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/subscription"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/remlic/remlic-api/api"
	"github.com/remlic/remlic-api/config"
	"github.com/remlic/remlic-api/databases"
	"github.com/remlic/remlic-api/licenses"
	"github.com/remlic/remlic-api/models"
)

// Subscription exported for testing purposes
type Subscription struct {
	DB     databases.UserDatabase
	Cache  *licenses.GroupCache
	Config config.Config
}

// CreateCheckoutSessionHandler starts a stripe checkout session for the
// requested tier
func (s Subscription) CreateCheckoutSessionHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ownerID := api.OwnerFromContext(r.Context())

	var body struct {
		Tier string `json:"tier"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	priceID := priceForTier(body.Tier)
	if priceID == "" {
		config.ErrorStatus("unknown tier", http.StatusBadRequest, w, fmt.Errorf("no price configured for tier %q", body.Tier))
		return
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(s.Config.BaseURL + "/api/v1/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:         stripe.String(s.Config.BaseURL + "/api/v1/cancel"),
		ClientReferenceID: stripe.String(ownerID),
	}
	params.AddMetadata("tier", body.Tier)
	params.AddMetadata("userID", ownerID)

	sess, err := session.New(params)
	if err != nil {
		config.ErrorStatus("failed to create checkout session", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(models.CheckoutSessionResponse{
		SessionID: sess.ID,
		URL:       sess.URL,
	})
}

// VerifySubscriptionHandler reads back a completed checkout session and
// writes the subscription snapshot onto the owner's profile. The stored
// snapshot is what gates dashboard access; stripe is not consulted per
// request.
func (s Subscription) VerifySubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ownerID := api.OwnerFromContext(r.Context())

	var body struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	params := &stripe.CheckoutSessionParams{}
	params.AddExpand("subscription")
	sess, err := session.Get(body.SessionID, params)
	if err != nil {
		config.ErrorStatus("failed to fetch checkout session", http.StatusInternalServerError, w, err)
		return
	}
	if sess.Subscription == nil {
		config.ErrorStatus("checkout session has no subscription", http.StatusBadRequest, w, fmt.Errorf("session %s not completed", body.SessionID))
		return
	}

	oID, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	sub := sess.Subscription
	set := bson.M{
		"user.tier":                 sess.Metadata["tier"],
		"user.subscriptionStatus":   string(sub.Status),
		"user.stripeSubscriptionID": sub.ID,
		"user.updatedAt":            primitive.NewDateTimeFromTime(time.Now()),
	}
	if sub.Customer != nil {
		set["user.stripeCustomerID"] = sub.Customer.ID
	}
	if end := subscriptionPeriodEnd(sub); !end.IsZero() {
		set["user.subscriptionEndDate"] = end.Format("2006-01-02")
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := s.DB.UpdateOne(ctx, bson.M{"_id": oID}, bson.M{"$set": set})
	if err != nil {
		config.ErrorStatus("failed to update subscription", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("user not found", http.StatusNotFound, w, fmt.Errorf("no user for id %s", ownerID))
		return
	}

	// the cached group predates the tier change
	s.Cache.Invalidate(ownerID)

	zap.S().Infow("subscription verified",
		"ownerID", ownerID,
		"tier", sess.Metadata["tier"],
		"status", string(sub.Status),
	)

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"tier":   sess.Metadata["tier"],
		"status": string(sub.Status),
	})
}

// UnsubscribeHandler cancels the owner's stripe subscription and downgrades
// the stored snapshot
func (s Subscription) UnsubscribeHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ownerID := api.OwnerFromContext(r.Context())

	oID, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := s.DB.FindOne(ctx, bson.M{"_id": oID})
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
		return
	}
	if user.Details.StripeSubscriptionID == "" {
		config.ErrorStatus("no active subscription", http.StatusBadRequest, w, fmt.Errorf("user %s has no subscription", ownerID))
		return
	}

	if _, err := subscription.Cancel(user.Details.StripeSubscriptionID, nil); err != nil {
		config.ErrorStatus("failed to cancel subscription", http.StatusInternalServerError, w, err)
		return
	}

	_, err = s.DB.UpdateOne(ctx, bson.M{"_id": oID}, bson.M{"$set": bson.M{
		"user.tier":                 string(licenses.TierBasic),
		"user.subscriptionStatus":   "canceled",
		"user.stripeSubscriptionID": "",
		"user.updatedAt":            primitive.NewDateTimeFromTime(time.Now()),
	}})
	if err != nil {
		config.ErrorStatus("failed to update subscription", http.StatusInternalServerError, w, err)
		return
	}

	s.Cache.Invalidate(ownerID)

	zap.S().Infow("subscription canceled", "ownerID", ownerID)

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "subscription canceled"}`))
}

func (s Subscription) handleSuccessRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.Config.BaseURL+"/dashboard?checkout=success", http.StatusSeeOther)
}

func (s Subscription) handleCancelRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.Config.BaseURL+"/dashboard?checkout=canceled", http.StatusSeeOther)
}

// priceForTier resolves a tier name to its stripe price id via env, e.g.
// STRIPE_PRICE_STANDARD
func priceForTier(tier string) string {
	if _, err := licenses.ParseTier(tier); err != nil {
		return ""
	}
	return os.Getenv("STRIPE_PRICE_" + strings.ToUpper(tier))
}

// subscriptionPeriodEnd pulls the current period end off the subscription's
// first item; the field lives on the item since the basil API versions.
func subscriptionPeriodEnd(sub *stripe.Subscription) time.Time {
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return time.Time{}
	}
	end := sub.Items.Data[0].CurrentPeriodEnd
	if end == 0 {
		return time.Time{}
	}
	return time.Unix(end, 0).UTC()
}
