package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	"github.com/remlic/remlic-api/api"
	"github.com/remlic/remlic-api/api/scheduler"
	"github.com/remlic/remlic-api/config"
	"github.com/remlic/remlic-api/databases"
	"github.com/remlic/remlic-api/licenses"
	"github.com/remlic/remlic-api/models"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	dbHelper  databases.DatabaseHelper
	scheduler *scheduler.Scheduler
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewUserDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()
	r.Use(api.MetricsMiddleware)
	r.Use(api.TimeoutMiddleware(30 * time.Second))

	users := databases.NewUserDatabase(a.dbHelper)
	stores := make(map[licenses.Category]licenses.RecordStore, len(licenses.Categories))
	for _, category := range licenses.Categories {
		stores[category] = databases.NewRecordDatabase(a.dbHelper, category.Collection())
	}
	cache := licenses.NewGroupCache(licenses.DefaultTTL)
	aggregator := licenses.NewAggregator(stores, users, cache)
	coordinator := licenses.NewCoordinator(stores, users, cache)

	u := User{DB: users}
	sub := Subscription{DB: users, Cache: cache, Config: a.Config}
	d := Dashboard{Aggregator: aggregator}
	rec := Record{Coordinator: coordinator, Stores: stores}
	q := Quota{Stores: stores, Aggregator: aggregator}
	met := Metrics{}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/auth/token", http.HandlerFunc(m.CreateToken)).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/user/create-user", http.HandlerFunc(u.UserCreateHandler)).Methods("POST")
	apiCreate.Handle("/user/check-user", http.HandlerFunc(u.UserCheckEmailHandler)).Methods("POST")
	apiCreate.Handle("/user/create-checkout-session", api.Middleware(http.HandlerFunc(sub.CreateCheckoutSessionHandler))).Methods("POST")
	apiCreate.Handle("/user/verify-subscription", api.Middleware(http.HandlerFunc(sub.VerifySubscriptionHandler))).Methods("POST")
	apiCreate.Handle("/user/unsubscribe", api.Middleware(http.HandlerFunc(sub.UnsubscribeHandler))).Methods("POST")
	apiCreate.Handle("/user/{user_id}", api.Middleware(http.HandlerFunc(u.UserHandler))).Methods("GET")

	apiCreate.Handle("/dashboard", api.Middleware(http.HandlerFunc(d.DashboardHandler))).Methods("GET")

	// limit must register before the {record_id} GET so mux matches it first
	apiCreate.Handle("/licenses/{category}/limit", api.Middleware(http.HandlerFunc(q.LimitCheckHandler))).Methods("GET")
	apiCreate.Handle("/licenses/{category}", api.Middleware(http.HandlerFunc(rec.CreateRecordHandler))).Methods("POST")
	apiCreate.Handle("/licenses/{category}/{record_id}", api.Middleware(http.HandlerFunc(rec.RecordByIDHandler))).Methods("GET")
	apiCreate.Handle("/licenses/{category}/{record_id}", api.Middleware(http.HandlerFunc(rec.UpdateRecordHandler))).Methods("PUT")
	apiCreate.Handle("/licenses/{category}/{record_id}/renew", api.Middleware(http.HandlerFunc(rec.RenewRecordHandler))).Methods("PUT")
	apiCreate.Handle("/licenses/{category}/{record_id}/notifications", api.Middleware(http.HandlerFunc(rec.SetNotificationsHandler))).Methods("PUT")
	apiCreate.Handle("/licenses/{category}/{record_id}", api.Middleware(http.HandlerFunc(rec.DeleteRecordHandler))).Methods("DELETE")

	apiCreate.Handle("/metrics/summary", api.Middleware(http.HandlerFunc(met.SummaryHandler))).Methods("GET")
	apiCreate.Handle("/metrics/routes", api.Middleware(http.HandlerFunc(met.RoutesHandler))).Methods("GET")
	apiCreate.Handle("/metrics/slowest", api.Middleware(http.HandlerFunc(met.SlowestRoutesHandler))).Methods("GET")

	apiCreate.Handle("/success", http.HandlerFunc(sub.handleSuccessRedirect)).Methods("GET")
	apiCreate.Handle("/cancel", http.HandlerFunc(sub.handleCancelRedirect)).Methods("GET")

	// swagger docs hosted at "/"
	r.PathPrefix("/").Handler(http.StripPrefix("/", http.FileServer(http.Dir("./docs/"))))
	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("remlic-api has connected to the database")

	// initialize stripe
	if a.Config.StripeKey == "" {
		return fmt.Errorf("stripe secret key is not set")
	}
	stripe.Key = a.Config.StripeKey

	// start the expiry reminder scheduler
	recordDBs := make(map[licenses.Category]databases.RecordDatabase, len(licenses.Categories))
	for _, category := range licenses.Categories {
		recordDBs[category] = databases.NewRecordDatabase(a.dbHelper, category.Collection())
	}
	a.scheduler = scheduler.NewScheduler(
		recordDBs,
		databases.NewUserDatabase(a.dbHelper),
		databases.NewSchedulerLockDatabase(a.dbHelper),
		a.Config.SendgridAPIKey,
		a.Config.BaseURL,
	)
	a.scheduler.Start()

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
