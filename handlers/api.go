// Package handlers exposes the monitoring core over HTTP.
package handlers

import (
	"context"
	"net/http"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"water-quality-monitor/cache"
	"water-quality-monitor/forecast"
	"water-quality-monitor/notify"
	"water-quality-monitor/store"
)

// ReadingStore is the snapshot provider the handlers query.
type ReadingStore interface {
	Snapshot(ctx context.Context) (*store.Snapshot, error)
	Reload(ctx context.Context) (*store.Snapshot, error)
	Loaded() *store.Snapshot
}

type ForecastCache interface {
	GetForecast(ctx context.Context, key cache.Key) (*forecast.Result, error)
	SaveForecast(ctx context.Context, key cache.Key, result *forecast.Result) error
}

type Deps struct {
	Store   ReadingStore
	Trainer *forecast.Trainer
	Engine  *forecast.Engine
	Cache   ForecastCache         // optional
	Alerts  notify.AlertPublisher // optional
	Logger  *zap.Logger
}

type API struct {
	store   ReadingStore
	trainer *forecast.Trainer
	engine  *forecast.Engine
	cache   ForecastCache
	alerts  notify.AlertPublisher
	logger  *zap.Logger
	now     func() time.Time
}

func NewAPI(d Deps) *API {
	a := &API{
		store:   d.Store,
		trainer: d.Trainer,
		engine:  d.Engine,
		cache:   d.Cache,
		alerts:  d.Alerts,
		logger:  d.Logger,
		now:     time.Now,
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	if a.alerts == nil {
		a.alerts = notify.Nop{}
	}
	if a.trainer == nil {
		a.trainer = forecast.NewTrainer(forecast.DefaultModelConfig())
	}
	if a.engine == nil {
		a.engine = forecast.NewEngine(a.trainer, 0, a.logger)
	}
	return a
}

// Router registers every route on a gorilla/mux router.
func (a *API) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(instrument)

	r.HandleFunc("/health", HealthCheck).Methods(http.MethodGet)
	r.Path("/metrics").Handler(promhttp.Handler())

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/alerts/rules", a.HandleAlertRules).Methods(http.MethodGet)
	api.HandleFunc("/alerts/evaluate", a.HandleEvaluate).Methods(http.MethodPost)
	api.HandleFunc("/alerts/historical", a.HandleHistoricalAlerts).Methods(http.MethodGet)

	api.HandleFunc("/analysis/overview", a.HandleOverview).Methods(http.MethodGet)
	api.HandleFunc("/analysis/trend", a.HandleTrend).Methods(http.MethodGet)
	api.HandleFunc("/analysis/distribution", a.HandleDistribution).Methods(http.MethodGet)
	api.HandleFunc("/analysis/correlation", a.HandleCorrelation).Methods(http.MethodGet)
	api.HandleFunc("/analysis/calendar", a.HandleCalendar).Methods(http.MethodGet)

	api.HandleFunc("/dashboard/stream-data", a.HandleStreamData).Methods(http.MethodGet)
	api.HandleFunc("/latest-data", a.HandleLatestData).Methods(http.MethodGet)
	api.HandleFunc("/health-score", a.HandleHealthScore).Methods(http.MethodPost)

	api.HandleFunc("/prediction/status", a.HandlePredictionStatus).Methods(http.MethodGet)
	api.HandleFunc("/prediction/parameters", a.HandlePredictionParameters).Methods(http.MethodGet)
	api.HandleFunc("/prediction/reload", a.HandleReload).Methods(http.MethodPost)
	api.HandleFunc("/prediction/single", a.HandleSinglePrediction).Methods(http.MethodPost)
	api.HandleFunc("/prediction/multi", a.HandleMultiPrediction).Methods(http.MethodPost)
	api.HandleFunc("/prediction/export", a.HandleExport).Methods(http.MethodPost)

	return r
}

// Handler is Router wrapped with panic recovery and CORS.
func (a *API) Handler() http.Handler {
	recovery := gorillahandlers.RecoveryHandler(
		gorillahandlers.RecoveryLogger(zap.NewStdLog(a.logger)),
		gorillahandlers.PrintRecoveryStack(false),
	)
	cors := gorillahandlers.CORS(
		gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type"}),
	)
	return recovery(cors(a.Router()))
}

// snapshot loads the reading snapshot, writing a 500 on failure.
func (a *API) snapshot(w http.ResponseWriter, r *http.Request) (*store.Snapshot, bool) {
	snap, err := a.store.Snapshot(r.Context())
	if err != nil {
		a.logger.Error("Failed to load readings", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load readings")
		return nil, false
	}
	return snap, true
}

func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
