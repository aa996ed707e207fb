package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"bikeflow/metrics"
	"bikeflow/trafficview"
	"bikeflow/tripindex"
)

const (
	handlerStr      = "traffic-handler"
	timeParam       = "time"
	latitudeParam   = "lat"
	longitudeParam  = "lon"
	radiusParam     = "radius_km"
	contentTypeJson = "application/json"
)

// TrafficView is the part of trafficview.View used by the handler
type TrafficView interface {
	Ready() bool
	TimeFilter() int
	Snapshot() (*trafficview.Snapshot, error)
	Query(timeFilter int) (*trafficview.Snapshot, error)
	SetTimeFilter(ctx context.Context, timeFilter int) (*trafficview.Snapshot, error)
	StationsWithinRadius(latitude float64, longitude float64, radiusKm float64) ([]string, error)
}

type timeFilterRequest struct {
	TimeFilter *int `json:"time_filter"`
}

type timeFilterResponse struct {
	TimeFilter int    `json:"time_filter"`
	Label      string `json:"label"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type TrafficHandler struct {
	view TrafficView
}

func NewTrafficHandler(view TrafficView) *TrafficHandler {
	return &TrafficHandler{view: view}
}

// Router returns the routes of the service:
// + GET /stations: traffic of each station, optional query params time, lat, lon and radius_km
// + GET /filter: active time filter
// + PUT /filter: changes the active time filter, body {"time_filter": 720}
// + GET /health: 200 once data is loaded
// + GET /metrics: prometheus metrics
func (th *TrafficHandler) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(observeRequests)

	router.HandleFunc("/stations", th.handleStations).Methods(http.MethodGet)
	router.HandleFunc("/filter", th.handleGetFilter).Methods(http.MethodGet)
	router.HandleFunc("/filter", th.handleSetFilter).Methods(http.MethodPut)
	router.HandleFunc("/health", th.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return router
}

func (th *TrafficHandler) handleStations(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()

	var snapshot *trafficview.Snapshot
	var err error
	if query.Has(timeParam) {
		timeFilter, parseErr := strconv.Atoi(query.Get(timeParam))
		if parseErr != nil {
			writeError(writer, http.StatusBadRequest, fmt.Errorf("%w: %s", tripindex.ErrInvalidTimeFilter, query.Get(timeParam)))
			return
		}
		snapshot, err = th.view.Query(timeFilter)
	} else {
		snapshot, err = th.view.Snapshot()
	}
	if err != nil {
		writeViewError(writer, err)
		return
	}

	if query.Has(radiusParam) {
		latitude, longitude, radiusKm, parseErr := parseRadiusParams(query.Get(latitudeParam), query.Get(longitudeParam), query.Get(radiusParam))
		if parseErr != nil {
			writeError(writer, http.StatusBadRequest, parseErr)
			return
		}

		shortNames, err := th.view.StationsWithinRadius(latitude, longitude, radiusKm)
		if err != nil {
			writeViewError(writer, err)
			return
		}
		snapshot = snapshot.Only(shortNames)
	}

	writeJSON(writer, http.StatusOK, snapshot)
}

func (th *TrafficHandler) handleGetFilter(writer http.ResponseWriter, _ *http.Request) {
	timeFilter := th.view.TimeFilter()
	writeJSON(writer, http.StatusOK, timeFilterResponse{TimeFilter: timeFilter, Label: trafficview.FormatTimeFilter(timeFilter)})
}

func (th *TrafficHandler) handleSetFilter(writer http.ResponseWriter, request *http.Request) {
	var body timeFilterRequest
	if err := json.NewDecoder(request.Body).Decode(&body); err != nil || body.TimeFilter == nil {
		writeError(writer, http.StatusBadRequest, errors.New("body must be {\"time_filter\": <-1..1439>}"))
		return
	}

	snapshot, err := th.view.SetTimeFilter(request.Context(), *body.TimeFilter)
	if err != nil {
		writeViewError(writer, err)
		return
	}

	writeJSON(writer, http.StatusOK, snapshot)
}

func (th *TrafficHandler) handleHealth(writer http.ResponseWriter, _ *http.Request) {
	if !th.view.Ready() {
		writeError(writer, http.StatusServiceUnavailable, trafficview.ErrNotReady)
		return
	}
	writeJSON(writer, http.StatusOK, map[string]string{"status": "ok"})
}

func parseRadiusParams(latitudeStr string, longitudeStr string, radiusStr string) (float64, float64, float64, error) {
	latitude, err := strconv.ParseFloat(latitudeStr, 64)
	if err != nil || latitude < -90 || latitude > 90 {
		return 0, 0, 0, fmt.Errorf("invalid %s: %q", latitudeParam, latitudeStr)
	}

	longitude, err := strconv.ParseFloat(longitudeStr, 64)
	if err != nil || longitude < -180 || longitude > 180 {
		return 0, 0, 0, fmt.Errorf("invalid %s: %q", longitudeParam, longitudeStr)
	}

	radiusKm, err := strconv.ParseFloat(radiusStr, 64)
	if err != nil || radiusKm < 0 {
		return 0, 0, 0, fmt.Errorf("invalid %s: %q", radiusParam, radiusStr)
	}

	return latitude, longitude, radiusKm, nil
}

func writeViewError(writer http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, trafficview.ErrNotReady):
		writeError(writer, http.StatusServiceUnavailable, err)
	case errors.Is(err, tripindex.ErrInvalidTimeFilter):
		writeError(writer, http.StatusBadRequest, err)
	default:
		log.Errorf("[component: %s][status: ERROR] unexpected error: %s", handlerStr, err.Error())
		writeError(writer, http.StatusInternalServerError, err)
	}
}

func writeError(writer http.ResponseWriter, status int, err error) {
	writeJSON(writer, status, errorResponse{Error: err.Error()})
}

func writeJSON(writer http.ResponseWriter, status int, body any) {
	writer.Header().Set("Content-Type", contentTypeJson)
	writer.WriteHeader(status)
	if err := json.NewEncoder(writer).Encode(body); err != nil {
		log.Errorf("[component: %s][status: ERROR] error writing response: %s", handlerStr, err.Error())
	}
}

// observeRequests records the time spent serving each route
func observeRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		reqStart := time.Now()
		endpoint := request.URL.Path
		if route := mux.CurrentRoute(request); route != nil {
			if template, err := route.GetPathTemplate(); err == nil {
				endpoint = template
			}
		}
		defer func() { metrics.RequestDuration.WithLabelValues(endpoint).Observe(time.Since(reqStart).Seconds()) }()

		next.ServeHTTP(writer, request)
	})
}
