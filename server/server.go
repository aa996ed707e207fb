package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"bikeflow/communication"
	"bikeflow/loader"
	"bikeflow/server/config"
	"bikeflow/server/handler"
	"bikeflow/trafficview"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	config        *config.ServerConfig
	view          *trafficview.View
	rabbitMQ      *communication.RabbitMQ
	stationLoader *loader.StationLoader
	tripLoader    *loader.TripLoader
	httpServer    *http.Server
}

func NewServer(serverConfig *config.ServerConfig) (*Server, error) {
	tripLoader, err := loader.NewTripLoader(serverConfig.TripLoader, nil)
	if err != nil {
		return nil, err
	}

	var rabbitMQ *communication.RabbitMQ
	var publisher trafficview.Publisher
	if serverConfig.RabbitMQConfig.Enabled() {
		rabbitMQ, err = communication.NewRabbitMQ(serverConfig.RabbitMQConfig)
		if err != nil {
			return nil, err
		}
		publisher = rabbitMQ
	} else {
		log.Info("[server] RabbitMQ URL not set, snapshots will not be published")
	}

	view := trafficview.NewView(serverConfig.View, publisher)
	trafficHandler := handler.NewTrafficHandler(view)

	return &Server{
		config:        serverConfig,
		view:          view,
		rabbitMQ:      rabbitMQ,
		stationLoader: loader.NewStationLoader(nil),
		tripLoader:    tripLoader,
		httpServer: &http.Server{
			Addr:              serverConfig.Address(),
			Handler:           trafficHandler.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// LoadData loads stations and trips at the same time. A failed load is logged and the view stays not ready
func (s *Server) LoadData(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.config.LoadTimeout())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		stations, err := s.stationLoader.LoadStations(ctx, s.config.Sources.Stations)
		if err != nil {
			log.Errorf("[server][status: ERROR] error loading stations: %s", err.Error())
			return
		}
		if err = s.view.SetStations(stations); err != nil {
			log.Errorf("[server][status: ERROR] error setting stations: %s", err.Error())
		}
	}()

	go func() {
		defer wg.Done()
		trips, _, err := s.tripLoader.LoadTrips(ctx, s.config.Sources.Trips)
		if err != nil {
			log.Errorf("[server][status: ERROR] error loading trips: %s", err.Error())
			return
		}
		if err = s.view.SetTrips(trips); err != nil {
			log.Errorf("[server][status: ERROR] error setting trips: %s", err.Error())
		}
	}()

	wg.Wait()
	if !s.view.Ready() {
		log.Warn("[server] data could not be loaded, the service will answer 503")
	}
}

// Run serves HTTP requests until a signal is received
func (s *Server) Run(signalChannel <-chan os.Signal) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go s.LoadData(ctx)

	serverErrors := make(chan error, 1)
	go func() {
		log.Infof("[server] listening on %s", s.httpServer.Addr)
		serverErrors <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error running HTTP server: %w", err)
		}
		return nil
	case sig := <-signalChannel:
		log.Infof("[server] signal %s received, shutting down", sig)
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	return s.httpServer.Shutdown(shutdownCtx)
}

// Kill releases the RabbitMQ connection if there is one
func (s *Server) Kill() error {
	if s.rabbitMQ == nil {
		return nil
	}
	return s.rabbitMQ.KillBadBunny()
}
