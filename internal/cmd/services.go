package main

import (
	"database/sql"
	"fmt"

	"github.com/hari1098/betsync/internal/betting"
	"github.com/hari1098/betsync/internal/betting/events"
	"github.com/hari1098/betsync/internal/betting/manager"
)

type Services struct {
	App       *betting.App
	Manager   *manager.Manager
	Handler   *betting.Handler
	Publisher *events.JetStreamPublisher
}

func setupServices(database *sql.DB, config *Config) (*Services, error) {
	// Wire up dependency injection chain
	// Database layer → Repository layer → App layer → Manager/Handler layer

	var publisher *events.JetStreamPublisher
	if config.Events.Enabled {
		eventsCfg := events.DefaultJetStreamConfig()
		if config.Events.URL != "" {
			eventsCfg.URL = config.Events.URL
		}
		if config.Events.Stream != "" {
			eventsCfg.StreamName = config.Events.Stream
		}
		if config.Events.SubjectPrefix != "" {
			eventsCfg.SubjectPrefix = config.Events.SubjectPrefix
		}

		var err error
		publisher, err = events.NewJetStreamPublisher(eventsCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create event publisher: %w", err)
		}
	}

	repo := betting.NewRepository(database)

	var app *betting.App
	if publisher != nil {
		app = betting.NewApp(repo, publisher)
	} else {
		app = betting.NewApp(repo, nil)
	}

	mgr := manager.NewManager(app)
	handler := betting.NewHandler(app, mgr)

	return &Services{
		App:       app,
		Manager:   mgr,
		Handler:   handler,
		Publisher: publisher,
	}, nil
}
