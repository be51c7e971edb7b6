package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/shashiranjanraj/mapstack/app/backend"
	"github.com/shashiranjanraj/mapstack/app/services"
	"github.com/shashiranjanraj/mapstack/app/state"
	"github.com/shashiranjanraj/mapstack/config"
	_ "github.com/shashiranjanraj/mapstack/database/migrations"
	"github.com/shashiranjanraj/mapstack/pkg/cache"
	"github.com/shashiranjanraj/mapstack/pkg/database"
	"github.com/shashiranjanraj/mapstack/pkg/logger"
	"github.com/shashiranjanraj/mapstack/pkg/migration"
	"github.com/shashiranjanraj/mapstack/pkg/notify"
	"github.com/shashiranjanraj/mapstack/pkg/storage"
	"github.com/shashiranjanraj/mapstack/pkg/workerpool"
)

// application holds the wired-together client. Commands call boot() to get
// one; boot restores the persisted session when there is one.
type application struct {
	store    *state.Store
	sessions *services.SessionService
	catalog  *services.CatalogService
	tickets  *services.TicketService
	pool     *workerpool.Pool
}

func boot() (*application, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if uri := config.Get("LOG_MONGO_URI", ""); uri != "" {
		if _, err := logger.AttachMongo(uri,
			config.Get("LOG_MONGO_DB", "mapstack"),
			config.Get("LOG_MONGO_COLLECTION", "logs")); err != nil {
			logger.Warn("mongo log sink disabled", "error", err)
		}
	}

	if err := database.Connect(); err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}
	if err := migration.New(database.DB).Run(); err != nil {
		return nil, fmt.Errorf("migrate state store: %w", err)
	}
	if err := cache.Connect(); err != nil {
		logger.Debug("catalog snapshot cache disabled", "error", err)
	}
	storage.Connect()

	// Notifications print straight to the terminal.
	notify.Subscribe(func(message string) {
		fmt.Println(message)
	})

	store := state.New()
	pool := workerpool.New(4)

	var sessions *services.SessionService
	api := backend.New(func() string { return sessions.Token() })
	sessions = services.NewSessionService(store, api.Login)

	catalog := services.NewCatalogService(store, api, sessions)
	catalog.Confirm = confirmPrompt

	tickets := services.NewTicketService(store, api, sessions, pool)
	tickets.Confirm = confirmPrompt
	tickets.RefreshCatalog = catalog.ScheduleRefresh

	app := &application{
		store:    store,
		sessions: sessions,
		catalog:  catalog,
		tickets:  tickets,
		pool:     pool,
	}

	if sessions.Restore() {
		app.initialFetch()
	}
	return app, nil
}

// initialFetch loads catalog and tickets after a login or restore,
// showing the cached snapshot first.
func (a *application) initialFetch() {
	a.catalog.WarmStart()
	_ = a.catalog.Refresh()
	_ = a.tickets.Fetch()
}

// shutdown drains background mirror writes before exit.
func (a *application) shutdown() {
	a.pool.Shutdown()
}

// requireSession boots the app and fails fast when not logged in.
func requireSession() (*application, error) {
	app, err := boot()
	if err != nil {
		return nil, err
	}
	if !app.sessions.Authenticated() {
		return nil, fmt.Errorf("not logged in, run `mapstack login <email>` first")
	}
	return app, nil
}

// confirmPrompt is the human-in-the-loop gate for destructive operations.
func confirmPrompt(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// readSecret reads a line without echo suppression. Fine for a demo
// terminal; swap in a real terminal package if this ever ships.
func readSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
