package services_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/mapstack/app/backend"
	"github.com/shashiranjanraj/mapstack/app/models"
	"github.com/shashiranjanraj/mapstack/app/services"
	"github.com/shashiranjanraj/mapstack/app/state"
	"github.com/shashiranjanraj/mapstack/internal/demoserver"
	"github.com/shashiranjanraj/mapstack/pkg/event"
	"github.com/shashiranjanraj/mapstack/pkg/notify"
)

// testApp wires the real services against an in-process demo backend over
// httptest, logged in and with the catalog loaded.
type testApp struct {
	store    *state.Store
	sessions *services.SessionService
	catalog  *services.CatalogService
	tickets  *services.TicketService
}

func newTestApp(t *testing.T, seed ...models.Product) *testApp {
	t.Helper()

	event.Flush()
	notify.Reset()
	t.Cleanup(event.Flush)
	t.Cleanup(notify.Reset)

	srv := httptest.NewServer(demoserver.New(seed...).Handler())
	t.Cleanup(srv.Close)

	store := state.New()

	var sessions *services.SessionService
	api := backend.NewWithBase(srv.URL, func() string { return sessions.Token() })
	sessions = services.NewSessionService(store, api.Login)

	catalog := services.NewCatalogService(store, api, sessions)
	tickets := services.NewTicketService(store, api, sessions, nil)

	// Synchronous refresh keeps tests deterministic; production uses the
	// debounced path.
	tickets.RefreshCatalog = func() { _ = catalog.Refresh() }

	require.NoError(t, sessions.Login(demoserver.DemoEmail, demoserver.DemoPassword))
	require.NoError(t, catalog.Refresh())
	require.NoError(t, tickets.Fetch())

	return &testApp{store: store, sessions: sessions, catalog: catalog, tickets: tickets}
}

// productByTitle resolves a seeded product's backend-assigned id.
func (a *testApp) productByTitle(t *testing.T, title string) models.Product {
	t.Helper()
	for _, p := range a.store.Products() {
		if p.Title == title {
			return p
		}
	}
	t.Fatalf("product %q not in store", title)
	return models.Product{}
}

func trackedProduct(title string, quantity int) models.Product {
	return models.Product{
		Title:         title,
		Price:         10,
		TrackQuantity: true,
		Quantity:      quantity,
		LowStock:      2,
	}
}
