package services_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/mapstack/app/models"
	"github.com/shashiranjanraj/mapstack/app/services"
	"github.com/shashiranjanraj/mapstack/app/state"
	"github.com/shashiranjanraj/mapstack/pkg/event"
	"github.com/shashiranjanraj/mapstack/pkg/notify"
)

func TestLoginStoresToken(t *testing.T) {
	event.Flush()
	t.Cleanup(event.Flush)

	store := state.New()
	sessions := services.NewSessionService(store, func(email, password string) (string, error) {
		return "issued-token", nil
	})

	require.False(t, sessions.Authenticated())
	require.NoError(t, sessions.Login("a@b.c", "pw"))
	assert.True(t, sessions.Authenticated())
	assert.Equal(t, "issued-token", sessions.Token())
}

func TestLoginFailureSurfacesMessage(t *testing.T) {
	event.Flush()
	notify.Reset()
	t.Cleanup(event.Flush)
	t.Cleanup(notify.Reset)

	store := state.New()
	sessions := services.NewSessionService(store, func(email, password string) (string, error) {
		return "", errors.New("Invalid email or password")
	})

	err := sessions.Login("a@b.c", "wrong")
	require.Error(t, err)
	assert.False(t, sessions.Authenticated())
	assert.Contains(t, notify.Current(), "Invalid email or password")
}

func TestLogoutClearsState(t *testing.T) {
	event.Flush()
	t.Cleanup(event.Flush)

	store := state.New()
	store.SetProducts([]models.Product{{ID: "p", Title: "X"}})
	store.SetTickets([]models.Ticket{{ID: "t", Status: models.TicketActive}})

	sessions := services.NewSessionService(store, func(string, string) (string, error) {
		return "tok", nil
	})
	require.NoError(t, sessions.Login("a@b.c", "pw"))

	sessions.Logout()

	assert.False(t, sessions.Authenticated())
	assert.Empty(t, store.Products())
	assert.Empty(t, store.Tickets())
}

func TestAuthExpiredEventForcesLogout(t *testing.T) {
	event.Flush()
	notify.Reset()
	t.Cleanup(event.Flush)
	t.Cleanup(notify.Reset)

	store := state.New()
	store.SetProducts([]models.Product{{ID: "p"}})

	sessions := services.NewSessionService(store, func(string, string) (string, error) {
		return "tok", nil
	})
	require.NoError(t, sessions.Login("a@b.c", "pw"))

	event.Fire(event.AuthExpired, "Invalid token")

	assert.False(t, sessions.Authenticated())
	assert.Empty(t, store.Products())
	assert.Equal(t, "Session expired. Please log in again.", notify.Current())
}

func TestAuthExpiredWhileLoggedOutIsQuiet(t *testing.T) {
	event.Flush()
	notify.Reset()
	t.Cleanup(event.Flush)
	t.Cleanup(notify.Reset)

	store := state.New()
	services.NewSessionService(store, func(string, string) (string, error) { return "", nil })

	event.Fire(event.AuthExpired, "Invalid token")
	assert.Equal(t, "", notify.Current())
}
