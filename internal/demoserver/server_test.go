package demoserver_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/mapstack/app/models"
	"github.com/shashiranjanraj/mapstack/internal/demoserver"
)

func startServer(t *testing.T, seed ...models.Product) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(demoserver.New(seed...).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func login(t *testing.T, srv *httptest.Server) string {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"email":    demoserver.DemoEmail,
		"password": demoserver.DemoPassword,
	})
	resp, err := http.Post(srv.URL+"/api/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func doAuthed(t *testing.T, srv *httptest.Server, token, method, path string, body []byte, contentType string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, srv.URL+path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestLoginRejectsBadPassword(t *testing.T) {
	srv := startServer(t)

	body, _ := json.Marshal(map[string]string{"email": demoserver.DemoEmail, "password": "wrong"})
	resp, err := http.Post(srv.URL+"/api/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestInvalidTokenMessage(t *testing.T) {
	srv := startServer(t)

	resp := doAuthed(t, srv, "garbage", http.MethodGet, "/api/products", nil, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var out struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Invalid token", out.Message, "the client keys forced logout on this exact message")
}

func TestMultipartCreateAndImageCap(t *testing.T) {
	srv := startServer(t)
	token := login(t, srv)

	build := func(imageCount int) (*bytes.Buffer, string) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		_ = mw.WriteField("title", "Mug")
		_ = mw.WriteField("price", "8.5")
		_ = mw.WriteField("trackQuantity", "true")
		_ = mw.WriteField("quantity", "4")
		for i := 0; i < imageCount; i++ {
			part, _ := mw.CreateFormFile("images", "img.jpg")
			_, _ = part.Write([]byte{0xFF})
		}
		mw.Close()
		return &buf, mw.FormDataContentType()
	}

	body, ct := build(2)
	resp := doAuthed(t, srv, token, http.MethodPost, "/api/products", body.Bytes(), ct)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Product models.Product `json:"product"`
		Message string         `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "Product added", created.Message)
	assert.Regexp(t, `^[0-9a-f]{24}$`, created.Product.ID)
	assert.Len(t, created.Product.Images, 2)

	body, ct = build(6)
	resp = doAuthed(t, srv, token, http.MethodPost, "/api/products", body.Bytes(), ct)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestTicketNumbersAreSequential(t *testing.T) {
	srv := startServer(t)
	token := login(t, srv)

	for want := 1; want <= 3; want++ {
		resp := doAuthed(t, srv, token, http.MethodPost, "/api/tickets", nil, "")
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var out struct {
			Ticket models.Ticket `json:"ticket"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, want, out.Ticket.TicketNumber)
		assert.Equal(t, models.TicketActive, out.Ticket.Status)
	}
}

func TestDeductDecrementsStockAndFreezes(t *testing.T) {
	srv := startServer(t, models.Product{Title: "Widget", TrackQuantity: true, Quantity: 10})
	token := login(t, srv)

	var products []models.Product
	resp := doAuthed(t, srv, token, http.MethodGet, "/api/products", nil, "")
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	require.Len(t, products, 1)

	resp = doAuthed(t, srv, token, http.MethodPost, "/api/tickets", nil, "")
	var created struct {
		Ticket models.Ticket `json:"ticket"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	ticket := created.Ticket

	payload, _ := json.Marshal(map[string]interface{}{
		"ticketId": ticket.ID,
		"items":    []models.TicketItem{{ProductID: products[0].ID, Title: "Widget", Quantity: 2}},
	})
	resp = doAuthed(t, srv, token, http.MethodPost, "/api/tickets/deduct-many", payload, "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Ticket          models.Ticket `json:"ticket"`
		UpdatedProducts []struct {
			Title    string `json:"title"`
			Deducted int    `json:"deducted"`
		} `json:"updatedProducts"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, models.TicketDeducted, result.Ticket.Status)
	require.Len(t, result.UpdatedProducts, 1)
	assert.Equal(t, 2, result.UpdatedProducts[0].Deducted)

	// Stock went down.
	resp = doAuthed(t, srv, token, http.MethodGet, "/api/products", nil, "")
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	assert.Equal(t, 8, products[0].Quantity)

	// A second deduct of the same ticket conflicts.
	resp = doAuthed(t, srv, token, http.MethodPost, "/api/tickets/deduct-many", payload, "application/json")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}
