// Package backend is the typed REST client for the MapStack POS API.
//
// Every call sends the bearer token, records Prometheus metrics, and
// normalises failures into plain error messages: the `{message}` envelope
// when the body is JSON, a truncated raw body otherwise. Responses that
// carry an "Invalid token" message are converted to ErrSessionExpired and
// broadcast as an auth.expired event so every view reacts with the same
// forced logout.
package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shashiranjanraj/mapstack/app/models"
	"github.com/shashiranjanraj/mapstack/config"
	"github.com/shashiranjanraj/mapstack/pkg/event"
	"github.com/shashiranjanraj/mapstack/pkg/http"
	"github.com/shashiranjanraj/mapstack/pkg/metrics"
)

// ErrSessionExpired marks an authentication failure that must force a
// logout. Call sites branch on it with errors.Is.
var ErrSessionExpired = errors.New("backend: session expired")

// errBodyLimit caps how much of a non-JSON error body is shown to the user.
const errBodyLimit = 50

// Upload is one image file attached to a product create/update.
type Upload struct {
	Filename string
	Content  []byte
}

// ProductForm carries the multipart fields of a product create/update.
// SKU and Barcode are omitted from the form when empty.
type ProductForm struct {
	Title             string
	Description       string
	Category          string
	Price             float64
	Cost              float64
	SKU               string
	Barcode           string
	TrackQuantity     bool
	Quantity          int
	LowStock          int
	Supplier          string
	InventoryLocation string
}

// Client talks to one MapStack backend.
type Client struct {
	base  string
	token func() string
}

// New builds a Client against the configured API_URL. token is called per
// request so a re-login is picked up without rebuilding the client.
func New(token func() string) *Client {
	return &Client{base: config.APIURL(), token: token}
}

// NewWithBase is New with an explicit base URL (tests, demo server).
func NewWithBase(base string, token func() string) *Client {
	return &Client{base: strings.TrimRight(base, "/"), token: token}
}

// ─── Session ──────────────────────────────────────────────────────────────────

// Login exchanges credentials for a bearer token.
func (c *Client) Login(email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}

	resp, err := c.observe("login", "POST", func() (*http.Response, error) {
		return http.Post(c.base + "/api/login").Body(body).Send()
	})
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", c.fail(resp)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := resp.JSON(&out); err != nil {
		return "", fmt.Errorf("backend: login: %w", err)
	}
	return out.Token, nil
}

// ─── Products ─────────────────────────────────────────────────────────────────

// ListProducts fetches the full catalog. The backend returns oldest-first;
// callers reverse for display.
func (c *Client) ListProducts() ([]models.Product, error) {
	resp, err := c.observe("products.list", "GET", func() (*http.Response, error) {
		return http.Get(c.base + "/api/products").Bearer(c.token()).Send()
	})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, c.fail(resp)
	}

	var products []models.Product
	if err := resp.JSON(&products); err != nil {
		return nil, fmt.Errorf("backend: list products: %w", err)
	}
	return products, nil
}

// CreateProduct sends a multipart create. Returns the created product and
// the backend's confirmation message.
func (c *Client) CreateProduct(form ProductForm, images []Upload) (models.Product, string, error) {
	resp, err := c.observe("products.create", "POST", func() (*http.Response, error) {
		req := http.Post(c.base + "/api/products").Bearer(c.token())
		applyProductForm(req, form)
		for _, img := range images {
			req.File("images", img.Filename, img.Content)
		}
		return req.Send()
	})
	if err != nil {
		return models.Product{}, "", err
	}
	if !resp.OK() {
		return models.Product{}, "", c.fail(resp)
	}

	var out struct {
		Product models.Product `json:"product"`
		Message string         `json:"message"`
	}
	if err := resp.JSON(&out); err != nil {
		return models.Product{}, "", fmt.Errorf("backend: create product: %w", err)
	}
	return out.Product, out.Message, nil
}

// UpdateProduct sends a multipart update. existingImages lists the stored
// image names to retain alongside any new uploads.
func (c *Client) UpdateProduct(id string, form ProductForm, images []Upload, existingImages []string) (models.Product, string, error) {
	resp, err := c.observe("products.update", "PUT", func() (*http.Response, error) {
		req := http.Put(c.base + "/api/products/" + id).Bearer(c.token())
		applyProductForm(req, form)
		for _, name := range existingImages {
			req.Field("existingImages", name)
		}
		for _, img := range images {
			req.File("images", img.Filename, img.Content)
		}
		return req.Send()
	})
	if err != nil {
		return models.Product{}, "", err
	}
	if !resp.OK() {
		return models.Product{}, "", c.fail(resp)
	}

	var out struct {
		Product models.Product `json:"product"`
		Message string         `json:"message"`
	}
	if err := resp.JSON(&out); err != nil {
		return models.Product{}, "", fmt.Errorf("backend: update product: %w", err)
	}
	return out.Product, out.Message, nil
}

// DeleteProducts removes products by id. Single deletes go through the
// same bulk endpoint with a one-element list.
func (c *Client) DeleteProducts(ids []string) (string, error) {
	body := map[string][]string{"ids": ids}

	resp, err := c.observe("products.delete", "DELETE", func() (*http.Response, error) {
		return http.Delete(c.base + "/api/products/delete-multiple").
			Bearer(c.token()).
			Body(body).
			Send()
	})
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", c.fail(resp)
	}
	return c.message(resp), nil
}

// DeleteImage removes one image from a product's image list.
func (c *Client) DeleteImage(productID, imageName string) (string, error) {
	resp, err := c.observe("products.deleteImage", "DELETE", func() (*http.Response, error) {
		return http.Delete(c.base + "/api/products/" + productID + "/image/" + imageName).
			Bearer(c.token()).
			Send()
	})
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", c.fail(resp)
	}
	return c.message(resp), nil
}

// ─── Tickets ──────────────────────────────────────────────────────────────────

// ListTickets fetches all tickets, active and deducted.
func (c *Client) ListTickets() ([]models.Ticket, error) {
	resp, err := c.observe("tickets.list", "GET", func() (*http.Response, error) {
		return http.Get(c.base + "/api/tickets").Bearer(c.token()).Send()
	})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, c.fail(resp)
	}

	var tickets []models.Ticket
	if err := resp.JSON(&tickets); err != nil {
		return nil, fmt.Errorf("backend: list tickets: %w", err)
	}
	return tickets, nil
}

// CreateTicket allocates a new empty ticket with a sequential number.
func (c *Client) CreateTicket() (models.Ticket, error) {
	resp, err := c.observe("tickets.create", "POST", func() (*http.Response, error) {
		return http.Post(c.base + "/api/tickets").Bearer(c.token()).Send()
	})
	if err != nil {
		return models.Ticket{}, err
	}
	if !resp.OK() {
		return models.Ticket{}, c.fail(resp)
	}

	var out struct {
		Ticket models.Ticket `json:"ticket"`
	}
	if err := resp.JSON(&out); err != nil {
		return models.Ticket{}, fmt.Errorf("backend: create ticket: %w", err)
	}
	return out.Ticket, nil
}

// UpdateTicketItems persists a ticket's full item list and returns the
// backend's view of the ticket.
func (c *Client) UpdateTicketItems(ticketID string, items []models.TicketItem) (models.Ticket, error) {
	body := map[string]interface{}{"items": items}

	resp, err := c.observe("tickets.update", "PUT", func() (*http.Response, error) {
		return http.Put(c.base + "/api/tickets/" + ticketID).
			Bearer(c.token()).
			Body(body).
			Send()
	})
	if err != nil {
		return models.Ticket{}, err
	}
	if !resp.OK() {
		return models.Ticket{}, c.fail(resp)
	}

	var out struct {
		Ticket models.Ticket `json:"ticket"`
	}
	if err := resp.JSON(&out); err != nil {
		return models.Ticket{}, fmt.Errorf("backend: update ticket: %w", err)
	}
	return out.Ticket, nil
}

// DeleteTicket discards a ticket without touching stock.
func (c *Client) DeleteTicket(ticketID string) (string, error) {
	resp, err := c.observe("tickets.delete", "DELETE", func() (*http.Response, error) {
		return http.Delete(c.base + "/api/tickets/" + ticketID).Bearer(c.token()).Send()
	})
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", c.fail(resp)
	}
	return c.message(resp), nil
}

// ClearDeductedTickets bulk-deletes every deducted ticket.
func (c *Client) ClearDeductedTickets() (string, error) {
	resp, err := c.observe("tickets.clear", "DELETE", func() (*http.Response, error) {
		return http.Delete(c.base + "/api/tickets/clear").Bearer(c.token()).Send()
	})
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", c.fail(resp)
	}
	return c.message(resp), nil
}

// DeductResult is the backend's report of a committed ticket.
type DeductResult struct {
	Ticket          models.Ticket    `json:"ticket"`
	UpdatedProducts []DeductedAmount `json:"updatedProducts"`
}

// DeductedAmount is one product's decrement within a deduction.
type DeductedAmount struct {
	Title    string `json:"title"`
	Deducted int    `json:"deducted"`
}

// DeductTicket commits the items against inventory. The backend is the
// sole authority for decrementing real stock.
func (c *Client) DeductTicket(ticketID string, items []models.TicketItem) (DeductResult, error) {
	body := map[string]interface{}{"items": items, "ticketId": ticketID}

	resp, err := c.observe("tickets.deduct", "POST", func() (*http.Response, error) {
		return http.Post(c.base + "/api/tickets/deduct-many").
			Bearer(c.token()).
			Body(body).
			Send()
	})
	if err != nil {
		return DeductResult{}, err
	}
	if !resp.OK() {
		return DeductResult{}, c.fail(resp)
	}

	var out DeductResult
	if err := resp.JSON(&out); err != nil {
		return DeductResult{}, fmt.Errorf("backend: deduct ticket: %w", err)
	}
	return out, nil
}

// ─── Internals ────────────────────────────────────────────────────────────────

// observe runs one call and records its metrics by endpoint and status.
func (c *Client) observe(endpoint, method string, call func() (*http.Response, error)) (*http.Response, error) {
	start := time.Now()
	resp, err := call()

	status := "error"
	if resp != nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	metrics.ObserveCall(endpoint, method, status, time.Since(start))

	if err != nil {
		return nil, fmt.Errorf("backend: %s: %w", endpoint, err)
	}
	return resp, nil
}

// fail converts a non-2xx response into a user-facing error.
func (c *Client) fail(resp *http.Response) error {
	msg := decodeErrorMessage(resp)

	if strings.Contains(msg, "Invalid token") {
		metrics.SessionExpirations.Inc()
		event.Fire(event.AuthExpired, msg)
		return fmt.Errorf("%w: %s", ErrSessionExpired, msg)
	}
	return errors.New(msg)
}

// message extracts the confirmation message from a 2xx response.
func (c *Client) message(resp *http.Response) string {
	var out struct {
		Message string `json:"message"`
	}
	if err := resp.JSON(&out); err != nil {
		return ""
	}
	return out.Message
}

func decodeErrorMessage(resp *http.Response) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Raw, &envelope); err != nil {
		return "Server returned non-JSON response: " + truncate(string(resp.Raw), errBodyLimit) + "..."
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	return fmt.Sprintf("Request failed (Status: %d)", resp.StatusCode)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// applyProductForm writes the multipart fields, skipping sku and barcode
// when empty so the backend does not store blank values.
func applyProductForm(req *http.Request, form ProductForm) {
	req.Field("title", form.Title).
		Field("description", form.Description).
		Field("category", form.Category).
		Field("price", strconv.FormatFloat(form.Price, 'f', -1, 64)).
		Field("cost", strconv.FormatFloat(form.Cost, 'f', -1, 64)).
		Field("trackQuantity", strconv.FormatBool(form.TrackQuantity)).
		Field("quantity", strconv.Itoa(form.Quantity)).
		Field("lowStock", strconv.Itoa(form.LowStock)).
		Field("supplier", form.Supplier).
		Field("inventoryLocation", form.InventoryLocation)

	if form.SKU != "" {
		req.Field("sku", form.SKU)
	}
	if form.Barcode != "" {
		req.Field("barcode", form.Barcode)
	}
}
