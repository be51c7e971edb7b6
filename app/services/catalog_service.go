package services

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/shashiranjanraj/mapstack/app/backend"
	"github.com/shashiranjanraj/mapstack/app/models"
	"github.com/shashiranjanraj/mapstack/app/state"
	"github.com/shashiranjanraj/mapstack/pkg/cache"
	"github.com/shashiranjanraj/mapstack/pkg/collection"
	"github.com/shashiranjanraj/mapstack/pkg/debounce"
	"github.com/shashiranjanraj/mapstack/pkg/event"
	"github.com/shashiranjanraj/mapstack/pkg/logger"
	"github.com/shashiranjanraj/mapstack/pkg/notify"
	"github.com/shashiranjanraj/mapstack/pkg/validate"
)

const (
	// refetchDebounce coalesces the reconciling re-fetches that follow
	// optimistic mutations.
	refetchDebounce = 500 * time.Millisecond

	// catalogSnapshotKey is the Redis key of the warm-start snapshot.
	catalogSnapshotKey = "mapstack:catalog:snapshot"
	catalogSnapshotTTL = 24 * time.Hour
)

// productIDRE is the well-formed backend identifier shape. Malformed ids
// are rejected before any network call.
var productIDRE = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// productFormRules mirrors backend.ProductForm for client-side validation.
type productFormRules struct {
	Title    string  `json:"title"    validate:"required,max=255"`
	Price    float64 `json:"price"    validate:"numeric,gte=0"`
	Cost     float64 `json:"cost"     validate:"nullable,numeric,gte=0"`
	Quantity int     `json:"quantity" validate:"integer,gte=0"`
	LowStock int     `json:"lowStock" validate:"integer,gte=0"`
}

// CatalogService implements the product catalog view's behaviour: listing
// with filter/search/pagination (all client-side over the in-memory set),
// CRUD with optimistic local updates, and a debounced authoritative
// re-fetch to reconcile drift.
type CatalogService struct {
	store    *state.Store
	api      *backend.Client
	sessions *SessionService
	refetch  *debounce.Debouncer

	// Confirm gates destructive operations. The CLI installs an
	// interactive prompt; tests install a canned answer.
	Confirm func(prompt string) bool
}

// NewCatalogService wires the catalog behaviour to the store and backend.
func NewCatalogService(store *state.Store, api *backend.Client, sessions *SessionService) *CatalogService {
	return &CatalogService{
		store:    store,
		api:      api,
		sessions: sessions,
		refetch:  debounce.New(refetchDebounce),
		Confirm:  func(string) bool { return true },
	}
}

// WarmStart shows the last cached catalog immediately while the
// authoritative fetch runs. A miss is silent.
func (s *CatalogService) WarmStart() {
	var snapshot []models.Product
	if cache.Get(catalogSnapshotKey, &snapshot) && len(snapshot) > 0 {
		s.store.SetProducts(snapshot)
		logger.Debug("catalog: warm start from snapshot", "products", len(snapshot))
	}
}

// Refresh fetches the authoritative catalog. The backend returns
// oldest-first; the list is reversed so newest products display first.
// Fetch failures that are not auth failures are logged, not toasted.
func (s *CatalogService) Refresh() error {
	if !s.sessions.Authenticated() {
		logger.Warn("catalog: refresh skipped, no session")
		return ErrNotAuthenticated
	}

	products, err := s.api.ListProducts()
	if err != nil {
		if !errors.Is(err, backend.ErrSessionExpired) {
			logger.Error("catalog: refresh", "error", err)
		}
		return err
	}

	products = collection.Reverse(products)
	s.store.SetProducts(products)

	// A fresh authoritative list invalidates anything pointing into the
	// old one: selected ids may be gone and the page may now run past
	// the end.
	s.store.ClearProductSelection()
	s.store.SetPage(1)

	if err := cache.Set(catalogSnapshotKey, products, catalogSnapshotTTL); err != nil {
		logger.Debug("catalog: snapshot write failed", "error", err)
	}

	event.Fire(event.CatalogRefreshed, len(products))
	return nil
}

// ScheduleRefresh coalesces rapid refresh requests into one fetch after
// the debounce window.
func (s *CatalogService) ScheduleRefresh() {
	s.refetch.Schedule(func() { _ = s.Refresh() })
}

// Create validates and sends a new product, applies the optimistic insert,
// and schedules the reconciling re-fetch.
func (s *CatalogService) Create(form backend.ProductForm, images []backend.Upload) error {
	if err := requireAuth(s.sessions); err != nil {
		return err
	}
	if err := s.validateForm(form, len(images)); err != nil {
		return err
	}

	product, message, err := s.api.CreateProduct(form, images)
	if err != nil {
		notify.Showf("Error adding product: %s", err)
		return err
	}

	s.store.UpsertProduct(product)
	notify.Show(message)
	s.ScheduleRefresh()
	return nil
}

// Update validates and sends a product update. existingImages lists stored
// image names to retain; the total image count stays capped.
func (s *CatalogService) Update(id string, form backend.ProductForm, images []backend.Upload, existingImages []string) error {
	if err := requireAuth(s.sessions); err != nil {
		return err
	}
	if err := s.validateForm(form, len(images)+len(existingImages)); err != nil {
		return err
	}

	product, message, err := s.api.UpdateProduct(id, form, images, existingImages)
	if err != nil {
		notify.Showf("Error updating product: %s", err)
		return err
	}

	s.store.UpsertProduct(product)
	if message == "" {
		message = "Product updated"
	}
	notify.Show(message)
	s.ScheduleRefresh()
	return nil
}

// DeleteOne removes a single product through the bulk endpoint.
func (s *CatalogService) DeleteOne(id string) error {
	return s.DeleteMany([]string{id})
}

// DeleteMany removes products after id validation and an explicit
// confirmation naming the count. Declining the confirmation is a no-op.
func (s *CatalogService) DeleteMany(ids []string) error {
	if err := requireAuth(s.sessions); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	for _, id := range ids {
		if !productIDRE.MatchString(id) {
			err := fmt.Errorf("catalog: invalid product id %q", id)
			notify.Showf("Invalid product id: %s", id)
			return err
		}
	}

	if !s.Confirm(fmt.Sprintf("Delete %d product(s)? This cannot be undone.", len(ids))) {
		return nil
	}

	message, err := s.api.DeleteProducts(ids)
	if err != nil {
		notify.Showf("Error deleting products: %s", err)
		return err
	}

	s.store.RemoveProducts(ids)
	s.store.ClearProductSelection()
	notify.Show(message)
	s.ScheduleRefresh()
	return nil
}

// DeleteImage removes one image from a product's image list. No other
// fields are touched.
func (s *CatalogService) DeleteImage(productID, imageName string) error {
	if err := requireAuth(s.sessions); err != nil {
		return err
	}

	message, err := s.api.DeleteImage(productID, imageName)
	if err != nil {
		notify.Showf("Error deleting image: %s", err)
		return err
	}

	if p, ok := s.store.Product(productID); ok {
		p.Images = collection.Reject(p.Images, func(name string) bool { return name == imageName })
		s.store.UpsertProduct(p)
	}
	notify.Show(message)
	s.ScheduleRefresh()
	return nil
}

// StockStatus classifies a product for display.
func (s *CatalogService) StockStatus(p models.Product) models.StockStatus {
	return models.StockStatusOf(p)
}

func (s *CatalogService) validateForm(form backend.ProductForm, imageCount int) error {
	if imageCount > models.MaxProductImages {
		err := fmt.Errorf("catalog: %d images exceeds the limit of %d", imageCount, models.MaxProductImages)
		notify.Showf("You can only upload up to %d images.", models.MaxProductImages)
		return err
	}

	errs := validate.Struct(productFormRules{
		Title:    form.Title,
		Price:    form.Price,
		Cost:     form.Cost,
		Quantity: form.Quantity,
		LowStock: form.LowStock,
	})
	if validate.HasErrors(errs) {
		for _, msg := range errs {
			notify.Show(msg)
			return errors.New("catalog: " + msg)
		}
	}
	return nil
}
