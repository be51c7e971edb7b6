package services_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/mapstack/app/backend"
	"github.com/shashiranjanraj/mapstack/app/models"
	"github.com/shashiranjanraj/mapstack/pkg/notify"
)

func TestCreateProductAppearsNewestFirst(t *testing.T) {
	app := newTestApp(t, trackedProduct("Existing", 5))

	form := backend.ProductForm{
		Title:         "Ceramic Mug",
		Price:         8.5,
		TrackQuantity: true,
		Quantity:      12,
		LowStock:      3,
	}
	require.NoError(t, app.catalog.Create(form, nil))

	products := app.store.Products()
	require.Len(t, products, 2)
	assert.Equal(t, "Ceramic Mug", products[0].Title, "optimistic insert goes to the front")
	assert.Regexp(t, `^[0-9a-fA-F]{24}$`, products[0].ID)
	assert.Equal(t, "Product added", notify.Current())
}

func TestCreateProductRejectsTooManyImages(t *testing.T) {
	app := newTestApp(t)

	images := make([]backend.Upload, 6)
	for i := range images {
		images[i] = backend.Upload{Filename: "img.jpg", Content: []byte{1}}
	}

	err := app.catalog.Create(backend.ProductForm{Title: "X"}, images)
	require.Error(t, err)
	assert.Contains(t, notify.Current(), "up to 5 images")
}

func TestCreateProductValidatesForm(t *testing.T) {
	app := newTestApp(t)

	err := app.catalog.Create(backend.ProductForm{Title: ""}, nil)
	require.Error(t, err)
	assert.Equal(t, "The title field is required.", notify.Current())
}

func TestUpdateProductSkipsEmptySKUAndBarcode(t *testing.T) {
	seeded := trackedProduct("Widget", 10)
	seeded.SKU = "W-1"
	seeded.Barcode = "4006381333931"
	app := newTestApp(t, seeded)
	p := app.productByTitle(t, "Widget")

	form := backend.ProductForm{
		Title:         "Widget v2",
		Price:         11,
		TrackQuantity: true,
		Quantity:      10,
	}
	require.NoError(t, app.catalog.Update(p.ID, form, nil, nil))

	updated := app.productByTitle(t, "Widget v2")
	assert.Equal(t, "W-1", updated.SKU, "empty sku is omitted from the form, not blanked")
	assert.Equal(t, "4006381333931", updated.Barcode)
}

func TestDeleteManyValidatesIDs(t *testing.T) {
	app := newTestApp(t, trackedProduct("Widget", 10))

	err := app.catalog.DeleteMany([]string{"not-a-valid-id"})
	require.Error(t, err)
	assert.True(t, strings.Contains(notify.Current(), "Invalid product id"))
	assert.Len(t, app.store.Products(), 1, "nothing was sent to the backend")
}

func TestDeleteManyDeclinedIsNoop(t *testing.T) {
	app := newTestApp(t, trackedProduct("Widget", 10))
	p := app.productByTitle(t, "Widget")

	app.catalog.Confirm = func(string) bool { return false }
	require.NoError(t, app.catalog.DeleteMany([]string{p.ID}))
	assert.Len(t, app.store.Products(), 1)
}

func TestDeleteOne(t *testing.T) {
	app := newTestApp(t, trackedProduct("Widget", 10), trackedProduct("Other", 1))
	p := app.productByTitle(t, "Widget")

	require.NoError(t, app.catalog.DeleteOne(p.ID))

	assert.Len(t, app.store.Products(), 1)
	assert.Contains(t, notify.Current(), "1 product(s) deleted")
}

func TestDeleteImage(t *testing.T) {
	seeded := trackedProduct("Widget", 10)
	seeded.Images = []string{"front.jpg", "back.jpg"}
	app := newTestApp(t, seeded)
	p := app.productByTitle(t, "Widget")

	require.NoError(t, app.catalog.DeleteImage(p.ID, "front.jpg"))

	updated, _ := app.store.Product(p.ID)
	assert.Equal(t, []string{"back.jpg"}, updated.Images)
	assert.Equal(t, "Image deleted", notify.Current())
}

func TestRefreshClearsSelectionAndResetsPage(t *testing.T) {
	seed := make([]models.Product, 60)
	for i := range seed {
		seed[i] = trackedProduct(fmt.Sprintf("Item %02d", i), 5)
	}
	app := newTestApp(t, seed...)

	app.store.SelectProducts(app.store.Products()[0].ID)
	app.store.SetPage(2)

	require.NoError(t, app.catalog.Refresh())

	assert.Empty(t, app.store.SelectedProducts(), "stale selection is dropped")
	assert.Equal(t, 1, app.store.Page())
}

func TestRefreshReversesForNewestFirst(t *testing.T) {
	app := newTestApp(t, trackedProduct("First", 1), trackedProduct("Second", 1))

	// The demo backend stores oldest-first; the client reverses.
	products := app.store.Products()
	require.Len(t, products, 2)
	assert.Equal(t, "Second", products[0].Title)
	assert.Equal(t, "First", products[1].Title)
}
