package demoserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/mapstack/app/models"
)

// maxMultipartMemory bounds in-memory parsing of product forms.
const maxMultipartMemory = 16 << 20

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products := s.store.listProducts()
	if products == nil {
		products = []models.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed multipart form")
		return
	}

	p := productFromForm(r, models.Product{})
	p.Images = imageNames(r, nil)
	if p.Title == "" {
		writeError(w, http.StatusUnprocessableEntity, "The title field is required.")
		return
	}
	if len(p.Images) > models.MaxProductImages {
		writeError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("A product can have at most %d images", models.MaxProductImages))
		return
	}

	created := s.store.addProduct(p)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"product": created,
		"message": "Product added",
	})
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed multipart form")
		return
	}

	id := chi.URLParam(r, "id")
	existing := r.MultipartForm.Value["existingImages"]

	updated, ok := s.store.updateProduct(id, func(p *models.Product) {
		*p = productFromForm(r, *p)
		p.Images = imageNames(r, existing)
	})
	if !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	if len(updated.Images) > models.MaxProductImages {
		writeError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("A product can have at most %d images", models.MaxProductImages))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"product": updated,
		"message": "Product updated",
	})
}

func (s *Server) handleDeleteProducts(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []string `json:"ids"`
	}
	if err := readJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	deleted := s.store.deleteProducts(body.IDs)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("%d product(s) deleted", deleted),
	})
}

func (s *Server) handleDeleteImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	imageName := chi.URLParam(r, "imageName")

	_, ok := s.store.updateProduct(id, func(p *models.Product) {
		kept := p.Images[:0]
		for _, name := range p.Images {
			if name != imageName {
				kept = append(kept, name)
			}
		}
		p.Images = kept
	})
	if !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Image deleted"})
}

// productFromForm overlays the multipart fields onto base. Absent sku and
// barcode fields leave the stored values untouched, matching the client's
// skip-when-empty behaviour.
func productFromForm(r *http.Request, base models.Product) models.Product {
	p := base
	p.Title = formValue(r, "title", p.Title)
	p.Description = formValue(r, "description", p.Description)
	p.Category = formValue(r, "category", p.Category)
	p.Supplier = formValue(r, "supplier", p.Supplier)
	p.InventoryLocation = formValue(r, "inventoryLocation", p.InventoryLocation)
	p.SKU = formValue(r, "sku", p.SKU)
	p.Barcode = formValue(r, "barcode", p.Barcode)

	if v := r.FormValue("price"); v != "" {
		p.Price, _ = strconv.ParseFloat(v, 64)
	}
	if v := r.FormValue("cost"); v != "" {
		p.Cost, _ = strconv.ParseFloat(v, 64)
	}
	if v := r.FormValue("trackQuantity"); v != "" {
		p.TrackQuantity, _ = strconv.ParseBool(v)
	}
	if v := r.FormValue("quantity"); v != "" {
		p.Quantity, _ = strconv.Atoi(v)
	}
	if v := r.FormValue("lowStock"); v != "" {
		p.LowStock, _ = strconv.Atoi(v)
	}
	return p
}

func formValue(r *http.Request, key, fallback string) string {
	if vs, ok := r.MultipartForm.Value[key]; ok && len(vs) > 0 {
		return vs[0]
	}
	return fallback
}

// imageNames collects retained image names plus the filenames of new
// uploads. Binary content is discarded; the demo backend stores names only.
func imageNames(r *http.Request, existing []string) []string {
	names := append([]string{}, existing...)
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["images"] {
			names = append(names, fh.Filename)
		}
	}
	return names
}
