package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/storefront-api/internal/application/product"
	"github.com/storefront-api/internal/domain"
	"github.com/storefront-api/internal/pkg/validate"
)

// ProductHandler handles catalogue endpoints. Reads are public; writes are
// admin-only (enforced in the router).
type ProductHandler struct {
	svc product.Service
}

func NewProductHandler(svc product.Service) *ProductHandler { return &ProductHandler{svc: svc} }

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, cursor := parsePage(r)
	q := r.URL.Query()
	filter := domain.ProductFilter{
		CategoryID:  q.Get("category_id"),
		InStockOnly: q.Get("in_stock") == "true",
	}
	filter.MinPrice, _ = strconv.ParseFloat(q.Get("min_price"), 64)
	filter.MaxPrice, _ = strconv.ParseFloat(q.Get("max_price"), 64)

	products, next, err := h.svc.List(r.Context(), filter, limit, cursor)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PageEnvelope{Data: products, NextCursor: next})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	p, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "product deleted"})
}

func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	f, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing image field")
		return
	}
	defer f.Close()

	p, err := h.svc.UploadImage(r.Context(), chi.URLParam(r, "id"), header.Filename, f, header.Header.Get("Content-Type"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) UploadImageBase64(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FileName string `json:"file_name"`
		Base64   string `json:"base64"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Base64 == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := h.svc.UploadImageBase64(r.Context(), chi.URLParam(r, "id"), body.FileName, body.Base64)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}
