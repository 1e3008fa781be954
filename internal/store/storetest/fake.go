// Package storetest provides an in-memory stand-in for the remote product collection, served over HTTP.
package storetest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/abgdnv/checklist/internal/model"
	"github.com/go-chi/chi/v5"
)

// FailureFunc decides whether a request should fail. It returns the status to answer with,
// or 0 to serve the request normally. A negative status answers 200 with an unparsable body.
type FailureFunc func(method, id string) int

// Collection is a mockapi-style REST collection kept in memory.
// Ids are sequential decimal strings.
type Collection struct {
	mu       sync.RWMutex
	products []model.Product
	nextID   int
	fail     FailureFunc
	requests atomic.Int64
}

// NewCollection creates a collection seeded with products; their ids are kept as given.
func NewCollection(seed ...model.Product) *Collection {
	c := &Collection{nextID: 1}
	for _, p := range seed {
		c.products = append(c.products, p)
		if n, err := strconv.Atoi(p.ID); err == nil && n >= c.nextID {
			c.nextID = n + 1
		}
	}
	return c
}

// Server starts an httptest.Server for the collection at /api/products and returns it with the collection URL.
func (c *Collection) Server() (*httptest.Server, string) {
	srv := httptest.NewServer(c.Handler())
	return srv, srv.URL + "/api/products"
}

// Handler exposes the collection routes.
func (c *Collection) Handler() http.Handler {
	r := chi.NewRouter()
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", c.list)
		r.Post("/", c.create)
		r.Put("/{id}", c.update)
		r.Delete("/{id}", c.remove)
	})
	return r
}

// SetFailure installs f; nil restores normal behavior.
func (c *Collection) SetFailure(f FailureFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fail = f
}

// Requests returns the number of requests received so far.
func (c *Collection) Requests() int64 {
	return c.requests.Load()
}

// Products returns a copy of the stored products.
func (c *Collection) Products() []model.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Collection) list(w http.ResponseWriter, r *http.Request) {
	if c.injected(w, r.Method, "") {
		return
	}
	respondJSON(w, http.StatusOK, c.Products())
}

func (c *Collection) create(w http.ResponseWriter, r *http.Request) {
	if c.injected(w, r.Method, "") {
		return
	}
	var draft model.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	c.mu.Lock()
	product := model.Product{ID: strconv.Itoa(c.nextID), Name: draft.Name, Brand: draft.Brand}
	c.nextID++
	c.products = append(c.products, product)
	c.mu.Unlock()

	respondJSON(w, http.StatusCreated, product)
}

func (c *Collection) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if c.injected(w, r.Method, id) {
		return
	}
	var patch model.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		respondJSON(w, http.StatusNotFound, "Not found")
		return
	}
	c.products[i] = patch.Apply(c.products[i])
	updated := c.products[i]
	c.mu.Unlock()

	respondJSON(w, http.StatusOK, updated)
}

func (c *Collection) remove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if c.injected(w, r.Method, id) {
		return
	}

	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		respondJSON(w, http.StatusNotFound, "Not found")
		return
	}
	removed := c.products[i]
	c.products = append(c.products[:i], c.products[i+1:]...)
	c.mu.Unlock()

	respondJSON(w, http.StatusOK, removed)
}

// injected counts the request and writes an injected failure if one applies.
func (c *Collection) injected(w http.ResponseWriter, method, id string) bool {
	c.requests.Add(1)
	c.mu.RLock()
	fail := c.fail
	c.mu.RUnlock()
	if fail == nil {
		return false
	}
	status := fail(method, id)
	switch {
	case status == 0:
		return false
	case status < 0:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>not json"))
	default:
		http.Error(w, http.StatusText(status), status)
	}
	return true
}

// indexOf must be called with c.mu held.
func (c *Collection) indexOf(id string) int {
	for i, p := range c.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
