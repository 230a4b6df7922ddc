package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/focushoney/cart/internal/service"
	"github.com/Alturino/focushoney/cart/pkg/response"
	"github.com/Alturino/focushoney/cart/pkg/session"
	"github.com/Alturino/focushoney/cart/pkg/store"
	inHttp "github.com/Alturino/focushoney/internal/common/http"
	"github.com/Alturino/focushoney/internal/config"
	"github.com/Alturino/focushoney/internal/middleware"
	"github.com/Alturino/focushoney/product/pkg/catalog"
)

type memoryPersister struct {
	mu     sync.Mutex
	target string
	items  []response.CartItem
}

func (m *memoryPersister) Load(c context.Context) ([]response.CartItem, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return response.Clone(m.items), m.items != nil, nil
}

func (m *memoryPersister) Save(c context.Context, items []response.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = response.Clone(items)
	return nil
}

func (m *memoryPersister) Delete(c context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
	return nil
}

func (m *memoryPersister) Target() string { return m.target }

type memoryFactory struct {
	mu    sync.Mutex
	local map[string]*memoryPersister
}

func (f *memoryFactory) Local(deviceID string) store.Persister {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.local[deviceID]; !ok {
		f.local[deviceID] = &memoryPersister{target: store.TargetLocal}
	}
	return f.local[deviceID]
}

func (f *memoryFactory) Remote(userID uuid.UUID) store.Persister {
	return &memoryPersister{target: store.TargetRemote}
}

type envelope struct {
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode"`
	Data       struct {
		Cart struct {
			Items []struct {
				ID       string `json:"id"`
				Quantity int    `json:"quantity"`
			} `json:"items"`
			Total json.Number `json:"total"`
			Count int         `json:"count"`
		} `json:"cart"`
	} `json:"data"`
}

func newRouter(t *testing.T) (*mux.Router, *memoryFactory) {
	cat, err := catalog.New(context.Background(), config.Catalog{Products: []config.Product{
		{ID: "1", Name: "Raw Honey - 500ml", Price: "Ghc 50", Image: "/images/hero1.png"},
		{ID: "2", Name: "Ginger Infused Honey", Price: "Ghc 60", Image: "/images/p2.png"},
	}})
	require.NoError(t, err)

	factory := &memoryFactory{local: map[string]*memoryPersister{}}
	router := mux.NewRouter()
	router.Use(middleware.Session("secret"))
	AttachCartController(router, service.NewCartService(session.NewResolver(factory), cat))
	return router, factory
}

func do(t *testing.T, router http.Handler, method string, path string, body string) (int, envelope) {
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	r := httptest.NewRequest(method, path, reader)
	r.Header.Set(inHttp.HeaderDeviceID, "device-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	res := envelope{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	return w.Code, res
}

func TestCartController(t *testing.T) {
	router, factory := newRouter(t)

	code, res := do(t, router, http.MethodPost, "/carts/items", `{"product_id":"1"}`)
	require.Equal(t, http.StatusOK, code)
	code, res = do(t, router, http.MethodPost, "/carts/items", `{"product_id":"1"}`)
	require.Equal(t, http.StatusOK, code)
	code, res = do(t, router, http.MethodPost, "/carts/items", `{"product_id":"2"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 3, res.Data.Cart.Count)
	assert.Equal(t, "160", res.Data.Cart.Total.String())

	code, res = do(t, router, http.MethodPut, "/carts/items/1", `{"quantity":0}`)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, res.Data.Cart.Items, 1)
	assert.Equal(t, "2", res.Data.Cart.Items[0].ID)

	code, _ = do(t, router, http.MethodPost, "/carts/items", `{"product_id":"99"}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, router, http.MethodPost, "/carts/items", `{"product_id":" "}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, router, http.MethodPut, "/carts/items/2", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, res = do(t, router, http.MethodDelete, "/carts/items/2", "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, res.Data.Cart.Items)
	assert.NotNil(t, factory.local["device-1"].items)

	_, _ = do(t, router, http.MethodPost, "/carts/items", `{"product_id":"2"}`)
	code, res = do(t, router, http.MethodDelete, "/carts", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, res.Data.Cart.Count)
	assert.Nil(t, factory.local["device-1"].items)
}
