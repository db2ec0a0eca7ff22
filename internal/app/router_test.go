package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine-commerce/vitrine/internal/auth"
	"github.com/vitrine-commerce/vitrine/internal/clients"
	"github.com/vitrine-commerce/vitrine/internal/orders"
	"github.com/vitrine-commerce/vitrine/internal/platform/httpx"
	"github.com/vitrine-commerce/vitrine/internal/products"
)

// memStore backs all repositories for router-level tests, so one request can
// touch users, clients, products, and orders the way a real database would.
type memStore struct {
	users       map[string]auth.User
	clientRecs  map[int64]clients.Client
	productRecs map[int64]products.Product
	orderRecs   map[int64]orders.Order
	itemRecs    map[int64][]orders.Item

	nextUser, nextClient, nextProduct, nextOrder, nextItem int64
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[string]auth.User),
		clientRecs:  make(map[int64]clients.Client),
		productRecs: make(map[int64]products.Product),
		orderRecs:   make(map[int64]orders.Order),
		itemRecs:    make(map[int64][]orders.Item),
		nextUser:    1,
		nextClient:  1,
		nextProduct: 1,
		nextOrder:   1,
		nextItem:    1,
	}
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

type memAuthRepo struct{ s *memStore }

func (r memAuthRepo) Create(ctx context.Context, username, passwordHash string) (*auth.User, error) {
	if _, ok := r.s.users[username]; ok {
		return nil, fmt.Errorf("%w: username already registered", httpx.ErrDuplicate)
	}
	u := auth.User{ID: r.s.nextUser, Username: username, PasswordHash: passwordHash, CreatedAt: time.Now()}
	r.s.nextUser++
	r.s.users[username] = u
	return &u, nil
}

func (r memAuthRepo) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	u, ok := r.s.users[username]
	if !ok {
		return nil, fmt.Errorf("%w: user not found", httpx.ErrNotFound)
	}
	return &u, nil
}

type memClientsRepo struct{ s *memStore }

func (r memClientsRepo) Create(ctx context.Context, client clients.Client) (*clients.Client, error) {
	for _, c := range r.s.clientRecs {
		if c.Email == client.Email {
			return nil, fmt.Errorf("%w: a client with this email already exists", httpx.ErrDuplicate)
		}
		if c.CPF == client.CPF {
			return nil, fmt.Errorf("%w: a client with this cpf already exists", httpx.ErrDuplicate)
		}
	}
	client.ID = r.s.nextClient
	r.s.nextClient++
	r.s.clientRecs[client.ID] = client
	return &client, nil
}

func (r memClientsRepo) Get(ctx context.Context, id int64) (*clients.Client, error) {
	c, ok := r.s.clientRecs[id]
	if !ok {
		return nil, fmt.Errorf("%w: client not found", httpx.ErrNotFound)
	}
	return &c, nil
}

func (r memClientsRepo) FindByEmailOrCPF(ctx context.Context, email, cpf string) (*clients.Client, error) {
	for _, id := range sortedKeys(r.s.clientRecs) {
		c := r.s.clientRecs[id]
		if c.Email == email || c.CPF == cpf {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: client not found", httpx.ErrNotFound)
}

func (r memClientsRepo) List(ctx context.Context, req clients.ListClientsRequest) ([]clients.Client, error) {
	var list []clients.Client
	for _, id := range sortedKeys(r.s.clientRecs) {
		list = append(list, r.s.clientRecs[id])
	}
	return list, nil
}

func (r memClientsRepo) Update(ctx context.Context, id int64, updates map[string]any) error {
	c, ok := r.s.clientRecs[id]
	if !ok {
		return fmt.Errorf("%w: client not found", httpx.ErrNotFound)
	}
	if v, ok := updates["name"]; ok {
		c.Name = v.(string)
	}
	if v, ok := updates["email"]; ok {
		c.Email = v.(string)
	}
	r.s.clientRecs[id] = c
	return nil
}

func (r memClientsRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.s.clientRecs[id]; !ok {
		return fmt.Errorf("%w: client not found", httpx.ErrNotFound)
	}
	delete(r.s.clientRecs, id)
	return nil
}

type memProductsRepo struct{ s *memStore }

func (r memProductsRepo) Create(ctx context.Context, product products.Product) (*products.Product, error) {
	for _, p := range r.s.productRecs {
		if p.Barcode == product.Barcode {
			return nil, fmt.Errorf("%w: a product with this barcode already exists", httpx.ErrDuplicate)
		}
	}
	product.ID = r.s.nextProduct
	r.s.nextProduct++
	r.s.productRecs[product.ID] = product
	return &product, nil
}

func (r memProductsRepo) Get(ctx context.Context, id int64) (*products.Product, error) {
	p, ok := r.s.productRecs[id]
	if !ok {
		return nil, fmt.Errorf("%w: product not found", httpx.ErrNotFound)
	}
	return &p, nil
}

func (r memProductsRepo) GetByBarcode(ctx context.Context, barcode string) (*products.Product, error) {
	for _, p := range r.s.productRecs {
		if p.Barcode == barcode {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: product not found", httpx.ErrNotFound)
}

func (r memProductsRepo) List(ctx context.Context, req products.ListProductsRequest) ([]products.Product, error) {
	var list []products.Product
	for _, id := range sortedKeys(r.s.productRecs) {
		list = append(list, r.s.productRecs[id])
	}
	return list, nil
}

func (r memProductsRepo) Update(ctx context.Context, id int64, updates map[string]any) error {
	p, ok := r.s.productRecs[id]
	if !ok {
		return fmt.Errorf("%w: product not found", httpx.ErrNotFound)
	}
	if v, ok := updates["inventory"]; ok {
		p.Inventory = v.(int)
	}
	r.s.productRecs[id] = p
	return nil
}

func (r memProductsRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.s.productRecs[id]; !ok {
		return fmt.Errorf("%w: product not found", httpx.ErrNotFound)
	}
	delete(r.s.productRecs, id)
	return nil
}

type memOrdersRepo struct{ s *memStore }

func (r memOrdersRepo) WithTx(ctx context.Context, fn func(context.Context, orders.TxRepository) error) error {
	return fn(ctx, memOrdersTx{s: r.s})
}

func (r memOrdersRepo) Get(ctx context.Context, id int64) (*orders.Order, error) {
	o, ok := r.s.orderRecs[id]
	if !ok {
		return nil, fmt.Errorf("%w: order not found", httpx.ErrNotFound)
	}
	o.Items = append([]orders.Item{}, r.s.itemRecs[id]...)
	return &o, nil
}

func (r memOrdersRepo) List(ctx context.Context, req orders.ListOrdersRequest) ([]orders.Order, error) {
	var list []orders.Order
	for _, id := range sortedKeys(r.s.orderRecs) {
		o := r.s.orderRecs[id]
		o.Items = append([]orders.Item{}, r.s.itemRecs[id]...)
		list = append(list, o)
	}
	return list, nil
}

func (r memOrdersRepo) UpdateStatus(ctx context.Context, id int64, status orders.OrderStatus) error {
	o, ok := r.s.orderRecs[id]
	if !ok {
		return fmt.Errorf("%w: order not found", httpx.ErrNotFound)
	}
	o.Status = status
	r.s.orderRecs[id] = o
	return nil
}

type memOrdersTx struct{ s *memStore }

func (t memOrdersTx) ClientExists(ctx context.Context, clientID int64) (bool, error) {
	_, ok := t.s.clientRecs[clientID]
	return ok, nil
}

func (t memOrdersTx) InsertOrder(ctx context.Context, order orders.Order) (int64, error) {
	order.ID = t.s.nextOrder
	t.s.nextOrder++
	t.s.orderRecs[order.ID] = order
	return order.ID, nil
}

func (t memOrdersTx) LockProduct(ctx context.Context, productID int64) (orders.ProductStock, error) {
	p, ok := t.s.productRecs[productID]
	if !ok {
		return orders.ProductStock{}, fmt.Errorf("%w: product %d not found", httpx.ErrNotFound, productID)
	}
	return orders.ProductStock{ID: p.ID, Inventory: p.Inventory}, nil
}

func (t memOrdersTx) DecrementInventory(ctx context.Context, productID int64, qty int) error {
	p := t.s.productRecs[productID]
	p.Inventory -= qty
	t.s.productRecs[productID] = p
	return nil
}

func (t memOrdersTx) InsertItem(ctx context.Context, item orders.Item) (int64, error) {
	item.ID = t.s.nextItem
	t.s.nextItem++
	t.s.itemRecs[item.OrderID] = append(t.s.itemRecs[item.OrderID], item)
	return item.ID, nil
}

func (t memOrdersTx) DeleteItems(ctx context.Context, orderID int64) error {
	delete(t.s.itemRecs, orderID)
	return nil
}

func (t memOrdersTx) DeleteOrder(ctx context.Context, orderID int64) error {
	if _, ok := t.s.orderRecs[orderID]; !ok {
		return fmt.Errorf("%w: order not found", httpx.ErrNotFound)
	}
	delete(t.s.orderRecs, orderID)
	return nil
}

func newAppRouter(t *testing.T) (http.Handler, *memStore) {
	t.Helper()
	store := newMemStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &Config{AppEnv: "test", AppRequestTimeout: 30 * time.Second}

	authService := auth.NewService(memAuthRepo{store}, auth.NewTokenService("test-secret", 30*time.Minute), nil)

	router := NewRouter(RouterParams{
		Logger:          logger,
		Config:          cfg,
		AuthService:     authService,
		AuthHandler:     auth.NewHandler(logger, authService),
		ClientsHandler:  clients.NewHandler(logger, clients.NewService(memClientsRepo{store})),
		ProductsHandler: products.NewHandler(logger, products.NewService(memProductsRepo{store})),
		OrdersHandler:   orders.NewHandler(logger, orders.NewService(memOrdersRepo{store})),
	})
	return router, store
}

func do(t *testing.T, router http.Handler, method, path, token, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func obtainToken(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/auth/register", "", "application/json",
		`{"username":"maria","password":"senha123"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	form := url.Values{"username": {"maria"}, "password": {"senha123"}}
	rec = do(t, router, http.MethodPost, "/auth/login", "", "application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func TestRouterRequiresBearerToken(t *testing.T) {
	router, _ := newAppRouter(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/clients"},
		{http.MethodPost, "/clients"},
		{http.MethodGet, "/clients/1"},
		{http.MethodPut, "/clients/1"},
		{http.MethodDelete, "/clients/1"},
		{http.MethodGet, "/products"},
		{http.MethodPost, "/products"},
		{http.MethodDelete, "/products/1"},
		{http.MethodGet, "/orders"},
		{http.MethodPost, "/orders"},
		{http.MethodPut, "/orders/1"},
		{http.MethodDelete, "/orders/1"},
	}
	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := do(t, router, tc.method, tc.path, "", "", "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
		})
	}
}

func TestRouterRejectsInvalidToken(t *testing.T) {
	router, _ := newAppRouter(t)

	rec := do(t, router, http.MethodGet, "/clients", "not-a-token", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterAuthRoutesArePublic(t *testing.T) {
	router, _ := newAppRouter(t)

	rec := do(t, router, http.MethodPost, "/auth/register", "", "application/json",
		`{"username":"maria","password":"senha123"}`)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestRouterAuthenticatedRequestReachesHandler(t *testing.T) {
	router, _ := newAppRouter(t)
	token := obtainToken(t, router)

	rec := do(t, router, http.MethodGet, "/clients", token, "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"clients":[]}`, rec.Body.String())
}

func TestRouterPurchaseFlow(t *testing.T) {
	router, store := newAppRouter(t)
	token := obtainToken(t, router)

	created := do(t, router, http.MethodPost, "/clients", token, "application/json",
		`{"name":"Maria Silva","email":"maria@example.com","cpf":"12345678901"}`)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	var client clients.ClientPublic
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &client))

	created = do(t, router, http.MethodPost, "/products", token, "application/json",
		`{"barcode":"7891000100103","description":"Camiseta","price_cents":4999,"section":"clothing","inventory":5}`)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	var product products.Product
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &product))

	body := fmt.Sprintf(`{"client_id":%d,"items":[{"product_id":%d,"quantity":2}]}`, client.ID, product.ID)
	created = do(t, router, http.MethodPost, "/orders", token, "application/json", body)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	var order orders.Order
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &order))
	assert.Equal(t, orders.StatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)

	// Placing the order consumed stock.
	show := do(t, router, http.MethodGet, fmt.Sprintf("/products/%d", product.ID), token, "", "")
	require.Equal(t, http.StatusOK, show.Code)
	require.NoError(t, json.Unmarshal(show.Body.Bytes(), &product))
	assert.Equal(t, 3, product.Inventory)

	updated := do(t, router, http.MethodPut, fmt.Sprintf("/orders/%d", order.ID), token, "application/json",
		`{"status":"shipped"}`)
	require.Equal(t, http.StatusOK, updated.Code, updated.Body.String())
	require.NoError(t, json.Unmarshal(updated.Body.Bytes(), &order))
	assert.Equal(t, orders.StatusShipped, order.Status)

	deleted := do(t, router, http.MethodDelete, fmt.Sprintf("/orders/%d", order.ID), token, "", "")
	require.Equal(t, http.StatusNoContent, deleted.Code)
	assert.Empty(t, store.orderRecs)

	gone := do(t, router, http.MethodGet, fmt.Sprintf("/orders/%d", order.ID), token, "", "")
	assert.Equal(t, http.StatusNotFound, gone.Code)
}
