package clients

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine-commerce/vitrine/internal/platform/httpx"
)

type mockRepo struct {
	byID     map[int64]Client
	nextID   int64
	ordersBy map[int64]bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{byID: make(map[int64]Client), nextID: 1, ordersBy: make(map[int64]bool)}
}

func (m *mockRepo) Create(ctx context.Context, client Client) (*Client, error) {
	for _, c := range m.byID {
		if c.Email == client.Email {
			return nil, fmt.Errorf("%w: a client with this email already exists", httpx.ErrDuplicate)
		}
		if c.CPF == client.CPF {
			return nil, fmt.Errorf("%w: a client with this cpf already exists", httpx.ErrDuplicate)
		}
	}
	client.ID = m.nextID
	m.nextID++
	m.byID[client.ID] = client
	return &client, nil
}

func (m *mockRepo) Get(ctx context.Context, id int64) (*Client, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: client not found", httpx.ErrNotFound)
	}
	return &c, nil
}

func (m *mockRepo) FindByEmailOrCPF(ctx context.Context, email, cpf string) (*Client, error) {
	ids := make([]int64, 0, len(m.byID))
	for id := range m.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		c := m.byID[id]
		if c.Email == email || c.CPF == cpf {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: client not found", httpx.ErrNotFound)
}

func (m *mockRepo) List(ctx context.Context, req ListClientsRequest) ([]Client, error) {
	ids := make([]int64, 0, len(m.byID))
	for id := range m.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var matched []Client
	for _, id := range ids {
		c := m.byID[id]
		if req.Name != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(req.Name)) {
			continue
		}
		if req.Email != "" && !strings.Contains(strings.ToLower(c.Email), strings.ToLower(req.Email)) {
			continue
		}
		matched = append(matched, c)
	}

	if req.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[req.Offset:]
	if req.Limit < len(matched) {
		matched = matched[:req.Limit]
	}
	return matched, nil
}

func (m *mockRepo) Update(ctx context.Context, id int64, updates map[string]any) error {
	c, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("%w: client not found", httpx.ErrNotFound)
	}
	if v, ok := updates["email"]; ok {
		email := v.(string)
		for otherID, other := range m.byID {
			if otherID != id && other.Email == email {
				return fmt.Errorf("%w: a client with this email already exists", httpx.ErrDuplicate)
			}
		}
		c.Email = email
	}
	if v, ok := updates["name"]; ok {
		c.Name = v.(string)
	}
	m.byID[id] = c
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.byID[id]; !ok {
		return fmt.Errorf("%w: client not found", httpx.ErrNotFound)
	}
	if m.ordersBy[id] {
		return fmt.Errorf("%w: client has existing orders", httpx.ErrDuplicate)
	}
	delete(m.byID, id)
	return nil
}

func seedClient(t *testing.T, svc *Service, name, email, cpf string) *Client {
	t.Helper()
	c, err := svc.Create(context.Background(), CreateClientRequest{Name: name, Email: email, CPF: cpf})
	require.NoError(t, err)
	return c
}

func TestCreateClient(t *testing.T) {
	svc := NewService(newMockRepo())

	c := seedClient(t, svc, "Maria Silva", "maria@example.com", "12345678901")
	assert.NotZero(t, c.ID)
	assert.Equal(t, "Maria Silva", c.Name)
}

func TestCreateClientConflictPrefersEmail(t *testing.T) {
	svc := NewService(newMockRepo())
	seedClient(t, svc, "Maria Silva", "maria@example.com", "12345678901")

	// Same email and same cpf: the email conflict wins.
	_, err := svc.Create(context.Background(), CreateClientRequest{
		Name:  "Outra Maria",
		Email: "maria@example.com",
		CPF:   "12345678901",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, httpx.ErrDuplicate)
	assert.Contains(t, err.Error(), "email")
}

func TestCreateClientConflictOnCPF(t *testing.T) {
	svc := NewService(newMockRepo())
	seedClient(t, svc, "Maria Silva", "maria@example.com", "12345678901")

	_, err := svc.Create(context.Background(), CreateClientRequest{
		Name:  "Joana Souza",
		Email: "joana@example.com",
		CPF:   "12345678901",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, httpx.ErrDuplicate)
	assert.Contains(t, err.Error(), "cpf")
}

func TestUpdateClientPartial(t *testing.T) {
	svc := NewService(newMockRepo())
	c := seedClient(t, svc, "Maria Silva", "maria@example.com", "12345678901")

	name := "Maria Souza"
	updated, err := svc.Update(context.Background(), c.ID, UpdateClientRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Maria Souza", updated.Name)
	assert.Equal(t, "maria@example.com", updated.Email)
	assert.Equal(t, "12345678901", updated.CPF)
}

func TestUpdateClientNoFieldsIsNoop(t *testing.T) {
	svc := NewService(newMockRepo())
	c := seedClient(t, svc, "Maria Silva", "maria@example.com", "12345678901")

	updated, err := svc.Update(context.Background(), c.ID, UpdateClientRequest{})
	require.NoError(t, err)
	assert.Equal(t, *c, *updated)
}

func TestUpdateClientNotFound(t *testing.T) {
	svc := NewService(newMockRepo())

	name := "Maria"
	_, err := svc.Update(context.Background(), 42, UpdateClientRequest{Name: &name})
	require.Error(t, err)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestUpdateClientEmailConflict(t *testing.T) {
	svc := NewService(newMockRepo())
	seedClient(t, svc, "Maria Silva", "maria@example.com", "12345678901")
	c := seedClient(t, svc, "Joana Souza", "joana@example.com", "98765432109")

	email := "maria@example.com"
	_, err := svc.Update(context.Background(), c.ID, UpdateClientRequest{Email: &email})
	require.Error(t, err)
	assert.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestListClientsFiltersAndPaginates(t *testing.T) {
	svc := NewService(newMockRepo())
	seedClient(t, svc, "Maria Silva", "maria@example.com", "11111111111")
	seedClient(t, svc, "Maria Souza", "souza@example.com", "22222222222")
	seedClient(t, svc, "Joana Lima", "joana@example.com", "33333333333")

	byName, err := svc.List(context.Background(), ListClientsRequest{Name: "maria", Limit: 10})
	require.NoError(t, err)
	assert.Len(t, byName, 2)

	paged, err := svc.List(context.Background(), ListClientsRequest{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "Joana Lima", paged[0].Name)
}

func TestDeleteClient(t *testing.T) {
	svc := NewService(newMockRepo())
	c := seedClient(t, svc, "Maria Silva", "maria@example.com", "12345678901")

	require.NoError(t, svc.Delete(context.Background(), c.ID))

	_, err := svc.Get(context.Background(), c.ID)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestDeleteClientWithOrders(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	c := seedClient(t, svc, "Maria Silva", "maria@example.com", "12345678901")
	repo.ordersBy[c.ID] = true

	err := svc.Delete(context.Background(), c.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, httpx.ErrDuplicate)
}
