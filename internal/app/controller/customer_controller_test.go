package controller

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/sellaro/sellaro-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerUpsertCreatesAnonymousCustomer(t *testing.T) {
	env := newTestEnv(t)
	sess := env.login(t, nil)

	w := env.request(http.MethodPost, "/api/v1/customers", map[string]any{
		"first_name": "Guest",
		"email":      "guest@example.com",
	}, sess)
	assert.Equal(t, http.StatusCreated, w.Code)

	var customer model.Customer
	decodeBody(t, w, &customer)
	assert.NotZero(t, customer.ID)
	assert.Nil(t, customer.UserID)

	// The session now carries the customer for later requests.
	stored, err := env.store.Load(context.Background(), sess.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.CustomerID)
	assert.Equal(t, customer.ID, *stored.CustomerID)
}

func TestCustomerUpsertUpdatesExisting(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "hunter22")
	sess := env.login(t, user)

	w := env.request(http.MethodPost, "/api/v1/customers", map[string]any{
		"first_name": "Alice",
		"phone":      "555-0100",
	}, sess)
	assert.Equal(t, http.StatusCreated, w.Code)

	var updated model.Customer
	decodeBody(t, w, &updated)
	assert.Equal(t, user.Customer.ID, updated.ID)
	assert.Equal(t, "Alice", updated.FirstName)

	// No second customer appeared.
	var count int64
	require.NoError(t, env.db.Model(&model.Customer{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCustomerRetrieveOwnRecord(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "hunter22")
	sess := env.login(t, user)

	w := env.request(http.MethodGet, fmt.Sprintf("/api/v1/customers/%d", user.Customer.ID), nil, sess)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCustomerRetrieveForeignRecordHidden(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice@example.com", "hunter22")
	bob := env.createUser(t, "bob@example.com", "hunter22")

	sess := env.login(t, bob)
	w := env.request(http.MethodGet, fmt.Sprintf("/api/v1/customers/%d", alice.Customer.ID), nil, sess)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCustomerUpdateRequiresLogin(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "hunter22")

	w := env.request(http.MethodPut, fmt.Sprintf("/api/v1/customers/%d", user.Customer.ID), map[string]any{
		"notes": "updated",
	}, env.login(t, nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCustomerUpdateOwnRecord(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "hunter22")
	sess := env.login(t, user)

	w := env.request(http.MethodPut, fmt.Sprintf("/api/v1/customers/%d", user.Customer.ID), map[string]any{
		"company": "ACME",
	}, sess)
	assert.Equal(t, http.StatusAccepted, w.Code)

	var stored model.Customer
	require.NoError(t, env.db.First(&stored, user.Customer.ID).Error)
	assert.Equal(t, "ACME", stored.Company)
}

func TestCustomerDeleteRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "hunter22")
	sess := env.login(t, user)

	w := env.request(http.MethodDelete, fmt.Sprintf("/api/v1/customers/%d", user.Customer.ID), nil, sess)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCustomerDeleteAsAdmin(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "hunter22")
	admin := env.createUser(t, "root@example.com", "hunter22", model.RoleAdmin)

	sess := env.login(t, admin)
	w := env.request(http.MethodDelete, fmt.Sprintf("/api/v1/customers/%d", user.Customer.ID), nil, sess)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, env.db.Model(&model.Customer{}).Where("id = ?", user.Customer.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCustomerListScoped(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice@example.com", "hunter22")
	env.createUser(t, "bob@example.com", "hunter22")

	sess := env.login(t, alice)
	w := env.request(http.MethodGet, "/api/v1/customers", nil, sess)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Meta struct {
			Total int64 `json:"total"`
		} `json:"meta"`
		Objects []model.Customer `json:"objects"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, int64(1), resp.Meta.Total)
	require.Len(t, resp.Objects, 1)
	assert.Equal(t, alice.Customer.ID, resp.Objects[0].ID)
}

func TestCustomerListSuperuserSeesAll(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice@example.com", "hunter22")
	env.createUser(t, "bob@example.com", "hunter22")
	root := env.createUser(t, "root@example.com", "hunter22")
	env.makeSuperuser(t, root)

	sess := env.login(t, root)
	w := env.request(http.MethodGet, "/api/v1/customers", nil, sess)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Meta struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, int64(3), resp.Meta.Total)
}
