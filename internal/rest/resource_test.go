package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type widget struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

func setupWidgetAPI(t *testing.T, configure func(*Resource[widget])) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&widget{}))

	resource := &Resource[widget]{
		Name:    "Widget",
		Backend: NewGormBackend[widget](db),
	}
	if configure != nil {
		configure(resource)
	}

	r := gin.New()
	resource.Mount(r.Group("/widgets"))
	return r, db
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestResourceCreateAndRetrieve(t *testing.T) {
	r, _ := setupWidgetAPI(t, nil)

	w := doJSON(r, http.MethodPost, "/widgets", gin.H{"name": "anvil", "color": "grey"})
	assert.Equal(t, http.StatusCreated, w.Code)

	var created widget
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, "anvil", created.Name)

	w = doJSON(r, http.MethodGet, fmt.Sprintf("/widgets/%d", created.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestResourceCreateValidation(t *testing.T) {
	r, _ := setupWidgetAPI(t, nil)

	w := doJSON(r, http.MethodPost, "/widgets", gin.H{"color": "grey"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var fields map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fields))
	assert.Contains(t, fields, "name")
}

func TestResourceRetrieveMissing(t *testing.T) {
	r, _ := setupWidgetAPI(t, nil)

	w := doJSON(r, http.MethodGet, "/widgets/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// A non-numeric id is just another miss.
	w = doJSON(r, http.MethodGet, "/widgets/not-a-number", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResourceUpdate(t *testing.T) {
	r, db := setupWidgetAPI(t, nil)

	seed := widget{Name: "anvil", Color: "grey"}
	require.NoError(t, db.Create(&seed).Error)

	w := doJSON(r, http.MethodPut, fmt.Sprintf("/widgets/%d", seed.ID), gin.H{"name": "hammer"})
	assert.Equal(t, http.StatusAccepted, w.Code)

	var stored widget
	require.NoError(t, db.First(&stored, seed.ID).Error)
	assert.Equal(t, "hammer", stored.Name)
}

func TestResourceUpdateMissing(t *testing.T) {
	r, _ := setupWidgetAPI(t, nil)

	w := doJSON(r, http.MethodPut, "/widgets/42", gin.H{"name": "hammer"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResourceDelete(t *testing.T) {
	r, db := setupWidgetAPI(t, nil)

	seed := widget{Name: "anvil"}
	require.NoError(t, db.Create(&seed).Error)

	w := doJSON(r, http.MethodDelete, fmt.Sprintf("/widgets/%d", seed.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "{}", w.Body.String())

	var count int64
	require.NoError(t, db.Model(&widget{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestResourceListEnvelope(t *testing.T) {
	r, db := setupWidgetAPI(t, nil)

	for i := 0; i < 45; i++ {
		require.NoError(t, db.Create(&widget{Name: fmt.Sprintf("w%02d", i)}).Error)
	}

	w := doJSON(r, http.MethodGet, "/widgets?page=3&page_size=20", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Meta struct {
			Total    int64  `json:"total"`
			Pages    int    `json:"pages"`
			Quantity int    `json:"quantity"`
			Current  string `json:"current_time"`
		} `json:"meta"`
		Objects []widget `json:"objects"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, int64(45), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.Pages)
	assert.Equal(t, 20, resp.Meta.Quantity)
	assert.Len(t, resp.Objects, 5)
}

func TestResourceListPageClamped(t *testing.T) {
	r, db := setupWidgetAPI(t, nil)

	for i := 0; i < 5; i++ {
		require.NoError(t, db.Create(&widget{Name: fmt.Sprintf("w%d", i)}).Error)
	}

	// A page past the end still answers the last page, not an empty one.
	w := doJSON(r, http.MethodGet, "/widgets?page=99", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Objects []widget `json:"objects"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Objects, 5)
}

func TestResourceListBadPageParams(t *testing.T) {
	r, _ := setupWidgetAPI(t, nil)

	w := doJSON(r, http.MethodGet, "/widgets?page=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var fields map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fields))
	assert.Contains(t, fields, "page")
}

func TestResourceDisabledVerb(t *testing.T) {
	guardHit := false
	r, db := setupWidgetAPI(t, func(res *Resource[widget]) {
		res.Disabled = map[string]bool{VerbDelete: true}
		res.Guards = map[string][]gin.HandlerFunc{
			VerbDelete: {func(c *gin.Context) { guardHit = true }},
		}
	})

	seed := widget{Name: "anvil"}
	require.NoError(t, db.Create(&seed).Error)

	w := doJSON(r, http.MethodDelete, fmt.Sprintf("/widgets/%d", seed.ID), nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	// Disabled verbs answer before any guard runs.
	assert.False(t, guardHit)

	var count int64
	require.NoError(t, db.Model(&widget{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestResourceGuardOrdering(t *testing.T) {
	var order []string
	r, _ := setupWidgetAPI(t, func(res *Resource[widget]) {
		res.Guards = map[string][]gin.HandlerFunc{
			VerbGet: {
				func(c *gin.Context) { order = append(order, "first") },
				func(c *gin.Context) { order = append(order, "second") },
			},
		}
	})

	w := doJSON(r, http.MethodGet, "/widgets", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestResourceGuardAborts(t *testing.T) {
	r, _ := setupWidgetAPI(t, func(res *Resource[widget]) {
		res.Guards = map[string][]gin.HandlerFunc{
			VerbPost: {func(c *gin.Context) {
				c.AbortWithStatus(http.StatusUnauthorized)
			}},
		}
	})

	w := doJSON(r, http.MethodPost, "/widgets", gin.H{"name": "anvil"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestResourceOverride(t *testing.T) {
	r, _ := setupWidgetAPI(t, func(res *Resource[widget]) {
		res.Override = map[string]gin.HandlerFunc{
			OpList: func(c *gin.Context) {
				c.JSON(http.StatusTeapot, gin.H{})
			},
		}
	})

	w := doJSON(r, http.MethodGet, "/widgets", nil)
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestResourceListFilters(t *testing.T) {
	r, db := setupWidgetAPI(t, func(res *Resource[widget]) {
		res.Filters = func(c *gin.Context) (Filters, error) {
			f := Filters{}
			if v, ok := c.GetQuery("color"); ok {
				f["color"] = v
			}
			return f, nil
		}
	})

	require.NoError(t, db.Create(&widget{Name: "a", Color: "red"}).Error)
	require.NoError(t, db.Create(&widget{Name: "b", Color: "blue"}).Error)
	require.NoError(t, db.Create(&widget{Name: "c", Color: "red"}).Error)

	w := doJSON(r, http.MethodGet, "/widgets?color=red", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Meta struct {
			Total int64 `json:"total"`
		} `json:"meta"`
		Objects []widget `json:"objects"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Meta.Total)
	assert.Len(t, resp.Objects, 2)
}
