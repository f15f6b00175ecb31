package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/sellaro/sellaro-backend/internal/errors"
	"github.com/sellaro/sellaro-backend/pkg/logger"
)

// Guard chain keys, one per HTTP verb. GET covers both list and retrieve,
// matching how per-verb authorization is declared.
const (
	VerbGet    = "get"
	VerbPost   = "post"
	VerbPut    = "put"
	VerbDelete = "delete"
)

// Override keys for replacing a single default handler.
const (
	OpList     = "list"
	OpRetrieve = "get"
	OpCreate   = "post"
	OpUpdate   = "put"
	OpDelete   = "delete"
)

// Resource maps HTTP verbs onto a Backend. Guards are ordered middleware
// chains keyed by verb and applied by explicit composition when the
// resource is mounted; Override swaps out a default handler; Disabled
// verbs answer 405 unconditionally.
type Resource[T any] struct {
	Name    string
	Backend Backend[T]

	// Bind validates the request body and applies it onto obj. For POST
	// obj is a fresh object, for PUT it is the fetched instance. A
	// returned error is translated into the field-error envelope.
	Bind func(c *gin.Context, obj *T) error

	// Filters extracts declared equality filters from validated query
	// parameters. Nil means the resource accepts no filters.
	Filters func(c *gin.Context) (Filters, error)

	// Serialize converts a persisted object into its public mapping.
	// Nil falls back to encoding the object as-is.
	Serialize func(c *gin.Context, obj *T) any

	Guards   map[string][]gin.HandlerFunc
	Override map[string]gin.HandlerFunc
	Disabled map[string]bool
}

// Mount registers the verb handlers on the group, composing each verb's
// guard chain in declaration order ahead of the handler.
func (r *Resource[T]) Mount(rg *gin.RouterGroup) {
	rg.GET("", r.chain(VerbGet, OpList, r.List)...)
	rg.GET("/:id", r.chain(VerbGet, OpRetrieve, r.Retrieve)...)
	rg.POST("", r.chain(VerbPost, OpCreate, r.Create)...)
	rg.PUT("/:id", r.chain(VerbPut, OpUpdate, r.Update)...)
	rg.DELETE("/:id", r.chain(VerbDelete, OpDelete, r.Delete)...)
}

func (r *Resource[T]) chain(verb, op string, fallback gin.HandlerFunc) []gin.HandlerFunc {
	if r.Disabled[verb] {
		// Statically forbidden regardless of the caller.
		return []gin.HandlerFunc{func(c *gin.Context) {
			apperrors.MethodNotAllowed(c, "")
		}}
	}

	handler := fallback
	if h, ok := r.Override[op]; ok {
		handler = h
	}

	out := append([]gin.HandlerFunc{}, r.Guards[verb]...)
	return append(out, handler)
}

// List answers a collection GET with the pagination envelope.
func (r *Resource[T]) List(c *gin.Context) {
	var page PageParams
	if err := c.ShouldBindQuery(&page); err != nil {
		apperrors.BadRequestFields(c, apperrors.FieldsFromBinding(err))
		return
	}

	filters := Filters{}
	if r.Filters != nil {
		f, err := r.Filters(c)
		if err != nil {
			apperrors.BadRequestFields(c, apperrors.FieldsFromBinding(err))
			return
		}
		filters = f
	}

	items, total, err := r.Backend.FetchMany(c.Request.Context(), filters, page)
	if err != nil {
		logger.Error("Failed to list objects", err, map[string]interface{}{
			"resource": r.Name,
		})
		apperrors.InternalError(c, "")
		return
	}

	objects := make([]any, 0, len(items))
	for i := range items {
		objects = append(objects, r.serialize(c, &items[i]))
	}

	c.JSON(http.StatusOK, NewListResponse(objects, ComputePaging(total, page)))
}

// Retrieve answers a single-object GET, fetch-or-404.
func (r *Resource[T]) Retrieve(c *gin.Context) {
	obj, err := r.Backend.FetchOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		r.respondFetchError(c, err)
		return
	}
	c.JSON(http.StatusOK, r.serialize(c, obj))
}

// Create answers POST: validate, persist, 201 with the serialized object.
func (r *Resource[T]) Create(c *gin.Context) {
	obj := new(T)
	if err := r.bind(c, obj); err != nil {
		apperrors.BadRequestFields(c, apperrors.FieldsFromBinding(err))
		return
	}

	if err := r.Backend.Create(c.Request.Context(), obj); err != nil {
		if errors.Is(err, ErrInvalidDocument) {
			apperrors.BadRequestFields(c, apperrors.Fields{"_document": err.Error()})
			return
		}
		logger.Error("Failed to create object", err, map[string]interface{}{
			"resource": r.Name,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusCreated, r.serialize(c, obj))
}

// Update answers PUT: fetch-or-404, validate, apply, 202.
func (r *Resource[T]) Update(c *gin.Context) {
	id := c.Param("id")

	obj, err := r.Backend.FetchOne(c.Request.Context(), id)
	if err != nil {
		r.respondFetchError(c, err)
		return
	}

	if err := r.bind(c, obj); err != nil {
		apperrors.BadRequestFields(c, apperrors.FieldsFromBinding(err))
		return
	}

	if err := r.Backend.Update(c.Request.Context(), id, obj); err != nil {
		if errors.Is(err, ErrInvalidDocument) {
			apperrors.BadRequestFields(c, apperrors.Fields{"_document": err.Error()})
			return
		}
		logger.Error("Failed to update object", err, map[string]interface{}{
			"resource": r.Name,
			"id":       id,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusAccepted, r.serialize(c, obj))
}

// Delete answers DELETE: fetch-or-404, remove, 200 with an empty body.
// A failure during removal surfaces as 400 with a field error.
func (r *Resource[T]) Delete(c *gin.Context) {
	id := c.Param("id")

	if _, err := r.Backend.FetchOne(c.Request.Context(), id); err != nil {
		r.respondFetchError(c, err)
		return
	}

	if err := r.Backend.Delete(c.Request.Context(), id); err != nil {
		logger.Error("Failed to delete object", err, map[string]interface{}{
			"resource": r.Name,
			"id":       id,
		})
		apperrors.BadRequestFields(c, apperrors.Fields{"_delete": "Could not delete this object"})
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

func (r *Resource[T]) bind(c *gin.Context, obj *T) error {
	if r.Bind != nil {
		return r.Bind(c, obj)
	}
	return c.ShouldBindJSON(obj)
}

func (r *Resource[T]) serialize(c *gin.Context, obj *T) any {
	if r.Serialize != nil {
		return r.Serialize(c, obj)
	}
	return obj
}

func (r *Resource[T]) respondFetchError(c *gin.Context, err error) {
	if errors.Is(err, ErrNotFound) {
		apperrors.NotFound(c, apperrors.ResourceNotFound, r.Name+" not found")
		return
	}
	logger.Error("Failed to fetch object", err, map[string]interface{}{
		"resource": r.Name,
		"id":       c.Param("id"),
	})
	apperrors.InternalError(c, "")
}
