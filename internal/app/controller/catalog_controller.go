package controller

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sellaro/sellaro-backend/internal/app/model"
	"github.com/sellaro/sellaro-backend/internal/middleware"
	"github.com/sellaro/sellaro-backend/internal/rest"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CatalogController exposes the product catalogue kept in the document
// store. Browsing is public; writes are for admins.
type CatalogController struct {
	resource *rest.Resource[model.CatalogEntry]
}

type catalogEntryRequest struct {
	Name          string  `json:"name" binding:"required"`
	Description   string  `json:"description"`
	Price         float64 `json:"price" binding:"required,gt=0"`
	PriceOptionID uint    `json:"price_option_id" binding:"required"`
}

func NewCatalogController(coll *mongo.Collection) *CatalogController {
	ctrl := &CatalogController{}

	ctrl.resource = &rest.Resource[model.CatalogEntry]{
		Name:    "Product",
		Backend: rest.NewMongoBackend[model.CatalogEntry](coll),
		Bind:    ctrl.bind,
		Filters: ctrl.filters,
		Guards: map[string][]gin.HandlerFunc{
			rest.VerbPost:   {middleware.RequireRole(model.RoleAdmin)},
			rest.VerbPut:    {middleware.RequireRole(model.RoleAdmin)},
			rest.VerbDelete: {middleware.RequireRole(model.RoleAdmin)},
		},
	}
	return ctrl
}

// Mount registers the catalogue routes on the group.
func (ctrl *CatalogController) Mount(rg *gin.RouterGroup) {
	ctrl.resource.Mount(rg)
}

// bind validates the body and assigns the document id and timestamps.
// The id is assigned here rather than by the store so the 201 body
// carries it without a round trip.
func (ctrl *CatalogController) bind(c *gin.Context, entry *model.CatalogEntry) error {
	var req catalogEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return err
	}

	now := time.Now().UTC()
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
		entry.CreatedAt = now
	}
	entry.Name = req.Name
	entry.Description = req.Description
	entry.Price = req.Price
	entry.PriceOptionID = req.PriceOptionID
	entry.UpdatedAt = now
	return nil
}

// filters narrows the catalogue by price option. The value is stored
// numerically, so the query parameter is parsed before matching.
func (ctrl *CatalogController) filters(c *gin.Context) (rest.Filters, error) {
	filters := rest.Filters{}
	if v, ok := c.GetQuery("price_option_id"); ok {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, err
		}
		filters["price_option_id"] = uint(id)
	}
	return filters, nil
}
