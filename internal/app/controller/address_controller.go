package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sellaro/sellaro-backend/internal/app/model"
	"github.com/sellaro/sellaro-backend/internal/app/repository"
	apperrors "github.com/sellaro/sellaro-backend/internal/errors"
	"github.com/sellaro/sellaro-backend/internal/middleware"
	"github.com/sellaro/sellaro-backend/internal/rest"
	"gorm.io/gorm"
)

// AddressController exposes customer addresses. Creation resolves the
// owning customer from the session and files the address into the
// customer's billing or delivery slot.
type AddressController struct {
	resource     *rest.Resource[model.Address]
	customerRepo repository.CustomerRepository
}

type addressCreateRequest struct {
	Type       string `json:"type" binding:"required,oneof=billing delivery"`
	CustomerID *uint  `json:"customer_id"`
	CountryID  *uint  `json:"country_id"`
	City       string `json:"city" binding:"required"`
	Street     string `json:"street" binding:"required"`
	Apartment  string `json:"apartment"`
	ZipCode    string `json:"zip_code"`
}

type addressUpdateRequest struct {
	Type      string `json:"type" binding:"omitempty,oneof=billing delivery"`
	CountryID *uint  `json:"country_id"`
	City      string `json:"city"`
	Street    string `json:"street"`
	Apartment string `json:"apartment"`
	ZipCode   string `json:"zip_code"`
}

func NewAddressController(db *gorm.DB, customerRepo repository.CustomerRepository) *AddressController {
	ctrl := &AddressController{customerRepo: customerRepo}

	ctrl.resource = &rest.Resource[model.Address]{
		Name:    "Address",
		Backend: rest.NewGormBackend[model.Address](db),
		Bind:    ctrl.bindUpdate,
		Filters: ctrl.filters,
		Guards: map[string][]gin.HandlerFunc{
			rest.VerbPut:    {middleware.LoginRequired()},
			rest.VerbDelete: {middleware.LoginRequired()},
		},
		Override: map[string]gin.HandlerFunc{
			rest.OpCreate:   ctrl.create,
			rest.OpRetrieve: ctrl.retrieve,
			rest.OpDelete:   ctrl.delete,
		},
	}
	return ctrl
}

// Mount registers the address routes on the group.
func (ctrl *AddressController) Mount(rg *gin.RouterGroup) {
	ctrl.resource.Mount(rg)
}

// ownedCustomerID resolves which customer the caller acts for: the user's
// own customer when logged in, the session customer otherwise.
func ownedCustomerID(rc *middleware.RequestContext) *uint {
	if rc == nil {
		return nil
	}
	if rc.User != nil && rc.User.Customer != nil {
		return &rc.User.Customer.ID
	}
	return rc.Session.CustomerID
}

// filters scopes lists to the caller's own customer. Superusers may
// browse everything and narrow by customer_id.
func (ctrl *AddressController) filters(c *gin.Context) (rest.Filters, error) {
	rc := middleware.GetRequestContext(c)

	if rc.IsSuperuser() {
		filters := rest.Filters{}
		if v, ok := c.GetQuery("customer_id"); ok {
			id, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return nil, err
			}
			filters["customer_id"] = uint(id)
		}
		return filters, nil
	}

	owned := ownedCustomerID(rc)
	if owned == nil {
		// No customer context yet means no addresses either.
		return rest.Filters{"customer_id": 0}, nil
	}
	return rest.Filters{"customer_id": *owned}, nil
}

// create answers POST: resolve the customer, persist the address and file
// it into the requested slot.
func (ctrl *AddressController) create(c *gin.Context) {
	rc := middleware.GetRequestContext(c)
	log := middleware.GetLoggerFromContext(c)

	var req addressCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequestFields(c, apperrors.FieldsFromBinding(err))
		return
	}

	customer, ok := ctrl.resolveCustomer(c, rc, req.CustomerID)
	if !ok {
		return
	}

	address := &model.Address{
		CustomerID: customer.ID,
		Type:       req.Type,
		CountryID:  req.CountryID,
		City:       req.City,
		Street:     req.Street,
		Apartment:  req.Apartment,
		ZipCode:    req.ZipCode,
	}
	if err := ctrl.resource.Backend.Create(c.Request.Context(), address); err != nil {
		log.Error("Failed to create address", err, map[string]interface{}{
			"customer_id": customer.ID,
		})
		apperrors.InternalError(c, "")
		return
	}

	customer.SetAddress(req.Type, address)
	if err := ctrl.customerRepo.Update(customer); err != nil {
		log.Error("Failed to attach address to customer", err, map[string]interface{}{
			"customer_id": customer.ID,
			"address_id":  address.ID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusCreated, address)
}

// retrieve answers GET /:id with an ownership check.
func (ctrl *AddressController) retrieve(c *gin.Context) {
	rc := middleware.GetRequestContext(c)

	address, err := ctrl.resource.Backend.FetchOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, rest.ErrNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Address not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	if !rc.IsSuperuser() {
		owned := ownedCustomerID(rc)
		if owned == nil || *owned != address.CustomerID {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Address not found")
			return
		}
	}

	c.JSON(http.StatusOK, address)
}

// delete answers DELETE /:id; only the owning customer or a superuser may
// remove an address.
func (ctrl *AddressController) delete(c *gin.Context) {
	rc := middleware.GetRequestContext(c)
	log := middleware.GetLoggerFromContext(c)

	address, err := ctrl.resource.Backend.FetchOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, rest.ErrNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Address not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	if !rc.IsSuperuser() {
		owned := ownedCustomerID(rc)
		if owned == nil || *owned != address.CustomerID {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Address not found")
			return
		}
	}

	if err := ctrl.resource.Backend.Delete(c.Request.Context(), c.Param("id")); err != nil {
		log.Error("Failed to delete address", err, map[string]interface{}{
			"address_id": address.ID,
		})
		apperrors.BadRequestFields(c, apperrors.Fields{"_delete": "Could not delete this object"})
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

func (ctrl *AddressController) bindUpdate(c *gin.Context, address *model.Address) error {
	rc := middleware.GetRequestContext(c)

	var req addressUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return err
	}

	if !rc.IsSuperuser() {
		owned := ownedCustomerID(rc)
		if owned == nil || *owned != address.CustomerID {
			// Surfaces as a field error rather than leaking existence.
			return errors.New("address does not belong to this customer")
		}
	}

	if req.Type != "" {
		address.Type = req.Type
	}
	if req.CountryID != nil {
		address.CountryID = req.CountryID
	}
	if req.City != "" {
		address.City = req.City
	}
	if req.Street != "" {
		address.Street = req.Street
	}
	if req.Apartment != "" {
		address.Apartment = req.Apartment
	}
	if req.ZipCode != "" {
		address.ZipCode = req.ZipCode
	}
	return nil
}

// resolveCustomer picks the customer a new address belongs to. Superusers
// may name any customer; a logged-in user acts for their own customer; an
// anonymous caller may carry the customer in the session or name it in the
// body. A missing context is a validation error, an unresolvable explicit
// id is 404.
func (ctrl *AddressController) resolveCustomer(c *gin.Context, rc *middleware.RequestContext, explicit *uint) (*model.Customer, bool) {
	log := middleware.GetLoggerFromContext(c)

	id := ownedCustomerID(rc)
	if explicit != nil && (rc.IsSuperuser() || (rc.IsAnonymous() && id == nil)) {
		id = explicit
	}
	if id == nil {
		apperrors.BadRequestFields(c, apperrors.Fields{
			"customer_id": "No customer is associated with this session",
		})
		return nil, false
	}

	customer, err := ctrl.customerRepo.FindByID(*id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Customer not found")
			return nil, false
		}
		log.Error("Failed to resolve customer", err, map[string]interface{}{
			"customer_id": *id,
		})
		apperrors.InternalError(c, "")
		return nil, false
	}
	return customer, true
}
