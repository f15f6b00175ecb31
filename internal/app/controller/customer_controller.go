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
	"github.com/sellaro/sellaro-backend/internal/session"
	"gorm.io/gorm"
)

// CustomerController exposes customer records. POST upserts the caller's
// own customer so anonymous visitors can start checkout before signing
// up; the created record is pinned to the session.
type CustomerController struct {
	resource     *rest.Resource[model.Customer]
	customerRepo repository.CustomerRepository
	store        session.Store
}

type customerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone"`
	Notes     string `json:"notes"`
	Fax       string `json:"fax"`
	Company   string `json:"company"`
	Gender    string `json:"gender"`
}

func NewCustomerController(db *gorm.DB, customerRepo repository.CustomerRepository, store session.Store) *CustomerController {
	ctrl := &CustomerController{
		customerRepo: customerRepo,
		store:        store,
	}

	ctrl.resource = &rest.Resource[model.Customer]{
		Name:    "Customer",
		Backend: rest.NewGormBackend[model.Customer](db),
		Filters: ctrl.filters,
		Guards: map[string][]gin.HandlerFunc{
			rest.VerbPut:    {middleware.LoginRequired()},
			rest.VerbDelete: {middleware.RequireRole(model.RoleAdmin)},
		},
		Override: map[string]gin.HandlerFunc{
			rest.OpCreate:   ctrl.upsert,
			rest.OpRetrieve: ctrl.retrieve,
			rest.OpUpdate:   ctrl.update,
		},
	}
	return ctrl
}

// Mount registers the customer routes on the group.
func (ctrl *CustomerController) Mount(rg *gin.RouterGroup) {
	ctrl.resource.Mount(rg)
}

func (ctrl *CustomerController) filters(c *gin.Context) (rest.Filters, error) {
	rc := middleware.GetRequestContext(c)

	if rc.IsSuperuser() {
		filters := rest.Filters{}
		if v, ok := c.GetQuery("user_id"); ok {
			id, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return nil, err
			}
			filters["user_id"] = uint(id)
		}
		return filters, nil
	}

	owned := ownedCustomerID(rc)
	if owned == nil {
		return rest.Filters{"id": 0}, nil
	}
	return rest.Filters{"id": *owned}, nil
}

func (req *customerRequest) apply(customer *model.Customer) {
	if req.FirstName != "" {
		customer.FirstName = req.FirstName
	}
	if req.LastName != "" {
		customer.LastName = req.LastName
	}
	if req.Email != "" {
		customer.Email = req.Email
	}
	if req.Phone != "" {
		customer.Phone = req.Phone
	}
	if req.Notes != "" {
		customer.Notes = req.Notes
	}
	if req.Fax != "" {
		customer.Fax = req.Fax
	}
	if req.Company != "" {
		customer.Company = req.Company
	}
	if req.Gender != "" {
		customer.Gender = req.Gender
	}
}

// upsert answers POST: update the session's customer if one exists,
// otherwise create one and pin it to the session. Either way 201.
func (ctrl *CustomerController) upsert(c *gin.Context) {
	rc := middleware.GetRequestContext(c)
	log := middleware.GetLoggerFromContext(c)

	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequestFields(c, apperrors.FieldsFromBinding(err))
		return
	}

	customer, err := ctrl.currentCustomer(rc)
	if err != nil {
		log.Error("Failed to resolve session customer", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	if customer == nil {
		customer = &model.Customer{}
		if rc.User != nil {
			customer.UserID = &rc.User.ID
			customer.Email = rc.User.Email
		}
		req.apply(customer)
		if err := ctrl.customerRepo.Create(customer); err != nil {
			apperrors.InternalError(c, "")
			return
		}

		rc.Session.CustomerID = &customer.ID
		if err := ctrl.store.Save(c.Request.Context(), rc.Session); err != nil {
			log.Error("Failed to persist session", err, nil)
			apperrors.InternalError(c, "")
			return
		}
	} else {
		req.apply(customer)
		if err := ctrl.customerRepo.Update(customer); err != nil {
			apperrors.InternalError(c, "")
			return
		}
	}

	c.JSON(http.StatusCreated, customer)
}

func (ctrl *CustomerController) currentCustomer(rc *middleware.RequestContext) (*model.Customer, error) {
	id := ownedCustomerID(rc)
	if id == nil {
		return nil, nil
	}
	customer, err := ctrl.customerRepo.FindByID(*id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return customer, nil
}

// fetchScoped loads a customer visible to the caller; anyone else's
// record reads as missing.
func (ctrl *CustomerController) fetchScoped(c *gin.Context) (*model.Customer, bool) {
	rc := middleware.GetRequestContext(c)

	customer, err := ctrl.resource.Backend.FetchOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, rest.ErrNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Customer not found")
			return nil, false
		}
		apperrors.InternalError(c, "")
		return nil, false
	}

	if !rc.IsSuperuser() {
		owned := ownedCustomerID(rc)
		if owned == nil || *owned != customer.ID {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Customer not found")
			return nil, false
		}
	}
	return customer, true
}

func (ctrl *CustomerController) retrieve(c *gin.Context) {
	customer, ok := ctrl.fetchScoped(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (ctrl *CustomerController) update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	customer, ok := ctrl.fetchScoped(c)
	if !ok {
		return
	}

	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequestFields(c, apperrors.FieldsFromBinding(err))
		return
	}
	req.apply(customer)

	if err := ctrl.customerRepo.Update(customer); err != nil {
		log.Error("Failed to update customer", err, map[string]interface{}{
			"customer_id": customer.ID,
		})
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusAccepted, customer)
}
