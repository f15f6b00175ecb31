package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sellaro/sellaro-backend/internal/app/model"
	apperrors "github.com/sellaro/sellaro-backend/internal/errors"
	"github.com/sellaro/sellaro-backend/internal/middleware"
	"github.com/sellaro/sellaro-backend/internal/rest"
	"gorm.io/gorm"
)

// BankAccountController exposes a user's payout accounts. Every verb
// requires a login; reading someone else's account answers 401, not 404,
// matching the ownership check living above the fetch.
type BankAccountController struct {
	resource *rest.Resource[model.BankAccount]
}

type bankAccountRequest struct {
	BankName string `json:"bank_name" binding:"required"`
	IBAN     string `json:"iban" binding:"required"`
	SWIFT    string `json:"swift" binding:"required"`
}

func NewBankAccountController(db *gorm.DB) *BankAccountController {
	ctrl := &BankAccountController{}

	ctrl.resource = &rest.Resource[model.BankAccount]{
		Name:    "Bank account",
		Backend: rest.NewGormBackend[model.BankAccount](db),
		Bind:    ctrl.bind,
		Filters: ctrl.filters,
		Guards: map[string][]gin.HandlerFunc{
			rest.VerbGet:    {middleware.LoginRequired()},
			rest.VerbPost:   {middleware.LoginRequired()},
			rest.VerbPut:    {middleware.LoginRequired()},
			rest.VerbDelete: {middleware.LoginRequired()},
		},
		Override: map[string]gin.HandlerFunc{
			rest.OpRetrieve: ctrl.retrieve,
			rest.OpUpdate:   ctrl.update,
			rest.OpDelete:   ctrl.delete,
		},
	}
	return ctrl
}

// Mount registers the bank account routes on the group.
func (ctrl *BankAccountController) Mount(rg *gin.RouterGroup) {
	ctrl.resource.Mount(rg)
}

// bind validates the body and pins the account to the caller.
func (ctrl *BankAccountController) bind(c *gin.Context, account *model.BankAccount) error {
	rc := middleware.GetRequestContext(c)

	var req bankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return err
	}

	account.BankName = req.BankName
	account.IBAN = req.IBAN
	account.SWIFT = req.SWIFT
	if account.UserID == 0 {
		account.UserID = rc.User.ID
	}
	return nil
}

// filters scopes lists to the caller's own accounts unless superuser.
func (ctrl *BankAccountController) filters(c *gin.Context) (rest.Filters, error) {
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
	return rest.Filters{"user_id": rc.User.ID}, nil
}

// fetchOwned loads the account and enforces ownership. Non-owners get
// 401 so the account id space stays opaque to other users.
func (ctrl *BankAccountController) fetchOwned(c *gin.Context) (*model.BankAccount, bool) {
	rc := middleware.GetRequestContext(c)
	log := middleware.GetLoggerFromContext(c)

	account, err := ctrl.resource.Backend.FetchOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, rest.ErrNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Bank account not found")
			return nil, false
		}
		log.Error("Failed to fetch bank account", err, map[string]interface{}{
			"id": c.Param("id"),
		})
		apperrors.InternalError(c, "")
		return nil, false
	}

	if !account.CheckOwner(rc.User) && !rc.IsSuperuser() {
		log.Warn("Bank account access by non-owner", map[string]interface{}{
			"account_id": account.ID,
			"user_id":    rc.User.ID,
		})
		apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthNotOwner, "Not the owner of this bank account")
		return nil, false
	}
	return account, true
}

func (ctrl *BankAccountController) retrieve(c *gin.Context) {
	account, ok := ctrl.fetchOwned(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, account)
}

func (ctrl *BankAccountController) update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	account, ok := ctrl.fetchOwned(c)
	if !ok {
		return
	}

	if err := ctrl.bind(c, account); err != nil {
		apperrors.BadRequestFields(c, apperrors.FieldsFromBinding(err))
		return
	}

	if err := ctrl.resource.Backend.Update(c.Request.Context(), c.Param("id"), account); err != nil {
		log.Error("Failed to update bank account", err, map[string]interface{}{
			"account_id": account.ID,
		})
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusAccepted, account)
}

func (ctrl *BankAccountController) delete(c *gin.Context) {
	account, ok := ctrl.fetchOwned(c)
	if !ok {
		return
	}

	if err := ctrl.resource.Backend.Delete(c.Request.Context(), c.Param("id")); err != nil {
		apperrors.BadRequestFields(c, apperrors.Fields{"_delete": "Could not delete this object"})
		return
	}

	middleware.GetLoggerFromContext(c).Info("Bank account deleted", map[string]interface{}{
		"account_id": account.ID,
	})
	c.JSON(http.StatusOK, gin.H{})
}
