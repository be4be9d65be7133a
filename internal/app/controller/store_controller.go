package controller

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storerating-backend/internal/app/repository"
	"github.com/ikkim/storerating-backend/internal/app/service"
	apperrors "github.com/ikkim/storerating-backend/internal/errors"
	"github.com/ikkim/storerating-backend/internal/middleware"
	"github.com/ikkim/storerating-backend/internal/report"
)

type StoreController struct {
	storeService service.StoreService
}

func NewStoreController(storeService service.StoreService) *StoreController {
	return &StoreController{
		storeService: storeService,
	}
}

type CreateStoreRequest struct {
	Name    string `json:"name" binding:"required,max=255"`
	Email   string `json:"email" binding:"required,email"`
	Address string `json:"address" binding:"required,max=400"`
	OwnerID *uint  `json:"owner_id"`
}

var storeMessages = map[string]string{
	"address": "Address is required and must be less than 400 characters",
	"email":   "Valid email is required",
}

func storeFilterFromQuery(c *gin.Context) repository.StoreFilter {
	filter := repository.StoreFilter{
		Name:    c.Query("name"),
		Address: c.Query("address"),
		SortBy:  c.Query("sortBy"),
		Order:   c.Query("order"),
	}
	if userID, ok := middleware.GetUserID(c); ok {
		filter.ViewerID = userID
	}
	return filter
}

// ListStores returns stores with their aggregates. Authenticated callers also get their own rating.
// GET /api/stores?name&address&sortBy&order
func (ctrl *StoreController) ListStores(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	stores, err := ctrl.storeService.ListStores(c.Request.Context(), storeFilterFromQuery(c))
	if err != nil {
		log.Error("Failed to list stores", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "stores")
		return
	}

	c.JSON(http.StatusOK, stores)
}

// ListMyStores returns the stores owned by the caller
// GET /api/stores/mine
func (ctrl *StoreController) ListMyStores(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	stores, err := ctrl.storeService.ListOwnerStores(c.Request.Context(), userID, storeFilterFromQuery(c))
	if err != nil {
		log.Error("Failed to list owner stores", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "stores")
		return
	}

	c.JSON(http.StatusOK, stores)
}

// ExportStores streams the store listing as an XLSX workbook (admin)
// GET /api/stores/export
func (ctrl *StoreController) ExportStores(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	filter := storeFilterFromQuery(c)
	filter.ViewerID = 0
	stores, err := ctrl.storeService.ListStores(c.Request.Context(), filter)
	if err != nil {
		log.Error("Failed to list stores for export", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "stores")
		return
	}

	data, err := report.StoresWorkbook(stores)
	if err != nil {
		log.Error("Failed to render stores workbook", err, map[string]interface{}{
			"stores": len(stores),
		})
		apperrors.InternalError(c, "")
		return
	}

	filename := fmt.Sprintf("stores-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, report.ContentType, data)
}

// CreateStore registers a store (admin)
// POST /api/stores
func (ctrl *StoreController) CreateStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateStoreRequest
	if !bindJSON(c, &req, storeMessages) {
		return
	}

	store, err := ctrl.storeService.CreateStore(c.Request.Context(), service.CreateStoreInput{
		Name:    req.Name,
		Email:   req.Email,
		Address: req.Address,
		OwnerID: req.OwnerID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStoreAlreadyExists):
			apperrors.BadRequest(c, apperrors.StoreAlreadyExists, "Store already exists")
		case errors.Is(err, service.ErrOwnerNotFound):
			apperrors.BadRequest(c, apperrors.StoreOwnerNotFound, "Owner not found")
		case errors.Is(err, service.ErrOwnerNotStoreOwner):
			apperrors.BadRequest(c, apperrors.StoreOwnerInvalid, "Owner must have the store_owner role")
		default:
			log.Error("Failed to create store", err, map[string]interface{}{
				"email": req.Email,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "stores")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Store created",
		"id":      store.ID,
	})
}

// GetStore returns one store with its aggregates
// GET /api/stores/:id
func (ctrl *StoreController) GetStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	viewerID, _ := middleware.GetUserID(c)

	store, err := ctrl.storeService.GetStore(c.Request.Context(), id, viewerID)
	if err != nil {
		if errors.Is(err, service.ErrStoreNotFound) {
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found")
			return
		}
		log.Error("Failed to get store", err, map[string]interface{}{
			"store_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "stores")
		return
	}

	c.JSON(http.StatusOK, store)
}
