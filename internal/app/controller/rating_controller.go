package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/ikkim/storerating-backend/internal/app/service"
	apperrors "github.com/ikkim/storerating-backend/internal/errors"
	"github.com/ikkim/storerating-backend/internal/middleware"
	"github.com/ikkim/storerating-backend/internal/websocket"
)

type RatingController struct {
	ratingService service.RatingService
	storeService  service.StoreService
	hub           *websocket.Hub
	upgrader      *gorillaws.Upgrader
}

// NewRatingController wires the rating endpoints. hub may be nil, which
// disables the live feed.
func NewRatingController(
	ratingService service.RatingService,
	storeService service.StoreService,
	hub *websocket.Hub,
	allowedOrigins []string,
) *RatingController {
	return &RatingController{
		ratingService: ratingService,
		storeService:  storeService,
		hub:           hub,
		upgrader:      websocket.NewUpgrader(allowedOrigins),
	}
}

type SubmitRatingRequest struct {
	StoreID uint    `json:"store_id"`
	Rating  int     `json:"rating"`
	Comment *string `json:"comment"`
}

// SubmitRating creates or replaces the caller's rating for a store
// POST /api/ratings
func (ctrl *RatingController) SubmitRating(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req SubmitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.RatingInvalid, "Store ID and rating (1-5) are required")
		return
	}

	_, created, err := ctrl.ratingService.SubmitRating(c.Request.Context(), userID, req.StoreID, req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRating):
			apperrors.BadRequest(c, apperrors.RatingInvalid, "Store ID and rating (1-5) are required")
		case errors.Is(err, service.ErrCommentTooLong):
			apperrors.BadRequest(c, apperrors.RatingInvalid, "Comment must be at most 1000 characters")
		case errors.Is(err, service.ErrStoreNotFound):
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found")
		default:
			log.Error("Failed to submit rating", err, map[string]interface{}{
				"user_id":  userID,
				"store_id": req.StoreID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "ratings")
		}
		return
	}

	if created {
		c.JSON(http.StatusCreated, gin.H{"message": "Rating submitted"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rating updated"})
}

// GetUserRating returns the caller's rating for a store, or nulls
// GET /api/ratings/user/:storeId
func (ctrl *RatingController) GetUserRating(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}
	storeID, ok := parseID(c, "storeId")
	if !ok {
		return
	}

	rating, err := ctrl.ratingService.GetUserRating(c.Request.Context(), userID, storeID)
	if err != nil {
		log.Error("Failed to get user rating", err, map[string]interface{}{
			"user_id":  userID,
			"store_id": storeID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "ratings")
		return
	}

	if rating == nil {
		c.JSON(http.StatusOK, gin.H{"rating": nil, "comment": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rating": rating.Rating, "comment": rating.Comment})
}

// ListStoreRatings lists every rating of a store to its owner
// GET /api/ratings/store/:storeId
func (ctrl *RatingController) ListStoreRatings(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}
	storeID, ok := parseID(c, "storeId")
	if !ok {
		return
	}

	ratings, err := ctrl.ratingService.ListStoreRatings(c.Request.Context(), userID, storeID)
	if err != nil {
		if ctrl.respondOwnershipError(c, err) {
			return
		}
		log.Error("Failed to list store ratings", err, map[string]interface{}{
			"store_id": storeID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "ratings")
		return
	}

	c.JSON(http.StatusOK, ratings)
}

// StreamStoreRatings upgrades to a websocket that receives the store's rating events
// GET /api/ratings/store/:storeId/ws
func (ctrl *RatingController) StreamStoreRatings(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if ctrl.hub == nil {
		apperrors.NotFound(c, apperrors.ResourceNotFound, "Live updates are disabled")
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}
	storeID, ok := parseID(c, "storeId")
	if !ok {
		return
	}

	if err := ctrl.storeService.EnsureOwner(c.Request.Context(), storeID, userID); err != nil {
		if ctrl.respondOwnershipError(c, err) {
			return
		}
		log.Error("Failed to check store ownership", err, map[string]interface{}{
			"store_id": storeID,
		})
		apperrors.InternalError(c, "")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("WebSocket upgrade failed", map[string]interface{}{
			"store_id": storeID,
			"error":    err.Error(),
		})
		return
	}

	ctrl.hub.Attach(&websocket.Conn{Conn: conn}, storeID, userID)
	log.Info("Rating feed subscriber connected", map[string]interface{}{
		"store_id": storeID,
		"user_id":  userID,
	})
}

// respondOwnershipError answers 403 for both a missing store and a store owned
// by someone else, so owner-only routes do not reveal which store ids exist.
func (ctrl *RatingController) respondOwnershipError(c *gin.Context, err error) bool {
	if errors.Is(err, service.ErrStoreNotFound) || errors.Is(err, service.ErrNotStoreOwner) {
		apperrors.Forbidden(c, apperrors.AuthzOwnerOnly, "Access denied")
		return true
	}
	return false
}
