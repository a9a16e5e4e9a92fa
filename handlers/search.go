package handlers

import (
	"context"
	"errors"
	"net/http"

	orderRepo "linguahub/database/repository/order"
	"linguahub/services/tasks"
	"linguahub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SearchEnqueuer queues search runs.
type SearchEnqueuer interface {
	Enqueue(ctx context.Context, payload tasks.SearchRunPayload) (bool, error)
}

// SearchHandler lets operators inspect and restart searches.
type SearchHandler struct {
	Orders orderRepo.OrderRepository
	Queue  SearchEnqueuer
	Logger *zap.Logger
}

func NewSearchHandler(orders orderRepo.OrderRepository, queue SearchEnqueuer, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{Orders: orders, Queue: queue, Logger: logger}
}

type runSearchRequest struct {
	Silent             bool `json:"silent"`
	IgnoreAvailability bool `json:"ignoreAvailability"`
}

// RunOrderSearchHandler queues a manual search for one order.
func (h *SearchHandler) RunOrderSearchHandler(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.Orders.GetByID(c.Request.Context(), id); err != nil {
		h.lookupFailed(c, err)
		return
	}
	h.enqueue(c, tasks.SearchRunPayload{OrderID: id})
}

// RunGroupSearchHandler queues a manual search for an order group.
func (h *SearchHandler) RunGroupSearchHandler(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.Orders.GetGroupByID(c.Request.Context(), id); err != nil {
		h.lookupFailed(c, err)
		return
	}
	h.enqueue(c, tasks.SearchRunPayload{OrderGroupID: id})
}

// GetOrderSearchHandler returns the persisted search state of an order.
func (h *SearchHandler) GetOrderSearchHandler(c *gin.Context) {
	order, err := h.Orders.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.lookupFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, order.Search)
}

// GetGroupSearchHandler returns the persisted search state of an order group.
func (h *SearchHandler) GetGroupSearchHandler(c *gin.Context) {
	group, err := h.Orders.GetGroupByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.lookupFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, group.Search)
}

func (h *SearchHandler) enqueue(c *gin.Context, payload tasks.SearchRunPayload) {
	var req runSearchRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}
	}
	payload.Silent = req.Silent
	payload.IgnoreAvailability = req.IgnoreAvailability
	payload.Manual = true

	queued, err := h.Queue.Enqueue(c.Request.Context(), payload)
	if err != nil {
		h.Logger.Error("Failed to queue manual search",
			zap.String("orderId", payload.OrderID), zap.String("orderGroupId", payload.OrderGroupID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to queue search", "")
		return
	}

	h.Logger.Info("Manual search requested",
		zap.String("operatorId", c.GetString("operatorID")),
		zap.String("orderId", payload.OrderID),
		zap.String("orderGroupId", payload.OrderGroupID),
		zap.Bool("queued", queued))
	c.JSON(http.StatusAccepted, gin.H{"queued": queued})
}

func (h *SearchHandler) lookupFailed(c *gin.Context, err error) {
	if errors.Is(err, orderRepo.ErrOrderNotFound) || errors.Is(err, orderRepo.ErrGroupNotFound) {
		utils.JSONError(c, http.StatusNotFound, "Order not found", err.Error())
		return
	}
	h.Logger.Error("Failed to load order", zap.Error(err))
	utils.JSONError(c, http.StatusInternalServerError, "Failed to load order", "")
}
