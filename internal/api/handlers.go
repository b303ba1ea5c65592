package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"hyderabadinfra/server/internal/history"
	"hyderabadinfra/server/internal/models"
	"hyderabadinfra/server/internal/property"
	"hyderabadinfra/server/internal/search"
)

type Handler struct {
	commands *property.CommandHandler
	queries  *history.QueryHandler
	engine   *search.Engine
	logger   *logrus.Logger
}

type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func NewHandler(commands *property.CommandHandler, queries *history.QueryHandler, engine *search.Engine, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Handler{
		commands: commands,
		queries:  queries,
		engine:   engine,
		logger:   logger,
	}
}

// actingUser extracts the authenticated user id forwarded by the gateway.
func actingUser(c *gin.Context) string {
	return c.GetHeader("X-User-Id")
}

func limitParam(c *gin.Context, fallback int) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(fallback)))
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}

func (h *Handler) CreateProperty(c *gin.Context) {
	var cmd property.CreatePropertyCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.logger.WithError(err).Error("Failed to parse create property request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}
	cmd.OwnerID = actingUser(c)

	created, err := h.commands.CreateProperty(cmd)
	if err != nil {
		if errors.Is(err, models.ErrInvalidArgument) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("Failed to create property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create property"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *Handler) RecordView(c *gin.Context) {
	h.commands.RecordView(c.Param("id"), actingUser(c))
	c.JSON(http.StatusAccepted, gin.H{"status": "view recorded"})
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse status request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	updated, err := h.commands.UpdateStatus(c.Param("id"), req.Status, actingUser(c))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidArgument):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, property.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		case errors.Is(err, property.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "You can only update your own properties"})
		default:
			h.logger.WithError(err).Error("Failed to update property status")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update property status"})
		}
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *Handler) GetHistory(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		page = 0
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil || size <= 0 {
		size = 10
	}

	response, err := h.queries.GetHistory(c.Param("userId"), page, size)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get user history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user history"})
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) GetRecentActivities(c *gin.Context) {
	activities, err := h.queries.GetRecent(c.Param("userId"), limitParam(c, 20))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get recent activities")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get recent activities"})
		return
	}

	c.JSON(http.StatusOK, activities)
}

func (h *Handler) GetActivitiesByType(c *gin.Context) {
	activities, err := h.queries.GetByType(c.Param("userId"), c.Param("type"), limitParam(c, 20))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get activities by type")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get activities by type"})
		return
	}

	c.JSON(http.StatusOK, activities)
}

func (h *Handler) GetPropertyActivities(c *gin.Context) {
	activities, err := h.queries.GetPropertyActivities(c.Param("userId"), limitParam(c, 20))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get property activities")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get property activities"})
		return
	}

	c.JSON(http.StatusOK, activities)
}

func (h *Handler) GetSearchActivities(c *gin.Context) {
	activities, err := h.queries.GetSearchHistory(c.Param("userId"), limitParam(c, 20))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get search history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get search history"})
		return
	}

	c.JSON(http.StatusOK, activities)
}

func (h *Handler) Search(c *gin.Context) {
	var req models.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse search request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid search parameters"})
		return
	}

	page, err := h.engine.Search(req, actingUser(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		if errors.Is(err, search.ErrUpstreamUnavailable) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Listings service unavailable"})
			return
		}
		h.logger.WithError(err).Error("Search failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *Handler) GetRecommendations(c *gin.Context) {
	results, err := h.engine.GetRecommendations(c.Param("userId"), limitParam(c, 10))
	if err != nil {
		if errors.Is(err, search.ErrUpstreamUnavailable) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Listings service unavailable"})
			return
		}
		h.logger.WithError(err).Error("Failed to get recommendations")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get recommendations"})
		return
	}

	c.JSON(http.StatusOK, results)
}

func (h *Handler) GetSuggestions(c *gin.Context) {
	suggestions, err := h.engine.GetSuggestions(c.Query("query"), limitParam(c, 10))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get suggestions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get suggestions"})
		return
	}

	c.JSON(http.StatusOK, suggestions)
}

func (h *Handler) GetFeatured(c *gin.Context) {
	results, err := h.engine.GetFeatured(limitParam(c, 10))
	if err != nil {
		if errors.Is(err, search.ErrUpstreamUnavailable) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Listings service unavailable"})
			return
		}
		h.logger.WithError(err).Error("Failed to get featured listings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get featured listings"})
		return
	}

	c.JSON(http.StatusOK, results)
}
