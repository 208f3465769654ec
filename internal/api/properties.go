package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studentnest/internal/apperror"
	"studentnest/internal/auth"
	"studentnest/internal/listings"
	"studentnest/internal/search"
)

func (h *Handler) SearchProperties(c *gin.Context) {
	var criteria search.Criteria
	if err := c.ShouldBindQuery(&criteria); err != nil {
		h.logger.WithError(err).Debug("Failed to parse search criteria")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid search parameters"})
		return
	}

	result, err := h.search.Search(c.Request.Context(), criteria)
	if err != nil {
		h.respondError(c, err, "Failed to search properties")
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) CreateProperty(c *gin.Context) {
	var input listings.PropertyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondError(c, apperror.Wrap(apperror.KindValidation, err, "invalid request body"), "Invalid request body")
		return
	}

	property, err := h.listings.Create(c.Request.Context(), actor(c), input)
	if err != nil {
		h.respondError(c, err, "Failed to create property")
		return
	}

	c.JSON(http.StatusCreated, property)
}

func (h *Handler) GetProperty(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}

	var viewer *auth.Actor
	if a, ok := auth.ActorFrom(c); ok {
		viewer = &a
	}

	detail, err := h.listings.Get(c.Request.Context(), viewer, id)
	if err != nil {
		h.respondError(c, err, "Failed to get property")
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (h *Handler) UpdateProperty(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}

	var input listings.PropertyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondError(c, apperror.Wrap(apperror.KindValidation, err, "invalid request body"), "Invalid request body")
		return
	}

	property, err := h.listings.Update(c.Request.Context(), actor(c), id, input)
	if err != nil {
		h.respondError(c, err, "Failed to update property")
		return
	}

	c.JSON(http.StatusOK, property)
}

func (h *Handler) DeleteProperty(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}

	if err := h.listings.Deactivate(c.Request.Context(), actor(c), id); err != nil {
		h.respondError(c, err, "Failed to delete property")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ToggleFavorite(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}

	favorited, err := h.listings.ToggleFavorite(c.Request.Context(), actor(c), id)
	if err != nil {
		h.respondError(c, err, "Failed to update favorites")
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_favorite": favorited})
}

func (h *Handler) GetMyProperties(c *gin.Context) {
	portfolio, err := h.listings.Mine(c.Request.Context(), actor(c))
	if err != nil {
		h.respondError(c, err, "Failed to get properties")
		return
	}

	c.JSON(http.StatusOK, portfolio)
}

func (h *Handler) GetMyFavorites(c *gin.Context) {
	favorites, err := h.listings.Favorites(c.Request.Context(), actor(c))
	if err != nil {
		h.respondError(c, err, "Failed to get favorites")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"favorites":      favorites,
		"favorite_count": len(favorites),
	})
}
