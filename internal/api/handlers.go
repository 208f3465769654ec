package api

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"studentnest/internal/accounts"
	"studentnest/internal/apperror"
	"studentnest/internal/auth"
	"studentnest/internal/database"
	"studentnest/internal/lifecycle"
	"studentnest/internal/listings"
	"studentnest/internal/models"
	"studentnest/internal/notify"
	"studentnest/internal/search"
	"studentnest/internal/telegram"
)

type Handler struct {
	db              *database.Database
	logger          *logrus.Logger
	listings        *listings.Service
	accounts        *accounts.Service
	lifecycle       *lifecycle.Manager
	search          *search.Composer
	notifications   *notify.Store
	telegramService *telegram.Service
}

// Services bundles what the handlers delegate to
type Services struct {
	Listings      *listings.Service
	Accounts      *accounts.Service
	Lifecycle     *lifecycle.Manager
	Search        *search.Composer
	Notifications *notify.Store

	// Optional; the Telegram test endpoint reports 400 without it
	Telegram *telegram.Service
}

func NewHandler(db *database.Database, services Services, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		db:              db,
		logger:          logger,
		listings:        services.Listings,
		accounts:        services.Accounts,
		lifecycle:       services.Lifecycle,
		search:          services.Search,
		notifications:   services.Notifications,
		telegramService: services.Telegram,
	}
}

// respondError reports domain failures with their own status and hides
// everything else behind a 500 with message
func (h *Handler) respondError(c *gin.Context, err error, message string) {
	if kind := apperror.KindOf(err); kind != 0 {
		c.JSON(kind.Status(), gin.H{"error": err.Error(), "kind": kind.String()})
		return
	}

	h.logger.WithError(err).WithField("path", c.FullPath()).Error(message)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}

func (h *Handler) paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// actor returns the authenticated actor; routes using it sit behind
// auth.RequireActor
func actor(c *gin.Context) auth.Actor {
	a, _ := auth.ActorFrom(c)
	return a
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.listings.SiteStats(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to get stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetMe(c *gin.Context) {
	user, err := h.db.GetUser(actor(c).UserID)
	if err != nil {
		h.respondError(c, err, "Failed to get user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         user,
		"profile_kind": models.ProfileKind(user.Profile()),
		"profile":      user.Profile(),
	})
}

func (h *Handler) GetDashboard(c *gin.Context) {
	dashboard, err := h.accounts.Dashboard(c.Request.Context(), actor(c))
	if err != nil {
		h.respondError(c, err, "Failed to get dashboard")
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var input accounts.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondError(c, apperror.Wrap(apperror.KindValidation, err, "invalid request body"), "Invalid request body")
		return
	}

	profile, err := h.accounts.UpdateProfile(c.Request.Context(), actor(c), input)
	if err != nil {
		h.respondError(c, err, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile_kind": models.ProfileKind(profile),
		"profile":      profile,
	})
}
