package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"manhua-tracker/internal/auth"
	"manhua-tracker/internal/database/library"
	"manhua-tracker/internal/database/works"
	"manhua-tracker/internal/entities"
)

// LibraryController serves per-user reading lists. Every route requires
// an authenticated caller; single-entry routes additionally require the
// owner or an admin.
type LibraryController struct {
	library *library.Repository
	works   *works.Repository
}

func NewLibraryController(libraryRepo *library.Repository, worksRepo *works.Repository) *LibraryController {
	return &LibraryController{library: libraryRepo, works: worksRepo}
}

func (controller *LibraryController) RegisterRoutes(router gin.IRouter) {
	group := router.Group("/api/library")
	group.GET("", controller.List)
	group.POST("", controller.Create)
	group.GET("/:id", controller.Get)
	group.PATCH("/:id", controller.Update)
	group.PUT("/:id", controller.Update)
	group.DELETE("/:id", controller.Delete)
}

func (controller *LibraryController) List(c *gin.Context) {
	actor, ok := auth.RequireUser(c)
	if !ok {
		return
	}

	userID := actor.ID
	if raw, present := c.GetQuery("userId"); present {
		requested, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondBadRequest(c, "Invalid user id.")
			return
		}
		if actor.IsAdmin {
			userID = uint(requested)
		} else if uint(requested) != actor.ID {
			respondError(c, http.StatusForbidden, "Cannot view another user's library.")
			return
		}
	}

	entries, err := controller.library.ListForUser(userID)
	if err != nil {
		respondInternalError(c, err, "list library")
		return
	}
	c.JSON(http.StatusOK, entries)
}

type createEntryRequest struct {
	WorkID   *uint           `json:"workId"`
	Status   *string         `json:"status"`
	Progress *float64        `json:"progress"`
	Rating   json.RawMessage `json:"rating"`
	Review   *string         `json:"review"`
}

func (controller *LibraryController) Create(c *gin.Context) {
	actor, ok := auth.RequireUser(c)
	if !ok {
		return
	}

	var body createEntryRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.WorkID == nil {
		respondBadRequest(c, "Invalid work id.")
		return
	}

	exists, err := controller.works.Exists(*body.WorkID)
	if err != nil {
		respondInternalError(c, err, "lookup work")
		return
	}
	if !exists {
		respondNotFound(c, "Work not found.")
		return
	}

	status := entities.EntryStatusPlanning
	if body.Status != nil {
		status = entities.EntryStatus(*body.Status)
	}
	if !entities.ValidEntryStatus(status) {
		respondBadRequest(c, "Invalid status.")
		return
	}

	rating, ok := parseRating(body.Rating, nil)
	if !ok {
		respondBadRequest(c, "Rating must be between 1 and 10.")
		return
	}

	entry := entities.LibraryEntry{
		UserID:   actor.ID,
		WorkID:   *body.WorkID,
		Status:   status,
		Progress: clampProgress(body.Progress, 0),
		Rating:   rating,
		Review:   textOrNil(body.Review),
	}
	if err := controller.library.Create(&entry); err != nil {
		if errors.Is(err, library.ErrDuplicate) {
			respondConflict(c, "Work already in library.")
			return
		}
		respondInternalError(c, err, "create library entry")
		return
	}

	view, err := controller.library.GetView(entry.ID)
	if err != nil {
		respondInternalError(c, err, "reload library entry")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (controller *LibraryController) Get(c *gin.Context) {
	entry, ok := controller.lookup(c)
	if !ok {
		return
	}
	if _, ok := auth.AssertOwnerOrAdmin(c, entry.UserID); !ok {
		return
	}

	view, err := controller.library.GetView(entry.ID)
	if err != nil {
		respondInternalError(c, err, "load library entry")
		return
	}
	c.JSON(http.StatusOK, view)
}

type updateEntryRequest struct {
	Status   *string         `json:"status"`
	Progress *float64        `json:"progress"`
	Rating   json.RawMessage `json:"rating"`
	Review   json.RawMessage `json:"review"`
}

func (controller *LibraryController) Update(c *gin.Context) {
	entry, ok := controller.lookup(c)
	if !ok {
		return
	}
	if _, ok := auth.AssertOwnerOrAdmin(c, entry.UserID); !ok {
		return
	}

	// An empty body is a valid no-op update.
	var body updateEntryRequest
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		respondBadRequest(c, "Invalid request body.")
		return
	}

	status := entry.Status
	if body.Status != nil {
		status = entities.EntryStatus(*body.Status)
	}
	if !entities.ValidEntryStatus(status) {
		respondBadRequest(c, "Invalid status.")
		return
	}

	rating, ok := parseRating(body.Rating, entry.Rating)
	if !ok {
		respondBadRequest(c, "Rating must be between 1 and 10.")
		return
	}

	review, err := optionalText(body.Review, entry.Review)
	if err != nil {
		respondBadRequest(c, "Invalid request body.")
		return
	}

	progress := clampProgress(body.Progress, entry.Progress)

	if err := controller.library.Update(entry.ID, status, progress, rating, review); err != nil {
		respondInternalError(c, err, "update library entry")
		return
	}

	view, err := controller.library.GetView(entry.ID)
	if err != nil {
		respondInternalError(c, err, "reload library entry")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (controller *LibraryController) Delete(c *gin.Context) {
	entry, ok := controller.lookup(c)
	if !ok {
		return
	}
	if _, ok := auth.AssertOwnerOrAdmin(c, entry.UserID); !ok {
		return
	}

	if err := controller.library.Delete(entry.ID); err != nil {
		respondInternalError(c, err, "delete library entry")
		return
	}
	respondSuccess(c)
}

// lookup parses the :id parameter and loads the raw entry for the
// ownership check, writing the 400/404 response itself on failure.
func (controller *LibraryController) lookup(c *gin.Context) (*entities.LibraryEntry, bool) {
	id, ok := parseIDParam(c)
	if !ok {
		return nil, false
	}
	entry, err := controller.library.Get(id)
	if err != nil {
		if errors.Is(err, library.ErrNotFound) {
			respondNotFound(c, "Library entry not found.")
			return nil, false
		}
		respondInternalError(c, err, "lookup library entry")
		return nil, false
	}
	return entry, true
}
