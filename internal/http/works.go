package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"manhua-tracker/internal/auth"
	"manhua-tracker/internal/database/users"
	"manhua-tracker/internal/database/works"
	"manhua-tracker/internal/entities"
)

// WorksController serves the shared catalog: paginated browsing with
// rating aggregates, per-work detail with recent reviews, and the
// admin-gated mutations.
type WorksController struct {
	works *works.Repository
	users *users.Repository
}

func NewWorksController(worksRepo *works.Repository, usersRepo *users.Repository) *WorksController {
	return &WorksController{works: worksRepo, users: usersRepo}
}

func (controller *WorksController) RegisterRoutes(router gin.IRouter) {
	group := router.Group("/api/works")
	group.GET("", controller.List)
	group.POST("", controller.Create)
	group.GET("/:id", controller.Get)
	group.PATCH("/:id", controller.Update)
	group.PUT("/:id", controller.Update)
	group.DELETE("/:id", controller.Delete)
}

// workDetail is a work plus its most recent reviews.
type workDetail struct {
	works.WorkWithStats
	Reviews []works.Review `json:"reviews"`
}

func (controller *WorksController) List(c *gin.Context) {
	page, limit, offset := parsePagination(c)
	filter := works.ListFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Status: entities.WorkStatus(strings.TrimSpace(c.Query("status"))),
	}

	rows, total, err := controller.works.List(filter, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list works")
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       rows,
		Pagination: Pagination{Page: page, Limit: limit, Total: total},
	})
}

func (controller *WorksController) Get(c *gin.Context) {
	work, ok := controller.lookup(c)
	if !ok {
		return
	}
	controller.respondDetail(c, work)
}

type createWorkRequest struct {
	Title         *string         `json:"title"`
	OriginalTitle *string         `json:"originalTitle"`
	Status        *string         `json:"status"`
	CoverURL      *string         `json:"coverUrl"`
	Synopsis      *string         `json:"synopsis"`
	CreatedBy     json.RawMessage `json:"createdBy"`
}

func (controller *WorksController) Create(c *gin.Context) {
	requester, ok := auth.RequireUser(c)
	if !ok {
		return
	}

	var body createWorkRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, "Title is required.")
		return
	}

	title := textOrNil(body.Title)
	if title == nil {
		respondBadRequest(c, "Title is required.")
		return
	}

	status := entities.WorkStatusOngoing
	if body.Status != nil {
		status = entities.WorkStatus(*body.Status)
	}
	if !entities.ValidWorkStatus(status) {
		respondBadRequest(c, "Invalid status.")
		return
	}

	// The creator defaults to the caller; only an admin may reassign it,
	// either to an existing user or to explicit null.
	createdBy := &requester.ID
	if requester.IsAdmin && len(body.CreatedBy) > 0 {
		if string(body.CreatedBy) == "null" {
			createdBy = nil
		} else {
			var creatorID uint
			if err := json.Unmarshal(body.CreatedBy, &creatorID); err != nil {
				respondNotFound(c, "Creator user not found.")
				return
			}
			if _, err := controller.users.GetByID(creatorID); err != nil {
				if errors.Is(err, users.ErrNotFound) {
					respondNotFound(c, "Creator user not found.")
					return
				}
				respondInternalError(c, err, "lookup creator")
				return
			}
			createdBy = &creatorID
		}
	}

	work := entities.Work{
		Title:         *title,
		OriginalTitle: textOrNil(body.OriginalTitle),
		Status:        status,
		CoverURL:      textOrNil(body.CoverURL),
		Synopsis:      textOrNil(body.Synopsis),
		CreatedBy:     createdBy,
	}
	if err := controller.works.Create(&work); err != nil {
		respondInternalError(c, err, "create work")
		return
	}

	c.JSON(http.StatusOK, works.WorkWithStats{
		ID:            work.ID,
		Title:         work.Title,
		OriginalTitle: work.OriginalTitle,
		Status:        work.Status,
		CoverURL:      work.CoverURL,
		Synopsis:      work.Synopsis,
		CreatedBy:     work.CreatedBy,
		CreatedAt:     work.CreatedAt,
		UpdatedAt:     work.UpdatedAt,
	})
}

type updateWorkRequest struct {
	Title         *string         `json:"title"`
	OriginalTitle json.RawMessage `json:"originalTitle"`
	Status        *string         `json:"status"`
	CoverURL      json.RawMessage `json:"coverUrl"`
	Synopsis      json.RawMessage `json:"synopsis"`
}

func (controller *WorksController) Update(c *gin.Context) {
	work, ok := controller.lookup(c)
	if !ok {
		return
	}
	if _, ok := auth.RequireAdmin(c); !ok {
		return
	}

	// An empty body is a valid no-op update.
	var body updateWorkRequest
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		respondBadRequest(c, "Invalid request body.")
		return
	}

	// Partial overwrite: absent fields keep the stored value, optional
	// strings collapse to null when cleared.
	title := work.Title
	if t := textOrNil(body.Title); t != nil {
		title = *t
	}

	status := work.Status
	if body.Status != nil {
		status = entities.WorkStatus(*body.Status)
	}
	if !entities.ValidWorkStatus(status) {
		respondBadRequest(c, "Invalid status.")
		return
	}

	originalTitle, err := optionalText(body.OriginalTitle, work.OriginalTitle)
	if err != nil {
		respondBadRequest(c, "Invalid request body.")
		return
	}
	coverURL, err := optionalText(body.CoverURL, work.CoverURL)
	if err != nil {
		respondBadRequest(c, "Invalid request body.")
		return
	}
	synopsis, err := optionalText(body.Synopsis, work.Synopsis)
	if err != nil {
		respondBadRequest(c, "Invalid request body.")
		return
	}

	if err := controller.works.Update(work.ID, title, originalTitle, status, coverURL, synopsis); err != nil {
		respondInternalError(c, err, "update work")
		return
	}

	updated, err := controller.works.GetWithStats(work.ID)
	if err != nil {
		respondInternalError(c, err, "reload work")
		return
	}
	controller.respondDetail(c, updated)
}

func (controller *WorksController) Delete(c *gin.Context) {
	work, ok := controller.lookup(c)
	if !ok {
		return
	}
	if _, ok := auth.RequireAdmin(c); !ok {
		return
	}

	if err := controller.works.Delete(work.ID); err != nil {
		respondInternalError(c, err, "delete work")
		return
	}
	respondSuccess(c)
}

// lookup parses the :id parameter and loads the work with its
// aggregates, writing the 400/404 response itself on failure.
func (controller *WorksController) lookup(c *gin.Context) (*works.WorkWithStats, bool) {
	id, ok := parseIDParam(c)
	if !ok {
		return nil, false
	}
	work, err := controller.works.GetWithStats(id)
	if err != nil {
		if errors.Is(err, works.ErrNotFound) {
			respondNotFound(c, "Work not found.")
			return nil, false
		}
		respondInternalError(c, err, "lookup work")
		return nil, false
	}
	return work, true
}

func (controller *WorksController) respondDetail(c *gin.Context, work *works.WorkWithStats) {
	reviews, err := controller.works.Reviews(work.ID)
	if err != nil {
		respondInternalError(c, err, "list reviews")
		return
	}
	c.JSON(http.StatusOK, workDetail{WorkWithStats: *work, Reviews: reviews})
}
