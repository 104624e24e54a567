package handler

import (
	"net/http"
	"strings"

	"github.com/iliyamo/cinema-group-booking/internal/apperror"
	"github.com/iliyamo/cinema-group-booking/internal/model"
	"github.com/labstack/echo/v4"
)

// CatalogHandler serves the data entry endpoints for theaters, movies,
// halls and shows.
type CatalogHandler struct {
	Store Store
}

// NewCatalogHandler constructs a CatalogHandler and panics if store is nil.
func NewCatalogHandler(store Store) *CatalogHandler {
	if store == nil {
		panic("nil store passed to NewCatalogHandler")
	}
	return &CatalogHandler{Store: store}
}

// CreateTheater handles POST /theaters.
func (h *CatalogHandler) CreateTheater(c echo.Context) error {
	var body struct {
		Name    string  `json:"name"`
		City    *string `json:"city"`
		Address *string `json:"address"`
	}
	if err := bindBody(c, &body); err != nil {
		return writeError(c, err)
	}
	name := strings.TrimSpace(body.Name) // names are stored trimmed
	if name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}
	t := &model.Theater{Name: name, City: optionalString(body.City), Address: optionalString(body.Address)}
	if err := h.Store.CreateTheater(c.Request().Context(), t); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

// ListTheaters handles GET /theaters.
func (h *CatalogHandler) ListTheaters(c echo.Context) error {
	ts, err := h.Store.ListTheaters(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	if ts == nil {
		ts = []model.Theater{}
	}
	return c.JSON(http.StatusOK, ts)
}

// GetTheater handles GET /theaters/:id.
func (h *CatalogHandler) GetTheater(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	t, err := h.Store.GetTheater(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// DeleteTheater handles DELETE /theaters/:id.  Halls, shows and bookings
// of the theater are removed with it.
func (h *CatalogHandler) DeleteTheater(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := h.Store.DeleteTheater(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

type movieBody struct {
	Title       string  `json:"title"`
	Language    *string `json:"language"`
	DurationMin *int    `json:"duration_min"`
}

func (b movieBody) toModel() (*model.Movie, error) {
	const op = "handler.movie"
	title := strings.TrimSpace(b.Title)
	if title == "" {
		return nil, apperror.NewInvalid(op, "title is required")
	}
	if b.DurationMin != nil && *b.DurationMin <= 0 {
		return nil, apperror.NewInvalid(op, "duration_min must be > 0")
	}
	return &model.Movie{Title: title, Language: optionalString(b.Language), DurationMin: b.DurationMin}, nil
}

// CreateMovie handles POST /movies.
func (h *CatalogHandler) CreateMovie(c echo.Context) error {
	var body movieBody
	if err := bindBody(c, &body); err != nil {
		return writeError(c, err)
	}
	m, err := body.toModel()
	if err != nil {
		return writeError(c, err)
	}
	if err := h.Store.CreateMovie(c.Request().Context(), m); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

// ListMovies handles GET /movies.
func (h *CatalogHandler) ListMovies(c echo.Context) error {
	ms, err := h.Store.ListMovies(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	if ms == nil {
		ms = []model.Movie{}
	}
	return c.JSON(http.StatusOK, ms)
}

// GetMovie handles GET /movies/:id.
func (h *CatalogHandler) GetMovie(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	m, err := h.Store.GetMovie(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// UpdateMovie handles PUT /movies/:id and replaces every field.
func (h *CatalogHandler) UpdateMovie(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var body movieBody
	if err := bindBody(c, &body); err != nil {
		return writeError(c, err)
	}
	m, err := body.toModel()
	if err != nil {
		return writeError(c, err)
	}
	m.ID = id
	if err := h.Store.UpdateMovie(c.Request().Context(), m); err != nil {
		return writeError(c, err)
	}
	updated, err := h.Store.GetMovie(c.Request().Context(), id) // reload to pick up created_at
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteMovie handles DELETE /movies/:id.
func (h *CatalogHandler) DeleteMovie(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := h.Store.DeleteMovie(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}
