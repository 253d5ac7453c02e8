package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/localspot/backend/internal/db"
	"github.com/localspot/backend/internal/directory"
	"github.com/localspot/backend/internal/geo"
	"github.com/localspot/backend/internal/geocode"
	"github.com/localspot/backend/internal/models"
	"github.com/localspot/backend/internal/search"
)

type Handler struct {
	Store     *db.Store
	Directory *directory.Directory
	Engine    *search.Engine
	Geocoder  geocode.Geocoder
	Validator *validator.Validate
	Logger    zerolog.Logger
	AdminKey  string
}

func (h *Handler) Healthz(c *gin.Context) {
	if h.Store == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "storage": "memory"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "storage": "postgres"})
}

type searchQuery struct {
	Q   string   `form:"q" validate:"required"`
	Lat *float64 `form:"lat" validate:"omitempty,min=-90,max=90"`
	Lng *float64 `form:"lng" validate:"omitempty,min=-180,max=180"`
}

// @Summary Search locations
// @Description Merged business, OSM POI, and geocoder results for a query
// @Tags search
// @Produce json
// @Param q query string true "Free text query (min 2 characters)"
// @Param lat query number false "Reference latitude"
// @Param lng query number false "Reference longitude"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/search/locations [get]
func (h *Handler) SearchLocations(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid query parameters", err.Error())
		return
	}
	if err := h.Validator.Struct(q); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	if q.Lat != nil && q.Lng != nil {
		h.Engine.UpdateLocation(*q.Lat, *q.Lng)
	}

	items, err := h.Engine.Search(c.Request.Context(), q.Q)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "SEARCH_ERROR", "Search failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "query": q.Q})
}

func (h *Handler) BusinessesList(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.Directory.Businesses()})
}

type nearbyQuery struct {
	Lat      float64 `form:"lat" validate:"min=-90,max=90"`
	Lng      float64 `form:"lng" validate:"min=-180,max=180"`
	RadiusKm float64 `form:"radius_km" validate:"omitempty,gt=0,lte=100"`
	Limit    int     `form:"limit" validate:"omitempty,gt=0,lte=100"`
}

// @Summary Nearby businesses
// @Tags businesses
// @Produce json
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Param radius_km query number false "Search radius in km (default 5)"
// @Param limit query int false "Max results (default 20)"
// @Success 200 {object} map[string]any
// @Router /api/businesses/nearby [get]
func (h *Handler) BusinessesNearby(c *gin.Context) {
	var q nearbyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid query parameters", err.Error())
		return
	}
	if err := h.Validator.Struct(q); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	if !geo.ValidCoordinates(q.Lat, q.Lng) {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "lat and lng are required", nil)
		return
	}
	if q.RadiusKm == 0 {
		q.RadiusKm = 5
	}
	if q.Limit == 0 {
		q.Limit = 20
	}

	items := h.Directory.Nearby(models.Coordinates{Lat: q.Lat, Lng: q.Lng}, q.RadiusKm, q.Limit)
	c.JSON(http.StatusOK, gin.H{"items": items, "radius_km": q.RadiusKm})
}

type importSummary struct {
	Parsed   int      `json:"parsed"`
	Inserted int      `json:"inserted"`
	Errors   []string `json:"errors"`
}

// @Summary Import businesses CSV
// @Description Replace the business directory with an uploaded CSV
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param businesses formData file true "businesses.csv"
// @Success 200 {object} importSummary
// @Failure 400 {object} map[string]any
// @Router /api/import [post]
func (h *Handler) Import(c *gin.Context) {
	file, err := c.FormFile("businesses")
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "businesses file required", nil)
		return
	}

	f, err := file.Open()
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "cannot open upload", err.Error())
		return
	}
	defer f.Close()

	businesses, errs := directory.ParseCSV(f)
	summary := importSummary{Parsed: len(businesses), Errors: errs}
	if summary.Errors == nil {
		summary.Errors = []string{}
	}
	if len(businesses) == 0 {
		writeError(c, http.StatusBadRequest, "CSV_PARSE_ERROR", "No usable rows", summary.Errors)
		return
	}

	if h.Store != nil {
		inserted, err := h.Store.ReplaceBusinesses(c.Request.Context(), businesses)
		if err != nil {
			writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to persist businesses", err.Error())
			return
		}
		summary.Inserted = int(inserted)
	} else {
		summary.Inserted = len(businesses)
	}

	h.Directory.Replace(businesses)
	h.Logger.Info().Int("count", len(businesses)).Msg("business directory replaced")
	c.JSON(http.StatusOK, summary)
}

// @Summary Regeocode businesses
// @Description Fill in coordinates for businesses that lack them
// @Tags businesses
// @Produce json
// @Param force query bool false "Regeocode all businesses, not only those without coordinates"
// @Success 200 {object} map[string]any
// @Router /api/businesses/regeocode [post]
func (h *Handler) RegeocodeBusinesses(c *gin.Context) {
	if h.Geocoder == nil {
		writeError(c, http.StatusServiceUnavailable, "GEOCODER_UNAVAILABLE", "No geocoder configured", nil)
		return
	}
	force := c.Query("force") == "1" || c.Query("force") == "true"

	var updated, failed, skipped int
	for _, b := range h.Directory.Businesses() {
		if !geocode.ShouldGeocode(b.HasCoordinates(), force) {
			skipped++
			continue
		}
		query := geocode.BuildQuery(b.Name, b.Address, b.City)
		lat, lng, _, _, err := h.Geocoder.Geocode(c.Request.Context(), query)
		if err != nil {
			failed++
			h.Logger.Warn().Err(err).Str("business_id", b.ID).Msg("regeocode failed")
			continue
		}
		if !h.Directory.UpdateCoordinates(b.ID, lat, lng) {
			failed++
			continue
		}
		if h.Store != nil {
			if err := h.Store.UpdateBusinessCoordinates(c.Request.Context(), b.ID, lat, lng); err != nil {
				h.Logger.Error().Err(err).Str("business_id", b.ID).Msg("coordinate persist failed")
			}
		}
		updated++
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated, "failed": failed, "skipped": skipped})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
