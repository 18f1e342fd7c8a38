package httpapi

import (
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/Belphemur/CatalogLens/internal/config"
	"github.com/Belphemur/CatalogLens/internal/metrics"
	"github.com/Belphemur/CatalogLens/internal/models"
	"github.com/Belphemur/CatalogLens/internal/services"
)

// maxRequestBytes caps dashboard request bodies.
const maxRequestBytes = 1 << 20

// Handler serves the dashboard API over HTTP.
type Handler struct {
	svc      services.DashboardService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewHandler creates a handler backed by svc.
func NewHandler(svc services.DashboardService) *Handler {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON names in validation errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{
		svc:      svc,
		validate: v,
		logger:   config.GetLogger(),
	}
}

// Routes returns the /api/v1 routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/options", h.GetOptions)
	r.Post("/dashboard", h.RenderDashboard)
	return r
}

// GetOptions lists the filter options. Sources may be given as repeated
// ?source= parameters.
func (h *Handler) GetOptions(w http.ResponseWriter, r *http.Request) {
	req := models.OptionsRequest{Sources: r.URL.Query()["source"]}
	if err := h.validate.Struct(req); err != nil {
		h.fail(w, r, err)
		return
	}

	opts, err := h.svc.Options(r.Context(), req.Sources)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, opts)
}

// RenderDashboard applies the posted selection and returns every chart.
func (h *Handler) RenderDashboard(w http.ResponseWriter, r *http.Request) {
	var req models.DashboardRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	// An empty body asks for the default selection.
	if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Debug().Err(err).Msg("Rejected malformed dashboard request")
		_ = render.Render(w, r, errInvalidJSON(err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.fail(w, r, err)
		return
	}

	dash, err := h.svc.Render(r.Context(), req.Selection, req.Sources)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	metrics.DashboardsTotal.WithLabelValues("http").Inc()
	render.JSON(w, r, dash)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		_ = render.Render(w, r, errValidation(verrs))
		return
	}

	resp := errFromService(err)
	if resp.HTTPStatus >= http.StatusInternalServerError || resp.HTTPStatus == http.StatusUnprocessableEntity {
		h.logger.Error().Err(err).Str("path", r.URL.Path).Int("status", resp.HTTPStatus).Msg("Request failed")
	} else {
		h.logger.Warn().Err(err).Str("path", r.URL.Path).Int("status", resp.HTTPStatus).Msg("Request rejected")
	}
	_ = render.Render(w, r, resp)
}
