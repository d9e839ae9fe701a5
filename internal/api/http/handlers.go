package http

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/shortly/internal/database"
	"github.com/vadimbarashkov/shortly/internal/models"
	"github.com/vadimbarashkov/shortly/internal/service"
	"github.com/vadimbarashkov/shortly/pkg/response"
)

func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "pong")
}

type shortenRequest struct {
	OriginalURL string `json:"originalUrl" validate:"required,url"`
	CustomCode  string `json:"customCode,omitempty" validate:"omitempty"`
}

type shortenResponse struct {
	ShortCode string `json:"shortCode"`
}

type statsResponse struct {
	TotalClicks int64              `json:"totalClicks"`
	ClicksByDay []dayCountResponse `json:"clicksByDay"`
}

type dayCountResponse struct {
	Date   string `json:"date"`
	Clicks int64  `json:"clicks"`
}

func toStatsResponse(stats *models.URLStats) statsResponse {
	byDay := make([]dayCountResponse, 0, len(stats.ClicksByDay))
	for _, dc := range stats.ClicksByDay {
		byDay = append(byDay, dayCountResponse{
			Date:   dc.Date,
			Clicks: dc.Clicks,
		})
	}

	return statsResponse{
		TotalClicks: stats.TotalClicks,
		ClicksByDay: byDay,
	}
}

func handleShortenURL(svc URLService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleShortenURL"

	return func(w http.ResponseWriter, r *http.Request) {
		var req shortenRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			if errors.Is(err, io.EOF) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.EmptyRequestBodyResponse)
				return
			}

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.BadRequestResponse)
			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationErrorResponse(err))
			return
		}

		url, err := svc.ShortenURL(r.Context(), req.OriginalURL, req.CustomCode)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidCustomCode):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.NewErrorResponse(service.ErrInvalidCustomCode.Error()))
			case errors.Is(err, database.ErrShortCodeExists):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.NewErrorResponse("custom code already exists"))
			default:
				httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.ServerErrorResponse)
			}
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, shortenResponse{ShortCode: url.ShortCode})
	}
}

// visitorFromRequest extracts the client address and user agent. On direct
// connections RemoteAddr is "host:port" (middleware.RealIP only rewrites it
// when a proxy header is present), so the port is stripped before storing.
func visitorFromRequest(r *http.Request) service.Visitor {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}

	return service.Visitor{
		IPAddress: ip,
		UserAgent: r.UserAgent(),
	}
}

func handleRedirect(svc URLService) http.HandlerFunc {
	const op = "api.http.handleRedirect"

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		url, err := svc.ResolveShortCode(r.Context(), shortCode, visitorFromRequest(r))
		if err != nil {
			if errors.Is(err, database.ErrURLNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		http.Redirect(w, r, url.OriginalURL, http.StatusFound)
	}
}

func handleGetURLStats(svc URLService) http.HandlerFunc {
	const op = "api.http.handleGetURLStats"

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		stats, err := svc.GetURLStats(r.Context(), shortCode)
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, toStatsResponse(stats))
	}
}
