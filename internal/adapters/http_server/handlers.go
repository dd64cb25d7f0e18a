// internal/adapters/http_server/handlers.go
package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"stayfinder/internal/app"
	"stayfinder/internal/domain"
)

// maxBody caps request bodies on write endpoints.
const maxBody = 1 << 20

type Handlers struct {
	Search       *app.SearchService
	Reservations *app.ReservationService
	Advisory     *app.AdvisoryService // optional; route is not mounted when nil
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/hotels/search", h.searchHotels)
	s.mux.Post("/v1/reservations", h.createReservation)
	s.mux.Get("/v1/reservations", h.listReservations)
	s.mux.Patch("/v1/reservations/{booking_id}", h.modifyReservation)
	if h.Advisory != nil {
		s.mux.Post("/v1/advisory", h.askAdvisor)
	}
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal response body")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "could not encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// writeError maps a service error to a problem response. conflictStatus is
// what a failed existence precondition means for the calling endpoint.
func writeError(w http.ResponseWriter, r *http.Request, err error, conflictStatus int) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeProblem(w, http.StatusBadRequest, "Bad Request", ve.Reason)
	case errors.Is(err, domain.ErrValidation):
		writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.Is(err, domain.ErrPreconditionFailed):
		if conflictStatus == http.StatusNotFound {
			writeProblem(w, http.StatusNotFound, "Not Found", "reservation not found")
			return
		}
		writeProblem(w, http.StatusConflict, "Conflict", "reservation already exists")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "an unexpected error occurred")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "request body must be a JSON object")
		return false
	}
	return true
}

// ---- search ----

func (h *Handlers) searchHotels(w http.ResponseWriter, r *http.Request) {
	q, detail := parseSearchQuery(r)
	if detail != "" {
		writeProblem(w, http.StatusBadRequest, "Bad Request", detail)
		return
	}
	hotels, err := h.Search.Search(r.Context(), q)
	if err != nil {
		writeError(w, r, err, http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Results []domain.Hotel `json:"results"`
	}{hotels})
}

// parseSearchQuery reads the search filters. A zero maxPrice or minRating is
// treated as "not supplied" so existing callers keep their behavior.
func parseSearchQuery(r *http.Request) (domain.SearchQuery, string) {
	v := r.URL.Query()
	var q domain.SearchQuery

	if c := strings.TrimSpace(v.Get("city")); c != "" {
		q.City = &c
	}
	for _, p := range []struct {
		name string
		dst  **float64
	}{{"maxPrice", &q.MaxPrice}, {"minRating", &q.MinRating}} {
		raw := strings.TrimSpace(v.Get(p.name))
		if raw == "" {
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return domain.SearchQuery{}, p.name + " must be a number"
		}
		if f < 0 {
			return domain.SearchQuery{}, p.name + " must be >= 0"
		}
		if f != 0 {
			*p.dst = &f
		}
	}
	for _, raw := range v["amenities"] {
		for _, a := range strings.Split(raw, ",") {
			if a = strings.TrimSpace(a); a != "" {
				q.Amenities = append(q.Amenities, a)
			}
		}
	}
	q.SortBy = strings.TrimSpace(v.Get("sortBy"))
	q.SortOrder = strings.TrimSpace(v.Get("sortOrder"))
	return q, ""
}

// ---- reservations ----

func (h *Handlers) createReservation(w http.ResponseWriter, r *http.Request) {
	var in app.CreateReservationInput
	if !decodeBody(w, r, &in) {
		return
	}
	out, err := h.Reservations.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err, http.StatusConflict)
		return
	}
	w.Header().Set("Location", "/v1/reservations/"+out.BookingID)
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) listReservations(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	in := app.QueryReservationsInput{GuestEmail: strings.TrimSpace(v.Get("guest_email"))}
	if st := strings.TrimSpace(v.Get("status")); st != "" {
		in.Status = &st
	}
	out, err := h.Reservations.Query(r.Context(), in)
	if err != nil {
		writeError(w, r, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) modifyReservation(w http.ResponseWriter, r *http.Request) {
	var in app.ModifyReservationInput
	if !decodeBody(w, r, &in) {
		return
	}
	in.BookingID = chi.URLParam(r, "booking_id")
	out, err := h.Reservations.Modify(r.Context(), in)
	if err != nil {
		writeError(w, r, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ---- advisory ----

func (h *Handlers) askAdvisor(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Query string `json:"query"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	adv, err := h.Advisory.Ask(r.Context(), in.Query)
	if err != nil {
		writeError(w, r, err, http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, adv)
}
