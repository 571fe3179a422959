package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/booking"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/model"
)

type TypeHandler struct {
	svc    *booking.TypeService
	guard  AdminGuard
	logger *slog.Logger
}

func NewTypeHandler(svc *booking.TypeService, guard AdminGuard, logger *slog.Logger) *TypeHandler {
	return &TypeHandler{svc: svc, guard: guard, logger: logger}
}

type typeItem struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	DurationMinutes int     `json:"durationMinutes"`
	Price           float64 `json:"price"`
	Description     string  `json:"description,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

func toType(t model.AppointmentType) typeItem {
	return typeItem{
		ID:              t.ID,
		Name:            t.Name,
		DurationMinutes: t.DurationMinutes,
		Price:           t.Price,
		Description:     t.Description,
		CreatedAt:       t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       t.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type typeBody struct {
	Name            *string  `json:"name"`
	DurationMinutes *int     `json:"durationMinutes"`
	Price           *float64 `json:"price"`
	Description     *string  `json:"description"`
}

func (h *TypeHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		if !h.guard.allow(w, r) {
			return
		}
		h.write(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *TypeHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		types []model.AppointmentType
		err   error
	)
	switch {
	case q.Has("minPrice") || q.Has("maxPrice"):
		var min, max *float64
		if min, err = floatParam(r, "minPrice"); err != nil {
			break
		}
		if max, err = floatParam(r, "maxPrice"); err != nil {
			break
		}
		if min == nil || max == nil {
			err = model.Invalid("minPrice", "minPrice and maxPrice are both required")
			break
		}
		types, err = h.svc.ByPriceRange(r.Context(), *min, *max)
	case q.Has("minDuration") || q.Has("maxDuration"):
		var min, max int
		if min, err = intParam(r, "minDuration", 0); err != nil {
			break
		}
		if max, err = intParam(r, "maxDuration", 0); err != nil {
			break
		}
		types, err = h.svc.ByDurationRange(r.Context(), min, max)
	default:
		types, err = h.svc.List(r.Context(), q.Get("name"))
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	out := make([]typeItem, 0, len(types))
	for _, t := range types {
		out = append(out, toType(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *TypeHandler) write(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodDelete {
		id, err := queryID(r)
		if err == nil {
			err = h.svc.Delete(r.Context(), id)
		}
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var body typeBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if r.Method == http.MethodPost {
		in := booking.TypeInput{}
		if body.Name != nil {
			in.Name = *body.Name
		}
		if body.DurationMinutes != nil {
			in.DurationMinutes = *body.DurationMinutes
		}
		if body.Price != nil {
			in.Price = *body.Price
		}
		if body.Description != nil {
			in.Description = strings.TrimSpace(*body.Description)
		}
		t, err := h.svc.Create(r.Context(), in)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, toType(t))
		return
	}

	id, err := queryID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	t, err := h.svc.Update(r.Context(), id, booking.TypePatch{
		Name:            body.Name,
		DurationMinutes: body.DurationMinutes,
		Price:           body.Price,
		Description:     body.Description,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toType(t))
}

func (h *TypeHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id, err := queryID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	t, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toType(t))
}
