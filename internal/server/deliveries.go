package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lazypower/lifehack/internal/core"
	"github.com/lazypower/lifehack/internal/delivery"
	"github.com/lazypower/lifehack/internal/engine"
	"github.com/lazypower/lifehack/internal/widget"
)

type deliveryView struct {
	Item         core.Item           `json:"item"`
	Delivery     core.DeliveryRecord `json:"delivery"`
	ShowFeedback bool                `json:"show_feedback"`
}

func newDeliveryView(d *engine.Delivery) deliveryView {
	return deliveryView{Item: d.Item, Delivery: d.Record, ShowFeedback: d.Record.AwaitingFeedback()}
}

func (s *Server) handleDeliver(w http.ResponseWriter, r *http.Request) {
	d, err := s.mgr.Deliver(r.Context())
	if err != nil {
		s.writeMutationError(w, err)
		return
	}
	if d == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, newDeliveryView(d))
}

func (s *Server) handleLastDelivery(w http.ResponseWriter, r *http.Request) {
	d := s.mgr.LastDelivery()
	if d == nil {
		writeError(w, http.StatusNotFound, "no delivery yet")
		return
	}
	writeJSON(w, http.StatusOK, newDeliveryView(d))
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Feedback string `json:"feedback"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	fb, err := core.ParseFeedback(req.Feedback)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, ok := s.mgr.FindDelivery(id); !ok {
		writeError(w, http.StatusNotFound, "delivery not found")
		return
	}

	prompt, err := s.mgr.RecordFeedback(r.Context(), id, fb)
	if err != nil {
		s.writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"prompt_delete": prompt})
}

// handleToday returns the widget payload for ?day=YYYY-MM-DD, today by default.
func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	now := s.mgr.Now()
	day := r.URL.Query().Get("day")
	if day == "" {
		day = delivery.DayKey(now)
	} else if _, err := time.Parse(delivery.DayKeyLayout, day); err != nil {
		writeError(w, http.StatusBadRequest, "day must be YYYY-MM-DD")
		return
	}

	it, ok := s.mgr.TodayFor(day)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"day":     day,
		"item_id": it.ID,
		"payload": widget.BuildPayload(it, now),
	})
}
