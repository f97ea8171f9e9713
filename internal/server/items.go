package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lazypower/lifehack/internal/core"
	"github.com/lazypower/lifehack/internal/delivery"
	"github.com/lazypower/lifehack/internal/engine"
)

type itemRequest struct {
	Type      core.Kind       `json:"type"`
	Content   json.RawMessage `json:"content"`
	Tags      []string        `json:"tags"`
	RestoreID string          `json:"restore_id"`
}

func (req itemRequest) content() (core.Content, error) {
	if len(req.Content) == 0 {
		return nil, fmt.Errorf("content required")
	}
	c, err := core.DecodeContent(req.Type, req.Content)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func decodeItemRequest(w http.ResponseWriter, r *http.Request) (itemRequest, bool) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return req, false
	}
	return req, true
}

type cooldownView struct {
	CoolingDown   bool   `json:"cooling_down"`
	RemainingDays int    `json:"remaining_days,omitempty"`
	EndsAt        *int64 `json:"ends_at,omitempty"`
}

type itemView struct {
	Item     core.Item    `json:"item"`
	Label    string       `json:"label"`
	Title    string       `json:"title"`
	Cooldown cooldownView `json:"cooldown"`
}

func newItemView(it core.Item, now time.Time) itemView {
	info := delivery.Cooldown(it, now)
	cv := cooldownView{CoolingDown: info.CoolingDown, RemainingDays: info.RemainingDays}
	if info.CoolingDown {
		ms := info.EndsAt.UnixMilli()
		cv.EndsAt = &ms
	}
	return itemView{Item: it, Label: it.Kind().Label(), Title: it.Title(), Cooldown: cv}
}

func writeCapacityError(w http.ResponseWriter) {
	writeError(w, http.StatusConflict, fmt.Sprintf("at most %d active items; replace one instead", engine.MaxActiveItems))
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	now := s.mgr.Now()
	items := s.mgr.ActiveItems()
	views := make([]itemView, 0, len(items))
	for _, it := range items {
		views = append(views, newItemView(it, now))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":       views,
		"max":         engine.MaxActiveItems,
		"at_capacity": len(items) >= engine.MaxActiveItems,
	})
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeItemRequest(w, r)
	if !ok {
		return
	}
	content, err := req.content()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	it, err := s.mgr.AddWithinCapacity(r.Context(), content, core.NormalizeTags(req.Tags))
	if errors.Is(err, engine.ErrAtCapacity) {
		writeCapacityError(w)
		return
	}
	if err != nil {
		s.writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newItemView(*it, s.mgr.Now()))
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	req, ok := decodeItemRequest(w, r)
	if !ok {
		return
	}
	content, err := req.content()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	it, err := s.mgr.Update(r.Context(), id, content, core.NormalizeTags(req.Tags))
	if err != nil {
		s.writeMutationError(w, err)
		return
	}
	if it == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, newItemView(*it, s.mgr.Now()))
}

func (s *Server) handleRetireItem(w http.ResponseWriter, r *http.Request) {
	ri, err := s.mgr.Retire(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeMutationError(w, err)
		return
	}
	if ri == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, ri)
}

// handleReplaceItem retires {id} and fills the slot with either new
// content or a restored retired item (restore_id).
func (s *Server) handleReplaceItem(w http.ResponseWriter, r *http.Request) {
	oldID := chi.URLParam(r, "id")
	req, ok := decodeItemRequest(w, r)
	if !ok {
		return
	}

	var it *core.Item
	var err error
	if req.RestoreID != "" {
		it, err = s.mgr.ReplaceAndRestore(r.Context(), oldID, req.RestoreID)
	} else {
		content, cerr := req.content()
		if cerr != nil {
			writeError(w, http.StatusBadRequest, cerr.Error())
			return
		}
		it, err = s.mgr.ReplaceAndAdd(r.Context(), oldID, content, core.NormalizeTags(req.Tags))
	}
	if err != nil {
		s.writeMutationError(w, err)
		return
	}
	if it == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, newItemView(*it, s.mgr.Now()))
}

func (s *Server) handleSnooze(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	found, err := s.mgr.ReduceNoCount(r.Context(), id)
	if err != nil {
		s.writeMutationError(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	it, _ := s.mgr.Snapshot().FindActive(id)
	writeJSON(w, http.StatusOK, newItemView(it, s.mgr.Now()))
}

func (s *Server) handleListRetired(w http.ResponseWriter, r *http.Request) {
	retired := s.mgr.RetiredItems()
	out := make([]map[string]any, 0, len(retired))
	for _, ri := range retired {
		out = append(out, map[string]any{
			"item":     ri,
			"title":    ri.Title(),
			"purge_at": ri.DeletedAt + engine.RetentionWindow.Milliseconds(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	it, err := s.mgr.RestoreWithinCapacity(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, engine.ErrAtCapacity) {
		writeCapacityError(w)
		return
	}
	if err != nil {
		s.writeMutationError(w, err)
		return
	}
	if it == nil {
		writeError(w, http.StatusNotFound, "retired item not found")
		return
	}
	writeJSON(w, http.StatusOK, newItemView(*it, s.mgr.Now()))
}

func (s *Server) handlePermanentDelete(w http.ResponseWriter, r *http.Request) {
	found, err := s.mgr.PermanentDelete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeMutationError(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "retired item not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
