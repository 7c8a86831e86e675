package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/brk3/habitstate/internal/logger"
	"github.com/brk3/habitstate/internal/persist"
	"github.com/brk3/habitstate/pkg/habit"
	"github.com/brk3/habitstate/pkg/versioninfo"
	"github.com/go-chi/chi/v5"
)

func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	_ = writeJSON(w, code, ErrorResponse{Error: msg})
}

// writeOpError maps a store error to a response. A persistence failure means
// the change is applied in memory but not yet durable.
func writeOpError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, habit.ErrValidation):
		RecordStoreOperation(op, "invalid")
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, persist.ErrPersistence):
		RecordStoreOperation(op, "save_failed")
		writeError(w, http.StatusInternalServerError, "failed to save")
	default:
		RecordStoreOperation(op, "error")
		logger.Error("Store operation failed", "op", op, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) getVersionInfo(w http.ResponseWriter, _ *http.Request) {
	info := versioninfo.VersionInfo{
		Version:   versioninfo.Version,
		BuildDate: versioninfo.BuildDate,
	}
	if err := writeJSON(w, http.StatusOK, info); err != nil {
		logger.Error("Failed to serialize version info response", "error", err)
	}
}

func (s *Server) listHabits(w http.ResponseWriter, r *http.Request) {
	st := storeFromContext(r.Context())
	habits := st.Habits()
	UpdateActiveHabits(profileFromContext(r.Context()), len(habits))

	if day := r.URL.Query().Get("completedOn"); day != "" {
		if err := habit.ValidateDate(day); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		habits = st.CompletedOn(day)
	}

	resp := HabitListResponse{Habits: habits, Today: st.Today()}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		logger.Error("Failed to serialize habit list response", "error", err)
	}
}

func (s *Server) listDeleted(w http.ResponseWriter, r *http.Request) {
	deleted := storeFromContext(r.Context()).Deleted()
	if err := writeJSON(w, http.StatusOK, DeletedListResponse{DeletedHabits: deleted}); err != nil {
		logger.Error("Failed to serialize deleted habits response", "error", err)
	}
}

func (s *Server) getHabit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "habit_id")
	h, ok := storeFromContext(r.Context()).Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "habit not found")
		return
	}
	if err := writeJSON(w, http.StatusOK, h); err != nil {
		logger.Error("Failed to serialize habit response", "habit_id", id, "error", err)
	}
}

func (s *Server) addHabit(w http.ResponseWriter, r *http.Request) {
	var in habit.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	st := storeFromContext(r.Context())
	h, err := st.AddHabit(r.Context(), in)
	if err != nil {
		writeOpError(w, "add", err)
		return
	}
	RecordStoreOperation("add", "ok")
	UpdateActiveHabits(profileFromContext(r.Context()), len(st.Habits()))

	logger.Debug("Added habit", "habit_id", h.ID)
	if err := writeJSON(w, http.StatusCreated, h); err != nil {
		logger.Error("Failed to serialize habit response", "habit_id", h.ID, "error", err)
	}
}

func (s *Server) editHabit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "habit_id")
	var u habit.Update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	h, found, err := storeFromContext(r.Context()).EditHabit(r.Context(), id, u)
	if err != nil {
		writeOpError(w, "edit", err)
		return
	}
	if !found {
		RecordStoreOperation("edit", "not_found")
		writeError(w, http.StatusNotFound, "habit not found")
		return
	}
	RecordStoreOperation("edit", "ok")
	if err := writeJSON(w, http.StatusOK, h); err != nil {
		logger.Error("Failed to serialize habit response", "habit_id", id, "error", err)
	}
}

func (s *Server) deleteHabit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "habit_id")
	st := storeFromContext(r.Context())

	found, err := st.DeleteHabit(r.Context(), id)
	if err != nil {
		writeOpError(w, "delete", err)
		return
	}
	if !found {
		RecordStoreOperation("delete", "not_found")
		writeError(w, http.StatusNotFound, "habit not found")
		return
	}
	RecordStoreOperation("delete", "ok")
	UpdateActiveHabits(profileFromContext(r.Context()), len(st.Habits()))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) toggleCompletion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "habit_id")
	st := storeFromContext(r.Context())

	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Date == "" {
		req.Date = st.Today()
	}

	h, found, err := st.ToggleCompletion(r.Context(), id, req.Date)
	if err != nil {
		writeOpError(w, "toggle", err)
		return
	}
	if !found {
		RecordStoreOperation("toggle", "not_found")
		writeError(w, http.StatusNotFound, "habit not found")
		return
	}
	RecordStoreOperation("toggle", "ok")
	if err := writeJSON(w, http.StatusOK, h); err != nil {
		logger.Error("Failed to serialize habit response", "habit_id", id, "error", err)
	}
}
