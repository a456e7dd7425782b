package handlers

import (
	"errors"
	"net/http"

	"github.com/ivislabs/taskboard/internal/service/tasks"
	"github.com/ivislabs/taskboard/internal/service/users"
)

func (h *Handler) writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, users.ErrInvalidDomain):
		writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, tasks.ErrUserNotFound), errors.Is(err, tasks.ErrTaskNotFound):
		writeError(w, err.Error(), http.StatusNotFound)
	default:
		h.log.Error().Err(err).Msg("request failed")
		writeError(w, "internal error", http.StatusInternalServerError)
	}
}
