package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"smartaitools/internal/database"
	"smartaitools/internal/services"
	"smartaitools/internal/utils"
)

// respondServiceError maps the service error taxonomy to HTTP statuses.
// Not-found always wins over forbidden because the services resolve existence
// first.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.SendJSONError(w, "Record not found", http.StatusNotFound)
	case errors.Is(err, services.ErrForbidden):
		utils.SendJSONError(w, "You do not have access to this record", http.StatusForbidden)
	case errors.Is(err, services.ErrValidation):
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		log.Error().Err(err).Msg("Unhandled service error")
		utils.SendJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}

type CommonHandler struct {
	db database.Service
}

func NewCommonHandler(db database.Service) *CommonHandler {
	return &CommonHandler{db: db}
}

func (h *CommonHandler) HelloWorldHandler(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Smart AI Tools API"})
}

func (h *CommonHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, h.db.Health())
}
