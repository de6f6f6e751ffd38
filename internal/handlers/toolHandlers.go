package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"smartaitools/internal/models"
	"smartaitools/internal/services"
	"smartaitools/internal/utils"
)

type ToolHandler struct {
	service services.ToolService
}

func NewToolHandler(service services.ToolService) *ToolHandler {
	return &ToolHandler{service: service}
}

func (h *ToolHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	filter, err := services.ParseRecordFilter(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	page, err := h.service.List(r.Context(), filter, utils.OptionalUserID(r.Context()))
	if err != nil {
		log.Error().Err(err).Msg("Error listing tools")
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, page)
}

func (h *ToolHandler) GetToolByID(w http.ResponseWriter, r *http.Request) {
	toolID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	t, err := h.service.GetByID(r.Context(), toolID, utils.OptionalUserID(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, t)
}

func (h *ToolHandler) CreateTool(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	var reqBody models.CreateToolRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		log.Error().Err(err).Msg("Error decoding request body for CreateTool")
		utils.SendJSONError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	t, err := h.service.Create(r.Context(), userID, reqBody)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().Str("tool_id", t.ID.Hex()).Msg("Successfully created tool")
	utils.RespondWithJSON(w, http.StatusCreated, t)
}

func (h *ToolHandler) UpdateTool(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	toolID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	var reqBody models.UpdateToolRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		log.Error().Err(err).Msg("Error decoding request body for UpdateTool")
		utils.SendJSONError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	t, err := h.service.Update(r.Context(), toolID, userID, reqBody)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, t)
}

func (h *ToolHandler) DeleteTool(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	toolID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	if err := h.service.Delete(r.Context(), toolID, userID); err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Tool deleted successfully"})
}

func (h *ToolHandler) RateTool(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	toolID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	var reqBody models.RateRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		utils.SendJSONError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	t, err := h.service.Rate(r.Context(), toolID, userID, reqBody.Rating)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, t)
}
