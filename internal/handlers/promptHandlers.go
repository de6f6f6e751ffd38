package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	_ "github.com/joho/godotenv/autoload"

	"smartaitools/internal/models"
	"smartaitools/internal/services"
	"smartaitools/internal/utils"
)

type PromptHandler struct {
	service services.PromptService
	enhance services.EnhanceService
}

func NewPromptHandler(service services.PromptService, enhance services.EnhanceService) *PromptHandler {
	return &PromptHandler{service: service, enhance: enhance}
}

func (h *PromptHandler) ListPrompts(w http.ResponseWriter, r *http.Request) {
	filter, err := services.ParseRecordFilter(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	page, err := h.service.List(r.Context(), filter, utils.OptionalUserID(r.Context()))
	if err != nil {
		log.Error().Err(err).Msg("Error listing prompts")
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, page)
}

func (h *PromptHandler) GetPromptByID(w http.ResponseWriter, r *http.Request) {
	promptID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	p, err := h.service.GetByID(r.Context(), promptID, utils.OptionalUserID(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, p)
}

func (h *PromptHandler) CreatePrompt(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	var reqBody models.CreatePromptRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		log.Error().Err(err).Msg("Error decoding request body for CreatePrompt")
		utils.SendJSONError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.service.Create(r.Context(), userID, reqBody)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().Str("prompt_id", p.ID.Hex()).Msg("Successfully created prompt")
	utils.RespondWithJSON(w, http.StatusCreated, p)
}

func (h *PromptHandler) UpdatePrompt(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	promptID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	var reqBody models.UpdatePromptRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		log.Error().Err(err).Msg("Error decoding request body for UpdatePrompt")
		utils.SendJSONError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.service.Update(r.Context(), promptID, userID, reqBody)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, p)
}

func (h *PromptHandler) DeletePrompt(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	promptID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	if err := h.service.Delete(r.Context(), promptID, userID); err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Prompt deleted successfully"})
}

func (h *PromptHandler) RatePrompt(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	promptID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	var reqBody models.RateRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		utils.SendJSONError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.service.Rate(r.Context(), promptID, userID, reqBody.Rating)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, p)
}

// EnhancePrompt returns an improved version of the prompt's content without
// touching the stored record.
func (h *PromptHandler) EnhancePrompt(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	promptID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	var reqBody models.EnhancePromptRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		utils.SendJSONError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.service.GetByID(r.Context(), promptID, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	enhanced, err := h.enhance.EnhancePrompt(r.Context(), p, reqBody.Instruction)
	if err != nil {
		log.Error().Err(err).Str("prompt_id", promptID.Hex()).Msg("Error enhancing prompt")
		utils.SendJSONError(w, "Failed to enhance prompt", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"enhanced": enhanced})
}
