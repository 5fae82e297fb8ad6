package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medlabel/medlabel-backend/internal/services"
)

type VocabularyHandler struct {
	svc services.VocabularyService
}

func NewVocabularyHandler(svc services.VocabularyService) *VocabularyHandler {
	return &VocabularyHandler{svc: svc}
}

func isVocabInputError(err error) bool {
	return errors.Is(err, services.ErrUnknownCategory) || errors.Is(err, services.ErrMissingVocabValue)
}

// GET /api/vocabulary/:category
func (h *VocabularyHandler) List(c *gin.Context) {
	values, err := h.svc.List(c.Request.Context(), c.Param("category"))
	if err != nil {
		if isVocabInputError(err) {
			RespondError(c, http.StatusBadRequest, "bad_request", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "store_unavailable", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"values": values})
}

type addVocabularyRequest struct {
	Value string `json:"value"`
}

// POST /api/vocabulary/:category
func (h *VocabularyHandler) Add(c *gin.Context) {
	var req addVocabularyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	values, err := h.svc.Add(c.Request.Context(), c.Param("category"), req.Value)
	if err != nil {
		if isVocabInputError(err) {
			RespondError(c, http.StatusBadRequest, "bad_request", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "store_unavailable", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"values": values})
}
