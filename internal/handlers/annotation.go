package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/medlabel/medlabel-backend/internal/middleware"
	"github.com/medlabel/medlabel-backend/internal/services"
)

type AnnotationHandler struct {
	svc services.AnnotationService
}

func NewAnnotationHandler(svc services.AnnotationService) *AnnotationHandler {
	return &AnnotationHandler{svc: svc}
}

// GET /api/assignment
func (h *AnnotationHandler) GetAssignment(c *gin.Context) {
	assignment, err := h.svc.GetAssignment(c.Request.Context(), middleware.OperatorID(c))
	if errors.Is(err, services.ErrNoWorkAvailable) {
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "store_unavailable", err)
		return
	}
	RespondOK(c, assignment)
}

type submitCorrectionRequest struct {
	Rows []services.CorrectionRow `json:"rows"`
}

// POST /api/assignment/:docID/correction
func (h *AnnotationHandler) SubmitCorrection(c *gin.Context) {
	docID, err := strconv.ParseInt(c.Param("docID"), 10, 64)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid document id"))
		return
	}
	var req submitCorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	result, err := h.svc.SubmitCorrection(c.Request.Context(), middleware.OperatorID(c), docID, req.Rows)
	if errors.Is(err, services.ErrClaimConflict) {
		// The corrected rows were persisted; only the ownership was lost.
		c.JSON(http.StatusConflict, result)
		return
	}
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "store_unavailable", err)
		return
	}
	RespondOK(c, result)
}

// POST /api/assignment/:docID/discard
func (h *AnnotationHandler) DiscardAssignment(c *gin.Context) {
	docID, err := strconv.ParseInt(c.Param("docID"), 10, 64)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid document id"))
		return
	}
	if err := h.svc.DiscardAssignment(c.Request.Context(), middleware.OperatorID(c), docID); err != nil {
		RespondError(c, http.StatusInternalServerError, "store_unavailable", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"discarded": docID})
}
