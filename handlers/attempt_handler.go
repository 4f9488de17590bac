package handlers

import (
	"net/http"

	"quizhub/services"

	"github.com/gin-gonic/gin"
)

type AttemptHandler struct {
	attemptService *services.AttemptService
}

func NewAttemptHandler(attemptService *services.AttemptService) *AttemptHandler {
	return &AttemptHandler{
		attemptService: attemptService,
	}
}

func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	var req services.StartAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	attempt, err := h.attemptService.CreateAttempt(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, attempt)
}

func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	attemptID, ok := paramID(c, "id")
	if !ok {
		return
	}

	attempt, err := h.attemptService.GetAttempt(attemptID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

func (h *AttemptHandler) SubmitAnswers(c *gin.Context) {
	attemptID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req services.SubmitAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	attempt, err := h.attemptService.SubmitAnswers(attemptID, req.Answers)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

func (h *AttemptHandler) GetResults(c *gin.Context) {
	attemptID, ok := paramID(c, "id")
	if !ok {
		return
	}

	result, err := h.attemptService.GetResults(attemptID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *AttemptHandler) UpdateTime(c *gin.Context) {
	attemptID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.attemptService.UpdateTimeTaken(attemptID, req.TimeTaken); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Time updated successfully"})
}

func (h *AttemptHandler) DeleteAttempt(c *gin.Context) {
	attemptID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.attemptService.DeleteAttempt(attemptID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Quiz attempt deleted successfully"})
}
