package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"quizhub/models"

	"github.com/gin-gonic/gin"
)

// respondError maps the service error taxonomy onto HTTP statuses: missing
// entities are 404, writes to completed attempts 400, invalid input 422 and
// anything else a logged 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrQuizNotFound),
		errors.Is(err, models.ErrQuestionNotFound),
		errors.Is(err, models.ErrAttemptNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrAttemptCompleted):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNegativeTimeTaken):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		log.Printf("Unhandled error on %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// paramID parses a numeric path parameter. On failure it writes a 400
// response and returns false.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}
