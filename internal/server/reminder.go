package server

import (
	"net/http"
	"strings"

	reminderdomain "github.com/chikoro/feeledger/internal/reminder/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) SendReminder(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req reminderdomain.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.StudentID) == "" {
		AbortWithError(c, newValidationError("studentId", "required", "studentId is required"))
		return
	}

	reminder, err := s.reminderSvc.Send(c.Request.Context(), actor, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Reminder sent successfully",
		"reminder": reminder,
	})
}

func (s *Server) ListReminders(c *gin.Context) {
	reminders, err := s.reminderSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, reminders)
}
