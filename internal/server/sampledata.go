package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) InitSampleData(c *gin.Context) {
	if err := s.seeder.Load(c.Request.Context()); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Sample data initialized successfully"})
}
