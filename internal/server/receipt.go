package server

import (
	"io"
	"net/http"
	"strings"

	receiptdomain "github.com/chikoro/feeledger/internal/receipt/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) GenerateReceipt(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req receiptdomain.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.PaymentID) == "" {
		AbortWithError(c, newValidationError("paymentId", "required", "paymentId is required"))
		return
	}

	receipt, err := s.receiptSvc.Generate(c.Request.Context(), actor, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, receipt)
}

func (s *Server) ReceiptPDF(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	doc, err := s.receiptSvc.RenderPDF(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	body, err := io.ReadAll(doc)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="receipt-`+id+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", body)
}
