// Package domain contains the receipt projection built from a payment record.
package domain

import (
	"context"
	"errors"
	"io"
	"time"

	paymentdomain "github.com/chikoro/feeledger/internal/payment/domain"
	studentdomain "github.com/chikoro/feeledger/internal/student/domain"
)

// Receipt is the stored shape of receipt:<id>. It is a point-in-time
// projection of the payment; regenerating yields a new record with a fresh
// id but the same receipt number.
type Receipt struct {
	ID            string               `json:"id"`
	PaymentID     string               `json:"paymentId"`
	ReceiptNumber string               `json:"receiptNumber"`
	StudentName   string               `json:"studentName"`
	Amount        float64              `json:"amount"`
	Date          string               `json:"date"`
	Description   string               `json:"description"`
	PaymentMethod paymentdomain.Method `json:"paymentMethod"`
	IssuedBy      string               `json:"issuedBy"`
	ParentEmail   string               `json:"parentEmail,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
	CreatedBy     string               `json:"createdBy"`
}

// Build projects a payment into a receipt. The student record is optional;
// when it is missing the receipt simply carries no guardian email.
func Build(p paymentdomain.Payment, s *studentdomain.Student, id string, now time.Time, createdBy string) Receipt {
	r := Receipt{
		ID:            id,
		PaymentID:     p.ID,
		ReceiptNumber: p.ReceiptNumber,
		StudentName:   p.StudentName,
		Amount:        p.Amount,
		Date:          p.Date,
		Description:   p.Description,
		PaymentMethod: p.PaymentMethod,
		IssuedBy:      p.RecordedBy,
		CreatedAt:     now,
		CreatedBy:     createdBy,
	}
	if s != nil {
		r.ParentEmail = s.GuardianEmail
	}
	return r
}

type GenerateRequest struct {
	PaymentID string `json:"paymentId"`
}

var (
	ErrNotFound        = errors.New("receipt not found")
	ErrPaymentNotFound = errors.New("payment not found")
)

type Repository interface {
	Insert(ctx context.Context, r *Receipt) error
	FindByID(ctx context.Context, id string) (*Receipt, error)
	List(ctx context.Context) ([]Receipt, error)
}

type Service interface {
	// Generate projects the payment into a stored receipt record.
	Generate(ctx context.Context, actor studentdomain.Actor, req GenerateRequest) (Receipt, error)
	Get(ctx context.Context, id string) (Receipt, error)
	// RenderPDF returns the printable document for a stored receipt.
	RenderPDF(ctx context.Context, id string) (io.Reader, error)
}
