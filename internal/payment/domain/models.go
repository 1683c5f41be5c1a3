// Package domain contains the fee payment record and its aggregation logic.
package domain

import (
	"context"
	"errors"
	"time"

	studentdomain "github.com/chikoro/feeledger/internal/student/domain"
)

type Method string

const (
	MethodCash         Method = "cash"
	MethodEcocash      Method = "ecocash"
	MethodBankTransfer Method = "bank_transfer"
	MethodCard         Method = "card"
)

// ParseMethod validates a raw payment method string.
func ParseMethod(raw string) (Method, error) {
	switch Method(raw) {
	case MethodCash, MethodEcocash, MethodBankTransfer, MethodCard:
		return Method(raw), nil
	default:
		return "", ErrInvalidMethod
	}
}

type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
	StatusFailed    Status = "failed"
)

// Payment is the stored shape of payment:<id>. StudentName and ReceiptNumber
// are denormalized at creation time; they do not track later edits to the
// student record.
type Payment struct {
	ID            string    `json:"id"`
	StudentID     string    `json:"studentId"`
	StudentName   string    `json:"studentName"`
	Amount        float64   `json:"amount"`
	PaymentMethod Method    `json:"paymentMethod"`
	Reference     string    `json:"reference,omitempty"`
	Description   string    `json:"description"`
	Date          string    `json:"date"`
	RecordedBy    string    `json:"recordedBy"`
	ReceiptNumber string    `json:"receiptNumber"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
}

// Bucket is one window of the payment statistics rollup.
type Bucket struct {
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// Stats aggregates completed payments over overlapping calendar windows.
type Stats struct {
	Today     Bucket `json:"today"`
	ThisWeek  Bucket `json:"thisWeek"`
	ThisMonth Bucket `json:"thisMonth"`
}

// ComputeStats rolls completed payments into today / this week / this month
// buckets. The week starts on the most recent Sunday and the month on its
// first day, both at midnight UTC, so a payment dated on the boundary day
// counts. Buckets overlap: today's payments appear in all three.
func ComputeStats(payments []Payment, now time.Time) Stats {
	now = now.UTC()
	today := now.Format(studentdomain.DateLayout)

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekStart := midnight.AddDate(0, 0, -int(now.Weekday()))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var stats Stats
	for _, p := range payments {
		if p.Status != StatusCompleted {
			continue
		}
		paid, err := time.ParseInLocation(studentdomain.DateLayout, p.Date, time.UTC)
		if err != nil {
			continue
		}
		if p.Date == today {
			stats.Today.Amount += p.Amount
			stats.Today.Count++
		}
		if !paid.Before(weekStart) {
			stats.ThisWeek.Amount += p.Amount
			stats.ThisWeek.Count++
		}
		if !paid.Before(monthStart) {
			stats.ThisMonth.Amount += p.Amount
			stats.ThisMonth.Count++
		}
	}
	return stats
}

type CreatePaymentRequest struct {
	StudentID     string  `json:"studentId"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"paymentMethod"`
	Reference     string  `json:"reference"`
	Description   string  `json:"description"`
	Date          string  `json:"date"`
	Status        string  `json:"status"`
}

// ListFilter narrows List results; the zero value means no filtering beyond
// the actor's own scope.
type ListFilter struct {
	StudentID string
}

var (
	ErrNotFound        = errors.New("payment not found")
	ErrStudentNotFound = errors.New("student not found")
	ErrNotLinked       = errors.New("student not linked to parent")
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrInvalidMethod   = errors.New("invalid_payment_method")
	ErrInvalidStatus   = errors.New("invalid_status")
)

type Repository interface {
	Insert(ctx context.Context, p *Payment) error
	FindByID(ctx context.Context, id string) (*Payment, error)
	List(ctx context.Context) ([]Payment, error)
}

type Service interface {
	// List returns payments visible to the actor, newest first by record
	// order, optionally narrowed to one student.
	List(ctx context.Context, actor studentdomain.Actor, filter ListFilter) ([]Payment, error)
	Get(ctx context.Context, id string) (Payment, error)
	// Create records the payment and settles it against the student's
	// balance. The two writes are not atomic; concurrent payments against
	// the same student can lose a balance update.
	Create(ctx context.Context, actor studentdomain.Actor, req CreatePaymentRequest) (Payment, error)
	// Stats aggregates completed payments for the school-side dashboard.
	Stats(ctx context.Context) (Stats, error)
}
