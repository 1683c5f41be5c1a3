// Package domain contains the payment reminder record.
package domain

import (
	"context"
	"errors"
	"time"

	studentdomain "github.com/chikoro/feeledger/internal/student/domain"
)

// Reminder is the stored shape of reminder:<id>. It is the audit trail of a
// nudge sent to a guardian, snapshotting the balance at send time.
type Reminder struct {
	ID            string    `json:"id"`
	StudentID     string    `json:"studentId"`
	StudentName   string    `json:"studentName"`
	GuardianEmail string    `json:"guardianEmail"`
	GuardianPhone string    `json:"guardianPhone"`
	Balance       float64   `json:"balance"`
	Message       string    `json:"message"`
	SentBy        string    `json:"sentBy"`
	SentAt        time.Time `json:"sentAt"`
}

type SendRequest struct {
	StudentID string `json:"studentId"`
}

var ErrStudentNotFound = errors.New("student not found")

type Repository interface {
	Insert(ctx context.Context, r *Reminder) error
	List(ctx context.Context) ([]Reminder, error)
}

type Service interface {
	// Send records the reminder and hands it to the configured delivery
	// channel. Delivery failures are logged, not surfaced; the audit
	// record is the contract.
	Send(ctx context.Context, actor studentdomain.Actor, req SendRequest) (Reminder, error)
	List(ctx context.Context) ([]Reminder, error)
}
