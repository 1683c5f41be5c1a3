// Package domain contains the student record, its payment arithmetic and the
// slice's service contracts.
package domain

import (
	"context"
	"errors"
	"time"

	identitydomain "github.com/chikoro/feeledger/internal/identity/domain"
)

// Status is the fee standing of a student record.
type Status string

const (
	StatusPaid    Status = "paid"
	StatusPending Status = "pending"
	StatusOverdue Status = "overdue"
)

// DateLayout is the wire format for day-granular fields such as lastPayment.
const DateLayout = "2006-01-02"

// ParseStatus validates a caller-supplied status string.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusPaid, StatusPending, StatusOverdue:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Student is the stored shape of student:<id>. Balance is the outstanding
// amount, not a running total of charges.
type Student struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Class         string    `json:"class"`
	GuardianName  string    `json:"guardianName"`
	GuardianPhone string    `json:"guardianPhone"`
	GuardianEmail string    `json:"guardianEmail"`
	Balance       float64   `json:"balance"`
	LastPayment   string    `json:"lastPayment"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt,omitempty"`
	UpdatedBy     string    `json:"updatedBy,omitempty"`
}

// ParentLink is the stored shape of student_parent:<parentID>:<studentID>.
// It is the canonical record of which students a parent account may see.
type ParentLink struct {
	ParentID  string    `json:"parentId"`
	StudentID string    `json:"studentId"`
	CreatedAt time.Time `json:"createdAt"`
}

// ApplyPayment returns the student after a completed payment of amount.
// The balance clips at zero; an overpayment never goes negative. Status is
// recomputed from the new balance alone, so a previously overdue student
// drops back to pending until the next reconciliation run.
func ApplyPayment(s Student, amount float64, paidOn string, now time.Time) Student {
	s.Balance -= amount
	if s.Balance < 0 {
		s.Balance = 0
	}
	if s.Balance == 0 {
		s.Status = StatusPaid
	} else {
		s.Status = StatusPending
	}
	s.LastPayment = paidOn
	s.UpdatedAt = now
	return s
}

// ReconcileStatus returns the status the student should carry given the
// overdue window. Paid students are never flagged; a student with an
// outstanding balance goes overdue once the last payment (or, absent any
// payment, the record's creation) falls outside the window.
func ReconcileStatus(s Student, overdueAfter time.Duration, now time.Time) Status {
	if s.Balance <= 0 {
		return StatusPaid
	}

	anchor := s.CreatedAt
	if s.LastPayment != "" {
		if t, err := time.ParseInLocation(DateLayout, s.LastPayment, time.UTC); err == nil {
			anchor = t
		}
	}
	if now.Sub(anchor) > overdueAfter {
		return StatusOverdue
	}
	return StatusPending
}

type CreateStudentRequest struct {
	Name          string  `json:"name"`
	Class         string  `json:"class"`
	GuardianName  string  `json:"guardianName"`
	GuardianPhone string  `json:"guardianPhone"`
	GuardianEmail string  `json:"guardianEmail"`
	Balance       float64 `json:"balance"`
	LastPayment   string  `json:"lastPayment"`
	// Status defaults to pending when empty, whatever the balance; seed
	// data and imports may override it.
	Status string `json:"status"`
}

// UpdateStudentRequest carries a partial update; nil fields keep the stored
// value.
type UpdateStudentRequest struct {
	Name          *string  `json:"name"`
	Class         *string  `json:"class"`
	GuardianName  *string  `json:"guardianName"`
	GuardianPhone *string  `json:"guardianPhone"`
	GuardianEmail *string  `json:"guardianEmail"`
	Balance       *float64 `json:"balance"`
	Status        *string  `json:"status"`
}

// ReconcileResult reports one reconciliation pass.
type ReconcileResult struct {
	Checked int `json:"checked"`
	Flagged int `json:"flagged"`
}

var (
	ErrNotFound      = errors.New("student not found")
	ErrMissingFields = errors.New("missing_fields")
	ErrInvalidStatus = errors.New("invalid_status")
)

type Repository interface {
	Insert(ctx context.Context, s *Student) error
	Save(ctx context.Context, s *Student) error
	FindByID(ctx context.Context, id string) (*Student, error)
	List(ctx context.Context) ([]Student, error)

	LinkParent(ctx context.Context, link ParentLink) error
	IsLinked(ctx context.Context, parentID, studentID string) (bool, error)
	ListLinkedIDs(ctx context.Context, parentID string) ([]string, error)
}

// Actor identifies who performs an operation, for audit fields and for
// record-level scoping of parent accounts.
type Actor struct {
	UserID string
	Name   string
	Role   identitydomain.Role
}

type Service interface {
	// List returns all students for staff, or only linked students for a
	// parent actor.
	List(ctx context.Context, actor Actor) ([]Student, error)
	Get(ctx context.Context, id string) (Student, error)
	Create(ctx context.Context, actor Actor, req CreateStudentRequest) (Student, error)
	Update(ctx context.Context, actor Actor, id string, req UpdateStudentRequest) (Student, error)
	// ReconcileStatuses sweeps every record and flags overdue balances per
	// the active policy window.
	ReconcileStatuses(ctx context.Context) (ReconcileResult, error)
}
