package service

import (
	"context"
	"strings"

	"github.com/chikoro/feeledger/internal/clock"
	"github.com/chikoro/feeledger/internal/kv"
	"github.com/chikoro/feeledger/internal/payment/domain"
	studentdomain "github.com/chikoro/feeledger/internal/student/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log         *zap.Logger
	Repo        domain.Repository
	StudentRepo studentdomain.Repository
	GenID       *kv.IDGenerator
	Clock       clock.Clock
}

type Service struct {
	log         *zap.Logger
	repo        domain.Repository
	studentRepo studentdomain.Repository
	genID       *kv.IDGenerator
	clock       clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		log:         p.Log.Named("payment.service"),
		repo:        p.Repo,
		studentRepo: p.StudentRepo,
		genID:       p.GenID,
		clock:       p.Clock,
	}
}

func (s *Service) List(ctx context.Context, actor studentdomain.Actor, filter domain.ListFilter) ([]domain.Payment, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if !actor.Role.IsStaff() {
		linked, err := s.studentRepo.ListLinkedIDs(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		visible := make(map[string]struct{}, len(linked))
		for _, id := range linked {
			visible[id] = struct{}{}
		}
		scoped := all[:0]
		for _, p := range all {
			if _, ok := visible[p.StudentID]; ok {
				scoped = append(scoped, p)
			}
		}
		all = scoped
	}

	if filter.StudentID == "" {
		return all, nil
	}
	filtered := make([]domain.Payment, 0, len(all))
	for _, p := range all {
		if p.StudentID == filter.StudentID {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Payment, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Payment{}, err
	}
	if p == nil {
		return domain.Payment{}, domain.ErrNotFound
	}
	return *p, nil
}

func (s *Service) Create(ctx context.Context, actor studentdomain.Actor, req domain.CreatePaymentRequest) (domain.Payment, error) {
	if req.Amount <= 0 {
		return domain.Payment{}, domain.ErrInvalidAmount
	}
	method, err := domain.ParseMethod(strings.TrimSpace(req.PaymentMethod))
	if err != nil {
		return domain.Payment{}, err
	}

	status := domain.StatusCompleted
	if raw := strings.TrimSpace(req.Status); raw != "" {
		switch domain.Status(raw) {
		case domain.StatusCompleted, domain.StatusPending, domain.StatusFailed:
			status = domain.Status(raw)
		default:
			return domain.Payment{}, domain.ErrInvalidStatus
		}
	}

	student, err := s.studentRepo.FindByID(ctx, req.StudentID)
	if err != nil {
		return domain.Payment{}, err
	}
	if student == nil {
		return domain.Payment{}, domain.ErrStudentNotFound
	}

	if !actor.Role.IsStaff() {
		linked, err := s.studentRepo.IsLinked(ctx, actor.UserID, req.StudentID)
		if err != nil {
			return domain.Payment{}, err
		}
		if !linked {
			return domain.Payment{}, domain.ErrNotLinked
		}
	}

	now := s.clock.Now()
	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = now.UTC().Format(studentdomain.DateLayout)
	}

	payment := domain.Payment{
		ID:            s.genID.NewID(),
		StudentID:     student.ID,
		StudentName:   student.Name,
		Amount:        req.Amount,
		PaymentMethod: method,
		Reference:     strings.TrimSpace(req.Reference),
		Description:   strings.TrimSpace(req.Description),
		Date:          date,
		RecordedBy:    actor.Name,
		ReceiptNumber: s.genID.NewReceiptNumber(),
		Status:        status,
		CreatedAt:     now,
		CreatedBy:     actor.UserID,
	}

	// Two independent writes with no transaction around them. A crash or
	// a concurrent payment between them leaves the payment recorded and
	// the balance stale; ReconcileStatuses is the repair path.
	if err := s.repo.Insert(ctx, &payment); err != nil {
		return domain.Payment{}, err
	}

	updated := studentdomain.ApplyPayment(*student, payment.Amount, payment.Date, now)
	if err := s.studentRepo.Save(ctx, &updated); err != nil {
		s.log.Error("balance update failed after payment write",
			zap.String("payment_id", payment.ID),
			zap.String("student_id", student.ID),
			zap.Error(err),
		)
		return domain.Payment{}, err
	}

	s.log.Info("payment recorded",
		zap.String("payment_id", payment.ID),
		zap.String("student_id", student.ID),
		zap.Float64("amount", payment.Amount),
		zap.String("method", string(method)),
	)
	return payment, nil
}

func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	payments, err := s.repo.List(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	return domain.ComputeStats(payments, s.clock.Now()), nil
}
