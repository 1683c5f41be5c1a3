package service

import (
	"context"
	"strings"
	"time"

	"github.com/chikoro/feeledger/internal/clock"
	"github.com/chikoro/feeledger/internal/config"
	identitydomain "github.com/chikoro/feeledger/internal/identity/domain"
	"github.com/chikoro/feeledger/internal/kv"
	"github.com/chikoro/feeledger/internal/student/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Repo     domain.Repository
	Identity identitydomain.Service
	Policy   *config.PolicyHolder
	GenID    *kv.IDGenerator
	Clock    clock.Clock
}

type Service struct {
	log      *zap.Logger
	repo     domain.Repository
	identity identitydomain.Service
	policy   *config.PolicyHolder
	genID    *kv.IDGenerator
	clock    clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("student.service"),
		repo:     p.Repo,
		identity: p.Identity,
		policy:   p.Policy,
		genID:    p.GenID,
		clock:    p.Clock,
	}
}

func (s *Service) List(ctx context.Context, actor domain.Actor) ([]domain.Student, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if actor.Role.IsStaff() {
		return all, nil
	}

	linked, err := s.repo.ListLinkedIDs(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	visible := make(map[string]struct{}, len(linked))
	for _, id := range linked {
		visible[id] = struct{}{}
	}

	scoped := make([]domain.Student, 0, len(visible))
	for _, st := range all {
		if _, ok := visible[st.ID]; ok {
			scoped = append(scoped, st)
		}
	}
	return scoped, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Student, error) {
	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Student{}, err
	}
	if st == nil {
		return domain.Student{}, domain.ErrNotFound
	}
	return *st, nil
}

func (s *Service) Create(ctx context.Context, actor domain.Actor, req domain.CreateStudentRequest) (domain.Student, error) {
	name := strings.TrimSpace(req.Name)
	class := strings.TrimSpace(req.Class)
	if name == "" || class == "" {
		return domain.Student{}, domain.ErrMissingFields
	}

	now := s.clock.Now()
	status := domain.StatusPending
	if raw := strings.TrimSpace(req.Status); raw != "" {
		parsed, err := domain.ParseStatus(raw)
		if err != nil {
			return domain.Student{}, err
		}
		status = parsed
	}

	student := domain.Student{
		ID:            s.genID.NewID(),
		Name:          name,
		Class:         class,
		GuardianName:  strings.TrimSpace(req.GuardianName),
		GuardianPhone: strings.TrimSpace(req.GuardianPhone),
		GuardianEmail: strings.ToLower(strings.TrimSpace(req.GuardianEmail)),
		Balance:       req.Balance,
		LastPayment:   strings.TrimSpace(req.LastPayment),
		Status:        status,
		CreatedAt:     now,
		CreatedBy:     actor.UserID,
		UpdatedAt:     now,
		UpdatedBy:     actor.UserID,
	}

	if err := s.repo.Insert(ctx, &student); err != nil {
		return domain.Student{}, err
	}

	// Linking is best effort: a missing or future parent account never
	// fails student creation.
	if student.GuardianEmail != "" {
		if err := s.linkGuardian(ctx, student); err != nil {
			s.log.Warn("guardian link failed",
				zap.String("student_id", student.ID),
				zap.Error(err),
			)
		}
	}

	s.log.Info("student created",
		zap.String("student_id", student.ID),
		zap.String("class", student.Class),
	)
	return student, nil
}

func (s *Service) linkGuardian(ctx context.Context, student domain.Student) error {
	parent, err := s.identity.FindParentByEmail(ctx, student.GuardianEmail)
	if err != nil {
		return err
	}
	if parent == nil {
		return nil
	}
	return s.repo.LinkParent(ctx, domain.ParentLink{
		ParentID:  parent.ID,
		StudentID: student.ID,
		CreatedAt: s.clock.Now(),
	})
}

func (s *Service) Update(ctx context.Context, actor domain.Actor, id string, req domain.UpdateStudentRequest) (domain.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Student{}, err
	}
	if student == nil {
		return domain.Student{}, domain.ErrNotFound
	}

	if req.Name != nil {
		student.Name = strings.TrimSpace(*req.Name)
	}
	if req.Class != nil {
		student.Class = strings.TrimSpace(*req.Class)
	}
	if req.GuardianName != nil {
		student.GuardianName = strings.TrimSpace(*req.GuardianName)
	}
	if req.GuardianPhone != nil {
		student.GuardianPhone = strings.TrimSpace(*req.GuardianPhone)
	}
	if req.GuardianEmail != nil {
		student.GuardianEmail = strings.ToLower(strings.TrimSpace(*req.GuardianEmail))
	}
	if req.Balance != nil {
		student.Balance = *req.Balance
	}
	if req.Status != nil {
		parsed, err := domain.ParseStatus(*req.Status)
		if err != nil {
			return domain.Student{}, err
		}
		student.Status = parsed
	}
	student.UpdatedAt = s.clock.Now()
	student.UpdatedBy = actor.UserID

	if err := s.repo.Save(ctx, student); err != nil {
		return domain.Student{}, err
	}
	return *student, nil
}

func (s *Service) ReconcileStatuses(ctx context.Context) (domain.ReconcileResult, error) {
	window := time.Duration(s.policy.Current().OverdueAfterDays) * 24 * time.Hour
	now := s.clock.Now()

	students, err := s.repo.List(ctx)
	if err != nil {
		return domain.ReconcileResult{}, err
	}

	result := domain.ReconcileResult{Checked: len(students)}
	for i := range students {
		next := domain.ReconcileStatus(students[i], window, now)
		if next == domain.StatusOverdue {
			result.Flagged++
		}
		if next == students[i].Status {
			continue
		}
		students[i].Status = next
		students[i].UpdatedAt = now
		if err := s.repo.Save(ctx, &students[i]); err != nil {
			return result, err
		}
	}

	s.log.Info("statuses reconciled",
		zap.Int("checked", result.Checked),
		zap.Int("flagged", result.Flagged),
	)
	return result, nil
}
