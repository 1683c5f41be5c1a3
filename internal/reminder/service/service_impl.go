package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/chikoro/feeledger/internal/clock"
	"github.com/chikoro/feeledger/internal/config"
	"github.com/chikoro/feeledger/internal/kv"
	"github.com/chikoro/feeledger/internal/providers/email"
	"github.com/chikoro/feeledger/internal/reminder/domain"
	studentdomain "github.com/chikoro/feeledger/internal/student/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log         *zap.Logger
	Repo        domain.Repository
	StudentRepo studentdomain.Repository
	Policy      *config.PolicyHolder
	Email       email.Provider
	GenID       *kv.IDGenerator
	Clock       clock.Clock
}

type Service struct {
	log         *zap.Logger
	repo        domain.Repository
	studentRepo studentdomain.Repository
	policy      *config.PolicyHolder
	email       email.Provider
	genID       *kv.IDGenerator
	clock       clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		log:         p.Log.Named("reminder.service"),
		repo:        p.Repo,
		studentRepo: p.StudentRepo,
		policy:      p.Policy,
		email:       p.Email,
		genID:       p.GenID,
		clock:       p.Clock,
	}
}

func (s *Service) Send(ctx context.Context, actor studentdomain.Actor, req domain.SendRequest) (domain.Reminder, error) {
	student, err := s.studentRepo.FindByID(ctx, strings.TrimSpace(req.StudentID))
	if err != nil {
		return domain.Reminder{}, err
	}
	if student == nil {
		return domain.Reminder{}, domain.ErrStudentNotFound
	}

	policy := s.policy.Current()
	reminder := domain.Reminder{
		ID:            s.genID.NewID(),
		StudentID:     student.ID,
		StudentName:   student.Name,
		GuardianEmail: student.GuardianEmail,
		GuardianPhone: student.GuardianPhone,
		Balance:       student.Balance,
		Message:       fmt.Sprintf(policy.ReminderTemplate, student.Name, student.Balance),
		SentBy:        actor.Name,
		SentAt:        s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, &reminder); err != nil {
		return domain.Reminder{}, err
	}

	if reminder.GuardianEmail != "" {
		if err := s.email.Send(ctx, []string{reminder.GuardianEmail}, policy.ReminderSubject, reminder.Message); err != nil {
			s.log.Warn("reminder delivery failed",
				zap.String("reminder_id", reminder.ID),
				zap.String("student_id", student.ID),
				zap.Error(err),
			)
		}
	}

	s.log.Info("payment reminder sent",
		zap.String("student_id", student.ID),
		zap.String("guardian_email", reminder.GuardianEmail),
	)
	return reminder, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Reminder, error) {
	return s.repo.List(ctx)
}
