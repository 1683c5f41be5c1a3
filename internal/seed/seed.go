// Package seed loads the demo dataset for evaluation environments.
package seed

import (
	"context"

	"github.com/chikoro/feeledger/internal/clock"
	paymentdomain "github.com/chikoro/feeledger/internal/payment/domain"
	studentdomain "github.com/chikoro/feeledger/internal/student/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log         *zap.Logger
	StudentRepo studentdomain.Repository
	PaymentRepo paymentdomain.Repository
	Clock       clock.Clock
}

type Seeder struct {
	log         *zap.Logger
	studentRepo studentdomain.Repository
	paymentRepo paymentdomain.Repository
	clock       clock.Clock
}

func New(p Params) *Seeder {
	return &Seeder{
		log:         p.Log.Named("seed"),
		studentRepo: p.StudentRepo,
		paymentRepo: p.PaymentRepo,
		clock:       p.Clock,
	}
}

// Load writes the sample records with fixed ids. Re-running overwrites them
// in place, resetting any balances the demo mutated.
func (s *Seeder) Load(ctx context.Context) error {
	now := s.clock.Now()

	students := sampleStudents()
	for i := range students {
		students[i].CreatedAt = now
		if err := s.studentRepo.Insert(ctx, &students[i]); err != nil {
			return err
		}
	}

	payments := samplePayments()
	for i := range payments {
		payments[i].CreatedAt = now
		if err := s.paymentRepo.Insert(ctx, &payments[i]); err != nil {
			return err
		}
	}

	s.log.Info("sample data loaded",
		zap.Int("students", len(students)),
		zap.Int("payments", len(payments)),
	)
	return nil
}

func sampleStudents() []studentdomain.Student {
	return []studentdomain.Student{
		{
			ID:            "1",
			Name:          "Michael Chen",
			Class:         "Grade 11B",
			GuardianName:  "Linda Chen",
			GuardianPhone: "+263 77 123 4567",
			GuardianEmail: "linda.chen@email.com",
			Balance:       1250,
			LastPayment:   "2024-01-10",
			Status:        studentdomain.StatusOverdue,
		},
		{
			ID:            "2",
			Name:          "Sarah Williams",
			Class:         "Grade 9A",
			GuardianName:  "John Williams",
			GuardianPhone: "+263 77 234 5678",
			GuardianEmail: "john.williams@email.com",
			Balance:       850,
			LastPayment:   "2024-01-15",
			Status:        studentdomain.StatusPending,
		},
		{
			ID:            "3",
			Name:          "David Brown",
			Class:         "Grade 12C",
			GuardianName:  "Mary Brown",
			GuardianPhone: "+263 77 345 6789",
			GuardianEmail: "mary.brown@email.com",
			Balance:       2100,
			LastPayment:   "2023-12-20",
			Status:        studentdomain.StatusOverdue,
		},
		{
			ID:            "4",
			Name:          "Emma Davis",
			Class:         "Grade 10A",
			GuardianName:  "Robert Davis",
			GuardianPhone: "+263 77 456 7890",
			GuardianEmail: "robert.davis@email.com",
			Balance:       0,
			LastPayment:   "2024-01-20",
			Status:        studentdomain.StatusPaid,
		},
		{
			ID:            "5",
			Name:          "James Wilson",
			Class:         "Grade 11A",
			GuardianName:  "Jennifer Wilson",
			GuardianPhone: "+263 77 567 8901",
			GuardianEmail: "jennifer.wilson@email.com",
			Balance:       1200,
			LastPayment:   "2024-01-12",
			Status:        studentdomain.StatusPending,
		},
		{
			ID:            "6",
			Name:          "Sophie Miller",
			Class:         "Grade 9B",
			GuardianName:  "Mark Miller",
			GuardianPhone: "+263 77 678 9012",
			GuardianEmail: "mark.miller@email.com",
			Balance:       0,
			LastPayment:   "2024-01-18",
			Status:        studentdomain.StatusPaid,
		},
	}
}

func samplePayments() []paymentdomain.Payment {
	return []paymentdomain.Payment{
		{
			ID:            "p1",
			StudentID:     "1",
			StudentName:   "Michael Chen",
			Amount:        1200,
			PaymentMethod: paymentdomain.MethodEcocash,
			Reference:     "EC12345",
			Description:   "School Fees - January",
			Date:          "2024-01-10",
			RecordedBy:    "Admin",
			ReceiptNumber: "REC001",
			Status:        paymentdomain.StatusCompleted,
		},
		{
			ID:            "p2",
			StudentID:     "2",
			StudentName:   "Sarah Williams",
			Amount:        1200,
			PaymentMethod: paymentdomain.MethodBankTransfer,
			Reference:     "BT67890",
			Description:   "School Fees - January",
			Date:          "2024-01-15",
			RecordedBy:    "Admin",
			ReceiptNumber: "REC002",
			Status:        paymentdomain.StatusCompleted,
		},
	}
}

var Module = fx.Module("seed",
	fx.Provide(New),
)
