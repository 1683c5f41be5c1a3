package service

import (
	"context"
	"testing"
	"time"

	"github.com/chikoro/feeledger/internal/clock"
	identitydomain "github.com/chikoro/feeledger/internal/identity/domain"
	"github.com/chikoro/feeledger/internal/kv"
	"github.com/chikoro/feeledger/internal/payment/domain"
	"github.com/chikoro/feeledger/internal/payment/repository"
	studentdomain "github.com/chikoro/feeledger/internal/student/domain"
	studentrepository "github.com/chikoro/feeledger/internal/student/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fixture struct {
	svc         domain.Service
	repo        domain.Repository
	studentRepo studentdomain.Repository
	clock       *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := kv.NewMemoryStore()
	fake := clock.NewFakeClock(time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC))
	repo := repository.Provide(store)
	studentRepo := studentrepository.Provide(store)
	svc := New(Params{
		Log:         zaptest.NewLogger(t),
		Repo:        repo,
		StudentRepo: studentRepo,
		GenID:       kv.NewIDGenerator(),
		Clock:       fake,
	})
	return &fixture{svc: svc, repo: repo, studentRepo: studentRepo, clock: fake}
}

func (f *fixture) seedStudent(t *testing.T, ctx context.Context, id string, balance float64) studentdomain.Student {
	t.Helper()
	s := studentdomain.Student{
		ID:      id,
		Name:    "Michael Chen",
		Class:   "Grade 11B",
		Balance: balance,
		Status:  studentdomain.StatusOverdue,
	}
	require.NoError(t, f.studentRepo.Insert(ctx, &s))
	return s
}

func staffActor() studentdomain.Actor {
	return studentdomain.Actor{UserID: "staff-1", Name: "Admin", Role: identitydomain.RoleStaff}
}

func TestCreatePaymentSettlesBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedStudent(t, ctx, "s1", 1250)

	payment, err := f.svc.Create(ctx, staffActor(), domain.CreatePaymentRequest{
		StudentID:     "s1",
		Amount:        250,
		PaymentMethod: "ecocash",
		Description:   "School Fees - January",
	})
	require.NoError(t, err)
	require.Equal(t, "Michael Chen", payment.StudentName)
	require.Equal(t, domain.StatusCompleted, payment.Status)
	require.Equal(t, "2024-01-20", payment.Date)
	require.Equal(t, "Admin", payment.RecordedBy)
	require.Len(t, payment.ReceiptNumber, 9)

	student, err := f.studentRepo.FindByID(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, float64(1000), student.Balance)
	require.Equal(t, studentdomain.StatusPending, student.Status)
	require.Equal(t, "2024-01-20", student.LastPayment)
}

func TestCreatePaymentOverpaymentClips(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedStudent(t, ctx, "s1", 800)

	_, err := f.svc.Create(ctx, staffActor(), domain.CreatePaymentRequest{
		StudentID: "s1", Amount: 1000, PaymentMethod: "cash",
	})
	require.NoError(t, err)

	student, err := f.studentRepo.FindByID(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, float64(0), student.Balance)
	require.Equal(t, studentdomain.StatusPaid, student.Status)
}

func TestCreatePaymentValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedStudent(t, ctx, "s1", 500)

	_, err := f.svc.Create(ctx, staffActor(), domain.CreatePaymentRequest{
		StudentID: "s1", Amount: 0, PaymentMethod: "cash",
	})
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.svc.Create(ctx, staffActor(), domain.CreatePaymentRequest{
		StudentID: "s1", Amount: 100, PaymentMethod: "cheque",
	})
	require.ErrorIs(t, err, domain.ErrInvalidMethod)

	_, err = f.svc.Create(ctx, staffActor(), domain.CreatePaymentRequest{
		StudentID: "missing", Amount: 100, PaymentMethod: "cash",
	})
	require.ErrorIs(t, err, domain.ErrStudentNotFound)

	// None of the rejected requests may have written a payment record.
	all, err := f.repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestCreatePaymentParentMustBeLinked(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedStudent(t, ctx, "s1", 500)
	parent := studentdomain.Actor{UserID: "parent-1", Name: "Linda Chen", Role: identitydomain.RoleParent}

	_, err := f.svc.Create(ctx, parent, domain.CreatePaymentRequest{
		StudentID: "s1", Amount: 100, PaymentMethod: "card",
	})
	require.ErrorIs(t, err, domain.ErrNotLinked)

	require.NoError(t, f.studentRepo.LinkParent(ctx, studentdomain.ParentLink{
		ParentID: "parent-1", StudentID: "s1",
	}))

	_, err = f.svc.Create(ctx, parent, domain.CreatePaymentRequest{
		StudentID: "s1", Amount: 100, PaymentMethod: "card",
	})
	require.NoError(t, err)
}

func TestListScopesParents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedStudent(t, ctx, "s1", 500)
	f.seedStudent(t, ctx, "s2", 900)

	_, err := f.svc.Create(ctx, staffActor(), domain.CreatePaymentRequest{
		StudentID: "s1", Amount: 100, PaymentMethod: "cash",
	})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, staffActor(), domain.CreatePaymentRequest{
		StudentID: "s2", Amount: 200, PaymentMethod: "cash",
	})
	require.NoError(t, err)

	all, err := f.svc.List(ctx, staffActor(), domain.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	byStudent, err := f.svc.List(ctx, staffActor(), domain.ListFilter{StudentID: "s2"})
	require.NoError(t, err)
	require.Len(t, byStudent, 1)
	require.Equal(t, "s2", byStudent[0].StudentID)

	require.NoError(t, f.studentRepo.LinkParent(ctx, studentdomain.ParentLink{
		ParentID: "parent-1", StudentID: "s1",
	}))
	scoped, err := f.svc.List(ctx, studentdomain.Actor{UserID: "parent-1", Role: identitydomain.RoleParent}, domain.ListFilter{})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	require.Equal(t, "s1", scoped[0].StudentID)
}

// Replays the read-read-write-write interleaving of two concurrent payments
// against one student. Both read balance 1000; the second balance write
// overwrites the first, losing one settlement even though both payment
// records exist.
func TestConcurrentPaymentsLoseBalanceUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedStudent(t, ctx, "s1", 1000)

	first, err := f.studentRepo.FindByID(ctx, "s1")
	require.NoError(t, err)
	second, err := f.studentRepo.FindByID(ctx, "s1")
	require.NoError(t, err)

	now := f.clock.Now()
	a := studentdomain.ApplyPayment(*first, 300, "2024-01-20", now)
	b := studentdomain.ApplyPayment(*second, 400, "2024-01-20", now)
	require.NoError(t, f.studentRepo.Save(ctx, &a))
	require.NoError(t, f.studentRepo.Save(ctx, &b))

	got, err := f.studentRepo.FindByID(ctx, "s1")
	require.NoError(t, err)
	// 300 is lost: the stored balance reflects only the second write.
	require.Equal(t, float64(600), got.Balance)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedStudent(t, ctx, "s1", 5000)

	_, err := f.svc.Create(ctx, staffActor(), domain.CreatePaymentRequest{
		StudentID: "s1", Amount: 100, PaymentMethod: "cash",
	})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, staffActor(), domain.CreatePaymentRequest{
		StudentID: "s1", Amount: 50, PaymentMethod: "cash", Date: "2024-01-15", Status: "pending",
	})
	require.NoError(t, err)

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.Bucket{Amount: 100, Count: 1}, stats.Today)
	require.Equal(t, domain.Bucket{Amount: 100, Count: 1}, stats.ThisMonth)
}

func TestGetPayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedStudent(t, ctx, "s1", 500)

	created, err := f.svc.Create(ctx, staffActor(), domain.CreatePaymentRequest{
		StudentID: "s1", Amount: 200, PaymentMethod: "card",
	})
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, got)

	_, err = f.svc.Get(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
