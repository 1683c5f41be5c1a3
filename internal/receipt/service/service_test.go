package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/chikoro/feeledger/internal/clock"
	"github.com/chikoro/feeledger/internal/config"
	identitydomain "github.com/chikoro/feeledger/internal/identity/domain"
	"github.com/chikoro/feeledger/internal/kv"
	paymentdomain "github.com/chikoro/feeledger/internal/payment/domain"
	paymentrepository "github.com/chikoro/feeledger/internal/payment/repository"
	"github.com/chikoro/feeledger/internal/providers/pdf"
	"github.com/chikoro/feeledger/internal/receipt/domain"
	"github.com/chikoro/feeledger/internal/receipt/repository"
	studentdomain "github.com/chikoro/feeledger/internal/student/domain"
	studentrepository "github.com/chikoro/feeledger/internal/student/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fixture struct {
	svc         domain.Service
	paymentRepo paymentdomain.Repository
	studentRepo studentdomain.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := kv.NewMemoryStore()
	paymentRepo := paymentrepository.Provide(store)
	studentRepo := studentrepository.Provide(store)
	svc := New(Params{
		Cfg:         config.Config{AppName: "Harare High School"},
		Log:         zaptest.NewLogger(t),
		Repo:        repository.Provide(store),
		PaymentRepo: paymentRepo,
		StudentRepo: studentRepo,
		PDF:         pdf.New(),
		GenID:       kv.NewIDGenerator(),
		Clock:       clock.NewFakeClock(time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC)),
	})
	return &fixture{svc: svc, paymentRepo: paymentRepo, studentRepo: studentRepo}
}

func (f *fixture) seedPayment(t *testing.T, ctx context.Context) paymentdomain.Payment {
	t.Helper()
	student := studentdomain.Student{
		ID:            "s1",
		Name:          "Michael Chen",
		GuardianEmail: "linda.chen@email.com",
	}
	require.NoError(t, f.studentRepo.Insert(ctx, &student))

	payment := paymentdomain.Payment{
		ID:            "p1",
		StudentID:     "s1",
		StudentName:   "Michael Chen",
		Amount:        1200,
		PaymentMethod: paymentdomain.MethodEcocash,
		Description:   "School Fees - January",
		Date:          "2024-01-10",
		RecordedBy:    "Admin",
		ReceiptNumber: "REC001",
		Status:        paymentdomain.StatusCompleted,
	}
	require.NoError(t, f.paymentRepo.Insert(ctx, &payment))
	return payment
}

func actor() studentdomain.Actor {
	return studentdomain.Actor{UserID: "staff-1", Name: "Admin", Role: identitydomain.RoleStaff}
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	payment := f.seedPayment(t, ctx)

	receipt, err := f.svc.Generate(ctx, actor(), domain.GenerateRequest{PaymentID: payment.ID})
	require.NoError(t, err)
	require.NotEmpty(t, receipt.ID)
	require.Equal(t, payment.ID, receipt.PaymentID)
	require.Equal(t, "REC001", receipt.ReceiptNumber)
	require.Equal(t, "linda.chen@email.com", receipt.ParentEmail)
	require.Equal(t, "Admin", receipt.IssuedBy)
	require.Equal(t, "staff-1", receipt.CreatedBy)

	got, err := f.svc.Get(ctx, receipt.ID)
	require.NoError(t, err)
	require.Equal(t, receipt.ID, got.ID)
}

func TestGenerateMissingPayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Generate(ctx, actor(), domain.GenerateRequest{PaymentID: "missing"})
	require.ErrorIs(t, err, domain.ErrPaymentNotFound)
}

func TestGenerateTwiceYieldsDistinctRecords(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	payment := f.seedPayment(t, ctx)

	first, err := f.svc.Generate(ctx, actor(), domain.GenerateRequest{PaymentID: payment.ID})
	require.NoError(t, err)
	second, err := f.svc.Generate(ctx, actor(), domain.GenerateRequest{PaymentID: payment.ID})
	require.NoError(t, err)

	require.NotEqual(t, first.ID, second.ID)
	require.Equal(t, first.ReceiptNumber, second.ReceiptNumber)
}

func TestGenerateWithoutStudentRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	payment := paymentdomain.Payment{
		ID:            "p2",
		StudentID:     "gone",
		StudentName:   "Sarah Williams",
		Amount:        850,
		PaymentMethod: paymentdomain.MethodCash,
		ReceiptNumber: "REC002",
		Status:        paymentdomain.StatusCompleted,
	}
	require.NoError(t, f.paymentRepo.Insert(ctx, &payment))

	receipt, err := f.svc.Generate(ctx, actor(), domain.GenerateRequest{PaymentID: "p2"})
	require.NoError(t, err)
	require.Empty(t, receipt.ParentEmail)
}

func TestRenderPDF(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	payment := f.seedPayment(t, ctx)

	receipt, err := f.svc.Generate(ctx, actor(), domain.GenerateRequest{PaymentID: payment.ID})
	require.NoError(t, err)

	reader, err := f.svc.RenderPDF(ctx, receipt.ID)
	require.NoError(t, err)
	doc, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.NotEmpty(t, doc)
	require.Equal(t, "%PDF", string(doc[:4]))

	_, err = f.svc.RenderPDF(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
