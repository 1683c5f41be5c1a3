package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chikoro/feeledger/internal/clock"
	"github.com/chikoro/feeledger/internal/config"
	"github.com/chikoro/feeledger/internal/kv"
	paymentdomain "github.com/chikoro/feeledger/internal/payment/domain"
	"github.com/chikoro/feeledger/internal/providers/pdf"
	"github.com/chikoro/feeledger/internal/receipt/domain"
	studentdomain "github.com/chikoro/feeledger/internal/student/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg         config.Config
	Log         *zap.Logger
	Repo        domain.Repository
	PaymentRepo paymentdomain.Repository
	StudentRepo studentdomain.Repository
	PDF         pdf.Provider
	GenID       *kv.IDGenerator
	Clock       clock.Clock
}

type Service struct {
	cfg         config.Config
	log         *zap.Logger
	repo        domain.Repository
	paymentRepo paymentdomain.Repository
	studentRepo studentdomain.Repository
	pdf         pdf.Provider
	genID       *kv.IDGenerator
	clock       clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		cfg:         p.Cfg,
		log:         p.Log.Named("receipt.service"),
		repo:        p.Repo,
		paymentRepo: p.PaymentRepo,
		studentRepo: p.StudentRepo,
		pdf:         p.PDF,
		genID:       p.GenID,
		clock:       p.Clock,
	}
}

func (s *Service) Generate(ctx context.Context, actor studentdomain.Actor, req domain.GenerateRequest) (domain.Receipt, error) {
	payment, err := s.paymentRepo.FindByID(ctx, strings.TrimSpace(req.PaymentID))
	if err != nil {
		return domain.Receipt{}, err
	}
	if payment == nil {
		return domain.Receipt{}, domain.ErrPaymentNotFound
	}

	// A deleted student only costs the guardian email on the receipt.
	student, err := s.studentRepo.FindByID(ctx, payment.StudentID)
	if err != nil {
		s.log.Warn("student lookup failed during receipt generation",
			zap.String("payment_id", payment.ID),
			zap.Error(err),
		)
		student = nil
	}

	receipt := domain.Build(*payment, student, s.genID.NewID(), s.clock.Now(), actor.UserID)
	if err := s.repo.Insert(ctx, &receipt); err != nil {
		return domain.Receipt{}, err
	}

	s.log.Info("receipt generated",
		zap.String("receipt_id", receipt.ID),
		zap.String("payment_id", payment.ID),
	)
	return receipt, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Receipt, error) {
	receipt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Receipt{}, err
	}
	if receipt == nil {
		return domain.Receipt{}, domain.ErrNotFound
	}
	return *receipt, nil
}

func (s *Service) RenderPDF(ctx context.Context, id string) (io.Reader, error) {
	receipt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.pdf.RenderReceipt(ctx, pdf.ReceiptDocument{
		SchoolName:    s.cfg.AppName,
		ReceiptNumber: receipt.ReceiptNumber,
		StudentName:   receipt.StudentName,
		Amount:        fmt.Sprintf("%.2f", receipt.Amount),
		Date:          receipt.Date,
		Description:   receipt.Description,
		PaymentMethod: string(receipt.PaymentMethod),
		IssuedBy:      receipt.IssuedBy,
		ParentEmail:   receipt.ParentEmail,
	})
}
