package server

import (
	"context"
	"net/http"
	"time"

	"github.com/chikoro/feeledger/internal/authorization"
	"github.com/chikoro/feeledger/internal/clock"
	"github.com/chikoro/feeledger/internal/config"
	"github.com/chikoro/feeledger/internal/identity"
	identitydomain "github.com/chikoro/feeledger/internal/identity/domain"
	"github.com/chikoro/feeledger/internal/kv"
	"github.com/chikoro/feeledger/internal/observability"
	obsmiddleware "github.com/chikoro/feeledger/internal/observability/logger"
	obsmetrics "github.com/chikoro/feeledger/internal/observability/metrics"
	"github.com/chikoro/feeledger/internal/payment"
	paymentdomain "github.com/chikoro/feeledger/internal/payment/domain"
	"github.com/chikoro/feeledger/internal/providers"
	"github.com/chikoro/feeledger/internal/receipt"
	receiptdomain "github.com/chikoro/feeledger/internal/receipt/domain"
	"github.com/chikoro/feeledger/internal/reminder"
	reminderdomain "github.com/chikoro/feeledger/internal/reminder/domain"
	"github.com/chikoro/feeledger/internal/seed"
	"github.com/chikoro/feeledger/internal/student"
	studentdomain "github.com/chikoro/feeledger/internal/student/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	config.Module,
	observability.Module,
	clock.Module,
	kv.Module,
	fx.Provide(registerGin),
	authorization.Module,
	identity.Module,
	providers.Module,
	student.Module,
	payment.Module,
	receipt.Module,
	reminder.Module,
	seed.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	identitySvc     identitydomain.Service
	authzSvc        authorization.Service
	studentSvc      studentdomain.Service
	paymentSvc      paymentdomain.Service
	receiptSvc      receiptdomain.Service
	reminderSvc     reminderdomain.Service
	seeder          *seed.Seeder
	reminderLimiter *rateLimiter
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	IdentitySvc identitydomain.Service
	AuthzSvc    authorization.Service
	StudentSvc  studentdomain.Service
	PaymentSvc  paymentdomain.Service
	ReceiptSvc  receiptdomain.Service
	ReminderSvc reminderdomain.Service
	Seeder      *seed.Seeder
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		identitySvc:     p.IdentitySvc,
		authzSvc:        p.AuthzSvc,
		studentSvc:      p.StudentSvc,
		paymentSvc:      p.PaymentSvc,
		receiptSvc:      p.ReceiptSvc,
		reminderSvc:     p.ReminderSvc,
		seeder:          p.Seeder,
		reminderLimiter: newRateLimiter(30, time.Minute),
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/signup", s.SignUp)
	auth.POST("/login", s.Login)
	auth.GET("/profile", s.AuthRequired(), s.Profile)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("", s.AuthRequired())

	// -------- Students --------
	api.GET("/students", s.RequirePermission(authorization.ObjectStudent, authorization.ActionView), s.ListStudents)
	api.POST("/students", s.RequirePermission(authorization.ObjectStudent, authorization.ActionCreate), s.CreateStudent)
	api.PUT("/students/:id", s.RequirePermission(authorization.ObjectStudent, authorization.ActionUpdate), s.UpdateStudent)
	api.POST("/students/reconcile-status", s.RequirePermission(authorization.ObjectStudent, authorization.ActionUpdate), s.ReconcileStudentStatuses)

	// -------- Payments --------
	api.GET("/payments", s.RequirePermission(authorization.ObjectPayment, authorization.ActionView), s.ListPayments)
	api.POST("/payments", s.RequirePermission(authorization.ObjectPayment, authorization.ActionCreate), s.CreatePayment)
	api.GET("/stats/payments", s.RequirePermission(authorization.ObjectStats, authorization.ActionView), s.PaymentStats)

	// -------- Receipts --------
	api.POST("/receipts/generate", s.RequirePermission(authorization.ObjectReceipt, authorization.ActionCreate), s.GenerateReceipt)
	api.GET("/receipts/:id/pdf", s.RequirePermission(authorization.ObjectReceipt, authorization.ActionView), s.ReceiptPDF)

	// -------- Reminders --------
	api.POST("/notifications/reminder", s.RequirePermission(authorization.ObjectReminder, authorization.ActionSend), s.ReminderRateLimit(), s.SendReminder)
	api.GET("/notifications/reminders", s.RequirePermission(authorization.ObjectReminder, authorization.ActionView), s.ListReminders)

	// Demo bootstrap; unauthenticated so a fresh deployment can be
	// populated before any account exists.
	s.engine.POST("/init-sample-data", s.InitSampleData)
}
