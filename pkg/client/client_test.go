package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	paymentdomain "github.com/chikoro/feeledger/internal/payment/domain"
	studentdomain "github.com/chikoro/feeledger/internal/student/domain"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC)
}

// backend is a scriptable stand-in for the API. Set fail to simulate an
// outage for every subsequent call.
type backend struct {
	mux  *http.ServeMux
	fail bool

	students  []studentdomain.Student
	payments  []paymentdomain.Payment
	reminders int
}

func newBackend() *backend {
	b := &backend{mux: http.NewServeMux()}
	b.mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		b.respond(w, map[string]string{"accessToken": "test-token"})
	})
	b.mux.HandleFunc("GET /students", func(w http.ResponseWriter, r *http.Request) {
		b.respond(w, b.students)
	})
	b.mux.HandleFunc("POST /students", func(w http.ResponseWriter, r *http.Request) {
		var req studentdomain.CreateStudentRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		s := studentdomain.Student{ID: "srv-1", Name: req.Name, Class: req.Class, Balance: req.Balance}
		b.students = append(b.students, s)
		b.respond(w, s)
	})
	b.mux.HandleFunc("GET /payments", func(w http.ResponseWriter, r *http.Request) {
		b.respond(w, b.payments)
	})
	b.mux.HandleFunc("POST /payments", func(w http.ResponseWriter, r *http.Request) {
		var req paymentdomain.CreatePaymentRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		p := paymentdomain.Payment{
			ID: "srv-p1", StudentID: req.StudentID, Amount: req.Amount,
			ReceiptNumber: "REC000001", Status: paymentdomain.StatusCompleted,
		}
		b.payments = append(b.payments, p)
		b.respond(w, p)
	})
	b.mux.HandleFunc("POST /notifications/reminder", func(w http.ResponseWriter, r *http.Request) {
		b.reminders++
		b.respond(w, map[string]string{"message": "Reminder sent successfully"})
	})
	b.mux.HandleFunc("GET /stats/payments", func(w http.ResponseWriter, r *http.Request) {
		b.respond(w, paymentdomain.Stats{Today: paymentdomain.Bucket{Amount: 42, Count: 1}})
	})
	return b
}

func (b *backend) respond(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if b.fail {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"type":"internal_error","message":"internal server error"}}`))
		return
	}
	b.mux.ServeHTTP(w, r)
}

func newTestClient(t *testing.T) (*Client, *backend) {
	t.Helper()
	b := newBackend()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	return New(srv.URL, WithNow(fixedNow)), b
}

func TestLoginAndRefresh(t *testing.T) {
	ctx := context.Background()
	c, b := newTestClient(t)
	b.students = fallbackStudents()[:1]
	b.payments = fallbackPayments()[:1]

	require.NoError(t, c.Login(ctx, "staff@school.test", "secret123"))
	require.NoError(t, c.Refresh(ctx))
	require.NoError(t, c.LastError())

	state := c.State()
	require.Len(t, state.Students, 1)
	require.Len(t, state.Payments, 1)
}

func TestRefreshFallsBackWhenBackendDown(t *testing.T) {
	ctx := context.Background()
	c, b := newTestClient(t)
	b.fail = true

	err := c.Refresh(ctx)
	require.Error(t, err)
	require.Error(t, c.LastError())

	state := c.State()
	require.Len(t, state.Students, 3)
	require.Len(t, state.Payments, 2)
	require.Equal(t, "John Doe", state.Students[0].Name)
}

func TestAddPaymentDegradesLocally(t *testing.T) {
	ctx := context.Background()
	c, b := newTestClient(t)

	// Prime the cache, then take the backend down.
	b.students = []studentdomain.Student{{
		ID: "1", Name: "John Doe", Balance: 150, Status: studentdomain.StatusPending,
	}}
	require.NoError(t, c.Refresh(ctx))
	b.fail = true

	result := c.AddPayment(ctx, paymentdomain.CreatePaymentRequest{
		StudentID: "1", Amount: 150, PaymentMethod: "cash",
	})
	require.True(t, result.Degraded)
	require.Error(t, result.Err)
	require.Equal(t, "1705744800000", result.Record.ID)
	require.Equal(t, "RCP-1705744800000", result.Record.ReceiptNumber)
	require.Equal(t, "John Doe", result.Record.StudentName)

	state := c.State()
	require.Equal(t, float64(0), state.Students[0].Balance)
	require.Equal(t, studentdomain.StatusPaid, state.Students[0].Status)
	require.Len(t, state.Payments, 1)
}

func TestAddPaymentCleanPath(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	result := c.AddPayment(ctx, paymentdomain.CreatePaymentRequest{
		StudentID: "1", Amount: 100, PaymentMethod: "cash",
	})
	require.False(t, result.Degraded)
	require.NoError(t, result.Err)
	require.Equal(t, "srv-p1", result.Record.ID)
}

func TestGenerateReceiptDegradesFromCache(t *testing.T) {
	ctx := context.Background()
	c, b := newTestClient(t)

	b.payments = []paymentdomain.Payment{{
		ID: "p1", StudentName: "John Doe", Amount: 100,
		ReceiptNumber: "REC000001", Date: "2024-01-15",
	}}
	require.NoError(t, c.Refresh(ctx))
	b.fail = true

	result := c.GenerateReceipt(ctx, "p1")
	require.True(t, result.Degraded)
	require.Equal(t, "REC000001", result.Record.ReceiptNumber)
	require.Equal(t, "p1", result.Record.PaymentID)

	// Unknown payments cannot be synthesized.
	missing := c.GenerateReceipt(ctx, "nope")
	require.True(t, missing.Degraded)
	require.Error(t, missing.Err)
	require.Empty(t, missing.Record.ID)
}

func TestAddStudentPropagatesFailure(t *testing.T) {
	ctx := context.Background()
	c, b := newTestClient(t)
	b.fail = true

	_, err := c.AddStudent(ctx, studentdomain.CreateStudentRequest{Name: "X", Class: "Y"})
	require.Error(t, err)

	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusInternalServerError, apiErr.Status)
}

func TestSendReminderPropagatesFailure(t *testing.T) {
	ctx := context.Background()
	c, b := newTestClient(t)

	require.NoError(t, c.SendReminder(ctx, "1"))
	require.Equal(t, 1, b.reminders)

	b.fail = true
	err := c.SendReminder(ctx, "1")
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "internal_error"))
}

func TestPaymentStatsFallsBackToLocal(t *testing.T) {
	ctx := context.Background()
	c, b := newTestClient(t)

	stats, err := c.PaymentStats(ctx)
	require.NoError(t, err)
	require.Equal(t, float64(42), stats.Today.Amount)

	b.payments = []paymentdomain.Payment{{
		ID: "p1", Amount: 75, Date: "2024-01-20", Status: paymentdomain.StatusCompleted,
	}}
	require.NoError(t, c.Refresh(ctx))
	b.fail = true

	stats, err = c.PaymentStats(ctx)
	require.Error(t, err)
	require.Equal(t, float64(75), stats.Today.Amount)
	require.Equal(t, 1, stats.Today.Count)
}
