// Package client is a resilient HTTP facade over the fee ledger API. It keeps
// a local cache of students and payments and degrades to locally synthesized
// records when the backend is unreachable, so an office desk can keep
// recording payments through an outage and reconcile later.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	paymentdomain "github.com/chikoro/feeledger/internal/payment/domain"
	receiptdomain "github.com/chikoro/feeledger/internal/receipt/domain"
	studentdomain "github.com/chikoro/feeledger/internal/student/domain"
	"golang.org/x/sync/errgroup"
)

// Result reports how an operation concluded. Degraded means the backend was
// unreachable and Record was synthesized locally; Err carries the backend
// failure that forced the fallback.
type Result[T any] struct {
	Record   T
	Degraded bool
	Err      error
}

// State is the client's cached view of the backend.
type State struct {
	Students []studentdomain.Student
	Payments []paymentdomain.Payment
	Receipts []receiptdomain.Receipt
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithNow overrides the clock used for synthesized ids and dates.
func WithNow(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

type Client struct {
	baseURL string
	http    *http.Client
	now     func() time.Time

	mu      sync.RWMutex
	token   string
	state   State
	lastErr error
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login authenticates and stores the bearer token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp struct {
		Token string `json:"accessToken"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp); err != nil {
		return err
	}

	c.mu.Lock()
	c.token = resp.Token
	c.mu.Unlock()
	return nil
}

// State returns a copy of the cached view.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := State{
		Students: make([]studentdomain.Student, len(c.state.Students)),
		Payments: make([]paymentdomain.Payment, len(c.state.Payments)),
		Receipts: make([]receiptdomain.Receipt, len(c.state.Receipts)),
	}
	copy(out.Students, c.state.Students)
	copy(out.Payments, c.state.Payments)
	copy(out.Receipts, c.state.Receipts)
	return out
}

// LastError returns the most recent backend failure, nil after a clean call.
func (c *Client) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// Refresh reloads students and payments concurrently. When the backend is
// unreachable the cache falls back to the bundled sample view rather than
// going empty, and the failure is retained for LastError.
func (c *Client) Refresh(ctx context.Context) error {
	var (
		students []studentdomain.Student
		payments []paymentdomain.Payment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.do(gctx, http.MethodGet, "/students", nil, &students)
	})
	g.Go(func() error {
		return c.do(gctx, http.MethodGet, "/payments", nil, &payments)
	})

	if err := g.Wait(); err != nil {
		c.mu.Lock()
		c.lastErr = err
		c.state.Students = fallbackStudents()
		c.state.Payments = fallbackPayments()
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.lastErr = nil
	c.state.Students = students
	c.state.Payments = payments
	c.mu.Unlock()
	return nil
}

// AddStudent creates the student and refreshes the cache. Failures propagate;
// there is no offline fallback for enrollment.
func (c *Client) AddStudent(ctx context.Context, req studentdomain.CreateStudentRequest) (studentdomain.Student, error) {
	var student studentdomain.Student
	if err := c.do(ctx, http.MethodPost, "/students", req, &student); err != nil {
		c.setLastError(err)
		return studentdomain.Student{}, err
	}
	_ = c.Refresh(ctx)
	return student, nil
}

// AddPayment records the payment. When the backend fails the payment is
// synthesized locally and the cached student balance is settled the same way
// the backend would settle it.
func (c *Client) AddPayment(ctx context.Context, req paymentdomain.CreatePaymentRequest) Result[paymentdomain.Payment] {
	var payment paymentdomain.Payment
	err := c.do(ctx, http.MethodPost, "/payments", req, &payment)
	if err == nil {
		_ = c.Refresh(ctx)
		return Result[paymentdomain.Payment]{Record: payment}
	}

	now := c.now()
	millis := now.UnixMilli()
	local := paymentdomain.Payment{
		ID:            strconv.FormatInt(millis, 10),
		StudentID:     req.StudentID,
		Amount:        req.Amount,
		PaymentMethod: paymentdomain.Method(req.PaymentMethod),
		Reference:     req.Reference,
		Description:   req.Description,
		Date:          now.UTC().Format(studentdomain.DateLayout),
		ReceiptNumber: fmt.Sprintf("RCP-%d", millis),
		Status:        paymentdomain.StatusCompleted,
		CreatedAt:     now,
	}
	if req.Date != "" {
		local.Date = req.Date
	}

	c.mu.Lock()
	c.lastErr = err
	for i := range c.state.Students {
		if c.state.Students[i].ID != req.StudentID {
			continue
		}
		local.StudentName = c.state.Students[i].Name
		c.state.Students[i] = studentdomain.ApplyPayment(c.state.Students[i], req.Amount, local.Date, now)
		break
	}
	c.state.Payments = append(c.state.Payments, local)
	c.mu.Unlock()

	return Result[paymentdomain.Payment]{Record: local, Degraded: true, Err: err}
}

// GenerateReceipt asks the backend for a receipt, falling back to a local
// projection of the cached payment when the call fails.
func (c *Client) GenerateReceipt(ctx context.Context, paymentID string) Result[receiptdomain.Receipt] {
	var receipt receiptdomain.Receipt
	err := c.do(ctx, http.MethodPost, "/receipts/generate", map[string]string{
		"paymentId": paymentID,
	}, &receipt)
	if err == nil {
		c.mu.Lock()
		c.lastErr = nil
		c.state.Receipts = append(c.state.Receipts, receipt)
		c.mu.Unlock()
		return Result[receiptdomain.Receipt]{Record: receipt}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = err

	var payment *paymentdomain.Payment
	for i := range c.state.Payments {
		if c.state.Payments[i].ID == paymentID {
			payment = &c.state.Payments[i]
			break
		}
	}
	if payment == nil {
		wrapped := fmt.Errorf("payment %s not in local cache: %w", paymentID, err)
		return Result[receiptdomain.Receipt]{Degraded: true, Err: wrapped}
	}

	now := c.now()
	local := receiptdomain.Receipt{
		ID:            strconv.FormatInt(now.UnixMilli(), 10),
		PaymentID:     payment.ID,
		ReceiptNumber: payment.ReceiptNumber,
		StudentName:   payment.StudentName,
		Amount:        payment.Amount,
		Date:          payment.Date,
		Description:   payment.Description,
		PaymentMethod: payment.PaymentMethod,
		IssuedBy:      payment.RecordedBy,
		CreatedAt:     now,
	}
	c.state.Receipts = append(c.state.Receipts, local)
	return Result[receiptdomain.Receipt]{Record: local, Degraded: true, Err: err}
}

// SendReminder never degrades: a reminder either reached the backend or it
// did not happen.
func (c *Client) SendReminder(ctx context.Context, studentID string) error {
	err := c.do(ctx, http.MethodPost, "/notifications/reminder", map[string]string{
		"studentId": studentID,
	}, nil)
	c.setLastError(err)
	return err
}

// PaymentStats fetches the rollup, computing it from the cache when the
// backend is unreachable.
func (c *Client) PaymentStats(ctx context.Context) (paymentdomain.Stats, error) {
	var stats paymentdomain.Stats
	err := c.do(ctx, http.MethodGet, "/stats/payments", nil, &stats)
	if err == nil {
		c.setLastError(nil)
		return stats, nil
	}

	c.mu.Lock()
	c.lastErr = err
	local := paymentdomain.ComputeStats(c.state.Payments, c.now())
	c.mu.Unlock()
	return local, err
}

// StudentPayments filters the cached payments for one student.
func (c *Client) StudentPayments(studentID string) []paymentdomain.Payment {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []paymentdomain.Payment
	for _, p := range c.state.Payments {
		if p.StudentID == studentID {
			out = append(out, p)
		}
	}
	return out
}

func (c *Client) setLastError(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}

type apiError struct {
	Status  int
	Type    string
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api error: status %d type %s: %s", e.Status, e.Type, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var payload struct {
			Error struct {
				Type    string `json:"type"`
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		return &apiError{
			Status:  resp.StatusCode,
			Type:    payload.Error.Type,
			Message: payload.Error.Message,
		}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
