package service

import (
	"context"
	"testing"
	"time"

	"github.com/chikoro/feeledger/internal/clock"
	"github.com/chikoro/feeledger/internal/config"
	identitydomain "github.com/chikoro/feeledger/internal/identity/domain"
	identityservice "github.com/chikoro/feeledger/internal/identity/service"
	"github.com/chikoro/feeledger/internal/kv"
	"github.com/chikoro/feeledger/internal/student/domain"
	"github.com/chikoro/feeledger/internal/student/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fixture struct {
	svc      domain.Service
	identity identitydomain.Service
	repo     domain.Repository
	clock    *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := kv.NewMemoryStore()
	fake := clock.NewFakeClock(time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC))
	genID := kv.NewIDGenerator()
	log := zaptest.NewLogger(t)

	identity := identityservice.New(identityservice.Params{
		Cfg:   config.Config{AuthJWTSecret: "test-secret"},
		Log:   log,
		Store: store,
		GenID: genID,
		Clock: fake,
	})
	repo := repository.Provide(store)
	svc := New(Params{
		Log:      log,
		Repo:     repo,
		Identity: identity,
		Policy:   config.NewStaticPolicyHolder(config.DefaultPolicyConfig()),
		GenID:    genID,
		Clock:    fake,
	})
	return &fixture{svc: svc, identity: identity, repo: repo, clock: fake}
}

func staffActor() domain.Actor {
	return domain.Actor{UserID: "staff-1", Role: identitydomain.RoleStaff}
}

func TestCreateStudent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	student, err := f.svc.Create(ctx, staffActor(), domain.CreateStudentRequest{
		Name:          "Michael Chen",
		Class:         "Grade 7A",
		GuardianName:  "Linda Chen",
		GuardianEmail: "Linda.Chen@email.com",
		Balance:       1250,
	})
	require.NoError(t, err)
	require.NotEmpty(t, student.ID)
	require.Equal(t, "linda.chen@email.com", student.GuardianEmail)
	require.Equal(t, domain.StatusPending, student.Status)
	require.Equal(t, "staff-1", student.CreatedBy)

	got, err := f.svc.Get(ctx, student.ID)
	require.NoError(t, err)
	require.Equal(t, student.ID, got.ID)
}

func TestCreateStudentValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Create(ctx, staffActor(), domain.CreateStudentRequest{Name: "No Class"})
	require.ErrorIs(t, err, domain.ErrMissingFields)
}

func TestCreateStudentLinksGuardian(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	parent, err := f.identity.SignUp(ctx, identitydomain.SignUpRequest{
		Email:    "linda.chen@email.com",
		Password: "secret123",
		Name:     "Linda Chen",
		Role:     "parent",
	})
	require.NoError(t, err)

	student, err := f.svc.Create(ctx, staffActor(), domain.CreateStudentRequest{
		Name:          "Michael Chen",
		Class:         "Grade 7A",
		GuardianEmail: "linda.chen@email.com",
		Balance:       1250,
	})
	require.NoError(t, err)

	linked, err := f.repo.IsLinked(ctx, parent.ID, student.ID)
	require.NoError(t, err)
	require.True(t, linked)
}

func TestCreateStudentNoParentAccountStillSucceeds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	student, err := f.svc.Create(ctx, staffActor(), domain.CreateStudentRequest{
		Name:          "Sarah Williams",
		Class:         "Grade 5B",
		GuardianEmail: "nobody@email.com",
		Balance:       850,
	})
	require.NoError(t, err)
	require.NotEmpty(t, student.ID)
}

func TestListScopesParentsToLinkedStudents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	parent, err := f.identity.SignUp(ctx, identitydomain.SignUpRequest{
		Email:    "linda.chen@email.com",
		Password: "secret123",
		Name:     "Linda Chen",
		Role:     "parent",
	})
	require.NoError(t, err)

	mine, err := f.svc.Create(ctx, staffActor(), domain.CreateStudentRequest{
		Name: "Michael Chen", Class: "Grade 7A", GuardianEmail: "linda.chen@email.com", Balance: 1250,
	})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, staffActor(), domain.CreateStudentRequest{
		Name: "David Brown", Class: "Grade 8A", GuardianEmail: "other@email.com", Balance: 2100,
	})
	require.NoError(t, err)

	all, err := f.svc.List(ctx, staffActor())
	require.NoError(t, err)
	require.Len(t, all, 2)

	scoped, err := f.svc.List(ctx, domain.Actor{UserID: parent.ID, Role: identitydomain.RoleParent})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	require.Equal(t, mine.ID, scoped[0].ID)
}

func TestUpdateStudent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	student, err := f.svc.Create(ctx, staffActor(), domain.CreateStudentRequest{
		Name: "Emma Davis", Class: "Grade 6A",
	})
	require.NoError(t, err)

	newClass := "Grade 6B"
	newBalance := 400.0
	updated, err := f.svc.Update(ctx, domain.Actor{UserID: "staff-2", Role: identitydomain.RoleAdmin}, student.ID, domain.UpdateStudentRequest{
		Class:   &newClass,
		Balance: &newBalance,
	})
	require.NoError(t, err)
	require.Equal(t, "Grade 6B", updated.Class)
	require.Equal(t, 400.0, updated.Balance)
	require.Equal(t, "Emma Davis", updated.Name)
	require.Equal(t, "staff-2", updated.UpdatedBy)

	bad := "settled"
	_, err = f.svc.Update(ctx, staffActor(), student.ID, domain.UpdateStudentRequest{Status: &bad})
	require.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = f.svc.Update(ctx, staffActor(), "missing", domain.UpdateStudentRequest{})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReconcileStatuses(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	stale, err := f.svc.Create(ctx, staffActor(), domain.CreateStudentRequest{
		Name: "Michael Chen", Class: "Grade 7A", Balance: 1250,
	})
	require.NoError(t, err)
	settled, err := f.svc.Create(ctx, staffActor(), domain.CreateStudentRequest{
		Name: "Emma Davis", Class: "Grade 6A",
	})
	require.NoError(t, err)

	// Past the default 30-day window with no payment recorded.
	f.clock.Advance(45 * 24 * time.Hour)

	result, err := f.svc.ReconcileStatuses(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, result.Checked)
	require.Equal(t, 1, result.Flagged)

	got, err := f.svc.Get(ctx, stale.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusOverdue, got.Status)

	got, err = f.svc.Get(ctx, settled.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaid, got.Status)
}

func TestCreateStudentStatusDefaults(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// A clean record defaults to pending even with nothing owed; only the
	// reconcile sweep or an explicit status moves it.
	student, err := f.svc.Create(ctx, staffActor(), domain.CreateStudentRequest{
		Name: "Emma Davis", Class: "Grade 6A",
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, student.Status)

	imported, err := f.svc.Create(ctx, staffActor(), domain.CreateStudentRequest{
		Name: "Sophie Miller", Class: "Grade 9B",
		Status: "paid", LastPayment: "2024-01-10",
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaid, imported.Status)
	require.Equal(t, "2024-01-10", imported.LastPayment)

	_, err = f.svc.Create(ctx, staffActor(), domain.CreateStudentRequest{
		Name: "Bad Status", Class: "Grade 1A", Status: "settled",
	})
	require.ErrorIs(t, err, domain.ErrInvalidStatus)
}
