package authorization

import (
	"errors"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	identitydomain "github.com/chikoro/feeledger/internal/identity/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// The policy set is closed over three roles, so the model is compiled in and
// policies are seeded in code rather than persisted through an adapter.
const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

const (
	ObjectStudent  = "student"
	ObjectPayment  = "payment"
	ObjectReceipt  = "receipt"
	ObjectStats    = "stats"
	ObjectReminder = "reminder"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionSend   = "send"
)

var (
	ErrInvalidActor  = errors.New("invalid actor")
	ErrInvalidObject = errors.New("invalid object")
	ErrInvalidAction = errors.New("invalid action")
	ErrDenied        = errors.New("forbidden")
)

type Service interface {
	// Authorize reports whether the role may perform action on object.
	// Record-level scoping (a parent's linked children) stays with the
	// domain services; this gate covers the operation itself.
	Authorize(role identitydomain.Role, object, action string) error
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer() (*casbin.SyncedEnforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	// Staff inherits everything admin may do; the roles differ only in
	// account administration, which lives outside this service.
	policies := [][]string{
		{string(identitydomain.RoleStaff), ObjectStudent, ActionView},
		{string(identitydomain.RoleStaff), ObjectStudent, ActionCreate},
		{string(identitydomain.RoleStaff), ObjectStudent, ActionUpdate},
		{string(identitydomain.RoleStaff), ObjectPayment, ActionView},
		{string(identitydomain.RoleStaff), ObjectPayment, ActionCreate},
		{string(identitydomain.RoleStaff), ObjectReceipt, ActionCreate},
		{string(identitydomain.RoleStaff), ObjectReceipt, ActionView},
		{string(identitydomain.RoleStaff), ObjectStats, ActionView},
		{string(identitydomain.RoleStaff), ObjectReminder, ActionSend},
		{string(identitydomain.RoleStaff), ObjectReminder, ActionView},

		{string(identitydomain.RoleParent), ObjectStudent, ActionView},
		{string(identitydomain.RoleParent), ObjectPayment, ActionView},
		{string(identitydomain.RoleParent), ObjectPayment, ActionCreate},
		{string(identitydomain.RoleParent), ObjectReceipt, ActionCreate},
		{string(identitydomain.RoleParent), ObjectReceipt, ActionView},
	}
	for _, p := range policies {
		if _, err := enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return err
		}
	}
	if _, err := enforcer.AddGroupingPolicy(string(identitydomain.RoleAdmin), string(identitydomain.RoleStaff)); err != nil {
		return err
	}
	return nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(role identitydomain.Role, object, action string) error {
	subject := strings.TrimSpace(role.String())
	if subject == "" {
		return ErrInvalidActor
	}
	if strings.TrimSpace(object) == "" {
		return ErrInvalidObject
	}
	if strings.TrimSpace(action) == "" {
		return ErrInvalidAction
	}

	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("role", subject),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrDenied
	}
	return nil
}

var Module = fx.Module("authorization",
	fx.Provide(NewEnforcer),
	fx.Provide(NewService),
)
