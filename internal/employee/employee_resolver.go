package employee

import (
	"context"

	employeeerrors "face-attendance/internal/employee/errors"
	"face-attendance/internal/shared/contextutil"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Resolution is the result of mapping a recognized name to an identity.
// Known=false means the service recognized someone who is not provisioned.
type Resolution struct {
	Known    bool
	Employee Employee
}

//go:generate mockgen -source=employee_resolver.go -destination=mock/employee_resolver_mock.go -package=mock
type Resolver interface {
	Resolve(ctx context.Context, fullName string) (Resolution, error)
}

type resolver struct {
	repo   Repository
	sf     *singleflight.Group
	logger *zap.Logger
}

// NewResolver builds a resolver that asks the store on every call. Results are
// never cached: a name that was unique a minute ago may be ambiguous now.
func NewResolver(repo Repository, logger ...*zap.Logger) Resolver {
	l := zap.L().Named("employee.resolver")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.resolver")
	}
	return &resolver{
		repo:   repo,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (r *resolver) Resolve(ctx context.Context, fullName string) (Resolution, error) {
	log := contextutil.GetLogger(ctx, r.logger)

	v, err, _ := r.sf.Do(fullName, func() (any, error) {
		// two rows are enough to detect ambiguity
		return r.repo.FindByFullName(ctx, fullName, 2)
	})
	if err != nil {
		log.Error("identity lookup failed", zap.String("person_name", fullName), zap.Error(err))
		return Resolution{}, employeeerrors.ErrIdentityStoreUnavailable.WithCause(err)
	}
	matches := v.([]Employee)

	switch len(matches) {
	case 0:
		log.Warn("recognized person is not provisioned", zap.String("person_name", fullName))
		return Resolution{Known: false}, nil
	case 1:
		return Resolution{Known: true, Employee: matches[0]}, nil
	default:
		ids := make([]string, 0, len(matches))
		for _, m := range matches {
			ids = append(ids, m.ID.String())
		}
		log.Error("recognized name matches multiple employees",
			zap.String("person_name", fullName),
			zap.Strings("employee_ids", ids),
		)
		return Resolution{}, employeeerrors.ErrAmbiguousIdentity.WithDetails(map[string]any{
			"person_name": fullName,
		})
	}
}
