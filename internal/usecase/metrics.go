package usecase

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"user-service/internal/domain"
)

var usecaseTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "users_usecase_total", Help: "Use case invocations by outcome"},
	[]string{"op", "outcome"},
)

func init() { prometheus.MustRegister(usecaseTotal) }

// outcome 把错误归类成有限的标签值
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrUnavailable):
		return "error"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrDuplicateUser):
		return "duplicate"
	case errors.Is(err, domain.ErrUserNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func observe(op string, err error) {
	usecaseTotal.WithLabelValues(op, outcome(err)).Inc()
}
