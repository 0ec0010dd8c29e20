package health

import (
	"context"
	"net/http"
	e "resetkit/internal/core/domain/errors"
	"resetkit/internal/core/domain/logging"
	"resetkit/internal/http/handlers/response"
	"sort"
	"time"
)

const checkTimeout = 2 * time.Second

// Check reports whether one dependency is reachable.
type Check func(ctx context.Context) error

type Handler struct {
	log    logging.Logger
	checks map[string]Check
}

func New(log logging.Logger, checks map[string]Check) *Handler {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	return &Handler{log: log, checks: checks}
}

type Result struct {
	Status string   `json:"status"`
	Failed []string `json:"failed,omitempty"`
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	failed := make([]string, 0)
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			logging.Error(ctx, h.log, "Health check failed.", err, logging.Entry("check", name))
			failed = append(failed, name)
		}
	}
	if len(failed) > 0 {
		sort.Strings(failed)
		response.Render(rw, Result{Status: "unavailable", Failed: failed}, http.StatusServiceUnavailable)
		return
	}
	response.Render(rw, Result{Status: "ok"}, http.StatusOK)
}
