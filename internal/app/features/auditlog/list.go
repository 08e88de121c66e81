// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mmu-rhsf/fellowhub/internal/app/store/audit"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/respond"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

// parseFilter reads category, event_type, form_id, since (YYYY-MM-DD) and
// limit from the query string. Unparseable values are ignored.
func parseFilter(r *http.Request) audit.QueryFilter {
	q := r.URL.Query()
	f := audit.QueryFilter{
		Category:  strings.TrimSpace(q.Get("category")),
		EventType: strings.TrimSpace(q.Get("event_type")),
		FormID:    strings.TrimSpace(q.Get("form_id")),
		Limit:     defaultLimit,
	}
	if s := strings.TrimSpace(q.Get("since")); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			f.Since = &t
		}
	}
	if n, err := strconv.ParseInt(q.Get("limit"), 10, 64); err == nil && n > 0 {
		f.Limit = min(n, maxLimit)
	}
	return f
}

// ServeList handles GET /api/audit: recent audit events, newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "audit log list")
	defer cancel()

	events, err := h.Events.Query(ctx, parseFilter(r))
	if err != nil {
		h.Log.Error("failed to query audit events", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to fetch audit events")
		return
	}
	respond.OK(w, http.StatusOK, "", events)
}
