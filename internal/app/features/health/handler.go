package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mmu-rhsf/fellowhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger checks the database. *mongo.Client satisfies it.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

type Handler struct {
	DB      Pinger
	Log     *zap.Logger
	started time.Time
	now     func() time.Time
}

func NewHandler(db Pinger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Log:     logger,
		started: time.Now(),
		now:     time.Now,
	}
}

type healthResponse struct {
	Status        string `json:"status"`
	Database      string `json:"database"`
	Message       string `json:"message,omitempty"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// Serve handles GET /api/health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "uptime_seconds":42 }
//
// On DB failure: 503 and
//
//	{ "status":"error", "database":"disconnected", "message":"Database unavailable", ... }
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	resp := healthResponse{
		Status:        "ok",
		Database:      "connected",
		UptimeSeconds: int64(h.now().Sub(h.started) / time.Second),
	}
	status := http.StatusOK

	if err := h.DB.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		status = http.StatusServiceUnavailable
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
