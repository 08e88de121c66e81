// Package txn runs multi-document writes inside a MongoDB transaction when
// the deployment supports one.
//
// Standalone servers (typical for local development) reject transactions.
// Runner detects that once, logs it, and from then on runs the function
// directly so callers do not need two code paths.
package txn

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Runner executes functions transactionally.
type Runner struct {
	client      *mongo.Client
	log         *zap.Logger
	unsupported atomic.Bool
}

// New returns a Runner for client. A nil client yields a Runner that never
// opens transactions.
func New(client *mongo.Client, logger *zap.Logger) *Runner {
	return &Runner{client: client, log: logger}
}

// Run calls fn inside a transaction. The context passed to fn must be used
// for every store call that should take part in it.
func (r *Runner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if r == nil || r.client == nil || r.unsupported.Load() {
		return fn(ctx)
	}

	sess, err := r.client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return r.fallback(ctx, err, fn)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		return r.fallback(ctx, err, fn)
	}
	return err
}

func (r *Runner) fallback(ctx context.Context, cause error, fn func(ctx context.Context) error) error {
	if r.unsupported.CompareAndSwap(false, true) && r.log != nil {
		r.log.Warn("transactions not supported by this deployment; running writes without one",
			zap.Error(cause))
	}
	return fn(ctx)
}

// IsNotSupported reports whether err means the server cannot run
// transactions (standalone mongod, some DocumentDB versions).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, // IllegalOperation
			51,  // transaction numbers on standalone
			263: // OperationNotSupportedInTransaction
			return true
		}
	}

	// Exact server and driver wording only.
	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "transaction numbers are only allowed on a replica set member"):
		return true
	case strings.Contains(s, "topology does not support sessions"):
		return true
	}
	return false
}
