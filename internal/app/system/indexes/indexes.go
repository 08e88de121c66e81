// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each collection set is idempotent.
Problems are aggregated so every failure is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	sets := []struct {
		coll   string
		models []mongo.IndexModel
	}{
		{"members", memberIndexes()},
		{"registration_forms", registrationFormIndexes()},
		{"audit_events", auditEventIndexes()},
	}

	var problems []string
	for _, s := range sets {
		r := reconciler{coll: db.Collection(s.coll), log: log.With(zap.String("collection", s.coll))}
		if err := r.ensure(ctx, s.models); err != nil {
			problems = append(problems, s.coll+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func memberIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		// One member per email, compared exactly as stored.
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_members_email"),
		},
		// Member lists filtered by status, ordered by folded name.
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "name_ci", Value: 1},
				{Key: "_id", Value: 1},
			},
			Options: options.Index().SetName("idx_members_status_nameci_id"),
		},
	}
}

func registrationFormIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		// Public lookup key.
		{
			Keys:    bson.D{{Key: "form_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_registration_forms_formid"),
		},
		// Owner's list, newest first.
		{
			Keys: bson.D{
				{Key: "created_by", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_registration_forms_createdby_createdat"),
		},
	}
}

func auditEventIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_timestamp"),
		},
		{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "event_type", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_audit_category_type_timestamp"),
		},
		{
			Keys: bson.D{
				{Key: "form_id", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_audit_formid_timestamp"),
		},
	}
}

/* -------------------------------------------------------------------------- */
/* Reconcile a set of desired indexes for one collection                       */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolVal(b *bool) bool { return b != nil && *b }

// Mongo/DocDB returns IndexOptionsConflict when an index with the same keys
// already exists under a different name or with different options.
func isOptionsConflictErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "IndexOptionsConflict")
}

type reconciler struct {
	coll *mongo.Collection
	log  *zap.Logger
}

func (r reconciler) existing(ctx context.Context) (map[string]existingIndex, error) {
	cur, err := r.coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			r.log.Warn("failed to decode existing index", zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

func (r reconciler) ensure(ctx context.Context, models []mongo.IndexModel) error {
	var errs []string
	for _, m := range models {
		if err := r.ensureOne(ctx, m); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (r reconciler) ensureOne(ctx context.Context, m mongo.IndexModel) error {
	name := *m.Options.Name
	unique := boolVal(m.Options.Unique)
	sig := keySig(m.Keys.(bson.D))
	start := time.Now()
	log := r.log.With(zap.String("name", name), zap.String("keys", sig), zap.Bool("unique", unique))

	have, err := r.existing(ctx)
	if err != nil {
		// A collection that does not exist yet has no indexes to compare.
		have = map[string]existingIndex{}
	}

	if ex, ok := have[sig]; ok {
		if boolVal(ex.Unique) == unique && ex.Name == name {
			log.Info("reusing existing index", zap.Duration("took", time.Since(start)))
			return nil
		}
		// Name or uniqueness differs: drop and recreate.
		return r.recreate(ctx, log, ex.Name, m, start)
	}

	if _, err := r.coll.Indexes().CreateOne(ctx, m); err != nil {
		if isOptionsConflictErr(err) {
			if have, e2 := r.existing(ctx); e2 == nil {
				if ex, ok := have[sig]; ok {
					return r.recreate(ctx, log, ex.Name, m, start)
				}
			}
		}
		log.Warn("index ensure failed", zap.Error(err))
		return r.describe(name, sig, unique, err)
	}
	log.Info("index ensured", zap.Duration("took", time.Since(start)))
	return nil
}

func (r reconciler) recreate(ctx context.Context, log *zap.Logger, oldName string, m mongo.IndexModel, start time.Time) error {
	name := *m.Options.Name
	if _, err := r.coll.Indexes().DropOne(ctx, oldName); err != nil {
		log.Warn("drop existing index failed", zap.String("old_name", oldName), zap.Error(err))
		return fmt.Errorf("%s(%s): drop failed: %v", r.coll.Name(), name, err)
	}
	if _, err := r.coll.Indexes().CreateOne(ctx, m); err != nil {
		log.Warn("recreate index failed", zap.Error(err))
		return r.describe(name, keySig(m.Keys.(bson.D)), boolVal(m.Options.Unique), err)
	}
	log.Info("index dropped and recreated",
		zap.String("old_name", oldName),
		zap.Duration("took", time.Since(start)))
	return nil
}

func (r reconciler) describe(name, sig string, unique bool, err error) error {
	if unique && wafflemongo.IsDup(err) {
		helper := ""
		if r.coll.Name() == "members" && strings.Contains(sig, "email:1") {
			helper = ". Duplicates exist on members.email; find them with:\n" +
				`db.members.aggregate([{ $group: { _id: "$email", n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }])`
		}
		return fmt.Errorf("%s(%s): cannot create unique index (duplicates present)%s", r.coll.Name(), name, helper)
	}
	return fmt.Errorf("%s(%s): %v", r.coll.Name(), name, err)
}
