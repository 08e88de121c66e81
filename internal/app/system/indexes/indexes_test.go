package indexes_test

import (
	"testing"

	"github.com/mmu-rhsf/fellowhub/internal/app/system/indexes"
	"github.com/mmu-rhsf/fellowhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func indexNames(t *testing.T, db *mongo.Database, coll string) map[string]bson.M {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cur, err := db.Collection(coll).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	out := make(map[string]bson.M)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			out[name] = idx
		}
	}
	return out
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("first EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	expected := map[string][]string{
		"members":            {"uniq_members_email", "idx_members_status_nameci_id"},
		"registration_forms": {"uniq_registration_forms_formid", "idx_registration_forms_createdby_createdat"},
		"audit_events":       {"idx_audit_timestamp", "idx_audit_category_type_timestamp", "idx_audit_formid_timestamp"},
	}
	for coll, names := range expected {
		have := indexNames(t, db, coll)
		for _, name := range names {
			if _, ok := have[name]; !ok {
				t.Errorf("expected index %q on %s", name, coll)
			}
		}
	}

	if u, _ := indexNames(t, db, "members")["uniq_members_email"]["unique"].(bool); !u {
		t.Error("uniq_members_email should be unique")
	}
}

func TestEnsureAll_RenamesMisnamedIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := db.Collection("registration_forms").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "form_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("legacy_formid"),
	})
	if err != nil {
		t.Fatalf("create legacy index: %v", err)
	}

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	have := indexNames(t, db, "registration_forms")
	if _, ok := have["legacy_formid"]; ok {
		t.Error("legacy index should have been dropped")
	}
	if _, ok := have["uniq_registration_forms_formid"]; !ok {
		t.Error("expected uniq_registration_forms_formid after rename")
	}
}

func TestEnsureAll_ReportsDuplicateEmails(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := db.Collection("members").InsertMany(ctx, []interface{}{
		bson.M{"email": "dup@example.com"},
		bson.M{"email": "dup@example.com"},
	})
	if err != nil {
		t.Fatalf("seed members: %v", err)
	}

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err == nil {
		t.Fatal("expected EnsureAll to fail with duplicate emails present")
	}
}
