// Package integration holds tests that run against a real PostgreSQL
// database. They are skipped unless TEST_DATABASE_URL is set, e.g.
//
//	TEST_DATABASE_URL=postgres://localhost:5432/kinedesk_test go test ./test/integration/...
package integration

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kinedesk/kinedesk/internal/domain/patient"
	"github.com/kinedesk/kinedesk/internal/domain/session"
	"github.com/kinedesk/kinedesk/internal/domain/treatment"
	"github.com/kinedesk/kinedesk/internal/platform/db"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, url, 4, 1)
	if err != nil {
		t.Fatalf("connecting to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := db.NewMigrator(pool, "../../migrations").Up(ctx); err != nil {
		t.Fatalf("applying migrations: %v", err)
	}
	return pool
}

// Deleting a patient must take its treatments and their sessions with it.
// The schema enforces this with ON DELETE CASCADE; this exercises the real
// foreign keys rather than a fake.
func TestDeletePatient_CascadesThroughSchema(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	patients := patient.NewRepo(pool)
	treatments := treatment.NewRepo(pool)
	sessions := session.NewRepo(pool)

	p := &patient.Patient{Name: "Benali", FirstName: "Yasmine"}
	if err := patients.Create(ctx, p); err != nil {
		t.Fatal(err)
	}
	tr := &treatment.Treatment{
		PatientID:       p.ID,
		Diagnosis:       "lumbar sprain",
		StartDate:       "2026-08-01",
		PlannedSessions: 10,
		Status:          treatment.StatusOngoing,
	}
	if err := treatments.Create(ctx, tr); err != nil {
		t.Fatal(err)
	}
	sess := &session.Session{TreatmentID: tr.ID, Date: "2026-08-05", DurationMinutes: 45}
	if err := sessions.Create(ctx, sess); err != nil {
		t.Fatal(err)
	}

	if err := patients.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	if _, err := treatments.GetByID(ctx, tr.ID); !errors.Is(err, treatment.ErrNotFound) {
		t.Errorf("treatment survived patient delete: err = %v", err)
	}
	if _, err := sessions.GetByID(ctx, sess.ID); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("session survived patient delete: err = %v", err)
	}
}

func TestDeleteTreatment_CascadesSessions(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	patients := patient.NewRepo(pool)
	treatments := treatment.NewRepo(pool)
	sessions := session.NewRepo(pool)

	p := &patient.Patient{Name: "Cherkaoui"}
	if err := patients.Create(ctx, p); err != nil {
		t.Fatal(err)
	}
	defer patients.Delete(ctx, p.ID)

	tr := &treatment.Treatment{
		PatientID:       p.ID,
		StartDate:       "2026-08-10",
		PlannedSessions: 6,
		Status:          treatment.StatusOngoing,
	}
	if err := treatments.Create(ctx, tr); err != nil {
		t.Fatal(err)
	}
	sess := &session.Session{TreatmentID: tr.ID, Date: "2026-08-12", DurationMinutes: 45}
	if err := sessions.Create(ctx, sess); err != nil {
		t.Fatal(err)
	}

	if err := treatments.Delete(ctx, tr.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	if _, err := sessions.GetByID(ctx, sess.ID); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("session survived treatment delete: err = %v", err)
	}
	if _, err := patients.GetByID(ctx, p.ID); err != nil {
		t.Errorf("owner patient must survive: %v", err)
	}
}
