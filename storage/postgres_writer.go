package storage

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"credit-cleaner/models"
	"credit-cleaner/utils"
)

var (
	_ TableWriter = (*PostgresWriter)(nil)
	_ RunReader   = (*PostgresWriter)(nil)
)

// PostgresWriter persists cleaned credit applications to PostgreSQL.
type PostgresWriter struct {
	db    *sqlx.DB
	runID string
}

// NewPostgresWriter opens a connection to PostgreSQL, retrying the ping with
// back-off, runs schema migrations and returns a ready-to-use PostgresWriter.
// Rows it writes are tagged with runID.
func NewPostgresWriter(dsn, runID string, retry *utils.RetryConfig) (*PostgresWriter, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := retry.Do("postgres ping", db.Ping); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pw := &PostgresWriter{db: db, runID: runID}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS credit_applications (
			id                     SERIAL PRIMARY KEY,
			run_id                 UUID         NOT NULL,
			sexo                   TEXT         NOT NULL,
			tipo_de_emprendimiento TEXT         NOT NULL,
			idea_negocio           TEXT         NOT NULL,
			barrio                 TEXT         NOT NULL,
			estrato                TEXT         NOT NULL DEFAULT '',
			comuna_ciudadano       TEXT         NOT NULL DEFAULT '',
			fecha_de_beneficio     DATE         NOT NULL,
			monto_del_credito      TEXT         NOT NULL,
			linea_credito          TEXT         NOT NULL,
			created_at             TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_credit_applications_run    ON credit_applications(run_id);
		CREATE INDEX IF NOT EXISTS idx_credit_applications_barrio ON credit_applications(barrio);
		CREATE INDEX IF NOT EXISTS idx_credit_applications_fecha  ON credit_applications(fecha_de_beneficio);
	`)
	return err
}

// Write batch-inserts every row of the cleaned table under the writer's run id.
func (pw *PostgresWriter) Write(t *models.Table) error {
	apps, err := ToApplications(t, pw.runID)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	if len(apps) == 0 {
		return nil
	}

	tx, err := pw.db.Beginx()
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}

	const batchSize = 50
	for i := 0; i < len(apps); i += batchSize {
		end := i + batchSize
		if end > len(apps) {
			end = len(apps)
		}
		if _, err := tx.NamedExec(`
			INSERT INTO credit_applications
				(run_id, sexo, tipo_de_emprendimiento, idea_negocio, barrio, estrato,
				 comuna_ciudadano, fecha_de_beneficio, monto_del_credito, linea_credito)
			VALUES
				(:run_id, :sexo, :tipo_de_emprendimiento, :idea_negocio, :barrio, :estrato,
				 :comuna_ciudadano, :fecha_de_beneficio, :monto_del_credito, :linea_credito)
		`, apps[i:end]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("postgres: insert batch at row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

// FetchRun retrieves the applications stored for one run.
func (pw *PostgresWriter) FetchRun(runID string) ([]*models.CreditApplication, error) {
	var apps []*models.CreditApplication
	err := pw.db.Select(&apps, `
		SELECT id, run_id, sexo, tipo_de_emprendimiento, idea_negocio, barrio, estrato,
		       comuna_ciudadano, fecha_de_beneficio, monto_del_credito, linea_credito, created_at
		FROM credit_applications
		WHERE run_id = $1
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch run: %w", err)
	}
	return apps, nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// ToApplications maps each row of a cleaned table to a CreditApplication.
// The benefit date column must already hold parsed dates; estrato and
// comuna_ciudadano are optional.
func ToApplications(t *models.Table, runID string) ([]models.CreditApplication, error) {
	required := []string{
		models.ColSex, models.ColBusinessType, models.ColBusinessIdea, models.ColNeighborhood,
		models.ColBenefitDate, models.ColAmount, models.ColCreditLine,
	}
	for _, col := range required {
		if t.Index(col) < 0 {
			return nil, fmt.Errorf("table has no %q column", col)
		}
	}

	text := func(row []models.Cell, col string) string {
		if idx := t.Index(col); idx >= 0 {
			return row[idx].String()
		}
		return ""
	}

	dateIdx := t.Index(models.ColBenefitDate)
	apps := make([]models.CreditApplication, 0, t.Len())
	for i, row := range t.Rows {
		date := row[dateIdx]
		if date.Kind != models.KindDate {
			return nil, fmt.Errorf("row %d: %s is not a parsed date", i, models.ColBenefitDate)
		}
		apps = append(apps, models.CreditApplication{
			RunID:        runID,
			Sex:          text(row, models.ColSex),
			BusinessType: text(row, models.ColBusinessType),
			BusinessIdea: text(row, models.ColBusinessIdea),
			Neighborhood: text(row, models.ColNeighborhood),
			Stratum:      text(row, models.ColStratum),
			District:     text(row, models.ColDistrict),
			BenefitDate:  date.Date,
			Amount:       text(row, models.ColAmount),
			CreditLine:   text(row, models.ColCreditLine),
			CreatedAt:    time.Now(),
		})
	}
	return apps, nil
}
