package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThiagoRGoveia/treatment-records/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBManager maintains the patient_headers index table.
type DBManager interface {
	CreatePatientHeadersTable() error
	CreatePatientHeadersIndexes() error
	ReplaceDatabaseHeaders(dbName string, rows []HeaderRow) (*IndexResult, error)
	CountPatientHeaders() (map[string]int, error)
}

func ConnectDB(connStr string) (*pgxpool.Pool, error) {
	dbpool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	return dbpool, nil
}

// HeaderRow is one indexed header.
type HeaderRow struct {
	DBName           string
	UID              string
	MRN              string
	NameFirst        string
	NameLast         string
	Gender           int
	DateLastModified time.Time
	Approved         bool
	FilePath         string
}

// HeaderRowFrom flattens h into an index row of database dbName. Record
// timestamps carry no zone, so they are stored as UTC wall-clock values.
func HeaderRowFrom(dbName string, h *models.PatientHeader) HeaderRow {
	return HeaderRow{
		DBName:           dbName,
		UID:              h.UID,
		MRN:              h.MRN,
		NameFirst:        h.NameFirst,
		NameLast:         h.NameLast,
		Gender:           h.Gender,
		DateLastModified: h.DateLastModified.Time(time.UTC),
		Approved:         h.HasApproved(),
		FilePath:         h.FilePath,
	}
}

// IndexResult counts what one ReplaceDatabaseHeaders call changed.
type IndexResult struct {
	Upserted int64
	Deleted  int64
}

type PostgresDBManager struct {
	dbpool *pgxpool.Pool
	ctx    context.Context
	logger *slog.Logger
}

func NewPostgresDBManager(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) *PostgresDBManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresDBManager{dbpool: pool, ctx: ctx, logger: logger}
}

func (m *PostgresDBManager) CreatePatientHeadersTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS patient_headers (
		db_name VARCHAR(255) NOT NULL,
		rs_uid VARCHAR(255) NOT NULL,
		mrn VARCHAR(255) NOT NULL,
		name_first VARCHAR(255) NOT NULL,
		name_last VARCHAR(255) NOT NULL,
		gender SMALLINT NOT NULL,
		date_last_modified TIMESTAMP NOT NULL,
		approved BOOLEAN NOT NULL,
		file_path TEXT NOT NULL,
		PRIMARY KEY (db_name, rs_uid)
	);`

	_, err := m.dbpool.Exec(m.ctx, query)
	if err != nil {
		return fmt.Errorf("error creating patient_headers table: %v", err)
	}

	return nil
}

func (m *PostgresDBManager) CreatePatientHeadersIndexes() error {
	queries := []string{
		`CREATE INDEX IF NOT EXISTS idx_patient_headers_mrn ON patient_headers (mrn) INCLUDE (db_name, rs_uid);`,
		`CREATE INDEX IF NOT EXISTS idx_patient_headers_approved ON patient_headers (db_name) WHERE approved;`,
	}

	for _, query := range queries {
		_, err := m.dbpool.Exec(m.ctx, query)
		if err != nil {
			return fmt.Errorf("error creating index: %v", err)
		}
	}

	return nil
}

// ReplaceDatabaseHeaders makes the index rows of dbName equal rows. The rows
// are bulk loaded into a transaction-scoped staging table, upserted into
// patient_headers, and rows of dbName missing from the staging table are
// deleted, all in one transaction.
func (m *PostgresDBManager) ReplaceDatabaseHeaders(dbName string, rows []HeaderRow) (*IndexResult, error) {
	tx, err := m.dbpool.Begin(m.ctx)
	if err != nil {
		return nil, fmt.Errorf("error beginning transaction: %v", err)
	}
	defer tx.Rollback(m.ctx)

	_, err = tx.Exec(m.ctx, `CREATE TEMP TABLE patient_headers_staging (LIKE patient_headers INCLUDING DEFAULTS) ON COMMIT DROP;`)
	if err != nil {
		return nil, fmt.Errorf("error creating staging table: %v", err)
	}

	m.logger.Info("Bulk loading headers into staging table", "db", dbName, "rows", len(rows))
	if err := m.copyHeadersIntoStagingTable(tx, dbName, rows); err != nil {
		return nil, fmt.Errorf("unable to copy headers of %s to staging table: %v", dbName, err)
	}

	upsertQuery := `
	INSERT INTO patient_headers (db_name, rs_uid, mrn, name_first, name_last, gender, date_last_modified, approved, file_path)
	SELECT db_name, rs_uid, mrn, name_first, name_last, gender, date_last_modified, approved, file_path
	FROM patient_headers_staging
	ON CONFLICT (db_name, rs_uid) DO UPDATE SET
		mrn = EXCLUDED.mrn,
		name_first = EXCLUDED.name_first,
		name_last = EXCLUDED.name_last,
		gender = EXCLUDED.gender,
		date_last_modified = EXCLUDED.date_last_modified,
		approved = EXCLUDED.approved,
		file_path = EXCLUDED.file_path;`

	upserted, err := tx.Exec(m.ctx, upsertQuery)
	if err != nil {
		return nil, fmt.Errorf("error upserting headers of %s: %v", dbName, err)
	}

	deleteQuery := `
	DELETE FROM patient_headers p
	WHERE p.db_name = $1
	AND NOT EXISTS (
		SELECT 1
		FROM patient_headers_staging s
		WHERE s.db_name = p.db_name AND s.rs_uid = p.rs_uid
	);`

	deleted, err := tx.Exec(m.ctx, deleteQuery, dbName)
	if err != nil {
		return nil, fmt.Errorf("error deleting missing headers of %s: %v", dbName, err)
	}

	if err := tx.Commit(m.ctx); err != nil {
		return nil, fmt.Errorf("error committing transaction: %v", err)
	}

	return &IndexResult{Upserted: upserted.RowsAffected(), Deleted: deleted.RowsAffected()}, nil
}

func (m *PostgresDBManager) copyHeadersIntoStagingTable(tx pgx.Tx, dbName string, rows []HeaderRow) error {
	columnNames := []string{
		"db_name", "rs_uid", "mrn", "name_first", "name_last", "gender", "date_last_modified", "approved", "file_path",
	}

	copySource := pgx.CopyFromSlice(len(rows), func(i int) ([]interface{}, error) {
		row := rows[i]
		if row.DBName != dbName {
			return nil, fmt.Errorf("row %s belongs to database %s, not %s", row.UID, row.DBName, dbName)
		}
		return []interface{}{row.DBName, row.UID, row.MRN, row.NameFirst, row.NameLast, row.Gender, row.DateLastModified, row.Approved, row.FilePath},
			nil
	})

	_, err := tx.CopyFrom(
		m.ctx,
		pgx.Identifier{"patient_headers_staging"},
		columnNames,
		copySource,
	)

	return err
}

// CountPatientHeaders returns the number of indexed headers per database.
func (m *PostgresDBManager) CountPatientHeaders() (map[string]int, error) {
	rows, err := m.dbpool.Query(m.ctx, `SELECT db_name, COUNT(*) FROM patient_headers GROUP BY db_name;`)
	if err != nil {
		return nil, fmt.Errorf("error counting patient headers: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			name  string
			count int
		)
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("error scanning header count: %w", err)
		}
		counts[name] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}

	return counts, nil
}
