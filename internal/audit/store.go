package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/ohkbilal/certa/internal/assess"
	"github.com/ohkbilal/certa/internal/regime"
	"github.com/ohkbilal/certa/internal/seal"
)

// ErrNotFound is returned when a run id has no recorded assessment.
var ErrNotFound = errors.New("assessment not found")

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// #region schema
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS assessments (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id           TEXT NOT NULL UNIQUE,
	fluid_id         TEXT NOT NULL,
	concentration    REAL NOT NULL,
	temperature      REAL NOT NULL,
	primary_regime   TEXT NOT NULL,
	valid            INTEGER NOT NULL,
	seal_state       TEXT NOT NULL,
	context_json     TEXT NOT NULL,
	material_results TEXT NOT NULL,
	seal_results     TEXT NOT NULL,
	policy_version   TEXT NOT NULL,
	fao_hash         TEXT NOT NULL,
	created_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS promotion_log (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	material_id  TEXT NOT NULL,
	from_status  TEXT NOT NULL,
	to_status    TEXT NOT NULL,
	decision     TEXT NOT NULL,
	reason       TEXT,
	metrics_json TEXT,
	signature    TEXT,
	created_at   TEXT NOT NULL
);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS assessments (
	id               BIGSERIAL PRIMARY KEY,
	run_id           TEXT NOT NULL UNIQUE,
	fluid_id         TEXT NOT NULL,
	concentration    DOUBLE PRECISION NOT NULL,
	temperature      DOUBLE PRECISION NOT NULL,
	primary_regime   TEXT NOT NULL,
	valid            INTEGER NOT NULL,
	seal_state       TEXT NOT NULL,
	context_json     TEXT NOT NULL,
	material_results TEXT NOT NULL,
	seal_results     TEXT NOT NULL,
	policy_version   TEXT NOT NULL,
	fao_hash         TEXT NOT NULL,
	created_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS promotion_log (
	id           BIGSERIAL PRIMARY KEY,
	material_id  TEXT NOT NULL,
	from_status  TEXT NOT NULL,
	to_status    TEXT NOT NULL,
	decision     TEXT NOT NULL,
	reason       TEXT,
	metrics_json TEXT,
	signature    TEXT,
	created_at   TEXT NOT NULL
);
`

// #endregion schema

// #region store-struct
// Store persists assessment evidence in SQLite or Postgres.
type Store struct {
	db     *sql.DB
	driver string
	log    *zap.Logger
	now    func() time.Time
}

// #endregion store-struct

// #region constructor
// Open connects to dsn with the named driver and runs migrations. Driver
// "sqlite" takes a file path; "pgx" (or "postgres") takes a connection URL.
// A nil logger disables logging.
func Open(ctx context.Context, driver, dsn string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch strings.ToLower(driver) {
	case "", DriverSQLite:
		driver = DriverSQLite
	case DriverPostgres, "postgres", "postgresql":
		driver = DriverPostgres
	default:
		return nil, fmt.Errorf("open audit store: unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &Store{db: db, driver: driver, log: log, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Debug("audit store open", zap.String("driver", driver))
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	if s.driver == DriverSQLite {
		// a single connection serialises writers instead of surfacing SQLITE_BUSY
		s.db.SetMaxOpenConns(1)
		if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			return fmt.Errorf("pragma: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		return nil
	}
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the normalized driver name.
func (s *Store) Driver() string { return s.driver }

// #endregion close

// #region record
// Record persists an assessment output and returns the stored row. A run
// id can be recorded only once.
func (s *Store) Record(ctx context.Context, out assess.Output) (Record, error) {
	hash, err := out.Hash()
	if err != nil {
		return Record{}, fmt.Errorf("record %s: %w", out.Context.RunID, err)
	}
	rec := Record{
		RunID:           out.Context.RunID,
		FluidID:         out.Context.FluidID,
		Concentration:   out.Context.Concentration,
		Temperature:     out.Context.Temperature,
		PrimaryRegime:   out.Context.PrimaryRegime,
		Valid:           out.Context.Valid,
		SealState:       out.Seal.State,
		Context:         out.Context,
		MaterialResults: out.Materials,
		SealResults:     out.Seal,
		PolicyVersion:   out.Context.PolicyVersion,
		FAOHash:         hash,
		CreatedAt:       s.now().UTC(),
	}

	ctxJSON, err := json.Marshal(rec.Context)
	if err != nil {
		return Record{}, fmt.Errorf("marshal context: %w", err)
	}
	matJSON, err := json.Marshal(rec.MaterialResults)
	if err != nil {
		return Record{}, fmt.Errorf("marshal material results: %w", err)
	}
	sealJSON, err := json.Marshal(rec.SealResults)
	if err != nil {
		return Record{}, fmt.Errorf("marshal seal results: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.rebind(
		`INSERT INTO assessments (run_id, fluid_id, concentration, temperature, primary_regime, valid,
		  seal_state, context_json, material_results, seal_results, policy_version, fao_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		rec.RunID, rec.FluidID, rec.Concentration, rec.Temperature, string(rec.PrimaryRegime),
		boolInt(rec.Valid), string(rec.SealState), string(ctxJSON), string(matJSON), string(sealJSON),
		rec.PolicyVersion, rec.FAOHash, rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert assessment %s: %w", rec.RunID, err)
	}
	if err := tx.Commit(); err != nil {
		return Record{}, fmt.Errorf("commit: %w", err)
	}

	s.log.Info("assessment recorded",
		zap.String("run_id", rec.RunID),
		zap.String("fluid_id", rec.FluidID),
		zap.String("regime", string(rec.PrimaryRegime)),
		zap.String("seal_state", string(rec.SealState)),
		zap.String("fao_hash", rec.FAOHash),
	)
	return rec, nil
}

// #endregion record

// #region get
const selectColumns = `run_id, fluid_id, concentration, temperature, primary_regime, valid, seal_state,
 context_json, material_results, seal_results, policy_version, fao_hash, created_at`

// Get retrieves the assessment recorded under runID.
func (s *Store) Get(ctx context.Context, runID string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+selectColumns+` FROM assessments WHERE run_id = ?`), runID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("get assessment %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get assessment %s: %w", runID, err)
	}
	return rec, nil
}

// #endregion get

// #region list
// List returns the most recent assessments, newest first. A non-positive
// limit returns every row.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	q := `SELECT ` + selectColumns + ` FROM assessments ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count returns the number of recorded assessments.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assessments`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count assessments: %w", err)
	}
	return n, nil
}

// #endregion list

// #region scan
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var rec Record
	var regimeStr, sealState, ctxJSON, matJSON, sealJSON, createdStr string
	var valid int
	err := sc.Scan(&rec.RunID, &rec.FluidID, &rec.Concentration, &rec.Temperature, &regimeStr, &valid,
		&sealState, &ctxJSON, &matJSON, &sealJSON, &rec.PolicyVersion, &rec.FAOHash, &createdStr)
	if err != nil {
		return Record{}, err
	}
	rec.PrimaryRegime = regime.Regime(regimeStr)
	rec.Valid = valid != 0
	rec.SealState = seal.State(sealState)
	if err := json.Unmarshal([]byte(ctxJSON), &rec.Context); err != nil {
		return Record{}, fmt.Errorf("unmarshal context: %w", err)
	}
	if err := json.Unmarshal([]byte(matJSON), &rec.MaterialResults); err != nil {
		return Record{}, fmt.Errorf("unmarshal material results: %w", err)
	}
	if err := json.Unmarshal([]byte(sealJSON), &rec.SealResults); err != nil {
		return Record{}, fmt.Errorf("unmarshal seal results: %w", err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return rec, nil
}

// #endregion scan

// #region helpers

// rebind rewrites ? placeholders to $n for Postgres.
func (s *Store) rebind(q string) string {
	if s.driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
