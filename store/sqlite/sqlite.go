/*
Package sqlite provides a SQLite-backed implementation of the salary storage
interfaces.

PURPOSE:
  Implements salary.Store (DutyStore, CalculationStore, ProfileStore) using
  SQLite. In production the same patterns apply to PostgreSQL - only minor
  SQL dialect differences.

KEY TABLES:
  flight_duties:        One row per duty record. Identity fields are only
                        written on insert; the edit path rewrites just the
                        time-derived columns in a single UPDATE.
  monthly_calculations: One row per (user, month, year). Saving is an
                        INSERT .. ON CONFLICT full-row replace - the table
                        holds derived data and is never merged into.
  profiles:             Crew member position (pay band) per user.

INDEXES:
  idx_duties_user_month: (user_id, year, month) - the recalculation hot path
  idx_duties_user_date:  (user_id, date) - roster listings

DECIMALS:
  Hours and money are stored as exact decimal strings, never floats. They
  round-trip through shopspring/decimal without loss.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of WAL mode. The engine assumes
  last-write-wins for concurrent recalculations of the same month; the
  primary key on (user_id, year, month) plus the upsert makes the last
  writer win cleanly.

USAGE:
  store, err := sqlite.New("./data/crewpay.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - salary/store.go: Interface definitions
  - salary/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/crewpay/salary-engine/salary"
)

// Store implements salary.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ salary.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS profiles (
		user_id TEXT PRIMARY KEY,
		email TEXT NOT NULL DEFAULT '',
		airline TEXT NOT NULL DEFAULT '',
		position TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS flight_duties (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		date TEXT NOT NULL,
		duty_type TEXT NOT NULL,
		flight_numbers TEXT NOT NULL DEFAULT '[]',
		sectors TEXT NOT NULL DEFAULT '[]',
		report_time TEXT NOT NULL DEFAULT '00:00',
		debrief_time TEXT NOT NULL DEFAULT '00:00',
		is_cross_day INTEGER NOT NULL DEFAULT 0,
		duty_hours TEXT NOT NULL DEFAULT '0',
		flight_pay TEXT NOT NULL DEFAULT '0',
		data_source TEXT NOT NULL DEFAULT 'manual',
		month INTEGER NOT NULL,
		year INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_duties_user_month
		ON flight_duties(user_id, year, month);
	CREATE INDEX IF NOT EXISTS idx_duties_user_date
		ON flight_duties(user_id, date);

	CREATE TABLE IF NOT EXISTS monthly_calculations (
		user_id TEXT NOT NULL,
		month INTEGER NOT NULL,
		year INTEGER NOT NULL,
		basic_salary TEXT NOT NULL,
		housing_allowance TEXT NOT NULL,
		transport_allowance TEXT NOT NULL,
		total_fixed TEXT NOT NULL,
		flight_pay TEXT NOT NULL,
		per_diem_pay TEXT NOT NULL,
		asby_pay TEXT NOT NULL,
		total_variable TEXT NOT NULL,
		total_duty_hours TEXT NOT NULL,
		total_rest_hours TEXT NOT NULL,
		asby_count INTEGER NOT NULL,
		total_salary TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (user_id, year, month)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// DUTY STORE
// =============================================================================

const dutyColumns = `id, user_id, date, duty_type, flight_numbers, sectors,
	report_time, debrief_time, is_cross_day, duty_hours, flight_pay,
	data_source, month, year, created_at, updated_at`

// CreateDuty inserts one duty record, assigning a UUID if the ID is empty.
func (s *Store) CreateDuty(ctx context.Context, duty *salary.FlightDuty) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertDuty(ctx, s.db, duty)
}

// CreateDuties inserts a batch inside one transaction - all or none.
func (s *Store) CreateDuties(ctx context.Context, duties []*salary.FlightDuty) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, d := range duties {
		if err := insertDuty(ctx, tx, d); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertDuty(ctx context.Context, db execer, duty *salary.FlightDuty) error {
	if duty.ID == "" {
		duty.ID = salary.DutyID(uuid.NewString())
	}
	now := time.Now().UTC()
	if duty.CreatedAt.IsZero() {
		duty.CreatedAt = now
	}
	duty.UpdatedAt = now

	numbers, err := json.Marshal(duty.FlightNumbers)
	if err != nil {
		return err
	}
	sectors, err := json.Marshal(duty.Sectors)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO flight_duties (`+dutyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(duty.ID), string(duty.UserID), duty.Date.UTC().Format("2006-01-02"),
		string(duty.DutyType), string(numbers), string(sectors),
		duty.ReportTime.String(), duty.DebriefTime.String(), boolToInt(duty.IsCrossDay),
		duty.DutyHours.String(), duty.FlightPay.String(), string(duty.DataSource),
		duty.Month, duty.Year,
		duty.CreatedAt.Format(time.RFC3339), duty.UpdatedAt.Format(time.RFC3339),
	)
	return err
}

// GetDuty returns one record or salary.ErrDutyNotFound.
func (s *Store) GetDuty(ctx context.Context, id salary.DutyID) (salary.FlightDuty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+dutyColumns+` FROM flight_duties WHERE id = ?`, string(id))
	duty, err := scanDuty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return salary.FlightDuty{}, salary.ErrDutyNotFound
	}
	return duty, err
}

// ListDuties returns the user's full duty list ordered by date.
func (s *Store) ListDuties(ctx context.Context, userID salary.UserID) ([]salary.FlightDuty, error) {
	return s.queryDuties(ctx,
		`SELECT `+dutyColumns+` FROM flight_duties WHERE user_id = ? ORDER BY date, id`,
		string(userID))
}

// ListMonthDuties returns the user's duties for one (month, year).
func (s *Store) ListMonthDuties(ctx context.Context, userID salary.UserID, month, year int) ([]salary.FlightDuty, error) {
	return s.queryDuties(ctx,
		`SELECT `+dutyColumns+` FROM flight_duties
		 WHERE user_id = ? AND month = ? AND year = ? ORDER BY date, id`,
		string(userID), month, year)
}

func (s *Store) queryDuties(ctx context.Context, query string, args ...any) ([]salary.FlightDuty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var duties []salary.FlightDuty
	for rows.Next() {
		duty, err := scanDuty(rows)
		if err != nil {
			return nil, err
		}
		duties = append(duties, duty)
	}
	return duties, rows.Err()
}

// UpdateDutyTimes rewrites the time-derived columns of one record in a
// single UPDATE. Identity columns are untouched.
func (s *Store) UpdateDutyTimes(ctx context.Context, id salary.DutyID, update salary.DutyTimesUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE flight_duties
		SET report_time = ?, debrief_time = ?, is_cross_day = ?,
		    duty_hours = ?, flight_pay = ?, data_source = ?, updated_at = ?
		WHERE id = ?`,
		update.ReportTime.String(), update.DebriefTime.String(), boolToInt(update.IsCrossDay),
		update.DutyHours.String(), update.FlightPay.String(), string(salary.SourceEdited),
		time.Now().UTC().Format(time.RFC3339), string(id),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return salary.ErrDutyNotFound
	}
	return nil
}

// DeleteDuty removes one record.
func (s *Store) DeleteDuty(ctx context.Context, id salary.DutyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM flight_duties WHERE id = ?`, string(id))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return salary.ErrDutyNotFound
	}
	return nil
}

// DeleteDuties removes a batch inside one transaction and returns the
// removed rows so callers can scope recalculation from their month/year,
// captured before deletion.
func (s *Store) DeleteDuties(ctx context.Context, ids []salary.DutyID) ([]salary.FlightDuty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	removed := make([]salary.FlightDuty, 0, len(ids))
	for _, id := range ids {
		row := tx.QueryRowContext(ctx,
			`SELECT `+dutyColumns+` FROM flight_duties WHERE id = ?`, string(id))
		duty, err := scanDuty(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, salary.ErrDutyNotFound
		}
		if err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM flight_duties WHERE id = ?`, string(id)); err != nil {
			return nil, err
		}
		removed = append(removed, duty)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return removed, nil
}

// =============================================================================
// CALCULATION STORE
// =============================================================================

// SaveCalculation replaces the month's row wholesale (upsert).
func (s *Store) SaveCalculation(ctx context.Context, calc salary.MonthlyCalculation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO monthly_calculations (
			user_id, month, year,
			basic_salary, housing_allowance, transport_allowance, total_fixed,
			flight_pay, per_diem_pay, asby_pay, total_variable,
			total_duty_hours, total_rest_hours, asby_count, total_salary, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, year, month) DO UPDATE SET
			basic_salary = excluded.basic_salary,
			housing_allowance = excluded.housing_allowance,
			transport_allowance = excluded.transport_allowance,
			total_fixed = excluded.total_fixed,
			flight_pay = excluded.flight_pay,
			per_diem_pay = excluded.per_diem_pay,
			asby_pay = excluded.asby_pay,
			total_variable = excluded.total_variable,
			total_duty_hours = excluded.total_duty_hours,
			total_rest_hours = excluded.total_rest_hours,
			asby_count = excluded.asby_count,
			total_salary = excluded.total_salary,
			updated_at = excluded.updated_at`,
		string(calc.UserID), calc.Month, calc.Year,
		calc.BasicSalary.String(), calc.HousingAllowance.String(),
		calc.TransportAllowance.String(), calc.TotalFixed.String(),
		calc.FlightPay.String(), calc.PerDiemPay.String(),
		calc.ASBYPay.String(), calc.TotalVariable.String(),
		calc.TotalDutyHours.String(), calc.TotalRestHours.String(),
		calc.ASBYCount, calc.TotalSalary.String(),
		calc.UpdatedAt.Format(time.RFC3339),
	)
	return err
}

// GetCalculation returns the stored calculation or salary.ErrCalculationNotFound.
func (s *Store) GetCalculation(ctx context.Context, userID salary.UserID, month, year int) (salary.MonthlyCalculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, month, year,
		       basic_salary, housing_allowance, transport_allowance, total_fixed,
		       flight_pay, per_diem_pay, asby_pay, total_variable,
		       total_duty_hours, total_rest_hours, asby_count, total_salary, updated_at
		FROM monthly_calculations
		WHERE user_id = ? AND month = ? AND year = ?`,
		string(userID), month, year)
	calc, err := scanCalculation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return salary.MonthlyCalculation{}, salary.ErrCalculationNotFound
	}
	return calc, err
}

// ListCalculations returns all stored calculations for a user, newest first.
func (s *Store) ListCalculations(ctx context.Context, userID salary.UserID) ([]salary.MonthlyCalculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, month, year,
		       basic_salary, housing_allowance, transport_allowance, total_fixed,
		       flight_pay, per_diem_pay, asby_pay, total_variable,
		       total_duty_hours, total_rest_hours, asby_count, total_salary, updated_at
		FROM monthly_calculations
		WHERE user_id = ?
		ORDER BY year DESC, month DESC`,
		string(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calcs []salary.MonthlyCalculation
	for rows.Next() {
		calc, err := scanCalculation(rows)
		if err != nil {
			return nil, err
		}
		calcs = append(calcs, calc)
	}
	return calcs, rows.Err()
}

// DeleteCalculation removes a month's calculation. Absent rows are fine.
func (s *Store) DeleteCalculation(ctx context.Context, userID salary.UserID, month, year int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM monthly_calculations WHERE user_id = ? AND month = ? AND year = ?`,
		string(userID), month, year)
	return err
}

// =============================================================================
// PROFILE STORE
// =============================================================================

// GetProfile returns the user's profile or salary.ErrProfileNotFound.
func (s *Store) GetProfile(ctx context.Context, userID salary.UserID) (salary.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p salary.Profile
	var id, position, createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, email, airline, position, created_at, updated_at
		 FROM profiles WHERE user_id = ?`, string(userID)).
		Scan(&id, &p.Email, &p.Airline, &position, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return salary.Profile{}, salary.ErrProfileNotFound
	}
	if err != nil {
		return salary.Profile{}, err
	}
	p.UserID = salary.UserID(id)
	p.Position = salary.Position(position)
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return p, nil
}

// SaveProfile inserts or updates a profile.
func (s *Store) SaveProfile(ctx context.Context, profile salary.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, email, airline, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			email = excluded.email,
			airline = excluded.airline,
			position = excluded.position,
			updated_at = excluded.updated_at`,
		string(profile.UserID), profile.Email, profile.Airline,
		string(profile.Position), now, now)
	return err
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanDuty(row scanner) (salary.FlightDuty, error) {
	var d salary.FlightDuty
	var id, userID, date, dutyType, numbers, sectors string
	var reportTime, debriefTime, dutyHours, flightPay, dataSource string
	var crossDay int
	var createdAt, updatedAt string

	err := row.Scan(&id, &userID, &date, &dutyType, &numbers, &sectors,
		&reportTime, &debriefTime, &crossDay, &dutyHours, &flightPay,
		&dataSource, &d.Month, &d.Year, &createdAt, &updatedAt)
	if err != nil {
		return salary.FlightDuty{}, err
	}

	d.ID = salary.DutyID(id)
	d.UserID = salary.UserID(userID)
	d.DutyType = salary.DutyType(dutyType)
	d.DataSource = salary.DataSource(dataSource)
	d.IsCrossDay = crossDay != 0

	if d.Date, err = time.Parse("2006-01-02", date); err != nil {
		return salary.FlightDuty{}, fmt.Errorf("duty %s: bad date %q: %w", id, date, err)
	}
	if err := json.Unmarshal([]byte(numbers), &d.FlightNumbers); err != nil {
		return salary.FlightDuty{}, fmt.Errorf("duty %s: bad flight_numbers: %w", id, err)
	}
	if err := json.Unmarshal([]byte(sectors), &d.Sectors); err != nil {
		return salary.FlightDuty{}, fmt.Errorf("duty %s: bad sectors: %w", id, err)
	}
	if d.ReportTime, err = salary.ParseTimeOfDay(reportTime); err != nil {
		return salary.FlightDuty{}, fmt.Errorf("duty %s: %w", id, err)
	}
	if d.DebriefTime, err = salary.ParseTimeOfDay(debriefTime); err != nil {
		return salary.FlightDuty{}, fmt.Errorf("duty %s: %w", id, err)
	}
	if d.DutyHours, err = decimal.NewFromString(dutyHours); err != nil {
		return salary.FlightDuty{}, fmt.Errorf("duty %s: bad duty_hours: %w", id, err)
	}
	if d.FlightPay, err = decimal.NewFromString(flightPay); err != nil {
		return salary.FlightDuty{}, fmt.Errorf("duty %s: bad flight_pay: %w", id, err)
	}
	d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	d.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return d, nil
}

func scanCalculation(row scanner) (salary.MonthlyCalculation, error) {
	var c salary.MonthlyCalculation
	var userID, updatedAt string
	cols := make([]string, 11)

	err := row.Scan(&userID, &c.Month, &c.Year,
		&cols[0], &cols[1], &cols[2], &cols[3],
		&cols[4], &cols[5], &cols[6], &cols[7],
		&cols[8], &cols[9], &c.ASBYCount, &cols[10], &updatedAt)
	if err != nil {
		return salary.MonthlyCalculation{}, err
	}
	c.UserID = salary.UserID(userID)

	dst := []*decimal.Decimal{
		&c.BasicSalary, &c.HousingAllowance, &c.TransportAllowance, &c.TotalFixed,
		&c.FlightPay, &c.PerDiemPay, &c.ASBYPay, &c.TotalVariable,
		&c.TotalDutyHours, &c.TotalRestHours, &c.TotalSalary,
	}
	for i, col := range cols {
		d, err := decimal.NewFromString(col)
		if err != nil {
			return salary.MonthlyCalculation{}, fmt.Errorf("calculation %s %d/%d: bad decimal %q: %w",
				userID, c.Month, c.Year, col, err)
		}
		*dst[i] = d
	}
	c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return c, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
