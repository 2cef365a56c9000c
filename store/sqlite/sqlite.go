/*
Package sqlite provides a SQLite-backed implementation of ledger.Store.

PURPOSE:
  Persists the study-hall records (students, payments, seats, shifts,
  attendance, activities, settings, users) in a single SQLite file. Only
  raw history is stored; dues and paid-through dates are recomputed by
  the billing engine on every read, so there is no derived-balance table
  to drift out of sync.

AGGREGATE WRITES:
  SaveStudent replaces the whole aggregate in one transaction: the
  profile row is upserted, then the payment and fee-change child rows
  are deleted and reinserted in order. Payments are mutable here (edits
  and deletions are allowed), so the child tables are state, not a log.

KEY TABLES:
  students:    Profile + lifecycle flags, keyed by roll
  payments:    Child rows of students; archived=1 marks past history
  fee_changes: Child rows of students, ordered by position
  seats:       The physical grid
  attendance:  (day, roll) -> present
  settings:    Key/value (halls config, message template, branding)

ENCODING:
  Money is stored as TEXT decimal strings, calendar days as "2006-01-02",
  timestamps as RFC3339.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/studyspace.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := ledger.NewService(store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - ledger/store.go: Interface definition
  - ledger/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/studyspace/fee-engine/billing"
	"github.com/studyspace/fee-engine/ledger"
)

// Store implements ledger.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

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
	-- Students (profile + lifecycle)
	CREATE TABLE IF NOT EXISTS students (
		roll TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		father TEXT,
		student_mobile TEXT,
		parent_mobile TEXT,
		aadhar TEXT,
		shift TEXT,
		photo TEXT,
		form_photo TEXT,
		admission_date TEXT NOT NULL,
		fee_amount TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		deactivated_at TEXT,
		assigned_seat TEXT,
		assigned_at TEXT,
		created_at TEXT NOT NULL
	);

	-- Payments (child rows; archived = moved to past history by a reset)
	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		roll TEXT NOT NULL,
		amount TEXT NOT NULL,
		discount TEXT NOT NULL DEFAULT '0',
		paid_on TEXT NOT NULL,
		duration INTEGER DEFAULT 0,
		pay_type TEXT,
		method TEXT NOT NULL DEFAULT 'cash',
		note TEXT,
		photo TEXT,
		archived BOOLEAN NOT NULL DEFAULT FALSE,
		position INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_payments_roll ON payments(roll);
	CREATE INDEX IF NOT EXISTS idx_payments_paid_on ON payments(paid_on);

	-- Fee changes (append-only per student, ordered by position)
	CREATE TABLE IF NOT EXISTS fee_changes (
		roll TEXT NOT NULL,
		effective_on TEXT NOT NULL,
		fee TEXT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_fee_changes_roll ON fee_changes(roll);

	-- Seats (the physical grid)
	CREATE TABLE IF NOT EXISTS seats (
		id TEXT PRIMARY KEY,
		hall TEXT NOT NULL,
		occupied BOOLEAN NOT NULL DEFAULT FALSE,
		student_roll TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_seats_roll
		ON seats(student_roll) WHERE student_roll IS NOT NULL;

	-- Time shifts
	CREATE TABLE IF NOT EXISTS shifts (
		position INTEGER NOT NULL,
		name TEXT PRIMARY KEY,
		start_at TEXT NOT NULL,
		end_at TEXT NOT NULL
	);

	-- Attendance: one row per (day, roll)
	CREATE TABLE IF NOT EXISTS attendance (
		day TEXT NOT NULL,
		roll TEXT NOT NULL,
		present BOOLEAN NOT NULL,
		PRIMARY KEY (day, roll)
	);

	-- Activity feed
	CREATE TABLE IF NOT EXISTS activities (
		id TEXT PRIMARY KEY,
		at TEXT NOT NULL,
		text TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_activities_at ON activities(at DESC);

	-- Settings (key/value)
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	-- Users (owner credentials)
	CREATE TABLE IF NOT EXISTS users (
		username TEXT PRIMARY KEY,
		password TEXT NOT NULL,
		security_question TEXT,
		security_answer TEXT,
		role TEXT NOT NULL DEFAULT 'owner'
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// STUDENTS (aggregate writes)
// =============================================================================

// SaveStudent replaces the whole aggregate in one transaction.
func (s *Store) SaveStudent(ctx context.Context, st ledger.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO students (roll, name, father, student_mobile, parent_mobile,
			aadhar, shift, photo, form_photo, admission_date, fee_amount,
			active, deactivated_at, assigned_seat, assigned_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(roll) DO UPDATE SET
			name = excluded.name,
			father = excluded.father,
			student_mobile = excluded.student_mobile,
			parent_mobile = excluded.parent_mobile,
			aadhar = excluded.aadhar,
			shift = excluded.shift,
			photo = excluded.photo,
			form_photo = excluded.form_photo,
			admission_date = excluded.admission_date,
			fee_amount = excluded.fee_amount,
			active = excluded.active,
			deactivated_at = excluded.deactivated_at,
			assigned_seat = excluded.assigned_seat,
			assigned_at = excluded.assigned_at
	`,
		st.Roll, st.Name, st.Father, st.StudentMobile, st.ParentMobile,
		st.Aadhar, st.Shift, st.Photo, st.FormPhoto,
		st.AdmissionDate.String(), st.FeeAmount.Value.String(),
		st.Active, nullDay(st.DeactivatedAt),
		nullStr(st.AssignedSeat), nullTime(st.AssignedAt),
		st.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save student %s: %w", st.Roll, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM payments WHERE roll = ?", st.Roll); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM fee_changes WHERE roll = ?", st.Roll); err != nil {
		return err
	}

	insertPayment := `
		INSERT INTO payments (id, roll, amount, discount, paid_on, duration,
			pay_type, method, note, photo, archived, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i, p := range st.Payments {
		if _, err := tx.ExecContext(ctx, insertPayment,
			p.ID, st.Roll, p.Amount.Value.String(), p.Discount.Value.String(),
			p.Date.String(), p.Duration, p.Type, string(p.Method),
			p.Note, p.Photo, false, i,
		); err != nil {
			return fmt.Errorf("failed to save payment for %s: %w", st.Roll, err)
		}
	}
	for i, p := range st.PastHistory {
		if _, err := tx.ExecContext(ctx, insertPayment,
			p.ID, st.Roll, p.Amount.Value.String(), p.Discount.Value.String(),
			p.Date.String(), p.Duration, p.Type, string(p.Method),
			p.Note, p.Photo, true, i,
		); err != nil {
			return fmt.Errorf("failed to save archived payment for %s: %w", st.Roll, err)
		}
	}
	for i, fc := range st.FeeChanges {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO fee_changes (roll, effective_on, fee, position) VALUES (?, ?, ?, ?)",
			st.Roll, fc.EffectiveOn.String(), fc.Fee.Value.String(), i,
		); err != nil {
			return fmt.Errorf("failed to save fee change for %s: %w", st.Roll, err)
		}
	}

	return tx.Commit()
}

func (s *Store) GetStudent(ctx context.Context, roll string) (*ledger.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, err := s.scanStudentRow(s.db.QueryRowContext(ctx, `
		SELECT roll, name, father, student_mobile, parent_mobile, aadhar, shift,
		       photo, form_photo, admission_date, fee_amount, active,
		       deactivated_at, assigned_seat, assigned_at, created_at
		FROM students WHERE roll = ?
	`, roll))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadChildren(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Store) ListStudents(ctx context.Context) ([]ledger.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT roll, name, father, student_mobile, parent_mobile, aadhar, shift,
		       photo, form_photo, admission_date, fee_amount, active,
		       deactivated_at, assigned_seat, assigned_at, created_at
		FROM students ORDER BY roll
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []ledger.Student
	for rows.Next() {
		st, err := s.scanStudentRow(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, *st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range students {
		if err := s.loadChildren(ctx, &students[i]); err != nil {
			return nil, err
		}
	}
	return students, nil
}

func (s *Store) DeleteStudent(ctx context.Context, roll string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM payments WHERE roll = ?",
		"DELETE FROM fee_changes WHERE roll = ?",
		"DELETE FROM attendance WHERE roll = ?",
		"DELETE FROM students WHERE roll = ?",
	} {
		if _, err := tx.ExecContext(ctx, q, roll); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanStudentRow(row rowScanner) (*ledger.Student, error) {
	var (
		st            ledger.Student
		father        sql.NullString
		studentMobile sql.NullString
		parentMobile  sql.NullString
		aadhar        sql.NullString
		shift         sql.NullString
		photo         sql.NullString
		formPhoto     sql.NullString
		admission     string
		fee           string
		deactivatedAt sql.NullString
		assignedSeat  sql.NullString
		assignedAt    sql.NullString
		createdAt     string
	)

	err := row.Scan(
		&st.Roll, &st.Name, &father, &studentMobile, &parentMobile,
		&aadhar, &shift, &photo, &formPhoto, &admission, &fee,
		&st.Active, &deactivatedAt, &assignedSeat, &assignedAt, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	st.Father = father.String
	st.StudentMobile = studentMobile.String
	st.ParentMobile = parentMobile.String
	st.Aadhar = aadhar.String
	st.Shift = shift.String
	st.Photo = photo.String
	st.FormPhoto = formPhoto.String
	st.AssignedSeat = assignedSeat.String

	if st.AdmissionDate, err = billing.ParseDate(admission); err != nil {
		return nil, fmt.Errorf("student %s: %w", st.Roll, err)
	}
	if st.FeeAmount, err = billing.ParseMoney(fee); err != nil {
		return nil, fmt.Errorf("student %s: %w", st.Roll, err)
	}
	if deactivatedAt.Valid {
		d, err := billing.ParseDate(deactivatedAt.String)
		if err != nil {
			return nil, fmt.Errorf("student %s: %w", st.Roll, err)
		}
		st.DeactivatedAt = &d
	}
	if assignedAt.Valid {
		t, _ := time.Parse(time.RFC3339, assignedAt.String)
		st.AssignedAt = &t
	}
	st.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &st, nil
}

func (s *Store) loadChildren(ctx context.Context, st *ledger.Student) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, amount, discount, paid_on, duration, pay_type, method,
		       note, photo, archived
		FROM payments WHERE roll = ? ORDER BY archived, position
	`, st.Roll)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p        ledger.Payment
			amount   string
			discount string
			paidOn   string
			payType  sql.NullString
			method   string
			note     sql.NullString
			photo    sql.NullString
			archived bool
		)
		if err := rows.Scan(&p.ID, &amount, &discount, &paidOn, &p.Duration,
			&payType, &method, &note, &photo, &archived); err != nil {
			return err
		}
		if p.Amount, err = billing.ParseMoney(amount); err != nil {
			return err
		}
		if p.Discount, err = billing.ParseMoney(discount); err != nil {
			return err
		}
		if p.Date, err = billing.ParseDate(paidOn); err != nil {
			return err
		}
		p.Type = payType.String
		p.Method = ledger.PaymentMethod(method)
		p.Note = note.String
		p.Photo = photo.String

		if archived {
			st.PastHistory = append(st.PastHistory, p)
		} else {
			st.Payments = append(st.Payments, p)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	fcRows, err := s.db.QueryContext(ctx,
		"SELECT effective_on, fee FROM fee_changes WHERE roll = ? ORDER BY position", st.Roll)
	if err != nil {
		return err
	}
	defer fcRows.Close()

	for fcRows.Next() {
		var effectiveOn, fee string
		if err := fcRows.Scan(&effectiveOn, &fee); err != nil {
			return err
		}
		var fc billing.FeeChange
		if fc.EffectiveOn, err = billing.ParseDate(effectiveOn); err != nil {
			return err
		}
		if fc.Fee, err = billing.ParseMoney(fee); err != nil {
			return err
		}
		st.FeeChanges = append(st.FeeChanges, fc)
	}
	return fcRows.Err()
}

// =============================================================================
// SEATS
// =============================================================================

func (s *Store) SaveSeat(ctx context.Context, seat ledger.Seat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO seats (id, hall, occupied, student_roll)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			hall = excluded.hall,
			occupied = excluded.occupied,
			student_roll = excluded.student_roll
	`, seat.ID, seat.Hall, seat.Occupied, nullStr(seat.StudentRoll))
	return err
}

func (s *Store) GetSeat(ctx context.Context, id string) (*ledger.Seat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		seat ledger.Seat
		roll sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, hall, occupied, student_roll FROM seats WHERE id = ?", id,
	).Scan(&seat.ID, &seat.Hall, &seat.Occupied, &roll)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	seat.StudentRoll = roll.String
	return &seat, nil
}

func (s *Store) ListSeats(ctx context.Context) ([]ledger.Seat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, hall, occupied, student_roll FROM seats ORDER BY hall, LENGTH(id), id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seats []ledger.Seat
	for rows.Next() {
		var (
			seat ledger.Seat
			roll sql.NullString
		)
		if err := rows.Scan(&seat.ID, &seat.Hall, &seat.Occupied, &roll); err != nil {
			return nil, err
		}
		seat.StudentRoll = roll.String
		seats = append(seats, seat)
	}
	return seats, rows.Err()
}

func (s *Store) ReplaceSeats(ctx context.Context, seats []ledger.Seat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM seats"); err != nil {
		return err
	}
	for _, seat := range seats {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO seats (id, hall, occupied, student_roll) VALUES (?, ?, ?, ?)",
			seat.ID, seat.Hall, seat.Occupied, nullStr(seat.StudentRoll),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// =============================================================================
// SHIFTS
// =============================================================================

func (s *Store) SaveShifts(ctx context.Context, shifts []ledger.TimeShift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM shifts"); err != nil {
		return err
	}
	for i, sh := range shifts {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO shifts (position, name, start_at, end_at) VALUES (?, ?, ?, ?)",
			i, sh.Name, sh.Start, sh.End,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) ListShifts(ctx context.Context) ([]ledger.TimeShift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT name, start_at, end_at FROM shifts ORDER BY position")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []ledger.TimeShift
	for rows.Next() {
		var sh ledger.TimeShift
		if err := rows.Scan(&sh.Name, &sh.Start, &sh.End); err != nil {
			return nil, err
		}
		shifts = append(shifts, sh)
	}
	return shifts, rows.Err()
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func (s *Store) MarkAttendance(ctx context.Context, day billing.Date, roll string, present bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance (day, roll, present) VALUES (?, ?, ?)
		ON CONFLICT(day, roll) DO UPDATE SET present = excluded.present
	`, day.String(), roll, present)
	return err
}

func (s *Store) AttendanceOn(ctx context.Context, day billing.Date) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT roll, present FROM attendance WHERE day = ?", day.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var (
			roll    string
			present bool
		)
		if err := rows.Scan(&roll, &present); err != nil {
			return nil, err
		}
		out[roll] = present
	}
	return out, rows.Err()
}

func (s *Store) AllAttendance(ctx context.Context) (map[string]map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT day, roll, present FROM attendance")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]map[string]bool)
	for rows.Next() {
		var (
			day     string
			roll    string
			present bool
		)
		if err := rows.Scan(&day, &roll, &present); err != nil {
			return nil, err
		}
		if out[day] == nil {
			out[day] = make(map[string]bool)
		}
		out[day][roll] = present
	}
	return out, rows.Err()
}

// =============================================================================
// ACTIVITY FEED
// =============================================================================

func (s *Store) AppendActivity(ctx context.Context, a ledger.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO activities (id, at, text) VALUES (?, ?, ?)",
		a.ID, a.At.UTC().Format(time.RFC3339), a.Text)
	return err
}

func (s *Store) RecentActivities(ctx context.Context, limit int) ([]ledger.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, at, text FROM activities ORDER BY at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []ledger.Activity
	for rows.Next() {
		var (
			a  ledger.Activity
			at string
		)
		if err := rows.Scan(&a.ID, &at, &a.Text); err != nil {
			return nil, err
		}
		a.At, _ = time.Parse(time.RFC3339, at)
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// =============================================================================
// SETTINGS
// =============================================================================

func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func (s *Store) ListSettings(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

// =============================================================================
// USERS
// =============================================================================

func (s *Store) GetUser(ctx context.Context, username string) (*ledger.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		u        ledger.User
		question sql.NullString
		answer   sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT username, password, security_question, security_answer, role
		FROM users WHERE username = ?
	`, username).Scan(&u.Username, &u.Password, &question, &answer, &u.Role)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.SecurityQuestion = question.String
	u.SecurityAnswer = answer.String
	return &u, nil
}

func (s *Store) SaveUser(ctx context.Context, u ledger.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password, security_question, security_answer, role)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			password = excluded.password,
			security_question = excluded.security_question,
			security_answer = excluded.security_answer,
			role = excluded.role
	`, u.Username, u.Password, u.SecurityQuestion, u.SecurityAnswer, u.Role)
	return err
}

func (s *Store) ListUsers(ctx context.Context) ([]ledger.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, security_question, security_answer, role
		FROM users ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []ledger.User
	for rows.Next() {
		var (
			u        ledger.User
			question sql.NullString
			answer   sql.NullString
		)
		if err := rows.Scan(&u.Username, &u.Password, &question, &answer, &u.Role); err != nil {
			return nil, err
		}
		u.SecurityQuestion = question.String
		u.SecurityAnswer = answer.String
		users = append(users, u)
	}
	return users, rows.Err()
}

// Helper functions

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullDay(d *billing.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}
