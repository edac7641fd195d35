// Package db provides the SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/rumos-automatic/tasktimeflow/internal/task"
)

// SQLite implements task.Repository using SQLite. It performs plain row
// CRUD: the non-overlap invariant is enforced by callers before writes.
type SQLite struct {
	db *sql.DB
}

// New creates a new SQLite repository and runs migrations.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// Required for the tasks -> slots delete cascade.
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// CreateTask adds a new task.
func (s *SQLite) CreateTask(ctx context.Context, t *task.Task) error {
	query := `
		INSERT INTO tasks (
			user_id, title, description, priority, energy, context,
			estimated_minutes, status, labels, due, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx, query,
		t.UserID,
		t.Title,
		t.Description,
		t.Priority,
		t.Energy,
		t.Context,
		t.EstimatedMinutes,
		t.Status,
		strings.Join(t.Labels, ","),
		nullableTime(t.Due),
		t.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	t.ID = id

	return nil
}

const taskColumns = `id, user_id, title, description, priority, energy, context,
	estimated_minutes, status, labels, due, created_at`

// GetTask retrieves a task by ID.
func (s *SQLite) GetTask(ctx context.Context, id int64) (*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`

	t, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, task.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying task: %w", err)
	}
	return t, nil
}

// ListTasks returns a user's tasks, optionally filtered by status, ordered
// by priority weight then creation time.
func (s *SQLite) ListTasks(ctx context.Context, userID string, status task.Status) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ?`
	args := []any{userID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += `
		ORDER BY CASE priority
			WHEN 'urgent' THEN 0
			WHEN 'high' THEN 1
			WHEN 'medium' THEN 2
			ELSE 3
		END, created_at
	`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}

	return tasks, nil
}

// UpdateTaskStatus transitions a task to the given status.
func (s *SQLite) UpdateTaskStatus(ctx context.Context, id int64, status task.Status) error {
	result, err := s.db.ExecContext(ctx, `UPDATE tasks SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("updating task status: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return task.ErrTaskNotFound
	}

	return nil
}

// DeleteTask removes a task; its slots go with it through the foreign key.
func (s *SQLite) DeleteTask(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return task.ErrTaskNotFound
	}

	return nil
}

// CreateSlot adds a new timeline slot.
func (s *SQLite) CreateSlot(ctx context.Context, sl *task.TimelineSlot) error {
	query := `
		INSERT INTO timeline_slots (
			task_id, user_id, start_time, end_time, slot_date, status,
			actual_start, actual_end, calendar_sync_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if sl.CreatedAt.IsZero() {
		sl.CreatedAt = time.Now()
	}
	if sl.Date.IsZero() {
		sl.Date = task.DateOf(sl.Start)
	}

	result, err := s.db.ExecContext(ctx, query,
		sl.TaskID,
		sl.UserID,
		sl.Start.Format(time.RFC3339),
		sl.End.Format(time.RFC3339),
		sl.Date.Format("2006-01-02"),
		sl.Status,
		nullableTime(sl.ActualStart),
		nullableTime(sl.ActualEnd),
		sl.CalendarSyncID,
		sl.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting slot: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	sl.ID = id

	return nil
}

const slotColumns = `id, task_id, user_id, start_time, end_time, slot_date, status,
	actual_start, actual_end, calendar_sync_id, created_at`

// GetSlot retrieves a slot by ID.
func (s *SQLite) GetSlot(ctx context.Context, id int64) (*task.TimelineSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM timeline_slots WHERE id = ?`

	sl, err := scanSlot(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, task.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying slot: %w", err)
	}
	return sl, nil
}

// UpdateSlot applies a partial update and returns the updated slot.
func (s *SQLite) UpdateSlot(ctx context.Context, id int64, patch task.SlotPatch) (*task.TimelineSlot, error) {
	var (
		sets []string
		args []any
	)

	if patch.Start != nil {
		sets = append(sets, "start_time = ?", "slot_date = ?")
		args = append(args, patch.Start.Format(time.RFC3339), task.DateOf(*patch.Start).Format("2006-01-02"))
	}
	if patch.End != nil {
		sets = append(sets, "end_time = ?")
		args = append(args, patch.End.Format(time.RFC3339))
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
	}
	if patch.ActualStart != nil {
		sets = append(sets, "actual_start = ?")
		args = append(args, patch.ActualStart.Format(time.RFC3339))
	}
	if patch.ActualEnd != nil {
		sets = append(sets, "actual_end = ?")
		args = append(args, patch.ActualEnd.Format(time.RFC3339))
	}
	if patch.CalendarSyncID != nil {
		sets = append(sets, "calendar_sync_id = ?")
		args = append(args, *patch.CalendarSyncID)
	}

	if len(sets) == 0 {
		return s.GetSlot(ctx, id)
	}

	query := `UPDATE timeline_slots SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	args = append(args, id)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("updating slot: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, task.ErrSlotNotFound
	}

	return s.GetSlot(ctx, id)
}

// DeleteSlot removes a slot. The owning task is not touched.
func (s *SQLite) DeleteSlot(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM timeline_slots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting slot: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return task.ErrSlotNotFound
	}

	return nil
}

// ListSlotsByDate returns a user's slots on a calendar date ordered by start
// time, narrowed by the optional filter.
func (s *SQLite) ListSlotsByDate(ctx context.Context, date time.Time, userID string, filter task.SlotFilter) ([]*task.TimelineSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM timeline_slots WHERE slot_date = ? AND user_id = ?`
	args := []any{task.DateOf(date).Format("2006-01-02"), userID}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.TaskID != 0 {
		query += ` AND task_id = ?`
		args = append(args, filter.TaskID)
	}
	query += ` ORDER BY start_time`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying slots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var slots []*task.TimelineSlot
	for rows.Next() {
		sl, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning slot: %w", err)
		}
		slots = append(slots, sl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating slots: %w", err)
	}

	return slots, nil
}

// CreateTimeBlock adds a recurring time block.
func (s *SQLite) CreateTimeBlock(ctx context.Context, b *task.TimeBlock) error {
	query := `
		INSERT INTO time_blocks (
			user_id, start_hour, end_hour, energy, is_work_time, is_break_time,
			label, description, color, days_of_week
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		b.UserID,
		b.StartHour,
		b.EndHour,
		b.Energy,
		b.IsWorkTime,
		b.IsBreakTime,
		b.Label,
		b.Description,
		b.Color,
		joinWeekdays(b.DaysOfWeek),
	)
	if err != nil {
		return fmt.Errorf("inserting time block: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	b.ID = id

	return nil
}

// ListTimeBlocks returns a user's time blocks ordered by start hour.
func (s *SQLite) ListTimeBlocks(ctx context.Context, userID string) ([]*task.TimeBlock, error) {
	query := `
		SELECT id, user_id, start_hour, end_hour, energy, is_work_time, is_break_time,
		       label, description, color, days_of_week
		FROM time_blocks
		WHERE user_id = ?
		ORDER BY start_hour
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying time blocks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var blocks []*task.TimeBlock
	for rows.Next() {
		var (
			b    task.TimeBlock
			days string
		)
		err := rows.Scan(
			&b.ID,
			&b.UserID,
			&b.StartHour,
			&b.EndHour,
			&b.Energy,
			&b.IsWorkTime,
			&b.IsBreakTime,
			&b.Label,
			&b.Description,
			&b.Color,
			&days,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning time block: %w", err)
		}
		b.DaysOfWeek = splitWeekdays(days)
		blocks = append(blocks, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating time blocks: %w", err)
	}

	return blocks, nil
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*task.Task, error) {
	var (
		t         task.Task
		labels    string
		due       sql.NullString
		createdAt string
	)

	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Description,
		&t.Priority,
		&t.Energy,
		&t.Context,
		&t.EstimatedMinutes,
		&t.Status,
		&labels,
		&due,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if labels != "" {
		t.Labels = strings.Split(labels, ",")
	}
	if due.Valid {
		parsed, err := parseTimestamp(due.String)
		if err != nil {
			return nil, fmt.Errorf("parsing due: %w", err)
		}
		t.Due = &parsed
	}
	t.CreatedAt, err = parseTimestamp(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created at: %w", err)
	}

	return &t, nil
}

func scanSlot(row scanner) (*task.TimelineSlot, error) {
	var (
		sl          task.TimelineSlot
		start, end  string
		slotDate    string
		actualStart sql.NullString
		actualEnd   sql.NullString
		createdAt   string
	)

	err := row.Scan(
		&sl.ID,
		&sl.TaskID,
		&sl.UserID,
		&start,
		&end,
		&slotDate,
		&sl.Status,
		&actualStart,
		&actualEnd,
		&sl.CalendarSyncID,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if sl.Start, err = parseTimestamp(start); err != nil {
		return nil, fmt.Errorf("parsing start time: %w", err)
	}
	if sl.End, err = parseTimestamp(end); err != nil {
		return nil, fmt.Errorf("parsing end time: %w", err)
	}
	if sl.Date, err = parseDate(slotDate); err != nil {
		return nil, fmt.Errorf("parsing slot date: %w", err)
	}
	if actualStart.Valid {
		t, err := parseTimestamp(actualStart.String)
		if err != nil {
			return nil, fmt.Errorf("parsing actual start: %w", err)
		}
		sl.ActualStart = &t
	}
	if actualEnd.Valid {
		t, err := parseTimestamp(actualEnd.String)
		if err != nil {
			return nil, fmt.Errorf("parsing actual end: %w", err)
		}
		sl.ActualEnd = &t
	}
	if sl.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created at: %w", err)
	}

	return &sl, nil
}

// parseDate parses a date-only value. It uses the local timezone so stored
// dates compare equal with dates derived from time.Now().
func parseDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}

	// SQLite may return DATE columns as "2006-01-02T00:00:00Z"; treat the
	// date part as local midnight.
	if len(s) >= 10 {
		if t, err := time.ParseInLocation("2006-01-02", s[:10], time.Local); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date format: %s", s)
}

// parseTimestamp parses the timestamp formats SQLite might hand back.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %s", s)
}

// nullableTime formats an optional timestamp for storage.
func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func joinWeekdays(days []time.Weekday) string {
	if len(days) == 0 {
		return ""
	}
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(int(d))
	}
	return strings.Join(parts, ",")
}

func splitWeekdays(s string) []time.Weekday {
	if s == "" {
		return nil
	}
	var days []time.Weekday
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 6 {
			continue
		}
		days = append(days, time.Weekday(n))
	}
	return days
}
