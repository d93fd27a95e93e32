package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/VoxDroid/nycschools/internal/format"
)

// Repository reads and writes schools, SAT scores and fetch history.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository using db.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Ping reports whether the underlying database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	if r.db == nil {
		return errors.New("store: no database")
	}
	return r.db.PingContext(ctx)
}

// UpsertSchools inserts or updates schools and SAT scores in one transaction.
// SAT rows whose school is not present are skipped. It returns the number of
// schools and scores written.
func (r *Repository) UpsertSchools(ctx context.Context, schools []School, scores []SATScore) (int, int, error) {
	trx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = trx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	nSchools := 0
	for _, s := range schools {
		if err := format.ValidateKey(s.DBN); err != nil {
			return 0, 0, fmt.Errorf("school %q: %w", s.Name, err)
		}
		if _, err := trx.ExecContext(ctx, `INSERT INTO schools (dbn, name, borough, neighborhood, address, city, zip,
				phone, email, website, overview, total_students, graduation_rate, attendance_rate, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(dbn) DO UPDATE SET name = excluded.name, borough = excluded.borough,
				neighborhood = excluded.neighborhood, address = excluded.address, city = excluded.city,
				zip = excluded.zip, phone = excluded.phone, email = excluded.email, website = excluded.website,
				overview = excluded.overview, total_students = excluded.total_students,
				graduation_rate = excluded.graduation_rate, attendance_rate = excluded.attendance_rate,
				updated_at = excluded.updated_at`,
			strings.TrimSpace(s.DBN), s.Name, s.Borough, s.Neighborhood, s.Address, s.City, s.Zip,
			s.Phone, s.Email, s.Website, s.Overview, s.TotalStudents, s.GraduationRate, s.AttendanceRate, now); err != nil {
			return 0, 0, fmt.Errorf("upsert school %s: %w", s.DBN, err)
		}
		nSchools++
	}

	nScores := 0
	for _, sc := range scores {
		res, err := trx.ExecContext(ctx, `INSERT INTO sat_scores (dbn, test_takers, reading_avg, math_avg, writing_avg)
			SELECT ?, ?, ?, ?, ? WHERE EXISTS (SELECT 1 FROM schools WHERE dbn = ?)
			ON CONFLICT(dbn) DO UPDATE SET test_takers = excluded.test_takers, reading_avg = excluded.reading_avg,
				math_avg = excluded.math_avg, writing_avg = excluded.writing_avg`,
			sc.DBN, sc.TestTakers, sc.ReadingAvg, sc.MathAvg, sc.WritingAvg, sc.DBN)
		if err != nil {
			return 0, 0, fmt.Errorf("upsert sat %s: %w", sc.DBN, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			nScores++
		}
	}

	if err := trx.Commit(); err != nil {
		return 0, 0, err
	}
	return nSchools, nScores, nil
}

const selectSchool = `SELECT s.dbn, s.name, s.borough, s.neighborhood, s.address, s.city, s.zip, s.phone, s.email,
	s.website, s.overview, s.total_students, s.graduation_rate, s.attendance_rate, s.updated_at,
	t.test_takers, t.reading_avg, t.math_avg, t.writing_avg
	FROM schools s LEFT JOIN sat_scores t ON t.dbn = s.dbn`

const orderSchools = ` ORDER BY s.name COLLATE NOCASE ASC, s.dbn ASC`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchool(row rowScanner) (School, error) {
	var s School
	var takers, reading, math, writing sql.NullInt64
	if err := row.Scan(&s.DBN, &s.Name, &s.Borough, &s.Neighborhood, &s.Address, &s.City, &s.Zip, &s.Phone,
		&s.Email, &s.Website, &s.Overview, &s.TotalStudents, &s.GraduationRate, &s.AttendanceRate, &s.UpdatedAt,
		&takers, &reading, &math, &writing); err != nil {
		return School{}, err
	}
	if takers.Valid {
		s.SAT = &SATScore{
			DBN:        s.DBN,
			TestTakers: int(takers.Int64),
			ReadingAvg: int(reading.Int64),
			MathAvg:    int(math.Int64),
			WritingAvg: int(writing.Int64),
		}
	}
	return s, nil
}

func (r *Repository) querySchools(ctx context.Context, query string, args ...any) ([]School, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []School
	for rows.Next() {
		s, err := scanSchool(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListSchools returns every cached school ordered by name.
func (r *Repository) ListSchools(ctx context.Context) ([]School, error) {
	return r.querySchools(ctx, selectSchool+orderSchools)
}

// GetSchool retrieves a school and its SAT summary by DBN. It returns nil, nil
// when no such school is cached.
func (r *Repository) GetSchool(ctx context.Context, dbn string) (*School, error) {
	row := r.db.QueryRowContext(ctx, selectSchool+` WHERE s.dbn = ?`, strings.TrimSpace(dbn))
	s, err := scanSchool(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// FilterSchools returns schools matching f ordered by name.
func (r *Repository) FilterSchools(ctx context.Context, f Filter) ([]School, error) {
	var where []string
	var args []any
	if len(f.Boroughs) > 0 {
		ph := make([]string, 0, len(f.Boroughs))
		for _, b := range f.Boroughs {
			ph = append(ph, "?")
			args = append(args, strings.TrimSpace(b))
		}
		where = append(where, "s.borough COLLATE NOCASE IN ("+strings.Join(ph, ", ")+")")
	}
	if n := strings.TrimSpace(f.Neighborhood); n != "" {
		where = append(where, "s.neighborhood LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(n)+"%")
	}
	if f.MinGraduationRate != nil {
		where = append(where, "s.graduation_rate != '' AND CAST(s.graduation_rate AS REAL) >= ?")
		args = append(args, *f.MinGraduationRate)
	}
	q := selectSchool
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	return r.querySchools(ctx, q+orderSchools, args...)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Boroughs returns the distinct boroughs of cached schools with their counts.
func (r *Repository) Boroughs(ctx context.Context) ([]BoroughCount, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT borough, COUNT(*) FROM schools
		WHERE TRIM(borough) != '' GROUP BY borough COLLATE NOCASE ORDER BY borough COLLATE NOCASE`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []BoroughCount
	for rows.Next() {
		var bc BoroughCount
		if err := rows.Scan(&bc.Borough, &bc.Schools); err != nil {
			return nil, err
		}
		out = append(out, bc)
	}
	return out, rows.Err()
}

// CountSchools returns the number of cached schools.
func (r *Repository) CountSchools(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schools").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// DeleteSchool removes a school and, through the foreign key, its SAT scores.
func (r *Repository) DeleteSchool(ctx context.Context, dbn string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM schools WHERE dbn = ?", strings.TrimSpace(dbn))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("school %q not found", dbn)
	}
	return nil
}

// Close closes the underlying DB connection used by the Repository.
func (r *Repository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}
