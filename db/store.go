/*
 * store.go, part of gosieve
 *
 * Copyright 2026 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU Lesser General Public License as published by
    the Free Software Foundation, either version 2.1 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU Lesser General Public License
    along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 *
*/

// Package db stores the structures processed by a filter, with their descriptor
// values and acceptance decision, in a SQLite database.
package db

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/rmera/gosieve/db/migrations"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("not found")

// Store is a SQLite database of filtered structures, organized in runs.
type Store struct {
	db   *sql.DB
	path string
}

// Run is one execution of a filter.
type Run struct {
	ID          string
	CreatedAt   time.Time
	Descriptors []string //names of the descriptors stored for each structure
	Config      string   //the configuration used, if any
}

// Record is a structure processed in a run.
type Record struct {
	Frame       int
	Numbers     []int     //atomic numbers
	Positions   []float64 //row-major, 3 per atom
	Energy      *float64  //nil if unknown
	Comment     string
	Accepted    bool
	Descriptors map[string]float64
}

// Open opens the database at path, creating it (and its directory) if needed,
// and brings its schema up to date.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := &Store{db: db, path: path}
	if err := s.migrate(context.Background(), migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations, recording each applied version.
func (s *Store) migrate(ctx context.Context, fsys embed.FS) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// e.g., "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// NewRun creates a new run, for structures with the given descriptors, and returns it.
func (s *Store) NewRun(ctx context.Context, descriptors []string, config string) (*Run, error) {
	run := &Run{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Descriptors: append([]string(nil), descriptors...),
		Config:      config,
	}
	names, err := json.Marshal(run.Descriptors)
	if err != nil {
		return nil, fmt.Errorf("marshalling descriptor names: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, descriptor_names, config)
		VALUES (?, ?, ?, ?)
	`, run.ID, run.CreatedAt, string(names), run.Config)
	if err != nil {
		return nil, fmt.Errorf("saving run: %w", err)
	}
	return run, nil
}

// Run retrieves a run by ID. It returns an error wrapping ErrNotFound if there is no such run.
func (s *Store) Run(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, descriptor_names, config FROM runs WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return run, err
}

// Runs returns all the runs, oldest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, descriptor_names, config FROM runs ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run //nolint:prealloc // size unknown from query
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var names string
	if err := row.Scan(&run.ID, &run.CreatedAt, &names, &run.Config); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	if err := json.Unmarshal([]byte(names), &run.Descriptors); err != nil {
		return nil, fmt.Errorf("unmarshalling descriptor names: %w", err)
	}
	return &run, nil
}

// WriteStructure stores a record in the run with the given ID. The record's
// positions must contain 3 values for each atomic number.
func (s *Store) WriteStructure(ctx context.Context, runID string, rec Record) (err error) {
	if len(rec.Positions) != 3*len(rec.Numbers) {
		return fmt.Errorf("structure %d has %d positions for %d atoms", rec.Frame, len(rec.Positions), len(rec.Numbers))
	}
	numbers, err := json.Marshal(rec.Numbers)
	if err != nil {
		return fmt.Errorf("marshalling atomic numbers: %w", err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var energy sql.NullFloat64
	if rec.Energy != nil {
		energy = sql.NullFloat64{Float64: *rec.Energy, Valid: true}
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO structures (run_id, frame, numbers, positions, energy, comment, accepted)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, runID, rec.Frame, string(numbers), float64SliceToBytes(rec.Positions), energy, rec.Comment, rec.Accepted)
	if err != nil {
		return fmt.Errorf("saving structure %d: %w", rec.Frame, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting structure id: %w", err)
	}
	for name, value := range rec.Descriptors {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO descriptors (structure_id, name, value) VALUES (?, ?, ?)
		`, id, name, value); err != nil {
			return fmt.Errorf("saving descriptor %s of structure %d: %w", name, rec.Frame, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing structure %d: %w", rec.Frame, err)
	}
	return nil
}

// Structures returns the records of a run, in frame order. If acceptedOnly is true,
// only the accepted structures are returned.
func (s *Store) Structures(ctx context.Context, runID string, acceptedOnly bool) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.frame, s.numbers, s.positions, s.energy, s.comment, s.accepted, d.name, d.value
		FROM structures s LEFT JOIN descriptors d ON d.structure_id = s.id
		WHERE s.run_id = ? AND (s.accepted OR NOT ?)
		ORDER BY s.frame, d.name
	`, runID, acceptedOnly)
	if err != nil {
		return nil, fmt.Errorf("querying structures: %w", err)
	}
	defer rows.Close()

	var records []Record //nolint:prealloc // size unknown from query
	lastID := int64(-1)
	for rows.Next() {
		var (
			id        int64
			rec       Record
			numbers   string
			positions []byte
			energy    sql.NullFloat64
			name      sql.NullString
			value     sql.NullFloat64
		)
		if err := rows.Scan(&id, &rec.Frame, &numbers, &positions, &energy, &rec.Comment, &rec.Accepted, &name, &value); err != nil {
			return nil, fmt.Errorf("scanning structure: %w", err)
		}
		if id != lastID {
			if err := json.Unmarshal([]byte(numbers), &rec.Numbers); err != nil {
				return nil, fmt.Errorf("unmarshalling atomic numbers: %w", err)
			}
			rec.Positions = bytesToFloat64Slice(positions)
			if energy.Valid {
				e := energy.Float64
				rec.Energy = &e
			}
			rec.Descriptors = make(map[string]float64)
			records = append(records, rec)
			lastID = id
		}
		if name.Valid {
			records[len(records)-1].Descriptors[name.String] = value.Float64
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating structures: %w", err)
	}
	return records, nil
}

// Count returns the number of structures in a run, and how many of them were accepted.
func (s *Store) Count(ctx context.Context, runID string) (total, accepted int, err error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(accepted), 0) FROM structures WHERE run_id = ?
	`, runID)
	if err := row.Scan(&total, &accepted); err != nil {
		return 0, 0, fmt.Errorf("counting structures: %w", err)
	}
	return total, accepted, nil
}

// float64SliceToBytes converts a []float64 to a byte slice for storage.
func float64SliceToBytes(floats []float64) []byte {
	buf := make([]byte, len(floats)*8)
	for i, f := range floats {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

// bytesToFloat64Slice converts a byte slice back to []float64.
func bytesToFloat64Slice(data []byte) []float64 {
	floats := make([]float64, len(data)/8)
	for i := range floats {
		floats[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return floats
}
