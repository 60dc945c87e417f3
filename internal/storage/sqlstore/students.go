package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/aanand-mishra/roster-api/internal/storage"
	"github.com/aanand-mishra/roster-api/internal/types"
)

const studentColumns = "student_id, student_name, course_name"

func scanStudent(row rowScanner) (types.Student, error) {
	var st types.Student
	err := row.Scan(&st.StudentID, &st.StudentName, &st.CourseName)
	return st, err
}

// ListStudents returns all students ordered by id.
func (s *Store) ListStudents(ctx context.Context) ([]types.Student, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+studentColumns+" FROM students ORDER BY student_id")
	if err != nil {
		return nil, fmt.Errorf("ListStudents: query: %w", err)
	}
	defer rows.Close()

	students := make([]types.Student, 0)

	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("ListStudents: scan row: %w", err)
		}
		students = append(students, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListStudents: rows iteration: %w", err)
	}

	return students, nil
}

// GetStudent fetches exactly one student matched by primary key.
func (s *Store) GetStudent(ctx context.Context, id int64) (types.Student, error) {
	st, err := scanStudent(s.db.QueryRowContext(ctx,
		s.rebind("SELECT "+studentColumns+" FROM students WHERE student_id = ?"), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, fmt.Errorf("GetStudent: id %d: %w", id, storage.ErrNotFound)
		}
		return types.Student{}, fmt.Errorf("GetStudent: scan: %w", err)
	}

	return st, nil
}

// CreateStudent inserts one student.
func (s *Store) CreateStudent(ctx context.Context, in types.StudentInput) (types.Student, error) {
	st, err := s.insertStudent(ctx, s.db, in)
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: %w", err)
	}
	return st, nil
}

// CreateStudents fans the inserts out over an errgroup and collects the
// results in input order.
//
// Without AtomicBulk every insert commits on its own: the first failure
// cancels the inserts still in flight, but rows already written stay.
// With AtomicBulk the inserts share one transaction and run one at a time,
// since a transaction is bound to a single connection.
func (s *Store) CreateStudents(ctx context.Context, in []types.StudentInput) ([]types.Student, error) {
	if !s.opts.AtomicBulk {
		out, err := s.insertStudents(ctx, s.db, in, s.opts.BulkConcurrency)
		if err != nil {
			return nil, fmt.Errorf("CreateStudents: %w", err)
		}
		return out, nil
	}

	var out []types.Student
	err := WithTx(ctx, s.db, nil, func(ctx context.Context, tx DBTX) error {
		var err error
		out, err = s.insertStudents(ctx, tx, in, 1)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("CreateStudents: tx: %w", err)
	}

	return out, nil
}

func (s *Store) insertStudents(ctx context.Context, q DBTX, in []types.StudentInput, limit int) ([]types.Student, error) {
	out := make([]types.Student, len(in))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, item := range in {
		g.Go(func() error {
			st, err := s.insertStudent(gctx, q, item)
			if err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
			out[i] = st
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

func (s *Store) insertStudent(ctx context.Context, q DBTX, in types.StudentInput) (types.Student, error) {
	st, err := scanStudent(q.QueryRowContext(ctx,
		s.rebind("INSERT INTO students (student_name, course_name) VALUES (?, ?) RETURNING "+studentColumns),
		in.StudentName, in.CourseName))
	if err != nil {
		return types.Student{}, fmt.Errorf("insert: %w", err)
	}
	return st, nil
}

// UpdateStudent replaces both mutable fields and returns the stored row.
func (s *Store) UpdateStudent(ctx context.Context, id int64, in types.StudentInput) (types.Student, error) {
	st, err := scanStudent(s.db.QueryRowContext(ctx,
		s.rebind("UPDATE students SET student_name = ?, course_name = ? WHERE student_id = ? RETURNING "+studentColumns),
		in.StudentName, in.CourseName, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, fmt.Errorf("UpdateStudent: id %d: %w", id, storage.ErrNotFound)
		}
		return types.Student{}, fmt.Errorf("UpdateStudent: exec: %w", err)
	}

	return st, nil
}

// DeleteStudent removes a student by primary key and returns the removed row.
func (s *Store) DeleteStudent(ctx context.Context, id int64) (types.Student, error) {
	st, err := scanStudent(s.db.QueryRowContext(ctx,
		s.rebind("DELETE FROM students WHERE student_id = ? RETURNING "+studentColumns), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, fmt.Errorf("DeleteStudent: id %d: %w", id, storage.ErrNotFound)
		}
		return types.Student{}, fmt.Errorf("DeleteStudent: exec: %w", err)
	}

	return st, nil
}
