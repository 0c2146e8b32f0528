package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go-survey-admin/internal/database"
	"go-survey-admin/internal/model"
	"go-survey-admin/pkg/apierror"
)

const programSelect = `SELECT p.id, p.title, p.image, p.address,
       to_char(p.event_date, 'YYYY-MM-DD'), to_char(p.event_time, 'HH24:MI'),
       p.status, p.capacity,
       (SELECT COUNT(*) FROM program_registrations pr WHERE pr.program_id = p.id),
       p.description, p.created_at, p.updated_at
FROM programs p`

type ProgramRepository struct {
	db *sql.DB
}

func NewProgramRepository(db *sql.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

func (r *ProgramRepository) conn(ctx context.Context) database.DBTX {
	return database.Executor(ctx, r.db)
}

func (r *ProgramRepository) FindByID(ctx context.Context, id int64) (model.Program, error) {
	return r.findOne(ctx, programSelect+` WHERE p.id = $1`, id)
}

// LockByID holds a row lock on the program until the surrounding
// transaction ends, then reads it. The read is a separate statement so
// the registration count reflects everything committed before the lock
// was granted.
func (r *ProgramRepository) LockByID(ctx context.Context, id int64) (model.Program, error) {
	var locked int64
	err := r.conn(ctx).QueryRowContext(ctx, `SELECT id FROM programs WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Program{}, apierror.NotFound(model.ErrProgramNotFound, "program not found", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return model.Program{}, fmt.Errorf("lock program: %w", err)
	}

	return r.FindByID(ctx, id)
}

func (r *ProgramRepository) findOne(ctx context.Context, query string, id int64) (model.Program, error) {
	p, err := scanProgram(r.conn(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Program{}, apierror.NotFound(model.ErrProgramNotFound, "program not found", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return model.Program{}, fmt.Errorf("find program: %w", err)
	}
	return p, nil
}

func (r *ProgramRepository) Search(ctx context.Context, filter model.ProgramFilter) ([]model.Program, int, error) {
	where := make([]string, 0, 2)
	args := make([]any, 0, 4)
	argIdx := 1

	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		where = append(where, fmt.Sprintf("(p.title ILIKE $%d OR p.address ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+keyword+"%")
		argIdx++
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		where = append(where, fmt.Sprintf("p.status = $%d", argIdx))
		args = append(args, strings.ToUpper(status))
		argIdx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.conn(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM programs p`+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count programs: %w", err)
	}

	query := fmt.Sprintf("%s%s ORDER BY p.event_date DESC, p.id DESC LIMIT $%d OFFSET $%d",
		programSelect, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search programs: %w", err)
	}
	defer rows.Close()

	programs := make([]model.Program, 0)
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan program: %w", err)
		}
		programs = append(programs, p)
	}
	return programs, total, rows.Err()
}

func (r *ProgramRepository) Create(ctx context.Context, p *model.Program) error {
	err := r.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO programs (title, image, address, event_date, event_time, status, capacity, description)
		 VALUES ($1, $2, $3, $4::date, $5::time, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		p.Title, p.Image, p.Address, p.Date, p.Time, p.Status, p.Capacity, p.Description).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create program: %w", err)
	}
	return nil
}

func (r *ProgramRepository) Update(ctx context.Context, p *model.Program) error {
	err := r.conn(ctx).QueryRowContext(ctx,
		`UPDATE programs
		 SET title = $2, image = $3, address = $4, event_date = $5::date, event_time = $6::time,
		     status = $7, capacity = $8, description = $9, updated_at = now()
		 WHERE id = $1
		 RETURNING created_at, updated_at`,
		p.ID, p.Title, p.Image, p.Address, p.Date, p.Time, p.Status, p.Capacity, p.Description).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apierror.NotFound(model.ErrProgramNotFound, "program not found", strconv.FormatInt(p.ID, 10))
	}
	if err != nil {
		return fmt.Errorf("update program: %w", err)
	}
	return nil
}

func (r *ProgramRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM programs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete program: %w", err)
	}
	return requireAffected(res, model.ErrProgramNotFound, "program not found", id)
}

func (r *ProgramRepository) AddRegistration(ctx context.Context, reg *model.ProgramRegistration) error {
	err := r.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO program_registrations (program_id, user_id) VALUES ($1, $2) RETURNING registered_at`,
		reg.ProgramID, reg.UserID).Scan(&reg.RegisteredAt)
	if isUniqueViolation(err) {
		return apierror.Conflict(model.ErrAlreadyRegistered, "already registered for program", strconv.FormatInt(reg.ProgramID, 10))
	}
	if err != nil {
		return fmt.Errorf("add program registration: %w", err)
	}
	return nil
}

func (r *ProgramRepository) Statistics(ctx context.Context) (model.ProgramStatistics, error) {
	var stats model.ProgramStatistics
	err := r.conn(ctx).QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM programs), (SELECT COUNT(*) FROM program_registrations)`).
		Scan(&stats.CntProgram, &stats.CntRegister)
	if err != nil {
		return model.ProgramStatistics{}, fmt.Errorf("program statistics: %w", err)
	}
	return stats, nil
}

func scanProgram(row scanner) (model.Program, error) {
	var p model.Program
	err := row.Scan(&p.ID, &p.Title, &p.Image, &p.Address, &p.Date, &p.Time, &p.Status,
		&p.Capacity, &p.Registered, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
