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

type SurveyRepository struct {
	db *sql.DB
}

func NewSurveyRepository(db *sql.DB) *SurveyRepository {
	return &SurveyRepository{db: db}
}

func (r *SurveyRepository) conn(ctx context.Context) database.DBTX {
	return database.Executor(ctx, r.db)
}

// FindByID loads the survey with its ordered question and answer tree.
func (r *SurveyRepository) FindByID(ctx context.Context, id int64) (model.Survey, error) {
	var s model.Survey
	err := r.conn(ctx).QueryRowContext(ctx,
		`SELECT id, name, type, created_at, updated_at FROM surveys WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Type, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Survey{}, apierror.NotFound(model.ErrSurveyNotFound, "survey not found", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return model.Survey{}, fmt.Errorf("find survey: %w", err)
	}

	s.Questions, err = r.Questions(ctx, id)
	if err != nil {
		return model.Survey{}, err
	}
	return s, nil
}

func (r *SurveyRepository) Questions(ctx context.Context, surveyID int64) ([]model.Question, error) {
	rows, err := r.conn(ctx).QueryContext(ctx,
		`SELECT q.id, q.position, q.content, a.id, a.position, a.content, a.correct, a.score
		 FROM survey_questions q
		 LEFT JOIN survey_answers a ON a.question_id = q.id
		 WHERE q.survey_id = $1
		 ORDER BY q.position, a.position`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("load survey questions: %w", err)
	}
	defer rows.Close()

	questions := make([]model.Question, 0)
	for rows.Next() {
		var (
			q        model.Question
			answerID sql.NullInt64
			position sql.NullInt32
			content  sql.NullString
			correct  sql.NullBool
			score    sql.NullInt32
		)
		if err := rows.Scan(&q.ID, &q.Position, &q.Content, &answerID, &position, &content, &correct, &score); err != nil {
			return nil, fmt.Errorf("scan survey question: %w", err)
		}

		if len(questions) == 0 || questions[len(questions)-1].ID != q.ID {
			q.Answers = make([]model.Answer, 0)
			questions = append(questions, q)
		}

		if answerID.Valid {
			last := &questions[len(questions)-1]
			last.Answers = append(last.Answers, model.Answer{
				ID:       answerID.Int64,
				Position: int(position.Int32),
				Content:  content.String,
				Correct:  correct.Bool,
				Score:    int(score.Int32),
			})
		}
	}
	return questions, rows.Err()
}

// Search returns survey headers only; callers load questions as needed.
func (r *SurveyRepository) Search(ctx context.Context, filter model.SurveyFilter) ([]model.Survey, int, error) {
	where := make([]string, 0, 2)
	args := make([]any, 0, 4)
	argIdx := 1

	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		where = append(where, fmt.Sprintf("name ILIKE $%d", argIdx))
		args = append(args, "%"+keyword+"%")
		argIdx++
	}
	if surveyType := strings.TrimSpace(filter.Type); surveyType != "" {
		where = append(where, fmt.Sprintf("type = $%d", argIdx))
		args = append(args, strings.ToUpper(surveyType))
		argIdx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.conn(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM surveys`+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count surveys: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT id, name, type, created_at, updated_at FROM surveys%s ORDER BY id DESC LIMIT $%d OFFSET $%d`,
		whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search surveys: %w", err)
	}
	defer rows.Close()

	surveys := make([]model.Survey, 0)
	for rows.Next() {
		var s model.Survey
		if err := rows.Scan(&s.ID, &s.Name, &s.Type, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan survey: %w", err)
		}
		surveys = append(surveys, s)
	}
	return surveys, total, rows.Err()
}

// Create inserts the survey and its question tree, filling in generated ids.
func (r *SurveyRepository) Create(ctx context.Context, s *model.Survey) error {
	err := r.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO surveys (name, type) VALUES ($1, $2) RETURNING id, created_at, updated_at`,
		s.Name, s.Type).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create survey: %w", err)
	}
	return r.insertQuestions(ctx, s)
}

// Update rewrites the survey header and replaces its whole question tree.
func (r *SurveyRepository) Update(ctx context.Context, s *model.Survey) error {
	err := r.conn(ctx).QueryRowContext(ctx,
		`UPDATE surveys SET name = $2, type = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING created_at, updated_at`,
		s.ID, s.Name, s.Type).Scan(&s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apierror.NotFound(model.ErrSurveyNotFound, "survey not found", strconv.FormatInt(s.ID, 10))
	}
	if err != nil {
		return fmt.Errorf("update survey: %w", err)
	}

	if _, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM survey_questions WHERE survey_id = $1`, s.ID); err != nil {
		return fmt.Errorf("clear survey questions: %w", err)
	}
	return r.insertQuestions(ctx, s)
}

func (r *SurveyRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM surveys WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete survey: %w", err)
	}
	return requireAffected(res, model.ErrSurveyNotFound, "survey not found", id)
}

func (r *SurveyRepository) insertQuestions(ctx context.Context, s *model.Survey) error {
	for qi := range s.Questions {
		q := &s.Questions[qi]
		q.Position = qi + 1
		err := r.conn(ctx).QueryRowContext(ctx,
			`INSERT INTO survey_questions (survey_id, position, content) VALUES ($1, $2, $3) RETURNING id`,
			s.ID, q.Position, q.Content).Scan(&q.ID)
		if err != nil {
			return fmt.Errorf("insert survey question: %w", err)
		}

		for ai := range q.Answers {
			a := &q.Answers[ai]
			a.Position = ai + 1
			err := r.conn(ctx).QueryRowContext(ctx,
				`INSERT INTO survey_answers (question_id, position, content, correct, score)
				 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
				q.ID, a.Position, a.Content, a.Correct, a.Score).Scan(&a.ID)
			if err != nil {
				return fmt.Errorf("insert survey answer: %w", err)
			}
		}
	}
	return nil
}
