package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/primeivy/portal-backend/internal/model"
)

// ResultRepository persists finished-attempt summaries (score history).
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Insert stores a single exam result.
func (r *ResultRepository) Insert(ctx context.Context, res *model.ExamResult) error {
	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO exam_results
		     (id, username, rw_lo, rw_hi, math_lo, math_hi, total_lo, total_hi,
		      confidence, correct, total, answered, total_time_sec, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		res.ID, res.Username, res.RWLo, res.RWHi, res.MathLo, res.MathHi,
		res.TotalLo, res.TotalHi, res.Confidence, res.Correct, res.Total,
		res.Answered, res.TotalTimeSec, res.FinishedAt)
	return err
}

// BulkInsert stores a batch of exam results in one statement using UNNEST.
func (r *ResultRepository) BulkInsert(ctx context.Context, batch []*model.ExamResult) error {
	n := len(batch)
	if n == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, n)
	usernames := make([]string, 0, n)
	rwLos := make([]int, 0, n)
	rwHis := make([]int, 0, n)
	mathLos := make([]int, 0, n)
	mathHis := make([]int, 0, n)
	totalLos := make([]int, 0, n)
	totalHis := make([]int, 0, n)
	confidences := make([]string, 0, n)
	corrects := make([]int, 0, n)
	totals := make([]int, 0, n)
	answereds := make([]int, 0, n)
	times := make([]float64, 0, n)
	finishedAts := make([]time.Time, 0, n)

	for _, res := range batch {
		id := uuid.New()
		if res.ID != "" {
			parsed, err := uuid.Parse(res.ID)
			if err != nil {
				return err
			}
			id = parsed
		}
		ids = append(ids, id)
		usernames = append(usernames, res.Username)
		rwLos = append(rwLos, res.RWLo)
		rwHis = append(rwHis, res.RWHi)
		mathLos = append(mathLos, res.MathLo)
		mathHis = append(mathHis, res.MathHi)
		totalLos = append(totalLos, res.TotalLo)
		totalHis = append(totalHis, res.TotalHi)
		confidences = append(confidences, res.Confidence)
		corrects = append(corrects, res.Correct)
		totals = append(totals, res.Total)
		answereds = append(answereds, res.Answered)
		times = append(times, res.TotalTimeSec)
		finishedAts = append(finishedAts, res.FinishedAt)
	}

	query := `
		INSERT INTO exam_results
		    (id, username, rw_lo, rw_hi, math_lo, math_hi, total_lo, total_hi,
		     confidence, correct, total, answered, total_time_sec, finished_at)
		SELECT
			u.id, u.username, u.rw_lo, u.rw_hi, u.math_lo, u.math_hi,
			u.total_lo, u.total_hi, u.confidence, u.correct, u.total,
			u.answered, u.total_time_sec, u.finished_at
		FROM UNNEST(
			$1::uuid[],
			$2::text[],
			$3::int[],
			$4::int[],
			$5::int[],
			$6::int[],
			$7::int[],
			$8::int[],
			$9::text[],
			$10::int[],
			$11::int[],
			$12::int[],
			$13::float8[],
			$14::timestamptz[]
		) AS u (id, username, rw_lo, rw_hi, math_lo, math_hi, total_lo, total_hi,
		        confidence, correct, total, answered, total_time_sec, finished_at)
	`

	_, err := r.pool.Exec(ctx, query,
		ids, usernames, rwLos, rwHis, mathLos, mathHis, totalLos, totalHis,
		confidences, corrects, totals, answereds, times, finishedAts)
	return err
}

// ListByUsername retrieves a user's score history, newest first.
func (r *ResultRepository) ListByUsername(ctx context.Context, username string, limit int) ([]model.ExamResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, username, rw_lo, rw_hi, math_lo, math_hi, total_lo, total_hi,
		        confidence, correct, total, answered, total_time_sec, finished_at
		 FROM exam_results
		 WHERE username = $1
		 ORDER BY finished_at DESC
		 LIMIT $2`, username, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.ExamResult
	for rows.Next() {
		var res model.ExamResult
		if err := rows.Scan(&res.ID, &res.Username, &res.RWLo, &res.RWHi,
			&res.MathLo, &res.MathHi, &res.TotalLo, &res.TotalHi,
			&res.Confidence, &res.Correct, &res.Total, &res.Answered,
			&res.TotalTimeSec, &res.FinishedAt); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
