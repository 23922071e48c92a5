package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/primeivy/portal-backend/internal/config"
	"github.com/primeivy/portal-backend/internal/engine"
	"github.com/primeivy/portal-backend/internal/model"
	"github.com/primeivy/portal-backend/internal/repository"
	"github.com/primeivy/portal-backend/internal/score"
	"github.com/primeivy/portal-backend/internal/source"
)

// Domain errors.
var (
	ErrNoActiveAttempt = errors.New("no exam attempt in progress")
	ErrExamNotFinished = errors.New("exam is not finished")
	ErrInvalidModule   = errors.New("module out of range")
)

// studentSession pairs one student's engine state with its own lock.
// The engine is not concurrency-safe; every operation on it goes through
// this mutex.
type studentSession struct {
	mu        sync.Mutex
	attemptID string
	session   *engine.Session
}

// SessionService orchestrates exam attempts: one in-memory session per
// logged-in user, driven by HTTP handlers, the WebSocket stream, and the
// 1 Hz deadline worker.
type SessionService struct {
	exams      *ExamService
	resultRepo *repository.ResultRepository
	rdb        *redis.Client
	clock      engine.Clock
	log        zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*studentSession
}

// NewSessionService creates a new SessionService. rdb may be nil in tests;
// finished reports are then not queued for persistence.
func NewSessionService(
	exams *ExamService,
	resultRepo *repository.ResultRepository,
	rdb *redis.Client,
	clock engine.Clock,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		exams:      exams,
		resultRepo: resultRepo,
		rdb:        rdb,
		clock:      clock,
		log:        log.With().Str("component", "session_service").Logger(),
		sessions:   make(map[string]*studentSession),
	}
}

// StartOrResume returns the user's running attempt, creating one when none
// exists.
func (s *SessionService) StartOrResume(username string) (model.SessionView, error) {
	set, err := s.exams.QuestionSet()
	if err != nil {
		return model.SessionView{}, err
	}

	s.mu.Lock()
	st, ok := s.sessions[username]
	if !ok {
		st = &studentSession{
			attemptID: uuid.New().String(),
			session:   engine.NewSession(set.Counts(), s.clock, s.log),
		}
		s.sessions[username] = st
		s.log.Info().Str("username", username).Str("attempt_id", st.attemptID).Msg("attempt started")
	}
	s.mu.Unlock()

	st.mu.Lock()
	defer st.mu.Unlock()
	return s.view(st), nil
}

// View returns the current session read-model.
func (s *SessionService) View(username string) (model.SessionView, error) {
	st, err := s.get(username)
	if err != nil {
		return model.SessionView{}, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return s.view(st), nil
}

// SubmitResponse records or clears an answer. An empty value removes the
// stored response. The question's module must be a valid exam module; the
// index is validated against the module's question count.
func (s *SessionService) SubmitResponse(username string, module model.ModuleID, index int, qtype model.QuestionType, value string) (model.SessionView, error) {
	if !module.Valid() {
		return model.SessionView{}, ErrInvalidModule
	}
	set, err := s.exams.QuestionSet()
	if err != nil {
		return model.SessionView{}, err
	}
	if index < 0 || index >= set.Count(module) {
		return model.SessionView{}, fmt.Errorf("%w: question %d of module %d", ErrInvalidModule, index, module)
	}

	st, err := s.get(username)
	if err != nil {
		return model.SessionView{}, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	st.session.Responses().Set(model.QuestionKey{Module: module, Index: index}, qtype, value)
	return s.view(st), nil
}

// ToggleFlag flips the review flag on a question of the current module.
func (s *SessionService) ToggleFlag(username string, index int) (model.SessionView, error) {
	st, err := s.get(username)
	if err != nil {
		return model.SessionView{}, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	key := model.QuestionKey{Module: st.session.Module(), Index: index}
	st.session.Flags().Toggle(key)
	return s.view(st), nil
}

// NavigateTo jumps to a question of the current module. Out-of-range
// indices leave the session untouched.
func (s *SessionService) NavigateTo(username string, index int) (model.SessionView, error) {
	return s.withSession(username, func(sess *engine.Session) {
		sess.NavigateTo(index)
	})
}

// Advance moves forward one question, entering review past the last one.
func (s *SessionService) Advance(username string) (model.SessionView, error) {
	return s.withSession(username, func(sess *engine.Session) {
		sess.Advance()
	})
}

// Back moves to the previous question.
func (s *SessionService) Back(username string) (model.SessionView, error) {
	return s.withSession(username, func(sess *engine.Session) {
		sess.Back()
	})
}

// GoToReview opens the current module's review grid.
func (s *SessionService) GoToReview(username string) (model.SessionView, error) {
	return s.withSession(username, func(sess *engine.Session) {
		sess.GoToReview()
	})
}

// SubmitModule completes the current module from review. Finishing the
// last module freezes the attempt and queues its result for persistence.
func (s *SessionService) SubmitModule(username string) (model.SessionView, error) {
	st, err := s.get(username)
	if err != nil {
		return model.SessionView{}, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	wasFinished := st.session.Phase() == model.PhaseFinished
	st.session.SubmitModule()
	if !wasFinished && st.session.Phase() == model.PhaseFinished {
		s.persistResult(username, st)
	}
	return s.view(st), nil
}

// ResumeFromBreak ends the break early.
func (s *SessionService) ResumeFromBreak(username string) (model.SessionView, error) {
	return s.withSession(username, func(sess *engine.Session) {
		sess.ResumeFromBreak()
	})
}

// Retake atomically resets the attempt: responses, flags, timing, and
// phase all restart at module 1 under a fresh attempt ID.
func (s *SessionService) Retake(username string) (model.SessionView, error) {
	st, err := s.get(username)
	if err != nil {
		return model.SessionView{}, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	st.session.Retake()
	st.attemptID = uuid.New().String()
	s.log.Info().Str("username", username).Str("attempt_id", st.attemptID).Msg("retake started")
	return s.view(st), nil
}

// Report scores a finished attempt. Scoring requires the workbook's
// answer key; an unfinished attempt or a keyless workbook is an error.
func (s *SessionService) Report(username string) (model.ScoreReport, error) {
	set, err := s.exams.QuestionSet()
	if err != nil {
		return model.ScoreReport{}, err
	}
	if !set.HasAnswerKey() {
		return model.ScoreReport{}, source.ErrAnswerKeyMissing
	}

	st, err := s.get(username)
	if err != nil {
		return model.ScoreReport{}, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.session.Phase() != model.PhaseFinished {
		return model.ScoreReport{}, ErrExamNotFinished
	}

	return score.BuildReport(score.Input{
		Questions:  set.All(),
		Responses:  st.session.Responses().Snapshot(),
		Timings:    st.session.Tracker().Snapshot(),
		FinishedAt: st.session.FinishedAt(),
	}), nil
}

// History returns the user's persisted score summaries, newest first.
func (s *SessionService) History(ctx context.Context, username string, limit int) ([]model.ExamResult, error) {
	return s.resultRepo.ListByUsername(ctx, username, limit)
}

// Tick polls every session's deadlines once. The deadline worker calls
// this at 1 Hz; an expired module forces review, an elapsed break resumes
// testing. Safe to call at any frequency, transitions fire exactly once.
func (s *SessionService) Tick() {
	s.mu.Lock()
	snapshot := make(map[string]*studentSession, len(s.sessions))
	for k, v := range s.sessions {
		snapshot[k] = v
	}
	s.mu.Unlock()

	for username, st := range snapshot {
		st.mu.Lock()
		if st.session.CheckDeadline() {
			s.log.Debug().
				Str("username", username).
				Str("phase", string(st.session.Phase())).
				Msg("deadline transition")
		}
		st.mu.Unlock()
	}
}

// ────────────────────────────────────────────────────────────────────────────
// Internal helpers
// ────────────────────────────────────────────────────────────────────────────

func (s *SessionService) get(username string) (*studentSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.sessions[username]
	if !ok {
		return nil, ErrNoActiveAttempt
	}
	return st, nil
}

func (s *SessionService) withSession(username string, fn func(*engine.Session)) (model.SessionView, error) {
	st, err := s.get(username)
	if err != nil {
		return model.SessionView{}, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	fn(st.session)
	return s.view(st), nil
}

// view builds the read-model. Callers hold st.mu.
func (s *SessionService) view(st *studentSession) model.SessionView {
	sess := st.session
	key := sess.CurrentKey()

	v := model.SessionView{
		AttemptID:        st.attemptID,
		Phase:            sess.Phase(),
		Module:           sess.Module(),
		ModuleLabel:      sess.Module().Label(),
		QuestionIndex:    sess.Index(),
		QuestionCount:    sess.QuestionCount(),
		RemainingSeconds: int(sess.Remaining().Seconds()),
		Flagged:          sess.Flags().Flagged(key),
		Statuses:         sess.Statuses(),
		AnsweredCount:    sess.Responses().Len(),
	}
	if resp, ok := sess.Responses().Get(key); ok {
		v.Response = &resp
	}
	return v
}

// persistResult builds the final report and queues its summary for the
// results worker. Callers hold st.mu. Failures only log; the student's
// report stays available in memory either way.
func (s *SessionService) persistResult(username string, st *studentSession) {
	if s.rdb == nil {
		return
	}

	set, err := s.exams.QuestionSet()
	if err != nil || !set.HasAnswerKey() {
		s.log.Warn().Err(err).Str("username", username).Msg("result not persisted: questions unavailable or no answer key")
		return
	}

	rep := score.BuildReport(score.Input{
		Questions:  set.All(),
		Responses:  st.session.Responses().Snapshot(),
		Timings:    st.session.Tracker().Snapshot(),
		FinishedAt: st.session.FinishedAt(),
	})

	res := model.ExamResult{
		ID:           st.attemptID,
		Username:     username,
		RWLo:         rep.ReadingWriting.Range.Lo,
		RWHi:         rep.ReadingWriting.Range.Hi,
		MathLo:       rep.Math.Range.Lo,
		MathHi:       rep.Math.Range.Hi,
		TotalLo:      rep.Total.Lo,
		TotalHi:      rep.Total.Hi,
		Confidence:   rep.Confidence,
		Correct:      rep.TotalCorrect,
		Total:        rep.TotalQuestions,
		Answered:     rep.AnsweredCount,
		TotalTimeSec: rep.TotalTimeSec,
		FinishedAt:   rep.FinishedAt,
	}

	raw, err := json.Marshal(res)
	if err != nil {
		s.log.Error().Err(err).Msg("marshal result")
		return
	}
	if err := s.rdb.RPush(context.Background(), config.WorkerKey.PersistResultsQueue, raw).Err(); err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("queue result for persistence")
	}
}
