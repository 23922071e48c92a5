package service

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/primeivy/portal-backend/internal/config"
	"github.com/primeivy/portal-backend/internal/model"
	"github.com/primeivy/portal-backend/internal/source"
)

// ExamService loads exam content from the workbook and caches the parsed
// question set for a short TTL so the spreadsheet can be edited without a
// restart while a running exam avoids a file read per request.
type ExamService struct {
	cfg      *config.Config
	workbook *source.Workbook
	log      zerolog.Logger

	mu       sync.Mutex
	cached   *source.QuestionSet
	loadedAt time.Time
}

// NewExamService creates a new ExamService.
func NewExamService(cfg *config.Config, workbook *source.Workbook, log zerolog.Logger) *ExamService {
	return &ExamService{
		cfg:      cfg,
		workbook: workbook,
		log:      log.With().Str("component", "exam_service").Logger(),
	}
}

// QuestionSet returns the parsed workbook questions, reloading the file
// once the cache TTL has elapsed.
func (s *ExamService) QuestionSet() (*source.QuestionSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && time.Since(s.loadedAt) < s.cfg.QuestionCacheTTL {
		return s.cached, nil
	}

	set, err := s.workbook.LoadQuestions()
	if err != nil {
		// Keep serving the last good set if a reload fails mid-exam.
		if s.cached != nil {
			s.log.Warn().Err(err).Msg("workbook reload failed, keeping cached questions")
			return s.cached, nil
		}
		return nil, err
	}

	s.cached = set
	s.loadedAt = time.Now()
	return set, nil
}

// Paper returns the student-facing exam payload with answer keys stripped.
func (s *ExamService) Paper() (model.ExamPaper, error) {
	set, err := s.QuestionSet()
	if err != nil {
		return model.ExamPaper{}, err
	}
	return set.Paper(s.cfg.ExamTitle), nil
}
