package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"drivetest-quiz/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ResultsKey is the well-known key the latest results summary is stored under.
const ResultsKey = "quizResults"

// QuestionRepository provides the validated question pool (from cache/backing store).
type QuestionRepository interface {
	GetQuestions(ctx context.Context) ([]domain.Question, error)
}

// SessionRepository abstracts how in-flight sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// KeyValueStore is where results are handed off for later review.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// QuizService contains the quiz use cases.
type QuizService struct {
	questions QuestionRepository
	sessions  SessionRepository
	results   KeyValueStore
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string

	mu  sync.Mutex
	rng Rand
}

// Option customizes a QuizService.
type Option func(*QuizService)

// WithRand injects the shuffling source.
func WithRand(rng Rand) Option {
	return func(s *QuizService) { s.rng = rng }
}

// WithClock injects the clock used for start and end times.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

// WithLogger sets the service logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *QuizService) { s.logger = logger }
}

func NewQuizService(questions QuestionRepository, sessions SessionRepository, results KeyValueStore, opts ...Option) *QuizService {
	s := &QuizService{
		questions: questions,
		sessions:  sessions,
		results:   results,
		logger:    zap.NewNop(),
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
		rng:       NewRand(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start draws a new quiz from the pool and stores the fresh session.
func (s *QuizService) Start(ctx context.Context) (*Session, error) {
	pool, err := s.questions.GetQuestions(ctx)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, domain.ErrEmptyPool
	}

	s.mu.Lock()
	questions := GenerateQuiz(s.rng, pool)
	s.mu.Unlock()

	session := NewSession(s.newID(), questions, s.now())
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.logger.Info("quiz started",
		zap.String("session_id", session.ID),
		zap.Int("questions", len(questions)),
		zap.Int("pool", len(pool)),
	)
	return session, nil
}

// Session returns the stored session for id.
func (s *QuizService) Session(ctx context.Context, id string) (*Session, error) {
	return s.sessions.Get(ctx, id)
}

// SelectAnswer records label for the session's current question.
func (s *QuizService) SelectAnswer(ctx context.Context, id string, label domain.Label) (SessionView, error) {
	return s.transition(ctx, id, func(session *Session) error {
		return session.SelectAnswer(label)
	})
}

// Next advances the session; a no-op on the last question.
func (s *QuizService) Next(ctx context.Context, id string) (SessionView, error) {
	return s.transition(ctx, id, (*Session).Next)
}

// Previous steps the session back; a no-op on the first question.
func (s *QuizService) Previous(ctx context.Context, id string) (SessionView, error) {
	return s.transition(ctx, id, (*Session).Previous)
}

// Submit completes the session, scores it and stores the results under
// ResultsKey, replacing any earlier results.
func (s *QuizService) Submit(ctx context.Context, id string) (domain.Results, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return domain.Results{}, err
	}
	// finalize a copy so a failed hand-off leaves the stored session open
	completed := session.Clone()
	results, err := completed.Submit(s.now())
	if err != nil {
		return domain.Results{}, err
	}

	payload, err := json.Marshal(results)
	if err != nil {
		return domain.Results{}, fmt.Errorf("marshal results: %w", err)
	}
	if err := s.results.Set(ctx, ResultsKey, payload); err != nil {
		return domain.Results{}, fmt.Errorf("store results: %w", err)
	}
	if err := s.sessions.Save(ctx, completed); err != nil {
		s.logger.Warn("save submitted session", zap.String("session_id", id), zap.Error(err))
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		s.logger.Warn("drop submitted session", zap.String("session_id", id), zap.Error(err))
	}

	s.logger.Info("quiz submitted",
		zap.String("session_id", id),
		zap.Int("score", results.Score),
		zap.Int("correct", results.CorrectAnswers),
		zap.Int("total", results.TotalQuestions),
		zap.Int("minutes", results.TimeTaken),
	)
	return results, nil
}

// Abandon discards a session that will never be submitted.
func (s *QuizService) Abandon(ctx context.Context, id string) {
	if err := s.sessions.Delete(ctx, id); err != nil {
		s.logger.Warn("abandon session", zap.String("session_id", id), zap.Error(err))
	}
}

// LatestResults loads the last stored results summary.
func (s *QuizService) LatestResults(ctx context.Context) (domain.Results, error) {
	raw, ok, err := s.results.Get(ctx, ResultsKey)
	if err != nil {
		return domain.Results{}, fmt.Errorf("load results: %w", err)
	}
	if !ok {
		return domain.Results{}, domain.ErrResultsNotFound
	}
	var results domain.Results
	if err := json.Unmarshal(raw, &results); err != nil {
		return domain.Results{}, fmt.Errorf("unmarshal results: %w", err)
	}
	return results, nil
}

func (s *QuizService) transition(ctx context.Context, id string, apply func(*Session) error) (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return SessionView{}, err
	}
	if err := apply(session); err != nil {
		return SessionView{}, err
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return SessionView{}, fmt.Errorf("save session: %w", err)
	}
	return session.View(), nil
}
