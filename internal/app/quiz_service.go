package app

import (
	"context"
	"errors"
	"time"

	"quiz-authoring-service/internal/domain"
	"quiz-authoring-service/internal/logger"
)

// QuizStore abstracts where aggregates live (in-memory, Redis, Postgres).
// Get and Delete must return domain.ErrQuizNotFound for unknown ids; Remove
// relies on Delete for its existence check. Put inserts or replaces the whole
// aggregate. Implementations must not retain or share the slices of the values
// passed in or handed out.
type QuizStore interface {
	Get(ctx context.Context, id string) (domain.Quiz, error)
	Put(ctx context.Context, quiz domain.Quiz) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Quiz, error)
}

// QuizService contains the quiz authoring use cases.
type QuizService struct {
	store QuizStore
	feed  *ChangeFeed
	log   *logger.Logger
	newID IDGenerator
	now   func() time.Time
}

// Option customises a QuizService.
type Option func(*QuizService)

// WithChangeFeed publishes every successful mutation on feed.
func WithChangeFeed(feed *ChangeFeed) Option {
	return func(s *QuizService) { s.feed = feed }
}

// WithLogger sets the service logger.
func WithLogger(log *logger.Logger) Option {
	return func(s *QuizService) { s.log = log }
}

// WithIDGenerator replaces the UUID generator; tests use it for stable ids.
func WithIDGenerator(next IDGenerator) Option {
	return func(s *QuizService) { s.newID = next }
}

// WithClock is test-only for deterministic event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

func NewQuizService(store QuizStore, opts ...Option) *QuizService {
	s := &QuizService{
		store: store,
		log:   logger.NewNop(),
		newID: NewUUID,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("service", "QuizService")
	return s
}

// Create validates the payload, assigns ids to the whole aggregate and stores it.
func (s *QuizService) Create(ctx context.Context, input domain.QuizInput) (domain.Quiz, error) {
	if input.ID != "" {
		verr := &domain.ValidationError{Kind: domain.ClientSuppliedID, Subject: input.ID}
		return domain.Quiz{}, domain.NewError(domain.ErrBadInput, verr, "%s", verr.Error())
	}

	draft := input.Draft()
	if err := ValidateQuiz(draft); err != nil {
		s.log.Debug("rejected quiz", "name", input.Name, "error", err)
		return domain.Quiz{}, domain.NewError(domain.ErrBadInput, err, "%s", err.Error())
	}

	quiz := AssignIdentity(draft, s.newID)
	if err := s.store.Put(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	s.log.Info("quiz created", "quiz_id", quiz.ID, "questions", len(quiz.Questions))
	s.publish(domain.EventCreated, quiz.ID, &quiz)
	return quiz, nil
}

// FindAll returns every stored aggregate in store order.
func (s *QuizService) FindAll(ctx context.Context) ([]domain.Quiz, error) {
	return s.store.List(ctx)
}

// FindOne returns the aggregate stored under id.
func (s *QuizService) FindOne(ctx context.Context, id string) (domain.Quiz, error) {
	quiz, err := s.store.Get(ctx, id)
	if errors.Is(err, domain.ErrQuizNotFound) {
		return domain.Quiz{}, domain.NewError(domain.ErrQuizNotFound, err, "no quiz with id %s exists in the collection", id)
	}
	if err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// Update applies patch semantics to the aggregate stored under id. The merged
// aggregate is validated and re-identified before it replaces the stored one,
// so a failed update leaves the store untouched.
func (s *QuizService) Update(ctx context.Context, id string, patch domain.QuizPatch) (domain.Quiz, error) {
	existing, err := s.store.Get(ctx, id)
	if errors.Is(err, domain.ErrQuizNotFound) {
		return domain.Quiz{}, domain.NewError(domain.ErrBadRequest, nil,
			"quiz id %s doesn't match any existing record, please verify the provided update data", id)
	}
	if err != nil {
		return domain.Quiz{}, err
	}

	merged := MergePatch(existing, patch)
	if err := ValidateQuiz(merged); err != nil {
		s.log.Debug("rejected quiz patch", "quiz_id", id, "error", err)
		return domain.Quiz{}, domain.NewError(domain.ErrBadRequest, err, "%s", err.Error())
	}

	updated := AssignIdentity(merged, s.newID)
	updated.ID = existing.ID
	if err := s.store.Put(ctx, updated); err != nil {
		return domain.Quiz{}, err
	}
	s.log.Info("quiz updated", "quiz_id", id, "questions_replaced", patch.Questions != nil)
	s.publish(domain.EventUpdated, id, &updated)
	return updated, nil
}

// Remove deletes the aggregate stored under id together with everything it owns.
func (s *QuizService) Remove(ctx context.Context, id string) error {
	// A single Delete both checks existence and removes; every QuizStore
	// reports an unknown id as domain.ErrQuizNotFound.
	err := s.store.Delete(ctx, id)
	if errors.Is(err, domain.ErrQuizNotFound) {
		return domain.NewError(domain.ErrBadRequest, nil,
			"can't delete a record which doesn't exist, please verify and fix the id %s", id)
	}
	if err != nil {
		return err
	}
	s.log.Info("quiz deleted", "quiz_id", id)
	s.publish(domain.EventDeleted, id, nil)
	return nil
}

func (s *QuizService) publish(typ domain.EventType, id string, quiz *domain.Quiz) {
	if s.feed == nil {
		return
	}
	event := domain.QuizEvent{Type: typ, QuizID: id, At: s.now()}
	if quiz != nil {
		snapshot := quiz.Clone()
		event.Quiz = &snapshot
	}
	s.feed.Publish(event)
}
