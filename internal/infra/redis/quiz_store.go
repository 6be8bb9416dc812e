package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
	"quiz-authoring-service/internal/domain"
)

// QuizStore keeps each aggregate as one JSON document so a quiz is always
// written and removed as a unit.
// Documents are stored as: SET  quiz:{quizID} {json}
// Ids are indexed as:      SADD quizzes {quizID}
type QuizStore struct {
	client *redis.Client
	prefix string
}

func NewQuizStore(client *redis.Client) *QuizStore {
	return &QuizStore{client: client, prefix: "quiz:"}
}

func (s *QuizStore) Get(ctx context.Context, id string) (domain.Quiz, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("get quiz %s: %w", id, err)
	}
	return decodeQuiz(raw)
}

func (s *QuizStore) Put(ctx context.Context, quiz domain.Quiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(quiz.ID), data, 0)
		pipe.SAdd(ctx, s.indexKey(), quiz.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("put quiz %s: %w", quiz.ID, err)
	}
	return nil
}

func (s *QuizStore) Delete(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.key(id))
		pipe.SRem(ctx, s.indexKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete quiz %s: %w", id, err)
	}
	if del.Val() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

// List returns quizzes ordered by id.
func (s *QuizStore) List(ctx context.Context) ([]domain.Quiz, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list quiz ids: %w", err)
	}
	if len(ids) == 0 {
		return []domain.Quiz{}, nil
	}
	sort.Strings(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}

	quizzes := make([]domain.Quiz, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// index entry without a document; skip it
			continue
		}
		quiz, err := decodeQuiz([]byte(raw))
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, nil
}

func (s *QuizStore) key(id string) string {
	return s.prefix + id
}

func (s *QuizStore) indexKey() string {
	return "quizzes"
}

func decodeQuiz(raw []byte) (domain.Quiz, error) {
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return quiz, nil
}
