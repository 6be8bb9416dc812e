package app

import (
	"github.com/google/uuid"
	"quiz-authoring-service/internal/domain"
)

// IDGenerator mints identifiers for aggregates.
type IDGenerator func() string

// NewUUID returns a random UUIDv4 string.
func NewUUID() string {
	return uuid.NewString()
}

// AssignIdentity fills every empty id in the aggregate and leaves existing ones alone.
// It works on a copy; the argument is not modified.
func AssignIdentity(quiz domain.Quiz, next IDGenerator) domain.Quiz {
	if next == nil {
		next = NewUUID
	}
	out := quiz.Clone()
	if out.ID == "" {
		out.ID = next()
	}
	for i := range out.Questions {
		question := &out.Questions[i]
		if question.ID == "" {
			question.ID = next()
		}
		for j := range question.Answers {
			if question.Answers[j].ID == "" {
				question.Answers[j].ID = next()
			}
		}
	}
	return out
}
