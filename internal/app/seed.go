package app

import (
	"context"

	"quiz-authoring-service/internal/domain"
	"quiz-authoring-service/internal/logger"
)

// SeedReport summarises a seeding run.
type SeedReport struct {
	Loaded  int
	Skipped int
}

// Seed stores every snapshot record that passes validation. Records without
// ids get fresh ones; invalid records are logged and skipped.
func Seed(ctx context.Context, store QuizStore, quizzes []domain.Quiz, log *logger.Logger) (SeedReport, error) {
	var report SeedReport
	for _, quiz := range quizzes {
		if err := ValidateQuiz(quiz); err != nil {
			log.Warn("skipping invalid seed quiz", "quiz_id", quiz.ID, "error", err)
			report.Skipped++
			continue
		}
		if err := store.Put(ctx, AssignIdentity(quiz, NewUUID)); err != nil {
			return report, err
		}
		report.Loaded++
	}
	return report, nil
}
