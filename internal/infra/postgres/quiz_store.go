package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"quiz-authoring-service/internal/domain"
)

// QuizStore persists aggregates across the quizzes, questions and answers
// tables. Put replaces a quiz and its whole subtree in a single transaction;
// the foreign keys cascade deletes down the tree.
type QuizStore struct {
	pool *pgxpool.Pool
}

func NewQuizStore(pool *pgxpool.Pool) *QuizStore {
	return &QuizStore{pool: pool}
}

const selectTreeSQL = `
SELECT q.id, q.name,
       qs.id, qs.statement,
       a.id, a.statement, a.is_correct
FROM quizzes q
LEFT JOIN questions qs ON qs.quiz_id = q.id
LEFT JOIN answers a ON a.question_id = qs.id`

func (s *QuizStore) Get(ctx context.Context, id string) (domain.Quiz, error) {
	rows, err := s.pool.Query(ctx, selectTreeSQL+`
WHERE q.id = $1
ORDER BY qs.position, a.position`, id)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	quizzes, err := scanTree(rows)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	if len(quizzes) == 0 {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quizzes[0], nil
}

func (s *QuizStore) Put(ctx context.Context, quiz domain.Quiz) error {
	err := s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
INSERT INTO quizzes (id, name) VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`, quiz.ID, quiz.Name); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE quiz_id = $1`, quiz.ID); err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for i, question := range quiz.Questions {
			batch.Queue(`INSERT INTO questions (id, quiz_id, position, statement) VALUES ($1, $2, $3, $4)`,
				question.ID, quiz.ID, i, question.Statement)
			for j, answer := range question.Answers {
				batch.Queue(`INSERT INTO answers (id, question_id, position, statement, is_correct) VALUES ($1, $2, $3, $4, $5)`,
					answer.ID, question.ID, j, answer.Statement, answer.IsCorrect)
			}
		}
		if batch.Len() == 0 {
			return nil
		}
		results := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return err
			}
		}
		return results.Close()
	})
	if err != nil {
		return fmt.Errorf("store quiz %s: %w", quiz.ID, err)
	}
	return nil
}

func (s *QuizStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete quiz %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

// List returns quizzes ordered by name, then id.
func (s *QuizStore) List(ctx context.Context) ([]domain.Quiz, error) {
	rows, err := s.pool.Query(ctx, selectTreeSQL+`
ORDER BY q.name, q.id, qs.position, a.position`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	quizzes, err := scanTree(rows)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return quizzes, nil
}

// scanTree folds the flat join rows back into aggregates. Rows must be
// grouped by quiz and question.
func scanTree(rows pgx.Rows) ([]domain.Quiz, error) {
	defer rows.Close()

	quizzes := []domain.Quiz{}
	for rows.Next() {
		var (
			quizID, quizName              string
			questionID, questionStatement *string
			answerID, answerStatement     *string
			answerCorrect                 *bool
		)
		if err := rows.Scan(&quizID, &quizName, &questionID, &questionStatement, &answerID, &answerStatement, &answerCorrect); err != nil {
			return nil, err
		}

		if n := len(quizzes); n == 0 || quizzes[n-1].ID != quizID {
			quizzes = append(quizzes, domain.Quiz{ID: quizID, Name: quizName, Questions: []domain.Question{}})
		}
		quiz := &quizzes[len(quizzes)-1]
		if questionID == nil {
			continue
		}

		if n := len(quiz.Questions); n == 0 || quiz.Questions[n-1].ID != *questionID {
			quiz.Questions = append(quiz.Questions, domain.Question{
				ID:        *questionID,
				Statement: deref(questionStatement),
				Answers:   []domain.Answer{},
			})
		}
		question := &quiz.Questions[len(quiz.Questions)-1]
		if answerID == nil {
			continue
		}
		question.Answers = append(question.Answers, domain.Answer{
			ID:        *answerID,
			Statement: deref(answerStatement),
			IsCorrect: answerCorrect != nil && *answerCorrect,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return quizzes, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
