package app

import (
	"strconv"
	"strings"

	"quiz-authoring-service/internal/domain"
)

// AnswersPerQuestion is the fixed number of answers every question carries.
const AnswersPerQuestion = 4

// ValidateQuiz checks a candidate aggregate and returns the first violated rule.
// Rules run in a fixed order: questions present, then per question the answer
// count, the single correct answer and non-empty statements, then the quiz name.
// Ids are not inspected.
func ValidateQuiz(quiz domain.Quiz) error {
	if len(quiz.Questions) == 0 {
		return &domain.ValidationError{Kind: domain.EmptyQuestions, Subject: quiz.Name}
	}
	for i, question := range quiz.Questions {
		if err := validateQuestion(i, question); err != nil {
			return err
		}
	}
	if strings.TrimSpace(quiz.Name) == "" {
		return &domain.ValidationError{Kind: domain.MissingName}
	}
	return nil
}

func validateQuestion(index int, question domain.Question) error {
	if len(question.Answers) != AnswersPerQuestion {
		return &domain.ValidationError{Kind: domain.WrongAnswerCount, Subject: question.Statement}
	}
	if correctAnswers(question.Answers) != 1 {
		return &domain.ValidationError{Kind: domain.AnswerCorrectnessViolation, Subject: question.Statement}
	}
	if strings.TrimSpace(question.Statement) == "" {
		return &domain.ValidationError{Kind: domain.MissingStatement, Subject: strconv.Itoa(index + 1)}
	}
	for _, answer := range question.Answers {
		if strings.TrimSpace(answer.Statement) == "" {
			return &domain.ValidationError{Kind: domain.MissingAnswerStatement, Subject: question.Statement}
		}
	}
	return nil
}

func correctAnswers(answers []domain.Answer) int {
	n := 0
	for _, answer := range answers {
		if answer.IsCorrect {
			n++
		}
	}
	return n
}
