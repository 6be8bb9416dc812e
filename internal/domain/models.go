package domain

import (
	"encoding/json"
	"time"
)

// Answer is one of the four options of a question.
type Answer struct {
	ID        string `json:"id"`
	Statement string `json:"statement"`
	IsCorrect bool   `json:"isCorrect"`
}

// Question models an MCQ question with exactly four answers, one of them correct.
type Question struct {
	ID        string   `json:"id"`
	Statement string   `json:"statement"`
	Answers   []Answer `json:"answers"`
}

// Quiz is the aggregate root; it owns its questions and, through them, their answers.
type Quiz struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

// Clone returns a deep copy so callers never share answer or question slices.
func (q Quiz) Clone() Quiz {
	out := Quiz{ID: q.ID, Name: q.Name}
	if q.Questions != nil {
		out.Questions = make([]Question, len(q.Questions))
		for i, question := range q.Questions {
			out.Questions[i] = question.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the question.
func (q Question) Clone() Question {
	out := Question{ID: q.ID, Statement: q.Statement}
	if q.Answers != nil {
		out.Answers = make([]Answer, len(q.Answers))
		copy(out.Answers, q.Answers)
	}
	return out
}

// AnswerInput is the client-facing answer shape; ids are never accepted.
type AnswerInput struct {
	Statement string `json:"statement"`
	IsCorrect bool   `json:"isCorrect"`
}

// QuestionInput is the client-facing question shape.
type QuestionInput struct {
	Statement string        `json:"statement"`
	Answers   []AnswerInput `json:"answers"`
}

// QuizInput is the create payload.
type QuizInput struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name"`
	Questions []QuestionInput `json:"questions"`
}

// QuizPatch carries only the fields a client wants to change.
// A non-nil Questions replaces the whole questions subtree.
type QuizPatch struct {
	Name      *string          `json:"name,omitempty"`
	Questions *[]QuestionInput `json:"questions,omitempty"`
}

// UnmarshalJSON tells an explicit null apart from an absent field: a null
// name becomes "" and null questions an empty list, so both still reach
// validation instead of being dropped.
func (p *QuizPatch) UnmarshalJSON(data []byte) error {
	var fields struct {
		Name      json.RawMessage `json:"name"`
		Questions json.RawMessage `json:"questions"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*p = QuizPatch{}
	if fields.Name != nil {
		var name string
		if !isNull(fields.Name) {
			if err := json.Unmarshal(fields.Name, &name); err != nil {
				return err
			}
		}
		p.Name = &name
	}
	if fields.Questions != nil {
		questions := []QuestionInput{}
		if !isNull(fields.Questions) {
			if err := json.Unmarshal(fields.Questions, &questions); err != nil {
				return err
			}
			if questions == nil {
				questions = []QuestionInput{}
			}
		}
		p.Questions = &questions
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}

// Draft converts the input into an id-less aggregate.
func (in QuizInput) Draft() Quiz {
	return Quiz{Name: in.Name, Questions: DraftQuestions(in.Questions)}
}

// DraftQuestions converts question inputs into id-less questions.
func DraftQuestions(inputs []QuestionInput) []Question {
	if inputs == nil {
		return nil
	}
	questions := make([]Question, len(inputs))
	for i, in := range inputs {
		questions[i] = Question{Statement: in.Statement}
		if in.Answers != nil {
			questions[i].Answers = make([]Answer, len(in.Answers))
			for j, a := range in.Answers {
				questions[i].Answers[j] = Answer{Statement: a.Statement, IsCorrect: a.IsCorrect}
			}
		}
	}
	return questions
}

// EventType names a change applied to a quiz.
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// QuizEvent is published on the change feed after a successful mutation.
// Quiz is nil for deletions.
type QuizEvent struct {
	Type   EventType `json:"type"`
	QuizID string    `json:"quizId"`
	Quiz   *Quiz     `json:"quiz,omitempty"`
	At     time.Time `json:"at"`
}
