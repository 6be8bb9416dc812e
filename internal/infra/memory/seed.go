package memory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"quiz-authoring-service/internal/domain"
)

// LoadSeedFile reads a snapshot of quiz records. The file holds either a JSON
// array of quizzes or an object keyed by quiz id.
func LoadSeedFile(path string) ([]domain.Quiz, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes snapshot bytes in either supported layout.
func ParseSeed(data []byte) ([]domain.Quiz, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var quizzes []domain.Quiz
		if err := json.Unmarshal(trimmed, &quizzes); err != nil {
			return nil, fmt.Errorf("decode seed array: %w", err)
		}
		return quizzes, nil
	}

	var keyed map[string]domain.Quiz
	if err := json.Unmarshal(trimmed, &keyed); err != nil {
		return nil, fmt.Errorf("decode seed object: %w", err)
	}
	ids := make([]string, 0, len(keyed))
	for id := range keyed {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	quizzes := make([]domain.Quiz, 0, len(keyed))
	for _, id := range ids {
		quiz := keyed[id]
		if quiz.ID == "" {
			quiz.ID = id
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, nil
}
