package app

import "quiz-authoring-service/internal/domain"

// MergePatch applies a patch to a copy of the existing aggregate.
// A present name overwrites the old one. Present questions replace the whole
// subtree with id-less drafts; questions missing from the patch are dropped.
// The quiz id is kept.
func MergePatch(existing domain.Quiz, patch domain.QuizPatch) domain.Quiz {
	merged := existing.Clone()
	if patch.Name != nil {
		merged.Name = *patch.Name
	}
	if patch.Questions != nil {
		merged.Questions = domain.DraftQuestions(*patch.Questions)
		if merged.Questions == nil {
			merged.Questions = []domain.Question{}
		}
	}
	return merged
}
