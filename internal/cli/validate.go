package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"quiz-authoring-service/internal/app"
	"quiz-authoring-service/internal/infra/memory"
)

// NewValidateCmd checks a quiz snapshot file without starting the server.
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate every quiz in a JSON snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			quizzes, err := memory.LoadSeedFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			failed := 0
			for i, quiz := range quizzes {
				label := quiz.ID
				if label == "" {
					label = fmt.Sprintf("#%d", i+1)
				}
				if err := app.ValidateQuiz(quiz); err != nil {
					failed++
					fmt.Fprintf(out, "FAIL %s: %v\n", label, err)
					continue
				}
				fmt.Fprintf(out, "ok   %s (%s)\n", label, quiz.Name)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d quizzes failed validation", failed, len(quizzes))
			}
			return nil
		},
	}
}
