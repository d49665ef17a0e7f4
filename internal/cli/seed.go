package cli

import (
	"drivetest-quiz/internal/infra/file"
	"drivetest-quiz/internal/infra/postgres"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewSeedCmd loads a question file into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var questionsPath string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Validate a question file and upsert it into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if questionsPath == "" {
				questionsPath = cfg.Quiz.QuestionsPath
			}
			if err := runMigrations(cmd.Context(), cfg, log); err != nil {
				return err
			}

			questions, err := file.NewQuestionLoader(questionsPath).LoadQuestions(cmd.Context())
			if err != nil {
				return err
			}

			db := postgres.OpenDB(cfg.Postgres.URL)
			defer db.Close()
			n, err := postgres.SeedQuestions(cmd.Context(), db, questions)
			if err != nil {
				return err
			}
			log.Info("questions seeded", zap.Int("count", n), zap.String("path", questionsPath))
			return nil
		},
	}
	cmd.Flags().StringVar(&questionsPath, "questions", "", "question file (.json or .yaml); defaults to quiz.questionsPath")
	return cmd
}
