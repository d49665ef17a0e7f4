package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"drivetest-quiz/internal/domain"
	"github.com/uptrace/bun"
)

type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID   int    `bun:"id,pk"`
	Data string `bun:"data,type:jsonb"`
}

// SeedQuestions upserts the pool into the questions table after validating it.
func SeedQuestions(ctx context.Context, db *bun.DB, questions []domain.Question) (int, error) {
	if err := domain.ValidatePool(questions); err != nil {
		return 0, err
	}
	if len(questions) == 0 {
		return 0, nil
	}

	rows := make([]questionRow, 0, len(questions))
	for _, q := range questions {
		data, err := json.Marshal(q)
		if err != nil {
			return 0, fmt.Errorf("marshal question %d: %w", q.ID, err)
		}
		rows = append(rows, questionRow{ID: q.ID, Data: string(data)})
	}

	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(&rows).
			On("CONFLICT (id) DO UPDATE").
			Set("data = EXCLUDED.data").
			Exec(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("seed questions: %w", err)
	}
	return len(rows), nil
}
