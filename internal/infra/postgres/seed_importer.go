package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"quizplay-service/internal/domain"
)

type seedQuizRow struct {
	bun.BaseModel `bun:"table:seed_quizzes"`

	ID       string      `bun:"id,pk"`
	Position int         `bun:"position,notnull"`
	Data     domain.Quiz `bun:"data,type:jsonb,notnull"`
}

// ImportSeed upserts quizzes into seed_quizzes, keeping their order.
func ImportSeed(ctx context.Context, db *bun.DB, quizzes []domain.Quiz) error {
	if len(quizzes) == 0 {
		return nil
	}
	rows := make([]seedQuizRow, 0, len(quizzes))
	for i, quiz := range quizzes {
		rows = append(rows, seedQuizRow{ID: quiz.ID, Position: i, Data: quiz})
	}
	_, err := db.NewInsert().
		Model(&rows).
		On("CONFLICT (id) DO UPDATE").
		Set("position = EXCLUDED.position").
		Set("data = EXCLUDED.data").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("import seed quizzes: %w", err)
	}
	return nil
}
