package in

import (
	"context"

	"github.com/JHR999/behavior-tracker/internal/modules/checkin/dto"
)

type Usecase interface {
	Pending(ctx context.Context) (dto.PendingOutput, error)
	Queue(ctx context.Context) ([]dto.ItemOutput, error)
	Situational(ctx context.Context) ([]dto.ItemOutput, error)
	Today(ctx context.Context) ([]dto.ItemOutput, error)
	RecordOutcome(ctx context.Context, input dto.RecordOutcomeInput) (dto.RecordOutcomeOutput, error)
	ResetSession(ctx context.Context) (dto.SessionOutput, error)
	Session(ctx context.Context) (dto.SessionOutput, error)
}
