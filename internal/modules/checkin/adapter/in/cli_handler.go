package in

import (
	"context"

	"github.com/JHR999/behavior-tracker/internal/modules/checkin/dto"
	checkinin "github.com/JHR999/behavior-tracker/internal/modules/checkin/port/in"
)

type CLIHandler struct {
	usecase checkinin.Usecase
}

func NewCLIHandler(usecase checkinin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Pending(ctx context.Context) (dto.PendingOutput, error) {
	return h.usecase.Pending(ctx)
}

func (h CLIHandler) Queue(ctx context.Context) ([]dto.ItemOutput, error) {
	return h.usecase.Queue(ctx)
}

func (h CLIHandler) Today(ctx context.Context) ([]dto.ItemOutput, error) {
	return h.usecase.Today(ctx)
}

func (h CLIHandler) Situational(ctx context.Context) ([]dto.ItemOutput, error) {
	return h.usecase.Situational(ctx)
}

func (h CLIHandler) Record(ctx context.Context, name, outcome string) (dto.RecordOutcomeOutput, error) {
	return h.usecase.RecordOutcome(ctx, dto.RecordOutcomeInput{Name: name, Outcome: outcome})
}

func (h CLIHandler) ResetSession(ctx context.Context) (dto.SessionOutput, error) {
	return h.usecase.ResetSession(ctx)
}
