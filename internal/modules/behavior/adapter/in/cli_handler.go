package in

import (
	"context"

	"github.com/JHR999/behavior-tracker/internal/modules/behavior/dto"
	behaviorin "github.com/JHR999/behavior-tracker/internal/modules/behavior/port/in"
)

type CLIHandler struct {
	usecase behaviorin.Usecase
}

func NewCLIHandler(usecase behaviorin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]dto.BehaviorOutput, error) {
	return h.usecase.ListBehaviors(ctx)
}

func (h CLIHandler) Show(ctx context.Context, name string) (dto.BehaviorOutput, error) {
	return h.usecase.GetBehavior(ctx, name)
}

func (h CLIHandler) Add(ctx context.Context, input dto.AddInput) (dto.BehaviorOutput, error) {
	return h.usecase.AddBehavior(ctx, input)
}

func (h CLIHandler) Edit(ctx context.Context, input dto.EditInput) (dto.BehaviorOutput, error) {
	return h.usecase.EditBehavior(ctx, input)
}

func (h CLIHandler) Set(ctx context.Context, name string, probability int) (dto.ProbabilityChangeOutput, error) {
	return h.usecase.SetProbability(ctx, dto.SetProbabilityInput{Name: name, Probability: probability})
}

func (h CLIHandler) Remove(ctx context.Context, name string) error {
	return h.usecase.RemoveBehavior(ctx, name)
}

func (h CLIHandler) Reindex(ctx context.Context) (dto.ReindexOutput, error) {
	return h.usecase.Reindex(ctx)
}
