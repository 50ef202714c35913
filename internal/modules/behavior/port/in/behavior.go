package in

import (
	"context"

	"github.com/JHR999/behavior-tracker/internal/modules/behavior/dto"
)

type Usecase interface {
	ListBehaviors(ctx context.Context) ([]dto.BehaviorOutput, error)
	GetBehavior(ctx context.Context, name string) (dto.BehaviorOutput, error)
	AddBehavior(ctx context.Context, input dto.AddInput) (dto.BehaviorOutput, error)
	EditBehavior(ctx context.Context, input dto.EditInput) (dto.BehaviorOutput, error)
	RemoveBehavior(ctx context.Context, name string) error
	SetProbability(ctx context.Context, input dto.SetProbabilityInput) (dto.ProbabilityChangeOutput, error)
	ApplyOutcome(ctx context.Context, input dto.ApplyOutcomeInput) (dto.ProbabilityChangeOutput, error)
	Reload(ctx context.Context) ([]dto.BehaviorOutput, error)
	Reindex(ctx context.Context) (dto.ReindexOutput, error)
}
