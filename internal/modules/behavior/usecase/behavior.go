package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/JHR999/behavior-tracker/internal/modules/behavior/domain"
	"github.com/JHR999/behavior-tracker/internal/modules/behavior/dto"
	behaviorin "github.com/JHR999/behavior-tracker/internal/modules/behavior/port/in"
	"github.com/JHR999/behavior-tracker/internal/modules/behavior/service"
	apperrors "github.com/JHR999/behavior-tracker/internal/platform/errors"
)

type Interactor struct {
	svc       *service.BehaviorService
	upEmoji   string
	downEmoji string
}

// NewInteractor wires the behavior service. upEmoji and downEmoji are the
// configured markers used when a row leaves its emoji cells empty.
func NewInteractor(svc *service.BehaviorService, upEmoji, downEmoji string) behaviorin.Usecase {
	return &Interactor{svc: svc, upEmoji: upEmoji, downEmoji: downEmoji}
}

func (i *Interactor) ListBehaviors(ctx context.Context) ([]dto.BehaviorOutput, error) {
	behaviors, err := i.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	return i.toOutputs(behaviors), nil
}

func (i *Interactor) GetBehavior(ctx context.Context, name string) (dto.BehaviorOutput, error) {
	if strings.TrimSpace(name) == "" {
		return dto.BehaviorOutput{}, fmt.Errorf("%w: behavior name is required", apperrors.ErrInvalidInput)
	}
	behavior, position, err := i.svc.Get(ctx, name)
	if err != nil {
		return dto.BehaviorOutput{}, err
	}
	return i.toOutput(behavior, position), nil
}

func (i *Interactor) AddBehavior(ctx context.Context, input dto.AddInput) (dto.BehaviorOutput, error) {
	behavior, err := i.svc.Add(ctx, domain.Behavior{
		Name:        input.Name,
		Probability: input.Probability,
		Category:    domain.Category(input.Category),
		PromptTime:  input.PromptTime,
		UpEmoji:     input.UpEmoji,
		DownEmoji:   input.DownEmoji,
	})
	if err != nil {
		return dto.BehaviorOutput{}, err
	}
	return i.GetBehavior(ctx, behavior.Name)
}

func (i *Interactor) EditBehavior(ctx context.Context, input dto.EditInput) (dto.BehaviorOutput, error) {
	behavior, err := i.svc.Edit(ctx, input.Name, domain.Patch{
		Category:   input.Category,
		PromptTime: input.PromptTime,
		UpEmoji:    input.UpEmoji,
		DownEmoji:  input.DownEmoji,
	})
	if err != nil {
		return dto.BehaviorOutput{}, err
	}
	return i.GetBehavior(ctx, behavior.Name)
}

func (i *Interactor) RemoveBehavior(ctx context.Context, name string) error {
	return i.svc.Remove(ctx, name)
}

func (i *Interactor) SetProbability(ctx context.Context, input dto.SetProbabilityInput) (dto.ProbabilityChangeOutput, error) {
	behavior, before, err := i.svc.UpdateProbability(ctx, input.Name, input.Probability)
	if err != nil {
		return dto.ProbabilityChangeOutput{}, err
	}
	return dto.ProbabilityChangeOutput{
		Name:        behavior.Name,
		Before:      before,
		After:       behavior.Probability,
		Situational: behavior.Category.IsSituational(),
	}, nil
}

func (i *Interactor) ApplyOutcome(ctx context.Context, input dto.ApplyOutcomeInput) (dto.ProbabilityChangeOutput, error) {
	outcome, err := domain.ParseOutcome(input.Outcome)
	if err != nil {
		return dto.ProbabilityChangeOutput{}, err
	}
	behavior, before, err := i.svc.ApplyOutcome(ctx, input.Name, outcome)
	if err != nil {
		return dto.ProbabilityChangeOutput{}, err
	}
	return dto.ProbabilityChangeOutput{
		Name:        behavior.Name,
		Before:      before,
		After:       behavior.Probability,
		Outcome:     string(outcome),
		Situational: behavior.Category.IsSituational(),
	}, nil
}

func (i *Interactor) Reload(ctx context.Context) ([]dto.BehaviorOutput, error) {
	behaviors, err := i.svc.Reload(ctx)
	if err != nil {
		return nil, err
	}
	return i.toOutputs(behaviors), nil
}

func (i *Interactor) Reindex(ctx context.Context) (dto.ReindexOutput, error) {
	count, err := i.svc.Reindex(ctx)
	if err != nil {
		return dto.ReindexOutput{}, err
	}
	return dto.ReindexOutput{Behaviors: count}, nil
}

func (i *Interactor) toOutputs(behaviors []domain.Behavior) []dto.BehaviorOutput {
	out := make([]dto.BehaviorOutput, 0, len(behaviors))
	for position, b := range behaviors {
		out = append(out, i.toOutput(b, position))
	}
	return out
}

func (i *Interactor) toOutput(b domain.Behavior, position int) dto.BehaviorOutput {
	return dto.BehaviorOutput{
		Name:        b.Name,
		Probability: b.Probability,
		Category:    string(b.Category),
		Situational: b.Category.IsSituational(),
		PromptTime:  b.PromptTime,
		UpEmoji:     b.UpLabel(i.upEmoji),
		DownEmoji:   b.DownLabel(i.downEmoji),
		Position:    position,
	}
}
