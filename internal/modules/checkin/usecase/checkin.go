package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	behaviordto "github.com/JHR999/behavior-tracker/internal/modules/behavior/dto"
	behaviorin "github.com/JHR999/behavior-tracker/internal/modules/behavior/port/in"
	"github.com/JHR999/behavior-tracker/internal/modules/checkin/domain"
	"github.com/JHR999/behavior-tracker/internal/modules/checkin/dto"
	checkinin "github.com/JHR999/behavior-tracker/internal/modules/checkin/port/in"
	"github.com/JHR999/behavior-tracker/internal/modules/checkin/service"
	apperrors "github.com/JHR999/behavior-tracker/internal/platform/errors"
)

type Interactor struct {
	svc       *service.CheckinService
	behaviors behaviorin.Usecase
	policy    domain.Policy
}

func NewInteractor(svc *service.CheckinService, behaviors behaviorin.Usecase, policy domain.Policy) checkinin.Usecase {
	if policy == "" {
		policy = domain.PolicyEarliest
	}
	return &Interactor{svc: svc, behaviors: behaviors, policy: policy}
}

func (i *Interactor) Pending(ctx context.Context) (dto.PendingOutput, error) {
	behaviors, err := i.behaviors.ListBehaviors(ctx)
	if err != nil {
		return dto.PendingOutput{}, err
	}
	session, now, err := i.svc.Snapshot(ctx)
	if err != nil {
		return dto.PendingOutput{}, err
	}
	return i.pending(behaviors, session, now), nil
}

func (i *Interactor) Queue(ctx context.Context) ([]dto.ItemOutput, error) {
	behaviors, err := i.behaviors.ListBehaviors(ctx)
	if err != nil {
		return nil, err
	}
	session, now, err := i.svc.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	byName := indexByName(behaviors)
	queue := domain.BuildQueue(toItems(behaviors), now, session)
	out := make([]dto.ItemOutput, 0, len(queue))
	for _, item := range queue {
		out = append(out, toItemOutput(byName[item.Name], domain.StatusDue))
	}
	return out, nil
}

// Situational lists situational behaviors in table order. They are never
// gated, so no session is consulted.
func (i *Interactor) Situational(ctx context.Context) ([]dto.ItemOutput, error) {
	behaviors, err := i.behaviors.ListBehaviors(ctx)
	if err != nil {
		return nil, err
	}
	out := []dto.ItemOutput{}
	for _, b := range behaviors {
		if b.Situational {
			out = append(out, toItemOutput(b, domain.StatusSituational))
		}
	}
	return out, nil
}

// Today reports every scheduled behavior with its gate status, in table order.
func (i *Interactor) Today(ctx context.Context) ([]dto.ItemOutput, error) {
	behaviors, err := i.behaviors.ListBehaviors(ctx)
	if err != nil {
		return nil, err
	}
	session, now, err := i.svc.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := []dto.ItemOutput{}
	for _, b := range behaviors {
		if b.Situational {
			continue
		}
		out = append(out, toItemOutput(b, domain.StatusOf(toItem(b), now, session)))
	}
	return out, nil
}

// RecordOutcome applies the outcome to the behavior table first. The session
// is only touched once the probability change succeeded.
func (i *Interactor) RecordOutcome(ctx context.Context, input dto.RecordOutcomeInput) (dto.RecordOutcomeOutput, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return dto.RecordOutcomeOutput{}, fmt.Errorf("%w: behavior name is required", apperrors.ErrInvalidInput)
	}
	change, err := i.behaviors.ApplyOutcome(ctx, behaviordto.ApplyOutcomeInput{Name: name, Outcome: input.Outcome})
	if err != nil {
		return dto.RecordOutcomeOutput{}, err
	}
	session, now, err := i.svc.Update(ctx, func(session *domain.DailySession, _ time.Time) error {
		if !change.Situational {
			session.MarkAnswered(change.Name)
		}
		session.Advance()
		return nil
	})
	if err != nil {
		return dto.RecordOutcomeOutput{}, err
	}
	behaviors, err := i.behaviors.ListBehaviors(ctx)
	if err != nil {
		return dto.RecordOutcomeOutput{}, err
	}
	return dto.RecordOutcomeOutput{
		Change:   change,
		Answered: !change.Situational,
		Next:     i.pending(behaviors, session, now),
	}, nil
}

func (i *Interactor) ResetSession(ctx context.Context) (dto.SessionOutput, error) {
	session, err := i.svc.Reset(ctx)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	return toSessionOutput(session), nil
}

func (i *Interactor) Session(ctx context.Context) (dto.SessionOutput, error) {
	session, _, err := i.svc.Snapshot(ctx)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	return toSessionOutput(session), nil
}

func (i *Interactor) pending(behaviors []behaviordto.BehaviorOutput, session domain.DailySession, now time.Time) dto.PendingOutput {
	queue := domain.BuildQueue(toItems(behaviors), now, session)
	item, position, ok := domain.Current(queue, session, i.policy)
	if !ok {
		return dto.PendingOutput{}
	}
	return dto.PendingOutput{
		Pending:  true,
		Item:     toItemOutput(indexByName(behaviors)[item.Name], domain.StatusDue),
		Position: position,
		Total:    len(queue),
	}
}

func toItem(b behaviordto.BehaviorOutput) domain.Item {
	return domain.Item{Name: b.Name, Situational: b.Situational, PromptTime: b.PromptTime, Order: b.Position}
}

func toItems(behaviors []behaviordto.BehaviorOutput) []domain.Item {
	out := make([]domain.Item, 0, len(behaviors))
	for _, b := range behaviors {
		out = append(out, toItem(b))
	}
	return out
}

func indexByName(behaviors []behaviordto.BehaviorOutput) map[string]behaviordto.BehaviorOutput {
	out := make(map[string]behaviordto.BehaviorOutput, len(behaviors))
	for _, b := range behaviors {
		out[b.Name] = b
	}
	return out
}

func toItemOutput(b behaviordto.BehaviorOutput, status domain.Status) dto.ItemOutput {
	return dto.ItemOutput{
		Name:        b.Name,
		Probability: b.Probability,
		Category:    b.Category,
		Situational: b.Situational,
		PromptTime:  b.PromptTime,
		UpEmoji:     b.UpEmoji,
		DownEmoji:   b.DownEmoji,
		Status:      string(status),
	}
}

func toSessionOutput(session domain.DailySession) dto.SessionOutput {
	return dto.SessionOutput{Day: session.Day, Answered: session.AnsweredNames(), Cursor: session.Cursor}
}
