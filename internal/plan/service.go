package plan

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/dailycheck/internal/model"
	"github.com/hitoshi/dailycheck/internal/repository"
)

// SlotInput は時間帯枠の入力。ID が空の場合は新規枠として扱う。
type SlotInput struct {
	ID        string
	Name      string
	StartTime model.TimeOfDay
	EndTime   model.TimeOfDay
	OrderNum  int
	IsActive  bool
}

// CreateInput は計画作成の入力。
type CreateInput struct {
	Title       string
	Description string
	StartDate   time.Time
	EndDate     *time.Time
	Slots       []SlotInput
}

// UpdateInput は計画更新の入力。Slots が nil の場合は既存の枠を変更しない。
// 非 nil の場合、含まれない既存の枠は無効化される。
type UpdateInput struct {
	Title       string
	Description string
	StartDate   time.Time
	EndDate     *time.Time
	IsActive    bool
	Slots       *[]SlotInput
}

// Service は打刻計画の管理を担う。
type Service struct {
	plans  repository.PlanRepository
	logger *slog.Logger
}

// NewService は Service を生成する。
func NewService(plans repository.PlanRepository, logger *slog.Logger) *Service {
	return &Service{plans: plans, logger: logger}
}

// List はユーザーの計画一覧を返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Plan, error) {
	plans, err := s.plans.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, p := range plans {
		p.Mode = p.DeriveMode()
	}
	return plans, nil
}

// Get は計画を取得する。他ユーザーの計画は存在しないものとして扱う。
func (s *Service) Get(ctx context.Context, userID, planID string) (*model.Plan, error) {
	p, err := s.plans.FindByIDForUser(ctx, planID, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, model.NewPlanNotFoundError()
	}
	p.Mode = p.DeriveMode()
	return p, nil
}

// Create は計画を作成する。
func (s *Service) Create(ctx context.Context, userID string, input CreateInput) (*model.Plan, error) {
	planID := uuid.New().String()
	slots := buildSlots(planID, input.Slots)
	if err := ValidateSlots(slots); err != nil {
		return nil, err
	}

	p := &model.Plan{
		ID:          planID,
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		StartDate:   model.DateOf(input.StartDate),
		EndDate:     normalizeEndDate(input.EndDate),
		IsActive:    true,
		TimeSlots:   slots,
	}
	p.Mode = p.DeriveMode()
	if err := s.plans.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("plan created", "plan_id", p.ID, "user_id", userID, "slots", len(slots))
	return p, nil
}

// Update は計画と時間帯枠を更新する。Slots が nil の場合は枠を変更しない。
// Slots が指定された場合、入力に含まれない既存の枠は削除せず無効化する。
// 過去の打刻が参照し続けるためである。
func (s *Service) Update(ctx context.Context, userID, planID string, input UpdateInput) (*model.Plan, error) {
	existing, err := s.plans.FindByIDForUser(ctx, planID, userID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, model.NewPlanNotFoundError()
	}

	slots := existing.TimeSlots
	var deactivateIDs []string
	if input.Slots != nil {
		slots = buildSlots(planID, *input.Slots)
		if err := ValidateSlots(slots); err != nil {
			return nil, err
		}

		// 入力に現れなかった既存の枠を無効化対象に集める。
		seen := make(map[string]bool, len(slots))
		for _, s := range slots {
			seen[s.ID] = true
		}
		for _, s := range existing.TimeSlots {
			if !seen[s.ID] {
				deactivateIDs = append(deactivateIDs, s.ID)
			}
		}
	}

	updated := &model.Plan{
		ID:          planID,
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		StartDate:   model.DateOf(input.StartDate),
		EndDate:     normalizeEndDate(input.EndDate),
		IsActive:    input.IsActive,
		TimeSlots:   slots,
	}
	updated.Mode = updated.DeriveMode()
	if err := s.plans.UpdateWithSlots(ctx, updated, slots, deactivateIDs); err != nil {
		return nil, err
	}

	return s.Get(ctx, userID, planID)
}

// SoftDelete は計画を論理削除する。打刻記録は残る。
func (s *Service) SoftDelete(ctx context.Context, userID, planID string) error {
	existing, err := s.plans.FindByIDForUser(ctx, planID, userID)
	if err != nil {
		return err
	}
	if existing == nil {
		return model.NewPlanNotFoundError()
	}
	if err := s.plans.SoftDelete(ctx, planID); err != nil {
		return err
	}
	s.logger.Info("plan deleted", "plan_id", planID, "user_id", userID)
	return nil
}

// buildSlots は入力を model.TimeSlot に変換する。ID が空の枠には新しい ID を振る。
func buildSlots(planID string, inputs []SlotInput) []model.TimeSlot {
	slots := make([]model.TimeSlot, 0, len(inputs))
	for _, in := range inputs {
		id := in.ID
		if id == "" {
			id = uuid.New().String()
		}
		slots = append(slots, model.TimeSlot{
			ID:        id,
			PlanID:    planID,
			Name:      in.Name,
			StartTime: in.StartTime,
			EndTime:   in.EndTime,
			OrderNum:  in.OrderNum,
			IsActive:  in.IsActive,
		})
	}
	return slots
}

func normalizeEndDate(d *time.Time) *time.Time {
	if d == nil {
		return nil
	}
	normalized := model.DateOf(*d)
	return &normalized
}
