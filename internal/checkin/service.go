package checkin

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/dailycheck/internal/model"
	"github.com/hitoshi/dailycheck/internal/repository"
	"github.com/hitoshi/dailycheck/internal/security"
)

// Service は打刻の登録と照会を担う。
// 時刻の判定はすべて業務時刻(UTC + 固定オフセット)で行う。
type Service struct {
	plans     repository.PlanRepository
	checkins  repository.CheckinRepository
	sanitizer *security.NoteSanitizer
	offset    time.Duration
	nowFn     func() time.Time
	logger    *slog.Logger
}

// NewService は Service を生成する。
func NewService(plans repository.PlanRepository, checkins repository.CheckinRepository, sanitizer *security.NoteSanitizer, offset time.Duration, logger *slog.Logger) *Service {
	return &Service{
		plans:     plans,
		checkins:  checkins,
		sanitizer: sanitizer,
		offset:    offset,
		nowFn:     time.Now,
		logger:    logger,
	}
}

// businessNow は現在の業務時刻を返す。
func (s *Service) businessNow() time.Time {
	return s.nowFn().UTC().Add(s.offset)
}

// RecordLive は当日の打刻を登録する。
func (s *Service) RecordLive(ctx context.Context, userID, planID string, slot model.SlotRef, images []string, note string) (*model.Checkin, error) {
	now := s.businessNow()
	today := model.DateOf(now)

	plan, err := s.resolvePlan(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	if today.Before(model.DateOf(plan.StartDate)) {
		return nil, model.NewPlanNotStartedError()
	}

	resolved, err := resolveSlot(plan, slot)
	if err != nil {
		return nil, err
	}

	// 枠のある計画では現在時刻が枠の範囲内でなければならない。
	if resolved != nil {
		nowOfDay := model.TimeOfDayFrom(now)
		if nowOfDay < resolved.StartTime || nowOfDay > resolved.EndTime {
			return nil, model.NewOutOfWindowError(resolved.Name)
		}
	}

	return s.store(ctx, plan, userID, today, slot, images, note, model.CheckinStatusSuccess)
}

// RecordRetro は過去日の打刻を登録する。
// 当日でまだ打刻できる時間帯が残っている場合は通常打刻を使わせる。
func (s *Service) RecordRetro(ctx context.Context, userID, planID string, date time.Time, slot model.SlotRef, images []string, note string) (*model.Checkin, error) {
	now := s.businessNow()
	today := model.DateOf(now)
	target := model.DateOf(date)

	plan, err := s.resolvePlan(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	if target.Before(model.DateOf(plan.StartDate)) {
		return nil, model.NewPlanNotStartedError()
	}

	resolved, err := resolveSlot(plan, slot)
	if err != nil {
		return nil, err
	}

	if target.After(today) {
		return nil, model.NewFutureDateError()
	}
	if target.Equal(today) {
		deadline := model.EndOfDay
		if resolved != nil {
			deadline = resolved.EndTime
		}
		if model.TimeOfDayFrom(now) <= deadline {
			return nil, model.NewWrongPathError()
		}
	}

	return s.store(ctx, plan, userID, target, slot, images, note, model.CheckinStatusRetro)
}

// GetDayDetail は指定日の打刻一覧を返す。打刻がない日は空リストを返す。
func (s *Service) GetDayDetail(ctx context.Context, userID, planID string, date time.Time) ([]*model.Checkin, error) {
	plan, err := s.plans.FindByIDForUser(ctx, planID, userID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, model.NewPlanNotFoundError()
	}

	checkins, err := s.checkins.ListByPlanAndDate(ctx, planID, model.DateOf(date))
	if err != nil {
		return nil, err
	}
	if checkins == nil {
		checkins = []*model.Checkin{}
	}
	return checkins, nil
}

// resolvePlan は打刻対象の計画を取得する。無効化された計画には打刻できない。
func (s *Service) resolvePlan(ctx context.Context, userID, planID string) (*model.Plan, error) {
	plan, err := s.plans.FindByIDForUser(ctx, planID, userID)
	if err != nil {
		return nil, err
	}
	if plan == nil || !plan.IsActive {
		return nil, model.NewPlanNotFoundError()
	}
	return plan, nil
}

// resolveSlot は枠指定を計画の有効な枠に解決する。
// 枠のある計画では枠指定が必須、枠のない計画では枠指定は不正となる。
func resolveSlot(plan *model.Plan, slot model.SlotRef) (*model.TimeSlot, error) {
	active := plan.ActiveSlots()
	if len(active) == 0 {
		if slot.Valid {
			return nil, model.NewInvalidSlotError("この計画には時間帯がありません。")
		}
		return nil, nil
	}
	if !slot.Valid {
		return nil, model.NewInvalidSlotError("時間帯を指定してください。")
	}
	resolved := plan.FindActiveSlot(slot.ID)
	if resolved == nil {
		return nil, model.NewInvalidSlotError("指定された時間帯が見つかりません。")
	}
	return resolved, nil
}

func (s *Service) store(ctx context.Context, plan *model.Plan, userID string, date time.Time, slot model.SlotRef, images []string, note string, status model.CheckinStatus) (*model.Checkin, error) {
	// 重複チェックは一意制約の手前でも行い、分かりやすいエラーを返す。
	existing, err := s.checkins.FindActive(ctx, plan.ID, date, slot)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, model.NewDuplicateCheckinError()
	}

	if len(images) < 1 || len(images) > 3 {
		return nil, model.NewInvalidImageCountError(len(images))
	}

	c := &model.Checkin{
		ID:        uuid.New().String(),
		PlanID:    plan.ID,
		UserID:    userID,
		CheckDate: date,
		TimeSlot:  slot,
		Images:    images,
		Note:      s.sanitizer.Sanitize(note),
		Status:    status,
	}
	if err := s.checkins.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("checkin recorded",
		"plan_id", plan.ID,
		"user_id", userID,
		"check_date", date.Format(model.DateFormat),
		"status", int(status),
	)
	return c, nil
}
