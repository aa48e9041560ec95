package checkin

import (
	"context"
	"sort"
	"time"

	"github.com/hitoshi/dailycheck/internal/model"
)

// DayStatus は枠のない計画の 1 日分の完了状態。
type DayStatus struct {
	Date   string              `json:"date"`
	Status model.CheckinStatus `json:"status"`
}

// SlotDayStatus は枠単位の打刻状態。
type SlotDayStatus struct {
	SlotID   string              `json:"slot_id"`
	SlotName string              `json:"slot_name"`
	Status   model.CheckinStatus `json:"status"`
}

// SlottedDayStatus は枠のある計画の 1 日分の進捗。
// 完了枠数と総枠数を別フィールドで返し、状態コードと混同させない。
type SlottedDayStatus struct {
	Date           string          `json:"date"`
	CompletedSlots int             `json:"completed_slots"`
	TotalSlots     int             `json:"total_slots"`
	Slots          []SlotDayStatus `json:"slots"`
}

// MonthStatus は月間カレンダーの応答。形は計画のモードで決まる。
type MonthStatus struct {
	PlanID      string             `json:"plan_id"`
	Year        int                `json:"year"`
	Month       int                `json:"month"`
	Mode        model.PlanMode     `json:"mode"`
	Days        []DayStatus        `json:"days,omitempty"`
	SlottedDays []SlottedDayStatus `json:"slotted_days,omitempty"`
}

// GetMonthStatus は指定月のカレンダーを返す。
// 打刻のない日は出力されない。未打刻の扱いは呼び出し側が判断する。
func (s *Service) GetMonthStatus(ctx context.Context, userID, planID string, year, month int) (*MonthStatus, error) {
	plan, err := s.plans.FindByIDForUser(ctx, planID, userID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, model.NewPlanNotFoundError()
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	checkins, err := s.checkins.ListByPlanAndRange(ctx, planID, first, last)
	if err != nil {
		return nil, err
	}

	active := plan.ActiveSlots()
	result := &MonthStatus{
		PlanID: planID,
		Year:   year,
		Month:  month,
		Mode:   plan.DeriveMode(),
	}
	if result.Mode == model.PlanModeSlotted {
		result.SlottedDays = aggregateSlotted(checkins, active)
	} else {
		result.Days = aggregateDefault(checkins, active)
	}
	return result, nil
}

// aggregateDefault は日単位の完了状態を集計する。
// 有効な枠がない計画では、その日の打刻のうち最大の状態値を採用する。
// 有効な枠がある場合(枠導入前の打刻が残る移行期)、打刻済みの枠数が
// 有効枠数に達した日のみを完了とみなし、過去補完を含む日は Retro とする。
func aggregateDefault(checkins []*model.Checkin, activeSlots []model.TimeSlot) []DayStatus {
	byDate := groupByDate(checkins)
	days := make([]DayStatus, 0, len(byDate))
	for date, rows := range byDate {
		if len(activeSlots) == 0 {
			status := model.CheckinStatusMissed
			for _, c := range rows {
				if c.Status > status {
					status = c.Status
				}
			}
			days = append(days, DayStatus{Date: date, Status: status})
			continue
		}

		distinct := make(map[string]bool)
		hasRetro := false
		for _, c := range rows {
			if c.TimeSlot.Valid {
				distinct[c.TimeSlot.ID] = true
			}
			if c.Status == model.CheckinStatusRetro {
				hasRetro = true
			}
		}
		if len(distinct) < len(activeSlots) {
			continue
		}
		status := model.CheckinStatusSuccess
		if hasRetro {
			status = model.CheckinStatusRetro
		}
		days = append(days, DayStatus{Date: date, Status: status})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}

// aggregateSlotted は枠ごとの打刻状態と完了枠数を集計する。
func aggregateSlotted(checkins []*model.Checkin, activeSlots []model.TimeSlot) []SlottedDayStatus {
	byDate := groupByDate(checkins)
	days := make([]SlottedDayStatus, 0, len(byDate))
	for date, rows := range byDate {
		bySlot := make(map[string]model.CheckinStatus)
		for _, c := range rows {
			if c.TimeSlot.Valid {
				bySlot[c.TimeSlot.ID] = c.Status
			}
		}
		if len(bySlot) == 0 {
			continue
		}

		day := SlottedDayStatus{
			Date:       date,
			TotalSlots: len(activeSlots),
			Slots:      make([]SlotDayStatus, 0, len(bySlot)),
		}
		for _, slot := range activeSlots {
			status, ok := bySlot[slot.ID]
			if !ok {
				continue
			}
			day.Slots = append(day.Slots, SlotDayStatus{
				SlotID:   slot.ID,
				SlotName: slot.Name,
				Status:   status,
			})
			day.CompletedSlots++
		}
		if len(day.Slots) == 0 {
			continue
		}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}

func groupByDate(checkins []*model.Checkin) map[string][]*model.Checkin {
	byDate := make(map[string][]*model.Checkin)
	for _, c := range checkins {
		key := c.CheckDate.Format(model.DateFormat)
		byDate[key] = append(byDate[key], c)
	}
	return byDate
}
