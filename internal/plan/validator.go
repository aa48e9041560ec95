package plan

import (
	"sort"

	"github.com/hitoshi/dailycheck/internal/model"
)

// ValidateSlots は時間帯枠の定義を検証する。
//   - 各枠は start < end でなければならない
//   - 有効な枠同士は重なってはならない(境界が接するのは許可)
func ValidateSlots(slots []model.TimeSlot) error {
	for _, s := range slots {
		if s.StartTime >= s.EndTime {
			return model.NewInvalidWindowError(s.Name)
		}
	}

	active := make([]model.TimeSlot, 0, len(slots))
	for _, s := range slots {
		if s.IsActive {
			active = append(active, s)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].StartTime < active[j].StartTime
	})
	for i := 1; i < len(active); i++ {
		if active[i-1].EndTime > active[i].StartTime {
			return model.NewOverlappingWindowsError(active[i-1].Name, active[i].Name)
		}
	}
	return nil
}
