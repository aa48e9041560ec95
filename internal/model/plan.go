// Package model はドメインモデルを定義する。
package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// PlanMode は打刻計画のモードを表す。
// 有効な時間帯を持つかどうかから導出され、時間帯の追加・削除と常に整合する。
type PlanMode int8

const (
	// PlanModeDefault は時間帯なし・1日1回打刻のモード。
	PlanModeDefault PlanMode = 0
	// PlanModeSlotted は有効な時間帯ごとに1日1回打刻するモード。
	PlanModeSlotted PlanMode = 1
)

// Plan はユーザーが所有する継続打刻計画を表す。
type Plan struct {
	ID          string
	UserID      string
	Title       string
	Description string
	StartDate   time.Time  // 日付のみ（開始日、含む）
	EndDate     *time.Time // 日付のみ（終了日、任意）
	IsActive    bool
	IsDeleted   bool
	DeletedAt   *time.Time
	Mode        PlanMode
	TimeSlots   []TimeSlot
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ActiveSlots は有効フラグが立っている時間帯のみを返す。
func (p *Plan) ActiveSlots() []TimeSlot {
	var slots []TimeSlot
	for _, ts := range p.TimeSlots {
		if ts.IsActive {
			slots = append(slots, ts)
		}
	}
	return slots
}

// FindActiveSlot は指定IDの有効な時間帯を返す。見つからない場合はnilを返す。
func (p *Plan) FindActiveSlot(slotID string) *TimeSlot {
	for i := range p.TimeSlots {
		if p.TimeSlots[i].ID == slotID && p.TimeSlots[i].IsActive {
			return &p.TimeSlots[i]
		}
	}
	return nil
}

// DeriveMode は時間帯の有無からモードを導出する。
// 時間帯の追加・削除後は必ずこの値でModeを更新すること。
func (p *Plan) DeriveMode() PlanMode {
	if len(p.ActiveSlots()) > 0 {
		return PlanModeSlotted
	}
	return PlanModeDefault
}

// TimeSlot は計画に属する毎日繰り返しの時間帯を表す。
// 開始・終了は壁時計の時刻のみで日付を持たない。
type TimeSlot struct {
	ID        string
	PlanID    string
	Name      string // 表示用（例:「朝」「午後」）
	StartTime TimeOfDay
	EndTime   TimeOfDay
	OrderNum  int // 表示順
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TimeOfDay は0時からの経過秒数で表した壁時計時刻。
// PostgreSQLのTIME型および"15:04"/"15:04:05"形式の文字列と相互変換できる。
type TimeOfDay int

// EndOfDay は1日の終端（23:59:59）を表す。
const EndOfDay TimeOfDay = 24*3600 - 1

// ParseTimeOfDay は"15:04"または"15:04:05"形式の文字列を解析する。
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m, sec int
	switch strings.Count(s, ":") {
	case 1:
		if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
			return 0, fmt.Errorf("時刻の形式が不正です: %q", s)
		}
	case 2:
		if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
			return 0, fmt.Errorf("時刻の形式が不正です: %q", s)
		}
	default:
		return 0, fmt.Errorf("時刻の形式が不正です: %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, fmt.Errorf("時刻の範囲が不正です: %q", s)
	}
	return TimeOfDay(h*3600 + m*60 + sec), nil
}

// TimeOfDayFrom は時刻から日付成分を捨ててTimeOfDayを生成する。
func TimeOfDayFrom(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

// String は"15:04:05"形式の文字列を返す。
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", int(t)/3600, int(t)/60%60, int(t)%60)
}

// MarshalJSON は"15:04:05"形式のJSON文字列として出力する。
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON は"15:04"または"15:04:05"形式のJSON文字列を受け付ける。
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("時刻はJSON文字列で指定してください: %s", data)
	}
	parsed, err := ParseTimeOfDay(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value はdriver.Valuerを実装し、TIME型カラムへの書き込みに使う。
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

// Scan はsql.Scannerを実装する。
// lib/pqはTIME型を文字列として返すため、文字列・バイト列・time.Timeを受け付ける。
func (t *TimeOfDay) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseTimeOfDay(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case []byte:
		parsed, err := ParseTimeOfDay(string(v))
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case time.Time:
		*t = TimeOfDayFrom(v)
		return nil
	default:
		return fmt.Errorf("TimeOfDayに変換できない型です: %T", src)
	}
}
