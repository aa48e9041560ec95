// Package model はドメインモデルを定義する。
package model

import "time"

// CheckinStatus は打刻記録の状態コードを表す。
type CheckinStatus int8

const (
	// CheckinStatusMissed は未打刻を表す。行としては保存されず、
	// カレンダー上のエントリ欠落から呼び出し側が導出する。
	CheckinStatusMissed CheckinStatus = 0
	// CheckinStatusSuccess は当日打刻を表す。
	CheckinStatusSuccess CheckinStatus = 1
	// CheckinStatusRetro は補打刻を表す。
	CheckinStatusRetro CheckinStatus = 2
)

// SlotRef は打刻が参照する時間帯の識別子を表す。
// 「時間帯なし」を明示的に表現するため、nullableなIDではなく
// Validフラグ付きの値型として扱う（sql.NullStringと同じ規約）。
type SlotRef struct {
	ID    string
	Valid bool
}

// NoSlot は時間帯を持たない参照を返す。
func NoSlot() SlotRef {
	return SlotRef{}
}

// SlotByID は指定IDの時間帯への参照を返す。
func SlotByID(id string) SlotRef {
	return SlotRef{ID: id, Valid: true}
}

// Equal は2つの参照が同じ時間帯（または双方とも時間帯なし）かを返す。
func (s SlotRef) Equal(other SlotRef) bool {
	if s.Valid != other.Valid {
		return false
	}
	return !s.Valid || s.ID == other.ID
}

// Checkin は1件の打刻記録を表す。
// 同一(計画, 日付, 時間帯)には未削除の行が高々1件しか存在しない。
// 生成後に更新されることはなく、削除はアカウント無効化の副作用のみ。
type Checkin struct {
	ID        string
	PlanID    string
	UserID    string
	CheckDate time.Time // 日付のみ
	TimeSlot  SlotRef
	Images    []string // 画像URL、1〜3枚
	Note      string
	Status    CheckinStatus
	IsDeleted bool
	DeletedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DateFormat は日付のみの値の文字列表現に使うレイアウト。
const DateFormat = "2006-01-02"

// DateOf は時刻から日付成分のみを取り出す（UTC・0時0分0秒に正規化）。
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
