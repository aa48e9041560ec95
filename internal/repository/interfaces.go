// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/dailycheck/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	// メールアドレスの一意制約違反はEMAIL_TAKENエラーとして返す。
	Create(ctx context.Context, user *model.User) error
}

// PlanRepository は打刻計画データの永続化インターフェース。
// 計画は常に時間帯込みで取得される。
type PlanRepository interface {
	// FindByIDForUser は指定IDの計画を所有者チェック付きで取得する。
	// 見つからない・削除済み・所有者が異なる場合はいずれもnilを返す
	// （存在と権限エラーを区別しない）。
	FindByIDForUser(ctx context.Context, id, userID string) (*model.Plan, error)

	// ListByUserID はユーザーの未削除の計画一覧を開始日昇順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Plan, error)

	// Create は計画と時間帯を同一トランザクションで作成する。
	Create(ctx context.Context, plan *model.Plan) error

	// UpdateWithSlots は計画本体の更新・時間帯のupsert・時間帯の無効化を
	// 同一トランザクションで行う。時間帯は物理削除しない（打刻の参照を保つ）。
	UpdateWithSlots(ctx context.Context, plan *model.Plan, slots []model.TimeSlot, deactivateIDs []string) error

	// SoftDelete は計画を論理削除する。打刻記録には伝播しない。
	SoftDelete(ctx context.Context, id string) error
}

// CheckinRepository は打刻記録の永続化インターフェース。
type CheckinRepository interface {
	// FindActive は(計画, 日付, 時間帯)の未削除打刻を取得する。見つからない場合はnilを返す。
	// 重複チェックの楽観的な事前確認に使う。安全機構の本体はCreate側の一意制約。
	FindActive(ctx context.Context, planID string, date time.Time, slot model.SlotRef) (*model.Checkin, error)

	// Create は打刻記録を作成する。
	// (plan_id, check_date, time_slot_id)の一意制約違反はDUPLICATE_CHECKINエラーとして返す。
	Create(ctx context.Context, checkin *model.Checkin) error

	// ListByPlanAndRange は計画の[from, to]（両端含む）の未削除打刻を日付昇順で返す。
	ListByPlanAndRange(ctx context.Context, planID string, from, to time.Time) ([]*model.Checkin, error)

	// ListByPlanAndDate は計画の指定日の未削除打刻を返す。
	ListByPlanAndDate(ctx context.Context, planID string, date time.Time) ([]*model.Checkin, error)
}
