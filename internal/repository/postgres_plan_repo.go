package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/hitoshi/dailycheck/internal/model"
)

// PostgresPlanRepo はPostgreSQLを使用した打刻計画リポジトリ。
type PostgresPlanRepo struct {
	db *sql.DB
}

// NewPostgresPlanRepo はPostgresPlanRepoを生成する。
func NewPostgresPlanRepo(db *sql.DB) *PostgresPlanRepo {
	return &PostgresPlanRepo{db: db}
}

const planColumns = `id, user_id, title, description, start_date, end_date,
	is_active, is_deleted, deleted_at, checkin_mode, created_at, updated_at`

// scanPlan は1行分の計画を読み取る。
func scanPlan(row interface{ Scan(...any) error }) (*model.Plan, error) {
	plan := &model.Plan{}
	var endDate sql.NullTime
	err := row.Scan(
		&plan.ID, &plan.UserID, &plan.Title, &plan.Description,
		&plan.StartDate, &endDate,
		&plan.IsActive, &plan.IsDeleted, &plan.DeletedAt, &plan.Mode,
		&plan.CreatedAt, &plan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	plan.StartDate = model.DateOf(plan.StartDate)
	if endDate.Valid {
		d := model.DateOf(endDate.Time)
		plan.EndDate = &d
	}
	return plan, nil
}

// FindByIDForUser は指定IDの計画を所有者チェック付きで時間帯込みで取得する。
// 見つからない・削除済み・所有者が異なる場合はいずれもnilを返す。
func (r *PostgresPlanRepo) FindByIDForUser(ctx context.Context, id, userID string) (*model.Plan, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+planColumns+` FROM checkin_plans
		 WHERE id = $1 AND user_id = $2 AND NOT is_deleted`,
		id, userID,
	)
	plan, err := scanPlan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("計画の取得に失敗しました: %w", err)
	}

	slots, err := r.loadSlots(ctx, []string{plan.ID})
	if err != nil {
		return nil, err
	}
	plan.TimeSlots = slots[plan.ID]
	return plan, nil
}

// ListByUserID はユーザーの未削除の計画一覧を時間帯込み・開始日昇順で返す。
func (r *PostgresPlanRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Plan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+planColumns+` FROM checkin_plans
		 WHERE user_id = $1 AND NOT is_deleted
		 ORDER BY start_date ASC, created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("計画一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var plans []*model.Plan
	var ids []string
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("計画行の読み取りに失敗しました: %w", err)
		}
		plans = append(plans, plan)
		ids = append(ids, plan.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("計画一覧の走査に失敗しました: %w", err)
	}

	if len(ids) > 0 {
		slots, err := r.loadSlots(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, plan := range plans {
			plan.TimeSlots = slots[plan.ID]
		}
	}

	return plans, nil
}

// loadSlots は複数計画の時間帯を一括取得し、計画IDごとにまとめて返す。
// 表示順（order_num、同順なら開始時刻）でソートする。
func (r *PostgresPlanRepo) loadSlots(ctx context.Context, planIDs []string) (map[string][]model.TimeSlot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, plan_id, slot_name, start_time, end_time, order_num, is_active, created_at, updated_at
		 FROM checkin_plan_time_slots
		 WHERE plan_id = ANY($1)
		 ORDER BY order_num ASC, start_time ASC`,
		pq.Array(planIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("時間帯の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]model.TimeSlot)
	for rows.Next() {
		var ts model.TimeSlot
		if err := rows.Scan(
			&ts.ID, &ts.PlanID, &ts.Name, &ts.StartTime, &ts.EndTime,
			&ts.OrderNum, &ts.IsActive, &ts.CreatedAt, &ts.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("時間帯行の読み取りに失敗しました: %w", err)
		}
		result[ts.PlanID] = append(result[ts.PlanID], ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("時間帯の走査に失敗しました: %w", err)
	}
	return result, nil
}

// Create は計画と時間帯を同一トランザクションで作成する。
func (r *PostgresPlanRepo) Create(ctx context.Context, plan *model.Plan) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO checkin_plans
		 (id, user_id, title, description, start_date, end_date, is_active, is_deleted, checkin_mode)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		plan.ID, plan.UserID, plan.Title, plan.Description,
		plan.StartDate, nullableDate(plan.EndDate),
		plan.IsActive, plan.IsDeleted, plan.Mode,
	)
	if err != nil {
		return fmt.Errorf("計画の作成に失敗しました: %w", err)
	}

	for _, ts := range plan.TimeSlots {
		if err := insertSlot(ctx, tx, ts); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("計画作成のコミットに失敗しました: %w", err)
	}
	return nil
}

// UpdateWithSlots は計画本体の更新・時間帯のupsert・時間帯の無効化を
// 同一トランザクションで行う。時間帯は物理削除せず無効化にとどめるため、
// 過去の打刻が参照する時間帯IDは常に解決できる。
func (r *PostgresPlanRepo) UpdateWithSlots(ctx context.Context, plan *model.Plan, slots []model.TimeSlot, deactivateIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE checkin_plans
		 SET title = $2, description = $3, start_date = $4, end_date = $5,
		     is_active = $6, checkin_mode = $7, updated_at = NOW()
		 WHERE id = $1 AND NOT is_deleted`,
		plan.ID, plan.Title, plan.Description, plan.StartDate, nullableDate(plan.EndDate),
		plan.IsActive, plan.Mode,
	)
	if err != nil {
		return fmt.Errorf("計画の更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("計画が見つかりません: %s", plan.ID)
	}

	for _, ts := range slots {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO checkin_plan_time_slots
			 (id, plan_id, slot_name, start_time, end_time, order_num, is_active)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (id) DO UPDATE
			 SET slot_name = EXCLUDED.slot_name,
			     start_time = EXCLUDED.start_time,
			     end_time = EXCLUDED.end_time,
			     order_num = EXCLUDED.order_num,
			     is_active = EXCLUDED.is_active,
			     updated_at = NOW()`,
			ts.ID, ts.PlanID, ts.Name, ts.StartTime, ts.EndTime,
			ts.OrderNum, ts.IsActive,
		)
		if err != nil {
			return fmt.Errorf("時間帯の保存に失敗しました: %w", err)
		}
	}

	if len(deactivateIDs) > 0 {
		_, err := tx.ExecContext(ctx,
			`UPDATE checkin_plan_time_slots
			 SET is_active = FALSE, updated_at = NOW()
			 WHERE plan_id = $1 AND id = ANY($2)`,
			plan.ID, pq.Array(deactivateIDs),
		)
		if err != nil {
			return fmt.Errorf("時間帯の無効化に失敗しました: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("計画更新のコミットに失敗しました: %w", err)
	}
	return nil
}

// SoftDelete は計画を論理削除する。打刻記録には伝播しない。
func (r *PostgresPlanRepo) SoftDelete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE checkin_plans
		 SET is_deleted = TRUE, deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND NOT is_deleted`,
		id,
	)
	if err != nil {
		return fmt.Errorf("計画の削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("計画が見つかりません: %s", id)
	}
	return nil
}

// insertSlot は時間帯1件をトランザクション内で挿入する。
func insertSlot(ctx context.Context, tx *sql.Tx, ts model.TimeSlot) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO checkin_plan_time_slots
		 (id, plan_id, slot_name, start_time, end_time, order_num, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ts.ID, ts.PlanID, ts.Name, ts.StartTime, ts.EndTime,
		ts.OrderNum, ts.IsActive,
	)
	if err != nil {
		return fmt.Errorf("時間帯の作成に失敗しました: %w", err)
	}
	return nil
}

// nullableDate は*time.TimeをNULL許容のDATE値に変換する。
func nullableDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// compile-time interface check
var _ PlanRepository = (*PostgresPlanRepo)(nil)
