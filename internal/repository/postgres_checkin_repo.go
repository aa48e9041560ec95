package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/dailycheck/internal/model"
)

// PostgresCheckinRepo は PostgreSQL による CheckinRepository 実装。
type PostgresCheckinRepo struct {
	db *sql.DB
}

// NewPostgresCheckinRepo は PostgresCheckinRepo を生成する。
func NewPostgresCheckinRepo(db *sql.DB) *PostgresCheckinRepo {
	return &PostgresCheckinRepo{db: db}
}

const checkinColumns = `id, plan_id, user_id, check_date, time_slot_id, images, note, status, is_deleted, deleted_at, created_at, updated_at`

// scanCheckin は 1 行を model.Checkin に読み込む。
func scanCheckin(row interface{ Scan(...any) error }) (*model.Checkin, error) {
	var c model.Checkin
	var slotID sql.NullString
	var imagesJSON []byte
	err := row.Scan(
		&c.ID, &c.PlanID, &c.UserID, &c.CheckDate, &slotID, &imagesJSON,
		&c.Note, &c.Status, &c.IsDeleted, &c.DeletedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if slotID.Valid {
		c.TimeSlot = model.SlotByID(slotID.String)
	} else {
		c.TimeSlot = model.NoSlot()
	}
	if len(imagesJSON) > 0 {
		if err := json.Unmarshal(imagesJSON, &c.Images); err != nil {
			return nil, fmt.Errorf("failed to decode images: %w", err)
		}
	}
	c.CheckDate = model.DateOf(c.CheckDate)
	return &c, nil
}

// FindActive は (計画, 日付, 枠) に一致する未削除の打刻を返す。
// 見つからない場合は nil を返す。
func (r *PostgresCheckinRepo) FindActive(ctx context.Context, planID string, date time.Time, slot model.SlotRef) (*model.Checkin, error) {
	query := `SELECT ` + checkinColumns + ` FROM checkins
		WHERE plan_id = $1 AND check_date = $2 AND NOT is_deleted`
	args := []any{planID, model.DateOf(date)}
	if slot.Valid {
		query += ` AND time_slot_id = $3`
		args = append(args, slot.ID)
	} else {
		query += ` AND time_slot_id IS NULL`
	}

	c, err := scanCheckin(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find checkin: %w", err)
	}
	return c, nil
}

// Create は打刻を登録する。一意制約違反は DUPLICATE_CHECKIN として返す。
func (r *PostgresCheckinRepo) Create(ctx context.Context, c *model.Checkin) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	imagesJSON, err := json.Marshal(c.Images)
	if err != nil {
		return fmt.Errorf("failed to encode images: %w", err)
	}
	var slotID any
	if c.TimeSlot.Valid {
		slotID = c.TimeSlot.ID
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO checkins (id, plan_id, user_id, check_date, time_slot_id, images, note, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.PlanID, c.UserID, model.DateOf(c.CheckDate), slotID, imagesJSON, c.Note, c.Status,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.NewDuplicateCheckinError()
		}
		return fmt.Errorf("failed to create checkin: %w", err)
	}
	return nil
}

// ListByPlanAndRange は計画の [from, to] 範囲内の未削除打刻を日付順に返す。
func (r *PostgresCheckinRepo) ListByPlanAndRange(ctx context.Context, planID string, from, to time.Time) ([]*model.Checkin, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+checkinColumns+` FROM checkins
		WHERE plan_id = $1 AND check_date >= $2 AND check_date <= $3 AND NOT is_deleted
		ORDER BY check_date, created_at`,
		planID, model.DateOf(from), model.DateOf(to),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkins: %w", err)
	}
	defer rows.Close()

	return collectCheckins(rows)
}

// ListByPlanAndDate は計画の指定日の未削除打刻を返す。
func (r *PostgresCheckinRepo) ListByPlanAndDate(ctx context.Context, planID string, date time.Time) ([]*model.Checkin, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+checkinColumns+` FROM checkins
		WHERE plan_id = $1 AND check_date = $2 AND NOT is_deleted
		ORDER BY created_at`,
		planID, model.DateOf(date),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkins: %w", err)
	}
	defer rows.Close()

	return collectCheckins(rows)
}

func collectCheckins(rows *sql.Rows) ([]*model.Checkin, error) {
	var checkins []*model.Checkin
	for rows.Next() {
		c, err := scanCheckin(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checkin: %w", err)
		}
		checkins = append(checkins, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate checkins: %w", err)
	}
	return checkins, nil
}

var _ CheckinRepository = (*PostgresCheckinRepo)(nil)
