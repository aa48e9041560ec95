package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/dailycheck/internal/checkin"
	"github.com/hitoshi/dailycheck/internal/metrics"
	"github.com/hitoshi/dailycheck/internal/middleware"
	"github.com/hitoshi/dailycheck/internal/model"
)

// CheckinServiceInterface は打刻ハンドラーが必要とするサービスインターフェース。
type CheckinServiceInterface interface {
	// RecordLive は当日の打刻を登録する。
	RecordLive(ctx context.Context, userID, planID string, slot model.SlotRef, images []string, note string) (*model.Checkin, error)
	// RecordRetro は過去日の打刻を登録する。
	RecordRetro(ctx context.Context, userID, planID string, date time.Time, slot model.SlotRef, images []string, note string) (*model.Checkin, error)
	// GetMonthStatus は指定月のカレンダーを返す。
	GetMonthStatus(ctx context.Context, userID, planID string, year, month int) (*checkin.MonthStatus, error)
	// GetDayDetail は指定日の打刻一覧を返す。
	GetDayDetail(ctx context.Context, userID, planID string, date time.Time) ([]*model.Checkin, error)
}

// CheckinHandler は打刻のHTTPハンドラー。
type CheckinHandler struct {
	service   CheckinServiceInterface
	collector metrics.MetricsCollector
}

// NewCheckinHandler はCheckinHandlerを生成する。
func NewCheckinHandler(service CheckinServiceInterface, collector metrics.MetricsCollector) *CheckinHandler {
	return &CheckinHandler{
		service:   service,
		collector: collector,
	}
}

// liveCheckinRequest は当日打刻リクエストのボディ。
type liveCheckinRequest struct {
	PlanID string   `json:"plan_id"`
	SlotID *string  `json:"slot_id,omitempty"`
	Images []string `json:"images"`
	Note   string   `json:"note"`
}

// retroCheckinRequest は補打刻リクエストのボディ。
type retroCheckinRequest struct {
	PlanID string   `json:"plan_id"`
	Date   string   `json:"date"`
	SlotID *string  `json:"slot_id,omitempty"`
	Images []string `json:"images"`
	Note   string   `json:"note"`
}

// checkinResponse は打刻記録のAPIレスポンス。
type checkinResponse struct {
	ID        string   `json:"id"`
	PlanID    string   `json:"plan_id"`
	CheckDate string   `json:"check_date"`
	SlotID    *string  `json:"slot_id,omitempty"`
	Images    []string `json:"images"`
	Note      string   `json:"note"`
	Status    int      `json:"status"`
}

func toCheckinResponse(c *model.Checkin) checkinResponse {
	resp := checkinResponse{
		ID:        c.ID,
		PlanID:    c.PlanID,
		CheckDate: c.CheckDate.Format(model.DateFormat),
		Images:    c.Images,
		Note:      c.Note,
		Status:    int(c.Status),
	}
	if c.TimeSlot.Valid {
		id := c.TimeSlot.ID
		resp.SlotID = &id
	}
	return resp
}

func toSlotRef(slotID *string) model.SlotRef {
	if slotID == nil || *slotID == "" {
		return model.NoSlot()
	}
	return model.SlotByID(*slotID)
}

// RecordLive は当日打刻を処理する。
// POST /api/checkins/daily
func (h *CheckinHandler) RecordLive(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req liveCheckinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	c, err := h.service.RecordLive(r.Context(), userID, req.PlanID, toSlotRef(req.SlotID), req.Images, req.Note)
	if err != nil {
		h.recordRejection("live", err)
		handleServiceError(w, err)
		return
	}

	h.collector.RecordCheckin("live", "success")
	writeJSON(w, http.StatusCreated, toCheckinResponse(c))
}

// RecordRetro は補打刻を処理する。
// POST /api/checkins/retro
func (h *CheckinHandler) RecordRetro(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req retroCheckinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeInvalidDate(w, "date")
		return
	}

	c, err := h.service.RecordRetro(r.Context(), userID, req.PlanID, date, toSlotRef(req.SlotID), req.Images, req.Note)
	if err != nil {
		h.recordRejection("retro", err)
		handleServiceError(w, err)
		return
	}

	h.collector.RecordCheckin("retro", "retro")
	writeJSON(w, http.StatusCreated, toCheckinResponse(c))
}

// GetMonthStatus は月間カレンダーを返す。
// GET /api/checkins/calendar?plan_id=&year=&month=
func (h *CheckinHandler) GetMonthStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	q := r.URL.Query()
	planID := q.Get("plan_id")
	year, yErr := strconv.Atoi(q.Get("year"))
	month, mErr := strconv.Atoi(q.Get("month"))
	if planID == "" || yErr != nil || mErr != nil || month < 1 || month > 12 {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "plan_id、year、monthの指定が不正です。",
			Category: "validation",
			Action:   "クエリパラメータを確認してください。",
		})
		return
	}

	status, err := h.service.GetMonthStatus(r.Context(), userID, planID, year, month)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// GetDayDetail は指定日の打刻一覧を返す。
// GET /api/checkins/detail?plan_id=&date=
func (h *CheckinHandler) GetDayDetail(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	q := r.URL.Query()
	planID := q.Get("plan_id")
	date, dErr := parseDate(q.Get("date"))
	if planID == "" || dErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "plan_idとdateの指定が不正です。",
			Category: "validation",
			Action:   "クエリパラメータを確認してください。",
		})
		return
	}

	checkins, err := h.service.GetDayDetail(r.Context(), userID, planID, date)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]checkinResponse, 0, len(checkins))
	for _, c := range checkins {
		resp = append(resp, toCheckinResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

// recordRejection は打刻拒否のメトリクスを記録する。
func (h *CheckinHandler) recordRejection(path string, err error) {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		return
	}
	h.collector.RecordCheckinRejected(path, apiErr.Code)
	if apiErr.Code == model.ErrCodeDuplicateCheckin {
		h.collector.RecordDuplicateConflict()
	}
}
