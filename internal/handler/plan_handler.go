package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/dailycheck/internal/middleware"
	"github.com/hitoshi/dailycheck/internal/model"
	"github.com/hitoshi/dailycheck/internal/plan"
)

// PlanServiceInterface は計画ハンドラーが必要とするサービスインターフェース。
type PlanServiceInterface interface {
	List(ctx context.Context, userID string) ([]*model.Plan, error)
	Get(ctx context.Context, userID, planID string) (*model.Plan, error)
	Create(ctx context.Context, userID string, input plan.CreateInput) (*model.Plan, error)
	Update(ctx context.Context, userID, planID string, input plan.UpdateInput) (*model.Plan, error)
	SoftDelete(ctx context.Context, userID, planID string) error
}

// PlanHandler は打刻計画管理のHTTPハンドラー。
type PlanHandler struct {
	service PlanServiceInterface
}

// NewPlanHandler はPlanHandlerを生成する。
func NewPlanHandler(service PlanServiceInterface) *PlanHandler {
	return &PlanHandler{service: service}
}

// slotRequest は時間帯枠のリクエスト表現。
type slotRequest struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name"`
	StartTime model.TimeOfDay `json:"start_time"`
	EndTime   model.TimeOfDay `json:"end_time"`
	OrderNum  int             `json:"order_num"`
	IsActive  *bool           `json:"is_active,omitempty"`
}

// createPlanRequest は計画作成リクエストのボディ。
type createPlanRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	StartDate   string        `json:"start_date"`
	EndDate     *string       `json:"end_date,omitempty"`
	Slots       []slotRequest `json:"slots,omitempty"`
}

// updatePlanRequest は計画更新リクエストのボディ。
// slotsフィールドが省略された場合は既存の枠を変更しない。
type updatePlanRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	StartDate   string         `json:"start_date"`
	EndDate     *string        `json:"end_date,omitempty"`
	IsActive    *bool          `json:"is_active,omitempty"`
	Slots       *[]slotRequest `json:"slots,omitempty"`
}

// slotResponse は時間帯枠のAPIレスポンス。
type slotResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	StartTime model.TimeOfDay `json:"start_time"`
	EndTime   model.TimeOfDay `json:"end_time"`
	OrderNum  int             `json:"order_num"`
	IsActive  bool            `json:"is_active"`
}

// planResponse は計画のAPIレスポンス。
type planResponse struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	StartDate   string         `json:"start_date"`
	EndDate     *string        `json:"end_date,omitempty"`
	IsActive    bool           `json:"is_active"`
	Mode        model.PlanMode `json:"mode"`
	Slots       []slotResponse `json:"slots"`
}

func toPlanResponse(p *model.Plan) planResponse {
	resp := planResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		StartDate:   p.StartDate.Format(model.DateFormat),
		IsActive:    p.IsActive,
		Mode:        p.Mode,
		Slots:       make([]slotResponse, 0, len(p.TimeSlots)),
	}
	if p.EndDate != nil {
		s := p.EndDate.Format(model.DateFormat)
		resp.EndDate = &s
	}
	for _, slot := range p.TimeSlots {
		resp.Slots = append(resp.Slots, slotResponse{
			ID:        slot.ID,
			Name:      slot.Name,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
			OrderNum:  slot.OrderNum,
			IsActive:  slot.IsActive,
		})
	}
	return resp
}

// List は計画一覧を返す。
// GET /api/plans
func (h *PlanHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	plans, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]planResponse, 0, len(plans))
	for _, p := range plans {
		resp = append(resp, toPlanResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get は計画詳細を返す。
// GET /api/plans/{id}
func (h *PlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	p, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlanResponse(p))
}

// Create は計画作成を処理する。
// POST /api/plans
func (h *PlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req createPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeTitleRequired(w)
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		writeInvalidDate(w, "start_date")
		return
	}
	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		writeInvalidDate(w, "end_date")
		return
	}

	input := plan.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   startDate,
		EndDate:     endDate,
		Slots:       toSlotInputs(req.Slots),
	}

	p, err := h.service.Create(r.Context(), userID, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPlanResponse(p))
}

// Update は計画更新を処理する。
// PATCH /api/plans/{id}
func (h *PlanHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req updatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeTitleRequired(w)
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		writeInvalidDate(w, "start_date")
		return
	}
	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		writeInvalidDate(w, "end_date")
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	input := plan.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   startDate,
		EndDate:     endDate,
		IsActive:    isActive,
	}
	if req.Slots != nil {
		slots := toSlotInputs(*req.Slots)
		input.Slots = &slots
	}

	p, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), input)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlanResponse(p))
}

// Delete は計画の論理削除を処理する。
// DELETE /api/plans/{id}
func (h *PlanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	if err := h.service.SoftDelete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toSlotInputs(reqs []slotRequest) []plan.SlotInput {
	inputs := make([]plan.SlotInput, 0, len(reqs))
	for _, s := range reqs {
		active := true
		if s.IsActive != nil {
			active = *s.IsActive
		}
		inputs = append(inputs, plan.SlotInput{
			ID:        s.ID,
			Name:      s.Name,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			OrderNum:  s.OrderNum,
			IsActive:  active,
		})
	}
	return inputs
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(model.DateFormat, s, time.UTC)
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := parseDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func writeTitleRequired(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "タイトルは必須です。",
		Category: "validation",
		Action:   "タイトルを入力してください。",
	})
}

func writeInvalidDate(w http.ResponseWriter, field string) {
	writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  field + " の日付形式が不正です。",
		Category: "validation",
		Action:   "YYYY-MM-DD形式で指定してください。",
	})
}
