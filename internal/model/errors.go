// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, plan, checkin, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodePlanNotFound       = "PLAN_NOT_FOUND"
	ErrCodePlanNotStarted     = "PLAN_NOT_STARTED"
	ErrCodeInvalidSlot        = "INVALID_SLOT"
	ErrCodeOutOfWindow        = "OUT_OF_WINDOW"
	ErrCodeWrongPath          = "WRONG_PATH"
	ErrCodeFutureDate         = "FUTURE_DATE"
	ErrCodeDuplicateCheckin   = "DUPLICATE_CHECKIN"
	ErrCodeInvalidImageCount  = "INVALID_IMAGE_COUNT"
	ErrCodeInvalidWindow      = "INVALID_WINDOW"
	ErrCodeOverlappingWindows = "OVERLAPPING_WINDOWS"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
)

// NewPlanNotFoundError は計画未検出エラーを生成する。
// 存在しない計画と他ユーザーの計画を区別しない（存在推測の防止）。
func NewPlanNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodePlanNotFound,
		Message:  "指定された打刻計画が見つかりません。",
		Category: "plan",
		Action:   "計画IDを確認してください。",
	}
}

// NewPlanNotStartedError は計画開始前エラーを生成する。
func NewPlanNotStartedError() *APIError {
	return &APIError{
		Code:     ErrCodePlanNotStarted,
		Message:  "対象日は計画の開始日より前です。",
		Category: "checkin",
		Action:   "計画の開始日以降の日付を指定してください。",
	}
}

// NewInvalidSlotError は時間帯指定が不正な場合のエラーを生成する。
func NewInvalidSlotError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidSlot,
		Message:  fmt.Sprintf("時間帯の指定が不正です: %s", reason),
		Category: "checkin",
		Action:   "計画に設定されている有効な時間帯を指定してください。",
	}
}

// NewOutOfWindowError は時間帯の範囲外での当日打刻エラーを生成する。
func NewOutOfWindowError(slotName string) *APIError {
	return &APIError{
		Code:     ErrCodeOutOfWindow,
		Message:  fmt.Sprintf("現在時刻は時間帯 %s の範囲外です。", slotName),
		Category: "checkin",
		Action:   "時間帯の範囲内に打刻するか、終了後に補打刻を利用してください。",
	}
}

// NewWrongPathError は当日分を補打刻しようとした場合のエラーを生成する。
// 対象の時間帯（またはその日）がまだ終了していない間は当日打刻を使う必要がある。
func NewWrongPathError() *APIError {
	return &APIError{
		Code:     ErrCodeWrongPath,
		Message:  "対象の打刻時間はまだ終了していません。",
		Category: "checkin",
		Action:   "当日打刻を利用してください。",
	}
}

// NewFutureDateError は未来日付への補打刻エラーを生成する。
func NewFutureDateError() *APIError {
	return &APIError{
		Code:     ErrCodeFutureDate,
		Message:  "未来の日付には補打刻できません。",
		Category: "checkin",
		Action:   "本日以前の日付を指定してください。",
	}
}

// NewDuplicateCheckinError は重複打刻エラーを生成する。
func NewDuplicateCheckinError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateCheckin,
		Message:  "この計画・日付・時間帯にはすでに打刻されています。",
		Category: "checkin",
		Action:   "打刻カレンダーで記録を確認してください。",
	}
}

// NewInvalidImageCountError は画像枚数が範囲外の場合のエラーを生成する。
func NewInvalidImageCountError(count int) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidImageCount,
		Message:  fmt.Sprintf("画像は1〜3枚で指定してください（指定: %d枚）。", count),
		Category: "validation",
		Action:   "画像URLを1枚以上3枚以下で添付してください。",
	}
}

// NewInvalidWindowError は開始・終了が逆転した時間帯のエラーを生成する。
func NewInvalidWindowError(slotName string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidWindow,
		Message:  fmt.Sprintf("時間帯 %s は開始時刻が終了時刻以降になっています。", slotName),
		Category: "validation",
		Action:   "開始時刻が終了時刻より前になるように設定してください。",
	}
}

// NewOverlappingWindowsError は時間帯同士が重なっている場合のエラーを生成する。
func NewOverlappingWindowsError(a, b string) *APIError {
	return &APIError{
		Code:     ErrCodeOverlappingWindows,
		Message:  fmt.Sprintf("時間帯 %s と %s が重なっています。", a, b),
		Category: "validation",
		Action:   "時間帯同士が重ならないように設定を見直してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewEmailTakenError はメールアドレスが登録済みの場合のエラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "このメールアドレスはすでに登録されています。",
		Category: "auth",
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewInvalidCredentialsError は認証情報が一致しない場合のエラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}
