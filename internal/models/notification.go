package models

// NoticeLevel classifies a user-facing notice.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// AlertType represents different types of alerts
type AlertType string

const (
	AlertTypeLowStock     AlertType = "low_stock"
	AlertTypeOutOfStock   AlertType = "out_of_stock"
	AlertTypeAccessDenied AlertType = "access_denied"
)

// Notice is a transient message for the operator, the server-side form of a toast.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Type    AlertType   `json:"type,omitempty"`
	Message string      `json:"message"`
}
