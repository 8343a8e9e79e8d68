package domain

// NotificationStyle is the user's preferred alert presentation.
type NotificationStyle string

const (
	StyleStandard NotificationStyle = "standard"
	StyleAlarm    NotificationStyle = "alarm"
	StyleCall     NotificationStyle = "call"
)

// NotificationType is the presentation of an in-flight alert.
type NotificationType string

const (
	NotificationAlarm NotificationType = "alarm"
	NotificationCall  NotificationType = "call"
)

// NotificationSource identifies what armed the countdown behind an alert.
type NotificationSource string

const (
	SourceTask     NotificationSource = "task"
	SourceReminder NotificationSource = "reminder"
)

// View is the top-level navigation cursor.
type View string

const (
	ViewDashboard View = "dashboard"
	ViewBinders   View = "binders"
	ViewShop      View = "shop"
	ViewSettings  View = "settings"
)

// ActiveNotification is the single in-flight alert raised when a task or
// reminder countdown reaches zero. At most one exists at a time; dismissal
// clears the originating task's countdown or reminder's active flag.
type ActiveNotification struct {
	Type     NotificationType `json:"type" yaml:"type"`
	BinderID string           `json:"binderId" yaml:"binder_id"`
	PageID   string           `json:"pageId" yaml:"page_id"`

	// SourceID is the page id for a reminder, or the task id for a task.
	SourceID   string             `json:"sourceId" yaml:"source_id"`
	SourceType NotificationSource `json:"sourceType" yaml:"source_type"`

	Title string `json:"title" yaml:"title"`
}
