package state

import "github.com/binderhq/binderd/internal/domain"

// ActionType discriminates transitions. Values are stable strings because
// actions are journaled and replayed across process restarts.
type ActionType string

const (
	ActionAuthenticate     ActionType = "authenticate"
	ActionLogout           ActionType = "logout"
	ActionUpdateCredential ActionType = "update_credential"

	ActionSetView      ActionType = "set_view"
	ActionSelectBinder ActionType = "select_binder"
	ActionSelectPage   ActionType = "select_page"

	ActionAddBinder    ActionType = "add_binder"
	ActionUpdateBinder ActionType = "update_binder"
	ActionDeleteBinder ActionType = "delete_binder"
	ActionAssignBinder ActionType = "assign_binder"

	ActionAddPage    ActionType = "add_page"
	ActionUpdatePage ActionType = "update_page"
	ActionDeletePage ActionType = "delete_page"

	ActionUpdateTask     ActionType = "update_task"
	ActionDeleteTask     ActionType = "delete_task"
	ActionStartTaskTimer ActionType = "start_task_timer"
	ActionStartReminder  ActionType = "start_reminder"

	ActionPurchaseBundle ActionType = "purchase_bundle"
	ActionAddBundle      ActionType = "add_bundle"

	ActionSetNotificationStyle ActionType = "set_notification_style"
	ActionSetPushSubscription  ActionType = "set_push_subscription"
	ActionTriggerNotification  ActionType = "trigger_notification"
	ActionDismissNotification  ActionType = "dismiss_notification"

	ActionSetSimulatedRole ActionType = "set_simulated_role"

	ActionCreateCorporateUser ActionType = "create_corporate_user"
	ActionDeleteUser          ActionType = "delete_user"

	ActionUpgradeSubscription ActionType = "upgrade_subscription"
	ActionUpdatePlan          ActionType = "update_plan"

	ActionSetDirectory ActionType = "set_directory"
	ActionSetPlans     ActionType = "set_plans"
)

// Action carries one transition request through the dispatcher. It is a
// closed union: Type selects the transition and the payload fields it reads;
// unrelated fields stay zero. The whole struct serializes to JSON for the
// action journal, which is why payloads are data, not callbacks.
//
// Seq and Time are stamped by the dispatcher: Seq from the logical clock,
// Time as wall-clock unix milliseconds. The reducer's only notion of "now"
// is Time, so replaying the journal reproduces every time-guarded decision.
type Action struct {
	Type ActionType `json:"type" yaml:"action"`
	Seq  int64      `json:"seq,omitempty" yaml:"-"`
	Time int64      `json:"time,omitempty" yaml:"time,omitempty"`

	User         *domain.User    `json:"user,omitempty" yaml:"user,omitempty"`
	Binders      []domain.Binder `json:"binders,omitempty" yaml:"binders,omitempty"`
	Directory    []domain.User   `json:"directory,omitempty" yaml:"directory,omitempty"`
	AdminBinders []domain.Binder `json:"adminBinders,omitempty" yaml:"admin_binders,omitempty"`

	Binder *domain.Binder `json:"binder,omitempty" yaml:"binder,omitempty"`
	Page   *domain.Page   `json:"page,omitempty" yaml:"page,omitempty"`
	Task   *domain.Task   `json:"task,omitempty" yaml:"task,omitempty"`
	Bundle *domain.Bundle `json:"bundle,omitempty" yaml:"bundle,omitempty"`

	Plan  *domain.SubscriptionPlan  `json:"plan,omitempty" yaml:"plan,omitempty"`
	Plans []domain.SubscriptionPlan `json:"plans,omitempty" yaml:"plans,omitempty"`

	Notification *domain.ActiveNotification `json:"notification,omitempty" yaml:"notification,omitempty"`

	BinderID string   `json:"binderId,omitempty" yaml:"binder_id,omitempty"`
	PageID   string   `json:"pageId,omitempty" yaml:"page_id,omitempty"`
	TaskID   string   `json:"taskId,omitempty" yaml:"task_id,omitempty"`
	BundleID string   `json:"bundleId,omitempty" yaml:"bundle_id,omitempty"`
	UserID   string   `json:"userId,omitempty" yaml:"user_id,omitempty"`
	UserIDs  []string `json:"userIds,omitempty" yaml:"user_ids,omitempty"`

	Role       domain.UserRole          `json:"role,omitempty" yaml:"role,omitempty"`
	View       domain.View              `json:"view,omitempty" yaml:"view,omitempty"`
	Style      domain.NotificationStyle `json:"style,omitempty" yaml:"style,omitempty"`
	Credential string                   `json:"credential,omitempty" yaml:"credential,omitempty"`
	Handle     string                   `json:"handle,omitempty" yaml:"handle,omitempty"`
}

// Authenticate installs user and binders as the current identity. Directory
// is the fresh account directory; adminBinders is the matching corporate
// admin's collection when user is a corporate user (nil otherwise). Both are
// loaded by the login glue so the reducer never touches storage.
func Authenticate(user domain.User, binders []domain.Binder, directory []domain.User, adminBinders []domain.Binder) Action {
	return Action{
		Type:         ActionAuthenticate,
		User:         &user,
		Binders:      binders,
		Directory:    directory,
		AdminBinders: adminBinders,
	}
}

// Logout clears the session and returns to the unauthenticated state.
func Logout() Action { return Action{Type: ActionLogout} }

// UpdateCredential replaces the current user's credential hash.
func UpdateCredential(hash string) Action {
	return Action{Type: ActionUpdateCredential, Credential: hash}
}

// SetView moves the navigation cursor.
func SetView(v domain.View) Action { return Action{Type: ActionSetView, View: v} }

// SelectBinder moves the binder cursor; the page cursor follows to the
// binder's first page.
func SelectBinder(binderID string) Action {
	return Action{Type: ActionSelectBinder, BinderID: binderID}
}

// SelectPage moves both cursors explicitly.
func SelectPage(binderID, pageID string) Action {
	return Action{Type: ActionSelectPage, BinderID: binderID, PageID: pageID}
}

// AddBinder appends a new binder to the visible collection and persists it
// to its owner's stored collection.
func AddBinder(b domain.Binder) Action { return Action{Type: ActionAddBinder, Binder: &b} }

// UpdateBinder upserts a binder by id and re-syncs its shop bundle.
func UpdateBinder(b domain.Binder) Action { return Action{Type: ActionUpdateBinder, Binder: &b} }

// DeleteBinder removes a binder and, when it publishes a bundle, the
// bundle's catalog entry.
func DeleteBinder(binderID string) Action {
	return Action{Type: ActionDeleteBinder, BinderID: binderID}
}

// AssignBinder replaces a binder's assigned-user set (full replacement).
func AssignBinder(binderID string, userIDs []string) Action {
	return Action{Type: ActionAssignBinder, BinderID: binderID, UserIDs: userIDs}
}

// AddPage appends a page to a binder and selects it.
func AddPage(binderID string, p domain.Page) Action {
	return Action{Type: ActionAddPage, BinderID: binderID, Page: &p}
}

// UpdatePage replaces a page by id within its binder.
func UpdatePage(binderID string, p domain.Page) Action {
	return Action{Type: ActionUpdatePage, BinderID: binderID, Page: &p}
}

// DeletePage removes a page and recomputes the page cursor.
func DeletePage(binderID, pageID string) Action {
	return Action{Type: ActionDeletePage, BinderID: binderID, PageID: pageID}
}

// UpdateTask upserts a task by id within a page.
func UpdateTask(binderID, pageID string, t domain.Task) Action {
	return Action{Type: ActionUpdateTask, BinderID: binderID, PageID: pageID, Task: &t}
}

// DeleteTask removes a task. Rejected while the task's countdown is live.
func DeleteTask(binderID, pageID, taskID string) Action {
	return Action{Type: ActionDeleteTask, BinderID: binderID, PageID: pageID, TaskID: taskID}
}

// StartTaskTimer arms a task countdown at the action's stamped time.
func StartTaskTimer(binderID, pageID, taskID string) Action {
	return Action{Type: ActionStartTaskTimer, BinderID: binderID, PageID: pageID, TaskID: taskID}
}

// StartReminder arms a page's reminder at the action's stamped time.
func StartReminder(binderID, pageID string) Action {
	return Action{Type: ActionStartReminder, BinderID: binderID, PageID: pageID}
}

// PurchaseBundle records a successful shop purchase (idempotent).
func PurchaseBundle(bundleID string) Action {
	return Action{Type: ActionPurchaseBundle, BundleID: bundleID}
}

// AddBundle inserts-or-replaces a catalog entry by id.
func AddBundle(b domain.Bundle) Action { return Action{Type: ActionAddBundle, Bundle: &b} }

// SetNotificationStyle sets the alert presentation preference.
func SetNotificationStyle(s domain.NotificationStyle) Action {
	return Action{Type: ActionSetNotificationStyle, Style: s}
}

// SetPushSubscription stores the opaque push delivery handle.
func SetPushSubscription(handle string) Action {
	return Action{Type: ActionSetPushSubscription, Handle: handle}
}

// TriggerNotification raises an alert; dropped while one is already live.
func TriggerNotification(n domain.ActiveNotification) Action {
	return Action{Type: ActionTriggerNotification, Notification: &n}
}

// DismissNotification clears the live alert and disarms its source.
func DismissNotification() Action { return Action{Type: ActionDismissNotification} }

// SetSimulatedRole enters, switches or exits the owner's simulation
// sandbox. An empty role exits.
func SetSimulatedRole(role domain.UserRole) Action {
	return Action{Type: ActionSetSimulatedRole, Role: role}
}

// CreateCorporateUser appends a corporate user under the acting admin's
// corporate group. The caller mints the id; the reducer resolves the group
// and enforces uniqueness of the email.
func CreateCorporateUser(u domain.User) Action {
	return Action{Type: ActionCreateCorporateUser, User: &u}
}

// DeleteUser removes a corporate user belonging to the acting admin.
func DeleteUser(userID string) Action { return Action{Type: ActionDeleteUser, UserID: userID} }

// UpgradeSubscription switches the current user's role to a plan's tier.
func UpgradeSubscription(role domain.UserRole) Action {
	return Action{Type: ActionUpgradeSubscription, Role: role}
}

// UpdatePlan replaces a subscription plan by id (owner edit).
func UpdatePlan(p domain.SubscriptionPlan) Action {
	return Action{Type: ActionUpdatePlan, Plan: &p}
}

// SetDirectory installs the account directory (bootstrap).
func SetDirectory(users []domain.User) Action {
	return Action{Type: ActionSetDirectory, Directory: users}
}

// SetPlans installs the subscription plan catalog (bootstrap).
func SetPlans(plans []domain.SubscriptionPlan) Action {
	return Action{Type: ActionSetPlans, Plans: plans}
}
