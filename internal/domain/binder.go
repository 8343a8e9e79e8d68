package domain

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	TaskIncomplete TaskStatus = "incomplete"
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// ReminderFrequency is the repeat cadence of a page reminder.
type ReminderFrequency string

const (
	FrequencyNone      ReminderFrequency = "none"
	FrequencyOneTime   ReminderFrequency = "one_time"
	FrequencyHourly    ReminderFrequency = "hourly"
	FrequencyDaily     ReminderFrequency = "daily"
	FrequencyWeekly    ReminderFrequency = "weekly"
	FrequencyMonthly   ReminderFrequency = "monthly"
	FrequencyQuarterly ReminderFrequency = "quarterly"
	FrequencyYearly    ReminderFrequency = "yearly"
)

// FileCategory classifies an attached file for presentation purposes.
type FileCategory string

const (
	FileVideo    FileCategory = "video"
	FileAudio    FileCategory = "audio"
	FileImage    FileCategory = "image"
	FileDocument FileCategory = "document"
	FileOther    FileCategory = "other"
)

// Task is a checklist item on a page. A task with StartedAt set and DueAt in
// the future has a live countdown and cannot be deleted until it expires.
type Task struct {
	ID     string     `json:"id" yaml:"id"`
	Text   string     `json:"text" yaml:"text"`
	Status TaskStatus `json:"status" yaml:"status"`

	// DueAt is the countdown target in unix milliseconds; zero means the
	// task has no deadline.
	DueAt int64 `json:"dueAt,omitempty" yaml:"due_at,omitempty"`

	// StartedAt records when the countdown was armed, unix milliseconds.
	// Zero means no countdown is running.
	StartedAt int64 `json:"startedAt,omitempty" yaml:"started_at,omitempty"`
}

// CountdownLive reports whether the task's countdown is armed and not yet
// expired at the given instant (unix milliseconds).
func (t Task) CountdownLive(now int64) bool {
	return t.StartedAt > 0 && t.DueAt > now
}

// Reminder is the single per-page reminder. The zero value is a blank,
// inactive reminder with FrequencyNone semantics.
type Reminder struct {
	Title     string            `json:"title" yaml:"title"`
	Frequency ReminderFrequency `json:"frequency" yaml:"frequency"`

	// At is the scheduled fire time in unix milliseconds; zero means
	// unscheduled.
	At int64 `json:"at,omitempty" yaml:"at,omitempty"`

	IsActive bool `json:"isActive" yaml:"is_active"`

	// StartedAt records when the reminder was armed, unix milliseconds.
	StartedAt int64 `json:"startedAt,omitempty" yaml:"started_at,omitempty"`
}

// Live reports whether the reminder is armed and not yet expired at the
// given instant.
func (r Reminder) Live(now int64) bool {
	return r.IsActive && r.At > now
}

// FileRef is metadata for a file attached to a page. The bytes themselves
// live outside the model.
type FileRef struct {
	ID        string       `json:"id" yaml:"id"`
	Name      string       `json:"name" yaml:"name"`
	MimeType  string       `json:"mimeType" yaml:"mime_type"`
	Size      int64        `json:"size" yaml:"size"`
	CreatedAt int64        `json:"createdAt" yaml:"created_at"`
	URL       string       `json:"url" yaml:"url"`
	Category  FileCategory `json:"category" yaml:"category"`
}

// Page is a unit of content within a binder: free-text notes, an ordered
// task list, attached files, and exactly one reminder.
type Page struct {
	ID       string    `json:"id" yaml:"id"`
	Title    string    `json:"title" yaml:"title"`
	Notes    string    `json:"notes" yaml:"notes"`
	Files    []FileRef `json:"files" yaml:"files"`
	Tasks    []Task    `json:"tasks" yaml:"tasks"`
	Reminder Reminder  `json:"reminder" yaml:"reminder"`
}

// Clone returns a deep copy of the page.
func (p Page) Clone() Page {
	out := p
	if p.Files != nil {
		out.Files = make([]FileRef, len(p.Files))
		copy(out.Files, p.Files)
	}
	if p.Tasks != nil {
		out.Tasks = make([]Task, len(p.Tasks))
		copy(out.Tasks, p.Tasks)
	}
	return out
}

// FindTask returns the task with the given id, or nil.
func (p *Page) FindTask(id string) *Task {
	for i := range p.Tasks {
		if p.Tasks[i].ID == id {
			return &p.Tasks[i]
		}
	}
	return nil
}

// Binder is the top-level content container: an owned, ordered collection of
// pages, optionally mirrored into the shop catalog as a bundle.
//
// INVARIANT: IsPublished implies a non-empty BundleID resolving to exactly
// one catalog bundle, kept field-synchronized by the reducer on every
// binder-affecting mutation. The binder is the source of truth; the bundle
// is a derived read-model and is never written back into the binder.
type Binder struct {
	ID          string `json:"id" yaml:"id"`
	OwnerID     string `json:"ownerId" yaml:"owner_id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Pages       []Page `json:"pages" yaml:"pages"`

	// BundleID links a published binder to its shop catalog entry.
	BundleID    string `json:"bundleId,omitempty" yaml:"bundle_id,omitempty"`
	IsPublished bool   `json:"isPublished,omitempty" yaml:"is_published,omitempty"`
	PriceCents  int64  `json:"priceCents,omitempty" yaml:"price_cents,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty" yaml:"image_url,omitempty"`

	// PriceRef and ProductRef are the payment provider's identifiers,
	// opaque to the core. Set by the publish glue from the gateway's
	// response; ProductRef is reused on re-publish so the provider updates
	// the existing product instead of minting a new one.
	PriceRef   string `json:"priceRef,omitempty" yaml:"price_ref,omitempty"`
	ProductRef string `json:"productRef,omitempty" yaml:"product_ref,omitempty"`

	// AssignedUsers lists the corporate users granted access by the owning
	// corporate admin.
	AssignedUsers []string `json:"assignedUsers,omitempty" yaml:"assigned_users,omitempty"`
}

// Publishes reports whether the binder is the publisher of a shop bundle.
func (b *Binder) Publishes() bool {
	return b.IsPublished && b.BundleID != ""
}

// AssignedTo reports whether the binder has been assigned to the given user.
func (b *Binder) AssignedTo(userID string) bool {
	for _, id := range b.AssignedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the binder.
func (b Binder) Clone() Binder {
	out := b
	if b.Pages != nil {
		out.Pages = make([]Page, len(b.Pages))
		for i := range b.Pages {
			out.Pages[i] = b.Pages[i].Clone()
		}
	}
	if b.AssignedUsers != nil {
		out.AssignedUsers = make([]string, len(b.AssignedUsers))
		copy(out.AssignedUsers, b.AssignedUsers)
	}
	return out
}

// FindPage returns the page with the given id, or nil.
func (b *Binder) FindPage(id string) *Page {
	for i := range b.Pages {
		if b.Pages[i].ID == id {
			return &b.Pages[i]
		}
	}
	return nil
}

// FindBinder returns the binder with the given id, or nil.
func FindBinder(binders []Binder, id string) *Binder {
	for i := range binders {
		if binders[i].ID == id {
			return &binders[i]
		}
	}
	return nil
}

// CloneBinders deep-copies a binder collection.
func CloneBinders(binders []Binder) []Binder {
	if binders == nil {
		return nil
	}
	out := make([]Binder, len(binders))
	for i := range binders {
		out[i] = binders[i].Clone()
	}
	return out
}
