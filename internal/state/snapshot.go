package state

import "github.com/binderhq/binderd/internal/domain"

// Snapshot serializes the state to canonical JSON. Equal states produce
// byte-identical snapshots, which backs golden-file tests and replay
// verification. Absent optional fields are omitted (canonical JSON forbids
// null).
func (s *AppState) Snapshot() ([]byte, error) {
	return domain.MarshalCanonical(s.snapshotMap())
}

func (s *AppState) snapshotMap() map[string]any {
	m := map[string]any{
		"authenticated":     s.Authenticated,
		"users":             usersList(s.Users),
		"binders":           bindersList(s.Binders),
		"bundles":           bundlesList(s.Bundles),
		"plans":             plansList(s.Plans),
		"currentView":       string(s.CurrentView),
		"notificationStyle": string(s.NotificationStyle),
	}
	if s.User != nil {
		m["user"] = userMap(*s.User)
	}
	if len(s.PurchasedBundles) > 0 {
		m["purchasedBundles"] = stringList(s.PurchasedBundles)
	}
	if s.SelectedBinderID != "" {
		m["selectedBinderId"] = s.SelectedBinderID
	}
	if s.SelectedPageID != "" {
		m["selectedPageId"] = s.SelectedPageID
	}
	if s.ActiveNotification != nil {
		n := s.ActiveNotification
		m["activeNotification"] = map[string]any{
			"type":       string(n.Type),
			"binderId":   n.BinderID,
			"pageId":     n.PageID,
			"sourceId":   n.SourceID,
			"sourceType": string(n.SourceType),
			"title":      n.Title,
		}
	}
	if s.PushSubscription != "" {
		m["pushSubscription"] = s.PushSubscription
	}
	if s.SimulatedRole != "" {
		m["simulatedRole"] = string(s.SimulatedRole)
		m["originalBinders"] = bindersList(s.OriginalBinders)
	}
	return m
}

func stringList(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func userMap(u domain.User) map[string]any {
	m := map[string]any{
		"id":    u.ID,
		"email": u.Email,
		"name":  u.Name,
		"role":  string(u.Role),
	}
	// The credential hash is salted and non-deterministic; snapshots only
	// record whether one is present.
	if u.PasswordHash != "" {
		m["hasCredential"] = true
	}
	if u.CorporateID != "" {
		m["corporateId"] = u.CorporateID
	}
	return m
}

func usersList(users []domain.User) []any {
	out := make([]any, len(users))
	for i := range users {
		out[i] = userMap(users[i])
	}
	return out
}

func taskMap(t domain.Task) map[string]any {
	m := map[string]any{
		"id":     t.ID,
		"text":   t.Text,
		"status": string(t.Status),
	}
	if t.DueAt != 0 {
		m["dueAt"] = t.DueAt
	}
	if t.StartedAt != 0 {
		m["startedAt"] = t.StartedAt
	}
	return m
}

func pageMap(p domain.Page) map[string]any {
	tasks := make([]any, len(p.Tasks))
	for i := range p.Tasks {
		tasks[i] = taskMap(p.Tasks[i])
	}
	files := make([]any, len(p.Files))
	for i := range p.Files {
		f := p.Files[i]
		fm := map[string]any{
			"name":     f.Name,
			"mimeType": f.MimeType,
			"size":     f.Size,
			"url":      f.URL,
			"category": string(f.Category),
		}
		if f.ID != "" {
			fm["id"] = f.ID
		}
		files[i] = fm
	}
	reminder := map[string]any{
		"title":     p.Reminder.Title,
		"frequency": string(p.Reminder.Frequency),
		"isActive":  p.Reminder.IsActive,
	}
	if p.Reminder.At != 0 {
		reminder["at"] = p.Reminder.At
	}
	if p.Reminder.StartedAt != 0 {
		reminder["startedAt"] = p.Reminder.StartedAt
	}
	m := map[string]any{
		"title":    p.Title,
		"notes":    p.Notes,
		"tasks":    tasks,
		"files":    files,
		"reminder": reminder,
	}
	if p.ID != "" {
		m["id"] = p.ID
	}
	return m
}

func binderMap(b domain.Binder) map[string]any {
	pages := make([]any, len(b.Pages))
	for i := range b.Pages {
		pages[i] = pageMap(b.Pages[i])
	}
	m := map[string]any{
		"id":          b.ID,
		"ownerId":     b.OwnerID,
		"name":        b.Name,
		"description": b.Description,
		"pages":       pages,
	}
	if b.BundleID != "" {
		m["bundleId"] = b.BundleID
	}
	if b.IsPublished {
		m["isPublished"] = true
	}
	if b.PriceCents != 0 {
		m["priceCents"] = b.PriceCents
	}
	if b.ImageURL != "" {
		m["imageUrl"] = b.ImageURL
	}
	if b.PriceRef != "" {
		m["priceRef"] = b.PriceRef
	}
	if len(b.AssignedUsers) > 0 {
		m["assignedUsers"] = stringList(b.AssignedUsers)
	}
	return m
}

func bindersList(binders []domain.Binder) []any {
	out := make([]any, len(binders))
	for i := range binders {
		out[i] = binderMap(binders[i])
	}
	return out
}

func bundleMap(b domain.Bundle) map[string]any {
	pages := make([]any, len(b.PresetPages))
	for i := range b.PresetPages {
		pages[i] = pageMap(b.PresetPages[i])
	}
	m := map[string]any{
		"id":          b.ID,
		"ownerId":     b.OwnerID,
		"name":        b.Name,
		"description": b.Description,
		"priceCents":  b.PriceCents,
		"imageUrl":    b.ImageURL,
		"presetPages": pages,
	}
	if b.PriceRef != "" {
		m["priceRef"] = b.PriceRef
	}
	return m
}

func bundlesList(bundles []domain.Bundle) []any {
	out := make([]any, len(bundles))
	for i := range bundles {
		out[i] = bundleMap(bundles[i])
	}
	return out
}

func plansList(plans []domain.SubscriptionPlan) []any {
	out := make([]any, len(plans))
	for i := range plans {
		p := plans[i]
		m := map[string]any{
			"id":               string(p.ID),
			"name":             p.Name,
			"description":      p.Description,
			"priceCents":       p.PriceCents,
			"priceYearlyCents": p.PriceYearlyCents,
			"features":         stringList(p.Features),
		}
		if p.PriceRef != "" {
			m["priceRef"] = p.PriceRef
		}
		if p.PriceRefYearly != "" {
			m["priceRefYearly"] = p.PriceRefYearly
		}
		out[i] = m
	}
	return out
}
