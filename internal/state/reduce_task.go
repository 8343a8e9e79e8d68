package state

import "github.com/binderhq/binderd/internal/domain"

// locatePage finds the binder and page addressed by the action, or returns
// a rejection. The returned binder is a deep clone safe to mutate; page is
// the clone's page.
func locatePage(s *AppState, binderID, pageID string) (domain.Binder, *domain.Page, *RejectionError) {
	target := s.FindBinder(binderID)
	if target == nil {
		return domain.Binder{}, nil, rejectNotFound("binder does not exist", binderID, "")
	}
	if target.FindPage(pageID) == nil {
		return domain.Binder{}, nil, rejectNotFound("page does not exist", binderID, pageID)
	}
	b := target.Clone()
	return b, b.FindPage(pageID), nil
}

func reduceUpdateTask(s AppState, a Action) (AppState, []Effect, error) {
	if a.Task == nil {
		return s, nil, nil
	}
	b, page, rej := locatePage(&s, a.BinderID, a.PageID)
	if rej != nil {
		return s, nil, rej
	}

	task := *a.Task
	// Clearing the deadline disarms any countdown with it.
	if task.DueAt == 0 {
		task.StartedAt = 0
	}
	if existing := page.FindTask(task.ID); existing != nil {
		*existing = task
	} else {
		page.Tasks = append(page.Tasks, task)
	}

	s.Binders = replaceBinder(s.Binders, b)
	s.Bundles = syncCatalog(s.Bundles, &b)
	return s, []Effect{upsertBinder(b)}, nil
}

// reduceDeleteTask removes a task unless its countdown is live. A task that
// is armed with a deadline still in the future must first expire (or have
// its notification dismissed) before it can be deleted.
func reduceDeleteTask(s AppState, a Action) (AppState, []Effect, error) {
	b, page, rej := locatePage(&s, a.BinderID, a.PageID)
	if rej != nil {
		return s, nil, rej
	}
	task := page.FindTask(a.TaskID)
	if task == nil {
		return s, nil, &RejectionError{
			Code: CodeNotFound, Message: "task does not exist",
			BinderID: a.BinderID, PageID: a.PageID, TaskID: a.TaskID,
		}
	}
	if task.CountdownLive(a.Time) {
		return s, nil, &RejectionError{
			Code: CodeTaskTimerActive, Message: "task countdown is running",
			BinderID: a.BinderID, PageID: a.PageID, TaskID: a.TaskID,
		}
	}

	kept := make([]domain.Task, 0, len(page.Tasks))
	for i := range page.Tasks {
		if page.Tasks[i].ID != a.TaskID {
			kept = append(kept, page.Tasks[i])
		}
	}
	page.Tasks = kept

	s.Binders = replaceBinder(s.Binders, b)
	s.Bundles = syncCatalog(s.Bundles, &b)
	return s, []Effect{upsertBinder(b)}, nil
}

func reduceStartTaskTimer(s AppState, a Action) (AppState, []Effect, error) {
	b, page, rej := locatePage(&s, a.BinderID, a.PageID)
	if rej != nil {
		return s, nil, rej
	}
	task := page.FindTask(a.TaskID)
	if task == nil {
		return s, nil, &RejectionError{
			Code: CodeNotFound, Message: "task does not exist",
			BinderID: a.BinderID, PageID: a.PageID, TaskID: a.TaskID,
		}
	}
	if task.DueAt <= a.Time {
		return s, nil, &RejectionError{
			Code: CodeInvalidDeadline, Message: "task has no future deadline",
			BinderID: a.BinderID, PageID: a.PageID, TaskID: a.TaskID,
		}
	}
	if task.CountdownLive(a.Time) {
		return s, nil, &RejectionError{
			Code: CodeTaskTimerActive, Message: "task countdown already running",
			BinderID: a.BinderID, PageID: a.PageID, TaskID: a.TaskID,
		}
	}
	task.StartedAt = a.Time

	s.Binders = replaceBinder(s.Binders, b)
	s.Bundles = syncCatalog(s.Bundles, &b)
	return s, []Effect{upsertBinder(b)}, nil
}

// reduceStartReminder arms the page's reminder. Rejected while the reminder
// is already armed and unexpired; re-arming after expiry is allowed.
func reduceStartReminder(s AppState, a Action) (AppState, []Effect, error) {
	b, page, rej := locatePage(&s, a.BinderID, a.PageID)
	if rej != nil {
		return s, nil, rej
	}
	if page.Reminder.Live(a.Time) {
		return s, nil, &RejectionError{
			Code: CodeReminderActive, Message: "reminder already armed",
			BinderID: a.BinderID, PageID: a.PageID,
		}
	}
	page.Reminder.IsActive = true
	page.Reminder.StartedAt = a.Time

	s.Binders = replaceBinder(s.Binders, b)
	s.Bundles = syncCatalog(s.Bundles, &b)
	return s, []Effect{upsertBinder(b)}, nil
}

// reduceTriggerNotification raises an alert unless one is already live.
// Timers race only through the dispatch queue, so "first to dispatch wins"
// and later triggers are dropped until dismissal.
func reduceTriggerNotification(s AppState, a Action) (AppState, []Effect, error) {
	if s.ActiveNotification != nil || a.Notification == nil {
		return s, nil, nil
	}
	n := *a.Notification
	s.ActiveNotification = &n
	return s, nil, nil
}

// reduceDismissNotification clears the live alert and disarms its source:
// the originating reminder's active flag, or the originating task's
// countdown.
func reduceDismissNotification(s AppState) (AppState, []Effect, error) {
	n := s.ActiveNotification
	if n == nil {
		return s, nil, nil
	}
	s.ActiveNotification = nil

	target := s.FindBinder(n.BinderID)
	if target == nil || target.FindPage(n.PageID) == nil {
		// The source binder may have been deleted while the alert was up.
		return s, nil, nil
	}
	b := target.Clone()
	page := b.FindPage(n.PageID)

	switch n.SourceType {
	case domain.SourceReminder:
		if page.ID == n.SourceID {
			page.Reminder.IsActive = false
			page.Reminder.StartedAt = 0
		}
	case domain.SourceTask:
		if task := page.FindTask(n.SourceID); task != nil {
			task.StartedAt = 0
		}
	}

	s.Binders = replaceBinder(s.Binders, b)
	s.Bundles = syncCatalog(s.Bundles, &b)
	return s, []Effect{upsertBinder(b)}, nil
}
