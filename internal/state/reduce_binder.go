package state

import "github.com/binderhq/binderd/internal/domain"

// syncCatalog is the single synchronization point between a binder and its
// shop bundle. For a publishing binder it inserts-or-replaces the catalog
// entry with a fresh projection; otherwise it returns the catalog unchanged.
//
// Every binder-affecting transition funnels through this, not only explicit
// publishes, which is what keeps the read-model consistent after page edits.
// The sync is one-directional: bundle fields are never written back into a
// binder.
func syncCatalog(bundles []domain.Bundle, b *domain.Binder) []domain.Bundle {
	projected, ok := domain.ProjectBundle(b)
	if !ok {
		return bundles
	}
	next := make([]domain.Bundle, len(bundles))
	copy(next, bundles)
	for i := range next {
		if next[i].ID == projected.ID {
			next[i] = projected
			return next
		}
	}
	return append(next, projected)
}

// dropCatalog removes a bundle from the catalog by id.
func dropCatalog(bundles []domain.Bundle, bundleID string) []domain.Bundle {
	next := make([]domain.Bundle, 0, len(bundles))
	for i := range bundles {
		if bundles[i].ID != bundleID {
			next = append(next, bundles[i])
		}
	}
	return next
}

// replaceBinder returns a new collection with the binder of the same id
// replaced by a clone of updated. Other elements are shared.
func replaceBinder(binders []domain.Binder, updated domain.Binder) []domain.Binder {
	next := make([]domain.Binder, len(binders))
	copy(next, binders)
	for i := range next {
		if next[i].ID == updated.ID {
			next[i] = updated.Clone()
			break
		}
	}
	return next
}

func reduceAddBinder(s AppState, a Action) (AppState, []Effect, error) {
	if a.Binder == nil {
		return s, nil, nil
	}
	b := a.Binder.Clone()

	next := make([]domain.Binder, 0, len(s.Binders)+1)
	next = append(next, s.Binders...)
	next = append(next, b)

	s.Binders = next
	s.Bundles = syncCatalog(s.Bundles, &b)
	return s, []Effect{upsertBinder(b)}, nil
}

func reduceUpdateBinder(s AppState, a Action) (AppState, []Effect, error) {
	if a.Binder == nil {
		return s, nil, nil
	}
	b := a.Binder.Clone()

	if s.FindBinder(b.ID) != nil {
		s.Binders = replaceBinder(s.Binders, b)
	} else {
		// Upsert semantics: an unknown id is an insert, mirroring the
		// adapter's read-modify-write on the owner's stored collection.
		next := make([]domain.Binder, 0, len(s.Binders)+1)
		next = append(next, s.Binders...)
		s.Binders = append(next, b)
	}
	s.Bundles = syncCatalog(s.Bundles, &b)
	return s, []Effect{upsertBinder(b)}, nil
}

func reduceDeleteBinder(s AppState, a Action) (AppState, []Effect, error) {
	deleted := s.FindBinder(a.BinderID)
	if deleted == nil {
		return s, nil, nil
	}
	ownerID := deleted.OwnerID

	remaining := make([]domain.Binder, 0, len(s.Binders))
	for i := range s.Binders {
		if s.Binders[i].ID != a.BinderID {
			remaining = append(remaining, s.Binders[i])
		}
	}

	if deleted.Publishes() {
		s.Bundles = dropCatalog(s.Bundles, deleted.BundleID)
	}
	s.Binders = remaining

	if s.SelectedBinderID == a.BinderID {
		s.SelectedBinderID, s.SelectedPageID = defaultSelection(remaining)
	}
	return s, []Effect{removeBinder(ownerID, a.BinderID)}, nil
}

// reduceAssignBinder replaces the binder's assigned-user set wholesale. No
// role check here: only a corporate admin's UI offers assignment, and the
// reducer treats a missing binder as the data-integrity failure it is.
func reduceAssignBinder(s AppState, a Action) (AppState, []Effect, error) {
	target := s.FindBinder(a.BinderID)
	if target == nil {
		return s, nil, rejectNotFound("binder does not exist", a.BinderID, "")
	}
	b := target.Clone()
	b.AssignedUsers = append([]string(nil), a.UserIDs...)

	s.Binders = replaceBinder(s.Binders, b)
	return s, []Effect{upsertBinder(b)}, nil
}

func reduceAddPage(s AppState, a Action) (AppState, []Effect, error) {
	target := s.FindBinder(a.BinderID)
	if target == nil {
		return s, nil, rejectNotFound("binder does not exist", a.BinderID, "")
	}
	if a.Page == nil {
		return s, nil, nil
	}
	page := a.Page.Clone()
	if page.Reminder.Frequency == "" {
		page.Reminder.Frequency = domain.FrequencyNone
	}

	b := target.Clone()
	b.Pages = append(b.Pages, page)

	s.Binders = replaceBinder(s.Binders, b)
	s.Bundles = syncCatalog(s.Bundles, &b)
	s.SelectedPageID = page.ID
	return s, []Effect{upsertBinder(b)}, nil
}

func reduceUpdatePage(s AppState, a Action) (AppState, []Effect, error) {
	target := s.FindBinder(a.BinderID)
	if target == nil {
		return s, nil, rejectNotFound("binder does not exist", a.BinderID, "")
	}
	if a.Page == nil {
		return s, nil, nil
	}
	if target.FindPage(a.Page.ID) == nil {
		return s, nil, rejectNotFound("page does not exist", a.BinderID, a.Page.ID)
	}

	b := target.Clone()
	for i := range b.Pages {
		if b.Pages[i].ID == a.Page.ID {
			b.Pages[i] = a.Page.Clone()
			break
		}
	}

	s.Binders = replaceBinder(s.Binders, b)
	s.Bundles = syncCatalog(s.Bundles, &b)
	return s, []Effect{upsertBinder(b)}, nil
}

// reduceDeletePage removes a page and, when the page cursor pointed at it,
// moves the cursor deterministically: the next page at the same index, else
// the previous page, else the first page, else none.
func reduceDeletePage(s AppState, a Action) (AppState, []Effect, error) {
	target := s.FindBinder(a.BinderID)
	if target == nil {
		return s, nil, rejectNotFound("binder does not exist", a.BinderID, "")
	}
	idx := -1
	for i := range target.Pages {
		if target.Pages[i].ID == a.PageID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s, nil, rejectNotFound("page does not exist", a.BinderID, a.PageID)
	}

	b := target.Clone()
	b.Pages = append(b.Pages[:idx], b.Pages[idx+1:]...)

	if s.SelectedPageID == a.PageID {
		switch {
		case idx < len(b.Pages):
			s.SelectedPageID = b.Pages[idx].ID
		case idx-1 >= 0 && idx-1 < len(b.Pages):
			s.SelectedPageID = b.Pages[idx-1].ID
		case len(b.Pages) > 0:
			s.SelectedPageID = b.Pages[0].ID
		default:
			s.SelectedPageID = ""
		}
	}

	s.Binders = replaceBinder(s.Binders, b)
	s.Bundles = syncCatalog(s.Bundles, &b)
	return s, []Effect{upsertBinder(b)}, nil
}

func reducePurchaseBundle(s AppState, a Action) (AppState, []Effect, error) {
	for _, id := range s.PurchasedBundles {
		if id == a.BundleID {
			return s, nil, nil
		}
	}
	next := make([]string, 0, len(s.PurchasedBundles)+1)
	next = append(next, s.PurchasedBundles...)
	s.PurchasedBundles = append(next, a.BundleID)
	return s, nil, nil
}

func reduceAddBundle(s AppState, a Action) (AppState, []Effect, error) {
	if a.Bundle == nil {
		return s, nil, nil
	}
	b := a.Bundle.Clone()
	next := make([]domain.Bundle, len(s.Bundles))
	copy(next, s.Bundles)
	for i := range next {
		if next[i].ID == b.ID {
			next[i] = b
			s.Bundles = next
			return s, nil, nil
		}
	}
	s.Bundles = append(next, b)
	return s, nil, nil
}
