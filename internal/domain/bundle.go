package domain

import "fmt"

// Bundle is the shop-catalog projection of a published binder: the binder's
// listing fields plus its pages as id-stripped templates. Bundles exist only
// as mirrors of publishing binders and are rewritten wholesale by the
// reducer's sync point; nothing edits a bundle in place.
type Bundle struct {
	ID          string `json:"id" yaml:"id"`
	OwnerID     string `json:"ownerId" yaml:"owner_id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	PriceCents  int64  `json:"priceCents" yaml:"price_cents"`
	ImageURL    string `json:"imageUrl" yaml:"image_url"`

	// PresetPages are the publisher's pages with page and file ids stripped.
	// Task ids are retained so imported templates keep stable task identity.
	PresetPages []Page `json:"presetPages" yaml:"preset_pages"`

	// PriceRef is the payment provider's price identifier for the bundle.
	PriceRef string `json:"priceRef,omitempty" yaml:"price_ref,omitempty"`
}

// Clone returns a deep copy of the bundle.
func (b Bundle) Clone() Bundle {
	out := b
	if b.PresetPages != nil {
		out.PresetPages = make([]Page, len(b.PresetPages))
		for i := range b.PresetPages {
			out.PresetPages[i] = b.PresetPages[i].Clone()
		}
	}
	return out
}

// FindBundle returns the bundle with the given id, or nil.
func FindBundle(bundles []Bundle, id string) *Bundle {
	for i := range bundles {
		if bundles[i].ID == id {
			return &bundles[i]
		}
	}
	return nil
}

// CloneBundles deep-copies a bundle catalog.
func CloneBundles(bundles []Bundle) []Bundle {
	if bundles == nil {
		return nil
	}
	out := make([]Bundle, len(bundles))
	for i := range bundles {
		out[i] = bundles[i].Clone()
	}
	return out
}

// ProjectBundle derives the catalog entry for a publishing binder. The
// projection is one-directional: the binder is the source of truth and the
// result replaces any previous catalog entry with the same bundle id.
//
// Returns false when the binder does not publish a bundle.
func ProjectBundle(b *Binder) (Bundle, bool) {
	if !b.Publishes() {
		return Bundle{}, false
	}
	preset := make([]Page, len(b.Pages))
	for i := range b.Pages {
		p := b.Pages[i].Clone()
		p.ID = ""
		for j := range p.Files {
			p.Files[j].ID = ""
		}
		preset[i] = p
	}
	return Bundle{
		ID:          b.BundleID,
		OwnerID:     b.OwnerID,
		Name:        b.Name,
		Description: b.Description,
		PriceCents:  b.PriceCents,
		ImageURL:    b.ImageURL,
		PresetPages: preset,
		PriceRef:    b.PriceRef,
	}, true
}

// MaterializeBinder instantiates a binder from a catalog bundle for the
// owner's login view. Binder and page ids are derived from the bundle id so
// repeated logins materialize the same identities (idempotent union with the
// owner's existing collection).
func MaterializeBinder(bundle *Bundle) Binder {
	pages := make([]Page, len(bundle.PresetPages))
	for i := range bundle.PresetPages {
		p := bundle.PresetPages[i].Clone()
		p.ID = fmt.Sprintf("page-%s-%d", bundle.ID, i)
		pages[i] = p
	}
	return Binder{
		ID:          "binder-" + bundle.ID,
		OwnerID:     bundle.OwnerID,
		Name:        bundle.Name,
		Description: bundle.Description,
		Pages:       pages,
		BundleID:    bundle.ID,
		IsPublished: true,
		PriceCents:  bundle.PriceCents,
		ImageURL:    bundle.ImageURL,
		PriceRef:    bundle.PriceRef,
	}
}

// InstantiatePages builds fresh pages from a bundle's templates for a shop
// import. Pages and their tasks get new ids from the generator; file refs
// keep the ids the template carries.
func InstantiatePages(bundle *Bundle, gen IDGenerator) []Page {
	pages := make([]Page, len(bundle.PresetPages))
	for i := range bundle.PresetPages {
		p := bundle.PresetPages[i].Clone()
		p.ID = gen.NewID()
		for j := range p.Tasks {
			p.Tasks[j].ID = gen.NewID()
		}
		pages[i] = p
	}
	return pages
}
