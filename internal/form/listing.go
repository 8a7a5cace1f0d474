package form

import (
	"strings"

	"github.com/iliyamo/fyyur/internal/catalog"
	"github.com/iliyamo/fyyur/internal/model"
)

// ListingFields are the fields venues and artists have in common.  The type
// is exported so echo can bind into it through the embedding forms.
type ListingFields struct {
	Name               string   `form:"name" json:"name"`
	City               string   `form:"city" json:"city"`
	State              string   `form:"state" json:"state"`
	Phone              string   `form:"phone" json:"phone"`
	ImageLink          string   `form:"image_link" json:"image_link"`
	FacebookLink       string   `form:"facebook_link" json:"facebook_link"`
	WebsiteLink        string   `form:"website_link" json:"website_link"`
	Genres             []string `form:"genres" json:"genres"`
	SeekingDescription string   `form:"seeking_description" json:"seeking_description"`
}

func (f *ListingFields) trim() {
	for _, p := range []*string{&f.Name, &f.City, &f.State, &f.Phone, &f.ImageLink,
		&f.FacebookLink, &f.WebsiteLink, &f.SeekingDescription} {
		*p = strings.TrimSpace(*p)
	}
	f.Genres = model.Genres(f.Genres).Normalize()
}

func (f *ListingFields) validate(cat *catalog.Catalog, errs errorSet) {
	f.trim()
	if f.Name == "" {
		errs.add("name", "is required")
	}
	if f.City == "" {
		errs.add("city", "is required")
	}
	switch {
	case f.State == "":
		errs.add("state", "is required")
	case !cat.HasState(f.State):
		errs.add("state", "is not a known state")
	}
	if len(f.Genres) == 0 {
		errs.add("genres", "select at least one genre")
	}
	for _, g := range f.Genres {
		if !cat.HasGenre(g) {
			errs.add("genres", "unknown genre "+g)
		}
	}
	checkLink(errs, "image_link", f.ImageLink)
	checkLink(errs, "facebook_link", f.FacebookLink)
	checkLink(errs, "website_link", f.WebsiteLink)
}

// VenueForm is the create/edit venue form.
type VenueForm struct {
	ListingFields
	Address       string `form:"address" json:"address"`
	SeekingTalent Bool   `form:"seeking_talent" json:"seeking_talent"`
}

// Validate checks f against the choices in cat.
func (f *VenueForm) Validate(cat *catalog.Catalog) error {
	errs := errorSet{}
	f.Address = strings.TrimSpace(f.Address)
	f.validate(cat, errs)
	return errs.err()
}

// ToVenue converts a validated form into a venue row.
func (f *VenueForm) ToVenue() *model.Venue {
	return &model.Venue{
		Name:               f.Name,
		City:               f.City,
		State:              f.State,
		Address:            f.Address,
		Phone:              f.Phone,
		ImageLink:          optional(f.ImageLink),
		FacebookLink:       f.FacebookLink,
		WebsiteLink:        f.WebsiteLink,
		SeekingTalent:      bool(f.SeekingTalent),
		SeekingDescription: optional(f.SeekingDescription),
		Genres:             model.Genres(f.Genres),
	}
}

// VenueFormFrom prefills the edit form with v.
func VenueFormFrom(v *model.Venue) VenueForm {
	return VenueForm{
		ListingFields: ListingFields{
			Name:               v.Name,
			City:               v.City,
			State:              v.State,
			Phone:              v.Phone,
			ImageLink:          deref(v.ImageLink),
			FacebookLink:       v.FacebookLink,
			WebsiteLink:        v.WebsiteLink,
			Genres:             append([]string{}, v.Genres...),
			SeekingDescription: deref(v.SeekingDescription),
		},
		Address:       v.Address,
		SeekingTalent: Bool(v.SeekingTalent),
	}
}

// ArtistForm is the create/edit artist form.
type ArtistForm struct {
	ListingFields
	SeekingVenue Bool `form:"seeking_venue" json:"seeking_venue"`
}

// Validate checks f against the choices in cat.
func (f *ArtistForm) Validate(cat *catalog.Catalog) error {
	errs := errorSet{}
	f.validate(cat, errs)
	return errs.err()
}

// ToArtist converts a validated form into an artist row.
func (f *ArtistForm) ToArtist() *model.Artist {
	return &model.Artist{
		Name:               f.Name,
		City:               f.City,
		State:              f.State,
		Phone:              f.Phone,
		ImageLink:          optional(f.ImageLink),
		FacebookLink:       f.FacebookLink,
		WebsiteLink:        f.WebsiteLink,
		SeekingVenue:       bool(f.SeekingVenue),
		SeekingDescription: optional(f.SeekingDescription),
		Genres:             model.Genres(f.Genres),
	}
}

// ArtistFormFrom prefills the edit form with a.
func ArtistFormFrom(a *model.Artist) ArtistForm {
	return ArtistForm{
		ListingFields: ListingFields{
			Name:               a.Name,
			City:               a.City,
			State:              a.State,
			Phone:              a.Phone,
			ImageLink:          deref(a.ImageLink),
			FacebookLink:       a.FacebookLink,
			WebsiteLink:        a.WebsiteLink,
			Genres:             append([]string{}, a.Genres...),
			SeekingDescription: deref(a.SeekingDescription),
		},
		SeekingVenue: Bool(a.SeekingVenue),
	}
}
