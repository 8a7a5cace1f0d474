package form_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fyyur/internal/catalog"
	"github.com/iliyamo/fyyur/internal/form"
	"github.com/iliyamo/fyyur/internal/model"
)

var now = time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)

func bindForm(t *testing.T, values url.Values, dst interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	c := echo.New().NewContext(req, httptest.NewRecorder())
	require.NoError(t, c.Bind(dst))
}

func bindJSON(t *testing.T, body string, dst interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := echo.New().NewContext(req, httptest.NewRecorder())
	require.NoError(t, c.Bind(dst))
}

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *form.ValidationError
	require.True(t, errors.As(err, &verr), "expected a validation error, got %v", err)
	return verr.Fields
}

func TestVenueFormFromURLEncoded(t *testing.T) {
	var f form.VenueForm
	bindForm(t, url.Values{
		"name":           {"  The Musical Hop "},
		"city":           {"San Francisco"},
		"state":          {"CA"},
		"address":        {"1015 Folsom Street"},
		"genres":         {"Jazz", "Blues", "Jazz"},
		"seeking_talent": {"y"},
		"image_link":     {""},
	}, &f)
	require.NoError(t, f.Validate(catalog.Default()))

	v := f.ToVenue()
	assert.Equal(t, "The Musical Hop", v.Name)
	assert.Equal(t, "1015 Folsom Street", v.Address)
	assert.Equal(t, model.Genres{"Jazz", "Blues"}, v.Genres)
	assert.True(t, v.SeekingTalent)
	assert.Nil(t, v.ImageLink)
	assert.Nil(t, v.SeekingDescription)
}

func TestArtistFormFromJSON(t *testing.T) {
	var f form.ArtistForm
	bindJSON(t, `{"name":"Guns N Petals","city":"San Francisco","state":"CA",
		"genres":["Rock n Roll"],"seeking_venue":"on","seeking_description":"Looking for shows",
		"facebook_link":"https://www.facebook.com/GunsNPetals"}`, &f)
	require.NoError(t, f.Validate(catalog.Default()))

	a := f.ToArtist()
	assert.True(t, a.SeekingVenue)
	require.NotNil(t, a.SeekingDescription)
	assert.Equal(t, "Looking for shows", *a.SeekingDescription)
	assert.Equal(t, model.Genres{"Rock n Roll"}, a.Genres)
}

func TestListingValidation(t *testing.T) {
	var f form.ArtistForm
	bindForm(t, url.Values{
		"state":         {"XX"},
		"genres":        {"Polka Fusion"},
		"facebook_link": {"not a link"},
	}, &f)
	got := fields(t, f.Validate(catalog.Default()))
	assert.Contains(t, got, "name")
	assert.Contains(t, got, "city")
	assert.Contains(t, got, "state")
	assert.Contains(t, got, "genres")
	assert.Contains(t, got, "facebook_link")

	f = form.ArtistForm{}
	bindForm(t, url.Values{"name": {"A"}, "city": {"B"}, "state": {"NY"}}, &f)
	assert.Equal(t, map[string]string{"genres": "select at least one genre"}, fields(t, f.Validate(catalog.Default())))
}

func TestValidationErrorMessage(t *testing.T) {
	err := &form.ValidationError{Fields: map[string]string{"state": "x", "name": "y"}}
	assert.Equal(t, "invalid form fields: name, state", err.Error())
}

func TestBool(t *testing.T) {
	for in, want := range map[string]bool{"y": true, "on": true, "True": true, "1": true, "": false, "n": false, "off": false} {
		var b form.Bool
		require.NoError(t, b.UnmarshalParam(in))
		assert.Equal(t, want, bool(b), in)
	}
	for in, want := range map[string]bool{`true`: true, `false`: false, `"y"`: true, `null`: false, `1`: true, `0`: false} {
		var b form.Bool
		require.NoError(t, json.Unmarshal([]byte(in), &b))
		assert.Equal(t, want, bool(b), in)
	}
	var b form.Bool
	assert.Error(t, json.Unmarshal([]byte(`[]`), &b))
}

func TestEditPrefillRoundTrip(t *testing.T) {
	img := "https://example.com/hop.png"
	v := &model.Venue{
		Name: "Hop", City: "SF", State: "CA", Address: "1 Main", ImageLink: &img,
		SeekingTalent: true, Genres: model.Genres{"Jazz", "Folk"},
	}
	f := form.VenueFormFrom(v)
	assert.Equal(t, []string{"Jazz", "Folk"}, f.Genres)
	assert.Equal(t, img, f.ImageLink)
	assert.True(t, bool(f.SeekingTalent))

	back := f.ToVenue()
	assert.Equal(t, v.Name, back.Name)
	assert.Equal(t, v.Address, back.Address)
	assert.Equal(t, v.Genres, back.Genres)
	require.NotNil(t, back.ImageLink)
	assert.Equal(t, img, *back.ImageLink)

	a := form.ArtistFormFrom(&model.Artist{Name: "A", SeekingVenue: true, Genres: model.Genres{"Soul"}})
	assert.True(t, bool(a.SeekingVenue))
	assert.Equal(t, "A", a.ToArtist().Name)
}

func TestShowForm(t *testing.T) {
	var f form.ShowForm
	bindForm(t, url.Values{"artist_id": {"4"}, "venue_id": {"1"}, "start_time": {"2019-05-21 21:30:00"}}, &f)
	require.NoError(t, f.Validate(now))
	s := f.ToShow()
	assert.Equal(t, uint64(4), s.ArtistID)
	assert.Equal(t, uint64(1), s.VenueID)
	assert.Equal(t, time.Date(2019, 5, 21, 21, 30, 0, 0, time.UTC), s.StartTime)
	assert.Nil(t, s.Name)

	f = form.ShowForm{}
	bindJSON(t, `{"artist_id": 4, "venue_id": "2", "start_time": "2035-04-01T20:00:00Z"}`, &f)
	require.NoError(t, f.Validate(now))
	s = f.ToShow()
	assert.Equal(t, uint64(2), s.VenueID)
	assert.Equal(t, time.Date(2035, 4, 1, 20, 0, 0, 0, time.UTC), s.StartTime)
}

func TestShowFormDefaultsStartTimeToNow(t *testing.T) {
	f := form.ShowForm{ArtistID: "1", VenueID: "1"}
	require.NoError(t, f.Validate(now))
	assert.Equal(t, now, f.ToShow().StartTime)
}

func TestShowFormValidation(t *testing.T) {
	f := form.ShowForm{ArtistID: "abc", StartTime: "tomorrow", ImageLink: "ftp://x"}
	got := fields(t, f.Validate(now))
	assert.Equal(t, "must be a positive integer", got["artist_id"])
	assert.Equal(t, "is required", got["venue_id"])
	assert.Contains(t, got, "start_time")
	assert.Contains(t, got, "image_link")
}
