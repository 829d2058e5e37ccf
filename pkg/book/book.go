// Package book defines the render request for one personalized picture book.
//
// A [Request] carries everything the renderer needs for a single order: the
// finished 14-page [Manuscript], the [ChildProfile], optional
// [Personalization] choices, the physical [RenderSpec] and optional
// pre-resolved asset URLs. Requests are decoded once at the boundary and
// validated wholesale by [Request.ValidateAndSetDefaults]; nothing downstream
// re-checks shapes.
//
// # Usage
//
//	req, err := book.Decode(r.Body)
//	if err != nil {
//	    return err // INVALID_INPUT
//	}
//	if err := req.ValidateAndSetDefaults(); err != nil {
//	    return err // INVALID_INPUT, with the offending JSON field named
//	}
//	geom, _ := req.Spec.Geometry()
package book

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/herobook/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// StoryPageCount is the number of interior story pages in every manuscript.
	StoryPageCount = 14

	// InteriorPageCount is the physical interior page count:
	// 14 story pages + dedication + keepsake.
	InteriorPageCount = StoryPageCount + 2

	// TemplateVersion identifies the page templates used for rendering.
	TemplateVersion = "1.0"

	DefaultTrim       = "8x10"
	DefaultBleed      = "0.125in"
	DefaultColorSpace = ColorCMYK
	DefaultBinding    = BindingSoftcover
	DefaultPronouns   = "they/them"

	DefaultFavoriteAnimal = "dog"
	DefaultFavoriteFood   = "pizza"
	DefaultFavoriteColor  = "blue"
	DefaultHometown       = "Adventure City"
	DefaultOccasion       = OccasionGeneral
	DefaultCountry        = "US"
)

// Color spaces.
const (
	ColorCMYK = "CMYK"
	ColorRGB  = "RGB"
)

// Bindings.
const (
	BindingSoftcover = "softcover"
	BindingHardcover = "hardcover"
)

// Occasions.
const (
	OccasionBirthday  = "birthday"
	OccasionHoliday   = "holiday"
	OccasionMilestone = "milestone"
	OccasionGeneral   = "general"
)

// =============================================================================
// Request Types
// =============================================================================

// Request is the inbound render request for one order.
type Request struct {
	OrderID    string           `json:"orderId" validate:"required"`
	Spec       RenderSpec       `json:"spec"`
	Manuscript Manuscript       `json:"manuscript"`
	Child      ChildProfile     `json:"child"`
	Options    *Personalization `json:"options,omitempty"`
	Shipping   *Shipping        `json:"shipping,omitempty"`
	Assets     *Assets          `json:"assets,omitempty"`

	// validated tracks whether ValidateAndSetDefaults has succeeded.
	validated bool `json:"-"`
}

// RenderSpec describes the physical book.
type RenderSpec struct {
	Trim       string `json:"trim,omitempty"`
	Bleed      string `json:"bleed,omitempty"`
	PageCount  int    `json:"pageCount,omitempty" validate:"omitempty,eq=16"`
	ColorSpace string `json:"colorSpace,omitempty" validate:"omitempty,oneof=CMYK RGB"`
	Binding    string `json:"binding,omitempty" validate:"omitempty,oneof=softcover hardcover"`
}

// Manuscript is the finished story text, one entry per story page in order.
type Manuscript struct {
	Title string         `json:"title" validate:"max=60"`
	Pages []Page         `json:"pages" validate:"len=14,dive"`
	Meta  ManuscriptMeta `json:"meta,omitempty"`
}

// ManuscriptMeta is informational and never rendered.
type ManuscriptMeta struct {
	ReadingAge string `json:"reading_age,omitempty"`
	Theme      string `json:"theme,omitempty"`
}

// Page is one story page. Only Text is rendered; IllustrationPrompt is
// carried for the image-generation collaborator.
type Page struct {
	ID                 string `json:"id"`
	Text               string `json:"text" validate:"max=450"`
	IllustrationPrompt string `json:"illustration_prompt" validate:"max=280"`
}

// ChildProfile describes the child the book is personalized for.
type ChildProfile struct {
	Name     string `json:"name" validate:"required,notblank,min=1,max=20"`
	Age      int    `json:"age" validate:"min=0,max=10"`
	Hair     string `json:"hair" validate:"required,oneof=black brown blonde red other"`
	Skin     string `json:"skin" validate:"required,oneof=light medium dark olive tan"`
	Pronouns string `json:"pronouns,omitempty"`
}

// Personalization holds the optional customer choices. Empty fields are
// replaced with the package defaults by ValidateAndSetDefaults.
type Personalization struct {
	FavoriteAnimal string `json:"favorite_animal,omitempty"`
	FavoriteFood   string `json:"favorite_food,omitempty"`
	FavoriteColor  string `json:"favorite_color,omitempty"`
	Hometown       string `json:"hometown,omitempty"`
	Occasion       string `json:"occasion,omitempty" validate:"omitempty,oneof=birthday holiday milestone general"`
	Dedication     string `json:"dedication,omitempty" validate:"max=500"`
}

// Shipping is validated for completeness but never rendered.
type Shipping struct {
	Name     string `json:"name" validate:"required"`
	Address1 string `json:"address1" validate:"required"`
	Address2 string `json:"address2,omitempty"`
	City     string `json:"city" validate:"required"`
	State    string `json:"state" validate:"required"`
	Zip      string `json:"zip" validate:"required"`
	Country  string `json:"country,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
}

// Assets lists pre-resolved images. An image whose ID matches a page id
// ("p1".."p14", "cover", "dedication", "keepsake") replaces that page's
// background; the id "text-box" replaces the text box art.
type Assets struct {
	Images []Image `json:"images,omitempty" validate:"dive"`
}

// Image is a pre-resolved asset reference. Only http(s) URLs are accepted;
// local paths and file:// URLs would read from the renderer's own disk.
type Image struct {
	ID  string `json:"id" validate:"required"`
	URL string `json:"url" validate:"required,http_url"`
}

// =============================================================================
// Decoding
// =============================================================================

// Decode reads a JSON request. Malformed JSON is reported as INVALID_INPUT.
func Decode(r io.Reader) (*Request, error) {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed render request")
	}
	return &req, nil
}

// =============================================================================
// Accessors
// =============================================================================

// StoryPageID returns the page id for the story page at index i (0-based).
// Manuscript order maps one to one onto p1..p14; the id carried on the
// manuscript page is informational.
func StoryPageID(i int) string {
	return fmt.Sprintf("p%d", i+1)
}

// ImageURL returns the pre-resolved image for id, if the request carries one.
func (r *Request) ImageURL(id string) (string, bool) {
	if r.Assets == nil {
		return "", false
	}
	for _, img := range r.Assets.Images {
		if img.ID == id {
			return img.URL, true
		}
	}
	return "", false
}

// Personalization returns the options, never nil.
func (r *Request) Personalization() Personalization {
	if r.Options == nil {
		return Personalization{}
	}
	return *r.Options
}
