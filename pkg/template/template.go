// Package template substitutes personalization placeholders such as
// {{CHILD_NAME}} or {{FAVORITE_COLOR}} into asset names and text.
//
// Substitution works over a closed set of [Key]s. A template that mentions a
// key outside the set, or a key with no value, is an error rather than a
// silently shipped "{{...}}" token.
//
//	fields := template.FieldsFor(req)
//	name, err := template.Substitute("child-{{HAIR_COLOR}}-{{SKIN_TONE}}.png", fields)
package template

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/matzehuels/herobook/pkg/book"
	"github.com/matzehuels/herobook/pkg/errors"
)

// Key is a placeholder name.
type Key string

// Supported placeholder keys.
const (
	ChildName      Key = "CHILD_NAME"
	ChildAge       Key = "CHILD_AGE"
	HairColor      Key = "HAIR_COLOR"
	SkinTone       Key = "SKIN_TONE"
	Pronouns       Key = "PRONOUNS"
	FavoriteAnimal Key = "FAVORITE_ANIMAL"
	FavoriteFood   Key = "FAVORITE_FOOD"
	FavoriteColor  Key = "FAVORITE_COLOR"
	Hometown       Key = "HOMETOWN"
	Occasion       Key = "OCCASION"
)

// Keys is the closed set of placeholders Substitute understands.
var Keys = map[Key]bool{
	ChildName:      true,
	ChildAge:       true,
	HairColor:      true,
	SkinTone:       true,
	Pronouns:       true,
	FavoriteAnimal: true,
	FavoriteFood:   true,
	FavoriteColor:  true,
	Hometown:       true,
	Occasion:       true,
}

// placeholderRegex matches any {{...}} token, known or not.
var placeholderRegex = regexp.MustCompile(`\{\{\s*([^{}]*?)\s*\}\}`)

// Fields maps placeholder keys to their values.
type Fields map[Key]string

// FieldsFor builds the fields for a validated request. Defaults must already
// be applied, so every key has a value.
func FieldsFor(req *book.Request) Fields {
	opts := req.Personalization()
	return Fields{
		ChildName:      req.Child.Name,
		ChildAge:       strconv.Itoa(req.Child.Age),
		HairColor:      req.Child.Hair,
		SkinTone:       req.Child.Skin,
		Pronouns:       req.Child.Pronouns,
		FavoriteAnimal: opts.FavoriteAnimal,
		FavoriteFood:   opts.FavoriteFood,
		FavoriteColor:  opts.FavoriteColor,
		Hometown:       opts.Hometown,
		Occasion:       opts.Occasion,
	}
}

// Validate checks that every key is known and has a non-empty value.
func (f Fields) Validate() error {
	for k, v := range f {
		if !Keys[k] {
			return errors.New(errors.ErrCodeUnresolvedPlaceholder, "unknown placeholder key %q", k)
		}
		if v == "" {
			return errors.New(errors.ErrCodeUnresolvedPlaceholder, "placeholder %q has no value", k)
		}
	}
	return nil
}

// Substitute replaces every {{KEY}} in tpl with its field value. It fails
// with UNRESOLVED_PLACEHOLDER when a token names an unknown key or a key
// missing from fields; the error lists every offending token.
func Substitute(tpl string, fields Fields) (string, error) {
	var missing []string
	out := placeholderRegex.ReplaceAllStringFunc(tpl, func(tok string) string {
		name := Key(placeholderRegex.FindStringSubmatch(tok)[1])
		if !Keys[name] {
			missing = append(missing, tok)
			return tok
		}
		v, ok := fields[name]
		if !ok || v == "" {
			missing = append(missing, tok)
			return tok
		}
		return v
	})
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", errors.New(errors.ErrCodeUnresolvedPlaceholder, "unresolved placeholders in %q: %s", tpl, strings.Join(missing, ", "))
	}
	return out, nil
}
