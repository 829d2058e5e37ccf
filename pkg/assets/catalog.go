package assets

import (
	"fmt"
	"path"

	"github.com/matzehuels/herobook/pkg/errors"
	"github.com/matzehuels/herobook/pkg/template"
)

// Catalog directories, relative to the asset root.
const (
	backgroundsDir = "backgrounds"
	overlaysDir    = "overlays"
)

// placement is the default position of an overlay kind, in layout units.
type placement struct {
	x, y, width float64
	z           int
}

var placements = map[string]placement{
	KindScene:     {x: 0, y: 1500, width: 2475, z: 0},
	KindCharacter: {x: 300, y: 700, width: 900, z: 1},
	KindCompanion: {x: 1350, y: 700, width: 600, z: 2},
	KindMagical:   {x: 1650, y: 2100, width: 500, z: 3},
}

type layer struct {
	kind string
	file string // may contain {{...}} placeholders
}

type pageTemplate struct {
	background string
	layers     []layer
}

func character(suffix string) layer {
	return layer{KindCharacter, "child-character-{{HAIR_COLOR}}-{{SKIN_TONE}}" + suffix + ".png"}
}

var companion = layer{KindCompanion, "{{FAVORITE_ANIMAL}}-companion.png"}

func magical(file string) layer { return layer{KindMagical, file} }
func scene(file string) layer   { return layer{KindScene, file} }

// catalog is the Adventure Compass story, one template per page id.
var catalog = map[string]pageTemplate{
	"p1":  {"compass-discovery.jpg", []layer{character(""), magical("compass-{{FAVORITE_COLOR}}-glow.png"), magical("{{FAVORITE_COLOR}}-flower.png")}},
	"p2":  {"enchanted-forest.jpg", []layer{character(""), companion, magical("compass-{{FAVORITE_COLOR}}-glow.png")}},
	"p3":  {"talking-trees.jpg", []layer{character(""), companion, magical("butterflies-{{FAVORITE_COLOR}}.png")}},
	"p4":  {"tall-mountain.jpg", []layer{scene("{{FAVORITE_FOOD}}-shaped-clouds.png"), character(""), companion, magical("compass-{{FAVORITE_COLOR}}-glow.png")}},
	"p5":  {"sky-flying.jpg", []layer{scene("{{FAVORITE_FOOD}}-shaped-clouds.png"), character(""), companion, magical("compass-{{FAVORITE_COLOR}}-glow.png")}},
	"p6":  {"magical-sea.jpg", []layer{scene("sparkling-water.png"), character(""), companion, magical("dolphins-{{FAVORITE_COLOR}}-glow.png")}},
	"p7":  {"underwater-scene.jpg", []layer{scene("wise-sea-turtle.png"), character(""), companion, magical("{{FAVORITE_COLOR}}-underwater-glow.png")}},
	"p8":  {"rainbow-garden.jpg", []layer{scene("rainbow-lighting.png"), character(""), companion, magical("{{FAVORITE_COLOR}}-flower-prominent.png")}},
	"p9":  {"rainbow-garden.jpg", []layer{scene("garden-guardian.png"), character(""), companion, magical("{{FAVORITE_COLOR}}-magical-aura.png")}},
	"p10": {"rainbow-garden.jpg", []layer{scene("magical-gift-scene.png"), character(""), companion, magical("{{FAVORITE_COLOR}}-star-gift.png")}},
	"p11": {"journey-home.jpg", []layer{character(""), companion, magical("compass-{{FAVORITE_COLOR}}-pointing-home.png")}},
	"p12": {"hometown-backyard.jpg", []layer{character(""), companion, magical("compass-{{FAVORITE_COLOR}}-keepsake.png")}},
	"p13": {"bedroom-scene.jpg", []layer{scene("family-listening.png"), character(""), magical("{{FAVORITE_COLOR}}-star-nightstand.png")}},
	"p14": {"peaceful-sleeping.jpg", []layer{scene("dreamy-magical-atmosphere.png"), character("-sleeping"), magical("{{FAVORITE_COLOR}}-star-and-compass.png")}},

	PageCover: {"adventure-compass-cover.jpg", []layer{
		scene("magical-elements-{{FAVORITE_COLOR}}.png"),
		character("-hero-pose"),
		{KindCompanion, "{{FAVORITE_ANIMAL}}-companion-cover.png"},
		magical("compass-{{FAVORITE_COLOR}}-prominent.png"),
	}},
	PageDedication: {"dedication-page.jpg", []layer{
		scene("{{FAVORITE_COLOR}}-decorative-elements.png"),
		character("-happy"),
	}},
	PageKeepsake: {"keepsake-page.jpg", []layer{
		scene("{{FAVORITE_COLOR}}-magical-border.png"),
		character("-portrait"),
		companion,
		magical("compass-{{FAVORITE_COLOR}}-keepsake.png"),
	}},
}

// TemplateResolver resolves pages from the built-in catalog.
type TemplateResolver struct {
	textBox string
}

// NewTemplateResolver returns the catalog resolver using the standard text
// box art.
func NewTemplateResolver() *TemplateResolver {
	return &TemplateResolver{textBox: DefaultTextBox}
}

// PageIDs lists every page id the catalog knows, story pages first.
func PageIDs() []string {
	ids := make([]string, 0, len(catalog))
	for i := 1; i <= 14; i++ {
		ids = append(ids, fmt.Sprintf("p%d", i))
	}
	return append(ids, PageCover, PageDedication, PageKeepsake)
}

// ResolvePageAssets implements Resolver. Unknown page ids are an
// ASSET_RESOLUTION error; unresolvable placeholders are
// UNRESOLVED_PLACEHOLDER.
func (r *TemplateResolver) ResolvePageAssets(pageID string, fields template.Fields) (PageAssets, error) {
	tpl, ok := catalog[pageID]
	if !ok {
		return PageAssets{}, errors.New(errors.ErrCodeAssetResolution, "no template for page %q", pageID)
	}

	pa := PageAssets{
		PageID:     pageID,
		Background: path.Join(backgroundsDir, tpl.background),
		TextBox:    r.textBox,
	}
	for _, l := range tpl.layers {
		file, err := template.Substitute(l.file, fields)
		if err != nil {
			return PageAssets{}, err
		}
		p := placements[l.kind]
		pa.Overlays = append(pa.Overlays, Overlay{
			Kind:  l.kind,
			File:  path.Join(overlaysDir, file),
			X:     p.x,
			Y:     p.y,
			Width: p.width,
			Z:     p.z,
		})
	}
	return pa, nil
}

var _ Resolver = (*TemplateResolver)(nil)
