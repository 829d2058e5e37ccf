package book

import (
	"fmt"
	"strings"
)

// exampleStory is a short stand-in story used by Example. Real manuscripts
// come from the story collaborator.
var exampleStory = [StoryPageCount]string{
	"One sunny morning, %s found a shiny compass hidden under the garden steps.",
	"The needle spun and pointed toward the whispering forest at the end of the lane.",
	"Tall trees waved their branches and butterflies danced along the path.",
	"At the top of a tall mountain, the clouds looked just like slices of pizza.",
	"A gust of wind lifted %s into the sky, soaring past the birds.",
	"Below, the sea sparkled and dolphins leapt through the waves.",
	"A wise old sea turtle told a secret: the compass points to where you are brave.",
	"In a rainbow garden, every flower glowed a different color.",
	"The garden guardian bowed and said, \"Every hero needs a kind heart.\"",
	"%s received a tiny golden key for the journey home.",
	"Following the compass, %s walked the long path back over the hills.",
	"The backyard looked the same, but %s felt a little taller.",
	"At dinner, %s told the whole family about the adventure.",
	"That night, %s fell asleep holding the compass, dreaming of tomorrow.",
}

// Example returns a complete, valid request for the given child name. It is
// used by the CLI's example command and by tests.
func Example(orderID, childName string) *Request {
	pages := make([]Page, StoryPageCount)
	for i, tpl := range exampleStory {
		text := tpl
		if strings.Contains(tpl, "%s") {
			text = fmt.Sprintf(tpl, childName)
		}
		pages[i] = Page{
			ID:                 fmt.Sprintf("p%d", i+1),
			Text:               text,
			IllustrationPrompt: fmt.Sprintf("Storybook illustration for page %d", i+1),
		}
	}
	return &Request{
		OrderID: orderID,
		Manuscript: Manuscript{
			Title: fmt.Sprintf("%s and the Adventure Compass", childName),
			Pages: pages,
		},
		Child: ChildProfile{
			Name: childName,
			Age:  5,
			Hair: "blonde",
			Skin: "light",
		},
	}
}
