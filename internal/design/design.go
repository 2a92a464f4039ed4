// Package design turns the declarative design tokens stored on a site
// section into style directives, animation variants and typography tags.
//
// Every function here is total: a nil design, a partially filled design or
// an unknown token value always yields a usable result and never an error.
package design

// SectionDesign is the design sub-document shared by every styleable
// section. Empty strings and nil pointers mean "inherit the default style".
type SectionDesign struct {
	Colors     *Colors
	Typography *Typography
	Spacing    *Spacing
	Layout     *Layout
	Assets     *Assets
	Animations *Animations
}

type Colors struct {
	Background string
	Text       string
	Border     string
}

type Typography struct {
	FontFamily    string
	FontSize      FontSizes
	FontWeight    FontWeights
	LineHeight    LineHeights
	LetterSpacing LetterSpacings
}

type FontSizes struct {
	Heading    string
	Subheading string
	Body       string
	Small      string
}

// FontWeights has no Small field: small text always uses the inherited weight.
type FontWeights struct {
	Heading    string
	Subheading string
	Body       string
}

type LineHeights struct {
	Heading string
	Body    string
}

type LetterSpacings struct {
	Heading string
	Body    string
}

type Spacing struct {
	PaddingTop    string
	PaddingBottom string
	PaddingLeft   string
	PaddingRight  string
	MarginTop     string
	MarginBottom  string
	Gap           string
}

type Layout struct {
	MaxWidth  string
	TextAlign string
}

type Assets struct {
	BackgroundImage string
}

type Animations struct {
	Entrance *Entrance
	Hover    *Hover
}

type Entrance struct {
	Type     string
	Duration *float64
	Delay    *float64
	Easing   string
}

type Hover struct {
	Scale      *float64
	Rotate     *float64
	TranslateY *float64
	Brightness *float64
}
