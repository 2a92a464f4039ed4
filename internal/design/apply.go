package design

import "strings"

// Result is the renderable form of a SectionDesign: utility tags plus an
// inline style map keyed by camel-cased style property.
type Result struct {
	Tags  []string          `json:"tags"`
	Style map[string]string `json:"style"`
}

func emptyResult() Result {
	return Result{Tags: []string{}, Style: map[string]string{}}
}

var spacingScale = map[string]string{
	"none": "0",
	"xs":   "0.5rem",
	"sm":   "1rem",
	"md":   "1.5rem",
	"lg":   "2rem",
	"xl":   "3rem",
	"2xl":  "4rem",
	"3xl":  "6rem",
}

const fullWidthTag = "max-w-full"

var maxWidthTags = map[string]string{
	"sm":   "max-w-screen-sm",
	"md":   "max-w-screen-md",
	"lg":   "max-w-screen-lg",
	"xl":   "max-w-screen-xl",
	"2xl":  "max-w-screen-2xl",
	"full": fullWidthTag,
}

const defaultTextAlignTag = "text-left"

var textAlignTags = map[string]string{
	"left":   "text-left",
	"center": "text-center",
	"right":  "text-right",
}

// SpacingValue resolves a spacing token. Unknown tokens are returned as-is
// so newer token names and raw sizes still render.
func SpacingValue(token string) string {
	if v, ok := spacingScale[token]; ok {
		return v
	}
	return token
}

// ApplyDesignConfig maps each present group of d to style directives. A nil
// design yields an empty result.
func ApplyDesignConfig(d *SectionDesign) Result {
	res := emptyResult()
	if d == nil {
		return res
	}

	if c := d.Colors; c != nil {
		setIf(res.Style, "backgroundColor", c.Background)
		setIf(res.Style, "color", c.Text)
		setIf(res.Style, "borderColor", c.Border)
	}

	if t := d.Typography; t != nil {
		setIf(res.Style, "fontFamily", t.FontFamily)
	}

	if s := d.Spacing; s != nil {
		setSpacing(res.Style, "paddingTop", s.PaddingTop)
		setSpacing(res.Style, "paddingBottom", s.PaddingBottom)
		setSpacing(res.Style, "paddingLeft", s.PaddingLeft)
		setSpacing(res.Style, "paddingRight", s.PaddingRight)
		setSpacing(res.Style, "marginTop", s.MarginTop)
		setSpacing(res.Style, "marginBottom", s.MarginBottom)
		setSpacing(res.Style, "gap", s.Gap)
	}

	if l := d.Layout; l != nil {
		if l.MaxWidth != "" {
			tag, ok := maxWidthTags[l.MaxWidth]
			if !ok {
				tag = fullWidthTag
			}
			res.Tags = append(res.Tags, tag)
		}
		if l.TextAlign != "" {
			tag, ok := textAlignTags[l.TextAlign]
			if !ok {
				tag = defaultTextAlignTag
			}
			res.Tags = append(res.Tags, tag)
		}
	}

	if a := d.Assets; a != nil && a.BackgroundImage != "" {
		res.Style["backgroundImage"] = cssURL(a.BackgroundImage)
		res.Style["backgroundSize"] = "cover"
		res.Style["backgroundPosition"] = "center"
	}

	return res
}

var cssStringEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\a `, "\r", "")

// cssURL quotes raw as a CSS url() string so parentheses, spaces and quotes
// in the address cannot end the value early.
func cssURL(raw string) string {
	return `url("` + cssStringEscaper.Replace(raw) + `")`
}

func setIf(style map[string]string, key, value string) {
	if value != "" {
		style[key] = value
	}
}

func setSpacing(style map[string]string, key, token string) {
	if token != "" {
		style[key] = SpacingValue(token)
	}
}
