package design

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// FromMap decodes a free-form design document, as read from the document
// store or a seed file, into a SectionDesign. Values of the wrong shape are
// dropped. A nil map decodes to nil.
func FromMap(m map[string]interface{}) *SectionDesign {
	if m == nil {
		return nil
	}

	d := &SectionDesign{}

	if colors, ok := mapAt(m, "colors"); ok {
		d.Colors = &Colors{
			Background: stringAt(colors, "background"),
			Text:       stringAt(colors, "text"),
			Border:     stringAt(colors, "border"),
		}
	}

	if typo, ok := mapAt(m, "typography"); ok {
		t := &Typography{FontFamily: stringAt(typo, "fontFamily")}
		if sizes, ok := mapAt(typo, "fontSize"); ok {
			t.FontSize = FontSizes{
				Heading:    stringAt(sizes, "heading"),
				Subheading: stringAt(sizes, "subheading"),
				Body:       stringAt(sizes, "body"),
				Small:      stringAt(sizes, "small"),
			}
		}
		if weights, ok := mapAt(typo, "fontWeight"); ok {
			t.FontWeight = FontWeights{
				Heading:    stringAt(weights, "heading"),
				Subheading: stringAt(weights, "subheading"),
				Body:       stringAt(weights, "body"),
			}
		}
		if heights, ok := mapAt(typo, "lineHeight"); ok {
			t.LineHeight = LineHeights{
				Heading: stringAt(heights, "heading"),
				Body:    stringAt(heights, "body"),
			}
		}
		if tracking, ok := mapAt(typo, "letterSpacing"); ok {
			t.LetterSpacing = LetterSpacings{
				Heading: stringAt(tracking, "heading"),
				Body:    stringAt(tracking, "body"),
			}
		}
		d.Typography = t
	}

	if spacing, ok := mapAt(m, "spacing"); ok {
		d.Spacing = &Spacing{
			PaddingTop:    stringAt(spacing, "paddingTop"),
			PaddingBottom: stringAt(spacing, "paddingBottom"),
			PaddingLeft:   stringAt(spacing, "paddingLeft"),
			PaddingRight:  stringAt(spacing, "paddingRight"),
			MarginTop:     stringAt(spacing, "marginTop"),
			MarginBottom:  stringAt(spacing, "marginBottom"),
			Gap:           stringAt(spacing, "gap"),
		}
	}

	if layout, ok := mapAt(m, "layout"); ok {
		d.Layout = &Layout{
			MaxWidth:  stringAt(layout, "maxWidth"),
			TextAlign: stringAt(layout, "textAlign"),
		}
	}

	if assets, ok := mapAt(m, "assets"); ok {
		d.Assets = &Assets{BackgroundImage: stringAt(assets, "backgroundImage")}
	}

	if anims, ok := mapAt(m, "animations"); ok {
		a := &Animations{}
		if entrance, ok := mapAt(anims, "entrance"); ok {
			a.Entrance = &Entrance{
				Type:     stringAt(entrance, "type"),
				Duration: floatAt(entrance, "duration"),
				Delay:    floatAt(entrance, "delay"),
				Easing:   stringAt(entrance, "easing"),
			}
		}
		if hover, ok := mapAt(anims, "hover"); ok {
			a.Hover = &Hover{
				Scale:      floatAt(hover, "scale"),
				Rotate:     floatAt(hover, "rotate"),
				TranslateY: floatAt(hover, "translateY"),
				Brightness: floatAt(hover, "brightness"),
			}
		}
		d.Animations = a
	}

	return d
}

func mapAt(m map[string]interface{}, key string) (map[string]interface{}, bool) {
	switch v := m[key].(type) {
	case map[string]interface{}:
		return v, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, val := range v {
			if ks, ok := k.(string); ok {
				out[ks] = val
			}
		}
		return out, true
	}
	return nil, false
}

// stringAt reads a token. Numbers are accepted and rendered without a
// trailing ".0" so a weight saved as 700 reads back as "700".
func stringAt(m map[string]interface{}, key string) string {
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	}
	return ""
}

func floatAt(m map[string]interface{}, key string) *float64 {
	var f float64
	switch v := m[key].(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	// NaN and infinities have no CSS or JSON form.
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
