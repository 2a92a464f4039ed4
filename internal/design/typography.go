package design

type TextKind string

const (
	TextHeading    TextKind = "heading"
	TextSubheading TextKind = "subheading"
	TextBody       TextKind = "body"
	TextSmall      TextKind = "small"
)

// TextKinds lists every kind in render order.
var TextKinds = []TextKind{TextHeading, TextSubheading, TextBody, TextSmall}

func (k TextKind) Valid() bool {
	switch k {
	case TextHeading, TextSubheading, TextBody, TextSmall:
		return true
	}
	return false
}

// GetTypographyClasses returns the size, weight, leading and tracking tags
// for one kind of text. Weight applies to heading, subheading and body.
// Leading and tracking apply to heading and body.
func GetTypographyClasses(d *SectionDesign, kind TextKind) []string {
	tags := []string{}
	if d == nil || d.Typography == nil {
		return tags
	}
	t := d.Typography

	var size, weight, leading, tracking string
	switch kind {
	case TextHeading:
		size = t.FontSize.Heading
		weight = t.FontWeight.Heading
		leading = t.LineHeight.Heading
		tracking = t.LetterSpacing.Heading
	case TextSubheading:
		size = t.FontSize.Subheading
		weight = t.FontWeight.Subheading
	case TextBody:
		size = t.FontSize.Body
		weight = t.FontWeight.Body
		leading = t.LineHeight.Body
		tracking = t.LetterSpacing.Body
	case TextSmall:
		size = t.FontSize.Small
	default:
		return tags
	}

	if size != "" {
		tags = append(tags, "text-"+size)
	}
	if weight != "" {
		tags = append(tags, "font-"+weight)
	}
	if leading != "" {
		tags = append(tags, "leading-"+leading)
	}
	if tracking != "" {
		tags = append(tags, "tracking-"+tracking)
	}
	return tags
}
