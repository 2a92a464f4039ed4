package design

import "strconv"

const (
	defaultDuration = 0.5
	defaultDelay    = 0.0
	defaultEasing   = "easeOut"
)

type Transition struct {
	Duration float64 `json:"duration"`
	Delay    float64 `json:"delay"`
	Ease     string  `json:"ease"`
}

// AnimationState describes one end of an entrance animation. Nil fields are
// left to the renderer's defaults.
type AnimationState struct {
	Opacity    *float64    `json:"opacity,omitempty"`
	X          *float64    `json:"x,omitempty"`
	Y          *float64    `json:"y,omitempty"`
	Scale      *float64    `json:"scale,omitempty"`
	Transition *Transition `json:"transition,omitempty"`
}

func (s AnimationState) IsEmpty() bool {
	return s.Opacity == nil && s.X == nil && s.Y == nil && s.Scale == nil && s.Transition == nil
}

type Variants struct {
	Hidden  AnimationState `json:"hidden"`
	Visible AnimationState `json:"visible"`
}

type EntranceType string

const (
	EntranceFadeIn     EntranceType = "fadeIn"
	EntranceSlideUp    EntranceType = "slideUp"
	EntranceSlideDown  EntranceType = "slideDown"
	EntranceSlideLeft  EntranceType = "slideLeft"
	EntranceSlideRight EntranceType = "slideRight"
	EntranceScaleUp    EntranceType = "scaleUp"
	EntranceScaleDown  EntranceType = "scaleDown"
	EntranceZoomIn     EntranceType = "zoomIn"
)

type delta struct {
	x, y, scale *float64
}

var entranceDeltas = map[EntranceType]delta{
	EntranceFadeIn:     {},
	EntranceSlideUp:    {y: num(50)},
	EntranceSlideDown:  {y: num(-50)},
	EntranceSlideLeft:  {x: num(50)},
	EntranceSlideRight: {x: num(-50)},
	EntranceScaleUp:    {scale: num(0.8)},
	EntranceScaleDown:  {scale: num(1.2)},
	EntranceZoomIn:     {scale: num(0.5)},
}

func num(v float64) *float64 {
	return &v
}

// GetAnimationVariants derives the hidden and visible states of the
// section's entrance animation. Without an entrance both states are empty.
// An unknown entrance type keeps only the visible transition, so the section
// appears without any movement.
func GetAnimationVariants(d *SectionDesign) Variants {
	if d == nil || d.Animations == nil || d.Animations.Entrance == nil {
		return Variants{}
	}
	e := d.Animations.Entrance

	transition := &Transition{
		Duration: defaultDuration,
		Delay:    defaultDelay,
		Ease:     defaultEasing,
	}
	if e.Duration != nil && *e.Duration >= 0 {
		transition.Duration = *e.Duration
	}
	if e.Delay != nil && *e.Delay >= 0 {
		transition.Delay = *e.Delay
	}
	if e.Easing != "" {
		transition.Ease = e.Easing
	}

	dl, ok := entranceDeltas[EntranceType(e.Type)]
	if !ok {
		return Variants{Visible: AnimationState{Transition: transition}}
	}

	hidden := AnimationState{Opacity: num(0), X: dl.x, Y: dl.y, Scale: dl.scale}
	visible := AnimationState{Opacity: num(1), Transition: transition}
	if dl.x != nil {
		visible.X = num(0)
	}
	if dl.y != nil {
		visible.Y = num(0)
	}
	if dl.scale != nil {
		visible.Scale = num(1)
	}

	return Variants{Hidden: hidden, Visible: visible}
}

// HoverDirective is the target state applied while the pointer is over the
// section. The zero value means no hover effect.
type HoverDirective struct {
	Scale      *float64 `json:"scale,omitempty"`
	Rotate     *float64 `json:"rotate,omitempty"`
	TranslateY *float64 `json:"y,omitempty"`
	Filter     string   `json:"filter,omitempty"`
}

func (h HoverDirective) IsEmpty() bool {
	return h.Scale == nil && h.Rotate == nil && h.TranslateY == nil && h.Filter == ""
}

// GetHoverAnimation fills every hover axis, using the identity value for the
// ones the design leaves out.
func GetHoverAnimation(d *SectionDesign) HoverDirective {
	if d == nil || d.Animations == nil || d.Animations.Hover == nil {
		return HoverDirective{}
	}
	h := d.Animations.Hover

	brightness := 1.0
	if h.Brightness != nil {
		brightness = *h.Brightness
	}

	return HoverDirective{
		Scale:      orDefault(h.Scale, 1),
		Rotate:     orDefault(h.Rotate, 0),
		TranslateY: orDefault(h.TranslateY, 0),
		Filter:     "brightness(" + strconv.FormatFloat(brightness, 'f', -1, 64) + ")",
	}
}

func orDefault(v *float64, def float64) *float64 {
	if v != nil {
		return num(*v)
	}
	return num(def)
}
