package variable

import (
	"hash/fnv"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Colorer assigns a display colour token to a keyword.
type Colorer interface {
	ColorFor(keyword string) string
}

// ColorFunc adapts a function to the Colorer interface.
type ColorFunc func(keyword string) string

// ColorFor calls f.
func (f ColorFunc) ColorFor(keyword string) string { return f(keyword) }

// goldenAngle spreads consecutive hues around the colour wheel.
const goldenAngle = 137.50776405003785

// HueColorer derives a stable label colour from the keyword text.
type HueColorer struct {
	saturation float64
	value      float64
}

// NewHueColorer creates a HueColorer with label friendly saturation and value.
func NewHueColorer() HueColorer {
	return HueColorer{saturation: 0.55, value: 0.85}
}

// ColorFor returns a hex colour for keyword. Keywords differing only in case
// share a colour.
func (c HueColorer) ColorFor(keyword string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(keyword)))
	hue := math.Mod(float64(h.Sum32())*goldenAngle, 360)
	return colorful.Hsv(hue, c.saturation, c.value).Hex()
}
