package printing

import (
	"github.com/byteledger/backend/internal/domain/shared"
)

// Margins represents the page margins in points
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// NewMargins creates a new Margins value object
func NewMargins(top, right, bottom, left float64) (Margins, error) {
	if top < 0 || right < 0 || bottom < 0 || left < 0 {
		return Margins{}, shared.NewDomainError("INVALID_MARGINS", "Margins cannot be negative")
	}
	if top > 144 || right > 144 || bottom > 144 || left > 144 {
		return Margins{}, shared.NewDomainError("INVALID_MARGINS", "Margins cannot exceed 144pt")
	}
	return Margins{Top: top, Right: right, Bottom: bottom, Left: left}, nil
}

// UniformMargins returns the same margin on every side
func UniformMargins(pt float64) Margins {
	return Margins{Top: pt, Right: pt, Bottom: pt, Left: pt}
}

// DefaultMargins returns half-inch margins
func DefaultMargins() Margins {
	return UniformMargins(36)
}

// Font describes the face used for a text instruction
type Font struct {
	Size float64 `json:"size"`
	Bold bool    `json:"bold,omitempty"`
}

// Instruction is one positioned drawing operation.
//
// Text is drawn inside the box (X, Y, W, H) with the given alignment; Y is the top
// of the line box. A rule is a horizontal line from X to X+W at Y.
type Instruction struct {
	Kind  InstructionKind `json:"kind"`
	Tag   Tag             `json:"tag"`
	X     float64         `json:"x"`
	Y     float64         `json:"y"`
	W     float64         `json:"w"`
	H     float64         `json:"h"`
	Text  string          `json:"text,omitempty"`
	Font  Font            `json:"font"`
	Align Align           `json:"align,omitempty"`
}

// Page is one fixed-size canvas
type Page struct {
	Number       int           `json:"number"`
	Width        float64       `json:"width"`
	Height       float64       `json:"height"`
	Instructions []Instruction `json:"instructions"`
}

// Texts returns the text of every instruction with the given tag, in drawing order
func (p Page) Texts(tag Tag) []string {
	var out []string
	for _, in := range p.Instructions {
		if in.Kind == InstructionText && in.Tag == tag {
			out = append(out, in.Text)
		}
	}
	return out
}
