package printing

// PaperSize represents the paper size for printing
type PaperSize string

const (
	PaperSizeLetter PaperSize = "LETTER" // 8.5in x 11in
	PaperSizeLegal  PaperSize = "LEGAL"  // 8.5in x 14in
	PaperSizeA4     PaperSize = "A4"     // 210mm x 297mm
	PaperSizeA5     PaperSize = "A5"     // 148mm x 210mm
)

// IsValid checks if the PaperSize is a valid value
func (p PaperSize) IsValid() bool {
	switch p {
	case PaperSizeLetter, PaperSizeLegal, PaperSizeA4, PaperSizeA5:
		return true
	}
	return false
}

// String returns the string representation of PaperSize
func (p PaperSize) String() string {
	return string(p)
}

// Dimensions returns the portrait paper dimensions in points (width, height)
func (p PaperSize) Dimensions() (width, height float64) {
	switch p {
	case PaperSizeLegal:
		return 612, 1008
	case PaperSizeA4:
		return 595.28, 841.89
	case PaperSizeA5:
		return 419.53, 595.28
	default:
		return 612, 792
	}
}

// AllPaperSizes returns all valid PaperSize values
func AllPaperSizes() []PaperSize {
	return []PaperSize{PaperSizeLetter, PaperSizeLegal, PaperSizeA4, PaperSizeA5}
}

// Orientation represents the page orientation for printing
type Orientation string

const (
	OrientationPortrait  Orientation = "PORTRAIT"
	OrientationLandscape Orientation = "LANDSCAPE"
)

// IsValid checks if the Orientation is a valid value
func (o Orientation) IsValid() bool {
	switch o {
	case OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}

// String returns the string representation of Orientation
func (o Orientation) String() string {
	return string(o)
}

// Align is the horizontal alignment of text inside its box
type Align string

const (
	AlignLeft   Align = "L"
	AlignCenter Align = "C"
	AlignRight  Align = "R"
)

// InstructionKind discriminates drawing instructions
type InstructionKind string

const (
	InstructionText InstructionKind = "TEXT"
	InstructionRule InstructionKind = "RULE"
)

// Tag names the block an instruction belongs to. Renderers may use it for styling.
type Tag string

const (
	TagHeader      Tag = "header"
	TagMeta        Tag = "meta"
	TagRecipient   Tag = "recipient"
	TagTableHeader Tag = "table-header"
	TagItem        Tag = "item"
	TagTotals      Tag = "totals"
	TagPayments    Tag = "payments"
	TagNotes       Tag = "notes"
	TagFooter      Tag = "footer"
)
