package printing

import (
	"github.com/byteledger/backend/internal/domain/printing"
)

func samplePages() []printing.Page {
	return []printing.Page{
		{
			Number: 1,
			Width:  612,
			Height: 792,
			Instructions: []printing.Instruction{
				{Kind: printing.InstructionText, Tag: printing.TagHeader, X: 36, Y: 36, W: 300, H: 11.25, Text: "Acme & Sons", Font: printing.Font{Size: 9, Bold: true}, Align: printing.AlignLeft},
				{Kind: printing.InstructionText, Tag: printing.TagMeta, X: 340, Y: 36, W: 236, H: 11.25, Text: "INV-1", Font: printing.Font{Size: 9}, Align: printing.AlignRight},
				{Kind: printing.InstructionRule, Tag: printing.TagTableHeader, X: 36, Y: 60, W: 540, H: 0.5},
				{Kind: printing.InstructionText, Tag: printing.TagItem, X: 36, Y: 64, W: 200, H: 11.25, Text: "Widget <b>large</b>…", Font: printing.Font{Size: 9}},
			},
		},
		{
			Number: 2,
			Width:  612,
			Height: 792,
			Instructions: []printing.Instruction{
				{Kind: printing.InstructionText, Tag: printing.TagFooter, X: 36, Y: 745, W: 540, H: 11.25, Text: "Page 2 of 2", Font: printing.Font{Size: 9}, Align: printing.AlignCenter},
			},
		},
	}
}
