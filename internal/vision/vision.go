package vision

import (
	"context"
	"io"
)

// NameplatePrompt is the shared prompt used by all vision adapters.
const NameplatePrompt = `This photo shows the rating plate of a piece of dental equipment.
Read it and answer with exactly these lines, leaving a value empty when it is
not printed on the plate:
manufacturer: <name>
model: <model or catalog number>
serial: <serial number>
manufactured: <date of manufacture>`

type Analyzer interface {
	Analyze(ctx context.Context, r io.Reader, mimeType string) (*Nameplate, error)
}

// Nameplate holds the fields read off an equipment rating plate.
type Nameplate struct {
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	Serial       string `json:"serial"`
	Manufactured string `json:"manufactured"`
	Raw          string `json:"raw"`
}

// Empty reports whether nothing useful was read.
func (n *Nameplate) Empty() bool {
	return n.Manufacturer == "" && n.Model == "" && n.Serial == ""
}
