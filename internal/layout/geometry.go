package layout

// TextBox places wrapped text. Coordinates are millimetres from the
// bottom-left corner of the page; Y is the first baseline.
type TextBox struct {
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Width int     `yaml:"width"` // characters per line
	Gap   float64 `yaml:"gap"`   // extra millimetres between lines
	Size  float64 `yaml:"size"`  // points
	Bold  bool    `yaml:"bold,omitempty"`
}

// CharBoxes places one character per pre-printed box, e.g. zip code digits.
type CharBoxes struct {
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Spacing float64 `yaml:"spacing"`
	Size    float64 `yaml:"size"`
}

// EnvelopeGeometry positions the recipient block for a windowed envelope.
// Perforations are guide lines drawn on the back page.
type EnvelopeGeometry struct {
	Address      TextBox   `yaml:"address"`
	Name         TextBox   `yaml:"name"`
	ZipCode      CharBoxes `yaml:"zip_code"`
	Perforations []float64 `yaml:"perforations"`
}
