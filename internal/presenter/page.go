package presenter

// Page is a view-neutral render tree. Exactly one of Placeholder, Error or the
// data sections is populated, depending on Status.
type Page struct {
	View        string    `json:"view"`
	Title       string    `json:"title"`
	Status      string    `json:"status"` // idle | loading | ready | failed
	Seq         uint64    `json:"seq"`
	Form        *Form     `json:"form,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
	Error       string    `json:"error,omitempty"`
	Cards       []Card    `json:"cards,omitempty"`
	Sections    []Section `json:"sections,omitempty"`
}

// Card is a labelled headline value.
type Card struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Section groups cards, a table or chips under an optional heading.
type Section struct {
	Heading string   `json:"heading,omitempty"`
	Caption string   `json:"caption,omitempty"`
	Cards   []Card   `json:"cards,omitempty"`
	Table   *Table   `json:"table,omitempty"`
	Chips   []string `json:"chips,omitempty"`
}

// Align is the horizontal alignment of a column.
type Align string

const (
	AlignLeft   Align = "left"
	AlignRight  Align = "right"
	AlignCenter Align = "center"
)

// Column describes one table column.
type Column struct {
	Title string `json:"title"`
	Align Align  `json:"align"`
	Mono  bool   `json:"mono,omitempty"` // trader addresses
}

// Table holds preformatted cells in row-major order.
type Table struct {
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Form is the input of a manually triggered view.
type Form struct {
	Label       string `json:"label"`
	Param       string `json:"param"`
	Value       string `json:"value"`
	Placeholder string `json:"placeholder"`
	Action      string `json:"action"`
}

// Loaded reports whether the page shows data.
func (p Page) Loaded() bool { return p.Status == "ready" }

// Failed reports whether the page shows an error banner.
func (p Page) Failed() bool { return p.Status == "failed" }
