package lookup

// Type identifies which supplemental sheet a lookup record came from.
type Type string

const (
	// TypePN marks records from the PN sheet. PN items are implicitly mandatory.
	TypePN Type = "PN"
	// TypeDR marks records from the DR sheet.
	TypeDR Type = "DR"
	// TypeNA marks the placeholder row for barcodes with no PN/DR match.
	TypeNA Type = "N/A"
)

// Record is a single supplemental engineering attribute row keyed by barcode.
type Record struct {
	Barcode     string `json:"barcode"`
	Type        Type   `json:"type"`
	ID          string `json:"id"`
	Info        string `json:"info"`
	Location    string `json:"location"`
	Requirement string `json:"requirement"`
}

// MainRow is one row of the main barcode sheet.
type MainRow struct {
	Barcode   string `json:"barcode"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	Request   string `json:"request"`
}

// MergedRow joins a main-sheet row with one matching lookup record (or the
// N/A placeholder when nothing matched).
type MergedRow struct {
	Barcode     string `json:"barcode"`
	Latitude    string `json:"latitude"`
	Longitude   string `json:"longitude"`
	Request     string `json:"request"`
	Type        Type   `json:"type"`
	ID          string `json:"id"`
	Info        string `json:"info"`
	Location    string `json:"location"`
	Requirement string `json:"requirement"`
}

// Sources names the three tabular inputs of a merge.
type Sources struct {
	Main string `json:"main"`
	PN   string `json:"pn"`
	DR   string `json:"dr"`
}
