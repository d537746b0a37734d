package domain

// Segment labels of the branch disbursement pivot
const (
	SegmentEnterprise    = "Enterprise"
	SegmentNonEnterprise = "Non-Enterprise"
	SegmentUnknown       = "Unknown"
)

// DisbursementRow is one branch of the monthly disbursement pivot
type DisbursementRow struct {
	Branch        string  `json:"branch"`
	Enterprise    float64 `json:"Enterprise"`
	NonEnterprise float64 `json:"Non-Enterprise"`
	Unknown       float64 `json:"Unknown"`
	Total         float64 `json:"Total"`
}

// DisbursementHeader carries the display title of the pivot
type DisbursementHeader struct {
	Title string `json:"title"`
}

// DisbursementReport is the month-filtered branch pivot
type DisbursementReport struct {
	Header     DisbursementHeader `json:"header"`
	Rows       []DisbursementRow  `json:"rows"`
	GrandTotal float64            `json:"grand_total"`

	Month  string `json:"-"`
	Branch string `json:"-"`
}
