package entity

// ReceiptHeader holds the business header printed at the top of every
// document.
type ReceiptHeader struct {
	BusinessName string `json:"business_name"`
	Address      string `json:"address,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

// BlockStyle tags a thermal text block so the print bridge can pick font and
// alignment.
type BlockStyle string

const (
	BlockHeader BlockStyle = "header"
	BlockMeta   BlockStyle = "meta"
	BlockItem   BlockStyle = "item"
	BlockTotal  BlockStyle = "total"
	BlockFooter BlockStyle = "footer"
)

// TextBlock is one styled line of a thermal receipt.
type TextBlock struct {
	Style BlockStyle `json:"style"`
	Text  string     `json:"text"`
}

// PrintJob is what the print bridge accepts: a rendered document, a target
// printer and a copy count.
type PrintJob struct {
	PrinterName string `json:"printer_name"`
	Format      string `json:"format"` // "thermal" or "invoice"
	Document    string `json:"document"`
	Copies      int    `json:"copies"`
}
