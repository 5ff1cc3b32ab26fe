package cart

// LineItem is one cart row: a product variant plus a quantity. VariantSKU is
// the natural key; the collection never holds two rows with the same SKU.
// RemoteID stays empty until the backend confirms the row server-side.
type LineItem struct {
	VariantSKU  string `json:"variant_sku"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	ImageURL    string `json:"image_url,omitempty"`
	RemoteID    string `json:"remote_id,omitempty"`
}

// Operation names the mutation that produced an Event.
type Operation string

const (
	OpAdd     Operation = "add"
	OpRemove  Operation = "remove"
	OpUpdate  Operation = "update"
	OpClear   Operation = "clear"
	OpSync    Operation = "sync"
	OpConfirm Operation = "confirm"
)

// Event is broadcast after every mutation so badge counters and toasts can
// react without being wired to the store.
type Event struct {
	Op         Operation
	VariantSKU string
	Count      int
	Subtotal   int64
}
