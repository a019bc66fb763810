package indexer

// AccountRecord is one row of the accounts table as exposed to API clients.
//
// Account ids are dot-delimited paths ending in the network name
// (e.g. "app.alice.testnet"). Receipt references are null for accounts
// that were created at genesis or that still exist.
type AccountRecord struct {
	AccountID          string  `json:"account_id"`
	CreatedByReceiptID *string `json:"created_by_receipt_id"`
	DeletedByReceiptID *string `json:"deleted_by_receipt_id"`

	// Stored as NUMERIC(20,0) in the backend. Null when absent or when the
	// stored value does not fit a signed 128-bit integer.
	LastUpdateBlockHeight *Int128 `json:"last_update_block_height"`
}

// AccountColumns lists the selected columns in scan order.
var AccountColumns = []string{
	"account_id",
	"created_by_receipt_id",
	"deleted_by_receipt_id",
	"last_update_block_height",
}
