package usecase

// Reference number prefixes.
const (
	RefPrefixTransaction = "TXN"
	RefPrefixTransfer    = "TRF"

	// Account numbers share the reference format with an ACC prefix.
	accountNumberPrefix = "ACC"
)

// Pagination defaults for list operations.
const (
	defaultPageSize = 20
	maxPageSize     = 100
)
