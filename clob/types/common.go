package types

// Side is the order direction as the CLOB API spells it.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderType is the order execution type.
type OrderType string

const (
	OrderTypeGTC OrderType = "GTC" // Good-Til-Cancelled: rests in the book
	OrderTypeFOK OrderType = "FOK" // Fill-Or-Kill: full immediate fill or nothing
	OrderTypeFAK OrderType = "FAK" // Fill-And-Kill: partial immediate fill, rest cancelled
	OrderTypeGTD OrderType = "GTD" // Good-Til-Date
)

// Chain is the EVM network the exchange contracts live on.
type Chain int64

const (
	ChainPolygon Chain = 137
	ChainAmoy    Chain = 80002
)

// SignatureType selects the EIP-712 signing scheme for orders.
type SignatureType int

const (
	SignatureTypeEOA        SignatureType = 0 // standard wallet, maker == signer
	SignatureTypeMagic      SignatureType = 1 // Magic Link proxy
	SignatureTypeGnosisSafe SignatureType = 2 // Gnosis Safe proxy wallet (funder address)
)

// AssetType distinguishes collateral (USDC) from conditional token balances.
type AssetType string

const (
	AssetTypeCollateral  AssetType = "COLLATERAL"
	AssetTypeConditional AssetType = "CONDITIONAL"
)

// ApiKeyCreds holds the L2 API credentials.
type ApiKeyCreds struct {
	Key        string `json:"key"`
	Secret     string `json:"secret"`
	Passphrase string `json:"passphrase"`
}
