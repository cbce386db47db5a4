package chain

// TxData is an unsigned transaction prepared for client-side signing.
// Numeric fields are decimal strings so they survive JSON round-trips
// without precision loss.
type TxData struct {
	To          string `json:"to"`
	Data        string `json:"data"`
	Value       string `json:"value"`
	ChainID     int64  `json:"chainId,omitempty"`
	Description string `json:"description,omitempty"`
}
