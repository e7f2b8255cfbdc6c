package risk

// Limits holds the static buy and sell thresholds. They are fixed for the process lifetime.
type Limits struct {
	BuyThreshold  uint64 `json:"buyThreshold"`
	SellThreshold uint64 `json:"sellThreshold"`
}
