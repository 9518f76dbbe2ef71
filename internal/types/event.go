package types

type EventType string

func (e EventType) String() string {
	return string(e)
}

const (
	EventCollectionInitialized EventType = "COLLECTION_INITIALIZED"
	EventAssetIssued           EventType = "ASSET_ISSUED"
	EventAssetStaked           EventType = "ASSET_STAKED"
	EventRewardsClaimed        EventType = "REWARDS_CLAIMED"
	EventAssetUnstaked         EventType = "ASSET_UNSTAKED"
)

// StakingEvent is published after an operation has been committed.
// It carries enough of the resulting state to rebuild the ledger from the event stream.
type StakingEvent struct {
	EventID                    string    `json:"event_id"`
	EventType                  EventType `json:"event_type"`
	CollectionID               Identity  `json:"collection_id"`
	Actor                      Identity  `json:"actor"`
	AssetID                    *Identity `json:"asset_id,omitempty"`
	Amount                     uint64    `json:"amount"`
	TotalStaked                uint64    `json:"total_staked"`
	CurrentSupply              uint64    `json:"current_supply"`
	RewardsPerShareAccumulated uint64    `json:"rewards_per_share_accumulated"`
	Timestamp                  int64     `json:"timestamp"`
}
