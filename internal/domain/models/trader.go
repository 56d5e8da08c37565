package models

// Payloads served by the analytics service. All values are snapshots owned by the
// upstream; the dashboard only decodes and formats them.
// Nullable wire fields are pointers: nil means JSON null or absent.

// TraderSummary is one row of the overview's top-trader table.
type TraderSummary struct {
	Trader string   `json:"trader" validate:"required"`
	PnL    float64  `json:"pnl"`
	ROI    *float64 `json:"roi"`
	Volume *float64 `json:"volume"`
	Label  *string  `json:"label"`
}

// OverviewSnapshot is the body of GET /overview.
// TopTraders keeps the server order (descending PnL).
type OverviewSnapshot struct {
	TotalTraders int             `json:"total_traders" validate:"gte=0"`
	TotalVolume  float64         `json:"total_volume" validate:"gte=0"`
	TotalPnL     float64         `json:"total_pnl"`
	AverageROI   *float64        `json:"average_roi"`
	TopTraders   []TraderSummary `json:"top_traders" validate:"dive"`
}

// Archetype groups traders under a server-computed behavior cluster.
type Archetype struct {
	ID      int      `json:"id"`
	Name    string   `json:"name" validate:"required"`
	Members []string `json:"members"`
}

// ArchetypesResponse is the body of GET /archetypes/map.
type ArchetypesResponse struct {
	Archetypes []Archetype `json:"archetypes" validate:"dive"`
}

// FootprintPoint pairs a trader's market footprint with its realized edge.
type FootprintPoint struct {
	Trader    string  `json:"trader" validate:"required"`
	Footprint float64 `json:"footprint"`
	Edge      float64 `json:"edge"`
}

// FootprintScatterResponse is the body of GET /footprint/scatter.
type FootprintScatterResponse struct {
	Points []FootprintPoint `json:"points" validate:"dive"`
}

// LabelSummary aggregates performance per trader label.
type LabelSummary struct {
	Label   string   `json:"label" validate:"required"`
	Count   int      `json:"count" validate:"gte=0"`
	AvgPPV  *float64 `json:"avg_ppv"`
	ROIMean *float64 `json:"roi_mean"`
	ROIStd  *float64 `json:"roi_std"`
}

// LabelSummaryResponse is the body of GET /labels/summary.
type LabelSummaryResponse struct {
	Labels []LabelSummary `json:"labels" validate:"dive"`
}

// TopicShare is the fraction of a trader's activity in one topic.
type TopicShare struct {
	Topic string  `json:"topic" validate:"required"`
	Share float64 `json:"share" validate:"gte=0,lte=1"`
}

// TraderTopicProfile is the body of GET /topics/trader/{id}.
// Shares are expected to sum to ~1 but are rendered as received.
type TraderTopicProfile struct {
	Trader       string       `json:"trader" validate:"required"`
	ActiveTopics int          `json:"active_topics" validate:"gte=0"`
	TopicEntropy float64      `json:"topic_entropy" validate:"gte=0"`
	NicheScore   float64      `json:"niche_score"`
	TopicShares  []TopicShare `json:"topic_shares" validate:"dive"`
}
