package analytics

import (
	"net/url"

	"TraderExplorer/internal/viewmodel"
)

// FootprintLimit is the number of scatter points requested.
const FootprintLimit = "500"

// Upstream read endpoints.
var (
	OverviewEndpoint   = viewmodel.Endpoint{Path: "/overview"}
	ArchetypesEndpoint = viewmodel.Endpoint{Path: "/archetypes/map"}
	FootprintEndpoint  = viewmodel.Endpoint{Path: "/footprint/scatter", Query: url.Values{"limit": {FootprintLimit}}}
	LabelsEndpoint     = viewmodel.Endpoint{Path: "/labels/summary"}
	TopicsEndpoint     = viewmodel.Endpoint{Path: "/topics/trader/{id}"}
)

// TraderIDParam names the path parameter of TopicsEndpoint.
const TraderIDParam = "id"
