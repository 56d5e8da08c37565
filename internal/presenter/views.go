package presenter

import (
	"TraderExplorer/internal/domain/models"
	"TraderExplorer/internal/services/analytics"
	"TraderExplorer/internal/viewmodel"
)

// View names.
const (
	ViewOverview   = "overview"
	ViewArchetypes = "archetypes"
	ViewFootprint  = "footprint"
	ViewLabels     = "labels"
	ViewTopics     = "topics"
)

var traderColumn = Column{Title: "Trader", Align: AlignLeft, Mono: true}

// NewOverview renders headline totals and the top-trader table.
func NewOverview(fetcher viewmodel.Fetcher, fm *Formatter, opts ...viewmodel.Option) View {
	return newAdapter(ViewOverview, "Polymarket Trader Explorer", fetcher, analytics.OverviewEndpoint, fm, fillOverview, opts...)
}

func fillOverview(f *Formatter, s *models.OverviewSnapshot, p *Page) {
	p.Cards = []Card{
		{Label: "Total Traders", Value: f.Count(s.TotalTraders)},
		{Label: "Total Volume", Value: f.Amount(s.TotalVolume)},
		{Label: "Total PnL", Value: f.Amount(s.TotalPnL)},
		{Label: "Average ROI", Value: f.PercentOrDash(s.AverageROI)},
	}

	rows := make([][]string, 0, len(s.TopTraders))
	for _, t := range s.TopTraders {
		rows = append(rows, []string{
			t.Trader,
			f.Amount(t.PnL),
			f.PercentOrDash(t.ROI),
			f.AmountOrDash(t.Volume),
			f.TextOrDash(t.Label),
		})
	}
	p.Sections = []Section{{
		Heading: "Top Traders by Profit",
		Table: &Table{
			Columns: []Column{
				traderColumn,
				{Title: "PnL", Align: AlignRight},
				{Title: "ROI", Align: AlignRight},
				{Title: "Volume", Align: AlignRight},
				{Title: "Label", Align: AlignCenter},
			},
			Rows: rows,
		},
	}}
}

// NewArchetypes renders one card per archetype with truncated membership.
func NewArchetypes(fetcher viewmodel.Fetcher, fm *Formatter, opts ...viewmodel.Option) View {
	return newAdapter(ViewArchetypes, "Archetypes", fetcher, analytics.ArchetypesEndpoint, fm, fillArchetypes, opts...)
}

func fillArchetypes(f *Formatter, r *models.ArchetypesResponse, p *Page) {
	p.Sections = make([]Section, 0, len(r.Archetypes))
	for _, a := range r.Archetypes {
		p.Sections = append(p.Sections, Section{
			Heading: a.Name,
			Caption: f.Int(len(a.Members)) + " traders",
			Chips:   Members(a.Members),
		})
	}
}

// NewFootprint renders the footprint vs edge table.
func NewFootprint(fetcher viewmodel.Fetcher, fm *Formatter, opts ...viewmodel.Option) View {
	return newAdapter(ViewFootprint, "Footprint vs Edge", fetcher, analytics.FootprintEndpoint, fm, fillFootprint, opts...)
}

func fillFootprint(f *Formatter, r *models.FootprintScatterResponse, p *Page) {
	rows := make([][]string, 0, len(r.Points))
	for _, pt := range r.Points {
		rows = append(rows, []string{pt.Trader, f.Precise(pt.Footprint), f.Percent(pt.Edge)})
	}
	p.Sections = []Section{{
		Table: &Table{
			Columns: []Column{
				traderColumn,
				{Title: "Footprint", Align: AlignRight},
				{Title: "Edge (ROI)", Align: AlignRight},
			},
			Rows: rows,
		},
	}}
}

// NewLabels renders per-label performance.
func NewLabels(fetcher viewmodel.Fetcher, fm *Formatter, opts ...viewmodel.Option) View {
	return newAdapter(ViewLabels, "Label Audit", fetcher, analytics.LabelsEndpoint, fm, fillLabels, opts...)
}

func fillLabels(f *Formatter, r *models.LabelSummaryResponse, p *Page) {
	rows := make([][]string, 0, len(r.Labels))
	for _, l := range r.Labels {
		rows = append(rows, []string{
			l.Label,
			f.Int(l.Count),
			f.PreciseOrDash(l.AvgPPV),
			f.PercentOrDash(l.ROIMean),
			f.PercentOrDash(l.ROIStd),
		})
	}
	p.Sections = []Section{{
		Table: &Table{
			Columns: []Column{
				{Title: "Label", Align: AlignLeft},
				{Title: "Traders", Align: AlignRight},
				{Title: "Avg PPV", Align: AlignRight},
				{Title: "Mean ROI", Align: AlignRight},
				{Title: "ROI StdDev", Align: AlignRight},
			},
			Rows: rows,
		},
	}}
}

// NewTopics renders a trader's topic profile. It waits for a submitted trader id.
func NewTopics(fetcher viewmodel.Fetcher, fm *Formatter, opts ...viewmodel.Option) View {
	opts = append(opts, viewmodel.WithManualTrigger())
	a := newAdapter(ViewTopics, "Topic Studio", fetcher, analytics.TopicsEndpoint, fm, fillTopics, opts...)
	a.form = &Form{
		Label:       "Trader ID",
		Param:       analytics.TraderIDParam,
		Placeholder: "0x...",
		Action:      "Load Topics",
	}
	return a
}

// TopicParams builds trigger params for the topic view. Empty ids are sent as-is.
func TopicParams(traderID string) viewmodel.Params {
	return viewmodel.Params{analytics.TraderIDParam: traderID}
}

func fillTopics(f *Formatter, t *models.TraderTopicProfile, p *Page) {
	rows := make([][]string, 0, len(t.TopicShares))
	for _, s := range t.TopicShares {
		rows = append(rows, []string{s.Topic, f.Percent(s.Share)})
	}
	p.Sections = []Section{
		{
			Heading: "Trader Metrics",
			Cards: []Card{
				{Label: "Active Topics", Value: f.Int(t.ActiveTopics)},
				{Label: "Entropy", Value: f.Metric(t.TopicEntropy)},
				{Label: "Niche Score", Value: f.Metric(t.NicheScore)},
			},
		},
		{
			Heading: "Topic Shares",
			Table: &Table{
				Columns: []Column{
					{Title: "Topic", Align: AlignLeft},
					{Title: "Share", Align: AlignRight},
				},
				Rows: rows,
			},
		},
	}
}
