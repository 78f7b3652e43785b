// Package deck defines the entities passed between pipeline stages.
// Each value is produced by exactly one stage and handed downstream as an
// immutable snapshot; nothing here is mutated after it leaves its producer.
package deck

import "fmt"

// SlideOutline is the plan for a single slide: what it should cover and
// which searches the researcher should run for it.
type SlideOutline struct {
	Number  int      `json:"slide_number"`
	Title   string   `json:"title"`
	Queries []string `json:"search_queries"`
	Goal    string   `json:"content_goal"`
}

// Outline is the planner's output for a whole deck.
type Outline struct {
	Topic  string         `json:"topic"`
	Slides []SlideOutline `json:"slides"`
}

// SearchHit is one raw result from the search provider.
type SearchHit struct {
	Content string `json:"content"`
	URL     string `json:"url"`
}

// SourceStatus reports whether a source URL could be fetched.
type SourceStatus string

const (
	StatusLive SourceStatus = "live"
	StatusDead SourceStatus = "dead"
)

// Tier is the coarse credibility bucket derived from the numeric score.
// S is the gold standard, C is dead or untrustworthy.
type Tier string

const (
	TierS Tier = "S"
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
)

// SourceMeta holds the page signals the credibility score is built from.
type SourceMeta struct {
	Author        string `json:"author,omitempty"`
	Date          string `json:"date,omitempty"`
	HasReferences bool   `json:"has_references"`
}

// ValidationResult is the credibility verdict for one URL.
type ValidationResult struct {
	URL    string       `json:"url"`
	Status SourceStatus `json:"status"`
	Score  int          `json:"score"`
	Tier   Tier         `json:"tier"`
	Meta   SourceMeta   `json:"details"`
}

// RankedHit pairs a raw search hit with its credibility verdict.
type RankedHit struct {
	SearchHit
	Validation ValidationResult `json:"validation"`
}

// Fact is one curated statement with its source.
type Fact struct {
	Content   string `json:"content"`
	SourceURL string `json:"source_url"`
}

// ResearchSummary holds the curated facts for one slide. An empty fact
// list is a valid terminal state meaning no credible source was found.
type ResearchSummary struct {
	SlideTopic string `json:"slide_topic"`
	Facts      []Fact `json:"facts"`
}

// VisualKind distinguishes the two visual request variants.
type VisualKind string

const (
	KindChart VisualKind = "chart"
	KindImage VisualKind = "image"
)

// ChartData is the labeled numeric series behind a chart request.
type ChartData struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Unit   string    `json:"unit"`
}

// VisualRequest is a tagged variant over chart and image requests.
// Chart is set only when Kind is KindChart.
type VisualRequest struct {
	Kind   VisualKind `json:"type"`
	Prompt string     `json:"prompt"`
	Chart  *ChartData `json:"data_json,omitempty"`
}

// ChartRequest builds a chart-kind visual request.
func ChartRequest(prompt string, data ChartData) VisualRequest {
	return VisualRequest{Kind: KindChart, Prompt: prompt, Chart: &data}
}

// ImageRequest builds an image-kind visual request.
func ImageRequest(prompt string) VisualRequest {
	return VisualRequest{Kind: KindImage, Prompt: prompt}
}

// Validate checks the internal consistency of a visual request.
func (v VisualRequest) Validate() error {
	switch v.Kind {
	case KindChart:
		if v.Chart == nil {
			return fmt.Errorf("chart request %q has no data", v.Prompt)
		}
		if len(v.Chart.Labels) != len(v.Chart.Values) {
			return fmt.Errorf("chart request %q has %d labels but %d values",
				v.Prompt, len(v.Chart.Labels), len(v.Chart.Values))
		}
		return nil
	case KindImage:
		return nil
	default:
		return fmt.Errorf("unknown visual kind %q", v.Kind)
	}
}

// SlideContent is the final content for one slide.
type SlideContent struct {
	Title        string         `json:"title"`
	Points       []string       `json:"points"`
	SpeakerNotes string         `json:"speaker_notes,omitempty"`
	Sources      []string       `json:"sources,omitempty"`
	Visual       *VisualRequest `json:"visual_request,omitempty"`
	Image        string         `json:"image,omitempty"`
}

// PresentationContent is the writer's output for a whole deck.
type PresentationContent struct {
	FilenameSuggestion string         `json:"filename_suggestion"`
	Slides             []SlideContent `json:"slides"`
}

// HasChart reports whether any slide carries a chart-kind visual request.
func (p PresentationContent) HasChart() bool {
	for _, s := range p.Slides {
		if s.Visual != nil && s.Visual.Kind == KindChart {
			return true
		}
	}
	return false
}

// VisualAsset is a rendered visual ready to embed, produced only after
// the external render call succeeded.
type VisualAsset struct {
	SlideNumber int        `json:"slide_number"`
	Kind        VisualKind `json:"asset_type"`
	Description string     `json:"description"`
	Path        string     `json:"file_path"`
}

// MergeAssets returns a copy of content with each asset's path attached
// to its slide, matched by 1-based slide number. Assets pointing at
// slides outside the deck are dropped.
func MergeAssets(content PresentationContent, assets []VisualAsset) PresentationContent {
	merged := content
	merged.Slides = make([]SlideContent, len(content.Slides))
	copy(merged.Slides, content.Slides)

	for _, a := range assets {
		idx := a.SlideNumber - 1
		if idx < 0 || idx >= len(merged.Slides) {
			continue
		}
		merged.Slides[idx].Image = a.Path
	}
	return merged
}
