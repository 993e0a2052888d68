package renderer

import "github.com/etnz/shareplan"

// QualityMarkdown renders the data-quality report to a markdown string.
func QualityMarkdown(r *shareplan.QualityReport) string {
	partials := map[string]string{
		"quality_series": "quality_series.md",
	}
	return renderTemplate("quality", "quality.md", partials, r)
}
