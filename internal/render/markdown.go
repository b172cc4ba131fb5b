// Package render turns an assembled Report into portable documents. The
// renderers consume the Report value and never reach back into the pipeline.
package render

import (
	"fmt"
	"strings"

	"github.com/deepresearch-ai/deepresearch/internal/report"
)

// Markdown renders the report as a single Markdown document: title, ISO
// date, the synthesized sections in order, and a numbered References list
// matching the bibliography order used for citation numbering.
func Markdown(rep report.Report) string {
	var sb strings.Builder
	sb.WriteString("# ")
	sb.WriteString(rep.Topic)
	sb.WriteString("\n\n")
	sb.WriteString(rep.GeneratedAt.Format("2006-01-02"))
	sb.WriteString("\n\n")

	for _, sec := range rep.Sections {
		sb.WriteString("## ")
		sb.WriteString(sec.Heading)
		sb.WriteString("\n\n")
		sb.WriteString(sec.Body)
		sb.WriteString("\n\n")
	}

	sb.WriteString("## References\n\n")
	for i, src := range rep.Bibliography {
		sb.WriteString(fmt.Sprintf("%d. %s — %s\n", i+1, src.Title, src.URL))
	}
	return sb.String()
}
