package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/shareplan"
	md "github.com/nao1215/markdown"
)

func TimelineMarkdown(points []shareplan.TimelinePoint, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Portfolio Value Over Time (%s)", currency))
	if len(points) == 0 {
		doc.PlainText("No price history available.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignLeft,
		},
		Header: []string{"Date", "Shares", "Price", "Value", "P/L", "Event"},
	}
	for _, p := range points {
		event := p.Reason
		if p.HasMarker {
			if event != "" {
				event += "; "
			}
			event += fmt.Sprintf("reported price %.2f", p.MarkerPrice)
		}
		table.Rows = append(table.Rows, []string{
			p.Date.String(),
			p.Shares.String(),
			fmt.Sprintf("%.2f", p.Price),
			fmt.Sprintf("%.2f", p.Value),
			fmt.Sprintf("%+.2f", p.ProfitLoss),
			event,
		})
	}
	doc.Table(table)

	return doc.String()
}
