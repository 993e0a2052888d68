package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/shareplan"
	md "github.com/nao1215/markdown"
)

func BreakdownMarkdown(b *shareplan.Breakdown) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Breakdown: %s (%s)", b.Metric, b.Currency))

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Date", "Label", "Quantity", "Price", "Amount"},
	}
	for _, r := range b.Rows {
		day := r.Date.String()
		price := fmt.Sprintf("%.2f", r.Price)
		if r.Label == "Total" {
			day, price = "", ""
		}
		table.Rows = append(table.Rows, []string{
			day,
			r.Label,
			r.Quantity.String(),
			price,
			fmt.Sprintf("%.2f", r.Amount),
		})
	}
	doc.Table(table)

	return doc.String()
}
