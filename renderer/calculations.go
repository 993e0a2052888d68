package renderer

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/etnz/shareplan"
	md "github.com/nao1215/markdown"
)

func CalculationsMarkdown(c *shareplan.Calculations) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Portfolio Calculations")
	doc.PlainText(fmt.Sprintf("Current Price: %.2f %s (%s, %s)",
		c.CurrentPrice.Price, c.Currency, c.CurrentPrice.Source, c.CurrentPrice.Date))

	doc.H2("Investment")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
		},
		Header: []string{
			md.Bold("Total Investment"),
			md.Bold(c.TotalInvestment.String()),
		},
		Rows: [][]string{
			{shareplan.UserInvestment.String(), c.UserInvestment.String()},
			{shareplan.CompanyMatch.String(), c.CompanyMatch.String()},
			{shareplan.FreeShares.String(), c.FreeShares.String()},
			{shareplan.DividendIncome.String(), c.DividendIncome.String()},
		},
	})

	doc.H2("Value and Return")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{
			md.Bold("Total Value"),
			md.Bold(c.TotalValue.String()),
			"",
		},
		Rows: [][]string{
			{"Current Value", c.CurrentValue.String(), ""},
			{"Total Sold", c.TotalSold.String(), ""},
			{"Return on Own Investment", c.TotalReturn.SignedString(), c.ReturnPercentage.String()},
			{"Return on Total Investment", c.ReturnOnTotalInvestment.SignedString(), c.ReturnOnTotalPercentage.String()},
			{"Annualized (own investment)", c.XIRRUserInvestment.String(), ""},
			{"Annualized (total investment)", c.XIRRTotalInvestment.String(), ""},
		},
	})

	doc.H2("Shares")
	shares := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
		},
		Header: []string{"Shares", "Quantity"},
		Rows: [][]string{
			{"Available", c.AvailableShares.String()},
			{"Blocked", c.BlockedShares.String()},
		},
	}
	years := make([]int, 0, len(c.BlockedByYear))
	for y := range c.BlockedByYear {
		years = append(years, y)
	}
	sort.Ints(years)
	for _, y := range years {
		label := fmt.Sprintf("Blocked until %d", y)
		if y == 0 {
			label = "Blocked, unlock date unknown"
		}
		shares.Rows = append(shares.Rows, []string{label, c.BlockedByYear[y].String()})
	}
	doc.Table(shares)

	if len(c.Diagnostics) > 0 {
		doc.H2("Warnings")
		for _, d := range c.Diagnostics {
			doc.BulletList(d.String())
		}
	}

	return doc.String()
}
