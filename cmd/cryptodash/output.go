package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"crypto_dashboard/internal/domain/entity"
	"crypto_dashboard/internal/pkg/utils"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func jsonOutput(w io.Writer, in any) error {
	j, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(j))
	return err
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// printPollStatus reports a failed cycle and the snapshot age on stderr.
func printPollStatus(hasData bool, errMsg string, updatedAt time.Time) {
	if errMsg != "" {
		fmt.Fprintf(os.Stderr, "warning: %s\n", errMsg)
	}
	if hasData {
		fmt.Fprintf(os.Stderr, "updated %s\n", updatedAt.Local().Format(time.RFC1123))
	}
}

func printMarkets(w io.Writer, items []entity.MarketSnapshotItem) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "#\tNAME\tSYMBOL\tPRICE\t24H\tMARKET CAP\tVOLUME")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			utils.FormatInt(it.MarketCapRank),
			it.Name,
			strings.ToUpper(it.Symbol),
			utils.FormatUSD(&it.CurrentPrice),
			utils.FormatPercent(it.PriceChangePercentage24h),
			utils.FormatCompactUSD(it.MarketCap),
			utils.FormatCompactUSD(it.TotalVolume),
		)
	}
	return tw.Flush()
}

func printOverview(w io.Writer, overview entity.MarketOverview) error {
	g := overview.Global
	tw := newTable(w)
	fmt.Fprintf(tw, "Total market cap\t%s\n", utils.FormatCompactUSD(g.TotalMarketCap))
	fmt.Fprintf(tw, "24h volume\t%s\n", utils.FormatCompactUSD(g.TotalVolume))
	fmt.Fprintf(tw, "Market cap 24h\t%s\n", utils.FormatPercent(g.MarketCapChangePercentage24hUSD))
	fmt.Fprintf(tw, "Active cryptocurrencies\t%s\n", utils.FormatInt(g.ActiveCryptocurrencies))
	fmt.Fprintf(tw, "Markets\t%s\n", utils.FormatInt(g.Markets))
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return printMarkets(w, overview.Featured)
}

func printCoin(w io.Writer, view entity.CoinView) error {
	d := view.Detail
	tw := newTable(w)
	fmt.Fprintf(tw, "%s (%s)\tRank %s\n", d.Name, strings.ToUpper(d.Symbol), utils.FormatInt(d.MarketCapRank))
	fmt.Fprintf(tw, "Price\t%s\n", utils.FormatUSD(d.CurrentPrice))
	fmt.Fprintf(tw, "24h change\t%s\n", utils.FormatPercent(d.PriceChangePercentage24h))
	fmt.Fprintf(tw, "24h high / low\t%s / %s\n", utils.FormatUSD(d.High24h), utils.FormatUSD(d.Low24h))
	fmt.Fprintf(tw, "Market cap\t%s\n", utils.FormatCompactUSD(d.MarketCap))
	fmt.Fprintf(tw, "Volume\t%s\n", utils.FormatCompactUSD(d.TotalVolume))
	fmt.Fprintf(tw, "Circulating supply\t%s\n", formatSupply(d.CirculatingSupply))
	fmt.Fprintf(tw, "Total supply\t%s\n", formatSupply(d.TotalSupply))
	fmt.Fprintf(tw, "Max supply\t%s\n", formatSupply(d.MaxSupply))
	if d.Homepage != "" {
		fmt.Fprintf(tw, "Homepage\t%s\n", d.Homepage)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nAbout: %s\n", utils.FirstSentence(d.Description))

	prices := view.Chart.Prices
	if len(prices) == 0 {
		fmt.Fprintf(w, "\nNo %s-day chart data\n", view.Range)
		return nil
	}
	first, last := prices[0], prices[len(prices)-1]
	low, high := first.Price, first.Price
	for _, p := range prices {
		low = min(low, p.Price)
		high = max(high, p.Price)
	}
	layout := "2006-01-02"
	if view.Range.Intraday() {
		layout = "15:04"
	}
	fmt.Fprintf(w, "\n%s-day chart: %d points, %s %s -> %s %s, low %s, high %s\n",
		view.Range, len(prices),
		first.Time.Local().Format(layout), utils.FormatUSDValue(first.Price),
		last.Time.Local().Format(layout), utils.FormatUSDValue(last.Price),
		utils.FormatUSDValue(low), utils.FormatUSDValue(high),
	)
	return nil
}

func printPortfolio(w io.Writer, summary entity.PortfolioSummary) error {
	if summary.HoldingsCount == 0 {
		_, err := fmt.Fprintln(w, "Portfolio is empty")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tSYMBOL\tQUANTITY\tPRICE\tVALUE\tUPDATED")
	for _, h := range summary.Holdings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%g\t%s\t%s\t%s\n",
			h.ID,
			h.Name,
			strings.ToUpper(h.Symbol),
			h.Quantity,
			utils.FormatUSDValue(h.CurrentPrice),
			utils.FormatUSDValue(h.Value()),
			h.LastUpdated.Local().Format(time.DateTime),
		)
	}
	fmt.Fprintf(tw, "\t\t\t\t\t%s\t\n", utils.FormatUSDValue(summary.TotalValueUSD))
	return tw.Flush()
}

func formatSupply(v *float64) string {
	if v == nil {
		return utils.Placeholder
	}
	return strings.TrimPrefix(utils.FormatCompactUSD(v), "$")
}
