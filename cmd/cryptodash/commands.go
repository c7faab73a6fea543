package main

import (
	"fmt"
	"os"
	"strconv"

	"crypto_dashboard/internal/app/service"
	"crypto_dashboard/internal/domain/entity"
	"crypto_dashboard/internal/pkg/utils"

	"github.com/urfave/cli/v2"
)

var marketsCommand = &cli.Command{
	Name:  "markets",
	Usage: "list assets by market cap",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "per-page", Value: 50, Usage: "number of assets (1-250)"},
		&cli.IntFlag{Name: "page", Value: 1, Usage: "result page"},
		&cli.StringFlag{Name: "order", Value: "market_cap_desc", Usage: "upstream sort order"},
		&cli.StringFlag{Name: "vs-currency", Usage: "reference currency, defaults to the configured one"},
		&cli.StringFlag{Name: "search", Usage: "filter by name or symbol"},
	},
	Action: withDeps(func(c *cli.Context, deps *runtimeDeps) error {
		query, err := deps.markets.DefaultQuery().WithOverrides(map[string]string{
			entity.QueryPerPage:    strconv.Itoa(c.Int("per-page")),
			entity.QueryPage:       strconv.Itoa(c.Int("page")),
			entity.QueryOrder:      c.String("order"),
			entity.QueryVsCurrency: c.String("vs-currency"),
		})
		if err != nil {
			return err
		}

		state := deps.markets.Markets(c.Context, query)
		if !state.HasData {
			return fmt.Errorf("market data unavailable: %s", state.Error)
		}
		items := service.FilterMarkets(state.Data, c.String("search"))
		if jsonOut {
			return jsonOutput(os.Stdout, items)
		}
		printPollStatus(state.HasData, state.Error, state.UpdatedAt)
		return printMarkets(os.Stdout, items)
	}),
}

var overviewCommand = &cli.Command{
	Name:  "overview",
	Usage: "show global market stats and featured assets",
	Action: withDeps(func(c *cli.Context, deps *runtimeDeps) error {
		state := deps.markets.Overview(c.Context)
		if !state.HasData {
			return fmt.Errorf("market overview unavailable: %s", state.Error)
		}
		if jsonOut {
			return jsonOutput(os.Stdout, state.Data)
		}
		printPollStatus(state.HasData, state.Error, state.UpdatedAt)
		return printOverview(os.Stdout, state.Data)
	}),
}

var coinCommand = &cli.Command{
	Name:      "coin",
	Usage:     "show the detail and price chart of one asset",
	ArgsUsage: "<id>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "days", Usage: "chart range: 1, 7, 30 or 365, defaults to market.defaultTimeRange"},
	},
	Action: withDeps(func(c *cli.Context, deps *runtimeDeps) error {
		if c.NArg() != 1 {
			return cli.ShowSubcommandHelp(c)
		}
		days := c.String("days")
		if days == "" {
			days = deps.cfg.Market.DefaultTimeRange
		}
		timeRange, err := entity.ParseTimeRange(days)
		if err != nil {
			return err
		}
		view, err := deps.markets.Coin(c.Context, c.Args().First(), timeRange)
		if err != nil {
			return err
		}
		if jsonOut {
			return jsonOutput(os.Stdout, view)
		}
		return printCoin(os.Stdout, view)
	}),
}

var portfolioCommand = &cli.Command{
	Name:  "portfolio",
	Usage: "manage the persisted portfolio",
	Subcommands: []*cli.Command{
		{
			Name:   "list",
			Usage:  "list holdings",
			Action: withDeps(listPortfolio),
		},
		{
			Name:      "add",
			Usage:     "add one unit of an asset from the current markets list",
			ArgsUsage: "<id>",
			Action: withDeps(func(c *cli.Context, deps *runtimeDeps) error {
				if c.NArg() != 1 {
					return cli.ShowSubcommandHelp(c)
				}
				item, err := deps.markets.FindInMarkets(c.Context, c.Args().First())
				if err != nil {
					return err
				}
				entry, err := deps.portfolio.AddOrIncrement(item)
				if err != nil {
					return err
				}
				fmt.Printf("%s: quantity %g at %s\n", entry.Name, entry.Quantity, utils.FormatUSDValue(entry.CurrentPrice))
				return nil
			}),
		},
		{
			Name:      "remove",
			Usage:     "remove a holding",
			ArgsUsage: "<id>",
			Action: withDeps(func(c *cli.Context, deps *runtimeDeps) error {
				if c.NArg() != 1 {
					return cli.ShowSubcommandHelp(c)
				}
				return deps.portfolio.Remove(c.Args().First())
			}),
		},
		{
			Name:      "set",
			Usage:     "set the quantity of a holding",
			ArgsUsage: "<id> <quantity>",
			Action: withDeps(func(c *cli.Context, deps *runtimeDeps) error {
				if c.NArg() != 2 {
					return cli.ShowSubcommandHelp(c)
				}
				id := c.Args().Get(0)
				if _, ok := deps.portfolio.Get(id); !ok {
					return fmt.Errorf("%w: %s", entity.ErrHoldingNotFound, id)
				}
				if err := deps.portfolio.SetQuantity(id, c.Args().Get(1)); err != nil {
					return err
				}
				h, ok := deps.portfolio.Get(id)
				if !ok {
					return fmt.Errorf("%w: %s", entity.ErrHoldingNotFound, id)
				}
				fmt.Printf("%s: quantity %g\n", h.Name, h.Quantity)
				return nil
			}),
		},
		{
			Name:   "clear",
			Usage:  "remove every holding",
			Action: withDeps(func(c *cli.Context, deps *runtimeDeps) error { return deps.portfolio.Clear() }),
		},
		{
			Name:  "total",
			Usage: "print the total value at the last known prices",
			Action: withDeps(func(c *cli.Context, deps *runtimeDeps) error {
				fmt.Println(utils.FormatUSDValue(deps.portfolio.TotalValue()))
				return nil
			}),
		},
	},
	Action: withDeps(listPortfolio),
}

func listPortfolio(c *cli.Context, deps *runtimeDeps) error {
	summary := deps.portfolio.Summary()
	if jsonOut {
		return jsonOutput(os.Stdout, summary)
	}
	return printPortfolio(os.Stdout, summary)
}
