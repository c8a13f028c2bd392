package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"bestcard/internal/app"
	"bestcard/internal/domain"
	"bestcard/internal/export"
	"bestcard/internal/telegram"
	val "bestcard/internal/validator"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type recommendFlags struct {
	amount   string
	category string
	foreign  bool
	currency string
	prorate  bool
	monthly  string
	xlsxPath string
	asJSON   bool
}

func newRecommendCommand(e *env) *cobra.Command {
	f := &recommendFlags{}

	cmd := &cobra.Command{
		Use:   "recommend [message...]",
		Short: "Rank the cards for one purchase",
		Example: `  bestcard recommend "今晚去超市买菜花了230元"
  bestcard recommend --amount 450 --category travel --foreign --currency EUR
  bestcard recommend "dinner 80 usd" --xlsx ranking.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := f.request(cmd, args)
			if err != nil {
				return err
			}
			if err := val.Struct(req); err != nil {
				return err
			}

			deps, err := app.Build(cmd.Context(), e.cfg, e.logger)
			if err != nil {
				return err
			}
			defer deps.Close()

			resp, err := deps.Service.Recommend(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if f.asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(resp); err != nil {
					return err
				}
			} else {
				printRanking(out, resp)
			}

			if f.xlsxPath != "" {
				data, err := export.RankingXLSX(resp)
				if err != nil {
					return err
				}
				if err := os.WriteFile(f.xlsxPath, data, 0o644); err != nil {
					return fmt.Errorf("write xlsx: %w", err)
				}
				fmt.Fprintf(out, "Ranking written to %s\n", f.xlsxPath)
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.amount, "amount", "", "purchase amount (overrides the message)")
	fl.StringVar(&f.category, "category", "", "spend category (overrides the message)")
	fl.BoolVar(&f.foreign, "foreign", false, "foreign transaction")
	fl.StringVar(&f.currency, "currency", "", "currency code, e.g. USD")
	fl.BoolVar(&f.prorate, "prorate-annual-fee", false, "add 1/12 of the annual fee (needs --monthly)")
	fl.StringVar(&f.monthly, "monthly", "", "monthly spend estimate")
	fl.StringVar(&f.xlsxPath, "xlsx", "", "also write the ranking to this .xlsx file")
	fl.BoolVar(&f.asJSON, "json", false, "print the full response as JSON")
	return cmd
}

func parseDecimalFlag(name, v string) (*decimal.Decimal, error) {
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, fmt.Errorf("--%s: %q is not a number", name, v)
	}
	return &d, nil
}

func (f *recommendFlags) request(cmd *cobra.Command, args []string) (domain.RecommendRequest, error) {
	req := domain.RecommendRequest{
		Currency:                  f.currency,
		IncludeAnnualFeeProration: f.prorate,
	}
	if msg := strings.TrimSpace(strings.Join(args, " ")); msg != "" {
		req.Message = &msg
	}

	var err error
	if req.Amount, err = parseDecimalFlag("amount", f.amount); err != nil {
		return req, err
	}
	if req.MonthlySpendEstimate, err = parseDecimalFlag("monthly", f.monthly); err != nil {
		return req, err
	}
	if f.category != "" {
		req.Category = &f.category
	}
	// только явно переданный --foreign считается override
	if cmd.Flags().Changed("foreign") {
		req.IsForeign = &f.foreign
	}
	return req, nil
}

func printRanking(out io.Writer, resp *domain.RecommendResponse) {
	fmt.Fprintln(out, telegram.FormatReply(resp))
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCARD\tCASHBACK\tFEE\tNET")
	for i, ev := range resp.RankedCards {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, ev.CardName,
			ev.Cashback.StringFixed(2), ev.Fee.StringFixed(2), ev.NetReward.StringFixed(2))
	}
	_ = tw.Flush()
}
