package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/osse101/FateProtocol_Go/internal/bootstrap"
	"github.com/osse101/FateProtocol_Go/internal/domain"
)

// ReportCommand prints protocol totals, open matches and live proposals
type ReportCommand struct{}

func (c *ReportCommand) Name() string {
	return "report"
}

func (c *ReportCommand) Description() string {
	return "Print protocol totals, matches and proposals from the database"
}

func (c *ReportCommand) Run(args []string) error {
	fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	limit := fs.Int("limit", 20, "rows per table")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()
	repos := bootstrap.InitializeRepositories(pool)

	cfg, err := repos.Config.GetConfig(ctx)
	if err != nil {
		return err
	}
	matches, err := repos.Matches.ListMatches(ctx, domain.MatchFilter{Limit: *limit})
	if err != nil {
		return err
	}
	proposals, err := repos.Proposals.ListProposals(ctx, domain.ProposalFilter{Limit: *limit})
	if err != nil {
		return err
	}

	r := newReporter(os.Stdout)
	r.config(cfg)
	r.matches(matches)
	r.proposals(proposals)
	return nil
}

type reporter struct {
	out     io.Writer
	printer *message.Printer
}

func newReporter(out io.Writer) *reporter {
	return &reporter{out: out, printer: message.NewPrinter(language.English)}
}

// amount renders fixed-point base units with thousands separators
func (r *reporter) amount(units uint64) string {
	whole := units / domain.PricePrecision
	frac := units % domain.PricePrecision
	return r.printer.Sprintf("%d", whole) + fmt.Sprintf(".%06d", frac)
}

func (r *reporter) config(cfg *domain.GlobalConfig) {
	fmt.Fprintf(r.out, "\n=== Protocol ===\n")
	if cfg == nil {
		fmt.Fprintln(r.out, "global config not initialized")
		return
	}

	table := tablewriter.NewWriter(r.out)
	table.Header("Setting", "Value")
	_ = table.Append("Paused", fmt.Sprintf("%t", cfg.Paused))
	_ = table.Append("Fee", r.printer.Sprintf("%d bps", cfg.FeeBps))
	_ = table.Append("Treasury", cfg.Treasury)
	_ = table.Append("Proposal stake", r.amount(cfg.ProposalStake))
	_ = table.Append("Total volume", r.amount(cfg.TotalVolume))
	_ = table.Append("Total fees", r.amount(cfg.TotalFees))
	_ = table.Append("Matches", r.printer.Sprintf("%d", cfg.TotalMatches))
	_ = table.Append("Proposals", r.printer.Sprintf("%d", cfg.TotalProposals))
	_ = table.Render()
}

func (r *reporter) matches(matches []domain.Match) {
	fmt.Fprintf(r.out, "\n=== Matches (%d) ===\n", len(matches))
	if len(matches) == 0 {
		return
	}

	table := tablewriter.NewWriter(r.out)
	table.Header("ID", "Market", "Type", "Status", "Players", "Pot", "Outcome", "Resolves")
	for _, m := range matches {
		_ = table.Append(
			m.ID.String()[:8],
			m.MarketSymbol,
			string(m.MarketType),
			string(m.Status),
			fmt.Sprintf("%d/%d", m.CurrentPlayers, m.MaxPlayers),
			r.amount(m.TotalPot),
			m.Outcome.String(),
			m.ResolutionTime.UTC().Format(time.RFC3339),
		)
	}
	_ = table.Render()
}

func (r *reporter) proposals(proposals []domain.Proposal) {
	fmt.Fprintf(r.out, "\n=== Proposals (%d) ===\n", len(proposals))
	if len(proposals) == 0 {
		return
	}

	table := tablewriter.NewWriter(r.out)
	table.Header("ID", "Market", "Status", "Pass", "Fail", "Pass price", "Voting ends")
	for _, p := range proposals {
		_ = table.Append(
			p.ID.String()[:8],
			p.MarketName,
			string(p.Status),
			r.amount(p.PassPool),
			r.amount(p.FailPool),
			r.amount(p.PassPrice),
			p.VotingEndsAt.UTC().Format(time.RFC3339),
		)
	}
	_ = table.Render()
}
