// Package discord posts settlement announcements to a Discord channel.
package discord

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/osse101/FateProtocol_Go/internal/domain"
	"github.com/osse101/FateProtocol_Go/internal/event"
	"github.com/osse101/FateProtocol_Go/internal/logger"
)

// Announcer turns settlement events into Discord embeds
type Announcer struct {
	sender  Sender
	printer *message.Printer
	caser   cases.Caser
	now     func() time.Time

	mu sync.Mutex // guards printer and caser, neither is safe for concurrent use
}

// NewAnnouncer creates an announcer that posts through sender
func NewAnnouncer(sender Sender) *Announcer {
	return &Announcer{
		sender:  sender,
		printer: message.NewPrinter(language.English),
		caser:   cases.Title(language.English),
		now:     time.Now,
	}
}

// Register subscribes to the events worth announcing
func (a *Announcer) Register(bus event.Bus) {
	bus.Subscribe(event.MatchResolved, a.handleMatchResolved)
	bus.Subscribe(event.ProposalCreated, a.handleProposalCreated)
	bus.Subscribe(event.ProposalResolved, a.handleProposalResolved)
	bus.Subscribe(event.ProposalExecuted, a.handleProposalExecuted)
	bus.Subscribe(event.MarketListed, a.handleMarketListed)
}

func (a *Announcer) handleMatchResolved(ctx context.Context, evt event.Event) error {
	p, err := event.DecodePayload[domain.MatchResolvedPayload](evt.Payload)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgPayloadDecodeError, "type", evt.Type, "error", err)
		return nil
	}
	return a.post(ctx, evt.Type, a.matchResolvedEmbed(p))
}

func (a *Announcer) handleProposalCreated(ctx context.Context, evt event.Event) error {
	p, err := event.DecodePayload[domain.Proposal](evt.Payload)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgPayloadDecodeError, "type", evt.Type, "error", err)
		return nil
	}
	return a.post(ctx, evt.Type, a.proposalCreatedEmbed(p))
}

func (a *Announcer) handleProposalResolved(ctx context.Context, evt event.Event) error {
	p, err := event.DecodePayload[domain.ProposalResolvedPayload](evt.Payload)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgPayloadDecodeError, "type", evt.Type, "error", err)
		return nil
	}
	return a.post(ctx, evt.Type, a.proposalResolvedEmbed(p))
}

func (a *Announcer) handleProposalExecuted(ctx context.Context, evt event.Event) error {
	p, err := event.DecodePayload[domain.ProposalExecutedPayload](evt.Payload)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgPayloadDecodeError, "type", evt.Type, "error", err)
		return nil
	}
	return a.post(ctx, evt.Type, a.proposalExecutedEmbed(p))
}

func (a *Announcer) handleMarketListed(ctx context.Context, evt event.Event) error {
	m, err := event.DecodePayload[domain.Market](evt.Payload)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgPayloadDecodeError, "type", evt.Type, "error", err)
		return nil
	}
	return a.post(ctx, evt.Type, a.marketListedEmbed(m))
}

// post never fails the bus: a returned error would make the publisher replay
// the event to every other subscriber.
func (a *Announcer) post(ctx context.Context, t event.Type, embed *discordgo.MessageEmbed) error {
	log := logger.FromContext(ctx)
	if err := a.sender.Send(ctx, embed); err != nil {
		log.Warn(LogMsgAnnouncementFailed, "type", t, "error", err)
		return nil
	}
	log.Debug(LogMsgAnnouncementSent, "type", t)
	return nil
}

func (a *Announcer) matchResolvedEmbed(p domain.MatchResolvedPayload) *discordgo.MessageEmbed {
	color := colorGreen
	if p.Outcome.IsRefund() {
		color = colorGrey
	}

	return a.embed(
		fmt.Sprintf("Match Settled: %s", p.MarketSymbol),
		fmt.Sprintf("Outcome: **%s**", a.outcomeLabel(p.Outcome)),
		color,
		field("Entry Price", a.price(p.StartPrice), true),
		field("Exit Price", a.price(p.EndPrice), true),
		field("Change", a.signedPrice(p.PriceChange), true),
		field("Total Pot", a.amount(p.TotalPot), true),
		field("Match", p.MatchID.String(), false),
	)
}

func (a *Announcer) proposalCreatedEmbed(p domain.Proposal) *discordgo.MessageEmbed {
	return a.embed(
		fmt.Sprintf("New Proposal: %s", p.MarketName),
		p.Description,
		colorBlue,
		field("Proposer", p.ProposerID, true),
		field("Bond", a.amount(p.Stake), true),
		field("Voting Ends", p.VotingEndsAt.UTC().Format(time.RFC1123), false),
		field("Proposal", p.ID.String(), false),
	)
}

func (a *Announcer) proposalResolvedEmbed(p domain.ProposalResolvedPayload) *discordgo.MessageEmbed {
	color := colorRed
	if p.Status == domain.ProposalStatusPassed {
		color = colorGreen
	}

	return a.embed(
		fmt.Sprintf("Proposal %s: %s", p.Status, p.MarketName),
		fmt.Sprintf("The council has spoken. **%s** wins.", a.winningSide(p.Status)),
		color,
		field("Pass Pool", a.amount(p.PassPool), true),
		field("Fail Pool", a.amount(p.FailPool), true),
		field("Pass Price", bps(p.PassPrice), true),
		field("Fail Price", bps(p.FailPrice), true),
		field("Proposal", p.ProposalID.String(), false),
	)
}

func (a *Announcer) proposalExecutedEmbed(p domain.ProposalExecutedPayload) *discordgo.MessageEmbed {
	return a.embed(
		fmt.Sprintf("Proposal Executed: %s", p.MarketName),
		fmt.Sprintf("Proposal by %s has been executed.", p.ProposerID),
		colorPurple,
		field("Proposer Bonus", a.amount(p.ProposerBonus), true),
		field("Executed", p.ExecutedAt.UTC().Format(time.RFC1123), true),
		field("Proposal", p.ProposalID.String(), false),
	)
}

func (a *Announcer) marketListedEmbed(m domain.Market) *discordgo.MessageEmbed {
	proposal := "-"
	if m.ProposalID != nil {
		proposal = m.ProposalID.String()
	}
	return a.embed(
		fmt.Sprintf("Market Listed: %s", m.Symbol),
		"Matches can now be opened on this market.",
		colorPurple,
		field("Feed", m.FeedID, false),
		field("Proposal", proposal, false),
	)
}

func (a *Announcer) embed(title, description string, color int, fields ...*discordgo.MessageEmbedField) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Fields:      fields,
		Timestamp:   a.now().UTC().Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: footerText},
	}
}

func field(name, value string, inline bool) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{Name: name, Value: value, Inline: inline}
}

func (a *Announcer) outcomeLabel(o domain.Outcome) string {
	if side, ok := o.Winner(); ok {
		return string(side)
	}
	if o.IsRefund() {
		reason := strings.ReplaceAll(string(o.RefundReason()), "_", " ")
		if reason == "" {
			return "Refund"
		}
		a.mu.Lock()
		defer a.mu.Unlock()
		return fmt.Sprintf("Refund (%s)", a.caser.String(reason))
	}
	return string(domain.OutcomeKindPending)
}

func (a *Announcer) winningSide(status domain.ProposalStatus) domain.OutcomeSide {
	if status == domain.ProposalStatusPassed {
		return domain.OutcomePass
	}
	return domain.OutcomeFail
}

// amount renders base units with thousands separators
func (a *Announcer) amount(v uint64) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.printer.Sprintf("%d", v)
}

// price renders a PricePrecisionDecimals fixed-point value with two decimals
func (a *Announcer) price(v uint64) string {
	whole := v / domain.PricePrecision
	cents := (v % domain.PricePrecision) / (domain.PricePrecision / 100)

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.printer.Sprintf("%d", whole) + fmt.Sprintf(".%02d", cents)
}

func (a *Announcer) signedPrice(v int64) string {
	if v < 0 {
		return "-" + a.price(uint64(-v))
	}
	return "+" + a.price(uint64(v))
}

// bps renders basis points as a percentage
func bps(v uint64) string {
	return fmt.Sprintf("%d.%02d%%", v/100, v%100)
}
