package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"casinoledger/internal/games"
	"casinoledger/internal/repos/accounts"
	"casinoledger/internal/services/auth"
	"casinoledger/internal/services/ledger"
)

// API abstracts the wire client so the poll loop is testable.
type API interface {
	GetUpdates(ctx context.Context, offset int64) ([]Update, error)
	SendMessage(ctx context.Context, chatID int64, text string) error
}

type Poller struct {
	client API
	auth   *auth.AuthService
	ledger *ledger.LedgerService
}

func NewPoller(client API, authSvc *auth.AuthService, ledgerSvc *ledger.LedgerService) *Poller {
	return &Poller{client: client, auth: authSvc, ledger: ledgerSvc}
}

// Run long-polls until ctx is canceled. Transient poll failures back off
// and retry; a canceled context is the only exit.
func (p *Poller) Run(ctx context.Context) error {
	var offset int64

	for {
		updates, err := p.client.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			slog.Error("bot poll failed", "error", err)

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(3 * time.Second):
			}

			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}

			if upd.Message == nil || upd.Message.From == nil {
				continue
			}

			p.handleMessage(ctx, upd.Message)
		}
	}
}

func (p *Poller) handleMessage(ctx context.Context, msg *Message) {
	reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	reply, err := p.dispatch(reqCtx, msg)
	if err != nil {
		slog.Error("bot command failed",
			"external_id", msg.From.ID, "text", msg.Text, "error", err)

		reply = "Something went wrong, please try again later."
	}

	err = p.client.SendMessage(reqCtx, msg.Chat.ID, reply)
	if err != nil {
		slog.Error("bot reply failed", "chat_id", msg.Chat.ID, "error", err)
	}
}

func (p *Poller) dispatch(ctx context.Context, msg *Message) (string, error) {
	acc, err := p.auth.GetOrCreateByExternalID(ctx, msg.From.ID, auth.Profile{
		FirstName:        msg.From.FirstName,
		LastName:         msg.From.LastName,
		ExternalUsername: msg.From.Username,
	})
	if err != nil {
		return "", fmt.Errorf("resolve account: %w", err)
	}

	cmd, arg := parseCommand(msg.Text)

	switch cmd {
	case "/start":
		return fmt.Sprintf("Welcome to the casino! 🎲\nYour balance: %d coins.\nCommands: /slots <stake>, /balance, /top", acc.Balance), nil

	case "/balance":
		balance, err := p.ledger.Balance(ctx, acc.ID)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("💰 Your balance: %d coins", balance), nil

	case "/slots":
		return p.playSlots(ctx, acc.ID, arg)

	case "/top":
		return p.leaderboard(ctx)

	default:
		return "Commands: /slots <stake>, /balance, /top", nil
	}
}

func (p *Poller) playSlots(ctx context.Context, accountID int64, arg string) (string, error) {
	stake, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return "Usage: /slots <stake>", nil
	}

	res, err := p.ledger.SettleBet(ctx, accountID, ledger.BetRequest{
		Kind:  games.KindSlot,
		Stake: stake,
	})
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidStake) {
			return "Stake must be between 1 and your balance.", nil
		}

		return "", err
	}

	if res.Outcome.Win {
		return fmt.Sprintf("🎰 %s\n🎉 You won %d coins! Balance: %d",
			res.Outcome.Descriptor, res.Outcome.Delta, res.NewBalance), nil
	}

	return fmt.Sprintf("🎰 %s\n😢 You lost %d coins. Balance: %d",
		res.Outcome.Descriptor, -res.Outcome.Delta, res.NewBalance), nil
}

func (p *Poller) leaderboard(ctx context.Context) (string, error) {
	top, err := p.ledger.Top(ctx, 10)
	if err != nil {
		return "", err
	}

	var b strings.Builder

	b.WriteString("📊 Top players:\n")

	for i, acc := range top {
		fmt.Fprintf(&b, "%d. %s — %d coins\n", i+1, displayName(acc), acc.Balance)
	}

	return b.String(), nil
}

func displayName(acc accounts.Account) string {
	if acc.ExternalUsername.Valid && acc.ExternalUsername.String != "" {
		return acc.ExternalUsername.String
	}

	return acc.Username
}

// parseCommand splits "/slots 50" into "/slots" and "50". Bot-API
// mention suffixes ("/start@casino_bot") are stripped.
func parseCommand(text string) (cmd, arg string) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 {
		return "", ""
	}

	cmd = fields[0]
	if at := strings.IndexByte(cmd, '@'); at > 0 {
		cmd = cmd[:at]
	}

	if len(fields) > 1 {
		arg = fields[1]
	}

	return cmd, arg
}
