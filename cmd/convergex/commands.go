package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-petr/convergex-pay/internal/apiclient"
	"github.com/go-petr/convergex-pay/internal/app"
	"github.com/go-petr/convergex-pay/internal/domain"
	"github.com/go-petr/convergex-pay/internal/paymentservice"
	"github.com/go-petr/convergex-pay/pkg/currencypkg"
	"github.com/shopspring/decimal"
)

var errUsage = errors.New("invalid arguments")

type command struct {
	summary string
	run     func(c *cli, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"login":      {"sign in with email and password", (*cli).login},
	"register":   {"create an account", (*cli).register},
	"logout":     {"forget the session", (*cli).logout},
	"whoami":     {"show the signed in user", (*cli).whoami},
	"balance":    {"show the bank balance and UPI id", (*cli).balance},
	"history":    {"list transactions (-filter all|sent|received, -q text)", (*cli).history},
	"analytics":  {"income and expense summary", (*cli).analytics},
	"pay":        {"pay a UPI id (-to, -amount)", (*cli).pay},
	"requests":   {"list payment requests", (*cli).requests},
	"request":    {"request money from a UPI id (-to, -amount)", (*cli).request},
	"accept":     {"accept a payment request by id", (*cli).accept},
	"reject":     {"reject a payment request by id", (*cli).reject},
	"wallet":     {"show a wallet (-wallet internal|external)", (*cli).wallet},
	"connect":    {"connect the external wallet", (*cli).connect},
	"disconnect": {"disconnect the external wallet", (*cli).disconnect},
	"send":       {"send tokens to an internal address (-to, -amount, -token)", (*cli).send},
	"convert":    {"convert between fiat and tokens (-direction, -amount, -token)", (*cli).convert},
	"rates":      {"show exchange rates", (*cli).rates},
	"resolve":    {"look up the owner of an internal address", (*cli).resolve},
	"watch":      {"refresh rates and pending requests until interrupted", (*cli).watch},
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

type cli struct {
	app *app.App
	out io.Writer
}

func (c *cli) run(ctx context.Context, name string, args []string) error {
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q", name)
	}

	return cmd.run(c, ctx, args)
}

func (c *cli) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	return fs
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, domain.ErrInvalidAmount
	}

	return amount, nil
}

func (c *cli) requireSession() error {
	if !c.app.Session.IsAuthenticated() {
		return domain.ErrNotAuthenticated
	}

	return nil
}

func (c *cli) login(ctx context.Context, args []string) error {
	fs := newFlags("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")

	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	res := c.app.Session.Login(apiclient.Silent(ctx), *email, *password)
	if !res.Success {
		return errors.New(res.Error)
	}

	user, _ := c.app.Session.User()
	c.printf("Welcome back, %s\n", user.Name)

	return nil
}

func (c *cli) register(ctx context.Context, args []string) error {
	fs := newFlags("register")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")

	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	res := c.app.Session.Register(apiclient.Silent(ctx), *name, *email, *password)
	if !res.Success {
		return errors.New(res.Error)
	}

	c.printf("Account created for %s\n", *name)

	return nil
}

func (c *cli) logout(ctx context.Context, args []string) error {
	c.app.Session.Logout()
	c.printf("Signed out\n")

	return nil
}

func (c *cli) whoami(ctx context.Context, args []string) error {
	user, ok := c.app.Session.User()
	if !ok {
		return domain.ErrNotAuthenticated
	}

	c.printf("%s <%s> (%s)\n", user.Name, user.Email, user.ID)

	return nil
}

func (c *cli) balance(ctx context.Context, args []string) error {
	if err := c.requireSession(); err != nil {
		return err
	}

	account, err := c.app.Payments.Balance(ctx)
	if err != nil {
		return err
	}

	c.printf("UPI id:  %s\nBalance: %s %s\n", account.UPIID, account.Balance.StringFixed(2), currencypkg.INR)

	return nil
}

func (c *cli) printTransactions(txs []domain.Transaction) {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tDIRECTION\tCOUNTERPARTY\tAMOUNT\tSTATUS")

	for _, tx := range txs {
		direction, counterparty := "received", tx.FromUserName
		if tx.IsSent {
			direction, counterparty = "sent", tx.ToUserName
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			tx.Date.Local().Format(time.DateTime), direction, counterparty, tx.Amount.StringFixed(2), tx.Status)
	}

	w.Flush()
}

func (c *cli) history(ctx context.Context, args []string) error {
	fs := newFlags("history")
	filter := fs.String("filter", string(paymentservice.FilterAll), "all, sent or received")
	query := fs.String("q", "", "search names, UPI ids and amounts")

	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	kind := paymentservice.FilterType(strings.ToLower(*filter))
	switch kind {
	case paymentservice.FilterAll, paymentservice.FilterSent, paymentservice.FilterReceived:
	default:
		return fmt.Errorf("unknown filter %q", *filter)
	}

	if err := c.requireSession(); err != nil {
		return err
	}

	history, err := c.app.Payments.History(ctx)
	if err != nil {
		return err
	}

	c.printTransactions(paymentservice.Filter(history, kind, *query))

	return nil
}

func (c *cli) analytics(ctx context.Context, args []string) error {
	user, ok := c.app.Session.User()
	if !ok {
		return domain.ErrNotAuthenticated
	}

	history, err := c.app.Payments.History(ctx)
	if err != nil {
		return err
	}

	stats := paymentservice.Analytics(history, user.ID)

	c.printf("Income:  %s\nExpense: %s\nNet:     %s\n",
		stats.Income.StringFixed(2), stats.Expense.StringFixed(2), stats.Net.StringFixed(2))

	return nil
}

func (c *cli) pay(ctx context.Context, args []string) error {
	fs := newFlags("pay")
	to := fs.String("to", "", "recipient UPI id")
	rawAmount := fs.String("amount", "", "amount in INR")

	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	amount, err := parseAmount(*rawAmount)
	if err != nil {
		return err
	}

	if err := c.requireSession(); err != nil {
		return err
	}

	receipt, err := c.app.Payments.PayUPI(ctx, *to, amount)
	if err != nil {
		return err
	}

	c.printf("%s. New balance: %s %s\n", receipt.Message, receipt.Balance.StringFixed(2), currencypkg.INR)

	return nil
}

func (c *cli) printRequests(title string, rs []domain.PaymentRequest, incoming bool) {
	c.printf("%s\n", title)

	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOUNTERPARTY\tAMOUNT\tSTATUS")

	for _, r := range rs {
		counterparty := r.ToUPI
		if incoming {
			counterparty = r.FromUPI
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, counterparty, r.Amount.StringFixed(2), r.Status)
	}

	w.Flush()
}

func (c *cli) requests(ctx context.Context, args []string) error {
	if err := c.requireSession(); err != nil {
		return err
	}

	incoming, err := c.app.Requests.Incoming(ctx)
	if err != nil {
		return err
	}

	outgoing, err := c.app.Requests.Outgoing(ctx)
	if err != nil {
		return err
	}

	c.printRequests("Incoming", incoming, true)
	c.printRequests("Outgoing", outgoing, false)

	return nil
}

func (c *cli) request(ctx context.Context, args []string) error {
	fs := newFlags("request")
	to := fs.String("to", "", "UPI id to request from")
	rawAmount := fs.String("amount", "", "amount in INR")

	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	amount, err := parseAmount(*rawAmount)
	if err != nil {
		return err
	}

	if err := c.requireSession(); err != nil {
		return err
	}

	r, err := c.app.Requests.Create(ctx, *to, amount)
	if err != nil {
		return err
	}

	c.printf("Requested %s %s from %s\n", r.Amount.StringFixed(2), currencypkg.INR, r.ToUPI)

	return nil
}

func (c *cli) accept(ctx context.Context, args []string) error {
	return c.resolveRequest(ctx, args, c.app.Requests.Accept)
}

func (c *cli) reject(ctx context.Context, args []string) error {
	return c.resolveRequest(ctx, args, c.app.Requests.Reject)
}

func (c *cli) resolveRequest(ctx context.Context, args []string, fn func(context.Context, string) (string, error)) error {
	if len(args) != 1 {
		return errUsage
	}

	if err := c.requireSession(); err != nil {
		return err
	}

	msg, err := fn(ctx, args[0])
	if err != nil {
		return err
	}

	c.printf("%s\n", msg)

	return nil
}

func (c *cli) printBalances(balances domain.Balances) {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "TOKEN\tBALANCE\tVALUE (%s)\n", currencypkg.INR)

	for _, token := range balances.Tokens() {
		amount := balances.Get(token)
		fmt.Fprintf(w, "%s\t%s\t%s\n", token, amount.String(), c.app.Wallet.ToLocal(amount, token).StringFixed(2))
	}

	w.Flush()
}

func (c *cli) wallet(ctx context.Context, args []string) error {
	fs := newFlags("wallet")
	which := fs.String("wallet", string(domain.WalletInternal), "internal or external")

	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	kind, err := domain.ParseWalletKind(*which)
	if err != nil {
		return err
	}

	if err := c.requireSession(); err != nil {
		return err
	}

	if kind == domain.WalletExternal && c.app.Wallet.External().State != domain.Connected {
		return domain.ErrWalletNotConnected
	}

	if err := c.app.Wallet.Select(kind); err != nil {
		return err
	}

	if err := c.app.Wallet.FetchInternalWallet(ctx); err != nil {
		return err
	}

	if c.app.Wallet.External().State == domain.Connected {
		if err := c.app.Wallet.RefreshExternalBalances(ctx); err != nil {
			c.app.Logger.Warn().Err(err).Msg("external balances")
		}
	}

	view := c.app.Wallet.Active()

	c.printf("Wallet:  %s\nAddress: %s\n", view.Kind, view.Address())

	if internal := c.app.Wallet.InternalWallet(); internal.UPIID != "" {
		c.printf("Bank:    %s %s (%s)\n", internal.BankBalance.StringFixed(2), currencypkg.INR, internal.UPIID)
	}

	c.printBalances(view.Balances())

	return nil
}

func (c *cli) connect(ctx context.Context, args []string) error {
	if err := c.requireSession(); err != nil {
		return err
	}

	if err := c.app.Wallet.ConnectExternalWallet(ctx); err != nil {
		return err
	}

	c.printf("Connected %s\n", c.app.Wallet.External().Address)

	return nil
}

func (c *cli) disconnect(ctx context.Context, args []string) error {
	if err := c.app.Wallet.DisconnectExternalWallet(); err != nil {
		return err
	}

	c.printf("External wallet disconnected\n")

	return nil
}

func (c *cli) send(ctx context.Context, args []string) error {
	fs := newFlags("send")
	to := fs.String("to", "", "internal wallet address")
	rawAmount := fs.String("amount", "", "token amount")
	token := fs.String("token", currencypkg.USDC, "USDC, DAI or ETH")
	confirm := fs.Bool("yes", false, "send without the review step")

	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	amount, err := parseAmount(*rawAmount)
	if err != nil {
		return err
	}

	if err := c.requireSession(); err != nil {
		return err
	}

	if err := c.app.Wallet.FetchInternalWallet(ctx); err != nil {
		return err
	}

	review, err := c.app.Wallet.ReviewTransfer(domain.TransferIntent{
		Destination: strings.TrimSpace(*to),
		Amount:      amount,
		Token:       *token,
	})
	if err != nil {
		return err
	}

	resolution := c.app.Recipients.Resolve(ctx, review.Intent.Destination)
	if !resolution.Resolved() {
		return domain.ErrRecipientNotFound
	}

	review.Recipient = resolution.Recipient

	c.printf("Send %s %s (%s %s) to %s <%s>\nRemaining: %s %s\n",
		review.Intent.Amount, review.Intent.Token, review.LocalValue.StringFixed(2), currencypkg.INR,
		review.Recipient.Name, review.Intent.Destination, review.Remaining, review.Intent.Token)

	if !*confirm {
		c.printf("Re-run with -yes to confirm.\n")
		return nil
	}

	receipt, err := c.app.Wallet.TransferInternal(ctx, review.Intent.Destination, review.Intent.Amount, review.Intent.Token)
	if err != nil {
		return err
	}

	c.printf("%s", receipt.Message)

	if receipt.TxHash != "" {
		c.printf(" (%s)", receipt.TxHash)
	}

	c.printf("\n")
	c.printBalances(c.app.Wallet.InternalWallet().Balances)

	return nil
}

func (c *cli) convert(ctx context.Context, args []string) error {
	fs := newFlags("convert")
	rawDirection := fs.String("direction", string(domain.FiatToToken), "fiat-to-token or token-to-fiat")
	rawAmount := fs.String("amount", "", "INR for fiat-to-token, token units for token-to-fiat")
	token := fs.String("token", currencypkg.USDC, "USDC, DAI or ETH")

	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	direction, err := domain.ParseDirection(*rawDirection)
	if err != nil {
		return err
	}

	amount, err := parseAmount(*rawAmount)
	if err != nil {
		return err
	}

	if err := c.requireSession(); err != nil {
		return err
	}

	if err := c.app.Wallet.FetchInternalWallet(ctx); err != nil {
		return err
	}

	receipt, err := c.app.Wallet.Convert(ctx, direction, amount, *token)
	if err != nil {
		return err
	}

	c.printf("%s\n", receipt.Message)

	if receipt.HasBank {
		c.printf("Bank: %s %s\n", receipt.BankBalance.StringFixed(2), currencypkg.INR)
	}

	c.printBalances(c.app.Wallet.InternalWallet().Balances)

	return nil
}

func (c *cli) rates(ctx context.Context, args []string) error {
	if err := c.app.Wallet.RefreshExchangeRates(ctx); err != nil {
		c.app.Logger.Warn().Err(err).Msg("using cached rates")
	}

	table := c.app.Wallet.Rates()

	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "TOKEN\tUSD\t%s\n", currencypkg.INR)

	for _, token := range currencypkg.SupportedTokens {
		one := decimal.NewFromInt(1)
		fmt.Fprintf(w, "%s\t%s\t%s\n", token, table.ToUSD(one, token).String(), table.ToLocal(one, token).StringFixed(2))
	}

	w.Flush()

	return nil
}

func (c *cli) resolve(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	if err := c.requireSession(); err != nil {
		return err
	}

	res := c.app.Recipients.Resolve(ctx, args[0])

	switch res.Status {
	case domain.ResolutionResolved:
		c.printf("%s <%s>\n", res.Recipient.Name, res.Recipient.Email)
	case domain.ResolutionNotFound:
		return domain.ErrRecipientNotFound
	default:
		return domain.ErrInvalidAddress
	}

	return nil
}

func (c *cli) watch(ctx context.Context, args []string) error {
	fs := newFlags("watch")
	every := fs.Duration("every", 5*time.Second, "how often to print the status")

	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	done := make(chan error, 1)

	go func() { done <- c.app.Run(ctx) }()

	ticker := time.NewTicker(*every)
	defer ticker.Stop()

	for {
		select {
		case err := <-done:
			return err
		case <-ticker.C:
			c.printf("%s pending requests: %d, ETH: %s %s\n",
				time.Now().Format(time.TimeOnly), c.app.Requests.PendingCount(),
				c.app.Wallet.ToLocal(decimal.NewFromInt(1), currencypkg.ETH).StringFixed(2), currencypkg.INR)
		}
	}
}
