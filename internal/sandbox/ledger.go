// Package sandbox serves an in-memory ConvergeX Pay backend.
package sandbox

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-petr/convergex-pay/internal/chain"
	"github.com/go-petr/convergex-pay/internal/domain"
	"github.com/go-petr/convergex-pay/pkg/currencypkg"
	"github.com/go-petr/convergex-pay/pkg/passpkg"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmailTaken       = errors.New("user already exists")
	ErrUserNotFound     = errors.New("user not found")
	ErrUPINotFound      = errors.New("recipient UPI id not found")
	ErrSelfPayment      = errors.New("cannot pay yourself")
	ErrRequestNotFound  = errors.New("payment request not found")
	ErrRequestClosed    = errors.New("payment request already processed")
	ErrAddressTaken     = errors.New("address is linked to another user")
	ErrWalletNotFound   = errors.New("wallet not found")
	ErrSelfTransfer     = errors.New("cannot transfer to your own wallet")
	ErrWrongCredentials = errors.New("invalid email or password")
)

const (
	upiDomain        = "@convergex"
	addressHexLength = 24
	tokenPrecision   = 8
	fiatPrecision    = 2
	statusCompleted  = "COMPLETED"
)

type account struct {
	user         domain.User
	passwordHash string
	upiID        string
	bank         decimal.Decimal
	address      string
	balances     domain.Balances
	external     string
}

type transaction struct {
	id     string
	from   string
	to     string
	amount decimal.Decimal
	status string
	date   time.Time
}

// Ledger holds every sandbox account. It is safe for concurrent use.
type Ledger struct {
	mu             sync.Mutex
	openingBalance decimal.Decimal
	rates          domain.ExchangeRateTable
	now            func() time.Time

	accounts   map[string]*account
	byEmail    map[string]string
	byUPI      map[string]string
	byAddress  map[string]string
	byExternal map[string]string
	txs        []transaction
	requests   []*domain.PaymentRequest
}

// NewLedger returns an empty ledger. Every new account starts with
// openingBalance in its bank account.
func NewLedger(openingBalance decimal.Decimal) *Ledger {
	return &Ledger{
		openingBalance: openingBalance,
		rates:          domain.FallbackRates(),
		now:            time.Now,
		accounts:       make(map[string]*account),
		byEmail:        make(map[string]string),
		byUPI:          make(map[string]string),
		byAddress:      make(map[string]string),
		byExternal:     make(map[string]string),
	}
}

// Register creates an account with a bank balance, a UPI id and an internal
// wallet.
func (l *Ledger) Register(ctx context.Context, name, email, password string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	hash, err := passpkg.Hash(password)
	if err != nil {
		return domain.User{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.byEmail[email]; ok {
		return domain.User{}, ErrEmailTaken
	}

	address, err := l.newAddressLocked()
	if err != nil {
		return domain.User{}, err
	}

	a := &account{
		user:         domain.User{ID: uuid.NewString(), Name: name, Email: email},
		passwordHash: hash,
		upiID:        l.newUPILocked(name, email),
		bank:         l.openingBalance,
		address:      address,
		balances:     domain.Balances{},
	}

	for _, t := range currencypkg.SupportedTokens {
		a.balances[t] = decimal.Zero
	}

	l.accounts[a.user.ID] = a
	l.byEmail[email] = a.user.ID
	l.byUPI[a.upiID] = a.user.ID
	l.byAddress[address] = a.user.ID

	return a.user, nil
}

func (l *Ledger) newUPILocked(name, email string) string {
	base := strings.ToLower(strings.Join(strings.Fields(name), ""))
	if base == "" {
		base = strings.SplitN(email, "@", 2)[0]
	}

	upi := base + upiDomain
	for i := 1; ; i++ {
		if _, ok := l.byUPI[upi]; !ok {
			return upi
		}

		upi = base + strconv.Itoa(i) + upiDomain
	}
}

func (l *Ledger) newAddressLocked() (string, error) {
	b := make([]byte, addressHexLength/2)

	for {
		if _, err := rand.Read(b); err != nil {
			return "", err
		}

		address := domain.InternalAddressPrefix + hex.EncodeToString(b)
		if _, ok := l.byAddress[address]; !ok {
			return address, nil
		}
	}
}

// Authenticate checks email and password.
func (l *Ledger) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	l.mu.Lock()
	id, ok := l.byEmail[email]
	var a account
	if ok {
		a = *l.accounts[id]
	}
	l.mu.Unlock()

	if !ok {
		return domain.User{}, ErrWrongCredentials
	}

	if err := passpkg.Check(password, a.passwordHash); err != nil {
		return domain.User{}, ErrWrongCredentials
	}

	return a.user, nil
}

func (l *Ledger) accountLocked(userID string) (*account, error) {
	a, ok := l.accounts[userID]
	if !ok {
		return nil, ErrUserNotFound
	}

	return a, nil
}

// BankBalance returns the fiat balance and UPI id of userID.
func (l *Ledger) BankBalance(ctx context.Context, userID string) (domain.BankAccount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, err := l.accountLocked(userID)
	if err != nil {
		return domain.BankAccount{}, err
	}

	return domain.BankAccount{Balance: a.bank, UPIID: a.upiID}, nil
}

// Transactions returns the fiat history of userID, newest first. A positive
// limit caps the result.
func (l *Ledger) Transactions(ctx context.Context, userID string, limit int) ([]domain.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.accountLocked(userID); err != nil {
		return nil, err
	}

	out := make([]domain.Transaction, 0)

	for i := len(l.txs) - 1; i >= 0; i-- {
		t := l.txs[i]
		if t.from != userID && t.to != userID {
			continue
		}

		out = append(out, l.viewLocked(t, userID))

		if limit > 0 && len(out) == limit {
			break
		}
	}

	return out, nil
}

func (l *Ledger) viewLocked(t transaction, userID string) domain.Transaction {
	from, to := l.accounts[t.from], l.accounts[t.to]

	return domain.Transaction{
		ID:           t.id,
		FromUserID:   from.user.ID,
		ToUserID:     to.user.ID,
		FromUserName: from.user.Name,
		ToUserName:   to.user.Name,
		FromUPI:      from.upiID,
		ToUPI:        to.upiID,
		Amount:       t.amount,
		Status:       t.status,
		Date:         t.date,
		IsSent:       t.from == userID,
	}
}

// PayUPI moves amount from userID to the owner of toUPI.
func (l *Ledger) PayUPI(ctx context.Context, userID, toUPI string, amount decimal.Decimal) (domain.Transaction, decimal.Decimal, error) {
	if !amount.IsPositive() {
		return domain.Transaction{}, decimal.Zero, domain.ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	from, err := l.accountLocked(userID)
	if err != nil {
		return domain.Transaction{}, decimal.Zero, err
	}

	toID, ok := l.byUPI[strings.ToLower(strings.TrimSpace(toUPI))]
	if !ok {
		return domain.Transaction{}, from.bank, ErrUPINotFound
	}

	t, err := l.payLocked(from, l.accounts[toID], amount)
	if err != nil {
		return domain.Transaction{}, from.bank, err
	}

	return l.viewLocked(t, userID), from.bank, nil
}

func (l *Ledger) payLocked(from, to *account, amount decimal.Decimal) (transaction, error) {
	if from.user.ID == to.user.ID {
		return transaction{}, ErrSelfPayment
	}

	if from.bank.LessThan(amount) {
		return transaction{}, domain.ErrInsufficientBalance
	}

	from.bank = from.bank.Sub(amount)
	to.bank = to.bank.Add(amount)

	t := transaction{
		id:     uuid.NewString(),
		from:   from.user.ID,
		to:     to.user.ID,
		amount: amount,
		status: statusCompleted,
		date:   l.now(),
	}
	l.txs = append(l.txs, t)

	return t, nil
}

// CreateRequest records that userID asks the owner of toUPI for amount.
func (l *Ledger) CreateRequest(ctx context.Context, userID, toUPI string, amount decimal.Decimal) (domain.PaymentRequest, error) {
	if !amount.IsPositive() {
		return domain.PaymentRequest{}, domain.ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	from, err := l.accountLocked(userID)
	if err != nil {
		return domain.PaymentRequest{}, err
	}

	toID, ok := l.byUPI[strings.ToLower(strings.TrimSpace(toUPI))]
	if !ok {
		return domain.PaymentRequest{}, ErrUPINotFound
	}

	if toID == userID {
		return domain.PaymentRequest{}, ErrSelfPayment
	}

	to := l.accounts[toID]

	r := &domain.PaymentRequest{
		ID:        uuid.NewString(),
		FromUser:  from.user,
		ToUser:    to.user,
		FromUPI:   from.upiID,
		ToUPI:     to.upiID,
		Amount:    amount,
		Status:    domain.RequestPending,
		CreatedAt: l.now(),
	}
	l.requests = append(l.requests, r)

	return *r, nil
}

// IncomingRequests lists the requests addressed to userID, newest first.
func (l *Ledger) IncomingRequests(ctx context.Context, userID string) []domain.PaymentRequest {
	return l.filterRequests(func(r *domain.PaymentRequest) bool { return r.ToUser.ID == userID })
}

// OutgoingRequests lists the requests userID created, newest first.
func (l *Ledger) OutgoingRequests(ctx context.Context, userID string) []domain.PaymentRequest {
	return l.filterRequests(func(r *domain.PaymentRequest) bool { return r.FromUser.ID == userID })
}

func (l *Ledger) filterRequests(keep func(r *domain.PaymentRequest) bool) []domain.PaymentRequest {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.PaymentRequest, 0)
	for _, r := range l.requests {
		if keep(r) {
			out = append(out, *r)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	return out
}

// PendingCount returns the number of pending requests addressed to userID.
func (l *Ledger) PendingCount(ctx context.Context, userID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, r := range l.requests {
		if r.ToUser.ID == userID && r.Status == domain.RequestPending {
			n++
		}
	}

	return n
}

// AcceptRequest pays a pending request addressed to userID.
func (l *Ledger) AcceptRequest(ctx context.Context, userID, requestID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	r, err := l.pendingLocked(userID, requestID)
	if err != nil {
		return err
	}

	if _, err := l.payLocked(l.accounts[userID], l.accounts[r.FromUser.ID], r.Amount); err != nil {
		return err
	}

	r.Status = domain.RequestAccepted

	return nil
}

// RejectRequest declines a pending request addressed to userID.
func (l *Ledger) RejectRequest(ctx context.Context, userID, requestID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	r, err := l.pendingLocked(userID, requestID)
	if err != nil {
		return err
	}

	r.Status = domain.RequestRejected

	return nil
}

func (l *Ledger) pendingLocked(userID, requestID string) (*domain.PaymentRequest, error) {
	for _, r := range l.requests {
		if r.ID != requestID || r.ToUser.ID != userID {
			continue
		}

		if r.Status != domain.RequestPending {
			return nil, ErrRequestClosed
		}

		return r, nil
	}

	return nil, ErrRequestNotFound
}

// Wallet returns the internal wallet of userID.
func (l *Ledger) Wallet(ctx context.Context, userID string) (domain.InternalWallet, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, err := l.accountLocked(userID)
	if err != nil {
		return domain.InternalWallet{}, err
	}

	return domain.InternalWallet{Address: a.address, Balances: a.balances.Clone()}, nil
}

// LinkExternal ties an external address to userID. Linking the same address
// again is a no-op. Only 0x addresses can be linked.
func (l *Ledger) LinkExternal(ctx context.Context, userID, address string) error {
	if !chain.IsAddress(address) {
		return domain.ErrInvalidAddress
	}

	key := strings.ToLower(address)

	l.mu.Lock()
	defer l.mu.Unlock()

	a, err := l.accountLocked(userID)
	if err != nil {
		return err
	}

	if owner, ok := l.byExternal[key]; ok && owner != userID {
		return ErrAddressTaken
	}

	if a.external != "" {
		delete(l.byExternal, strings.ToLower(a.external))
	}

	a.external = address
	l.byExternal[key] = userID

	return nil
}

// FindByAddress returns the owner of an internal address.
func (l *Ledger) FindByAddress(ctx context.Context, address string) (domain.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id, ok := l.byAddress[strings.ToLower(address)]
	if !ok {
		return domain.User{}, ErrWalletNotFound
	}

	return l.accounts[id].user, nil
}

// Transfer moves amount of token between internal wallets and returns the
// sender's balances after the move.
func (l *Ledger) Transfer(ctx context.Context, userID, toAddress string, amount decimal.Decimal, token string) (domain.Balances, string, error) {
	token = currencypkg.Normalize(token)

	if !currencypkg.IsSupportedToken(token) {
		return nil, "", domain.ErrUnsupportedToken
	}

	if !amount.IsPositive() {
		return nil, "", domain.ErrInvalidAmount
	}

	if !domain.IsInternalAddress(toAddress) {
		return nil, "", domain.ErrInvalidAddress
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	from, err := l.accountLocked(userID)
	if err != nil {
		return nil, "", err
	}

	toID, ok := l.byAddress[strings.ToLower(toAddress)]
	if !ok {
		return nil, "", ErrWalletNotFound
	}

	if toID == userID {
		return nil, "", ErrSelfTransfer
	}

	if from.balances.Get(token).LessThan(amount) {
		return nil, "", domain.ErrInsufficientBalance
	}

	to := l.accounts[toID]
	from.balances[token] = from.balances.Get(token).Sub(amount)
	to.balances[token] = to.balances.Get(token).Add(amount)

	return from.balances.Clone(), "0x" + strings.ReplaceAll(uuid.NewString(), "-", ""), nil
}

// ConvertFiatToToken spends amount of fiat on token at the sandbox rates.
func (l *Ledger) ConvertFiatToToken(ctx context.Context, userID string, amount decimal.Decimal, token string) (domain.Balances, decimal.Decimal, error) {
	token = currencypkg.Normalize(token)

	if err := checkConversion(amount, token); err != nil {
		return nil, decimal.Zero, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	a, err := l.accountLocked(userID)
	if err != nil {
		return nil, decimal.Zero, err
	}

	if a.bank.LessThan(amount) {
		return nil, a.bank, domain.ErrInsufficientBalance
	}

	unit := l.rates.ToLocal(decimal.NewFromInt(1), token)
	bought := amount.DivRound(unit, tokenPrecision)

	a.bank = a.bank.Sub(amount)
	a.balances[token] = a.balances.Get(token).Add(bought)

	return a.balances.Clone(), a.bank, nil
}

// ConvertTokenToFiat sells amount of token for fiat at the sandbox rates.
func (l *Ledger) ConvertTokenToFiat(ctx context.Context, userID string, amount decimal.Decimal, token string) (domain.Balances, decimal.Decimal, error) {
	token = currencypkg.Normalize(token)

	if err := checkConversion(amount, token); err != nil {
		return nil, decimal.Zero, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	a, err := l.accountLocked(userID)
	if err != nil {
		return nil, decimal.Zero, err
	}

	if a.balances.Get(token).LessThan(amount) {
		return nil, a.bank, domain.ErrInsufficientBalance
	}

	a.balances[token] = a.balances.Get(token).Sub(amount)
	a.bank = a.bank.Add(l.rates.ToLocal(amount, token).Round(fiatPrecision))

	return a.balances.Clone(), a.bank, nil
}

func checkConversion(amount decimal.Decimal, token string) error {
	if !currencypkg.IsSupportedToken(token) {
		return domain.ErrUnsupportedToken
	}

	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}

	return nil
}
