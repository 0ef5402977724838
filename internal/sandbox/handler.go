package sandbox

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/convergex-pay/internal/domain"
	"github.com/go-petr/convergex-pay/internal/middleware"
	"github.com/go-petr/convergex-pay/pkg/errorspkg"
	"github.com/go-petr/convergex-pay/pkg/tokenpkg"
	"github.com/go-petr/convergex-pay/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Handler serves the REST surface over a Ledger.
type Handler struct {
	ledger        *Ledger
	tokenMaker    tokenpkg.Maker
	tokenDuration time.Duration
}

// NewHandler returns a Handler.
func NewHandler(ledger *Ledger, tokenMaker tokenpkg.Maker, tokenDuration time.Duration) *Handler {
	return &Handler{
		ledger:        ledger,
		tokenMaker:    tokenMaker,
		tokenDuration: tokenDuration,
	}
}

type userJSON struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func newUserJSON(u domain.User) userJSON {
	return userJSON{ID: u.ID, Name: u.Name, Email: u.Email}
}

type authResponse struct {
	Token string   `json:"token"`
	User  userJSON `json:"user"`
}

type transactionJSON struct {
	ID           string          `json:"id"`
	FromUser     userJSON        `json:"fromUser"`
	ToUser       userJSON        `json:"toUser"`
	FromUserName string          `json:"fromUserName"`
	ToUserName   string          `json:"toUserName"`
	FromUPI      string          `json:"fromUpi"`
	ToUPI        string          `json:"toUpi"`
	Amount       decimal.Decimal `json:"amount"`
	Status       string          `json:"status"`
	Date         time.Time       `json:"date"`
	IsSent       bool            `json:"isSent"`
}

func newTransactionJSON(t domain.Transaction) transactionJSON {
	return transactionJSON{
		ID:           t.ID,
		FromUser:     userJSON{ID: t.FromUserID, Name: t.FromUserName},
		ToUser:       userJSON{ID: t.ToUserID, Name: t.ToUserName},
		FromUserName: t.FromUserName,
		ToUserName:   t.ToUserName,
		FromUPI:      t.FromUPI,
		ToUPI:        t.ToUPI,
		Amount:       t.Amount,
		Status:       t.Status,
		Date:         t.Date,
		IsSent:       t.IsSent,
	}
}

func newTransactionsJSON(txs []domain.Transaction) []transactionJSON {
	out := make([]transactionJSON, 0, len(txs))
	for _, t := range txs {
		out = append(out, newTransactionJSON(t))
	}

	return out
}

type requestJSON struct {
	ID        string          `json:"id"`
	FromUser  userJSON        `json:"fromUser"`
	ToUser    userJSON        `json:"toUser"`
	FromUPI   string          `json:"fromUpi"`
	ToUPI     string          `json:"toUpi"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}

func newRequestJSON(r domain.PaymentRequest) requestJSON {
	return requestJSON{
		ID:        r.ID,
		FromUser:  newUserJSON(r.FromUser),
		ToUser:    newUserJSON(r.ToUser),
		FromUPI:   r.FromUPI,
		ToUPI:     r.ToUPI,
		Amount:    r.Amount,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
	}
}

func newRequestsJSON(rs []domain.PaymentRequest) []requestJSON {
	out := make([]requestJSON, 0, len(rs))
	for _, r := range rs {
		out = append(out, newRequestJSON(r))
	}

	return out
}

// bind decodes the body into req and answers 400 on failure.
func bind(gctx *gin.Context, req any) bool {
	if err := gctx.ShouldBindJSON(req); err != nil {
		zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.GetErrorMsg(ve))
			return false
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return false
	}

	return true
}

func userID(gctx *gin.Context) string {
	return gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload).UserID
}

// fail maps ledger errors to status codes.
func fail(gctx *gin.Context, err error) {
	zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Send()

	switch {
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrUPINotFound),
		errors.Is(err, ErrWalletNotFound),
		errors.Is(err, ErrRequestNotFound):
		gctx.JSON(http.StatusNotFound, web.Error(err))
	case errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrAddressTaken):
		gctx.JSON(http.StatusConflict, web.Error(err))
	case errors.Is(err, ErrWrongCredentials),
		errors.Is(err, ErrSelfPayment),
		errors.Is(err, ErrSelfTransfer),
		errors.Is(err, ErrRequestClosed),
		domain.IsValidation(err):
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	default:
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}

func (h *Handler) issue(gctx *gin.Context, user domain.User, status int) {
	token, _, err := h.tokenMaker.CreateToken(user.ID, h.tokenDuration)
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(status, authResponse{Token: token, User: newUserJSON(user)})
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// Register handles account creation.
func (h *Handler) Register(gctx *gin.Context) {
	var req registerRequest
	if !bind(gctx, &req) {
		return
	}

	user, err := h.ledger.Register(gctx.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		fail(gctx, err)
		return
	}

	h.issue(gctx, user, http.StatusCreated)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges credentials for a token.
func (h *Handler) Login(gctx *gin.Context) {
	var req loginRequest
	if !bind(gctx, &req) {
		return
	}

	user, err := h.ledger.Authenticate(gctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(gctx, err)
		return
	}

	h.issue(gctx, user, http.StatusOK)
}

// BankBalance returns the fiat balance.
func (h *Handler) BankBalance(gctx *gin.Context) {
	acc, err := h.ledger.BankBalance(gctx.Request.Context(), userID(gctx))
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, gin.H{"balance": acc.Balance, "upiId": acc.UPIID})
}

// Transactions returns the latest transactions.
func (h *Handler) Transactions(gctx *gin.Context) {
	limit, err := strconv.Atoi(gctx.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		gctx.JSON(http.StatusBadRequest, web.Message("limit must be a non-negative integer"))
		return
	}

	txs, err := h.ledger.Transactions(gctx.Request.Context(), userID(gctx), limit)
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, gin.H{"transactions": newTransactionsJSON(txs)})
}

// History returns every transaction as a bare array.
func (h *Handler) History(gctx *gin.Context) {
	txs, err := h.ledger.Transactions(gctx.Request.Context(), userID(gctx), 0)
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, newTransactionsJSON(txs))
}

type payRequest struct {
	ToUPIID string          `json:"toUpiId" binding:"required"`
	Amount  decimal.Decimal `json:"amount"`
}

// PayUPI pays a UPI id.
func (h *Handler) PayUPI(gctx *gin.Context) {
	var req payRequest
	if !bind(gctx, &req) {
		return
	}

	tx, balance, err := h.ledger.PayUPI(gctx.Request.Context(), userID(gctx), req.ToUPIID, req.Amount)
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, gin.H{
		"message":     "Payment successful",
		"transaction": newTransactionJSON(tx),
		"balance":     balance,
	})
}

// CreateRequest asks another user for money.
func (h *Handler) CreateRequest(gctx *gin.Context) {
	var req payRequest
	if !bind(gctx, &req) {
		return
	}

	r, err := h.ledger.CreateRequest(gctx.Request.Context(), userID(gctx), req.ToUPIID, req.Amount)
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusCreated, gin.H{"message": "Request sent", "request": newRequestJSON(r)})
}

// IncomingRequests lists requests addressed to the caller.
func (h *Handler) IncomingRequests(gctx *gin.Context) {
	rs := h.ledger.IncomingRequests(gctx.Request.Context(), userID(gctx))
	gctx.JSON(http.StatusOK, gin.H{"requests": newRequestsJSON(rs)})
}

// OutgoingRequests lists requests the caller created.
func (h *Handler) OutgoingRequests(gctx *gin.Context) {
	rs := h.ledger.OutgoingRequests(gctx.Request.Context(), userID(gctx))
	gctx.JSON(http.StatusOK, gin.H{"requests": newRequestsJSON(rs)})
}

// AcceptRequest pays a pending request.
func (h *Handler) AcceptRequest(gctx *gin.Context) {
	if err := h.ledger.AcceptRequest(gctx.Request.Context(), userID(gctx), gctx.Param("id")); err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Message("Request accepted"))
}

// RejectRequest declines a pending request.
func (h *Handler) RejectRequest(gctx *gin.Context) {
	if err := h.ledger.RejectRequest(gctx.Request.Context(), userID(gctx), gctx.Param("id")); err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Message("Request rejected"))
}

// NotificationCount returns the number of pending incoming requests.
func (h *Handler) NotificationCount(gctx *gin.Context) {
	gctx.JSON(http.StatusOK, gin.H{"count": h.ledger.PendingCount(gctx.Request.Context(), userID(gctx))})
}

// Wallet returns the internal wallet.
func (h *Handler) Wallet(gctx *gin.Context) {
	w, err := h.ledger.Wallet(gctx.Request.Context(), userID(gctx))
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, gin.H{"wallet": gin.H{"address": w.Address, "balances": w.Balances}})
}

type connectRequest struct {
	Address string `json:"address" binding:"required"`
}

// ConnectExternal links an external address.
func (h *Handler) ConnectExternal(gctx *gin.Context) {
	var req connectRequest
	if !bind(gctx, &req) {
		return
	}

	if err := h.ledger.LinkExternal(gctx.Request.Context(), userID(gctx), req.Address); err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Message("Wallet connected"))
}

// FindByAddress resolves the owner of an internal address.
func (h *Handler) FindByAddress(gctx *gin.Context) {
	user, err := h.ledger.FindByAddress(gctx.Request.Context(), gctx.Param("address"))
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, gin.H{"user": newUserJSON(user)})
}

type transferRequest struct {
	ToAddress string          `json:"toAddress" binding:"required"`
	Amount    decimal.Decimal `json:"amount"`
	Token     string          `json:"token" binding:"required,token"`
}

// Transfer moves tokens between internal wallets.
func (h *Handler) Transfer(gctx *gin.Context) {
	var req transferRequest
	if !bind(gctx, &req) {
		return
	}

	balances, txHash, err := h.ledger.Transfer(gctx.Request.Context(), userID(gctx), req.ToAddress, req.Amount, req.Token)
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, gin.H{"message": "Transfer successful", "balances": balances, "txHash": txHash})
}

type convertRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Token  string          `json:"token" binding:"required,token"`
}

type convertFunc func(l *Ledger, gctx *gin.Context, amount decimal.Decimal, token string) (domain.Balances, decimal.Decimal, error)

func (h *Handler) convert(message string, fn convertFunc) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		var req convertRequest
		if !bind(gctx, &req) {
			return
		}

		balances, bank, err := fn(h.ledger, gctx, req.Amount, req.Token)
		if err != nil {
			fail(gctx, err)
			return
		}

		gctx.JSON(http.StatusOK, gin.H{"message": message, "balances": balances, "bankBalance": bank})
	}
}

// ConvertFiatToToken buys tokens with the bank balance.
func (h *Handler) ConvertFiatToToken() gin.HandlerFunc {
	return h.convert("Conversion successful", func(l *Ledger, gctx *gin.Context, amount decimal.Decimal, token string) (domain.Balances, decimal.Decimal, error) {
		return l.ConvertFiatToToken(gctx.Request.Context(), userID(gctx), amount, token)
	})
}

// ConvertTokenToFiat sells tokens into the bank balance.
func (h *Handler) ConvertTokenToFiat() gin.HandlerFunc {
	return h.convert("Conversion successful", func(l *Ledger, gctx *gin.Context, amount decimal.Decimal, token string) (domain.Balances, decimal.Decimal, error) {
		return l.ConvertTokenToFiat(gctx.Request.Context(), userID(gctx), amount, token)
	})
}
