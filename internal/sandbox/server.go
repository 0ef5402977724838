package sandbox

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-petr/convergex-pay/internal/middleware"
	"github.com/go-petr/convergex-pay/pkg/configpkg"
	"github.com/go-petr/convergex-pay/pkg/currencypkg"
	"github.com/go-petr/convergex-pay/pkg/tokenpkg"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	validatorsOnce sync.Once
	validatorsErr  error
)

// registerValidators adds the "token" tag to the shared gin validator.
func registerValidators() error {
	validatorsOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			if err := v.RegisterValidation("token", currencypkg.ValidToken); err != nil {
				validatorsErr = errors.New("cannot register token validator")
			}
		}
	})

	return validatorsErr
}

// Server holds the ledger, the router and the configuration.
type Server struct {
	Ledger *Ledger
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates a Server with an empty ledger and every route registered.
func New(logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	tokenMaker, err := tokenpkg.NewMaker(config.TokenKind, config.TokenSymmetricKey)
	if err != nil {
		return nil, fmt.Errorf("cannot create token maker: %w", err)
	}

	opening := decimal.Zero
	if config.SandboxOpeningBalance != "" {
		opening, err = decimal.NewFromString(config.SandboxOpeningBalance)
		if err != nil {
			return nil, fmt.Errorf("invalid opening balance %q: %w", config.SandboxOpeningBalance, err)
		}
	}

	ledger := NewLedger(opening)
	h := NewHandler(ledger, tokenMaker, config.AccessTokenDuration)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.POST("/auth/register", h.Register)
	engine.POST("/auth/login", h.Login)

	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(tokenMaker))

	authRoutes.GET("/bank/balance", h.BankBalance)
	authRoutes.GET("/transactions", h.Transactions)
	authRoutes.GET("/pay/history", h.History)
	authRoutes.POST("/pay/upi", h.PayUPI)

	authRoutes.POST("/request", h.CreateRequest)
	authRoutes.GET("/request/incoming", h.IncomingRequests)
	authRoutes.GET("/request/outgoing", h.OutgoingRequests)
	authRoutes.POST("/request/:id/accept", h.AcceptRequest)
	authRoutes.POST("/request/:id/reject", h.RejectRequest)
	authRoutes.GET("/notification/count", h.NotificationCount)

	authRoutes.GET("/wallet/convergex", h.Wallet)
	authRoutes.POST("/wallet/convergex/transfer", h.Transfer)
	authRoutes.POST("/wallet/metamask/connect", h.ConnectExternal)
	authRoutes.GET("/wallet/find-by-address/:address", h.FindByAddress)
	authRoutes.POST("/wallet/convert/upi-to-crypto", h.ConvertFiatToToken())
	authRoutes.POST("/wallet/convert/crypto-to-upi", h.ConvertTokenToFiat())

	if err := registerValidators(); err != nil {
		return nil, err
	}

	server := &Server{
		Ledger: ledger,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
