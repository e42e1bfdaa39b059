// Package quote is the caller-side service around the pricing engine.
//
// It owns the market assumptions (risk-free rate and per-asset-class
// volatility), rejects inputs the engine cannot price, and builds the
// contract snapshots handed to trade execution.
package quote

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"option-pricer/internal/config"
	"option-pricer/internal/errors"
	"option-pricer/internal/logging"
	"option-pricer/internal/models"
	"option-pricer/internal/pricing"
)

// Quoter prices options using configured market assumptions.
// It holds no mutable state and is safe for concurrent use.
type Quoter struct {
	cfg    config.PricingConfig
	logger zerolog.Logger
	crypto map[string]struct{}
	now    func() time.Time
}

// NewQuoter creates a Quoter.
func NewQuoter(cfg config.PricingConfig, logger zerolog.Logger) *Quoter {
	crypto := make(map[string]struct{}, len(cfg.CryptoSymbols))
	for _, s := range cfg.CryptoSymbols {
		crypto[models.NormalizeSymbol(s)] = struct{}{}
	}
	return &Quoter{
		cfg:    cfg,
		logger: logger,
		crypto: crypto,
		now:    time.Now,
	}
}

// RiskFreeRate returns the configured annual rate.
func (q *Quoter) RiskFreeRate() float64 {
	return q.cfg.RiskFreeRate
}

// AssetClass classifies symbol for the volatility regime.
func (q *Quoter) AssetClass(symbol string) models.AssetClass {
	symbol = models.NormalizeSymbol(symbol)
	if _, ok := q.crypto[symbol]; ok {
		return models.AssetClassCrypto
	}
	if strings.HasSuffix(symbol, "-USD") || strings.HasSuffix(symbol, "USDT") {
		return models.AssetClassCrypto
	}
	return models.AssetClassEquity
}

// Volatility returns the assumed volatility for symbol.
func (q *Quoter) Volatility(symbol string) float64 {
	if q.AssetClass(symbol) == models.AssetClassCrypto {
		return q.cfg.CryptoVolatility
	}
	return q.cfg.EquityVolatility
}

// Chain generates the strike ladder for symbol around spot.
func (q *Quoter) Chain(symbol string, spot float64, expiry models.Expiry) (*models.OptionChain, error) {
	symbol = models.NormalizeSymbol(symbol)
	if err := firstError(validateSymbol(symbol), validatePositive("spot", spot), validateExpiry(expiry)); err != nil {
		return nil, errors.NewPricingError(symbol, "chain", err)
	}

	start := q.now()
	chain := pricing.GenerateChain(pricing.ChainRequest{
		Symbol: symbol,
		Spot:   spot,
		Expiry: expiry,
		Rate:   q.cfg.RiskFreeRate,
		Sigma:  q.Volatility(symbol),
	})
	chain.GeneratedAt = start

	logging.LogChainRefresh(q.logger, &chain, q.now().Sub(start))
	return &chain, nil
}

// LegRequest describes a single option to price.
type LegRequest struct {
	Symbol string
	Type   models.OptionType
	Spot   float64
	Strike float64
	Days   int
	// Sigma overrides the symbol's volatility regime when positive.
	Sigma float64
}

func (q *Quoter) inputs(req LegRequest) (pricing.Inputs, error) {
	if err := firstError(
		validateType(req.Type),
		validatePositive("spot", req.Spot),
		validatePositive("strike", req.Strike),
		validateDays(req.Days),
	); err != nil {
		return pricing.Inputs{}, err
	}

	sigma := req.Sigma
	if sigma == 0 {
		sigma = q.Volatility(req.Symbol)
	}
	if err := validatePositive("sigma", sigma); err != nil {
		return pricing.Inputs{}, err
	}

	return pricing.Inputs{
		Spot:   req.Spot,
		Strike: req.Strike,
		T:      pricing.YearsFromDays(req.Days),
		Rate:   q.cfg.RiskFreeRate,
		Sigma:  sigma,
		Type:   req.Type,
	}, nil
}

// Greeks prices a single leg.
func (q *Quoter) Greeks(req LegRequest) (models.Greeks, error) {
	in, err := q.inputs(req)
	if err != nil {
		return models.Greeks{}, errors.NewPricingError(models.NormalizeSymbol(req.Symbol), "greeks", err)
	}

	g := pricing.CalculateGreeks(in)
	logging.LogQuote(q.logger, models.NormalizeSymbol(req.Symbol), req.Type, req.Strike, req.Days, g)
	return g, nil
}

// ImpliedVol recovers the volatility implied by marketPrice. A search that
// does not converge is not an error; inspect IVResult.Converged.
func (q *Quoter) ImpliedVol(req LegRequest, marketPrice float64) (pricing.IVResult, error) {
	req.Sigma = pricing.IVInitialGuess
	in, err := q.inputs(req)
	if err == nil && req.Days == 0 {
		err = errors.NewValidationError("days", req.Days, "implied volatility needs time to expiry")
	}
	if err == nil {
		err = validateNonNegative("price", marketPrice)
	}
	if err != nil {
		return pricing.IVResult{}, errors.NewPricingError(models.NormalizeSymbol(req.Symbol), "iv", err)
	}

	res := pricing.SolveImpliedVolatility(marketPrice, in)
	if !res.Converged {
		q.logger.Debug().
			Str("symbol", models.NormalizeSymbol(req.Symbol)).
			Float64("market_price", marketPrice).
			Float64("sigma", res.Sigma).
			Msg("Implied volatility search did not converge")
	}
	return res, nil
}

// BuyRequest selects a leg off a freshly generated chain.
type BuyRequest struct {
	Symbol   string
	Type     models.OptionType
	Strike   float64
	Spot     float64
	Expiry   models.Expiry
	Quantity int
}

// Buy prices the requested leg from the chain around Spot and returns the
// contract snapshot to hand to trade execution.
func (q *Quoter) Buy(req BuyRequest) (*models.Contract, error) {
	symbol := models.NormalizeSymbol(req.Symbol)
	if err := firstError(validateType(req.Type), validateQuantity(req.Quantity)); err != nil {
		return nil, errors.NewPricingError(symbol, "buy", err)
	}

	chain, err := q.Chain(symbol, req.Spot, req.Expiry)
	if err != nil {
		return nil, err
	}

	entry, ok := chain.Find(req.Strike)
	if !ok {
		return nil, errors.NewPricingError(symbol, "buy", errors.Wrapf(errors.ErrStrikeNotOnLadder, "strike %v", req.Strike))
	}
	g, _ := entry.Leg(req.Type)

	return &models.Contract{
		ID:           uuid.NewString(),
		Symbol:       symbol,
		Type:         req.Type,
		Side:         models.ContractSideBuy,
		Strike:       entry.Strike,
		Spot:         req.Spot,
		Premium:      g.Price,
		Quantity:     req.Quantity,
		DaysToExpiry: req.Expiry.Days(),
		Sigma:        chain.Sigma,
		Rate:         chain.Rate,
		Greeks:       g,
		CreatedAt:    q.now(),
	}, nil
}

// CoveredWriteRequest describes a contract written against owned shares.
type CoveredWriteRequest struct {
	Symbol string
	Type   models.OptionType
	Spot   float64
	Strike float64
	Days   int
	Shares int
}

// CoveredWriteQuote is the premium a writer would collect.
type CoveredWriteQuote struct {
	Greeks          models.Greeks    `json:"greeks"`
	PremiumPerShare decimal.Decimal  `json:"premium_per_share"`
	TotalPremium    decimal.Decimal  `json:"total_premium"`
	Contract        *models.Contract `json:"contract"`
}

// CoveredWrite quotes a covered contract. Shares are always equity-like, so
// the equity volatility applies regardless of ticker.
func (q *Quoter) CoveredWrite(req CoveredWriteRequest) (*CoveredWriteQuote, error) {
	symbol := models.NormalizeSymbol(req.Symbol)
	if err := validateQuantity(req.Shares); err != nil {
		return nil, errors.NewPricingError(symbol, "write", err)
	}

	g, err := q.Greeks(LegRequest{
		Symbol: symbol,
		Type:   req.Type,
		Spot:   req.Spot,
		Strike: req.Strike,
		Days:   req.Days,
		Sigma:  q.cfg.EquityVolatility,
	})
	if err != nil {
		return nil, err
	}

	perShare := decimal.NewFromFloat(g.Price).Round(4)
	return &CoveredWriteQuote{
		Greeks:          g,
		PremiumPerShare: perShare,
		TotalPremium:    perShare.Mul(decimal.NewFromInt(int64(req.Shares))).Round(2),
		Contract: &models.Contract{
			ID:           uuid.NewString(),
			Symbol:       symbol,
			Type:         req.Type,
			Side:         models.ContractSideWrite,
			Strike:       req.Strike,
			Spot:         req.Spot,
			Premium:      g.Price,
			Quantity:     req.Shares,
			DaysToExpiry: req.Days,
			Sigma:        q.cfg.EquityVolatility,
			Rate:         q.cfg.RiskFreeRate,
			Greeks:       g,
			CreatedAt:    q.now(),
		},
	}, nil
}
