package api

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	"PairScope/internal/domain/models"
	domsvc "PairScope/internal/domain/service"
	"PairScope/internal/service/provider"
	"PairScope/internal/services/regression"
	"PairScope/internal/services/sizing"
	"PairScope/internal/services/stationarity"
	xhttp "PairScope/pkg/http"
	xlogger "PairScope/pkg/logger"
	"PairScope/pkg/util"
)

// HealthCheck reports whether a backing store is reachable.
type HealthCheck func(ctx context.Context) error

// PairsHandler serves pair analysis and single-pair backtests.
type PairsHandler struct {
	logger     *xlogger.Logger
	analyzer   domsvc.PairAnalyzer
	backtester domsvc.PairBacktester
	health     HealthCheck
}

// NewPairsHandler creates the handler. health may be nil.
func NewPairsHandler(logger *xlogger.Logger, analyzer domsvc.PairAnalyzer, backtester domsvc.PairBacktester, health HealthCheck) *PairsHandler {
	return &PairsHandler{logger: logger, analyzer: analyzer, backtester: backtester, health: health}
}

func (h *PairsHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	g := e.Group("/api/pairs")
	g.GET("/analyze", h.Analyze)
	g.GET("/backtest", h.Backtest)
}

type adfResponse struct {
	Statistic      *float64           `json:"statistic"`
	PValue         *float64           `json:"p_value"`
	UsedLag        int                `json:"used_lag"`
	NObs           int                `json:"nobs"`
	CriticalValues map[string]float64 `json:"critical_values,omitempty"`
}

type analysisResponse struct {
	RunID         string      `json:"run_id"`
	Pair          string      `json:"pair"`
	XSymbol       string      `json:"x_symbol"`
	YSymbol       string      `json:"y_symbol"`
	ErrRatios     []*float64  `json:"err_ratios"`
	Intercept     *float64    `json:"intercept"`
	Slope         *float64    `json:"slope"`
	ResidualStdev *float64    `json:"residual_stdev"`
	LatestStdErr  *float64    `json:"latest_std_err"`
	ADF           adfResponse `json:"adf"`
	AsOf          time.Time   `json:"as_of"`
}

func toAnalysisResponse(a *models.PairAnalysis) analysisResponse {
	return analysisResponse{
		RunID:         a.RunID,
		Pair:          a.Pair,
		XSymbol:       a.XSymbol,
		YSymbol:       a.YSymbol,
		ErrRatios:     []*float64{models.FiniteOrNil(a.ErrRatios[0]), models.FiniteOrNil(a.ErrRatios[1])},
		Intercept:     models.FiniteOrNil(a.Intercept),
		Slope:         models.FiniteOrNil(a.Slope),
		ResidualStdev: models.FiniteOrNil(a.ResidualStdev),
		LatestStdErr:  models.FiniteOrNil(a.LatestStdErr),
		ADF: adfResponse{
			Statistic:      models.FiniteOrNil(a.ADF.Statistic),
			PValue:         models.FiniteOrNil(a.ADF.PValue),
			UsedLag:        a.ADF.UsedLag,
			NObs:           a.ADF.NObs,
			CriticalValues: a.ADF.CriticalValues,
		},
		AsOf: a.AsOf,
	}
}

// Analyze handles GET /api/pairs/analyze?y=&x=.
func (h *PairsHandler) Analyze(c echo.Context) error {
	req := &models.PairRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.analyzer.Analyze(c.Request().Context(), util.NormalizeSymbol(req.X), util.NormalizeSymbol(req.Y))
	if err != nil {
		h.logger.Error("analyze usecase error", xlogger.String("y", req.Y), xlogger.String("x", req.X), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapError(err))
	}
	return xhttp.SuccessResponse(c, toAnalysisResponse(res))
}

// Backtest handles GET /api/pairs/backtest?y=&x=&policy=.
func (h *PairsHandler) Backtest(c echo.Context) error {
	req := &models.PairBacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.backtester.Backtest(c.Request().Context(), util.NormalizeSymbol(req.Y), util.NormalizeSymbol(req.X), req.Policy)
	if err != nil {
		h.logger.Error("backtest usecase error", xlogger.String("y", req.Y), xlogger.String("x", req.X), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

// Health handles GET /healthz.
func (h *PairsHandler) Health(c echo.Context) error {
	if h.health != nil {
		if err := h.health(c.Request().Context()); err != nil {
			return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("storage unreachable").WithError(err))
		}
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

// mapError converts usecase errors into AppErrors with a matching status.
func mapError(err error) *xhttp.AppError {
	switch {
	case errors.Is(err, models.ErrUnknownSymbol):
		return xhttp.NotFoundError("unknown symbol").WithError(err)
	case errors.Is(err, models.ErrDataLengthMismatch),
		errors.Is(err, sizing.ErrInvalidPrice),
		errors.Is(err, regression.ErrInsufficientData),
		errors.Is(err, stationarity.ErrInsufficientData):
		return xhttp.UnprocessableError(err.Error()).WithError(err)
	case errors.Is(err, provider.ErrCircuitOpen):
		return xhttp.ServiceUnavailableError("price provider temporarily disabled").WithError(err)
	case errors.Is(err, models.ErrProviderUnavailable):
		return xhttp.BadGatewayError("price provider unavailable").WithError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.ServiceUnavailableError("request timed out").WithError(err)
	default:
		return xhttp.InternalError("internal error").WithError(err)
	}
}
