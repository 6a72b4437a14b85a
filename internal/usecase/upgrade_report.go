package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"UpgradeRisk/internal/domain/models"
	domrepo "UpgradeRisk/internal/domain/repository"
	"UpgradeRisk/internal/services/analytics"
	xhttp "UpgradeRisk/pkg/http"
	applogger "UpgradeRisk/pkg/logger"
)

// UpgradeReportUseCase consolidates every score for one catalog upgrade.
type UpgradeReportUseCase struct {
	catalog     domrepo.CatalogStore
	scoring     *ScoringUseCase
	publisher   domrepo.EventPublisher
	broadcaster domrepo.Broadcaster
	l           *applogger.Logger
	timeout     time.Duration
	timeHorizon string
	now         func() time.Time
}

func NewUpgradeReportUseCase(catalog domrepo.CatalogStore, scoring *ScoringUseCase, publisher domrepo.EventPublisher, broadcaster domrepo.Broadcaster, l *applogger.Logger) *UpgradeReportUseCase {
	if l == nil {
		l = applogger.NewNop()
	}
	return &UpgradeReportUseCase{
		catalog:     catalog,
		scoring:     scoring,
		publisher:   publisher,
		broadcaster: broadcaster,
		l:           l,
		timeout:     10 * time.Second,
		timeHorizon: "short-term",
		now:         time.Now,
	}
}

// SetTimeout bounds the whole fan-out.
func (uc *UpgradeReportUseCase) SetTimeout(d time.Duration) {
	if d > 0 {
		uc.timeout = d
	}
}

// Report scores the upgrade, persists the assessment and publishes it.
// Parts that fail are listed in Errors; the report itself only fails when the upgrade cannot be loaded.
func (uc *UpgradeReportUseCase) Report(ctx context.Context, id uuid.UUID) (*models.UpgradeReport, error) {
	if uc.catalog == nil {
		return nil, xhttp.UnavailableError("catalog store is not configured")
	}
	upgrade, err := uc.catalog.GetUpgrade(ctx, id)
	if errors.Is(err, domrepo.ErrNotFound) {
		return nil, xhttp.NotFoundErrorf("upgrade %s not found", id)
	}
	if err != nil {
		return nil, xhttp.InternalError("load upgrade failed").WithError(err)
	}
	return uc.Assess(ctx, upgrade)
}

// Assess runs the fan-out for an already loaded upgrade.
func (uc *UpgradeReportUseCase) Assess(ctx context.Context, upgrade models.ProtocolUpgrade) (*models.UpgradeReport, error) {
	// Overall timeout
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	meta := upgrade.Metadata()
	res := &models.UpgradeReport{
		AssessmentID: uuid.New(),
		Upgrade:      upgrade,
		Timestamp:    uc.now(),
		Errors:       map[string]string{},
	}

	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 4)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.scoring.PredictVolatility(ctx, upgrade.ProtocolName, nil, uc.timeHorizon)
		ch <- item{"volatility", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.scoring.PredictLiquidity(ctx, upgrade.ProtocolName, nil, meta)
		ch <- item{"liquidity", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.scoring.AnalyzeProtocolSentiment(ctx, upgrade.ProtocolName, nil)
		ch <- item{"sentiment", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		ch <- item{"recommendations", uc.scoring.GenerateRecommendations(meta), nil}
	}()

	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		if it.err != nil {
			res.Errors[it.name] = errorMessage(it.err)
			continue
		}
		switch it.name {
		case "volatility":
			v := it.val.(models.VolatilityForecast)
			res.Volatility = &v
		case "liquidity":
			v := it.val.(models.LiquidityOutlook)
			res.Liquidity = &v.Prediction
		case "sentiment":
			v := it.val.(models.ProtocolSentiment)
			res.Sentiment = &v.Sentiment
		case "recommendations":
			v := it.val.(models.Recommendations)
			res.Recommendations = &v
		}
	}

	record := uc.record(res)
	if uc.catalog == nil {
		res.Errors["persist"] = "catalog store is not configured"
	} else if err := uc.catalog.SaveAssessment(ctx, record); err != nil {
		uc.l.Error("upgrade_report save_assessment error",
			applogger.String("upgrade_id", upgrade.ID.String()),
			applogger.Error(err),
		)
		res.Errors["persist"] = err.Error()
	}

	ev := models.AssessmentEvent{
		ID:          res.AssessmentID,
		UpgradeID:   upgrade.ID,
		ProposalID:  upgrade.ProposalID,
		Protocol:    upgrade.ProtocolName,
		RiskScore:   float64(record.OverallRisk),
		RiskLevel:   analytics.RiskLevel(record.OverallRisk),
		GeneratedAt: res.Timestamp,
	}
	if res.Sentiment != nil {
		ev.Sentiment = res.Sentiment.OverallSentiment
	}
	if res.Liquidity != nil {
		ev.ShiftPct = res.Liquidity.ExpectedShiftPercent
	}
	if uc.publisher != nil {
		if err := uc.publisher.PublishAssessment(ctx, ev); err != nil {
			uc.l.Warn("upgrade_report publish error",
				applogger.String("upgrade_id", upgrade.ID.String()),
				applogger.Error(err),
			)
			res.Errors["publish"] = err.Error()
		}
	}
	if uc.broadcaster != nil {
		uc.broadcaster.Broadcast(ev)
	}

	uc.l.Info("upgrade_report ok",
		applogger.String("upgrade_id", upgrade.ID.String()),
		applogger.String("protocol", upgrade.ProtocolName),
		applogger.Int("overall_risk", record.OverallRisk),
		applogger.Int("failed_parts", len(res.Errors)),
	)

	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}

// record derives the per-dimension risks stored with an assessment.
func (uc *UpgradeReportUseCase) record(res *models.UpgradeReport) models.RiskAssessmentRecord {
	u := res.Upgrade
	rec := models.RiskAssessmentRecord{
		ID:             res.AssessmentID,
		UpgradeID:      u.ID,
		TechnicalRisk:  percent(u.RiskScore),
		GovernanceRisk: percent(float64(100 - u.VotingProgress)),
		CreatedAt:      res.Timestamp,
	}

	annualized := 0.0
	confidences := make([]float64, 0, 2)
	if res.Volatility != nil {
		annualized = res.Volatility.AnnualizedVolatility
		rec.MarketRisk = percent(annualized)
		confidences = append(confidences, float64(res.Volatility.Confidence))
	}
	shift := u.LiquidityShift
	if res.Liquidity != nil {
		shift = res.Liquidity.ExpectedShiftPercent
		confidences = append(confidences, float64(res.Liquidity.Confidence))
	}
	rec.LiquidityRisk = percent(math.Abs(shift) * 2)

	// annualized volatility is in percent; the scorer expects a fraction
	rec.OverallRisk = uc.scoring.scorers.Risk.Score(models.RiskFactors{
		Volatility:              annualized / 100,
		LiquidityRatio:          1 - float64(rec.LiquidityRisk)/100,
		GovernanceParticipation: float64(u.VotingProgress) / 100,
		TechnicalComplexity:     u.RiskScore,
	})

	if len(confidences) > 0 {
		sum := 0.0
		for _, c := range confidences {
			sum += c
		}
		rec.ConfidenceScore = math.Floor(sum/float64(len(confidences))+0.5) / 100
	}
	return rec
}

func percent(x float64) int {
	return int(math.Floor(math.Max(0, math.Min(100, x)) + 0.5))
}

func errorMessage(err error) string {
	var appErr *xhttp.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return fmt.Sprint(err)
}
