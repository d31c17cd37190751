// Package psychology models consumer purchasing behavior for the target
// market: impulse-buy resistance from cultural indices and macro conditions,
// membership adoption probability, and information-cue evaluation of ad copy.
package psychology

import (
	"math"

	"github.com/ihelfrich/GermanCostCo/internal/config"
)

// InfoCueThreshold is the minimum count of concrete information cues an ad
// needs before a high uncertainty-avoidance audience will consider it.
const InfoCueThreshold = 7

// Consumer evaluates behavioral constraints for the configured market.
type Consumer struct {
	cultural config.Cultural
	macro    config.Macro
	demand   config.Demand
}

// NewConsumer creates a consumer model bound to one assumption snapshot.
func NewConsumer(snap config.Snapshot) *Consumer {
	return &Consumer{
		cultural: snap.Cultural,
		macro:    snap.Macro,
		demand:   snap.Demand,
	}
}

func sigmoid(value float64) float64 {
	return 1.0 / (1.0 + math.Exp(-value))
}

// ImpulseResistance computes the impulse-buy resistance score.
//
// Base resistance increases with low indulgence, high uncertainty avoidance,
// and high long-term orientation. When consumer climate < -20 and the savings
// rate > 15 the 1.5x savings-trap multiplier applies: households hoard cash
// instead of spending.
func (c *Consumer) ImpulseResistance(consumerClimate, savingsRate float64) float64 {
	indulgencePenalty := (100 - c.cultural.Indulgence) / 100.0
	riskPenalty := c.cultural.UncertaintyAvoidance / 100.0
	futureOrientationPenalty := c.cultural.LongTermOrientation / 100.0

	resistance := 0.7 + 0.7*indulgencePenalty + 0.3*riskPenalty + 0.25*futureOrientationPenalty

	if consumerClimate < -20 && savingsRate > 15 {
		resistance *= 1.5 // savings-trap multiplier
	}

	return math.Round(resistance*1000) / 1000
}

// BaselineImpulseResistance uses the snapshot's point-in-time macro values.
func (c *Consumer) BaselineImpulseResistance() float64 {
	return c.ImpulseResistance(c.macro.ConsumerClimateIndex, c.macro.SavingsRatePercent)
}

// AdoptionInputs are the per-household economics feeding the adoption model.
type AdoptionInputs struct {
	YearlySpendEUR      float64
	MembershipFeeEUR    float64
	BulkDiscount        float64
	InfoCues            int
	FirstYearSubsidyEUR float64
	// Optional macro overrides; zero values mean "use snapshot macro".
	ConsumerClimateOverride *float64
	SavingsRateOverride     *float64
}

// AdoptionProbability blends household economics with psychology into a 0..1
// membership adoption probability:
//
//	NetBenefit   = YearlySpend * BulkDiscount - EffectiveFee
//	EffectiveFee = MembershipFee - Subsidy (floored at 0)
//
// The latent-score composition here is the behavioral contract the strategy
// evaluator must match.
func (c *Consumer) AdoptionProbability(in AdoptionInputs) float64 {
	effectiveFee := math.Max(0, in.MembershipFeeEUR-in.FirstYearSubsidyEUR)
	netBenefit := in.YearlySpendEUR*in.BulkDiscount - effectiveFee

	climate := c.macro.ConsumerClimateIndex
	if in.ConsumerClimateOverride != nil {
		climate = *in.ConsumerClimateOverride
	}
	savingsRate := c.macro.SavingsRatePercent
	if in.SavingsRateOverride != nil {
		savingsRate = *in.SavingsRateOverride
	}
	resistance := c.ImpulseResistance(climate, savingsRate)

	economicTerm := netBenefit / 220.0
	infoDensityBoost := float64(in.InfoCues-InfoCueThreshold) * 0.18
	feeTerm := -(effectiveFee * c.demand.MembershipFeeSensitivity)
	resistanceTerm := -0.85 * resistance

	probability := sigmoid(economicTerm + infoDensityBoost + feeTerm + resistanceTerm)
	return math.Max(0, math.Min(1, probability))
}
