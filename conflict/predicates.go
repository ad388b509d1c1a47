package conflict

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/clearledger/policykit/model"
)

func defaultBattery() []Predicate {
	return []Predicate{
		RedundantTransferLimits,
		VelocityImpliesVolumeCap,
		LockUpOverlapsWhitelist,
		PositionBelowTransactionLimit,
		UnorderedKYCGating,
		CompetingLockUps,
		DuplicateRule,
	}
}

// pair reorders (a, b) so that the returned rules carry the requested types.
func pair(a, b *model.Rule, first, second model.RuleType) (*model.Rule, *model.Rule, bool) {
	if a.Type == first && b.Type == second {
		return a, b, true
	}
	if a.Type == second && b.Type == first {
		return b, a, true
	}
	return nil, nil, false
}

// RedundantTransferLimits flags a transfer limit and an investor transaction
// limit that restrict the same direction in the same unit where one cap is
// strictly tighter - the looser rule can never bind.
func RedundantTransferLimits(a, b *model.Rule) []Conflict {
	transfer, investor, ok := pair(a, b, model.RuleTransferLimit, model.RuleInvestorTransactionLimit)
	if !ok {
		return nil
	}
	tp, ip := transfer.TransferLimit, investor.InvestorTransactionLimit
	if tp == nil || ip == nil || tp.TransferAmount <= 0 || ip.LimitAmount <= 0 {
		return nil
	}
	if !sameUnit(tp.Currency, ip.Unit) || !tp.TransactionType.Overlaps(ip.TransactionType) {
		return nil
	}
	var tighter, looser *model.Rule
	var low, high float64
	switch {
	case tp.TransferAmount < ip.LimitAmount:
		tighter, looser, low, high = transfer, investor, tp.TransferAmount, ip.LimitAmount
	case ip.LimitAmount < tp.TransferAmount:
		tighter, looser, low, high = investor, transfer, ip.LimitAmount, tp.TransferAmount
	default:
		return nil
	}
	return []Conflict{{
		Severity: SeverityWarning,
		Reason: fmt.Sprintf("rule %s caps transactions at %v %s, overriding rule %s (%v %s) for the same direction; the looser limit is redundant",
			tighter.ID, low, tp.Currency, looser.ID, high, tp.Currency),
	}}
}

// VelocityImpliesVolumeCap flags a per-investor velocity limit whose cap
// meets or exceeds a volume-mode supply limit over the same time period - a
// single investor can exhaust the aggregate volume cap on their own.
func VelocityImpliesVolumeCap(a, b *model.Rule) []Conflict {
	velocity, volume, ok := pair(a, b, model.RuleVelocityLimit, model.RuleVolumeSupplyLimit)
	if !ok {
		return nil
	}
	vp, sp := velocity.VelocityLimit, volume.VolumeSupplyLimit
	if vp == nil || sp == nil || vp.LimitAmount <= 0 || sp.LimitAmount <= 0 {
		return nil
	}
	if sp.LimitType != model.LimitTypeVolume || vp.TimePeriod != sp.TimePeriod {
		return nil
	}
	if vp.LimitAmount < sp.LimitAmount {
		return nil
	}
	return []Conflict{{
		Severity: SeverityWarning,
		Reason: fmt.Sprintf("rule %s allows %v per investor %s while rule %s caps total volume at %v for the same period; the volume cap binds first",
			velocity.ID, vp.LimitAmount, vp.TimePeriod, volume.ID, sp.LimitAmount),
	}}
}

// LockUpOverlapsWhitelist flags a lock-up window that overlaps a whitelist
// rule scoped to the same investor group and transfer direction - transfers
// the whitelist permits are blocked by the lock-up for part of its window.
func LockUpOverlapsWhitelist(a, b *model.Rule) []Conflict {
	lockUp, whitelist, ok := pair(a, b, model.RuleLockUpPeriod, model.RuleWhitelistTransfer)
	if !ok {
		return nil
	}
	lp, wp := lockUp.LockUpPeriod, whitelist.WhitelistTransfer
	if lp == nil || wp == nil || lp.StartDate.IsZero() || lp.EndDate.IsZero() {
		return nil
	}
	if !model.TiersOverlap(lp.SelectedTiers, wp.SelectedTiers) {
		return nil
	}
	if !lp.TransactionType.Overlaps(wp.TransactionType) {
		return nil
	}
	if !windowsOverlap(lp.StartDate, lp.EndDate, wp.StartDate, wp.EndDate) {
		return nil
	}
	return []Conflict{{
		Severity: SeverityWarning,
		Reason: fmt.Sprintf("rule %s locks up transfers between %s and %s while rule %s whitelists transfers for the same investor group within that window",
			lockUp.ID, lp.StartDate.Format("2006-01-02"), lp.EndDate.Format("2006-01-02"), whitelist.ID),
	}}
}

// PositionBelowTransactionLimit flags a position cap lower than a single
// allowed transaction amount - one permitted transfer would breach the
// position cap outright.
func PositionBelowTransactionLimit(a, b *model.Rule) []Conflict {
	position, transaction, ok := pair(a, b, model.RuleInvestorPositionLimit, model.RuleInvestorTransactionLimit)
	if !ok {
		return nil
	}
	pp, tp := position.InvestorPositionLimit, transaction.InvestorTransactionLimit
	if pp == nil || tp == nil || pp.MaxAmount <= 0 || tp.LimitAmount <= 0 {
		return nil
	}
	if !sameUnit(pp.Unit, tp.Unit) || !model.TiersOverlap(pp.SelectedTiers, tp.SelectedTiers) {
		return nil
	}
	if pp.MaxAmount >= tp.LimitAmount {
		return nil
	}
	return []Conflict{{
		Severity: SeverityError,
		Reason: fmt.Sprintf("rule %s caps positions at %v %s but rule %s permits single transactions up to %v %s; one allowed transaction exceeds the position cap",
			position.ID, pp.MaxAmount, pp.Unit, transaction.ID, tp.LimitAmount, tp.Unit),
	}}
}

// UnorderedKYCGating flags transaction-gating rules combined with a KYC
// verification rule: nothing sequences the gate after verification, so the
// gating rule may take effect before KYC is guaranteed complete.
func UnorderedKYCGating(a, b *model.Rule) []Conflict {
	for _, gatingType := range []model.RuleType{model.RuleTransferLimit, model.RuleVelocityLimit, model.RuleWhitelistTransfer} {
		kyc, gating, ok := pair(a, b, model.RuleKYCVerification, gatingType)
		if !ok {
			continue
		}
		if kyc.KYCVerification == nil {
			return nil
		}
		return []Conflict{{
			Severity: SeverityWarning,
			Reason: fmt.Sprintf("rule %s (%s) takes effect before rule %s guarantees KYC verification is complete; the ordering is ambiguous",
				gating.ID, gating.Type, kyc.ID),
		}}
	}
	return nil
}

// CompetingLockUps flags a date-window lock-up combined with an interval
// fund repurchase rule that carries its own lock-up: two independent lock-up
// mechanisms apply to the same holders and the effective restriction is
// whichever releases later.
func CompetingLockUps(a, b *model.Rule) []Conflict {
	lockUp, interval, ok := pair(a, b, model.RuleLockUpPeriod, model.RuleIntervalFundRedemption)
	if !ok {
		return nil
	}
	lp, ip := lockUp.LockUpPeriod, interval.IntervalFundRedemption
	if lp == nil || ip == nil || ip.LockUpPeriodMonths <= 0 || lp.EndDate.IsZero() {
		return nil
	}
	return []Conflict{{
		Severity: SeverityWarning,
		Reason: fmt.Sprintf("rule %s imposes a lock-up until %s while rule %s adds a %d-month repurchase lock-up; holders face whichever restriction releases later",
			lockUp.ID, lp.EndDate.Format("2006-01-02"), interval.ID, ip.LockUpPeriodMonths),
	}}
}

// DuplicateRule flags two rules of the identical type with fully identical
// scope - same tiers, direction and period.
func DuplicateRule(a, b *model.Rule) []Conflict {
	if a.Type != b.Type {
		return nil
	}
	if scopeKey(a) != scopeKey(b) {
		return nil
	}
	return []Conflict{{
		Severity: SeverityWarning,
		Reason: fmt.Sprintf("rules %s and %s are both %s rules with identical scope; one of them is a duplicate",
			a.ID, b.ID, a.Type),
	}}
}

// scopeKey builds a comparable scope fingerprint from the fields a rule kind
// actually carries.
func scopeKey(r *model.Rule) string {
	parts := []string{string(r.Type), string(r.Direction()), string(r.Period())}
	tiers := append([]string(nil), r.Tiers()...)
	sort.Strings(tiers)
	parts = append(parts, strings.Join(tiers, ","))
	switch r.Type {
	case model.RuleVolumeSupplyLimit:
		if r.VolumeSupplyLimit != nil {
			parts = append(parts, r.VolumeSupplyLimit.LimitType)
		}
	case model.RuleKYCVerification:
		if r.KYCVerification != nil {
			parts = append(parts, strings.ToLower(r.KYCVerification.ComplianceCheckType))
		}
	case model.RuleIntervalFundRedemption:
		if r.IntervalFundRedemption != nil {
			parts = append(parts, r.IntervalFundRedemption.SubType, r.IntervalFundRedemption.RepurchaseFrequency)
		}
	}
	return strings.Join(parts, "|")
}

func sameUnit(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// windowsOverlap treats nil whitelist bounds as an open-ended window.
func windowsOverlap(start, end time.Time, otherStart, otherEnd *time.Time) bool {
	if otherStart != nil && otherStart.After(end) {
		return false
	}
	if otherEnd != nil && otherEnd.Before(start) {
		return false
	}
	return true
}
