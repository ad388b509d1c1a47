package model

import (
	"fmt"
	"strings"
	"time"
)

// RuleType discriminates the kind-specific payload carried by a Rule.
type RuleType string

const (
	RuleTransferLimit            RuleType = "transfer_limit"
	RuleInvestorTransactionLimit RuleType = "investor_transaction_limit"
	RuleVelocityLimit            RuleType = "velocity_limit"
	RuleLockUpPeriod             RuleType = "lock_up_period"
	RuleWhitelistTransfer        RuleType = "whitelist_transfer"
	RuleVolumeSupplyLimit        RuleType = "volume_supply_limit"
	RuleInvestorPositionLimit    RuleType = "investor_position_limit"
	RuleKYCVerification          RuleType = "kyc_verification"
	RuleIntervalFundRedemption   RuleType = "interval_fund_redemption"
)

// RuleTypes lists every supported rule kind in declaration order.
var RuleTypes = []RuleType{
	RuleTransferLimit,
	RuleInvestorTransactionLimit,
	RuleVelocityLimit,
	RuleLockUpPeriod,
	RuleWhitelistTransfer,
	RuleVolumeSupplyLimit,
	RuleInvestorPositionLimit,
	RuleKYCVerification,
	RuleIntervalFundRedemption,
}

// TimePeriod enumerates rolling windows used by velocity and volume limits.
type TimePeriod string

const (
	PerDay     TimePeriod = "per_day"
	PerWeek    TimePeriod = "per_week"
	PerMonth   TimePeriod = "per_month"
	PerQuarter TimePeriod = "per_quarter"
	PerYear    TimePeriod = "per_year"
)

// TransactionType scopes a rule to a transaction direction.
type TransactionType string

const (
	TxSubscribe TransactionType = "subscribe"
	TxRedeem    TransactionType = "redeem"
	TxBoth      TransactionType = "both"
	TxTransfer  TransactionType = "transfer"
)

// Overlaps reports whether two direction scopes can apply to the same
// transaction. An empty scope or "both" matches everything.
func (t TransactionType) Overlaps(other TransactionType) bool {
	if t == "" || other == "" || t == TxBoth || other == TxBoth {
		return true
	}
	return t == other
}

// Rule is a tagged union over compliance rule kinds. Type selects which of
// the payload pointers is populated; all remaining payloads are nil. Rules
// are immutable once attached to a policy except by full replacement and are
// owned exclusively by the policy that contains them.
type Rule struct {
	// ID uniquely identifies the rule, assigned at creation
	ID string `json:"id" yaml:"id"`

	// Name is a display label derived from the payload, see DisplayName
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Type discriminates the populated payload
	Type RuleType `json:"type" yaml:"type"`

	TransferLimit            *TransferLimit            `json:"transferLimit,omitempty" yaml:"transferLimit,omitempty"`
	InvestorTransactionLimit *InvestorTransactionLimit `json:"investorTransactionLimit,omitempty" yaml:"investorTransactionLimit,omitempty"`
	VelocityLimit            *VelocityLimit            `json:"velocityLimit,omitempty" yaml:"velocityLimit,omitempty"`
	LockUpPeriod             *LockUpPeriod             `json:"lockUpPeriod,omitempty" yaml:"lockUpPeriod,omitempty"`
	WhitelistTransfer        *WhitelistTransfer        `json:"whitelistTransfer,omitempty" yaml:"whitelistTransfer,omitempty"`
	VolumeSupplyLimit        *VolumeSupplyLimit        `json:"volumeSupplyLimit,omitempty" yaml:"volumeSupplyLimit,omitempty"`
	InvestorPositionLimit    *InvestorPositionLimit    `json:"investorPositionLimit,omitempty" yaml:"investorPositionLimit,omitempty"`
	KYCVerification          *KYCVerification          `json:"kycVerification,omitempty" yaml:"kycVerification,omitempty"`
	IntervalFundRedemption   *IntervalFundRedemption   `json:"intervalFundRedemption,omitempty" yaml:"intervalFundRedemption,omitempty"`
}

// TransferLimit caps the amount of a single transfer.
type TransferLimit struct {
	TransferAmount  float64         `json:"transferAmount" yaml:"transferAmount"`
	Currency        string          `json:"currency" yaml:"currency"`
	TransactionType TransactionType `json:"transactionType,omitempty" yaml:"transactionType,omitempty"`
}

// InvestorTransactionLimit caps the amount of a single transaction per
// investor, optionally scoped to investor tiers.
type InvestorTransactionLimit struct {
	LimitAmount     float64         `json:"limitAmount" yaml:"limitAmount"`
	Unit            string          `json:"unit" yaml:"unit"`
	TransactionType TransactionType `json:"transactionType" yaml:"transactionType"`
	SelectedTiers   []string        `json:"selectedTiers,omitempty" yaml:"selectedTiers,omitempty"`
}

// VelocityLimit caps cumulative transaction volume per investor within a
// rolling time window.
type VelocityLimit struct {
	LimitAmount     float64         `json:"limitAmount" yaml:"limitAmount"`
	TimePeriod      TimePeriod      `json:"timePeriod" yaml:"timePeriod"`
	TransactionType TransactionType `json:"transactionType" yaml:"transactionType"`
	SelectedTiers   []string        `json:"selectedTiers,omitempty" yaml:"selectedTiers,omitempty"`
}

// LockUpPeriod blocks transfers within a date window, optionally scoped to
// investor tiers and a transaction direction.
type LockUpPeriod struct {
	StartDate       time.Time       `json:"startDate" yaml:"startDate"`
	EndDate         time.Time       `json:"endDate" yaml:"endDate"`
	TransactionType TransactionType `json:"transactionType,omitempty" yaml:"transactionType,omitempty"`
	SelectedTiers   []string        `json:"selectedTiers,omitempty" yaml:"selectedTiers,omitempty"`
}

// WhitelistTransfer restricts transfers to a fixed address list. StartDate
// and EndDate are optional; when nil the whitelist applies indefinitely.
type WhitelistTransfer struct {
	Addresses       []string        `json:"addresses" yaml:"addresses"`
	TransactionType TransactionType `json:"transactionType,omitempty" yaml:"transactionType,omitempty"`
	SelectedTiers   []string        `json:"selectedTiers,omitempty" yaml:"selectedTiers,omitempty"`
	StartDate       *time.Time      `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	EndDate         *time.Time      `json:"endDate,omitempty" yaml:"endDate,omitempty"`
}

// VolumeSupplyLimit caps either aggregate trade volume per time window
// (LimitType "volume") or the total token supply (LimitType "total_supply").
type VolumeSupplyLimit struct {
	LimitType   string     `json:"limitType" yaml:"limitType"`
	LimitAmount float64    `json:"limitAmount" yaml:"limitAmount"`
	TimePeriod  TimePeriod `json:"timePeriod,omitempty" yaml:"timePeriod,omitempty"`
}

// Volume and total-supply modes of VolumeSupplyLimit.LimitType.
const (
	LimitTypeVolume      = "volume"
	LimitTypeTotalSupply = "total_supply"
)

// InvestorPositionLimit caps the aggregate position a single investor may
// hold, with optional time-based scaling of the cap.
type InvestorPositionLimit struct {
	MaxAmount          float64  `json:"maxAmount" yaml:"maxAmount"`
	Unit               string   `json:"unit" yaml:"unit"`
	SelectedTiers      []string `json:"selectedTiers,omitempty" yaml:"selectedTiers,omitempty"`
	TimeBasedScaling   bool     `json:"timeBasedScaling,omitempty" yaml:"timeBasedScaling,omitempty"`
	ScalingType        string   `json:"scalingType,omitempty" yaml:"scalingType,omitempty"`
	AdjustmentInterval string   `json:"adjustmentInterval,omitempty" yaml:"adjustmentInterval,omitempty"`
	DynamicProfiling   bool     `json:"dynamicProfiling,omitempty" yaml:"dynamicProfiling,omitempty"`
}

// KYCVerification requires an identity check before transactions are allowed.
type KYCVerification struct {
	ComplianceCheckType string   `json:"complianceCheckType" yaml:"complianceCheckType"`
	VerificationMethod  string   `json:"verificationMethod,omitempty" yaml:"verificationMethod,omitempty"`
	DocumentTypes       []string `json:"documentTypes,omitempty" yaml:"documentTypes,omitempty"`
}

// IntervalFundRedemption models interval-fund style repurchase windows with
// an initial lock-up and periodic submission windows.
type IntervalFundRedemption struct {
	SubType                   string `json:"subType,omitempty" yaml:"subType,omitempty"`
	RepurchaseFrequency       string `json:"repurchaseFrequency" yaml:"repurchaseFrequency"`
	LockUpPeriodMonths        int    `json:"lockUpPeriod" yaml:"lockUpPeriod"`
	SubmissionWindowDays      int    `json:"submissionWindowDays" yaml:"submissionWindowDays"`
	LockTokensOnRequest       bool   `json:"lockTokensOnRequest,omitempty" yaml:"lockTokensOnRequest,omitempty"`
	UseWindowNAV              bool   `json:"useWindowNAV,omitempty" yaml:"useWindowNAV,omitempty"`
	EnableProRataDistribution bool   `json:"enableProRataDistribution,omitempty" yaml:"enableProRataDistribution,omitempty"`
	QueueUnprocessedRequests  bool   `json:"queueUnprocessedRequests,omitempty" yaml:"queueUnprocessedRequests,omitempty"`
	EnableAdminOverride       bool   `json:"enableAdminOverride,omitempty" yaml:"enableAdminOverride,omitempty"`
}

// DisplayName derives a human-readable label from the populated payload. It
// falls back to a generic label when the payload for the declared type is
// missing.
func (r *Rule) DisplayName() string {
	switch r.Type {
	case RuleTransferLimit:
		if p := r.TransferLimit; p != nil {
			return fmt.Sprintf("Transfer Limit (%v %s)", p.TransferAmount, p.Currency)
		}
	case RuleInvestorTransactionLimit:
		if p := r.InvestorTransactionLimit; p != nil {
			return fmt.Sprintf("Investor Transaction Limit (%s)", p.TransactionType)
		}
	case RuleVelocityLimit:
		if p := r.VelocityLimit; p != nil {
			return fmt.Sprintf("Velocity Limit (%s)", p.TimePeriod)
		}
	case RuleLockUpPeriod:
		if p := r.LockUpPeriod; p != nil {
			return fmt.Sprintf("Lock-Up Period (%s - %s)",
				p.StartDate.Format("2006-01-02"), p.EndDate.Format("2006-01-02"))
		}
	case RuleWhitelistTransfer:
		if p := r.WhitelistTransfer; p != nil {
			return fmt.Sprintf("Whitelist Transfer (%d addresses)", len(p.Addresses))
		}
	case RuleVolumeSupplyLimit:
		if p := r.VolumeSupplyLimit; p != nil {
			kind := "Volume"
			if p.LimitType == LimitTypeTotalSupply {
				kind = "Total Supply"
			}
			return fmt.Sprintf("%s Limit (%v)", kind, p.LimitAmount)
		}
	case RuleInvestorPositionLimit:
		if p := r.InvestorPositionLimit; p != nil {
			name := fmt.Sprintf("Position Limit (%v %s)", p.MaxAmount, p.Unit)
			if p.TimeBasedScaling {
				name += " with scaling"
			}
			if p.DynamicProfiling {
				name += ", dynamic"
			}
			return name
		}
	case RuleKYCVerification:
		if p := r.KYCVerification; p != nil {
			return fmt.Sprintf("KYC Verification (%s)", strings.ToUpper(p.ComplianceCheckType))
		}
	case RuleIntervalFundRedemption:
		if p := r.IntervalFundRedemption; p != nil {
			return fmt.Sprintf("Interval Fund Repurchase (%s)", p.RepurchaseFrequency)
		}
	}
	return fmt.Sprintf("Rule (%s)", r.Type)
}

// Clone returns a deep copy of the rule.
func (r *Rule) Clone() Rule {
	ret := *r
	if r.TransferLimit != nil {
		p := *r.TransferLimit
		ret.TransferLimit = &p
	}
	if r.InvestorTransactionLimit != nil {
		p := *r.InvestorTransactionLimit
		p.SelectedTiers = append([]string(nil), p.SelectedTiers...)
		ret.InvestorTransactionLimit = &p
	}
	if r.VelocityLimit != nil {
		p := *r.VelocityLimit
		p.SelectedTiers = append([]string(nil), p.SelectedTiers...)
		ret.VelocityLimit = &p
	}
	if r.LockUpPeriod != nil {
		p := *r.LockUpPeriod
		p.SelectedTiers = append([]string(nil), p.SelectedTiers...)
		ret.LockUpPeriod = &p
	}
	if r.WhitelistTransfer != nil {
		p := *r.WhitelistTransfer
		p.Addresses = append([]string(nil), p.Addresses...)
		p.SelectedTiers = append([]string(nil), p.SelectedTiers...)
		ret.WhitelistTransfer = &p
	}
	if r.VolumeSupplyLimit != nil {
		p := *r.VolumeSupplyLimit
		ret.VolumeSupplyLimit = &p
	}
	if r.InvestorPositionLimit != nil {
		p := *r.InvestorPositionLimit
		p.SelectedTiers = append([]string(nil), p.SelectedTiers...)
		ret.InvestorPositionLimit = &p
	}
	if r.KYCVerification != nil {
		p := *r.KYCVerification
		p.DocumentTypes = append([]string(nil), p.DocumentTypes...)
		ret.KYCVerification = &p
	}
	if r.IntervalFundRedemption != nil {
		p := *r.IntervalFundRedemption
		ret.IntervalFundRedemption = &p
	}
	return ret
}

// Tiers returns the investor tier scope of the rule; empty means all tiers.
func (r *Rule) Tiers() []string {
	switch r.Type {
	case RuleInvestorTransactionLimit:
		if r.InvestorTransactionLimit != nil {
			return r.InvestorTransactionLimit.SelectedTiers
		}
	case RuleVelocityLimit:
		if r.VelocityLimit != nil {
			return r.VelocityLimit.SelectedTiers
		}
	case RuleLockUpPeriod:
		if r.LockUpPeriod != nil {
			return r.LockUpPeriod.SelectedTiers
		}
	case RuleWhitelistTransfer:
		if r.WhitelistTransfer != nil {
			return r.WhitelistTransfer.SelectedTiers
		}
	case RuleInvestorPositionLimit:
		if r.InvestorPositionLimit != nil {
			return r.InvestorPositionLimit.SelectedTiers
		}
	}
	return nil
}

// Direction returns the transaction direction scope of the rule; empty means
// the rule is direction-agnostic.
func (r *Rule) Direction() TransactionType {
	switch r.Type {
	case RuleTransferLimit:
		if r.TransferLimit != nil {
			return r.TransferLimit.TransactionType
		}
	case RuleInvestorTransactionLimit:
		if r.InvestorTransactionLimit != nil {
			return r.InvestorTransactionLimit.TransactionType
		}
	case RuleVelocityLimit:
		if r.VelocityLimit != nil {
			return r.VelocityLimit.TransactionType
		}
	case RuleLockUpPeriod:
		if r.LockUpPeriod != nil {
			return r.LockUpPeriod.TransactionType
		}
	case RuleWhitelistTransfer:
		if r.WhitelistTransfer != nil {
			return r.WhitelistTransfer.TransactionType
		}
	}
	return ""
}

// Period returns the time window scope of the rule when it has one.
func (r *Rule) Period() TimePeriod {
	switch r.Type {
	case RuleVelocityLimit:
		if r.VelocityLimit != nil {
			return r.VelocityLimit.TimePeriod
		}
	case RuleVolumeSupplyLimit:
		if r.VolumeSupplyLimit != nil {
			return r.VolumeSupplyLimit.TimePeriod
		}
	}
	return ""
}

// TiersOverlap reports whether two tier scopes can apply to the same
// investor. An empty scope means all tiers and overlaps everything.
func TiersOverlap(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return true
	}
	for _, t := range a {
		for _, o := range b {
			if t == o {
				return true
			}
		}
	}
	return false
}
