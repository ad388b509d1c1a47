package conflict_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearledger/policykit/conflict"
	"github.com/clearledger/policykit/model"
)

func date(value string) time.Time {
	t, _ := time.Parse("2006-01-02", value)
	return t
}

func positionLimit(id string, maxAmount float64, unit string, tiers ...string) model.Rule {
	return model.Rule{
		ID:   id,
		Type: model.RuleInvestorPositionLimit,
		InvestorPositionLimit: &model.InvestorPositionLimit{
			MaxAmount:     maxAmount,
			Unit:          unit,
			SelectedTiers: tiers,
		},
	}
}

func transactionLimit(id string, limitAmount float64, unit string) model.Rule {
	return model.Rule{
		ID:   id,
		Type: model.RuleInvestorTransactionLimit,
		InvestorTransactionLimit: &model.InvestorTransactionLimit{
			LimitAmount:     limitAmount,
			Unit:            unit,
			TransactionType: model.TxBoth,
		},
	}
}

func velocityLimit(id string, limitAmount float64, period model.TimePeriod) model.Rule {
	return model.Rule{
		ID:   id,
		Type: model.RuleVelocityLimit,
		VelocityLimit: &model.VelocityLimit{
			LimitAmount:     limitAmount,
			TimePeriod:      period,
			TransactionType: model.TxBoth,
		},
	}
}

func volumeLimit(id string, limitAmount float64, period model.TimePeriod) model.Rule {
	return model.Rule{
		ID:   id,
		Type: model.RuleVolumeSupplyLimit,
		VolumeSupplyLimit: &model.VolumeSupplyLimit{
			LimitType:   model.LimitTypeVolume,
			LimitAmount: limitAmount,
			TimePeriod:  period,
		},
	}
}

func TestDetect(t *testing.T) {
	type testCase struct {
		name             string
		rules            []model.Rule
		expectedCount    int
		expectedSeverity []conflict.Severity
	}

	tests := []testCase{
		{
			name:          "empty rule list",
			rules:         nil,
			expectedCount: 0,
		},
		{
			name:          "single rule",
			rules:         []model.Rule{positionLimit("r1", 500, "tokens")},
			expectedCount: 0,
		},
		{
			name: "position cap below transaction limit",
			rules: []model.Rule{
				positionLimit("r1", 500, "tokens"),
				transactionLimit("r2", 1000, "tokens"),
			},
			expectedCount:    1,
			expectedSeverity: []conflict.Severity{conflict.SeverityError},
		},
		{
			name: "position cap above transaction limit",
			rules: []model.Rule{
				positionLimit("r1", 5000, "tokens"),
				transactionLimit("r2", 1000, "tokens"),
			},
			expectedCount: 0,
		},
		{
			name: "position and transaction limits in different units",
			rules: []model.Rule{
				positionLimit("r1", 500, "tokens"),
				transactionLimit("r2", 1000, "USD"),
			},
			expectedCount: 0,
		},
		{
			name: "position and transaction limits in disjoint tiers",
			rules: []model.Rule{
				positionLimit("r1", 500, "tokens", "tier1"),
				{
					ID:   "r2",
					Type: model.RuleInvestorTransactionLimit,
					InvestorTransactionLimit: &model.InvestorTransactionLimit{
						LimitAmount:     1000,
						Unit:            "tokens",
						TransactionType: model.TxBoth,
						SelectedTiers:   []string{"tier3"},
					},
				},
			},
			expectedCount: 0,
		},
		{
			name: "velocity cap reaches volume cap",
			rules: []model.Rule{
				velocityLimit("r1", 100000, model.PerDay),
				volumeLimit("r2", 50000, model.PerDay),
			},
			expectedCount:    1,
			expectedSeverity: []conflict.Severity{conflict.SeverityWarning},
		},
		{
			name: "velocity and volume caps over different periods",
			rules: []model.Rule{
				velocityLimit("r1", 100000, model.PerDay),
				volumeLimit("r2", 50000, model.PerMonth),
			},
			expectedCount: 0,
		},
		{
			name: "transfer limit overridden by tighter transaction limit",
			rules: []model.Rule{
				{
					ID:   "r1",
					Type: model.RuleTransferLimit,
					TransferLimit: &model.TransferLimit{
						TransferAmount:  10000,
						Currency:        "USD",
						TransactionType: model.TxBoth,
					},
				},
				{
					ID:   "r2",
					Type: model.RuleInvestorTransactionLimit,
					InvestorTransactionLimit: &model.InvestorTransactionLimit{
						LimitAmount:     2500,
						Unit:            "usd",
						TransactionType: model.TxSubscribe,
					},
				},
			},
			expectedCount:    1,
			expectedSeverity: []conflict.Severity{conflict.SeverityWarning},
		},
		{
			name: "kyc with transaction gating rule",
			rules: []model.Rule{
				{
					ID:   "r1",
					Type: model.RuleKYCVerification,
					KYCVerification: &model.KYCVerification{
						ComplianceCheckType: "aml",
					},
				},
				velocityLimit("r2", 1000, model.PerWeek),
			},
			expectedCount:    1,
			expectedSeverity: []conflict.Severity{conflict.SeverityWarning},
		},
		{
			name: "lock-up overlapping whitelist window",
			rules: []model.Rule{
				{
					ID:   "r1",
					Type: model.RuleLockUpPeriod,
					LockUpPeriod: &model.LockUpPeriod{
						StartDate:       date("2024-01-01"),
						EndDate:         date("2024-06-30"),
						TransactionType: model.TxTransfer,
					},
				},
				{
					ID:   "r2",
					Type: model.RuleWhitelistTransfer,
					WhitelistTransfer: &model.WhitelistTransfer{
						Addresses:       []string{"0xabc", "0xdef"},
						TransactionType: model.TxTransfer,
					},
				},
			},
			expectedCount:    1,
			expectedSeverity: []conflict.Severity{conflict.SeverityWarning},
		},
		{
			name: "duplicate velocity limits",
			rules: []model.Rule{
				velocityLimit("r1", 1000, model.PerDay),
				velocityLimit("r2", 2000, model.PerDay),
			},
			expectedCount:    1,
			expectedSeverity: []conflict.Severity{conflict.SeverityWarning},
		},
		{
			name: "lock-up competing with interval fund lock-up",
			rules: []model.Rule{
				{
					ID:   "r1",
					Type: model.RuleLockUpPeriod,
					LockUpPeriod: &model.LockUpPeriod{
						StartDate: date("2024-01-01"),
						EndDate:   date("2024-12-31"),
					},
				},
				{
					ID:   "r2",
					Type: model.RuleIntervalFundRedemption,
					IntervalFundRedemption: &model.IntervalFundRedemption{
						RepurchaseFrequency:  "quarterly",
						LockUpPeriodMonths:   12,
						SubmissionWindowDays: 14,
					},
				},
			},
			expectedCount:    1,
			expectedSeverity: []conflict.Severity{conflict.SeverityWarning},
		},
		{
			name: "malformed payload skips predicate",
			rules: []model.Rule{
				{ID: "r1", Type: model.RuleInvestorPositionLimit},
				transactionLimit("r2", 1000, "tokens"),
			},
			expectedCount: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conflicts := conflict.Detect(tc.rules)
			require.Len(t, conflicts, tc.expectedCount)
			for i, severity := range tc.expectedSeverity {
				assert.EqualValues(t, severity, conflicts[i].Severity)
			}
		})
	}
}

// TestDetectScenario covers the canonical position-limit vs transaction-limit
// case end to end, including the report contents.
func TestDetectScenario(t *testing.T) {
	rules := []model.Rule{
		positionLimit("rule-1", 500, "tokens"),
		transactionLimit("rule-2", 1000, "tokens"),
	}
	conflicts := conflict.Detect(rules)
	require.Len(t, conflicts, 1)

	actual := conflicts[0]
	assert.EqualValues(t, "rule-1", actual.RuleA)
	assert.EqualValues(t, "rule-2", actual.RuleB)
	assert.EqualValues(t, conflict.SeverityError, actual.Severity)
	assert.Contains(t, actual.Reason, "rule-1")
	assert.Contains(t, actual.Reason, "rule-2")
	assert.Contains(t, actual.Reason, "500")
	assert.Contains(t, actual.Reason, "1000")
}

// TestDetectPure verifies detection is a pure function: repeated runs over
// the same list report identical conflicts and never mutate the input.
func TestDetectPure(t *testing.T) {
	rules := []model.Rule{
		positionLimit("r1", 500, "tokens"),
		transactionLimit("r2", 1000, "tokens"),
		velocityLimit("r3", 100000, model.PerDay),
		volumeLimit("r4", 50000, model.PerDay),
	}
	first := conflict.Detect(rules)
	second := conflict.Detect(rules)
	assert.EqualValues(t, first, second)
	assert.EqualValues(t, 500.0, rules[0].InvestorPositionLimit.MaxAmount)
}

// TestDetectPairOrder verifies conflicts follow the pairwise scan order with
// the earlier rule always reported first.
func TestDetectPairOrder(t *testing.T) {
	rules := []model.Rule{
		transactionLimit("r1", 1000, "tokens"),
		positionLimit("r2", 500, "tokens"),
		positionLimit("r3", 200, "tokens"),
	}
	conflicts := conflict.Detect(rules)
	require.Len(t, conflicts, 3)
	// (r1,r2) position-vs-transaction, (r1,r3) position-vs-transaction,
	// (r2,r3) duplicate position limits
	assert.EqualValues(t, "r1", conflicts[0].RuleA)
	assert.EqualValues(t, "r2", conflicts[0].RuleB)
	assert.EqualValues(t, "r1", conflicts[1].RuleA)
	assert.EqualValues(t, "r3", conflicts[1].RuleB)
	assert.EqualValues(t, "r2", conflicts[2].RuleA)
	assert.EqualValues(t, "r3", conflicts[2].RuleB)
}

// TestDetectWithExtraPredicate verifies the battery is extensible.
func TestDetectWithExtraPredicate(t *testing.T) {
	expired := func(a, b *model.Rule) []conflict.Conflict {
		if a.Type != model.RuleLockUpPeriod || a.LockUpPeriod == nil {
			return nil
		}
		if !a.LockUpPeriod.EndDate.Before(date("2024-01-01")) {
			return nil
		}
		return []conflict.Conflict{{Severity: conflict.SeverityWarning, Reason: "expired lock-up"}}
	}

	detector := conflict.New(conflict.WithPredicates(expired))
	rules := []model.Rule{
		{
			ID:   "r1",
			Type: model.RuleLockUpPeriod,
			LockUpPeriod: &model.LockUpPeriod{
				StartDate: date("2022-01-01"),
				EndDate:   date("2022-12-31"),
			},
		},
		velocityLimit("r2", 1000, model.PerDay),
	}
	conflicts := detector.Detect(rules)
	require.Len(t, conflicts, 1)
	assert.EqualValues(t, "expired lock-up", conflicts[0].Reason)
}
