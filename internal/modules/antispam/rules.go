package antispam

import (
	"sweeper/internal/storage"

	"go.uber.org/zap"
)

// Rule kinds. Applied in ascending order, each matching rule overwriting the
// running decision: later kinds win over earlier ones, not first-match-wins.
// Administrators layer broad defaults (1, 2) under narrower overrides (3-8).
const (
	RuleBlockAll          = 1
	RuleAllowAll          = 2
	RuleBlockChannels     = 3
	RuleAllowChannels     = 4
	RuleAllowMatchChannel = 5
	RuleBlockMatchChannel = 6
	RuleAllowMatch        = 7
	RuleBlockMatch        = 8
)

// Context carries one message/URL pair through rule evaluation. TargetID is
// the resolved guild for invite links and empty for everything else.
type Context struct {
	ChannelID string
	UserID    string
	Match     string
	TargetID  string
}

// Evaluate runs the guild's rules for a service over one matched URL.
// The default is allow; every rule whose condition holds overwrites the
// decision, and the caller supplies rules already ordered ascending by kind.
func Evaluate(rules []storage.SpamRule, rctx Context, logger *zap.Logger) bool {
	allowed := true
	for _, rule := range rules {
		switch rule.RuleKind {
		case RuleBlockAll:
			allowed = false
		case RuleAllowAll:
			allowed = true
		case RuleBlockChannels:
			if contains(rule.ChannelIDs, rctx.ChannelID) {
				allowed = false
			}
		case RuleAllowChannels:
			if rule.ChannelIDs == nil {
				// A null channel list means allow everywhere.
				allowed = true
			} else if contains(rule.ChannelIDs, rctx.ChannelID) {
				allowed = true
			} else {
				allowed = false
			}
		case RuleAllowMatchChannel:
			if matchesRule(rule, rctx) && contains(rule.ChannelIDs, rctx.ChannelID) {
				allowed = true
			} else {
				allowed = false
			}
		case RuleBlockMatchChannel:
			if matchesRule(rule, rctx) && contains(rule.ChannelIDs, rctx.ChannelID) {
				allowed = false
			}
		case RuleAllowMatch:
			if matchesRule(rule, rctx) || contains(rule.MatchIDs, rctx.Match) {
				if rule.UserIDs != nil {
					// Only the listed users get the allowance.
					if contains(rule.UserIDs, rctx.UserID) {
						allowed = true
					}
				} else {
					allowed = true
				}
			}
		case RuleBlockMatch:
			if matchesRule(rule, rctx) {
				allowed = false
			}
		default:
			logger.Warn("unknown rule kind skipped",
				zap.Int64("rule_id", rule.ID), zap.Int("rule_kind", rule.RuleKind))
		}

		logger.Debug("rule applied",
			zap.Int64("rule_id", rule.ID),
			zap.Int("rule_kind", rule.RuleKind),
			zap.Bool("allowed", allowed))
	}
	return allowed
}

// matchesRule reports whether the matched substring appears in the rule's
// text list, or the resolved target guild in its id list.
func matchesRule(rule storage.SpamRule, rctx Context) bool {
	if rule.MatchText != nil && contains(rule.MatchText, rctx.Match) {
		return true
	}
	if rctx.TargetID != "" && rule.MatchIDs != nil && contains(rule.MatchIDs, rctx.TargetID) {
		return true
	}
	return false
}

func contains(values []string, value string) bool {
	if value == "" {
		return false
	}
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
