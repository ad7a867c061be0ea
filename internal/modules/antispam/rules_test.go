package antispam

import (
	"testing"

	"sweeper/internal/storage"

	"go.uber.org/zap"
)

func evalRules(rules []storage.SpamRule, rctx Context) bool {
	return Evaluate(rules, rctx, zap.NewNop())
}

func TestEvaluateDefaultsToAllow(t *testing.T) {
	if !evalRules(nil, Context{ChannelID: "c1", Match: "discord.gg/x"}) {
		t.Fatal("no rules should mean allow")
	}
}

func TestLaterKindOverridesEarlier(t *testing.T) {
	rules := []storage.SpamRule{
		{ID: 1, RuleKind: RuleBlockAll},
		{ID: 2, RuleKind: RuleAllowAll},
	}
	if !evalRules(rules, Context{ChannelID: "c1", Match: "discord.gg/x"}) {
		t.Fatal("allow-all applies after block-all and should win")
	}

	rules = []storage.SpamRule{{ID: 1, RuleKind: RuleBlockAll}}
	if evalRules(rules, Context{ChannelID: "c1", Match: "discord.gg/x"}) {
		t.Fatal("lone block-all should block")
	}
}

func TestBlockChannels(t *testing.T) {
	rules := []storage.SpamRule{
		{ID: 1, RuleKind: RuleBlockChannels, ChannelIDs: []string{"c1", "c2"}},
	}
	if evalRules(rules, Context{ChannelID: "c1", Match: "m"}) {
		t.Fatal("listed channel should be blocked")
	}
	if !evalRules(rules, Context{ChannelID: "c9", Match: "m"}) {
		t.Fatal("unlisted channel should stay allowed")
	}
}

func TestAllowChannelsNilListMeansEverywhere(t *testing.T) {
	rules := []storage.SpamRule{
		{ID: 1, RuleKind: RuleBlockAll},
		{ID: 2, RuleKind: RuleAllowChannels, ChannelIDs: nil},
	}
	if !evalRules(rules, Context{ChannelID: "c1", Match: "m"}) {
		t.Fatal("nil channel list should allow everywhere")
	}

	rules[1].ChannelIDs = []string{"c2"}
	if evalRules(rules, Context{ChannelID: "c1", Match: "m"}) {
		t.Fatal("channel outside the allow list should be blocked")
	}
	if !evalRules(rules, Context{ChannelID: "c2", Match: "m"}) {
		t.Fatal("channel inside the allow list should be allowed")
	}
}

func TestAllowMatchChannelBlocksWhenNotMatching(t *testing.T) {
	rules := []storage.SpamRule{
		{ID: 1, RuleKind: RuleAllowMatchChannel, MatchText: []string{"discord.gg/good"}, ChannelIDs: []string{"c1"}},
	}
	if !evalRules(rules, Context{ChannelID: "c1", Match: "discord.gg/good"}) {
		t.Fatal("matching text in the listed channel should be allowed")
	}
	if evalRules(rules, Context{ChannelID: "c2", Match: "discord.gg/good"}) {
		t.Fatal("matching text outside the listed channel should be blocked")
	}
	if evalRules(rules, Context{ChannelID: "c1", Match: "discord.gg/other"}) {
		t.Fatal("non-matching text should be blocked by this kind")
	}
}

func TestBlockMatchChannel(t *testing.T) {
	rules := []storage.SpamRule{
		{ID: 1, RuleKind: RuleBlockMatchChannel, MatchText: []string{"discord.gg/bad"}, ChannelIDs: []string{"c1"}},
	}
	if evalRules(rules, Context{ChannelID: "c1", Match: "discord.gg/bad"}) {
		t.Fatal("matching text in a listed channel should be blocked")
	}
	if !evalRules(rules, Context{ChannelID: "c2", Match: "discord.gg/bad"}) {
		t.Fatal("matching text elsewhere should stay allowed")
	}
}

func TestAllowMatchUserGate(t *testing.T) {
	rules := []storage.SpamRule{
		{ID: 1, RuleKind: RuleBlockAll},
		{ID: 2, RuleKind: RuleAllowMatch, MatchText: []string{"discord.gg/good"}, UserIDs: []string{"u1"}},
	}
	if !evalRules(rules, Context{ChannelID: "c1", UserID: "u1", Match: "discord.gg/good"}) {
		t.Fatal("listed user posting the allowed match should pass")
	}
	if evalRules(rules, Context{ChannelID: "c1", UserID: "u2", Match: "discord.gg/good"}) {
		t.Fatal("unlisted user should stay blocked")
	}

	rules[1].UserIDs = nil
	if !evalRules(rules, Context{ChannelID: "c1", UserID: "u2", Match: "discord.gg/good"}) {
		t.Fatal("nil user list should allow the match for everyone")
	}
}

func TestBlockMatchByResolvedGuild(t *testing.T) {
	rules := []storage.SpamRule{
		{ID: 1, RuleKind: RuleBlockMatch, MatchIDs: []string{"12345"}},
	}
	if evalRules(rules, Context{ChannelID: "c1", Match: "discord.gg/evil", TargetID: "12345"}) {
		t.Fatal("invite resolving to the listed guild should be blocked")
	}
	if !evalRules(rules, Context{ChannelID: "c1", Match: "discord.gg/ok", TargetID: "99999"}) {
		t.Fatal("invite resolving to another guild should be allowed")
	}
	if !evalRules(rules, Context{ChannelID: "c1", Match: "discord.gg/ok"}) {
		t.Fatal("match with no resolved guild should not hit an id rule")
	}
}

func TestUnknownKindIsSkipped(t *testing.T) {
	rules := []storage.SpamRule{
		{ID: 1, RuleKind: RuleBlockAll},
		{ID: 2, RuleKind: 42},
	}
	if evalRules(rules, Context{ChannelID: "c1", Match: "m"}) {
		t.Fatal("unknown kind should not overwrite the block")
	}
}

func TestEvaluateIsPure(t *testing.T) {
	rules := []storage.SpamRule{
		{ID: 1, RuleKind: RuleBlockAll},
		{ID: 2, RuleKind: RuleAllowChannels, ChannelIDs: []string{"c1"}},
	}
	rctx := Context{ChannelID: "c1", Match: "m"}
	first := evalRules(rules, rctx)
	second := evalRules(rules, rctx)
	if first != second {
		t.Fatalf("same inputs gave different decisions: %t then %t", first, second)
	}
}
