package config

import (
	"context"
	"testing"

	"github.com/guildroster/roster_backend/appctx"
	"gorm.io/gorm/clause"
)

func TestWhereHasGuildID(t *testing.T) {
	cases := []struct {
		name     string
		where    clause.Clause
		expected bool
	}{
		{"empty", clause.Clause{}, false},
		{"eq guild", clause.Clause{Expression: clause.Where{Exprs: []clause.Expression{
			clause.Eq{Column: clause.Column{Name: "guild_id"}, Value: "g"},
		}}}, true},
		{"eq other", clause.Clause{Expression: clause.Where{Exprs: []clause.Expression{
			clause.Eq{Column: clause.Column{Name: "team_id"}, Value: 1},
		}}}, false},
		{"raw expr", clause.Clause{Expression: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "GUILD_ID = ? AND id = ?"},
		}}}, true},
		{"nested and", clause.Clause{Expression: clause.Where{Exprs: []clause.Expression{
			clause.AndConditions{Exprs: []clause.Expression{clause.Eq{Column: "guild_id", Value: "g"}}},
		}}}, true},
	}
	for _, tc := range cases {
		if got := whereHasGuildID(tc.where); got != tc.expected {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.expected, got)
		}
	}
}

func TestShouldBypassTenantScope(t *testing.T) {
	ctx := context.Background()
	if shouldBypassTenantScope(ctx) {
		t.Fatalf("plain context must not bypass tenant scope")
	}
	if !shouldBypassTenantScope(appctx.Set(ctx, appctx.ContextKeyIsAdmin, true)) {
		t.Fatalf("admin context must bypass tenant scope")
	}
	if !shouldBypassTenantScope(appctx.Set(ctx, appctx.ContextKeySkipTenantScope, true)) {
		t.Fatalf("skip flag must bypass tenant scope")
	}
	if got := guildIdFromContext(appctx.Set(ctx, appctx.ContextKeyGuildId, "g-1")); got != "g-1" {
		t.Fatalf("expected guild id g-1, got %q", got)
	}
}
