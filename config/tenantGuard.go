package config

import (
	"context"
	"strings"

	"github.com/guildroster/roster_backend/appctx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const tenantColumn = "guild_id"

// TenantGuardPlugin scopes queries/updates/deletes to the request's guild_id
// when the model has a guild_id column.
//
// NOTE:
// - This does NOT apply to Raw SQL queries. Those must include guild_id manually.
// - Admin/internal bypass is explicit via context flags.
type TenantGuardPlugin struct{}

func NewTenantGuardPlugin() *TenantGuardPlugin { return &TenantGuardPlugin{} }

func (p *TenantGuardPlugin) Name() string { return "tenant_guard" }

func (p *TenantGuardPlugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register("tenant_guard:query", tenantGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("tenant_guard:row", tenantGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("tenant_guard:update", tenantGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("tenant_guard:delete", tenantGuardCallback); err != nil {
		return err
	}
	return nil
}

func tenantGuardCallback(db *gorm.DB) {
	if db == nil || db.Statement == nil {
		return
	}
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	if shouldBypassTenantScope(ctx) {
		return
	}
	guildID := guildIdFromContext(ctx)
	if guildID == "" {
		return
	}

	if db.Statement.Schema == nil {
		return
	}
	hasGuildID := false
	for _, f := range db.Statement.Schema.Fields {
		if strings.EqualFold(f.DBName, tenantColumn) {
			hasGuildID = true
			break
		}
	}
	if !hasGuildID {
		return
	}

	// Don't duplicate an explicit tenant filter.
	if whereHasGuildID(db.Statement.Clauses["WHERE"]) {
		return
	}

	db.Statement.AddClause(clause.Where{
		Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: db.Statement.Table, Name: tenantColumn},
				Value:  guildID,
			},
		},
	})
}

func guildIdFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(appctx.ContextKeyGuildId).(string); ok && v != "" {
		return v
	}
	return ""
}

func shouldBypassTenantScope(ctx context.Context) bool {
	if v, ok := ctx.Value(appctx.ContextKeySkipTenantScope).(bool); ok && v {
		return true
	}
	if v, ok := ctx.Value(appctx.ContextKeyIsAdmin).(bool); ok && v {
		return true
	}
	return false
}

func whereHasGuildID(c clause.Clause) bool {
	if c.Expression == nil {
		return false
	}
	w, ok := c.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, e := range w.Exprs {
		if exprHasGuildID(e) {
			return true
		}
	}
	return false
}

func exprHasGuildID(e clause.Expression) bool {
	switch v := e.(type) {
	case clause.Eq:
		return colIsGuildID(v.Column)
	case clause.Neq:
		return colIsGuildID(v.Column)
	case clause.IN:
		return colIsGuildID(v.Column)
	case clause.AndConditions:
		for _, x := range v.Exprs {
			if exprHasGuildID(x) {
				return true
			}
		}
		return false
	case clause.OrConditions:
		for _, x := range v.Exprs {
			if exprHasGuildID(x) {
				return true
			}
		}
		return false
	case clause.Expr:
		// Best-effort for raw expressions.
		return strings.Contains(strings.ToLower(v.SQL), tenantColumn)
	default:
		return false
	}
}

func colIsGuildID(col any) bool {
	switch c := col.(type) {
	case string:
		return strings.EqualFold(c, tenantColumn)
	case clause.Column:
		return strings.EqualFold(c.Name, tenantColumn)
	default:
		return false
	}
}
