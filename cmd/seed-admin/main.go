// seed-admin creates the default guild when it does not exist and creates or
// resets its admin user.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//	SEED_ADMIN_PASSWORD=... go run ./cmd/seed-admin
//
// Optional: SEED_GUILD_NAME, SEED_GUILD_REALM, SEED_GUILD_REGION,
// SEED_ADMIN_USERNAME, SEED_ADMIN_NAME.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/guildroster/roster_backend/config"
	"github.com/guildroster/roster_backend/models"
	"github.com/guildroster/roster_backend/utils"
)

func envOr(key string, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func main() {
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if len(password) < 8 {
		fmt.Fprintln(os.Stderr, "SEED_ADMIN_PASSWORD must be set (at least 8 characters).")
		os.Exit(2)
	}
	guildName := envOr("SEED_GUILD_NAME", "Default Guild")
	username := envOr("SEED_ADMIN_USERNAME", "guildAdmin")
	name := envOr("SEED_ADMIN_NAME", "Guild Admin")

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	if !config.EnvBoolDefault("SKIP_MIGRATIONS", false) {
		models.MigrateTable()
	}

	// no user yet, so bypass tenant scoping
	ctx := utils.SetSkipTenantScopeInContext(context.Background(), true)
	ctx = utils.SetIsAdminInContext(ctx, true)
	ctx = utils.SetUsernameInContext(ctx, username)

	guild, err := models.FindGuildByName(ctx, guildName)
	if errors.Is(err, utils.ErrorRecordNotFound) {
		guild, err = models.CreateGuild(ctx, &models.NewGuild{
			Name:   guildName,
			Realm:  os.Getenv("SEED_GUILD_REALM"),
			Region: os.Getenv("SEED_GUILD_REGION"),
		})
		if err == nil {
			fmt.Printf("created guild %q (%s)\n", guild.Name, guild.ID)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to find or create guild: %v\n", err)
		os.Exit(1)
	}

	user, err := models.UpsertAdmin(ctx, guild.ID.String(), username, name, password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to upsert admin: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("admin %q ready for guild %q (user id %d)\n", user.Username, guild.Name, user.ID)
}
