package models

import (
	"log"

	"github.com/guildroster/roster_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Guild{}, &User{},
		&GuildMember{}, &Team{}, &Character{},
		&Scenario{}, &Raid{}, &Attendance{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
