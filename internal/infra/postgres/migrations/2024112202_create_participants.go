package migrations

import _ "embed"

//go:embed 0002_create_participants.sql
var createParticipantsSQL string

func init() {
	Migrations.MustRegister(
		execSQL(createParticipantsSQL),
		execSQL(`DROP TABLE IF EXISTS participants`),
	)
}
