package database

const createTablesSQL = `
	CREATE TABLE IF NOT EXISTS pne_runs (
		run_id UUID PRIMARY KEY,
		mode VARCHAR(16) NOT NULL,
		host VARCHAR(255) NOT NULL,
		enabled_only BOOLEAN NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL,
		flagged_count INTEGER NOT NULL,
		new_count INTEGER NOT NULL,
		removed_count INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS pne_observations (
		observation_id UUID PRIMARY KEY,
		run_id UUID NOT NULL REFERENCES pne_runs(run_id),
		user_principal_name VARCHAR(1024) NOT NULL,
		display_name VARCHAR(1024),
		sam_account_name VARCHAR(256),
		last_logon TIMESTAMPTZ,
		change VARCHAR(16) NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pne_observations_upn ON pne_observations (lower(user_principal_name));
`

const insertRunQuery = `
	INSERT INTO pne_runs (run_id, mode, host, enabled_only, started_at, finished_at, flagged_count, new_count, removed_count)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

const insertObservationQuery = `
	INSERT INTO pne_observations (observation_id, run_id, user_principal_name, display_name, sam_account_name, last_logon, change)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
`
