package commands

import (
	"fmt"
	"log"

	"worksync/backend/internal/pkg/repository/postgresql"

	"github.com/pkg/errors"
)

// ErrHelp provides context that help was given.
var ErrHelp = errors.New("provided help")

type Scheme struct {
	Index       int
	Description string
	Query       string
}

var scheme = []Scheme{

	{
		Index:       1,
		Description: "CREATE TYPE \"attendance_result\" AS ENUM",
		Query: `
        CREATE TYPE "attendance_result" AS ENUM ('SUCCESS', 'FAIL');`,
	},
	{
		Index:       2,
		Description: "CREATE TYPE \"attendance_source\" AS ENUM",
		Query: `
        CREATE TYPE "attendance_source" AS ENUM ('DEVICE', 'MANUAL');`,
	},
	{
		Index:       3,
		Description: "CREATE TYPE \"sync_error_status\" AS ENUM",
		Query: `
        CREATE TYPE "sync_error_status" AS ENUM ('OPEN', 'RESOLVED', 'IGNORED');`,
	},
	{
		Index:       4,
		Description: "CREATE TYPE \"sync_error_type\" AS ENUM",
		Query: `
        CREATE TYPE "sync_error_type" AS ENUM ('attendance', 'worker');`,
	},
	{
		Index:       5,
		Description: "Create table: workers.",
		Query: `
        CREATE TABLE IF NOT EXISTS workers (
            id serial primary key,
            external_worker_id text unique,
            name text not null,
            phone text,
            birth_date text,
            company_name text,
            position text,
            trade text,
            is_active boolean default true,
            created_at timestamp default now(),
            updated_at timestamp,
            deleted_at timestamp
        );`,
	},
	{
		Index:       6,
		Description: "Create table: attendance_events.",
		Query: `
        CREATE TABLE IF NOT EXISTS attendance_events (
            id serial primary key,
            site_id text not null,
            user_id int references workers(id),
            external_worker_id text,
            checkin_at timestamptz not null,
            result attendance_result not null,
            source attendance_source not null,
            created_at timestamp default now(),
            updated_at timestamp,
            deleted_at timestamp
        );`,
	},
	{
		Index:       7,
		Description: "Unique key for idempotent attendance batch replays.",
		Query: `
        CREATE UNIQUE INDEX IF NOT EXISTS attendance_events_dedup
        ON attendance_events (external_worker_id, site_id, checkin_at);`,
	},
	{
		Index:       8,
		Description: "Create table: sync_errors.",
		Query: `
        CREATE TABLE IF NOT EXISTS sync_errors (
            id serial primary key,
            sync_type sync_error_type not null,
            error_code text not null,
            error_message text,
            site_id text,
            retry_count int default 0,
            status sync_error_status default 'OPEN',
            created_at timestamp default now(),
            updated_at timestamp,
            deleted_at timestamp
        );`,
	},
	{
		Index:       9,
		Description: "Create table: audit_logs.",
		Query: `
        CREATE TABLE IF NOT EXISTS audit_logs (
            id serial primary key,
            action text not null,
            actor_id text,
            target_type text,
            target_id text,
            details text,
            created_at timestamp default now(),
            updated_at timestamp,
            deleted_at timestamp
        );`,
	},
	{
		Index:       10,
		Description: "Index for the unmatched-record surface.",
		Query: `
        CREATE INDEX IF NOT EXISTS attendance_events_unmatched
        ON attendance_events (checkin_at) WHERE user_id IS NULL;`,
	},
}

// Migrate creates the scheme in the database.
func Migrate(db *postgresql.Database) {
	for _, s := range scheme {
		if _, err := db.Query(s.Query); err != nil {
			log.Fatalln("migrate error", err)
		}
	}
}

func MigrateUP(db *postgresql.Database) {
	var (
		version int
		dirty   bool
		er      *string
	)
	err := db.QueryRow("SELECT version, dirty, error FROM schema_migrations").Scan(&version, &dirty, &er)
	if err != nil {
		if err.Error() == `ERROR: relation "schema_migrations" does not exist (SQLSTATE=42P01)` {
			if _, err = db.Exec(`
				CREATE TABLE IF NOT EXISTS schema_migrations (version int not null, dirty bool not null, error text);
				DELETE FROM schema_migrations;
				INSERT INTO schema_migrations (version, dirty) values (0, false);
			`); err != nil {
				log.Fatalln("migrate schema_migrations create error", err)
			}
			version = 0
			dirty = false
		} else {
			log.Fatalln("migrate schema_migrations scan: ", err)
		}
	}

	if dirty {
		for _, v := range scheme {
			if v.Index == version {
				if _, err = db.Exec(v.Query); err != nil {
					if _, err = db.Exec(fmt.Sprintf(`UPDATE schema_migrations SET error = '%s'`, err.Error())); err != nil {
						log.Fatalln("migrate error", err)
					}
					log.Fatalln(fmt.Sprintf("migrate error version: %d", version), err)
				}
				if _, err = db.Exec(`UPDATE schema_migrations SET dirty = false, error = null`); err != nil {
					log.Fatalln("migrate error", err)
				}
			}
		}
	}

	for _, s := range scheme {
		if s.Index > version {
			if _, err = db.Exec(s.Query); err != nil {
				if _, err = db.Exec(fmt.Sprintf(`UPDATE schema_migrations SET error = '%s', version = %d, dirty = true`, err.Error(), s.Index)); err != nil {
					log.Fatalln("migrate error", err)
				}
				log.Fatalln(fmt.Sprintf("migrate error version: %d", s.Index), err)
			}
			if _, err = db.Exec(fmt.Sprintf(`UPDATE schema_migrations SET version = %d`, s.Index)); err != nil {
				log.Fatalln("migrate error", err)
			}
		}
	}
}
