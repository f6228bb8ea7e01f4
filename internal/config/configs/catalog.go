package configs

// Catalog selects where the decision pipeline sources its campaign and
// creative candidates from. The embedded fixture catalog is the default and
// needs no external services; "postgres" switches to the database-backed
// catalog and requires a reachable Postgres configured via PSQL_.
type Catalog struct {
	// Source is either "fixture" or "postgres".
	Source string `env:"SOURCE" envDefault:"fixture"`
	// Seed loads the fixture catalog into the database on startup. Only
	// honoured when Source is "postgres".
	Seed bool `env:"SEED" envDefault:"false"`
}
