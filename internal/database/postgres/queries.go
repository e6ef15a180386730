package postgres

// Session metadata queries.
const (
	queryServerVersion = `SHOW server_version`

	querySessionSSL = `
		SELECT ssl
		FROM pg_stat_ssl
		WHERE pid = pg_backend_pid()`
)
