package accounts

const (
	queryCreateTable = `
		CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			plan TEXT NOT NULL DEFAULT 'free',
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			last_login_at TIMESTAMP WITH TIME ZONE
		)
	`

	queryCreate = `
		INSERT INTO accounts (id, email, password_hash, plan)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, password_hash, plan, created_at, last_login_at
	`

	queryFindByID = `
		SELECT id, email, password_hash, plan, created_at, last_login_at
		FROM accounts
		WHERE id = $1
	`

	queryFindByEmail = `
		SELECT id, email, password_hash, plan, created_at, last_login_at
		FROM accounts
		WHERE email = $1
	`

	queryTouchLogin = `
		UPDATE accounts
		SET last_login_at = NOW()
		WHERE id = $1
	`
)
