package usage

const (
	queryCreateTable = `
		CREATE TABLE IF NOT EXISTS usage_records (
			user_id TEXT NOT NULL,
			day TEXT NOT NULL,
			count INTEGER NOT NULL DEFAULT 0,
			cost DOUBLE PRECISION NOT NULL DEFAULT 0,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, day)
		);
		CREATE INDEX IF NOT EXISTS idx_usage_records_day ON usage_records(day);
	`

	queryIncrement = `
		INSERT INTO usage_records (user_id, day, count, cost)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (user_id, day)
		DO UPDATE SET
			count = usage_records.count + 1,
			cost = usage_records.cost + EXCLUDED.cost,
			updated_at = NOW()
	`

	queryCount = `
		SELECT count
		FROM usage_records
		WHERE user_id = $1 AND day = $2
	`

	queryTotalCost = `
		SELECT COALESCE(SUM(cost), 0)
		FROM usage_records
		WHERE day = $1
	`

	queryHistory = `
		SELECT user_id, day, count, cost
		FROM usage_records
		WHERE user_id = $1 AND day >= $2
		ORDER BY day ASC
	`
)
