package storage

// dbQuery carries the dialect variants of one statement.
type dbQuery struct {
	ID       string
	Postgres string
	SQLite   string
}

func (q dbQuery) For(driver string) string {
	if driver == DriverSQLite {
		return q.SQLite
	}
	return q.Postgres
}

var (
	queryCreateWorkflowsTable = dbQuery{
		ID: "WFQ-01",
		Postgres: `CREATE TABLE IF NOT EXISTS workflows (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			structure JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now())`,
		SQLite: `CREATE TABLE IF NOT EXISTS workflows (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			structure TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
	}
	queryCreateChatLogsTable = dbQuery{
		ID: "WFQ-02",
		Postgres: `CREATE TABLE IF NOT EXISTS chat_logs (
			id TEXT PRIMARY KEY,
			workflow_id TEXT REFERENCES workflows(id) ON DELETE SET NULL,
			session_id TEXT NOT NULL,
			query TEXT NOT NULL,
			response TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now())`,
		SQLite: `CREATE TABLE IF NOT EXISTS chat_logs (
			id TEXT PRIMARY KEY,
			workflow_id TEXT REFERENCES workflows(id) ON DELETE SET NULL,
			session_id TEXT NOT NULL,
			query TEXT NOT NULL,
			response TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
	}
	queryInsertWorkflow = dbQuery{
		ID:       "WFQ-03",
		Postgres: `INSERT INTO workflows (id, name, structure, created_at) VALUES ($1, $2, $3, $4)`,
		SQLite:   `INSERT INTO workflows (id, name, structure, created_at) VALUES (?, ?, ?, ?)`,
	}
	queryGetWorkflow = dbQuery{
		ID:       "WFQ-04",
		Postgres: `SELECT id, name, structure, created_at FROM workflows WHERE id = $1`,
		SQLite:   `SELECT id, name, structure, created_at FROM workflows WHERE id = ?`,
	}
	queryListWorkflows = dbQuery{
		ID:       "WFQ-05",
		Postgres: `SELECT id, name, structure, created_at FROM workflows ORDER BY created_at DESC, id`,
		SQLite:   `SELECT id, name, structure, created_at FROM workflows ORDER BY created_at DESC, id`,
	}
	queryDeleteWorkflow = dbQuery{
		ID:       "WFQ-06",
		Postgres: `DELETE FROM workflows WHERE id = $1`,
		SQLite:   `DELETE FROM workflows WHERE id = ?`,
	}
	queryInsertChatLog = dbQuery{
		ID: "WFQ-07",
		Postgres: `INSERT INTO chat_logs (id, workflow_id, session_id, query, response, status, created_at) ` +
			`VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		SQLite: `INSERT INTO chat_logs (id, workflow_id, session_id, query, response, status, created_at) ` +
			`VALUES (?, ?, ?, ?, ?, ?, ?)`,
	}
	queryListChatLogs = dbQuery{
		ID: "WFQ-08",
		Postgres: `SELECT id, workflow_id, session_id, query, response, status, created_at FROM chat_logs ` +
			`WHERE session_id = $1 ORDER BY created_at, id LIMIT $2`,
		SQLite: `SELECT id, workflow_id, session_id, query, response, status, created_at FROM chat_logs ` +
			`WHERE session_id = ? ORDER BY created_at, id LIMIT ?`,
	}
)
