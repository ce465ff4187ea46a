package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Divas-Gupta30/docflow/internal/graph"
)

// SavedWorkflow is a named workflow definition.
type SavedWorkflow struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Workflow  graph.Workflow `json:"workflow"`
	CreatedAt time.Time      `json:"created_at"`
}

// ChatLog is one executed query and its answer.
type ChatLog struct {
	ID         string    `json:"id"`
	WorkflowID string    `json:"workflow_id,omitempty"`
	SessionID  string    `json:"session_id"`
	Query      string    `json:"query"`
	Response   string    `json:"response"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// WorkflowStore keeps saved workflows and chat logs in Postgres or SQLite.
type WorkflowStore struct {
	db     *sql.DB
	driver string
	now    func() time.Time
	newID  func() string
}

func NewWorkflowStore(db *sql.DB, driver string) *WorkflowStore {
	return &WorkflowStore{
		db:     db,
		driver: driver,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// Migrate creates the tables when missing.
func (s *WorkflowStore) Migrate(ctx context.Context) error {
	for _, q := range []dbQuery{queryCreateWorkflowsTable, queryCreateChatLogsTable} {
		if _, err := s.db.ExecContext(ctx, q.For(s.driver)); err != nil {
			return fmt.Errorf("migrate %s: %w", q.ID, err)
		}
	}
	return nil
}

func (s *WorkflowStore) Create(ctx context.Context, name string, wf graph.Workflow) (*SavedWorkflow, error) {
	if _, err := graph.NewWorkflow(wf.Nodes, wf.Edges); err != nil {
		return nil, err
	}
	structure, err := json.Marshal(wf)
	if err != nil {
		return nil, fmt.Errorf("encode workflow: %w", err)
	}
	saved := &SavedWorkflow{ID: s.newID(), Name: name, Workflow: wf, CreatedAt: s.now()}
	if _, err := s.db.ExecContext(ctx, queryInsertWorkflow.For(s.driver),
		saved.ID, saved.Name, string(structure), saved.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert workflow: %w", err)
	}
	return saved, nil
}

func (s *WorkflowStore) Get(ctx context.Context, id string) (*SavedWorkflow, error) {
	row := s.db.QueryRowContext(ctx, queryGetWorkflow.For(s.driver), id)
	wf, err := scanWorkflow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("workflow %s: %w", id, ErrNotFound)
	}
	return wf, err
}

func (s *WorkflowStore) List(ctx context.Context) ([]SavedWorkflow, error) {
	rows, err := s.db.QueryContext(ctx, queryListWorkflows.For(s.driver))
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	out := []SavedWorkflow{}
	for rows.Next() {
		wf, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *wf)
	}
	return out, rows.Err()
}

func (s *WorkflowStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, queryDeleteWorkflow.For(s.driver), id)
	if err != nil {
		return fmt.Errorf("delete workflow: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("workflow %s: %w", id, ErrNotFound)
	}
	return nil
}

// LogChat records one run. An empty WorkflowID is stored as NULL.
func (s *WorkflowStore) LogChat(ctx context.Context, entry ChatLog) (*ChatLog, error) {
	if entry.ID == "" {
		entry.ID = s.newID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	var workflowID sql.NullString
	if entry.WorkflowID != "" {
		workflowID = sql.NullString{String: entry.WorkflowID, Valid: true}
	}
	if _, err := s.db.ExecContext(ctx, queryInsertChatLog.For(s.driver),
		entry.ID, workflowID, entry.SessionID, entry.Query, entry.Response, entry.Status, entry.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert chat log: %w", err)
	}
	return &entry, nil
}

// ChatLogs returns up to limit logs for a session, oldest first.
func (s *WorkflowStore) ChatLogs(ctx context.Context, sessionID string, limit int) ([]ChatLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, queryListChatLogs.For(s.driver), sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list chat logs: %w", err)
	}
	defer rows.Close()

	out := []ChatLog{}
	for rows.Next() {
		var (
			l          ChatLog
			workflowID sql.NullString
		)
		if err := rows.Scan(&l.ID, &workflowID, &l.SessionID, &l.Query, &l.Response, &l.Status, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.WorkflowID = workflowID.String
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *WorkflowStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(r rowScanner) (*SavedWorkflow, error) {
	var (
		wf        SavedWorkflow
		structure []byte
	)
	if err := r.Scan(&wf.ID, &wf.Name, &structure, &wf.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(structure, &wf.Workflow); err != nil {
		return nil, fmt.Errorf("decode workflow %s: %w", wf.ID, err)
	}
	return &wf, nil
}
