package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a history record does not exist.
var ErrNotFound = errors.New("history record not found")

// Record is one solved problem.
type Record struct {
	ID          string
	Prompt      string
	Mode        string
	Topic       string
	Difficulty  string
	FinalAnswer string
	Consistent  bool
	HadImage    bool
	Provider    string
	ModelName   string
	// SolutionJSON is the full solution document as returned by the service.
	SolutionJSON string
	CreatedAt    time.Time
}

// TopicProgress aggregates solved problems per topic.
type TopicProgress struct {
	Topic          string
	ProblemsSolved int
	Consistent     int
	Score          float64
}

type HistoryStore struct {
	db *sql.DB
}

// NewHistoryStore opens (and creates) history.db in dataDir.
func NewHistoryStore(dataDir string) (*HistoryStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "history.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &HistoryStore{db: db}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

func (hs *HistoryStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS solves (
		id TEXT PRIMARY KEY,
		prompt TEXT NOT NULL,
		mode TEXT NOT NULL,
		topic TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		final_answer TEXT NOT NULL,
		consistent INTEGER NOT NULL,
		had_image INTEGER NOT NULL,
		solution_json TEXT NOT NULL,
		provider TEXT NOT NULL DEFAULT '',
		model_name TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_solves_created ON solves(created_at);
	CREATE INDEX IF NOT EXISTS idx_solves_topic ON solves(topic);
	`

	_, err := hs.db.Exec(schema)
	return err
}

// Save stores rec, assigning an id and timestamp when missing.
func (hs *HistoryStore) Save(rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `
	INSERT OR REPLACE INTO solves (id, prompt, mode, topic, difficulty, final_answer, consistent, had_image, solution_json, created_at, provider, model_name)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := hs.db.Exec(query,
		rec.ID,
		rec.Prompt,
		rec.Mode,
		rec.Topic,
		rec.Difficulty,
		rec.FinalAnswer,
		rec.Consistent,
		rec.HadImage,
		rec.SolutionJSON,
		rec.CreatedAt,
		rec.Provider,
		rec.ModelName,
	)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

const selectColumns = `id, prompt, mode, topic, difficulty, final_answer, consistent, had_image, solution_json, created_at, provider, model_name`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID,
		&rec.Prompt,
		&rec.Mode,
		&rec.Topic,
		&rec.Difficulty,
		&rec.FinalAnswer,
		&rec.Consistent,
		&rec.HadImage,
		&rec.SolutionJSON,
		&rec.CreatedAt,
		&rec.Provider,
		&rec.ModelName,
	)
	return rec, err
}

// Load returns one record by id.
func (hs *HistoryStore) Load(id string) (*Record, error) {
	row := hs.db.QueryRow(`SELECT `+selectColumns+` FROM solves WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	return &rec, nil
}

// List returns the newest records first. limit <= 0 returns all of them.
func (hs *HistoryStore) List(limit int) ([]Record, error) {
	query := `SELECT ` + selectColumns + ` FROM solves ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := hs.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Delete removes a record.
func (hs *HistoryStore) Delete(id string) error {
	res, err := hs.db.Exec(`DELETE FROM solves WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Progress aggregates records per topic, most practised first. Score is the
// share of consistent solutions as a percentage.
func (hs *HistoryStore) Progress() ([]TopicProgress, error) {
	rows, err := hs.db.Query(`
	SELECT topic, COUNT(*), SUM(consistent)
	FROM solves
	GROUP BY topic
	ORDER BY COUNT(*) DESC, topic ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate progress: %w", err)
	}
	defer rows.Close()

	progress := []TopicProgress{}
	for rows.Next() {
		var tp TopicProgress
		if err := rows.Scan(&tp.Topic, &tp.ProblemsSolved, &tp.Consistent); err != nil {
			return nil, err
		}
		if tp.ProblemsSolved > 0 {
			tp.Score = float64(tp.Consistent) / float64(tp.ProblemsSolved) * 100
		}
		progress = append(progress, tp)
	}
	return progress, rows.Err()
}

func (hs *HistoryStore) Close() error {
	return hs.db.Close()
}
