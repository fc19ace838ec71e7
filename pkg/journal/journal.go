package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/calvinalkan/graphrec/internal/metrics"
	"github.com/calvinalkan/graphrec/pkg/record"
	"github.com/calvinalkan/graphrec/pkg/recordaccess"
)

// FileName is the journal file name inside a store directory.
const FileName = "journal.db"

const schemaVersion = 1

// dsnParams apply to every pooled connection.
const dsnParams = "?_foreign_keys=on&_journal_mode=WAL&_synchronous=FULL"

// Batch is the commands of one buffered commit.
type Batch struct {
	Seq       int64
	CreatedAt time.Time
	Commands  []recordaccess.Command
}

// Journal is an open journal database.
//
// Journal is safe for concurrent use.
type Journal struct {
	path string
	db   *sql.DB
}

var _ recordaccess.CommandSink = (*Journal)(nil)

// Open opens the journal at path, creating it if missing.
func Open(ctx context.Context, path string) (*Journal, error) {
	if path == "" {
		return nil, errors.New("open journal: path is empty")
	}

	db, err := sql.Open("sqlite3", path+dsnParams)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	// One writer at a time; a second pooled connection would only see SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	err = db.PingContext(ctx)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("ping journal: %w", err), db.Close())
	}

	err = prepare(ctx, db)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("%s: %w", path, err), db.Close())
	}

	return &Journal{path: path, db: db}, nil
}

func prepare(ctx context.Context, db *sql.DB) error {
	var version int

	err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	switch version {
	case schemaVersion:
		return nil
	case 0:
		return createSchema(ctx, db)
	default:
		return fmt.Errorf("version %d, want %d: %w", version, schemaVersion, ErrSchemaVersion)
	}
}

func createSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema txn: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`CREATE TABLE batches (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			created_ns INTEGER NOT NULL,
			applied INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE commands (
			batch INTEGER NOT NULL REFERENCES batches(seq) ON DELETE CASCADE,
			pos INTEGER NOT NULL,
			kind TEXT NOT NULL,
			record_id INTEGER NOT NULL,
			created INTEGER NOT NULL,
			before_image BLOB NOT NULL,
			after_image BLOB NOT NULL,
			PRIMARY KEY (batch, pos)
		) WITHOUT ROWID`,
		"CREATE INDEX idx_batches_applied ON batches(applied, seq)",
		fmt.Sprintf("PRAGMA user_version = %d", schemaVersion),
	}

	for _, stmt := range statements {
		_, err = tx.ExecContext(ctx, stmt)
		if err != nil {
			return fmt.Errorf("apply schema statement %q: %w", stmt, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("commit schema txn: %w", err)
	}

	return nil
}

// Path returns the journal database path.
func (j *Journal) Path() string { return j.path }

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Apply appends cmds as one batch.
func (j *Journal) Apply(cmds []recordaccess.Command) error {
	_, err := j.Append(context.Background(), cmds)

	return err
}

// Append stores cmds as one batch and returns its sequence number.
func (j *Journal) Append(ctx context.Context, cmds []recordaccess.Command) (int64, error) {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin append txn: %w", err)
	}

	committed := false

	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, "INSERT INTO batches (created_ns) VALUES (?)", time.Now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("insert batch: %w", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("batch sequence: %w", err)
	}

	insert, err := tx.PrepareContext(ctx, `
		INSERT INTO commands (batch, pos, kind, record_id, created, before_image, after_image)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare command insert: %w", err)
	}

	defer func() { _ = insert.Close() }()

	var before, after []byte

	for pos, c := range cmds {
		before, err = record.Encode(c.Before)
		if err != nil {
			return 0, fmt.Errorf("encode %s %d before image: %w", c.Kind, c.ID, err)
		}

		after, err = record.Encode(c.After)
		if err != nil {
			return 0, fmt.Errorf("encode %s %d after image: %w", c.Kind, c.ID, err)
		}

		_, err = insert.ExecContext(ctx, seq, pos, c.Kind.String(), c.ID, c.Created, before, after)
		if err != nil {
			return 0, fmt.Errorf("insert %s %d: %w", c.Kind, c.ID, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("commit append txn: %w", err)
	}

	committed = true

	metrics.JournalAppendedBatchesTotal.Inc()

	return seq, nil
}

// Pending returns the batches not yet applied, in append order.
func (j *Journal) Pending(ctx context.Context) ([]Batch, error) {
	batches, err := j.pendingBatches(ctx)
	if err != nil {
		return nil, err
	}

	for i := range batches {
		batches[i].Commands, err = j.commands(ctx, batches[i].Seq)
		if err != nil {
			return nil, err
		}
	}

	return batches, nil
}

func (j *Journal) pendingBatches(ctx context.Context) ([]Batch, error) {
	rows, err := j.db.QueryContext(ctx, "SELECT seq, created_ns FROM batches WHERE applied = 0 ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("query pending batches: %w", err)
	}

	defer func() { _ = rows.Close() }()

	var batches []Batch

	for rows.Next() {
		var (
			b         Batch
			createdNS int64
		)

		err = rows.Scan(&b.Seq, &createdNS)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}

		b.CreatedAt = time.Unix(0, createdNS)
		batches = append(batches, b)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("read pending batches: %w", err)
	}

	return batches, nil
}

func (j *Journal) commands(ctx context.Context, seq int64) ([]recordaccess.Command, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT kind, record_id, created, before_image, after_image
		FROM commands WHERE batch = ? ORDER BY pos`, seq)
	if err != nil {
		return nil, fmt.Errorf("query batch %d: %w", seq, err)
	}

	defer func() { _ = rows.Close() }()

	var cmds []recordaccess.Command

	for rows.Next() {
		var (
			kindName      string
			c             recordaccess.Command
			before, after []byte
		)

		err = rows.Scan(&kindName, &c.ID, &c.Created, &before, &after)
		if err != nil {
			return nil, fmt.Errorf("scan batch %d command: %w", seq, err)
		}

		c.Kind, err = record.ParseKind(kindName)
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w: %w", seq, ErrCorrupt, err)
		}

		c.Before, err = record.Decode(c.Kind, c.ID, before)
		if err != nil {
			return nil, fmt.Errorf("batch %d %s %d before image: %w: %w", seq, c.Kind, c.ID, ErrCorrupt, err)
		}

		c.After, err = record.Decode(c.Kind, c.ID, after)
		if err != nil {
			return nil, fmt.Errorf("batch %d %s %d after image: %w: %w", seq, c.Kind, c.ID, ErrCorrupt, err)
		}

		cmds = append(cmds, c)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("read batch %d: %w", seq, err)
	}

	return cmds, nil
}

// MarkApplied marks batch seq applied so Pending no longer returns it.
func (j *Journal) MarkApplied(ctx context.Context, seq int64) error {
	res, err := j.db.ExecContext(ctx, "UPDATE batches SET applied = 1 WHERE seq = ?", seq)
	if err != nil {
		return fmt.Errorf("mark batch %d applied: %w", seq, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark batch %d applied: %w", seq, err)
	}

	if n == 0 {
		return fmt.Errorf("batch %d: %w", seq, ErrUnknownBatch)
	}

	return nil
}

// Prune deletes applied batches and returns how many were deleted.
func (j *Journal) Prune(ctx context.Context) (int64, error) {
	res, err := j.db.ExecContext(ctx, "DELETE FROM batches WHERE applied = 1")
	if err != nil {
		return 0, fmt.Errorf("prune applied batches: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune applied batches: %w", err)
	}

	return n, nil
}
