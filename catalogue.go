package voxstream

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bodgit/voxstream/stream"
	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3" // register driver
)

// Channel describes one encoded channel of a run.
type Channel struct {
	Position int
	Name     string
	SHA1     string // digest of the channel's bytes in the stream
	stream.Summary

	plane []byte
}

// Run describes a completed conversion.
type Run struct {
	ID       int64
	Output   string
	Width    int
	Height   int
	Bytes    int64
	Created  time.Time
	Channels []Channel
}

var errNoRun = errors.New("catalogue: no such run")

// Catalogue is a database of completed runs. The encoded planes of each
// channel are stored compressed so a run can be exported again later.
type Catalogue struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewCatalogue opens or creates the catalogue in file.
func NewCatalogue(file string) (*Catalogue, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"CREATE TABLE IF NOT EXISTS plane (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL UNIQUE, data BLOB NOT NULL)",
		"CREATE TABLE IF NOT EXISTS run (id INTEGER PRIMARY KEY NOT NULL, output TEXT NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, bytes INTEGER NOT NULL, created INTEGER NOT NULL)",
		"CREATE TABLE IF NOT EXISTS channel (run_id INTEGER NOT NULL, position INTEGER NOT NULL, name TEXT NOT NULL, plane_id INTEGER NOT NULL, mean REAL NOT NULL, stddev REAL NOT NULL, min INTEGER NOT NULL, max INTEGER NOT NULL, PRIMARY KEY(run_id, position), FOREIGN KEY(run_id) REFERENCES run(id), FOREIGN KEY(plane_id) REFERENCES plane(id))",
	} {
		if _, err = db.Exec(stmt); err != nil {
			db.Close()
			return nil, err
		}
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, err
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, err
	}

	return &Catalogue{
		db:  db,
		enc: enc,
		dec: dec,
	}, nil
}

// Close closes the database.
func (c *Catalogue) Close() error {
	c.dec.Close()
	if err := c.enc.Close(); err != nil {
		c.db.Close()
		return err
	}
	return c.db.Close()
}

func (c *Catalogue) addPlane(tx *sql.Tx, sha string, plane []byte) (int64, error) {
	var id int64
	switch err := tx.QueryRow("SELECT id FROM plane WHERE sha1 = ?", sha).Scan(&id); err {
	case sql.ErrNoRows:
		if plane == nil {
			return 0, fmt.Errorf("catalogue: no data for plane %s", sha)
		}
		result, err := tx.Exec("INSERT INTO plane (sha1, data) VALUES (?, ?)", sha, c.enc.EncodeAll(plane, nil))
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	case nil:
		return id, nil
	default:
		return 0, err
	}
}

// Record stores run and sets its ID.
func (c *Catalogue) Record(run *Run) (err error) {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	result, err := tx.Exec("INSERT INTO run (output, width, height, bytes, created) VALUES (?, ?, ?, ?, ?)", run.Output, run.Width, run.Height, run.Bytes, run.Created.Unix())
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	for _, ch := range run.Channels {
		plane, err := c.addPlane(tx, ch.SHA1, ch.plane)
		if err != nil {
			return err
		}

		if _, err := tx.Exec("INSERT INTO channel (run_id, position, name, plane_id, mean, stddev, min, max) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", id, ch.Position, ch.Name, plane, ch.Mean, ch.StdDev, ch.Min, ch.Max); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	run.ID = id

	return nil
}

// Runs returns every recorded run, oldest first.
func (c *Catalogue) Runs() ([]Run, error) {
	rows, err := c.db.Query("SELECT id, output, width, height, bytes, created FROM run ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created int64
		if err := rows.Scan(&r.ID, &r.Output, &r.Width, &r.Height, &r.Bytes, &created); err != nil {
			return nil, err
		}
		r.Created = time.Unix(created, 0)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		if runs[i].Channels, err = c.channels(runs[i].ID); err != nil {
			return nil, err
		}
	}

	return runs, nil
}

func (c *Catalogue) channels(id int64) ([]Channel, error) {
	rows, err := c.db.Query("SELECT c.position, c.name, p.sha1, c.mean, c.stddev, c.min, c.max FROM channel AS c JOIN plane AS p ON c.plane_id = p.id WHERE c.run_id = ? ORDER BY c.position", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []Channel
	for rows.Next() {
		var ch Channel
		if err := rows.Scan(&ch.Position, &ch.Name, &ch.SHA1, &ch.Mean, &ch.StdDev, &ch.Min, &ch.Max); err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// Export writes the stream produced by run id to w.
func (c *Catalogue) Export(id int64, w io.Writer) error {
	var exists int
	switch err := c.db.QueryRow("SELECT 1 FROM run WHERE id = ?", id).Scan(&exists); err {
	case sql.ErrNoRows:
		return errNoRun
	case nil:
	default:
		return err
	}

	rows, err := c.db.Query("SELECT p.data FROM channel AS c JOIN plane AS p ON c.plane_id = p.id WHERE c.run_id = ? ORDER BY c.position", id)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return err
		}
		plane, err := c.dec.DecodeAll(data, nil)
		if err != nil {
			return err
		}
		if _, err := w.Write(plane); err != nil {
			return err
		}
	}

	return rows.Err()
}
