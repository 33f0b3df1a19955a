package kpi

import (
	"database/sql"
	"time"

	core "github.com/matveld/bms/core/kpi"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists throughput records in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS throughput_kpi (
        cell_id TEXT,
        day INTEGER,
        charged REAL,
        discharged REAL,
        PRIMARY KEY(cell_id, day)
    );`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Add inserts or updates the throughput record for the cell and day.
func (s *SQLiteStore) Add(r core.Record) error {
	d := core.Day(r.Date)
	_, err := s.db.Exec(`INSERT INTO throughput_kpi (cell_id, day, charged, discharged)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(cell_id, day) DO UPDATE SET
            charged = charged + excluded.charged,
            discharged = discharged + excluded.discharged`,
		r.CellID, d.Unix(), r.ChargedAh, r.DischargedAh)
	return err
}

// Query returns records in the range [start,end].
func (s *SQLiteStore) Query(cellID string, start, end time.Time) ([]core.Record, error) {
	start = core.Day(start)
	end = core.Day(end)
	rows, err := s.db.Query(`SELECT cell_id, day, charged, discharged
        FROM throughput_kpi WHERE cell_id = ? AND day >= ? AND day <= ? ORDER BY day`,
		cellID, start.Unix(), end.Unix())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []core.Record
	for rows.Next() {
		var id string
		var ts int64
		var charged, discharged float64
		if err := rows.Scan(&id, &ts, &charged, &discharged); err != nil {
			return nil, err
		}
		res = append(res, core.Record{
			CellID:       id,
			Date:         time.Unix(ts, 0).UTC(),
			ChargedAh:    charged,
			DischargedAh: discharged,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
