package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pable/go-cricket-prs/internal/model"
)

// Run is one stored analysis run.
type Run struct {
	ID                 string
	CreatedAt          time.Time
	Source             string
	TargetMode         string
	CreditAllWickets   bool
	Resilient          bool
	MatchesProcessed   int
	MatchesSkipped     int
	InningsSkipped     int
	DroppedDeliveries  int
	DeliveriesAnalyzed int
	Players            int
}

// MatchRecord is one match file scored in a run.
type MatchRecord struct {
	Hash          string
	Source        string
	Date          string
	MatchType     string
	Competition   string
	Venue         string
	Teams         []string
	Winner        string
	Overs         int
	InningsScored int
	Deliveries    int
}

// SkipRecord is one unit of input a run did not score.
type SkipRecord struct {
	Kind    string
	Source  string
	Innings int
	Reason  string
}

// PlayerRun is one player's result in a stored run.
type PlayerRun struct {
	RunID     string
	CreatedAt time.Time
	Role      string
	model.PlayerResult
}

// DBOverview holds aggregate counts across all runs.
type DBOverview struct {
	TotalRuns     int
	TotalMatches  int
	UniquePlayers int
	EarliestMatch string
	LatestMatch   string
	LatestRunID   string
}

// timeLayout is fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = `id, created_at, source, target_mode, credit_all_wickets, resilient,
	matches_processed, matches_skipped, innings_skipped, dropped_deliveries, deliveries_analyzed, players`

// SaveRun stores a run with its matches, skips and per-player results in one
// transaction. An empty run.ID is filled with a new UUID.
func (db *DB) SaveRun(run *Run, matches []MatchRecord, skips []SkipRecord, results []model.PlayerResult) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO runs(`+runColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		run.ID, run.CreatedAt.UTC().Format(timeLayout), run.Source, run.TargetMode,
		boolInt(run.CreditAllWickets), boolInt(run.Resilient),
		run.MatchesProcessed, run.MatchesSkipped, run.InningsSkipped,
		run.DroppedDeliveries, run.DeliveriesAnalyzed, run.Players,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	mstmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO matches(
			run_id, hash, source, match_date, match_type, competition, venue, teams, winner,
			overs, innings_scored, deliveries
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer mstmt.Close()
	for _, m := range matches {
		_, err = mstmt.Exec(
			run.ID, m.Hash, m.Source, m.Date, m.MatchType, m.Competition, m.Venue,
			strings.Join(m.Teams, " v "), m.Winner, m.Overs, m.InningsScored, m.Deliveries,
		)
		if err != nil {
			return fmt.Errorf("insert match %s: %w", m.Source, err)
		}
	}

	sstmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO skips(run_id, seq, kind, source, innings, reason)
		VALUES (?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer sstmt.Close()
	for i, s := range skips {
		if _, err = sstmt.Exec(run.ID, i, s.Kind, s.Source, s.Innings, s.Reason); err != nil {
			return fmt.Errorf("insert skip: %w", err)
		}
	}

	pstmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO prm(run_id, player_name, batting_prs, bowling_prs, bat_balls, bowl_balls, role)
		VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer pstmt.Close()
	for _, r := range results {
		_, err = pstmt.Exec(run.ID, r.Player, r.BattingPRS, r.BowlingPRS,
			r.BattingDeliveries, r.BowlingDeliveries, r.Role())
		if err != nil {
			return fmt.Errorf("insert prm for %s: %w", r.Player, err)
		}
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var r Run
	var created string
	var credit, resilient int
	err := s.Scan(&r.ID, &created, &r.Source, &r.TargetMode, &credit, &resilient,
		&r.MatchesProcessed, &r.MatchesSkipped, &r.InningsSkipped,
		&r.DroppedDeliveries, &r.DeliveriesAnalyzed, &r.Players)
	if err != nil {
		return Run{}, err
	}
	r.CreatedAt, _ = time.Parse(timeLayout, created)
	r.CreditAllWickets = credit != 0
	r.Resilient = resilient != 0
	return r, nil
}

// ListRuns returns all stored runs, newest first.
func (db *DB) ListRuns() ([]Run, error) {
	rows, err := db.conn.Query(`SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRunByPrefix finds the newest run whose id starts with the given prefix.
func (db *DB) GetRunByPrefix(prefix string) (*Run, error) {
	row := db.conn.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id LIKE ? ORDER BY created_at DESC LIMIT 1`, prefix+"%")
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// LatestRun returns the most recent run, or nil when none is stored.
func (db *DB) LatestRun() (*Run, error) {
	return db.GetRunByPrefix("")
}

// DeleteRun removes a run and everything stored under it. It reports
// whether the run existed.
func (db *DB) DeleteRun(runID string) (bool, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	for _, table := range []string{"prm", "skips", "matches"} {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE run_id = ?`, runID); err != nil {
			return false, fmt.Errorf("delete %s: %w", table, err)
		}
	}
	res, err := tx.Exec(`DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return false, fmt.Errorf("delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, tx.Commit()
}

// GetRunResults returns every player's result for a run, ordered by name.
func (db *DB) GetRunResults(runID string) ([]model.PlayerResult, error) {
	rows, err := db.conn.Query(`
		SELECT player_name, batting_prs, bowling_prs, bat_balls, bowl_balls
		FROM prm WHERE run_id = ? ORDER BY player_name`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PlayerResult
	for rows.Next() {
		var r model.PlayerResult
		if err := rows.Scan(&r.Player, &r.BattingPRS, &r.BowlingPRS, &r.BattingDeliveries, &r.BowlingDeliveries); err != nil {
			return nil, err
		}
		r.TotalDeliveries = r.BattingDeliveries + r.BowlingDeliveries
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRunMatches returns the matches scored in a run, ordered by date then source.
func (db *DB) GetRunMatches(runID string) ([]MatchRecord, error) {
	rows, err := db.conn.Query(`
		SELECT hash, source, match_date, match_type, competition, venue, teams, winner,
		       overs, innings_scored, deliveries
		FROM matches WHERE run_id = ? ORDER BY match_date, source`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MatchRecord
	for rows.Next() {
		var m MatchRecord
		var teams string
		if err := rows.Scan(&m.Hash, &m.Source, &m.Date, &m.MatchType, &m.Competition, &m.Venue,
			&teams, &m.Winner, &m.Overs, &m.InningsScored, &m.Deliveries); err != nil {
			return nil, err
		}
		if teams != "" {
			m.Teams = strings.Split(teams, " v ")
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetRunSkips returns a run's skipped units in the order they were reported.
func (db *DB) GetRunSkips(runID string) ([]SkipRecord, error) {
	rows, err := db.conn.Query(`
		SELECT kind, source, innings, reason FROM skips WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SkipRecord
	for rows.Next() {
		var s SkipRecord
		if err := rows.Scan(&s.Kind, &s.Source, &s.Innings, &s.Reason); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SearchPlayers returns the players of a run whose name contains fragment
// (case-insensitive), with their stored role.
func (db *DB) SearchPlayers(runID, fragment string) ([]PlayerRun, error) {
	rows, err := db.conn.Query(`
		SELECT p.run_id, r.created_at, p.role, p.player_name, p.batting_prs, p.bowling_prs, p.bat_balls, p.bowl_balls
		FROM prm p JOIN runs r ON r.id = p.run_id
		WHERE p.run_id = ? AND lower(p.player_name) LIKE ?
		ORDER BY p.player_name`, runID, "%"+strings.ToLower(fragment)+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPlayerRuns(rows)
}

// GetPlayerHistory returns a player's results across all runs, newest first.
func (db *DB) GetPlayerHistory(name string) ([]PlayerRun, error) {
	rows, err := db.conn.Query(`
		SELECT p.run_id, r.created_at, p.role, p.player_name, p.batting_prs, p.bowling_prs, p.bat_balls, p.bowl_balls
		FROM prm p JOIN runs r ON r.id = p.run_id
		WHERE p.player_name = ?
		ORDER BY r.created_at DESC`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPlayerRuns(rows)
}

func scanPlayerRuns(rows *sql.Rows) ([]PlayerRun, error) {
	var out []PlayerRun
	for rows.Next() {
		var p PlayerRun
		var created string
		if err := rows.Scan(&p.RunID, &created, &p.Role, &p.Player,
			&p.BattingPRS, &p.BowlingPRS, &p.BattingDeliveries, &p.BowlingDeliveries); err != nil {
			return nil, err
		}
		p.CreatedAt, _ = time.Parse(timeLayout, created)
		p.TotalDeliveries = p.BattingDeliveries + p.BowlingDeliveries
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetDBOverview returns aggregate counts across all stored runs.
func (db *DB) GetDBOverview() (*DBOverview, error) {
	var ov DBOverview
	err := db.conn.QueryRow(`
		SELECT
			(SELECT COUNT(1) FROM runs),
			(SELECT COUNT(DISTINCT hash) FROM matches),
			(SELECT COUNT(DISTINCT player_name) FROM prm),
			(SELECT COALESCE(MIN(NULLIF(match_date, '')), '') FROM matches),
			(SELECT COALESCE(MAX(NULLIF(match_date, '')), '') FROM matches),
			(SELECT COALESCE((SELECT id FROM runs ORDER BY created_at DESC LIMIT 1), ''))`).
		Scan(&ov.TotalRuns, &ov.TotalMatches, &ov.UniquePlayers, &ov.EarliestMatch, &ov.LatestMatch, &ov.LatestRunID)
	if err != nil {
		return nil, err
	}
	return &ov, nil
}

// QueryRaw runs an arbitrary query and returns column names and rows as
// strings. NULL becomes "NULL".
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(x)
			case float64:
				row[i] = fmt.Sprintf("%.4g", x)
			default:
				row[i] = fmt.Sprint(x)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
