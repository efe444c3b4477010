package duckdb

import (
	"context"
	"fmt"
	"time"

	"github.com/stormhaven/stormhaven/internal/domain"
)

// ImportProperties replaces or inserts property and feature rows in one
// transaction. Re-running an import with the same file is idempotent.
func (s *Store) ImportProperties(ctx context.Context, props []domain.Property) (err error) {
	start := time.Now()
	defer func() { s.observe("import_properties", start, err) }()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin property import: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	propStmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO property (property_id, county_name, state, price, status)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare property insert: %w", err)
	}
	defer propStmt.Close()

	featStmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO features (property_id, bedrooms, bathrooms, acre_lot)
		 VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare features insert: %w", err)
	}
	defer featStmt.Close()

	for _, p := range props {
		if _, err = propStmt.ExecContext(ctx, p.PropertyID, p.CountyName, p.State, p.Price, p.Status); err != nil {
			return fmt.Errorf("insert property %d: %w", p.PropertyID, err)
		}
		if _, err = featStmt.ExecContext(ctx, p.PropertyID, p.Bedrooms, p.Bathrooms, p.AcreLot); err != nil {
			return fmt.Errorf("insert features %d: %w", p.PropertyID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit property import: %w", err)
	}
	s.logger.Info("properties imported", "count", len(props))
	return nil
}

// UpsertDeclarations writes declaration records into disaster and
// disaster_types, then refreshes the located rows for just those disasters.
// Replays of the same declaration converge to the same state.
func (s *Store) UpsertDeclarations(ctx context.Context, decls []domain.Declaration) (err error) {
	start := time.Now()
	defer func() { s.observe("upsert_declarations", start, err) }()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin declaration upsert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	disasterStmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO disaster (disaster_id, disasternumber, county_name, designateddate, closeoutdate)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare disaster insert: %w", err)
	}
	defer disasterStmt.Close()

	typeStmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO disaster_types (disaster_id, type_code, type_description)
		 VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare type insert: %w", err)
	}
	defer typeStmt.Close()

	for _, d := range decls {
		var closeout any
		if d.CloseoutDate != nil {
			closeout = d.CloseoutDate.UTC()
		}
		if _, err = disasterStmt.ExecContext(ctx, d.DisasterID, d.DisasterNumber, d.CountyName,
			d.DesignatedDate.UTC(), closeout); err != nil {
			return fmt.Errorf("upsert disaster %d: %w", d.DisasterID, err)
		}
		// A replay may carry a different type set, so replace wholesale.
		if _, err = tx.ExecContext(ctx, `DELETE FROM disaster_types WHERE disaster_id = ?`, d.DisasterID); err != nil {
			return fmt.Errorf("clear types for disaster %d: %w", d.DisasterID, err)
		}
		for _, t := range d.Types {
			if _, err = typeStmt.ExecContext(ctx, d.DisasterID, t.TypeCode, t.TypeDescription); err != nil {
				return fmt.Errorf("insert type %s for disaster %d: %w", t.TypeCode, d.DisasterID, err)
			}
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO located (property_id, disaster_id, city, state)
			SELECT p.property_id, d.disaster_id, p.county_name, p.state
			FROM property p
			JOIN disaster d ON p.county_name = d.county_name
			WHERE d.disaster_id = ?`, d.DisasterID); err != nil {
			return fmt.Errorf("refresh located for disaster %d: %w", d.DisasterID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit declaration upsert: %w", err)
	}
	s.logger.Info("declarations upserted", "count", len(decls))
	return nil
}

// RebuildLocated recomputes the property-disaster name join from scratch and
// returns the resulting row count. Run after bulk imports touch both sides.
func (s *Store) RebuildLocated(ctx context.Context) (_ int64, err error) {
	start := time.Now()
	defer func() { s.observe("rebuild_located", start, err) }()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin located rebuild: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM located`); err != nil {
		return 0, fmt.Errorf("clear located: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO located (property_id, disaster_id, city, state)
		SELECT DISTINCT p.property_id, d.disaster_id, p.county_name, p.state
		FROM property p
		JOIN disaster d ON p.county_name = d.county_name`); err != nil {
		return 0, fmt.Errorf("rebuild located: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit located rebuild: %w", err)
	}

	var n int64
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM located`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count located: %w", err)
	}
	s.logger.Info("located rebuilt", "rows", n)
	return n, nil
}
