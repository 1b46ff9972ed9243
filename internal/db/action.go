package db

import (
	"context"
	"fmt"
	"time"

	"factorypulse/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// querier is the part of pgxpool.Pool the actions need.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func table(schema, name string) string {
	return pgx.Identifier{schema, name}.Sanitize()
}

// Migrate creates the schema and tables when missing.
func Migrate(ctx context.Context, q querier, schema string) error {
	stmts := []string{
		fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, pgx.Identifier{schema}.Sanitize()),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id             TEXT PRIMARY KEY,
			name           TEXT NOT NULL DEFAULT '',
			line           TEXT NOT NULL DEFAULT '',
			status         TEXT NOT NULL,
			efficiency     DOUBLE PRECISION,
			output_current DOUBLE PRECISION,
			output_target  DOUBLE PRECISION,
			unit           TEXT NOT NULL DEFAULT '',
			alert_count    INTEGER,
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, table(schema, "equipment")),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id             BIGSERIAL PRIMARY KEY,
			equipment_id   TEXT NOT NULL,
			status         TEXT NOT NULL,
			efficiency     DOUBLE PRECISION,
			output_current DOUBLE PRECISION,
			alert_count    INTEGER,
			data           JSONB NOT NULL DEFAULT '{}',
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, table(schema, "status_events")),
	}
	for _, stmt := range stmts {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// equipmentRow mirrors the equipment table. Figures are NULL until an
// event reports them.
type equipmentRow struct {
	ID            string    `db:"id"`
	Name          string    `db:"name"`
	Line          string    `db:"line"`
	Status        string    `db:"status"`
	Efficiency    *float64  `db:"efficiency"`
	OutputCurrent *float64  `db:"output_current"`
	OutputTarget  *float64  `db:"output_target"`
	Unit          string    `db:"unit"`
	AlertCount    *int32    `db:"alert_count"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r equipmentRow) state(now time.Time) (model.EquipmentState, error) {
	status, err := model.ParseEquipmentStatus(r.Status)
	if err != nil {
		return model.EquipmentState{}, fmt.Errorf("equipment %s: %w", r.ID, err)
	}
	st := model.EquipmentState{
		ID:            r.ID,
		Status:        status,
		Efficiency:    r.Efficiency,
		OutputCurrent: r.OutputCurrent,
		OutputTarget:  r.OutputTarget,
		LastUpdate:    sinceText(now, r.UpdatedAt),
	}
	if r.AlertCount != nil {
		n := int(*r.AlertCount)
		st.AlertCount = &n
	}
	return st, nil
}

// LoadEquipment reads every equipment row. Rows with an unknown status
// are logged and skipped.
func LoadEquipment(ctx context.Context, q querier, schema string, logger *zap.SugaredLogger) ([]model.EquipmentState, error) {
	rows, err := q.Query(ctx, fmt.Sprintf(`
		SELECT id, name, line, status, efficiency, output_current, output_target, unit, alert_count, updated_at
		FROM %s ORDER BY id`, table(schema, "equipment")))
	if err != nil {
		return nil, fmt.Errorf("query equipment: %w", err)
	}
	raw, err := pgx.CollectRows(rows, pgx.RowToStructByName[equipmentRow])
	if err != nil {
		return nil, fmt.Errorf("scan equipment: %w", err)
	}

	now := time.Now()
	states := make([]model.EquipmentState, 0, len(raw))
	for _, r := range raw {
		st, err := r.state(now)
		if err != nil {
			logger.Warnw("skipping equipment row", "id", r.ID, "error", err)
			continue
		}
		states = append(states, st)
	}
	return states, nil
}

// UpsertEquipmentStatus stores the latest state of one machine. Optional
// event fields keep the stored value when absent, and stay NULL on first
// insert so a refresh cannot zero the snapshot's figures.
func UpsertEquipmentStatus(ctx context.Context, q querier, schema string, ev model.StatusEvent) error {
	_, err := q.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s AS e (id, status, efficiency, output_current, alert_count, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			status         = EXCLUDED.status,
			efficiency     = COALESCE($3, e.efficiency),
			output_current = COALESCE($4, e.output_current),
			alert_count    = COALESCE($5, e.alert_count),
			updated_at     = EXCLUDED.updated_at`, table(schema, "equipment")),
		ev.EquipmentID, ev.Status.String(), floatArg(ev.Efficiency), floatArg(ev.OutputCurrent), ev.AlertCount, eventTime(ev))
	if err != nil {
		return fmt.Errorf("upsert equipment %s: %w", ev.EquipmentID, err)
	}
	return nil
}

// InsertStatusEvent appends the event to the history table.
func InsertStatusEvent(ctx context.Context, q querier, schema string, ev model.StatusEvent) error {
	dataJSON, err := model.ValidateJSON(ev.Data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}
	_, err = q.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (equipment_id, status, efficiency, output_current, alert_count, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`, table(schema, "status_events")),
		ev.EquipmentID, ev.Status.String(), floatArg(ev.Efficiency), floatArg(ev.OutputCurrent), ev.AlertCount, string(dataJSON), eventTime(ev))
	if err != nil {
		return fmt.Errorf("insert status event %s: %w", ev.EquipmentID, err)
	}
	return nil
}

func floatArg(f *model.FlexFloat) *float64 {
	if f == nil {
		return nil
	}
	v := float64(*f)
	return &v
}

func eventTime(ev model.StatusEvent) time.Time {
	if ev.Timestamp.IsZero() {
		return time.Now()
	}
	return ev.Timestamp
}

// sinceText renders the age of a row the way the cards show it.
func sinceText(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d min ago", int(d.Minutes()))
	case d < 2*time.Hour:
		return "1 hour ago"
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	default:
		return t.Format("2006-01-02")
	}
}

// Methods bind the actions to the managed pool and schema.

func (d *DBManager) Migrate(ctx context.Context) error {
	return Migrate(ctx, d.Pool(), d.schema)
}

func (d *DBManager) LoadEquipment(ctx context.Context) ([]model.EquipmentState, error) {
	return LoadEquipment(ctx, d.Pool(), d.schema, d.logger)
}

func (d *DBManager) UpsertEquipmentStatus(ctx context.Context, ev model.StatusEvent) error {
	return UpsertEquipmentStatus(ctx, d.Pool(), d.schema, ev)
}

func (d *DBManager) InsertStatusEvent(ctx context.Context, ev model.StatusEvent) error {
	return InsertStatusEvent(ctx, d.Pool(), d.schema, ev)
}
