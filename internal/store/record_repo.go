package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/heys-app/metabolic-engine/internal/domain"
)

// RecordRepo handles persistence for day records and profiles.
// It implements domain.RecordStore.
type RecordRepo struct {
	DB *sql.DB
}

// DayRecord retrieves the record for one client and date, or (nil, nil) if
// the day was never logged.
func (r *RecordRepo) DayRecord(ctx context.Context, clientID string, date domain.DateKey) (*domain.DayRecord, error) {
	const q = `SELECT payload_json FROM day_records WHERE client_id = ? AND date = ?`

	var payload string
	err := r.DB.QueryRowContext(ctx, q, clientID, string(date)).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, domain.WrapEngineError(domain.ErrStoreQuery.Code, "get day record", err)
	}

	var rec domain.DayRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, domain.WrapEngineError(domain.ErrStoreQuery.Code, "decode day record", err)
	}
	rec.Date = date
	return &rec, nil
}

// PutDayRecord upserts the record for one client and date.
func (r *RecordRepo) PutDayRecord(ctx context.Context, clientID string, rec domain.DayRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return domain.WrapEngineError(domain.ErrStoreWrite.Code, "encode day record", err)
	}

	const q = `INSERT INTO day_records (client_id, date, payload_json, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(client_id, date) DO UPDATE SET payload_json = excluded.payload_json, updated_at = excluded.updated_at`

	_, err = r.DB.ExecContext(ctx, q, clientID, string(rec.Date), string(payload), time.Now().Unix())
	if err != nil {
		return domain.WrapEngineError(domain.ErrStoreWrite.Code, "put day record", err)
	}
	return nil
}

// Profile retrieves a client's profile, or (nil, nil) if none is stored.
func (r *RecordRepo) Profile(ctx context.Context, clientID string) (*domain.Profile, error) {
	const q = `SELECT payload_json FROM profiles WHERE client_id = ?`

	var payload string
	err := r.DB.QueryRowContext(ctx, q, clientID).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, domain.WrapEngineError(domain.ErrStoreQuery.Code, "get profile", err)
	}

	var p domain.Profile
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return nil, domain.WrapEngineError(domain.ErrStoreQuery.Code, "decode profile", err)
	}
	return &p, nil
}

// PutProfile upserts a client's profile.
func (r *RecordRepo) PutProfile(ctx context.Context, clientID string, p domain.Profile) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return domain.WrapEngineError(domain.ErrStoreWrite.Code, "encode profile", err)
	}

	const q = `INSERT INTO profiles (client_id, payload_json, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(client_id) DO UPDATE SET payload_json = excluded.payload_json, updated_at = excluded.updated_at`

	_, err = r.DB.ExecContext(ctx, q, clientID, string(payload), time.Now().Unix())
	if err != nil {
		return domain.WrapEngineError(domain.ErrStoreWrite.Code, "put profile", err)
	}
	return nil
}
