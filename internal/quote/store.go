package quote

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"taxifare.predict.org/internal/models"
	"taxifare.predict.org/internal/utils"
)

// Store keeps priced quotes.
type Store interface {
	Save(ctx context.Context, q models.Quote) error
	Recent(ctx context.Context, n int) ([]models.Quote, error)
}

// PostgresStore keeps quotes in the fare_quotes table.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres connects to dsn and checks the connection.
func OpenPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS fare_quotes (
    id                 UUID PRIMARY KEY,
    pickup_datetime    TIMESTAMP NOT NULL,
    pickup_address     TEXT NOT NULL DEFAULT '',
    pickup_lat         DOUBLE PRECISION NOT NULL,
    pickup_lon         DOUBLE PRECISION NOT NULL,
    pickup_cell        TEXT NOT NULL DEFAULT '',
    dropoff_address    TEXT NOT NULL DEFAULT '',
    dropoff_lat        DOUBLE PRECISION NOT NULL,
    dropoff_lon        DOUBLE PRECISION NOT NULL,
    dropoff_cell       TEXT NOT NULL DEFAULT '',
    passenger_count    INTEGER NOT NULL,
    fare               DOUBLE PRECISION NOT NULL,
    fare_per_passenger DOUBLE PRECISION NOT NULL,
    distance_km        DOUBLE PRECISION NOT NULL,
    created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS fare_quotes_created_at_idx ON fare_quotes (created_at DESC);
ALTER TABLE fare_quotes ADD COLUMN IF NOT EXISTS pickup_cell TEXT NOT NULL DEFAULT '';
ALTER TABLE fare_quotes ADD COLUMN IF NOT EXISTS dropoff_cell TEXT NOT NULL DEFAULT '';
`

// EnsureSchema creates the fare_quotes table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create fare_quotes schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, q models.Quote) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO fare_quotes (
            id, pickup_datetime,
            pickup_address, pickup_lat, pickup_lon, pickup_cell,
            dropoff_address, dropoff_lat, dropoff_lon, dropoff_cell,
            passenger_count, fare, fare_per_passenger, distance_km, created_at
        ) VALUES (
            $1, $2,
            $3, $4, $5, $6,
            $7, $8, $9, $10,
            $11, $12, $13, $14, $15
        )`,
		q.ID.String(), q.PickupDatetime.Time(),
		q.PickupAddress, q.Pickup.Lat, q.Pickup.Lon, q.PickupCell,
		q.DropoffAddress, q.Dropoff.Lat, q.Dropoff.Lon, q.DropoffCell,
		q.PassengerCount, q.Fare, q.FarePerPassenger, q.DistanceKm, q.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert quote %s: %w", q.ID, err)
	}
	return nil
}

func (s *PostgresStore) Recent(ctx context.Context, n int) ([]models.Quote, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id::text, pickup_datetime,
               pickup_address, pickup_lat, pickup_lon, pickup_cell,
               dropoff_address, dropoff_lat, dropoff_lon, dropoff_cell,
               passenger_count, fare, fare_per_passenger, distance_km, created_at
        FROM fare_quotes
        ORDER BY created_at DESC
        LIMIT $1`, n,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]models.Quote, 0, n)
	for rows.Next() {
		var q models.Quote
		var id string
		var pickupAt time.Time
		if err := rows.Scan(
			&id, &pickupAt,
			&q.PickupAddress, &q.Pickup.Lat, &q.Pickup.Lon, &q.PickupCell,
			&q.DropoffAddress, &q.Dropoff.Lat, &q.Dropoff.Lon, &q.DropoffCell,
			&q.PassengerCount, &q.Fare, &q.FarePerPassenger, &q.DistanceKm, &q.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		if q.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse quote id %q: %w", id, err)
		}
		q.PickupDatetime = utils.PickupTime(pickupAt)
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read recent quotes: %w", err)
	}
	return quotes, nil
}
