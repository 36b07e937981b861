package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ps-vitor/espc-sys/internal/domain"
)

type ListingRepository interface {
	Save(ctx context.Context, runID uuid.UUID, listings []domain.Listing) (int, error)
	FindAll(ctx context.Context) ([]domain.Listing, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS espc_listings (
	id            BIGSERIAL PRIMARY KEY,
	run_id        UUID        NOT NULL,
	offer_type    TEXT        NOT NULL DEFAULT '',
	price         TEXT        NOT NULL,
	property_type TEXT        NOT NULL DEFAULT '',
	address       TEXT        NOT NULL,
	town          TEXT        NOT NULL DEFAULT '',
	postcode      TEXT        NOT NULL DEFAULT '',
	area          TEXT        NOT NULL DEFAULT '',
	beds          TEXT        NOT NULL DEFAULT 'U',
	toilets       TEXT        NOT NULL DEFAULT 'U',
	living_rooms  TEXT        NOT NULL DEFAULT 'U',
	description   TEXT        NOT NULL DEFAULT '',
	link          TEXT        NOT NULL,
	parking       BOOLEAN     NOT NULL DEFAULT FALSE,
	allocated     BOOLEAN     NOT NULL DEFAULT FALSE,
	agent         TEXT        NOT NULL,
	scraped_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (run_id, agent, address, price)
);

CREATE INDEX IF NOT EXISTS idx_espc_listings_area ON espc_listings(area);
`

const insertListing = `
INSERT INTO espc_listings
	(run_id, offer_type, price, property_type, address, town, postcode, area,
	 beds, toilets, living_rooms, description, link, parking, allocated, agent)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
ON CONFLICT (run_id, agent, address, price) DO NOTHING`

const selectListings = `
SELECT offer_type, price, property_type, address, town, postcode, area,
	beds, toilets, living_rooms, description, link, parking, allocated, agent
FROM espc_listings
ORDER BY id`

// PostgresListingRepository stores every run's listings in one table.
type PostgresListingRepository struct {
	pool      *pgxpool.Pool
	batchSize int
}

func NewPostgresListingRepository(ctx context.Context, dsn string, maxConns int32) (*PostgresListingRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &PostgresListingRepository{pool: pool, batchSize: 200}, nil
}

func (r *PostgresListingRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}

// Save inserts listings for runID in batches and returns how many rows were
// new. Repeats within a run are skipped by the unique key.
func (r *PostgresListingRepository) Save(ctx context.Context, runID uuid.UUID, listings []domain.Listing) (int, error) {
	total := 0
	for i := 0; i < len(listings); i += r.batchSize {
		j := min(i+r.batchSize, len(listings))

		b := &pgx.Batch{}
		for _, l := range listings[i:j] {
			b.Queue(insertListing, listingArgs(runID, l)...)
		}

		br := r.pool.SendBatch(ctx, b)
		for k := i; k < j; k++ {
			tag, err := br.Exec()
			if err != nil {
				_ = br.Close()
				return total, fmt.Errorf("postgres: insert listing: %w", err)
			}
			total += int(tag.RowsAffected())
		}
		if err := br.Close(); err != nil {
			return total, fmt.Errorf("postgres: insert listing: %w", err)
		}
	}
	return total, nil
}

func listingArgs(runID uuid.UUID, l domain.Listing) []any {
	return []any{
		runID, l.OfferType, l.Price, l.PropertyType, l.Address, l.Town, l.Postcode, l.Area,
		l.Beds, l.Toilets, l.LivingRooms, l.Description, l.Link, l.Parking, l.Allocated, l.Agent,
	}
}

func (r *PostgresListingRepository) FindAll(ctx context.Context) ([]domain.Listing, error) {
	rows, err := r.pool.Query(ctx, selectListings)
	if err != nil {
		return nil, fmt.Errorf("postgres: find all: %w", err)
	}
	listings, err := pgx.CollectRows(rows, pgx.RowToStructByPos[domain.Listing])
	if err != nil {
		return nil, fmt.Errorf("postgres: scan listings: %w", err)
	}
	return listings, nil
}

func (r *PostgresListingRepository) Close() {
	r.pool.Close()
}
