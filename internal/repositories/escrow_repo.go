package repositories

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stellar-p2p/backend/internal/models"
)

// EscrowRepo stores the local mirror of remote escrows, keyed by
// engagement_id. Save satisfies the coordinator's MirrorStore.
type EscrowRepo struct {
	pool *pgxpool.Pool
}

func NewEscrowRepo(pool *pgxpool.Pool) *EscrowRepo {
	return &EscrowRepo{pool: pool}
}

func (r *EscrowRepo) Save(ctx context.Context, e *models.Escrow) error {
	milestones, err := json.Marshal(e.Milestones)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO escrows (
			engagement_id, contract_id, listing_id, title,
			approver_address, service_provider_address, release_signer_address, dispute_resolver_address,
			amount, balance, milestones, disputed, resolved, released,
			trustline_address, trustline_decimals
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (engagement_id) DO UPDATE SET
			contract_id = EXCLUDED.contract_id,
			listing_id = COALESCE(EXCLUDED.listing_id, escrows.listing_id),
			title = EXCLUDED.title,
			approver_address = EXCLUDED.approver_address,
			service_provider_address = EXCLUDED.service_provider_address,
			release_signer_address = EXCLUDED.release_signer_address,
			dispute_resolver_address = EXCLUDED.dispute_resolver_address,
			amount = EXCLUDED.amount,
			balance = EXCLUDED.balance,
			milestones = EXCLUDED.milestones,
			disputed = EXCLUDED.disputed,
			resolved = EXCLUDED.resolved,
			released = EXCLUDED.released,
			trustline_address = EXCLUDED.trustline_address,
			trustline_decimals = EXCLUDED.trustline_decimals,
			updated_at = now()
		RETURNING id, created_at, updated_at
	`, e.EngagementID, e.ContractID, e.ListingID, e.Title,
		e.Roles.Approver, e.Roles.ServiceProvider, e.Roles.ReleaseSigner, e.Roles.DisputeResolver,
		e.Amount, e.Balance, milestones, e.Flags.Disputed, e.Flags.Resolved, e.Flags.Released,
		e.Trustline.Address, e.Trustline.Decimals,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func scanEscrow(row pgx.Row) (*models.Escrow, error) {
	var e models.Escrow
	var milestones []byte
	err := row.Scan(
		&e.ID, &e.EngagementID, &e.ContractID, &e.ListingID, &e.Title,
		&e.Roles.Approver, &e.Roles.ServiceProvider, &e.Roles.ReleaseSigner, &e.Roles.DisputeResolver,
		&e.Amount, &e.Balance, &milestones, &e.Flags.Disputed, &e.Flags.Resolved, &e.Flags.Released,
		&e.Trustline.Address, &e.Trustline.Decimals, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(milestones, &e.Milestones); err != nil {
		return nil, err
	}
	return &e, nil
}

const escrowColumns = `id, engagement_id, contract_id, listing_id, title,
       approver_address, service_provider_address, release_signer_address, dispute_resolver_address,
       amount, balance, milestones, disputed, resolved, released,
       trustline_address, trustline_decimals, created_at, updated_at`

// GetByEngagementID returns (nil, nil) when no mirror row exists yet.
func (r *EscrowRepo) GetByEngagementID(ctx context.Context, engagementID string) (*models.Escrow, error) {
	e, err := scanEscrow(r.pool.QueryRow(ctx, `
		SELECT `+escrowColumns+` FROM escrows WHERE engagement_id = $1
	`, engagementID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

// ListByAddress returns escrows where the wallet is a party on either side.
func (r *EscrowRepo) ListByAddress(ctx context.Context, address string, limit, offset int) ([]models.Escrow, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+escrowColumns+` FROM escrows
		WHERE approver_address = $1 OR service_provider_address = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, address, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var escrows []models.Escrow
	for rows.Next() {
		e, err := scanEscrow(rows)
		if err != nil {
			return nil, err
		}
		escrows = append(escrows, *e)
	}
	return escrows, nil
}

func (r *EscrowRepo) ListByListingID(ctx context.Context, listingID uuid.UUID) ([]models.Escrow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+escrowColumns+` FROM escrows
		WHERE listing_id = $1
		ORDER BY created_at DESC
	`, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var escrows []models.Escrow
	for rows.Next() {
		e, err := scanEscrow(rows)
		if err != nil {
			return nil, err
		}
		escrows = append(escrows, *e)
	}
	return escrows, nil
}

// ListOpenEngagementIDs feeds the worker reconciler: every mirror that has
// not settled yet gets re-fetched from the escrow service.
func (r *EscrowRepo) ListOpenEngagementIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT engagement_id FROM escrows
		WHERE NOT released AND NOT resolved
		ORDER BY updated_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
