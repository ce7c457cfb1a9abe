package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wrenchbase/wrenchbase/internal/database"
	"github.com/wrenchbase/wrenchbase/internal/models"
)

const locationColumns = `id, mechanic_id, business_name, address, location_data, updated_at`

type MechanicLocationRepository struct {
	db *database.DB
}

func NewMechanicLocationRepository(db *database.DB) *MechanicLocationRepository {
	return &MechanicLocationRepository{db: db}
}

func scanLocationRow(scanner rowScanner) (*models.MechanicLocation, error) {
	var loc models.MechanicLocation
	err := scanner.Scan(
		&loc.ID, &loc.MechanicID, &loc.BusinessName, &loc.Address,
		&loc.LocationData, &loc.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &loc, nil
}

func (r *MechanicLocationRepository) GetByMechanic(ctx context.Context, mechanicID string) (*models.MechanicLocation, error) {
	query := `SELECT ` + locationColumns + ` FROM mechanic_locations WHERE mechanic_id = $1`
	return scanLocationRow(r.db.Pool.QueryRow(ctx, query, mechanicID))
}

// Upsert creates or overwrites the single location row for a mechanic,
// keyed by the unique mechanic_id constraint. Runs on a pool or inside the
// approval transaction.
func (r *MechanicLocationRepository) Upsert(ctx context.Context, q database.Querier, loc *models.MechanicLocation) (*models.MechanicLocation, error) {
	query := `
		INSERT INTO mechanic_locations (id, mechanic_id, business_name, address, location_data, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (mechanic_id) DO UPDATE
		SET business_name = EXCLUDED.business_name,
		    address = EXCLUDED.address,
		    location_data = EXCLUDED.location_data,
		    updated_at = EXCLUDED.updated_at
		RETURNING ` + locationColumns

	return scanLocationRow(q.QueryRow(ctx, query,
		uuid.New().String(), loc.MechanicID, loc.BusinessName, loc.Address,
		loc.LocationData, time.Now(),
	))
}

// Delete removes a mechanic's location row if present. Absence is not an
// error; the bool reports whether a row was deleted.
func (r *MechanicLocationRepository) Delete(ctx context.Context, mechanicID string) (bool, error) {
	result, err := r.db.Pool.Exec(ctx,
		`DELETE FROM mechanic_locations WHERE mechanic_id = $1`, mechanicID)
	if err != nil {
		return false, database.MapPostgresError(err)
	}
	return result.RowsAffected() > 0, nil
}

func (r *MechanicLocationRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM mechanic_locations`).Scan(&count)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return count, nil
}
