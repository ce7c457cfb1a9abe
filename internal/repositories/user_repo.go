package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/wrenchbase/wrenchbase/internal/database"
	"github.com/wrenchbase/wrenchbase/internal/models"
)

const userColumns = `id, username, email, password_hash, role, full_name, profile_data, created_at, updated_at`

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// rowScanner lets the same scan code serve QueryRow and Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User
	err := scanner.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Role, &user.FullName, &user.ProfileData,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &user, nil
}

func scanUserRows(rows pgx.Rows) ([]*models.User, error) {
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New().String()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if user.ProfileData == nil {
		user.ProfileData = map[string]any{}
	}

	query := `
		INSERT INTO users (id, username, email, password_hash, role, full_name, profile_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + userColumns

	return scanUserRow(r.db.Pool.QueryRow(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash,
		user.Role, user.FullName, user.ProfileData,
		user.CreatedAt, user.UpdatedAt,
	))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, username))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, email))
}

// UpdateProfile persists the mutable profile fields. Uniqueness violations
// on username or email surface as models.ErrConflict.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, user *models.User) (*models.User, error) {
	user.UpdatedAt = time.Now()

	query := `
		UPDATE users SET username = $1, email = $2, full_name = $3, profile_data = $4, updated_at = $5
		WHERE id = $6
		RETURNING ` + userColumns

	return scanUserRow(r.db.Pool.QueryRow(ctx, query,
		user.Username, user.Email, user.FullName, user.ProfileData, user.UpdatedAt, id,
	))
}

// GetMechanic resolves an id only if the account holds the mechanic role.
func (r *UserRepository) GetMechanic(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND role = $2`
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, id, models.RoleMechanic))
}

// ListMechanicsWithLocations returns every mechanic joined with its
// published location (if any) and its count of pending location requests.
func (r *UserRepository) ListMechanicsWithLocations(ctx context.Context) ([]*models.MechanicWithLocation, error) {
	query := `
		SELECT u.id, u.username, u.email, u.password_hash, u.role, u.full_name, u.profile_data, u.created_at, u.updated_at,
		       ml.id, ml.business_name, ml.address, ml.location_data, ml.updated_at,
		       (SELECT COUNT(*) FROM location_requests lr WHERE lr.mechanic_id = u.id AND lr.status = 'pending')
		FROM users u
		LEFT JOIN mechanic_locations ml ON ml.mechanic_id = u.id
		WHERE u.role = 'mechanic'
		ORDER BY u.created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query mechanics: %w", err)
	}
	defer rows.Close()

	mechanics := make([]*models.MechanicWithLocation, 0)
	for rows.Next() {
		var m models.MechanicWithLocation
		var locID, locBusinessName, locAddress *string
		var locData map[string]any
		var locUpdatedAt *time.Time

		err := rows.Scan(
			&m.ID, &m.Username, &m.Email, &m.PasswordHash,
			&m.Role, &m.FullName, &m.ProfileData,
			&m.CreatedAt, &m.UpdatedAt,
			&locID, &locBusinessName, &locAddress, &locData, &locUpdatedAt,
			&m.PendingRequests,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mechanic: %w", err)
		}

		if locID != nil {
			m.Location = &models.MechanicLocation{
				ID:           *locID,
				MechanicID:   m.ID,
				BusinessName: *locBusinessName,
				Address:      *locAddress,
				LocationData: locData,
				UpdatedAt:    *locUpdatedAt,
			}
		}
		mechanics = append(mechanics, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return mechanics, nil
}

func (r *UserRepository) CountByRole(ctx context.Context, role string) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, role).Scan(&count)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return count, nil
}
