package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"app/internal/model"
)

type UserRepository interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByStripeCustomerID(ctx context.Context, customerID string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUserFlags(ctx context.Context, id string, isAdmin *bool, subscriptionStatus *string) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
	UpdateAISettings(ctx context.Context, id string, apiKeys map[string]string, enabledModels []string) (*model.User, error)
	// IncrementUsage bumps the usage counter for a model in a single
	// conditional statement: the increment only happens while the current
	// count is below the quota, so concurrent requests cannot push usage past
	// the limit even though the admission pre-check is not serialized with it.
	// It returns the usage count after the call and whether the increment was
	// applied.
	IncrementUsage(ctx context.Context, id, modelID string, defaultQuota int) (int, bool, error)
	SetLinkedIn(ctx context.Context, id string, link *model.LinkedInLink) error
	ClearLinkedIn(ctx context.Context, id string) error
	UpdateStripeCustomerID(ctx context.Context, id, customerID string) error
	UpdateSubscriptionStatus(ctx context.Context, id, status string) error
}

type userRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, email, password_hash, is_admin, stripe_customer_id, subscription_status,
	api_keys, enabled_models, api_usage, api_quota, linkedin, created_at`

func (r *userRepo) CreateUser(ctx context.Context, u *model.User) error {
	apiKeys, enabledModels, apiUsage, apiQuota, linkedin, err := marshalUserMaps(u)
	if err != nil {
		return err
	}
	query := `INSERT INTO users (id, email, password_hash, is_admin, subscription_status,
	          api_keys, enabled_models, api_usage, api_quota, linkedin)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING created_at`
	err = r.db.QueryRowContext(ctx, query, u.ID, u.Email, u.PasswordHash, u.IsAdmin,
		u.SubscriptionStatus, apiKeys, enabledModels, apiUsage, apiQuota, linkedin).Scan(&u.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating user %s: %w", u.Email, err)
	}
	return nil
}

func (r *userRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *userRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *userRepo) GetUserByStripeCustomerID(ctx context.Context, customerID string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE stripe_customer_id=$1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, customerID))
}

func (r *userRepo) ListUsers(ctx context.Context) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *userRepo) UpdateUserFlags(ctx context.Context, id string, isAdmin *bool, subscriptionStatus *string) (*model.User, error) {
	query := `UPDATE users
	          SET is_admin = COALESCE($2, is_admin),
	              subscription_status = COALESCE($3, subscription_status)
	          WHERE id = $1
	          RETURNING ` + userColumns
	return r.scanUser(r.db.QueryRowContext(ctx, query, id, isAdmin, subscriptionStatus))
}

func (r *userRepo) DeleteUser(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id); err != nil {
		return fmt.Errorf("deleting user %s: %w", id, err)
	}
	return nil
}

func (r *userRepo) UpdateAISettings(ctx context.Context, id string, apiKeys map[string]string, enabledModels []string) (*model.User, error) {
	keysJSON, err := json.Marshal(orEmptyMap(apiKeys))
	if err != nil {
		return nil, err
	}
	modelsJSON, err := json.Marshal(orEmptySlice(enabledModels))
	if err != nil {
		return nil, err
	}
	query := `UPDATE users SET api_keys=$2, enabled_models=$3 WHERE id=$1 RETURNING ` + userColumns
	return r.scanUser(r.db.QueryRowContext(ctx, query, id, keysJSON, modelsJSON))
}

func (r *userRepo) IncrementUsage(ctx context.Context, id, modelID string, defaultQuota int) (int, bool, error) {
	query := `UPDATE users
	          SET api_usage = jsonb_set(COALESCE(api_usage, '{}'::jsonb), ARRAY[$2],
	                to_jsonb(COALESCE((api_usage->>$2)::int, 0) + 1))
	          WHERE id = $1
	            AND COALESCE((api_usage->>$2)::int, 0) < COALESCE((api_quota->>$2)::int, $3)
	          RETURNING (api_usage->>$2)::int`
	var usage int
	err := r.db.QueryRowContext(ctx, query, id, modelID, defaultQuota).Scan(&usage)
	if err == nil {
		return usage, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("incrementing usage for user %s model %s: %w", id, modelID, err)
	}
	// The conditional update matched no row: either the user is gone or the
	// counter already sits at quota. Report the current count unchanged.
	const currentQ = `SELECT COALESCE((api_usage->>$2)::int, 0) FROM users WHERE id=$1`
	if err := r.db.QueryRowContext(ctx, currentQ, id, modelID).Scan(&usage); err != nil {
		return 0, false, fmt.Errorf("reading usage for user %s model %s: %w", id, modelID, err)
	}
	return usage, false, nil
}

func (r *userRepo) SetLinkedIn(ctx context.Context, id string, link *model.LinkedInLink) error {
	linkJSON, err := json.Marshal(link)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET linkedin=$2 WHERE id=$1`, id, linkJSON); err != nil {
		return fmt.Errorf("storing linkedin link for user %s: %w", id, err)
	}
	return nil
}

func (r *userRepo) ClearLinkedIn(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET linkedin=NULL WHERE id=$1`, id); err != nil {
		return fmt.Errorf("clearing linkedin link for user %s: %w", id, err)
	}
	return nil
}

func (r *userRepo) UpdateStripeCustomerID(ctx context.Context, id, customerID string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET stripe_customer_id=$2 WHERE id=$1`, id, customerID); err != nil {
		return fmt.Errorf("storing stripe customer id for user %s: %w", id, err)
	}
	return nil
}

func (r *userRepo) UpdateSubscriptionStatus(ctx context.Context, id, status string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET subscription_status=$2 WHERE id=$1`, id, status); err != nil {
		return fmt.Errorf("updating subscription status for user %s: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *userRepo) scanUser(row rowScanner) (*model.User, error) {
	u, err := scanUserRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func scanUserRow(row rowScanner) (*model.User, error) {
	var (
		u             model.User
		apiKeys       []byte
		enabledModels []byte
		apiUsage      []byte
		apiQuota      []byte
		linkedin      []byte
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.StripeCustomerID,
		&u.SubscriptionStatus, &apiKeys, &enabledModels, &apiUsage, &apiQuota, &linkedin, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := unmarshalInto(apiKeys, &u.APIKeys); err != nil {
		return nil, err
	}
	if err := unmarshalInto(enabledModels, &u.EnabledModels); err != nil {
		return nil, err
	}
	if err := unmarshalInto(apiUsage, &u.APIUsage); err != nil {
		return nil, err
	}
	if err := unmarshalInto(apiQuota, &u.APIQuota); err != nil {
		return nil, err
	}
	if len(linkedin) > 0 {
		var link model.LinkedInLink
		if err := json.Unmarshal(linkedin, &link); err != nil {
			return nil, err
		}
		u.LinkedIn = &link
	}
	if u.APIKeys == nil {
		u.APIKeys = map[string]string{}
	}
	if u.APIUsage == nil {
		u.APIUsage = map[string]int{}
	}
	if u.APIQuota == nil {
		u.APIQuota = map[string]int{}
	}
	return &u, nil
}

func unmarshalInto(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func marshalUserMaps(u *model.User) (apiKeys, enabledModels, apiUsage, apiQuota, linkedin []byte, err error) {
	if apiKeys, err = json.Marshal(orEmptyMap(u.APIKeys)); err != nil {
		return
	}
	if enabledModels, err = json.Marshal(orEmptySlice(u.EnabledModels)); err != nil {
		return
	}
	if apiUsage, err = json.Marshal(orEmptyCounts(u.APIUsage)); err != nil {
		return
	}
	if apiQuota, err = json.Marshal(orEmptyCounts(u.APIQuota)); err != nil {
		return
	}
	if u.LinkedIn != nil {
		linkedin, err = json.Marshal(u.LinkedIn)
	}
	return
}

func orEmptyMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func orEmptyCounts(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}

func orEmptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
