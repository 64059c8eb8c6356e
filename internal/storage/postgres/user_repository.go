package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
)

const userColumns = `id, name, email, password, role`

type userRepository struct {
	db *sql.DB
}

// NewUserRepository создаёт PostgreSQL-реализацию UserRepository.
// Уникальность email дополнительно закреплена индексом users_email_key.
func NewUserRepository(store *Store) domain.UserRepository {
	return &userRepository{db: store.DB()}
}

func (r *userRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password, role)
		VALUES ($1,$2,$3,$4,$5)
	`, user.ID.Hex(), user.Name, user.Email, user.Password, string(user.Role))
	if err != nil {
		if violatesConstraint(err, usersEmailConstraint) {
			return domain.User{}, domain.ErrDuplicateEmail
		}
		return domain.User{}, domain.NewStoreError("insert user", err)
	}
	return user, nil
}

func (r *userRepository) Get(ctx context.Context, id primitive.ObjectID) (domain.User, error) {
	return r.findOne(ctx, `WHERE id = $1`, id.Hex())
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, `WHERE email = $1 ORDER BY seq LIMIT 1`, email)
}

func (r *userRepository) FindByCredentials(ctx context.Context, email, password string) (domain.User, error) {
	return r.findOne(ctx, `WHERE email = $1 AND password = $2 ORDER BY seq LIMIT 1`, email, password)
}

func (r *userRepository) Update(ctx context.Context, id primitive.ObjectID, patch domain.UserPatch) (domain.UpdateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var result domain.UpdateResult
	err := inTx(ctx, r.db, "update user", func(tx *sql.Tx) error {
		current, err := scanUser(tx.QueryRowContext(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id.Hex()))
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return domain.NewStoreError("select user", err)
		}
		result.Matched = 1

		updated, changed := patch.Apply(current)
		if !changed {
			return nil
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE users
			SET name = $2, email = $3, password = $4, role = $5
			WHERE id = $1
		`, id.Hex(), updated.Name, updated.Email, updated.Password, string(updated.Role)); err != nil {
			if violatesConstraint(err, usersEmailConstraint) {
				return domain.ErrDuplicateEmail
			}
			return domain.NewStoreError("update user", err)
		}
		result.Modified = 1
		return nil
	})
	if err != nil {
		return domain.UpdateResult{}, err
	}
	return result, nil
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY seq`)
	if err != nil {
		return nil, domain.NewStoreError("list users", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, domain.NewStoreError("scan user", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("iterate users", err)
	}
	return users, nil
}

func (r *userRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	return r.delete(ctx, `DELETE FROM users WHERE id = $1`, id.Hex())
}

func (r *userRepository) DeleteWithRole(ctx context.Context, id primitive.ObjectID, role domain.Role) (int64, error) {
	return r.delete(ctx, `DELETE FROM users WHERE id = $1 AND role = $2`, id.Hex(), string(role))
}

func (r *userRepository) delete(ctx context.Context, query string, args ...any) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, domain.NewStoreError("delete user", err)
	}
	return rowsAffected(res, "delete user")
}

func (r *userRepository) findOne(ctx context.Context, where string, args ...any) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	user, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users `+where, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, domain.NewStoreError("find user", err)
	}
	return user, nil
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		user domain.User
		id   string
		role string
	)
	if err := row.Scan(&id, &user.Name, &user.Email, &user.Password, &role); err != nil {
		return domain.User{}, err
	}
	parsed, err := parseID(id)
	if err != nil {
		return domain.User{}, fmt.Errorf("user: %w", err)
	}
	user.ID = parsed
	user.Role = domain.Role(role)
	return user, nil
}

var _ domain.UserRepository = (*userRepository)(nil)
