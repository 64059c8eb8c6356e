package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
)

type userRepository struct {
	users *driver.Collection
}

// NewUserRepository создаёт реализацию UserRepository над коллекцией user.
func NewUserRepository(store *Store) domain.UserRepository {
	return &userRepository{users: store.collection(usersCollection)}
}

func (r *userRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if _, err := r.users.InsertOne(ctx, newUserDocument(user)); err != nil {
		// Кроме _id уникален только email.
		if driver.IsDuplicateKeyError(err) {
			return domain.User{}, domain.ErrDuplicateEmail
		}
		return domain.User{}, domain.NewStoreError("insert user", err)
	}
	return user, nil
}

func (r *userRepository) Get(ctx context.Context, id primitive.ObjectID) (domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userRepository) FindByCredentials(ctx context.Context, email, password string) (domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email, "password": password})
}

func (r *userRepository) Update(ctx context.Context, id primitive.ObjectID, patch domain.UserPatch) (domain.UpdateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.Password != nil {
		set["password"] = *patch.Password
	}
	if patch.Role != nil {
		set["role"] = string(*patch.Role)
	}
	if len(set) == 0 {
		return matchOnly(ctx, r.users, bson.M{"_id": id})
	}

	res, err := r.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		if driver.IsDuplicateKeyError(err) {
			return domain.UpdateResult{}, domain.ErrDuplicateEmail
		}
		return domain.UpdateResult{}, domain.NewStoreError("update user", err)
	}
	return updateResult(res), nil
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	docs, err := findAll[userDocument](ctx, r.users, bson.M{}, "list users")
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, doc.toDomain())
	}
	return users, nil
}

func (r *userRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	return deleteOne(ctx, r.users, bson.M{"_id": id}, "delete user")
}

func (r *userRepository) DeleteWithRole(ctx context.Context, id primitive.ObjectID, role domain.Role) (int64, error) {
	return deleteOne(ctx, r.users, bson.M{"_id": id, "role": string(role)}, "delete user")
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var doc userDocument
	err := r.users.FindOne(ctx, filter, options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})).Decode(&doc)
	if errors.Is(err, driver.ErrNoDocuments) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, domain.NewStoreError("find user", err)
	}
	return doc.toDomain(), nil
}

var _ domain.UserRepository = (*userRepository)(nil)
