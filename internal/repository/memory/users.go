// Package memory holds in-process implementations of the repository
// contracts. They back STORE_DRIVER=memory and the service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/arzan03/CampusPortal/internal/common"
	"github.com/arzan03/CampusPortal/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[primitive.ObjectID]models.User)}
}

func (r *UserRepository) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == u.Email || existing.RegdNo == u.RegdNo {
			return common.NewError(common.ErrAlreadyExists, "User already exists with this email or registration number")
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	r.users[u.ID] = *u
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, common.NewError(common.ErrNotFound, "User not found")
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, common.NewError(common.ErrNotFound, "User not found")
}

func (r *UserRepository) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.User{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, redact(u))
		}
	}
	return out, nil
}

func (r *UserRepository) List(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, redact(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// redact mirrors the projection applied by the Mongo listing queries.
func redact(u models.User) models.User {
	u.Password = ""
	u.OTP = ""
	u.OTPExpiry = time.Time{}
	return u
}

func (r *UserRepository) ExistsByEmailOrRegdNo(_ context.Context, email, regdNo string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email || u.RegdNo == regdNo {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepository) SetOTP(_ context.Context, id primitive.ObjectID, code string, expiry time.Time, passwordReset bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return common.NewError(common.ErrNotFound, "User not found")
	}
	u.OTP = code
	u.OTPExpiry = expiry
	u.PasswordReset = passwordReset
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

func (r *UserRepository) ConsumeOTP(_ context.Context, id primitive.ObjectID, code string, change models.OTPConsumption) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok || u.OTP == "" || u.OTP != code {
		return common.NewError(common.ErrNotFound, "OTP already used")
	}
	if change.MarkVerified {
		u.IsVerified = true
	}
	if change.PasswordHash != "" {
		u.Password = change.PasswordHash
	}
	u.OTP = ""
	u.OTPExpiry = time.Time{}
	u.PasswordReset = false
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

func (r *UserRepository) UpdateProfile(_ context.Context, id primitive.ObjectID, name, phone string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, common.NewError(common.ErrNotFound, "User not found")
	}
	if name != "" {
		u.Name = name
	}
	if phone != "" {
		u.Phone = phone
	}
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u

	out := u
	out.Password = ""
	return &out, nil
}

func (r *UserRepository) SetRoleByEmail(_ context.Context, email, role string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, u := range r.users {
		if u.Email != email {
			continue
		}
		u.Role = role
		u.UpdatedAt = time.Now().UTC()
		r.users[id] = u

		out := u
		out.Password = ""
		return &out, nil
	}
	return nil, common.NewError(common.ErrNotFound, "User not found")
}

func (r *UserRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return common.NewError(common.ErrNotFound, "User not found")
	}
	delete(r.users, id)
	return nil
}
