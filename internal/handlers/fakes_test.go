package handlers

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/ygarasab/acaimar-api/internal/database"
	"github.com/ygarasab/acaimar-api/internal/models"
)

// fakeUserRepo is an in-memory database.UserRepositoryInterface keyed by
// normalized email.
type fakeUserRepo struct {
	users   map[string]*models.User
	listErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, database.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := f.users[email]
	return ok, nil
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	if _, ok := f.users[user.Email]; ok {
		return nil, database.ErrDuplicateEmail
	}
	user.ID = bson.NewObjectID()
	f.users[user.Email] = user
	return user, nil
}

func (f *fakeUserRepo) UpdateRole(_ context.Context, email, role string) (bool, error) {
	user, ok := f.users[email]
	if !ok {
		return false, nil
	}
	if user.Role == role {
		return false, nil
	}
	user.Role = role
	return true, nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]*models.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	users := make([]*models.User, 0, len(f.users))
	for _, user := range f.users {
		users = append(users, user)
	}
	return users, nil
}

var _ database.UserRepositoryInterface = (*fakeUserRepo)(nil)

// fakeMetaRepo is an in-memory database.MetaRepositoryInterface keyed by hex
// id. It mirrors the store contract: malformed ids map to ErrInvalidID and
// missing documents to ErrNotFound.
type fakeMetaRepo struct {
	metas     map[string]*models.Meta
	order     []string
	counts    map[string]int
	countsErr error
}

func newFakeMetaRepo() *fakeMetaRepo {
	return &fakeMetaRepo{metas: make(map[string]*models.Meta)}
}

func (f *fakeMetaRepo) lookup(id string) (*models.Meta, error) {
	if _, err := bson.ObjectIDFromHex(id); err != nil {
		return nil, database.ErrInvalidID
	}
	meta, ok := f.metas[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return meta, nil
}

func (f *fakeMetaRepo) List(_ context.Context) ([]*models.Meta, error) {
	metas := make([]*models.Meta, 0, len(f.order))
	for _, id := range f.order {
		metas = append(metas, f.metas[id])
	}
	return metas, nil
}

func (f *fakeMetaRepo) GetByID(_ context.Context, id string) (*models.Meta, error) {
	return f.lookup(id)
}

func (f *fakeMetaRepo) Create(_ context.Context, meta *models.Meta) (*models.Meta, error) {
	meta.ID = bson.NewObjectID()
	now := time.Now().UTC()
	meta.CreatedAt = now
	meta.UpdatedAt = now
	f.metas[meta.ID.Hex()] = meta
	f.order = append(f.order, meta.ID.Hex())
	return meta, nil
}

func (f *fakeMetaRepo) Update(_ context.Context, id string, params database.UpdateMetaParams) (*models.Meta, error) {
	meta, err := f.lookup(id)
	if err != nil {
		return nil, err
	}
	if params.Titulo != nil {
		meta.Titulo = *params.Titulo
	}
	if params.Descricao != nil {
		meta.Descricao = *params.Descricao
	}
	if params.Status != nil {
		meta.Status = *params.Status
	}
	meta.UpdatedAt = time.Now().UTC()
	return meta, nil
}

func (f *fakeMetaRepo) Delete(_ context.Context, id string) error {
	if _, err := f.lookup(id); err != nil {
		return err
	}
	delete(f.metas, id)
	for i, stored := range f.order {
		if stored == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeMetaRepo) CountByStatus(_ context.Context) (map[string]int, error) {
	if f.countsErr != nil {
		return nil, f.countsErr
	}
	if f.counts != nil {
		return f.counts, nil
	}
	counts := make(map[string]int)
	for _, meta := range f.metas {
		if meta.Status != "" {
			counts[meta.Status]++
		}
	}
	return counts, nil
}

var _ database.MetaRepositoryInterface = (*fakeMetaRepo)(nil)

// fakeSensorRepo returns a fixed set of readings regardless of range
type fakeSensorRepo struct {
	readings []*models.SensorReading
	err      error
}

func (f *fakeSensorRepo) ListRange(_ context.Context, _, _ time.Time) ([]*models.SensorReading, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.readings, nil
}

var _ database.SensorRepositoryInterface = (*fakeSensorRepo)(nil)

// fakeHealthDB stands in for the mongo handle behind the health endpoint
type fakeHealthDB struct {
	pingErr  error
	stats    *database.Stats
	statsErr error
}

func (f *fakeHealthDB) Ping(_ context.Context) error {
	return f.pingErr
}

func (f *fakeHealthDB) Stats(_ context.Context) (*database.Stats, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return f.stats, nil
}

func (f *fakeHealthDB) Name() string {
	return "acaimar"
}

var _ database.DBInterface = (*fakeHealthDB)(nil)

func floatPtr(v float64) *float64 {
	return &v
}
