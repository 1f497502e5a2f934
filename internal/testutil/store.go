// Package testutil holds fakes shared by the HTTP tests.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Shimizu-Technology/legallite-api/internal/database"
	"github.com/Shimizu-Technology/legallite-api/internal/models"
)

// MemStore is an in-memory stand-in for *database.DB. It reports the same
// sentinel errors, so handlers behave exactly as they would against Postgres.
type MemStore struct {
	mu      sync.Mutex
	users   map[string]*models.User
	uploads []models.Upload
	clock   time.Time

	// FailHistory makes AppendHistory fail.
	FailHistory bool
}

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		users: make(map[string]*models.User),
		clock: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// tick returns strictly increasing timestamps so ordering is deterministic.
func (m *MemStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *MemStore) HealthCheck(ctx context.Context) error { return nil }

func (m *MemStore) CreateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return database.ErrEmailTaken
		}
	}
	u.ID = uuid.New().String()
	u.CreatedAt = m.tick()
	stored := *u
	m.users[u.ID] = &stored
	return nil
}

func (m *MemStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user: %w", database.ErrNotFound)
}

func (m *MemStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, fmt.Errorf("user: %w", database.ErrNotFound)
}

func (m *MemStore) SaveSession(ctx context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[s.User.ID]
	if !ok {
		return fmt.Errorf("user: %w", database.ErrNotFound)
	}
	u.Mode = string(s.Mode)
	u.CurrentPage = string(s.Page)
	s.User.Mode = u.Mode
	s.User.CurrentPage = u.CurrentPage
	return nil
}

func (m *MemStore) AppendHistory(ctx context.Context, up *models.Upload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailHistory {
		return fmt.Errorf("failed to save upload: connection refused")
	}
	up.ID = uuid.New().String()
	up.CreatedAt = m.tick()
	m.uploads = append(m.uploads, *up)
	return nil
}

func (m *MemStore) ListHistory(ctx context.Context, userID string, limit int) ([]models.Upload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []models.Upload
	for _, up := range m.uploads {
		if up.UserID == userID {
			out = append(out, up)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemStore) GetHistoryItem(ctx context.Context, userID, id string) (*models.Upload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, up := range m.uploads {
		if up.ID == id && up.UserID == userID {
			copied := up
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("upload: %w", database.ErrNotFound)
}

// User returns a copy of the stored user with id.
func (m *MemStore) User(id string) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.users[id]
}
