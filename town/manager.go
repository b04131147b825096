// town/manager.go
package town

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/wfunc/townserver/tilemap"
)

var (
	ErrTownNotFound    = errors.New("town not found")
	ErrInvalidPassword = errors.New("invalid update password")
)

// Summary is what town listings expose about a public town.
type Summary struct {
	TownID           string `json:"townID"`
	FriendlyName     string `json:"friendlyName"`
	CurrentOccupancy int    `json:"currentOccupancy"`
	MaximumOccupancy int    `json:"maximumOccupancy"`
}

// Manager is the process-wide town registry. It is constructed once at
// startup and handed to whoever needs it; there is no package-level instance.
type Manager struct {
	towns       map[string]*Town
	broadcaster Broadcaster
	townMap     *tilemap.Map
	mutex       sync.RWMutex
}

// NewManager wires the registry to the broadcaster and the map every new
// town is initialized from.
func NewManager(broadcaster Broadcaster, townMap *tilemap.Map) *Manager {
	return &Manager{
		towns:       make(map[string]*Town),
		broadcaster: broadcaster,
		townMap:     townMap,
	}
}

// CreateTown builds and registers a new town. Map validation failures abort
// the creation.
func (m *Manager) CreateTown(friendlyName string, isPubliclyListed bool) (*Town, error) {
	t := New(friendlyName, isPubliclyListed, uuid.New().String(), m.broadcaster)
	if err := t.InitializeFromMap(m.townMap); err != nil {
		return nil, err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.towns[t.ID()] = t
	return t, nil
}

func (m *Manager) GetTown(id string) (*Town, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	t, exists := m.towns[id]
	return t, exists
}

// UpdateTown changes a town's settings, gated by its update password.
func (m *Manager) UpdateTown(id, password string, friendlyName *string, isPubliclyListed *bool) error {
	t, exists := m.GetTown(id)
	if !exists {
		return ErrTownNotFound
	}
	if t.UpdatePassword() != password {
		return ErrInvalidPassword
	}
	if friendlyName != nil {
		t.SetFriendlyName(*friendlyName)
	}
	if isPubliclyListed != nil {
		t.SetIsPubliclyListed(*isPubliclyListed)
	}
	return nil
}

// DeleteTown tears a town down, gated by its update password. Connected
// players see townClosing before their sockets drop.
func (m *Manager) DeleteTown(id, password string) error {
	t, exists := m.GetTown(id)
	if !exists {
		return ErrTownNotFound
	}
	if t.UpdatePassword() != password {
		return ErrInvalidPassword
	}

	m.mutex.Lock()
	delete(m.towns, id)
	m.mutex.Unlock()

	t.DisconnectAllPlayers()
	return nil
}

// ListPublicTowns summarizes every publicly listed town.
func (m *Manager) ListPublicTowns() []Summary {
	m.mutex.RLock()
	towns := make([]*Town, 0, len(m.towns))
	for _, t := range m.towns {
		towns = append(towns, t)
	}
	m.mutex.RUnlock()

	var result []Summary
	for _, t := range towns {
		if t.IsPubliclyListed() {
			result = append(result, Summary{
				TownID:           t.ID(),
				FriendlyName:     t.FriendlyName(),
				CurrentOccupancy: t.Occupancy(),
				MaximumOccupancy: t.Capacity(),
			})
		}
	}
	return result
}

// TownCount reports how many towns are live, for the monitor gauge.
func (m *Manager) TownCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.towns)
}
