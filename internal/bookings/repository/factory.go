package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"deskbook/pkg/config"
	"deskbook/pkg/model"
)

// New builds the repositories for the configured storage driver. The
// connection for that driver must already be set on cfg.Client. seed is only
// used by the memory driver.
func New(cfg *config.Config, seed []*model.Desk) (BookingRepository, DeskRepository, error) {
	switch cfg.StorageDriver {
	case config.DriverMongo:
		return NewMongoBookingRepository(cfg), NewMongoDeskRepository(cfg), nil
	case config.DriverPostgres:
		return NewPostgresBookingRepository(cfg), NewPostgresDeskRepository(cfg), nil
	case config.DriverMemory:
		store := NewMemoryStore(seed...)
		return store.Bookings(), store.Desks(), nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// LoadDeskSeed reads a JSON array of desks.
func LoadDeskSeed(path string) ([]*model.Desk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read desk seed: %w", err)
	}

	var desks []*model.Desk
	if err := json.Unmarshal(data, &desks); err != nil {
		return nil, fmt.Errorf("failed to parse desk seed %s: %w", path, err)
	}

	seen := make(map[int64]bool, len(desks))
	for i, d := range desks {
		if d == nil || d.ID <= 0 {
			return nil, fmt.Errorf("desk seed %s: entry %d needs a positive id", path, i)
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("desk seed %s: duplicate desk id %d", path, d.ID)
		}
		seen[d.ID] = true
	}
	return desks, nil
}

func sortDesks(desks []*model.Desk) {
	sort.Slice(desks, func(i, j int) bool {
		a, b := desks[i], desks[j]
		if a.BuildingID != b.BuildingID {
			return a.BuildingID < b.BuildingID
		}
		if a.Floor != b.Floor {
			return a.Floor < b.Floor
		}
		return a.ID < b.ID
	})
}
