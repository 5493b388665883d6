package mongo

import (
	"testing"

	"deskbook/internal/bookings/repository"
)

func TestCollectionsCoverRepositories(t *testing.T) {
	defs := collections()
	for _, name := range []string{
		repository.BookingsCollection,
		repository.DesksCollection,
		repository.CountersCollection,
		repository.LocksCollection,
	} {
		if _, ok := defs[name]; !ok {
			t.Errorf("missing collection %s", name)
		}
	}

	if defs[repository.BookingsCollection].Validator == nil {
		t.Error("bookings must carry a validator")
	}

	lockIdx := defs[repository.LocksCollection].Indexes
	if len(lockIdx) != 1 || lockIdx[0].Options == nil || lockIdx[0].Options.ExpireAfterSeconds == nil {
		t.Fatal("locks need a TTL index")
	}
	if *lockIdx[0].Options.ExpireAfterSeconds != 0 {
		t.Errorf("expected expireAfterSeconds 0, got %d", *lockIdx[0].Options.ExpireAfterSeconds)
	}
}
