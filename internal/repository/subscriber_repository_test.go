package repository_test

import (
	"context"
	"testing"

	"countdown/internal/repository"
)

func TestSubscriberUpsertAndMute(t *testing.T) {
	repo := repository.NewSubscriberRepository(newTestDB(t))
	ctx := context.Background()

	first, err := repo.UpsertFromTelegram(ctx, 42, "Ann", "ann")
	if err != nil {
		t.Fatalf("UpsertFromTelegram: %v", err)
	}
	again, err := repo.UpsertFromTelegram(ctx, 42, "Anna", "ann")
	if err != nil {
		t.Fatalf("UpsertFromTelegram again: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("upsert created a second row: %d != %d", again.ID, first.ID)
	}
	if _, err := repo.UpsertFromTelegram(ctx, 43, "Bob", ""); err != nil {
		t.Fatalf("UpsertFromTelegram 43: %v", err)
	}

	if err := repo.SetMuted(ctx, 42, true); err != nil {
		t.Fatalf("SetMuted: %v", err)
	}
	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 2 || all[0].ChatID != 42 || !all[0].Muted || all[1].Muted {
		t.Fatalf("ListAll = %+v, want 42 muted and 43 active", all)
	}

	if err := repo.SetMuted(ctx, 99, true); err == nil {
		t.Fatal("SetMuted on unknown chat should fail")
	}
}
