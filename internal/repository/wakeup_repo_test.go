package repository

import (
	"errors"
	"regexp"
	"testing"

	"eggtimer/internal/models"
)

func TestWakeupSQLite_SaveGetDelete(t *testing.T) {
	repo := NewWakeupSQLite(newMemoryDB(t))

	if err := repo.Save(ctx(t), models.Wakeup{Key: "egg_timer", TriggerAt: 1000}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := repo.Get(ctx(t), "egg_timer")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.TriggerAt != 1000 || got.Recurring() {
		t.Fatalf("unexpected wakeup: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("CreatedAt should be filled in")
	}

	if err := repo.Delete(ctx(t), "egg_timer"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err = repo.Get(ctx(t), "egg_timer")
	if err != nil || got != nil {
		t.Fatalf("after delete Get() = %+v, %v", got, err)
	}

	// deleting again is fine
	if err := repo.Delete(ctx(t), "egg_timer"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestWakeupSQLite_SaveReplacesSameKey(t *testing.T) {
	repo := NewWakeupSQLite(newMemoryDB(t))

	_ = repo.Save(ctx(t), models.Wakeup{Key: "egg_timer", TriggerAt: 1000})
	if err := repo.Save(ctx(t), models.Wakeup{Key: "egg_timer", TriggerAt: 2000}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	all, err := repo.List(ctx(t))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 || all[0].TriggerAt != 2000 {
		t.Fatalf("expected a single replaced registration, got %+v", all)
	}
}

func TestWakeupSQLite_ListOrdersByTrigger(t *testing.T) {
	repo := NewWakeupSQLite(newMemoryDB(t))

	_ = repo.Save(ctx(t), models.Wakeup{Key: "push:0", TriggerAt: 3000, CronExpr: "0 8 * * *"})
	_ = repo.Save(ctx(t), models.Wakeup{Key: "egg_timer", TriggerAt: 1000})
	_ = repo.Save(ctx(t), models.Wakeup{Key: "egg_snooze", TriggerAt: 2000})

	all, err := repo.List(ctx(t))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"egg_timer", "egg_snooze", "push:0"}
	if len(all) != len(want) {
		t.Fatalf("got %d wakeups", len(all))
	}
	for i, k := range want {
		if all[i].Key != k {
			t.Fatalf("position %d: got %q, want %q", i, all[i].Key, k)
		}
	}
	if !all[2].Recurring() {
		t.Fatal("cron registration should be recurring")
	}
}

func TestWakeupSQLite_Save_EmptyKey(t *testing.T) {
	db, mock := newMock(t)
	repo := NewWakeupSQLite(db)

	if err := repo.Save(ctx(t), models.Wakeup{TriggerAt: 1}); err == nil {
		t.Fatal("expected error for empty key")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestWakeupSQLite_Delete_ExecError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewWakeupSQLite(db)

	mock.ExpectExec(regexp.QuoteMeta(deleteWakeupSQL)).
		WithArgs("egg_timer").
		WillReturnError(errors.New("locked"))

	if err := repo.Delete(ctx(t), "egg_timer"); err == nil {
		t.Fatal("expected error")
	}
}
