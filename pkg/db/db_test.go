package db

import (
	"errors"
	"testing"

	"gorm.io/gorm"
)

func TestSQLiteDSNAppendsPragmas(t *testing.T) {
	if got := sqliteDSN("inventory.db"); got != "inventory.db?"+sqlitePragmas {
		t.Fatalf("unexpected dsn %q", got)
	}
	if got := sqliteDSN("file:x?mode=memory"); got != "file:x?mode=memory&"+sqlitePragmas {
		t.Fatalf("unexpected dsn %q", got)
	}
	if got := sqliteDSN(""); got != "inventory.db?"+sqlitePragmas {
		t.Fatalf("unexpected default dsn %q", got)
	}
}

func TestDialectRejectsUnknownType(t *testing.T) {
	if _, err := Dialect(Config{Type: "oracle"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestIsDuplicateKeyErr(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{gorm.ErrDuplicatedKey, true},
		{errors.New("UNIQUE constraint failed: products.product_id"), true},
		{errors.New("Error 1062: Duplicate entry"), true},
		{errors.New("ERROR: duplicate key value violates unique constraint \"products_pkey\""), true},
		{errors.New("connection refused"), false},
	}
	for _, tc := range cases {
		if got := IsDuplicateKeyErr(tc.err); got != tc.want {
			t.Fatalf("IsDuplicateKeyErr(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestNewTestIsolated(t *testing.T) {
	type probe struct {
		ID int64 `gorm:"primaryKey"`
	}

	first, err := NewTest()
	if err != nil {
		t.Fatalf("open first: %v", err)
	}
	second, err := NewTest()
	if err != nil {
		t.Fatalf("open second: %v", err)
	}
	if err := first.AutoMigrate(&probe{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := first.Create(&probe{ID: 1}).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	if second.Migrator().HasTable(&probe{}) {
		t.Fatal("expected second database to be isolated")
	}
}
