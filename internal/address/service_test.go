package address

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

func newService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db := dbtest.Open(t)
	svc, err := NewService(db, dbpkg.NewFromConn(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, db
}

func sampleInput(line1 string) CreateInput {
	return CreateInput{FullName: "Ada Buyer", Line1: line1, City: "Lisbon", PostalCode: "1000-001", Country: "pt"}
}

func TestGetAddressOwnership(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	owner := uuid.New()

	addr, err := svc.Create(ctx, owner, sampleInput("1 Main St"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if addr.Country != "PT" {
		t.Fatalf("expected upper-cased country, got %q", addr.Country)
	}
	if !addr.IsDefault {
		t.Fatalf("first address should become default")
	}

	if _, err := svc.GetAddress(ctx, addr.ID, owner); err != nil {
		t.Fatalf("owner lookup: %v", err)
	}
	if _, err := svc.GetAddress(ctx, addr.ID, uuid.New()); !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := svc.GetAddress(ctx, uuid.New(), owner); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSetDefaultKeepsSingleDefault(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	owner := uuid.New()
	other := uuid.New()

	first, err := svc.Create(ctx, owner, sampleInput("1 Main St"))
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := svc.Create(ctx, owner, sampleInput("2 Side St"))
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	foreign, err := svc.Create(ctx, other, sampleInput("9 Far Rd"))
	if err != nil {
		t.Fatalf("create foreign: %v", err)
	}

	updated, err := svc.SetDefault(ctx, second.ID, owner)
	if err != nil {
		t.Fatalf("set default: %v", err)
	}
	if !updated.IsDefault {
		t.Fatalf("expected second address to be default")
	}

	var defaults int64
	db.Model(&models.Address{}).Where("user_id = ? AND is_default = ?", owner, true).Count(&defaults)
	if defaults != 1 {
		t.Fatalf("expected exactly one default, got %d", defaults)
	}

	reloaded, _ := svc.GetAddress(ctx, first.ID, owner)
	if reloaded.IsDefault {
		t.Fatalf("first address should no longer be default")
	}
	untouched, _ := svc.GetAddress(ctx, foreign.ID, other)
	if !untouched.IsDefault {
		t.Fatalf("other user's default must not change")
	}

	if _, err := svc.SetDefault(ctx, foreign.ID, owner); !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	list, err := svc.List(ctx, owner)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID {
		t.Fatalf("expected default first in list, got %+v", list)
	}
}
