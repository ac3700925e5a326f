package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/spedigo-next/internal/constants"
	"github.com/spedigo-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupShipmentRepositoryTest(t *testing.T) (*GormShipmentRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:shipment_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Shipment{}, &models.CustomsDocument{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewShipmentRepository(db), db
}

func TestShipmentRepositoryEnsurePendingIsIdempotent(t *testing.T) {
	repo, _ := setupShipmentRepositoryTest(t)

	first, err := repo.EnsurePending(1001, "#35622")
	if err != nil {
		t.Fatalf("ensure pending failed: %v", err)
	}
	if first.Status != constants.ShipmentStatusPending {
		t.Fatalf("unexpected status: %s", first.Status)
	}

	second, err := repo.EnsurePending(1001, "#35622")
	if err != nil {
		t.Fatalf("ensure pending failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same row, got %d and %d", first.ID, second.ID)
	}
}

func TestShipmentRepositoryClaimAdmitsExactlyOne(t *testing.T) {
	repo, _ := setupShipmentRepositoryTest(t)
	if _, err := repo.EnsurePending(1001, "#35622"); err != nil {
		t.Fatalf("ensure pending failed: %v", err)
	}

	claimed, err := repo.ClaimForSubmission(1001)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if !claimed {
		t.Fatalf("first claim should succeed")
	}

	claimed, err = repo.ClaimForSubmission(1001)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if claimed {
		t.Fatalf("second claim should be rejected")
	}
}

func TestShipmentRepositoryReleaseToPendingAllowsReclaim(t *testing.T) {
	repo, _ := setupShipmentRepositoryTest(t)
	if _, err := repo.EnsurePending(1001, "#35622"); err != nil {
		t.Fatalf("ensure pending failed: %v", err)
	}
	if _, err := repo.ClaimForSubmission(1001); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	if err := repo.ReleaseToPending(1001, "carrier timeout"); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	shipment, err := repo.GetByOrderID(1001)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if shipment.Status != constants.ShipmentStatusPending {
		t.Fatalf("unexpected status after release: %s", shipment.Status)
	}
	if shipment.FailReason != "carrier timeout" {
		t.Fatalf("fail reason not recorded: %q", shipment.FailReason)
	}

	claimed, err := repo.ClaimForSubmission(1001)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if !claimed {
		t.Fatalf("released row should be claimable again")
	}
}

func TestShipmentRepositoryListFilters(t *testing.T) {
	repo, db := setupShipmentRepositoryTest(t)
	rows := []models.Shipment{
		{OrderID: 1, OrderName: "#1", Status: constants.ShipmentStatusLabelCreated, DestinationCountry: "FR", Tracking: "TRKA"},
		{OrderID: 2, OrderName: "#2", Status: constants.ShipmentStatusBlocked, DestinationCountry: "BR"},
		{OrderID: 3, OrderName: "#3", Status: constants.ShipmentStatusLabelCreated, DestinationCountry: "US", Tracking: "TRKB"},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	shipments, total, err := repo.List(ShipmentListFilter{Status: constants.ShipmentStatusLabelCreated})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(shipments) != 2 {
		t.Fatalf("unexpected list result: total=%d len=%d", total, len(shipments))
	}

	shipments, total, err = repo.List(ShipmentListFilter{Search: "TRKB"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || shipments[0].OrderID != 3 {
		t.Fatalf("unexpected search result: total=%d", total)
	}
}

func TestShipmentRepositoryGetByOrderName(t *testing.T) {
	repo, db := setupShipmentRepositoryTest(t)
	row := models.Shipment{OrderID: 9, OrderName: "#900", Status: constants.ShipmentStatusLabelCreated}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	shipment, err := repo.GetByOrderName("#900")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if shipment == nil || shipment.OrderID != 9 {
		t.Fatalf("unexpected row: %+v", shipment)
	}

	missing, err := repo.GetByOrderName("#901")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing row")
	}
}
