package service

import (
	"context"
	"testing"
	"time"

	"github.com/hellocabs/hellocabs/internal/lifecycle"
	"github.com/hellocabs/hellocabs/internal/models"
)

func newTestCabService(t *testing.T) (CabService, *fakeCabRepo, *fakeRideRepo) {
	t.Helper()
	cabRepo := newFakeCabRepo()
	rideRepo := newFakeRideRepo()
	return NewCabService(cabRepo, rideRepo, nil), cabRepo, rideRepo
}

func TestRegisterCab(t *testing.T) {
	svc, _, _ := newTestCabService(t)

	cab, err := svc.RegisterCab(context.Background(), &models.RegisterCabRequest{
		CabNumber:     "KA-01-HC-1000",
		DriverName:    "Suresh Kumar",
		MobileNumber:  "9812345678",
		LicenseNumber: "DL0012345678",
		CarModel:      "Swift Dzire",
	})
	if err != nil {
		t.Fatalf("RegisterCab() error = %v", err)
	}
	if cab.ID == 0 {
		t.Error("RegisterCab() did not assign an id")
	}
	if cab.Status != lifecycle.CabAvailable {
		t.Errorf("new cab status = %s, want Available", cab.Status)
	}
}

func TestRegisterCabDuplicateNumber(t *testing.T) {
	svc, cabRepo, _ := newTestCabService(t)

	cabRepo.put(&models.Cab{ID: 1, CabNumber: "KA-01-HC-1000", DriverName: "Suresh Kumar",
		CarModel: "Etios", Status: lifecycle.CabAvailable})

	_, err := svc.RegisterCab(context.Background(), &models.RegisterCabRequest{
		CabNumber:    "KA-01-HC-1000",
		DriverName:   "Raj Singh",
		MobileNumber: "9876501234",
		CarModel:     "Innova",
	})
	wantAPIError(t, err, "conflict")
}

func TestUpdateCabStatus(t *testing.T) {
	svc, cabRepo, _ := newTestCabService(t)
	ctx := context.Background()

	cabRepo.put(&models.Cab{ID: 1, CabNumber: "KA-01-HC-1000", DriverName: "Suresh Kumar",
		CarModel: "Etios", Status: lifecycle.CabAvailable})

	cab, err := svc.UpdateCabStatus(ctx, 1, "Unavailable")
	if err != nil {
		t.Fatalf("UpdateCabStatus() error = %v", err)
	}
	if cab.Status != lifecycle.CabUnavailable {
		t.Errorf("cab status = %s, want Unavailable", cab.Status)
	}
}

func TestUpdateCabStatusRejectsUnknownValue(t *testing.T) {
	svc, cabRepo, _ := newTestCabService(t)

	cabRepo.put(&models.Cab{ID: 1, CabNumber: "KA-01-HC-1000", DriverName: "Suresh Kumar",
		CarModel: "Etios", Status: lifecycle.CabAvailable})

	for _, status := range []string{"", "Busy", "available"} {
		_, err := svc.UpdateCabStatus(context.Background(), 1, status)
		wantAPIError(t, err, "bad_request")
	}
}

func TestUpdateCabStatusSameStatusNoOp(t *testing.T) {
	svc, cabRepo, _ := newTestCabService(t)

	cabRepo.put(&models.Cab{ID: 1, CabNumber: "KA-01-HC-1000", DriverName: "Suresh Kumar",
		CarModel: "Etios", Status: lifecycle.CabAvailable})

	cab, err := svc.UpdateCabStatus(context.Background(), 1, "Available")
	if err != nil {
		t.Fatalf("re-applying current status should succeed, got %v", err)
	}
	if cab.Status != lifecycle.CabAvailable {
		t.Errorf("cab status = %s, want Available", cab.Status)
	}
}

func TestUpdateCabStatusBlockedByActiveRide(t *testing.T) {
	svc, cabRepo, rideRepo := newTestCabService(t)

	cabID := int64(1)
	cabRepo.put(&models.Cab{ID: cabID, CabNumber: "KA-01-HC-1000", DriverName: "Suresh Kumar",
		CarModel: "Etios", Status: lifecycle.CabAssigned})
	rideRepo.put(&models.Ride{ID: 1, CustomerID: 5, PickupLocationID: 1, DropLocationID: 2,
		CabID: &cabID, Status: lifecycle.StatusAccepted, BookedAt: time.Now()})

	_, err := svc.UpdateCabStatus(context.Background(), cabID, "Available")
	wantAPIError(t, err, "cab_on_active_ride")
}

func TestDeregisterCab(t *testing.T) {
	svc, cabRepo, _ := newTestCabService(t)
	ctx := context.Background()

	cabRepo.put(&models.Cab{ID: 1, CabNumber: "KA-01-HC-1000", DriverName: "Suresh Kumar",
		CarModel: "Etios", Status: lifecycle.CabAvailable})

	if err := svc.DeregisterCab(ctx, 1); err != nil {
		t.Fatalf("DeregisterCab() error = %v", err)
	}
	if cab, _ := cabRepo.GetByID(ctx, 1); cab != nil {
		t.Error("cab still present after deregistration")
	}
}

func TestDeregisterCabBlockedByActiveRide(t *testing.T) {
	svc, cabRepo, rideRepo := newTestCabService(t)

	cabID := int64(1)
	cabRepo.put(&models.Cab{ID: cabID, CabNumber: "KA-01-HC-1000", DriverName: "Suresh Kumar",
		CarModel: "Etios", Status: lifecycle.CabAssigned})
	rideRepo.put(&models.Ride{ID: 1, CustomerID: 5, PickupLocationID: 1, DropLocationID: 2,
		CabID: &cabID, Status: lifecycle.StatusPicked, BookedAt: time.Now()})

	err := svc.DeregisterCab(context.Background(), cabID)
	wantAPIError(t, err, "cab_on_active_ride")
}

func TestUpdateCab(t *testing.T) {
	svc, cabRepo, _ := newTestCabService(t)

	cabRepo.put(&models.Cab{ID: 1, CabNumber: "KA-01-HC-1000", DriverName: "Suresh Kumar",
		MobileNumber: "9812345678", CarModel: "Etios", Status: lifecycle.CabAvailable, DriverRating: 4.2})

	cab, err := svc.UpdateCab(context.Background(), 1, &models.UpdateCabRequest{
		DriverName: "Suresh K",
		CarModel:   "Innova",
	})
	if err != nil {
		t.Fatalf("UpdateCab() error = %v", err)
	}
	if cab.DriverName != "Suresh K" {
		t.Errorf("driver name = %s, want Suresh K", cab.DriverName)
	}
	if cab.CarModel != "Innova" {
		t.Errorf("car model = %s, want Innova", cab.CarModel)
	}
	if cab.MobileNumber != "9812345678" {
		t.Error("unset fields should be left untouched")
	}
}

func TestGetCabNotFound(t *testing.T) {
	svc, _, _ := newTestCabService(t)

	_, err := svc.GetCab(context.Background(), 42)
	wantAPIError(t, err, "not_found")
}
