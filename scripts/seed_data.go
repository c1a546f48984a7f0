//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/hellocabs/hellocabs/internal/cache"
	"github.com/hellocabs/hellocabs/internal/config"
	"github.com/hellocabs/hellocabs/internal/database"
	"github.com/hellocabs/hellocabs/internal/models"
	"github.com/hellocabs/hellocabs/internal/repository"
)

var (
	areaNames = []string{"MG Road", "Koramangala", "Indiranagar", "Whitefield", "Jayanagar",
		"HSR Layout", "Electronic City", "Hebbal", "Marathahalli", "Banashankari",
		"Malleshwaram", "Yelahanka", "BTM Layout", "Rajajinagar", "Basavanagudi"}
	driverFirstNames = []string{"Rahul", "Amit", "Vikram", "Raj", "Suresh", "Arun", "Kiran",
		"Sanjay", "Vijay", "Manoj", "Pradeep", "Ramesh", "Dinesh", "Mahesh", "Ganesh"}
	driverLastNames = []string{"Kumar", "Sharma", "Patel", "Singh", "Reddy", "Rao", "Gupta", "Joshi", "Nair", "Menon"}
	carModels       = []string{"Swift Dzire", "Etios", "Innova", "WagonR", "Ertiga"}
)

func main() {
	rand.Seed(time.Now().UnixNano())

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.DatabaseURL, cfg.DBMaxConnections, cfg.DBMaxIdleConnections)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()

	redis, err := database.NewRedis(cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	ctx := context.Background()

	locationRepo := repository.NewLocationRepository(db.DB)
	cabRepo := repository.NewCabRepository(db.DB)
	cabCache := cache.NewCabAvailabilityCache(redis.Client)

	// Create locations
	log.Printf("Creating %d locations...", len(areaNames))
	for _, name := range areaNames {
		location := &models.Location{Name: name}
		if err := locationRepo.Create(ctx, location); err != nil {
			log.Printf("failed to create location %s: %v", name, err)
			continue
		}
	}

	// Create cabs
	log.Println("Creating 30 cabs...")
	for i := 0; i < 30; i++ {
		cab := &models.Cab{
			CabNumber:     fmt.Sprintf("KA-01-HC-%04d", 1000+i),
			DriverName:    driverFirstNames[rand.Intn(len(driverFirstNames))] + " " + driverLastNames[rand.Intn(len(driverLastNames))],
			MobileNumber:  fmt.Sprintf("98%08d", rand.Intn(100000000)),
			LicenseNumber: fmt.Sprintf("DL%010d", rand.Intn(1000000000)),
			CarModel:      carModels[rand.Intn(len(carModels))],
			DriverRating:  4.0 + rand.Float64(),
		}
		if err := cabRepo.Create(ctx, cab); err != nil {
			log.Printf("failed to create cab %s: %v", cab.CabNumber, err)
			continue
		}
		if err := cabCache.SetCabMeta(ctx, cab.ID, cab.Status, cab.CarModel, cab.DriverRating); err != nil {
			log.Printf("failed to cache cab %d: %v", cab.ID, err)
		}
	}

	log.Println("Seed data created")
}
