package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

type sampleCoupon struct {
	Code              string    `json:"code"`
	DiscountPercent   int       `json:"discountPercent"`
	MaxDiscountAmount string    `json:"maxDiscountAmount"`
	MinOrderAmount    string    `json:"minOrderAmount"`
	ExpiresAt         time.Time `json:"expiresAt"`
	IsActive          *bool     `json:"isActive,omitempty"`
}

// generateSampleCoupons writes gzipped JSON-lines coupon files for
// `foodmart import-coupons`.
// File 1: SAVE20, WELCOME50, FLAT100
// File 2: SAVE20 (raised cap), LASTWEEK (expired), RETIRED (inactive)
// Importing both in order leaves SAVE20 with the file 2 definition.
func main() {
	dataDir := "data/coupons"

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	nextMonth := time.Now().UTC().AddDate(0, 1, 0).Truncate(time.Hour)
	lastWeek := time.Now().UTC().AddDate(0, 0, -7).Truncate(time.Hour)
	inactive := false

	files := map[string][]sampleCoupon{
		"coupons-week1.gz": {
			{Code: "SAVE20", DiscountPercent: 20, MaxDiscountAmount: "100", MinOrderAmount: "200", ExpiresAt: nextMonth},
			{Code: "WELCOME50", DiscountPercent: 50, MaxDiscountAmount: "150", MinOrderAmount: "0", ExpiresAt: nextMonth},
			{Code: "FLAT100", DiscountPercent: 100, MaxDiscountAmount: "100", MinOrderAmount: "500", ExpiresAt: nextMonth},
		},
		"coupons-week2.gz": {
			{Code: "SAVE20", DiscountPercent: 20, MaxDiscountAmount: "150", MinOrderAmount: "200", ExpiresAt: nextMonth},
			{Code: "LASTWEEK", DiscountPercent: 10, MaxDiscountAmount: "50", MinOrderAmount: "0", ExpiresAt: lastWeek},
			{Code: "RETIRED", DiscountPercent: 30, MaxDiscountAmount: "90", MinOrderAmount: "0", ExpiresAt: nextMonth, IsActive: &inactive},
		},
	}

	for filename, coupons := range files {
		filePath := filepath.Join(dataDir, filename)

		if err := createCouponFile(filePath, coupons); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d coupons\n", filePath, len(coupons))
	}

	fmt.Println("\nImport with:")
	fmt.Printf("  foodmart import-coupons %s %s\n",
		filepath.Join(dataDir, "coupons-week1.gz"),
		filepath.Join(dataDir, "coupons-week2.gz"))
}

func createCouponFile(filePath string, coupons []sampleCoupon) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	enc := json.NewEncoder(gzipWriter)
	for _, c := range coupons {
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("failed to write coupon %s: %w", c.Code, err)
		}
	}

	return nil
}
