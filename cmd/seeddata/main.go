// Command seeddata populates a development database with a demo tenant, two
// branches, and a small catalogue, so the API can be exercised immediately.
package main

import (
	"fmt"
	"os"

	"github.com/supportta-projects/supporttabillbook-sub000/internal/config"
	"github.com/supportta-projects/supporttabillbook-sub000/internal/infra"
	"github.com/supportta-projects/supporttabillbook-sub000/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "database:", err)
		os.Exit(1)
	}

	if err := seed(db); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
	fmt.Println("seeded demo tenant, branches and products")
}

func seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		tenant := model.Tenant{Name: "Demo Retail Pvt Ltd", Active: true}
		if err := tx.Where("name = ?", tenant.Name).FirstOrCreate(&tenant).Error; err != nil {
			return err
		}

		branches := []model.Branch{
			{TenantID: tenant.ID, Name: "Main Store", Code: "MAIN", Active: true},
			{TenantID: tenant.ID, Name: "Warehouse Outlet", Code: "WH01", Active: true},
		}
		for i := range branches {
			if err := tx.Where("code = ?", branches[i].Code).FirstOrCreate(&branches[i]).Error; err != nil {
				return err
			}
		}

		products := []model.Product{
			{
				TenantID: tenant.ID, Name: "Notebook A5", SKU: "NB-A5-100", Unit: "pcs",
				SellingPrice: decimal.NewFromInt(100), PurchasePrice: decimal.NewFromInt(60),
				GSTRate: decimal.NewFromInt(18), MinStock: 10,
				TrackingMode: model.TrackingQuantity, Active: true,
			},
			{
				TenantID: tenant.ID, Name: "Ballpoint Pen", SKU: "PEN-BL-01", Unit: "pcs",
				SellingPrice: decimal.NewFromInt(20), PurchasePrice: decimal.NewFromInt(8),
				GSTRate: decimal.NewFromInt(12), MinStock: 50,
				TrackingMode: model.TrackingQuantity, Active: true,
			},
			{
				TenantID: tenant.ID, Name: "Wireless Mouse", SKU: "MSE-WL-200", Unit: "pcs",
				SellingPrice: decimal.NewFromInt(899), PurchasePrice: decimal.NewFromInt(550),
				GSTRate: decimal.NewFromInt(18), MinStock: 5,
				TrackingMode: model.TrackingSerial, Active: true,
			},
		}
		for i := range products {
			if err := tx.Where("sku = ?", products[i].SKU).FirstOrCreate(&products[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
