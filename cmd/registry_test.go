package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"problemsolving.GO/core/registry"
	"problemsolving.GO/core/testdb"
	"problemsolving.GO/model/entity"
	inventoryEntity "problemsolving.GO/model/entity/inventory"
)

func TestRegister_RejectsTakenNames(t *testing.T) {
	defer registry.GlobalRegistry.SetGlobal(registry.KeyRegistryCmd, nil)

	mustPanic := func(name string) {
		t.Helper()
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("Register(%s) did not panic", name)
			}
		}()
		Register(&cobra.Command{Use: name})
	}
	for _, builtin := range []string{"inventory:rebuild", "missions:create", "locations:import", "cron:start"} {
		mustPanic(builtin)
	}

	Register(&cobra.Command{Use: "missions:export"})
	mustPanic("missions:export")
}

func TestApply_AddsExtensionsOnce(t *testing.T) {
	out := &bytes.Buffer{}
	Register(&cobra.Command{
		Use: "locations:report",
		Run: func(c *cobra.Command, args []string) {
			out.WriteString("report " + strings.Join(args, ","))
		},
	})
	Apply()
	Apply()

	n := 0
	for _, c := range rootCmd.Commands() {
		if c.Name() == "locations:report" {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("locations:report attached %d times, want 1", n)
	}
	rootCmd.SetArgs([]string{"locations:report", "acme"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.String() != "report acme" {
		t.Errorf("output = %q, want report acme", out.String())
	}
}

func TestInventoryRebuild_Command(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", path)
	t.Setenv("GORM_LOG", "off")
	t.Setenv("REDIS_ADDR", "")
	defer func() { companyFlag = "" }()

	open := func() *gorm.DB {
		t.Helper()
		db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		sqlDB, _ := db.DB()
		t.Cleanup(func() { sqlDB.Close() })
		return db
	}
	seed := open()
	if err := entity.AutoMigrate(seed); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	item := testdb.OrderItem(t, seed, "acme", "O1", 10, testdb.Int64(3), "SKU-A", "2", nil)
	testdb.Picked(t, seed, item, "U1", "2")
	testdb.Picked(t, seed, item, "U2", "1")

	rootCmd.SetArgs([]string{"inventory:rebuild", "--company", "ACME"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var n int64
	if err := open().Model(&inventoryEntity.Snapshot{}).Where("company = ?", "acme").Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("snapshot rows = %d, want 2", n)
	}
}
