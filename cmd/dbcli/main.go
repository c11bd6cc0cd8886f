package main

import (
	"bufio"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gleam/dashboard/internal/config"
	"github.com/gleam/dashboard/internal/database"
	"github.com/gleam/dashboard/internal/repository"
	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Tables owned by the dashboard itself. Everything else lives in the GLEAM backend.
var localTables = []string{"token_blacklist", "sessions", "geocode_cache"}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	reader := bufio.NewReader(os.Stdin)

	for {
		printMenu()
		fmt.Print("Pilih menu: ")
		input, _ := reader.ReadString('\n')
		input = strings.TrimSpace(input)

		switch input {
		case "1":
			createDatabase(cfg, reader)
		case "2":
			migrateSchema(cfg)
		case "3":
			cleanupSessions(cfg)
		case "4":
			purgeGeocodeCache(cfg, reader)
		case "5":
			truncateTables(cfg, reader)
		case "6":
			deleteDatabase(cfg, reader)
		case "0":
			fmt.Println("Keluar...")
			os.Exit(0)
		default:
			fmt.Println("Pilihan tidak valid")
		}

		fmt.Println()
		fmt.Print("Tekan Enter untuk melanjutkan...")
		reader.ReadString('\n')
	}
}

func printMenu() {
	fmt.Println()
	fmt.Println("========================================")
	fmt.Println("     GLEAM DASHBOARD DATABASE CLI")
	fmt.Println("========================================")
	fmt.Println()
	fmt.Println("1. Buat Database (jika belum ada) + Migrasi Schema")
	fmt.Println("2. Migrasi Schema (tanpa buat database)")
	fmt.Println("3. Bersihkan sesi dan token kedaluwarsa")
	fmt.Println("4. Hapus cache alamat (reverse geocoding)")
	fmt.Println("5. Truncate Tables")
	fmt.Println("6. Hapus Database")
	fmt.Println("0. Keluar")
	fmt.Println()
	fmt.Println("----------------------------------------")
}

func getPostgresConn(cfg *config.Config) (*sql.DB, error) {
	return sql.Open("postgres", database.DSN(cfg, "postgres"))
}

func getGormDB(cfg *config.Config) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(database.DSN(cfg, cfg.Database.Name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
}

func confirm(reader *bufio.Reader, prompt, expected string) bool {
	fmt.Print(prompt)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input) == expected
}

func databaseExists(cfg *config.Config) (bool, error) {
	db, err := getPostgresConn(cfg)
	if err != nil {
		return false, err
	}
	defer db.Close()

	var exists bool
	err = db.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", cfg.Database.Name).Scan(&exists)
	return exists, err
}

func createDatabase(cfg *config.Config, reader *bufio.Reader) {
	fmt.Println()
	fmt.Println("--- Buat Database + Migrasi Schema ---")

	exists, err := databaseExists(cfg)
	if err != nil {
		fmt.Printf("Error cek database: %v\n", err)
		return
	}

	if exists {
		fmt.Printf("Database '%s' sudah ada.\n", cfg.Database.Name)
		if !confirm(reader, "Lanjutkan migrasi schema? (y/n): ", "y") {
			fmt.Println("Dibatalkan.")
			return
		}
	} else {
		db, err := getPostgresConn(cfg)
		if err != nil {
			fmt.Printf("Error koneksi: %v\n", err)
			return
		}
		defer db.Close()

		if _, err := db.Exec(fmt.Sprintf("CREATE DATABASE %s", pq.QuoteIdentifier(cfg.Database.Name))); err != nil {
			fmt.Printf("Error buat database: %v\n", err)
			return
		}
		fmt.Printf("Database '%s' berhasil dibuat.\n", cfg.Database.Name)
	}

	migrateSchema(cfg)
}

func migrateSchema(cfg *config.Config) {
	fmt.Println()
	fmt.Println("--- Migrasi Schema ---")

	db, err := getGormDB(cfg)
	if err != nil {
		fmt.Printf("Error koneksi: %v\n", err)
		return
	}

	if err := database.Migrate(db); err != nil {
		fmt.Printf("Error migrasi: %v\n", err)
		return
	}
	fmt.Println("Migrasi schema selesai!")
}

func cleanupSessions(cfg *config.Config) {
	fmt.Println()
	fmt.Println("--- Bersihkan Sesi ---")

	db, err := getGormDB(cfg)
	if err != nil {
		fmt.Printf("Error koneksi: %v\n", err)
		return
	}

	sessions, blacklisted, err := repository.NewAuthRepository(db).CleanupExpired()
	if err != nil {
		fmt.Printf("Error cleanup: %v\n", err)
		return
	}
	fmt.Printf("%d sesi dan %d token blacklist dihapus.\n", sessions, blacklisted)
}

func purgeGeocodeCache(cfg *config.Config, reader *bufio.Reader) {
	fmt.Println()
	fmt.Println("--- Hapus Cache Alamat ---")
	fmt.Print("Hapus entri yang lebih tua dari berapa hari? (0 = semua): ")
	input, _ := reader.ReadString('\n')
	days, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || days < 0 {
		fmt.Println("Jumlah hari tidak valid.")
		return
	}

	db, err := getGormDB(cfg)
	if err != nil {
		fmt.Printf("Error koneksi: %v\n", err)
		return
	}

	n, err := repository.NewGeocodeRepository(db).PurgeOlderThan(time.Duration(days) * 24 * time.Hour)
	if err != nil {
		fmt.Printf("Error hapus cache: %v\n", err)
		return
	}
	fmt.Printf("%d entri cache dihapus.\n", n)
}

func truncateTables(cfg *config.Config, reader *bufio.Reader) {
	fmt.Println()
	fmt.Println("--- Truncate Tables ---")
	fmt.Printf("Data berikut akan DIHAPUS: %s\n", strings.Join(localTables, ", "))
	fmt.Println("Semua pengguna harus login ulang.")
	fmt.Println()

	if !confirm(reader, "Ketik 'TRUNCATE' untuk konfirmasi: ", "TRUNCATE") {
		fmt.Println("Dibatalkan.")
		return
	}

	db, err := sql.Open("postgres", database.DSN(cfg, cfg.Database.Name))
	if err != nil {
		fmt.Printf("Error koneksi: %v\n", err)
		return
	}
	defer db.Close()

	for _, table := range localTables {
		fmt.Printf("Truncating %s...\n", table)
		if _, err := db.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			fmt.Printf("Error truncate %s: %v\n", table, err)
		}
	}

	fmt.Println()
	fmt.Println("Truncate selesai!")
}

func deleteDatabase(cfg *config.Config, reader *bufio.Reader) {
	fmt.Println()
	fmt.Println("--- Hapus Database ---")
	fmt.Printf("PERINGATAN: Database '%s' akan dihapus permanen!\n", cfg.Database.Name)

	if !confirm(reader, "Ketik nama database untuk konfirmasi: ", cfg.Database.Name) {
		fmt.Println("Nama database tidak cocok. Dibatalkan.")
		return
	}

	db, err := getPostgresConn(cfg)
	if err != nil {
		fmt.Printf("Error koneksi: %v\n", err)
		return
	}
	defer db.Close()

	// Terminate existing connections
	_, _ = db.Exec(`
		SELECT pg_terminate_backend(pg_stat_activity.pid)
		FROM pg_stat_activity
		WHERE pg_stat_activity.datname = $1
		AND pid <> pg_backend_pid()
	`, cfg.Database.Name)

	if _, err := db.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", pq.QuoteIdentifier(cfg.Database.Name))); err != nil {
		fmt.Printf("Error hapus database: %v\n", err)
		return
	}
	fmt.Printf("Database '%s' berhasil dihapus.\n", cfg.Database.Name)
}
