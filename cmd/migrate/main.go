package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	var direction string
	var steps int
	flag.StringVar(&direction, "direction", "up", "migration direction: up, down, or version")
	flag.IntVar(&steps, "steps", 0, "number of migration steps (0 = all)")
	flag.Parse()

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		log.Fatal("DATABASE_DSN environment variable is required")
	}

	m, err := migrate.New("file://migrations/postgres", dsn)
	if err != nil {
		log.Fatalf("migrate: open failed: %v", err)
	}
	defer m.Close()

	switch direction {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	case "version":
		version, dirty, vErr := m.Version()
		if vErr != nil {
			log.Fatalf("migrate: version failed: %v", vErr)
		}
		fmt.Printf("version=%d dirty=%t\n", version, dirty)
		return
	default:
		log.Fatalf("unknown migration direction: %s", direction)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("migrate: %s failed: %v", direction, err)
	}
	fmt.Printf("migrate: %s completed\n", direction)
}
