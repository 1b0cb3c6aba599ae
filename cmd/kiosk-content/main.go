// kiosk-content loads scenario files into the SQLite content store used by
// the server's -content-db flag.
//
// Environment variables:
//
//	KIOSK_DB_PATH   SQLite database path (default: ./data/kiosk.db)
//
// Usage:
//
//	kiosk-content                      # import the built-in scenarios
//	kiosk-content -dir ./scenarios     # import a directory of .json/.yaml files
//	kiosk-content -list
//	kiosk-content -delete ShaunBaker
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"ProjectKiosk/internal/content"
)

func main() {
	dbPath := os.Getenv("KIOSK_DB_PATH")
	if dbPath == "" {
		dbPath = "./data/kiosk.db"
	}
	db := flag.String("db", dbPath, "SQLite database path")
	dir := flag.String("dir", "", "directory of scenario files to import (default: built-in scenarios)")
	list := flag.Bool("list", false, "list stored scenario ids and exit")
	del := flag.String("delete", "", "delete one scenario id and exit")
	flag.Parse()

	ctx := context.Background()
	store, err := content.OpenSQLite(*db)
	if err != nil {
		log.Fatalf("kiosk-content: %v", err)
	}
	defer store.Close()

	switch {
	case *list:
		ids, err := store.IDs(ctx)
		if err != nil {
			log.Fatalf("kiosk-content: %v", err)
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return
	case *del != "":
		if err := store.Delete(ctx, *del); err != nil {
			log.Fatalf("kiosk-content: %v", err)
		}
		log.Printf("deleted %s from %s", *del, *db)
		return
	}

	src := content.Seed()
	if *dir != "" {
		src = content.NewDirStore(*dir)
	}
	n, errs := store.Import(ctx, src)
	for _, err := range errs {
		log.Printf("skipped: %v", err)
	}
	log.Printf("imported %d scenarios into %s (%d skipped)", n, *db, len(errs))
	if len(errs) > 0 {
		os.Exit(1)
	}
}
