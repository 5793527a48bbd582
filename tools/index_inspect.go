package main

import (
	"flag"
	"fmt"
	"homecloud/domain"
	"homecloud/infrastructure/storage"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

// Prints the media index the sync sessions enumerate from.
func main() {
	dbPath := flag.String("db", "./data/badger", "Path to badger DB")
	only := flag.String("category", "", "images or video, empty for both")
	flag.Parse()

	// Read-only so the daemon can keep the lock
	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	repo := storage.NewMediaIndexRepository(db, slog.New(slog.NewTextHandler(io.Discard, nil)))

	categories := lo.Filter(domain.Categories(), func(c domain.Category, _ int) bool {
		return *only == "" || c.String() == *only
	})

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Category", "Path", "MIME", "Size", "Indexed at"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	total := 0
	for _, category := range categories {
		entries, err := repo.Entries(category)
		if err != nil {
			log.Fatalf("Error reading %s: %v", category, err)
		}
		for _, e := range entries {
			table.Append([]string{
				category.String(),
				e.Path,
				e.MimeType,
				humanize.IBytes(e.Size),
				e.IndexedAt.Format(time.DateTime),
			})
		}
		total += len(entries)
	}
	table.Render()
	fmt.Printf("\n%d entries\n", total)
}
