// Command importcredentials loads a CSV of credential ids and identity
// ids into the credential map. Expected columns: credential,identity.
// A header row is skipped when present.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"attendgate.com/attendgate/rtdb"
	"attendgate.com/attendgate/utils"
)

func main() {
	var (
		file            = flag.String("file", "", "path to the credentials CSV")
		baseURL         = flag.String("store", "", "realtime database base URL")
		credentialsFile = flag.String("credentials", "", "service account key file (optional)")
	)
	flag.Parse()

	if *file == "" || *baseURL == "" {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("failed to open %s: %v", *file, err)
	}
	defer f.Close()

	rows, err := utils.ParseCSV(f)
	if err != nil {
		log.Fatalf("failed to parse %s: %v", *file, err)
	}

	var tokens rtdb.TokenSource
	if *credentialsFile != "" {
		sa, err := rtdb.LoadServiceAccount(*credentialsFile)
		if err != nil {
			log.Fatalf("failed to load service account: %v", err)
		}
		tokens = sa
	}
	store := rtdb.New(*baseURL, tokens, 10*time.Second)

	ctx := context.Background()
	fields := make(map[string]any)
	for i, row := range rows {
		if len(row) < 2 {
			log.Printf("skipping row %d: want 2 columns, got %d", i+1, len(row))
			continue
		}
		credential := strings.ToUpper(strings.TrimSpace(row[0]))
		identity := strings.TrimSpace(row[1])
		if i == 0 && strings.EqualFold(row[0], "credential") {
			continue
		}
		if credential == "" || identity == "" {
			log.Printf("skipping row %d: empty value", i+1)
			continue
		}
		fields[credential] = identity
	}

	if len(fields) == 0 {
		log.Fatal("no usable rows found")
	}

	if err := store.Update(ctx, "credentialMap", fields); err != nil {
		log.Fatalf("failed to write credential map: %v", err)
	}
	log.Printf("imported %d credentials", len(fields))
}
