package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/dvoronin/spendlog/internal/blob"
	"github.com/dvoronin/spendlog/internal/blob/file"
	"github.com/dvoronin/spendlog/internal/blob/gcs"
	"github.com/dvoronin/spendlog/internal/blob/memory"
	"github.com/dvoronin/spendlog/internal/config"
	"github.com/dvoronin/spendlog/internal/geo"
	"github.com/dvoronin/spendlog/internal/ledger"
	"github.com/dvoronin/spendlog/internal/logger"
	"github.com/dvoronin/spendlog/internal/store"
	"github.com/dvoronin/spendlog/internal/warehouse"
)

const inputDateLayout = "2006-01-02"

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		runAdd(log)
	case "list":
		runList(log)
	case "delete":
		runDelete(log)
	case "export":
		runExport(log)
	case "archive":
		runArchive(log)
	case "locations":
		runLocations(log)
	case "add-location":
		runAddLocation(log)
	case "delete-location":
		runDeleteLocation(log)
	case "suggest":
		runSuggest(log)
	case "params":
		runParams(log)
	case "errors":
		runErrors(log)
	case "sync":
		runSync(log)
	case "reset":
		runReset(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Spendlog CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  add              Record a transaction")
	fmt.Println("  list             List transactions grouped by week")
	fmt.Println("  delete           Delete a transaction by id")
	fmt.Println("  export           Print the export text (-archive for archived batches)")
	fmt.Println("  archive          Move all live transactions into a new archive batch")
	fmt.Println("  locations        List known locations")
	fmt.Println("  add-location     Record a location with a category")
	fmt.Println("  delete-location  Delete a location by id")
	fmt.Println("  suggest          Suggest a category for a geographic position")
	fmt.Println("  params           Show or change tunable parameters")
	fmt.Println("  errors           Print the error and exception logs")
	fmt.Println("  sync             Copy the archive into the BigQuery warehouse")
	fmt.Println("  reset            Delete transactions, archive and locations")
	fmt.Println("  help             Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// buildStore opens the configured blob backend and restores the ledger from
// it. The returned cleanup closes backend resources.
func buildStore(ctx context.Context, log zerolog.Logger) (*store.Store, config.Config, func()) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	var bs blob.Store
	cleanup := func() {}
	switch cfg.Backend {
	case config.BackendMemory:
		bs = memory.NewStore()
	case config.BackendFile:
		fileStore, err := file.NewStore(cfg.DataDir)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open data directory")
		}
		bs = fileStore
	case config.BackendGCS:
		gcsStore, err := gcs.New(ctx, cfg.GCSBucket, cfg.GCSPrefix, gcsOptions(cfg)...)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to GCS")
		}
		bs = gcsStore
		cleanup = func() { gcsStore.Close() }
	}

	s := store.New(ctx, store.Config{
		Blob:   bs,
		Logger: log,
		Locale: cfg.Locale,
	})
	if s.FirstTime() {
		log.Info().Msg("No persisted state found, starting from the demo ledger")
	}
	return s, cfg, cleanup
}

func runAdd(log zerolog.Logger) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	date := fs.String("date", "", "Transaction date, YYYY-MM-DD (defaults to today)")
	amount := fs.Float64("amount", 0, "Amount in euro")
	category := fs.String("category", "", "Category name")
	info := fs.String("info", "", "Free-form note")
	fs.Parse(os.Args[2:])

	if *category == "" {
		log.Fatal().Msg("Error: -category is required")
	}
	day := time.Now()
	if *date != "" {
		parsed, err := time.ParseInLocation(inputDateLayout, *date, time.Local)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid -date")
		}
		day = parsed
	}

	ctx := logger.WithContext(context.Background(), log)
	s, _, cleanup := buildStore(ctx, log)
	defer cleanup()

	t, err := s.NewTransaction(ctx, ledger.TransactionData{
		Date: day, Amount: *amount, Category: *category, Info: *info,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to record transaction")
	}
	fmt.Printf("Recorded transaction %d (%s %.2f @%s)\n", t.ID, t.Date.Format(inputDateLayout), t.Amount, t.Category)
}

func runList(log zerolog.Logger) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	ctx := logger.WithContext(context.Background(), log)
	s, _, cleanup := buildStore(ctx, log)
	defer cleanup()

	groups, err := s.Groups()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to group transactions")
	}
	for _, g := range groups {
		summary := g.Summarize()
		fmt.Printf("Week %d (%s - %s): %s\n",
			g.WeekNumber(),
			g.StartDate().Format(inputDateLayout),
			g.EndDate().Format(inputDateLayout),
			summary)
		for _, t := range g.Transactions {
			fmt.Printf("  %4d  %s  %8.2f  @%s  %s\n",
				t.ID, t.Date.Format(inputDateLayout), t.Amount, t.Category, t.Info)
		}
	}
}

func runDelete(log zerolog.Logger) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.Int("id", -1, "Transaction id")
	fs.Parse(os.Args[2:])

	if *id < 0 {
		log.Fatal().Msg("Error: -id is required")
	}

	ctx := logger.WithContext(context.Background(), log)
	s, _, cleanup := buildStore(ctx, log)
	defer cleanup()

	if err := s.DeleteTransaction(ctx, *id); err != nil {
		log.Fatal().Err(err).Msg("Failed to delete transaction")
	}
	fmt.Printf("Deleted transaction %d\n", *id)
}

func runExport(log zerolog.Logger) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	archived := fs.Bool("archive", false, "Export the archived batches instead of the live set")
	fs.Parse(os.Args[2:])

	ctx := logger.WithContext(context.Background(), log)
	s, _, cleanup := buildStore(ctx, log)
	defer cleanup()

	var text string
	var err error
	if *archived {
		text, err = s.ArchiveExportText()
	} else {
		text, err = s.ExportText()
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Export failed")
	}
	fmt.Println(text)
}

func runArchive(log zerolog.Logger) {
	fs := flag.NewFlagSet("archive", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	ctx := logger.WithContext(context.Background(), log)
	s, _, cleanup := buildStore(ctx, log)
	defer cleanup()

	count := len(s.Transactions())
	if err := s.ClearAndUpdateArchive(ctx); err != nil {
		log.Fatal().Err(err).Msg("Archiving failed")
	}
	fmt.Printf("Archived %d transactions into batch %d\n", count, len(s.Archive()))
}

func runLocations(log zerolog.Logger) {
	fs := flag.NewFlagSet("locations", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	ctx := logger.WithContext(context.Background(), log)
	s, _, cleanup := buildStore(ctx, log)
	defer cleanup()

	for _, l := range s.Locations() {
		fmt.Printf("%4d  %9.5f,%9.5f  @%s  %s\n",
			l.ID, l.Coords.Latitude, l.Coords.Longitude, l.Category, l.Info)
	}
}

func runAddLocation(log zerolog.Logger) {
	fs := flag.NewFlagSet("add-location", flag.ExitOnError)
	lat := fs.Float64("lat", 0, "Latitude in degrees")
	lon := fs.Float64("lon", 0, "Longitude in degrees")
	accuracy := fs.Float64("accuracy", 10, "Fix accuracy in meters")
	category := fs.String("category", "", "Category name")
	info := fs.String("info", "", "Free-form note")
	fs.Parse(os.Args[2:])

	if *category == "" {
		log.Fatal().Msg("Error: -category is required")
	}

	ctx := logger.WithContext(context.Background(), log)
	s, _, cleanup := buildStore(ctx, log)
	defer cleanup()

	l, err := s.NewLocation(ctx, geo.LocationData{
		Coords:   geo.Coordinates{Latitude: *lat, Longitude: *lon, Accuracy: *accuracy},
		Category: *category,
		Info:     *info,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to record location")
	}
	fmt.Printf("Recorded location %d (@%s)\n", l.ID, l.Category)
}

func runDeleteLocation(log zerolog.Logger) {
	fs := flag.NewFlagSet("delete-location", flag.ExitOnError)
	id := fs.Int("id", -1, "Location id")
	fs.Parse(os.Args[2:])

	if *id < 0 {
		log.Fatal().Msg("Error: -id is required")
	}

	ctx := logger.WithContext(context.Background(), log)
	s, _, cleanup := buildStore(ctx, log)
	defer cleanup()

	if err := s.DeleteLocation(ctx, *id); err != nil {
		log.Fatal().Err(err).Msg("Failed to delete location")
	}
	fmt.Printf("Deleted location %d\n", *id)
}

func runSuggest(log zerolog.Logger) {
	fs := flag.NewFlagSet("suggest", flag.ExitOnError)
	lat := fs.Float64("lat", 0, "Latitude in degrees")
	lon := fs.Float64("lon", 0, "Longitude in degrees")
	category := fs.String("category", "", "Only consider locations with this category")
	fs.Parse(os.Args[2:])

	ctx := logger.WithContext(context.Background(), log)
	s, _, cleanup := buildStore(ctx, log)
	defer cleanup()

	var filter *string
	if *category != "" {
		filter = category
	}
	point := geo.Coordinates{Latitude: *lat, Longitude: *lon}
	match := s.SuggestLocation(point, filter)
	if match == nil {
		fmt.Println("No known location within range.")
		return
	}
	fmt.Printf("Suggested category: %s (location %d, %.0fm away)\n",
		match.Category, match.ID, geo.DistanceInMeters(match.Coords, point))
}

func runParams(log zerolog.Logger) {
	fs := flag.NewFlagSet("params", flag.ExitOnError)
	maxDistance := fs.Float64("max-distance", 0, "Set the suggestion radius in meters")
	fs.Parse(os.Args[2:])

	ctx := logger.WithContext(context.Background(), log)
	s, _, cleanup := buildStore(ctx, log)
	defer cleanup()

	if *maxDistance > 0 {
		text := fmt.Sprintf(`{"maxDistance":%g}`, *maxDistance)
		if err := s.SetParametersJSON(ctx, text); err != nil {
			log.Fatal().Err(err).Msg("Failed to store parameters")
		}
	}
	fmt.Printf("maxDistance: %gm\n", s.Parameters().MaxDistance)
}

func runErrors(log zerolog.Logger) {
	fs := flag.NewFlagSet("errors", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	ctx := logger.WithContext(context.Background(), log)
	s, _, cleanup := buildStore(ctx, log)
	defer cleanup()

	if text := s.ErrorText(); text != "" {
		fmt.Println("=== Errors ===")
		fmt.Println(text)
	}
	if text := s.ExceptionText(); text != "" {
		fmt.Println("=== Exceptions ===")
		fmt.Println(text)
	}
	if len(s.Errors()) == 0 && len(s.Exceptions()) == 0 {
		fmt.Println("No recorded errors.")
	}
}

func runSync(log zerolog.Logger) {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	s, cfg, cleanup := buildStore(ctx, log)
	defer cleanup()

	if cfg.BQProject == "" {
		log.Fatal().Msg("Error: SPENDLOG_BQ_PROJECT is required for sync")
	}
	client, err := warehouse.NewClient(ctx, cfg.BQProject, cfg.BQDataset, cfg.BQTable, cfg.CredentialsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to BigQuery")
	}
	defer client.Close()

	n, err := warehouse.Sync(ctx, client, s.Archive(), nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Warehouse sync failed")
	}
	fmt.Printf("Synced %d archived transactions to %s.%s.%s\n", n, cfg.BQProject, cfg.BQDataset, cfg.BQTable)
}

func runReset(log zerolog.Logger) {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	confirm := fs.Bool("yes", false, "Actually delete the data")
	fs.Parse(os.Args[2:])

	if !*confirm {
		log.Fatal().Msg("reset deletes transactions, archive and locations; rerun with -yes")
	}

	ctx := logger.WithContext(context.Background(), log)
	s, _, cleanup := buildStore(ctx, log)
	defer cleanup()

	if err := s.Reset(ctx); err != nil {
		log.Fatal().Err(err).Msg("Reset failed")
	}
	fmt.Println("Ledger reset. Categories and parameters were kept.")
}

func gcsOptions(cfg config.Config) []option.ClientOption {
	if cfg.CredentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(cfg.CredentialsFile)}
}
