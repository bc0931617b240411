package main

import (
	"flag"
	"os"

	"github.com/richard-senior/footy/internal/logger"
	"github.com/richard-senior/footy/pkg/footy"
	"github.com/richard-senior/footy/pkg/server"
)

func main() {
	configPath := flag.String("config", "", "optional yaml config overlay")
	addr := flag.String("addr", ":8787", "listen address for the HTTP API")
	importPath := flag.String("import", "", "import a season CSV and exit")
	importLeague := flag.Int("league", 0, "league id for -import")
	importSeason := flag.String("season", "", "season code for -import, e.g. 2425")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	logger.SetShowDateTime(true)
	if *verbose {
		logger.SetLevel(logger.DEBUG)
	}

	if *configPath != "" {
		if _, err := footy.LoadConfig(*configPath); err != nil {
			logger.Fatal("Failed to load config", err)
		}
	}

	if err := footy.UseDatabase(footy.Config.DbPath); err != nil {
		logger.Fatal("Failed to open database", err)
	}
	defer footy.CloseDatabase()

	if err := footy.RegisterLeagues(); err != nil {
		logger.Fatal("Failed to register leagues", err)
	}

	if *importPath != "" {
		runImport(*importPath, *importLeague, *importSeason)
		return
	}

	srv := server.New(*addr)
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatal("Server stopped", err)
	}
}

func runImport(path string, leagueID int, season string) {
	if leagueID == 0 || season == "" {
		logger.Fatal("-import requires -league and -season")
	}
	f, err := os.Open(path)
	if err != nil {
		logger.Fatal("Failed to open CSV", err)
	}
	defer f.Close()

	imported, rejected, err := footy.ImportSeasonCSV(f, leagueID, season)
	if err != nil {
		logger.Fatal("Import failed", err)
	}
	logger.Highlight("Import complete", "imported", imported, "rejected", rejected)
}
