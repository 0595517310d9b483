package main

import (
	"flag"
	"log"

	"github.com/checkmarble/consent-ledger/cmd"
)

// apiVersion is set at build time with -ldflags "-X main.apiVersion=..."
var apiVersion = "dev"

func main() {
	shouldRunMigrations := flag.Bool("migrations", false, "Run migrations")
	shouldRunServer := flag.Bool("server", false, "Run server")
	flag.Parse()

	compiledConfig := cmd.CompiledConfig{Version: apiVersion}

	if !*shouldRunMigrations && !*shouldRunServer {
		flag.Usage()
		return
	}

	if *shouldRunMigrations {
		if err := cmd.RunMigrations(); err != nil {
			log.Fatal(err)
		}
	}

	if *shouldRunServer {
		if err := cmd.RunServer(compiledConfig); err != nil {
			log.Fatal(err)
		}
	}
}
