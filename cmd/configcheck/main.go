package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ohler55/ojg/oj"

	"github.com/MKhiriev/go-deploy-config/internal/config"
	"github.com/MKhiriev/go-deploy-config/internal/logger"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

// configcheck resolves the deployment configuration exactly the way a
// serving process would at startup and reports the outcome. It is meant to
// be run from deployment tooling before processes are (re)started, with the
// same CONFIG_FILES / BIN_DIR environment the processes will see.
func main() {
	printBuildInfo()

	var role string
	var dump bool
	flag.StringVar(&role, "role", "", "Resolve as this process role instead of detecting it from argv[0]")
	flag.BoolVar(&dump, "dump", false, "Print the resolved settings tree as JSON")
	flag.Parse()

	argv0 := role
	if argv0 == "" && len(os.Args) > 0 {
		argv0 = os.Args[0]
	}

	log := logger.NewLogger(string(config.DetectRole(argv0)))

	settings, err := config.Load(config.Options{Argv0: argv0})
	if err != nil {
		log.Fatal().Err(err).Msg("configuration is invalid")
	}

	log.Info().
		Str("process_type", settings.String("process_type")).
		Str("public_url", settings.String("public_url")).
		Str("database_driver", settings.String("database.driver")).
		Bool("database_may_write", settings.Bool("database.may_write")).
		Msg("configuration resolved")

	if dump {
		fmt.Println(oj.JSON(settings.Tree(), 2))
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
