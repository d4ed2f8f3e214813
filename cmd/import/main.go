package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/primeo/api/internal/db"
	"github.com/primeo/api/internal/importer"
	"github.com/primeo/api/internal/logger"
	"github.com/primeo/api/internal/services"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  import -type categories|products|prices|suppliers -file data.csv
  import -type json -file snapshot.json
  import -export -file snapshot.json`)
	os.Exit(2)
}

func main() {
	kind := flag.String("type", "", "import type: categories, products, prices, suppliers, json")
	file := flag.String("file", "", "input (or output with -export) file")
	export := flag.Bool("export", false, "write a JSON snapshot instead of importing")
	flag.Parse()

	_ = godotenv.Load()
	log := logger.Get()

	if *file == "" || (!*export && *kind == "") {
		usage()
	}

	gdb, err := db.ConnectAndMigrate()
	if err != nil {
		log.WithField("error", err.Error()).Fatal("database init failed")
	}

	if *export {
		f, err := os.Create(*file)
		if err != nil {
			log.WithField("error", err.Error()).Fatal("ouverture du fichier")
		}
		defer f.Close()
		if err := importer.Export(gdb, f); err != nil {
			log.WithField("error", err.Error()).Fatal("export échoué")
		}
		log.WithField("file", *file).Info("export terminé")
		return
	}

	f, err := os.Open(*file)
	if err != nil {
		log.WithField("error", err.Error()).Fatal("ouverture du fichier")
	}
	defer f.Close()

	var res importer.Result
	switch *kind {
	case "categories":
		res, err = importer.Categories(gdb, f)
	case "products":
		res, err = importer.Products(gdb, f)
	case "prices":
		res, err = importer.Prices(gdb, services.NewPriceService(gdb), f)
	case "suppliers":
		res, err = importer.Suppliers(gdb, f)
	case "json":
		res, err = importer.Import(gdb, f)
	default:
		usage()
	}
	if err != nil {
		log.WithField("error", err.Error()).Fatal("import échoué")
	}
	log.WithField("result", res.String()).Info("import terminé")
}
