package main

import (
	"compress/gzip"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"vinoteca/internal/catalog"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Writes a sample wine catalog for local development, plain or gzipped
// depending on the file extension. Load it with `vinoteca import-catalog -f`.
func main() {
	out := flag.String("out", "data/catalog/wines.yaml", "output file (.yaml or .yaml.gz)")
	flag.Parse()

	inactive := false
	c := catalog.Catalog{Wines: []catalog.Entry{
		{ID: "W001", Name: "Catena Malbec", Category: "Red", Country: "Argentina", Region: "Mendoza",
			Description: "Dark fruit, violet and a touch of vanilla.", Price: decimal.RequireFromString("24.90"),
			QuantityOnHand: 36, ReorderThreshold: 6},
		{ID: "W002", Name: "Marqués de Riscal Reserva", Category: "Red", Country: "Spain", Region: "Rioja",
			Description: "Cherry, leather and sweet spice.", Price: decimal.RequireFromString("32.50"),
			QuantityOnHand: 18, ReorderThreshold: 4},
		{ID: "W003", Name: "Cloudy Bay Sauvignon Blanc", Category: "White", Country: "New Zealand", Region: "Marlborough",
			Description: "Passion fruit and citrus, crisp finish.", Price: decimal.RequireFromString("29.00"),
			QuantityOnHand: 12, ReorderThreshold: 4},
		{ID: "W004", Name: "Whispering Angel", Category: "Rosé", Country: "France", Region: "Provence",
			Description: "Pale, dry and delicate.", Price: decimal.RequireFromString("27.75"),
			QuantityOnHand: 3, ReorderThreshold: 5},
		{ID: "W005", Name: "Moët & Chandon Brut Impérial", Category: "Sparkling", Country: "France", Region: "Champagne",
			Description: "Green apple, brioche, fine bubbles.", Price: decimal.RequireFromString("58.00"),
			QuantityOnHand: 10, ReorderThreshold: 2},
		{ID: "W006", Name: "Concha y Toro Carmenère", Category: "Red", Country: "Chile", Region: "Valle del Rapel",
			Description: "Discontinued vintage.", Price: decimal.RequireFromString("14.00"),
			QuantityOnHand: 0, IsActive: &inactive},
	}}

	if err := c.Validate(); err != nil {
		log.Fatalf("Sample catalog is invalid: %v", err)
	}

	if err := writeCatalog(*out, &c); err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}

	fmt.Printf("Created %s with %d wines\n", *out, len(c.Wines))
}

func writeCatalog(path string, c *catalog.Catalog) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	if !strings.HasSuffix(path, ".gz") {
		return yaml.NewEncoder(file).Encode(c)
	}

	gz := gzip.NewWriter(file)
	enc := yaml.NewEncoder(gz)
	if err := enc.Encode(c); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return gz.Close()
}
