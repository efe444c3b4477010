// Command genmock generates deterministic mock property and declaration CSV
// fixtures for development and testing. The same flags always produce the
// same files: ids, prices, and dates derive from a seeded generator and a
// fixed clock.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -properties-out data/mock/properties.csv \
//	  -declarations-out data/mock/declarations.csv \
//	  -properties 200 -declarations 40
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/stormhaven/stormhaven/internal/csvdata"
	"github.com/stormhaven/stormhaven/internal/domain"
)

const seed = 20240426

// clock pins "today" so generated declaration dates are reproducible.
var clock = clockwork.NewFakeClockAt(time.Date(2024, time.April, 26, 0, 0, 0, 0, time.UTC))

var counties = []struct {
	name  string
	state string
}{
	{"Springfield", "CA"},
	{"Shelbyville", "CA"},
	{"Ogdenville", "TX"},
	{"North Haverbrook", "OR"},
	{"Capital City", "TX"},
	{"Cypress Creek", "FL"},
}

var disasterTypes = []domain.DeclarationType{
	{TypeCode: "FM", TypeDescription: "Fire Management"},
	{TypeCode: "HM", TypeDescription: "Hazard Mitigation"},
	{TypeCode: "PA", TypeDescription: "Public Assistance"},
	{TypeCode: "IA", TypeDescription: "Individual Assistance"},
	{TypeCode: "SS", TypeDescription: "Severe Storm"},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	propsOut := flag.String("properties-out", "", "output path for the property CSV")
	declsOut := flag.String("declarations-out", "", "output path for the declarations CSV")
	propCount := flag.Int("properties", 200, "number of properties to generate")
	declCount := flag.Int("declarations", 40, "number of declarations to generate")
	flag.Parse()

	if *propsOut == "" || *declsOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -properties-out, -declarations-out")
	}

	rng := rand.New(rand.NewSource(seed))

	props := generateProperties(rng, *propCount)
	if err := csvdata.WriteProperties(*propsOut, props); err != nil {
		return err
	}
	log.Printf("wrote %d properties: %s", len(props), *propsOut)

	decls := generateDeclarations(rng, *declCount)
	if err := csvdata.WriteDeclarations(*declsOut, decls); err != nil {
		return err
	}
	log.Printf("wrote %d declarations: %s", len(decls), *declsOut)
	return nil
}

func generateProperties(rng *rand.Rand, n int) []domain.Property {
	props := make([]domain.Property, 0, n)
	for i := 0; i < n; i++ {
		c := counties[rng.Intn(len(counties))]
		status := domain.StatusForSale
		if rng.Intn(4) == 0 {
			status = domain.StatusSold
		}
		props = append(props, domain.Property{
			PropertyID: int64(100 + i),
			CountyName: c.name,
			State:      c.state,
			Price:      float64(rng.Intn(1900)+100) * 1000,
			Status:     status,
			Bedrooms:   rng.Intn(6) + 1,
			Bathrooms:  float64(rng.Intn(7)+1) * 0.5,
			AcreLot:    float64(rng.Intn(400)+1) * 0.05,
		})
	}
	return props
}

func generateDeclarations(rng *rand.Rand, n int) []domain.Declaration {
	now := clock.Now()
	decls := make([]domain.Declaration, 0, n)
	for i := 0; i < n; i++ {
		c := counties[rng.Intn(len(counties))]
		// Spread declarations over the past ten years.
		designated := now.AddDate(0, 0, -rng.Intn(10*365))

		var closeout *time.Time
		if rng.Intn(3) != 0 {
			t := designated.AddDate(0, rng.Intn(18)+1, 0)
			if t.Before(now) {
				closeout = &t
			}
		}

		typeCount := rng.Intn(3) + 1
		perm := rng.Perm(len(disasterTypes))
		types := make([]domain.DeclarationType, 0, typeCount)
		for _, idx := range perm[:typeCount] {
			types = append(types, disasterTypes[idx])
		}

		decls = append(decls, domain.Declaration{
			DisasterID:     int64(5000 + i),
			DisasterNumber: int64(9000 + i),
			CountyName:     c.name,
			State:          c.state,
			DesignatedDate: designated,
			CloseoutDate:   closeout,
			Types:          types,
		})
	}
	return decls
}
