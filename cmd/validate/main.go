// Command validate checks property and declaration CSV files before import:
// parseability, field ranges, duplicate ids, and cross-file county coverage.
// It exits non-zero when any phase fails.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -properties data/properties.csv \
//	  -declarations data/declarations.csv
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/stormhaven/stormhaven/internal/csvdata"
	"github.com/stormhaven/stormhaven/internal/domain"
)

// phase tracks pass/fail for one validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	propertiesPath := flag.String("properties", "", "property CSV file")
	declarationsPath := flag.String("declarations", "", "declarations CSV file")
	flag.Parse()

	if *propertiesPath == "" || *declarationsPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*propertiesPath, *declarationsPath))
}

func run(propertiesPath, declarationsPath string) int {
	props, err := csvdata.ReadProperties(propertiesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL parse properties: %v\n", err)
		return 1
	}
	decls, err := csvdata.ReadDeclarations(declarationsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL parse declarations: %v\n", err)
		return 1
	}

	phases := []*phase{
		checkProperties(props),
		checkDeclarations(decls),
		checkCoverage(props, decls),
	}

	failed := 0
	for _, p := range phases {
		if p.passed() {
			fmt.Printf("PASS %s\n", p.name)
			continue
		}
		failed++
		fmt.Printf("FAIL %s\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("  - %s\n", e)
		}
	}

	fmt.Printf("%d properties, %d declarations, %d/%d phases passed\n",
		len(props), len(decls), len(phases)-failed, len(phases))
	if failed > 0 {
		return 1
	}
	return 0
}

func checkProperties(props []domain.Property) *phase {
	p := &phase{name: "properties"}
	seen := make(map[int64]bool, len(props))
	for _, prop := range props {
		if seen[prop.PropertyID] {
			p.errorf("duplicate property_id %d", prop.PropertyID)
		}
		seen[prop.PropertyID] = true
		if prop.CountyName == "" || prop.State == "" {
			p.errorf("property %d: empty county or state", prop.PropertyID)
		}
		if prop.Price < 0 {
			p.errorf("property %d: negative price %.2f", prop.PropertyID, prop.Price)
		}
		if prop.Status != domain.StatusForSale && prop.Status != domain.StatusSold {
			p.errorf("property %d: unknown status %q", prop.PropertyID, prop.Status)
		}
		if prop.Bedrooms < 0 || prop.Bathrooms < 0 || prop.AcreLot < 0 {
			p.errorf("property %d: negative feature value", prop.PropertyID)
		}
	}
	return p
}

func checkDeclarations(decls []domain.Declaration) *phase {
	p := &phase{name: "declarations"}
	seen := make(map[int64]bool, len(decls))
	for _, d := range decls {
		if seen[d.DisasterID] {
			p.errorf("duplicate disaster_id %d", d.DisasterID)
		}
		seen[d.DisasterID] = true
		if d.CountyName == "" {
			p.errorf("declaration %d: empty county", d.DisasterID)
		}
		if len(d.Types) == 0 {
			p.errorf("declaration %d: no type records", d.DisasterID)
		}
		codes := make(map[string]bool, len(d.Types))
		for _, t := range d.Types {
			if t.TypeCode == "" {
				p.errorf("declaration %d: empty type_code", d.DisasterID)
			}
			if codes[t.TypeCode] {
				p.errorf("declaration %d: duplicate type_code %s", d.DisasterID, t.TypeCode)
			}
			codes[t.TypeCode] = true
		}
		if d.CloseoutDate != nil && d.CloseoutDate.Before(d.DesignatedDate) {
			p.errorf("declaration %d: closeout before designation", d.DisasterID)
		}
	}
	return p
}

// checkCoverage warns when declarations reference counties with no listings.
// Such rows import fine but never join to a property, so analytics silently
// ignore them.
func checkCoverage(props []domain.Property, decls []domain.Declaration) *phase {
	p := &phase{name: "county coverage"}
	counties := make(map[string]bool, len(props))
	for _, prop := range props {
		counties[prop.CountyName] = true
	}
	orphaned := make(map[string]bool)
	for _, d := range decls {
		if !counties[d.CountyName] && !orphaned[d.CountyName] {
			orphaned[d.CountyName] = true
			p.errorf("county %q has declarations but no properties", d.CountyName)
		}
	}
	return p
}
