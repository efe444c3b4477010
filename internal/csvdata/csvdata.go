// Package csvdata reads and writes the CSV interchange files used by the
// import, genmock, and validate commands. Property files are one row per
// listing; declaration files are one row per (declaration, type) pair and are
// regrouped on read.
package csvdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/stormhaven/stormhaven/internal/domain"
)

const dateLayout = "2006-01-02"

// PropertyHeader is the expected first row of a property CSV.
var PropertyHeader = []string{
	"property_id", "county_name", "state", "price", "status",
	"bedrooms", "bathrooms", "acre_lot",
}

// DeclarationHeader is the expected first row of a declarations CSV.
var DeclarationHeader = []string{
	"disaster_id", "disasternumber", "county_name", "state",
	"designateddate", "closeoutdate", "type_code", "type_description",
}

// ReadProperties parses a property CSV file.
func ReadProperties(path string) ([]domain.Property, error) {
	rows, err := readRows(path, PropertyHeader)
	if err != nil {
		return nil, err
	}

	props := make([]domain.Property, 0, len(rows))
	for i, row := range rows {
		p, err := parseProperty(row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		props = append(props, p)
	}
	return props, nil
}

// ReadDeclarations parses a declarations CSV file, grouping type rows by
// disaster id. Row order within a file decides type order; first occurrence
// of a disaster id decides declaration order.
func ReadDeclarations(path string) ([]domain.Declaration, error) {
	rows, err := readRows(path, DeclarationHeader)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*domain.Declaration)
	order := make([]int64, 0)
	for i, row := range rows {
		dec, typ, err := parseDeclarationRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		existing, ok := byID[dec.DisasterID]
		if !ok {
			byID[dec.DisasterID] = &dec
			existing = byID[dec.DisasterID]
			order = append(order, dec.DisasterID)
		}
		existing.Types = append(existing.Types, typ)
	}

	decls := make([]domain.Declaration, 0, len(order))
	for _, id := range order {
		decls = append(decls, *byID[id])
	}
	return decls, nil
}

// WriteProperties writes a property CSV file.
func WriteProperties(path string, props []domain.Property) error {
	return writeFile(path, func(w *csv.Writer) error {
		if err := w.Write(PropertyHeader); err != nil {
			return err
		}
		for _, p := range props {
			row := []string{
				strconv.FormatInt(p.PropertyID, 10),
				p.CountyName,
				p.State,
				strconv.FormatFloat(p.Price, 'f', -1, 64),
				p.Status,
				strconv.Itoa(p.Bedrooms),
				strconv.FormatFloat(p.Bathrooms, 'f', -1, 64),
				strconv.FormatFloat(p.AcreLot, 'f', -1, 64),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteDeclarations writes a declarations CSV file, one row per type record.
func WriteDeclarations(path string, decls []domain.Declaration) error {
	return writeFile(path, func(w *csv.Writer) error {
		if err := w.Write(DeclarationHeader); err != nil {
			return err
		}
		for _, d := range decls {
			closeout := ""
			if d.CloseoutDate != nil {
				closeout = d.CloseoutDate.UTC().Format(dateLayout)
			}
			for _, t := range d.Types {
				row := []string{
					strconv.FormatInt(d.DisasterID, 10),
					strconv.FormatInt(d.DisasterNumber, 10),
					d.CountyName,
					d.State,
					d.DesignatedDate.UTC().Format(dateLayout),
					closeout,
					t.TypeCode,
					t.TypeDescription,
				}
				if err := w.Write(row); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func readRows(path string, header []string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)

	got, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	for i, name := range header {
		if got[i] != name {
			return nil, fmt.Errorf("%s: header column %d is %q, want %q", path, i+1, got[i], name)
		}
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseProperty(row []string) (domain.Property, error) {
	id, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return domain.Property{}, fmt.Errorf("property_id %q: %w", row[0], err)
	}
	price, err := strconv.ParseFloat(row[3], 64)
	if err != nil {
		return domain.Property{}, fmt.Errorf("price %q: %w", row[3], err)
	}
	bedrooms, err := strconv.Atoi(row[5])
	if err != nil {
		return domain.Property{}, fmt.Errorf("bedrooms %q: %w", row[5], err)
	}
	bathrooms, err := strconv.ParseFloat(row[6], 64)
	if err != nil {
		return domain.Property{}, fmt.Errorf("bathrooms %q: %w", row[6], err)
	}
	acres, err := strconv.ParseFloat(row[7], 64)
	if err != nil {
		return domain.Property{}, fmt.Errorf("acre_lot %q: %w", row[7], err)
	}
	return domain.Property{
		PropertyID: id,
		CountyName: row[1],
		State:      row[2],
		Price:      price,
		Status:     row[4],
		Bedrooms:   bedrooms,
		Bathrooms:  bathrooms,
		AcreLot:    acres,
	}, nil
}

func parseDeclarationRow(row []string) (domain.Declaration, domain.DeclarationType, error) {
	id, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return domain.Declaration{}, domain.DeclarationType{}, fmt.Errorf("disaster_id %q: %w", row[0], err)
	}
	number, err := strconv.ParseInt(row[1], 10, 64)
	if err != nil {
		return domain.Declaration{}, domain.DeclarationType{}, fmt.Errorf("disasternumber %q: %w", row[1], err)
	}
	designated, err := time.Parse(dateLayout, row[4])
	if err != nil {
		return domain.Declaration{}, domain.DeclarationType{}, fmt.Errorf("designateddate %q: %w", row[4], err)
	}
	var closeout *time.Time
	if row[5] != "" {
		t, err := time.Parse(dateLayout, row[5])
		if err != nil {
			return domain.Declaration{}, domain.DeclarationType{}, fmt.Errorf("closeoutdate %q: %w", row[5], err)
		}
		closeout = &t
	}
	dec := domain.Declaration{
		DisasterID:     id,
		DisasterNumber: number,
		CountyName:     row[2],
		State:          row[3],
		DesignatedDate: designated,
		CloseoutDate:   closeout,
	}
	typ := domain.DeclarationType{TypeCode: row[6], TypeDescription: row[7]}
	return dec, typ, nil
}

func writeFile(path string, fill func(w *csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := fill(w); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}
