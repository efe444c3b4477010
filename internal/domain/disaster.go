package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Disaster is one disaster search result row: the declaration joined with one
// of its type records. A declaration with three type codes yields three rows,
// matching the flattened shape the grid clients expect.
type Disaster struct {
	DisasterID      int64      `json:"disaster_id"`
	DisasterNumber  int64      `json:"disasternumber"`
	CountyName      string     `json:"county_name"`
	DesignatedDate  time.Time  `json:"designateddate"`
	CloseoutDate    *time.Time `json:"closeoutdate"`
	TypeCode        string     `json:"type_code"`
	TypeDescription string     `json:"type_description"`
}

// PropertyDisaster is one row of the disasters-for-property lookup. It joins
// property to disaster on county name, so it carries no location columns of
// its own.
type PropertyDisaster struct {
	DisasterID      int64      `json:"disaster_id"`
	DisasterNumber  int64      `json:"disasternumber"`
	DesignatedDate  time.Time  `json:"designateddate"`
	CloseoutDate    *time.Time `json:"closeoutdate"`
	TypeCode        string     `json:"type_code"`
	TypeDescription string     `json:"type_description"`
}

// RawEvent is an unprocessed message from the declarations topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Declaration is a full disaster declaration as published on the ingest
// topic: the declaration fields plus every associated type record.
type Declaration struct {
	DisasterID     int64      `json:"disaster_id"`
	DisasterNumber int64      `json:"disasternumber"`
	CountyName     string     `json:"county_name"`
	State          string     `json:"state"`
	DesignatedDate time.Time  `json:"designateddate"`
	CloseoutDate   *time.Time `json:"closeoutdate"`
	Types          []DeclarationType `json:"types"`
}

// DeclarationType is one (code, description) pair on a declaration.
type DeclarationType struct {
	TypeCode        string `json:"type_code"`
	TypeDescription string `json:"type_description"`
}

// ParseDeclaration deserializes a raw ingest event into a Declaration and
// rejects records that cannot be stored.
func ParseDeclaration(raw RawEvent) (Declaration, error) {
	var dec Declaration
	if err := json.Unmarshal(raw.Value, &dec); err != nil {
		return Declaration{}, fmt.Errorf("parse declaration: %w", err)
	}
	if dec.DisasterID == 0 {
		return Declaration{}, errors.New("parse declaration: missing disaster_id")
	}
	if dec.CountyName == "" {
		return Declaration{}, errors.New("parse declaration: missing county_name")
	}
	if dec.DesignatedDate.IsZero() {
		return Declaration{}, errors.New("parse declaration: missing designateddate")
	}
	if len(dec.Types) == 0 {
		return Declaration{}, errors.New("parse declaration: no type records")
	}
	for _, dt := range dec.Types {
		if dt.TypeCode == "" {
			return Declaration{}, errors.New("parse declaration: type record without type_code")
		}
	}
	return dec, nil
}
