// Package domain models StormHaven's two data families and the filter
// predicates that search endpoints compile from query parameters.
//
// # Data Source
//
// Property listings come from realtor CSV exports; disaster records are
// FEMA-style declarations (disaster number, designated date, optional
// closeout date, one or more type codes such as "HM" for hazard mitigation).
// Both are loaded in bulk by cmd/import, and declarations can additionally
// arrive as JSON events on a Kafka topic (see internal/ingest).
//
// # Location Join Convention
//
// Properties and disasters are associated by county/city NAME equality, not
// by a normalized foreign key. Two rows whose names differ in spelling or
// casing are never joined, even when they describe the same place. This is a
// known weakness of the source data and it is preserved deliberately:
// normalizing names here would silently change every county-based analytic.
//
// # Filter Semantics
//
// Every search parameter is optional. An absent or empty parameter always
// means "match all" for that field, never "match none". Identifier fields
// match exactly, text fields match case-insensitive substrings, numeric and
// date fields match inclusive ranges with generous defaults. Parameters that
// fail to parse for their declared type are a [ValidationError], not a
// silently ignored filter.
package domain
