// Package timezones provides the embedded IANA zone list used by the trip
// form: a syntactic check for region/city identifiers, a membership check
// against the list, and an accent-insensitive search that powers timezone
// suggestions in the terminal form. The backing data lives under
// data/iana_timezones.txt.
package timezones
