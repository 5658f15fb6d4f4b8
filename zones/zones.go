package zones

import (
	"fmt"
	"time"
)

// Zone maps a user-facing bidding zone identifier to the upstream API's
// area code and the zone's local timezone.
type Zone struct {
	Identifier  string
	Name        string
	Code        string // upstream area code, e.g. "10Y1001A1001A47J" for SE4
	Timezone    string // IANA name, e.g. "Europe/Stockholm"
	Description string
}

func (z Zone) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(z.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q for zone %s: %w", z.Timezone, z.Identifier, err)
	}
	return loc, nil
}

type UnknownZoneError struct {
	Identifier string
}

func (e *UnknownZoneError) Error() string {
	return fmt.Sprintf("unknown zone %q", e.Identifier)
}

// Registry is the catalog of configured bidding zones. It is built once at
// startup and never mutated.
type Registry struct {
	zones map[string]Zone
}

func NewRegistry(zs []Zone) *Registry {
	m := make(map[string]Zone, len(zs))
	for _, z := range zs {
		m[z.Identifier] = z
	}
	return &Registry{zones: m}
}

// Resolve looks up a zone by identifier, case-sensitive exact match.
func (r *Registry) Resolve(identifier string) (Zone, error) {
	z, ok := r.zones[identifier]
	if !ok {
		return Zone{}, &UnknownZoneError{Identifier: identifier}
	}
	return z, nil
}

// All returns a copy of the full catalog.
func (r *Registry) All() map[string]Zone {
	m := make(map[string]Zone, len(r.zones))
	for id, z := range r.zones {
		m[id] = z
	}
	return m
}

// ResolveMany resolves each identifier, failing on the first unknown one.
// Duplicate identifiers collapse to the position of their first occurrence.
func (r *Registry) ResolveMany(identifiers []string) ([]Zone, error) {
	seen := make(map[string]bool, len(identifiers))
	resolved := make([]Zone, 0, len(identifiers))
	for _, id := range identifiers {
		if seen[id] {
			continue
		}
		seen[id] = true
		z, err := r.Resolve(id)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, z)
	}
	return resolved, nil
}
