// Package directory holds the authoritative partner name to contact address
// table used for notification routing. The table is built once at startup and
// is read-only afterwards; it is never edited through the API.
package directory

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Entry maps one partner display name to its contact address.
type Entry struct {
	DisplayName    string `json:"name"`
	ContactAddress string `json:"email"`
}

// ErrNoPartner signals that no partner was selected (empty display name).
// It is distinct from an unknown partner: no notification should be
// attempted, and nothing is wrong.
var ErrNoPartner = errors.New("no partner selected")

// UnknownPartnerError is returned when a non-empty display name is not in
// the table. Resolution never falls back to a default address; a typo must
// surface as an error rather than route referral data to the wrong inbox.
type UnknownPartnerError struct {
	Name string
}

func (e *UnknownPartnerError) Error() string {
	return fmt.Sprintf("unknown partner: %s", e.Name)
}

type Directory struct {
	entries map[string]string
}

// New builds a Directory from the given entries. Display names are
// trim-normalized; later duplicates win, matching config-file override
// semantics.
func New(entries []Entry) *Directory {
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		name := strings.TrimSpace(e.DisplayName)
		if name == "" {
			continue
		}
		m[name] = strings.TrimSpace(e.ContactAddress)
	}
	return &Directory{entries: m}
}

// Default returns the reference deployment table.
func Default() *Directory {
	return New([]Entry{
		{DisplayName: "Go Topeka", ContactAddress: "israelsanchezofficial@gmail.com"},
		{DisplayName: "KS Department of Commerce", ContactAddress: "contact@kscommerce.gov"},
		{DisplayName: "Network Kansas", ContactAddress: "hello@networkkansas.org"},
		{DisplayName: "Omni Circle", ContactAddress: "team@omnicircle.org"},
		{DisplayName: "Shawnee Startups", ContactAddress: "support@shawneestartups.com"},
		{DisplayName: "Washburn SBDC", ContactAddress: "sbdc@washburn.edu"},
	})
}

// LoadFile reads a JSON array of entries from path. An empty path returns
// the default table.
func LoadFile(path string) (*Directory, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("directory: read %s: %w", path, err)
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("directory: parse %s: %w", path, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("directory: %s contains no entries", path)
	}
	return New(entries), nil
}

// Resolve maps a partner display name to its contact address. An empty or
// whitespace-only name returns ErrNoPartner; a name absent from the table
// returns *UnknownPartnerError.
func (d *Directory) Resolve(displayName string) (string, error) {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return "", ErrNoPartner
	}
	addr, ok := d.entries[name]
	if !ok {
		return "", &UnknownPartnerError{Name: name}
	}
	return addr, nil
}

// Len reports the number of configured partners.
func (d *Directory) Len() int { return len(d.entries) }
