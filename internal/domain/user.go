package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Role classifies a registered user for the access decision made by the
// recognition backend.
type Role string

const (
	RoleUser        Role = "USER"
	RoleVIP         Role = "VIP"
	RoleBlocklisted Role = "BLOCKLISTED"
)

// ParseRole validates a wire-level role string.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleVIP:
		return RoleVIP, nil
	case RoleBlocklisted:
		return RoleBlocklisted, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// UserRecord is the backend's authoritative view of a registered user.
// The console only ever holds a read-only cached copy, refreshed wholesale
// after any mutating call.
type UserRecord struct {
	Name         string `json:"name"`
	Thumbnail    string `json:"thumbnail,omitempty"`
	AllowedStart string `json:"allowed_start,omitempty"`
	AllowedEnd   string `json:"allowed_end,omitempty"`
	AllowedDays  string `json:"allowed_days,omitempty"`
	Role         Role   `json:"role,omitempty"`
}

// Policy materializes the record's access policy, applying the defaults the
// backend assumes for unset fields: full-day window, all weekdays, USER role.
func (u UserRecord) Policy() AccessPolicy {
	p := AccessPolicy{
		Start: u.AllowedStart,
		End:   u.AllowedEnd,
		Days:  ParseDaySet(u.AllowedDays),
		Role:  u.Role,
	}
	if p.Start == "" {
		p.Start = "00:00"
	}
	if p.End == "" {
		p.End = "23:59"
	}
	if len(p.Days) == 0 {
		p.Days = AllDays()
	}
	if p.Role == "" {
		p.Role = RoleUser
	}
	return p
}

// AccessPolicy is the editable portion of a user record: the time-of-day
// window, the allowed weekdays and the role.
type AccessPolicy struct {
	Start string
	End   string
	Days  DaySet
	Role  Role
}

// Validate checks the policy client-side before it is sent to the backend.
func (p AccessPolicy) Validate() error {
	if err := ValidateClock(p.Start); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if err := ValidateClock(p.End); err != nil {
		return fmt.Errorf("end: %w", err)
	}
	if len(p.Days) == 0 {
		return fmt.Errorf("at least one allowed day is required")
	}
	for day := range p.Days {
		if day < 0 || day > 6 {
			return fmt.Errorf("day index %d out of range", day)
		}
	}
	if _, err := ParseRole(string(p.Role)); err != nil {
		return err
	}
	return nil
}

// ValidateClock checks a 24h HH:MM string.
func ValidateClock(s string) error {
	if _, err := time.Parse("15:04", s); err != nil {
		return fmt.Errorf("malformed time %q, want HH:MM", s)
	}
	return nil
}

// DaySet is a set of weekday indices, 0 through 6.
type DaySet map[int]struct{}

// AllDays returns the full week, the backend's default for users without an
// explicit day restriction.
func AllDays() DaySet {
	days := make(DaySet, 7)
	for d := 0; d < 7; d++ {
		days[d] = struct{}{}
	}
	return days
}

// ParseDaySet decodes the wire format, a comma-separated list of day
// indices. Blank and malformed entries are skipped.
func ParseDaySet(s string) DaySet {
	days := make(DaySet)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil || d < 0 || d > 6 {
			continue
		}
		days[d] = struct{}{}
	}
	return days
}

// Contains reports set membership.
func (d DaySet) Contains(day int) bool {
	_, ok := d[day]
	return ok
}

// Toggle adds the day if absent and removes it if present.
func (d DaySet) Toggle(day int) {
	if _, ok := d[day]; ok {
		delete(d, day)
		return
	}
	d[day] = struct{}{}
}

// Clone returns an independent copy.
func (d DaySet) Clone() DaySet {
	out := make(DaySet, len(d))
	for day := range d {
		out[day] = struct{}{}
	}
	return out
}

// String encodes the set as the wire format: sorted, comma-separated
// day indices.
func (d DaySet) String() string {
	indices := make([]int, 0, len(d))
	for day := range d {
		indices = append(indices, day)
	}
	sort.Ints(indices)

	parts := make([]string, len(indices))
	for i, day := range indices {
		parts[i] = strconv.Itoa(day)
	}
	return strings.Join(parts, ",")
}
