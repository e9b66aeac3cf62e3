package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{"USER", RoleUser, false},
		{"vip", RoleVIP, false},
		{" blocklisted ", RoleBlocklisted, false},
		{"ADMIN", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserRecord_Policy_Defaults(t *testing.T) {
	u := UserRecord{Name: "alice"}
	p := u.Policy()

	assert.Equal(t, "00:00", p.Start)
	assert.Equal(t, "23:59", p.End)
	assert.Equal(t, RoleUser, p.Role)
	assert.Len(t, p.Days, 7)
	for d := 0; d < 7; d++ {
		assert.True(t, p.Days.Contains(d))
	}
}

func TestUserRecord_Policy_Explicit(t *testing.T) {
	u := UserRecord{
		Name:         "bob",
		AllowedStart: "08:30",
		AllowedEnd:   "17:00",
		AllowedDays:  "1,2,3",
		Role:         RoleVIP,
	}
	p := u.Policy()

	assert.Equal(t, "08:30", p.Start)
	assert.Equal(t, "17:00", p.End)
	assert.Equal(t, RoleVIP, p.Role)
	assert.Equal(t, "1,2,3", p.Days.String())
}

func TestAccessPolicy_Validate(t *testing.T) {
	valid := AccessPolicy{Start: "08:00", End: "18:00", Days: AllDays(), Role: RoleUser}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*AccessPolicy)
	}{
		{"malformed start", func(p *AccessPolicy) { p.Start = "8am" }},
		{"malformed end", func(p *AccessPolicy) { p.End = "25:00" }},
		{"empty days", func(p *AccessPolicy) { p.Days = DaySet{} }},
		{"day out of range", func(p *AccessPolicy) { p.Days = DaySet{9: {}} }},
		{"unknown role", func(p *AccessPolicy) { p.Role = "GUEST" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := AccessPolicy{Start: "08:00", End: "18:00", Days: AllDays(), Role: RoleUser}
			tt.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestDaySet_Toggle(t *testing.T) {
	days := ParseDaySet("0,6")

	days.Toggle(3)
	assert.True(t, days.Contains(3))

	days.Toggle(3)
	assert.False(t, days.Contains(3))
	assert.Equal(t, "0,6", days.String())
}

func TestParseDaySet_SkipsGarbage(t *testing.T) {
	days := ParseDaySet("0, 2,x,7,-1, 5 ,")
	assert.Equal(t, "0,2,5", days.String())
}

func TestDaySet_CloneIsIndependent(t *testing.T) {
	days := ParseDaySet("1,2")
	clone := days.Clone()
	clone.Toggle(1)

	assert.True(t, days.Contains(1))
	assert.False(t, clone.Contains(1))
}
