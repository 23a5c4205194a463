package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rosterboard/rosterboard/internal/api/validation"
)

func TestValidateTeamID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "valid", id: "1412728342079344651"},
		{name: "minimum length", id: "12345"},
		{name: "empty", id: "", wantErr: true},
		{name: "too short", id: "1234", wantErr: true},
		{name: "not numeric", id: "alpha", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validation.ValidateTeamID(tt.id)
			if tt.wantErr {
				assert.Len(t, errs, 1)
				assert.Equal(t, "id", errs[0].Field)
			} else {
				assert.Empty(t, errs)
			}
		})
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: "", want: validation.DefaultLimit},
		{raw: "1", want: 1},
		{raw: "100", want: 100},
		{raw: "0", wantErr: true},
		{raw: "101", wantErr: true},
		{raw: "-3", wantErr: true},
		{raw: "ten", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			limit, errs := validation.ParseLimit(tt.raw)
			if tt.wantErr {
				assert.NotEmpty(t, errs)
				return
			}
			assert.Empty(t, errs)
			assert.Equal(t, tt.want, limit)
		})
	}
}
