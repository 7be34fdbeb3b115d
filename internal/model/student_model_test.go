package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFinancialSituation(t *testing.T) {
	tests := []struct {
		in      string
		want    FinancialSituation
		wantErr bool
	}{
		{in: "", want: FinancialUnset},
		{in: "excellent", want: FinancialExcellent},
		{in: "good", want: FinancialGood},
		{in: "needs_scholarship", want: FinancialNeedsScholarship},
		{in: "limited", want: FinancialLimited},
		{in: "rich", wantErr: true},
		{in: "Excellent", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFinancialSituation(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStudentProfileDecode(t *testing.T) {
	body := `{
		"id": "42",
		"name": "Ada",
		"gpa": 3.9,
		"total_credits": 120,
		"completed_credits": 90,
		"achievements": ["Dean's List"],
		"financial_situation": "needs_scholarship",
		"created_at": "2025-03-01T10:00:00.123000",
		"updated_at": "2025-03-01T10:00:00.123000+00:00"
	}`

	var p StudentProfile
	require.NoError(t, json.Unmarshal([]byte(body), &p))

	assert.Equal(t, "42", p.ID)
	require.NotNil(t, p.GPA)
	assert.InDelta(t, 3.9, *p.GPA, 1e-9)
	assert.Equal(t, FinancialNeedsScholarship, p.FinancialSituation)
	want := time.Date(2025, 3, 1, 10, 0, 0, 123000000, time.UTC)
	assert.True(t, p.CreatedAt.Equal(want))
	assert.True(t, p.UpdatedAt.Equal(want))
}

func TestStudentProfileDecodeRejectsUnknownFinancialSituation(t *testing.T) {
	var p StudentProfile
	err := json.Unmarshal([]byte(`{"id":"1","financial_situation":"wealthy"}`), &p)
	assert.Error(t, err)
}

func TestStudentProfileEncodeOmitsZeroTimestamps(t *testing.T) {
	gpa := 3.0
	data, err := json.Marshal(StudentProfile{Name: "A", GPA: &gpa})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "created_at")
	assert.NotContains(t, string(data), `"id"`)
}

func TestStudentProfileClone(t *testing.T) {
	gpa := 3.5
	p := &StudentProfile{ID: "1", GPA: &gpa, Achievements: []string{"a"}}
	c := p.Clone()
	c.Achievements[0] = "b"
	*c.GPA = 1
	assert.Equal(t, "a", p.Achievements[0])
	assert.InDelta(t, 3.5, *p.GPA, 1e-9)

	var nilProfile *StudentProfile
	assert.Nil(t, nilProfile.Clone())
}
