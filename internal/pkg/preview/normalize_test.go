package preview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/resumedesk/ResumeDesk/app/models"
)

func TestNormalizeBullet(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Shipped the billing rewrite", "• Shipped the billing rewrite"},
		{"• Already bulleted", "• Already bulleted"},
		{"- Dash style", "- Dash style"},
		{"* Star style", "* Star style"},
		{"  padded  ", "• padded"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := NormalizeBullet(tt.in); got != tt.want {
			t.Errorf("NormalizeBullet(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncateSummary(t *testing.T) {
	short := "A short summary."
	assert.Equal(t, short, TruncateSummary(short))

	long := strings.Repeat("x", SummaryBudget+50)
	got := TruncateSummary(long)
	assert.Equal(t, SummaryBudget+1, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "…"))

	exact := strings.Repeat("y", SummaryBudget)
	assert.Equal(t, exact, TruncateSummary(exact), "exactly at budget is not cut")

	// The cut is by characters, not bytes.
	unicode := strings.Repeat("é", SummaryBudget+1)
	gotUnicode := TruncateSummary(unicode)
	assert.Equal(t, SummaryBudget+1, len([]rune(gotUnicode)))
}

func TestURLNormalization(t *testing.T) {
	tests := []struct {
		raw       string
		canonical string
		display   string
	}{
		{"example.com/me", "https://example.com/me", "example.com/me"},
		{"https://example.com/me", "https://example.com/me", "example.com/me"},
		{"http://www.example.com", "http://www.example.com", "example.com"},
		{"www.example.com", "https://www.example.com", "example.com"},
		{"", "", ""},
	}
	for _, tt := range tests {
		if got := CanonicalURL(tt.raw); got != tt.canonical {
			t.Errorf("CanonicalURL(%q) = %q, want %q", tt.raw, got, tt.canonical)
		}
		if got := DisplayURL(CanonicalURL(tt.raw)); got != tt.display {
			t.Errorf("DisplayURL(CanonicalURL(%q)) = %q, want %q", tt.raw, got, tt.display)
		}
	}
}

func TestNormalizeResume(t *testing.T) {
	in := models.ResumeContent{
		Contact: models.ContactInfo{
			FullName: "Asha Rao",
			Website:  "asharao.dev",
			LinkedIn: "https://linkedin.com/in/asharao",
		},
		Summary: strings.Repeat("s", SummaryBudget+10),
		Experience: []models.ExperienceItem{
			{
				Title:     "Engineer",
				Company:   "Acme",
				StartDate: " Jan 2023 ",
				Current:   true,
				Achievements: []string{
					"Cut deploy time in half",
					"- kept this dash",
					"   ",
				},
			},
		},
		Projects: []models.ProjectItem{
			{Name: "sideproj", URL: "github.com/asha/sideproj"},
		},
	}

	out := NormalizeResume(in)

	assert.Equal(t, "https://asharao.dev", out.Contact.Website)
	assert.Equal(t, "https://linkedin.com/in/asharao", out.Contact.LinkedIn)
	assert.Len(t, []rune(out.Summary), SummaryBudget+1)

	exp := out.Experience[0]
	assert.Equal(t, "Jan 2023", exp.StartDate)
	assert.Equal(t, "Present", exp.EndDate)
	assert.Equal(t, []string{"• Cut deploy time in half", "- kept this dash"}, exp.Achievements)

	assert.Equal(t, "https://github.com/asha/sideproj", out.Projects[0].URL)

	// The input is untouched.
	assert.Equal(t, "asharao.dev", in.Contact.Website)
	assert.Len(t, in.Experience[0].Achievements, 3)
}

func TestNormalizeCoverLetter(t *testing.T) {
	in := models.CoverLetterContent{
		Contact:    models.ContactInfo{Website: "example.com"},
		Date:       "  12 Aug 2026 ",
		Paragraphs: []string{"First paragraph.", "  ", "Second paragraph."},
	}

	out := NormalizeCoverLetter(in)

	assert.Equal(t, "https://example.com", out.Contact.Website)
	assert.Equal(t, "12 Aug 2026", out.Date)
	assert.Equal(t, []string{"First paragraph.", "Second paragraph."}, out.Paragraphs)
}
