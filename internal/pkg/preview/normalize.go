package preview

import (
	"strings"

	"github.com/resumedesk/ResumeDesk/app/models"
)

// SummaryBudget is the hard character cap for long-form summary text in the
// preview. Truncation is by character count, not word boundaries, so the
// preview never grows past what one header block can hold.
const SummaryBudget = 600

// bulletPrefixes are the glyphs we accept as an existing bullet. A line
// starting with any of these is left alone.
var bulletPrefixes = []string{"•", "-", "*"}

// NormalizeBullet makes sure a non-empty achievement line starts with a
// bullet glyph. Lines that already carry one (or a dash/asterisk the user
// typed) are not double-bulleted.
func NormalizeBullet(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}
	for _, p := range bulletPrefixes {
		if strings.HasPrefix(trimmed, p) {
			return trimmed
		}
	}
	return "• " + trimmed
}

// TruncateSummary hard-caps s at SummaryBudget characters and appends an
// ellipsis when anything was cut.
func TruncateSummary(s string) string {
	return truncateAt(s, SummaryBudget)
}

func truncateAt(s string, budget int) string {
	runes := []rune(s)
	if len(runes) <= budget {
		return s
	}
	return string(runes[:budget]) + "…"
}

// CanonicalURL is the stored form of a user-entered URL: it always carries a
// scheme. Empty input means no URL and stays empty.
func CanonicalURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	if strings.Contains(u, "://") {
		return u
	}
	return "https://" + u
}

// DisplayURL is the on-page form of a URL: scheme and a leading "www." are
// stripped so templates print "example.com/me" instead of the full address.
func DisplayURL(raw string) string {
	u := strings.TrimSpace(raw)
	for _, scheme := range []string{"https://", "http://"} {
		if strings.HasPrefix(u, scheme) {
			u = u[len(scheme):]
			break
		}
	}
	u = strings.TrimPrefix(u, "www.")
	return u
}

// NormalizeResume returns a copy of the content that is safe to hand to any
// template: dates are plain strings (a running position reads "Present"),
// achievements carry bullet glyphs with empty lines dropped, the summary is
// capped, and contact URLs are canonical.
func NormalizeResume(c models.ResumeContent) models.ResumeContent {
	out := c

	out.Contact.Website = CanonicalURL(c.Contact.Website)
	out.Contact.LinkedIn = CanonicalURL(c.Contact.LinkedIn)
	out.Contact.GitHub = CanonicalURL(c.Contact.GitHub)
	out.Summary = TruncateSummary(strings.TrimSpace(c.Summary))

	out.Experience = make([]models.ExperienceItem, len(c.Experience))
	for i, exp := range c.Experience {
		exp.StartDate = strings.TrimSpace(exp.StartDate)
		exp.EndDate = strings.TrimSpace(exp.EndDate)
		if exp.Current {
			exp.EndDate = "Present"
		}
		exp.Achievements = normalizeBullets(exp.Achievements)
		out.Experience[i] = exp
	}

	out.Education = make([]models.EducationItem, len(c.Education))
	for i, edu := range c.Education {
		edu.StartDate = strings.TrimSpace(edu.StartDate)
		edu.EndDate = strings.TrimSpace(edu.EndDate)
		out.Education[i] = edu
	}

	out.Projects = make([]models.ProjectItem, len(c.Projects))
	for i, prj := range c.Projects {
		prj.URL = CanonicalURL(prj.URL)
		prj.Achievements = normalizeBullets(prj.Achievements)
		out.Projects[i] = prj
	}

	out.Certifications = make([]models.CertificationItem, len(c.Certifications))
	for i, cert := range c.Certifications {
		cert.PublicationDate = strings.TrimSpace(cert.PublicationDate)
		cert.URL = CanonicalURL(cert.URL)
		out.Certifications[i] = cert
	}

	return out
}

// NormalizeCoverLetter returns a template-ready copy of a cover letter:
// empty paragraphs are dropped and the contact URLs are canonical.
func NormalizeCoverLetter(c models.CoverLetterContent) models.CoverLetterContent {
	out := c
	out.Contact.Website = CanonicalURL(c.Contact.Website)
	out.Contact.LinkedIn = CanonicalURL(c.Contact.LinkedIn)
	out.Contact.GitHub = CanonicalURL(c.Contact.GitHub)
	out.Date = strings.TrimSpace(c.Date)

	out.Paragraphs = make([]string, 0, len(c.Paragraphs))
	for _, p := range c.Paragraphs {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out.Paragraphs = append(out.Paragraphs, trimmed)
		}
	}
	return out
}

func normalizeBullets(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if b := NormalizeBullet(line); b != "" {
			out = append(out, b)
		}
	}
	return out
}
