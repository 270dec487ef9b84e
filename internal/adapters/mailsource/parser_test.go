package mailsource

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleNotification = `A new Pre-MQL lead is ready for review.

First Name:
Jane

Last Name:
Doe

Email Address:
jane.doe@school.edu

Company:
Example University

Country:
Germany

Job Role:
Research Assistant

PreMQL review/validation link:
https://emea01.safelinks.protection.outlook.com/?url=https%3A%2F%2Fcrm.example%2Freview%2F42&data=ignored

Copyright 2026 Example Corp. All rights reserved.
This footer must not leak into any field.
`

func TestParseNotification(t *testing.T) {
	fields := ParseNotification(sampleNotification)

	assert.Equal(t, "Jane", fields["First Name"])
	assert.Equal(t, "Doe", fields["Last Name"])
	assert.Equal(t, "jane.doe@school.edu", fields["Email Address"])
	assert.Equal(t, "Example University", fields["Company"])
	assert.Equal(t, "Germany", fields["Country"])
	assert.Equal(t, "Research Assistant", fields["Job Role"])
	assert.Equal(t, "https://crm.example/review/42", fields["PreMQL review/validation link"])

	for _, value := range fields {
		assert.NotContains(t, value, "footer")
	}
}

func TestParseNotificationMultilineValue(t *testing.T) {
	body := "Company:\nExample University\nFaculty of Science\n\nCountry:\nAustria\n"
	fields := ParseNotification(body)

	assert.Equal(t, "Example University\nFaculty of Science", fields["Company"])
	assert.Equal(t, "Austria", fields["Country"])
}

func TestParseNotificationLabelAliases(t *testing.T) {
	body := "Email Address:\njane@school.edu\n\nLead Qualification Link:\nhttps://crm.example/review/7\n"
	fields := ParseNotification(body)

	assert.Equal(t, "https://crm.example/review/7", fields["PreMQL review/validation link"])
}

func TestParseNotificationIgnoresUnknownLabels(t *testing.T) {
	body := "Favourite Color:\nblue\n\nEmail Address:\njane@school.edu\n"
	fields := ParseNotification(body)

	assert.Equal(t, "jane@school.edu", fields["Email Address"])
	assert.NotContains(t, fields, "Favourite Color")
}

func TestUnwrapURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			"safelinks",
			"https://emea01.safelinks.protection.outlook.com/?url=https%3A%2F%2Fcrm.example%2Fr%2F1",
			"https://crm.example/r/1",
		},
		{
			"generic url param",
			"https://track.example/click?url=https%3A%2F%2Fcrm.example%2Fr%2F2",
			"https://crm.example/r/2",
		},
		{
			"u param",
			"https://track.example/click?u=https%3A%2F%2Fcrm.example%2Fr%2F3",
			"https://crm.example/r/3",
		},
		{
			"plain url untouched",
			"https://crm.example/r/4",
			"https://crm.example/r/4",
		},
		{
			"non-url param ignored",
			"https://crm.example/r/5?u=not-a-link",
			"https://crm.example/r/5?u=not-a-link",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UnwrapURL(tt.raw))
		})
	}
}

func TestBuildRawLead(t *testing.T) {
	receivedAt := time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC)
	fields := ParseNotification(sampleNotification)

	lead := BuildRawLead("Marketing System", "noreply@example.com", receivedAt, fields, "INBOX;42")

	assert.Equal(t, "jane.doe@school.edu", lead.Address)
	assert.Equal(t, "Jane Doe", lead.SenderName)
	assert.Equal(t, "Example University", lead.Organization)
	assert.Equal(t, "Germany", lead.Country)
	assert.Equal(t, "https://crm.example/review/42", lead.FormURL)
	assert.Equal(t, receivedAt, lead.ReceivedAt)
	assert.Equal(t, "INBOX;42", lead.MessageRef)
}

func TestBuildRawLeadFallsBackToEnvelope(t *testing.T) {
	lead := BuildRawLead("Jane Doe", "jane@school.edu", time.Now(), map[string]string{}, "")

	assert.Equal(t, "jane@school.edu", lead.Address)
	assert.Equal(t, "Jane Doe", lead.SenderName)
}

func TestMatchesSubject(t *testing.T) {
	filters := []string{"Pre-MQL ready for review", "Pre-MQL ready for validation"}

	assert.True(t, matchesSubject("FW: Pre-MQL ready for review (batch 7)", filters))
	assert.True(t, matchesSubject("pre-mql READY FOR VALIDATION", filters))
	assert.False(t, matchesSubject("Weekly newsletter", filters))
	assert.True(t, matchesSubject("anything", nil))
}

func TestParseNotificationEmptyBody(t *testing.T) {
	fields := ParseNotification("")
	require.Empty(t, fields)
}
