package mailsource

import (
	"net/url"
	"strings"
	"time"

	"github.com/premql/lead-triage/internal/core"
)

// Field labels a Pre-MQL notification body may carry. The marketing system
// emits them as a label line followed by one or more value lines.
var knownFields = []string{
	"First Name",
	"Last Name",
	"Email Address",
	"Company",
	"Country",
	"City",
	"Job Role",
	"Industry",
	"Business Phone",
	"Account Type",
	"Lead Source - Original",
	"PreMQL review/validation link",
}

// Label aliases seen across notification template versions.
var fieldAliases = map[string]string{
	"lead qualification link": "PreMQL review/validation link",
	"qualification link":      "PreMQL review/validation link",
	"click here":              "PreMQL review/validation link",
}

// ParseNotification extracts the label/value fields from a notification's
// plain-text body. Values run until the next known label; everything after
// a Copyright footer line is ignored.
func ParseNotification(body string) map[string]string {
	fields := make(map[string]string)

	var currentField string
	var buffer []string

	flush := func() {
		if currentField == "" || len(buffer) == 0 {
			return
		}
		value := strings.TrimSpace(strings.Join(buffer, "\n"))
		if value != "" {
			fields[currentField] = value
		}
	}

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Copyright") {
			break
		}

		if label, ok := matchLabel(line); ok {
			flush()
			currentField = label
			buffer = buffer[:0]
			continue
		}
		if currentField != "" && line != "" {
			buffer = append(buffer, line)
		}
	}
	flush()

	if link, ok := fields["PreMQL review/validation link"]; ok {
		fields["PreMQL review/validation link"] = UnwrapURL(firstLine(link))
	}

	return fields
}

func matchLabel(line string) (string, bool) {
	label := strings.TrimSuffix(line, ":")
	lower := strings.ToLower(label)

	if canonical, ok := fieldAliases[lower]; ok {
		return canonical, true
	}
	for _, field := range knownFields {
		if lower == strings.ToLower(field) {
			return field, true
		}
	}
	return "", false
}

func firstLine(s string) string {
	if i := strings.Index(s, "\n"); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}

// UnwrapURL strips tracking redirects (Outlook safelinks and common
// url/u/redirect/target query wrappers) down to the destination URL.
func UnwrapURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	query := parsed.Query()
	if strings.Contains(parsed.Host, "safelinks.protection.outlook.com") {
		if target := query.Get("url"); target != "" {
			return target
		}
	}
	for _, key := range []string{"url", "u", "redirect", "target"} {
		if target := query.Get(key); strings.HasPrefix(target, "http") {
			return target
		}
	}

	return raw
}

// BuildRawLead assembles a RawLead from an envelope and its parsed fields.
// The lead's own address lives in the body ("Email Address"); the envelope
// sender is the marketing system and is only a fallback.
func BuildRawLead(
	senderName, senderAddress string,
	receivedAt time.Time,
	fields map[string]string,
	messageRef string,
) core.RawLead {
	address := fields["Email Address"]
	if address == "" {
		address = senderAddress
	}

	name := strings.TrimSpace(fields["First Name"] + " " + fields["Last Name"])
	if name == "" {
		name = senderName
	}

	return core.RawLead{
		SenderName:   name,
		Address:      address,
		Organization: fields["Company"],
		Country:      fields["Country"],
		FormURL:      fields["PreMQL review/validation link"],
		ReceivedAt:   receivedAt,
		MessageRef:   messageRef,
		Fields:       fields,
	}
}

// matchesSubject reports whether the subject passes the configured filters.
// No filters means every message passes.
func matchesSubject(subject string, filters []string) bool {
	if len(filters) == 0 {
		return true
	}
	lower := strings.ToLower(subject)
	for _, filter := range filters {
		if strings.Contains(lower, strings.ToLower(filter)) {
			return true
		}
	}
	return false
}
