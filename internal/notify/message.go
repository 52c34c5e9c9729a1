package notify

import (
	"fmt"
	"strings"
)

// ComposeMessage renders the per-upload notification body: a greeting, the
// analyzed filename, the missing clause labels, the download affordance when
// available, and the signature line.
func ComposeMessage(recipient, filename string, missing []string, downloadURL, signature string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", recipient)
	fmt.Fprintf(&b, "We analyzed your uploaded contract file: %s\n\n", filename)
	fmt.Fprintf(&b, "Missing clauses detected (%d):\n", len(missing))
	for _, label := range missing {
		fmt.Fprintf(&b, "- %s\n", label)
	}
	b.WriteString("\nAn amended contract with the missing clauses has been generated.\n")
	if downloadURL != "" {
		fmt.Fprintf(&b, "You can download it here: %s\n", downloadURL)
	}
	fmt.Fprintf(&b, "\nRegards,\n%s", signature)
	return b.String()
}
