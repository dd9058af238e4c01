package email

import (
	"errors"
	"fmt"
	"mime"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"Folio/Models"
)

// headerSafe flattens a header value onto one line so user input cannot
// inject extra headers.
func headerSafe(v string) string {
	return strings.Join(strings.FieldsFunc(v, func(r rune) bool {
		return r == '\r' || r == '\n'
	}), " ")
}

// Format renders message as RFC 5322 bytes with CRLF line endings.
func Format(message Models.EmailMessage, now time.Time) ([]byte, error) {
	if message.From == "" {
		return nil, errors.New("message has no sender")
	}

	domain := "localhost"
	if addr, err := mail.ParseAddress(message.From); err == nil {
		if at := strings.LastIndex(addr.Address, "@"); at >= 0 {
			domain = addr.Address[at+1:]
		}
	}

	var b strings.Builder
	header := func(key, value string) {
		fmt.Fprintf(&b, "%s: %s\r\n", key, headerSafe(value))
	}

	header("From", message.From)
	header("To", strings.Join(message.To, ", "))
	if message.ReplyTo != "" {
		header("Reply-To", message.ReplyTo)
	}
	header("Subject", mime.QEncoding.Encode("utf-8", headerSafe(message.Subject)))
	header("Date", now.Format(time.RFC1123Z))
	header("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), domain))
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=UTF-8")
	header("Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")

	body := strings.ReplaceAll(message.Body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String()), nil
}
