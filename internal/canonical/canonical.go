// Package canonical produces the byte sequence that is signed for a certificate.
//
// The encoding is a compact JSON object whose keys are sorted lexicographically.
// Strings are escaped like Python's json.dumps with default settings (ASCII-only
// output, UTF-16 surrogate pairs), so payloads signed by existing issuers still
// verify. Strings are not Unicode-normalized: callers pass clean values.
package canonical

import (
	"errors"
	"slices"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/evidenceledger/certissuer/internal/errl"
	"github.com/evidenceledger/certissuer/internal/models"
)

// ErrIncompleteFacts is returned when a required fact is missing
var ErrIncompleteFacts = errors.New("incomplete certificate facts")

// Payload field names. Changing any of them breaks every issued signature.
const (
	FieldDegree      = "degree"
	FieldIssueDate   = "issue_date"
	FieldIssuer      = "issuer"
	FieldProgram     = "program"
	FieldStudentID   = "student_id"
	FieldStudentName = "student_name"
	FieldUUID        = "uuid"
)

type field struct {
	name  string
	value string
}

// Canonicalize encodes facts into their canonical payload.
func Canonicalize(facts models.CertificateFacts) ([]byte, error) {
	var issueDate string
	if !facts.IssueDate.IsZero() {
		issueDate = facts.IssueDate.Format(models.DateLayout)
	}

	fields := []field{
		{FieldUUID, facts.Identity},
		{FieldStudentName, facts.SubjectName},
		{FieldStudentID, facts.SubjectExternalID},
		{FieldDegree, facts.CredentialTitle},
		{FieldProgram, facts.ProgramName},
		{FieldIssueDate, issueDate},
		{FieldIssuer, facts.IssuerName},
	}

	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return nil, errl.Errorf("%w: missing %s", ErrIncompleteFacts, strings.Join(missing, ", "))
	}

	slices.SortFunc(fields, func(a, b field) int {
		return strings.Compare(a.name, b.name)
	})

	var b strings.Builder
	b.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		writeString(&b, f.name)
		b.WriteByte(':')
		writeString(&b, f.value)
	}
	b.WriteByte('}')

	return []byte(b.String()), nil
}

const hexDigits = "0123456789abcdef"

// writeString writes s as a JSON string literal. Anything outside printable
// ASCII is written as \uXXXX, using surrogate pairs above the BMP.
// Invalid UTF-8 bytes become U+FFFD.
func writeString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size

		switch {
		case r == '"':
			b.WriteString(`\"`)
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\b':
			b.WriteString(`\b`)
		case r == '\f':
			b.WriteString(`\f`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r >= 0x20 && r <= 0x7e:
			b.WriteByte(byte(r))
		case r > 0xffff:
			hi, lo := utf16.EncodeRune(r)
			writeUnicodeEscape(b, hi)
			writeUnicodeEscape(b, lo)
		default:
			writeUnicodeEscape(b, r)
		}
	}
	b.WriteByte('"')
}

func writeUnicodeEscape(b *strings.Builder, r rune) {
	b.WriteString(`\u`)
	b.WriteByte(hexDigits[(r>>12)&0xf])
	b.WriteByte(hexDigits[(r>>8)&0xf])
	b.WriteByte(hexDigits[(r>>4)&0xf])
	b.WriteByte(hexDigits[r&0xf])
}
