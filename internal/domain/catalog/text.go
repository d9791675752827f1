package catalog

import "strings"

// ReadmePrefixRunes bounds how much of the readme goes into the embedding input.
const ReadmePrefixRunes = 500

// EmbeddingText canonicalizes a package into the single string fed to the embedding model.
// Field order is fixed; empty fields are skipped so the output depends only on record data.
func EmbeddingText(p *PackageRecord) string {
	var b strings.Builder

	writeField(&b, "Name", p.Name)
	writeField(&b, "Description", p.Description)
	writeField(&b, "Language", p.Language)
	if names := p.CategoryNames(); len(names) > 0 {
		writeField(&b, "Categories", strings.Join(names, ", "))
	}
	writeField(&b, "Readme", truncateRunes(p.Readme, ReadmePrefixRunes))

	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	value = strings.Join(strings.Fields(value), " ")
	if value == "" {
		return
	}
	if b.Len() > 0 {
		b.WriteByte('\n')
	}
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
