// package formatter renders choice schemas and install results for the terminal (plain, styled, Markdown, JSON)
package formatter

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/desertthunder/spotwidget/internal/models"
	json "github.com/goccy/go-json"
)

func heading(k models.Kind, cs models.ChoiceSchema) string {
	return fmt.Sprintf("%s choices (%d)", title(string(k)), cs.Len()-1)
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// SchemaToText renders a numbered list of choices. The "custom" entry is numbered 0.
func SchemaToText(k models.Kind, cs models.ChoiceSchema) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n", heading(k, cs))
	for i, key := range cs.Enum {
		fmt.Fprintf(&buf, "%d. %s (%s)\n", i, cs.Name(key), key)
	}
	return buf.Bytes()
}

// SchemaToMarkdown renders choices as a Markdown table.
func SchemaToMarkdown(k models.Kind, cs models.ChoiceSchema) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "## %s\n\n", heading(k, cs))
	buf.WriteString("| # | Name | Key |\n")
	buf.WriteString("|---|------|-----|\n")
	for i, key := range cs.Enum {
		fmt.Fprintf(&buf, "| %d | %s | `%s` |\n", i, escapePipes(cs.Name(key)), key)
	}
	return buf.Bytes()
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// RenderSchema writes choices to w, styled with the package palette when styled is set.
func RenderSchema(w io.Writer, k models.Kind, cs models.ChoiceSchema, styled bool) error {
	if !styled {
		_, err := w.Write(SchemaToText(k, cs))
		return err
	}

	var buf bytes.Buffer
	fmt.Fprintln(&buf, Title(heading(k, cs)))
	for i, key := range cs.Enum {
		name := cs.Name(key)
		if key == models.CustomChoice {
			name = Help(name)
		}
		fmt.Fprintf(&buf, "%3d. %s %s\n", i, name, Help(key))
	}
	if cs.Len() < 2 {
		fmt.Fprintln(&buf, Warn(fmt.Sprintf("No %ss found; widgets keep their current choice.", k)))
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// RenderResult writes a one-line summary of an install or account result.
func RenderResult(w io.Writer, r models.Result) error {
	if r.Proceed {
		_, err := fmt.Fprintln(w, OK("proceed"))
		return err
	}
	for _, e := range r.Errors {
		if _, err := fmt.Fprintf(w, "%s %s\n", Err("["+e.Type+"]"), e.Message); err != nil {
			return err
		}
	}
	return nil
}

// ToJSON marshals v, indented when pretty is set.
func ToJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
