package models

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/desertthunder/spotwidget/internal/shared"
	json "github.com/goccy/go-json"
	"github.com/mitchellh/copystructure"
)

var (
	// ErrMissingToken is returned when authentications.account.token is absent.
	ErrMissingToken = fmt.Errorf("%w: authentications.account.token is missing", shared.ErrMissingCredentials)
	// ErrMalformedToken is returned when the token object cannot be used as a credential.
	ErrMalformedToken = fmt.Errorf("%w: authentications.account.token is malformed", shared.ErrMissingCredentials)
)

// SpotifyLink is added to the install links on login.
var SpotifyLink = Link{
	Title:       "Spotify",
	Description: "Visit Spotify to manage your playlists and followed artists.",
	Href:        "https://www.spotify.com",
}

// Link is an entry of the install document's links list.
type Link struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Href        string `json:"href"`
}

// Token is the credential supplied by the host for the "account" authentication.
type Token struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// Header renders the Authorization header value.
func (t Token) Header() string {
	return t.Type + " " + t.Token
}

// InstallDocument is a typed accessor over a caller-owned install document.
//
// The zero value is an empty document.
type InstallDocument struct {
	raw map[string]any
}

// NewInstallDocument wraps raw. The document takes ownership of raw.
func NewInstallDocument(raw map[string]any) *InstallDocument {
	if raw == nil {
		raw = map[string]any{}
	}
	return &InstallDocument{raw: raw}
}

// ParseInstallDocument decodes a JSON object, keeping numbers as [json.Number].
func ParseInstallDocument(data []byte) (*InstallDocument, error) {
	d := &InstallDocument{}
	if err := d.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return d, nil
}

// UnmarshalJSON implements [json.Unmarshaler].
func (d *InstallDocument) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("install document: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	d.raw = raw
	return nil
}

// MarshalJSON implements [json.Marshaler].
func (d *InstallDocument) MarshalJSON() ([]byte, error) {
	if d.raw == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d.raw)
}

// Raw exposes the underlying JSON object.
func (d *InstallDocument) Raw() map[string]any {
	d.init()
	return d.raw
}

// Clone returns a deep copy of the document.
func (d *InstallDocument) Clone() (*InstallDocument, error) {
	if d.raw == nil {
		return NewInstallDocument(nil), nil
	}
	cp, err := copystructure.Copy(d.raw)
	if err != nil {
		return nil, fmt.Errorf("failed to copy install document: %w", err)
	}
	return NewInstallDocument(cp.(map[string]any)), nil
}

func (d *InstallDocument) init() {
	if d.raw == nil {
		d.raw = map[string]any{}
	}
}

func slotPath(k Kind) []string {
	return []string{"schema", "properties", "widgets", "items", "properties", string(k), "properties", "URI"}
}

// ChoiceSchema reads the schema slot for k. Missing slots read as an empty schema.
func (d *InstallDocument) ChoiceSchema(k Kind) ChoiceSchema {
	return choiceSchemaFrom(walk(d.raw, slotPath(k), false))
}

// SetChoiceSchema merges cs into the slot for k, replacing enum and enumNames and
// leaving the slot's other keys alone. Missing intermediate objects are created.
func (d *InstallDocument) SetChoiceSchema(k Kind, cs ChoiceSchema) {
	d.init()
	slot := walk(d.raw, slotPath(k), true)
	slot["enum"] = cs.enumValue()
	slot["enumNames"] = cs.enumNamesValue()
}

// Widgets returns the object entries of options.widgets.
func (d *InstallDocument) Widgets() []map[string]any {
	options, ok := d.raw["options"].(map[string]any)
	if !ok {
		return nil
	}
	list, ok := options["widgets"].([]any)
	if !ok {
		return nil
	}

	widgets := make([]map[string]any, 0, len(list))
	for _, entry := range list {
		if w, ok := entry.(map[string]any); ok {
			widgets = append(widgets, w)
		}
	}
	return widgets
}

// SetWidgetChoice sets <k>.URI on every widget entry.
func (d *InstallDocument) SetWidgetChoice(k Kind, key string) {
	for _, w := range d.Widgets() {
		sub, ok := w[string(k)].(map[string]any)
		if !ok {
			sub = map[string]any{}
			w[string(k)] = sub
		}
		sub["URI"] = key
	}
}

// WidgetChoice returns <k>.URI of the i-th widget entry.
func (d *InstallDocument) WidgetChoice(i int, k Kind) (string, bool) {
	widgets := d.Widgets()
	if i < 0 || i >= len(widgets) {
		return "", false
	}
	sub, ok := widgets[i][string(k)].(map[string]any)
	if !ok {
		return "", false
	}
	v, ok := sub["URI"].(string)
	return v, ok
}

// Links returns the well-formed entries of the links list.
func (d *InstallDocument) Links() []Link {
	list, _ := d.raw["links"].([]any)
	links := make([]Link, 0, len(list))
	for _, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		var l Link
		l.Title, _ = m["title"].(string)
		l.Description, _ = m["description"].(string)
		l.Href, _ = m["href"].(string)
		links = append(links, l)
	}
	return links
}

// AppendLink adds l to the links list unless an entry with the same href exists.
func (d *InstallDocument) AppendLink(l Link) {
	d.init()
	for _, existing := range d.Links() {
		if existing.Href == l.Href {
			return
		}
	}

	list, _ := d.raw["links"].([]any)
	d.raw["links"] = append(list, map[string]any{
		"title":       l.Title,
		"description": l.Description,
		"href":        l.Href,
	})
}

func walk(m map[string]any, path []string, create bool) map[string]any {
	if m == nil {
		return nil
	}
	cur := m
	for _, key := range path {
		next, ok := cur[key].(map[string]any)
		if !ok {
			if !create {
				return nil
			}
			next = map[string]any{}
			cur[key] = next
		}
		cur = next
	}
	return cur
}

// Metadata carries the host's authentication change flag.
type Metadata struct {
	NewValue any `json:"newValue"`
}

// InstallRequest is the body of POST / sent by the dashboard host.
type InstallRequest struct {
	Install         *InstallDocument `json:"install"`
	Metadata        Metadata         `json:"metadata"`
	Authentications json.RawMessage  `json:"authentications,omitempty"`
}

// ParseInstallRequest decodes an install request body.
func ParseInstallRequest(data []byte) (*InstallRequest, error) {
	var req InstallRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// LoggingIn reports whether metadata.newValue is truthy.
func (r *InstallRequest) LoggingIn() bool {
	return truthy(r.Metadata.NewValue)
}

// Token extracts authentications.account.token.
func (r *InstallRequest) Token() (Token, error) {
	if len(r.Authentications) == 0 || string(r.Authentications) == "null" {
		return Token{}, ErrMissingToken
	}

	var auth struct {
		Account *struct {
			Token json.RawMessage `json:"token"`
		} `json:"account"`
	}
	if err := json.Unmarshal(r.Authentications, &auth); err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if auth.Account == nil || len(auth.Account.Token) == 0 || string(auth.Account.Token) == "null" {
		return Token{}, ErrMissingToken
	}

	var token Token
	if err := json.Unmarshal(auth.Account.Token, &token); err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if strings.TrimSpace(token.Token) == "" {
		return Token{}, fmt.Errorf("%w: empty token", ErrMalformedToken)
	}
	return token, nil
}

// truthy mirrors the host's loose boolean semantics for metadata.newValue.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}
