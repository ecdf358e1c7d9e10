package models

import (
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// CustomChoice is the sentinel key at index 0 of every [ChoiceSchema].
const CustomChoice = "custom"

// Kind names a widget choice slot.
type Kind string

const (
	KindPlaylist Kind = "playlist"
	KindArtist   Kind = "artist"
)

// Kinds lists the choice slots in the order they are populated.
var Kinds = []Kind{KindPlaylist, KindArtist}

// Prompt returns the display name of the "custom" entry for k.
func (k Kind) Prompt() string {
	switch k {
	case KindPlaylist:
		return "Choose a playlist from a URI..."
	case KindArtist:
		return "Choose an artist from a URI..."
	default:
		return fmt.Sprintf("Choose a %s from a URI...", string(k))
	}
}

// Item is an upstream playlist or artist reduced to its choice key and display name.
type Item struct {
	Key  string
	Name string
}

// ChoiceSchema is the enum/enumNames pair rendered by the dashboard as a select box.
type ChoiceSchema struct {
	Enum      []string          `json:"enum"`
	EnumNames map[string]string `json:"enumNames"`
}

// DefaultChoiceSchema returns the single-entry schema for k.
func DefaultChoiceSchema(k Kind) ChoiceSchema {
	return ChoiceSchema{
		Enum:      []string{CustomChoice},
		EnumNames: map[string]string{CustomChoice: k.Prompt()},
	}
}

// BuildChoiceSchema appends items to the default schema for k, ordered by name with English collation.
//
// Items without a key are skipped and repeated keys keep their first position.
func BuildChoiceSchema(k Kind, items []Item) ChoiceSchema {
	cs := DefaultChoiceSchema(k)

	sorted := SortItems(items)
	for _, item := range sorted {
		if item.Key == "" {
			continue
		}
		if _, seen := cs.EnumNames[item.Key]; seen {
			continue
		}
		cs.Enum = append(cs.Enum, item.Key)
		cs.EnumNames[item.Key] = item.Name
	}
	return cs
}

// SortItems returns a copy of items sorted by display name.
//
// A [collate.Collator] is not safe for concurrent use so one is built per call.
func SortItems(items []Item) []Item {
	sorted := make([]Item, len(items))
	copy(sorted, items)

	c := collate.New(language.English)
	sort.SliceStable(sorted, func(i, j int) bool {
		return c.CompareString(sorted[i].Name, sorted[j].Name) < 0
	})
	return sorted
}

// Default returns the first real choice, if any.
func (cs ChoiceSchema) Default() (string, bool) {
	if len(cs.Enum) < 2 {
		return "", false
	}
	return cs.Enum[1], true
}

// Len returns the number of choices including "custom".
func (cs ChoiceSchema) Len() int {
	return len(cs.Enum)
}

// Name returns the display name for key.
func (cs ChoiceSchema) Name(key string) string {
	return cs.EnumNames[key]
}

func (cs ChoiceSchema) enumValue() []any {
	out := make([]any, len(cs.Enum))
	for i, v := range cs.Enum {
		out[i] = v
	}
	return out
}

func (cs ChoiceSchema) enumNamesValue() map[string]any {
	out := make(map[string]any, len(cs.EnumNames))
	for k, v := range cs.EnumNames {
		out[k] = v
	}
	return out
}

// choiceSchemaFrom reads a schema slot leniently, ignoring non-string entries.
func choiceSchemaFrom(slot map[string]any) ChoiceSchema {
	cs := ChoiceSchema{EnumNames: map[string]string{}}
	if slot == nil {
		return cs
	}

	switch enum := slot["enum"].(type) {
	case []any:
		for _, v := range enum {
			if s, ok := v.(string); ok {
				cs.Enum = append(cs.Enum, s)
			}
		}
	case []string:
		cs.Enum = append(cs.Enum, enum...)
	}

	switch names := slot["enumNames"].(type) {
	case map[string]any:
		for k, v := range names {
			if s, ok := v.(string); ok {
				cs.EnumNames[k] = s
			}
		}
	case map[string]string:
		for k, v := range names {
			cs.EnumNames[k] = v
		}
	}
	return cs
}
