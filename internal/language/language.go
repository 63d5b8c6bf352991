package language

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var ErrUnknownLanguage = errors.New("unknown language")

// Selection is a resolved target. An empty Code means no translation.
type Selection struct {
	DisplayName string
	Code        string
}

var None = Selection{DisplayName: "None"}

func (s Selection) Translates() bool {
	return s.Code != ""
}

// NativeName is the language's name in the language itself.
func (s Selection) NativeName() string {
	if s.Code == "" {
		return ""
	}
	tag, err := language.Parse(s.Code)
	if err != nil {
		return ""
	}
	return display.Self.Name(tag)
}

var codes = []string{
	"af", "am", "ar", "az", "be", "bg", "bn", "bs", "ca", "cs", "cy", "da", "de", "el",
	"en", "eo", "es", "et", "eu", "fa", "fi", "fr", "ga", "gl", "gu", "ha", "he", "hi",
	"hr", "ht", "hu", "hy", "id", "ig", "is", "it", "ja", "jv", "ka", "kk", "km", "kn",
	"ko", "ku", "ky", "la", "lb", "lo", "lt", "lv", "mg", "mi", "mk", "ml", "mn", "mr",
	"ms", "mt", "my", "ne", "nl", "no", "ny", "pa", "pl", "ps", "pt", "ro", "ru", "sd",
	"si", "sk", "sl", "sm", "sn", "so", "sq", "sr", "st", "su", "sv", "sw", "ta", "te",
	"tg", "th", "tr", "uk", "ur", "uz", "vi", "xh", "yi", "yo", "zh-CN", "zh-TW", "zu",
}

var nameOverrides = map[string]string{
	"zh-CN": "Chinese (Simplified)",
	"zh-TW": "Chinese (Traditional)",
}

var (
	catalog []Selection
	byCode  map[string]Selection
	byName  map[string]Selection
)

func init() {
	namer := display.English.Languages()
	catalog = make([]Selection, 0, len(codes))
	byCode = make(map[string]Selection, len(codes))
	byName = make(map[string]Selection, len(codes))

	for _, code := range codes {
		name, ok := nameOverrides[code]
		if !ok {
			name = namer.Name(language.MustParse(code))
		}
		if name == "" {
			name = code
		}

		sel := Selection{DisplayName: name, Code: code}
		catalog = append(catalog, sel)
		byCode[strings.ToLower(code)] = sel
		byName[strings.ToLower(name)] = sel
	}

	slices.SortFunc(catalog, func(a, b Selection) int {
		return strings.Compare(a.DisplayName, b.DisplayName)
	})
}

// Catalog lists the supported targets sorted by display name.
func Catalog() []Selection {
	return slices.Clone(catalog)
}

func Default() Selection {
	return byCode["en"]
}

// Resolve accepts a code ("fr", "zh-cn", "fr-CA") or an English display name
// ("French"). Empty input and "none" resolve to None.
func Resolve(input string) (Selection, error) {
	key := strings.ToLower(strings.TrimSpace(input))
	switch key {
	case "", "none", "off":
		return None, nil
	}

	if sel, ok := byCode[key]; ok {
		return sel, nil
	}
	if sel, ok := byName[key]; ok {
		return sel, nil
	}

	if tag, err := language.Parse(key); err == nil {
		base, _ := tag.Base()
		if sel, ok := byCode[base.String()]; ok {
			return sel, nil
		}
	}

	return Selection{}, fmt.Errorf("%w: %q (run `vidsub languages` for the list)", ErrUnknownLanguage, input)
}
