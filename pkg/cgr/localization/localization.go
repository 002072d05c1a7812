package localization

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
)

const DefaultLocale string = "defaultLocale"

// LocalizedValue holds a default text and optional per locale overrides
type LocalizedValue struct {
	localizedValue string
	localeValues   map[string]string
}

func New(value string) LocalizedValue {
	return LocalizedValue{
		localizedValue: value,
		localeValues:   map[string]string{DefaultLocale: value},
	}
}

func NewWithLocales(value string, locales map[string]string) LocalizedValue {
	lv := New(value)
	for locale, v := range locales {
		lv.localeValues[locale] = v
	}
	return lv
}

// Value returns the default value
func (lv LocalizedValue) Value() string {
	return lv.localizedValue
}

// ValueFor returns the value for the given locale, falling back on the default value
func (lv LocalizedValue) ValueFor(locale string) string {
	if v, ok := lv.localeValues[locale]; ok {
		return v
	}

	// en-US falls back on en before the default value
	if idx := strings.IndexAny(locale, "-_"); idx > 0 {
		if v, ok := lv.localeValues[locale[:idx]]; ok {
			return v
		}
	}

	return lv.localizedValue
}

func (lv *LocalizedValue) SetValue(value string) {
	lv.localizedValue = value
	lv.SetLocaleValue(DefaultLocale, value)
}

func (lv *LocalizedValue) SetLocaleValue(locale, value string) {
	if lv.localeValues == nil {
		lv.localeValues = map[string]string{}
	}
	lv.localeValues[locale] = value
}

func (lv LocalizedValue) Locales() []string {
	return slices.Sorted(maps.Keys(lv.localeValues))
}

func (lv LocalizedValue) Equal(other LocalizedValue) bool {
	return lv.localizedValue == other.localizedValue && maps.Equal(lv.localeValues, other.localeValues)
}

type localizedValueJSON struct {
	LocalizedValue string            `json:"localizedValue"`
	LocaleValues   map[string]string `json:"localeValues"`
}

func (lv LocalizedValue) MarshalJSON() ([]byte, error) {
	values := lv.localeValues
	if values == nil {
		values = map[string]string{}
	}

	return json.Marshal(localizedValueJSON{
		LocalizedValue: lv.localizedValue,
		LocaleValues:   values,
	})
}

func (lv *LocalizedValue) UnmarshalJSON(data []byte) error {
	// a bare string is accepted as the default value
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*lv = New(text)
		return nil
	}

	v := localizedValueJSON{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	lv.localizedValue = v.LocalizedValue
	lv.localeValues = map[string]string{}
	for locale, value := range v.LocaleValues {
		lv.localeValues[locale] = value
	}

	return nil
}
