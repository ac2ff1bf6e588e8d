package i18n

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Translator renders the message for a key. args fill positional
// placeholders such as {0} and {1}.
type Translator interface {
	Message(key string, args []any) string
}

// dictTranslator is the built-in dictionary-based Translator. Keys missing
// from a language fall back to English.
type dictTranslator struct{ lang string }

var en = map[string]string{
	"type":                  "{0} is not of type {1}",
	"required":              "required property {0} not found",
	"additionalProperties":  "property {0} is not defined in the schema and the schema does not allow additional properties",
	"unevaluatedProperties": "property {0} is not evaluated and the schema does not allow unevaluated properties",
	"unevaluatedItems":      "item at index {0} is not evaluated and the schema does not allow unevaluated items",
	"additionalItems":       "item at index {0} is not allowed: the schema does not allow additional items",
	"enum":                  "does not have a value in the enumeration {0}",
	"const":                 "must be the constant value {0}",
	"minimum":               "must have a minimum value of {0}",
	"maximum":               "must have a maximum value of {0}",
	"exclusiveMinimum":      "must have an exclusive minimum value of {0}",
	"exclusiveMaximum":      "must have an exclusive maximum value of {0}",
	"multipleOf":            "must be multiple of {0}",
	"minLength":             "must be at least {0} characters long",
	"maxLength":             "must be at most {0} characters long",
	"pattern":               "does not match the regex pattern {0}",
	"minItems":              "must have at least {0} items but found {1}",
	"maxItems":              "must have at most {0} items but found {1}",
	"uniqueItems":           "must have only unique items in the array",
	"contains":              "does not contain an element that passes these validations: {0}",
	"minContains":           "must contain at least {0} element(s) that passes these validations: {1}",
	"maxContains":           "must contain at most {0} element(s) that passes these validations: {1}",
	"minProperties":         "must have at least {0} properties",
	"maxProperties":         "must have at most {0} properties",
	"dependentRequired":     "has a missing property {0} which is dependent required because {1} is present",
	"dependencies":          "has a missing property {0} which is required because {1} is present",
	"propertyNames":         "property {0} name is not valid: {1}",
	"format":                "does not match the {0} pattern",
	"format.unknown":        "has an unknown format {0}",
	"oneOf":                 "must be valid to one and only one schema, but {0} are valid",
	"oneOf.indexes":         "must be valid to one and only one schema, but {0} are valid with indexes {1}",
	"not":                   "must not be valid to the schema {0}",
	"false":                 "is not allowed by a false schema",
	"discriminator.missing": "required discriminator property {0} not found",
	"discriminator.unknown": "discriminator value {0} does not match any schema",
	"readOnly":              "is a readonly field, it cannot be changed",
	"writeOnly":             "is a write-only field, it cannot appear in this data",
	"contentEncoding":       "does not match content encoding {0}",
	"contentMediaType":      "does not match content media type {0}",
	"nullable":              "is null but the schema is not nullable",
	"listType.set":          "has duplicate items at index {0} and {1} of a set list",
	"listType.map":          "has duplicate entries at index {0} and {1} for map keys {2}",
	"embeddedResource":      "embedded resource is missing {0}",
	"intOrString":           "must be an integer or a string",
}

var ja = map[string]string{
	"type":                  "{0} は {1} 型ではありません",
	"required":              "必須プロパティ {0} が見つかりません",
	"additionalProperties":  "プロパティ {0} はスキーマに定義されておらず、追加プロパティは許可されていません",
	"unevaluatedProperties": "プロパティ {0} は評価されておらず、未評価プロパティは許可されていません",
	"unevaluatedItems":      "インデックス {0} の要素は評価されておらず、未評価要素は許可されていません",
	"enum":                  "列挙 {0} のいずれの値でもありません",
	"const":                 "定数値 {0} でなければなりません",
	"minimum":               "{0} 以上でなければなりません",
	"maximum":               "{0} 以下でなければなりません",
	"minLength":             "{0} 文字以上でなければなりません",
	"maxLength":             "{0} 文字以下でなければなりません",
	"pattern":               "正規表現 {0} に一致しません",
	"minItems":              "要素は {0} 個以上必要ですが {1} 個です",
	"maxItems":              "要素は {0} 個以下でなければなりませんが {1} 個です",
	"uniqueItems":           "配列の要素が重複しています",
	"format":                "{0} 形式に一致しません",
	"oneOf":                 "ちょうど一つのスキーマに適合する必要がありますが {0} 個に適合しました",
	"not":                   "スキーマ {0} に適合してはいけません",
	"discriminator.missing": "必須の判別プロパティ {0} が見つかりません",
	"discriminator.unknown": "判別値 {0} に対応するスキーマがありません",
}

var dictionaries = map[string]map[string]string{"en": en, "ja": ja}

func (t dictTranslator) Message(key string, args []any) string {
	tmpl, ok := dictionaries[t.lang][key]
	if !ok {
		tmpl, ok = en[key]
	}
	if !ok {
		return key
	}
	return Format(tmpl, args)
}

// Format substitutes {n} placeholders with args[n]. Placeholders without a
// matching argument are kept.
func Format(tmpl string, args []any) string {
	if !strings.Contains(tmpl, "{") {
		return tmpl
	}
	var b strings.Builder
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		if c == '{' {
			if end := strings.IndexByte(tmpl[i:], '}'); end > 1 {
				if n, err := strconv.Atoi(tmpl[i+1 : i+end]); err == nil && n >= 0 && n < len(args) {
					b.WriteString(fmt.Sprint(args[n]))
					i += end
					continue
				}
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// For returns the built-in Translator of lang; unknown languages get English.
func For(lang string) Translator {
	if _, ok := dictionaries[lang]; !ok {
		lang = "en"
	}
	return dictTranslator{lang: lang}
}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	SetTranslator(For(lang))
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// Current returns the process-wide Translator.
func Current() Translator {
	mu.RLock()
	defer mu.RUnlock()
	return currentTranslator
}

// T renders key with the current Translator.
func T(key string, args ...any) string { return Current().Message(key, args) }
