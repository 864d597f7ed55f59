package translation

import (
	"strings"

	"golang.org/x/text/language"
)

// LanguageID 与 *_translations 表中的 language_id 列一一对应
type LanguageID uint8

const (
	Arabic  LanguageID = 1
	English LanguageID = 2
)

const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldText        = "text"
	FieldExplanation = "explanation"
)

// Untitled 标题字段在两种语言都缺失时的占位值
const Untitled = "Untitled"

// fallbackOrder 请求语言缺失时依次尝试的语言
var fallbackOrder = map[LanguageID][]LanguageID{
	Arabic:  {Arabic, English},
	English: {English, Arabic},
}

var supported = []language.Tag{language.English, language.Arabic}

var matcher = language.NewMatcher(supported)

func (l LanguageID) Code() string {
	switch l {
	case Arabic:
		return "ar"
	case English:
		return "en"
	}
	return ""
}

func (l LanguageID) Valid() bool {
	_, ok := fallbackOrder[l]
	return ok
}

// ParseLocale 只接受 "ar" / "en"（大小写不敏感）
func ParseLocale(s string) (LanguageID, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ar":
		return Arabic, true
	case "en":
		return English, true
	}
	return 0, false
}

// FromAcceptLanguage 按 Accept-Language 头匹配语言，无法匹配时默认英语
func FromAcceptLanguage(header string) LanguageID {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return English
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return English
	}
	if supported[idx] == language.Arabic {
		return Arabic
	}
	return English
}

// Fields 一行翻译的文本字段；nil 表示该字段缺失，空串表示显式置空
type Fields map[string]*string

// Set 一个节点的全部翻译行，按语言索引
type Set map[LanguageID]Fields

// Row 由各 *_translations 模型实现
type Row interface {
	Language() LanguageID
	TextFields() Fields
}

// FromRows 将翻译行转换为 Set，同一语言出现多行时保留第一行
func FromRows[T Row](rows []T) Set {
	set := make(Set, len(rows))
	for _, r := range rows {
		lang := r.Language()
		if _, exists := set[lang]; exists {
			continue
		}
		set[lang] = r.TextFields()
	}
	return set
}

type Resolved struct {
	Locale       LanguageID            `json:"-"`
	LocaleCode   string                `json:"locale"`
	// FallbackUsed 任一字段取自非请求语言时为 true
	FallbackUsed bool                  `json:"fallbackUsed"`
	Fields       map[string]string     `json:"fields"`
	// FieldLocales 每个字段实际取值的语言；占位值不出现在这里
	FieldLocales map[string]LanguageID `json:"-"`
}

func (r Resolved) Get(field string) string {
	return r.Fields[field]
}

// Sentinel 字段缺失时返回的值
func Sentinel(field string) string {
	if field == FieldTitle {
		return Untitled
	}
	return ""
}

// Resolve 按请求语言选取翻译行，缺失时回退到另一语言，两者都缺失时返回占位值。
// 主语言行中存在的字段（包括空串）优先于回退行。
func Resolve(set Set, locale LanguageID, fields ...string) Resolved {
	order, ok := fallbackOrder[locale]
	if !ok {
		order = fallbackOrder[English]
		locale = English
	}

	out := Resolved{
		Fields:       make(map[string]string, len(fields)),
		FieldLocales: make(map[string]LanguageID, len(fields)),
	}

	var chosen LanguageID
	for _, lang := range order {
		if _, exists := set[lang]; exists {
			chosen = lang
			break
		}
	}
	out.Locale = chosen
	out.LocaleCode = chosen.Code()
	out.FallbackUsed = chosen != 0 && chosen != locale

	for _, field := range fields {
		v, from := resolveField(set, order, field)
		out.Fields[field] = v
		if from == 0 {
			continue
		}
		out.FieldLocales[field] = from
		if from != locale {
			out.FallbackUsed = true
		}
	}
	return out
}

func resolveField(set Set, order []LanguageID, field string) (string, LanguageID) {
	for _, lang := range order {
		row, exists := set[lang]
		if !exists {
			continue
		}
		if v, ok := row[field]; ok && v != nil {
			return *v, lang
		}
	}
	return Sentinel(field), 0
}
