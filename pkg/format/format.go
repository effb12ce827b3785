// pkg/format/format.go
package format

import (
	"fmt"
	"strings"
)

// segment часть шаблона: либо литерал, либо именованный плейсхолдер
type segment struct {
	literal     string
	placeholder string
}

func (s segment) isPlaceholder() bool {
	return s.placeholder != ""
}

// Pattern скомпилированный шаблон вида "hello-button:{random_number}".
// Неизменяем после Compile, безопасен для конкурентного использования.
type Pattern struct {
	raw      string
	segments []segment
	names    []string
}

// Compile разбирает шаблон на литералы и плейсхолдеры {name}
func Compile(format string) (*Pattern, error) {
	p := &Pattern{raw: format}
	seen := make(map[string]bool)

	var literal strings.Builder
	flushLiteral := func() {
		if literal.Len() > 0 {
			p.segments = append(p.segments, segment{literal: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(format); i++ {
		switch format[i] {
		case '}':
			return nil, &MalformedPatternError{Format: format, Pos: i, Reason: "лишняя закрывающая скобка"}
		case '{':
			end := -1
			for j := i + 1; j < len(format); j++ {
				if format[j] == '{' {
					return nil, &MalformedPatternError{Format: format, Pos: j, Reason: "вложенный плейсхолдер"}
				}
				if format[j] == '}' {
					end = j
					break
				}
			}
			if end < 0 {
				return nil, &MalformedPatternError{Format: format, Pos: i, Reason: "незакрытый плейсхолдер"}
			}

			name := format[i+1 : end]
			if name == "" {
				return nil, &MalformedPatternError{Format: format, Pos: i, Reason: "пустое имя плейсхолдера"}
			}
			if seen[name] {
				return nil, &MalformedPatternError{Format: format, Pos: i, Reason: fmt.Sprintf("повторное имя плейсхолдера %q", name)}
			}

			flushLiteral()
			// Два плейсхолдера подряд нельзя разделить без литерала между ними
			if n := len(p.segments); n > 0 && p.segments[n-1].isPlaceholder() {
				return nil, &MalformedPatternError{Format: format, Pos: i, Reason: "плейсхолдеры без литерала между ними"}
			}

			seen[name] = true
			p.names = append(p.names, name)
			p.segments = append(p.segments, segment{placeholder: name})
			i = end
		default:
			literal.WriteByte(format[i])
		}
	}
	flushLiteral()

	return p, nil
}

// MustCompile как Compile, но паникует при ошибке
func MustCompile(format string) *Pattern {
	p, err := Compile(format)
	if err != nil {
		panic(err)
	}
	return p
}

// String возвращает исходный шаблон
func (p *Pattern) String() string {
	return p.raw
}

// Placeholders возвращает имена плейсхолдеров в порядке следования
func (p *Pattern) Placeholders() []string {
	names := make([]string, len(p.names))
	copy(names, p.names)
	return names
}

// IsLiteral true если в шаблоне нет плейсхолдеров
func (p *Pattern) IsLiteral() bool {
	return len(p.names) == 0
}

// Match сопоставляет кандидата с шаблоном слева направо.
// Плейсхолдер захватывает символы до первого вхождения следующего литерала,
// последний плейсхолдер забирает остаток строки.
func (p *Pattern) Match(candidate string) (Params, bool) {
	if candidate == "" {
		if len(p.segments) == 0 {
			return Params{}, true
		}
		return nil, false
	}

	if p.IsLiteral() {
		if candidate == p.raw {
			return Params{}, true
		}
		return nil, false
	}

	params := make(Params, len(p.names))
	cursor := 0

	for i, seg := range p.segments {
		rest := candidate[cursor:]

		if !seg.isPlaceholder() {
			if !strings.HasPrefix(rest, seg.literal) {
				return nil, false
			}
			cursor += len(seg.literal)
			continue
		}

		if i == len(p.segments)-1 {
			params[seg.placeholder] = rest
			cursor = len(candidate)
			continue
		}

		// Compile гарантирует, что следом идет литерал
		next := p.segments[i+1].literal
		idx := strings.Index(rest, next)
		if idx < 0 {
			return nil, false
		}
		params[seg.placeholder] = rest[:idx]
		cursor += idx
	}

	if cursor != len(candidate) {
		return nil, false
	}
	return params, true
}

// Build собирает строку (например custom_id кнопки) из шаблона и значений.
// Значение не должно содержать следующий за плейсхолдером литерал,
// иначе Match не сможет разобрать результат обратно.
func (p *Pattern) Build(values Params) (string, error) {
	var b strings.Builder

	for i, seg := range p.segments {
		if !seg.isPlaceholder() {
			b.WriteString(seg.literal)
			continue
		}

		value, ok := values[seg.placeholder]
		if !ok {
			return "", fmt.Errorf("шаблон %q: не задано значение для %q", p.raw, seg.placeholder)
		}
		if i+1 < len(p.segments) {
			next := p.segments[i+1].literal
			if strings.Contains(value, next) {
				return "", fmt.Errorf("шаблон %q: значение %q для %q содержит разделитель %q",
					p.raw, value, seg.placeholder, next)
			}
		}
		b.WriteString(value)
	}

	return b.String(), nil
}

// Sample строит пример строки, подставляя во все плейсхолдеры fill.
// Используется для предупреждения о перекрытии шаблонов при регистрации.
func (p *Pattern) Sample(fill string) string {
	var b strings.Builder
	for _, seg := range p.segments {
		if seg.isPlaceholder() {
			b.WriteString(fill)
		} else {
			b.WriteString(seg.literal)
		}
	}
	return b.String()
}
