// pkg/format/params.go
package format

import "strconv"

// Params извлеченные значения плейсхолдеров: имя -> сырая подстрока
type Params map[string]string

// Get возвращает значение и признак наличия
func (p Params) Get(name string) (string, bool) {
	v, ok := p[name]
	return v, ok
}

// Int приводит параметр к int
func (p Params) Int(name string) (int, error) {
	raw, ok := p[name]
	if !ok {
		return 0, &ParameterTypeError{Name: name, Type: "int", Err: errMissing}
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ParameterTypeError{Name: name, Value: raw, Type: "int", Err: err}
	}
	return v, nil
}

// Int64 приводит параметр к int64 (snowflake ID и т.п.)
func (p Params) Int64(name string) (int64, error) {
	raw, ok := p[name]
	if !ok {
		return 0, &ParameterTypeError{Name: name, Type: "int64", Err: errMissing}
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &ParameterTypeError{Name: name, Value: raw, Type: "int64", Err: err}
	}
	return v, nil
}

// Bool приводит параметр к bool
func (p Params) Bool(name string) (bool, error) {
	raw, ok := p[name]
	if !ok {
		return false, &ParameterTypeError{Name: name, Type: "bool", Err: errMissing}
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &ParameterTypeError{Name: name, Value: raw, Type: "bool", Err: err}
	}
	return v, nil
}
