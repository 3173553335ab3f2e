package calculation

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/armadaproject/abilaunch/internal/common/util"
	"github.com/armadaproject/abilaunch/internal/parameters"
)

const inputHeader = "# ABINIT input written by abilaunch\n"

// WriteInput writes params as an ABINIT input file, one variable per line in name order.
// Numeric tuples are written space separated; a tuple of tuples is written one row per line.
func WriteInput(w io.Writer, params parameters.Set) error {
	var b strings.Builder
	b.WriteString(inputHeader)
	for _, name := range params.Names() {
		rows, err := formatRows(params[name])
		if err != nil {
			return errors.Wrapf(err, "error writing variable %s", name)
		}
		if len(rows) == 1 {
			fmt.Fprintf(&b, "%s %s\n", name, rows[0])
			continue
		}
		b.WriteString(name + "\n")
		for _, row := range rows {
			fmt.Fprintf(&b, "    %s\n", row)
		}
	}
	_, err := io.WriteString(w, b.String())
	return errors.WithStack(err)
}

func formatRows(value interface{}) ([]string, error) {
	v := reflect.ValueOf(value)
	if !isList(v) {
		s, err := formatScalar(value)
		if err != nil {
			return nil, err
		}
		return []string{s}, nil
	}
	if v.Len() == 0 {
		return nil, errors.New("empty list")
	}

	nested := isList(reflect.ValueOf(v.Index(0).Interface()))
	if !nested {
		s, err := formatList(v)
		if err != nil {
			return nil, err
		}
		return []string{s}, nil
	}
	rows := make([]string, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		row := reflect.ValueOf(v.Index(i).Interface())
		if !isList(row) {
			return nil, errors.Errorf("row %d is not a list", i)
		}
		s, err := formatList(row)
		if err != nil {
			return nil, err
		}
		rows = append(rows, s)
	}
	return rows, nil
}

func formatList(v reflect.Value) (string, error) {
	values := make([]string, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		s, err := formatScalar(v.Index(i).Interface())
		if err != nil {
			return "", err
		}
		values = append(values, s)
	}
	return strings.Join(values, " "), nil
}

func formatScalar(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", errors.New("missing value")
	case string:
		if strings.Contains(v, `"`) {
			return "", errors.Errorf("string %q contains a double quote", v)
		}
		return `"` + v + `"`, nil
	case bool:
		if v {
			return "1", nil
		}
		return "0", nil
	case float32:
		return formatFloat(float64(v)), nil
	case float64:
		return formatFloat(v), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(v), nil
	}
	f, err := cast.ToFloat64E(value)
	if err != nil {
		return "", errors.Errorf("unsupported value %v of type %T", value, value)
	}
	return formatFloat(f), nil
}

// formatFloat always yields something ABINIT reads as a real, e.g. 10.0 rather than 10.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

func isList(v reflect.Value) bool {
	return v.IsValid() && (v.Kind() == reflect.Slice || v.Kind() == reflect.Array)
}

// ReadInput reads back an input file in the subset of the ABINIT syntax written by WriteInput,
// plus comments starting with # or !, Fortran exponents (1.0d-6) and repetitions (3*10).
func ReadInput(path string) (parameters.Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer util.CloseResource(path, f)
	params, err := ParseInput(f)
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing %s", path)
	}
	return params, nil
}

func ParseInput(r io.Reader) (parameters.Set, error) {
	params := parameters.Set{}
	var (
		name   string
		values []interface{}
	)
	flush := func() error {
		if name == "" {
			return nil
		}
		if len(values) == 0 {
			return errors.Errorf("variable %s has no value", name)
		}
		if _, ok := params[name]; ok {
			return errors.Errorf("variable %s is defined more than once", name)
		}
		if len(values) == 1 {
			params[name] = values[0]
		} else {
			params[name] = values
		}
		name, values = "", nil
		return nil
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		tokens, err := tokenize(scanner.Text())
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
		for _, token := range tokens {
			if isName(token) {
				if err := flush(); err != nil {
					return nil, errors.Wrapf(err, "line %d", lineNo)
				}
				name = token
				continue
			}
			if name == "" {
				return nil, errors.Errorf("line %d: value %s before any variable name", lineNo, token)
			}
			parsed, err := parseValues(token)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: variable %s", lineNo, name)
			}
			values = append(values, parsed...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return params, nil
}

// tokenize splits a line on white space, keeping quoted strings (quotes included) as one token
// and dropping comments.
func tokenize(line string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	inQuotes := false
	for _, c := range line {
		switch {
		case c == '"':
			current.WriteRune(c)
			if inQuotes {
				tokens = append(tokens, current.String())
				current.Reset()
			}
			inQuotes = !inQuotes
		case inQuotes:
			current.WriteRune(c)
		case c == '#' || c == '!':
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
			}
			return tokens, nil
		case unicode.IsSpace(c):
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(c)
		}
	}
	if inQuotes {
		return nil, errors.New("unterminated string")
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens, nil
}

func isName(token string) bool {
	first := []rune(token)[0]
	return unicode.IsLetter(first) || first == '_'
}

func parseValues(token string) ([]interface{}, error) {
	if strings.HasPrefix(token, `"`) {
		return []interface{}{strings.Trim(token, `"`)}, nil
	}
	if count, value, ok := strings.Cut(token, "*"); ok {
		n, err := strconv.Atoi(count)
		if err != nil || n < 1 {
			return nil, errors.Errorf("invalid repetition %s", token)
		}
		parsed, err := parseNumber(value)
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, n)
		for i := range values {
			values[i] = parsed
		}
		return values, nil
	}
	parsed, err := parseNumber(token)
	if err != nil {
		return nil, err
	}
	return []interface{}{parsed}, nil
}

func parseNumber(token string) (interface{}, error) {
	if i, err := strconv.Atoi(token); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(strings.NewReplacer("d", "e", "D", "e").Replace(token), 64)
	if err != nil {
		return nil, errors.Errorf("invalid number %s", token)
	}
	return f, nil
}
