package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// envBinding ties a settable config field to the variable named by its env tag
type envBinding struct {
	variable string
	key      string // dotted yaml path, used in error messages
	field    reflect.Value
}

// loadFromEnv applies every set variable and reports all bad values at once
func loadFromEnv(cfg *Config) error {
	var errs []error
	for _, b := range envBindings(reflect.ValueOf(cfg).Elem(), "") {
		raw, ok := os.LookupEnv(b.variable)
		if !ok || raw == "" {
			continue
		}
		if err := parseEnvValue(b.field, raw); err != nil {
			errs = append(errs, fmt.Errorf("%s (%s): %w", b.variable, b.key, err))
		}
	}
	return errors.Join(errs...)
}

func envBindings(v reflect.Value, prefix string) []envBinding {
	var out []envBinding
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}

		key := strings.SplitN(sf.Tag.Get("yaml"), ",", 2)[0]
		if key == "" {
			key = strings.ToLower(sf.Name)
		}
		if prefix != "" {
			key = prefix + "." + key
		}

		if field.Kind() == reflect.Struct && field.Type() != durationType {
			out = append(out, envBindings(field, key)...)
			continue
		}
		if name := sf.Tag.Get("env"); name != "" {
			out = append(out, envBinding{variable: name, key: key, field: field})
		}
	}
	return out
}

// parseEnvValue converts raw into the field's type. Durations use Go
// syntax ("5s") and string lists are comma separated with blanks dropped.
func parseEnvValue(field reflect.Value, raw string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(strings.TrimSpace(raw))
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(f)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported list type %s", field.Type())
		}
		field.Set(reflect.ValueOf(splitList(raw)))
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
