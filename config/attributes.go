package config

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// AttributeMap is a loosely typed set of config fields keyed by their JSON names, as found in
// robot config blobs or on the command line.
type AttributeMap map[string]interface{}

// FromAttributes applies attrs over base. Values may be loosely typed ("8" for 8) and unknown keys
// are rejected. The result is validated.
func FromAttributes(base Config, attrs AttributeMap) (Config, error) {
	cfg := base
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       durationHook,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, err
	}
	if err := decoder.Decode(map[string]interface{}(attrs)); err != nil {
		return Config{}, errors.Wrap(err, "cannot decode config attributes")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseOverrides turns "key=value" pairs into typed attributes, using the field types of Config.
func ParseOverrides(pairs []string) (AttributeMap, error) {
	kinds := fieldKinds()
	attrs := AttributeMap{}
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.Errorf("override %q is not of the form key=value", pair)
		}
		kind, known := kinds[key]
		if !known {
			return nil, errors.Errorf("unknown config field %q", key)
		}
		raw = strings.TrimSpace(raw)

		var (
			val interface{}
			err error
		)
		switch kind {
		case reflect.Bool:
			val, err = cast.ToBoolE(raw)
		case reflect.Int:
			val, err = cast.ToIntE(raw)
		case reflect.Float64:
			val, err = cast.ToFloat64E(raw)
		case reflect.Int64:
			val, err = toDuration(raw)
		default:
			val = raw
		}
		if err != nil {
			return nil, errors.Wrapf(err, "bad value for %q", key)
		}
		attrs[key] = val
	}
	return attrs, nil
}

// fieldKinds maps each JSON field name of Config to its kind.
func fieldKinds() map[string]reflect.Kind {
	typ := reflect.TypeOf(Config{})
	kinds := make(map[string]reflect.Kind, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		kinds[name] = field.Type.Kind()
	}
	return kinds
}

// FieldNames returns the JSON names of every config field.
func FieldNames() []string {
	typ := reflect.TypeOf(Config{})
	names := make([]string, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		name, _, _ := strings.Cut(typ.Field(i).Tag.Get("json"), ",")
		names = append(names, name)
	}
	return names
}

var durationType = reflect.TypeOf(Duration(0))

func durationHook(_, to reflect.Type, data interface{}) (interface{}, error) {
	if to != durationType {
		return data, nil
	}
	return toDuration(data)
}

func toDuration(raw interface{}) (Duration, error) {
	switch v := raw.(type) {
	case Duration:
		return v, nil
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, err
		}
		return Duration(d), nil
	default:
		d, err := cast.ToDurationE(v)
		if err != nil {
			return 0, err
		}
		return Duration(d), nil
	}
}
