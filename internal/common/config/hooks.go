package config

import (
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

var CustomHooks = []viper.DecoderConfigOption{
	viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		LenientBoolHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)),
}

// LenientBoolHookFunc decodes strings into bools the way launcher configuration files spell them:
// "true" in any case is true and every other string, including "yes" and "1", is false.
func LenientBoolHookFunc() mapstructure.DecodeHookFuncType {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		// check that src and target types are valid
		if f.Kind() != reflect.String || t.Kind() != reflect.Bool {
			return data, nil
		}
		return strings.EqualFold(strings.TrimSpace(data.(string)), "true"), nil
	}
}
