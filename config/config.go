// Package config loads settings structs from environment variables and command
// line flags.
package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stoewer/go-strcase"

	"github.com/a-peyrard/godeco/option"
)

type (
	Options struct {
		prefix string
		flags  *pflag.FlagSet
	}

	// WithDefault is implemented by settings filling their own zero values.
	WithDefault interface {
		ApplyDefault()
	}
)

func WithEnvPrefix(prefix string) option.Option[Options] {
	return func(opts *Options) {
		opts.prefix = prefix
	}
}

// WithFlags binds the flags of the set, a flag named "output-dir" feeding the key
// "output_dir". A flag set on the command line wins over the environment.
func WithFlags(flags *pflag.FlagSet) option.Option[Options] {
	return func(opts *Options) {
		opts.flags = flags
	}
}

// Load builds a T from the environment and the flags, then applies the defaults of
// every nested struct implementing WithDefault. Nil struct pointers are allocated.
func Load[T any](opts ...option.Option[Options]) (*T, error) {
	options := option.Build(&Options{}, opts...)

	v := viper.New()
	v.SetEnvPrefix(options.prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var vT T
	bindEnvs(v, options.prefix, reflect.New(reflect.TypeOf(vT)).Elem().Interface())

	if options.flags != nil {
		var bindErr error
		options.flags.VisitAll(func(flag *pflag.Flag) {
			if err := v.BindPFlag(strings.ReplaceAll(flag.Name, "-", "_"), flag); err != nil && bindErr == nil {
				bindErr = err
			}
		})
		if bindErr != nil {
			return nil, fmt.Errorf("unable to bind flags:\n\t%w", bindErr)
		}
	}

	if err := v.Unmarshal(&vT); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config:\n\t%w", err)
	}

	applyDefaults(reflect.ValueOf(&vT))

	return &vT, nil
}

var withDefaultType = reflect.TypeOf((*WithDefault)(nil)).Elem()

func applyDefaults(val reflect.Value) {
	if val.Kind() == reflect.Pointer && val.IsNil() && val.CanSet() && val.Type().Elem().Kind() == reflect.Struct {
		val.Set(reflect.New(val.Type().Elem()))
	}
	nilable := val.Kind() == reflect.Pointer || val.Kind() == reflect.Interface
	if val.Type().Implements(withDefaultType) && !(nilable && val.IsNil()) {
		val.Interface().(WithDefault).ApplyDefault()
	}

	for val.Kind() == reflect.Pointer || val.Kind() == reflect.Interface {
		val = val.Elem()
	}
	if !val.IsValid() || val.Kind() != reflect.Struct {
		return
	}
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		if typ.Field(i).IsExported() {
			applyDefaults(val.Field(i))
		}
	}
}

func bindEnvs(viperI *viper.Viper, envPrefix string, myStruct any, parts ...string) {
	ifv := reflect.ValueOf(myStruct)
	ift := reflect.TypeOf(myStruct)
	for i := 0; i < ift.NumField(); i++ {
		v := ifv.Field(i)
		t := ift.Field(i)
		tv, ok := t.Tag.Lookup("mapstructure")
		if !ok {
			tv = t.Name
		}
		switch v.Kind() {
		case reflect.Struct:
			bindEnvs(viperI, envPrefix, v.Interface(), append(parts, tv)...)
		case reflect.Pointer:
			if t.Type.Elem().Kind() == reflect.Struct {
				bindEnvs(viperI, envPrefix, reflect.Zero(t.Type.Elem()).Interface(), append(parts, tv)...)
			}
		default:
			key := strings.Join(append(parts, tv), ".")
			join := strings.Join(append(parts, strcase.UpperSnakeCase(tv)), ".")
			_ = viperI.BindEnv(key, mergeWithEnvPrefix(envPrefix, join))
		}
	}
}

func mergeWithEnvPrefix(envPrefix string, in string) string {
	if envPrefix != "" {
		return strings.ToUpper(envPrefix + "_" + in)
	}

	return strings.ToUpper(in)
}
