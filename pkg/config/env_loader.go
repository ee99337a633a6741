/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides overwrites fields of dst from environment variables.
// Variable names are derived from json tags, uppercased, with nested struct
// fields joined by underscores. For example, with prefix "BOOTBEACON_" the
// field Database.Host maps to BOOTBEACON_DATABASE_HOST.
func ApplyEnvOverrides(prefix string, dst interface{}) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return ErrInvalidConfigPtr
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return ErrInvalidConfigPtr
	}

	return applyEnvStruct(v, prefix)
}

func applyEnvStruct(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}

		tag := t.Field(i).Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}

		name := strings.Split(tag, ",")[0]
		envName := prefix + strings.ToUpper(name)

		if isStructField(field) {
			if field.Kind() == reflect.Ptr {
				if field.IsNil() {
					if os.Getenv(envName) == "" && !envPrefixSet(envName+"_") {
						continue
					}

					field.Set(reflect.New(field.Type().Elem()))
				}

				if err := applyEnvStruct(field.Elem(), envName+"_"); err != nil {
					return err
				}
			} else if err := applyEnvStruct(field, envName+"_"); err != nil {
				return err
			}

			continue
		}

		value := os.Getenv(envName)
		if value == "" {
			continue
		}

		if err := setEnvField(field, value); err != nil {
			return fmt.Errorf("env %s: %w", envName, err)
		}
	}

	return nil
}

func isStructField(field reflect.Value) bool {
	if field.Type() == reflect.TypeOf(time.Time{}) {
		return false
	}

	return field.Kind() == reflect.Struct ||
		(field.Kind() == reflect.Ptr && field.Type().Elem().Kind() == reflect.Struct)
}

// envPrefixSet reports whether any environment variable starts with prefix,
// so nil nested structs are only allocated when something will fill them.
func envPrefixSet(prefix string) bool {
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, prefix) {
			return true
		}
	}

	return false
}

func setEnvField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}

		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// Duration-typed fields accept Go duration strings.
		if field.Type().String() == "time.Duration" || field.Type().String() == "models.Duration" {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}

			field.SetInt(int64(d))

			return nil
		}

		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}

		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}

		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}

		field.SetFloat(f)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s", field.Type())
		}

		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		field.Set(reflect.ValueOf(parts))
	default:
		return fmt.Errorf("unsupported field kind %s", field.Kind())
	}

	return nil
}
