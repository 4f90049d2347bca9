package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/olusolaa/miq-converge/internal/core/domain"
	apperrors "github.com/olusolaa/miq-converge/internal/errors"
)

// DecodeHook is shared by the viper settings decode and the desired-state
// decode.
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		normalizeEnumHook(),
	)
}

// normalizeEnumHook lowercases and trims enum-like strings.
func normalizeEnumHook() mapstructure.DecodeHookFuncType {
	stateType := reflect.TypeOf(domain.State(""))
	providerType := reflect.TypeOf(domain.ProviderType(""))
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String {
			return data, nil
		}
		switch to {
		case stateType, providerType:
			return strings.ToLower(strings.TrimSpace(data.(string))), nil
		}
		return data, nil
	}
}

// FromViper decodes settings and connection from v on top of the defaults.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg, viper.DecodeHook(DecodeHook())); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeConfigParseError, "failed to unmarshal configuration")
	}
	return cfg, nil
}

// LoadDesiredYAML reads a YAML desired-state document. A top-level
// "desired" key is honoured so the main config file can carry the
// document inline.
func LoadDesiredYAML(path string) (*DesiredState, error) {
	doc, err := readYAMLDoc(path)
	if err != nil {
		return nil, err
	}
	if _, ok := doc["desired"]; ok {
		return LoadDesiredSection(path)
	}
	return DecodeDesired(doc)
}

// LoadDesiredSection decodes only the "desired" section of the YAML file at
// path. A file without one yields an empty document.
func LoadDesiredSection(path string) (*DesiredState, error) {
	doc, err := readYAMLDoc(path)
	if err != nil {
		return nil, err
	}
	inner, ok := doc["desired"]
	if !ok || inner == nil {
		return &DesiredState{}, nil
	}
	section, ok := inner.(map[string]any)
	if !ok {
		return nil, apperrors.NewUserFacing(apperrors.CodeDesiredParse,
			fmt.Sprintf("'desired' in %s must be a mapping", path), "")
	}
	return DecodeDesired(section)
}

func readYAMLDoc(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.WrapUserFacing(err, apperrors.CodeDesiredReadError,
			fmt.Sprintf("failed to read desired state file %s", path), "Check the --desired path.")
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, apperrors.WrapUserFacing(err, apperrors.CodeDesiredParse,
			fmt.Sprintf("failed to parse desired state file %s", path), "The document must be valid YAML.")
	}
	return doc, nil
}

// DecodeDesired turns a generic document into a DesiredState. Unknown keys
// are rejected.
func DecodeDesired(doc map[string]any) (*DesiredState, error) {
	out := &DesiredState{}
	if len(doc) == 0 {
		return out, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       DecodeHook(),
		Result:           out,
		TagName:          "mapstructure",
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to build desired state decoder")
	}
	if err := dec.Decode(doc); err != nil {
		return nil, apperrors.WrapUserFacing(err, apperrors.CodeDesiredParse,
			"desired state document does not match the expected schema", "Check field names and types.")
	}
	return out, nil
}
