package cgrregistry

import (
	"fmt"
	"io"
	"sort"

	"github.com/diwise/cgr-adapter/pkg/cgr/localization"
	"github.com/go-playground/validator/v10"
	yaml "gopkg.in/yaml.v2"
)

// LocalizedText is either a plain string or a mapping with a "value" key
// and one key per locale
type LocalizedText struct {
	Value   string
	Locales map[string]string
}

func (lt *LocalizedText) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err == nil {
		lt.Value = s
		return nil
	}

	m := map[string]string{}
	if err := unmarshal(&m); err != nil {
		return err
	}

	lt.Value = m["value"]
	delete(m, "value")
	lt.Locales = m

	return nil
}

func (lt LocalizedText) LocalizedValue() localization.LocalizedValue {
	lv := localization.New(lt.Value)

	locales := make([]string, 0, len(lt.Locales))
	for locale := range lt.Locales {
		locales = append(locales, locale)
	}
	sort.Strings(locales)

	for _, locale := range locales {
		lv.SetLocaleValue(locale, lt.Locales[locale])
	}

	return lv
}

type TermConfig struct {
	Code        string        `yaml:"code" validate:"required"`
	Label       LocalizedText `yaml:"label"`
	Description LocalizedText `yaml:"description"`
	Children    []TermConfig  `yaml:"children" validate:"dive"`
}

type AttributeConfig struct {
	Code           string        `yaml:"code" validate:"required"`
	Type           string        `yaml:"type" validate:"required,oneof=character integer float boolean date local term classification"`
	Label          LocalizedText `yaml:"label"`
	Description    LocalizedText `yaml:"description"`
	Required       bool          `yaml:"required"`
	Unique         bool          `yaml:"unique"`
	ChangeOverTime bool          `yaml:"changeOverTime"`
	RootTerm       string        `yaml:"rootTerm" validate:"required_if=Type term,required_if=Type classification"`
	Precision      int           `yaml:"precision" validate:"gte=0"`
	Scale          int           `yaml:"scale" validate:"gte=0"`
}

type GeoObjectTypeConfig struct {
	Code             string            `yaml:"code" validate:"required"`
	Label            LocalizedText     `yaml:"label"`
	Description      LocalizedText     `yaml:"description"`
	GeometryType     string            `yaml:"geometryType" validate:"required,oneof=POINT LINE POLYGON MULTIPOINT MULTILINE MULTIPOLYGON MIXED"`
	IsLeaf           bool              `yaml:"isLeaf"`
	OrganizationCode string            `yaml:"organizationCode"`
	Attributes       []AttributeConfig `yaml:"attributes" validate:"dive"`
}

type HierarchyNodeConfig struct {
	Type                   string                `yaml:"type" validate:"required"`
	InheritedHierarchyCode string                `yaml:"inheritedHierarchyCode"`
	Children               []HierarchyNodeConfig `yaml:"children" validate:"dive"`
}

type HierarchyTypeConfig struct {
	Code                string                `yaml:"code" validate:"required"`
	Label               LocalizedText         `yaml:"label"`
	Description         LocalizedText         `yaml:"description"`
	OrganizationCode    string                `yaml:"organizationCode"`
	AbstractDescription string                `yaml:"abstractDescription"`
	Progress            string                `yaml:"progress"`
	Acknowledgement     string                `yaml:"acknowledgement"`
	Contact             string                `yaml:"contact"`
	Roots               []HierarchyNodeConfig `yaml:"roots" validate:"dive"`
}

type Config struct {
	Terms          []TermConfig          `yaml:"terms" validate:"dive"`
	GeoObjectTypes []GeoObjectTypeConfig `yaml:"geoObjectTypes" validate:"dive"`
	Hierarchies    []HierarchyTypeConfig `yaml:"hierarchies" validate:"dive"`
}

var validate = validator.New()

func LoadConfiguration(data io.Reader) (*Config, error) {

	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	err = yaml.Unmarshal(buf, &cfg)
	if err != nil {
		return nil, err
	}

	if err = validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid metadata configuration: %w", err)
	}

	return cfg, nil
}
