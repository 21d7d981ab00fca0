package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// DialectTypeMapping overrides how a single source dialect's native column types
// normalize into the shared vocabulary internal/differ compares against. Mappings is
// keyed by the normalized native type name; SpecialMappings is checked first and
// matches the full native type string (including length/precision) by regex, for
// cases a bare keyword lookup can't express.
type DialectTypeMapping struct {
	Mappings        map[string]string `mapstructure:"mappings"`
	SpecialMappings []SpecialMapping  `mapstructure:"special_mappings"`
}

type SpecialMapping struct {
	SourceTypePattern string `mapstructure:"source_type_pattern"`
	TargetType        string `mapstructure:"target_type"`
}

// TypeMappingProfile holds one DialectTypeMapping per source dialect, loaded from an
// optional YAML profile so operators can widen or narrow the built-in normalization
// table without recompiling. Absent an override file, Normalize only lowercases and
// trims the type.
type TypeMappingProfile struct {
	dialects map[string]*DialectTypeMapping
}

// LoadProfile reads a YAML type-mapping profile via viper. An empty path returns an
// empty profile (Normalize then only lowercases and trims), matching the teacher's
// GetTypeMappingForDialects falling through to "no configuration defined" when nothing
// was registered for a dialect pair.
func LoadProfile(path string) (*TypeMappingProfile, error) {
	profile := &TypeMappingProfile{dialects: map[string]*DialectTypeMapping{}}
	if path == "" {
		return profile, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: load type mapping profile %s: %w", path, err)
	}

	raw := map[string]DialectTypeMapping{}
	if err := v.UnmarshalKey("dialects", &raw); err != nil {
		return nil, fmt.Errorf("config: parse type mapping profile %s: %w", path, err)
	}
	for dialect, mapping := range raw {
		m := mapping
		profile.dialects[strings.ToLower(dialect)] = &m
	}
	return profile, nil
}

// Normalize maps a dialect-native column type to the shared vocabulary
// internal/differ's columnPropertiesDiffer compares, consulting special (regex)
// mappings before exact-keyword mappings. Types with no override pass through
// unchanged, lowercased and trimmed.
func (p *TypeMappingProfile) Normalize(dialect, nativeType string) string {
	nativeType = strings.ToLower(strings.TrimSpace(nativeType))
	if p == nil {
		return nativeType
	}
	mapping, ok := p.dialects[strings.ToLower(dialect)]
	if !ok {
		return nativeType
	}

	for _, sm := range mapping.SpecialMappings {
		re, err := regexp.Compile(sm.SourceTypePattern)
		if err != nil {
			continue
		}
		if re.MatchString(nativeType) {
			return sm.TargetType
		}
	}

	key := normalizeTypeKey(nativeType)
	if target, ok := mapping.Mappings[key]; ok {
		return target
	}
	return nativeType
}

// normalizeTypeKey strips length/precision modifiers ("varchar(255)" -> "varchar") so
// Mappings can be keyed on the bare type keyword, mirroring the teacher's
// normalizeTypeName helper in internal/sync/compare_helpers.go.
func normalizeTypeKey(nativeType string) string {
	if idx := strings.IndexByte(nativeType, '('); idx >= 0 {
		nativeType = nativeType[:idx]
	}
	return strings.TrimSpace(nativeType)
}
