package decision

// Settings is the JSON configuration saved for a service instance.
// The top level selects the rule; "config" holds rule-specific keys.
type Settings map[string]any

// Config returns the rule-specific configuration section.
func (s Settings) Config() Settings {
	if config, ok := s["config"].(map[string]any); ok {
		return Settings(config)
	}
	return Settings{}
}

func (s Settings) String(key string) string {
	value, _ := s[key].(string)
	return value
}

func (s Settings) Bool(key string) bool {
	value, _ := s[key].(bool)
	return value
}

// Int reads a numeric key, tolerating the float64 values
// encoding/json produces for JSON numbers.
func (s Settings) Int(key string, fallback int) int {
	switch value := s[key].(type) {
	case int:
		return value
	case float64:
		return int(value)
	default:
		return fallback
	}
}

// StringSlice reads a list key; non-string elements are skipped.
func (s Settings) StringSlice(key string) []string {
	raw, ok := s[key].([]any)
	if !ok {
		return nil
	}
	values := make([]string, 0, len(raw))
	for _, item := range raw {
		if value, ok := item.(string); ok {
			values = append(values, value)
		}
	}
	return values
}

// MapSlice reads a list of objects, as produced by decoding JSON
// arrays of rule conditions.
func (s Settings) MapSlice(key string) []Settings {
	raw, ok := s[key].([]any)
	if !ok {
		return nil
	}
	values := make([]Settings, 0, len(raw))
	for _, item := range raw {
		if value, ok := item.(map[string]any); ok {
			values = append(values, Settings(value))
		}
	}
	return values
}
