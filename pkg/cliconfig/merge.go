package cliconfig

// MergeConfig merges source config into target, updating sources tracking.
// Only non-zero values from source are applied.
func MergeConfig(target, source *CLIConfig, sourceType string) {
	if source == nil {
		return
	}
	if target.Sources == nil {
		target.Sources = make(map[string]string)
	}

	mergeString(target, &target.Scope, source.Scope, "scope", sourceType)
	mergeString(target, &target.AttributePrefix, source.AttributePrefix, "attributePrefix", sourceType)
	mergeString(target, &target.TemplateTagName, source.TemplateTagName, "templateTagName", sourceType)
	mergeString(target, &target.Mode, source.Mode, "mode", sourceType)
	mergeString(target, &target.IncludeDir, source.IncludeDir, "includeDir", sourceType)
	mergeString(target, &target.IncludeURL, source.IncludeURL, "includeUrl", sourceType)
	mergeString(target, &target.LogLevel, source.LogLevel, "logLevel", sourceType)
	mergeString(target, &target.LogFormat, source.LogFormat, "logFormat", sourceType)
	mergeString(target, &target.LogFile, source.LogFile, "logFile", sourceType)

	if source.Concurrency != 0 {
		target.Concurrency = source.Concurrency
		target.Sources["concurrency"] = sourceType
	}
	// Booleans need SetFields to tell an explicit false from an unset field.
	if boolIsSet(source, "minify") {
		target.Minify = source.Minify
		target.Sources["minify"] = sourceType
	}
	if boolIsSet(source, "strict") {
		target.Strict = source.Strict
		target.Sources["strict"] = sourceType
	}
}

func mergeString(target *CLIConfig, dst *string, value, key, sourceType string) {
	if value == "" {
		return
	}
	*dst = value
	target.Sources[key] = sourceType
}

// boolIsSet reports whether a boolean field identified by its YAML key was
// explicitly set in the source config. Without SetFields (programmatic
// configs) only true counts as set.
func boolIsSet(cfg *CLIConfig, yamlKey string) bool {
	if cfg.SetFields != nil {
		return cfg.SetFields[yamlKey]
	}
	switch yamlKey {
	case "minify":
		return cfg.Minify
	case "strict":
		return cfg.Strict
	}
	return false
}
