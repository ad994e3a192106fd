package config

// DeepMerge overlays override onto base: maps merge recursively, every
// other value (scalars, sequences, explicit nulls) replaces. Neither input
// is mutated.
func DeepMerge(base, override map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(override))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range override {
		baseChild, baseIsMap := out[key].(map[string]any)
		overrideChild, overrideIsMap := value.(map[string]any)
		if baseIsMap && overrideIsMap {
			out[key] = DeepMerge(baseChild, overrideChild)
			continue
		}
		out[key] = value
	}
	return out
}
