package config

// Merge returns base with override deep-merged on top. Where both sides
// hold a mapping under the same key the mappings are merged recursively;
// any other combination replaces the base value outright. Neither input is
// modified.
func Merge(base, override map[string]any) map[string]any {
	result := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		result[k] = v
	}
	for k, v := range override {
		bm, baseIsMap := result[k].(map[string]any)
		om, overIsMap := v.(map[string]any)
		if baseIsMap && overIsMap {
			result[k] = Merge(bm, om)
			continue
		}
		result[k] = v
	}
	return result
}
