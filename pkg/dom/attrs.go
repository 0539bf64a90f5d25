package dom

import "strings"

func splitFields(s string) []string {
	return strings.Fields(s)
}

// addClasses returns the class attribute value with names appended.
func addClasses(current string, names []string) string {
	fields := splitFields(current)
	for _, name := range names {
		for _, n := range splitFields(name) {
			if !containsField(fields, n) {
				fields = append(fields, n)
			}
		}
	}
	return strings.Join(fields, " ")
}

// removeClasses returns the class attribute value without names.
func removeClasses(current string, names []string) string {
	fields := splitFields(current)
	out := fields[:0]
	for _, f := range fields {
		if !containsField(names, f) {
			out = append(out, f)
		}
	}
	return strings.Join(out, " ")
}

func containsField(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}

type declaration struct {
	property string
	value    string
}

// parseStyle splits an inline style attribute into ordered declarations.
func parseStyle(style string) []declaration {
	var decls []declaration
	for _, part := range strings.Split(style, ";") {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(value)
		if prop == "" {
			continue
		}
		decls = append(decls, declaration{property: prop, value: value})
	}
	return decls
}

func formatStyle(decls []declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.property+": "+d.value)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "; ") + ";"
}

// setStyleProperty returns style with property set to value, preserving the
// position of an existing declaration. An empty value removes the property.
func setStyleProperty(style, property, value string) string {
	property = strings.ToLower(strings.TrimSpace(property))
	decls := parseStyle(style)
	out := decls[:0]
	found := false
	for _, d := range decls {
		if d.property == property {
			found = true
			if value == "" {
				continue
			}
			d.value = value
		}
		out = append(out, d)
	}
	if !found && value != "" {
		out = append(out, declaration{property: property, value: value})
	}
	return formatStyle(out)
}

func styleProperty(style, property string) string {
	property = strings.ToLower(strings.TrimSpace(property))
	for _, d := range parseStyle(style) {
		if d.property == property {
			return d.value
		}
	}
	return ""
}
