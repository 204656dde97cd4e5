package permissions

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Definition describes an admin permission.
type Definition struct {
	Key    string `json:"key"`
	Method string `json:"method"`
	Path   string `json:"path"`
	Label  string `json:"label"`
	Module string `json:"module"`
}

// modulePrefix marks a grant covering every route of one module.
const modulePrefix = "module:"

// Key builds a permission key from method and route pattern.
func Key(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

// ModuleGrant returns the grant key covering every route of module.
func ModuleGrant(module string) string {
	return modulePrefix + module
}

// Modules returns the module names in catalog order.
func Modules() []string {
	var out []string
	for _, def := range definitions {
		if !slices.Contains(out, def.Module) {
			out = append(out, def.Module)
		}
	}
	return out
}

// NormalizePermissions trims, de-duplicates and sorts grants.
func NormalizePermissions(perms []string) []string {
	out := make([]string, 0, len(perms))
	for _, perm := range perms {
		if perm = strings.TrimSpace(perm); perm != "" {
			out = append(out, perm)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// ValidatePermissions reports the first grant that is neither a route key nor a module grant.
func ValidatePermissions(perms []string) error {
	for _, perm := range NormalizePermissions(perms) {
		if _, ok := definitionMap[perm]; ok {
			continue
		}
		if module, ok := strings.CutPrefix(perm, modulePrefix); ok && slices.Contains(Modules(), module) {
			continue
		}
		return fmt.Errorf("invalid permission: %s", perm)
	}
	return nil
}

// ParsePermissions decodes a stored grant list. Malformed JSON grants nothing.
func ParsePermissions(raw []byte) []string {
	var perms []string
	if len(raw) == 0 || json.Unmarshal(raw, &perms) != nil {
		return []string{}
	}
	return NormalizePermissions(perms)
}

// MarshalPermissions encodes grants for storage.
func MarshalPermissions(perms []string) ([]byte, error) {
	return json.Marshal(NormalizePermissions(perms))
}

// HasPermission reports whether perms grants the route key, directly or via its module.
func HasPermission(perms []string, key string) bool {
	def, ok := definitionMap[key]
	if !ok {
		return false
	}
	return slices.Contains(perms, key) || slices.Contains(perms, ModuleGrant(def.Module))
}

// Definitions returns a copy of all permission definitions.
func Definitions() []Definition {
	return slices.Clone(definitions)
}

func newDefinition(method, path, label, module string) Definition {
	return Definition{
		Key:    Key(method, path),
		Method: strings.ToUpper(method),
		Path:   path,
		Label:  label,
		Module: module,
	}
}

// definitions is the ordered list of permission definitions.
var definitions = []Definition{
	newDefinition("GET", "/v0/admin/dashboard", "View Dashboard", "Dashboard"),

	newDefinition("GET", "/v0/admin/content/catalog", "View Content Catalog", "Content"),
	newDefinition("GET", "/v0/admin/content", "List Content Sections", "Content"),
	newDefinition("GET", "/v0/admin/content/:key", "Get Content Section", "Content"),
	newDefinition("PUT", "/v0/admin/content/:key", "Save Content Section", "Content"),
	newDefinition("DELETE", "/v0/admin/content/:key", "Delete Content Section", "Content"),

	newDefinition("POST", "/v0/admin/plans", "Create Plan", "Plans"),
	newDefinition("GET", "/v0/admin/plans", "List Plans", "Plans"),
	newDefinition("GET", "/v0/admin/plans/:id", "Get Plan", "Plans"),
	newDefinition("PUT", "/v0/admin/plans/:id", "Update Plan", "Plans"),
	newDefinition("DELETE", "/v0/admin/plans/:id", "Delete Plan", "Plans"),
	newDefinition("POST", "/v0/admin/plans/:id/enable", "Enable Plan", "Plans"),
	newDefinition("POST", "/v0/admin/plans/:id/disable", "Disable Plan", "Plans"),

	newDefinition("POST", "/v0/admin/faqs", "Create FAQ", "FAQ"),
	newDefinition("GET", "/v0/admin/faqs", "List FAQs", "FAQ"),
	newDefinition("PUT", "/v0/admin/faqs/order", "Reorder FAQs", "FAQ"),
	newDefinition("GET", "/v0/admin/faqs/:id", "Get FAQ", "FAQ"),
	newDefinition("PUT", "/v0/admin/faqs/:id", "Update FAQ", "FAQ"),
	newDefinition("DELETE", "/v0/admin/faqs/:id", "Delete FAQ", "FAQ"),
	newDefinition("POST", "/v0/admin/faqs/:id/enable", "Enable FAQ", "FAQ"),
	newDefinition("POST", "/v0/admin/faqs/:id/disable", "Disable FAQ", "FAQ"),

	newDefinition("GET", "/v0/admin/forms", "List Form Submissions", "Forms"),
	newDefinition("GET", "/v0/admin/forms/export", "Export Form Submissions", "Forms"),
	newDefinition("GET", "/v0/admin/forms/:id", "Get Form Submission", "Forms"),
	newDefinition("DELETE", "/v0/admin/forms/:id", "Delete Form Submission", "Forms"),

	newDefinition("GET", "/v0/admin/settings", "List Settings", "Settings"),
	newDefinition("GET", "/v0/admin/settings/catalog", "View Settings Catalog", "Settings"),
	newDefinition("PUT", "/v0/admin/settings", "Save Settings", "Settings"),
	newDefinition("PUT", "/v0/admin/settings/:key", "Update Setting", "Settings"),
	newDefinition("DELETE", "/v0/admin/settings/:key", "Delete Setting", "Settings"),

	newDefinition("GET", "/v0/admin/crm-jobs", "List CRM Jobs", "CRM"),
	newDefinition("POST", "/v0/admin/crm-jobs/:id/retry", "Retry CRM Job", "CRM"),

	newDefinition("POST", "/v0/admin/admins", "Create Administrator", "Administrators"),
	newDefinition("GET", "/v0/admin/admins", "List Administrators", "Administrators"),
	newDefinition("PUT", "/v0/admin/admins/:id", "Update Administrator", "Administrators"),
	newDefinition("DELETE", "/v0/admin/admins/:id", "Delete Administrator", "Administrators"),
	newDefinition("PUT", "/v0/admin/admins/:id/password", "Change Administrator Password", "Administrators"),
	newDefinition("GET", "/v0/admin/permissions", "List Permission Definitions", "Administrators"),
}

// definitionMap provides fast lookup for permission definitions.
var definitionMap = func() map[string]Definition {
	out := make(map[string]Definition, len(definitions))
	for _, def := range definitions {
		out[def.Key] = def
	}
	return out
}()
